package main

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chartviz/engine/internal/models"
	"github.com/chartviz/engine/pkg/logger"
)

// runMigrations executes all database migrations
func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}

	// Run custom migrations
	return runCustomMigrations(db)
}

type migration struct {
	name string
	// dialects limits the migration to the named gorm dialects; empty means all.
	dialects []string
	run      func(*gorm.DB) error
}

var customMigrations = []migration{
	{name: "pgcrypto", dialects: []string{"postgres"}, run: enableUUIDExtension},
	{name: "current_snapshot_index", dialects: []string{"postgres", "sqlite"}, run: addCurrentSnapshotIndex},
}

// runCustomMigrations handles schema changes AutoMigrate can't handle
func runCustomMigrations(db *gorm.DB) error {
	dialect := db.Dialector.Name()
	for _, m := range customMigrations {
		if !appliesTo(m, dialect) {
			continue
		}
		if err := m.run(db); err != nil {
			return err
		}
		logger.L().Info("custom migration applied", zap.String("name", m.name), zap.String("dialect", dialect))
	}
	return nil
}

func appliesTo(m migration, dialect string) bool {
	if len(m.dialects) == 0 {
		return true
	}
	for _, d := range m.dialects {
		if d == dialect {
			return true
		}
	}
	return false
}

// enableUUIDExtension ensures UUID generation is available
func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error
}

// addCurrentSnapshotIndex allows at most one current snapshot per chart.
func addCurrentSnapshotIndex(db *gorm.DB) error {
	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_chart_snapshots_current
		ON chart_snapshots(chart_id)
		WHERE is_current
	`).Error
}
