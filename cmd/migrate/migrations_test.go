package main

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chartviz/engine/internal/models"
	"github.com/chartviz/engine/pkg/database"
	"github.com/chartviz/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Use(zap.NewNop())
	os.Exit(m.Run())
}

func TestRunMigrationsSQLite(t *testing.T) {
	db, err := database.Open(context.Background(), database.Options{Driver: "sqlite", DSN: "file:migrate_test?mode=memory&cache=shared"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, runMigrations(db))
	// idempotent
	require.NoError(t, runMigrations(db))

	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
	assert.True(t, db.Migrator().HasIndex(&models.ChartSnapshot{}, "idx_chart_snapshots_current"))
	assert.True(t, db.Migrator().HasIndex(&models.SquareCustomization{}, "idx_customization_key"))
}

func TestAppliesTo(t *testing.T) {
	assert.True(t, appliesTo(migration{}, "mysql"))
	assert.True(t, appliesTo(migration{dialects: []string{"postgres"}}, "postgres"))
	assert.False(t, appliesTo(migration{dialects: []string{"postgres"}}, "sqlite"))
}
