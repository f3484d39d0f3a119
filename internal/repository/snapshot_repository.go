package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/chartviz/engine/internal/models"
	appErr "github.com/chartviz/engine/pkg/errors"
)

type SnapshotRepository interface {
	BaseRepository[models.ChartSnapshot]
	// CreateVersion stores s as the next version of its chart and makes it current.
	CreateVersion(ctx context.Context, s *models.ChartSnapshot) error
	GetCurrentByChart(ctx context.Context, chartID uint64, dest *models.ChartSnapshot) error
	GetByVersion(ctx context.Context, chartID uint64, version int, dest *models.ChartSnapshot) error
	ListByChart(ctx context.Context, chartID uint64) ([]models.ChartSnapshot, error)
	SetCurrent(ctx context.Context, chartID uint64, version int) error
}

type snapshotRepository struct {
	BaseRepository[models.ChartSnapshot]
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{BaseRepository: NewBaseRepository[models.ChartSnapshot](db, "snapshot"), db: db}
}

func (r *snapshotRepository) CreateVersion(ctx context.Context, s *models.ChartSnapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var latest int
		if err := tx.Model(&models.ChartSnapshot{}).
			Where("chart_id = ?", s.ChartID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&latest).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "read latest snapshot version failed")
		}

		if err := tx.Model(&models.ChartSnapshot{}).
			Where("chart_id = ? AND is_current = ?", s.ChartID, true).
			Update("is_current", false).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "clear current flag failed")
		}

		s.Version = latest + 1
		s.IsCurrent = true
		if err := tx.Create(s).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "create snapshot failed")
		}
		return nil
	})
}

func (r *snapshotRepository) GetCurrentByChart(ctx context.Context, chartID uint64, dest *models.ChartSnapshot) error {
	if err := r.db.WithContext(ctx).Where("chart_id = ? AND is_current = ?", chartID, true).First(dest).Error; err != nil {
		return notFoundOr(err, "snapshot")
	}
	return nil
}

func (r *snapshotRepository) GetByVersion(ctx context.Context, chartID uint64, version int, dest *models.ChartSnapshot) error {
	if err := r.db.WithContext(ctx).Where("chart_id = ? AND version = ?", chartID, version).First(dest).Error; err != nil {
		return notFoundOr(err, "snapshot version")
	}
	return nil
}

// ListByChart returns snapshots newest first.
func (r *snapshotRepository) ListByChart(ctx context.Context, chartID uint64) ([]models.ChartSnapshot, error) {
	var out []models.ChartSnapshot
	if err := r.db.WithContext(ctx).Where("chart_id = ?", chartID).Order("version DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list snapshots failed")
	}
	return out, nil
}

// SetCurrent marks version as current and clears the previous flag in one transaction.
func (r *snapshotRepository) SetCurrent(ctx context.Context, chartID uint64, version int) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return appErr.Wrap(tx.Error, appErr.CodeInternal, "begin transaction failed")
	}

	if err := tx.Model(&models.ChartSnapshot{}).Where("chart_id = ? AND is_current = ?", chartID, true).Update("is_current", false).Error; err != nil {
		tx.Rollback()
		return appErr.Wrap(err, appErr.CodeInternal, "clear current flag failed")
	}

	res := tx.Model(&models.ChartSnapshot{}).Where("chart_id = ? AND version = ?", chartID, version).Update("is_current", true)
	if res.Error != nil {
		tx.Rollback()
		return appErr.Wrap(res.Error, appErr.CodeInternal, "set current flag failed")
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return appErr.New(appErr.CodeNotFound, "snapshot version not found")
	}

	if err := tx.Commit().Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "commit transaction failed")
	}
	return nil
}
