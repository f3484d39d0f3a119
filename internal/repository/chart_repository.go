package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/chartviz/engine/internal/models"
	appErr "github.com/chartviz/engine/pkg/errors"
)

type ChartRepository interface {
	BaseRepository[models.Chart]
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.Chart, error)
	ListVisible(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.Chart, int64, error)
	UpdateData(ctx context.Context, chartID uint64, data datatypes.JSON) error
}

type chartRepository struct {
	BaseRepository[models.Chart]
	db *gorm.DB
}

func NewChartRepository(db *gorm.DB) ChartRepository {
	return &chartRepository{BaseRepository: NewBaseRepository[models.Chart](db, "chart"), db: db}
}

func (r *chartRepository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.Chart, error) {
	var out []models.Chart
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("updated_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list charts failed")
	}
	return out, nil
}

// ListVisible pages through charts owned by userID plus every public chart.
func (r *chartRepository) ListVisible(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.Chart, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Chart{}).Where("user_id = ? OR is_public = ?", userID, true)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, appErr.Wrap(err, appErr.CodeInternal, "count charts failed")
	}

	var out []models.Chart
	if err := q.Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&out).Error; err != nil {
		return nil, 0, appErr.Wrap(err, appErr.CodeInternal, "list charts failed")
	}
	return out, total, nil
}

// UpdateData replaces only the data blob.
func (r *chartRepository) UpdateData(ctx context.Context, chartID uint64, data datatypes.JSON) error {
	res := r.db.WithContext(ctx).Model(&models.Chart{}).Where("id = ?", chartID).Update("data", data)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "update chart data failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "chart not found")
	}
	return nil
}
