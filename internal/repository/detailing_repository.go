package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/chartviz/engine/internal/models"
	"github.com/chartviz/engine/internal/square"
	appErr "github.com/chartviz/engine/pkg/errors"
)

type DetailingRepository interface {
	Create(ctx context.Context, d *models.SquareDetailing) error
	ListByChart(ctx context.Context, chartID uint64) ([]models.SquareDetailing, error)
	ListByKey(ctx context.Context, chartID uint64, key square.Key) ([]models.SquareDetailing, error)
}

type detailingRepository struct {
	base BaseRepository[models.SquareDetailing]
	db   *gorm.DB
}

func NewDetailingRepository(db *gorm.DB) DetailingRepository {
	return &detailingRepository{base: NewBaseRepository[models.SquareDetailing](db, "square detailing"), db: db}
}

func (r *detailingRepository) Create(ctx context.Context, d *models.SquareDetailing) error {
	return r.base.Create(ctx, d)
}

func (r *detailingRepository) ListByChart(ctx context.Context, chartID uint64) ([]models.SquareDetailing, error) {
	out := []models.SquareDetailing{}
	if err := r.db.WithContext(ctx).Where("chart_id = ?", chartID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list square detailings failed")
	}
	return out, nil
}

func (r *detailingRepository) ListByKey(ctx context.Context, chartID uint64, key square.Key) ([]models.SquareDetailing, error) {
	out := []models.SquareDetailing{}
	err := r.db.WithContext(ctx).
		Where("chart_id = ? AND square_class = ? AND parent_text = ? AND depth = ?", chartID, key.SquareClass, key.ParentText, key.Depth).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list square detailings failed")
	}
	return out, nil
}
