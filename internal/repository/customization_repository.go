package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/chartviz/engine/internal/models"
	"github.com/chartviz/engine/internal/square"
	appErr "github.com/chartviz/engine/pkg/errors"
)

// CustomizationRepository is append-only: rows are created and listed, never updated.
type CustomizationRepository interface {
	Create(ctx context.Context, c *models.SquareCustomization) error
	ListByChart(ctx context.Context, chartID uint64) ([]models.SquareCustomization, error)
	LatestByKey(ctx context.Context, chartID uint64, key square.Key, dest *models.SquareCustomization) error
}

type customizationRepository struct {
	base BaseRepository[models.SquareCustomization]
	db   *gorm.DB
}

func NewCustomizationRepository(db *gorm.DB) CustomizationRepository {
	return &customizationRepository{base: NewBaseRepository[models.SquareCustomization](db, "square customization"), db: db}
}

func (r *customizationRepository) Create(ctx context.Context, c *models.SquareCustomization) error {
	return r.base.Create(ctx, c)
}

// ListByChart returns rows in insertion order.
func (r *customizationRepository) ListByChart(ctx context.Context, chartID uint64) ([]models.SquareCustomization, error) {
	out := []models.SquareCustomization{}
	if err := r.db.WithContext(ctx).Where("chart_id = ?", chartID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list square customizations failed")
	}
	return out, nil
}

func (r *customizationRepository) LatestByKey(ctx context.Context, chartID uint64, key square.Key, dest *models.SquareCustomization) error {
	err := r.db.WithContext(ctx).
		Where("chart_id = ? AND square_class = ? AND parent_text = ? AND depth = ?", chartID, key.SquareClass, key.ParentText, key.Depth).
		Order("id DESC").
		First(dest).Error
	if err != nil {
		return notFoundOr(err, "square customization")
	}
	return nil
}
