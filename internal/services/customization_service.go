package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/chartviz/engine/internal/models"
	"github.com/chartviz/engine/internal/repository"
	"github.com/chartviz/engine/internal/square"
	appErr "github.com/chartviz/engine/pkg/errors"
	"github.com/chartviz/engine/pkg/logger"
)

// CustomizationService records square edits and detailings against a chart.
// Saves always insert; nothing is updated in place.
type CustomizationService interface {
	SaveCustomization(ctx context.Context, userID uuid.UUID, chartID uint64, key square.Key, data square.SquareData) (*models.SquareCustomization, error)
	ListCustomizations(ctx context.Context, userID uuid.UUID, chartID uint64) ([]models.SquareCustomization, error)

	SaveDetailing(ctx context.Context, userID uuid.UUID, input *DetailingInput) (*models.SquareDetailing, error)
	ListDetailings(ctx context.Context, userID uuid.UUID, chartID uint64, key *square.Key) ([]models.SquareDetailing, error)
}

type DetailingInput struct {
	ChartID    uint64
	Key        square.Key
	Plane      string
	Purpose    string
	Delineator string
	Notations  string
	Details    string
	ExtraData  json.RawMessage
}

type customizationService struct {
	charts     ChartService
	custRepo   repository.CustomizationRepository
	detailRepo repository.DetailingRepository
}

func NewCustomizationService(charts ChartService, custRepo repository.CustomizationRepository, detailRepo repository.DetailingRepository) CustomizationService {
	return &customizationService{charts: charts, custRepo: custRepo, detailRepo: detailRepo}
}

var _ CustomizationService = (*customizationService)(nil)

func (s *customizationService) SaveCustomization(ctx context.Context, userID uuid.UUID, chartID uint64, key square.Key, data square.SquareData) (*models.SquareCustomization, error) {
	if _, err := s.charts.GetChart(ctx, chartID, userID); err != nil {
		return nil, err
	}
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if data.Urgency != "" && !data.Urgency.Valid() {
		return nil, appErr.New(appErr.CodeInvalid, "urgency must be one of red, yellow, orange, green, black")
	}

	row := models.NewSquareCustomization(chartID, key, data)
	row.CreatedBy = userID
	if err := s.custRepo.Create(ctx, row); err != nil {
		return nil, err
	}

	logger.L().Info("square customization saved",
		zap.Uint64("chart_id", chartID),
		zap.Uint64("customization_id", row.ID),
		zap.String("square_class", string(key.SquareClass)),
		zap.Int("depth", key.Depth),
	)
	return row, nil
}

func (s *customizationService) ListCustomizations(ctx context.Context, userID uuid.UUID, chartID uint64) ([]models.SquareCustomization, error) {
	if _, err := s.charts.GetChart(ctx, chartID, userID); err != nil {
		return nil, err
	}
	return s.custRepo.ListByChart(ctx, chartID)
}

func (s *customizationService) SaveDetailing(ctx context.Context, userID uuid.UUID, input *DetailingInput) (*models.SquareDetailing, error) {
	if _, err := s.charts.GetChart(ctx, input.ChartID, userID); err != nil {
		return nil, err
	}
	if err := checkKey(input.Key); err != nil {
		return nil, err
	}
	var extra datatypes.JSON
	if len(input.ExtraData) > 0 {
		if !json.Valid(input.ExtraData) {
			return nil, appErr.New(appErr.CodeInvalid, "extraData must be valid JSON")
		}
		extra = datatypes.JSON(input.ExtraData)
	}

	row := &models.SquareDetailing{
		ChartID:     input.ChartID,
		SquareClass: input.Key.SquareClass,
		ParentText:  input.Key.ParentText,
		Depth:       input.Key.Depth,
		Plane:       input.Plane,
		Purpose:     input.Purpose,
		Delineator:  input.Delineator,
		Notations:   input.Notations,
		Details:     input.Details,
		ExtraData:   extra,
		CreatedBy:   userID,
	}
	if err := s.detailRepo.Create(ctx, row); err != nil {
		return nil, err
	}

	logger.L().Info("square detailing saved", zap.Uint64("chart_id", input.ChartID), zap.Uint64("detailing_id", row.ID))
	return row, nil
}

func (s *customizationService) ListDetailings(ctx context.Context, userID uuid.UUID, chartID uint64, key *square.Key) ([]models.SquareDetailing, error) {
	if _, err := s.charts.GetChart(ctx, chartID, userID); err != nil {
		return nil, err
	}
	if key != nil {
		return s.detailRepo.ListByKey(ctx, chartID, *key)
	}
	return s.detailRepo.ListByChart(ctx, chartID)
}

func checkKey(k square.Key) error {
	if _, ok := square.ParseClass(string(k.SquareClass)); !ok {
		return appErr.New(appErr.CodeInvalid, "squareClass must be one of root, branch, leaf, fruit")
	}
	if k.Depth < 0 {
		return appErr.New(appErr.CodeInvalid, "depth must not be negative")
	}
	return nil
}
