package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/chartviz/engine/internal/editor"
	"github.com/chartviz/engine/internal/models"
	"github.com/chartviz/engine/internal/render"
	"github.com/chartviz/engine/internal/repository"
	"github.com/chartviz/engine/internal/square"
	"github.com/chartviz/engine/internal/theme"
	appErr "github.com/chartviz/engine/pkg/errors"
	"github.com/chartviz/engine/pkg/logger"
	"github.com/chartviz/engine/pkg/utils"
)

type ChartService interface {
	CreateChart(ctx context.Context, userID uuid.UUID, input *CreateChartInput) (*models.Chart, error)
	GetChart(ctx context.Context, chartID uint64, userID uuid.UUID) (*models.Chart, error)
	ListCharts(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.Chart, int64, error)
	UpdateChart(ctx context.Context, chartID uint64, userID uuid.UUID, input *UpdateChartInput) (*models.Chart, error)
	DeleteChart(ctx context.Context, chartID uint64, userID uuid.UUID) error

	// Render lays out the chart tree and draws it as SVG.
	Render(ctx context.Context, chartID uint64, userID uuid.UUID, view View) (*RenderResult, error)

	// GetSquare returns one node with its editor translation.
	GetSquare(ctx context.Context, chartID uint64, userID uuid.UUID, nodeID square.NodeID) (*SquareView, error)
	// UpdateSquare merges edited data into the stored tree.
	UpdateSquare(ctx context.Context, chartID uint64, userID uuid.UUID, nodeID square.NodeID, data square.SquareData) (*SquareView, error)
}

type CreateChartInput struct {
	Title    string
	Data     json.RawMessage
	IsPublic bool
	Theme    string
}

type UpdateChartInput struct {
	Title    *string
	Data     json.RawMessage
	IsPublic *bool
	Theme    *string
}

// View selects how a chart is rendered.
type View struct {
	Mode       render.Mode
	Layout     render.Variant
	Class      square.Class
	Exclude    []square.NodeID
	Theme      string
	Customized bool
	Width      float64
	Height     float64
}

// RenderResult carries both the scene and its SVG encoding.
type RenderResult struct {
	Scene *render.Scene
	SVG   []byte
	ETag  string
}

// SquareView is the editor payload for one node.
type SquareView struct {
	ID             square.NodeID     `json:"id"`
	Node           *square.Node      `json:"node"`
	Key            square.Key        `json:"key"`
	Data           square.SquareData `json:"data"`
	DetailingsLink string            `json:"detailingsLink,omitempty"`
	DetailingsErr  string            `json:"detailingsError,omitempty"`
	// Customization is the newest stored row for Key, if any.
	Customization *models.SquareCustomization `json:"customization,omitempty"`
}

type chartService struct {
	chartRepo repository.ChartRepository
	custRepo  repository.CustomizationRepository
	defaults  RenderDefaults
}

// RenderDefaults fill view fields left empty by the caller.
type RenderDefaults struct {
	Width  float64
	Height float64
	Theme  string
}

func NewChartService(chartRepo repository.ChartRepository, custRepo repository.CustomizationRepository, defaults RenderDefaults) ChartService {
	return &chartService{chartRepo: chartRepo, custRepo: custRepo, defaults: defaults}
}

var _ ChartService = (*chartService)(nil)

func (s *chartService) CreateChart(ctx context.Context, userID uuid.UUID, input *CreateChartInput) (*models.Chart, error) {
	logger.L().Info("create chart called", zap.String("user_id", userID.String()), zap.String("title", input.Title))

	data, err := validJSON(input.Data)
	if err != nil {
		return nil, err
	}
	c := &models.Chart{
		UserID:   userID,
		Title:    input.Title,
		Data:     data,
		IsPublic: input.IsPublic,
		Theme:    theme.Resolve(input.Theme, s.defaults.Theme).Name,
	}
	if err := s.chartRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	logger.L().Info("chart created", zap.Uint64("chart_id", c.ID), zap.String("user_id", userID.String()))
	return c, nil
}

func (s *chartService) GetChart(ctx context.Context, chartID uint64, userID uuid.UUID) (*models.Chart, error) {
	var c models.Chart
	if err := s.chartRepo.GetByID(ctx, chartID, &c); err != nil {
		return nil, err
	}
	if !c.VisibleTo(userID) {
		return nil, appErr.New(appErr.CodeForbidden, "chart is private")
	}
	return &c, nil
}

func (s *chartService) ListCharts(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]models.Chart, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.chartRepo.ListVisible(ctx, userID, page, pageSize)
}

func (s *chartService) UpdateChart(ctx context.Context, chartID uint64, userID uuid.UUID, input *UpdateChartInput) (*models.Chart, error) {
	logger.L().Info("update chart", zap.Uint64("chart_id", chartID), zap.String("user_id", userID.String()))
	c, err := s.owned(ctx, chartID, userID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		c.Title = *input.Title
	}
	if input.Data != nil {
		data, err := validJSON(input.Data)
		if err != nil {
			return nil, err
		}
		c.Data = data
	}
	if input.IsPublic != nil {
		c.IsPublic = *input.IsPublic
	}
	if input.Theme != nil {
		p, ok := theme.Lookup(*input.Theme)
		if !ok {
			return nil, appErr.New(appErr.CodeInvalid, fmt.Sprintf("unknown theme %q", *input.Theme))
		}
		c.Theme = p.Name
	}

	if err := s.chartRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *chartService) DeleteChart(ctx context.Context, chartID uint64, userID uuid.UUID) error {
	logger.L().Info("delete chart", zap.Uint64("chart_id", chartID), zap.String("user_id", userID.String()))
	if _, err := s.owned(ctx, chartID, userID); err != nil {
		return err
	}
	return s.chartRepo.Delete(ctx, chartID)
}

func (s *chartService) Render(ctx context.Context, chartID uint64, userID uuid.UUID, view View) (*RenderResult, error) {
	c, err := s.GetChart(ctx, chartID, userID)
	if err != nil {
		return nil, err
	}
	return renderChart(ctx, c, s.custRepo, s.withDefaults(view))
}

func (s *chartService) GetSquare(ctx context.Context, chartID uint64, userID uuid.UUID, nodeID square.NodeID) (*SquareView, error) {
	c, err := s.GetChart(ctx, chartID, userID)
	if err != nil {
		return nil, err
	}
	tree, err := parseTree(c)
	if err != nil {
		return nil, err
	}
	view, err := squareView(tree, nodeID)
	if err != nil {
		return nil, err
	}

	var latest models.SquareCustomization
	switch err := s.custRepo.LatestByKey(ctx, chartID, view.Key, &latest); {
	case err == nil:
		view.Customization = &latest
	case !appErr.IsCode(err, appErr.CodeNotFound):
		return nil, err
	}
	return view, nil
}

func (s *chartService) UpdateSquare(ctx context.Context, chartID uint64, userID uuid.UUID, nodeID square.NodeID, data square.SquareData) (*SquareView, error) {
	c, err := s.owned(ctx, chartID, userID)
	if err != nil {
		return nil, err
	}
	tree, err := parseTree(c)
	if err != nil {
		return nil, err
	}
	n := tree.Node(nodeID)
	if n == nil {
		return nil, appErr.New(appErr.CodeNotFound, fmt.Sprintf("square %d not found", nodeID))
	}
	if data.Urgency != "" && !data.Urgency.Valid() {
		return nil, editor.ErrInvalidUrgency
	}

	editor.ApplyTo(n, data)
	b, err := tree.Marshal()
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "encode chart data")
	}
	if err := s.chartRepo.UpdateData(ctx, chartID, datatypes.JSON(b)); err != nil {
		return nil, err
	}

	logger.L().Info("square updated", zap.Uint64("chart_id", chartID), zap.Int("node_id", int(nodeID)))
	return squareView(tree, nodeID)
}

func (s *chartService) owned(ctx context.Context, chartID uint64, userID uuid.UUID) (*models.Chart, error) {
	var c models.Chart
	if err := s.chartRepo.GetByID(ctx, chartID, &c); err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, appErr.New(appErr.CodeForbidden, "user does not own chart")
	}
	return &c, nil
}

func (s *chartService) withDefaults(v View) View {
	if v.Width <= 0 {
		v.Width = s.defaults.Width
	}
	if v.Height <= 0 {
		v.Height = s.defaults.Height
	}
	return v
}

// validJSON is the only check applied to chart data on write.
func validJSON(raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 || !json.Valid(raw) {
		return nil, appErr.New(appErr.CodeInvalid, "chart data must be valid JSON")
	}
	return datatypes.JSON(raw), nil
}

func parseTree(c *models.Chart) (*square.Tree, error) {
	tree, err := square.Parse(c.Data)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "chart data is not a square tree")
	}
	return tree, nil
}

func squareView(tree *square.Tree, id square.NodeID) (*SquareView, error) {
	n := tree.Node(id)
	if n == nil {
		return nil, appErr.New(appErr.CodeNotFound, fmt.Sprintf("square %d not found", id))
	}
	v := &SquareView{
		ID:   id,
		Node: n,
		Key:  tree.KeyOf(id),
		Data: editor.FromNode(n),
	}
	link, err := editor.DetailingsLink(editor.ContextFor(tree, id))
	if err != nil {
		v.DetailingsErr = err.Error()
	} else {
		v.DetailingsLink = link
	}
	return v, nil
}

// renderChart draws c under view, overlaying stored customizations when asked.
func renderChart(ctx context.Context, c *models.Chart, custRepo repository.CustomizationRepository, view View) (*RenderResult, error) {
	tree, err := parseTree(c)
	if err != nil {
		return nil, err
	}

	if view.Customized {
		rows, err := custRepo.ListByChart(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		tree = render.ApplyCustomizations(tree, Overrides(rows))
	}

	scene, err := render.Layout(tree, render.Options{
		Mode:      view.Mode,
		Layout:    view.Layout,
		Class:     view.Class,
		Inclusion: render.NewInclusion(view.Exclude...),
		Width:     view.Width,
		Height:    view.Height,
		Palette:   theme.Resolve(view.Theme, c.Theme),
	})
	if err != nil {
		return nil, err
	}

	svg := render.SVG(scene)
	return &RenderResult{Scene: scene, SVG: svg, ETag: utils.ETag(svg)}, nil
}

// Overrides converts stored rows into render overrides ordered by row id.
func Overrides(rows []models.SquareCustomization) []render.Override {
	out := make([]render.Override, len(rows))
	for i := range rows {
		out[i] = render.Override{Seq: rows[i].ID, Key: rows[i].Key(), Data: rows[i].SquareData()}
	}
	return out
}
