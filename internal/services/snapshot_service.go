package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/chartviz/engine/internal/models"
	"github.com/chartviz/engine/internal/render"
	"github.com/chartviz/engine/internal/repository"
	"github.com/chartviz/engine/internal/square"
	appErr "github.com/chartviz/engine/pkg/errors"
	"github.com/chartviz/engine/pkg/logger"
	"github.com/chartviz/engine/pkg/utils"
)

// TaskChartSnapshot is the asynq task type rendered by the worker.
const TaskChartSnapshot = "chart:snapshot"

// SnapshotPayload is the task payload of TaskChartSnapshot.
type SnapshotPayload struct {
	ChartID    uint64 `json:"chart_id"`
	Mode       string `json:"mode"`
	Layout     string `json:"layout,omitempty"`
	Class      string `json:"class,omitempty"`
	Theme      string `json:"theme,omitempty"`
	Customized bool   `json:"customized,omitempty"`
}

// View converts the payload back into render settings.
func (p SnapshotPayload) View() (View, error) {
	mode, err := render.ParseMode(p.Mode)
	if err != nil {
		return View{}, err
	}
	layout, err := render.ParseVariant(p.Layout)
	if err != nil {
		return View{}, err
	}
	return View{Mode: mode, Layout: layout, Class: square.Class(p.Class), Theme: p.Theme, Customized: p.Customized}, nil
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// SnapshotRequest reports what happened to a snapshot request.
type SnapshotRequest struct {
	Queued bool   `json:"queued"`
	TaskID string `json:"task_id,omitempty"`
	Queue  string `json:"queue,omitempty"`
}

type SnapshotService interface {
	// RequestSnapshot enqueues a background render. Without a queue it logs and skips.
	RequestSnapshot(ctx context.Context, chartID uint64, userID uuid.UUID, payload SnapshotPayload) (*SnapshotRequest, error)
	// Capture renders and stores a new snapshot version. Called by the worker.
	Capture(ctx context.Context, payload SnapshotPayload) (*models.ChartSnapshot, error)
	ListSnapshots(ctx context.Context, chartID uint64, userID uuid.UUID) ([]models.ChartSnapshot, error)
	CurrentSnapshot(ctx context.Context, chartID uint64, userID uuid.UUID) (*models.ChartSnapshot, error)
}

type snapshotService struct {
	charts    ChartService
	chartRepo repository.ChartRepository
	custRepo  repository.CustomizationRepository
	snapRepo  repository.SnapshotRepository
	queue     Enqueuer
	defaults  RenderDefaults
}

func NewSnapshotService(charts ChartService, chartRepo repository.ChartRepository, custRepo repository.CustomizationRepository, snapRepo repository.SnapshotRepository, queue Enqueuer, defaults RenderDefaults) SnapshotService {
	return &snapshotService{charts: charts, chartRepo: chartRepo, custRepo: custRepo, snapRepo: snapRepo, queue: queue, defaults: defaults}
}

var _ SnapshotService = (*snapshotService)(nil)

func (s *snapshotService) RequestSnapshot(ctx context.Context, chartID uint64, userID uuid.UUID, payload SnapshotPayload) (*SnapshotRequest, error) {
	if _, err := s.charts.GetChart(ctx, chartID, userID); err != nil {
		return nil, err
	}
	payload.ChartID = chartID
	if _, err := payload.View(); err != nil {
		return nil, err
	}

	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "encode snapshot payload")
	}
	if s.queue == nil {
		logger.L().Warn("asynq client not configured, skipping snapshot enqueue", zap.Uint64("chart_id", chartID))
		return &SnapshotRequest{Queued: false}, nil
	}

	task := asynq.NewTask(TaskChartSnapshot, pb)
	info, err := s.queue.EnqueueContext(ctx, task, asynq.MaxRetry(3), asynq.Timeout(2*time.Minute))
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeUnavailable, "enqueue snapshot failed")
	}

	logger.L().Info("snapshot enqueued", zap.Uint64("chart_id", chartID), zap.String("task_id", info.ID))
	return &SnapshotRequest{Queued: true, TaskID: info.ID, Queue: info.Queue}, nil
}

func (s *snapshotService) Capture(ctx context.Context, payload SnapshotPayload) (*models.ChartSnapshot, error) {
	view, err := payload.View()
	if err != nil {
		return nil, err
	}
	if view.Width <= 0 {
		view.Width = s.defaults.Width
	}
	if view.Height <= 0 {
		view.Height = s.defaults.Height
	}

	var c models.Chart
	if err := s.chartRepo.GetByID(ctx, payload.ChartID, &c); err != nil {
		return nil, err
	}
	res, err := renderChart(ctx, &c, s.custRepo, view)
	if err != nil {
		return nil, err
	}

	snap := &models.ChartSnapshot{
		ChartID:  c.ID,
		Mode:     string(res.Scene.Mode),
		Layout:   string(res.Scene.Layout),
		Theme:    res.Scene.Theme,
		SVG:      string(res.SVG),
		Checksum: utils.Checksum(res.SVG),
	}
	if err := s.snapRepo.CreateVersion(ctx, snap); err != nil {
		return nil, err
	}

	logger.L().Info("snapshot stored",
		zap.Uint64("chart_id", c.ID),
		zap.Int("version", snap.Version),
		zap.String("checksum", snap.Checksum),
	)
	return snap, nil
}

func (s *snapshotService) ListSnapshots(ctx context.Context, chartID uint64, userID uuid.UUID) ([]models.ChartSnapshot, error) {
	if _, err := s.charts.GetChart(ctx, chartID, userID); err != nil {
		return nil, err
	}
	return s.snapRepo.ListByChart(ctx, chartID)
}

func (s *snapshotService) CurrentSnapshot(ctx context.Context, chartID uint64, userID uuid.UUID) (*models.ChartSnapshot, error) {
	if _, err := s.charts.GetChart(ctx, chartID, userID); err != nil {
		return nil, err
	}
	var snap models.ChartSnapshot
	if err := s.snapRepo.GetCurrentByChart(ctx, chartID, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
