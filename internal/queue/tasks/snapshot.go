package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/chartviz/engine/internal/services"
	appErr "github.com/chartviz/engine/pkg/errors"
	"github.com/chartviz/engine/pkg/logger"
)

// SnapshotTaskHandler renders chart snapshots queued by the API.
type SnapshotTaskHandler struct {
	snapshots services.SnapshotService
}

func NewSnapshotTaskHandler(snapshots services.SnapshotService) *SnapshotTaskHandler {
	return &SnapshotTaskHandler{snapshots: snapshots}
}

// Register binds the handler on mux under services.TaskChartSnapshot.
func (h *SnapshotTaskHandler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(services.TaskChartSnapshot, h.HandleSnapshot)
}

func (h *SnapshotTaskHandler) HandleSnapshot(ctx context.Context, t *asynq.Task) error {
	var p services.SnapshotPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.L().Error("invalid snapshot task payload", zap.Error(err))
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.ChartID == 0 {
		logger.L().Error("snapshot task without chart id")
		return fmt.Errorf("missing chart id: %w", asynq.SkipRetry)
	}

	logger.L().Info("handling snapshot task", zap.Uint64("chart_id", p.ChartID), zap.String("mode", p.Mode))

	snap, err := h.snapshots.Capture(ctx, p)
	if err != nil {
		logger.L().Error("snapshot capture failed", zap.Uint64("chart_id", p.ChartID), zap.Error(err))
		// Bad chart data or a deleted chart will not get better on retry.
		if appErr.IsCode(err, appErr.CodeInvalid) || appErr.IsCode(err, appErr.CodeNotFound) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	logger.L().Info("snapshot task completed", zap.Uint64("chart_id", p.ChartID), zap.Int("version", snap.Version))
	return nil
}
