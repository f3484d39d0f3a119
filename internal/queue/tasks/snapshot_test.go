package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chartviz/engine/internal/models"
	"github.com/chartviz/engine/internal/services"
	appErr "github.com/chartviz/engine/pkg/errors"
	"github.com/chartviz/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests (required by tasks)
	_, err := logger.Init("info", "json")
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

type mockSnapshotService struct {
	mock.Mock
}

func (m *mockSnapshotService) RequestSnapshot(ctx context.Context, chartID uint64, userID uuid.UUID, payload services.SnapshotPayload) (*services.SnapshotRequest, error) {
	args := m.Called(ctx, chartID, userID, payload)
	if v := args.Get(0); v != nil {
		return v.(*services.SnapshotRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSnapshotService) Capture(ctx context.Context, payload services.SnapshotPayload) (*models.ChartSnapshot, error) {
	args := m.Called(ctx, payload)
	if v := args.Get(0); v != nil {
		return v.(*models.ChartSnapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSnapshotService) ListSnapshots(ctx context.Context, chartID uint64, userID uuid.UUID) ([]models.ChartSnapshot, error) {
	args := m.Called(ctx, chartID, userID)
	if v := args.Get(0); v != nil {
		return v.([]models.ChartSnapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSnapshotService) CurrentSnapshot(ctx context.Context, chartID uint64, userID uuid.UUID) (*models.ChartSnapshot, error) {
	args := m.Called(ctx, chartID, userID)
	if v := args.Get(0); v != nil {
		return v.(*models.ChartSnapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

func snapshotTask(t *testing.T, p services.SnapshotPayload) *asynq.Task {
	t.Helper()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	return asynq.NewTask(services.TaskChartSnapshot, b)
}

func TestSnapshotTaskHandler_HandleSnapshot(t *testing.T) {
	payload := services.SnapshotPayload{ChartID: 42, Mode: "treemap", Theme: "dark"}

	t.Run("successful capture", func(t *testing.T) {
		svc := &mockSnapshotService{}
		handler := NewSnapshotTaskHandler(svc)

		svc.On("Capture", mock.Anything, payload).
			Return(&models.ChartSnapshot{ChartID: 42, Version: 3, IsCurrent: true}, nil).Once()

		require.NoError(t, handler.HandleSnapshot(context.Background(), snapshotTask(t, payload)))
		svc.AssertExpectations(t)
	})

	t.Run("transient failure is retried", func(t *testing.T) {
		svc := &mockSnapshotService{}
		handler := NewSnapshotTaskHandler(svc)

		boom := appErr.New(appErr.CodeUnavailable, "database is down")
		svc.On("Capture", mock.Anything, payload).Return(nil, boom).Once()

		err := handler.HandleSnapshot(context.Background(), snapshotTask(t, payload))
		require.ErrorIs(t, err, boom)
		require.False(t, errors.Is(err, asynq.SkipRetry))
		svc.AssertExpectations(t)
	})

	t.Run("bad chart data skips retry", func(t *testing.T) {
		svc := &mockSnapshotService{}
		handler := NewSnapshotTaskHandler(svc)

		svc.On("Capture", mock.Anything, payload).
			Return(nil, appErr.New(appErr.CodeInvalid, "chart data is not a square tree")).Once()

		err := handler.HandleSnapshot(context.Background(), snapshotTask(t, payload))
		require.ErrorIs(t, err, asynq.SkipRetry)
		svc.AssertExpectations(t)
	})

	t.Run("malformed payload", func(t *testing.T) {
		svc := &mockSnapshotService{}
		handler := NewSnapshotTaskHandler(svc)

		err := handler.HandleSnapshot(context.Background(), asynq.NewTask(services.TaskChartSnapshot, []byte("{")))
		require.ErrorIs(t, err, asynq.SkipRetry)

		err = handler.HandleSnapshot(context.Background(), snapshotTask(t, services.SnapshotPayload{Mode: "scaled"}))
		require.ErrorIs(t, err, asynq.SkipRetry)
		svc.AssertNotCalled(t, "Capture", mock.Anything, mock.Anything)
	})
}

func TestSnapshotTaskHandler_Register(t *testing.T) {
	svc := &mockSnapshotService{}
	mux := asynq.NewServeMux()
	NewSnapshotTaskHandler(svc).Register(mux)

	svc.On("Capture", mock.Anything, services.SnapshotPayload{ChartID: 7}).
		Return(&models.ChartSnapshot{ChartID: 7, Version: 1}, nil).Once()

	task := snapshotTask(t, services.SnapshotPayload{ChartID: 7})
	require.NoError(t, mux.ProcessTask(context.Background(), task))
	svc.AssertExpectations(t)
}
