package sync

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"fleetreport/internal/domain/snapshot"
	"fleetreport/internal/domain/store"
	"fleetreport/internal/domain/sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context) (*snapshot.Snapshot, store.Report, error) {
	args := m.Called(ctx)
	snap, _ := args.Get(0).(*snapshot.Snapshot)
	return snap, args.Get(1).(store.Report), args.Error(2)
}

func TestHandler_run(t *testing.T) {
	tests := []struct {
		name       string
		snap       *snapshot.Snapshot
		report     store.Report
		runErr     error
		wantStatus int
	}{
		{
			name:   "fresh snapshot",
			snap:   &snapshot.Snapshot{ID: "snap-2"},
			report: store.Report{Clients: 3},
		},
		{
			name:       "already running",
			runErr:     sync.ErrInProgress,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "every provider failed",
			runErr:     &sync.FatalRunError{Reason: sync.ReasonUpstream, Err: errors.New("timeout")},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "unexpected",
			runErr:     errors.New("encode"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			runner := new(MockRunner)
			runner.On("Run", mock.Anything).Return(tt.snap, tt.report, tt.runErr)
			handler := NewHandler(runner, slog.Default(), huma.Middlewares{})

			// Act
			output, err := handler.run(context.Background(), &runInput{})

			// Assert
			if tt.wantStatus != 0 {
				var se huma.StatusError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, tt.wantStatus, se.GetStatus())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Ok", output.Body.Status)
			assert.Equal(t, "snap-2", output.Body.Snapshot.ID)
			assert.Equal(t, 3, output.Body.Report.Clients)
		})
	}
}
