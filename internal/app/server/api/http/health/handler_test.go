package health

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) PingContext(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestHandler_healthCheck(t *testing.T) {
	tests := []struct {
		name           string
		pingErr        error
		expectedStatus string
		wantHTTP       int
	}{
		{
			name:           "health check returns OK",
			expectedStatus: "OK",
		},
		{
			name:     "storage down",
			pingErr:  errors.New("connection refused"),
			wantHTTP: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			db := new(MockPinger)
			db.On("PingContext", mock.Anything).Return(tt.pingErr)
			handler := NewHandler(db, slog.Default(), huma.Middlewares{})
			ctx := context.Background()
			input := &Input{}

			// Act
			output, err := handler.healthCheck(ctx, input)

			// Assert
			if tt.wantHTTP != 0 {
				var se huma.StatusError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, tt.wantHTTP, se.GetStatus())
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, output)
			assert.Equal(t, tt.expectedStatus, output.Body.Status)
		})
	}
}

func TestNewHandler(t *testing.T) {
	// Arrange
	log := slog.Default()
	middleware := huma.Middlewares{}

	// Act
	handler := NewHandler(nil, log, middleware)

	// Assert
	assert.NotNil(t, handler)
	assert.NotNil(t, handler.log)
	assert.NotNil(t, handler.middleware)

	output, err := handler.healthCheck(context.Background(), &Input{})
	require.NoError(t, err)
	assert.Equal(t, "OK", output.Body.Status)
}
