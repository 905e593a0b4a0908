package user

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"fleetreport/internal/app/server/api/http/middleware/auth"
	"fleetreport/internal/domain/user"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, login, password string, admin bool) (int, error) {
	args := m.Called(ctx, login, password, admin)
	return args.Int(0), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, login, password string) (user.User, error) {
	args := m.Called(ctx, login, password)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *MockUserService) Principal(ctx context.Context, userID int) (user.Principal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(user.Principal), args.Error(1)
}

func (m *MockUserService) BindCustomer(ctx context.Context, userID int, customerID string) error {
	args := m.Called(ctx, userID, customerID)
	return args.Error(0)
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Create(ctx context.Context, userID int) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockSessionService) Validate(ctx context.Context, token string) (int, error) {
	args := m.Called(ctx, token)
	return args.Int(0), args.Error(1)
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	require.True(t, errors.As(err, &se))
	return se.GetStatus()
}

func TestHandler_login(t *testing.T) {
	tests := []struct {
		name          string
		authErr       error
		sessionErr    error
		expectedToken string
		wantStatus    int
	}{
		{name: "successful login", expectedToken: "token123"},
		{name: "invalid credentials", authErr: user.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized},
		{name: "session failure", sessionErr: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			users := new(MockUserService)
			sessions := new(MockSessionService)
			users.On("Authenticate", mock.Anything, "ops", "Passw0rd!").Return(user.User{ID: 1, Login: "ops"}, tt.authErr)
			sessions.On("Create", mock.Anything, 1).Return(tt.expectedToken, tt.sessionErr)
			handler := NewHandler(users, sessions, slog.Default(), huma.Middlewares{}, huma.Middlewares{})

			// Act
			output, err := handler.login(context.Background(), &loginInput{Body: Credentials{Login: "ops", Password: "Passw0rd!"}})

			// Assert
			if tt.wantStatus != 0 {
				assert.Equal(t, tt.wantStatus, statusOf(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedToken, output.Body.Token)
			assert.Equal(t, "Ok", output.Body.Status)
		})
	}
}

func TestHandler_me(t *testing.T) {
	handler := NewHandler(new(MockUserService), new(MockSessionService), slog.Default(), huma.Middlewares{}, huma.Middlewares{})

	_, err := handler.me(context.Background(), &meInput{})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	p := &user.Principal{UserID: 3, Login: "viewer", CustomerID: "42"}
	ctx := context.WithValue(context.Background(), auth.PrincipalKey, p)
	output, err := handler.me(ctx, &meInput{})
	require.NoError(t, err)
	assert.Equal(t, MeResponse{ID: 3, Login: "viewer", CustomerID: "42"}, output.Body)
}
