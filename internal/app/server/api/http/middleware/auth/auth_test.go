package auth

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fleetreport/internal/app/server/api/http/middleware/logger"
	"fleetreport/internal/domain/session"
	"fleetreport/internal/domain/user"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"
)

type MockSession struct {
	mock.Mock
}

func (m *MockSession) Create(ctx context.Context, userID int) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockSession) Validate(ctx context.Context, token string) (int, error) {
	args := m.Called(ctx, token)
	return args.Int(0), args.Error(1)
}

type MockPrincipals struct {
	mock.Mock
}

func (m *MockPrincipals) Principal(ctx context.Context, userID int) (user.Principal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(user.Principal), args.Error(1)
}

func newAuth() (*Auth, *MockSession, *MockPrincipals) {
	sessions := new(MockSession)
	principals := new(MockPrincipals)
	sessions.On("Validate", mock.Anything, "good").Return(1, nil)
	sessions.On("Validate", mock.Anything, "admin").Return(2, nil)
	sessions.On("Validate", mock.Anything, mock.Anything).Return(0, session.ErrInvalid)
	principals.On("Principal", mock.Anything, 1).Return(user.Principal{UserID: 1, Login: "viewer", CustomerID: "42"}, nil)
	principals.On("Principal", mock.Anything, 2).Return(user.Principal{UserID: 2, Login: "ops", Admin: true}, nil)
	return New(sessions, principals, slog.Default()), sessions, principals
}

// run прогоняет один middleware и возвращает статус ответа и принципала,
// которого увидел следующий обработчик.
func run(mw func(huma.Context, func(huma.Context)), authorization string) (int, *user.Principal, bool) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reporting/clients", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	ctx := humatest.NewContext(&huma.Operation{}, req, w)

	var (
		principal *user.Principal
		called    bool
	)
	mw(ctx, func(next huma.Context) {
		called = true
		principal, _ = GetPrincipal(next.Context())
	})
	return w.Code, principal, called
}

func TestAuth_Middleware(t *testing.T) {
	a, _, _ := newAuth()

	tests := []struct {
		name          string
		authorization string
		wantCalled    bool
		wantStatus    int
	}{
		{name: "valid bearer", authorization: "Bearer good", wantCalled: true, wantStatus: http.StatusOK},
		{name: "missing bearer", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", authorization: "Basic good", wantStatus: http.StatusUnauthorized},
		{name: "unknown session", authorization: "Bearer stale", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, principal, called := run(a.Middleware(), tt.authorization)

			assert.Equal(t, tt.wantCalled, called)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantCalled {
				assert.Equal(t, "42", principal.CustomerID)
			}
		})
	}
}

func TestAuth_Optional(t *testing.T) {
	a, sessions, _ := newAuth()

	status, principal, called := run(a.Optional(), "")
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, principal)
	sessions.AssertNotCalled(t, "Validate", mock.Anything, mock.Anything)

	status, _, called = run(a.Optional(), "Bearer stale")
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, status)

	_, principal, called = run(a.Optional(), "Bearer good")
	assert.True(t, called)
	assert.Equal(t, "viewer", principal.Login)
}

func TestAuth_Admin(t *testing.T) {
	a, _, _ := newAuth()

	status, _, called := run(a.Admin(), "Bearer good")
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, status)

	_, principal, called := run(a.Admin(), "Bearer admin")
	assert.True(t, called)
	assert.True(t, principal.Admin)
}

func TestAuth_principalLookupFails(t *testing.T) {
	sessions := new(MockSession)
	principals := new(MockPrincipals)
	sessions.On("Validate", mock.Anything, "orphan").Return(9, nil)
	principals.On("Principal", mock.Anything, 9).Return(user.Principal{}, errors.New("user gone"))
	a := New(sessions, principals, slog.Default())

	status, _, called := run(a.Middleware(), "Bearer orphan")

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestGetUserID(t *testing.T) {
	_, ok := GetUserID(context.Background())
	assert.False(t, ok)

	id, ok := GetUserID(context.WithValue(context.Background(), UserIDKey, 7))
	assert.True(t, ok)
	assert.Equal(t, 7, id)
}

func TestAuth_principalInAccessLog(t *testing.T) {
	a, _, _ := newAuth()
	var buf bytes.Buffer
	access := logger.New(slog.New(slog.NewTextHandler(&buf, nil)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync", nil)
	req.Header.Set("Authorization", "Bearer admin")
	ctx := humatest.NewContext(&huma.Operation{}, req, httptest.NewRecorder())

	access.Middleware()(ctx, func(next huma.Context) {
		a.Admin()(next, func(huma.Context) {})
	})

	assert.Contains(t, buf.String(), "login=ops")
	assert.Contains(t, buf.String(), "user_id=2")
}
