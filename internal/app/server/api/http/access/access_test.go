package access

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"fleetreport/internal/app/server/api/http/middleware/auth"
	"fleetreport/internal/domain/scope"
	"fleetreport/internal/domain/user"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, req scope.Request) (scope.Scope, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(scope.Scope), args.Error(1)
}

func TestParams_Token(t *testing.T) {
	assert.Equal(t, "q", Params{ShareToken: " q ", ShareTokenHeader: "h"}.Token())
	assert.Equal(t, "h", Params{ShareTokenHeader: "h"}.Token())
	assert.Empty(t, Params{}.Token())
}

func TestScope(t *testing.T) {
	principal := &user.Principal{UserID: 1, Login: "ops"}
	withPrincipal := context.WithValue(context.Background(), auth.PrincipalKey, principal)

	tests := []struct {
		name       string
		ctx        context.Context
		params     Params
		wantReq    scope.Request
		resolved   scope.Scope
		resolveErr error
		wantStatus int
	}{
		{
			name:     "token from header",
			ctx:      context.Background(),
			params:   Params{ShareTokenHeader: "tok"},
			wantReq:  scope.Request{ShareToken: "tok"},
			resolved: scope.Scope{Source: scope.SourceToken, Customer: "42"},
		},
		{
			name:     "principal forwarded",
			ctx:      withPrincipal,
			params:   Params{Customer: "Acme"},
			wantReq:  scope.Request{Principal: principal, Filter: "Acme"},
			resolved: scope.All(),
		},
		{
			name:       "anonymous",
			ctx:        context.Background(),
			wantReq:    scope.Request{},
			resolveErr: scope.ErrAnonymous,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "rejected token",
			ctx:        context.Background(),
			params:     Params{ShareToken: "bad"},
			wantReq:    scope.Request{ShareToken: "bad"},
			resolveErr: scope.ErrRejected,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "unexpected",
			ctx:        context.Background(),
			wantReq:    scope.Request{},
			resolveErr: errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := new(MockResolver)
			r.On("Resolve", mock.Anything, tt.wantReq).Return(tt.resolved, tt.resolveErr)

			sc, err := Scope(tt.ctx, r, tt.params)
			if tt.wantStatus != 0 {
				var se huma.StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, tt.wantStatus, se.GetStatus())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.resolved, sc)
			r.AssertExpectations(t)
		})
	}
}
