// Package access превращает параметры запроса в разрешенную область видимости
// клиента.
package access

import (
	"context"
	"errors"
	"strings"

	"fleetreport/internal/app/server/api/http/middleware/auth"
	"fleetreport/internal/app/server/api/http/middleware/logger"
	"fleetreport/internal/domain/scope"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Params встраиваются во вход каждого чтения с областью видимости.
type Params struct {
	ShareToken       string `query:"share_token" doc:"Signed share token"`
	ShareTokenHeader string `header:"X-Share-Token" doc:"Signed share token"`
	Customer         string `query:"customer" doc:"Customer id or name filter"`
}

// Token предпочитает query-параметр заголовку.
func (p Params) Token() string {
	if t := strings.TrimSpace(p.ShareToken); t != "" {
		return t
	}
	return strings.TrimSpace(p.ShareTokenHeader)
}

type Resolver interface {
	Resolve(ctx context.Context, req scope.Request) (scope.Scope, error)
}

// Scope определяет область видимости вызывающего и переводит отказы в
// HTTP-ошибки.
func Scope(ctx context.Context, r Resolver, p Params) (scope.Scope, error) {
	req := scope.Request{ShareToken: p.Token(), Filter: p.Customer}
	if principal, ok := auth.GetPrincipal(ctx); ok {
		req.Principal = principal
	}

	sc, err := r.Resolve(ctx, req)
	switch {
	case err == nil:
		logger.Annotate(ctx, slog.String("scope", string(sc.Source)))
		return sc, nil
	case errors.Is(err, scope.ErrAnonymous):
		return scope.Scope{}, huma.Error401Unauthorized("authentication or share token required")
	case errors.Is(err, scope.ErrRejected):
		return scope.Scope{}, huma.Error403Forbidden("invalid or expired share token")
	default:
		return scope.Scope{}, huma.Error500InternalServerError("failed to resolve scope", err)
	}
}
