package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"fleetreport/internal/app/server/api/http/middleware/logger"
	"fleetreport/internal/domain/session"
	"fleetreport/internal/domain/user"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// PrincipalResolver загружает пользователя, стоящего за сессией.
type PrincipalResolver interface {
	Principal(ctx context.Context, userID int) (user.Principal, error)
}

type Auth struct {
	session session.Servicer
	users   PrincipalResolver
	log     *slog.Logger
}

func New(session session.Servicer, users PrincipalResolver, log *slog.Logger) *Auth {
	return &Auth{
		session: session,
		users:   users,
		log:     log.With(slog.String("component", "auth_middleware")),
	}
}

type contextKey string

const (
	UserIDKey    contextKey = "userID"
	PrincipalKey contextKey = "principal"
)

// Middleware требует действительную bearer-сессию.
func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		p, ok := a.authenticate(ctx)
		if !ok {
			return
		}
		next(withPrincipal(ctx, p))
	}
}

// Optional прикрепляет принципала, если передан bearer. Неверный bearer все
// равно отклоняется.
func (a *Auth) Optional() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if ctx.Header("Authorization") == "" {
			next(ctx)
			return
		}
		p, ok := a.authenticate(ctx)
		if !ok {
			return
		}
		next(withPrincipal(ctx, p))
	}
}

// Admin требует действительную bearer-сессию администратора.
func (a *Auth) Admin() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		p, ok := a.authenticate(ctx)
		if !ok {
			return
		}
		if !p.Admin {
			a.log.Warn("admin operation denied", slog.String("login", p.Login))
			deny(ctx, http.StatusForbidden, "Forbidden", a.log)
			return
		}
		next(withPrincipal(ctx, p))
	}
}

func (a *Auth) authenticate(ctx huma.Context) (user.Principal, bool) {
	header := ctx.Header("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		a.log.Debug("missing bearer token", slog.String("path", ctx.URL().Path))
		deny(ctx, http.StatusUnauthorized, "Unauthorized", a.log)
		return user.Principal{}, false
	}

	userID, err := a.session.Validate(ctx.Context(), token)
	if err != nil {
		a.log.Debug("session rejected", "error", err)
		deny(ctx, http.StatusUnauthorized, "Unauthorized", a.log)
		return user.Principal{}, false
	}

	p, err := a.users.Principal(ctx.Context(), userID)
	if err != nil {
		a.log.Warn("failed to load principal", slog.Int("user_id", userID), "error", err)
		deny(ctx, http.StatusUnauthorized, "Unauthorized", a.log)
		return user.Principal{}, false
	}
	return p, true
}

func withPrincipal(ctx huma.Context, p user.Principal) huma.Context {
	c := context.WithValue(ctx.Context(), UserIDKey, p.UserID)
	c = context.WithValue(c, PrincipalKey, &p)
	logger.Annotate(c, slog.Int("user_id", p.UserID), slog.String("login", p.Login))
	return huma.WithContext(ctx, c)
}

func deny(ctx huma.Context, status int, msg string, log *slog.Logger) {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.SetStatus(status)
	if err := json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{"error": msg}); err != nil {
		log.Error("failed to encode error body", "error", err)
	}
}

func GetUserID(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDKey).(int)
	return userID, ok
}

// GetPrincipal возвращает аутентифицированного принципала, если он есть.
func GetPrincipal(ctx context.Context) (*user.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(*user.Principal)
	return p, ok && p != nil
}
