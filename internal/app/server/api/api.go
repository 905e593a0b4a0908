// Package api монтирует все HTTP-операции на chi-роутер через huma.
package api

import (
	"fleetreport/internal/app/server"
	"fleetreport/internal/app/server/api/http/dashboard"
	healthAPI "fleetreport/internal/app/server/api/http/health"
	"fleetreport/internal/app/server/api/http/middleware"
	"fleetreport/internal/app/server/api/http/middleware/auth"
	"fleetreport/internal/app/server/api/http/middleware/logger"
	"fleetreport/internal/app/server/api/http/reporting"
	shareAPI "fleetreport/internal/app/server/api/http/share"
	syncAPI "fleetreport/internal/app/server/api/http/sync"
	userAPI "fleetreport/internal/app/server/api/http/user"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"
)

type Handlers struct {
	Health    *healthAPI.Handler
	User      *userAPI.Handler
	Reporting *reporting.Handler
	Dashboard *dashboard.Handler
	Sync      *syncAPI.Handler
	Share     *shareAPI.Handler
}

// New создает *chi.Mux со всеми операциями, зарегистрированными через huma.
func New(app *server.App, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("Fleet Report API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, config)

	h := handlers(app, log)
	h.Health.SetupRoutes(API)
	h.User.SetupRoutes(API)
	h.Reporting.SetupRoutes(API)
	h.Dashboard.SetupRoutes(API)
	h.Sync.SetupRoutes(API)
	h.Share.SetupRoutes(API)

	return mux
}

func handlers(app *server.App, log *slog.Logger) *Handlers {
	authMW := auth.New(app.Sessions, app.Users, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(app.DB, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	public := middlewares.GetAllAndClear()
	middlewares.Add(loggerMW.Middleware())
	middlewares.Add(authMW.Middleware())
	userHandler := userAPI.NewHandler(app.Users, app.Sessions, log, public, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	middlewares.Add(authMW.Optional())
	reportingHandler := reporting.NewHandler(app.Reports, app.Scope, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	middlewares.Add(authMW.Optional())
	dashboardHandler := dashboard.NewHandler(app.Reports, app.Scope, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	middlewares.Add(authMW.Admin())
	syncHandler := syncAPI.NewHandler(app.Sync, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware())
	middlewares.Add(authMW.Admin())
	admin := middlewares.GetAllAndClear()
	middlewares.Add(loggerMW.Middleware())
	shareHandler := shareAPI.NewHandler(app.Shares, app.Shares, log, admin, middlewares.GetAllAndClear())

	return &Handlers{
		Health:    healthHandler,
		User:      userHandler,
		Reporting: reportingHandler,
		Dashboard: dashboardHandler,
		Sync:      syncHandler,
		Share:     shareHandler,
	}
}
