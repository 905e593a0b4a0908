// Package server собирает хранилище, кеш, апстримы и доменные сервисы, общие
// для HTTP-сервера и админского CLI.
package server

import (
	"context"
	"fmt"

	"fleetreport/internal/app/server/config"
	"fleetreport/internal/domain/aggregate"
	"fleetreport/internal/domain/report"
	"fleetreport/internal/domain/scope"
	"fleetreport/internal/domain/session"
	"fleetreport/internal/domain/share"
	"fleetreport/internal/domain/store"
	"fleetreport/internal/domain/sync"
	"fleetreport/internal/domain/user"
	"fleetreport/internal/infrastructure/cache/memory"
	rediscache "fleetreport/internal/infrastructure/cache/redis"
	"fleetreport/internal/infrastructure/lock"
	"fleetreport/internal/infrastructure/storage"
	"fleetreport/internal/infrastructure/storage/postgres"
	"fleetreport/internal/infrastructure/storage/sqlite"
	"fleetreport/internal/infrastructure/upstream/edr"
	"fleetreport/internal/infrastructure/upstream/rmm"
	"fleetreport/internal/infrastructure/upstream/transport"

	"github.com/hashicorp/go-multierror"
	"github.com/redis/go-redis/v9"
	"golang.org/x/exp/slog"
)

type App struct {
	Config *config.Config
	Log    *slog.Logger
	DB     *storage.DB
	Redis  redis.UniversalClient

	Users    *user.Service
	Sessions *session.Service
	Shares   *share.Service
	Scope    *scope.Resolver
	Reports  *report.Service
	Sync     *sync.Service
}

// New открывает хранилище и Redis (если настроен) и создает все сервисы.
// Миграции здесь не применяются.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	db, err := OpenStorage(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Log: log, DB: db}

	var (
		cache  report.Cache
		locker sync.Locker
	)
	if cfg.Redis.Address != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			db.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.Redis = rdb
		cache = rediscache.New(rdb)
		locker = lock.NewRedis(rdb, lock.DefaultKey, 2*cfg.Upstream.Timeout+cfg.Sync.Interval)
		log.Info("using redis cache and run lock", slog.String("address", cfg.Redis.Address))
	} else {
		cache = memory.New()
		locker = lock.NewLocal()
	}

	userRepo := storage.NewUserRepository(db, log)
	profileRepo := storage.NewProfileRepository(db, log)
	app.Users = user.NewService(userRepo, profileRepo, nil, log)
	app.Sessions = session.NewService(storage.NewSessionRepository(db, log), log, cfg.Session.TTL)

	app.Shares = share.NewService(cfg.Share.Secret, cfg.Share.PublicBaseURL)
	app.Scope = scope.NewResolver(app.Shares, log)

	aggregator := aggregate.New(Sources(cfg, log), log, &aggregate.Config{
		MaxDevices:  cfg.Sync.MaxDevices,
		Concurrency: cfg.Sync.Concurrency,
	})
	storeRepo := storage.NewStoreRepository(db, log)
	app.Reports = report.NewService(cache, storeRepo, aggregator, log, cfg.Sync.CacheTTL)
	app.Sync = sync.NewService(aggregator, locker, storeRepo, store.NewEngine(storeRepo, log), app.Reports, log)

	return app, nil
}

// OpenStorage подключается к Postgres или SQLite в зависимости от DATABASE_URI.
func OpenStorage(ctx context.Context, cfg config.DB) (*storage.DB, error) {
	var (
		db  *storage.DB
		err error
	)
	switch cfg.Dialect() {
	case "postgres":
		db, err = postgres.New(ctx, cfg.DatabaseURI)
	default:
		db, err = sqlite.New(ctx, cfg.SQLitePath())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return db, nil
}

// Sources возвращает настроенных провайдеров. Провайдер без URL пропускается.
func Sources(cfg *config.Config, log *slog.Logger) []aggregate.Source {
	limits := func(u config.Upstream) transport.Config {
		return transport.Config{
			URL:     u.URL,
			APIKey:  u.APIKey,
			Timeout: cfg.Upstream.Timeout,
			RPS:     cfg.Upstream.RPS,
			Burst:   cfg.Upstream.Burst,
		}
	}

	var sources []aggregate.Source
	if cfg.RMM.Enabled() {
		sources = append(sources, aggregate.Source{
			Slug:    "rmm",
			Name:    "RMM",
			Kind:    aggregate.SourceRMM,
			Fetcher: rmm.New(limits(cfg.RMM), log),
		})
	}
	if cfg.EDR.Enabled() {
		sources = append(sources, aggregate.Source{
			Slug:    "edr",
			Name:    "EDR",
			Kind:    aggregate.SourceAgents,
			Fetcher: edr.New(limits(cfg.EDR), log),
		})
	}
	if len(sources) == 0 {
		log.Warn("no upstream provider configured")
	}
	return sources
}

// Close освобождает Redis и хранилище.
func (a *App) Close() error {
	var errs *multierror.Error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if err := a.DB.Close(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("failed to close storage: %w", err))
	}
	return errs.ErrorOrNil()
}
