// Package report отдает представления текущего снапшота с учетом области
// видимости. Здесь же загрузчик снапшота, который не дает параллельным холодным
// чтениям завалить апстрим запросами.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"fleetreport/internal/domain/scope"
	"fleetreport/internal/domain/snapshot"
	"fleetreport/internal/domain/store"

	"golang.org/x/exp/slog"
	"golang.org/x/sync/singleflight"
)

const DefaultTTL = 5 * time.Minute

type Aggregator interface {
	Aggregate(ctx context.Context) *snapshot.Snapshot
}

// Runs - долговременное хранилище, к которому обращается загрузчик.
type Runs interface {
	LatestRun(ctx context.Context) (store.Run, error)
	DeviceExtra(ctx context.Context, externalID string, kind snapshot.ExtraKind) (store.DeviceExtra, error)
}

type Service struct {
	cache      Cache
	runs       Runs
	aggregator Aggregator
	ttl        time.Duration
	log        *slog.Logger

	group  singleflight.Group
	synced atomic.Bool
	seeded atomic.Bool

	// mu упорядочивает записи в кеш; gen считает опубликованные снапшоты.
	mu  sync.Mutex
	gen uint64
}

func NewService(cache Cache, runs Runs, aggregator Aggregator, log *slog.Logger, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		cache:      cache,
		runs:       runs,
		aggregator: aggregator,
		ttl:        ttl,
		log:        log.With(slog.String("component", "report")),
	}
}

// TTL - время жизни снапшота в кеше.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// MarkSynced отмечает завершенную в этом процессе синхронизацию, после чего
// загрузка из журнала запусков отключается.
func (s *Service) MarkSynced() {
	s.synced.Store(true)
}

// Snapshot возвращает снапшот из кеша или загружает его. Параллельные вызовы на
// холодном кеше делят одну загрузку.
func (s *Service) Snapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	if snap, ok := s.cached(ctx); ok {
		return snap, nil
	}

	v, err, shared := s.group.Do("snapshot", func() (any, error) {
		// Кеш мог заполнить другой запрос.
		if snap, ok := s.cached(ctx); ok {
			return snap, nil
		}
		return s.load(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.log.Debug("snapshot load shared")
	}
	return v.(*snapshot.Snapshot), nil
}

func (s *Service) cached(ctx context.Context) (*snapshot.Snapshot, bool) {
	snap, err := s.cache.Snapshot(ctx)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.log.Warn("failed to read snapshot cache", "error", err)
		}
		return nil, false
	}
	return snap, true
}

func (s *Service) load(ctx context.Context) (*snapshot.Snapshot, error) {
	gen := s.generation()

	if !s.synced.Load() && s.seeded.CompareAndSwap(false, true) {
		snap, err := s.seed(ctx)
		switch {
		case err == nil:
			s.log.Info("snapshot seeded from last run", slog.String("snapshot_id", snap.ID))
			return s.store(ctx, snap, gen), nil
		case errors.Is(err, store.ErrNotFound):
			s.log.Debug("no previous run to seed from")
		default:
			s.log.Warn("failed to seed snapshot", "error", err)
		}
	}

	return s.store(ctx, s.aggregator.Aggregate(ctx), gen), nil
}

func (s *Service) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *Service) seed(ctx context.Context) (*snapshot.Snapshot, error) {
	run, err := s.runs.LatestRun(ctx)
	if err != nil {
		return nil, err
	}
	var snap snapshot.Snapshot
	if err := json.Unmarshal(run.Payload, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", run.ID, err)
	}
	if snap.ID == "" {
		snap.ID = run.ID
	}
	return &snap, nil
}

// store кладет загруженный снапшот в кеш, если после взятия gen синхронизация
// не опубликовала более новый. Возвращает снапшот, который должны видеть
// читатели.
func (s *Service) store(ctx context.Context, snap *snapshot.Snapshot, gen uint64) *snapshot.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		s.log.Debug("dropping loaded snapshot, a newer one was published", slog.String("snapshot_id", snap.ID))
		if current, ok := s.cached(ctx); ok {
			return current
		}
		return snap
	}
	if err := s.cache.SetSnapshot(ctx, snap, s.ttl); err != nil {
		s.log.Warn("failed to cache snapshot", "error", err)
	}
	return snap
}

// Publish подменяет снапшот результатом завершенной синхронизации и сбрасывает
// список клиентов от предыдущего. Загрузки, начатые раньше, его не
// перезаписывают.
func (s *Service) Publish(ctx context.Context, snap *snapshot.Snapshot) error {
	s.MarkSynced()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if err := s.cache.SetSnapshot(ctx, snap, s.ttl); err != nil {
		return fmt.Errorf("failed to cache snapshot: %w", err)
	}
	if err := s.cache.InvalidateCustomers(ctx); err != nil {
		return fmt.Errorf("failed to invalidate customers: %w", err)
	}
	return nil
}

// Customers возвращает список для дашборда в области. Полный список кешируется
// отдельно и перестраивается, когда его id снапшота устаревает.
func (s *Service) Customers(ctx context.Context, sc scope.Scope) ([]Customer, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.cache.Customers(ctx)
	if err != nil || list.SnapshotID != snap.ID {
		if err != nil && !errors.Is(err, ErrCacheMiss) {
			s.log.Warn("failed to read customers cache", "error", err)
		}
		list = BuildCustomers(snap)
		if err := s.cache.SetCustomers(ctx, list, s.ttl); err != nil {
			s.log.Warn("failed to cache customers", "error", err)
		}
	}

	return FilterCustomers(list.Customers, sc), nil
}

// DeviceExtra отдает набор данных устройства из снапшота, а для видимых
// устройств вне выборки этого запуска из хранилища. Отсутствующие данные -
// пустой объект.
func (s *Service) DeviceExtra(ctx context.Context, sc scope.Scope, deviceID string, kind snapshot.ExtraKind) (snapshot.Record, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if payload, ok := DeviceExtra(snap, sc, deviceID, kind); ok && payload != nil {
		return payload, nil
	}
	if !HasDevice(snap, sc, deviceID) {
		return snapshot.Record{}, nil
	}

	extra, err := s.runs.DeviceExtra(ctx, deviceID, kind)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return snapshot.Record{}, nil
		}
		return nil, fmt.Errorf("failed to load device extra: %w", err)
	}
	var payload snapshot.Record
	if err := json.Unmarshal(extra.Payload, &payload); err != nil || payload == nil {
		return snapshot.Record{}, nil
	}
	return payload, nil
}
