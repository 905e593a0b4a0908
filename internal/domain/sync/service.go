// Package sync выполняет цикл получения, сохранения и публикации по запросу или
// с фиксированным интервалом.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fleetreport/internal/domain/snapshot"
	"fleetreport/internal/domain/store"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/exp/slog"
)

type Aggregator interface {
	Aggregate(ctx context.Context) *snapshot.Snapshot
}

// Locker пропускает не больше одного запуска одновременно. ok равен false, если
// блокировку держит кто-то другой.
type Locker interface {
	TryLock(ctx context.Context) (unlock func(context.Context) error, ok bool, err error)
}

type RunLog interface {
	SaveRun(ctx context.Context, run store.Run) error
}

type Storer interface {
	Store(ctx context.Context, snap *snapshot.Snapshot) (store.Report, error)
}

// Publisher делает новый снапшот видимым читателям.
type Publisher interface {
	Publish(ctx context.Context, snap *snapshot.Snapshot) error
}

type Runner interface {
	Run(ctx context.Context) (*snapshot.Snapshot, store.Report, error)
}

type Service struct {
	aggregator Aggregator
	lock       Locker
	runs       RunLog
	storer     Storer
	publisher  Publisher
	log        *slog.Logger
}

func NewService(aggregator Aggregator, lock Locker, runs RunLog, storer Storer, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		aggregator: aggregator,
		lock:       lock,
		runs:       runs,
		storer:     storer,
		publisher:  publisher,
		log:        log.With(slog.String("component", "sync")),
	}
}

// Run агрегирует всех провайдеров, записывает сырой запуск, сохраняет его и
// подменяет снапшот в кеше. Если упали все провайдеры, ничего не сохраняется.
func (s *Service) Run(ctx context.Context) (*snapshot.Snapshot, store.Report, error) {
	unlock, ok, err := s.lock.TryLock(ctx)
	if err != nil {
		return nil, store.Report{}, &FatalRunError{Reason: ReasonLock, Err: err}
	}
	if !ok {
		return nil, store.Report{}, ErrInProgress
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("failed to release run lock", "error", err)
		}
	}()

	start := time.Now()
	snap := s.aggregator.Aggregate(ctx)
	if snap.AllProvidersFailed() {
		return nil, store.Report{}, &FatalRunError{Reason: ReasonUpstream, Err: providerErrors(snap)}
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return nil, store.Report{}, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	run := store.Run{ID: snap.ID, Payload: payload, CreatedAt: snap.CreatedAt}
	if err := s.runs.SaveRun(ctx, run); err != nil {
		return nil, store.Report{}, &FatalRunError{Reason: ReasonStorage, Err: err}
	}

	report, err := s.storer.Store(ctx, snap)
	if err != nil {
		return nil, report, &FatalRunError{Reason: ReasonStorage, Err: err}
	}
	if skipped := report.Err(); skipped != nil {
		s.log.Warn("some entities were skipped", slog.Int("skipped", report.Skipped), "error", skipped)
	}

	if err := s.publisher.Publish(ctx, snap); err != nil {
		s.log.Warn("failed to publish snapshot", "error", err)
	}

	s.log.Info("sync finished",
		slog.String("snapshot_id", snap.ID),
		slog.Int("clients", report.Clients),
		slog.Int("devices", report.Devices),
		slog.Int("failing_checks", report.FailingChecks),
		slog.Int("extras", report.Extras),
		slog.Duration("duration", time.Since(start)),
	)
	return snap, report, nil
}

// Loop запускается сразу и затем каждые interval до отмены ctx. Упавшие запуски
// логируются и повторяются на следующем тике.
func (s *Service) Loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.runOnce(ctx)
		if ctx.Err() != nil {
			s.log.Info("sync loop stopped")
			return
		}

		select {
		case <-ctx.Done():
			s.log.Info("sync loop stopped")
			return
		case <-ticker.C:
		}
	}
}

func (s *Service) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("sync run panicked", slog.Any("panic", r))
		}
	}()

	_, _, err := s.Run(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrInProgress):
		s.log.Info("sync skipped, another run holds the lock")
	case ctx.Err() != nil:
	default:
		s.log.Warn("sync run failed", "error", err)
	}
}

func providerErrors(snap *snapshot.Snapshot) error {
	var result *multierror.Error
	for _, p := range snap.Providers {
		if p.Error != nil {
			result = multierror.Append(result, p.Error)
		}
	}
	return result.ErrorOrNil()
}
