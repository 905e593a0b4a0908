// Package aggregate обходит API всех провайдеров и собирает один канонический
// снапшот. Ошибки апстрима записываются на месте и не прерывают соседние
// запросы.
package aggregate

import (
	"context"
	"sort"
	"sync"
	"time"

	"fleetreport/internal/domain/snapshot"
	"fleetreport/internal/domain/upstream"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

type SourceKind string

const (
	SourceRMM    SourceKind = "rmm"
	SourceAgents SourceKind = "agents"
)

// Source - один настроенный провайдер.
type Source struct {
	Slug    string
	Name    string
	Kind    SourceKind
	Fetcher upstream.Fetcher
}

type Config struct {
	MaxDevices  int
	Concurrency int
	// Идентификатор клиента со списком агентов
	AgentsClientID   string
	AgentsClientName string
}

// Aggregator строит снапшоты. Безопасен для конкурентного использования.
type Aggregator struct {
	sources []Source
	log     *slog.Logger
	config  *Config
	now     func() time.Time
}

func New(sources []Source, log *slog.Logger, config *Config) *Aggregator {
	if config == nil {
		config = &Config{}
	}
	if config.MaxDevices <= 0 {
		config.MaxDevices = 30
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 8
	}
	if config.AgentsClientID == "" {
		config.AgentsClientID = "edr-agents"
	}
	if config.AgentsClientName == "" {
		config.AgentsClientName = "Security Agents"
	}

	sem := semaphore.NewWeighted(int64(config.Concurrency))
	limited := make([]Source, len(sources))
	for i, src := range sources {
		src.Fetcher = upstream.Limit(src.Fetcher, sem)
		limited[i] = src
	}

	return &Aggregator{
		sources: limited,
		log:     log.With(slog.String("component", "aggregator")),
		config:  config,
		now:     time.Now,
	}
}

// Aggregate опрашивает всех провайдеров параллельно. Снапшот возвращается
// всегда.
func (a *Aggregator) Aggregate(ctx context.Context) *snapshot.Snapshot {
	start := a.now()
	snap := &snapshot.Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: start.UTC(),
		Providers: make([]snapshot.Provider, len(a.sources)),
		Threats:   []snapshot.Record{},
	}

	threats := make([][]snapshot.Record, len(a.sources))
	threatErrs := make([]*upstream.Error, len(a.sources))

	var g errgroup.Group
	for i, src := range a.sources {
		g.Go(func() error {
			switch src.Kind {
			case SourceAgents:
				snap.Providers[i], threats[i], threatErrs[i] = a.collectAgents(ctx, src)
			default:
				snap.Providers[i] = a.collectRMM(ctx, src)
			}
			return nil
		})
	}
	_ = g.Wait()

	for i := range a.sources {
		snap.Threats = append(snap.Threats, threats[i]...)
		if threatErrs[i] != nil && snap.ThreatsError == nil {
			snap.ThreatsError = threatErrs[i]
		}
	}

	a.log.Info("aggregation finished",
		slog.String("snapshot_id", snap.ID),
		slog.Int("providers", len(snap.Providers)),
		slog.Duration("duration", a.now().Sub(start)),
	)

	return snap
}

// fetch вызывает апстрим и помечает ошибку местом, где она произошла.
func (a *Aggregator) fetch(ctx context.Context, src Source, service string, params upstream.Params, scope, field string) (any, *upstream.Error) {
	res := src.Fetcher.Fetch(ctx, service, params)
	if res.Ok() {
		return res.Payload, nil
	}

	e := res.Err.At(src.Slug, scope, field)
	if e.Service == "" {
		e.Service = service
	}
	a.log.Warn("upstream call failed",
		slog.String("provider", src.Slug),
		slog.String("service", service),
		slog.String("scope", scope),
		"error", e,
	)
	return nil, e
}

// errorSink собирает ошибки параллельных подзапросов.
type errorSink struct {
	mu   sync.Mutex
	errs []upstream.Error
}

func (s *errorSink) add(e *upstream.Error) {
	if e == nil {
		return
	}
	s.mu.Lock()
	s.errs = append(s.errs, *e)
	s.mu.Unlock()
}

// sorted возвращает собранные ошибки в стабильном порядке.
func (s *errorSink) sorted() []upstream.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.errs) == 0 {
		return nil
	}
	out := append([]upstream.Error(nil), s.errs...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Scope != out[j].Scope {
			return out[i].Scope < out[j].Scope
		}
		return out[i].Field < out[j].Field
	})
	return out
}
