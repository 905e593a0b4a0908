// Package transport - общий для адаптеров провайдеров HTTP-транспорт с
// ограничением частоты. Ошибки возвращаются как структурированные ошибки
// апстрима.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"fleetreport/internal/domain/upstream"

	"golang.org/x/exp/slog"
	"golang.org/x/time/rate"
)

// maxBody ограничивает размер одного ответа апстрима.
const maxBody = 64 << 20

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
	RPS     float64
	Burst   int
}

type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

func New(cfg Config, log *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
		limiter: rate.NewLimiter(limit, cfg.Burst),
		log:     log,
	}
}

// Get ждет токен лимитера, выполняет запрос и возвращает тело ответа 2xx.
func (c *Client) Get(ctx context.Context, service, url string, header http.Header) ([]byte, *upstream.Error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fail(upstream.KindTransport, service, "rate limiter: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fail(upstream.KindTransport, service, "build request: %v", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fail(upstream.KindTransport, service, "%v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fail(upstream.KindTransport, service, "read body: %v", err)
	}

	c.log.Debug("upstream call",
		slog.String("service", service),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fail(upstream.KindStatus, service, "unexpected status %d", resp.StatusCode)
	}
	return body, nil
}

func fail(kind upstream.Kind, service, format string, args ...any) *upstream.Error {
	return &upstream.Error{Kind: kind, Service: service, Message: fmt.Sprintf(format, args...)}
}
