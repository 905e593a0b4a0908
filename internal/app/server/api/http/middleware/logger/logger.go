package logger

import (
	"context"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Logger пишет одну строку access-лога на запрос.
type Logger struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Logger {
	return &Logger{
		log: log.With(slog.String("component", "http_logger")),
	}
}

type contextKey struct{}

// fields собирает атрибуты, добавленные дальше по цепочке.
type fields struct {
	mu    sync.Mutex
	attrs []slog.Attr
}

// Annotate добавляет attrs в строку access-лога запроса из ctx. Вне middleware
// ничего не делает.
func Annotate(ctx context.Context, attrs ...slog.Attr) {
	f, ok := ctx.Value(contextKey{}).(*fields)
	if !ok {
		return
	}
	f.mu.Lock()
	f.attrs = append(f.attrs, attrs...)
	f.mu.Unlock()
}

func (l *Logger) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()
		f := &fields{}
		attrs := []slog.Attr{
			slog.String("method", ctx.Method()),
			slog.String("path", ctx.URL().Path),
			slog.String("remote_addr", ctx.RemoteAddr()),
		}
		if op := ctx.Operation(); op != nil && op.OperationID != "" {
			attrs = append(attrs, slog.String("operation", op.OperationID))
		}

		next(huma.WithValue(ctx, contextKey{}, f))

		status := ctx.Status()
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelWarn
		}
		attrs = append(attrs,
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
		)
		f.mu.Lock()
		attrs = append(attrs, f.attrs...)
		f.mu.Unlock()
		// Share-токены приходят в query-строке и в лог не попадают.
		l.log.LogAttrs(ctx.Context(), level, "HTTP request", attrs...)
	}
}
