// Package upstream задает контракт между агрегатором и адаптерами провайдеров:
// каждый вызов возвращает размеченный результат, а не Go-ошибку.
package upstream

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// Params - query-параметры одного вызова сервиса апстрима.
type Params map[string]string

// Fetcher реализуется каждым адаптером провайдера.
type Fetcher interface {
	Fetch(ctx context.Context, service string, params Params) Result
}

// Result - либо декодированные данные, либо структурированная ошибка.
type Result struct {
	Payload any
	Err     *Error
}

func (r Result) Ok() bool {
	return r.Err == nil
}

// Value оборачивает декодированные данные.
func Value(payload any) Result {
	return Result{Payload: payload}
}

// Fail оборачивает структурированную ошибку.
func Fail(kind Kind, service, format string, args ...any) Result {
	return Result{Err: &Error{Kind: kind, Service: service, Message: fmt.Sprintf(format, args...)}}
}

// Limit ограничивает число одновременных вызовов для всех, кто делит sem.
func Limit(f Fetcher, sem *semaphore.Weighted) Fetcher {
	return &limited{next: f, sem: sem}
}

type limited struct {
	next Fetcher
	sem  *semaphore.Weighted
}

func (l *limited) Fetch(ctx context.Context, service string, params Params) Result {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return Fail(KindTransport, service, "acquire upstream slot: %v", err)
	}
	defer l.sem.Release(1)

	return l.next.Fetch(ctx, service, params)
}

// FetcherFunc адаптирует функцию к Fetcher.
type FetcherFunc func(ctx context.Context, service string, params Params) Result

func (f FetcherFunc) Fetch(ctx context.Context, service string, params Params) Result {
	return f(ctx, service, params)
}
