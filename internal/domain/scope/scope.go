// Package scope решает, каких клиентов может видеть читатель.
package scope

import (
	"context"
	"fmt"
	"strings"

	"fleetreport/internal/domain/share"
	"fleetreport/internal/domain/user"

	"golang.org/x/exp/slog"
)

type Source string

const (
	SourceAll       Source = "all"
	SourceToken     Source = "token"
	SourcePrincipal Source = "principal"
	SourceFilter    Source = "filter"
)

// Scope ограничивает чтение клиентами, совпадающими с Customer, или ничем, если
// это нулевое значение неограниченного источника.
type Scope struct {
	Source   Source
	Customer string
}

// All - неограниченная область.
func All() Scope {
	return Scope{Source: SourceAll}
}

func (s Scope) IsAll() bool {
	return s.Source == SourceAll
}

// Match сообщает, виден ли клиент с данными id и именем.
func (s Scope) Match(id, name string) bool {
	if s.IsAll() {
		return true
	}
	want := normalize(s.Customer)
	if want == "" {
		return false
	}
	return normalize(id) == want || normalize(name) == want
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type Request struct {
	ShareToken string
	Principal  *user.Principal
	Filter     string
}

type Resolver struct {
	verifier share.Verifier
	log      *slog.Logger
}

func NewResolver(verifier share.Verifier, log *slog.Logger) *Resolver {
	return &Resolver{
		verifier: verifier,
		log:      log.With(slog.String("component", "scope")),
	}
}

// Resolve применяет по порядку токен, привязку принципала, явный фильтр и в
// конце неограниченную область. Непрошедший проверку токен отклоняет запрос, а
// не передает его дальше.
func (r *Resolver) Resolve(_ context.Context, req Request) (Scope, error) {
	if token := strings.TrimSpace(req.ShareToken); token != "" {
		claims, err := r.verifier.Verify(token)
		if err != nil {
			r.log.Debug("share token rejected", "error", err)
			return Scope{}, fmt.Errorf("%w: %v", ErrRejected, err)
		}
		return Scope{Source: SourceToken, Customer: claims.CustomerID}, nil
	}

	if req.Principal == nil {
		return Scope{}, ErrAnonymous
	}

	if c := strings.TrimSpace(req.Principal.CustomerID); c != "" {
		return Scope{Source: SourcePrincipal, Customer: c}, nil
	}

	if f := strings.TrimSpace(req.Filter); f != "" {
		return Scope{Source: SourceFilter, Customer: f}, nil
	}

	return All(), nil
}
