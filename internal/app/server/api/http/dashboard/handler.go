package dashboard

import (
	"context"

	"fleetreport/internal/app/server/api/http/access"
	"fleetreport/internal/domain/report"
	"fleetreport/internal/domain/scope"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

type CustomerLister interface {
	Customers(ctx context.Context, sc scope.Scope) ([]report.Customer, error)
}

type Handler struct {
	customers  CustomerLister
	resolver   access.Resolver
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(customers CustomerLister, resolver access.Resolver, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		customers:  customers,
		resolver:   resolver,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.customersOp(), h.listCustomers)
}

func (h *Handler) listCustomers(ctx context.Context, input *customersInput) (*customersOutput, error) {
	sc, err := access.Scope(ctx, h.resolver, input.Params)
	if err != nil {
		return nil, err
	}

	customers, err := h.customers.Customers(ctx, sc)
	if err != nil {
		h.log.Error("failed to build customer list", "error", err)
		return nil, huma.Error502BadGateway("failed to load customers")
	}
	return &customersOutput{Body: customers}, nil
}
