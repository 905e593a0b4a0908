package sync

import (
	"context"
	"errors"

	"fleetreport/internal/domain/sync"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

type Handler struct {
	service    sync.Runner
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service sync.Runner, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.runOp(), h.run)
}

func (h *Handler) run(ctx context.Context, _ *runInput) (*runOutput, error) {
	snap, report, err := h.service.Run(ctx)

	var fatal *sync.FatalRunError
	switch {
	case err == nil:
	case errors.Is(err, sync.ErrInProgress):
		return nil, huma.Error409Conflict(err.Error())
	case errors.As(err, &fatal):
		h.log.Error("sync run failed", "reason", fatal.Reason, "error", fatal.Err)
		return nil, huma.Error502BadGateway(fatal.Reason)
	default:
		h.log.Error("sync run failed", "error", err)
		return nil, huma.Error500InternalServerError("sync run failed")
	}

	return &runOutput{
		Body: RunResponse{Status: "Ok", Report: report, Snapshot: snap},
	}, nil
}
