package reporting

import (
	"context"

	"fleetreport/internal/app/server/api/http/access"
	"fleetreport/internal/app/server/api/http/middleware/logger"
	"fleetreport/internal/domain/report"
	"fleetreport/internal/domain/scope"
	"fleetreport/internal/domain/snapshot"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Reader - читающая сторона сервиса отчетов.
type Reader interface {
	Snapshot(ctx context.Context) (*snapshot.Snapshot, error)
	DeviceExtra(ctx context.Context, sc scope.Scope, deviceID string, kind snapshot.ExtraKind) (snapshot.Record, error)
}

type Handler struct {
	reader     Reader
	resolver   access.Resolver
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(reader Reader, resolver access.Resolver, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		reader:     reader,
		resolver:   resolver,
		log:        log,
		middleware: middleware,
	}
}

type recordView func(*snapshot.Snapshot, scope.Scope) []snapshot.Record

func (h *Handler) SetupRoutes(api huma.API) {
	for _, v := range []struct {
		id, path, summary string
		view              recordView
	}{
		{"list-servers", "servers", "List servers", report.Servers},
		{"list-workstations", "workstations", "List workstations", report.Workstations},
		{"list-devices", "devices", "List devices", report.Devices},
		{"list-agentless", "agentless", "List agentless assets", report.AgentlessAssets},
		{"list-backups", "backups", "List backups", none},
		{"list-tickets", "tickets", "List tickets", none},
	} {
		huma.Register(api, h.listOp(v.id, v.path, v.summary), h.records(v.view))
	}

	huma.Register(api, h.listOp("list-clients", "clients", "List clients"), h.clients)
	huma.Register(api, h.listOp("list-sites", "sites", "List sites"), h.sites)
	huma.Register(api, h.listOp("list-failing-checks", "checks", "List failing checks"), h.checks)
	huma.Register(api, h.listOp("list-outages", "outages", "List outages"), h.outages)
	huma.Register(api, h.deviceExtraOp(), h.deviceExtra)
	huma.Register(api, h.siteAgentlessOp(), h.siteAgentless)
	huma.Register(api, h.antivirusOp(), h.antivirus)
	huma.Register(api, h.summaryOp(), h.summary)
}

// none обслуживает коллекции, у которых пока нет источника.
func none(*snapshot.Snapshot, scope.Scope) []snapshot.Record {
	return []snapshot.Record{}
}

// view определяет область видимости до обращения к снапшоту.
func (h *Handler) view(ctx context.Context, p access.Params) (*snapshot.Snapshot, scope.Scope, error) {
	sc, err := access.Scope(ctx, h.resolver, p)
	if err != nil {
		return nil, scope.Scope{}, err
	}
	snap, err := h.reader.Snapshot(ctx)
	if err != nil {
		h.log.Error("failed to load snapshot", "error", err)
		return nil, scope.Scope{}, huma.Error502BadGateway("failed to load report data")
	}
	logger.Annotate(ctx, slog.String("snapshot_id", snap.ID))
	return snap, sc, nil
}

func (h *Handler) records(view recordView) func(context.Context, *listInput) (*recordsOutput, error) {
	return func(ctx context.Context, input *listInput) (*recordsOutput, error) {
		snap, sc, err := h.view(ctx, input.Params)
		if err != nil {
			return nil, err
		}
		return &recordsOutput{Body: view(snap, sc)}, nil
	}
}

func (h *Handler) clients(ctx context.Context, input *listInput) (*clientsOutput, error) {
	snap, sc, err := h.view(ctx, input.Params)
	if err != nil {
		return nil, err
	}
	return &clientsOutput{Body: report.Clients(snap, sc)}, nil
}

func (h *Handler) sites(ctx context.Context, input *listInput) (*sitesOutput, error) {
	snap, sc, err := h.view(ctx, input.Params)
	if err != nil {
		return nil, err
	}
	return &sitesOutput{Body: report.Sites(snap, sc)}, nil
}

func (h *Handler) checks(ctx context.Context, input *listInput) (*checksOutput, error) {
	snap, sc, err := h.view(ctx, input.Params)
	if err != nil {
		return nil, err
	}
	return &checksOutput{Body: report.FailingChecks(snap, sc)}, nil
}

func (h *Handler) outages(ctx context.Context, input *outagesInput) (*recordsOutput, error) {
	snap, sc, err := h.view(ctx, input.Params)
	if err != nil {
		return nil, err
	}
	return &recordsOutput{Body: report.Outages(snap, sc, input.Status)}, nil
}

func (h *Handler) deviceExtra(ctx context.Context, input *deviceExtraInput) (*extraOutput, error) {
	kind, ok := snapshot.ParseExtraKind(input.Kind)
	if !ok {
		return nil, huma.Error400BadRequest("unknown extra kind " + input.Kind)
	}
	sc, err := access.Scope(ctx, h.resolver, input.Params)
	if err != nil {
		return nil, err
	}

	payload, err := h.reader.DeviceExtra(ctx, sc, input.DeviceID, kind)
	if err != nil {
		h.log.Error("failed to load device extra", "device_id", input.DeviceID, "kind", kind, "error", err)
		return nil, huma.Error502BadGateway("failed to load device data")
	}
	return &extraOutput{Body: payload}, nil
}

func (h *Handler) siteAgentless(ctx context.Context, input *siteInput) (*recordsOutput, error) {
	snap, sc, err := h.view(ctx, input.Params)
	if err != nil {
		return nil, err
	}
	return &recordsOutput{Body: report.SiteAgentlessAssets(snap, sc, input.SiteID)}, nil
}

func (h *Handler) antivirus(ctx context.Context, input *listInput) (*recordsOutput, error) {
	snap, _, err := h.view(ctx, input.Params)
	if err != nil {
		return nil, err
	}
	return &recordsOutput{Body: report.AntivirusProducts(snap)}, nil
}

func (h *Handler) summary(ctx context.Context, input *listInput) (*summaryOutput, error) {
	snap, sc, err := h.view(ctx, input.Params)
	if err != nil {
		return nil, err
	}
	return &summaryOutput{Body: report.Summarize(snap, sc)}, nil
}
