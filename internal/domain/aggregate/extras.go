package aggregate

import (
	"context"

	"fleetreport/internal/domain/shape"
	"fleetreport/internal/domain/snapshot"
	"fleetreport/internal/domain/upstream"

	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

var extraServices = map[snapshot.ExtraKind]struct {
	service string
	param   string
}{
	snapshot.ExtraChecks:             {service: upstream.ListChecks, param: "deviceid"},
	snapshot.ExtraOutages:            {service: upstream.ListOutages, param: "deviceid"},
	snapshot.ExtraPerformanceHistory: {service: upstream.ListPerformanceHistory, param: "deviceid"},
	snapshot.ExtraExchangeStorage:    {service: upstream.ListExchangeStorageHistory, param: "deviceid"},
	snapshot.ExtraHardware:           {service: upstream.ListAllHardware, param: "assetid"},
	snapshot.ExtraSoftware:           {service: upstream.ListAllSoftware, param: "assetid"},
}

type deviceRef struct {
	id       string
	clientID string
}

// extras запрашивает шесть наборов данных по устройству, не более чем для
// MaxDevices устройств. Каждый вызов (device, kind) независим.
func (a *Aggregator) extras(ctx context.Context, src Source, clients []snapshot.Client) map[string]*snapshot.DeviceExtras {
	refs := a.pickDevices(clients)
	out := make(map[string]*snapshot.DeviceExtras, len(refs))
	if len(refs) == 0 {
		return out
	}

	kinds := snapshot.ExtraKinds
	payloads := make([][]snapshot.Record, len(refs))
	errs := make([][]*upstream.Error, len(refs))

	var g errgroup.Group
	for i, ref := range refs {
		payloads[i] = make([]snapshot.Record, len(kinds))
		errs[i] = make([]*upstream.Error, len(kinds))
		for j, kind := range kinds {
			svc := extraServices[kind]
			g.Go(func() error {
				payload, err := a.fetch(ctx, src, svc.service, upstream.Params{svc.param: ref.id}, "device:"+ref.id, string(kind))
				if err != nil {
					errs[i][j] = err
					return nil
				}
				payloads[i][j] = asRecord(payload)
				return nil
			})
		}
	}
	_ = g.Wait()

	failed := 0
	for i, ref := range refs {
		e := &snapshot.DeviceExtras{
			ClientID: ref.clientID,
			Payloads: map[snapshot.ExtraKind]snapshot.Record{},
		}
		for j, kind := range kinds {
			if errs[i][j] != nil {
				if e.Errors == nil {
					e.Errors = map[snapshot.ExtraKind]*upstream.Error{}
				}
				e.Errors[kind] = errs[i][j]
				failed++
				continue
			}
			e.Payloads[kind] = payloads[i][j]
		}
		out[ref.id] = e
	}

	a.log.Debug("device extras fetched",
		slog.String("provider", src.Slug),
		slog.Int("devices", len(refs)),
		slog.Int("failed_calls", failed),
	)
	return out
}

// pickDevices возвращает уникальные id устройств в порядке клиентов с
// ограничением.
func (a *Aggregator) pickDevices(clients []snapshot.Client) []deviceRef {
	seen := make(map[string]struct{})
	var refs []deviceRef
	for _, c := range clients {
		for _, id := range c.DeviceIDs() {
			if len(refs) >= a.config.MaxDevices {
				return refs
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			refs = append(refs, deviceRef{id: id, clientID: c.ID})
		}
	}
	return refs
}

// asRecord оставляет объекты как есть, а все остальное кладет под "data".
func asRecord(payload any) snapshot.Record {
	if m := shape.Map(payload); m != nil {
		return m
	}
	return snapshot.Record{"data": payload}
}
