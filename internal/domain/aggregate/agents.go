package aggregate

import (
	"context"

	"fleetreport/internal/domain/shape"
	"fleetreport/internal/domain/snapshot"
	"fleetreport/internal/domain/upstream"

	"golang.org/x/sync/errgroup"
)

// collectAgents сворачивает список агентов в один виртуальный клиент и отдельно
// возвращает общий список угроз.
func (a *Aggregator) collectAgents(ctx context.Context, src Source) (snapshot.Provider, []snapshot.Record, *upstream.Error) {
	p := snapshot.Provider{
		Slug:     src.Slug,
		Name:     src.Name,
		Metadata: snapshot.Record{},
		Clients:  []snapshot.Client{},
		Extras:   map[string]*snapshot.DeviceExtras{},
	}

	var (
		threatsPayload, agentsPayload any
		threatsErr, agentsErr         *upstream.Error
	)

	var g errgroup.Group
	g.Go(func() error {
		threatsPayload, threatsErr = a.fetch(ctx, src, upstream.Threats, nil, "provider", "threats")
		return nil
	})
	g.Go(func() error {
		agentsPayload, agentsErr = a.fetch(ctx, src, upstream.Agents, nil, "provider", "agents")
		return nil
	})
	_ = g.Wait()

	threats := []snapshot.Record{}
	if threatsErr == nil {
		threats = shape.List(shape.Dig(threatsPayload, "data"), shape.Drop)
	} else {
		p.Errors = append(p.Errors, *threatsErr)
	}

	if agentsErr != nil {
		p.Error = agentsErr
		return p, threats, threatsErr
	}
	p.Available = true

	roster := shape.List(shape.Dig(agentsPayload, "data"), shape.WrapDevice)
	if len(roster) == 0 {
		return p, threats, threatsErr
	}

	devices := make([]snapshot.Device, 0, len(roster))
	for _, r := range roster {
		if d, ok := agentDevice(r); ok {
			devices = append(devices, d)
		}
	}

	p.Clients = append(p.Clients, snapshot.Client{
		ID:            a.config.AgentsClientID,
		Name:          a.config.AgentsClientName,
		Virtual:       true,
		Raw:           snapshot.Record{},
		Sites:         []snapshot.Site{},
		Devices:       devices,
		FailingChecks: []snapshot.FailingCheck{},
	})

	return p, threats, threatsErr
}

func agentDevice(r shape.Record) (snapshot.Device, bool) {
	id := shape.String(r, "id", "uuid")
	if id == "" {
		return snapshot.Device{}, false
	}
	name := shape.String(r, "computerName", "name")
	if name == "" {
		name = id
	}
	status := shape.String(r, "threatsStatus", "networkStatus", "status")
	if status == "" {
		status = "unknown"
	}
	return snapshot.Device{
		Type:       snapshot.DeviceWorkstation,
		ExternalID: id,
		Name:       name,
		Status:     status,
		Username:   shape.String(r, "domain", "username"),
		Raw:        r,
	}, true
}
