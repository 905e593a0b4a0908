package aggregate

import (
	"context"

	"fleetreport/internal/domain/shape"
	"fleetreport/internal/domain/snapshot"
	"fleetreport/internal/domain/upstream"

	"golang.org/x/sync/errgroup"
)

// deviceListings - запросы устройств на уровне клиента; мобильные устройства
// идут вместе с рабочими станциями.
var deviceListings = []struct {
	param string
	typ   snapshot.DeviceType
}{
	{param: "server", typ: snapshot.DeviceServer},
	{param: "workstation", typ: snapshot.DeviceWorkstation},
	{param: "mobile_device", typ: snapshot.DeviceWorkstation},
}

func (a *Aggregator) collectRMM(ctx context.Context, src Source) snapshot.Provider {
	p := snapshot.Provider{
		Slug:     src.Slug,
		Name:     src.Name,
		Metadata: snapshot.Record{},
		Clients:  []snapshot.Client{},
		Extras:   map[string]*snapshot.DeviceExtras{},
	}

	payload, ferr := a.fetch(ctx, src, upstream.ListClients, nil, "provider", "clients")
	if ferr != nil {
		p.Error = ferr
		return p
	}
	p.Available = true

	raw := items(payload, "client", shape.Drop)
	p.Clients = make([]snapshot.Client, len(raw))

	var sink errorSink
	var g errgroup.Group
	g.Go(func() error {
		av, err := a.fetch(ctx, src, upstream.ListSupportedAVProducts, nil, "provider", "antivirus_products")
		if err != nil {
			sink.add(err)
			return nil
		}
		p.Metadata["antivirus_products"] = shape.Unwrap(shape.Dig(av, "result", "items"), shape.Drop)
		return nil
	})
	for i, rc := range raw {
		g.Go(func() error {
			p.Clients[i] = a.client(ctx, src, rc)
			return nil
		})
	}
	_ = g.Wait()

	p.Errors = sink.sorted()
	p.Extras = a.extras(ctx, src, p.Clients)

	return p
}

func (a *Aggregator) client(ctx context.Context, src Source, raw shape.Record) snapshot.Client {
	c := snapshot.Client{
		ID:                shape.String(raw, "clientid", "id"),
		Name:              shape.String(raw, "name"),
		CreationDate:      shape.String(raw, "creation_date"),
		DeviceCount:       shape.Int(raw, "device_count"),
		ServerCount:       shape.Int(raw, "server_count"),
		WorkstationCount:  shape.Int(raw, "workstation_count"),
		MobileDeviceCount: shape.Int(raw, "mobile_device_count"),
		Timezone:          shape.String(raw, "timezone"),
		ViewDashboard:     shape.String(raw, "view_dashboard"),
		ViewWkstsnAssets:  shape.String(raw, "view_wkstsn_assets"),
		DashboardUsername: shape.String(raw, "dashboard_username"),
		Raw:               raw,
		Sites:             []snapshot.Site{},
		Devices:           []snapshot.Device{},
		FailingChecks:     []snapshot.FailingCheck{},
	}
	scope := "client:" + c.ID

	var sink errorSink
	deviceLists := make([][]snapshot.Device, len(deviceListings))

	var g errgroup.Group
	g.Go(func() error {
		c.Sites = a.sites(ctx, src, c.ID, &sink)
		return nil
	})
	for i, dl := range deviceListings {
		g.Go(func() error {
			payload, err := a.fetch(ctx, src, upstream.ListDevicesAtClient,
				upstream.Params{"clientid": c.ID, "devicetype": dl.param}, scope, "devices."+dl.param)
			if err != nil {
				sink.add(err)
				return nil
			}
			deviceLists[i] = devicesAtClient(shape.Dig(payload, "result", "items"), dl.param, dl.typ)
			return nil
		})
	}
	g.Go(func() error {
		payload, err := a.fetch(ctx, src, upstream.ListFailingChecks,
			upstream.Params{"clientid": c.ID, "check_type": "random"}, scope, "failing_checks")
		if err != nil {
			sink.add(err)
			return nil
		}
		c.FailingChecks = failingChecks(shape.Dig(payload, "result", "items"))
		return nil
	})
	_ = g.Wait()

	for _, list := range deviceLists {
		c.Devices = append(c.Devices, list...)
	}
	c.Errors = sink.sorted()

	return c
}

func (a *Aggregator) sites(ctx context.Context, src Source, clientID string, sink *errorSink) []snapshot.Site {
	payload, err := a.fetch(ctx, src, upstream.ListSites, upstream.Params{"clientid": clientID}, "client:"+clientID, "sites")
	if err != nil {
		sink.add(err)
		return []snapshot.Site{}
	}

	raw := items(payload, "site", shape.Drop)
	sites := make([]snapshot.Site, len(raw))

	var g errgroup.Group
	for i, rs := range raw {
		id := shape.String(rs, "siteid", "id")
		name := shape.String(rs, "name")
		if name == "" {
			name = id
		}
		sites[i] = snapshot.Site{
			ID:              id,
			Name:            name,
			ConnectionOK:    shape.String(rs, "connection_ok"),
			CreationDate:    shape.String(rs, "creation_date"),
			Servers:         []snapshot.Record{},
			Workstations:    []snapshot.Record{},
			AgentlessAssets: []snapshot.Record{},
			Raw:             shape.Without(rs, "siteid", "id", "name", "connection_ok", "creation_date"),
		}
		if id == "" {
			continue
		}

		var siteSink errorSink
		site := &sites[i]
		scope := "site:" + id
		params := upstream.Params{"siteid": id}
		var sg errgroup.Group
		sg.Go(func() error {
			if payload, err := a.fetch(ctx, src, upstream.ListServers, params, scope, "servers"); err != nil {
				siteSink.add(err)
			} else {
				site.Servers = items(payload, "server", shape.WrapDevice)
			}
			return nil
		})
		sg.Go(func() error {
			if payload, err := a.fetch(ctx, src, upstream.ListWorkstations, params, scope, "workstations"); err != nil {
				siteSink.add(err)
			} else {
				site.Workstations = items(payload, "workstation", shape.WrapDevice)
			}
			return nil
		})
		sg.Go(func() error {
			if payload, err := a.fetch(ctx, src, upstream.ListAgentlessAssets, params, scope, "agentless_assets"); err != nil {
				siteSink.add(err)
			} else {
				site.AgentlessAssets = items(payload, "agentless_asset", shape.Drop)
			}
			return nil
		})
		g.Go(func() error {
			_ = sg.Wait()
			site.Errors = siteSink.sorted()
			return nil
		})
	}
	_ = g.Wait()

	return sites
}

// items читает result.items.<elem>, иначе берет безымянный контейнер.
func items(payload any, elem string, p shape.Policy) []shape.Record {
	node := shape.Dig(payload, "result", "items")
	if m, ok := node.(map[string]any); ok {
		if v, ok := m[elem]; ok {
			return shape.List(v, p)
		}
	}
	return shape.Unwrap(node, p)
}

// devicesAtClient читает {client: {site: {<type>: one|many}}}, иначе берет
// плоский список устройств.
func devicesAtClient(node any, param string, typ snapshot.DeviceType) []snapshot.Device {
	devices := []snapshot.Device{}

	if clients := shape.Dig(node, "client"); clients != nil {
		for _, cl := range shape.List(clients, shape.Drop) {
			for _, site := range shape.List(cl["site"], shape.Drop) {
				siteID := shape.String(site, "id", "siteid")
				v, ok := site[param]
				if !ok {
					v = site[string(typ)]
				}
				for _, r := range shape.List(v, shape.WrapDevice) {
					if d, ok := snapshot.NewDevice(r, typ, siteID); ok {
						devices = append(devices, d)
					}
				}
			}
		}
		return devices
	}

	var flat any = node
	if m, ok := node.(map[string]any); ok {
		if v, ok := m[param]; ok {
			flat = v
		} else if shape.String(m, "id", "deviceid") == "" {
			flat = nil
		}
	}
	for _, r := range shape.List(flat, shape.WrapDevice) {
		if d, ok := snapshot.NewDevice(r, typ, ""); ok {
			devices = append(devices, d)
		}
	}
	return devices
}
