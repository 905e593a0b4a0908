package report

import (
	"fleetreport/internal/domain/scope"
	"fleetreport/internal/domain/shape"
	"fleetreport/internal/domain/snapshot"
)

// visible обходит всех видимых в области клиентов по всем провайдерам.
func visible(snap *snapshot.Snapshot, sc scope.Scope, fn func(p *snapshot.Provider, c *snapshot.Client)) {
	if snap == nil {
		return
	}
	for i := range snap.Providers {
		p := &snap.Providers[i]
		for j := range p.Clients {
			c := &p.Clients[j]
			if sc.Match(c.ID, c.Name) {
				fn(p, c)
			}
		}
	}
}

func eachSite(snap *snapshot.Snapshot, sc scope.Scope, fn func(s *snapshot.Site)) {
	visible(snap, sc, func(_ *snapshot.Provider, c *snapshot.Client) {
		for i := range c.Sites {
			fn(&c.Sites[i])
		}
	})
}

func Clients(snap *snapshot.Snapshot, sc scope.Scope) []snapshot.Client {
	out := []snapshot.Client{}
	visible(snap, sc, func(_ *snapshot.Provider, c *snapshot.Client) {
		out = append(out, *c)
	})
	return out
}

func Sites(snap *snapshot.Snapshot, sc scope.Scope) []snapshot.Site {
	out := []snapshot.Site{}
	eachSite(snap, sc, func(s *snapshot.Site) {
		out = append(out, *s)
	})
	return out
}

func Servers(snap *snapshot.Snapshot, sc scope.Scope) []snapshot.Record {
	out := []snapshot.Record{}
	eachSite(snap, sc, func(s *snapshot.Site) {
		out = append(out, s.Servers...)
	})
	return out
}

func Workstations(snap *snapshot.Snapshot, sc scope.Scope) []snapshot.Record {
	out := []snapshot.Record{}
	eachSite(snap, sc, func(s *snapshot.Site) {
		out = append(out, s.Workstations...)
	})
	return out
}

func AgentlessAssets(snap *snapshot.Snapshot, sc scope.Scope) []snapshot.Record {
	out := []snapshot.Record{}
	eachSite(snap, sc, func(s *snapshot.Site) {
		out = append(out, s.AgentlessAssets...)
	})
	return out
}

// Devices перечисляет устройства уровня клиента, затем серверы, рабочие станции
// и безагентные активы каждой площадки.
func Devices(snap *snapshot.Snapshot, sc scope.Scope) []snapshot.Record {
	out := []snapshot.Record{}
	visible(snap, sc, func(_ *snapshot.Provider, c *snapshot.Client) {
		for _, d := range c.Devices {
			out = append(out, deviceRecord(d))
		}
		for _, s := range c.Sites {
			out = append(out, s.Servers...)
			out = append(out, s.Workstations...)
			out = append(out, s.AgentlessAssets...)
		}
	})
	return out
}

func deviceRecord(d snapshot.Device) snapshot.Record {
	if len(d.Raw) > 0 {
		return d.Raw
	}
	r := snapshot.Record{"id": d.ExternalID, "name": d.Name, "device_type": string(d.Type)}
	if d.Status != "" {
		r["status"] = d.Status
	}
	return r
}

func FailingChecks(snap *snapshot.Snapshot, sc scope.Scope) []snapshot.FailingCheck {
	out := []snapshot.FailingCheck{}
	visible(snap, sc, func(_ *snapshot.Provider, c *snapshot.Client) {
		out = append(out, c.FailingChecks...)
	})
	return out
}

// Outages объединяет сбои из записей устройств площадок с наборами сбоев по
// устройствам. Пустой статус оставляет все.
func Outages(snap *snapshot.Snapshot, sc scope.Scope, status string) []snapshot.Record {
	out := []snapshot.Record{}
	add := func(r snapshot.Record) {
		if status == "" || shape.String(r, "status") == status {
			out = append(out, r)
		}
	}

	visible(snap, sc, func(p *snapshot.Provider, c *snapshot.Client) {
		for _, s := range c.Sites {
			for _, list := range [][]snapshot.Record{s.Servers, s.Workstations} {
				for _, dev := range list {
					for _, o := range shape.List(dev["outages"], shape.Drop) {
						add(o)
					}
				}
			}
		}
		for _, id := range c.DeviceIDs() {
			e, ok := p.Extras[id]
			if !ok || e == nil || e.ClientID != c.ID {
				continue
			}
			for _, o := range extraItems(e.Payloads[snapshot.ExtraOutages]) {
				tagged := shape.Without(o)
				tagged["device_id"] = id
				add(tagged)
			}
		}
	})
	return out
}

// extraItems разворачивает result.items сохраненных данных устройства.
func extraItems(payload snapshot.Record) []snapshot.Record {
	if payload == nil {
		return []snapshot.Record{}
	}
	if res, ok := payload["result"]; ok {
		return shape.Unwrap(shape.Dig(res, "items"), shape.Drop)
	}
	if data, ok := payload["data"]; ok {
		return shape.List(data, shape.Drop)
	}
	if len(payload) == 0 {
		return []snapshot.Record{}
	}
	return []snapshot.Record{payload}
}

// DeviceExtra возвращает данные одного набора для видимого устройства.
func DeviceExtra(snap *snapshot.Snapshot, sc scope.Scope, deviceID string, kind snapshot.ExtraKind) (snapshot.Record, bool) {
	var found snapshot.Record
	ok := false
	visible(snap, sc, func(p *snapshot.Provider, c *snapshot.Client) {
		if ok {
			return
		}
		if e, has := p.Extras[deviceID]; has && e != nil && e.ClientID == c.ID {
			found, ok = e.Payloads[kind]
		}
	})
	return found, ok
}

// HasDevice сообщает, есть ли устройство у видимого клиента.
func HasDevice(snap *snapshot.Snapshot, sc scope.Scope, deviceID string) bool {
	seen := false
	visible(snap, sc, func(_ *snapshot.Provider, c *snapshot.Client) {
		if seen {
			return
		}
		for _, id := range c.DeviceIDs() {
			if id == deviceID {
				seen = true
				return
			}
		}
	})
	return seen
}

// SiteAgentlessAssets возвращает активы одной видимой площадки.
func SiteAgentlessAssets(snap *snapshot.Snapshot, sc scope.Scope, siteID string) []snapshot.Record {
	out := []snapshot.Record{}
	eachSite(snap, sc, func(s *snapshot.Site) {
		if s.ID == siteID {
			out = append(out, s.AgentlessAssets...)
		}
	})
	return out
}

// AntivirusProducts собирает каталоги поддерживаемых продуктов всех
// провайдеров.
func AntivirusProducts(snap *snapshot.Snapshot) []snapshot.Record {
	out := []snapshot.Record{}
	if snap == nil {
		return out
	}
	for _, p := range snap.Providers {
		out = append(out, shape.List(p.Metadata["antivirus_products"], shape.Drop)...)
	}
	return out
}

type Summary struct {
	ClientsCount int             `json:"clients_count"`
	AgentsCount  int             `json:"agents_count"`
	Providers    map[string]bool `json:"providers"`
}

func Summarize(snap *snapshot.Snapshot, sc scope.Scope) Summary {
	s := Summary{Providers: map[string]bool{}}
	if snap == nil {
		return s
	}
	for _, p := range snap.Providers {
		s.Providers[p.Slug] = p.Available
	}
	visible(snap, sc, func(_ *snapshot.Provider, c *snapshot.Client) {
		if c.Virtual {
			s.AgentsCount += len(c.Devices)
			return
		}
		s.ClientsCount++
	})
	return s
}
