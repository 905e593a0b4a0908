package snapshot

import "fleetreport/internal/domain/shape"

// AllProvidersFailed сообщает, потеряли ли все настроенные провайдеры список
// верхнего уровня. Снапшот без провайдеров тоже считается упавшим.
func (s *Snapshot) AllProvidersFailed() bool {
	for _, p := range s.Providers {
		if p.Available {
			return false
		}
	}
	return true
}

func (s *Snapshot) ThreatCount() int {
	return len(s.Threats)
}

// AgentCount считает устройства виртуальных клиентов (списков агентов).
func (s *Snapshot) AgentCount() int {
	n := 0
	for _, p := range s.Providers {
		for _, c := range p.Clients {
			if c.Virtual {
				n += len(c.Devices)
			}
		}
	}
	return n
}

// Provider возвращает провайдера с данным slug.
func (s *Snapshot) Provider(slug string) (*Provider, bool) {
	for i := range s.Providers {
		if s.Providers[i].Slug == slug {
			return &s.Providers[i], true
		}
	}
	return nil, false
}

// Extra ищет сохраненные данные устройства по всем провайдерам.
func (s *Snapshot) Extra(deviceID string, kind ExtraKind) (Record, bool) {
	for _, p := range s.Providers {
		if e, ok := p.Extras[deviceID]; ok && e != nil {
			if payload, ok := e.Payloads[kind]; ok {
				return payload, true
			}
		}
	}
	return nil, false
}

// DeviceIDs возвращает уникальные id устройств клиента в порядке появления:
// сначала устройства уровня клиента, затем серверы и рабочие станции площадок.
func (c *Client) DeviceIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, d := range c.Devices {
		add(d.ExternalID)
	}
	for _, site := range c.Sites {
		for _, r := range site.Servers {
			add(RecordID(r))
		}
		for _, r := range site.Workstations {
			add(RecordID(r))
		}
	}
	return ids
}

// RecordID возвращает идентификатор сырой записи устройства.
func RecordID(r Record) string {
	return shape.String(r, "id", "deviceid")
}

// NewDevice строит устройство из сырой записи. Записи без идентификатора
// отбрасываются.
func NewDevice(r Record, typ DeviceType, siteID string) (Device, bool) {
	id := RecordID(r)
	if id == "" {
		return Device{}, false
	}
	name := shape.String(r, "name", "device_name")
	if name == "" {
		name = id
	}
	status := shape.String(r, "status")
	if status == "" {
		status = "unknown"
	}
	return Device{
		Type:        typ,
		SiteID:      siteID,
		ExternalID:  id,
		Name:        name,
		Status:      status,
		Username:    shape.String(r, "username"),
		Description: shape.String(r, "description"),
		Raw:         r,
	}, true
}

// Truncate обрезает s до n рун.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
