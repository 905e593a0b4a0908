// Package snapshot содержит каноническую модель в памяти, которую строит один
// запуск агрегации. Все списочные поля - слайсы; неоднозначность формы дальше
// агрегатора не уходит.
package snapshot

import (
	"time"

	"fleetreport/internal/domain/shape"
	"fleetreport/internal/domain/upstream"
)

type Record = shape.Record

type DeviceType string

const (
	DeviceServer      DeviceType = "server"
	DeviceWorkstation DeviceType = "workstation"
)

type ExtraKind string

const (
	ExtraChecks             ExtraKind = "checks"
	ExtraOutages            ExtraKind = "outages"
	ExtraPerformanceHistory ExtraKind = "performance_history"
	ExtraExchangeStorage    ExtraKind = "exchange_storage"
	ExtraHardware           ExtraKind = "hardware"
	ExtraSoftware           ExtraKind = "software"
)

// ExtraKinds перечисляет наборы данных устройства в порядке запроса.
var ExtraKinds = []ExtraKind{
	ExtraChecks,
	ExtraOutages,
	ExtraPerformanceHistory,
	ExtraExchangeStorage,
	ExtraHardware,
	ExtraSoftware,
}

func ParseExtraKind(s string) (ExtraKind, bool) {
	for _, k := range ExtraKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

type Snapshot struct {
	ID           string          `json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	Providers    []Provider      `json:"providers"`
	Threats      []Record        `json:"threats"`
	ThreatsError *upstream.Error `json:"threats_error,omitempty"`
}

type Provider struct {
	Slug      string                   `json:"slug"`
	Name      string                   `json:"name"`
	Available bool                     `json:"available"`
	Error     *upstream.Error          `json:"error,omitempty"`
	Errors    []upstream.Error         `json:"errors,omitempty"`
	Metadata  Record                   `json:"raw_metadata"`
	Clients   []Client                 `json:"clients"`
	Extras    map[string]*DeviceExtras `json:"extras"`
}

type Client struct {
	ID                string           `json:"clientid"`
	Name              string           `json:"name"`
	CreationDate      string           `json:"creation_date,omitempty"`
	DeviceCount       *int             `json:"device_count,omitempty"`
	ServerCount       *int             `json:"server_count,omitempty"`
	WorkstationCount  *int             `json:"workstation_count,omitempty"`
	MobileDeviceCount *int             `json:"mobile_device_count,omitempty"`
	Timezone          string           `json:"timezone,omitempty"`
	ViewDashboard     string           `json:"view_dashboard,omitempty"`
	ViewWkstsnAssets  string           `json:"view_wkstsn_assets,omitempty"`
	DashboardUsername string           `json:"dashboard_username,omitempty"`
	Virtual           bool             `json:"virtual,omitempty"`
	Raw               Record           `json:"raw_data"`
	Sites             []Site           `json:"sites"`
	Devices           []Device         `json:"devices"`
	FailingChecks     []FailingCheck   `json:"failing_checks"`
	Errors            []upstream.Error `json:"errors,omitempty"`
}

type Site struct {
	ID              string           `json:"siteid"`
	Name            string           `json:"name"`
	ConnectionOK    string           `json:"connection_ok,omitempty"`
	CreationDate    string           `json:"creation_date,omitempty"`
	Servers         []Record         `json:"servers"`
	Workstations    []Record         `json:"workstations"`
	AgentlessAssets []Record         `json:"agentless_assets"`
	Raw             Record           `json:"raw_data"`
	Errors          []upstream.Error `json:"errors,omitempty"`
}

// Device - устройство из списка уровня клиента, возможно привязанное к
// площадке.
type Device struct {
	Type        DeviceType `json:"device_type"`
	SiteID      string     `json:"siteid,omitempty"`
	ExternalID  string     `json:"id"`
	Name        string     `json:"name"`
	Status      string     `json:"status,omitempty"`
	Username    string     `json:"username,omitempty"`
	Description string     `json:"description,omitempty"`
	Raw         Record     `json:"raw_data"`
}

type FailingCheck struct {
	DeviceID    string `json:"device_id"`
	DeviceName  string `json:"device_name"`
	DeviceType  string `json:"device_type"`
	SiteID      string `json:"siteid,omitempty"`
	Kind        string `json:"kind"`
	CheckID     string `json:"checkid,omitempty"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	StartTime   string `json:"start_time"`
	Raw         Record `json:"raw_data"`
}

// DeviceExtras хранит шесть дополнительных наборов данных одного устройства.
type DeviceExtras struct {
	ClientID string                        `json:"clientid"`
	Payloads map[ExtraKind]Record          `json:"payloads"`
	Errors   map[ExtraKind]*upstream.Error `json:"errors,omitempty"`
}
