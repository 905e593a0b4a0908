package store

import (
	"time"

	"fleetreport/internal/domain/snapshot"
)

// Строки - вид канонической модели для хранилища. Естественные ключи - обычные
// строки; пустой SiteRef или DeviceRef означает "нет".

type Provider struct {
	Slug     string
	Name     string
	Metadata []byte
}

type Client struct {
	ProviderID        int64
	Ref               string
	Name              string
	CreationDate      string
	DeviceCount       *int
	ServerCount       *int
	WorkstationCount  *int
	MobileDeviceCount *int
	Timezone          string
	ViewDashboard     string
	ViewWkstsnAssets  string
	DashboardUsername string
	Raw               []byte
}

type Site struct {
	ClientID     int64
	Ref          string
	Name         string
	ConnectionOK string
	CreationDate string
	Raw          []byte
}

type Device struct {
	ClientID    int64
	SiteID      *int64
	SiteRef     string
	ExternalID  string
	Type        snapshot.DeviceType
	Name        string
	Status      string
	Username    string
	Description string
	Raw         []byte
}

type FailingCheck struct {
	ClientID    int64
	DeviceID    *int64
	DeviceRef   string
	StartDate   string
	StartTime   string
	Description string
	Raw         []byte
}

type DeviceExtra struct {
	DeviceID  int64
	Kind      snapshot.ExtraKind
	Payload   []byte
	UpdatedAt time.Time
}

// Run - одна неизменяемая запись SyncRun.
type Run struct {
	ID        string
	Payload   []byte
	CreatedAt time.Time
}
