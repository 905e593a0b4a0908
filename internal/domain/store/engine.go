// Package store сохраняет снапшоты по составным естественным ключам, чтобы
// повторная загрузка тех же данных не добавляла строк.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"fleetreport/internal/domain/shape"
	"fleetreport/internal/domain/snapshot"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/exp/slog"
)

const (
	maxRef               = 100
	maxCreationDate      = 50
	maxTimezone          = 100
	maxFlag              = 20
	maxDashboardUsername = 255
	maxStatus            = 50
	maxText              = 255
	maxCheckDescription  = 5000
	maxCheckKey          = 50
)

// Report считает, что записал один вызов Store. Пропущенные записи хранятся в
// Err.
type Report struct {
	Providers     int `json:"providers"`
	Clients       int `json:"clients"`
	Sites         int `json:"sites"`
	Devices       int `json:"devices"`
	FailingChecks int `json:"failing_checks"`
	Extras        int `json:"extras"`
	Skipped       int `json:"skipped"`

	errs *multierror.Error
}

func (r *Report) skip(err error) {
	r.Skipped++
	r.errs = multierror.Append(r.errs, err)
}

// Err объединяет все пропущенные записи или возвращает nil.
func (r Report) Err() error {
	return r.errs.ErrorOrNil()
}

type Engine struct {
	repo Repository
	log  *slog.Logger
}

func NewEngine(repo Repository, log *slog.Logger) *Engine {
	return &Engine{
		repo: repo,
		log:  log.With(slog.String("component", "upsert")),
	}
}

// Store пишет снапшот в одной транзакции. Ошибки отдельных сущностей логируются
// и пропускаются; возвращаются только ошибки транзакции.
func (e *Engine) Store(ctx context.Context, snap *snapshot.Snapshot) (Report, error) {
	var report Report
	err := e.repo.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		for i := range snap.Providers {
			if err := ctx.Err(); err != nil {
				return err
			}
			e.storeProvider(ctx, tx, &snap.Providers[i], &report)
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("failed to store snapshot: %w", err)
	}

	e.log.Info("snapshot stored",
		slog.String("snapshot_id", snap.ID),
		slog.Int("clients", report.Clients),
		slog.Int("devices", report.Devices),
		slog.Int("failing_checks", report.FailingChecks),
		slog.Int("extras", report.Extras),
		slog.Int("skipped", report.Skipped),
	)
	return report, nil
}

func (e *Engine) guard(ctx context.Context, tx Tx, r *Report, what string, fn func() error) bool {
	err := tx.Guard(ctx, fn)
	if err == nil {
		return true
	}
	err = fmt.Errorf("%s: %w", what, err)
	e.log.Warn("entity write skipped", "error", err)
	r.skip(err)
	return false
}

func (e *Engine) storeProvider(ctx context.Context, tx Tx, p *snapshot.Provider, r *Report) {
	// Провайдер без списка верхнего уровня сохраняет то, что было записано
	// раньше.
	if !p.Available {
		return
	}

	var providerID int64
	ok := e.guard(ctx, tx, r, "provider "+p.Slug, func() error {
		meta, err := encode(p.Metadata)
		if err != nil {
			return err
		}
		providerID, err = tx.UpsertProvider(ctx, Provider{Slug: p.Slug, Name: p.Name, Metadata: meta})
		return err
	})
	if !ok {
		return
	}
	r.Providers++

	clientIDs := make(map[string]int64, len(p.Clients))
	for i := range p.Clients {
		c := &p.Clients[i]
		if id, ok := e.storeClient(ctx, tx, providerID, c, r); ok {
			clientIDs[c.ID] = id
		}
	}

	deviceIDs := make([]string, 0, len(p.Extras))
	for id := range p.Extras {
		deviceIDs = append(deviceIDs, id)
	}
	sort.Strings(deviceIDs)
	for _, id := range deviceIDs {
		e.storeExtras(ctx, tx, clientIDs, id, p.Extras[id], r)
	}
}

var clientColumns = []string{
	"clientid", "id", "name", "creation_date", "device_count", "server_count",
	"workstation_count", "mobile_device_count", "timezone", "view_dashboard",
	"view_wkstsn_assets", "dashboard_username",
}

func (e *Engine) storeClient(ctx context.Context, tx Tx, providerID int64, c *snapshot.Client, r *Report) (int64, bool) {
	if c.ID == "" {
		r.skip(errors.New("client without id"))
		return 0, false
	}

	var clientID int64
	ok := e.guard(ctx, tx, r, "client "+c.ID, func() error {
		raw, err := encode(shape.Without(c.Raw, clientColumns...))
		if err != nil {
			return err
		}
		clientID, err = tx.UpsertClient(ctx, Client{
			ProviderID:        providerID,
			Ref:               snapshot.Truncate(c.ID, maxRef),
			Name:              snapshot.Truncate(c.Name, maxText),
			CreationDate:      snapshot.Truncate(c.CreationDate, maxCreationDate),
			DeviceCount:       c.DeviceCount,
			ServerCount:       c.ServerCount,
			WorkstationCount:  c.WorkstationCount,
			MobileDeviceCount: c.MobileDeviceCount,
			Timezone:          snapshot.Truncate(c.Timezone, maxTimezone),
			ViewDashboard:     snapshot.Truncate(c.ViewDashboard, maxFlag),
			ViewWkstsnAssets:  snapshot.Truncate(c.ViewWkstsnAssets, maxFlag),
			DashboardUsername: snapshot.Truncate(c.DashboardUsername, maxDashboardUsername),
			Raw:               raw,
		})
		return err
	})
	if !ok {
		return 0, false
	}
	r.Clients++

	// Площадки и устройства пишутся раньше сбойных проверок, которые ищут
	// устройства по (client, external id).
	siteIDs, failedSites := e.storeSites(ctx, tx, clientID, c, r)
	for _, d := range clientDevices(c) {
		e.storeDevice(ctx, tx, clientID, c.ID, d, siteIDs, failedSites, r)
	}
	for i := range c.FailingChecks {
		e.storeFailingCheck(ctx, tx, clientID, c.ID, &c.FailingChecks[i], r)
	}

	return clientID, true
}

func (e *Engine) storeSites(ctx context.Context, tx Tx, clientID int64, c *snapshot.Client, r *Report) (map[string]int64, map[string]bool) {
	ids := make(map[string]int64, len(c.Sites))
	failed := make(map[string]bool)

	for i := range c.Sites {
		s := &c.Sites[i]
		if s.ID == "" {
			continue
		}
		var siteID int64
		ok := e.guard(ctx, tx, r, "site "+c.ID+"/"+s.ID, func() error {
			raw := shape.Record{}
			for k, v := range s.Raw {
				raw[k] = v
			}
			if len(s.AgentlessAssets) > 0 {
				raw["agentless_assets"] = s.AgentlessAssets
			}
			payload, err := encode(raw)
			if err != nil {
				return err
			}
			siteID, err = tx.UpsertSite(ctx, Site{
				ClientID:     clientID,
				Ref:          snapshot.Truncate(s.ID, maxRef),
				Name:         snapshot.Truncate(s.Name, maxText),
				ConnectionOK: snapshot.Truncate(s.ConnectionOK, maxFlag),
				CreationDate: snapshot.Truncate(s.CreationDate, maxCreationDate),
				Raw:          payload,
			})
			return err
		})
		if !ok {
			failed[s.ID] = true
			continue
		}
		ids[s.ID] = siteID
		r.Sites++
	}
	return ids, failed
}

// clientDevices перечисляет сначала устройства площадок, затем списки уровня
// клиента.
func clientDevices(c *snapshot.Client) []snapshot.Device {
	var out []snapshot.Device
	for _, s := range c.Sites {
		for _, rec := range s.Servers {
			if d, ok := snapshot.NewDevice(rec, snapshot.DeviceServer, s.ID); ok {
				out = append(out, d)
			}
		}
		for _, rec := range s.Workstations {
			if d, ok := snapshot.NewDevice(rec, snapshot.DeviceWorkstation, s.ID); ok {
				out = append(out, d)
			}
		}
	}
	return append(out, c.Devices...)
}

var deviceColumns = []string{"id", "deviceid", "name", "device_name", "status", "username", "description"}

func (e *Engine) storeDevice(ctx context.Context, tx Tx, clientID int64, clientRef string, d snapshot.Device, siteIDs map[string]int64, failedSites map[string]bool, r *Report) {
	what := "device " + clientRef + "/" + d.ExternalID
	if failedSites[d.SiteID] {
		r.skip(fmt.Errorf("%s: site %s was not stored", what, d.SiteID))
		return
	}

	row := Device{
		ClientID:    clientID,
		ExternalID:  snapshot.Truncate(d.ExternalID, maxRef),
		Type:        d.Type,
		Name:        snapshot.Truncate(d.Name, maxText),
		Status:      snapshot.Truncate(d.Status, maxStatus),
		Username:    snapshot.Truncate(d.Username, maxText),
		Description: snapshot.Truncate(d.Description, maxText),
	}
	if row.Name == "" {
		row.Name = "unknown"
	}
	// Ссылка на площадку должна указывать на площадку того же клиента.
	if id, ok := siteIDs[d.SiteID]; ok {
		row.SiteID = &id
		row.SiteRef = snapshot.Truncate(d.SiteID, maxRef)
	}

	if e.guard(ctx, tx, r, what, func() error {
		raw, err := encode(shape.Without(d.Raw, deviceColumns...))
		if err != nil {
			return err
		}
		row.Raw = raw
		_, err = tx.UpsertDevice(ctx, row)
		return err
	}) {
		r.Devices++
	}
}

func (e *Engine) storeFailingCheck(ctx context.Context, tx Tx, clientID int64, clientRef string, fc *snapshot.FailingCheck, r *Report) {
	description := snapshot.Truncate(fc.Description, maxCheckDescription)
	date, tm := CheckKey(fc.StartDate, fc.StartTime, description)

	row := FailingCheck{
		ClientID:    clientID,
		DeviceRef:   snapshot.Truncate(fc.DeviceID, maxRef),
		StartDate:   date,
		StartTime:   tm,
		Description: description,
	}

	if e.guard(ctx, tx, r, "failing check "+clientRef+"/"+fc.DeviceID+"/"+date+"/"+tm, func() error {
		if row.DeviceRef != "" {
			id, err := tx.FindDevice(ctx, clientID, row.DeviceRef)
			switch {
			case err == nil:
				row.DeviceID = &id
			case !errors.Is(err, ErrNotFound):
				return err
			}
		}
		raw, err := encode(fc.Raw)
		if err != nil {
			return err
		}
		row.Raw = raw
		_, err = tx.UpsertFailingCheck(ctx, row)
		return err
	}) {
		r.FailingChecks++
	}
}

func (e *Engine) storeExtras(ctx context.Context, tx Tx, clientIDs map[string]int64, externalID string, ex *snapshot.DeviceExtras, r *Report) {
	if ex == nil {
		return
	}
	clientID, ok := clientIDs[ex.ClientID]
	if !ok {
		r.skip(fmt.Errorf("extras %s: client %s was not stored", externalID, ex.ClientID))
		return
	}

	var deviceID int64
	if !e.guard(ctx, tx, r, "extras "+externalID, func() (err error) {
		deviceID, err = tx.FindDevice(ctx, clientID, snapshot.Truncate(externalID, maxRef))
		return err
	}) {
		return
	}

	// Наборы, упавшие в апстриме, сохраняют ранее записанные данные.
	for _, kind := range snapshot.ExtraKinds {
		payload, ok := ex.Payloads[kind]
		if !ok {
			continue
		}
		if e.guard(ctx, tx, r, "extras "+externalID+"/"+string(kind), func() error {
			data, err := encode(payload)
			if err != nil {
				return err
			}
			return tx.UpsertDeviceExtra(ctx, DeviceExtra{DeviceID: deviceID, Kind: kind, Payload: data})
		}) {
			r.Extras++
		}
	}
}

// encode сериализует запись в JSON. Ключи сортируются, поэтому одинаковый вход
// всегда дает одинаковые байты.
func encode(v shape.Record) ([]byte, error) {
	if v == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	return data, nil
}
