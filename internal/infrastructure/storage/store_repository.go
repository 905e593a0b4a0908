package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"fleetreport/internal/domain/snapshot"
	"fleetreport/internal/domain/store"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/exp/slog"
)

type StoreRepository struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewStoreRepository(db *DB, log *slog.Logger) *StoreRepository {
	return &StoreRepository{
		db:  db,
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *StoreRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(ctx, &storeTx{db: r.db, tx: sqlTx, now: r.now}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *StoreRepository) SaveRun(ctx context.Context, run store.Run) error {
	_, err := r.db.exec(ctx, r.db,
		`INSERT INTO sync_runs (id, payload, created_at) VALUES (?, ?, ?)`,
		run.ID, string(run.Payload), run.CreatedAt.UTC())
	return classify("save sync run", err)
}

func (r *StoreRepository) LatestRun(ctx context.Context) (store.Run, error) {
	var (
		run     store.Run
		payload string
	)
	err := r.db.queryRow(ctx, r.db,
		`SELECT id, payload, created_at FROM sync_runs ORDER BY created_at DESC LIMIT 1`).
		Scan(&run.ID, &payload, &run.CreatedAt)
	if err != nil {
		return store.Run{}, classify("load latest sync run", err)
	}
	run.Payload = []byte(payload)
	return run, nil
}

func (r *StoreRepository) DeviceExtra(ctx context.Context, externalID string, kind snapshot.ExtraKind) (store.DeviceExtra, error) {
	var (
		extra   store.DeviceExtra
		payload string
	)
	err := r.db.queryRow(ctx, r.db, `
		SELECT e.device_id, e.payload, e.updated_at
		FROM device_extras e
		JOIN devices d ON d.id = e.device_id
		WHERE d.external_id = ? AND e.kind = ?
		ORDER BY e.updated_at DESC, e.id DESC
		LIMIT 1`,
		externalID, string(kind)).Scan(&extra.DeviceID, &payload, &extra.UpdatedAt)
	if err != nil {
		return store.DeviceExtra{}, classify("load device extra", err)
	}
	extra.Kind = kind
	extra.Payload = []byte(payload)
	return extra, nil
}

type storeTx struct {
	db  *DB
	tx  *sql.Tx
	now func() time.Time
	seq int
}

func (t *storeTx) Guard(ctx context.Context, fn func() error) error {
	t.seq++
	name := "sp_" + strconv.Itoa(t.seq)

	if _, err := t.tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to create savepoint: %w", err)
	}

	if err := fn(); err != nil {
		if _, rbErr := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return multierror.Append(err, fmt.Errorf("failed to roll back savepoint: %w", rbErr))
		}
		_, _ = t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name)
		return err
	}

	if _, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to release savepoint: %w", err)
	}
	return nil
}

func (t *storeTx) returningID(ctx context.Context, op, query string, args ...any) (int64, error) {
	var id int64
	if err := t.db.queryRow(ctx, t.tx, query, args...).Scan(&id); err != nil {
		return 0, classify(op, err)
	}
	return id, nil
}

func (t *storeTx) UpsertProvider(ctx context.Context, p store.Provider) (int64, error) {
	now := t.now()
	return t.returningID(ctx, "upsert provider", `
		INSERT INTO providers (slug, name, raw_metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (slug) DO UPDATE SET
			name = excluded.name,
			raw_metadata = excluded.raw_metadata,
			updated_at = excluded.updated_at
		RETURNING id`,
		p.Slug, p.Name, string(p.Metadata), now, now)
}

func (t *storeTx) UpsertClient(ctx context.Context, c store.Client) (int64, error) {
	now := t.now()
	return t.returningID(ctx, "upsert client", `
		INSERT INTO clients (
			provider_id, client_ref, name, creation_date,
			device_count, server_count, workstation_count, mobile_device_count,
			timezone, view_dashboard, view_wkstsn_assets, dashboard_username,
			raw_data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (provider_id, client_ref) DO UPDATE SET
			name = excluded.name,
			creation_date = excluded.creation_date,
			device_count = excluded.device_count,
			server_count = excluded.server_count,
			workstation_count = excluded.workstation_count,
			mobile_device_count = excluded.mobile_device_count,
			timezone = excluded.timezone,
			view_dashboard = excluded.view_dashboard,
			view_wkstsn_assets = excluded.view_wkstsn_assets,
			dashboard_username = excluded.dashboard_username,
			raw_data = excluded.raw_data,
			updated_at = excluded.updated_at
		RETURNING id`,
		c.ProviderID, c.Ref, c.Name, c.CreationDate,
		c.DeviceCount, c.ServerCount, c.WorkstationCount, c.MobileDeviceCount,
		c.Timezone, c.ViewDashboard, c.ViewWkstsnAssets, c.DashboardUsername,
		string(c.Raw), now, now)
}

func (t *storeTx) UpsertSite(ctx context.Context, s store.Site) (int64, error) {
	now := t.now()
	return t.returningID(ctx, "upsert site", `
		INSERT INTO sites (client_id, site_ref, name, connection_ok, creation_date, raw_data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (client_id, site_ref) DO UPDATE SET
			name = excluded.name,
			connection_ok = excluded.connection_ok,
			creation_date = excluded.creation_date,
			raw_data = excluded.raw_data,
			updated_at = excluded.updated_at
		RETURNING id`,
		s.ClientID, s.Ref, s.Name, s.ConnectionOK, s.CreationDate, string(s.Raw), now, now)
}

func (t *storeTx) UpsertDevice(ctx context.Context, d store.Device) (int64, error) {
	now := t.now()
	return t.returningID(ctx, "upsert device", `
		INSERT INTO devices (
			client_id, site_id, site_ref, external_id, device_type,
			name, status, username, description, raw_data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (client_id, site_ref, external_id) DO UPDATE SET
			site_id = excluded.site_id,
			device_type = excluded.device_type,
			name = excluded.name,
			status = excluded.status,
			username = excluded.username,
			description = excluded.description,
			raw_data = excluded.raw_data,
			updated_at = excluded.updated_at
		RETURNING id`,
		d.ClientID, d.SiteID, d.SiteRef, d.ExternalID, string(d.Type),
		d.Name, d.Status, d.Username, d.Description, string(d.Raw), now, now)
}

func (t *storeTx) FindDevice(ctx context.Context, clientID int64, externalID string) (int64, error) {
	return t.returningID(ctx, "find device", `
		SELECT id FROM devices
		WHERE client_id = ? AND external_id = ?
		ORDER BY id
		LIMIT 1`,
		clientID, externalID)
}

func (t *storeTx) UpsertFailingCheck(ctx context.Context, fc store.FailingCheck) (int64, error) {
	now := t.now()
	return t.returningID(ctx, "upsert failing check", `
		INSERT INTO failing_checks (
			client_id, device_id, device_ref, start_date, start_time,
			description, raw_data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (client_id, device_ref, start_date, start_time) DO UPDATE SET
			device_id = excluded.device_id,
			description = excluded.description,
			raw_data = excluded.raw_data,
			updated_at = excluded.updated_at
		RETURNING id`,
		fc.ClientID, fc.DeviceID, fc.DeviceRef, fc.StartDate, fc.StartTime,
		fc.Description, string(fc.Raw), now, now)
}

// UpsertDeviceExtra заменяет данные на месте; updated_at меняется, только если
// данные отличаются.
func (t *storeTx) UpsertDeviceExtra(ctx context.Context, e store.DeviceExtra) error {
	_, err := t.db.exec(ctx, t.tx, `
		INSERT INTO device_extras (device_id, kind, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (device_id, kind) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
		WHERE device_extras.payload <> excluded.payload`,
		e.DeviceID, string(e.Kind), string(e.Payload), t.now())
	return classify("upsert device extra", err)
}
