package store

import (
	"context"

	"fleetreport/internal/domain/snapshot"
)

type Repository interface {
	// WithinTx выполняет fn в одной транзакции и коммитит, если fn вернула nil.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	SaveRun(ctx context.Context, run Run) error
	LatestRun(ctx context.Context) (Run, error)
	DeviceExtra(ctx context.Context, externalID string, kind snapshot.ExtraKind) (DeviceExtra, error)
}

// Tx - пишущая сторона одной загрузки. Upsert-методы возвращают id строки.
type Tx interface {
	// Guard изолирует fn за savepoint, чтобы упавший запрос не испортил внешнюю
	// транзакцию.
	Guard(ctx context.Context, fn func() error) error
	UpsertProvider(ctx context.Context, p Provider) (int64, error)
	UpsertClient(ctx context.Context, c Client) (int64, error)
	UpsertSite(ctx context.Context, s Site) (int64, error)
	UpsertDevice(ctx context.Context, d Device) (int64, error)
	FindDevice(ctx context.Context, clientID int64, externalID string) (int64, error)
	UpsertFailingCheck(ctx context.Context, fc FailingCheck) (int64, error)
	UpsertDeviceExtra(ctx context.Context, e DeviceExtra) error
}
