package ports

import (
	"context"
	"time"
	"transport-ops-service/internal/domain"
)

// Read access to drivers; drivers are maintained outside payroll.
type DriverRepository interface {
	GetDriver(ctx context.Context, id string) (domain.Driver, error)
	ListDrivers(ctx context.Context) ([]domain.Driver, error)
}

// Keyed store of driver day entries. Upserts replace the whole record.
type DayEntryStore interface {
	ListRange(ctx context.Context, from, to time.Time) ([]domain.DriverDayEntry, error)
	ListDriverRange(ctx context.Context, driverID string, from, to time.Time) ([]domain.DriverDayEntry, error)
	Upsert(ctx context.Context, entry domain.DriverDayEntry) error
	// Write all entries or none.
	UpsertMany(ctx context.Context, entries []domain.DriverDayEntry) error
	Delete(ctx context.Context, driverID string, date time.Time) error
}

// Store of the weekly paid checkpoints.
type PayrollStore interface {
	// Return domain.ErrNotFound when the week has never been marked.
	GetWeek(ctx context.Context, driverID string, monday time.Time) (domain.DriverWeekPayroll, error)
	ListWeek(ctx context.Context, monday time.Time) ([]domain.DriverWeekPayroll, error)
	SetWeek(ctx context.Context, p domain.DriverWeekPayroll) error
}

// Source of completed-job evidence for payroll sync.
type CompletedJobSource interface {
	// Return one signal per (driver, date) with at least one completed job in [from, to].
	ListCompletedJobSignals(ctx context.Context, from, to time.Time) ([]domain.CompletedJobSignal, error)
}

// Persistence of assembled routes against jobs.
type RouteRepository interface {
	// Replace the job's stops and distance in one transaction.
	SaveRoute(ctx context.Context, jobID string, route *domain.RouteResult) error
	GetRoute(ctx context.Context, jobID string) (*domain.RouteResult, error)
}
