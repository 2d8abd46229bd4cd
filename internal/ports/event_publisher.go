package ports

import "context"

// Event topics published by the service.
const (
	EventRoutePlanned     = "route.planned"
	EventDayEntriesSynced = "dayentries.synced"
	EventPayrollWeekPaid  = "payroll.week_paid"
)

// Contract for announcing domain events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event string, key string, payload any) error
	Close() error
}
