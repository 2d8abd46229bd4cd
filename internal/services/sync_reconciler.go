package services

import (
	"context"
	"fmt"
	"time"
	"transport-ops-service/internal/domain"
	"transport-ops-service/internal/platform/logger"
	"transport-ops-service/internal/platform/obs"
	"transport-ops-service/internal/ports"
)

// PlanSync returns the entries to upsert so that every completed-job signal is
// reflected as a work day, without touching anything already classified.
//
// Any existing entry wins: leave, off and sick are protected, manual work
// belongs to the user, and auto work is already what sync would write.
// Duplicate signals for the same day produce a single entry.
func PlanSync(book domain.DayEntryBook, signals []domain.CompletedJobSignal) ([]domain.DriverDayEntry, error) {
	planned := domain.NewDayEntryBook(nil)

	for _, s := range signals {
		date, err := domain.ParseDate(s.Date)
		if err != nil {
			return nil, fmt.Errorf("completed job signal for %s: %w", s.DriverID, err)
		}
		key := domain.DayKey{DriverID: s.DriverID, Date: domain.FormatDate(date)}

		if _, ok := planned.Get(key); ok {
			continue
		}
		if existing, ok := book.Get(key); ok && skipSync(existing) {
			continue
		}
		planned.Upsert(domain.NewAutoWorkEntry(s.DriverID, date))
	}

	return planned.Entries(), nil
}

func skipSync(e domain.DriverDayEntry) bool {
	switch {
	case e.Status.Protected():
		return true
	case e.Status == domain.DayStatusWork && e.Provenance == domain.ProvenanceManual:
		return true
	case e.Status == domain.DayStatusWork:
		return true
	}
	return false
}

// SyncReport summarises one sync run, counted per (driver, day).
type SyncReport struct {
	WeekStart time.Time
	Signals   int
	Created   int
	Skipped   int
}

// SyncService applies completed-job evidence to a week of day entries.
type SyncService struct {
	Entries ports.DayEntryStore
	Jobs    ports.CompletedJobSource
	Events  ports.EventPublisher
}

type dayEntriesSyncedEvent struct {
	WeekStart string `json:"week_start"`
	Created   int    `json:"created"`
	Skipped   int    `json:"skipped"`
}

// SyncWeek merges the week's completed jobs into day entries. The whole batch
// is written in one UpsertMany call, so a failed run leaves the week unchanged.
func (s *SyncService) SyncWeek(ctx context.Context, monday time.Time) (_ SyncReport, err error) {
	defer obs.Time(ctx, "payroll.SyncWeek")(&err)

	start := domain.WeekStart(monday)
	end := domain.WeekEnd(start)
	report := SyncReport{WeekStart: start}

	existing, err := s.Entries.ListRange(ctx, start, end)
	if err != nil {
		return report, fmt.Errorf("sync week: %w", err)
	}
	signals, err := s.Jobs.ListCompletedJobSignals(ctx, start, end)
	if err != nil {
		return report, fmt.Errorf("sync week: %w", err)
	}

	upserts, err := PlanSync(domain.NewDayEntryBook(existing), signals)
	if err != nil {
		return report, err
	}

	report.Signals = countDistinctSignals(signals)
	report.Created = len(upserts)
	report.Skipped = report.Signals - report.Created

	if len(upserts) > 0 {
		if err := s.Entries.UpsertMany(ctx, upserts); err != nil {
			return SyncReport{WeekStart: start}, fmt.Errorf("sync week: %w", err)
		}
	}

	logger.Info("day entries synced",
		"week", domain.WeekLabel(start), "signals", report.Signals,
		"created", report.Created, "skipped", report.Skipped)

	if s.Events != nil {
		evt := dayEntriesSyncedEvent{WeekStart: domain.FormatDate(start), Created: report.Created, Skipped: report.Skipped}
		if err := s.Events.Publish(ctx, ports.EventDayEntriesSynced, domain.FormatDate(start), evt); err != nil {
			logger.Warn("publish day entries synced failed", "week", domain.FormatDate(start), "err", err)
		}
	}

	return report, nil
}

func countDistinctSignals(signals []domain.CompletedJobSignal) int {
	seen := make(map[domain.CompletedJobSignal]struct{}, len(signals))
	for _, s := range signals {
		seen[s] = struct{}{}
	}
	return len(seen)
}
