package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
	"transport-ops-service/internal/domain"
	"transport-ops-service/internal/platform/logger"
	"transport-ops-service/internal/platform/obs"
	"transport-ops-service/internal/ports"
)

// PayrollService serves the weekly driver pay view and the edits made on it.
type PayrollService struct {
	Drivers ports.DriverRepository
	Entries ports.DayEntryStore
	Payroll ports.PayrollStore
	Events  ports.EventPublisher
	// Now is overridable in tests.
	Now func() time.Time
}

type weekPaidEvent struct {
	DriverID  string     `json:"driver_id"`
	WeekStart string     `json:"week_start"`
	Paid      bool       `json:"paid"`
	PaidAtUTC *time.Time `json:"paid_at_utc"`
	Amount    float64    `json:"amount"`
}

func (s *PayrollService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// DriverWeek returns one driver's week with the pay recomputed from day entries.
func (s *PayrollService) DriverWeek(ctx context.Context, driverID string, monday time.Time) (_ domain.DriverWeekSummary, err error) {
	defer obs.Time(ctx, "payroll.DriverWeek")(&err)

	driver, err := s.Drivers.GetDriver(ctx, driverID)
	if err != nil {
		return domain.DriverWeekSummary{}, fmt.Errorf("driver week: %w", err)
	}

	start := domain.WeekStart(monday)
	entries, err := s.Entries.ListDriverRange(ctx, driverID, start, domain.WeekEnd(start))
	if err != nil {
		return domain.DriverWeekSummary{}, fmt.Errorf("driver week: %w", err)
	}

	mark, err := s.Payroll.GetWeek(ctx, driverID, start)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.DriverWeekSummary{}, fmt.Errorf("driver week: %w", err)
	}

	return summarize(driver, start, entries, mark), nil
}

// Week returns every driver's summary for the week, ordered by name.
func (s *PayrollService) Week(ctx context.Context, monday time.Time) (_ []domain.DriverWeekSummary, err error) {
	defer obs.Time(ctx, "payroll.Week")(&err)

	start := domain.WeekStart(monday)

	drivers, err := s.Drivers.ListDrivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("payroll week: %w", err)
	}
	entries, err := s.Entries.ListRange(ctx, start, domain.WeekEnd(start))
	if err != nil {
		return nil, fmt.Errorf("payroll week: %w", err)
	}
	marks, err := s.Payroll.ListWeek(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("payroll week: %w", err)
	}

	markByDriver := make(map[string]domain.DriverWeekPayroll, len(marks))
	for _, m := range marks {
		markByDriver[m.DriverID] = m
	}

	out := make([]domain.DriverWeekSummary, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, summarize(d, start, entries, markByDriver[d.ID]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Driver.FullName < out[j].Driver.FullName
	})
	return out, nil
}

func summarize(driver domain.Driver, start time.Time, entries []domain.DriverDayEntry, mark domain.DriverWeekPayroll) domain.DriverWeekSummary {
	days := SlotWeek(driver.ID, start, entries)
	year, week := domain.ISOWeek(start)
	return domain.DriverWeekSummary{
		Driver:    driver,
		WeekStart: start,
		ISOYear:   year,
		ISOWeek:   week,
		Days:      days,
		Pay:       CalculatePay(driver, days),
		Paid:      mark.Paid,
		PaidAtUTC: mark.PaidAtUTC,
	}
}

// DayInput is a manual classification of one day.
type DayInput struct {
	Status string
	Hours  *float64
	Notes  *string
}

// SetDay records a manual classification, replacing whatever the day held.
func (s *PayrollService) SetDay(ctx context.Context, driverID string, date time.Time, in DayInput) (_ domain.DriverDayEntry, err error) {
	defer obs.Time(ctx, "payroll.SetDay")(&err)

	status, err := domain.ParseDayStatus(in.Status)
	if err != nil {
		return domain.DriverDayEntry{}, err
	}
	if _, err := s.Drivers.GetDriver(ctx, driverID); err != nil {
		return domain.DriverDayEntry{}, fmt.Errorf("set day: %w", err)
	}

	entry, err := domain.NewManualEntry(driverID, date, status, in.Hours, in.Notes)
	if err != nil {
		return domain.DriverDayEntry{}, err
	}
	if err := s.Entries.Upsert(ctx, entry); err != nil {
		return domain.DriverDayEntry{}, fmt.Errorf("set day: %w", err)
	}
	return entry, nil
}

// ClearDay removes the day's entry so it no longer counts toward any total.
func (s *PayrollService) ClearDay(ctx context.Context, driverID string, date time.Time) (err error) {
	defer obs.Time(ctx, "payroll.ClearDay")(&err)

	if err := s.Entries.Delete(ctx, driverID, domain.DateOf(date)); err != nil {
		return fmt.Errorf("clear day: %w", err)
	}
	return nil
}

// MarkPaid sets or clears the paid checkpoint for a driver-week. The amount is
// not frozen; later edits to the week change the live amount but not the flag.
func (s *PayrollService) MarkPaid(ctx context.Context, driverID string, monday time.Time, paid bool) (_ domain.DriverWeekSummary, err error) {
	defer obs.Time(ctx, "payroll.MarkPaid")(&err)

	start := domain.WeekStart(monday)
	if _, err := s.Drivers.GetDriver(ctx, driverID); err != nil {
		return domain.DriverWeekSummary{}, fmt.Errorf("mark paid: %w", err)
	}

	mark := domain.DriverWeekPayroll{DriverID: driverID, WeekStartMonday: start, Paid: paid}
	if paid {
		at := s.now()
		mark.PaidAtUTC = &at
	}
	if err := s.Payroll.SetWeek(ctx, mark); err != nil {
		return domain.DriverWeekSummary{}, fmt.Errorf("mark paid: %w", err)
	}

	summary, err := s.DriverWeek(ctx, driverID, start)
	if err != nil {
		return domain.DriverWeekSummary{}, err
	}

	if s.Events != nil {
		evt := weekPaidEvent{
			DriverID:  driverID,
			WeekStart: domain.FormatDate(start),
			Paid:      paid,
			PaidAtUTC: mark.PaidAtUTC,
			Amount:    summary.Pay.Amount,
		}
		if err := s.Events.Publish(ctx, ports.EventPayrollWeekPaid, driverID, evt); err != nil {
			logger.Warn("publish week paid failed", "driver_id", driverID, "err", err)
		}
	}

	return summary, nil
}
