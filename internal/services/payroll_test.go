package services

import (
	"context"
	"errors"
	"testing"
	"time"
	"transport-ops-service/internal/adapters/events"
	"transport-ops-service/internal/adapters/repositories"
	"transport-ops-service/internal/domain"
	"transport-ops-service/internal/ports"
)

func newPayrollFixture(t *testing.T) (*repositories.MemoryStore, *events.RecordingPublisher, *PayrollService) {
	t.Helper()
	store := repositories.NewMemoryStore()
	store.PutDriver(domain.Driver{ID: "d1", FullName: "Alice Ward", PayType: domain.PayTypeShift, PayRate: 100})
	store.PutDriver(domain.Driver{ID: "d2", FullName: "Ben Cole", PayType: domain.PayTypeHourly, PayRate: 20})

	pub := &events.RecordingPublisher{}
	svc := &PayrollService{
		Drivers: store,
		Entries: store,
		Payroll: store,
		Events:  pub,
		Now:     func() time.Time { return time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC) },
	}
	return store, pub, svc
}

func TestPayrollDriverWeek(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newPayrollFixture(t)

	for i, status := range []string{"work", "work", "leave", "off", "sick"} {
		if _, err := svc.SetDay(ctx, "d1", day(i), DayInput{Status: status}); err != nil {
			t.Fatalf("SetDay %d: %v", i, err)
		}
	}

	got, err := svc.DriverWeek(ctx, "d1", day(4))
	if err != nil {
		t.Fatalf("DriverWeek: %v", err)
	}
	if !got.WeekStart.Equal(syncMonday) || got.ISOYear != 2026 || got.ISOWeek != 2 {
		t.Fatalf("unexpected week: %v %d-W%d", got.WeekStart, got.ISOYear, got.ISOWeek)
	}
	if got.Pay.WorkUnits != 2 || got.Pay.LeaveUnits != 1 || got.Pay.UnpaidUnits != 2 || got.Pay.Amount != 300 {
		t.Fatalf("pay = %+v", got.Pay)
	}
	if got.Days[5] != nil || got.Days[6] != nil {
		t.Fatal("weekend should have no entries")
	}
	if got.Paid {
		t.Fatal("week should not be paid")
	}
}

func TestPayrollSetDayValidation(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newPayrollFixture(t)

	var ve *domain.ValidationError
	if _, err := svc.SetDay(ctx, "d1", day(0), DayInput{Status: "holiday"}); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for bad status, got %v", err)
	}
	if _, err := svc.SetDay(ctx, "d1", day(0), DayInput{Status: "work", Hours: f64(30)}); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for hours, got %v", err)
	}
	if _, err := svc.SetDay(ctx, "nobody", day(0), DayInput{Status: "work"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown driver, got %v", err)
	}
}

func TestPayrollManualEntryOverridesAutoAndBlocksSync(t *testing.T) {
	ctx := context.Background()
	store, _, svc := newPayrollFixture(t)
	store.PutJob("j1", "d2", day(0), repositories.JobStatusCompleted)

	sync := &SyncService{Entries: store, Jobs: store}
	if _, err := sync.SyncWeek(ctx, syncMonday); err != nil {
		t.Fatalf("SyncWeek: %v", err)
	}

	entry, err := svc.SetDay(ctx, "d2", day(0), DayInput{Status: "work", Hours: f64(9.5)})
	if err != nil {
		t.Fatalf("SetDay: %v", err)
	}
	if entry.Provenance != domain.ProvenanceManual {
		t.Fatalf("manual edit should be tagged manual: %+v", entry)
	}

	report, err := sync.SyncWeek(ctx, syncMonday)
	if err != nil {
		t.Fatalf("SyncWeek: %v", err)
	}
	if report.Created != 0 {
		t.Fatalf("sync overwrote manual work: %+v", report)
	}

	got, _ := svc.DriverWeek(ctx, "d2", syncMonday)
	if got.Pay.WorkUnits != 9.5 || got.Pay.Amount != 190 {
		t.Fatalf("pay = %+v", got.Pay)
	}
}

func TestPayrollClearDay(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newPayrollFixture(t)

	if _, err := svc.SetDay(ctx, "d1", day(0), DayInput{Status: "work"}); err != nil {
		t.Fatalf("SetDay: %v", err)
	}
	if err := svc.ClearDay(ctx, "d1", day(0)); err != nil {
		t.Fatalf("ClearDay: %v", err)
	}
	got, _ := svc.DriverWeek(ctx, "d1", syncMonday)
	if got.Days[0] != nil || got.Pay.Amount != 0 {
		t.Fatalf("cleared day still counted: %+v", got)
	}
}

func TestPayrollMarkPaidAndDivergence(t *testing.T) {
	ctx := context.Background()
	_, pub, svc := newPayrollFixture(t)

	if _, err := svc.SetDay(ctx, "d1", day(0), DayInput{Status: "work"}); err != nil {
		t.Fatalf("SetDay: %v", err)
	}

	paid, err := svc.MarkPaid(ctx, "d1", day(2), true)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if !paid.Paid || paid.PaidAtUTC == nil || paid.Pay.Amount != 100 {
		t.Fatalf("unexpected summary: %+v", paid)
	}

	// Editing after marking paid changes the live amount but keeps the flag.
	if _, err := svc.SetDay(ctx, "d1", day(1), DayInput{Status: "work"}); err != nil {
		t.Fatalf("SetDay: %v", err)
	}
	after, _ := svc.DriverWeek(ctx, "d1", syncMonday)
	if !after.Paid || after.Pay.Amount != 200 {
		t.Fatalf("after edit: paid=%v amount=%v", after.Paid, after.Pay.Amount)
	}

	unpaid, err := svc.MarkPaid(ctx, "d1", syncMonday, false)
	if err != nil {
		t.Fatalf("MarkPaid false: %v", err)
	}
	if unpaid.Paid || unpaid.PaidAtUTC != nil {
		t.Fatalf("unmarking should clear paid_at: %+v", unpaid)
	}

	evts := pub.Events()
	if len(evts) != 2 || evts[0].Event != ports.EventPayrollWeekPaid || evts[0].Key != "d1" {
		t.Fatalf("events = %+v", evts)
	}
}

func TestPayrollWeekListsAllDrivers(t *testing.T) {
	ctx := context.Background()
	_, _, svc := newPayrollFixture(t)

	if _, err := svc.SetDay(ctx, "d2", day(0), DayInput{Status: "work", Hours: f64(8)}); err != nil {
		t.Fatalf("SetDay: %v", err)
	}
	if _, err := svc.MarkPaid(ctx, "d2", syncMonday, true); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}

	week, err := svc.Week(ctx, syncMonday)
	if err != nil {
		t.Fatalf("Week: %v", err)
	}
	if len(week) != 2 {
		t.Fatalf("got %d summaries, want 2", len(week))
	}
	if week[0].Driver.ID != "d1" || week[0].Pay.Amount != 0 || week[0].Paid {
		t.Fatalf("unexpected first summary: %+v", week[0])
	}
	if week[1].Driver.ID != "d2" || week[1].Pay.Amount != 160 || !week[1].Paid {
		t.Fatalf("unexpected second summary: %+v", week[1])
	}
}
