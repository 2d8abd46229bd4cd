package services

import (
	"testing"
	"time"
	"transport-ops-service/internal/domain"
)

func entry(status domain.DayStatus, hours *float64) *domain.DriverDayEntry {
	return &domain.DriverDayEntry{DriverID: "d1", Status: status, Hours: hours}
}

func f64(v float64) *float64 { return &v }

func TestCalculatePayShift(t *testing.T) {
	driver := domain.Driver{ID: "d1", PayType: domain.PayTypeShift, PayRate: 100}
	days := [7]*domain.DriverDayEntry{
		entry(domain.DayStatusWork, nil),
		entry(domain.DayStatusWork, f64(3)),
		entry(domain.DayStatusLeave, nil),
		entry(domain.DayStatusOff, nil),
		entry(domain.DayStatusSick, nil),
	}

	got := CalculatePay(driver, days)
	if got.WorkUnits != 2 || got.LeaveUnits != 1 || got.UnpaidUnits != 2 {
		t.Fatalf("units = %+v, want 2/1/2", got)
	}
	if got.Amount != 300 {
		t.Fatalf("amount = %v, want 300", got.Amount)
	}
}

func TestCalculatePayHourly(t *testing.T) {
	driver := domain.Driver{ID: "d1", PayType: domain.PayTypeHourly, PayRate: 20}
	days := [7]*domain.DriverDayEntry{
		entry(domain.DayStatusWork, f64(8)),
		entry(domain.DayStatusLeave, f64(8)),
		entry(domain.DayStatusOff, f64(0)),
	}

	got := CalculatePay(driver, days)
	if got.WorkUnits != 8 || got.LeaveUnits != 8 || got.UnpaidUnits != 0 {
		t.Fatalf("hours = %+v", got)
	}
	if got.Amount != 320 {
		t.Fatalf("amount = %v, want 320", got.Amount)
	}
}

func TestCalculatePayHourlyIgnoresStrayUnpaidHours(t *testing.T) {
	driver := domain.Driver{ID: "d1", PayType: domain.PayTypeHourly, PayRate: 12.35}
	days := [7]*domain.DriverDayEntry{
		entry(domain.DayStatusWork, f64(7.25)),
		entry(domain.DayStatusSick, f64(8)),
		entry(domain.DayStatusWork, nil),
	}

	got := CalculatePay(driver, days)
	if got.WorkUnits != 7.25 || got.UnpaidUnits != 0 {
		t.Fatalf("hours = %+v", got)
	}
	// 7.25 * 12.35 = 89.5375
	if got.Amount != 89.54 {
		t.Fatalf("amount = %v, want 89.54", got.Amount)
	}
}

func TestCalculatePayEmptyWeek(t *testing.T) {
	got := CalculatePay(domain.Driver{PayType: domain.PayTypeShift, PayRate: 100}, [7]*domain.DriverDayEntry{})
	if got != (domain.WeekPay{PayType: domain.PayTypeShift}) {
		t.Fatalf("empty week = %+v", got)
	}
}

func TestSlotWeek(t *testing.T) {
	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	entries := []domain.DriverDayEntry{
		domain.NewAutoWorkEntry("d1", monday),
		domain.NewAutoWorkEntry("d1", monday.AddDate(0, 0, 6)),
		domain.NewAutoWorkEntry("d1", monday.AddDate(0, 0, 7)),
		domain.NewAutoWorkEntry("d1", monday.AddDate(0, 0, -1)),
		domain.NewAutoWorkEntry("d2", monday.AddDate(0, 0, 2)),
	}

	days := SlotWeek("d1", monday, entries)
	if days[0] == nil || days[6] == nil {
		t.Fatalf("monday and sunday should be slotted: %v", days)
	}
	for i := 1; i < 6; i++ {
		if days[i] != nil {
			t.Fatalf("slot %d should be empty, got %+v", i, days[i])
		}
	}
	if days[0] == days[6] {
		t.Fatal("slots must not alias the same entry")
	}
}
