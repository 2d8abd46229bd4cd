package export

import (
	"bytes"
	"testing"
	"time"
	"transport-ops-service/internal/domain"

	"github.com/xuri/excelize/v2"
)

func TestWritePayrollWorkbook(t *testing.T) {
	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	hours := 8.0
	paidAt := time.Date(2026, 1, 12, 9, 30, 0, 0, time.UTC)

	var days [7]*domain.DriverDayEntry
	days[0] = &domain.DriverDayEntry{DriverID: "d1", Status: domain.DayStatusWork, Hours: &hours}
	days[2] = &domain.DriverDayEntry{DriverID: "d1", Status: domain.DayStatusSick}

	summaries := []domain.DriverWeekSummary{
		{
			Driver:    domain.Driver{ID: "d1", FullName: "Alice Ward", PayType: domain.PayTypeHourly, PayRate: 20},
			WeekStart: monday,
			Days:      days,
			Pay:       domain.WeekPay{PayType: domain.PayTypeHourly, WorkUnits: 8, Amount: 160},
			Paid:      true,
			PaidAtUTC: &paidAt,
		},
		{
			Driver:    domain.Driver{ID: "d2", FullName: "Ben Cole", PayType: domain.PayTypeShift, PayRate: 100},
			WeekStart: monday,
			Pay:       domain.WeekPay{PayType: domain.PayTypeShift, Amount: 0},
		},
	}

	var buf bytes.Buffer
	if err := WritePayrollWorkbook(&buf, monday, summaries); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(payrollSheet)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want title + header + 2 drivers + total", len(rows))
	}
	if rows[0][0] != "Week 2026-W02 (2026-01-05 to 2026-01-11)" {
		t.Fatalf("title = %q", rows[0][0])
	}
	if rows[1][0] != "Driver ID" || rows[1][16] != "Paid at (UTC)" {
		t.Fatalf("unexpected header: %v", rows[1])
	}
	if rows[2][1] != "Alice Ward" || rows[2][4] != "work 8h" || rows[2][6] != "sick" {
		t.Fatalf("unexpected driver row: %v", rows[2])
	}
	if rows[2][15] != "yes" || rows[2][16] != "2026-01-12 09:30" {
		t.Fatalf("unexpected paid columns: %v", rows[2])
	}

	amount, err := f.GetCellValue(payrollSheet, "O3", excelize.Options{RawCellValue: true})
	if err != nil || amount != "160" {
		t.Fatalf("amount = %q (%v), want 160", amount, err)
	}
	total, _ := f.GetCellValue(payrollSheet, "O5", excelize.Options{RawCellValue: true})
	if total != "160" {
		t.Fatalf("total = %q, want 160", total)
	}
}

func TestWorkbookName(t *testing.T) {
	got := WorkbookName(time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC))
	if got != "payroll-2026-W02.xlsx" {
		t.Fatalf("WorkbookName = %q", got)
	}
}
