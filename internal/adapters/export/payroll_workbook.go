package export

import (
	"fmt"
	"io"
	"strconv"
	"time"
	"transport-ops-service/internal/domain"

	"github.com/xuri/excelize/v2"
)

const payrollSheet = "Payroll"

var payrollHeader = []any{
	"Driver ID", "Driver", "Pay type", "Rate",
	"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun",
	"Work", "Leave", "Unpaid", "Amount", "Paid", "Paid at (UTC)",
}

// WorkbookName is the file name used for a week's payroll export.
func WorkbookName(monday time.Time) string {
	return fmt.Sprintf("payroll-%s.xlsx", domain.WeekLabel(monday))
}

// WritePayrollWorkbook renders one row per driver-week summary as an xlsx
// workbook and writes it to w.
func WritePayrollWorkbook(w io.Writer, monday time.Time, summaries []domain.DriverWeekSummary) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("payroll workbook: close: %w", cerr)
		}
	}()

	if err := f.SetSheetName("Sheet1", payrollSheet); err != nil {
		return fmt.Errorf("payroll workbook: rename sheet: %w", err)
	}

	title := fmt.Sprintf("Week %s (%s to %s)", domain.WeekLabel(monday),
		domain.FormatDate(domain.WeekStart(monday)), domain.FormatDate(domain.WeekEnd(monday)))
	if err := f.SetCellValue(payrollSheet, "A1", title); err != nil {
		return fmt.Errorf("payroll workbook: title: %w", err)
	}
	if err := f.SetSheetRow(payrollSheet, "A2", &payrollHeader); err != nil {
		return fmt.Errorf("payroll workbook: header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("payroll workbook: style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(payrollHeader))
	if err := f.SetCellStyle(payrollSheet, "A1", lastCol+"2", bold); err != nil {
		return fmt.Errorf("payroll workbook: style header: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return fmt.Errorf("payroll workbook: style: %w", err)
	}

	for i, s := range summaries {
		row := i + 3
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := summaryRow(s)
		if err := f.SetSheetRow(payrollSheet, cell, &values); err != nil {
			return fmt.Errorf("payroll workbook: row %d: %w", row, err)
		}
	}

	totalRow := len(summaries) + 3
	labelCell, _ := excelize.CoordinatesToCellName(14, totalRow)
	totalCell, _ := excelize.CoordinatesToCellName(15, totalRow)
	if err := f.SetCellValue(payrollSheet, labelCell, "Total"); err != nil {
		return fmt.Errorf("payroll workbook: total: %w", err)
	}
	if err := f.SetCellValue(payrollSheet, totalCell, domain.TotalPay(summaries)); err != nil {
		return fmt.Errorf("payroll workbook: total: %w", err)
	}

	amountTop, _ := excelize.CoordinatesToCellName(15, 3)
	if err := f.SetCellStyle(payrollSheet, amountTop, totalCell, money); err != nil {
		return fmt.Errorf("payroll workbook: style amounts: %w", err)
	}
	_ = f.SetColWidth(payrollSheet, "B", "B", 24)
	_ = f.SetColWidth(payrollSheet, "Q", "Q", 20)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("payroll workbook: write: %w", err)
	}
	return nil
}

func summaryRow(s domain.DriverWeekSummary) []any {
	row := []any{s.Driver.ID, s.Driver.FullName, string(s.Driver.PayType), s.Driver.PayRate}
	for _, d := range s.Days {
		row = append(row, dayCell(d))
	}

	paidAt := ""
	if s.PaidAtUTC != nil {
		paidAt = s.PaidAtUTC.UTC().Format("2006-01-02 15:04")
	}
	paid := "no"
	if s.Paid {
		paid = "yes"
	}
	return append(row, s.Pay.WorkUnits, s.Pay.LeaveUnits, s.Pay.UnpaidUnits, s.Pay.Amount, paid, paidAt)
}

func dayCell(e *domain.DriverDayEntry) string {
	if e == nil {
		return ""
	}
	if e.Hours != nil && e.Status.Paid() {
		return string(e.Status) + " " + strconv.FormatFloat(*e.Hours, 'f', -1, 64) + "h"
	}
	return string(e.Status)
}
