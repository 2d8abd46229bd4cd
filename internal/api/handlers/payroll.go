package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"transport-ops-service/internal/adapters/export"
	"transport-ops-service/internal/api/dto"
	"transport-ops-service/internal/domain"
	"transport-ops-service/internal/services"
)

// PayrollHandler serves the weekly driver pay screens.
type PayrollHandler struct {
	Payroll *services.PayrollService
	Sync    *services.SyncService
}

func (h *PayrollHandler) DriverWeek(w http.ResponseWriter, r *http.Request) {
	monday, err := domain.ParseWeekStart(r.PathValue("date"))
	if err != nil {
		writeDomainError(w, r, "driver week", err)
		return
	}

	summary, err := h.Payroll.DriverWeek(r.Context(), r.PathValue("driver_id"), monday)
	if err != nil {
		writeDomainError(w, r, "driver week", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toDriverWeekResponse(summary))
}

// SetDay classifies a single day manually, replacing any existing entry.
func (h *PayrollHandler) SetDay(w http.ResponseWriter, r *http.Request) {
	date, err := domain.ParseDate(r.PathValue("date"))
	if err != nil {
		writeDomainError(w, r, "set day", err)
		return
	}

	var req dto.SetDayRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.Payroll.SetDay(r.Context(), r.PathValue("driver_id"), date, services.DayInput{
		Status: req.Status,
		Hours:  req.Hours,
		Notes:  req.Notes,
	})
	if err != nil {
		writeDomainError(w, r, "set day", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.DayResponse{
		Date:    domain.FormatDate(entry.Date),
		Weekday: entry.Date.Weekday().String(),
		Entry:   toDayEntryResponse(&entry),
	})
}

func (h *PayrollHandler) ClearDay(w http.ResponseWriter, r *http.Request) {
	date, err := domain.ParseDate(r.PathValue("date"))
	if err != nil {
		writeDomainError(w, r, "clear day", err)
		return
	}

	if err := h.Payroll.ClearDay(r.Context(), r.PathValue("driver_id"), date); err != nil {
		writeDomainError(w, r, "clear day", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PayrollHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	monday, err := domain.ParseWeekStart(r.PathValue("date"))
	if err != nil {
		writeDomainError(w, r, "mark paid", err)
		return
	}

	var req dto.MarkPaidRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Paid == nil {
		writeError(w, r, http.StatusBadRequest, "paid is required")
		return
	}

	summary, err := h.Payroll.MarkPaid(r.Context(), r.PathValue("driver_id"), monday, *req.Paid)
	if err != nil {
		writeDomainError(w, r, "mark paid", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toDriverWeekResponse(summary))
}

// Week lists every driver's pay for the week containing the path date.
func (h *PayrollHandler) Week(w http.ResponseWriter, r *http.Request) {
	monday, err := domain.ParseWeekStart(r.PathValue("date"))
	if err != nil {
		writeDomainError(w, r, "payroll week", err)
		return
	}

	summaries, err := h.Payroll.Week(r.Context(), monday)
	if err != nil {
		writeDomainError(w, r, "payroll week", err)
		return
	}

	res := dto.PayrollWeekResponse{
		WeekStart: domain.FormatDate(monday),
		Week:      domain.WeekLabel(monday),
		PrevWeek:  domain.FormatDate(monday.AddDate(0, 0, -7)),
		NextWeek:  domain.FormatDate(monday.AddDate(0, 0, 7)),
		Drivers:   make([]dto.DriverWeekResponse, 0, len(summaries)),
	}
	for _, s := range summaries {
		res.Drivers = append(res.Drivers, toDriverWeekResponse(s))
	}
	res.TotalAmount = domain.TotalPay(summaries)

	writeJSON(w, r, http.StatusOK, res)
}

// Export streams the week's payroll as an xlsx workbook.
func (h *PayrollHandler) Export(w http.ResponseWriter, r *http.Request) {
	monday, err := domain.ParseWeekStart(r.PathValue("date"))
	if err != nil {
		writeDomainError(w, r, "export payroll", err)
		return
	}

	summaries, err := h.Payroll.Week(r.Context(), monday)
	if err != nil {
		writeDomainError(w, r, "export payroll", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WritePayrollWorkbook(&buf, monday, summaries); err != nil {
		writeDomainError(w, r, "export payroll", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.WorkbookName(monday)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// SyncWeek applies completed jobs to the week's day entries.
func (h *PayrollHandler) SyncWeek(w http.ResponseWriter, r *http.Request) {
	monday, err := domain.ParseWeekStart(r.PathValue("date"))
	if err != nil {
		writeDomainError(w, r, "sync week", err)
		return
	}

	report, err := h.Sync.SyncWeek(r.Context(), monday)
	if err != nil {
		writeDomainError(w, r, "sync week", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.SyncReportResponse{
		WeekStart: domain.FormatDate(report.WeekStart),
		Signals:   report.Signals,
		Created:   report.Created,
		Skipped:   report.Skipped,
	})
}

func toDriverWeekResponse(s domain.DriverWeekSummary) dto.DriverWeekResponse {
	dates := domain.WeekDates(s.WeekStart)
	days := make([]dto.DayResponse, 0, len(dates))
	for i, d := range dates {
		days = append(days, dto.DayResponse{
			Date:    domain.FormatDate(d),
			Weekday: d.Weekday().String(),
			Entry:   toDayEntryResponse(s.Days[i]),
		})
	}

	return dto.DriverWeekResponse{
		DriverID:   s.Driver.ID,
		DriverName: s.Driver.FullName,
		PayRate:    s.Driver.PayRate,
		WeekStart:  domain.FormatDate(s.WeekStart),
		WeekEnd:    domain.FormatDate(domain.WeekEnd(s.WeekStart)),
		Week:       fmt.Sprintf("%04d-W%02d", s.ISOYear, s.ISOWeek),
		Days:       days,
		Pay: dto.WeekPayResponse{
			PayType:     string(s.Pay.PayType),
			WorkUnits:   s.Pay.WorkUnits,
			LeaveUnits:  s.Pay.LeaveUnits,
			UnpaidUnits: s.Pay.UnpaidUnits,
			Amount:      s.Pay.Amount,
		},
		Paid:      s.Paid,
		PaidAtUTC: s.PaidAtUTC,
	}
}

func toDayEntryResponse(e *domain.DriverDayEntry) *dto.DayEntryResponse {
	if e == nil {
		return nil
	}
	return &dto.DayEntryResponse{
		Status:      string(e.Status),
		ShiftsCount: e.ShiftsCount,
		Hours:       e.Hours,
		Notes:       e.Notes,
		Provenance:  string(e.Provenance),
	}
}
