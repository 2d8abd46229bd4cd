package dto

import "time"

type DayEntryResponse struct {
	Status      string   `json:"status"`
	ShiftsCount int      `json:"shifts_count"`
	Hours       *float64 `json:"hours"`
	Notes       *string  `json:"notes"`
	Provenance  string   `json:"provenance"`
}

type DayResponse struct {
	Date    string            `json:"date"`
	Weekday string            `json:"weekday"`
	Entry   *DayEntryResponse `json:"entry"`
}

type WeekPayResponse struct {
	PayType     string  `json:"pay_type"`
	WorkUnits   float64 `json:"work_units"`
	LeaveUnits  float64 `json:"leave_units"`
	UnpaidUnits float64 `json:"unpaid_units"`
	Amount      float64 `json:"amount"`
}

type DriverWeekResponse struct {
	DriverID   string          `json:"driver_id"`
	DriverName string          `json:"driver_name"`
	PayRate    float64         `json:"pay_rate"`
	WeekStart  string          `json:"week_start"`
	WeekEnd    string          `json:"week_end"`
	Week       string          `json:"week"`
	Days       []DayResponse   `json:"days"`
	Pay        WeekPayResponse `json:"pay"`
	Paid       bool            `json:"paid"`
	PaidAtUTC  *time.Time      `json:"paid_at_utc"`
}

type PayrollWeekResponse struct {
	WeekStart   string               `json:"week_start"`
	Week        string               `json:"week"`
	PrevWeek    string               `json:"prev_week"`
	NextWeek    string               `json:"next_week"`
	Drivers     []DriverWeekResponse `json:"drivers"`
	TotalAmount float64              `json:"total_amount"`
}

type SetDayRequest struct {
	Status string   `json:"status"`
	Hours  *float64 `json:"hours"`
	Notes  *string  `json:"notes"`
}

type MarkPaidRequest struct {
	Paid *bool `json:"paid"`
}

type SyncReportResponse struct {
	WeekStart string `json:"week_start"`
	Signals   int    `json:"signals"`
	Created   int    `json:"created"`
	Skipped   int    `json:"skipped"`
}
