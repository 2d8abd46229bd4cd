package domain

import (
	"math"
	"time"
)

// DriverWeekPayroll is the manual "paid" checkpoint for one driver-week.
// It does not store an amount; pay is always recomputed from day entries,
// so a week marked paid can later show a different live amount.
type DriverWeekPayroll struct {
	DriverID        string
	WeekStartMonday time.Time
	Paid            bool
	PaidAtUTC       *time.Time
}

// WeekPay is the computed pay for one driver-week. For hourly drivers the
// unit fields hold hours; for shift drivers they hold day counts.
type WeekPay struct {
	PayType     PayType
	WorkUnits   float64
	LeaveUnits  float64
	UnpaidUnits float64
	Amount      float64
}

// DriverWeekSummary is the payroll view of one driver-week.
type DriverWeekSummary struct {
	Driver    Driver
	WeekStart time.Time
	ISOYear   int
	ISOWeek   int
	Days      [7]*DriverDayEntry
	Pay       WeekPay
	Paid      bool
	PaidAtUTC *time.Time
}

// RoundCurrency rounds an amount to whole pence.
func RoundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}

// TotalPay sums the live amounts of a set of driver-weeks.
func TotalPay(summaries []DriverWeekSummary) float64 {
	var total float64
	for _, s := range summaries {
		total += s.Pay.Amount
	}
	return RoundCurrency(total)
}
