package services

import (
	"time"
	"transport-ops-service/internal/domain"
)

// CalculatePay computes a driver's pay for one Monday..Sunday week.
//
// Work and leave days are paid at the driver's rate; off and sick days are
// counted as unpaid and never contribute to the amount. Days with no entry are
// left out of every total. Shift drivers earn one unit per qualifying day,
// hourly drivers earn the recorded hours.
func CalculatePay(driver domain.Driver, days [7]*domain.DriverDayEntry) domain.WeekPay {
	pay := domain.WeekPay{PayType: driver.PayType}

	for _, d := range days {
		if d == nil {
			continue
		}

		units := dayUnits(driver.PayType, d)
		switch d.Status {
		case domain.DayStatusWork:
			pay.WorkUnits += units
		case domain.DayStatusLeave:
			pay.LeaveUnits += units
		case domain.DayStatusOff, domain.DayStatusSick:
			// Unpaid hours are always zero, whatever is stored on the record.
			if driver.PayType == domain.PayTypeShift {
				pay.UnpaidUnits += units
			}
		}
	}

	pay.Amount = domain.RoundCurrency((pay.WorkUnits + pay.LeaveUnits) * driver.PayRate)
	return pay
}

func dayUnits(payType domain.PayType, d *domain.DriverDayEntry) float64 {
	if payType == domain.PayTypeShift {
		return 1
	}
	if !d.Status.Paid() || d.Hours == nil {
		return 0
	}
	return *d.Hours
}

// SlotWeek places one driver's entries into Monday..Sunday slots. Entries for
// other drivers or outside the week are ignored.
func SlotWeek(driverID string, monday time.Time, entries []domain.DriverDayEntry) [7]*domain.DriverDayEntry {
	var days [7]*domain.DriverDayEntry
	start := domain.WeekStart(monday)

	for i := range entries {
		e := entries[i]
		if e.DriverID != driverID {
			continue
		}
		offset := int(domain.DateOf(e.Date).Sub(start).Hours() / 24)
		if offset < 0 || offset > 6 {
			continue
		}
		days[offset] = &e
	}
	return days
}
