package domain

import "fmt"

type PayType string

const (
	PayTypeHourly PayType = "hourly"
	PayTypeShift  PayType = "shift"
)

func ParsePayType(s string) (PayType, error) {
	switch PayType(s) {
	case PayTypeHourly, PayTypeShift:
		return PayType(s), nil
	}
	return "", fmt.Errorf("unknown pay type %q", s)
}

// Driver is read-only to payroll; it is maintained elsewhere.
type Driver struct {
	ID       string
	FullName string
	PayType  PayType
	PayRate  float64
}

// CompletedJobSignal records that a driver completed at least one job on Date.
type CompletedJobSignal struct {
	DriverID string
	Date     string
}
