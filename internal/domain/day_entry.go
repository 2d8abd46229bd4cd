package domain

import (
	"fmt"
	"sort"
	"time"
)

type DayStatus string

const (
	DayStatusWork  DayStatus = "work"
	DayStatusLeave DayStatus = "leave"
	DayStatusOff   DayStatus = "off"
	DayStatusSick  DayStatus = "sick"
)

func ParseDayStatus(s string) (DayStatus, error) {
	switch DayStatus(s) {
	case DayStatusWork, DayStatusLeave, DayStatusOff, DayStatusSick:
		return DayStatus(s), nil
	}
	return "", NewValidationError("status must be one of work, leave, off, sick (got %q)", s)
}

// Protected statuses are never overwritten by completed-job sync.
func (s DayStatus) Protected() bool {
	return s == DayStatusLeave || s == DayStatusOff || s == DayStatusSick
}

// Paid reports whether the status is paid at the driver's rate.
func (s DayStatus) Paid() bool {
	return s == DayStatusWork || s == DayStatusLeave
}

// Provenance distinguishes entries typed in by a user from ones created by sync.
type Provenance string

const (
	ProvenanceManual Provenance = "manual"
	ProvenanceAuto   Provenance = "auto"
)

func ParseProvenance(s string) (Provenance, error) {
	switch Provenance(s) {
	case ProvenanceManual, ProvenanceAuto:
		return Provenance(s), nil
	}
	return "", fmt.Errorf("unknown provenance %q", s)
}

// DriverDayEntry classifies one calendar day for one driver.
// Entries are keyed by (DriverID, Date); writing the same key replaces the record.
type DriverDayEntry struct {
	DriverID    string
	Date        time.Time
	Status      DayStatus
	ShiftsCount int
	Hours       *float64
	Notes       *string
	Provenance  Provenance
}

// DayKey is the natural key of a DriverDayEntry.
type DayKey struct {
	DriverID string
	Date     string
}

func (e DriverDayEntry) Key() DayKey {
	return DayKey{DriverID: e.DriverID, Date: FormatDate(e.Date)}
}

// NewManualEntry builds a user-entered day. Off and sick days carry no shift
// and no hours.
func NewManualEntry(driverID string, date time.Time, status DayStatus, hours *float64, notes *string) (DriverDayEntry, error) {
	if driverID == "" {
		return DriverDayEntry{}, NewValidationError("driver id is required")
	}
	if hours != nil && *hours < 0 {
		return DriverDayEntry{}, NewValidationError("hours must not be negative")
	}
	if hours != nil && *hours > 24 {
		return DriverDayEntry{}, NewValidationError("hours must not exceed 24")
	}

	e := DriverDayEntry{
		DriverID:   driverID,
		Date:       DateOf(date),
		Status:     status,
		Notes:      notes,
		Provenance: ProvenanceManual,
	}
	if status.Paid() {
		e.ShiftsCount = 1
		e.Hours = hours
	}
	return e, nil
}

// NewAutoWorkEntry builds the entry created when a completed job is found for a day.
func NewAutoWorkEntry(driverID string, date time.Time) DriverDayEntry {
	return DriverDayEntry{
		DriverID:    driverID,
		Date:        DateOf(date),
		Status:      DayStatusWork,
		ShiftsCount: 1,
		Provenance:  ProvenanceAuto,
	}
}

// DayEntryBook is an in-memory keyed set of day entries with
// replace-whole-record upsert semantics.
type DayEntryBook map[DayKey]DriverDayEntry

func NewDayEntryBook(entries []DriverDayEntry) DayEntryBook {
	b := make(DayEntryBook, len(entries))
	for _, e := range entries {
		b.Upsert(e)
	}
	return b
}

func (b DayEntryBook) Upsert(e DriverDayEntry) {
	e.Date = DateOf(e.Date)
	b[e.Key()] = e
}

func (b DayEntryBook) Get(k DayKey) (DriverDayEntry, bool) {
	e, ok := b[k]
	return e, ok
}

func (b DayEntryBook) Delete(k DayKey) {
	delete(b, k)
}

// Entries returns the book's entries ordered by driver then date.
func (b DayEntryBook) Entries() []DriverDayEntry {
	out := make([]DriverDayEntry, 0, len(b))
	for _, e := range b {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DriverID != out[j].DriverID {
			return out[i].DriverID < out[j].DriverID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
