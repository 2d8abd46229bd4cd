package domain

import "testing"

func TestNewManualEntryClearsUnpaidDays(t *testing.T) {
	date, _ := ParseDate("2026-01-06")
	hours := 7.5

	work, err := NewManualEntry("d1", date, DayStatusWork, &hours, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if work.ShiftsCount != 1 || work.Hours == nil || *work.Hours != 7.5 {
		t.Fatalf("work entry = %+v", work)
	}
	if work.Provenance != ProvenanceManual {
		t.Fatalf("provenance = %q, want manual", work.Provenance)
	}

	sick, err := NewManualEntry("d1", date, DayStatusSick, &hours, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sick.ShiftsCount != 0 || sick.Hours != nil {
		t.Fatalf("sick entry should carry no shift or hours: %+v", sick)
	}
}

func TestNewManualEntryValidatesHours(t *testing.T) {
	date, _ := ParseDate("2026-01-06")
	neg := -1.0
	if _, err := NewManualEntry("d1", date, DayStatusWork, &neg, nil); err == nil {
		t.Fatal("expected error for negative hours")
	}
	if _, err := NewManualEntry("", date, DayStatusWork, nil, nil); err == nil {
		t.Fatal("expected error for missing driver")
	}
}

func TestDayEntryBookUpsertReplacesWholeRecord(t *testing.T) {
	date, _ := ParseDate("2026-01-06")
	note := "late start"
	hours := 9.0

	book := DayEntryBook{}
	book.Upsert(DriverDayEntry{DriverID: "d1", Date: date, Status: DayStatusWork, Hours: &hours, Notes: &note, Provenance: ProvenanceManual})
	book.Upsert(NewAutoWorkEntry("d1", date))

	if len(book) != 1 {
		t.Fatalf("book has %d entries, want 1", len(book))
	}
	got, ok := book.Get(DayKey{DriverID: "d1", Date: "2026-01-06"})
	if !ok {
		t.Fatal("entry missing")
	}
	if got.Notes != nil || got.Hours != nil || got.Provenance != ProvenanceAuto {
		t.Fatalf("upsert should replace the whole record, got %+v", got)
	}

	book.Delete(got.Key())
	if len(book) != 0 {
		t.Fatalf("delete left %d entries", len(book))
	}
}

func TestParseDayStatus(t *testing.T) {
	for _, s := range []string{"work", "leave", "off", "sick"} {
		if _, err := ParseDayStatus(s); err != nil {
			t.Errorf("ParseDayStatus(%q): %v", s, err)
		}
	}
	if _, err := ParseDayStatus("holiday"); err == nil {
		t.Error("expected error for unknown status")
	}
}
