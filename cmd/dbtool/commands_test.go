package main

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestWeekFlag(t *testing.T) {
	got, err := weekFlag("2026-01-08")
	if err != nil {
		t.Fatalf("weekFlag: %v", err)
	}
	if want := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("weekFlag = %v, want %v", got, want)
	}

	now, err := weekFlag("")
	if err != nil || now.Weekday() != time.Monday {
		t.Fatalf("default week = %v (%v), want a Monday", now, err)
	}

	if _, err := weekFlag("8/1/2026"); err == nil {
		t.Fatal("expected error for malformed week")
	}
}

func TestCommandsRequireDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	for _, args := range [][]string{
		{"migrate"},
		{"seed", "--file", "missing.json"},
		{"sync-week", "--week", "2026-01-05"},
		{"export-payroll", "--week", "2026-01-05", "--out", t.TempDir()},
	} {
		err := runWithContext(context.Background(), args)
		if err == nil || !strings.Contains(err.Error(), "DATABASE_URL is required") {
			t.Fatalf("%v: err = %v, want DATABASE_URL error", args, err)
		}
	}
}

func TestSyncWeekRejectsBadWeek(t *testing.T) {
	err := runWithContext(context.Background(), []string{"sync-week", "--week", "next tuesday"})
	if err == nil || !strings.Contains(err.Error(), "invalid date") {
		t.Fatalf("err = %v, want invalid date", err)
	}
}
