package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"transport-ops-service/internal/domain"
)

// Initialize the Postgres schema used by routing and payroll.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDriversQuery := `
	CREATE TABLE IF NOT EXISTS drivers (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		pay_type TEXT NOT NULL CHECK (pay_type IN ('hourly', 'shift')),
		pay_rate NUMERIC(10, 2) NOT NULL DEFAULT 0 CHECK (pay_rate >= 0)
	);
	`

	createJobsQuery := `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		driver_id TEXT REFERENCES drivers(id),
		job_date DATE NOT NULL,
		status TEXT NOT NULL DEFAULT 'planned',
		total_distance_miles NUMERIC(10, 1)
	);
	`

	createJobStopsQuery := `
	CREATE TABLE IF NOT EXISTS job_stops (
		id UUID PRIMARY KEY,
		job_id TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
		sequence INTEGER NOT NULL CHECK (sequence >= 1),
		postcode TEXT NOT NULL,
		display_name TEXT,
		planned_time_utc TIMESTAMPTZ,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		UNIQUE (job_id, sequence)
	);
	`

	createDayEntriesQuery := `
	CREATE TABLE IF NOT EXISTS driver_day_entries (
		driver_id TEXT NOT NULL REFERENCES drivers(id),
		date DATE NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('work', 'leave', 'off', 'sick')),
		shifts_count INTEGER NOT NULL DEFAULT 0 CHECK (shifts_count IN (0, 1)),
		hours NUMERIC(5, 2),
		notes TEXT,
		provenance TEXT NOT NULL DEFAULT 'manual' CHECK (provenance IN ('manual', 'auto')),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (driver_id, date)
	);
	`

	createWeekPayrollQuery := `
	CREATE TABLE IF NOT EXISTS driver_week_payroll (
		driver_id TEXT NOT NULL REFERENCES drivers(id),
		week_start_monday DATE NOT NULL,
		paid BOOLEAN NOT NULL DEFAULT false,
		paid_at_utc TIMESTAMPTZ,
		PRIMARY KEY (driver_id, week_start_monday)
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS postcode_geocode_cache (
		postcode TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		cached_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_jobs_status_job_date
	ON jobs(status, job_date);
	`

	statements := []string{
		createDriversQuery,
		createJobsQuery,
		createJobStopsQuery,
		createDayEntriesQuery,
		createWeekPayrollQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type DriverSeed struct {
	ID       string  `json:"id"`
	FullName string  `json:"full_name"`
	PayType  string  `json:"pay_type"`
	PayRate  float64 `json:"pay_rate"`
}

type JobSeed struct {
	ID       string `json:"id"`
	DriverID string `json:"driver_id"`
	Date     string `json:"date"`
	Status   string `json:"status"`
}

type Seed struct {
	Drivers []DriverSeed `json:"drivers"`
	Jobs    []JobSeed    `json:"jobs"`
}

// SeedJob is a validated job row from a seed file.
type SeedJob struct {
	ID       string
	DriverID string
	Date     time.Time
	Status   string
}

// ReadSeed loads and validates a seed file of drivers and jobs.
func ReadSeed(jsonPath string) ([]domain.Driver, []SeedJob, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, nil, fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	var data Seed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, nil, fmt.Errorf("seed: parse json: %w", err)
	}

	drivers := make([]domain.Driver, 0, len(data.Drivers))
	known := make(map[string]struct{}, len(data.Drivers))
	for i, item := range data.Drivers {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return nil, nil, fmt.Errorf("seed drivers: item at index %d: id cannot be empty", i+1)
		}
		payType, err := domain.ParsePayType(strings.ToLower(strings.TrimSpace(item.PayType)))
		if err != nil {
			return nil, nil, fmt.Errorf("seed drivers: id=%s: %w", id, err)
		}
		if item.PayRate < 0 {
			return nil, nil, fmt.Errorf("seed drivers: id=%s: pay rate cannot be negative", id)
		}
		known[id] = struct{}{}
		drivers = append(drivers, domain.Driver{
			ID:       id,
			FullName: strings.TrimSpace(item.FullName),
			PayType:  payType,
			PayRate:  item.PayRate,
		})
	}

	jobs := make([]SeedJob, 0, len(data.Jobs))
	for i, item := range data.Jobs {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			return nil, nil, fmt.Errorf("seed jobs: item at index %d: id cannot be empty", i+1)
		}
		if _, ok := known[item.DriverID]; item.DriverID != "" && !ok {
			return nil, nil, fmt.Errorf("seed jobs: id=%s: unknown driver %q", id, item.DriverID)
		}
		date, err := domain.ParseDate(item.Date)
		if err != nil {
			return nil, nil, fmt.Errorf("seed jobs: id=%s: %w", id, err)
		}
		status := strings.TrimSpace(item.Status)
		if status == "" {
			status = JobStatusPlanned
		}
		jobs = append(jobs, SeedJob{ID: id, DriverID: item.DriverID, Date: date, Status: status})
	}

	return drivers, jobs, nil
}

// Populate the database with driver and job data from a JSON file.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	drivers, jobs, err := ReadSeed(jsonPath)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	driverStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO drivers (id, full_name, pay_type, pay_rate)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE
	SET full_name = EXCLUDED.full_name,
		pay_type = EXCLUDED.pay_type,
		pay_rate = EXCLUDED.pay_rate;
	`)
	if err != nil {
		return fmt.Errorf("seed drivers: prepare insert: %w", err)
	}
	defer driverStmt.Close()

	for _, d := range drivers {
		if _, err := driverStmt.ExecContext(ctx, d.ID, d.FullName, string(d.PayType), d.PayRate); err != nil {
			return fmt.Errorf("seed drivers: insert id=%s: %w", d.ID, err)
		}
	}

	jobStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO jobs (id, driver_id, job_date, status)
	VALUES ($1, NULLIF($2, ''), $3, $4)
	ON CONFLICT (id) DO UPDATE
	SET driver_id = EXCLUDED.driver_id,
		job_date = EXCLUDED.job_date,
		status = EXCLUDED.status;
	`)
	if err != nil {
		return fmt.Errorf("seed jobs: prepare insert: %w", err)
	}
	defer jobStmt.Close()

	for _, j := range jobs {
		if _, err := jobStmt.ExecContext(ctx, j.ID, j.DriverID, j.Date, j.Status); err != nil {
			return fmt.Errorf("seed jobs: insert id=%s: %w", j.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}
