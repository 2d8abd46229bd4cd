package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"transport-ops-service/internal/domain"
	"transport-ops-service/internal/platform/obs"
)

// Postgres-backed implementation of the DayEntryStore port.
// (driver_id, date) is the primary key; upserts replace the whole row.
type PostgresDayEntryStore struct{ DB *sql.DB }

func NewPostgresDayEntryStore(db *sql.DB) *PostgresDayEntryStore {
	return &PostgresDayEntryStore{DB: db}
}

const selectDayEntries = `
	SELECT driver_id, date, status, shifts_count, hours::float8, notes, provenance
	FROM driver_day_entries
	`

const upsertDayEntry = `
	INSERT INTO driver_day_entries (driver_id, date, status, shifts_count, hours, notes, provenance, updated_at)
	VALUES ($1, $2::date, $3, $4, $5, $6, $7, now())
	ON CONFLICT (driver_id, date) DO UPDATE
	SET status = EXCLUDED.status,
		shifts_count = EXCLUDED.shifts_count,
		hours = EXCLUDED.hours,
		notes = EXCLUDED.notes,
		provenance = EXCLUDED.provenance,
		updated_at = EXCLUDED.updated_at;
	`

func (s *PostgresDayEntryStore) ListRange(ctx context.Context, from, to time.Time) (_ []domain.DriverDayEntry, err error) {
	defer obs.Time(ctx, "dayentries.ListRange")(&err)

	query := selectDayEntries + `
	WHERE date BETWEEN $1::date AND $2::date
	ORDER BY driver_id, date;
	`
	return s.query(ctx, "list day entries", query, domain.FormatDate(from), domain.FormatDate(to))
}

func (s *PostgresDayEntryStore) ListDriverRange(ctx context.Context, driverID string, from, to time.Time) (_ []domain.DriverDayEntry, err error) {
	defer obs.Time(ctx, "dayentries.ListDriverRange")(&err)

	query := selectDayEntries + `
	WHERE driver_id = $1 AND date BETWEEN $2::date AND $3::date
	ORDER BY date;
	`
	return s.query(ctx, "list driver day entries", query, driverID, domain.FormatDate(from), domain.FormatDate(to))
}

func (s *PostgresDayEntryStore) query(ctx context.Context, op, query string, args ...any) ([]domain.DriverDayEntry, error) {
	if s.DB == nil {
		return nil, errors.New("postgres day entry store: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.Persist(op, fmt.Errorf("query driver_day_entries table: %w", err))
	}
	defer rows.Close()

	entries := make([]domain.DriverDayEntry, 0, 32)
	for rows.Next() {
		var (
			e          domain.DriverDayEntry
			date       time.Time
			status     string
			hours      sql.NullFloat64
			notes      sql.NullString
			provenance string
		)
		if err := rows.Scan(&e.DriverID, &date, &status, &e.ShiftsCount, &hours, &notes, &provenance); err != nil {
			return nil, domain.Persist(op, fmt.Errorf("scan row: %w", err))
		}

		e.Date = domain.DateOf(date)
		if e.Status, err = domain.ParseDayStatus(status); err != nil {
			return nil, domain.Persist(op, err)
		}
		if e.Provenance, err = domain.ParseProvenance(provenance); err != nil {
			return nil, domain.Persist(op, err)
		}
		if hours.Valid {
			h := hours.Float64
			e.Hours = &h
		}
		if notes.Valid {
			n := notes.String
			e.Notes = &n
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persist(op, fmt.Errorf("row iteration: %w", err))
	}

	return entries, nil
}

func (s *PostgresDayEntryStore) Upsert(ctx context.Context, entry domain.DriverDayEntry) error {
	if s.DB == nil {
		return errors.New("postgres day entry store: DB is nil")
	}

	if _, err := s.DB.ExecContext(ctx, upsertDayEntry, dayEntryArgs(entry)...); err != nil {
		return domain.Persist("upsert day entry", fmt.Errorf("driver_id=%s date=%s: %w",
			entry.DriverID, domain.FormatDate(entry.Date), err))
	}
	return nil
}

// UpsertMany writes every entry in one transaction.
func (s *PostgresDayEntryStore) UpsertMany(ctx context.Context, entries []domain.DriverDayEntry) (err error) {
	defer obs.Time(ctx, "dayentries.UpsertMany")(&err)

	if s.DB == nil {
		return errors.New("postgres day entry store: DB is nil")
	}
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Persist("upsert day entries", fmt.Errorf("db begin: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertDayEntry)
	if err != nil {
		return domain.Persist("upsert day entries", fmt.Errorf("db prepare: %w", err))
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, dayEntryArgs(e)...); err != nil {
			return domain.Persist("upsert day entries", fmt.Errorf("driver_id=%s date=%s: %w",
				e.DriverID, domain.FormatDate(e.Date), err))
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Persist("upsert day entries", fmt.Errorf("commit: %w", err))
	}
	return nil
}

func (s *PostgresDayEntryStore) Delete(ctx context.Context, driverID string, date time.Time) error {
	if s.DB == nil {
		return errors.New("postgres day entry store: DB is nil")
	}

	query := `
	DELETE FROM driver_day_entries
	WHERE driver_id = $1 AND date = $2::date;
	`
	if _, err := s.DB.ExecContext(ctx, query, driverID, domain.FormatDate(date)); err != nil {
		return domain.Persist("delete day entry", err)
	}
	return nil
}

func dayEntryArgs(e domain.DriverDayEntry) []any {
	var hours, notes any
	if e.Hours != nil {
		hours = *e.Hours
	}
	if e.Notes != nil {
		notes = *e.Notes
	}
	provenance := e.Provenance
	if provenance == "" {
		provenance = domain.ProvenanceManual
	}
	return []any{
		e.DriverID,
		domain.FormatDate(e.Date),
		string(e.Status),
		e.ShiftsCount,
		hours,
		notes,
		string(provenance),
	}
}
