package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"transport-ops-service/internal/domain"
	"transport-ops-service/internal/platform/obs"

	"github.com/google/uuid"
)

const (
	JobStatusPlanned   = "planned"
	JobStatusCompleted = "completed"
)

// Postgres-backed job storage: route persistence and completed-job signals.
type PostgresJobRepository struct{ DB *sql.DB }

func NewPostgresJobRepository(db *sql.DB) *PostgresJobRepository {
	return &PostgresJobRepository{DB: db}
}

// One signal per (driver, day) with at least one completed job.
func (r *PostgresJobRepository) ListCompletedJobSignals(ctx context.Context, from, to time.Time) ([]domain.CompletedJobSignal, error) {
	if r.DB == nil {
		return nil, errors.New("postgres job repository: DB is nil")
	}

	query := `
	SELECT DISTINCT driver_id, job_date
	FROM jobs
	WHERE status = $1
	  AND driver_id IS NOT NULL
	  AND job_date BETWEEN $2::date AND $3::date
	ORDER BY driver_id, job_date;
	`
	rows, err := r.DB.QueryContext(ctx, query, JobStatusCompleted, domain.FormatDate(from), domain.FormatDate(to))
	if err != nil {
		return nil, domain.Persist("list completed jobs", fmt.Errorf("query jobs table: %w", err))
	}
	defer rows.Close()

	var out []domain.CompletedJobSignal
	for rows.Next() {
		var driverID string
		var date time.Time
		if err := rows.Scan(&driverID, &date); err != nil {
			return nil, domain.Persist("list completed jobs", fmt.Errorf("scan row: %w", err))
		}
		out = append(out, domain.CompletedJobSignal{DriverID: driverID, Date: domain.FormatDate(date)})
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persist("list completed jobs", fmt.Errorf("row iteration: %w", err))
	}
	return out, nil
}

// SaveRoute replaces the job's stops and distance in one transaction.
func (r *PostgresJobRepository) SaveRoute(ctx context.Context, jobID string, route *domain.RouteResult) (err error) {
	defer obs.Time(ctx, "jobs.SaveRoute")(&err)

	if r.DB == nil {
		return errors.New("postgres job repository: DB is nil")
	}
	if route == nil {
		return errors.New("save route: route is nil")
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Persist("save route", fmt.Errorf("db begin: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	var miles any
	if route.TotalDistanceMiles != nil {
		miles = *route.TotalDistanceMiles
	}
	res, err := tx.ExecContext(ctx, `
	UPDATE jobs SET total_distance_miles = $2
	WHERE id = $1;
	`, jobID, miles)
	if err != nil {
		return domain.Persist("save route", fmt.Errorf("update job: %w", err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("save route: job %s: %w", jobID, domain.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM job_stops WHERE job_id = $1;`, jobID); err != nil {
		return domain.Persist("save route", fmt.Errorf("delete stops: %w", err))
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO job_stops (id, job_id, sequence, postcode, display_name, planned_time_utc, latitude, longitude)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`)
	if err != nil {
		return domain.Persist("save route", fmt.Errorf("db prepare: %w", err))
	}
	defer stmt.Close()

	for _, s := range route.Stops {
		_, err := stmt.ExecContext(ctx,
			uuid.NewString(), jobID, s.Sequence, s.Postcode,
			nullableString(s.DisplayName), nullableTime(s.PlannedTimeUTC),
			nullableFloat(s.Latitude), nullableFloat(s.Longitude),
		)
		if err != nil {
			return domain.Persist("save route", fmt.Errorf("insert stop %d: %w", s.Sequence, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Persist("save route", fmt.Errorf("commit: %w", err))
	}
	return nil
}

func (r *PostgresJobRepository) GetRoute(ctx context.Context, jobID string) (*domain.RouteResult, error) {
	if r.DB == nil {
		return nil, errors.New("postgres job repository: DB is nil")
	}

	var miles sql.NullFloat64
	err := r.DB.QueryRowContext(ctx, `
	SELECT total_distance_miles::float8 FROM jobs WHERE id = $1;
	`, jobID).Scan(&miles)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get route: job %s: %w", jobID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, domain.Persist("get route", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
	SELECT sequence, postcode, display_name, planned_time_utc, latitude, longitude
	FROM job_stops
	WHERE job_id = $1
	ORDER BY sequence;
	`, jobID)
	if err != nil {
		return nil, domain.Persist("get route", fmt.Errorf("query job_stops table: %w", err))
	}
	defer rows.Close()

	route := &domain.RouteResult{Stops: []domain.ResolvedStop{}}
	if miles.Valid {
		m := miles.Float64
		route.TotalDistanceMiles = &m
	}
	for rows.Next() {
		var (
			s        domain.ResolvedStop
			name     sql.NullString
			planned  sql.NullTime
			lat, lon sql.NullFloat64
		)
		if err := rows.Scan(&s.Sequence, &s.Postcode, &name, &planned, &lat, &lon); err != nil {
			return nil, domain.Persist("get route", fmt.Errorf("scan row: %w", err))
		}
		if name.Valid {
			v := name.String
			s.DisplayName = &v
		}
		if planned.Valid {
			v := planned.Time.UTC()
			s.PlannedTimeUTC = &v
		}
		if lat.Valid {
			v := lat.Float64
			s.Latitude = &v
		}
		if lon.Valid {
			v := lon.Float64
			s.Longitude = &v
		}
		route.Stops = append(route.Stops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persist("get route", fmt.Errorf("row iteration: %w", err))
	}
	return route, nil
}

func nullableString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}
