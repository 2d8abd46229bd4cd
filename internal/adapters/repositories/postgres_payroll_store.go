package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"transport-ops-service/internal/domain"
)

// Postgres-backed implementation of the PayrollStore port.
type PostgresPayrollStore struct{ DB *sql.DB }

func NewPostgresPayrollStore(db *sql.DB) *PostgresPayrollStore {
	return &PostgresPayrollStore{DB: db}
}

func (s *PostgresPayrollStore) GetWeek(ctx context.Context, driverID string, monday time.Time) (domain.DriverWeekPayroll, error) {
	if s.DB == nil {
		return domain.DriverWeekPayroll{}, errors.New("postgres payroll store: DB is nil")
	}

	query := `
	SELECT driver_id, week_start_monday, paid, paid_at_utc
	FROM driver_week_payroll
	WHERE driver_id = $1 AND week_start_monday = $2::date;
	`
	p, err := scanWeekPayroll(s.DB.QueryRowContext(ctx, query, driverID, domain.FormatDate(domain.WeekStart(monday))))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DriverWeekPayroll{}, fmt.Errorf("get week payroll: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.DriverWeekPayroll{}, domain.Persist("get week payroll", err)
	}
	return p, nil
}

func (s *PostgresPayrollStore) ListWeek(ctx context.Context, monday time.Time) ([]domain.DriverWeekPayroll, error) {
	if s.DB == nil {
		return nil, errors.New("postgres payroll store: DB is nil")
	}

	query := `
	SELECT driver_id, week_start_monday, paid, paid_at_utc
	FROM driver_week_payroll
	WHERE week_start_monday = $1::date
	ORDER BY driver_id;
	`
	rows, err := s.DB.QueryContext(ctx, query, domain.FormatDate(domain.WeekStart(monday)))
	if err != nil {
		return nil, domain.Persist("list week payroll", fmt.Errorf("query driver_week_payroll table: %w", err))
	}
	defer rows.Close()

	var out []domain.DriverWeekPayroll
	for rows.Next() {
		p, err := scanWeekPayroll(rows)
		if err != nil {
			return nil, domain.Persist("list week payroll", fmt.Errorf("scan row: %w", err))
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persist("list week payroll", fmt.Errorf("row iteration: %w", err))
	}
	return out, nil
}

// SetWeek upserts the paid checkpoint for (driver, week).
func (s *PostgresPayrollStore) SetWeek(ctx context.Context, p domain.DriverWeekPayroll) error {
	if s.DB == nil {
		return errors.New("postgres payroll store: DB is nil")
	}

	query := `
	INSERT INTO driver_week_payroll (driver_id, week_start_monday, paid, paid_at_utc)
	VALUES ($1, $2::date, $3, $4)
	ON CONFLICT (driver_id, week_start_monday) DO UPDATE
	SET paid = EXCLUDED.paid,
		paid_at_utc = EXCLUDED.paid_at_utc;
	`
	var paidAt any
	if p.PaidAtUTC != nil {
		paidAt = p.PaidAtUTC.UTC()
	}
	_, err := s.DB.ExecContext(ctx, query, p.DriverID, domain.FormatDate(domain.WeekStart(p.WeekStartMonday)), p.Paid, paidAt)
	if err != nil {
		return domain.Persist("set week payroll", fmt.Errorf("driver_id=%s: %w", p.DriverID, err))
	}
	return nil
}

func scanWeekPayroll(row rowScanner) (domain.DriverWeekPayroll, error) {
	var (
		p      domain.DriverWeekPayroll
		monday time.Time
		paidAt sql.NullTime
	)
	if err := row.Scan(&p.DriverID, &monday, &p.Paid, &paidAt); err != nil {
		return domain.DriverWeekPayroll{}, err
	}
	p.WeekStartMonday = domain.DateOf(monday)
	if paidAt.Valid {
		t := paidAt.Time.UTC()
		p.PaidAtUTC = &t
	}
	return p, nil
}
