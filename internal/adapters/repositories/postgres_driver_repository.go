package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"transport-ops-service/internal/domain"
)

// Postgres-backed implementation of the DriverRepository port.
type PostgresDriverRepository struct{ DB *sql.DB }

func NewPostgresDriverRepository(db *sql.DB) *PostgresDriverRepository {
	return &PostgresDriverRepository{DB: db}
}

func (r *PostgresDriverRepository) GetDriver(ctx context.Context, id string) (domain.Driver, error) {
	if r.DB == nil {
		return domain.Driver{}, errors.New("postgres driver repository: DB is nil")
	}

	query := `
	SELECT id, full_name, pay_type, pay_rate::float8
	FROM drivers
	WHERE id = $1;
	`
	d, err := scanDriver(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Driver{}, fmt.Errorf("get driver %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Driver{}, domain.Persist("get driver", err)
	}
	return d, nil
}

// Return all drivers ordered by name.
func (r *PostgresDriverRepository) ListDrivers(ctx context.Context) ([]domain.Driver, error) {
	if r.DB == nil {
		return nil, errors.New("postgres driver repository: DB is nil")
	}

	query := `
	SELECT id, full_name, pay_type, pay_rate::float8
	FROM drivers
	ORDER BY full_name, id;
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.Persist("list drivers", fmt.Errorf("query drivers table: %w", err))
	}
	defer rows.Close()

	drivers := make([]domain.Driver, 0, 32)
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, domain.Persist("list drivers", fmt.Errorf("scan row: %w", err))
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persist("list drivers", fmt.Errorf("row iteration: %w", err))
	}

	return drivers, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDriver(row rowScanner) (domain.Driver, error) {
	var d domain.Driver
	var payType string
	if err := row.Scan(&d.ID, &d.FullName, &payType, &d.PayRate); err != nil {
		return domain.Driver{}, err
	}
	pt, err := domain.ParsePayType(payType)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("driver %s: %w", d.ID, err)
	}
	d.PayType = pt
	return d, nil
}
