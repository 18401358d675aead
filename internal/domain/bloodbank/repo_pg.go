package bloodbank

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicore/clinicore/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const stockCols = `id, blood_group, units, updated_at`

func scanStock(row pgx.Row) (*BloodStock, error) {
	var s BloodStock
	err := row.Scan(&s.ID, &s.Group, &s.Units, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) List(ctx context.Context) ([]*BloodStock, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+stockCols+` FROM blood_stock ORDER BY blood_group`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*BloodStock
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *repoPG) GetByGroup(ctx context.Context, group string) (*BloodStock, error) {
	return scanStock(r.conn(ctx).QueryRow(ctx,
		`SELECT `+stockCols+` FROM blood_stock WHERE blood_group = $1`, group))
}

func (r *repoPG) Upsert(ctx context.Context, group string, units int) (*BloodStock, error) {
	return scanStock(r.conn(ctx).QueryRow(ctx, `
		INSERT INTO blood_stock (id, blood_group, units)
		VALUES ($1, $2, $3)
		ON CONFLICT (blood_group)
		DO UPDATE SET units = EXCLUDED.units, updated_at = NOW()
		RETURNING `+stockCols,
		uuid.New(), group, units))
}

// Adjust guards against underflow in the UPDATE itself so that concurrent
// withdrawals cannot drive units below zero.
func (r *repoPG) Adjust(ctx context.Context, group string, delta int) (*BloodStock, error) {
	s, err := scanStock(r.conn(ctx).QueryRow(ctx, `
		UPDATE blood_stock SET units = units + $2, updated_at = NOW()
		WHERE blood_group = $1 AND units + $2 >= 0
		RETURNING `+stockCols, group, delta))
	if errors.Is(err, ErrNotFound) {
		// A donation to a group with no row yet starts the stock; a
		// withdrawal from it is an underflow.
		if delta > 0 {
			return r.Upsert(ctx, group, delta)
		}
		if _, getErr := r.GetByGroup(ctx, group); getErr != nil {
			return nil, getErr
		}
		return nil, ErrInsufficientUnits
	}
	return s, err
}
