package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/rentyield/yieldgate/internal/model"
	"github.com/shopspring/decimal"
)

// PostgresVenueRepo persists venue descriptor snapshots for the
// reporting surface.
type PostgresVenueRepo struct {
	db *sqlx.DB
}

func NewPostgresVenueRepo(db *sqlx.DB) *PostgresVenueRepo {
	repo := &PostgresVenueRepo{db: db}
	_ = repo.ensureSchema(context.Background())
	return repo
}

func (r *PostgresVenueRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS venue_snapshots (
			name TEXT PRIMARY KEY,
			version TEXT NOT NULL,
			current_apy_bps BIGINT NOT NULL,
			healthy BOOLEAN NOT NULL,
			total_managed NUMERIC NOT NULL,
			observed_at TIMESTAMPTZ NOT NULL
		)
	`)
	return err
}

func (r *PostgresVenueRepo) SaveVenueSnapshot(ctx context.Context, d model.VenueDescriptor) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO venue_snapshots (name, version, current_apy_bps, healthy, total_managed, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE SET
			version = EXCLUDED.version,
			current_apy_bps = EXCLUDED.current_apy_bps,
			healthy = EXCLUDED.healthy,
			total_managed = EXCLUDED.total_managed,
			observed_at = EXCLUDED.observed_at
	`, d.Name, d.Version, d.CurrentAPYBps, d.Healthy, d.TotalManaged.String(), d.ObservedAt)
	return err
}

func (r *PostgresVenueRepo) List(ctx context.Context) ([]model.VenueDescriptor, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT name, version, current_apy_bps, healthy, total_managed, observed_at
		FROM venue_snapshots ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.VenueDescriptor{}
	for rows.Next() {
		var d model.VenueDescriptor
		var total string
		if err := rows.Scan(&d.Name, &d.Version, &d.CurrentAPYBps, &d.Healthy, &total, &d.ObservedAt); err != nil {
			return nil, err
		}
		if d.TotalManaged, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
