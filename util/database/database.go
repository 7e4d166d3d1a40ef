package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct{ Pool *pgxpool.Pool }

func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &DB{Pool: p}, nil
}

func (d *DB) Close() { d.Pool.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	username      TEXT NOT NULL UNIQUE,
	principal     TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS vehicles (
	id                   TEXT PRIMARY KEY,
	name                 TEXT NOT NULL,
	image_url            TEXT NOT NULL,
	model                TEXT NOT NULL,
	price                BIGINT NOT NULL,
	engine_capacity      TEXT NOT NULL,
	top_speed            TEXT NOT NULL,
	company_name         TEXT NOT NULL,
	creator              TEXT NOT NULL,
	available            BOOLEAN NOT NULL DEFAULT TRUE,
	reserved             BOOLEAN NOT NULL DEFAULT FALSE,
	reserved_to          TEXT,
	reservation_deadline TIMESTAMPTZ,
	owner                TEXT,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CHECK (NOT (available AND reserved)),
	CHECK (NOT reserved OR (reserved_to IS NOT NULL AND reservation_deadline IS NOT NULL))
);

CREATE TABLE IF NOT EXISTS reservation_claims (
	memo        BIGINT PRIMARY KEY,
	vehicle_id  TEXT NOT NULL,
	claimant    TEXT NOT NULL,
	amount      BIGINT NOT NULL,
	block_index BIGINT,
	status      TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS reservation_claims_vehicle_idx ON reservation_claims (vehicle_id);
CREATE INDEX IF NOT EXISTS reservation_claims_status_idx ON reservation_claims (status);
`

// Migrate creates the tables the repositories rely on.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
