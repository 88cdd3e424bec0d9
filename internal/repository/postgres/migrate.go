package postgres

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migration is one named schema change, applied at most once
type Migration struct {
	Name string
	SQL  string
}

// Migrate brings the schema up to date. Applied migrations are recorded in a
// migrations table so repeated startups are safe.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	createSQL := `
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			executed_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := pool.Exec(ctx, createSQL); err != nil {
		return fmt.Errorf("postgres: failed to create migrations table: %w", err)
	}

	for _, m := range migrations() {
		if err := runMigrationIfNotExists(ctx, pool, m); err != nil {
			return fmt.Errorf("postgres: failed to run migration %s: %w", m.Name, err)
		}
	}

	return nil
}

func migrations() []Migration {
	return []Migration{
		{
			Name: "001_create_users_table",
			SQL: `
			CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				phone TEXT NOT NULL DEFAULT '',
				password_hash TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
			`,
		},
		{
			Name: "002_create_farms_table",
			SQL: `
			CREATE TABLE IF NOT EXISTS farms (
				id TEXT PRIMARY KEY,
				owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				code TEXT NOT NULL UNIQUE,
				name TEXT NOT NULL,
				district TEXT NOT NULL,
				village TEXT NOT NULL DEFAULT '',
				land_size_acres DOUBLE PRECISION NOT NULL DEFAULT 0,
				soil_type TEXT NOT NULL DEFAULT '',
				irrigation_type TEXT NOT NULL DEFAULT '',
				crops TEXT[] NOT NULL DEFAULT '{}',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE INDEX IF NOT EXISTS idx_farms_owner ON farms (owner_id)
			`,
		},
		{
			Name: "003_create_expenses_table",
			SQL: `
			CREATE TABLE IF NOT EXISTS expenses (
				id TEXT PRIMARY KEY,
				farm_id TEXT NOT NULL REFERENCES farms(id) ON DELETE CASCADE,
				user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				category TEXT NOT NULL,
				description TEXT NOT NULL,
				quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
				unit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
				amount DOUBLE PRECISION NOT NULL,
				incurred_on DATE NOT NULL,
				notes TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE INDEX IF NOT EXISTS idx_expenses_user ON expenses (user_id, incurred_on);
			CREATE INDEX IF NOT EXISTS idx_expenses_farm ON expenses (farm_id)
			`,
		},
		{
			Name: "004_create_weather_records_table",
			SQL: `
			CREATE TABLE IF NOT EXISTS weather_records (
				id BIGSERIAL PRIMARY KEY,
				farm_id TEXT NOT NULL REFERENCES farms(id) ON DELETE CASCADE,
				temperature_c DOUBLE PRECISION NOT NULL,
				humidity INTEGER NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				wind_speed_kmh DOUBLE PRECISION NOT NULL DEFAULT 0,
				pressure_hpa DOUBLE PRECISION NOT NULL DEFAULT 0,
				precip_mm DOUBLE PRECISION NOT NULL DEFAULT 0,
				recorded_at TIMESTAMPTZ NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_weather_farm_time ON weather_records (farm_id, recorded_at)
			`,
		},
	}
}

func runMigrationIfNotExists(ctx context.Context, pool *pgxpool.Pool, m Migration) error {
	var count int
	err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM migrations WHERE name = $1", m.Name).Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Printf("Running migration: %s", m.Name)
	if _, err := pool.Exec(ctx, m.SQL); err != nil {
		return err
	}

	_, err = pool.Exec(ctx, "INSERT INTO migrations (name) VALUES ($1)", m.Name)
	return err
}
