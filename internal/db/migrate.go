package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate crea las tablas del portal si no existen. Los constraints UNIQUE
// sobre username, email y federated_uid son la garantia de unicidad bajo
// concurrencia: el codigo de aplicacion trata sus violaciones como la senal
// autoritativa de colision.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			full_name TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL DEFAULT '',
			auth_provider TEXT NOT NULL,
			federated_uid TEXT UNIQUE,
			profile_picture TEXT NOT NULL DEFAULT '',
			phone_number TEXT NOT NULL DEFAULT '',
			date_of_birth DATE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL,
			last_login_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS doctors (
			id UUID PRIMARY KEY,
			full_name TEXT NOT NULL,
			gender TEXT NOT NULL DEFAULT '',
			date_of_birth DATE,
			specialty TEXT NOT NULL,
			phone_number TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			available_days TEXT NOT NULL DEFAULT '',
			available_time TEXT NOT NULL DEFAULT '',
			years_experience INT NOT NULL DEFAULT 0,
			qualification TEXT NOT NULL DEFAULT '',
			profile_photo TEXT NOT NULL DEFAULT '',
			bio TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS appointments (
			id UUID PRIMARY KEY,
			doctor_id UUID NOT NULL REFERENCES doctors(id),
			account_id UUID NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			date DATE NOT NULL,
			time TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS medical_records (
			id UUID PRIMARY KEY,
			account_id UUID NOT NULL UNIQUE REFERENCES accounts(id) ON DELETE CASCADE,
			full_name TEXT NOT NULL DEFAULT '',
			date_of_birth DATE,
			gender TEXT NOT NULL DEFAULT '',
			phone_number TEXT NOT NULL DEFAULT '',
			symptoms TEXT NOT NULL DEFAULT '',
			symptoms_started_at TIMESTAMPTZ,
			current_medication TEXT NOT NULL DEFAULT '',
			allergies TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
