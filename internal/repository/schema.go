package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables this service reads and writes. Safe
// to run on every boot.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			role       TEXT NOT NULL DEFAULT 'customer',
			full_name  TEXT,
			name       TEXT,
			email      TEXT,
			fcm_token  TEXT,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS notifications (
			id                TEXT PRIMARY KEY,
			user_id           TEXT NOT NULL,
			type              TEXT NOT NULL,
			title             TEXT NOT NULL,
			message           TEXT NOT NULL,
			related_entity_id TEXT NOT NULL,
			read              BOOLEAN NOT NULL DEFAULT false,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_notifications_user_created
			ON notifications (user_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_users_role
			ON users (role);
	`
	_, err := db.Exec(ctx, schema)
	return err
}
