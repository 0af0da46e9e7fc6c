package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Bootstrap creates the schema on first start. Statements are idempotent so
// the app can run it unconditionally.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	statements := []string{
		`
CREATE TABLE IF NOT EXISTS users (
	id             BIGSERIAL PRIMARY KEY,
	username       TEXT NOT NULL UNIQUE,
	password_hash  TEXT NOT NULL,
	role           TEXT NOT NULL DEFAULT 'user',
	refresh_tokens TEXT[] NOT NULL DEFAULT '{}',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
		`
CREATE TABLE IF NOT EXISTS notes (
	id         UUID PRIMARY KEY,
	user_id    BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	title      TEXT NOT NULL,
	body       TEXT NOT NULL DEFAULT '',
	pinned     BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
		`CREATE INDEX IF NOT EXISTS notes_user_id_idx ON notes (user_id, created_at DESC)`,
		`
CREATE TABLE IF NOT EXISTS dashboards (
	user_id    BIGINT PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
	settings   JSONB NOT NULL DEFAULT '{}'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
		`
CREATE TABLE IF NOT EXISTS backups (
	id         BIGSERIAL PRIMARY KEY,
	object_key TEXT NOT NULL,
	size_bytes BIGINT NOT NULL,
	taken_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}

	return nil
}
