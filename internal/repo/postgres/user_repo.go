package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	authsvc "github.com/Inkrex-dev/lab-dash-ex/internal/services/auth"
)

const pgUniqueViolation = "23505"

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create inserts a new user with an empty token list. The role is decided
// inside the statement: the first row ever inserted becomes admin, everything
// after becomes user. The subquery rides the store's isolation level; the
// residual race between two truly simultaneous first signups is accepted
// (see DESIGN.md).
func (r *UserRepo) Create(ctx context.Context, username, passwordHash string) (authsvc.UserRecord, error) {
	if r.pool == nil {
		return authsvc.UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if username == "" || passwordHash == "" {
		return authsvc.UserRecord{}, authsvc.ErrInvalidInput
	}

	var user authsvc.UserRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO users (username, password_hash, role)
VALUES ($1, $2, CASE WHEN EXISTS (SELECT 1 FROM users) THEN 'user' ELSE 'admin' END)
RETURNING id, username, password_hash, role, refresh_tokens, created_at
`, username, passwordHash).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.RefreshTokens, &user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return authsvc.UserRecord{}, authsvc.ErrUsernameTaken
		}
		return authsvc.UserRecord{}, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (authsvc.UserRecord, error) {
	if r.pool == nil {
		return authsvc.UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if username == "" {
		return authsvc.UserRecord{}, authsvc.ErrInvalidInput
	}

	var user authsvc.UserRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, username, password_hash, role, refresh_tokens, created_at
FROM users
WHERE username = $1
`, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.RefreshTokens, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authsvc.UserRecord{}, authsvc.ErrUserNotFound
		}
		return authsvc.UserRecord{}, fmt.Errorf("find user by username: %w", err)
	}

	return user, nil
}

func (r *UserRepo) HasUsers(ctx context.Context) (bool, error) {
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users)`).Scan(&exists); err != nil {
		return false, fmt.Errorf("check users exist: %w", err)
	}

	return exists, nil
}

// ReplaceRefreshTokens overwrites the user's whole token list in one write.
// Rotation and revocation both go through here, so every mutation is a single
// row update with no partial states.
func (r *UserRepo) ReplaceRefreshTokens(ctx context.Context, userID int64, tokens []string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return authsvc.ErrInvalidInput
	}
	if tokens == nil {
		tokens = []string{}
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE users
SET refresh_tokens = $2, updated_at = NOW()
WHERE id = $1
`, userID, tokens)
	if err != nil {
		return fmt.Errorf("replace refresh tokens: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return authsvc.ErrUserNotFound
	}

	return nil
}

// FindByRefreshToken returns the first user whose token list contains the
// value. Logout removes one occurrence from that user and stops scanning.
func (r *UserRepo) FindByRefreshToken(ctx context.Context, token string) (authsvc.UserRecord, error) {
	if r.pool == nil {
		return authsvc.UserRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if token == "" {
		return authsvc.UserRecord{}, authsvc.ErrInvalidInput
	}

	var user authsvc.UserRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, username, password_hash, role, refresh_tokens, created_at
FROM users
WHERE $1 = ANY (refresh_tokens)
ORDER BY id
LIMIT 1
`, token).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.RefreshTokens, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authsvc.UserRecord{}, authsvc.ErrUserNotFound
		}
		return authsvc.UserRecord{}, fmt.Errorf("find user by refresh token: %w", err)
	}

	return user, nil
}

// PurgeRefreshToken removes the token value from every user's list and
// returns the affected user ids. Only the reuse-detected path calls this.
func (r *UserRepo) PurgeRefreshToken(ctx context.Context, token string) ([]int64, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if token == "" {
		return nil, authsvc.ErrInvalidInput
	}

	rows, err := r.pool.Query(ctx, `
UPDATE users
SET refresh_tokens = array_remove(refresh_tokens, $1), updated_at = NOW()
WHERE $1 = ANY (refresh_tokens)
RETURNING id
`, token)
	if err != nil {
		return nil, fmt.Errorf("purge refresh token: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan purged user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purged users: %w", err)
	}

	return ids, nil
}

// ListAll returns every user without password hashes or token lists. The
// backup snapshot is the only caller.
func (r *UserRepo) ListAll(ctx context.Context) ([]authsvc.UserRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, username, role, created_at
FROM users
ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []authsvc.UserRecord
	for rows.Next() {
		var user authsvc.UserRecord
		if err := rows.Scan(&user.ID, &user.Username, &user.Role, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}
