package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoteNotFound = errors.New("note not found")

type NoteRepo struct {
	pool *pgxpool.Pool
}

type NoteRecord struct {
	ID        uuid.UUID
	UserID    int64
	Title     string
	Body      string
	Pinned    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewNoteRepo(pool *pgxpool.Pool) *NoteRepo {
	return &NoteRepo{pool: pool}
}

func (r *NoteRepo) Create(ctx context.Context, note NoteRecord) (NoteRecord, error) {
	if r.pool == nil {
		return NoteRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if note.UserID <= 0 {
		return NoteRecord{}, fmt.Errorf("invalid user id")
	}

	err := r.pool.QueryRow(ctx, `
INSERT INTO notes (id, user_id, title, body, pinned)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at, updated_at
`, note.ID, note.UserID, note.Title, note.Body, note.Pinned).Scan(&note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return NoteRecord{}, fmt.Errorf("create note: %w", err)
	}

	return note, nil
}

func (r *NoteRepo) Get(ctx context.Context, userID int64, id uuid.UUID) (NoteRecord, error) {
	if r.pool == nil {
		return NoteRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var note NoteRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, user_id, title, body, pinned, created_at, updated_at
FROM notes
WHERE id = $1 AND user_id = $2
`, id, userID).Scan(
		&note.ID, &note.UserID, &note.Title, &note.Body, &note.Pinned, &note.CreatedAt, &note.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return NoteRecord{}, ErrNoteNotFound
		}
		return NoteRecord{}, fmt.Errorf("get note: %w", err)
	}

	return note, nil
}

func (r *NoteRepo) ListByUser(ctx context.Context, userID int64) ([]NoteRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, title, body, pinned, created_at, updated_at
FROM notes
WHERE user_id = $1
ORDER BY pinned DESC, created_at DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []NoteRecord
	for rows.Next() {
		var note NoteRecord
		if err := rows.Scan(
			&note.ID, &note.UserID, &note.Title, &note.Body, &note.Pinned, &note.CreatedAt, &note.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}

	return notes, nil
}

func (r *NoteRepo) Update(ctx context.Context, note NoteRecord) (NoteRecord, error) {
	if r.pool == nil {
		return NoteRecord{}, fmt.Errorf("postgres pool is nil")
	}

	err := r.pool.QueryRow(ctx, `
UPDATE notes
SET title = $3, body = $4, pinned = $5, updated_at = NOW()
WHERE id = $1 AND user_id = $2
RETURNING created_at, updated_at
`, note.ID, note.UserID, note.Title, note.Body, note.Pinned).Scan(&note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return NoteRecord{}, ErrNoteNotFound
		}
		return NoteRecord{}, fmt.Errorf("update note: %w", err)
	}

	return note, nil
}

func (r *NoteRepo) Delete(ctx context.Context, userID int64, id uuid.UUID) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoteNotFound
	}

	return nil
}

func (r *NoteRepo) ListAll(ctx context.Context) ([]NoteRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, title, body, pinned, created_at, updated_at
FROM notes
ORDER BY user_id, created_at
`)
	if err != nil {
		return nil, fmt.Errorf("list all notes: %w", err)
	}
	defer rows.Close()

	var notes []NoteRecord
	for rows.Next() {
		var note NoteRecord
		if err := rows.Scan(
			&note.ID, &note.UserID, &note.Title, &note.Body, &note.Pinned, &note.CreatedAt, &note.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}

	return notes, nil
}
