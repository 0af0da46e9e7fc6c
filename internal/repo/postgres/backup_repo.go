package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrBackupNotFound = errors.New("backup not found")

type BackupRepo struct {
	pool *pgxpool.Pool
}

type BackupRecord struct {
	ID        int64
	ObjectKey string
	SizeBytes int64
	TakenAt   time.Time
}

func NewBackupRepo(pool *pgxpool.Pool) *BackupRepo {
	return &BackupRepo{pool: pool}
}

func (r *BackupRepo) Record(ctx context.Context, objectKey string, sizeBytes int64) (BackupRecord, error) {
	if r.pool == nil {
		return BackupRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if objectKey == "" {
		return BackupRecord{}, fmt.Errorf("object key is required")
	}

	var rec BackupRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO backups (object_key, size_bytes)
VALUES ($1, $2)
RETURNING id, object_key, size_bytes, taken_at
`, objectKey, sizeBytes).Scan(&rec.ID, &rec.ObjectKey, &rec.SizeBytes, &rec.TakenAt)
	if err != nil {
		return BackupRecord{}, fmt.Errorf("record backup: %w", err)
	}

	return rec, nil
}

func (r *BackupRepo) Latest(ctx context.Context) (BackupRecord, error) {
	if r.pool == nil {
		return BackupRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec BackupRecord
	err := r.pool.QueryRow(ctx, `
SELECT id, object_key, size_bytes, taken_at
FROM backups
ORDER BY taken_at DESC
LIMIT 1
`).Scan(&rec.ID, &rec.ObjectKey, &rec.SizeBytes, &rec.TakenAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BackupRecord{}, ErrBackupNotFound
		}
		return BackupRecord{}, fmt.Errorf("get latest backup: %w", err)
	}

	return rec, nil
}
