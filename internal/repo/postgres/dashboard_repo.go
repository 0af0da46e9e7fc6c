package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DashboardRepo struct {
	pool *pgxpool.Pool
}

type DashboardRecord struct {
	UserID    int64
	Settings  json.RawMessage
	UpdatedAt time.Time
}

func NewDashboardRepo(pool *pgxpool.Pool) *DashboardRepo {
	return &DashboardRepo{pool: pool}
}

// Get returns an empty settings document when the user never saved one.
func (r *DashboardRepo) Get(ctx context.Context, userID int64) (DashboardRecord, error) {
	if r.pool == nil {
		return DashboardRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return DashboardRecord{}, fmt.Errorf("invalid user id")
	}

	var rec DashboardRecord
	err := r.pool.QueryRow(ctx, `
SELECT user_id, settings, updated_at
FROM dashboards
WHERE user_id = $1
`, userID).Scan(&rec.UserID, &rec.Settings, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DashboardRecord{
				UserID:   userID,
				Settings: json.RawMessage(`{}`),
			}, nil
		}
		return DashboardRecord{}, fmt.Errorf("get dashboard: %w", err)
	}

	return rec, nil
}

func (r *DashboardRepo) Upsert(ctx context.Context, userID int64, settings json.RawMessage) (DashboardRecord, error) {
	if r.pool == nil {
		return DashboardRecord{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return DashboardRecord{}, fmt.Errorf("invalid user id")
	}
	if len(settings) == 0 {
		settings = json.RawMessage(`{}`)
	}

	var rec DashboardRecord
	err := r.pool.QueryRow(ctx, `
INSERT INTO dashboards (user_id, settings, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (user_id) DO UPDATE SET
	settings = EXCLUDED.settings,
	updated_at = NOW()
RETURNING user_id, settings, updated_at
`, userID, settings).Scan(&rec.UserID, &rec.Settings, &rec.UpdatedAt)
	if err != nil {
		return DashboardRecord{}, fmt.Errorf("upsert dashboard: %w", err)
	}

	return rec, nil
}

func (r *DashboardRepo) ListAll(ctx context.Context) ([]DashboardRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT user_id, settings, updated_at
FROM dashboards
ORDER BY user_id
`)
	if err != nil {
		return nil, fmt.Errorf("list dashboards: %w", err)
	}
	defer rows.Close()

	var recs []DashboardRecord
	for rows.Next() {
		var rec DashboardRecord
		if err := rows.Scan(&rec.UserID, &rec.Settings, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan dashboard: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dashboards: %w", err)
	}

	return recs, nil
}
