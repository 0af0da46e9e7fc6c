package dashboards

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pgrepo "github.com/Inkrex-dev/lab-dash-ex/internal/repo/postgres"
)

// Settings documents are opaque to the server; only size and JSON shape are
// enforced.
const maxSettingsBytes = 256 * 1024

var ErrInvalidSettings = errors.New("invalid dashboard settings")

type DashboardStore interface {
	Get(ctx context.Context, userID int64) (pgrepo.DashboardRecord, error)
	Upsert(ctx context.Context, userID int64, settings json.RawMessage) (pgrepo.DashboardRecord, error)
}

type Service struct {
	store DashboardStore
}

func NewService(store DashboardStore) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, userID int64) (pgrepo.DashboardRecord, error) {
	if userID <= 0 {
		return pgrepo.DashboardRecord{}, ErrInvalidSettings
	}

	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		return pgrepo.DashboardRecord{}, fmt.Errorf("get dashboard: %w", err)
	}

	return rec, nil
}

func (s *Service) Save(ctx context.Context, userID int64, settings json.RawMessage) (pgrepo.DashboardRecord, error) {
	if userID <= 0 {
		return pgrepo.DashboardRecord{}, ErrInvalidSettings
	}
	if len(settings) == 0 || len(settings) > maxSettingsBytes || !json.Valid(settings) {
		return pgrepo.DashboardRecord{}, ErrInvalidSettings
	}

	rec, err := s.store.Upsert(ctx, userID, settings)
	if err != nil {
		return pgrepo.DashboardRecord{}, fmt.Errorf("save dashboard: %w", err)
	}

	return rec, nil
}
