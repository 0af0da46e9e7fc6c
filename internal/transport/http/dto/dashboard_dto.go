package dto

import (
	"encoding/json"
	"time"
)

type DashboardResponse struct {
	Settings  json.RawMessage `json:"settings"`
	UpdatedAt time.Time       `json:"updated_at"`
}
