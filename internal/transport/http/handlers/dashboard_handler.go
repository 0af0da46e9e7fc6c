package handlers

import (
	"errors"
	"io"
	"net/http"

	dashsvc "github.com/Inkrex-dev/lab-dash-ex/internal/services/dashboards"
	"github.com/Inkrex-dev/lab-dash-ex/internal/transport/http/dto"
	httperrors "github.com/Inkrex-dev/lab-dash-ex/internal/transport/http/errors"
)

// maxDashboardBody bounds the raw request size before the service-level
// settings validation runs.
const maxDashboardBody = 512 * 1024

type DashboardHandler struct {
	service *dashsvc.Service
}

func NewDashboardHandler(service *dashsvc.Service) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Get(r.Context(), identity.UserID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DashboardResponse{
		Settings:  rec.Settings,
		UpdatedAt: rec.UpdatedAt,
	})
}

func (h *DashboardHandler) Put(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxDashboardBody+1))
	if err != nil || len(body) > maxDashboardBody {
		writeBadRequest(w, "INVALID_REQUEST", "invalid dashboard settings body")
		return
	}

	rec, err := h.service.Save(r.Context(), identity.UserID, body)
	if err != nil {
		if errors.Is(err, dashsvc.ErrInvalidSettings) {
			writeBadRequest(w, "VALIDATION_ERROR", "dashboard settings must be a json document")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DashboardResponse{
		Settings:  rec.Settings,
		UpdatedAt: rec.UpdatedAt,
	})
}
