package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pgrepo "github.com/Inkrex-dev/lab-dash-ex/internal/repo/postgres"
	authsvc "github.com/Inkrex-dev/lab-dash-ex/internal/services/auth"
	notessvc "github.com/Inkrex-dev/lab-dash-ex/internal/services/notes"
	"github.com/Inkrex-dev/lab-dash-ex/internal/transport/http/dto"
	httperrors "github.com/Inkrex-dev/lab-dash-ex/internal/transport/http/errors"
)

type NotesHandler struct {
	service *notessvc.Service
}

func NewNotesHandler(service *notessvc.Service) *NotesHandler {
	return &NotesHandler{service: service}
}

func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	notes, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		handleNotesError(w, err)
		return
	}

	res := dto.NotesListResponse{Notes: make([]dto.NoteResponse, 0, len(notes))}
	for _, note := range notes {
		res.Notes = append(res.Notes, toNoteResponse(note))
	}

	httperrors.Write(w, http.StatusOK, res)
}

func (h *NotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req dto.NoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	note, err := h.service.Create(r.Context(), identity.UserID, req.Title, req.Body, req.Pinned)
	if err != nil {
		handleNotesError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, toNoteResponse(note))
}

func (h *NotesHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	id, ok := noteID(w, r)
	if !ok {
		return
	}

	note, err := h.service.Get(r.Context(), identity.UserID, id)
	if err != nil {
		handleNotesError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, toNoteResponse(note))
}

func (h *NotesHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	id, ok := noteID(w, r)
	if !ok {
		return
	}

	var req dto.NoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	note, err := h.service.Update(r.Context(), identity.UserID, id, req.Title, req.Body, req.Pinned)
	if err != nil {
		handleNotesError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, toNoteResponse(note))
}

func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	id, ok := noteID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), identity.UserID, id); err != nil {
		handleNotesError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func handleNotesError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, notessvc.ErrInvalidInput):
		writeBadRequest(w, "VALIDATION_ERROR", "note validation failed")
	case errors.Is(err, notessvc.ErrNotFound):
		writeNotFound(w, "NOTE_NOT_FOUND", "note not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func toNoteResponse(note pgrepo.NoteRecord) dto.NoteResponse {
	return dto.NoteResponse{
		ID:        note.ID.String(),
		Title:     note.Title,
		Body:      note.Body,
		Pinned:    note.Pinned,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

func noteID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid note id")
		return uuid.UUID{}, false
	}
	return id, true
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (authsvc.Identity, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return authsvc.Identity{}, false
	}
	return identity, true
}
