package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pgrepo "github.com/Inkrex-dev/lab-dash-ex/internal/repo/postgres"
	authsvc "github.com/Inkrex-dev/lab-dash-ex/internal/services/auth"
	notessvc "github.com/Inkrex-dev/lab-dash-ex/internal/services/notes"
)

type memNoteStore struct {
	notes map[uuid.UUID]pgrepo.NoteRecord
}

func newMemNoteStore() *memNoteStore {
	return &memNoteStore{notes: make(map[uuid.UUID]pgrepo.NoteRecord)}
}

func (s *memNoteStore) Create(_ context.Context, note pgrepo.NoteRecord) (pgrepo.NoteRecord, error) {
	s.notes[note.ID] = note
	return note, nil
}

func (s *memNoteStore) Get(_ context.Context, userID int64, id uuid.UUID) (pgrepo.NoteRecord, error) {
	note, ok := s.notes[id]
	if !ok || note.UserID != userID {
		return pgrepo.NoteRecord{}, pgrepo.ErrNoteNotFound
	}
	return note, nil
}

func (s *memNoteStore) ListByUser(_ context.Context, userID int64) ([]pgrepo.NoteRecord, error) {
	var out []pgrepo.NoteRecord
	for _, note := range s.notes {
		if note.UserID == userID {
			out = append(out, note)
		}
	}
	return out, nil
}

func (s *memNoteStore) Update(_ context.Context, note pgrepo.NoteRecord) (pgrepo.NoteRecord, error) {
	existing, ok := s.notes[note.ID]
	if !ok || existing.UserID != note.UserID {
		return pgrepo.NoteRecord{}, pgrepo.ErrNoteNotFound
	}
	s.notes[note.ID] = note
	return note, nil
}

func (s *memNoteStore) Delete(_ context.Context, userID int64, id uuid.UUID) error {
	note, ok := s.notes[id]
	if !ok || note.UserID != userID {
		return pgrepo.ErrNoteNotFound
	}
	delete(s.notes, id)
	return nil
}

// notesRouter mounts the handler behind a middleware that injects a fixed
// identity, mirroring the production route layout.
func notesRouter(h *NotesHandler, identity authsvc.Identity) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(authsvc.WithIdentity(req.Context(), identity)))
		})
	})
	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func TestNotesCRUD(t *testing.T) {
	handler := NewNotesHandler(notessvc.NewService(newMemNoteStore()))
	router := notesRouter(handler, authsvc.Identity{UserID: 1, Username: "alice", Role: "user"})

	// Create.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notes",
		strings.NewReader(`{"title":"groceries","body":"milk","pinned":true}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Pinned bool   `json:"pinned"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.Title != "groceries" || !created.Pinned {
		t.Fatalf("unexpected note: %+v", created)
	}

	// Get.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notes/"+created.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	// Update.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/notes/"+created.ID,
		strings.NewReader(`{"title":"shopping","body":"milk, eggs","pinned":false}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}

	// List.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notes", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list struct {
		Notes []struct {
			Title string `json:"title"`
		} `json:"notes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Notes) != 1 || list.Notes[0].Title != "shopping" {
		t.Fatalf("unexpected list: %+v", list)
	}

	// Delete.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/notes/"+created.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notes/"+created.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestNotesBadRequests(t *testing.T) {
	handler := NewNotesHandler(notessvc.NewService(newMemNoteStore()))
	router := notesRouter(handler, authsvc.Identity{UserID: 1, Username: "alice", Role: "user"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/notes",
		strings.NewReader(`{"title":"","body":""}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty title status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notes/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", rec.Code)
	}
}

func TestNotesRequireIdentity(t *testing.T) {
	handler := NewNotesHandler(notessvc.NewService(newMemNoteStore()))

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/notes", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
