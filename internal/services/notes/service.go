package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	pgrepo "github.com/Inkrex-dev/lab-dash-ex/internal/repo/postgres"
)

const (
	maxTitleLen = 256
	maxBodyLen  = 64 * 1024
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("note not found")
)

type NoteStore interface {
	Create(ctx context.Context, note pgrepo.NoteRecord) (pgrepo.NoteRecord, error)
	Get(ctx context.Context, userID int64, id uuid.UUID) (pgrepo.NoteRecord, error)
	ListByUser(ctx context.Context, userID int64) ([]pgrepo.NoteRecord, error)
	Update(ctx context.Context, note pgrepo.NoteRecord) (pgrepo.NoteRecord, error)
	Delete(ctx context.Context, userID int64, id uuid.UUID) error
}

type Service struct {
	store NoteStore
}

func NewService(store NoteStore) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, userID int64, title, body string, pinned bool) (pgrepo.NoteRecord, error) {
	if err := validate(userID, title, body); err != nil {
		return pgrepo.NoteRecord{}, err
	}

	note, err := s.store.Create(ctx, pgrepo.NoteRecord{
		ID:     uuid.New(),
		UserID: userID,
		Title:  strings.TrimSpace(title),
		Body:   body,
		Pinned: pinned,
	})
	if err != nil {
		return pgrepo.NoteRecord{}, fmt.Errorf("create note: %w", err)
	}

	return note, nil
}

func (s *Service) Get(ctx context.Context, userID int64, id uuid.UUID) (pgrepo.NoteRecord, error) {
	if userID <= 0 {
		return pgrepo.NoteRecord{}, ErrInvalidInput
	}

	note, err := s.store.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgrepo.ErrNoteNotFound) {
			return pgrepo.NoteRecord{}, ErrNotFound
		}
		return pgrepo.NoteRecord{}, fmt.Errorf("get note: %w", err)
	}

	return note, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]pgrepo.NoteRecord, error) {
	if userID <= 0 {
		return nil, ErrInvalidInput
	}

	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	return list, nil
}

func (s *Service) Update(ctx context.Context, userID int64, id uuid.UUID, title, body string, pinned bool) (pgrepo.NoteRecord, error) {
	if err := validate(userID, title, body); err != nil {
		return pgrepo.NoteRecord{}, err
	}

	note, err := s.store.Update(ctx, pgrepo.NoteRecord{
		ID:     id,
		UserID: userID,
		Title:  strings.TrimSpace(title),
		Body:   body,
		Pinned: pinned,
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrNoteNotFound) {
			return pgrepo.NoteRecord{}, ErrNotFound
		}
		return pgrepo.NoteRecord{}, fmt.Errorf("update note: %w", err)
	}

	return note, nil
}

func (s *Service) Delete(ctx context.Context, userID int64, id uuid.UUID) error {
	if userID <= 0 {
		return ErrInvalidInput
	}

	if err := s.store.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, pgrepo.ErrNoteNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete note: %w", err)
	}

	return nil
}

func validate(userID int64, title, body string) error {
	if userID <= 0 {
		return ErrInvalidInput
	}
	if strings.TrimSpace(title) == "" || len(title) > maxTitleLen {
		return ErrInvalidInput
	}
	if len(body) > maxBodyLen {
		return ErrInvalidInput
	}
	return nil
}
