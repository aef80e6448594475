package books

import (
	"context"
	"database/sql"
	"log/slog"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/clock"
)

type Service struct {
	db    *sql.DB
	store *Store
	clock clock.Clock
}

func NewService(conn *sql.DB) *Service {
	return &Service{
		db:    conn,
		store: NewStore(conn),
		clock: clock.Real{},
	}
}

// POST /books
// A book registered with available_copies == 0 starts fully on the shelf.
func (s *Service) Create(ctx context.Context, in BookInput) (BookResponse, error) {
	b, err := NewBook(in, clock.Today(s.clock))
	if err != nil {
		return BookResponse{}, err
	}
	if b.AvailableCopies == 0 {
		if err := b.SetAvailableCopies(b.TotalCopies); err != nil {
			return BookResponse{}, err
		}
	}
	if err := s.store.Insert(ctx, b); err != nil {
		return BookResponse{}, err
	}
	slog.InfoContext(ctx, "book created", "book_id", b.ID, "isbn", b.ISBN, "total_copies", b.TotalCopies)
	return toResponse(b), nil
}

func (s *Service) Get(ctx context.Context, id int64) (BookResponse, error) {
	if id <= 0 {
		return BookResponse{}, apierr.ErrInvalid("book id must be positive")
	}
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return BookResponse{}, err
	}
	return toResponse(b), nil
}

func (s *Service) List(ctx context.Context) ([]BookResponse, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]BookResponse, 0, len(items))
	for _, b := range items {
		out = append(out, toResponse(b))
	}
	return out, nil
}

// PUT /books/:id
// Full replacement: every field of in is written, nothing is defaulted.
func (s *Service) Update(ctx context.Context, id int64, in BookInput) (BookResponse, error) {
	if id <= 0 {
		return BookResponse{}, apierr.ErrInvalid("book id must be positive")
	}
	b, err := NewBook(in, clock.Today(s.clock))
	if err != nil {
		return BookResponse{}, err
	}
	b.ID = id
	if err := s.store.Update(ctx, b, in.Version); err != nil {
		return BookResponse{}, err
	}
	return toResponse(b), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apierr.ErrInvalid("book id must be positive")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "book deleted", "book_id", id)
	return nil
}
