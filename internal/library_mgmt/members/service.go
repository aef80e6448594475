package members

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/clock"
	"library-backend/internal/platform/db"
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

// POST /members
func (s *Service) Create(ctx context.Context, in MemberInput) (MemberResponse, error) {
	m, err := NewMember(in, clock.Today(s.clock))
	if err != nil {
		return MemberResponse{}, err
	}
	if err := s.store.Insert(ctx, m); err != nil {
		if db.IsDuplicate(err) {
			return MemberResponse{}, apierr.ErrConflict(fmt.Sprintf("member_id %q is already registered", m.MemberID))
		}
		return MemberResponse{}, err
	}
	slog.InfoContext(ctx, "member registered", "id", m.ID, "member_id", m.MemberID)
	return toResponse(m), nil
}

func (s *Service) Get(ctx context.Context, id int64) (MemberResponse, error) {
	if id <= 0 {
		return MemberResponse{}, apierr.ErrInvalid("member id must be positive")
	}
	m, err := s.store.GetByID(ctx, id)
	if err != nil {
		return MemberResponse{}, err
	}
	return toResponse(m), nil
}

func (s *Service) List(ctx context.Context) ([]MemberResponse, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]MemberResponse, 0, len(items))
	for _, m := range items {
		out = append(out, toResponse(m))
	}
	return out, nil
}

// PUT /members/:id
func (s *Service) Update(ctx context.Context, id int64, in MemberInput) (MemberResponse, error) {
	if id <= 0 {
		return MemberResponse{}, apierr.ErrInvalid("member id must be positive")
	}
	m, err := NewMember(in, clock.Today(s.clock))
	if err != nil {
		return MemberResponse{}, err
	}
	m.ID = id
	if err := s.store.Update(ctx, m); err != nil {
		if db.IsDuplicate(err) {
			return MemberResponse{}, apierr.ErrConflict(fmt.Sprintf("member_id %q is already registered", m.MemberID))
		}
		return MemberResponse{}, err
	}
	return toResponse(m), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apierr.ErrInvalid("member id must be positive")
	}
	return s.store.Delete(ctx, id)
}
