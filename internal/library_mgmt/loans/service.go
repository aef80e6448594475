package loans

import (
	"context"
	"crypto/rand"
	"database/sql"
	"log/slog"
	"strconv"
	"strings"
	"time"

	ulid "github.com/oklog/ulid/v2"

	"library-backend/internal/library_mgmt/books"
	"library-backend/internal/library_mgmt/members"
	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/clock"
	"library-backend/internal/platform/db"
)

// DefaultLoanDays is the loan period when neither the request nor the config sets one.
const DefaultLoanDays = 14

type IDGen interface{ NewULID(t time.Time) string }
type ulidGen struct{}

func (ulidGen) NewULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

type Service struct {
	db          *sql.DB
	store       *Store
	clock       clock.Clock
	id          IDGen
	defaultDays int
}

// NewService builds the loan service. defaultDays <= 0 means DefaultLoanDays.
func NewService(conn *sql.DB, defaultDays int) *Service {
	if defaultDays <= 0 {
		defaultDays = DefaultLoanDays
	}
	return &Service{
		db:          conn,
		store:       NewStore(conn),
		clock:       clock.Real{},
		id:          ulidGen{},
		defaultDays: defaultDays,
	}
}

func (s *Service) DefaultDays() int { return s.defaultDays }

// POST /loans/checkout
// The copy count and the new loan are written in one transaction.
func (s *Service) Checkout(ctx context.Context, bookID, memberID int64, days int) (LoanResponse, error) {
	if bookID <= 0 {
		return LoanResponse{}, apierr.ErrInvalid("book_id must be positive")
	}
	if memberID <= 0 {
		return LoanResponse{}, apierr.ErrInvalid("member_id must be positive")
	}
	if days <= 0 {
		return LoanResponse{}, apierr.ErrInvalid("days must be positive")
	}

	now := s.clock.Now()
	l, err := newLoan(s.id.NewULID(now), bookID, memberID, now, days)
	if err != nil {
		return LoanResponse{}, err
	}

	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		b, err := books.GetBookByIDTx(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if _, err := members.GetMemberByIDTx(ctx, tx, memberID); err != nil {
			return err
		}
		if err := b.TakeCopy(); err != nil {
			return err
		}
		if err := books.TakeCopyTx(ctx, tx, bookID); err != nil {
			return err
		}
		return insertLoanTx(ctx, tx, l)
	})
	if err != nil {
		return LoanResponse{}, err
	}

	slog.InfoContext(ctx, "book checked out",
		"loan_id", l.ID, "loan_ulid", l.LoanULID, "book_id", bookID, "member_id", memberID,
		"due_date", l.DueDate.Format(clock.DateLayout))
	return toResponse(l), nil
}

// POST /loans/:id/return
func (s *Service) Return(ctx context.Context, loanID int64) (LoanResponse, error) {
	if loanID <= 0 {
		return LoanResponse{}, apierr.ErrInvalid("loan id must be positive")
	}

	var l *Loan
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		var err error
		l, err = getLoanByIDTx(ctx, tx, loanID)
		if err != nil {
			return err
		}
		if err := l.markReturned(s.clock.Now()); err != nil {
			return err
		}
		if err := closeLoanTx(ctx, tx, l); err != nil {
			return err
		}

		b, err := books.GetBookByIDTx(ctx, tx, l.BookID)
		if err != nil {
			return err
		}
		if err := b.PutBackCopy(); err != nil {
			return err
		}
		return books.PutBackCopyTx(ctx, tx, l.BookID)
	})
	if err != nil {
		return LoanResponse{}, err
	}

	slog.InfoContext(ctx, "book returned", "loan_id", l.ID, "book_id", l.BookID, "member_id", l.MemberID)
	return toResponse(l), nil
}

// GET /loans/member/:member_id
func (s *Service) MemberLoans(ctx context.Context, memberID int64) ([]LoanResponse, error) {
	if memberID <= 0 {
		return nil, apierr.ErrInvalid("member_id must be positive")
	}
	items, err := s.store.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return toResponses(items), nil
}

// GET /loans
func (s *Service) AllLoans(ctx context.Context) ([]LoanResponse, error) {
	items, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toResponses(items), nil
}

// GET /loans/:key
// key is either the numeric id or the loan ULID.
func (s *Service) GetByKey(ctx context.Context, key string) (LoanResponse, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return LoanResponse{}, apierr.ErrInvalid("loan key required")
	}

	var (
		l   *Loan
		err error
	)
	if id, perr := strconv.ParseInt(key, 10, 64); perr == nil {
		if id <= 0 {
			return LoanResponse{}, apierr.ErrInvalid("loan id must be positive")
		}
		l, err = s.store.GetByID(ctx, id)
	} else {
		if _, perr := ulid.ParseStrict(key); perr != nil {
			return LoanResponse{}, apierr.Invalidf("invalid loan key %q", key)
		}
		l, err = s.store.GetByULID(ctx, strings.ToUpper(key))
	}
	if err != nil {
		return LoanResponse{}, err
	}
	return toResponse(l), nil
}
