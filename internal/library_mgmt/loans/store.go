package loans

import (
	"context"
	"database/sql"
	"errors"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/db"
)

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

const loanColumns = `id, loan_ulid, member_id, book_id, loan_date, due_date, returned_date, status`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLoan(r rowScanner) (*Loan, error) {
	var (
		l        Loan
		status   string
		returned sql.NullTime
	)
	if err := r.Scan(&l.ID, &l.LoanULID, &l.MemberID, &l.BookID, &l.LoanDate, &l.DueDate, &returned, &status); err != nil {
		return nil, err
	}
	l.LoanDate = l.LoanDate.UTC()
	l.DueDate = l.DueDate.UTC()
	if returned.Valid {
		t := returned.Time.UTC()
		l.ReturnedDate = &t
	}
	l.Status = Status(status)
	return &l, nil
}

func insertLoanTx(ctx context.Context, q db.DBTX, l *Loan) error {
	const stmt = `
	INSERT INTO loans (loan_ulid, member_id, book_id, loan_date, due_date, returned_date, status)
	VALUES (?, ?, ?, ?, ?, NULL, ?)`
	res, err := q.ExecContext(ctx, stmt, l.LoanULID, l.MemberID, l.BookID, l.LoanDate, l.DueDate, string(l.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = id
	return nil
}

func getLoanByIDTx(ctx context.Context, q db.DBTX, id int64) (*Loan, error) {
	row := q.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = ?`, id)
	l, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.NotFoundf("loan not found: %d", id)
		}
		return nil, err
	}
	return l, nil
}

// closeLoanTx writes the RETURNED state. Only an ACTIVE row is updated, so a
// loan returned twice concurrently is closed once.
func closeLoanTx(ctx context.Context, q db.DBTX, l *Loan) error {
	const stmt = `UPDATE loans SET returned_date = ?, status = ? WHERE id = ? AND status = ?`
	res, err := q.ExecContext(ctx, stmt, *l.ReturnedDate, string(l.Status), l.ID, string(StatusActive))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return apierr.ErrBusiness("loan is not active")
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Loan, error) {
	return getLoanByIDTx(ctx, s.db, id)
}

func (s *Store) GetByULID(ctx context.Context, key string) (*Loan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loans WHERE loan_ulid = ?`, key)
	l, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.NotFoundf("loan not found: %s", key)
		}
		return nil, err
	}
	return l, nil
}

func (s *Store) ListByMember(ctx context.Context, memberID int64) ([]*Loan, error) {
	return s.list(ctx, `SELECT `+loanColumns+` FROM loans WHERE member_id = ? ORDER BY id`, memberID)
}

func (s *Store) ListAll(ctx context.Context) ([]*Loan, error) {
	return s.list(ctx, `SELECT `+loanColumns+` FROM loans ORDER BY id`)
}

func (s *Store) list(ctx context.Context, q string, args ...any) ([]*Loan, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Loan{}
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
