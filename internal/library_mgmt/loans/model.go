package loans

import (
	"time"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/clock"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusReturned Status = "RETURNED"
	// OVERDUE and LOST are stored and reported as-is; nothing moves a loan into them.
	StatusOverdue Status = "OVERDUE"
	StatusLost    Status = "LOST"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusReturned, StatusOverdue, StatusLost:
		return true
	}
	return false
}

// Loan records one copy of a book lent to a member. BookID and MemberID are
// plain ids; the referenced rows may since have been deleted.
type Loan struct {
	ID           int64
	LoanULID     string
	MemberID     int64
	BookID       int64
	LoanDate     time.Time
	DueDate      time.Time
	ReturnedDate *time.Time
	Status       Status
}

// newLoan opens an ACTIVE loan dated today and due days later.
func newLoan(ulid string, bookID, memberID int64, today time.Time, days int) (*Loan, error) {
	if days <= 0 {
		return nil, apierr.ErrInvalid("days must be positive")
	}
	loanDate := clock.DateOf(today)
	return &Loan{
		LoanULID: ulid,
		MemberID: memberID,
		BookID:   bookID,
		LoanDate: loanDate,
		DueDate:  loanDate.AddDate(0, 0, days),
		Status:   StatusActive,
	}, nil
}

// markReturned closes an ACTIVE loan on today.
func (l *Loan) markReturned(today time.Time) error {
	if l.Status != StatusActive {
		return apierr.ErrBusiness("loan is not active")
	}
	d := clock.DateOf(today)
	if d.Before(l.LoanDate) {
		return apierr.ErrInvalid("returned date cannot be before loan date")
	}
	l.ReturnedDate = &d
	l.Status = StatusReturned
	return nil
}
