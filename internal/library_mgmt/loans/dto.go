package loans

import "library-backend/internal/platform/clock"

// CheckoutRequest is the body of POST /loans/checkout. Days falls back to the
// configured loan period when omitted.
type CheckoutRequest struct {
	BookID   int64 `json:"book_id"`
	MemberID int64 `json:"member_id"`
	Days     *int  `json:"days,omitempty"`
}

type LoanResponse struct {
	ID           int64   `json:"id"`
	LoanULID     string  `json:"loan_ulid"`
	BookID       int64   `json:"book_id"`
	MemberID     int64   `json:"member_id"`
	LoanDate     string  `json:"loan_date"`
	DueDate      string  `json:"due_date"`
	ReturnedDate *string `json:"returned_date"`
	Status       Status  `json:"status"`
}

func toResponse(l *Loan) LoanResponse {
	resp := LoanResponse{
		ID:       l.ID,
		LoanULID: l.LoanULID,
		BookID:   l.BookID,
		MemberID: l.MemberID,
		LoanDate: l.LoanDate.Format(clock.DateLayout),
		DueDate:  l.DueDate.Format(clock.DateLayout),
		Status:   l.Status,
	}
	if l.ReturnedDate != nil {
		v := l.ReturnedDate.Format(clock.DateLayout)
		resp.ReturnedDate = &v
	}
	return resp
}

func toResponses(items []*Loan) []LoanResponse {
	out := make([]LoanResponse, 0, len(items))
	for _, l := range items {
		out = append(out, toResponse(l))
	}
	return out
}
