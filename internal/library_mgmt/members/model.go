package members

import (
	"time"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/clock"
	"library-backend/internal/platform/validate"
)

// Member is a registered borrower. ID is the surrogate key; MemberID is the
// number printed on the library card.
type Member struct {
	ID       int64
	MemberID string
	Name     string
	Email    string
	Joined   *time.Time
	Active   bool
}

// NewMember validates in and builds a Member. today bounds Joined.
func NewMember(in MemberInput, today time.Time) (*Member, error) {
	in = in.normalized()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	m := &Member{
		MemberID: in.MemberID,
		Name:     in.Name,
		Email:    in.Email,
		Active:   in.Active == nil || *in.Active,
	}
	if in.Joined != nil && *in.Joined != "" {
		d, err := time.Parse(clock.DateLayout, *in.Joined)
		if err != nil {
			return nil, apierr.ErrInvalid("joined must be YYYY-MM-DD")
		}
		if d.After(clock.DateOf(today)) {
			return nil, apierr.ErrInvalid("joined cannot be in the future")
		}
		m.Joined = &d
	}
	return m, nil
}
