package members

import (
	"library-backend/internal/platform/clock"
	"library-backend/internal/platform/textnorm"
)

// MemberInput is the body of POST /members and PUT /members/:id.
type MemberInput struct {
	MemberID string  `json:"member_id" validate:"notblank,max=64"`
	Name     string  `json:"name" validate:"notblank,max=255"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Joined   *string `json:"joined,omitempty"` // YYYY-MM-DD
	// Active is true when omitted.
	Active *bool `json:"active,omitempty"`
}

func (in MemberInput) normalized() MemberInput {
	out := in
	out.MemberID = textnorm.Identifier(in.MemberID)
	out.Name = textnorm.Text(in.Name)
	out.Email = textnorm.Identifier(in.Email)
	return out
}

type MemberResponse struct {
	ID       int64   `json:"id"`
	MemberID string  `json:"member_id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Joined   *string `json:"joined,omitempty"`
	Active   bool    `json:"active"`
}

func toResponse(m *Member) MemberResponse {
	resp := MemberResponse{
		ID:       m.ID,
		MemberID: m.MemberID,
		Name:     m.Name,
		Email:    m.Email,
		Active:   m.Active,
	}
	if m.Joined != nil {
		v := m.Joined.Format(clock.DateLayout)
		resp.Joined = &v
	}
	return resp
}
