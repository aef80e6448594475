package books

import (
	"library-backend/internal/platform/clock"
	"library-backend/internal/platform/textnorm"
)

// ===== Requests =====

type AuthorInput struct {
	FirstName string `json:"first_name" validate:"notblank"`
	LastName  string `json:"last_name" validate:"notblank"`
}

// BookInput is the body of POST /books and PUT /books/:id.
type BookInput struct {
	Title           string        `json:"title" validate:"notblank,max=255"`
	Authors         []AuthorInput `json:"authors" validate:"required,min=1,dive"`
	Category        Category      `json:"category" validate:"required"`
	ISBN            string        `json:"isbn" validate:"notblank,max=20"`
	TotalCopies     int           `json:"total_copies" validate:"gte=0"`
	AvailableCopies int           `json:"available_copies" validate:"gte=0"`
	PublishedDate   *string       `json:"published_date,omitempty"` // YYYY-MM-DD
	// Version, when non-zero on update, must equal the stored version.
	Version int64 `json:"version,omitempty"`
}

func (in BookInput) normalized() BookInput {
	out := in
	out.Title = textnorm.Text(in.Title)
	out.ISBN = textnorm.Identifier(in.ISBN)
	out.Authors = make([]AuthorInput, len(in.Authors))
	for i, a := range in.Authors {
		out.Authors[i] = AuthorInput{FirstName: textnorm.Text(a.FirstName), LastName: textnorm.Text(a.LastName)}
	}
	return out
}

// ===== Responses =====

type AuthorResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type BookResponse struct {
	ID              int64            `json:"id"`
	Title           string           `json:"title"`
	Authors         []AuthorResponse `json:"authors"`
	Category        Category         `json:"category"`
	ISBN            string           `json:"isbn"`
	TotalCopies     int              `json:"total_copies"`
	AvailableCopies int              `json:"available_copies"`
	PublishedDate   *string          `json:"published_date,omitempty"`
	Version         int64            `json:"version"`
}

type ImportBooksResponse struct {
	Total   int               `json:"total"`
	OkCount int               `json:"ok_count"`
	NgCount int               `json:"ng_count"`
	Results []ImportRowResult `json:"results"`
}

type ImportRowResult struct {
	Row    int     `json:"row"` // 1-based, header excluded
	Ok     bool    `json:"ok"`
	Error  *string `json:"error,omitempty"`
	BookID *int64  `json:"book_id,omitempty"`
	Title  *string `json:"title,omitempty"`
	ISBN   *string `json:"isbn,omitempty"`
}

func toResponse(b *Book) BookResponse {
	resp := BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Authors:         make([]AuthorResponse, 0, len(b.Authors)),
		Category:        b.Category,
		ISBN:            b.ISBN,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		Version:         b.Version,
	}
	for _, a := range b.Authors {
		resp.Authors = append(resp.Authors, AuthorResponse{ID: a.ID, FirstName: a.FirstName, LastName: a.LastName})
	}
	if b.PublishedDate != nil {
		v := b.PublishedDate.Format(clock.DateLayout)
		resp.PublishedDate = &v
	}
	return resp
}
