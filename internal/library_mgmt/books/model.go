package books

import (
	"fmt"
	"strings"
	"time"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/clock"
	"library-backend/internal/platform/validate"
)

type Category string

const (
	CategoryFiction    Category = "FICTION"
	CategoryNonFiction Category = "NON_FICTION"
	CategoryScience    Category = "SCIENCE"
	CategoryHistory    Category = "HISTORY"
	CategoryTechnology Category = "TECHNOLOGY"
	CategoryChildren   Category = "CHILDREN"
	CategoryReference  Category = "REFERENCE"
)

var Categories = []Category{
	CategoryFiction, CategoryNonFiction, CategoryScience, CategoryHistory,
	CategoryTechnology, CategoryChildren, CategoryReference,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// ParseCategory accepts any letter case and '-' or ' ' in place of '_'.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(strings.TrimSpace(s))))
	if !c.Valid() {
		return "", apierr.Invalidf("category %q is not one of %v", s, Categories)
	}
	return c, nil
}

type Author struct {
	ID        int64
	FirstName string
	LastName  string
}

// Book is a catalogue entry together with its copy counts. Values are built
// with NewBook and the copy counts only change through the methods below, so
// 0 <= AvailableCopies <= TotalCopies holds for every Book in the program.
type Book struct {
	ID              int64
	Title           string
	Authors         []Author
	Category        Category
	ISBN            string
	TotalCopies     int
	AvailableCopies int
	PublishedDate   *time.Time
	Version         int64
}

// NewBook validates in and builds a Book from it. today bounds PublishedDate.
func NewBook(in BookInput, today time.Time) (*Book, error) {
	in = in.normalized()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	cat, err := ParseCategory(string(in.Category))
	if err != nil {
		return nil, err
	}

	b := &Book{
		Title:       in.Title,
		Category:    cat,
		ISBN:        in.ISBN,
		TotalCopies: in.TotalCopies,
	}
	for _, a := range in.Authors {
		b.Authors = append(b.Authors, Author{FirstName: a.FirstName, LastName: a.LastName})
	}
	if err := b.SetAvailableCopies(in.AvailableCopies); err != nil {
		return nil, err
	}
	if in.PublishedDate != nil && *in.PublishedDate != "" {
		d, err := time.Parse(clock.DateLayout, *in.PublishedDate)
		if err != nil {
			return nil, apierr.ErrInvalid("published_date must be YYYY-MM-DD")
		}
		if d.After(clock.DateOf(today)) {
			return nil, apierr.ErrInvalid("published_date cannot be in the future")
		}
		b.PublishedDate = &d
	}
	return b, nil
}

func (b *Book) SetAvailableCopies(n int) error {
	if n < 0 || n > b.TotalCopies {
		return apierr.Invalidf("available_copies must be between 0 and total_copies (%d)", b.TotalCopies)
	}
	b.AvailableCopies = n
	return nil
}

// TakeCopy removes one copy from the shelf for a checkout.
func (b *Book) TakeCopy() error {
	if b.AvailableCopies <= 0 {
		return apierr.ErrBusiness("no copies available")
	}
	b.AvailableCopies--
	return nil
}

// PutBackCopy returns one copy to the shelf.
func (b *Book) PutBackCopy() error {
	if b.AvailableCopies >= b.TotalCopies {
		return apierr.ErrBusiness(fmt.Sprintf("all %d copies of book %d are already available", b.TotalCopies, b.ID))
	}
	b.AvailableCopies++
	return nil
}
