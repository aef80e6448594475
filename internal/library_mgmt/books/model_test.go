package books

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/platform/apierr"
)

var today = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func validInput() BookInput {
	return BookInput{
		Title:       "The Dispossessed",
		Authors:     []AuthorInput{{FirstName: "Ursula K.", LastName: "Le Guin"}},
		Category:    CategoryFiction,
		ISBN:        "978-0-06-051275-0",
		TotalCopies: 3,
	}
}

func TestNewBook(t *testing.T) {
	in := validInput()
	in.Title = "  The Dispossessed "
	in.Category = "fiction"
	in.AvailableCopies = 2
	in.PublishedDate = ptr("1974-05-01")

	b, err := NewBook(in, today)
	require.NoError(t, err)
	assert.Equal(t, "The Dispossessed", b.Title)
	assert.Equal(t, CategoryFiction, b.Category)
	assert.Equal(t, 3, b.TotalCopies)
	assert.Equal(t, 2, b.AvailableCopies)
	require.NotNil(t, b.PublishedDate)
	assert.Equal(t, "1974-05-01", b.PublishedDate.Format("2006-01-02"))
	require.Len(t, b.Authors, 1)
	assert.Equal(t, "Le Guin", b.Authors[0].LastName)
}

func TestNewBookRejectsInvalidFields(t *testing.T) {
	cases := map[string]func(in *BookInput){
		"blank title":        func(in *BookInput) { in.Title = "   " },
		"long title":         func(in *BookInput) { in.Title = strings.Repeat("a", 256) },
		"no authors":         func(in *BookInput) { in.Authors = nil },
		"blank author name":  func(in *BookInput) { in.Authors[0].LastName = "" },
		"unknown category":   func(in *BookInput) { in.Category = "POETRY" },
		"missing category":   func(in *BookInput) { in.Category = "" },
		"blank isbn":         func(in *BookInput) { in.ISBN = " " },
		"negative total":     func(in *BookInput) { in.TotalCopies = -1 },
		"negative available": func(in *BookInput) { in.AvailableCopies = -1 },
		"available > total":  func(in *BookInput) { in.AvailableCopies = 4 },
		"future publication": func(in *BookInput) { in.PublishedDate = ptr("2024-05-02") },
		"malformed date":     func(in *BookInput) { in.PublishedDate = ptr("01/05/2024") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := NewBook(in, today)
			require.Error(t, err)
			assert.True(t, apierr.Is(err, apierr.CodeInvalidArgument), err.Error())
		})
	}
}

func TestNewBookAcceptsPublicationToday(t *testing.T) {
	in := validInput()
	in.PublishedDate = ptr("2024-05-01")
	_, err := NewBook(in, today.Add(15*time.Hour))
	assert.NoError(t, err)
}

func TestCopyCounters(t *testing.T) {
	b, err := NewBook(validInput(), today)
	require.NoError(t, err)
	require.NoError(t, b.SetAvailableCopies(1))

	require.NoError(t, b.TakeCopy())
	assert.Equal(t, 0, b.AvailableCopies)

	err = b.TakeCopy()
	assert.True(t, apierr.Is(err, apierr.CodeBusinessRule))
	assert.Equal(t, 0, b.AvailableCopies)

	for i := 0; i < 3; i++ {
		require.NoError(t, b.PutBackCopy())
	}
	assert.Equal(t, 3, b.AvailableCopies)
	err = b.PutBackCopy()
	assert.True(t, apierr.Is(err, apierr.CodeBusinessRule))
	assert.Equal(t, 3, b.AvailableCopies)

	assert.Error(t, b.SetAvailableCopies(4))
	assert.Error(t, b.SetAvailableCopies(-1))
	assert.Equal(t, 3, b.AvailableCopies)
}

func TestParseCategory(t *testing.T) {
	for in, want := range map[string]Category{
		"NON_FICTION": CategoryNonFiction,
		"non-fiction": CategoryNonFiction,
		"Non Fiction": CategoryNonFiction,
		" science ":   CategoryScience,
	} {
		got, err := ParseCategory(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseCategory("cookbooks")
	assert.Error(t, err)
}
