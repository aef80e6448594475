package books

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"library-backend/internal/platform/apierr"
)

// Columns of an import file. title, authors, category, isbn and total_copies
// are required; authors are separated by ';' and written "First Last".
const (
	colTitle           = "title"
	colAuthors         = "authors"
	colCategory        = "category"
	colISBN            = "isbn"
	colTotalCopies     = "total_copies"
	colAvailableCopies = "available_copies"
	colPublishedDate   = "published_date"
)

var requiredColumns = []string{colTitle, colAuthors, colCategory, colISBN, colTotalCopies}

// decoderFor wraps r so it yields UTF-8. A UTF-8 BOM is dropped; Excel on
// Japanese Windows saves CSV as Shift_JIS.
func decoderFor(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	case "shift_jis", "sjis", "cp932":
		return transform.NewReader(r, japanese.ShiftJIS.NewDecoder()), nil
	default:
		return nil, apierr.Invalidf("unsupported encoding %q", encoding)
	}
}

// ImportCSV registers one book per data row. Each row is created on its own;
// a bad row is reported in the result and does not stop the import.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader, encoding string) (ImportBooksResponse, error) {
	dr, err := decoderFor(r, encoding)
	if err != nil {
		return ImportBooksResponse{}, err
	}
	cr := csv.NewReader(dr)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ImportBooksResponse{}, apierr.ErrInvalid("csv is empty")
		}
		return ImportBooksResponse{}, apierr.Invalidf("csv header: %v", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return ImportBooksResponse{}, apierr.Invalidf("csv header is missing column %q", c)
		}
	}

	out := ImportBooksResponse{Results: []ImportRowResult{}}
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res := ImportRowResult{Row: row}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return out, apierr.Invalidf("read csv: %v", err)
			}
			res.Error = ptr(pe.Err.Error())
			out.add(res)
			continue
		}

		in, err := rowToInput(rec, idx)
		if err == nil {
			var created BookResponse
			created, err = s.Create(ctx, in)
			if err == nil {
				res.Ok = true
				res.BookID = &created.ID
				res.Title = &created.Title
				res.ISBN = &created.ISBN
			}
		}
		if err != nil {
			var api *apierr.APIError
			if !errors.As(err, &api) {
				// store failures abort the whole import
				return out, err
			}
			res.Error = ptr(api.Message)
			if t := field(rec, idx, colTitle); t != "" {
				res.Title = &t
			}
		}
		out.add(res)
	}
	return out, nil
}

func (r *ImportBooksResponse) add(res ImportRowResult) {
	r.Total++
	if res.Ok {
		r.OkCount++
	} else {
		r.NgCount++
	}
	r.Results = append(r.Results, res)
}

func rowToInput(rec []string, idx map[string]int) (BookInput, error) {
	in := BookInput{
		Title:    field(rec, idx, colTitle),
		Category: Category(field(rec, idx, colCategory)),
		ISBN:     field(rec, idx, colISBN),
	}

	for _, name := range strings.Split(field(rec, idx, colAuthors), ";") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		a, err := parseAuthor(name)
		if err != nil {
			return BookInput{}, err
		}
		in.Authors = append(in.Authors, a)
	}

	total, err := atoiField(rec, idx, colTotalCopies)
	if err != nil {
		return BookInput{}, err
	}
	in.TotalCopies = total
	avail, err := atoiField(rec, idx, colAvailableCopies)
	if err != nil {
		return BookInput{}, err
	}
	in.AvailableCopies = avail

	if d := field(rec, idx, colPublishedDate); d != "" {
		in.PublishedDate = &d
	}
	return in, nil
}

// parseAuthor splits "Ursula K. Le Guin" into first "Ursula K. Le" and last "Guin".
func parseAuthor(name string) (AuthorInput, error) {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return AuthorInput{}, apierr.Invalidf("author %q must be written as \"First Last\"", strings.TrimSpace(name))
	}
	return AuthorInput{
		FirstName: strings.Join(parts[:len(parts)-1], " "),
		LastName:  parts[len(parts)-1],
	}, nil
}

func field(rec []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func atoiField(rec []string, idx map[string]int, col string) (int, error) {
	v := field(rec, idx, col)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apierr.ErrInvalid(fmt.Sprintf("%s must be an integer, got %q", col, v))
	}
	return n, nil
}

func ptr[T any](v T) *T { return &v }
