package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/db"
)

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

const bookColumns = `id, title, category, isbn, total_copies, available_copies, published_date, version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(r rowScanner) (*Book, error) {
	var (
		b         Book
		category  string
		published sql.NullTime
	)
	if err := r.Scan(&b.ID, &b.Title, &category, &b.ISBN, &b.TotalCopies, &b.AvailableCopies, &published, &b.Version); err != nil {
		return nil, err
	}
	b.Category = Category(category)
	if published.Valid {
		t := published.Time.UTC()
		b.PublishedDate = &t
	}
	return &b, nil
}

func nullTimeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// ---- queries usable inside a caller's transaction ----

// GetBookByIDTx loads the book and its authors through q.
func GetBookByIDTx(ctx context.Context, q db.DBTX, id int64) (*Book, error) {
	row := q.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	b, err := scanBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.NotFoundf("book not found: %d", id)
		}
		return nil, err
	}
	authors, err := authorsOf(ctx, q, id)
	if err != nil {
		return nil, err
	}
	b.Authors = authors
	return b, nil
}

// TakeCopyTx decrements available_copies unless it is already zero.
// The WHERE clause is the guard: two concurrent checkouts of the last copy
// cannot both match it.
func TakeCopyTx(ctx context.Context, q db.DBTX, id int64) error {
	const stmt = `
	UPDATE books
	SET available_copies = available_copies - 1, version = version + 1
	WHERE id = ? AND available_copies > 0`
	n, err := execAffected(ctx, q, stmt, id)
	if err != nil {
		return err
	}
	if n != 1 {
		return apierr.ErrBusiness("no copies available")
	}
	return nil
}

// PutBackCopyTx increments available_copies unless it already equals total_copies.
func PutBackCopyTx(ctx context.Context, q db.DBTX, id int64) error {
	const stmt = `
	UPDATE books
	SET available_copies = available_copies + 1, version = version + 1
	WHERE id = ? AND available_copies < total_copies`
	n, err := execAffected(ctx, q, stmt, id)
	if err != nil {
		return err
	}
	if n != 1 {
		return apierr.ErrBusiness(fmt.Sprintf("all copies of book %d are already available", id))
	}
	return nil
}

func execAffected(ctx context.Context, q db.DBTX, stmt string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func authorsOf(ctx context.Context, q db.DBTX, bookID int64) ([]Author, error) {
	const stmt = `SELECT id, first_name, last_name FROM book_authors WHERE book_id = ? ORDER BY position`
	rows, err := q.QueryContext(ctx, stmt, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Author
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func insertAuthors(ctx context.Context, q db.DBTX, b *Book) error {
	const stmt = `INSERT INTO book_authors (book_id, position, first_name, last_name) VALUES (?, ?, ?, ?)`
	for i := range b.Authors {
		res, err := q.ExecContext(ctx, stmt, b.ID, i, b.Authors[i].FirstName, b.Authors[i].LastName)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		b.Authors[i].ID = id
	}
	return nil
}

// ---- CRUD ----

func (s *Store) Insert(ctx context.Context, b *Book) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		const q = `
		INSERT INTO books (title, category, isbn, total_copies, available_copies, published_date, version)
		VALUES (?, ?, ?, ?, ?, ?, 1)`
		res, err := tx.ExecContext(ctx, q,
			b.Title, string(b.Category), b.ISBN, b.TotalCopies, b.AvailableCopies, nullTimeOrNil(b.PublishedDate))
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		b.ID = id
		b.Version = 1
		return insertAuthors(ctx, tx, b)
	})
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Book, error) {
	return GetBookByIDTx(ctx, s.db, id)
}

// List returns every book with its authors, ordered by id.
func (s *Store) List(ctx context.Context) ([]*Book, error) {
	out := []*Book{}
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		rows, err := tx.QueryContext(ctx, `SELECT `+bookColumns+` FROM books ORDER BY id`)
		if err != nil {
			return err
		}
		byID := map[int64]*Book{}
		for rows.Next() {
			b, err := scanBook(rows)
			if err != nil {
				rows.Close()
				return err
			}
			out = append(out, b)
			byID[b.ID] = b
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return err
		}

		arows, err := tx.QueryContext(ctx, `SELECT id, book_id, first_name, last_name FROM book_authors ORDER BY book_id, position`)
		if err != nil {
			return err
		}
		defer arows.Close()
		for arows.Next() {
			var (
				a      Author
				bookID int64
			)
			if err := arows.Scan(&a.ID, &bookID, &a.FirstName, &a.LastName); err != nil {
				return err
			}
			if b, ok := byID[bookID]; ok {
				b.Authors = append(b.Authors, a)
			}
		}
		return arows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the stored book with b (authors included). A non-zero
// expectedVersion must match the stored version.
func (s *Store) Update(ctx context.Context, b *Book, expectedVersion int64) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		current, err := GetBookByIDTx(ctx, tx, b.ID)
		if err != nil {
			return err
		}
		if expectedVersion != 0 && expectedVersion != current.Version {
			return apierr.ErrConflict(fmt.Sprintf("book %d was modified concurrently (version %d, have %d)", b.ID, current.Version, expectedVersion))
		}

		const q = `
		UPDATE books
		SET title = ?, category = ?, isbn = ?, total_copies = ?, available_copies = ?, published_date = ?, version = version + 1
		WHERE id = ? AND version = ?`
		n, err := execAffected(ctx, tx, q,
			b.Title, string(b.Category), b.ISBN, b.TotalCopies, b.AvailableCopies, nullTimeOrNil(b.PublishedDate),
			b.ID, current.Version)
		if err != nil {
			return err
		}
		if n != 1 {
			return apierr.ErrConflict(fmt.Sprintf("book %d was modified concurrently", b.ID))
		}
		b.Version = current.Version + 1

		if _, err := tx.ExecContext(ctx, `DELETE FROM book_authors WHERE book_id = ?`, b.ID); err != nil {
			return err
		}
		return insertAuthors(ctx, tx, b)
	})
}

// Delete removes the book and its authors. Deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, id int64) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM book_authors WHERE book_id = ?`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
		return err
	})
}
