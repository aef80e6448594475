package members

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

const memberColumns = `id, member_id, name, email, joined, active`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(r rowScanner) (*Member, error) {
	var (
		m      Member
		joined sql.NullTime
	)
	if err := r.Scan(&m.ID, &m.MemberID, &m.Name, &m.Email, &joined, &m.Active); err != nil {
		return nil, err
	}
	if joined.Valid {
		t := joined.Time.UTC()
		m.Joined = &t
	}
	return &m, nil
}

func joinedOrNil(m *Member) any {
	if m.Joined == nil {
		return nil
	}
	return *m.Joined
}

// GetMemberByIDTx loads a member through q, so callers can read it inside their own transaction.
func GetMemberByIDTx(ctx context.Context, q db.DBTX, id int64) (*Member, error) {
	row := q.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.NotFoundf("member not found: %d", id)
		}
		return nil, err
	}
	return m, nil
}

func (s *Store) Insert(ctx context.Context, m *Member) error {
	const q = `INSERT INTO members (member_id, name, email, joined, active) VALUES (?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q, m.MemberID, m.Name, m.Email, joinedOrNil(m), m.Active)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Member, error) {
	return GetMemberByIDTx(ctx, s.db, id)
}

func (s *Store) List(ctx context.Context) ([]*Member, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+memberColumns+` FROM members ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Update overwrites every column of the row with m.ID.
func (s *Store) Update(ctx context.Context, m *Member) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := GetMemberByIDTx(ctx, tx, m.ID); err != nil {
			return err
		}
		const q = `UPDATE members SET member_id = ?, name = ?, email = ?, joined = ?, active = ? WHERE id = ?`
		_, err := tx.ExecContext(ctx, q, m.MemberID, m.Name, m.Email, joinedOrNil(m), m.Active, m.ID)
		return err
	})
}

// Delete removes the member. Deleting a missing id is not an error.
func (s *Store) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
	return err
}
