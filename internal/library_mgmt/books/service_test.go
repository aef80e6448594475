package books

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/clock"
	"library-backend/internal/platform/db"
	"library-backend/internal/platform/db/dbtest"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s := NewService(dbtest.Open(t))
	s.clock = clock.Fixed(today.Add(9 * time.Hour))
	return s
}

func TestCreateDefaultsAvailableToTotal(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	created, err := s.Create(ctx, validInput())
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.Equal(t, 3, created.TotalCopies)
	assert.Equal(t, 3, created.AvailableCopies)
	assert.Equal(t, int64(1), created.Version)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestCreateKeepsExplicitAvailable(t *testing.T) {
	in := validInput()
	in.AvailableCopies = 1
	created, err := newTestService(t).Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 1, created.AvailableCopies)
}

func TestCreateInvalidIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	in := validInput()
	in.AvailableCopies = 9

	_, err := s.Create(ctx, in)
	assert.True(t, apierr.Is(err, apierr.CodeInvalidArgument))

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	_, err := s.Get(ctx, 0)
	assert.True(t, apierr.Is(err, apierr.CodeInvalidArgument))
	_, err = s.Get(ctx, -5)
	assert.True(t, apierr.Is(err, apierr.CodeInvalidArgument))
	_, err = s.Get(ctx, 42)
	assert.True(t, apierr.Is(err, apierr.CodeNotFound))
}

func TestListReturnsBooksWithAuthors(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	first := validInput()
	second := validInput()
	second.Title = "Good Omens"
	second.Authors = []AuthorInput{{FirstName: "Terry", LastName: "Pratchett"}, {FirstName: "Neil", LastName: "Gaiman"}}
	_, err = s.Create(ctx, first)
	require.NoError(t, err)
	_, err = s.Create(ctx, second)
	require.NoError(t, err)

	list, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "The Dispossessed", list[0].Title)
	require.Len(t, list[1].Authors, 2)
	assert.Equal(t, "Pratchett", list[1].Authors[0].LastName)
	assert.Equal(t, "Gaiman", list[1].Authors[1].LastName)
}

func TestUpdateReplacesEverything(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	created, err := s.Create(ctx, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Title = "The Left Hand of Darkness"
	in.Authors = []AuthorInput{{FirstName: "Ursula", LastName: "Le Guin"}}
	in.Category = CategoryScience
	in.TotalCopies = 5
	in.AvailableCopies = 0
	in.Version = created.Version

	updated, err := s.Update(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Left Hand of Darkness", got.Title)
	assert.Equal(t, CategoryScience, got.Category)
	assert.Equal(t, 5, got.TotalCopies)
	// full replacement: no defaulting on update
	assert.Equal(t, 0, got.AvailableCopies)
	require.Len(t, got.Authors, 1)
	assert.Equal(t, "Ursula", got.Authors[0].FirstName)
}

func TestUpdateStaleVersionConflicts(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	created, err := s.Create(ctx, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Version = created.Version
	_, err = s.Update(ctx, created.ID, in)
	require.NoError(t, err)

	in.Title = "lost update"
	_, err = s.Update(ctx, created.ID, in)
	assert.True(t, apierr.Is(err, apierr.CodeConflict))

	// version 0 skips the check
	in.Version = 0
	_, err = s.Update(ctx, created.ID, in)
	assert.NoError(t, err)
}

func TestUpdateMissingOrInvalid(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	_, err := s.Update(ctx, 99, validInput())
	assert.True(t, apierr.Is(err, apierr.CodeNotFound))
	_, err = s.Update(ctx, 0, validInput())
	assert.True(t, apierr.Is(err, apierr.CodeInvalidArgument))

	created, err := s.Create(ctx, validInput())
	require.NoError(t, err)
	bad := validInput()
	bad.AvailableCopies = 10
	_, err = s.Update(ctx, created.ID, bad)
	assert.True(t, apierr.Is(err, apierr.CodeInvalidArgument))
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	created, err := s.Create(ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, created.ID))
	require.NoError(t, s.Delete(ctx, created.ID))
	require.NoError(t, s.Delete(ctx, 12345))
	assert.True(t, apierr.Is(s.Delete(ctx, 0), apierr.CodeInvalidArgument))

	_, err = s.Get(ctx, created.ID)
	assert.True(t, apierr.Is(err, apierr.CodeNotFound))
}

func TestGuardedCopyUpdates(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	in := validInput()
	in.TotalCopies = 1
	created, err := s.Create(ctx, in)
	require.NoError(t, err)

	require.NoError(t, TakeCopyTx(ctx, s.db, created.ID))
	err = TakeCopyTx(ctx, s.db, created.ID)
	assert.True(t, apierr.Is(err, apierr.CodeBusinessRule))

	require.NoError(t, PutBackCopyTx(ctx, s.db, created.ID))
	err = PutBackCopyTx(ctx, s.db, created.ID)
	assert.True(t, apierr.Is(err, apierr.CodeBusinessRule))

	b, err := GetBookByIDTx(ctx, s.db, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, b.AvailableCopies)
	assert.Equal(t, int64(3), b.Version)
}

func TestGuardedCopyUpdatesInsideTx(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	created, err := s.Create(ctx, validInput())
	require.NoError(t, err)

	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if err := TakeCopyTx(ctx, tx, created.ID); err != nil {
			return err
		}
		return apierr.ErrInternal("abort")
	})
	require.Error(t, err)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.AvailableCopies)
}
