package store

import (
	"context"
	"testing"

	"bookcatalog/internal/book"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFields(title string) book.Fields {
	return book.Fields{
		Title:         title,
		Author:        "Frank Herbert",
		PublishedDate: book.MustParseDate("1965-08-01"),
		Genre:         "Science Fiction",
	}
}

// runStoreContract exercises the behaviour every book.Store must share.
// newStore must return an empty store.
func runStoreContract(t *testing.T, newStore func(t *testing.T) book.Store) {
	ctx := context.Background()

	t.Run("insert then find", func(t *testing.T) {
		s := newStore(t)

		created, err := s.Insert(ctx, sampleFields("Dune"))
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, sampleFields("Dune"), created.Fields())
		assert.False(t, created.CreatedAt.IsZero())

		got, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, sampleFields("Dune"), got.Fields())

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("malformed and unknown ids", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Insert(ctx, sampleFields("Dune"))
		require.NoError(t, err)
		require.NoError(t, s.DeleteByID(ctx, created.ID))

		for _, id := range []string{"not-an-id", "", created.ID} {
			_, err := s.FindByID(ctx, id)
			assert.ErrorIs(t, err, book.ErrNotFound, "find %q", id)

			title := "x"
			_, err = s.UpdateByID(ctx, id, book.Patch{Title: &title})
			assert.ErrorIs(t, err, book.ErrNotFound, "update %q", id)

			assert.ErrorIs(t, s.DeleteByID(ctx, id), book.ErrNotFound, "delete %q", id)
		}
	})

	t.Run("find one matching", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Insert(ctx, sampleFields("Dune"))
		require.NoError(t, err)

		got, err := s.FindOneMatching(ctx, sampleFields("Dune"))
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)

		other := sampleFields("Dune")
		other.Genre = "Fantasy"
		_, err = s.FindOneMatching(ctx, other)
		assert.ErrorIs(t, err, book.ErrNotFound)
	})

	t.Run("pages are disjoint and cover all", func(t *testing.T) {
		s := newStore(t)
		for _, title := range []string{"A", "B", "C", "D", "E", "F", "G"} {
			_, err := s.Insert(ctx, sampleFields(title))
			require.NoError(t, err)
		}

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 7)

		seen := map[string]bool{}
		var paged []string
		for skip := 0; skip < 9; skip += 3 {
			page, err := s.FindPage(ctx, skip, 3)
			require.NoError(t, err)
			for _, b := range page {
				assert.False(t, seen[b.ID], "book %s returned twice", b.ID)
				seen[b.ID] = true
				paged = append(paged, b.ID)
			}
		}

		var ids []string
		for _, b := range all {
			ids = append(ids, b.ID)
		}
		assert.Equal(t, ids, paged)

		empty, err := s.FindPage(ctx, 100, 3)
		require.NoError(t, err)
		assert.Empty(t, empty)
		assert.NotNil(t, empty)
	})

	t.Run("partial update", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Insert(ctx, sampleFields("Dune"))
		require.NoError(t, err)

		genre := "Classic"
		updated, err := s.UpdateByID(ctx, created.ID, book.Patch{Genre: &genre})
		require.NoError(t, err)

		want := sampleFields("Dune")
		want.Genre = "Classic"
		assert.Equal(t, want, updated.Fields())
		assert.Equal(t, created.ID, updated.ID)
		assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

		got, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got.Fields())
	})

	t.Run("empty patch returns current record", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Insert(ctx, sampleFields("Dune"))
		require.NoError(t, err)

		got, err := s.UpdateByID(ctx, created.ID, book.Patch{})
		require.NoError(t, err)
		assert.Equal(t, created.Fields(), got.Fields())
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Insert(ctx, sampleFields("Dune"))
		require.NoError(t, err)

		require.NoError(t, s.DeleteByID(ctx, created.ID))

		_, err = s.FindByID(ctx, created.ID)
		assert.ErrorIs(t, err, book.ErrNotFound)
		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newStore(t).Ping(ctx))
	})
}
