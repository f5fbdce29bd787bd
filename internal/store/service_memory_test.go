package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"testing"

	"bookcatalog/internal/book"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryService() *book.Service {
	return book.NewService(NewMemory(), book.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func input(title, author, date, genre string) book.Input {
	return book.Input{
		Title:         book.Some(title),
		Author:        book.Some(author),
		PublishedDate: book.Some(date),
		Genre:         book.Some(genre),
	}
}

func total(t *testing.T, s *book.Service) int {
	t.Helper()
	p, err := s.ListPage(context.Background(), 1, 1)
	require.NoError(t, err)
	return p.TotalBooks
}

func TestService_CreateGrowsCount(t *testing.T) {
	ctx := context.Background()
	s := newMemoryService()

	for i := range 4 {
		before := total(t, s)
		_, err := s.Create(ctx, input(fmt.Sprintf("Book %d", i), "Author", "2001-01-01", "Drama"))
		require.NoError(t, err)
		assert.Equal(t, before+1, total(t, s))
	}
}

func TestService_DuplicateLeavesCountUnchanged(t *testing.T) {
	ctx := context.Background()
	s := newMemoryService()

	_, err := s.Create(ctx, input("Dune", "Frank Herbert", "1965-08-01", "Science Fiction"))
	require.NoError(t, err)

	_, err = s.Create(ctx, input("Dune", "Frank Herbert", "1965-08-01T00:00:00Z", "Science Fiction"))
	assert.ErrorIs(t, err, book.ErrDuplicate)
	assert.Equal(t, 1, total(t, s))

	_, err = s.Create(ctx, input("Dune", "Frank Herbert", "1965-08-01", "Classic"))
	assert.NoError(t, err)
	assert.Equal(t, 2, total(t, s))
}

func TestService_PagesPartitionListAll(t *testing.T) {
	ctx := context.Background()
	s := newMemoryService()
	for i := range 7 {
		_, err := s.Create(ctx, input(fmt.Sprintf("Title %d", i), "A", "1999-12-31", "G"))
		require.NoError(t, err)
	}

	p1, err := s.ListPage(ctx, 1, 3)
	require.NoError(t, err)
	p2, err := s.ListPage(ctx, 2, 3)
	require.NoError(t, err)
	p3, err := s.ListPage(ctx, 3, 3)
	require.NoError(t, err)

	assert.Equal(t, 3, p1.TotalPages)
	assert.Equal(t, 7, p1.TotalBooks)
	assert.Len(t, p1.Books, 3)
	assert.Len(t, p2.Books, 3)
	assert.Len(t, p3.Books, 1)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	union := append(append(append([]book.Book{}, p1.Books...), p2.Books...), p3.Books...)
	assert.Equal(t, all, union)

	for _, a := range p1.Books {
		for _, b := range p2.Books {
			assert.NotEqual(t, a.ID, b.ID)
		}
	}
}

func TestService_UpdateMissingLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	s := newMemoryService()
	_, err := s.Create(ctx, input("Dune", "Frank Herbert", "1965-08-01", "Science Fiction"))
	require.NoError(t, err)
	before, err := s.ListAll(ctx)
	require.NoError(t, err)

	_, err = s.Update(ctx, "6f1c1d7e-9a8b-4c3d-8e2f-1a2b3c4d5e6f", book.Input{Genre: book.Some("Drama")})
	assert.ErrorIs(t, err, book.ErrNotFound)

	after, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestService_PartialUpdateChangesOnlyGivenFields(t *testing.T) {
	ctx := context.Background()
	s := newMemoryService()
	created, err := s.Create(ctx, input("Dune", "Frank Herbert", "1965-08-01", "Science Fiction"))
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, book.Input{Author: book.Some("  F. Herbert  ")})
	require.NoError(t, err)

	assert.Equal(t, "F. Herbert", updated.Author)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.PublishedDate, updated.PublishedDate)
	assert.Equal(t, created.Genre, updated.Genre)
}

func TestService_DeleteThenGet(t *testing.T) {
	ctx := context.Background()
	s := newMemoryService()
	created, err := s.Create(ctx, input("Dune", "Frank Herbert", "1965-08-01", "Science Fiction"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, created.ID))

	_, err = s.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, book.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, created.ID), book.ErrNotFound)
}

func TestService_ListPageLargeValues(t *testing.T) {
	ctx := context.Background()
	s := newMemoryService()
	for i := range 5 {
		_, err := s.Create(ctx, input(fmt.Sprintf("Title %d", i), "A", "1999-12-31", "G"))
		require.NoError(t, err)
	}

	t.Run("max limit is one page", func(t *testing.T) {
		p, err := s.ListPage(ctx, 1, math.MaxInt)
		require.NoError(t, err)
		assert.Equal(t, 1, p.TotalPages)
		assert.Len(t, p.Books, 5)
	})

	t.Run("overflowing offset is empty", func(t *testing.T) {
		p, err := s.ListPage(ctx, 5, 1<<62)
		require.NoError(t, err)
		assert.Equal(t, 5, p.CurrentPage)
		assert.Empty(t, p.Books)
		assert.Equal(t, 1, p.TotalPages)
	})

	t.Run("near max page and limit", func(t *testing.T) {
		p, err := s.ListPage(ctx, math.MaxInt-1, math.MaxInt)
		require.NoError(t, err)
		assert.Empty(t, p.Books)
		assert.Equal(t, 5, p.TotalBooks)
	})
}
