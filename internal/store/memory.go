package store

import (
	"context"
	"sync"
	"time"

	"bookcatalog/internal/book"

	"github.com/google/uuid"
)

// Memory is an in-process book.Store. Books are kept in insertion order.
type Memory struct {
	mu    sync.RWMutex
	books []book.Book
	now   func() time.Time
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{now: func() time.Time { return time.Now().UTC() }}
}

func (m *Memory) FindPage(_ context.Context, skip, limit int) ([]book.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if skip < 0 || limit < 1 || skip >= len(m.books) {
		return []book.Book{}, nil
	}
	end := skip + min(limit, len(m.books)-skip)
	return append([]book.Book(nil), m.books[skip:end]...), nil
}

func (m *Memory) FindAll(_ context.Context) ([]book.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]book.Book{}, m.books...), nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.books), nil
}

func (m *Memory) FindByID(_ context.Context, id string) (book.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(id)
	if i < 0 {
		return book.Book{}, book.ErrNotFound
	}
	return m.books[i], nil
}

func (m *Memory) FindOneMatching(_ context.Context, f book.Fields) (book.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, b := range m.books {
		if b.Fields() == f {
			return b, nil
		}
	}
	return book.Book{}, book.ErrNotFound
}

func (m *Memory) Insert(_ context.Context, f book.Fields) (book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b := book.Book{
		ID:            uuid.NewString(),
		Title:         f.Title,
		Author:        f.Author,
		PublishedDate: f.PublishedDate,
		Genre:         f.Genre,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.books = append(m.books, b)
	return b, nil
}

func (m *Memory) UpdateByID(_ context.Context, id string, p book.Patch) (book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return book.Book{}, book.ErrNotFound
	}
	if p.IsEmpty() {
		return m.books[i], nil
	}
	p.Apply(&m.books[i])
	m.books[i].UpdatedAt = m.now()
	return m.books[i], nil
}

func (m *Memory) DeleteByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return book.ErrNotFound
	}
	m.books = append(m.books[:i], m.books[i+1:]...)
	return nil
}

func (m *Memory) Ping(_ context.Context) error { return nil }

func (m *Memory) Close(_ context.Context) error { return nil }

// indexOf must be called with mu held.
func (m *Memory) indexOf(id string) int {
	if _, err := uuid.Parse(id); err != nil {
		return -1
	}
	for i, b := range m.books {
		if b.ID == id {
			return i
		}
	}
	return -1
}
