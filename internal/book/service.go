package book

import (
	"context"
	"errors"
	"log/slog"
	"math"
)

// DefaultLimit is the page size used when a request omits one.
const DefaultLimit = 5

// Service provides book-related business logic.
type Service struct {
	store        Store
	logger       *slog.Logger
	defaultLimit int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for store failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefaultLimit overrides DefaultLimit. Non-positive values are ignored.
func WithDefaultLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.defaultLimit = limit
		}
	}
}

// NewService creates a new book service.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		logger:       slog.Default(),
		defaultLimit: DefaultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListPage returns one page of books. Non-positive page or limit fall back to
// the first page and the default limit.
func (s *Service) ListPage(ctx context.Context, page, limit int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.defaultLimit
	}

	// A page whose offset overflows int is past any stored book.
	books := []Book{}
	if page-1 <= math.MaxInt/limit {
		var err error
		books, err = s.store.FindPage(ctx, (page-1)*limit, limit)
		if err != nil {
			return Page{}, s.storeErr(ctx, "find page", err)
		}
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return Page{}, s.storeErr(ctx, "count", err)
	}

	if books == nil {
		books = []Book{}
	}
	return Page{
		Books:       books,
		CurrentPage: page,
		TotalPages:  totalPages(total, limit),
		TotalBooks:  total,
	}, nil
}

// totalPages is ceil(total/limit) without overflowing for large limits.
func totalPages(total, limit int) int {
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}

// ListAll returns every book, unpaginated.
func (s *Service) ListAll(ctx context.Context) ([]Book, error) {
	books, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, s.storeErr(ctx, "find all", err)
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// GetByID returns a book by its id.
func (s *Service) GetByID(ctx context.Context, id string) (Book, error) {
	b, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Book{}, ErrNotFound
		}
		return Book{}, s.storeErr(ctx, "find by id", err)
	}
	return b, nil
}

// Create validates the input, rejects exact duplicates and stores the book.
// The duplicate check and insert are separate store calls.
func (s *Service) Create(ctx context.Context, in Input) (Book, error) {
	fields, err := ValidateForCreate(in)
	if err != nil {
		return Book{}, err
	}

	_, err = s.store.FindOneMatching(ctx, fields)
	switch {
	case err == nil:
		return Book{}, ErrDuplicate
	case !errors.Is(err, ErrNotFound):
		return Book{}, s.storeErr(ctx, "find matching", err)
	}

	b, err := s.store.Insert(ctx, fields)
	if err != nil {
		return Book{}, s.storeErr(ctx, "insert", err)
	}
	s.logger.InfoContext(ctx, "book created", "id", b.ID)
	return b, nil
}

// Update applies the present input fields to the book with the given id.
func (s *Service) Update(ctx context.Context, id string, in Input) (Book, error) {
	patch, err := ValidateForUpdate(in)
	if err != nil {
		return Book{}, err
	}

	b, err := s.store.UpdateByID(ctx, id, patch)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Book{}, ErrNotFound
		}
		return Book{}, s.storeErr(ctx, "update", err)
	}
	return b, nil
}

// Delete removes the book with the given id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return s.storeErr(ctx, "delete", err)
	}
	s.logger.InfoContext(ctx, "book deleted", "id", id)
	return nil
}

func (s *Service) storeErr(ctx context.Context, op string, err error) error {
	s.logger.ErrorContext(ctx, "book store failure", "op", op, "error", err)
	return &StoreError{Op: op, Err: err}
}
