package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_store.go -package=book

// Store defines the contract for book persistence.
//
// FindPage and FindAll return books in a stable order. Out-of-range skip or
// limit values yield an empty slice. FindByID, UpdateByID and DeleteByID
// return ErrNotFound for unknown or malformed ids.
type Store interface {
	FindPage(ctx context.Context, skip, limit int) ([]Book, error)
	FindAll(ctx context.Context) ([]Book, error)
	Count(ctx context.Context) (int, error)
	FindByID(ctx context.Context, id string) (Book, error)
	FindOneMatching(ctx context.Context, f Fields) (Book, error)
	Insert(ctx context.Context, f Fields) (Book, error)
	UpdateByID(ctx context.Context, id string, p Patch) (Book, error)
	DeleteByID(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
