package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookcatalog/internal/book"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const booksTable = "books"

var pg = goqu.Dialect("postgres")

// Postgres is a book.Store over the books table. Ids are UUID strings.
type Postgres struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgres(db *pgxpool.Pool, timeout time.Duration) *Postgres {
	return &Postgres{db: db, timeout: timeout}
}

// OpenPostgres creates a pool for dsn and verifies it with a ping.
func OpenPostgres(ctx context.Context, dsn string, timeout time.Duration) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	p := NewPostgres(pool, timeout)
	if err := p.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.timeout)
}

const selectColumns = `id::text, title, author, published_date, genre, created_at, updated_at`

func scanBook(row pgx.Row) (book.Book, error) {
	var (
		b         book.Book
		published time.Time
	)
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &published, &b.Genre, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return book.Book{}, err
	}
	b.PublishedDate = book.NewDate(published)
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

func (p *Postgres) FindPage(ctx context.Context, skip, limit int) ([]book.Book, error) {
	if skip < 0 || limit < 1 {
		return []book.Book{}, nil
	}
	return p.query(ctx, `SELECT `+selectColumns+` FROM books ORDER BY created_at, id OFFSET $1 LIMIT $2`, skip, limit)
}

func (p *Postgres) FindAll(ctx context.Context) ([]book.Book, error) {
	return p.query(ctx, `SELECT `+selectColumns+` FROM books ORDER BY created_at, id`)
}

func (p *Postgres) query(ctx context.Context, sql string, args ...any) ([]book.Book, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []book.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (p *Postgres) Count(ctx context.Context) (int, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	var n int
	err := p.db.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&n)
	return n, err
}

func (p *Postgres) FindByID(ctx context.Context, id string) (book.Book, error) {
	id, ok := canonicalUUID(id)
	if !ok {
		return book.Book{}, book.ErrNotFound
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	b, err := scanBook(p.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM books WHERE id = $1`, id))
	return b, notFound(err)
}

func (p *Postgres) FindOneMatching(ctx context.Context, f book.Fields) (book.Book, error) {
	sql, args, err := pg.From(booksTable).Prepared(true).
		Select(goqu.L(selectColumns)).
		Where(goqu.Ex{
			"title":          f.Title,
			"author":         f.Author,
			"published_date": f.PublishedDate.Time(),
			"genre":          f.Genre,
		}).
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return book.Book{}, fmt.Errorf("build find matching query: %w", err)
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	b, err := scanBook(p.db.QueryRow(ctx, sql, args...))
	return b, notFound(err)
}

func (p *Postgres) Insert(ctx context.Context, f book.Fields) (book.Book, error) {
	now := time.Now().UTC()
	sql, args, err := pg.Insert(booksTable).Prepared(true).
		Rows(goqu.Record{
			"id":             uuid.NewString(),
			"title":          f.Title,
			"author":         f.Author,
			"published_date": f.PublishedDate.Time(),
			"genre":          f.Genre,
			"created_at":     now,
			"updated_at":     now,
		}).
		Returning(goqu.L(selectColumns)).
		ToSQL()
	if err != nil {
		return book.Book{}, fmt.Errorf("build insert query: %w", err)
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	return scanBook(p.db.QueryRow(ctx, sql, args...))
}

func (p *Postgres) UpdateByID(ctx context.Context, id string, patch book.Patch) (book.Book, error) {
	id, ok := canonicalUUID(id)
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	if patch.IsEmpty() {
		return p.FindByID(ctx, id)
	}

	set := goqu.Record{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Author != nil {
		set["author"] = *patch.Author
	}
	if patch.PublishedDate != nil {
		set["published_date"] = patch.PublishedDate.Time()
	}
	if patch.Genre != nil {
		set["genre"] = *patch.Genre
	}

	sql, args, err := pg.Update(booksTable).Prepared(true).
		Set(set).
		Where(goqu.C("id").Eq(id)).
		Returning(goqu.L(selectColumns)).
		ToSQL()
	if err != nil {
		return book.Book{}, fmt.Errorf("build update query: %w", err)
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	b, err := scanBook(p.db.QueryRow(ctx, sql, args...))
	return b, notFound(err)
}

func (p *Postgres) DeleteByID(ctx context.Context, id string) error {
	id, ok := canonicalUUID(id)
	if !ok {
		return book.ErrNotFound
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	tag, err := p.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return book.ErrNotFound
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	if err := p.db.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

func (p *Postgres) Close(_ context.Context) error {
	p.db.Close()
	return nil
}

// canonicalUUID returns id in the hyphenated form Postgres accepts. uuid.Parse
// also takes urn and braced forms, which the uuid column rejects.
func canonicalUUID(id string) (string, bool) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return book.ErrNotFound
	}
	return err
}
