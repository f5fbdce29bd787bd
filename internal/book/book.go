package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format of a published date.
const DateLayout = "2006-01-02"

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

// ErrDuplicate is returned when a create collides with an identical stored book.
var ErrDuplicate = errors.New("book with the same details already exists")

// Book represents a catalog record.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	PublishedDate Date      `json:"publishedDate"`
	Genre         string    `json:"genre"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Fields returns the content fields of the book.
func (b Book) Fields() Fields {
	return Fields{
		Title:         b.Title,
		Author:        b.Author,
		PublishedDate: b.PublishedDate,
		Genre:         b.Genre,
	}
}

// Fields is the normalized content of a book, the unit of duplicate detection.
type Fields struct {
	Title         string
	Author        string
	PublishedDate Date
	Genre         string
}

// Patch holds the fields of a partial update. Nil means untouched.
type Patch struct {
	Title         *string
	Author        *string
	PublishedDate *Date
	Genre         *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.PublishedDate == nil && p.Genre == nil
}

// Apply copies the present patch fields onto b.
func (p Patch) Apply(b *Book) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.PublishedDate != nil {
		b.PublishedDate = *p.PublishedDate
	}
	if p.Genre != nil {
		b.Genre = *p.Genre
	}
}

// Page is one offset slice of the catalog.
type Page struct {
	Books       []Book `json:"books"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	TotalBooks  int    `json:"totalBooks"`
}

// Date is a calendar date. The zero time-of-day is always UTC midnight.
type Date struct {
	t time.Time
}

// NewDate truncates t to its UTC calendar date.
func NewDate(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts a plain ISO-8601 date or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return NewDate(t), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return NewDate(t), nil
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) Time() time.Time { return d.t }

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

func (d Date) String() string { return d.t.Format(DateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
