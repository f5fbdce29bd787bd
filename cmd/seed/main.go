package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/logger"
	"bookcatalog/internal/store"
)

type seedBook struct {
	title, author, published, genre string
}

var catalog = []seedBook{
	{"Dune", "Frank Herbert", "1965-08-01", "Science Fiction"},
	{"The Left Hand of Darkness", "Ursula K. Le Guin", "1969-03-01", "Science Fiction"},
	{"Pride and Prejudice", "Jane Austen", "1813-01-28", "Romance"},
	{"One Hundred Years of Solitude", "Gabriel Garcia Marquez", "1967-05-30", "Magical Realism"},
	{"The Name of the Rose", "Umberto Eco", "1980-09-01", "Mystery"},
	{"Beloved", "Toni Morrison", "1987-09-02", "Historical Fiction"},
	{"The Hobbit", "J. R. R. Tolkien", "1937-09-21", "Fantasy"},
	{"Things Fall Apart", "Chinua Achebe", "1958-06-17", "Literary Fiction"},
	{"Neuromancer", "William Gibson", "1984-07-01", "Cyberpunk"},
	{"The Remains of the Day", "Kazuo Ishiguro", "1989-05-01", "Literary Fiction"},
	{"Frankenstein", "Mary Shelley", "1818-01-01", "Gothic"},
	{"A Wizard of Earthsea", "Ursula K. Le Guin", "1968-11-01", "Fantasy"},
}

func main() {
	count := flag.Int("count", len(catalog), "Number of sample books to insert")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Store.Driver == config.DriverMemory {
		log.Fatal("Seeding the in-memory store has no effect; set STORE_DRIVER to mongo or postgres")
	}
	l := logger.Setup(cfg.Log)

	ctx := context.Background()
	st, err := store.Open(ctx, cfg, l)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close(ctx)

	service := book.NewService(st, book.WithLogger(l))

	inserted, skipped := 0, 0
	for i, b := range catalog {
		if i >= *count {
			break
		}
		_, err := service.Create(ctx, book.Input{
			Title:         book.Some(b.title),
			Author:        book.Some(b.author),
			PublishedDate: book.Some(b.published),
			Genre:         book.Some(b.genre),
		})
		switch {
		case errors.Is(err, book.ErrDuplicate):
			skipped++
		case err != nil:
			log.Fatalf("Failed to insert %q: %v", b.title, err)
		default:
			inserted++
		}
	}

	log.Printf("Seed complete: %d inserted, %d already present", inserted, skipped)
}
