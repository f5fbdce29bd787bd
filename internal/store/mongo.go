package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookcatalog/internal/book"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const mongoCollection = "books"

// bookDocument is the stored shape of a book.
type bookDocument struct {
	ID            primitive.ObjectID `bson:"_id"`
	Title         string             `bson:"title"`
	Author        string             `bson:"author"`
	PublishedDate time.Time          `bson:"publishedDate"`
	Genre         string             `bson:"genre"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func (d bookDocument) toBook() book.Book {
	return book.Book{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Author:        d.Author,
		PublishedDate: book.NewDate(d.PublishedDate),
		Genre:         d.Genre,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}

// Mongo is a book.Store over a MongoDB collection. Ids are ObjectID hex strings.
type Mongo struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
}

// OpenMongo connects to uri, pings the primary and ensures the lookup index.
func OpenMongo(ctx context.Context, uri, database string, timeout time.Duration) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	m := NewMongo(client, database, timeout)
	if err := m.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	if err := m.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return m, nil
}

// NewMongo wraps an existing client.
func NewMongo(client *mongo.Client, database string, timeout time.Duration) *Mongo {
	return &Mongo{
		client:  client,
		coll:    client.Database(database).Collection(mongoCollection),
		timeout: timeout,
	}
}

func (m *Mongo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.timeout)
}

// EnsureIndexes creates the compound index used by FindOneMatching.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "title", Value: 1},
			{Key: "author", Value: 1},
			{Key: "publishedDate", Value: 1},
			{Key: "genre", Value: 1},
		},
		Options: options.Index().SetName("book_fields"),
	})
	if err != nil {
		return fmt.Errorf("create mongo index: %w", err)
	}
	return nil
}

func (m *Mongo) FindPage(ctx context.Context, skip, limit int) ([]book.Book, error) {
	if skip < 0 || limit < 1 {
		return []book.Book{}, nil
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))
	return m.find(ctx, opts)
}

func (m *Mongo) FindAll(ctx context.Context) ([]book.Book, error) {
	return m.find(ctx, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (m *Mongo) find(ctx context.Context, opts *options.FindOptions) ([]book.Book, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	cur, err := m.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []bookDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]book.Book, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toBook())
	}
	return out, nil
}

func (m *Mongo) Count(ctx context.Context) (int, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	n, err := m.coll.CountDocuments(ctx, bson.D{})
	return int(n), err
}

func (m *Mongo) FindByID(ctx context.Context, id string) (book.Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return book.Book{}, book.ErrNotFound
	}
	return m.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (m *Mongo) FindOneMatching(ctx context.Context, f book.Fields) (book.Book, error) {
	return m.findOne(ctx, bson.D{
		{Key: "title", Value: f.Title},
		{Key: "author", Value: f.Author},
		{Key: "publishedDate", Value: f.PublishedDate.Time()},
		{Key: "genre", Value: f.Genre},
	})
}

func (m *Mongo) findOne(ctx context.Context, filter bson.D) (book.Book, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	var doc bookDocument
	err := m.coll.FindOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return book.Book{}, book.ErrNotFound
		}
		return book.Book{}, err
	}
	return doc.toBook(), nil
}

func (m *Mongo) Insert(ctx context.Context, f book.Fields) (book.Book, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	now := mongoNow()
	doc := bookDocument{
		ID:            primitive.NewObjectID(),
		Title:         f.Title,
		Author:        f.Author,
		PublishedDate: f.PublishedDate.Time(),
		Genre:         f.Genre,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		return book.Book{}, err
	}
	return doc.toBook(), nil
}

func (m *Mongo) UpdateByID(ctx context.Context, id string, p book.Patch) (book.Book, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return book.Book{}, book.ErrNotFound
	}
	if p.IsEmpty() {
		return m.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
	}

	set := bson.D{}
	if p.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *p.Title})
	}
	if p.Author != nil {
		set = append(set, bson.E{Key: "author", Value: *p.Author})
	}
	if p.PublishedDate != nil {
		set = append(set, bson.E{Key: "publishedDate", Value: p.PublishedDate.Time()})
	}
	if p.Genre != nil {
		set = append(set, bson.E{Key: "genre", Value: *p.Genre})
	}
	set = append(set, bson.E{Key: "updatedAt", Value: mongoNow()})

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	var doc bookDocument
	err = m.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return book.Book{}, book.ErrNotFound
		}
		return book.Book{}, err
	}
	return doc.toBook(), nil
}

func (m *Mongo) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return book.ErrNotFound
	}

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	res, err := m.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return book.ErrNotFound
	}
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// mongoNow matches the millisecond precision of BSON dates.
func mongoNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
