package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/frontline-fury-backend/internal/models"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidID   = errors.New("invalid id")
	ErrUnavailable = errors.New("database unavailable")
)

// Source hands out the current database handle; nil means not connected yet.
type Source interface {
	Database() *mongo.Database
}

// Collection is a typed CRUD store over one MongoDB collection. T is the
// record type decoded from the stored documents.
type Collection[T any] struct {
	source Source
	name   string
	now    func() time.Time
}

func NewCollection[T any](source Source, name string) *Collection[T] {
	return &Collection[T]{
		source: source,
		name:   name,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (c *Collection[T]) Name() string {
	return c.name
}

func (c *Collection[T]) coll() (*mongo.Collection, error) {
	db := c.source.Database()
	if db == nil {
		return nil, ErrUnavailable
	}
	return db.Collection(c.name), nil
}

// timestamp is truncated to the millisecond precision of BSON dates so the
// record returned on create equals the one read back later.
func (c *Collection[T]) timestamp() time.Time {
	return c.now().Truncate(time.Millisecond)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

func handleMongoError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errors.Join(err, ErrNotFound)
	}
	return err
}

// List returns every record, newest first.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	coll, err := c.coll()
	if err != nil {
		return nil, err
	}

	findOptions := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: -1},
	})
	cursor, err := coll.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, handleMongoError(err)
	}
	defer cursor.Close(ctx)

	records := make([]T, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, handleMongoError(err)
	}
	return records, nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var record T
	oid, err := parseID(id)
	if err != nil {
		return record, err
	}
	coll, err := c.coll()
	if err != nil {
		return record, err
	}

	err = coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&record)
	if err != nil {
		return record, handleMongoError(err)
	}
	return record, nil
}

// Create inserts a new record built from fields. Null fields are left out.
func (c *Collection[T]) Create(ctx context.Context, fields models.Fields) (T, error) {
	var record T
	coll, err := c.coll()
	if err != nil {
		return record, err
	}

	now := c.timestamp()
	doc := bson.D{{Key: "_id", Value: primitive.NewObjectID()}}
	for _, key := range sortedKeys(fields) {
		if v := fields[key]; v != nil {
			doc = append(doc, bson.E{Key: key, Value: v})
		}
	}
	doc = append(doc,
		bson.E{Key: "createdAt", Value: now},
		bson.E{Key: "updatedAt", Value: now},
	)

	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return record, handleMongoError(err)
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		return record, err
	}
	if err := bson.Unmarshal(raw, &record); err != nil {
		return record, err
	}
	return record, nil
}

// Update merges fields into the stored record and returns the new state.
func (c *Collection[T]) Update(ctx context.Context, id string, fields models.Fields) (T, error) {
	var record T
	oid, err := parseID(id)
	if err != nil {
		return record, err
	}
	coll, err := c.coll()
	if err != nil {
		return record, err
	}

	updateOptions := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, buildUpdate(fields, c.timestamp()), updateOptions).
		Decode(&record)
	if err != nil {
		return record, handleMongoError(err)
	}
	return record, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	coll, err := c.coll()
	if err != nil {
		return err
	}

	res, err := coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return handleMongoError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureIndexes creates the index backing the newest-first listing.
func (c *Collection[T]) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(c.name).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_created_at"),
	})
	return err
}

// buildUpdate turns a payload into $set / $unset operators. updatedAt is
// always bumped; _id and createdAt are never touched.
func buildUpdate(fields models.Fields, now time.Time) bson.D {
	set := bson.D{}
	unset := bson.D{}
	for _, key := range sortedKeys(fields) {
		if v := fields[key]; v != nil {
			set = append(set, bson.E{Key: key, Value: v})
		} else {
			unset = append(unset, bson.E{Key: key, Value: ""})
		}
	}
	set = append(set, bson.E{Key: "updatedAt", Value: now})

	update := bson.D{{Key: "$set", Value: set}}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}
	return update
}

func sortedKeys(fields models.Fields) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
