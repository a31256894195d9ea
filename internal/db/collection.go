package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/vehiclemate/internal/datasource"
)

// MongoSource is a datasource.Source backed by a MongoDB collection.
// Documents are keyed by the entity id in _id.
type MongoSource[T datasource.Entity] struct {
	Collection *mongo.Collection
	// Sort orders List results; nil keeps natural order.
	Sort bson.D
}

// NewMongoSource creates a source on coll.
func NewMongoSource[T datasource.Entity](coll *mongo.Collection, sort bson.D) *MongoSource[T] {
	return &MongoSource[T]{Collection: coll, Sort: sort}
}

// List returns every document of the collection.
func (c *MongoSource[T]) List(ctx context.Context) ([]T, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	opts := options.Find()
	if c.Sort != nil {
		opts.SetSort(c.Sort)
	}
	cursor, err := c.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return out, nil
}

// Get finds a document by id.
func (c *MongoSource[T]) Get(ctx context.Context, id string) (T, error) {
	var item T
	if c.Collection == nil {
		return item, errNilCollection
	}
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return item, fmt.Errorf("%q: %w", id, datasource.ErrNotFound)
	}
	return item, err
}

// Create inserts a new document.
func (c *MongoSource[T]) Create(ctx context.Context, item T) (T, error) {
	var zero T
	if c.Collection == nil {
		return zero, errNilCollection
	}
	if item.EntityID() == "" {
		return zero, datasource.ErrMissingID
	}
	if _, err := c.Collection.InsertOne(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return zero, fmt.Errorf("%q: %w", item.EntityID(), datasource.ErrDuplicateID)
		}
		return zero, err
	}
	return item, nil
}

// Update replaces the document with the item's id.
func (c *MongoSource[T]) Update(ctx context.Context, item T) (T, error) {
	var zero T
	if c.Collection == nil {
		return zero, errNilCollection
	}
	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": item.EntityID()}, item)
	if err != nil {
		return zero, err
	}
	if result.MatchedCount == 0 {
		return zero, fmt.Errorf("%q: %w", item.EntityID(), datasource.ErrNotFound)
	}
	return item, nil
}

// SeedIfEmpty inserts items when the collection has no documents yet.
func (c *MongoSource[T]) SeedIfEmpty(ctx context.Context, items []T) error {
	if c.Collection == nil {
		return errNilCollection
	}
	n, err := c.Collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if n > 0 || len(items) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(items))
	for _, item := range items {
		docs = append(docs, item)
	}
	_, err = c.Collection.InsertMany(ctx, docs)
	return err
}
