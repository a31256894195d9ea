package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var errNilCollection = errors.New("mongo collection is nil")

// ConnectMongo connects to MongoDB at uri and verifies the connection.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	// Ping to verify connection
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// kvDocument is one stored key of the persistent store.
type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoBackend keeps the persistent store's keys as documents of a collection.
type MongoBackend struct {
	Collection *mongo.Collection
	Timeout    time.Duration
}

// NewMongoBackend creates a backend on coll.
func NewMongoBackend(coll *mongo.Collection) *MongoBackend {
	return &MongoBackend{Collection: coll, Timeout: 5 * time.Second}
}

func (b *MongoBackend) context() (context.Context, context.CancelFunc) {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

// Get returns the value stored under key.
func (b *MongoBackend) Get(key string) ([]byte, bool, error) {
	if b.Collection == nil {
		return nil, false, errNilCollection
	}
	ctx, cancel := b.context()
	defer cancel()

	var doc kvDocument
	err := b.Collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return doc.Value, true, nil
}

// Set stores value under key, replacing any previous value.
func (b *MongoBackend) Set(key string, value []byte) error {
	if b.Collection == nil {
		return errNilCollection
	}
	ctx, cancel := b.context()
	defer cancel()

	doc := kvDocument{Key: key, Value: value, UpdatedAt: time.Now()}
	_, err := b.Collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return err
}

// Delete removes key. Deleting an absent key is not an error.
func (b *MongoBackend) Delete(key string) error {
	if b.Collection == nil {
		return errNilCollection
	}
	ctx, cancel := b.context()
	defer cancel()

	_, err := b.Collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}
