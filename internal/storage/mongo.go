package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spesetracker/internal/kv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BlobCollection is the subset of *mongo.Collection the store needs.
type BlobCollection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
}

type blobDocument struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore keeps one document per key. ReplaceOne with upsert swaps the
// whole document, which MongoDB applies atomically.
type MongoStore struct {
	client     *mongo.Client
	collection BlobCollection
}

// NewMongoStore wraps an existing collection.
func NewMongoStore(collection BlobCollection) *MongoStore {
	return &MongoStore{collection: collection}
}

// ConnectMongoStore dials uri and checks the connection.
func ConnectMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	if s.client != nil {
		return s.client.Disconnect(ctx)
	}
	return nil
}

// Read implements kv.Reader
func (s *MongoStore) Read(ctx context.Context, key string) ([]byte, error) {
	var doc blobDocument
	if err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		return nil, mongoReadError(key, err)
	}
	return doc.Value, nil
}

// Write implements kv.Writer
func (s *MongoStore) Write(ctx context.Context, key string, value []byte) error {
	doc := blobDocument{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace blob %s: %w", key, err)
	}
	return nil
}

func mongoReadError(key string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return kv.ErrNotFound
	}
	return fmt.Errorf("find blob %s: %w", key, err)
}
