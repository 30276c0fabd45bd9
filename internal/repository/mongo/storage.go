package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shestoi/rocketcart/internal/repository"
)

// BlobDocument представляет документ в коллекции MongoDB
type BlobDocument struct {
	Key       string    `bson:"key"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Storage реализует repository.Storage используя MongoDB коллекцию key/value
type Storage struct {
	client *mongo.Client
	col    *mongo.Collection
}

// NewStorage создаёт новое MongoDB хранилище
// Создаёт уникальный индекс на key при инициализации
func NewStorage(ctx context.Context, client *mongo.Client, dbName string) (*Storage, error) {
	col := client.Database(dbName).Collection("cart_storage")

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := col.Indexes().CreateOne(ctx, indexModel); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		col:    col,
	}, nil
}

// Load получает значение ключа
func (s *Storage) Load(ctx context.Context, key string) (string, error) {
	var doc BlobDocument
	err := s.col.FindOne(ctx, bson.M{"key": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", repository.ErrNotFound
		}
		return "", err
	}

	return doc.Value, nil
}

// Save записывает значение ключа (upsert)
func (s *Storage) Save(ctx context.Context, key, value string) error {
	update := bson.M{
		"$set": bson.M{
			"value":      value,
			"updated_at": time.Now().UTC(),
		},
	}

	_, err := s.col.UpdateOne(ctx, bson.M{"key": key}, update, options.Update().SetUpsert(true))
	return err
}

// Ping проверяет соединение с MongoDB
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}
