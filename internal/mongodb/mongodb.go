package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDB struct {
	Client   *mongo.Client
	Products *mongo.Collection
	Orders   *mongo.Collection
	Users    *mongo.Collection
}

func Connect(ctx context.Context, uri, database string) (*MongoDB, error) {
	if uri == "" {
		return nil, fmt.Errorf("MONGO_URI is empty")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	return &MongoDB{
		Client:   client,
		Products: db.Collection("products"),
		Orders:   db.Collection("orders"),
		Users:    db.Collection("users"),
	}, nil
}

// EnsureIndexes creates the unique and sort indexes the repositories rely on.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	specs := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{m.Products, mongo.IndexModel{Keys: bson.D{{Key: "partNumber", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{m.Products, mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}},
		{m.Products, mongo.IndexModel{Keys: bson.D{{Key: "category", Value: 1}}}},
		{m.Orders, mongo.IndexModel{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{m.Orders, mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}}}},
		{m.Users, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
	}
	for _, s := range specs {
		if _, err := s.coll.Indexes().CreateOne(ctx, s.model); err != nil {
			return fmt.Errorf("create index on %s: %w", s.coll.Name(), err)
		}
	}
	return nil
}

func (m *MongoDB) Disconnect(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
