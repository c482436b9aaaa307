package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection       = "users"
	sessionsCollection    = "sessions"
	roundsCollection      = "training_rounds"
	modelsCollection      = "models"
	predictionsCollection = "predictions"
)

func Open(ctx context.Context, uri, database string) (*mongo.Database, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}
	if database == "" {
		return nil, fmt.Errorf("mongo database name is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client.Database(database), nil
}

// EnsureIndexes creates the unique indexes the repos rely on for
// duplicate detection and token lookup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if db == nil {
		return fmt.Errorf("mongo database is nil")
	}

	unique := options.Index().SetUnique(true)

	indexes := []struct {
		collection string
		model      mongo.IndexModel
	}{
		{usersCollection, mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique}},
		{sessionsCollection, mongo.IndexModel{Keys: bson.D{{Key: "token", Value: 1}}, Options: unique}},
		{roundsCollection, mongo.IndexModel{Keys: bson.D{{Key: "round_id", Value: 1}}, Options: unique}},
		{predictionsCollection, mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}, {Key: "created_at", Value: -1}}}},
	}

	for _, idx := range indexes {
		if _, err := db.Collection(idx.collection).Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create %s index: %w", idx.collection, err)
		}
	}

	return nil
}
