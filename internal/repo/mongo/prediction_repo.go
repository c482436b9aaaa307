package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Raiyan-S/GP-Dashboard/internal/domain/model"
)

type PredictionRepo struct {
	collection *mongo.Collection
}

func NewPredictionRepo(db *mongo.Database) *PredictionRepo {
	return &PredictionRepo{collection: db.Collection(predictionsCollection)}
}

func (r *PredictionRepo) Insert(ctx context.Context, record model.PredictionRecord) error {
	if r.collection == nil {
		return fmt.Errorf("predictions collection is nil")
	}

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}

	return nil
}

func (r *PredictionRepo) List(ctx context.Context, username string, limit int) ([]model.PredictionRecord, error) {
	if r.collection == nil {
		return nil, fmt.Errorf("predictions collection is nil")
	}

	filter := bson.M{}
	if username != "" {
		filter["username"] = username
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	defer cursor.Close(ctx)

	var records []model.PredictionRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode predictions: %w", err)
	}

	return records, nil
}
