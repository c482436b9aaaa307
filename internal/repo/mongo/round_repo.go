package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Raiyan-S/GP-Dashboard/internal/domain/model"
	"github.com/Raiyan-S/GP-Dashboard/internal/services/metrics"
)

type RoundRepo struct {
	collection *mongo.Collection
}

func NewRoundRepo(db *mongo.Database) *RoundRepo {
	return &RoundRepo{collection: db.Collection(roundsCollection)}
}

func (r *RoundRepo) Insert(ctx context.Context, round model.TrainingRound) error {
	if r.collection == nil {
		return fmt.Errorf("rounds collection is nil")
	}

	if _, err := r.collection.InsertOne(ctx, round); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return metrics.ErrDuplicateRound
		}
		return fmt.Errorf("insert round: %w", err)
	}

	return nil
}

// List returns rounds newest first. A non-empty clientID narrows the
// result to rounds that contain an evaluation for that client.
func (r *RoundRepo) List(ctx context.Context, clientID string) ([]model.TrainingRound, error) {
	if r.collection == nil {
		return nil, fmt.Errorf("rounds collection is nil")
	}

	filter := bson.M{}
	if clientID != "" {
		filter["clients.client_id"] = clientID
	}

	cursor, err := r.collection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	defer cursor.Close(ctx)

	var rounds []model.TrainingRound
	if err := cursor.All(ctx, &rounds); err != nil {
		return nil, fmt.Errorf("decode rounds: %w", err)
	}

	return rounds, nil
}

func (r *RoundRepo) GetByRoundID(ctx context.Context, roundID string) (model.TrainingRound, error) {
	if r.collection == nil {
		return model.TrainingRound{}, fmt.Errorf("rounds collection is nil")
	}

	var round model.TrainingRound
	err := r.collection.FindOne(ctx, bson.M{"round_id": roundID}).Decode(&round)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.TrainingRound{}, metrics.ErrRoundNotFound
		}
		return model.TrainingRound{}, fmt.Errorf("find round: %w", err)
	}

	return round, nil
}

func (r *RoundRepo) DeleteByRoundID(ctx context.Context, roundID string) error {
	if r.collection == nil {
		return fmt.Errorf("rounds collection is nil")
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"round_id": roundID})
	if err != nil {
		return fmt.Errorf("delete round: %w", err)
	}
	if res.DeletedCount == 0 {
		return metrics.ErrRoundNotFound
	}

	return nil
}

// AggregateStats averages every per-client evaluation across all rounds
// in a single pipeline and counts distinct round ids.
func (r *RoundRepo) AggregateStats(ctx context.Context) (metrics.Stats, error) {
	if r.collection == nil {
		return metrics.Stats{}, fmt.Errorf("rounds collection is nil")
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$unwind", Value: "$clients"}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avg_accuracy", Value: bson.D{{Key: "$avg", Value: "$clients.metrics.accuracy"}}},
			{Key: "avg_f1_score", Value: bson.D{{Key: "$avg", Value: "$clients.metrics.f1_score"}}},
			{Key: "avg_loss", Value: bson.D{{Key: "$avg", Value: "$clients.metrics.loss"}}},
			{Key: "round_ids", Value: bson.D{{Key: "$addToSet", Value: "$round_id"}}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "avg_accuracy", Value: 1},
			{Key: "avg_f1_score", Value: 1},
			{Key: "avg_loss", Value: 1},
			{Key: "total_rounds", Value: bson.D{{Key: "$size", Value: "$round_ids"}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return metrics.Stats{}, fmt.Errorf("aggregate round stats: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		AvgAccuracy float64 `bson:"avg_accuracy"`
		AvgF1Score  float64 `bson:"avg_f1_score"`
		AvgLoss     float64 `bson:"avg_loss"`
		TotalRounds int     `bson:"total_rounds"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return metrics.Stats{}, fmt.Errorf("decode round stats: %w", err)
	}
	if len(rows) == 0 {
		return metrics.Stats{}, nil
	}

	return metrics.Stats{
		TotalRounds: rows[0].TotalRounds,
		AvgAccuracy: rows[0].AvgAccuracy,
		AvgF1Score:  rows[0].AvgF1Score,
		AvgLoss:     rows[0].AvgLoss,
	}, nil
}
