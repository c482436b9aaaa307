package mongo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Raiyan-S/GP-Dashboard/internal/services/predict"
)

// CheckpointRepo reads model checkpoints. Each document in the models
// collection names a GridFS file holding the serialized weights; the
// newest document per model name wins.
type CheckpointRepo struct {
	db         *mongo.Database
	collection *mongo.Collection
}

type checkpointDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	ModelName  string             `bson:"model_name"`
	FileID     primitive.ObjectID `bson:"file_id"`
	UploadedAt time.Time          `bson:"uploaded_at"`
}

func NewCheckpointRepo(db *mongo.Database) *CheckpointRepo {
	return &CheckpointRepo{db: db, collection: db.Collection(modelsCollection)}
}

func (r *CheckpointRepo) LoadLatest(ctx context.Context, modelName string) ([]byte, time.Time, error) {
	if r.db == nil {
		return nil, time.Time{}, fmt.Errorf("mongo database is nil")
	}
	if modelName == "" {
		return nil, time.Time{}, fmt.Errorf("model name is required")
	}

	var doc checkpointDoc
	err := r.collection.FindOne(ctx,
		bson.M{"model_name": modelName},
		options.FindOne().SetSort(bson.D{{Key: "uploaded_at", Value: -1}, {Key: "_id", Value: -1}}),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, time.Time{}, predict.ErrModelNotFound
		}
		return nil, time.Time{}, fmt.Errorf("find latest checkpoint: %w", err)
	}

	bucket, err := gridfs.NewBucket(r.db)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("open checkpoint bucket: %w", err)
	}

	var buf bytes.Buffer
	if _, err := bucket.DownloadToStream(doc.FileID, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, time.Time{}, predict.ErrModelNotFound
		}
		return nil, time.Time{}, fmt.Errorf("download checkpoint: %w", err)
	}

	return buf.Bytes(), doc.UploadedAt, nil
}

// Store uploads a checkpoint blob and registers it as the newest
// checkpoint for the model. Used by the weight ingestion tooling.
func (r *CheckpointRepo) Store(ctx context.Context, modelName string, data []byte, uploadedAt time.Time) error {
	if r.db == nil {
		return fmt.Errorf("mongo database is nil")
	}
	if modelName == "" || len(data) == 0 {
		return fmt.Errorf("invalid checkpoint payload")
	}
	if uploadedAt.IsZero() {
		uploadedAt = time.Now().UTC()
	}

	bucket, err := gridfs.NewBucket(r.db)
	if err != nil {
		return fmt.Errorf("open checkpoint bucket: %w", err)
	}

	fileID, err := bucket.UploadFromStream(modelName, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("upload checkpoint: %w", err)
	}

	doc := checkpointDoc{
		ID:         primitive.NewObjectID(),
		ModelName:  modelName,
		FileID:     fileID,
		UploadedAt: uploadedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert checkpoint record: %w", err)
	}

	return nil
}
