package model

import "time"

// PredictionRecord is one scored upload, kept so the model-trial page can
// show a history of past classifications.
type PredictionRecord struct {
	ID         string    `bson:"_id" json:"id"`
	Username   string    `bson:"username" json:"username"`
	Class      string    `bson:"class" json:"class"`
	Confidence float64   `bson:"confidence" json:"confidence"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}
