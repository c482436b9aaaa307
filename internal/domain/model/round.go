package model

import "time"

// Metrics holds one evaluation result, either for a single client or
// for the globally aggregated model of a round.
type Metrics struct {
	Accuracy  float64 `bson:"accuracy" json:"accuracy"`
	Precision float64 `bson:"precision" json:"precision"`
	Recall    float64 `bson:"recall" json:"recall"`
	F1Score   float64 `bson:"f1_score" json:"f1_score"`
	Loss      float64 `bson:"loss" json:"loss"`
}

type ClientMetrics struct {
	ClientID string  `bson:"client_id" json:"client_id"`
	Metrics  Metrics `bson:"metrics" json:"metrics"`
}

// TrainingRound is one federated round: the per-client evaluations plus
// the metrics of the aggregated global model.
type TrainingRound struct {
	RoundID   string          `bson:"round_id" json:"round_id"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
	Global    Metrics         `bson:"global" json:"global"`
	Clients   []ClientMetrics `bson:"clients" json:"clients"`
}
