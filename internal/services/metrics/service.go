package metrics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Raiyan-S/GP-Dashboard/internal/domain/model"
)

var (
	ErrInvalidRound   = errors.New("invalid training round")
	ErrDuplicateRound = errors.New("round already exists")
	ErrRoundNotFound  = errors.New("round not found")
)

// Stats holds raw (0..1) averages over every per-client evaluation in the
// collection plus the number of distinct rounds.
type Stats struct {
	TotalRounds int
	AvgAccuracy float64
	AvgF1Score  float64
	AvgLoss     float64
}

// PerformanceRow is the shape the dashboard chart consumes: one row per
// round, metrics taken from a single client, accuracy and f1 as percentages.
type PerformanceRow struct {
	Round     string    `json:"round"`
	Timestamp time.Time `json:"timestamp"`
	Accuracy  float64   `json:"accuracy"`
	F1Score   float64   `json:"f1Score"`
	Loss      float64   `json:"loss"`
	Precision float64   `json:"precision"`
	Recall    float64   `json:"recall"`
}

// DashboardStats mirrors Stats with the percentage conversion applied.
type DashboardStats struct {
	TotalRounds int     `json:"totalRounds"`
	AvgAccuracy float64 `json:"avgAccuracy"`
	AvgF1Score  float64 `json:"avgF1Score"`
	AvgLoss     float64 `json:"avgLoss"`
}

type RoundStore interface {
	Insert(ctx context.Context, round model.TrainingRound) error
	List(ctx context.Context, clientID string) ([]model.TrainingRound, error)
	GetByRoundID(ctx context.Context, roundID string) (model.TrainingRound, error)
	DeleteByRoundID(ctx context.Context, roundID string) error
	AggregateStats(ctx context.Context) (Stats, error)
}

type Service struct {
	rounds RoundStore
	now    func() time.Time
}

func NewService(rounds RoundStore) *Service {
	return &Service{rounds: rounds, now: time.Now}
}

func (s *Service) AddRound(ctx context.Context, round model.TrainingRound) (model.TrainingRound, error) {
	round.RoundID = strings.TrimSpace(round.RoundID)
	if round.RoundID == "" || len(round.Clients) == 0 {
		return model.TrainingRound{}, ErrInvalidRound
	}
	for _, client := range round.Clients {
		if strings.TrimSpace(client.ClientID) == "" {
			return model.TrainingRound{}, ErrInvalidRound
		}
	}
	if round.CreatedAt.IsZero() {
		round.CreatedAt = s.now().UTC()
	}

	if err := s.rounds.Insert(ctx, round); err != nil {
		if errors.Is(err, ErrDuplicateRound) {
			return model.TrainingRound{}, ErrDuplicateRound
		}
		return model.TrainingRound{}, fmt.Errorf("insert round: %w", err)
	}

	return round, nil
}

// PerformanceRows lists every round newest first, reduced to the metrics of
// one client: the requested one when clientID is set, otherwise the first
// client of each round.
func (s *Service) PerformanceRows(ctx context.Context, clientID string) ([]PerformanceRow, error) {
	rounds, err := s.rounds.List(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}

	rows := make([]PerformanceRow, 0, len(rounds))
	for _, round := range rounds {
		if len(round.Clients) == 0 {
			continue
		}
		selected := round.Clients[0]
		if clientID != "" {
			for _, client := range round.Clients {
				if client.ClientID == clientID {
					selected = client
					break
				}
			}
		}
		rows = append(rows, PerformanceRow{
			Round:     round.RoundID,
			Timestamp: round.CreatedAt,
			Accuracy:  selected.Metrics.Accuracy * 100,
			F1Score:   selected.Metrics.F1Score * 100,
			Loss:      selected.Metrics.Loss,
			Precision: selected.Metrics.Precision,
			Recall:    selected.Metrics.Recall,
		})
	}

	return rows, nil
}

func (s *Service) Stats(ctx context.Context) (DashboardStats, error) {
	stats, err := s.rounds.AggregateStats(ctx)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("aggregate stats: %w", err)
	}

	return DashboardStats{
		TotalRounds: stats.TotalRounds,
		AvgAccuracy: stats.AvgAccuracy * 100,
		AvgF1Score:  stats.AvgF1Score * 100,
		AvgLoss:     stats.AvgLoss,
	}, nil
}

func (s *Service) Round(ctx context.Context, roundID string) (model.TrainingRound, error) {
	roundID = strings.TrimSpace(roundID)
	if roundID == "" {
		return model.TrainingRound{}, ErrRoundNotFound
	}

	round, err := s.rounds.GetByRoundID(ctx, roundID)
	if err != nil {
		if errors.Is(err, ErrRoundNotFound) {
			return model.TrainingRound{}, ErrRoundNotFound
		}
		return model.TrainingRound{}, fmt.Errorf("get round: %w", err)
	}

	return round, nil
}

func (s *Service) DeleteRound(ctx context.Context, roundID string) error {
	roundID = strings.TrimSpace(roundID)
	if roundID == "" {
		return ErrRoundNotFound
	}

	if err := s.rounds.DeleteByRoundID(ctx, roundID); err != nil {
		if errors.Is(err, ErrRoundNotFound) {
			return ErrRoundNotFound
		}
		return fmt.Errorf("delete round: %w", err)
	}

	return nil
}
