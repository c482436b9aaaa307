package predict

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Raiyan-S/GP-Dashboard/internal/domain/model"
)

var (
	ErrModelNotFound = errors.New("model not found")
	ErrBadImage      = errors.New("unsupported or corrupt image")
)

// CheckpointSource loads the newest checkpoint blob published under a model
// name, along with the time it was uploaded.
type CheckpointSource interface {
	LoadLatest(ctx context.Context, modelName string) ([]byte, time.Time, error)
}

type PredictionStore interface {
	Insert(ctx context.Context, record model.PredictionRecord) error
	List(ctx context.Context, username string, limit int) ([]model.PredictionRecord, error)
}

type Config struct {
	ModelName string
	Classes   []string
	InputSize int
}

type Result struct {
	Class           string
	Confidence      float64
	Probabilities   map[string]float64
	ModelUploadedAt time.Time
	Image           ImageInfo
}

const historyLimit = 50

// Service scores uploaded images against the latest published checkpoint.
// The parsed network is cached and rebuilt only when a newer checkpoint
// appears.
type Service struct {
	checkpoints CheckpointSource
	history     PredictionStore
	cfg         Config
	now         func() time.Time

	mu         sync.Mutex
	network    *Network
	loadedFrom time.Time
}

func NewService(checkpoints CheckpointSource, history PredictionStore, cfg Config) *Service {
	if cfg.InputSize <= 0 {
		cfg.InputSize = 224
	}

	return &Service{
		checkpoints: checkpoints,
		history:     history,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Classify decodes the upload, runs the forward pass and records the
// outcome in the prediction history.
func (s *Service) Classify(ctx context.Context, data []byte, username string) (Result, error) {
	if len(data) == 0 {
		return Result{}, ErrBadImage
	}

	input, info, err := prepareImage(data, s.cfg.InputSize)
	if err != nil {
		return Result{}, err
	}

	network, uploadedAt, err := s.loadNetwork(ctx)
	if err != nil {
		return Result{}, err
	}

	probs, err := network.Forward(input)
	if err != nil {
		return Result{}, fmt.Errorf("run inference: %w", err)
	}

	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}

	probabilities := make(map[string]float64, len(probs))
	for i, p := range probs {
		probabilities[s.className(i)] = round4(p)
	}

	result := Result{
		Class:           s.className(best),
		Confidence:      round4(probs[best]),
		Probabilities:   probabilities,
		ModelUploadedAt: uploadedAt,
		Image:           info,
	}

	if s.history != nil {
		record := model.PredictionRecord{
			ID:         uuid.NewString(),
			Username:   username,
			Class:      result.Class,
			Confidence: result.Confidence,
			CreatedAt:  s.now().UTC(),
		}
		if err := s.history.Insert(ctx, record); err != nil {
			return Result{}, fmt.Errorf("record prediction: %w", err)
		}
	}

	return result, nil
}

func (s *Service) History(ctx context.Context, username string) ([]model.PredictionRecord, error) {
	if s.history == nil {
		return []model.PredictionRecord{}, nil
	}

	records, err := s.history.List(ctx, username, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}

	return records, nil
}

func (s *Service) loadNetwork(ctx context.Context) (*Network, time.Time, error) {
	data, uploadedAt, err := s.checkpoints.LoadLatest(ctx, s.cfg.ModelName)
	if err != nil {
		if errors.Is(err, ErrModelNotFound) {
			return nil, time.Time{}, ErrModelNotFound
		}
		return nil, time.Time{}, fmt.Errorf("load checkpoint: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.network != nil && s.loadedFrom.Equal(uploadedAt) {
		return s.network, uploadedAt, nil
	}

	ck, err := ParseCheckpoint(data)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parse checkpoint: %w", err)
	}
	network, err := NewNetwork(ck, s.cfg.InputSize, len(s.cfg.Classes))
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("build network: %w", err)
	}

	s.network = network
	s.loadedFrom = uploadedAt

	return network, uploadedAt, nil
}

func (s *Service) className(i int) string {
	if i >= 0 && i < len(s.cfg.Classes) {
		return s.cfg.Classes[i]
	}
	return fmt.Sprintf("class_%d", i)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
