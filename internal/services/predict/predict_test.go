package predict

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/Raiyan-S/GP-Dashboard/internal/domain/model"
)

func TestCheckpointRoundTrip(t *testing.T) {
	layers := []NamedTensor{
		{Name: "a.weight", Tensor: Tensor{Shape: []int{2, 3}, Data: []float32{1, 2, 3, 4, 5, 6}}},
		{Name: "a.bias", Tensor: Tensor{Shape: []int{2}, Data: []float32{-1, 0.5}}},
	}

	data, err := EncodeCheckpoint(layers)
	if err != nil {
		t.Fatalf("encode checkpoint: %v", err)
	}

	ck, err := ParseCheckpoint(data)
	if err != nil {
		t.Fatalf("parse checkpoint: %v", err)
	}

	weight, err := ck.Tensor("a.weight", 2, 3)
	if err != nil {
		t.Fatalf("get tensor: %v", err)
	}
	if weight.Data[5] != 6 {
		t.Fatalf("unexpected tensor data: %v", weight.Data)
	}

	if _, err := ck.Tensor("a.weight", 3, 2); err == nil {
		t.Fatalf("shape mismatch not detected")
	}
	if _, err := ck.Tensor("missing", 1); err == nil {
		t.Fatalf("missing tensor not detected")
	}
}

func TestParseCheckpointRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		[]byte("JUNK"),
		[]byte("FLCK\xff\xff\xff\xff"),
	} {
		if _, err := ParseCheckpoint(data); err == nil {
			t.Fatalf("garbage checkpoint %q parsed", data)
		}
	}
}

func TestForwardZeroWeightsIsUniform(t *testing.T) {
	network := testNetwork(t, [4]float32{})

	input := Tensor{Shape: []int{3, 8, 8}, Data: make([]float32, 3*8*8)}
	probs, err := network.Forward(input)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}

	if len(probs) != 4 {
		t.Fatalf("unexpected probability count: %d", len(probs))
	}
	var sum float64
	for _, p := range probs {
		if math.Abs(p-0.25) > 1e-9 {
			t.Fatalf("zero network is not uniform: %v", probs)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("probabilities do not sum to 1: %f", sum)
	}
}

func TestForwardBiasSelectsClass(t *testing.T) {
	network := testNetwork(t, [4]float32{0, 0, 3, 0})

	input := Tensor{Shape: []int{3, 8, 8}, Data: make([]float32, 3*8*8)}
	probs, err := network.Forward(input)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}

	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	if best != 2 {
		t.Fatalf("expected class 2 to win, got %d (%v)", best, probs)
	}
}

func TestPrepareImageNormalises(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 30, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 30; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 0, B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	tensor, info, err := prepareImage(buf.Bytes(), 8)
	if err != nil {
		t.Fatalf("prepare image: %v", err)
	}

	if info.Width != 30 || info.Height != 20 || info.Format != "PNG" {
		t.Fatalf("unexpected image info: %+v", info)
	}
	if len(tensor.Data) != 3*8*8 {
		t.Fatalf("unexpected tensor size: %d", len(tensor.Data))
	}

	// red channel: (1 - 0.485) / 0.229
	wantR := (1 - 0.485) / 0.229
	if math.Abs(float64(tensor.Data[0])-wantR) > 1e-3 {
		t.Fatalf("red channel not normalised: got %f want %f", tensor.Data[0], wantR)
	}
	// green channel: (0 - 0.456) / 0.224
	wantG := (0 - 0.456) / 0.224
	if math.Abs(float64(tensor.Data[64])-wantG) > 1e-3 {
		t.Fatalf("green channel not normalised: got %f want %f", tensor.Data[64], wantG)
	}
}

func TestPrepareImageRejectsGarbage(t *testing.T) {
	if _, _, err := prepareImage([]byte("not an image"), 8); !errors.Is(err, ErrBadImage) {
		t.Fatalf("garbage image: got err=%v want ErrBadImage", err)
	}
}

func TestClassifyRecordsHistory(t *testing.T) {
	blob := testCheckpointBlob(t, [4]float32{0, 0, 3, 0})
	uploaded := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	source := &fakeCheckpointSource{data: blob, uploadedAt: uploaded}
	history := &memPredictionStore{}
	svc := NewService(source, history, Config{
		ModelName: "my_model",
		Classes:   []string{"healthy", "mild", "moderate", "severe"},
		InputSize: 8,
	})

	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	result, err := svc.Classify(context.Background(), buf.Bytes(), "clinic@example.com")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}

	if result.Class != "moderate" {
		t.Fatalf("unexpected class: %q", result.Class)
	}
	if result.Confidence <= 0.25 || result.Confidence > 1 {
		t.Fatalf("unexpected confidence: %f", result.Confidence)
	}
	if len(result.Probabilities) != 4 {
		t.Fatalf("unexpected probabilities: %v", result.Probabilities)
	}
	if !result.ModelUploadedAt.Equal(uploaded) {
		t.Fatalf("unexpected model upload date: %s", result.ModelUploadedAt)
	}
	if result.Image.Format != "PNG" || result.Image.Width != 10 {
		t.Fatalf("unexpected image info: %+v", result.Image)
	}

	records, err := svc.History(context.Background(), "clinic@example.com")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(records) != 1 || records[0].Class != "moderate" {
		t.Fatalf("prediction was not recorded: %+v", records)
	}

	// second classify must reuse the cached network
	if _, err := svc.Classify(context.Background(), buf.Bytes(), "clinic@example.com"); err != nil {
		t.Fatalf("second classify: %v", err)
	}
	if source.loads != 2 {
		t.Fatalf("unexpected checkpoint source calls: %d", source.loads)
	}
}

func TestClassifyMissingModel(t *testing.T) {
	svc := NewService(&fakeCheckpointSource{err: ErrModelNotFound}, nil, Config{
		ModelName: "my_model",
		Classes:   []string{"a", "b", "c", "d"},
		InputSize: 8,
	})

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	if _, err := svc.Classify(context.Background(), buf.Bytes(), "u"); !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("missing model: got err=%v want ErrModelNotFound", err)
	}
}

func testNetwork(t *testing.T, fc2Bias [4]float32) *Network {
	t.Helper()

	ck, err := ParseCheckpoint(testCheckpointBlob(t, fc2Bias))
	if err != nil {
		t.Fatalf("parse checkpoint: %v", err)
	}
	network, err := NewNetwork(ck, 8, 4)
	if err != nil {
		t.Fatalf("build network: %v", err)
	}
	return network
}

// testCheckpointBlob builds a checkpoint for an 8x8 input (flatten size
// 128*1*1) with all weights zero and the given classifier output bias.
func testCheckpointBlob(t *testing.T, fc2Bias [4]float32) []byte {
	t.Helper()

	zeros := func(shape ...int) Tensor {
		n := 1
		for _, d := range shape {
			n *= d
		}
		return Tensor{Shape: shape, Data: make([]float32, n)}
	}

	data, err := EncodeCheckpoint([]NamedTensor{
		{Name: "features.0.weight", Tensor: zeros(32, 3, 3, 3)},
		{Name: "features.0.bias", Tensor: zeros(32)},
		{Name: "features.3.weight", Tensor: zeros(64, 32, 3, 3)},
		{Name: "features.3.bias", Tensor: zeros(64)},
		{Name: "features.6.weight", Tensor: zeros(128, 64, 3, 3)},
		{Name: "features.6.bias", Tensor: zeros(128)},
		{Name: "classifier.0.weight", Tensor: zeros(128, 128)},
		{Name: "classifier.0.bias", Tensor: zeros(128)},
		{Name: "classifier.3.weight", Tensor: zeros(4, 128)},
		{Name: "classifier.3.bias", Tensor: Tensor{Shape: []int{4}, Data: fc2Bias[:]}},
	})
	if err != nil {
		t.Fatalf("encode checkpoint: %v", err)
	}
	return data
}

type fakeCheckpointSource struct {
	data       []byte
	uploadedAt time.Time
	err        error
	loads      int
}

func (f *fakeCheckpointSource) LoadLatest(context.Context, string) ([]byte, time.Time, error) {
	f.loads++
	if f.err != nil {
		return nil, time.Time{}, f.err
	}
	return f.data, f.uploadedAt, nil
}

type memPredictionStore struct {
	mu      sync.Mutex
	records []model.PredictionRecord
}

func (s *memPredictionStore) Insert(_ context.Context, record model.PredictionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *memPredictionStore) List(_ context.Context, username string, limit int) ([]model.PredictionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.PredictionRecord, 0, len(s.records))
	for _, r := range s.records {
		if username == "" || r.Username == username {
			out = append(out, r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
