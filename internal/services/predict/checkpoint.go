package predict

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
)

// Checkpoint blobs are exported by the training side in a flat binary
// layout: a 4-byte magic, a uint32 little-endian header length, a JSON
// header listing layer names and shapes in order, then the raw float32
// little-endian tensor data in the same order.
const checkpointMagic = "FLCK"

type checkpointHeader struct {
	FormatVersion int             `json:"format_version"`
	Layers        []layerManifest `json:"layers"`
}

type layerManifest struct {
	Name  string `json:"name"`
	Shape []int  `json:"shape"`
}

type Checkpoint struct {
	tensors map[string]Tensor
}

func ParseCheckpoint(data []byte) (*Checkpoint, error) {
	if len(data) < 8 || string(data[:4]) != checkpointMagic {
		return nil, fmt.Errorf("not a model checkpoint")
	}

	headerLen := binary.LittleEndian.Uint32(data[4:8])
	if int(headerLen) > len(data)-8 {
		return nil, fmt.Errorf("checkpoint header truncated")
	}

	var header checkpointHeader
	if err := json.Unmarshal(data[8:8+headerLen], &header); err != nil {
		return nil, fmt.Errorf("decode checkpoint header: %w", err)
	}
	if header.FormatVersion != 1 {
		return nil, fmt.Errorf("unsupported checkpoint format version %d", header.FormatVersion)
	}

	body := data[8+headerLen:]
	offset := 0
	tensors := make(map[string]Tensor, len(header.Layers))
	for _, layer := range header.Layers {
		n := 1
		for _, d := range layer.Shape {
			if d <= 0 {
				return nil, fmt.Errorf("layer %s has invalid shape %v", layer.Name, layer.Shape)
			}
			n *= d
		}
		end := offset + n*4
		if end > len(body) {
			return nil, fmt.Errorf("layer %s data truncated", layer.Name)
		}

		values := make([]float32, n)
		for i := 0; i < n; i++ {
			bits := binary.LittleEndian.Uint32(body[offset+i*4:])
			values[i] = math.Float32frombits(bits)
		}

		tensors[layer.Name] = Tensor{Shape: layer.Shape, Data: values}
		offset = end
	}
	if offset != len(body) {
		return nil, fmt.Errorf("checkpoint has %d trailing bytes", len(body)-offset)
	}

	return &Checkpoint{tensors: tensors}, nil
}

// Tensor returns the named tensor, enforcing the shape the architecture
// expects.
func (c *Checkpoint) Tensor(name string, shape ...int) (Tensor, error) {
	t, ok := c.tensors[name]
	if !ok {
		return Tensor{}, fmt.Errorf("checkpoint is missing tensor %s", name)
	}
	if len(t.Shape) != len(shape) {
		return Tensor{}, fmt.Errorf("tensor %s has rank %d, want %d", name, len(t.Shape), len(shape))
	}
	for i, d := range shape {
		if t.Shape[i] != d {
			return Tensor{}, fmt.Errorf("tensor %s has shape %v, want %v", name, t.Shape, shape)
		}
	}
	return t, nil
}

// NamedTensor pairs a state-dict style layer name with its tensor.
type NamedTensor struct {
	Name   string
	Tensor Tensor
}

// EncodeCheckpoint serialises tensors into the checkpoint wire format. The
// server only ever reads checkpoints; this is used by tests and export
// tooling.
func EncodeCheckpoint(layers []NamedTensor) ([]byte, error) {
	header := checkpointHeader{FormatVersion: 1}
	for _, layer := range layers {
		if layer.Tensor.numel() != len(layer.Tensor.Data) {
			return nil, fmt.Errorf("layer %s shape %v does not match %d values", layer.Name, layer.Tensor.Shape, len(layer.Tensor.Data))
		}
		header.Layers = append(header.Layers, layerManifest{Name: layer.Name, Shape: layer.Tensor.Shape})
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("encode checkpoint header: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(checkpointMagic)
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(headerJSON))); err != nil {
		return nil, err
	}
	buf.Write(headerJSON)
	for _, layer := range layers {
		for _, v := range layer.Tensor.Data {
			if err := binary.Write(&buf, binary.LittleEndian, math.Float32bits(v)); err != nil {
				return nil, err
			}
		}
	}

	return buf.Bytes(), nil
}
