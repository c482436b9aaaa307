package predict

import "fmt"

// Network is the fixed convolutional classifier the federated clients
// train: three conv+relu+maxpool blocks (3->32->64->128 channels), then
// two linear layers. Dropout is train-time only and has no inference
// counterpart.
type Network struct {
	conv1W, conv1B Tensor
	conv2W, conv2B Tensor
	conv3W, conv3B Tensor
	fc1W, fc1B     Tensor
	fc2W, fc2B     Tensor

	inputSize  int
	numClasses int
}

// NewNetwork binds a parsed checkpoint to the architecture, validating
// every tensor shape against the expected input size and class count.
// Three pooling stages each halve the spatial size, so inputSize must be
// divisible by 8.
func NewNetwork(ck *Checkpoint, inputSize, numClasses int) (*Network, error) {
	if inputSize <= 0 || inputSize%8 != 0 {
		return nil, fmt.Errorf("input size %d is not divisible by 8", inputSize)
	}
	if numClasses <= 0 {
		return nil, fmt.Errorf("invalid class count %d", numClasses)
	}

	pooled := inputSize / 8
	flat := 128 * pooled * pooled

	n := &Network{inputSize: inputSize, numClasses: numClasses}

	var err error
	if n.conv1W, err = ck.Tensor("features.0.weight", 32, 3, 3, 3); err != nil {
		return nil, err
	}
	if n.conv1B, err = ck.Tensor("features.0.bias", 32); err != nil {
		return nil, err
	}
	if n.conv2W, err = ck.Tensor("features.3.weight", 64, 32, 3, 3); err != nil {
		return nil, err
	}
	if n.conv2B, err = ck.Tensor("features.3.bias", 64); err != nil {
		return nil, err
	}
	if n.conv3W, err = ck.Tensor("features.6.weight", 128, 64, 3, 3); err != nil {
		return nil, err
	}
	if n.conv3B, err = ck.Tensor("features.6.bias", 128); err != nil {
		return nil, err
	}
	if n.fc1W, err = ck.Tensor("classifier.0.weight", 128, flat); err != nil {
		return nil, err
	}
	if n.fc1B, err = ck.Tensor("classifier.0.bias", 128); err != nil {
		return nil, err
	}
	if n.fc2W, err = ck.Tensor("classifier.3.weight", numClasses, 128); err != nil {
		return nil, err
	}
	if n.fc2B, err = ck.Tensor("classifier.3.bias", numClasses); err != nil {
		return nil, err
	}

	return n, nil
}

// Forward runs one image through the network and returns class
// probabilities.
func (n *Network) Forward(input Tensor) ([]float64, error) {
	if len(input.Shape) != 3 || input.Shape[0] != 3 || input.Shape[1] != n.inputSize || input.Shape[2] != n.inputSize {
		return nil, fmt.Errorf("input tensor has shape %v, want [3 %d %d]", input.Shape, n.inputSize, n.inputSize)
	}

	x := conv2d(input, n.conv1W, n.conv1B)
	reluInPlace(x)
	x = maxPool2(x)

	x = conv2d(x, n.conv2W, n.conv2B)
	reluInPlace(x)
	x = maxPool2(x)

	x = conv2d(x, n.conv3W, n.conv3B)
	reluInPlace(x)
	x = maxPool2(x)

	hidden := linear(x.Data, n.fc1W, n.fc1B)
	for i, v := range hidden {
		if v < 0 {
			hidden[i] = 0
		}
	}
	logits := linear(hidden, n.fc2W, n.fc2B)

	return softmax(logits), nil
}
