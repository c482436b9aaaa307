package predict

import "math"

// Tensor is a dense row-major float32 tensor. Feature maps use (C, H, W)
// layout, convolution weights (Cout, Cin, KH, KW), linear weights (Out, In).
type Tensor struct {
	Shape []int
	Data  []float32
}

func (t Tensor) numel() int {
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// conv2d applies a 3x3 convolution with stride 1 and padding 1, so the
// spatial size is preserved.
func conv2d(in, weight, bias Tensor) Tensor {
	cin, h, w := in.Shape[0], in.Shape[1], in.Shape[2]
	cout := weight.Shape[0]

	out := Tensor{
		Shape: []int{cout, h, w},
		Data:  make([]float32, cout*h*w),
	}

	for oc := 0; oc < cout; oc++ {
		wBase := oc * cin * 9
		b := bias.Data[oc]
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				sum := b
				for ic := 0; ic < cin; ic++ {
					inBase := ic * h * w
					kBase := wBase + ic*9
					for ky := -1; ky <= 1; ky++ {
						sy := y + ky
						if sy < 0 || sy >= h {
							continue
						}
						rowBase := inBase + sy*w
						kRow := kBase + (ky+1)*3
						for kx := -1; kx <= 1; kx++ {
							sx := x + kx
							if sx < 0 || sx >= w {
								continue
							}
							sum += in.Data[rowBase+sx] * weight.Data[kRow+kx+1]
						}
					}
				}
				out.Data[oc*h*w+y*w+x] = sum
			}
		}
	}

	return out
}

func reluInPlace(t Tensor) {
	for i, v := range t.Data {
		if v < 0 {
			t.Data[i] = 0
		}
	}
}

// maxPool2 halves the spatial dimensions with a 2x2 kernel, stride 2.
func maxPool2(in Tensor) Tensor {
	c, h, w := in.Shape[0], in.Shape[1], in.Shape[2]
	oh, ow := h/2, w/2

	out := Tensor{
		Shape: []int{c, oh, ow},
		Data:  make([]float32, c*oh*ow),
	}

	for ch := 0; ch < c; ch++ {
		inBase := ch * h * w
		outBase := ch * oh * ow
		for y := 0; y < oh; y++ {
			for x := 0; x < ow; x++ {
				i := inBase + (2*y)*w + 2*x
				m := in.Data[i]
				if v := in.Data[i+1]; v > m {
					m = v
				}
				if v := in.Data[i+w]; v > m {
					m = v
				}
				if v := in.Data[i+w+1]; v > m {
					m = v
				}
				out.Data[outBase+y*ow+x] = m
			}
		}
	}

	return out
}

func linear(in []float32, weight, bias Tensor) []float32 {
	outDim, inDim := weight.Shape[0], weight.Shape[1]

	out := make([]float32, outDim)
	for o := 0; o < outDim; o++ {
		sum := bias.Data[o]
		base := o * inDim
		for i := 0; i < inDim; i++ {
			sum += weight.Data[base+i] * in[i]
		}
		out[o] = sum
	}

	return out
}

// softmax converts logits to probabilities, shifted by the max logit for
// numerical stability.
func softmax(logits []float32) []float64 {
	maxLogit := logits[0]
	for _, v := range logits[1:] {
		if v > maxLogit {
			maxLogit = v
		}
	}

	probs := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		p := math.Exp(float64(v - maxLogit))
		probs[i] = p
		sum += p
	}
	for i := range probs {
		probs[i] /= sum
	}

	return probs
}
