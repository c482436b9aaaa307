package predict

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// ImageNet normalisation constants, matching the transforms the model was
// trained with.
var (
	normMean = [3]float32{0.485, 0.456, 0.406}
	normStd  = [3]float32{0.229, 0.224, 0.225}
)

type ImageInfo struct {
	Width  int
	Height int
	Format string
}

// prepareImage decodes a JPEG or PNG upload, resizes it to size x size with
// bilinear interpolation and returns a normalised (3, size, size) tensor.
func prepareImage(data []byte, size int) (Tensor, ImageInfo, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Tensor{}, ImageInfo{}, fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	bounds := src.Bounds()
	info := ImageInfo{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: strings.ToUpper(format),
	}

	scaled := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), src, bounds, xdraw.Src, nil)

	tensor := Tensor{
		Shape: []int{3, size, size},
		Data:  make([]float32, 3*size*size),
	}
	plane := size * size
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			i := scaled.PixOffset(x, y)
			r := float32(scaled.Pix[i]) / 255
			g := float32(scaled.Pix[i+1]) / 255
			b := float32(scaled.Pix[i+2]) / 255

			idx := y*size + x
			tensor.Data[idx] = (r - normMean[0]) / normStd[0]
			tensor.Data[plane+idx] = (g - normMean[1]) / normStd[1]
			tensor.Data[2*plane+idx] = (b - normMean[2]) / normStd[2]
		}
	}

	return tensor, info, nil
}
