/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package classify turns images into model input tensors and model scores
// back into labelled predictions.
package classify

import (
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Filter names accepted by ParseFilter.
const (
	FilterLinear     = "linear"
	FilterCatmullRom = "catmullrom"
	FilterLanczos    = "lanczos"
)

// ParseFilter maps a filter name to a resampling filter. Only filters of
// bilinear quality or better are accepted.
func ParseFilter(name string) (imaging.ResampleFilter, error) {
	switch strings.ToLower(name) {
	case "", FilterLinear, "bilinear":
		return imaging.Linear, nil
	case FilterCatmullRom:
		return imaging.CatmullRom, nil
	case FilterLanczos:
		return imaging.Lanczos, nil
	}
	return imaging.ResampleFilter{}, errors.Errorf("unknown resample filter %q", name)
}

// NormalizeChannel maps an 8-bit channel value from [0,255] to [-1,1].
func NormalizeChannel(c uint8) float32 {
	return (float32(c) - 127.5) / 127.5
}

// Resample stretches img to exactly width x height. The aspect ratio is not
// preserved.
func Resample(img image.Image, width, height int, filter imaging.ResampleFilter) *image.NRGBA {
	return imaging.Resize(img, width, height, filter)
}

// Normalize resamples img to width x height and returns the input tensor:
// rows top to bottom, columns left to right, R G B interleaved.
// img must not be nil and width, height must be positive.
func Normalize(img image.Image, width, height int, filter imaging.ResampleFilter) []float32 {
	resized := Resample(img, width, height, filter)
	tensor := make([]float32, 0, width*height*3)
	for y := 0; y < height; y++ {
		offset := y * resized.Stride
		for x := 0; x < width; x++ {
			i := offset + x*4
			tensor = append(tensor,
				NormalizeChannel(resized.Pix[i]),
				NormalizeChannel(resized.Pix[i+1]),
				NormalizeChannel(resized.Pix[i+2]))
		}
	}
	return tensor
}
