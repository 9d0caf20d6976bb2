/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package classify

import "math"

// Quantize converts a normalised tensor for a uint8 input tensor. With a zero
// scale the normalisation is undone and raw channel values are produced.
func Quantize(input []float32, scale float64, zeroPoint int) []uint8 {
	out := make([]uint8, len(input))
	for i, v := range input {
		var q float64
		if scale == 0 {
			q = float64(v)*127.5 + 127.5
		} else {
			q = float64(v)/scale + float64(zeroPoint)
		}
		out[i] = clampUint8(math.Round(q))
	}
	return out
}

// Dequantize converts uint8 scores back to floats. With a zero scale the
// values are mapped to [0,1].
func Dequantize(q []uint8, scale float64, zeroPoint int) []float32 {
	out := make([]float32, len(q))
	for i, v := range q {
		if scale == 0 {
			out[i] = float32(v) / 255
			continue
		}
		out[i] = float32((float64(v) - float64(zeroPoint)) * scale)
	}
	return out
}

func clampUint8(v float64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}
