package classify

import (
	"testing"

	"go.viam.com/test"
)

func TestQuantizeRaw(t *testing.T) {
	input := []float32{NormalizeChannel(0), NormalizeChannel(128), NormalizeChannel(255), NormalizeChannel(37)}
	test.That(t, Quantize(input, 0, 0), test.ShouldResemble, []uint8{0, 128, 255, 37})
}

func TestQuantizeParams(t *testing.T) {
	// usual mobilenet uint8 input: scale 1/128, zero point 128
	q := Quantize([]float32{-1, 0, 0.5, 1, 3}, 1.0/128, 128)
	test.That(t, q, test.ShouldResemble, []uint8{0, 128, 192, 255, 255})
}

func TestDequantize(t *testing.T) {
	test.That(t, Dequantize([]uint8{0, 255}, 0, 0), test.ShouldResemble, []float32{0, 1})

	out := Dequantize([]uint8{0, 10, 255}, 0.5, 10)
	test.That(t, out, test.ShouldResemble, []float32{-5, 0, 122.5})
}
