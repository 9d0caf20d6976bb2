package classify

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestDecode(t *testing.T) {
	labels := NewLabels([]string{"0: cat", "1: dog", "2: bird"})

	p, err := Decode([]float32{0.1, 0.9, 0.05}, labels, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Index, test.ShouldEqual, 1)
	test.That(t, p.Score, test.ShouldEqual, float32(0.9))
	test.That(t, p.Label, test.ShouldEqual, "1: dog")
	test.That(t, p.Name, test.ShouldEqual, "dog")
	test.That(t, p.Top, test.ShouldBeEmpty)
	test.That(t, p.String(), test.ShouldEqual, "Image: dog, Prediction: 0.9")

	p, err = Decode([]float32{0.1, 0.9, 0.05, 0.3}, labels, 3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Top, test.ShouldResemble, []Candidate{
		{Result: Result{Index: 1, Score: 0.9}, Name: "dog"},
		{Result: Result{Index: 3, Score: 0.3}, Name: Unknown},
		{Result: Result{Index: 0, Score: 0.1}, Name: "cat"},
	})

	_, err = Decode(nil, labels, 3)
	test.That(t, err, test.ShouldBeError, ErrEmptyScores)
}

func TestFormatConfidence(t *testing.T) {
	test.That(t, FormatConfidence(0.9), test.ShouldEqual, "0.9")
	test.That(t, FormatConfidence(1), test.ShouldEqual, "1.0")
	test.That(t, FormatConfidence(0), test.ShouldEqual, "0.0")
	test.That(t, FormatConfidence(-2.5), test.ShouldEqual, "-2.5")
	test.That(t, FormatConfidence(0.25), test.ShouldEqual, "0.25")
	test.That(t, FormatConfidence(float32(math.NaN())), test.ShouldEqual, "NaN")
	test.That(t, FormatConfidence(float32(math.Inf(1))), test.ShouldEqual, "Infinity")
	test.That(t, FormatConfidence(float32(math.Inf(-1))), test.ShouldEqual, "-Infinity")

	t.Run("scientific notation", func(t *testing.T) {
		test.That(t, FormatConfidence(0.001), test.ShouldEqual, "0.001")
		test.That(t, FormatConfidence(0.0001), test.ShouldEqual, "1.0E-4")
		test.That(t, FormatConfidence(1.5e-5), test.ShouldEqual, "1.5E-5")
		test.That(t, FormatConfidence(-2e-4), test.ShouldEqual, "-2.0E-4")
		test.That(t, FormatConfidence(9999999), test.ShouldEqual, "9999999.0")
		test.That(t, FormatConfidence(1e7), test.ShouldEqual, "1.0E7")
		test.That(t, FormatConfidence(12345678), test.ShouldEqual, "1.2345678E7")
	})

	p := &Prediction{Name: "dog", Result: Result{Index: 1, Score: 0.0001}}
	test.That(t, p.String(), test.ShouldEqual, "Image: dog, Prediction: 1.0E-4")
}
