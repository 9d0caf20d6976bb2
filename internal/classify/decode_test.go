package classify

import (
	"testing"

	"go.viam.com/test"
)

func TestTop1(t *testing.T) {
	r, err := Top1([]float32{0.1, 0.9, 0.05})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r, test.ShouldResemble, Result{Index: 1, Score: 0.9})

	t.Run("first maximum wins", func(t *testing.T) {
		r, err := Top1([]float32{5.0, 5.0, 3.0})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, r.Index, test.ShouldEqual, 0)
		test.That(t, r.Score, test.ShouldEqual, float32(5.0))

		r, err = Top1([]float32{-1, 7, 2, 7})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, r.Index, test.ShouldEqual, 1)
	})

	t.Run("single element", func(t *testing.T) {
		r, err := Top1([]float32{-3})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, r, test.ShouldResemble, Result{Index: 0, Score: -3})
	})

	t.Run("negative scores", func(t *testing.T) {
		r, err := Top1([]float32{-4, -2, -8})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, r.Index, test.ShouldEqual, 1)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Top1(nil)
		test.That(t, err, test.ShouldBeError, ErrEmptyScores)
		_, err = Top1([]float32{})
		test.That(t, err, test.ShouldBeError, ErrEmptyScores)
	})
}

func TestTopK(t *testing.T) {
	scores := []float32{0.2, 0.7, 0.1, 0.7, 0.05}

	top, err := TopK(scores, 3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, top, test.ShouldResemble, []Result{
		{Index: 1, Score: 0.7},
		{Index: 3, Score: 0.7},
		{Index: 0, Score: 0.2},
	})

	all, err := TopK(scores, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, all, test.ShouldHaveLength, len(scores))
	test.That(t, all[len(all)-1].Index, test.ShouldEqual, 4)

	clamped, err := TopK(scores, 50)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, clamped, test.ShouldHaveLength, len(scores))

	best, err := Top1(scores)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, top[0], test.ShouldResemble, best)

	// input is not reordered
	test.That(t, scores, test.ShouldResemble, []float32{0.2, 0.7, 0.1, 0.7, 0.05})

	_, err = TopK(nil, 1)
	test.That(t, err, test.ShouldBeError, ErrEmptyScores)
}
