/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package classify

import (
	"sort"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyScores is returned when a model produced no scores to decode.
	ErrEmptyScores = errors.New("empty score vector")
	// ErrNoImage is returned when there is no image to classify.
	ErrNoImage = errors.New("no image")
)

// Result is a class index and its score.
type Result struct {
	Index int     `json:"index"`
	Score float32 `json:"score"`
}

// Top1 returns the highest score and its index. The first maximum wins ties.
func Top1(scores []float32) (Result, error) {
	if len(scores) == 0 {
		return Result{}, ErrEmptyScores
	}
	r, m := 0, scores[0]
	for i, v := range scores {
		if v > m {
			m = v
			r = i
		}
	}
	return Result{Index: r, Score: m}, nil
}

// TopK returns the k best scores, highest first, lower index first on ties.
// k is clamped to len(scores); k <= 0 means all of them.
func TopK(scores []float32, k int) ([]Result, error) {
	if len(scores) == 0 {
		return nil, ErrEmptyScores
	}
	if k <= 0 || k > len(scores) {
		k = len(scores)
	}
	results := make([]Result, len(scores))
	for i, v := range scores {
		results[i] = Result{Index: i, Score: v}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results[:k], nil
}
