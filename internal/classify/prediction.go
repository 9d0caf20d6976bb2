/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package classify

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Candidate is a ranked class with its display name.
type Candidate struct {
	Result
	Name string `json:"name"`
}

// Prediction is the decoded top-1 class of a score vector.
type Prediction struct {
	Result
	Label string      `json:"label"`
	Name  string      `json:"name"`
	Top   []Candidate `json:"top,omitempty"`
}

// Decode picks the best class in scores and names it with labels. When
// topK is greater than one the k best candidates are attached as well.
func Decode(scores []float32, labels *Labels, topK int) (*Prediction, error) {
	best, err := Top1(scores)
	if err != nil {
		return nil, err
	}
	p := &Prediction{
		Result: best,
		Label:  labels.Lookup(best.Index),
		Name:   labels.Name(best.Index),
	}
	if topK > 1 {
		ranked, err := TopK(scores, topK)
		if err != nil {
			return nil, err
		}
		p.Top = make([]Candidate, 0, len(ranked))
		for _, r := range ranked {
			p.Top = append(p.Top, Candidate{Result: r, Name: labels.Name(r.Index)})
		}
	}
	return p, nil
}

// String renders the prediction as shown to the user.
func (p *Prediction) String() string {
	return fmt.Sprintf("Image: %s, Prediction: %s", p.Name, FormatConfidence(p.Score))
}

// FormatConfidence prints the shortest representation of v that reads back
// as the same float32, always with a fractional part. Magnitudes below 1e-3
// or from 1e7 up use scientific notation ("1.0E-4", "1.2345678E7");
// non-finite values print as "NaN", "Infinity" and "-Infinity".
func FormatConfidence(v float32) string {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	if a := math.Abs(f); a != 0 && (a < 1e-3 || a >= 1e7) {
		mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'E', -1, 32), "E")
		if !strings.Contains(mantissa, ".") {
			mantissa += ".0"
		}
		e, _ := strconv.Atoi(exp)
		return mantissa + "E" + strconv.Itoa(e)
	}

	s := strconv.FormatFloat(f, 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
