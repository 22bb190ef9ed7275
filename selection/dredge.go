// Package selection performs exhaustive best-subset search over a logistic
// model with a bounded set of two-way interactions, ranked by AICc. The
// final pick is a caller-supplied rank index rather than a hardwired "best":
// the analysis deliberately takes the second-ranked model when the top one
// carries a non-significant interaction.
package selection

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/fhrlab/ctgstat/glm"
	"github.com/fhrlab/ctgstat/pkg/errors"
)

// Candidate is one fitted sub-model.
type Candidate struct {
	Mains        []int    // indices into the predictor columns
	Interactions [][2]int // pairs of predictor columns, both present in Mains
	Model        *glm.Logit
	AICc         float64
	Delta        float64 // AICc distance from the top-ranked model
}

// Terms renders the candidate's formula terms using the given column names.
func (c *Candidate) Terms(names []string) []string {
	out := make([]string, 0, len(c.Mains)+len(c.Interactions))
	for _, j := range c.Mains {
		out = append(out, colName(names, j))
	}
	for _, ab := range c.Interactions {
		out = append(out, colName(names, ab[0])+":"+colName(names, ab[1]))
	}
	return out
}

func colName(names []string, j int) string {
	if j < len(names) {
		return names[j]
	}
	return fmt.Sprintf("x%d", j+1)
}

// Ranking is the full candidate list in ascending AICc order.
type Ranking struct {
	Models []Candidate
}

// Pick returns the candidate at rankIndex (0 is the AICc-best model). This
// is the explicit override hook: selection policy lives with the caller.
func (r *Ranking) Pick(rankIndex int) (*Candidate, error) {
	if rankIndex < 0 || rankIndex >= len(r.Models) {
		return nil, errors.NewValueError("Ranking.Pick",
			fmt.Sprintf("rank index %d out of range [0, %d)", rankIndex, len(r.Models)))
	}
	return &r.Models[rankIndex], nil
}

// Dredge enumerates every sub-model of the full model defined by all columns
// of X plus the permitted two-way interactions, subject to the hierarchy
// constraint that an interaction requires both of its main effects. Each
// sub-model is fit by maximum likelihood and the list is returned ranked by
// ascending AICc. The enumeration is deterministic: ties are broken by
// parameter count, then by term encoding.
func Dredge(X *mat.Dense, y []float64, interactions [][2]int) (*Ranking, error) {
	if X == nil {
		return nil, errors.Wrap(errors.ErrEmptyData, "Dredge")
	}
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "Dredge")
	}
	if p > 16 {
		return nil, errors.NewValueError("Dredge", "too many predictors for exhaustive enumeration")
	}
	for _, ab := range interactions {
		if ab[0] < 0 || ab[0] >= p || ab[1] < 0 || ab[1] >= p || ab[0] == ab[1] {
			return nil, errors.NewValueError("Dredge",
				fmt.Sprintf("invalid interaction pair (%d, %d)", ab[0], ab[1]))
		}
	}

	var models []Candidate
	for mainMask := 0; mainMask < 1<<p; mainMask++ {
		mains := maskToIndices(mainMask, p)

		// Interactions permitted under this set of main effects.
		var allowed [][2]int
		for _, ab := range interactions {
			if mainMask&(1<<ab[0]) != 0 && mainMask&(1<<ab[1]) != 0 {
				allowed = append(allowed, ab)
			}
		}

		for interMask := 0; interMask < 1<<len(allowed); interMask++ {
			var inters [][2]int
			for k, ab := range allowed {
				if interMask&(1<<k) != 0 {
					inters = append(inters, ab)
				}
			}

			var design mat.Matrix
			if d := BuildDesign(X, mains, inters); d != nil {
				design = d
			}
			m := glm.NewLogit()
			if err := m.Fit(design, y); err != nil {
				return nil, errors.Wrapf(err, "Dredge: subset mains=%v interactions=%v", mains, inters)
			}
			models = append(models, Candidate{
				Mains:        mains,
				Interactions: inters,
				Model:        m,
				AICc:         m.AICc(),
			})
		}
	}

	sort.SliceStable(models, func(i, j int) bool {
		if models[i].AICc != models[j].AICc {
			return models[i].AICc < models[j].AICc
		}
		ki := len(models[i].Mains) + len(models[i].Interactions)
		kj := len(models[j].Mains) + len(models[j].Interactions)
		if ki != kj {
			return ki < kj
		}
		return encode(models[i]) < encode(models[j])
	})

	best := models[0].AICc
	for i := range models {
		models[i].Delta = models[i].AICc - best
	}
	return &Ranking{Models: models}, nil
}

// BuildDesign assembles the predictor matrix for a candidate: the selected
// main-effect columns of X followed by the products for each interaction
// pair. A candidate with no terms yields nil, the intercept-only design.
func BuildDesign(X *mat.Dense, mains []int, interactions [][2]int) *mat.Dense {
	cols := len(mains) + len(interactions)
	if cols == 0 {
		return nil
	}
	n, _ := X.Dims()
	out := mat.NewDense(n, cols, nil)
	for i := 0; i < n; i++ {
		for k, j := range mains {
			out.Set(i, k, X.At(i, j))
		}
		for k, ab := range interactions {
			out.Set(i, len(mains)+k, X.At(i, ab[0])*X.At(i, ab[1]))
		}
	}
	return out
}

func maskToIndices(mask, p int) []int {
	var out []int
	for j := 0; j < p; j++ {
		if mask&(1<<j) != 0 {
			out = append(out, j)
		}
	}
	return out
}

func encode(c Candidate) string {
	s := ""
	for _, j := range c.Mains {
		s += fmt.Sprintf("m%d.", j)
	}
	for _, ab := range c.Interactions {
		s += fmt.Sprintf("i%d:%d.", ab[0], ab[1])
	}
	return s
}
