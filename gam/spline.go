// Package gam fits a logistic additive model with natural cubic spline
// smooths of each predictor. Its single job in the pipeline is the
// nonlinearity check: whether smoothing the principal components improves on
// linear terms enough to matter.
package gam

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/fhrlab/ctgstat/pkg/errors"
)

// SplineBasis is a natural cubic spline basis with knots at quantiles of
// the training values. Eval produces df columns per input value; the spline
// is linear beyond the boundary knots.
type SplineBasis struct {
	Knots []float64 // ascending, boundary knots first and last
}

// NewSplineBasis places df+1 knots at evenly spaced quantiles of xs.
func NewSplineBasis(xs []float64, df int) (*SplineBasis, error) {
	if len(xs) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "NewSplineBasis")
	}
	if df < 2 {
		return nil, errors.NewValueError("NewSplineBasis", "need at least 2 degrees of freedom")
	}

	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	nKnots := df + 1
	knots := make([]float64, 0, nKnots)
	for k := 0; k < nKnots; k++ {
		q := float64(k) / float64(nKnots-1)
		idx := int(q * float64(len(sorted)-1))
		v := sorted[idx]
		if len(knots) == 0 || v > knots[len(knots)-1] {
			knots = append(knots, v)
		}
	}
	if len(knots) < 3 {
		return nil, errors.NewValueError("NewSplineBasis",
			"too few distinct values to place spline knots")
	}
	return &SplineBasis{Knots: knots}, nil
}

// DF returns the number of basis columns.
func (b *SplineBasis) DF() int {
	return len(b.Knots) - 1
}

// Eval computes the natural spline basis functions at x: the identity term
// followed by the natural truncated-power terms.
func (b *SplineBasis) Eval(x float64) []float64 {
	k := len(b.Knots)
	out := make([]float64, b.DF())
	out[0] = x
	last := b.dk(k-2, x)
	for j := 0; j < k-2; j++ {
		out[j+1] = b.dk(j, x) - last
	}
	return out
}

// dk is the scaled difference of truncated cubics used by the natural
// basis.
func (b *SplineBasis) dk(j int, x float64) float64 {
	kn := b.Knots
	last := kn[len(kn)-1]
	return (cube(x-kn[j]) - cube(x-last)) / (last - kn[j])
}

func cube(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return v * v * v
}

// Matrix evaluates the basis over a slice of values, one row per value.
func (b *SplineBasis) Matrix(xs []float64) *mat.Dense {
	out := mat.NewDense(len(xs), b.DF(), nil)
	for i, x := range xs {
		out.SetRow(i, b.Eval(x))
	}
	return out
}
