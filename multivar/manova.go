package multivar

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/fhrlab/ctgstat/pkg/errors"
)

// ManovaResult is a one-way MANOVA summary: Wilks' lambda with Rao's F
// approximation.
type ManovaResult struct {
	Wilks  float64
	F      float64
	DF1    float64
	DF2    float64
	P      float64
	Groups int
}

// MANOVA tests equality of the group mean vectors of X across the grouping
// labels, jointly over all columns.
func MANOVA(X *mat.Dense, labels []int) (ManovaResult, error) {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return ManovaResult{}, errors.Wrap(errors.ErrEmptyData, "MANOVA")
	}
	if len(labels) != n {
		return ManovaResult{}, errors.NewDimensionError("MANOVA", n, len(labels), 0)
	}

	groups := groupRows(labels)
	g := len(groups)
	if g < 2 {
		return ManovaResult{}, errors.NewValueError("MANOVA", "need at least 2 groups")
	}
	if n <= p+g {
		return ManovaResult{}, errors.NewValueError("MANOVA", "too few observations for the feature count")
	}

	resid := Residuals(X, labels)
	totalCentered := centerColumns(X)

	var w, tot mat.Dense
	w.Mul(resid.T(), resid)
	tot.Mul(totalCentered.T(), totalCentered)

	detW, signW := mat.LogDet(&w)
	detT, signT := mat.LogDet(&tot)
	if signW <= 0 || signT <= 0 {
		return ManovaResult{}, errors.NewSingularMatrixError("MANOVA", p)
	}
	lambda := math.Exp(detW - detT)

	// Rao's F approximation.
	pf, gf, nf := float64(p), float64(g), float64(n)
	t := 1.0
	if denom := pf*pf + (gf-1)*(gf-1) - 5; denom > 0 {
		t = math.Sqrt((pf*pf*(gf-1)*(gf-1) - 4) / denom)
	}
	df1 := pf * (gf - 1)
	m := nf - 1 - (pf+gf)/2
	df2 := m*t - df1/2 + 1
	if df2 <= 0 {
		return ManovaResult{}, errors.NewValueError("MANOVA", "degenerate degrees of freedom")
	}
	lt := math.Pow(lambda, 1/t)
	f := (1 - lt) / lt * df2 / df1

	fDist := distuv.F{D1: df1, D2: df2}
	return ManovaResult{
		Wilks:  lambda,
		F:      f,
		DF1:    df1,
		DF2:    df2,
		P:      1 - fDist.CDF(f),
		Groups: g,
	}, nil
}

// Residuals subtracts each observation's group mean, column by column. The
// result feeds both the covariance-homogeneity test and the Mahalanobis
// normality check.
func Residuals(X *mat.Dense, labels []int) *mat.Dense {
	n, p := X.Dims()
	groups := groupRows(labels)

	out := mat.NewDense(n, p, nil)
	for _, rows := range groups {
		for j := 0; j < p; j++ {
			var mean float64
			for _, i := range rows {
				mean += X.At(i, j)
			}
			mean /= float64(len(rows))
			for _, i := range rows {
				out.Set(i, j, X.At(i, j)-mean)
			}
		}
	}
	return out
}

func groupRows(labels []int) map[int][]int {
	groups := make(map[int][]int)
	for i, c := range labels {
		groups[c] = append(groups[c], i)
	}
	return groups
}
