// Package multivar holds the multivariate diagnostics: Mardia's normality
// test on the raw predictors, the one-way MANOVA across outcome groups, a
// permutation test for covariance homogeneity, and the Mahalanobis-distance
// goodness-of-fit check on MANOVA residuals. Together these gate the choice
// of PLS-DA over covariance-sensitive discriminant methods.
package multivar

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/fhrlab/ctgstat/pkg/errors"
)

// MardiaResult holds Mardia's multivariate skewness and kurtosis statistics
// with their p-values. Small p-values reject multivariate normality.
type MardiaResult struct {
	Skewness     float64
	SkewnessStat float64 // chi-squared statistic
	SkewnessDF   float64
	SkewnessP    float64
	Kurtosis     float64
	KurtosisStat float64 // standard normal statistic
	KurtosisP    float64
}

// MardiaTest computes Mardia's multivariate skewness and kurtosis for the
// rows of X.
func MardiaTest(X *mat.Dense) (MardiaResult, error) {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return MardiaResult{}, errors.Wrap(errors.ErrEmptyData, "MardiaTest")
	}
	if n <= p {
		return MardiaResult{}, errors.NewValueError("MardiaTest", "need more observations than features")
	}

	centered := centerColumns(X)

	// Biased covariance, as in Mardia's original statistics.
	var cov mat.Dense
	cov.Mul(centered.T(), centered)
	cov.Scale(1/float64(n), &cov)

	var covInv mat.Dense
	if err := covInv.Inverse(&cov); err != nil {
		return MardiaResult{}, errors.NewSingularMatrixError("MardiaTest", p)
	}

	// G = centered * covInv * centered' holds every cross product
	// x_i' S^-1 x_j.
	var tmp, g mat.Dense
	tmp.Mul(centered, &covInv)
	g.Mul(&tmp, centered.T())

	var b1 float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := g.At(i, j)
			b1 += v * v * v
		}
	}
	b1 /= float64(n) * float64(n)

	var b2 float64
	for i := 0; i < n; i++ {
		v := g.At(i, i)
		b2 += v * v
	}
	b2 /= float64(n)

	pf := float64(p)
	skewStat := float64(n) * b1 / 6
	skewDF := pf * (pf + 1) * (pf + 2) / 6
	kurtStat := (b2 - pf*(pf+2)) / math.Sqrt(8*pf*(pf+2)/float64(n))

	chi := distuv.ChiSquared{K: skewDF}
	std := distuv.Normal{Mu: 0, Sigma: 1}

	return MardiaResult{
		Skewness:     b1,
		SkewnessStat: skewStat,
		SkewnessDF:   skewDF,
		SkewnessP:    1 - chi.CDF(skewStat),
		Kurtosis:     b2,
		KurtosisStat: kurtStat,
		KurtosisP:    2 * (1 - std.CDF(math.Abs(kurtStat))),
	}, nil
}

func centerColumns(X *mat.Dense) *mat.Dense {
	n, p := X.Dims()
	out := mat.NewDense(n, p, nil)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		mat.Col(col, j, X)
		var mean float64
		for _, v := range col {
			mean += v
		}
		mean /= float64(n)
		for i := 0; i < n; i++ {
			out.Set(i, j, col[i]-mean)
		}
	}
	return out
}
