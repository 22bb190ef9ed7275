package multivar

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/fhrlab/ctgstat/pkg/errors"
)

// KSResult is a Kolmogorov-Smirnov statistic with its asymptotic p-value.
type KSResult struct {
	Stat float64
	P    float64
}

// MahalanobisDistances returns the squared Mahalanobis distance of every row
// of residuals from zero under the pooled covariance estimate. nGroups is
// the number of group means the residuals were taken against; the pooled
// covariance divides by n-nGroups, the degrees of freedom left after
// estimating those means.
func MahalanobisDistances(residuals *mat.Dense, nGroups int) ([]float64, error) {
	n, p := residuals.Dims()
	if n == 0 || p == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "MahalanobisDistances")
	}
	if nGroups < 1 {
		return nil, errors.NewValueError("MahalanobisDistances", "need at least one group")
	}
	if n-nGroups < p {
		return nil, errors.NewValueError("MahalanobisDistances", "not enough residual degrees of freedom for the features")
	}

	var cov mat.Dense
	cov.Mul(residuals.T(), residuals)
	cov.Scale(1/float64(n-nGroups), &cov)

	var covInv mat.Dense
	if err := covInv.Inverse(&cov); err != nil {
		return nil, errors.NewSingularMatrixError("MahalanobisDistances", p)
	}

	d2 := make([]float64, n)
	row := mat.NewVecDense(p, nil)
	tmp := mat.NewVecDense(p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			row.SetVec(j, residuals.At(i, j))
		}
		tmp.MulVec(&covInv, row)
		d2[i] = mat.Dot(row, tmp)
	}
	return d2, nil
}

// MahalanobisNormality tests whether the squared Mahalanobis distances of
// the residual rows follow the chi-squared distribution with p degrees of
// freedom, as they would under multivariate normality, via a one-sample
// Kolmogorov-Smirnov test.
func MahalanobisNormality(residuals *mat.Dense, nGroups int) (KSResult, error) {
	d2, err := MahalanobisDistances(residuals, nGroups)
	if err != nil {
		return KSResult{}, err
	}
	_, p := residuals.Dims()

	chi := distuv.ChiSquared{K: float64(p)}
	return ksOneSample(d2, chi.CDF), nil
}

// ksOneSample computes the KS distance between the empirical distribution of
// xs and the theoretical CDF, with the asymptotic Kolmogorov p-value.
func ksOneSample(xs []float64, cdf func(float64) float64) KSResult {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	n := float64(len(sorted))

	var d float64
	for i, x := range sorted {
		f := cdf(x)
		upper := float64(i+1)/n - f
		lower := f - float64(i)/n
		if upper > d {
			d = upper
		}
		if lower > d {
			d = lower
		}
	}
	return KSResult{Stat: d, P: kolmogorovSurvival(math.Sqrt(n) * d)}
}

// kolmogorovSurvival evaluates the Kolmogorov distribution's survival
// function by its alternating series.
func kolmogorovSurvival(x float64) float64 {
	if x < 1e-8 {
		return 1
	}
	var sum float64
	for k := 1; k <= 100; k++ {
		term := math.Exp(-2 * float64(k) * float64(k) * x * x)
		if k%2 == 1 {
			sum += term
		} else {
			sum -= term
		}
		if term < 1e-12 {
			break
		}
	}
	p := 2 * sum
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
