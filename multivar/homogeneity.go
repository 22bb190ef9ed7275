package multivar

import (
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/fhrlab/ctgstat/core/parallel"
	"github.com/fhrlab/ctgstat/pkg/errors"
)

// PermTestResult is an observed statistic with its permutation p-value.
type PermTestResult struct {
	Stat  float64
	P     float64
	NPerm int
}

// CovarianceHomogeneity tests whether the covariance structure of X is the
// same across groups. The statistic is the between-group spread of mean
// absolute residual size (a Levene-type measure robust to non-normality,
// unlike Box's M); its null distribution comes from permuting the group
// labels nPerm times.
func CovarianceHomogeneity(X *mat.Dense, labels []int, nPerm int, seed int64) (PermTestResult, error) {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return PermTestResult{}, errors.Wrap(errors.ErrEmptyData, "CovarianceHomogeneity")
	}
	if len(labels) != n {
		return PermTestResult{}, errors.NewDimensionError("CovarianceHomogeneity", n, len(labels), 0)
	}
	if nPerm < 100 {
		return PermTestResult{}, errors.NewValueError("CovarianceHomogeneity", "need at least 100 permutations")
	}
	if len(groupRows(labels)) < 2 {
		return PermTestResult{}, errors.NewValueError("CovarianceHomogeneity", "need at least 2 groups")
	}

	// Group means shift with each relabeling, so the dispersion statistic
	// is recomputed in full for every permutation.
	observed := dispersionSpread(X, labels)

	// Pre-generate permutations so the parallel evaluation stays
	// deterministic for a fixed seed.
	rng := rand.New(rand.NewSource(seed))
	perms := make([][]int, nPerm)
	for b := 0; b < nPerm; b++ {
		perm := make([]int, n)
		copy(perm, labels)
		rng.Shuffle(n, func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
		perms[b] = perm
	}

	var mu sync.Mutex
	exceed := 0
	parallel.ParallelizeWithThreshold(nPerm, 100, func(start, end int) {
		local := 0
		for b := start; b < end; b++ {
			if dispersionSpread(X, perms[b]) >= observed {
				local++
			}
		}
		mu.Lock()
		exceed += local
		mu.Unlock()
	})

	return PermTestResult{
		Stat:  observed,
		P:     (float64(exceed) + 1) / (float64(nPerm) + 1),
		NPerm: nPerm,
	}, nil
}

// dispersionSpread computes the between-group variance of the group means of
// per-observation absolute residual size.
func dispersionSpread(X *mat.Dense, labels []int) float64 {
	n, p := X.Dims()
	resid := Residuals(X, labels)

	size := make([]float64, n)
	var grand float64
	for i := 0; i < n; i++ {
		var s float64
		for j := 0; j < p; j++ {
			v := resid.At(i, j)
			if v < 0 {
				v = -v
			}
			s += v
		}
		size[i] = s / float64(p)
		grand += size[i]
	}
	grand /= float64(n)

	var between float64
	for _, rows := range groupRows(labels) {
		var mean float64
		for _, i := range rows {
			mean += size[i]
		}
		mean /= float64(len(rows))
		between += float64(len(rows)) * (mean - grand) * (mean - grand)
	}
	return between / float64(n)
}
