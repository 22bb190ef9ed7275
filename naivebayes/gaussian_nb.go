// Package naivebayes implements a Gaussian naive Bayes classifier over the
// raw, unstandardized features: per-class Gaussian parameters per feature,
// empirical class priors, prediction by maximum posterior.
package naivebayes

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/fhrlab/ctgstat/core/model"
	"github.com/fhrlab/ctgstat/pkg/errors"
)

// GaussianNB assumes feature independence given the class.
type GaussianNB struct {
	model.BaseEstimator

	// VarSmoothing is the fraction of the largest feature variance added
	// to every class variance, guarding near-constant features.
	VarSmoothing float64

	nClasses  int
	nFeatures int
	logPriors []float64
	means     [][]float64 // class x feature
	variances [][]float64 // class x feature
}

var _ model.Classifier = (*GaussianNB)(nil)

// NewGaussianNB creates an unfitted classifier with the default smoothing.
func NewGaussianNB() *GaussianNB {
	return &GaussianNB{VarSmoothing: 1e-9}
}

// Fit estimates priors and per-class Gaussian parameters from the training
// partition. Labels are zero-based and every class must appear at least
// twice, so a variance is estimable.
func (m *GaussianNB) Fit(X *mat.Dense, labels []int) error {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.Wrap(errors.ErrEmptyData, "GaussianNB.Fit")
	}
	if len(labels) != n {
		return errors.NewDimensionError("GaussianNB.Fit", n, len(labels), 0)
	}

	nClasses := 0
	for _, c := range labels {
		if c < 0 {
			return errors.NewValueError("GaussianNB.Fit", "labels must be zero-based")
		}
		if c+1 > nClasses {
			nClasses = c + 1
		}
	}
	if nClasses < 2 {
		return errors.NewValueError("GaussianNB.Fit", "need at least 2 classes")
	}

	byClass := make([][]int, nClasses)
	for i, c := range labels {
		byClass[c] = append(byClass[c], i)
	}
	for c, rows := range byClass {
		if len(rows) < 2 {
			return errors.NewValueError("GaussianNB.Fit",
				"class "+strconv.Itoa(c)+" has fewer than 2 training observations")
		}
	}

	// Largest overall feature variance sets the smoothing floor.
	var maxVar float64
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		mat.Col(col, j, X)
		if v := stat.Variance(col, nil); v > maxVar {
			maxVar = v
		}
	}
	floor := m.VarSmoothing * maxVar
	if floor == 0 {
		floor = m.VarSmoothing
	}

	m.logPriors = make([]float64, nClasses)
	m.means = make([][]float64, nClasses)
	m.variances = make([][]float64, nClasses)

	for c, rows := range byClass {
		m.logPriors[c] = math.Log(float64(len(rows)) / float64(n))
		m.means[c] = make([]float64, p)
		m.variances[c] = make([]float64, p)

		vals := make([]float64, len(rows))
		for j := 0; j < p; j++ {
			for k, i := range rows {
				vals[k] = X.At(i, j)
			}
			mean, variance := stat.MeanVariance(vals, nil)
			m.means[c][j] = mean
			m.variances[c][j] = variance + floor
		}
	}

	m.nClasses = nClasses
	m.nFeatures = p
	m.SetFitted()
	return nil
}

// PredictLogPosterior returns unnormalized log posteriors, one row per
// observation and one column per class.
func (m *GaussianNB) PredictLogPosterior(X mat.Matrix) (*mat.Dense, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("GaussianNB", "PredictLogPosterior")
	}
	n, p := X.Dims()
	if p != m.nFeatures {
		return nil, errors.NewDimensionError("GaussianNB.PredictLogPosterior", m.nFeatures, p, 1)
	}

	out := mat.NewDense(n, m.nClasses, nil)
	for i := 0; i < n; i++ {
		for c := 0; c < m.nClasses; c++ {
			lp := m.logPriors[c]
			for j := 0; j < p; j++ {
				v := m.variances[c][j]
				d := X.At(i, j) - m.means[c][j]
				lp += -0.5*math.Log(2*math.Pi*v) - d*d/(2*v)
			}
			out.Set(i, c, lp)
		}
	}
	return out, nil
}

// Predict assigns each observation to the class with the highest posterior.
func (m *GaussianNB) Predict(X mat.Matrix) ([]int, error) {
	post, err := m.PredictLogPosterior(X)
	if err != nil {
		return nil, err
	}

	n, _ := post.Dims()
	out := make([]int, n)
	for i := 0; i < n; i++ {
		best, bestLP := 0, post.At(i, 0)
		for c := 1; c < m.nClasses; c++ {
			if lp := post.At(i, c); lp > bestLP {
				best, bestLP = c, lp
			}
		}
		out[i] = best
	}
	return out, nil
}
