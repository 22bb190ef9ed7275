// Package preprocessing provides the column standardization applied before
// the principal-component decomposition.
package preprocessing

import (
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/fhrlab/ctgstat/core/model"
	"github.com/fhrlab/ctgstat/pkg/errors"
)

// StandardScaler centers each column to mean 0 and scales it to unit
// standard deviation. A zero-variance column is rejected: the downstream
// correlation-matrix PCA requires every feature to carry variance.
type StandardScaler struct {
	model.BaseEstimator

	Mean  []float64
	Scale []float64
}

var _ model.Transformer = (*StandardScaler)(nil)

// NewStandardScaler creates an unfitted scaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit estimates the per-column mean and standard deviation of X.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.Wrap(errors.ErrEmptyData, "StandardScaler.Fit")
	}

	s.Mean = make([]float64, p)
	s.Scale = make([]float64, p)

	col := make([]float64, n)
	for j := 0; j < p; j++ {
		mat.Col(col, j, X)
		mean, sd := stat.MeanStdDev(col, nil)
		if sd == 0 {
			return errors.NewValueError("StandardScaler.Fit",
				"column "+strconv.Itoa(j)+" has zero variance and cannot be standardized")
		}
		s.Mean[j] = mean
		s.Scale[j] = sd
	}

	s.SetFitted()
	return nil
}

// Transform returns a new matrix with each column of X standardized by the
// fitted mean and scale.
func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}

	n, p := X.Dims()
	if p != len(s.Mean) {
		return nil, errors.NewDimensionError("StandardScaler.Transform", len(s.Mean), p, 1)
	}

	out := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			out.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
		}
	}
	return out, nil
}

// FitTransform fits the scaler on X and returns the standardized matrix.
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}
