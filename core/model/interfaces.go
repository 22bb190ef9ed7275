package model

import "gonum.org/v1/gonum/mat"

// Transformer maps a feature matrix into a new representation, e.g. the
// scaler and the principal-component projection.
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (*mat.Dense, error)
}

// Classifier labels observations with integer classes.
type Classifier interface {
	Fit(X *mat.Dense, labels []int) error
	Predict(X mat.Matrix) ([]int, error)
}

// ProbPredictor scores observations with positive-class probabilities.
type ProbPredictor interface {
	PredictProba(X mat.Matrix) ([]float64, error)
}
