// Package model holds the estimator state machine and the small interfaces
// shared by every fitted object in the pipeline.
package model

// EstimatorState tracks whether an estimator has been fitted.
type EstimatorState int

const (
	// NotFitted is the initial state.
	NotFitted EstimatorState = iota
	// Fitted means Fit completed and accessors are valid.
	Fitted
)

// BaseEstimator is embedded by every estimator in the pipeline.
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted reports whether Fit has completed.
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted marks the estimator as fitted.
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset returns the estimator to its unfitted state.
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
