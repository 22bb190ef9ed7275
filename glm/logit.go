// Package glm fits the binomial generalized linear model (logistic
// regression) by iteratively reweighted least squares, and exposes the
// likelihood-based quantities the model-selection and validation stages
// consume: coefficients with Wald inference, deviance, AIC and AICc.
package glm

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/fhrlab/ctgstat/core/model"
	"github.com/fhrlab/ctgstat/pkg/errors"
)

// Logit is a maximum-likelihood logistic regression with intercept.
type Logit struct {
	model.BaseEstimator

	maxIter int
	tol     float64
	names   []string

	coefs   []float64 // intercept first
	stderrs []float64
	loglik  float64
	nObs    int
	nIter   int
}

// Option configures a Logit before fitting.
type Option func(*Logit)

// WithMaxIter caps the IRLS iteration count.
func WithMaxIter(n int) Option {
	return func(m *Logit) { m.maxIter = n }
}

// WithTol sets the coefficient-change convergence tolerance.
func WithTol(tol float64) Option {
	return func(m *Logit) { m.tol = tol }
}

// WithTermNames labels the predictor columns for the summary table.
func WithTermNames(names []string) Option {
	return func(m *Logit) { m.names = append([]string(nil), names...) }
}

var _ model.ProbPredictor = (*Logit)(nil)

// NewLogit creates an unfitted model.
func NewLogit(opts ...Option) *Logit {
	m := &Logit{maxIter: 50, tol: 1e-8}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fit estimates the coefficients for predictors X and binary outcome y.
// y must contain only 0 and 1, with both levels present. A nil X fits the
// intercept-only model, the null candidate during subset selection.
func (m *Logit) Fit(X mat.Matrix, y []float64) error {
	var n, p int
	if X == nil {
		n, p = len(y), 0
	} else {
		n, p = X.Dims()
	}
	if n == 0 {
		return errors.Wrap(errors.ErrEmptyData, "Logit.Fit")
	}
	if len(y) != n {
		return errors.NewDimensionError("Logit.Fit", n, len(y), 0)
	}
	var ones, zeros int
	for _, v := range y {
		switch v {
		case 0:
			zeros++
		case 1:
			ones++
		default:
			return errors.NewValueError("Logit.Fit", "outcome vector must contain only 0 and 1")
		}
	}
	if ones == 0 || zeros == 0 {
		return errors.NewValueError("Logit.Fit", "outcome vector must have exactly two distinct levels")
	}

	// Design matrix with an intercept column.
	design := mat.NewDense(n, p+1, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		for j := 0; j < p; j++ {
			design.Set(i, j+1, X.At(i, j))
		}
	}

	beta := make([]float64, p+1)
	eta := make([]float64, n)
	mu := make([]float64, n)
	w := make([]float64, n)
	z := make([]float64, n)

	var info mat.Dense // X' W X at the last iteration
	converged := false

	for iter := 0; iter < m.maxIter; iter++ {
		for i := 0; i < n; i++ {
			var e float64
			for j := 0; j <= p; j++ {
				e += design.At(i, j) * beta[j]
			}
			eta[i] = e
			mu[i] = sigmoid(e)
			wi := mu[i] * (1 - mu[i])
			if wi < 1e-10 {
				wi = 1e-10
			}
			w[i] = wi
			z[i] = eta[i] + (y[i]-mu[i])/wi
		}

		// Weighted normal equations: (X' W X) beta = X' W z.
		xtw := mat.NewDense(p+1, n, nil)
		for j := 0; j <= p; j++ {
			for i := 0; i < n; i++ {
				xtw.Set(j, i, design.At(i, j)*w[i])
			}
		}
		info.Mul(xtw, design)
		rhs := mat.NewVecDense(p+1, nil)
		rhs.MulVec(xtw, mat.NewVecDense(n, z))

		var sol mat.VecDense
		if err := sol.SolveVec(&info, rhs); err != nil {
			return errors.NewSingularMatrixError("Logit.Fit", p+1)
		}

		var maxDelta float64
		for j := 0; j <= p; j++ {
			if d := math.Abs(sol.AtVec(j) - beta[j]); d > maxDelta {
				maxDelta = d
			}
			beta[j] = sol.AtVec(j)
		}
		m.nIter = iter + 1
		if maxDelta < m.tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("IRLS", m.maxIter, ""))
	}

	// Log-likelihood at the final coefficients.
	var ll float64
	for i := 0; i < n; i++ {
		var e float64
		for j := 0; j <= p; j++ {
			e += design.At(i, j) * beta[j]
		}
		pr := sigmoid(e)
		pr = clampProb(pr)
		if y[i] == 1 {
			ll += math.Log(pr)
		} else {
			ll += math.Log(1 - pr)
		}
	}

	// Standard errors from the inverse Fisher information.
	var cov mat.Dense
	if err := cov.Inverse(&info); err != nil {
		return errors.NewSingularMatrixError("Logit.Fit", p+1)
	}
	stderrs := make([]float64, p+1)
	for j := 0; j <= p; j++ {
		stderrs[j] = math.Sqrt(cov.At(j, j))
	}

	m.coefs = beta
	m.stderrs = stderrs
	m.loglik = ll
	m.nObs = n
	m.SetFitted()
	return nil
}

// PredictProba returns the fitted probability of the positive class for each
// row of X. A nil X carries no row count, so prediction from an
// intercept-only fit is rejected rather than guessed at.
func (m *Logit) PredictProba(X mat.Matrix) ([]float64, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("Logit", "PredictProba")
	}
	if X == nil {
		return nil, errors.NewValueError("Logit.PredictProba", "nil predictor matrix carries no row count")
	}
	n, p := X.Dims()
	if p != len(m.coefs)-1 {
		return nil, errors.NewDimensionError("Logit.PredictProba", len(m.coefs)-1, p, 1)
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		e := m.coefs[0]
		for j := 0; j < p; j++ {
			e += m.coefs[j+1] * X.At(i, j)
		}
		out[i] = sigmoid(e)
	}
	return out, nil
}

// Coefs returns the fitted coefficients, intercept first.
func (m *Logit) Coefs() []float64 {
	return append([]float64(nil), m.coefs...)
}

// StdErrs returns the Wald standard errors, intercept first.
func (m *Logit) StdErrs() []float64 {
	return append([]float64(nil), m.stderrs...)
}

// LogLik returns the maximized log-likelihood.
func (m *Logit) LogLik() float64 {
	return m.loglik
}

// Deviance returns -2 times the maximized log-likelihood.
func (m *Logit) Deviance() float64 {
	return -2 * m.loglik
}

// NParams returns the number of estimated parameters, intercept included.
func (m *Logit) NParams() int {
	return len(m.coefs)
}

// NIter returns the IRLS iterations used.
func (m *Logit) NIter() int {
	return m.nIter
}

// AIC is the Akaike information criterion.
func (m *Logit) AIC() float64 {
	return m.Deviance() + 2*float64(m.NParams())
}

// AICc applies the small-sample correction to AIC. It diverges as the
// parameter count approaches the observation count, which correctly makes
// over-parameterized candidates uncompetitive during subset selection.
func (m *Logit) AICc() float64 {
	k := float64(m.NParams())
	n := float64(m.nObs)
	if n-k-1 <= 0 {
		return math.Inf(1)
	}
	return m.AIC() + 2*k*(k+1)/(n-k-1)
}

func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

func clampProb(p float64) float64 {
	const eps = 1e-12
	if p < eps {
		return eps
	}
	if p > 1-eps {
		return 1 - eps
	}
	return p
}
