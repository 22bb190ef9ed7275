package gam

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/fhrlab/ctgstat/glm"
	"github.com/fhrlab/ctgstat/pkg/errors"
)

// AdditiveLogit is a logistic regression whose linear predictor is a sum of
// natural cubic spline smooths, one per column of the training matrix.
type AdditiveLogit struct {
	bases []*SplineBasis
	model *glm.Logit
}

// FitAdditiveLogit smooths every column of X with df spline degrees of
// freedom and fits the assembled design by IRLS.
func FitAdditiveLogit(X *mat.Dense, y []float64, df int) (*AdditiveLogit, error) {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "FitAdditiveLogit")
	}

	bases := make([]*SplineBasis, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		mat.Col(col, j, X)
		b, err := NewSplineBasis(col, df)
		if err != nil {
			return nil, errors.Wrapf(err, "FitAdditiveLogit: column %d", j)
		}
		bases[j] = b
	}

	design := assemble(X, bases)
	m := glm.NewLogit()
	if err := m.Fit(design, y); err != nil {
		return nil, err
	}
	return &AdditiveLogit{bases: bases, model: m}, nil
}

// Deviance returns -2 log-likelihood of the fitted smooth model.
func (a *AdditiveLogit) Deviance() float64 {
	return a.model.Deviance()
}

// NParams returns the parameter count of the fitted smooth model.
func (a *AdditiveLogit) NParams() int {
	return a.model.NParams()
}

// PredictProba evaluates the fitted smooths on new observations.
func (a *AdditiveLogit) PredictProba(X mat.Matrix) ([]float64, error) {
	_, p := X.Dims()
	if p != len(a.bases) {
		return nil, errors.NewDimensionError("AdditiveLogit.PredictProba", len(a.bases), p, 1)
	}
	d := mat.DenseCopyOf(X)
	return a.model.PredictProba(assemble(d, a.bases))
}

func assemble(X *mat.Dense, bases []*SplineBasis) *mat.Dense {
	n, p := X.Dims()
	total := 0
	for _, b := range bases {
		total += b.DF()
	}

	out := mat.NewDense(n, total, nil)
	col := make([]float64, n)
	offset := 0
	for j := 0; j < p; j++ {
		mat.Col(col, j, X)
		bm := bases[j].Matrix(col)
		for i := 0; i < n; i++ {
			for k := 0; k < bases[j].DF(); k++ {
				out.Set(i, offset+k, bm.At(i, k))
			}
		}
		offset += bases[j].DF()
	}
	return out
}

// ComponentTest is the nonlinearity evidence for one predictor: the deviance
// drop from letting its term bend, against the extra parameters spent.
type ComponentTest struct {
	Column   int
	Deviance float64
	DF       float64
	P        float64
}

// LinearityResult compares the all-linear logistic fit against spline
// alternatives.
type LinearityResult struct {
	LinearDeviance float64
	SmoothDeviance float64
	Deviance       float64 // joint deviance drop
	DF             float64
	P              float64 // joint chi-squared p-value
	Components     []ComponentTest
}

// LinearityTest fits the all-linear model, the all-smooth model, and one
// partially smoothed model per column (that column splined, the rest
// linear), and reports chi-squared deviance tests. A large joint p-value
// says linear terms suffice for the downstream logistic models.
func LinearityTest(X *mat.Dense, y []float64, df int) (LinearityResult, error) {
	_, p := X.Dims()

	linear := glm.NewLogit()
	if err := linear.Fit(X, y); err != nil {
		return LinearityResult{}, err
	}

	smooth, err := FitAdditiveLogit(X, y, df)
	if err != nil {
		return LinearityResult{}, err
	}

	jointDrop := linear.Deviance() - smooth.Deviance()
	if jointDrop < 0 {
		jointDrop = 0
	}
	jointDF := float64(smooth.NParams() - linear.NParams())

	res := LinearityResult{
		LinearDeviance: linear.Deviance(),
		SmoothDeviance: smooth.Deviance(),
		Deviance:       jointDrop,
		DF:             jointDF,
		P:              chiSquaredP(jointDrop, jointDF),
	}

	col := make([]float64, len(y))
	for j := 0; j < p; j++ {
		mat.Col(col, j, X)
		basis, err := NewSplineBasis(col, df)
		if err != nil {
			return LinearityResult{}, errors.Wrapf(err, "LinearityTest: column %d", j)
		}

		design := partialDesign(X, j, basis)
		m := glm.NewLogit()
		if err := m.Fit(design, y); err != nil {
			return LinearityResult{}, errors.Wrapf(err, "LinearityTest: column %d", j)
		}

		drop := linear.Deviance() - m.Deviance()
		if drop < 0 {
			drop = 0
		}
		cdf := float64(m.NParams() - linear.NParams())
		res.Components = append(res.Components, ComponentTest{
			Column:   j,
			Deviance: drop,
			DF:       cdf,
			P:        chiSquaredP(drop, cdf),
		})
	}
	return res, nil
}

// partialDesign keeps every column of X linear except column j, which is
// replaced by its spline basis.
func partialDesign(X *mat.Dense, j int, basis *SplineBasis) *mat.Dense {
	n, p := X.Dims()
	out := mat.NewDense(n, p-1+basis.DF(), nil)

	col := make([]float64, n)
	k := 0
	for c := 0; c < p; c++ {
		if c == j {
			continue
		}
		mat.Col(col, c, X)
		for i := 0; i < n; i++ {
			out.Set(i, k, col[i])
		}
		k++
	}
	mat.Col(col, j, X)
	bm := basis.Matrix(col)
	for i := 0; i < n; i++ {
		for b := 0; b < basis.DF(); b++ {
			out.Set(i, k+b, bm.At(i, b))
		}
	}
	return out
}

func chiSquaredP(stat, df float64) float64 {
	if df <= 0 {
		return 1
	}
	chi := distuv.ChiSquared{K: df}
	return 1 - chi.CDF(stat)
}
