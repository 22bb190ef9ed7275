// Package plsda implements partial least squares discriminant analysis:
// PLS2 regression against a dummy-coded outcome, with class assignment by
// maximum predicted dummy score. Unlike PCA, the latent components are
// chosen to maximize covariance with the outcome.
package plsda

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/fhrlab/ctgstat/core/model"
	"github.com/fhrlab/ctgstat/pkg/errors"
)

// PLSDA is a PLS discriminant model with a fixed latent component count.
type PLSDA struct {
	model.BaseEstimator

	NComponents int

	nClasses int
	xMeans   []float64
	yMeans   []float64
	weights  *mat.Dense // p x a, X weights
	loadings *mat.Dense // p x a, X loadings
	yLoads   *mat.Dense // c x a, Y loadings
	rotation *mat.Dense // p x a, W (P'W)^-1
	coef     *mat.Dense // p x c, regression coefficients on centered data
	scores   *mat.Dense // n x a, training latent scores
}

var _ model.Classifier = (*PLSDA)(nil)

// NewPLSDA creates a model retaining nComponents latent components.
func NewPLSDA(nComponents int) *PLSDA {
	return &PLSDA{NComponents: nComponents}
}

const (
	maxNIPALSIter = 500
	nipalsTol     = 1e-10
)

// Fit runs NIPALS on X against the dummy coding of labels. Labels must be
// zero-based and every class in [0, max] must appear.
func (m *PLSDA) Fit(X *mat.Dense, labels []int) error {
	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.Wrap(errors.ErrEmptyData, "PLSDA.Fit")
	}
	if len(labels) != n {
		return errors.NewDimensionError("PLSDA.Fit", n, len(labels), 0)
	}
	if m.NComponents < 1 || m.NComponents > p {
		return errors.NewValueError("PLSDA.Fit", "component count must be in [1, number of features]")
	}

	nClasses := 0
	for _, c := range labels {
		if c < 0 {
			return errors.NewValueError("PLSDA.Fit", "labels must be zero-based")
		}
		if c+1 > nClasses {
			nClasses = c + 1
		}
	}
	if nClasses < 2 {
		return errors.NewValueError("PLSDA.Fit", "need at least 2 classes")
	}
	counts := make([]int, nClasses)
	for _, c := range labels {
		counts[c]++
	}
	for c, cnt := range counts {
		if cnt == 0 {
			return errors.NewValueError("PLSDA.Fit", "class "+strconv.Itoa(c)+" has no observations")
		}
	}

	// Centered copies; NIPALS deflates both in place.
	Xc, xMeans := centered(X)
	Y := mat.NewDense(n, nClasses, nil)
	for i, c := range labels {
		Y.Set(i, c, 1)
	}
	Yc, yMeans := centered(Y)

	a := m.NComponents
	W := mat.NewDense(p, a, nil)
	P := mat.NewDense(p, a, nil)
	Q := mat.NewDense(nClasses, a, nil)
	T := mat.NewDense(n, a, nil)

	w := mat.NewVecDense(p, nil)
	t := mat.NewVecDense(n, nil)
	q := mat.NewVecDense(nClasses, nil)
	u := mat.NewVecDense(n, nil)

	for comp := 0; comp < a; comp++ {
		// Start u from the Y column with the largest remaining variance.
		bestCol, bestVar := 0, -1.0
		for j := 0; j < nClasses; j++ {
			var v float64
			for i := 0; i < n; i++ {
				v += Yc.At(i, j) * Yc.At(i, j)
			}
			if v > bestVar {
				bestCol, bestVar = j, v
			}
		}
		for i := 0; i < n; i++ {
			u.SetVec(i, Yc.At(i, bestCol))
		}

		prev := math.Inf(1)
		for iter := 0; iter < maxNIPALSIter; iter++ {
			w.MulVec(Xc.T(), u)
			normalize(w)
			t.MulVec(Xc, w)
			tt := mat.Dot(t, t)
			if tt == 0 {
				return errors.NewValueError("PLSDA.Fit", "degenerate component: zero score variance")
			}
			q.MulVec(Yc.T(), t)
			q.ScaleVec(1/tt, q)
			qq := mat.Dot(q, q)
			if qq == 0 {
				return errors.NewValueError("PLSDA.Fit", "degenerate component: outcome carries no signal")
			}
			u.MulVec(Yc, q)
			u.ScaleVec(1/qq, u)

			delta := math.Abs(tt - prev)
			prev = tt
			if delta < nipalsTol*tt {
				break
			}
		}

		tt := mat.Dot(t, t)
		// X loading and deflation.
		pv := mat.NewVecDense(p, nil)
		pv.MulVec(Xc.T(), t)
		pv.ScaleVec(1/tt, pv)

		for i := 0; i < n; i++ {
			for j := 0; j < p; j++ {
				Xc.Set(i, j, Xc.At(i, j)-t.AtVec(i)*pv.AtVec(j))
			}
			for c := 0; c < nClasses; c++ {
				Yc.Set(i, c, Yc.At(i, c)-t.AtVec(i)*q.AtVec(c))
			}
		}

		for j := 0; j < p; j++ {
			W.Set(j, comp, w.AtVec(j))
			P.Set(j, comp, pv.AtVec(j))
		}
		for c := 0; c < nClasses; c++ {
			Q.Set(c, comp, q.AtVec(c))
		}
		for i := 0; i < n; i++ {
			T.Set(i, comp, t.AtVec(i))
		}
	}

	// Rotation R = W (P'W)^-1 maps centered X straight to scores.
	var ptw mat.Dense
	ptw.Mul(P.T(), W)
	var ptwInv mat.Dense
	if err := ptwInv.Inverse(&ptw); err != nil {
		return errors.NewSingularMatrixError("PLSDA.Fit", a)
	}
	rotation := mat.NewDense(p, a, nil)
	rotation.Mul(W, &ptwInv)

	coef := mat.NewDense(p, nClasses, nil)
	coef.Mul(rotation, Q.T())

	m.nClasses = nClasses
	m.xMeans = xMeans
	m.yMeans = yMeans
	m.weights = W
	m.loadings = P
	m.yLoads = Q
	m.rotation = rotation
	m.coef = coef
	m.scores = T
	m.SetFitted()
	return nil
}

// Scores returns the training latent scores, one column per component.
func (m *PLSDA) Scores() (*mat.Dense, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("PLSDA", "Scores")
	}
	return m.scores, nil
}

// Loadings returns the X loading matrix.
func (m *PLSDA) Loadings() (*mat.Dense, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("PLSDA", "Loadings")
	}
	return m.loadings, nil
}

// Transform projects new observations into the latent space.
func (m *PLSDA) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("PLSDA", "Transform")
	}
	n, p := X.Dims()
	if p != len(m.xMeans) {
		return nil, errors.NewDimensionError("PLSDA.Transform", len(m.xMeans), p, 1)
	}

	centered := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			centered.Set(i, j, X.At(i, j)-m.xMeans[j])
		}
	}
	_, a := m.rotation.Dims()
	out := mat.NewDense(n, a, nil)
	out.Mul(centered, m.rotation)
	return out, nil
}

// PredictScores returns the predicted dummy score per class for each row.
func (m *PLSDA) PredictScores(X mat.Matrix) (*mat.Dense, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("PLSDA", "PredictScores")
	}
	n, p := X.Dims()
	if p != len(m.xMeans) {
		return nil, errors.NewDimensionError("PLSDA.PredictScores", len(m.xMeans), p, 1)
	}

	out := mat.NewDense(n, m.nClasses, nil)
	for i := 0; i < n; i++ {
		for c := 0; c < m.nClasses; c++ {
			v := m.yMeans[c]
			for j := 0; j < p; j++ {
				v += (X.At(i, j) - m.xMeans[j]) * m.coef.At(j, c)
			}
			out.Set(i, c, v)
		}
	}
	return out, nil
}

// Predict assigns each row to the class with the highest predicted dummy
// score, breaking ties toward the lowest class index.
func (m *PLSDA) Predict(X mat.Matrix) ([]int, error) {
	scores, err := m.PredictScores(X)
	if err != nil {
		return nil, err
	}

	n, _ := scores.Dims()
	out := make([]int, n)
	for i := 0; i < n; i++ {
		best, bestScore := 0, scores.At(i, 0)
		for c := 1; c < m.nClasses; c++ {
			if s := scores.At(i, c); s > bestScore {
				best, bestScore = c, s
			}
		}
		out[i] = best
	}
	return out, nil
}

func centered(X *mat.Dense) (*mat.Dense, []float64) {
	n, p := X.Dims()
	means := make([]float64, p)
	out := mat.NewDense(n, p, nil)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		mat.Col(col, j, X)
		var mean float64
		for _, v := range col {
			mean += v
		}
		mean /= float64(n)
		means[j] = mean
		for i := 0; i < n; i++ {
			out.Set(i, j, col[i]-mean)
		}
	}
	return out, means
}

func normalize(v *mat.VecDense) {
	norm := math.Sqrt(mat.Dot(v, v))
	if norm > 0 {
		v.ScaleVec(1/norm, v)
	}
}
