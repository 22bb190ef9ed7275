// Package decomposition implements principal component analysis over the
// standardized feature matrix. With standardized input the singular value
// decomposition used here is the eigen-decomposition of the correlation
// matrix, with components ordered by descending explained variance.
package decomposition

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/fhrlab/ctgstat/core/model"
	"github.com/fhrlab/ctgstat/pkg/errors"
)

// PCA projects observations onto the leading principal components. The
// retained count is a caller decision: the analysis fixes it at 5 after
// inspecting the scree.
type PCA struct {
	model.BaseEstimator

	NComponents int

	loadings  *mat.Dense // p x k, feature-by-component weights
	scores    *mat.Dense // n x k
	variances []float64  // all p component variances, descending
	ratios    []float64  // variances normalized to sum 1
}

var _ model.Transformer = (*PCA)(nil)

// NewPCA creates a PCA retaining nComponents components. A non-positive
// count retains all of them.
func NewPCA(nComponents int) *PCA {
	return &PCA{NComponents: nComponents}
}

// Fit decomposes X, which must already be centered (and scaled, for the
// correlation-matrix interpretation). Scores and loadings for the retained
// components are available afterwards.
func (p *PCA) Fit(X mat.Matrix) error {
	n, cols := X.Dims()
	if n == 0 || cols == 0 {
		return errors.Wrap(errors.ErrEmptyData, "PCA.Fit")
	}
	if n < 2 {
		return errors.NewValueError("PCA.Fit", "need at least 2 observations")
	}

	var svd mat.SVD
	if ok := svd.Factorize(X, mat.SVDThin); !ok {
		return errors.NewValueError("PCA.Fit", "SVD failed to factorize the input matrix")
	}

	sv := svd.Values(nil)
	rank := 0
	for _, s := range sv {
		if s > 1e-10*sv[0] {
			rank++
		}
	}
	if rank < cols {
		return errors.NewValueError("PCA.Fit",
			"input matrix is rank deficient: remove collinear or zero-variance columns")
	}

	k := p.NComponents
	if k <= 0 || k > cols {
		k = cols
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	p.variances = make([]float64, cols)
	var total float64
	for j, s := range sv {
		p.variances[j] = s * s / float64(n-1)
		total += p.variances[j]
	}
	p.ratios = make([]float64, cols)
	for j := range p.variances {
		p.ratios[j] = p.variances[j] / total
	}

	// Scores are U*S restricted to the first k components.
	p.scores = mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			p.scores.Set(i, j, u.At(i, j)*sv[j])
		}
	}

	p.loadings = mat.NewDense(cols, k, nil)
	for i := 0; i < cols; i++ {
		for j := 0; j < k; j++ {
			p.loadings.Set(i, j, v.At(i, j))
		}
	}

	p.SetFitted()
	return nil
}

// Scores returns the n-by-k component score matrix for the fitted data.
func (p *PCA) Scores() (*mat.Dense, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("PCA", "Scores")
	}
	return p.scores, nil
}

// Loadings returns the p-by-k loading matrix.
func (p *PCA) Loadings() (*mat.Dense, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("PCA", "Loadings")
	}
	return p.loadings, nil
}

// ExplainedVarianceRatio returns the proportion of total variance carried by
// every component, retained or not. The ratios sum to 1.
func (p *PCA) ExplainedVarianceRatio() ([]float64, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("PCA", "ExplainedVarianceRatio")
	}
	out := make([]float64, len(p.ratios))
	copy(out, p.ratios)
	return out, nil
}

// CumulativeExplained returns the running sum of the explained-variance
// ratios, the quantity read against the scree plot.
func (p *PCA) CumulativeExplained() ([]float64, error) {
	ratios, err := p.ExplainedVarianceRatio()
	if err != nil {
		return nil, err
	}
	for j := 1; j < len(ratios); j++ {
		ratios[j] += ratios[j-1]
	}
	return ratios, nil
}

// Transform projects new (already standardized) observations onto the
// retained components.
func (p *PCA) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("PCA", "Transform")
	}
	n, cols := X.Dims()
	lp, _ := p.loadings.Dims()
	if cols != lp {
		return nil, errors.NewDimensionError("PCA.Transform", lp, cols, 1)
	}

	_, k := p.loadings.Dims()
	out := mat.NewDense(n, k, nil)
	out.Mul(X, p.loadings)
	return out, nil
}

// DominantFeature returns the index and loading of the feature with the
// largest absolute weight on component c. The analysis uses it to pick the
// single raw predictor for the simplified model.
func (p *PCA) DominantFeature(c int) (int, float64, error) {
	if !p.IsFitted() {
		return 0, 0, errors.NewNotFittedError("PCA", "DominantFeature")
	}
	rows, k := p.loadings.Dims()
	if c < 0 || c >= k {
		return 0, 0, errors.NewValueError("PCA.DominantFeature", "component index out of range")
	}

	best, bestAbs := 0, 0.0
	for i := 0; i < rows; i++ {
		if a := math.Abs(p.loadings.At(i, c)); a > bestAbs {
			best, bestAbs = i, a
		}
	}
	return best, p.loadings.At(best, c), nil
}
