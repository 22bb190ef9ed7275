package gam

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSplineBasisShape(t *testing.T) {
	rng := rand.New(rand.NewSource(71))
	xs := make([]float64, 200)
	for i := range xs {
		xs[i] = rng.NormFloat64()
	}

	basis, err := NewSplineBasis(xs, 4)
	if err != nil {
		t.Fatalf("NewSplineBasis() error = %v", err)
	}
	if basis.DF() != 4 {
		t.Errorf("DF() = %d, want 4", basis.DF())
	}

	m := basis.Matrix(xs)
	r, c := m.Dims()
	if r != 200 || c != 4 {
		t.Errorf("Matrix dims = (%d, %d), want (200, 4)", r, c)
	}

	// First basis column is the identity.
	for i := 0; i < 10; i++ {
		if m.At(i, 0) != xs[i] {
			t.Fatalf("basis column 0 is not the identity at %d", i)
		}
	}
}

func TestSplineBasisDegenerateInput(t *testing.T) {
	xs := []float64{1, 1, 1, 1}
	if _, err := NewSplineBasis(xs, 4); err == nil {
		t.Error("NewSplineBasis() accepted constant input, want error")
	}
}

// simulate builds a 2-column predictor matrix where the outcome depends
// linearly on column 0 and (optionally) quadratically on column 1.
func simulate(n int, quadratic bool, seed int64) (*mat.Dense, []float64) {
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x0, x1 := rng.NormFloat64(), rng.NormFloat64()
		X.Set(i, 0, x0)
		X.Set(i, 1, x1)
		eta := 0.8 * x0
		if quadratic {
			eta += x1*x1 - 1
		} else {
			eta += 0.5 * x1
		}
		if rng.Float64() < 1/(1+math.Exp(-eta)) {
			y[i] = 1
		}
	}
	return X, y
}

func TestLinearityTestAcceptsLinearTruth(t *testing.T) {
	X, y := simulate(1500, false, 72)

	res, err := LinearityTest(X, y, 4)
	if err != nil {
		t.Fatalf("LinearityTest() error = %v", err)
	}

	if res.P < 0.001 {
		t.Errorf("joint p = %v for a linear truth, want non-tiny", res.P)
	}
	if res.SmoothDeviance > res.LinearDeviance+1e-6 {
		t.Errorf("smooth deviance %v exceeds linear deviance %v", res.SmoothDeviance, res.LinearDeviance)
	}
	if len(res.Components) != 2 {
		t.Fatalf("len(Components) = %d, want 2", len(res.Components))
	}
}

func TestLinearityTestDetectsCurvature(t *testing.T) {
	X, y := simulate(1500, true, 73)

	res, err := LinearityTest(X, y, 4)
	if err != nil {
		t.Fatal(err)
	}

	if res.P > 1e-4 {
		t.Errorf("joint p = %v for a quadratic truth, want ~0", res.P)
	}
	// The curvature lives in column 1.
	if res.Components[1].P > 1e-4 {
		t.Errorf("component 1 p = %v, want ~0", res.Components[1].P)
	}
	if res.Components[0].P < 1e-4 {
		t.Errorf("component 0 p = %v for a linear effect, want non-tiny", res.Components[0].P)
	}
}

func TestAdditiveLogitPredicts(t *testing.T) {
	X, y := simulate(800, true, 74)

	m, err := FitAdditiveLogit(X, y, 4)
	if err != nil {
		t.Fatalf("FitAdditiveLogit() error = %v", err)
	}

	probs, err := m.PredictProba(X)
	if err != nil {
		t.Fatal(err)
	}
	if len(probs) != 800 {
		t.Fatalf("len(probs) = %d, want 800", len(probs))
	}
	for _, p := range probs {
		if p <= 0 || p >= 1 {
			t.Fatalf("probability %v outside (0, 1)", p)
		}
	}
}
