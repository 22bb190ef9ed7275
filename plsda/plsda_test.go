package plsda

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// simulate draws 3 well-separated Gaussian clusters in 6 dimensions; only
// the first two dimensions carry class signal.
func simulate(nPerClass int, sep float64, seed int64) (*mat.Dense, []int) {
	rng := rand.New(rand.NewSource(seed))
	n := nPerClass * 3
	X := mat.NewDense(n, 6, nil)
	labels := make([]int, n)
	centers := [][2]float64{{0, 0}, {sep, 0}, {0, sep}}
	for c := 0; c < 3; c++ {
		for k := 0; k < nPerClass; k++ {
			i := c*nPerClass + k
			labels[i] = c
			X.Set(i, 0, centers[c][0]+rng.NormFloat64())
			X.Set(i, 1, centers[c][1]+rng.NormFloat64())
			for j := 2; j < 6; j++ {
				X.Set(i, j, rng.NormFloat64())
			}
		}
	}
	return X, labels
}

func TestPLSDASeparatesClasses(t *testing.T) {
	X, labels := simulate(80, 6, 81)

	m := NewPLSDA(2)
	if err := m.Fit(X, labels); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pred, err := m.Predict(X)
	if err != nil {
		t.Fatal(err)
	}
	var correct int
	for i := range labels {
		if pred[i] == labels[i] {
			correct++
		}
	}
	if acc := float64(correct) / float64(len(labels)); acc < 0.95 {
		t.Errorf("training accuracy = %v on well-separated clusters, want >= 0.95", acc)
	}
}

func TestPLSDABinaryOutcome(t *testing.T) {
	X, labels3 := simulate(60, 5, 82)
	// Collapse classes 1 and 2 into one "of concern" class.
	labels := make([]int, len(labels3))
	for i, c := range labels3 {
		if c != 0 {
			labels[i] = 1
		}
	}

	m := NewPLSDA(2)
	if err := m.Fit(X, labels); err != nil {
		t.Fatal(err)
	}
	pred, err := m.Predict(X)
	if err != nil {
		t.Fatal(err)
	}
	var correct int
	for i := range labels {
		if pred[i] == labels[i] {
			correct++
		}
	}
	if acc := float64(correct) / float64(len(labels)); acc < 0.9 {
		t.Errorf("binary accuracy = %v, want >= 0.9", acc)
	}
}

func TestPLSDAScoresShape(t *testing.T) {
	X, labels := simulate(40, 4, 83)

	m := NewPLSDA(3)
	if err := m.Fit(X, labels); err != nil {
		t.Fatal(err)
	}

	scores, err := m.Scores()
	if err != nil {
		t.Fatal(err)
	}
	n, a := scores.Dims()
	if n != 120 || a != 3 {
		t.Errorf("scores dims = (%d, %d), want (120, 3)", n, a)
	}

	proj, err := m.Transform(X)
	if err != nil {
		t.Fatal(err)
	}
	pn, pa := proj.Dims()
	if pn != 120 || pa != 3 {
		t.Errorf("Transform dims = (%d, %d), want (120, 3)", pn, pa)
	}
}

func TestPLSDAOutperformsChanceOnNoise(t *testing.T) {
	// Pure noise: error should hover around 2/3 for 3 balanced classes on
	// held-out data, but training assignment must still be valid labels.
	rng := rand.New(rand.NewSource(84))
	n := 150
	X := mat.NewDense(n, 4, nil)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		labels[i] = i % 3
		for j := 0; j < 4; j++ {
			X.Set(i, j, rng.NormFloat64())
		}
	}

	m := NewPLSDA(2)
	if err := m.Fit(X, labels); err != nil {
		t.Fatal(err)
	}
	pred, err := m.Predict(X)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range pred {
		if p < 0 || p > 2 {
			t.Fatalf("prediction %d at row %d outside class range", p, i)
		}
	}
}

func TestPLSDAValidation(t *testing.T) {
	X, labels := simulate(20, 3, 85)

	tests := []struct {
		name string
		fn   func() error
	}{
		{name: "zero components", fn: func() error { return NewPLSDA(0).Fit(X, labels) }},
		{name: "too many components", fn: func() error { return NewPLSDA(7).Fit(X, labels) }},
		{name: "label length mismatch", fn: func() error { return NewPLSDA(2).Fit(X, labels[:10]) }},
		{name: "single class", fn: func() error { return NewPLSDA(2).Fit(X, make([]int, 60)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); err == nil {
				t.Error("Fit() succeeded, want error")
			}
		})
	}

	t.Run("not fitted", func(t *testing.T) {
		if _, err := NewPLSDA(2).Predict(X); err == nil {
			t.Error("Predict() before Fit() succeeded, want error")
		}
	})
}
