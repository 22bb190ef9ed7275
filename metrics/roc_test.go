package metrics

import (
	"math"
	"math/rand"
	"testing"
)

func TestROCMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewSource(41))
	n := 500
	yTrue := make([]float64, n)
	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		x := rng.NormFloat64()
		scores[i] = 1 / (1 + math.Exp(-x))
		if rng.Float64() < scores[i] {
			yTrue[i] = 1
		}
	}

	curve, err := ROC(yTrue, scores)
	if err != nil {
		t.Fatalf("ROC() error = %v", err)
	}

	for i := 1; i < len(curve.Points); i++ {
		prev, cur := curve.Points[i-1], curve.Points[i]
		if cur.Threshold <= prev.Threshold {
			t.Fatal("thresholds not strictly ascending")
		}
		if cur.Sensitivity > prev.Sensitivity+1e-12 {
			t.Fatalf("sensitivity increased with threshold at %d", i)
		}
		if cur.Specificity < prev.Specificity-1e-12 {
			t.Fatalf("specificity decreased with threshold at %d", i)
		}
	}
}

func TestAUC(t *testing.T) {
	tests := []struct {
		name  string
		yTrue []float64
		pred  []float64
		want  float64
	}{
		{
			name:  "perfect classifier",
			yTrue: []float64{0, 0, 0, 1, 1, 1},
			pred:  []float64{0.1, 0.2, 0.3, 0.7, 0.8, 0.9},
			want:  1.0,
		},
		{
			name:  "worst classifier",
			yTrue: []float64{0, 0, 0, 1, 1, 1},
			pred:  []float64{0.9, 0.8, 0.7, 0.3, 0.2, 0.1},
			want:  0.0,
		},
		{
			name:  "typical case",
			yTrue: []float64{0, 0, 1, 1},
			pred:  []float64{0.1, 0.4, 0.35, 0.8},
			want:  0.75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			curve, err := ROC(tt.yTrue, tt.pred)
			if err != nil {
				t.Fatalf("ROC() error = %v", err)
			}
			if got := curve.AUC(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AUC() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAUCRandomScoresNearHalf(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	n := 5000
	yTrue := make([]float64, n)
	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		if rng.Float64() < 0.5 {
			yTrue[i] = 1
		}
		scores[i] = rng.Float64()
	}

	curve, err := ROC(yTrue, scores)
	if err != nil {
		t.Fatal(err)
	}
	auc := curve.AUC()
	if auc < 0 || auc > 1 {
		t.Fatalf("AUC = %v outside [0, 1]", auc)
	}
	if math.Abs(auc-0.5) > 0.03 {
		t.Errorf("AUC of random scores = %v, want ~0.5", auc)
	}
}

func TestROCValidation(t *testing.T) {
	tests := []struct {
		name   string
		yTrue  []float64
		scores []float64
	}{
		{name: "empty", yTrue: nil, scores: nil},
		{name: "length mismatch", yTrue: []float64{0, 1}, scores: []float64{0.5}},
		{name: "non-binary outcome", yTrue: []float64{0, 2}, scores: []float64{0.1, 0.9}},
		{name: "single level", yTrue: []float64{1, 1}, scores: []float64{0.1, 0.9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ROC(tt.yTrue, tt.scores); err == nil {
				t.Error("ROC() succeeded, want error")
			}
		})
	}
}

func TestThresholdForSensitivity(t *testing.T) {
	yTrue := []float64{0, 0, 0, 0, 1, 1, 1, 1}
	scores := []float64{0.1, 0.2, 0.3, 0.6, 0.4, 0.5, 0.8, 0.9}

	curve, err := ROC(yTrue, scores)
	if err != nil {
		t.Fatal(err)
	}

	// Sensitivity 1.0 requires classifying 0.4 positive, so the largest
	// qualifying threshold is 0.4, where specificity is 3/4.
	op, err := curve.ThresholdForSensitivity(1.0)
	if err != nil {
		t.Fatalf("ThresholdForSensitivity(1.0) error = %v", err)
	}
	if op.Threshold != 0.4 {
		t.Errorf("threshold = %v, want 0.4", op.Threshold)
	}
	if op.Specificity != 0.75 {
		t.Errorf("specificity = %v, want 0.75", op.Specificity)
	}

	// Relaxing the target to 0.5 sensitivity allows threshold 0.8, which
	// trades up to specificity 1.0.
	op, err = curve.ThresholdForSensitivity(0.5)
	if err != nil {
		t.Fatal(err)
	}
	if op.Threshold != 0.8 {
		t.Errorf("threshold = %v, want 0.8", op.Threshold)
	}
	if op.Specificity != 1.0 {
		t.Errorf("specificity = %v, want 1.0", op.Specificity)
	}

	if _, err := curve.ThresholdForSensitivity(1.5); err == nil {
		t.Error("target above 1 accepted, want error")
	}
}

func TestYouden(t *testing.T) {
	yTrue := []float64{0, 0, 0, 1, 1, 1}
	scores := []float64{0.1, 0.2, 0.3, 0.7, 0.8, 0.9}

	curve, err := ROC(yTrue, scores)
	if err != nil {
		t.Fatal(err)
	}
	op, err := curve.Youden()
	if err != nil {
		t.Fatal(err)
	}
	if op.Sensitivity != 1 || op.Specificity != 1 {
		t.Errorf("Youden point = %+v, want perfect separation point", op)
	}
	if op.Threshold != 0.7 {
		t.Errorf("Youden threshold = %v, want 0.7", op.Threshold)
	}
}
