package metrics

import (
	"math"
	"testing"
)

func TestConfusionMarginals(t *testing.T) {
	trueLabels := []int{0, 0, 0, 1, 1, 2, 2, 2, 2}
	predLabels := []int{0, 0, 1, 1, 2, 2, 2, 0, 2}

	c, err := NewConfusion(trueLabels, predLabels, 3)
	if err != nil {
		t.Fatalf("NewConfusion() error = %v", err)
	}

	rows := c.RowSums()
	wantRows := []int{3, 2, 4}
	for i := range wantRows {
		if rows[i] != wantRows[i] {
			t.Errorf("RowSums()[%d] = %d, want %d", i, rows[i], wantRows[i])
		}
	}

	cols := c.ColSums()
	wantCols := []int{3, 2, 4}
	for i := range wantCols {
		if cols[i] != wantCols[i] {
			t.Errorf("ColSums()[%d] = %d, want %d", i, cols[i], wantCols[i])
		}
	}

	// trace = 2 + 1 + 3 = 6 of 9.
	if got, want := c.Accuracy(), 6.0/9.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("Accuracy() = %v, want %v", got, want)
	}
}

func TestConfusionPerClass(t *testing.T) {
	trueLabels := []int{0, 0, 1, 1}
	predLabels := []int{0, 1, 1, 1}

	c, err := NewConfusion(trueLabels, predLabels, 2)
	if err != nil {
		t.Fatal(err)
	}

	if got := c.Recall(0); got != 0.5 {
		t.Errorf("Recall(0) = %v, want 0.5", got)
	}
	if got := c.Recall(1); got != 1.0 {
		t.Errorf("Recall(1) = %v, want 1.0", got)
	}
	if got := c.Precision(1); math.Abs(got-2.0/3.0) > 1e-12 {
		t.Errorf("Precision(1) = %v, want 2/3", got)
	}
}

// An all-negative classifier on a 22.15% positive recode lands at
// sensitivity 0, specificity 1, accuracy 0.7785.
func TestConfusionAllNegativeBaseline(t *testing.T) {
	n := 10000
	nPos := 2215
	trueLabels := make([]int, n)
	predLabels := make([]int, n)
	for i := 0; i < nPos; i++ {
		trueLabels[i] = 1
	}

	c, err := NewConfusion(trueLabels, predLabels, 2)
	if err != nil {
		t.Fatal(err)
	}

	if got := c.Recall(1); got != 0 {
		t.Errorf("sensitivity = %v, want 0", got)
	}
	if got := c.Recall(0); got != 1 {
		t.Errorf("specificity = %v, want 1", got)
	}
	if got := c.Accuracy(); math.Abs(got-0.7785) > 1e-12 {
		t.Errorf("accuracy = %v, want 0.7785", got)
	}
}

func TestConfusionValidation(t *testing.T) {
	if _, err := NewConfusion(nil, nil, 2); err == nil {
		t.Error("empty input accepted, want error")
	}
	if _, err := NewConfusion([]int{0, 1}, []int{0}, 2); err == nil {
		t.Error("length mismatch accepted, want error")
	}
	if _, err := NewConfusion([]int{0, 2}, []int{0, 1}, 2); err == nil {
		t.Error("out-of-range label accepted, want error")
	}
}
