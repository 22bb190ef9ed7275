package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestStandardScaler(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})

	scaler := NewStandardScaler()
	out, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}

	col := make([]float64, 4)
	for j := 0; j < 2; j++ {
		mat.Col(col, j, out)
		mean, sd := stat.MeanStdDev(col, nil)
		if math.Abs(mean) > 1e-12 {
			t.Errorf("column %d mean = %v, want 0", j, mean)
		}
		if math.Abs(sd-1) > 1e-12 {
			t.Errorf("column %d sd = %v, want 1", j, sd)
		}
	}
}

func TestStandardScalerZeroVariance(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1, 5,
		2, 5,
		3, 5,
	})

	if err := NewStandardScaler().Fit(X); err == nil {
		t.Error("Fit() accepted a zero-variance column, want error")
	}
}

func TestStandardScalerNotFitted(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	if _, err := NewStandardScaler().Transform(X); err == nil {
		t.Error("Transform() before Fit() succeeded, want error")
	}
}

func TestStandardScalerDimensionMismatch(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	scaler := NewStandardScaler()
	if err := scaler.Fit(X); err != nil {
		t.Fatal(err)
	}

	wide := mat.NewDense(3, 3, nil)
	if _, err := scaler.Transform(wide); err == nil {
		t.Error("Transform() accepted mismatched width, want error")
	}
}
