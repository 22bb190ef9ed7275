package model_test

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/fhrlab/ctgstat/core/model"
	"github.com/fhrlab/ctgstat/naivebayes"
	"github.com/fhrlab/ctgstat/preprocessing"
)

func TestTransformerContract(t *testing.T) {
	var tr model.Transformer = preprocessing.NewStandardScaler()

	X := mat.NewDense(4, 2, []float64{1, 10, 2, 20, 3, 30, 4, 40})
	if err := tr.Fit(X); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	Z, err := tr.Transform(X)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if r, c := Z.Dims(); r != 4 || c != 2 {
		t.Errorf("transformed dims = (%d, %d), want (4, 2)", r, c)
	}
}

func TestClassifierContract(t *testing.T) {
	var cl model.Classifier = naivebayes.NewGaussianNB()

	X := mat.NewDense(4, 1, []float64{0, 0.1, 3, 3.1})
	if err := cl.Fit(X, []int{0, 0, 1, 1}); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	pred, err := cl.Predict(X)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(pred) != 4 {
		t.Errorf("len(pred) = %d, want 4", len(pred))
	}
}
