package crossval

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/fhrlab/ctgstat/glm"
)

func simulateBinary(n int, seed int64) (*mat.Dense, []float64) {
	rng := rand.New(rand.NewSource(seed))
	X := mat.NewDense(n, 1, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x := rng.NormFloat64()
		X.Set(i, 0, x)
		if rng.Float64() < 1/(1+math.Exp(-2*x)) {
			y[i] = 1
		}
	}
	return X, y
}

func logitTrainer(XTrain *mat.Dense, yTrain []float64, XTest *mat.Dense) ([]float64, error) {
	m := glm.NewLogit()
	if err := m.Fit(XTrain, yTrain); err != nil {
		return nil, err
	}
	return m.PredictProba(XTest)
}

func TestKFoldMSPE(t *testing.T) {
	X, y := simulateBinary(500, 31)

	res, err := KFoldMSPE(logitTrainer, X, y, 10, 3, WithSeed(7))
	if err != nil {
		t.Fatalf("KFoldMSPE() error = %v", err)
	}

	if res.Mean < 0 {
		t.Errorf("MSPE = %v, want >= 0", res.Mean)
	}
	// An informative model must beat the variance of a coin flip.
	if res.Mean >= 0.25 {
		t.Errorf("MSPE = %v, want < 0.25 for an informative predictor", res.Mean)
	}
	if res.StdErr <= 0 {
		t.Errorf("StdErr = %v, want > 0", res.StdErr)
	}
	if res.K != 10 || res.B != 3 {
		t.Errorf("bookkeeping = (%d, %d), want (10, 3)", res.K, res.B)
	}
}

func TestKFoldMSPEReproducible(t *testing.T) {
	X, y := simulateBinary(300, 32)

	a, err := KFoldMSPE(logitTrainer, X, y, 5, 2, WithSeed(9))
	if err != nil {
		t.Fatal(err)
	}
	b, err := KFoldMSPE(logitTrainer, X, y, 5, 2, WithSeed(9))
	if err != nil {
		t.Fatal(err)
	}
	if a.Mean != b.Mean || a.StdErr != b.StdErr {
		t.Errorf("same seed gave different estimates: %+v vs %+v", a, b)
	}
}

func TestKFoldMSPEStableAcrossRepetitions(t *testing.T) {
	X, y := simulateBinary(600, 33)

	few, err := KFoldMSPE(logitTrainer, X, y, 10, 1, WithSeed(1))
	if err != nil {
		t.Fatal(err)
	}
	many, err := KFoldMSPE(logitTrainer, X, y, 10, 10, WithSeed(1))
	if err != nil {
		t.Fatal(err)
	}

	// More repetitions re-estimate the same quantity.
	if math.Abs(few.Mean-many.Mean) > 0.05 {
		t.Errorf("B=1 mean %v and B=10 mean %v diverge", few.Mean, many.Mean)
	}
}

func TestKFoldMSPESimpleRandomOption(t *testing.T) {
	X, y := simulateBinary(300, 34)

	res, err := KFoldMSPE(logitTrainer, X, y, 5, 1, WithSeed(2), WithSimpleRandom())
	if err != nil {
		t.Fatalf("KFoldMSPE(simple random) error = %v", err)
	}
	if res.Mean < 0 || res.Mean > 1 {
		t.Errorf("MSPE = %v, want within [0, 1] for probability predictions", res.Mean)
	}
}

func TestKFoldErrorRate(t *testing.T) {
	X, y := simulateBinary(400, 35)
	labels := make([]int, len(y))
	for i, v := range y {
		labels[i] = int(v)
	}

	classify := func(XTrain *mat.Dense, labelsTrain []int, XTest *mat.Dense) ([]int, error) {
		yTrain := make([]float64, len(labelsTrain))
		for i, c := range labelsTrain {
			yTrain[i] = float64(c)
		}
		probs, err := logitTrainer(XTrain, yTrain, XTest)
		if err != nil {
			return nil, err
		}
		pred := make([]int, len(probs))
		for i, p := range probs {
			if p >= 0.5 {
				pred[i] = 1
			}
		}
		return pred, nil
	}

	res, err := KFoldErrorRate(classify, X, labels, 10, 2, WithSeed(3))
	if err != nil {
		t.Fatalf("KFoldErrorRate() error = %v", err)
	}
	if res.Mean < 0 || res.Mean > 1 {
		t.Errorf("error rate = %v, want within [0, 1]", res.Mean)
	}
	if res.Mean >= 0.5 {
		t.Errorf("error rate = %v, want < 0.5 for an informative predictor", res.Mean)
	}
}

func TestKFoldValidation(t *testing.T) {
	X, y := simulateBinary(50, 36)

	if _, err := KFoldMSPE(logitTrainer, X, y, 1, 1); err == nil {
		t.Error("K=1 accepted, want error")
	}
	if _, err := KFoldMSPE(logitTrainer, X, y, 5, 0); err == nil {
		t.Error("B=0 accepted, want error")
	}
	if _, err := KFoldMSPE(logitTrainer, X, y[:10], 5, 1); err == nil {
		t.Error("length mismatch accepted, want error")
	}
}
