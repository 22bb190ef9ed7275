// Package crossval estimates out-of-sample loss by repeated K-fold
// cross-validation. Partitioning is stratified by outcome by default;
// fold-level fits run in parallel and the aggregate (mean and standard
// error) is order-independent.
package crossval

import (
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/fhrlab/ctgstat/core/parallel"
	"github.com/fhrlab/ctgstat/dataset"
	"github.com/fhrlab/ctgstat/pkg/errors"
)

// Trainer fits a model on the training rows and returns predicted positive-
// class probabilities for the test rows.
type Trainer func(XTrain *mat.Dense, yTrain []float64, XTest *mat.Dense) ([]float64, error)

// ClassifierTrainer fits a classifier on the training rows and returns
// predicted class labels for the test rows.
type ClassifierTrainer func(XTrain *mat.Dense, labelsTrain []int, XTest *mat.Dense) ([]int, error)

// Result is an aggregated cross-validation estimate.
type Result struct {
	Mean   float64 // mean per-fold loss
	StdErr float64 // standard error across fold losses
	K      int
	B      int
}

type options struct {
	stratified bool
	seed       int64
}

// Option adjusts the partitioning policy.
type Option func(*options)

// WithSimpleRandom switches from stratified to simple random partitioning.
func WithSimpleRandom() Option {
	return func(o *options) { o.stratified = false }
}

// WithSeed fixes the partitioning seed for reproducible estimates.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// KFoldMSPE estimates the mean squared prediction error of trainer by K-fold
// cross-validation repeated B times with independent partitions. The loss
// for one fold is the mean squared difference between predicted probability
// and the binary outcome on the held-out rows.
func KFoldMSPE(trainer Trainer, X *mat.Dense, y []float64, K, B int, opts ...Option) (Result, error) {
	o := applyOptions(opts)
	n, _ := X.Dims()
	if len(y) != n {
		return Result{}, errors.NewDimensionError("KFoldMSPE", n, len(y), 0)
	}

	labels := make([]int, n)
	for i, v := range y {
		labels[i] = int(v)
	}

	losses, err := runFolds(X, labels, K, B, o, func(trainIdx, testIdx []int) (float64, error) {
		XTrain, XTest := subsetRows(X, trainIdx), subsetRows(X, testIdx)
		yTrain := make([]float64, len(trainIdx))
		for i, r := range trainIdx {
			yTrain[i] = y[r]
		}
		probs, err := trainer(XTrain, yTrain, XTest)
		if err != nil {
			return 0, err
		}
		if len(probs) != len(testIdx) {
			return 0, errors.NewDimensionError("KFoldMSPE", len(testIdx), len(probs), 0)
		}
		var sum float64
		for i, r := range testIdx {
			d := probs[i] - y[r]
			sum += d * d
		}
		return sum / float64(len(testIdx)), nil
	})
	if err != nil {
		return Result{}, err
	}
	return aggregate(losses, K, B), nil
}

// KFoldErrorRate estimates the misclassification rate of trainer by repeated
// K-fold cross-validation, for either the 2-class or 3-class coding.
func KFoldErrorRate(trainer ClassifierTrainer, X *mat.Dense, labels []int, K, B int, opts ...Option) (Result, error) {
	o := applyOptions(opts)
	n, _ := X.Dims()
	if len(labels) != n {
		return Result{}, errors.NewDimensionError("KFoldErrorRate", n, len(labels), 0)
	}

	losses, err := runFolds(X, labels, K, B, o, func(trainIdx, testIdx []int) (float64, error) {
		XTrain, XTest := subsetRows(X, trainIdx), subsetRows(X, testIdx)
		labelsTrain := make([]int, len(trainIdx))
		for i, r := range trainIdx {
			labelsTrain[i] = labels[r]
		}
		pred, err := trainer(XTrain, labelsTrain, XTest)
		if err != nil {
			return 0, err
		}
		if len(pred) != len(testIdx) {
			return 0, errors.NewDimensionError("KFoldErrorRate", len(testIdx), len(pred), 0)
		}
		var wrong int
		for i, r := range testIdx {
			if pred[i] != labels[r] {
				wrong++
			}
		}
		return float64(wrong) / float64(len(testIdx)), nil
	})
	if err != nil {
		return Result{}, err
	}
	return aggregate(losses, K, B), nil
}

// runFolds assigns folds for every repetition up front, then evaluates each
// (repetition, fold) pair concurrently.
func runFolds(X *mat.Dense, labels []int, K, B int, o options, loss func(trainIdx, testIdx []int) (float64, error)) ([]float64, error) {
	if K < 2 {
		return nil, errors.NewValueError("crossval", "need at least 2 folds")
	}
	if B < 1 {
		return nil, errors.NewValueError("crossval", "need at least 1 repetition")
	}
	n := len(labels)

	type job struct {
		trainIdx, testIdx []int
	}
	jobs := make([]job, 0, K*B)
	for b := 0; b < B; b++ {
		rng := rand.New(rand.NewSource(o.seed + int64(b)))
		var assign []int
		var err error
		if o.stratified {
			assign, err = dataset.StratifiedFolds(labels, K, rng)
		} else {
			assign, err = dataset.Folds(n, K, rng)
		}
		if err != nil {
			return nil, err
		}
		for f := 0; f < K; f++ {
			var trainIdx, testIdx []int
			for i, fi := range assign {
				if fi == f {
					testIdx = append(testIdx, i)
				} else {
					trainIdx = append(trainIdx, i)
				}
			}
			jobs = append(jobs, job{trainIdx: trainIdx, testIdx: testIdx})
		}
	}

	losses := make([]float64, len(jobs))
	var mu sync.Mutex
	var firstErr error
	parallel.Parallelize(len(jobs), func(start, end int) {
		for i := start; i < end; i++ {
			l, err := loss(jobs[i].trainIdx, jobs[i].testIdx)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			losses[i] = l
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return losses, nil
}

func aggregate(losses []float64, K, B int) Result {
	mean, sd := stat.MeanStdDev(losses, nil)
	if len(losses) < 2 {
		sd = 0
	}
	return Result{
		Mean:   mean,
		StdErr: sd / math.Sqrt(float64(len(losses))),
		K:      K,
		B:      B,
	}
}

func applyOptions(opts []Option) options {
	o := options{stratified: true, seed: 1}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func subsetRows(X *mat.Dense, rows []int) *mat.Dense {
	_, p := X.Dims()
	out := mat.NewDense(len(rows), p, nil)
	for i, r := range rows {
		out.SetRow(i, X.RawRowView(r))
	}
	return out
}
