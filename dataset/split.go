package dataset

import (
	"math/rand"
	"sort"

	"github.com/fhrlab/ctgstat/pkg/errors"
)

// Split partitions row indices 0..n-1 into a train and test set by simple
// random sampling. testFrac is the fraction assigned to the test set.
func Split(n int, testFrac float64, seed int64) (train, test []int, err error) {
	if n == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "dataset: Split")
	}
	if testFrac <= 0 || testFrac >= 1 {
		return nil, nil, errors.NewValueError("Split", "testFrac must be in (0, 1)")
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)
	nTest := int(float64(n)*testFrac + 0.5)
	if nTest == 0 {
		nTest = 1
	}

	test = append([]int(nil), perm[:nTest]...)
	train = append([]int(nil), perm[nTest:]...)
	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}

// StratifiedSplit partitions rows into train and test sets while preserving
// the class proportions of labels. The split is reproducible for a fixed
// seed, which the naive Bayes evaluation relies on.
func StratifiedSplit(labels []int, testFrac float64, seed int64) (train, test []int, err error) {
	if len(labels) == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "dataset: StratifiedSplit")
	}
	if testFrac <= 0 || testFrac >= 1 {
		return nil, nil, errors.NewValueError("StratifiedSplit", "testFrac must be in (0, 1)")
	}

	byClass := make(map[int][]int)
	for i, c := range labels {
		byClass[c] = append(byClass[c], i)
	}

	// Deterministic order over classes so the same seed always yields the
	// same partition.
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	rng := rand.New(rand.NewSource(seed))
	for _, c := range classes {
		rows := byClass[c]
		rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		nTest := int(float64(len(rows))*testFrac + 0.5)
		if nTest == 0 && len(rows) > 1 {
			nTest = 1
		}
		test = append(test, rows[:nTest]...)
		train = append(train, rows[nTest:]...)
	}

	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}

// Folds assigns each of n rows to one of k folds by simple random
// partitioning. The returned slice maps row index to fold number.
func Folds(n, k int, rng *rand.Rand) ([]int, error) {
	if k < 2 {
		return nil, errors.NewValueError("Folds", "need at least 2 folds")
	}
	if n < k {
		return nil, errors.NewValueError("Folds", "fewer observations than folds")
	}

	assign := make([]int, n)
	perm := rng.Perm(n)
	for i, row := range perm {
		assign[row] = i % k
	}
	return assign, nil
}

// StratifiedFolds assigns rows to k folds while keeping each class spread
// evenly across folds. This is the default for every classification
// cross-validation in the pipeline.
func StratifiedFolds(labels []int, k int, rng *rand.Rand) ([]int, error) {
	if k < 2 {
		return nil, errors.NewValueError("StratifiedFolds", "need at least 2 folds")
	}
	if len(labels) < k {
		return nil, errors.NewValueError("StratifiedFolds", "fewer observations than folds")
	}

	byClass := make(map[int][]int)
	for i, c := range labels {
		byClass[c] = append(byClass[c], i)
	}
	classes := make([]int, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	assign := make([]int, len(labels))
	next := rng.Intn(k)
	for _, c := range classes {
		rows := byClass[c]
		rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		for _, row := range rows {
			assign[row] = next
			next = (next + 1) % k
		}
	}
	return assign, nil
}
