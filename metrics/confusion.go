package metrics

import (
	"fmt"
	"strings"

	"github.com/fhrlab/ctgstat/pkg/errors"
)

// Confusion is a k-class confusion matrix with true classes on rows and
// predicted classes on columns.
type Confusion struct {
	K      int
	Counts [][]int
	N      int
}

// NewConfusion tabulates predicted against true labels. Labels must lie in
// [0, k).
func NewConfusion(trueLabels, predLabels []int, k int) (*Confusion, error) {
	if len(trueLabels) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "NewConfusion")
	}
	if len(predLabels) != len(trueLabels) {
		return nil, errors.NewDimensionError("NewConfusion", len(trueLabels), len(predLabels), 0)
	}
	if k < 2 {
		return nil, errors.NewValueError("NewConfusion", "need at least 2 classes")
	}

	counts := make([][]int, k)
	for i := range counts {
		counts[i] = make([]int, k)
	}
	for i := range trueLabels {
		t, p := trueLabels[i], predLabels[i]
		if t < 0 || t >= k || p < 0 || p >= k {
			return nil, errors.NewValueError("NewConfusion",
				fmt.Sprintf("label pair (%d, %d) outside [0, %d)", t, p, k))
		}
		counts[t][p]++
	}
	return &Confusion{K: k, Counts: counts, N: len(trueLabels)}, nil
}

// Accuracy is the trace of the matrix over the total count.
func (c *Confusion) Accuracy() float64 {
	var correct int
	for i := 0; i < c.K; i++ {
		correct += c.Counts[i][i]
	}
	return float64(correct) / float64(c.N)
}

// RowSums returns the number of true instances per class.
func (c *Confusion) RowSums() []int {
	sums := make([]int, c.K)
	for i := 0; i < c.K; i++ {
		for j := 0; j < c.K; j++ {
			sums[i] += c.Counts[i][j]
		}
	}
	return sums
}

// ColSums returns the number of predicted instances per class.
func (c *Confusion) ColSums() []int {
	sums := make([]int, c.K)
	for i := 0; i < c.K; i++ {
		for j := 0; j < c.K; j++ {
			sums[j] += c.Counts[i][j]
		}
	}
	return sums
}

// Recall returns the fraction of true class instances predicted correctly,
// or 0 when the class has no true instances.
func (c *Confusion) Recall(class int) float64 {
	row := c.RowSums()[class]
	if row == 0 {
		return 0
	}
	return float64(c.Counts[class][class]) / float64(row)
}

// Precision returns the fraction of predictions for class that are correct,
// or 0 when the class is never predicted.
func (c *Confusion) Precision(class int) float64 {
	col := c.ColSums()[class]
	if col == 0 {
		return 0
	}
	return float64(c.Counts[class][class]) / float64(col)
}

// String renders the matrix with marginals.
func (c *Confusion) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%8s", "true\\pred")
	for j := 0; j < c.K; j++ {
		fmt.Fprintf(&sb, "%8d", j)
	}
	fmt.Fprintf(&sb, "%8s\n", "total")
	rows := c.RowSums()
	for i := 0; i < c.K; i++ {
		fmt.Fprintf(&sb, "%8d", i)
		for j := 0; j < c.K; j++ {
			fmt.Fprintf(&sb, "%8d", c.Counts[i][j])
		}
		fmt.Fprintf(&sb, "%8d\n", rows[i])
	}
	fmt.Fprintf(&sb, "accuracy %.4f over %d observations\n", c.Accuracy(), c.N)
	return sb.String()
}
