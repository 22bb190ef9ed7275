// Package dataset loads the cardiotocography table and provides the label
// recodings and partitioning utilities the analysis stages share. Each
// derived view is a new value; the loaded table is never mutated in place.
package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/fhrlab/ctgstat/pkg/errors"
)

// Class is the three-level fetal health outcome.
type Class int

// Outcome levels as coded in the source data.
const (
	Normal       Class = 1
	Suspect      Class = 2
	Pathological Class = 3
)

func (c Class) String() string {
	switch c {
	case Normal:
		return "normal"
	case Suspect:
		return "suspect"
	case Pathological:
		return "pathological"
	}
	return "unknown"
}

// NumFeatures is the number of numeric predictors in the table.
const NumFeatures = 21

// Table is one immutable snapshot of the observation data: n monitoring
// sessions by NumFeatures numeric summaries, plus the outcome per session.
type Table struct {
	Names   []string
	X       *mat.Dense
	Outcome []Class
}

// Dims returns the number of observations and features.
func (t *Table) Dims() (n, p int) {
	return t.X.Dims()
}

// Column returns a copy of feature column j.
func (t *Table) Column(j int) []float64 {
	n, _ := t.X.Dims()
	col := make([]float64, n)
	mat.Col(col, j, t.X)
	return col
}

// ColumnByName returns a copy of the named feature column.
func (t *Table) ColumnByName(name string) ([]float64, error) {
	for j, nm := range t.Names {
		if nm == name {
			return t.Column(j), nil
		}
	}
	return nil, errors.Newf("dataset: no feature named %q", name)
}

// RecodeBinary collapses the outcome to 0 for normal and 1 for suspect or
// pathological ("of concern"). The table itself is left untouched.
func (t *Table) RecodeBinary() []float64 {
	y := make([]float64, len(t.Outcome))
	for i, c := range t.Outcome {
		if c != Normal {
			y[i] = 1
		}
	}
	return y
}

// Labels returns the outcome as zero-based integer class labels
// (normal=0, suspect=1, pathological=2).
func (t *Table) Labels() []int {
	labels := make([]int, len(t.Outcome))
	for i, c := range t.Outcome {
		labels[i] = int(c) - 1
	}
	return labels
}

// Subset returns a new table holding the given rows, in order.
func (t *Table) Subset(rows []int) *Table {
	_, p := t.X.Dims()
	x := mat.NewDense(len(rows), p, nil)
	outcome := make([]Class, len(rows))
	for i, r := range rows {
		x.SetRow(i, t.X.RawRowView(r))
		outcome[i] = t.Outcome[r]
	}
	return &Table{Names: t.Names, X: x, Outcome: outcome}
}

// ClassCounts returns the number of observations per outcome level.
func (t *Table) ClassCounts() map[Class]int {
	counts := make(map[Class]int, 3)
	for _, c := range t.Outcome {
		counts[c]++
	}
	return counts
}
