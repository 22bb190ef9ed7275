package dataset

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/fhrlab/ctgstat/pkg/errors"
)

// LoadCSV reads the observation table from a comma-delimited file with a
// header row naming the 21 feature columns plus the outcome column. Any
// non-numeric cell, short row, or outcome code outside {1,2,3} aborts the
// load.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: parse %s", path)
	}
	return fromRows(rows)
}

// fromRows builds a Table from raw string records, header first. The outcome
// column is the one named "fetal_health" when present, otherwise the last.
func fromRows(rows [][]string) (*Table, error) {
	if len(rows) < 2 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset: need a header row and at least one observation")
	}

	header := rows[0]
	if len(header) != NumFeatures+1 {
		return nil, errors.NewDimensionError("LoadTable", NumFeatures+1, len(header), 1)
	}

	outcomeCol := len(header) - 1
	for j, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "fetal_health") {
			outcomeCol = j
		}
	}

	names := make([]string, 0, NumFeatures)
	for j, name := range header {
		if j != outcomeCol {
			names = append(names, strings.TrimSpace(name))
		}
	}

	n := len(rows) - 1
	x := mat.NewDense(n, NumFeatures, nil)
	outcome := make([]Class, n)

	for i, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, errors.NewDimensionError("LoadTable", len(header), len(row), 1)
		}
		k := 0
		for j, cell := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errors.NewValueError("LoadTable",
					"non-numeric cell "+strconv.Quote(cell)+" in column "+header[j]+" at row "+strconv.Itoa(i+2))
			}
			if j == outcomeCol {
				c := Class(int(v))
				if float64(int(v)) != v || c < Normal || c > Pathological {
					return nil, errors.NewValueError("LoadTable",
						"outcome code "+cell+" at row "+strconv.Itoa(i+2)+" is not one of 1, 2, 3")
				}
				outcome[i] = c
				continue
			}
			x.Set(i, k, v)
			k++
		}
	}

	return &Table{Names: names, X: x, Outcome: outcome}, nil
}
