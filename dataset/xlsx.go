package dataset

import (
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fhrlab/ctgstat/pkg/errors"
)

// LoadXLSX reads the observation table from the first sheet of a spreadsheet.
// The sheet must have the same header-plus-rows layout as the CSV form.
func LoadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset: workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: read sheet %s", sheets[0])
	}
	return fromRows(rows)
}

// Load dispatches on the file extension: .xlsx is read as a spreadsheet,
// anything else as CSV.
func Load(path string) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return LoadXLSX(path)
	}
	return LoadCSV(path)
}
