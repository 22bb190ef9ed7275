// Package plots renders the exploratory figures of the analysis: the PCA
// scree plot and the ROC curve. Figures are written as PNG files.
package plots

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/fhrlab/ctgstat/metrics"
	"github.com/fhrlab/ctgstat/pkg/errors"
)

// Scree writes a scree plot of component explained-variance ratios to path.
func Scree(ratios []float64, path string) error {
	if len(ratios) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "plots.Scree")
	}

	pts := make(plotter.XYs, len(ratios))
	for i, r := range ratios {
		pts[i].X = float64(i + 1)
		pts[i].Y = r
	}

	p := plot.New()
	p.Title.Text = "Scree plot"
	p.X.Label.Text = "Component"
	p.Y.Label.Text = "Explained variance ratio"
	p.Y.Min = 0

	line, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(err, "plots.Scree: line")
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return errors.Wrap(err, "plots.Scree: scatter")
	}
	p.Add(line, scatter)

	if err := p.Save(5*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "plots.Scree: save")
	}
	return nil
}

// ROCCurve writes the receiver operating characteristic to path, with the
// chance diagonal for reference.
func ROCCurve(points []metrics.OperatingPoint, path string) error {
	if len(points) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "plots.ROCCurve")
	}

	pts := make(plotter.XYs, len(points))
	for i, op := range points {
		pts[i].X = 1 - op.Specificity
		pts[i].Y = op.Sensitivity
	}

	p := plot.New()
	p.Title.Text = "ROC curve"
	p.X.Label.Text = "1 - specificity"
	p.Y.Label.Text = "Sensitivity"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	curve, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(err, "plots.ROCCurve: curve")
	}

	diag, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return errors.Wrap(err, "plots.ROCCurve: diagonal")
	}
	diag.LineStyle.Color = color.Gray{Y: 160}
	diag.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(curve, diag)

	if err := p.Save(5*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrap(err, "plots.ROCCurve: save")
	}
	return nil
}
