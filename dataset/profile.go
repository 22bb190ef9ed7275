package dataset

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/fhrlab/ctgstat/pkg/errors"
)

// FeatureProfile summarizes the marginal distribution of one feature. It
// feeds the univariate inspection pass that precedes the multivariate
// normality tests.
type FeatureProfile struct {
	Name     string
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64
	Median   float64
	Q1       float64
	Q3       float64
	Skewness float64
	Kurtosis float64
}

// Profile computes a FeatureProfile per column.
func (t *Table) Profile() ([]FeatureProfile, error) {
	n, p := t.X.Dims()
	if n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset: Profile")
	}

	profiles := make([]FeatureProfile, p)
	for j := 0; j < p; j++ {
		col := t.Column(j)
		fp := FeatureProfile{Name: t.Names[j]}

		var err error
		if fp.Mean, err = stats.Mean(col); err != nil {
			return nil, errors.Wrapf(err, "dataset: Profile %s", t.Names[j])
		}
		if fp.StdDev, err = stats.StandardDeviationSample(col); err != nil {
			return nil, errors.Wrapf(err, "dataset: Profile %s", t.Names[j])
		}
		if fp.Min, err = stats.Min(col); err != nil {
			return nil, errors.Wrapf(err, "dataset: Profile %s", t.Names[j])
		}
		if fp.Max, err = stats.Max(col); err != nil {
			return nil, errors.Wrapf(err, "dataset: Profile %s", t.Names[j])
		}
		if fp.Median, err = stats.Median(col); err != nil {
			return nil, errors.Wrapf(err, "dataset: Profile %s", t.Names[j])
		}
		if fp.Q1, err = stats.Percentile(col, 25); err != nil {
			return nil, errors.Wrapf(err, "dataset: Profile %s", t.Names[j])
		}
		if fp.Q3, err = stats.Percentile(col, 75); err != nil {
			return nil, errors.Wrapf(err, "dataset: Profile %s", t.Names[j])
		}

		fp.Skewness = momentRatio(col, fp.Mean, fp.StdDev, 3)
		fp.Kurtosis = momentRatio(col, fp.Mean, fp.StdDev, 4) - 3

		profiles[j] = fp
	}
	return profiles, nil
}

// momentRatio computes the k-th standardized sample moment.
func momentRatio(xs []float64, mean, sd float64, k int) float64 {
	if sd == 0 || len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += math.Pow((x-mean)/sd, float64(k))
	}
	return sum / float64(len(xs))
}
