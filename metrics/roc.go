// Package metrics computes the evaluation artifacts the pipeline reads:
// ROC curves with threshold queries, AUC, and confusion matrices.
package metrics

import (
	"fmt"
	"sort"

	"github.com/fhrlab/ctgstat/pkg/errors"
)

// OperatingPoint is one (threshold, sensitivity, specificity) triple.
type OperatingPoint struct {
	Threshold   float64
	Sensitivity float64
	Specificity float64
}

// Curve is an ROC curve over the distinct predicted scores, ordered by
// ascending threshold. Classification is score >= threshold, so sensitivity
// is non-increasing and specificity non-decreasing along the curve.
type Curve struct {
	Points []OperatingPoint
}

// ROC builds the ROC curve for binary outcomes yTrue against predicted
// scores. Both outcome levels must be present.
func ROC(yTrue, scores []float64) (Curve, error) {
	if len(yTrue) == 0 {
		return Curve{}, errors.Wrap(errors.ErrEmptyData, "ROC")
	}
	if len(scores) != len(yTrue) {
		return Curve{}, errors.NewDimensionError("ROC", len(yTrue), len(scores), 0)
	}

	var pos, neg int
	for _, v := range yTrue {
		switch v {
		case 1:
			pos++
		case 0:
			neg++
		default:
			return Curve{}, errors.NewValueError("ROC", "outcome vector must contain only 0 and 1")
		}
	}
	if pos == 0 || neg == 0 {
		return Curve{}, errors.NewValueError("ROC", "outcome vector must have exactly two distinct levels")
	}

	thresholds := distinctSorted(scores)
	points := make([]OperatingPoint, 0, len(thresholds))
	for _, t := range thresholds {
		var tp, tn int
		for i, s := range scores {
			if s >= t {
				if yTrue[i] == 1 {
					tp++
				}
			} else {
				if yTrue[i] == 0 {
					tn++
				}
			}
		}
		points = append(points, OperatingPoint{
			Threshold:   t,
			Sensitivity: float64(tp) / float64(pos),
			Specificity: float64(tn) / float64(neg),
		})
	}
	return Curve{Points: points}, nil
}

// AUC integrates the curve by the trapezoid rule over (false positive rate,
// true positive rate), closing the path at (0, 0). The result lies in [0, 1].
func (c Curve) AUC() float64 {
	// Ascending threshold means descending FPR; walk from (1, 1) down to
	// the virtual all-negative endpoint (0, 0).
	area := 0.0
	prevFPR, prevTPR := 1.0, 1.0
	for _, p := range c.Points {
		fpr := 1 - p.Specificity
		area += (prevFPR - fpr) * (prevTPR + p.Sensitivity) / 2
		prevFPR, prevTPR = fpr, p.Sensitivity
	}
	area += prevFPR * prevTPR / 2
	return area
}

// Youden returns the operating point maximizing sensitivity+specificity-1,
// the default threshold choice.
func (c Curve) Youden() (OperatingPoint, error) {
	if len(c.Points) == 0 {
		return OperatingPoint{}, errors.Wrap(errors.ErrEmptyData, "Curve.Youden")
	}
	best := c.Points[0]
	bestJ := best.Sensitivity + best.Specificity - 1
	for _, p := range c.Points[1:] {
		if j := p.Sensitivity + p.Specificity - 1; j > bestJ {
			best, bestJ = p, j
		}
	}
	return best, nil
}

// ThresholdForSensitivity returns the operating point with the largest
// threshold whose sensitivity is still at least minSens, i.e. the most
// specific classifier meeting the sensitivity target. This replaces index
// lookups into the threshold list, which do not survive refits.
func (c Curve) ThresholdForSensitivity(minSens float64) (OperatingPoint, error) {
	if len(c.Points) == 0 {
		return OperatingPoint{}, errors.Wrap(errors.ErrEmptyData, "Curve.ThresholdForSensitivity")
	}
	if minSens < 0 || minSens > 1 {
		return OperatingPoint{}, errors.NewValueError("Curve.ThresholdForSensitivity",
			fmt.Sprintf("sensitivity target %v outside [0, 1]", minSens))
	}

	// Sensitivity is non-increasing in threshold, so the last qualifying
	// point has the largest threshold.
	found := false
	var best OperatingPoint
	for _, p := range c.Points {
		if p.Sensitivity >= minSens {
			best = p
			found = true
		}
	}
	if !found {
		return OperatingPoint{}, errors.NewValueError("Curve.ThresholdForSensitivity",
			fmt.Sprintf("no threshold reaches sensitivity %v", minSens))
	}
	return best, nil
}

func distinctSorted(xs []float64) []float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	out := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
