package plots

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fhrlab/ctgstat/metrics"
)

func TestScree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scree.png")
	if err := Scree([]float64{0.5, 0.25, 0.15, 0.07, 0.03}, path); err != nil {
		t.Fatalf("Scree: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("scree plot file is empty")
	}
}

func TestScreeEmpty(t *testing.T) {
	if err := Scree(nil, "unused.png"); err == nil {
		t.Error("Scree with no ratios succeeded, want error")
	}
}

func TestROCCurve(t *testing.T) {
	points := []metrics.OperatingPoint{
		{Threshold: 0.9, Sensitivity: 0.2, Specificity: 1.0},
		{Threshold: 0.5, Sensitivity: 0.7, Specificity: 0.8},
		{Threshold: 0.1, Sensitivity: 1.0, Specificity: 0.3},
	}
	path := filepath.Join(t.TempDir(), "roc.png")
	if err := ROCCurve(points, path); err != nil {
		t.Fatalf("ROCCurve: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("roc plot file is empty")
	}
}

func TestROCCurveEmpty(t *testing.T) {
	if err := ROCCurve(nil, "unused.png"); err == nil {
		t.Error("ROCCurve with no points succeeded, want error")
	}
}
