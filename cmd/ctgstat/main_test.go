package main

import (
	"testing"

	"github.com/fhrlab/ctgstat/pkg/errors"
)

func TestSkippedStageClassification(t *testing.T) {
	err := errSkipped("load")
	if !errors.Is(err, errStageSkipped) {
		t.Errorf("errSkipped not recognized as a skip: %v", err)
	}
	if errors.Is(errors.New("irls diverged"), errStageSkipped) {
		t.Error("ordinary error classified as a skip")
	}
}
