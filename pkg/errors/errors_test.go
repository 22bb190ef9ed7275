package errors

import (
	"strings"
	"testing"
)

func TestNotFittedError(t *testing.T) {
	err := NewNotFittedError("PCA", "Transform")

	var nf *NotFittedError
	if !As(err, &nf) {
		t.Fatalf("As() failed to recover *NotFittedError from %v", err)
	}
	if nf.ModelName != "PCA" || nf.Method != "Transform" {
		t.Errorf("unexpected fields: %+v", nf)
	}
	if !strings.Contains(err.Error(), "not fitted") {
		t.Errorf("message = %q, want it to mention 'not fitted'", err.Error())
	}
}

func TestDimensionError(t *testing.T) {
	tests := []struct {
		name string
		axis int
		want string
	}{
		{name: "row axis", axis: 0, want: "rows"},
		{name: "column axis", axis: 1, want: "columns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDimensionError("ROC", 10, 7, tt.axis)
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("message = %q, want axis name %q", err.Error(), tt.want)
			}
			var de *DimensionError
			if !As(err, &de) {
				t.Fatalf("As() failed on %v", err)
			}
			if de.Expected != 10 || de.Got != 7 {
				t.Errorf("unexpected fields: %+v", de)
			}
		})
	}
}

func TestSingularMatrixError(t *testing.T) {
	err := NewSingularMatrixError("Mahalanobis", 21)
	var sme *SingularMatrixError
	if !As(err, &sme) {
		t.Fatalf("As() failed on %v", err)
	}
	if sme.Size != 21 {
		t.Errorf("Size = %d, want 21", sme.Size)
	}
}

func TestWarnHandler(t *testing.T) {
	var captured error
	SetWarningHandler(func(w error) { captured = w })
	defer SetWarningHandler(nil)

	w := NewConvergenceWarning("IRLS", 25, "")
	Warn(w)

	if captured == nil {
		t.Fatal("warning handler was not called")
	}
	if !strings.Contains(captured.Error(), "25 iterations") {
		t.Errorf("warning = %q, want iteration count", captured.Error())
	}
}

func TestWrapPreservesType(t *testing.T) {
	inner := NewValueError("RecodeBinary", "outcome has one level")
	wrapped := Wrap(inner, "stage 2")

	var ve *ValueError
	if !As(wrapped, &ve) {
		t.Fatalf("wrapping lost the ValueError type: %v", wrapped)
	}
}
