package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestNewMissingColumnError(t *testing.T) {
	err := NewMissingColumnError("DetectOutliers", "FactValueNumeric")

	want := "pm25scope: DetectOutliers: missing required column 'FactValueNumeric'"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	formatted := fmt.Sprintf("%+v", err)
	if !strings.Contains(formatted, "errors_test.go") {
		t.Error("Expected stack trace to contain test file name")
	}

	var mcErr *MissingColumnError
	if !As(err, &mcErr) {
		t.Fatal("Error should be castable to *MissingColumnError")
	}
	if mcErr.Column != "FactValueNumeric" {
		t.Errorf("Column = %q", mcErr.Column)
	}
}

func TestNewComputationError(t *testing.T) {
	cause := fmt.Errorf("column type is string")
	err := NewComputationError("DetectOutliers", "Location", cause)

	want := "pm25scope: DetectOutliers: cannot compute on column 'Location': column type is string"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var compErr *ComputationError
	if !As(err, &compErr) {
		t.Fatal("Error should be castable to *ComputationError")
	}
	if !Is(err, cause) {
		t.Error("ComputationError should unwrap to its cause")
	}
}

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "OLS.Fit",
			kind:    "rank deficient",
			err:     ErrSingularMatrix,
			wantMsg: "pm25scope: OLS.Fit: rank deficient: singular matrix",
		},
		{
			name:    "without original error",
			op:      "OLS.Predict",
			kind:    "not fitted",
			err:     nil,
			wantMsg: "pm25scope: OLS.Predict: not fitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
			if tt.err != nil && !Is(err, tt.err) {
				t.Error("ModelError should unwrap to its cause")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("OLS.Fit", 10, 9, 0)

	want := "pm25scope: OLS.Fit: dimension mismatch on axis 0 (rows). Expected 10, got 9"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("OLS", "Predict")

	want := "pm25scope: OLS: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"missing column", NewMissingColumnError("op", "x"), "missing_column"},
		{"computation", NewComputationError("op", "x", fmt.Errorf("bad")), "computation"},
		{"empty", Wrap(ErrEmptyData, "quantile"), "empty_input"},
		{"singular", NewModelError("OLS.Fit", "rank deficient", ErrSingularMatrix), "singular_matrix"},
		{"value", NewValueError("op", "bad"), "invalid_input"},
		{"other", fmt.Errorf("plain"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s: %d rows", "Quantile", 0)

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}
	if !strings.Contains(wrapped.Error(), "in Quantile: 0 rows") {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
}

func TestWarnUsesZerologSink(t *testing.T) {
	var got []error
	SetZerologWarnFunc(func(w error) { got = append(got, w) })
	defer SetZerologWarnFunc(nil)

	Warn(NewDataConversionWarning("string", "float64", "unparseable cell"))

	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
	if !strings.Contains(got[0].Error(), "unparseable cell") {
		t.Errorf("unexpected warning %q", got[0].Error())
	}
}

func TestCheckNumericalStability(t *testing.T) {
	if err := CheckNumericalStability("coef", []float64{1, 2, 3}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := CheckNumericalStability("coef", []float64{1, math.NaN()})
	var instErr *NumericalInstabilityError
	if !As(err, &instErr) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if err := CheckScalar("ssr", math.Inf(1)); err == nil {
		t.Error("expected error for Inf")
	}
}
