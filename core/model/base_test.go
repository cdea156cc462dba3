package model

import (
	"testing"

	"github.com/YuminosukeSato/pm25scope/pkg/errors"
)

func TestBaseEstimatorState(t *testing.T) {
	var e BaseEstimator

	if e.IsFitted() {
		t.Fatal("zero value should not be fitted")
	}
	err := e.RequireFitted("OLS", "Predict")
	var nf *errors.NotFittedError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFittedError, got %v", err)
	}

	e.SetFitted()
	if !e.IsFitted() || e.RequireFitted("OLS", "Predict") != nil {
		t.Error("estimator should be fitted after SetFitted")
	}

	e.Reset()
	if e.IsFitted() {
		t.Error("Reset should clear the fitted state")
	}
}
