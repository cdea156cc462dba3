// Package model holds the fitted-state bookkeeping and the small interfaces
// shared by the estimators and transformers in this module.
package model

import "github.com/YuminosukeSato/pm25scope/pkg/errors"

// EstimatorState is the fitted state of an estimator.
type EstimatorState int

const (
	// NotFitted is the state before a successful Fit.
	NotFitted EstimatorState = iota
	// Fitted is the state after a successful Fit.
	Fitted
)

// BaseEstimator is embedded by every estimator to track its fitted state.
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted reports whether Fit has completed.
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted marks the estimator as fitted.
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset returns the estimator to NotFitted.
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}

// RequireFitted returns a NotFittedError naming modelName and method when
// the estimator has not been fitted.
func (e *BaseEstimator) RequireFitted(modelName, method string) error {
	if !e.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}
