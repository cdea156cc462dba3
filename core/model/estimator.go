package model

import "gonum.org/v1/gonum/mat"

// Fitter is a supervised model trained on a design matrix and a target.
type Fitter interface {
	Fit(X mat.Matrix, y mat.Vector) error
}

// Predictor produces one prediction per row of X.
type Predictor interface {
	Predict(X mat.Matrix) (*mat.VecDense, error)
}

// Regressor is a Fitter that can also predict.
type Regressor interface {
	Fitter
	Predictor
}

// Transformer learns column statistics with Fit and applies them with
// Transform.
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (*mat.Dense, error)
	FitTransform(X mat.Matrix) (*mat.Dense, error)
}
