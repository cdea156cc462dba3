package metrics

import (
	"math"

	"github.com/YuminosukeSato/pm25scope/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// checkPair validates that yTrue and yPred are non-empty and aligned.
func checkPair(op string, yTrue, yPred *mat.VecDense) (int, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.Wrapf(errors.ErrEmptyData, "%s", op)
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// SSR returns the sum of squared residuals Σ(yTrue - yPred)².
func SSR(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("SSR", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}
	return sum, nil
}

// MSE computes the mean squared error.
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	ssr, err := SSR(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	// MSE = (1/n) * Σ(yTrue - yPred)²
	return ssr / float64(yTrue.Len()), nil
}

// RMSE computes the root mean squared error.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE computes the mean absolute error.
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// R2Score computes the coefficient of determination 1 - SSR/SST.
// A target without variance has no defined R²; NaN is returned and an
// UndefinedMetricWarning is emitted.
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkPair("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	var sst, ssr float64
	for i := 0; i < n; i++ {
		yt := yTrue.AtVec(i)
		yp := yPred.AtVec(i)
		sst += (yt - yMean) * (yt - yMean)
		ssr += (yt - yp) * (yt - yp)
	}

	if sst == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("R2Score", "no variance in target", math.NaN()))
		return math.NaN(), nil
	}
	return 1 - ssr/sst, nil
}

// AdjustedR2 penalises r2 for the number of fitted parameters k (intercept
// included) over n observations: 1 - (1-R²)(n-1)/(n-k).
//
// With no residual degrees of freedom the statistic is undefined; NaN is
// returned and an UndefinedMetricWarning is emitted.
func AdjustedR2(r2 float64, n, k int) (float64, error) {
	if n <= 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "AdjustedR2")
	}
	if k <= 0 {
		return 0, errors.NewValueError("AdjustedR2", "number of parameters must be positive")
	}
	if n-k <= 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("AdjustedR2", "no residual degrees of freedom", math.NaN()))
		return math.NaN(), nil
	}
	return 1 - (1-r2)*float64(n-1)/float64(n-k), nil
}

// AIC returns the Akaike information criterion n·ln(SSR/n) + 2k for a
// Gaussian model with k parameters. A perfect fit (SSR = 0) gives -Inf.
func AIC(ssr float64, n, k int) (float64, error) {
	if n <= 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "AIC")
	}
	if ssr < 0 {
		return 0, errors.NewValueError("AIC", "sum of squared residuals must be non-negative")
	}
	return float64(n)*math.Log(ssr/float64(n)) + 2*float64(k), nil
}
