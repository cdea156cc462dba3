package linear

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/pm25scope/core/model"
	"github.com/YuminosukeSato/pm25scope/core/parallel"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
	"github.com/YuminosukeSato/pm25scope/pkg/log"
)

// OLS is an ordinary least squares model over a design matrix that already
// contains its intercept column.
//
// Coefficients are solved from the normal equations β = (XᵀX)⁻¹Xᵀy after an
// SVD rank check on X. A fitted OLS keeps its training data so that fitted
// values, residuals and coefficient inference can be derived without the
// caller holding on to X and y.
type OLS struct {
	model.BaseEstimator

	// ID identifies one fit; it is regenerated on every Fit.
	ID string

	// ColumnNames labels the columns of X, e.g. "const", "Dim1_Rural".
	ColumnNames []string

	Coef     *mat.VecDense
	Rank     int
	Singular []float64
	NObs     int
	NParams  int

	x      *mat.Dense
	y      *mat.VecDense
	xtxInv *mat.Dense
	fitted *mat.VecDense

	rcond             float64
	parallelThreshold int
}

var _ model.Regressor = (*OLS)(nil)

// NewOLS creates an unfitted model whose coefficients will be labelled by
// columnNames.
//
// Example:
//
//	m := linear.NewOLS([]string{"const", "Dim1_Rural"})
//	if err := m.Fit(X, y); err != nil { ... }
//	coef := m.Coefficients()
func NewOLS(columnNames []string, opts ...Option) *OLS {
	m := defaultOLS()
	m.ColumnNames = append([]string(nil), columnNames...)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fit estimates the coefficients. A design matrix of less than full column
// rank returns a ModelError wrapping ErrSingularMatrix.
func (m *OLS) Fit(X mat.Matrix, y mat.Vector) error {
	m.Reset()

	n, p := X.Dims()
	if n == 0 || p == 0 {
		return errors.NewModelError("OLS.Fit", "empty data", errors.ErrEmptyData)
	}
	if y.Len() != n {
		return errors.NewDimensionError("OLS.Fit", n, y.Len(), 0)
	}
	if len(m.ColumnNames) != p {
		return errors.NewDimensionError("OLS.Fit", len(m.ColumnNames), p, 1)
	}

	m.x = mat.DenseCopyOf(X)
	m.y = mat.VecDenseCopyOf(y)

	// Rank check on X itself; XᵀX squares the condition number.
	var svd mat.SVD
	if ok := svd.Factorize(m.x, mat.SVDNone); !ok {
		return errors.NewModelError("OLS.Fit", "SVD factorization failed", errors.ErrSingularMatrix)
	}
	m.Singular = svd.Values(nil)
	m.Rank = svd.Rank(m.rcond)
	if m.Rank < p {
		return errors.NewModelError("OLS.Fit",
			fmt.Sprintf("rank deficient design matrix (rank %d < %d columns)", m.Rank, p),
			errors.ErrSingularMatrix)
	}

	var xtx mat.Dense
	xtx.Mul(m.x.T(), m.x)

	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return errors.NewModelError("OLS.Fit", "XᵀX is not invertible", errors.ErrSingularMatrix)
	}

	var xty mat.VecDense
	xty.MulVec(m.x.T(), m.y)

	coef := mat.NewVecDense(p, nil)
	coef.MulVec(&xtxInv, &xty)
	if err := errors.CheckNumericalStability("OLS.Fit", coef.RawVector().Data); err != nil {
		return err
	}

	m.Coef = coef
	m.xtxInv = &xtxInv
	m.NObs = n
	m.NParams = p
	m.ID = uuid.NewString()
	m.SetFitted()

	m.fitted, _ = m.Predict(m.x)

	logger := log.GetLoggerWithName("linear.ols")
	logger.Info("OLS fitted",
		log.ModelNameKey, "OLS",
		log.EstimatorIDKey, m.ID,
		log.OperationKey, log.OperationFit,
		log.RowsKey, n,
		log.ParamsKey, p,
	)
	return nil
}

// Predict returns Xβ.
func (m *OLS) Predict(X mat.Matrix) (*mat.VecDense, error) {
	if err := m.RequireFitted("OLS", "Predict"); err != nil {
		return nil, err
	}
	n, p := X.Dims()
	if p != m.NParams {
		return nil, errors.NewDimensionError("OLS.Predict", m.NParams, p, 1)
	}

	pred := mat.NewVecDense(n, nil)
	parallel.ParallelizeWithThreshold(n, m.parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			var sum float64
			for j := 0; j < p; j++ {
				sum += X.At(i, j) * m.Coef.AtVec(j)
			}
			pred.SetVec(i, sum)
		}
	})
	return pred, nil
}

// Target returns a copy of the training target.
func (m *OLS) Target() *mat.VecDense {
	if !m.IsFitted() {
		return nil
	}
	return mat.VecDenseCopyOf(m.y)
}

// FittedValues returns a copy of the in-sample predictions.
func (m *OLS) FittedValues() *mat.VecDense {
	if !m.IsFitted() {
		return nil
	}
	return mat.VecDenseCopyOf(m.fitted)
}

// Residuals returns y - ŷ for the training rows.
func (m *OLS) Residuals() *mat.VecDense {
	if !m.IsFitted() {
		return nil
	}
	var r mat.VecDense
	r.SubVec(m.y, m.fitted)
	return &r
}

// Coefficients returns the estimates keyed by column name.
func (m *OLS) Coefficients() map[string]float64 {
	if !m.IsFitted() {
		return nil
	}
	out := make(map[string]float64, m.NParams)
	for j, name := range m.ColumnNames {
		out[name] = m.Coef.AtVec(j)
	}
	return out
}

// DFResid is the residual degrees of freedom n - k.
func (m *OLS) DFResid() int {
	return m.NObs - m.NParams
}

// Coefficient is one row of the coefficient table.
type Coefficient struct {
	Name     string
	Estimate float64
	StdErr   float64
	T        float64
	P        float64
}

// Inference returns estimates, standard errors, t statistics and two-sided
// p-values from Student's t with n - k degrees of freedom. Without residual
// degrees of freedom the inference columns are NaN.
func (m *OLS) Inference() ([]Coefficient, error) {
	if err := m.RequireFitted("OLS", "Inference"); err != nil {
		return nil, err
	}

	df := m.DFResid()
	sigma2 := math.NaN()
	if df > 0 {
		var ssr float64
		res := m.Residuals()
		for i := 0; i < res.Len(); i++ {
			ssr += res.AtVec(i) * res.AtVec(i)
		}
		sigma2 = ssr / float64(df)
	}

	out := make([]Coefficient, m.NParams)
	for j, name := range m.ColumnNames {
		c := Coefficient{
			Name:     name,
			Estimate: m.Coef.AtVec(j),
			StdErr:   math.NaN(),
			T:        math.NaN(),
			P:        math.NaN(),
		}
		if df > 0 {
			c.StdErr = math.Sqrt(sigma2 * m.xtxInv.At(j, j))
			c.T = c.Estimate / c.StdErr
			if !math.IsNaN(c.T) {
				dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
				c.P = 2 * dist.Survival(math.Abs(c.T))
			}
		}
		out[j] = c
	}
	return out, nil
}
