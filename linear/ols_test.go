package linear

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pm25scope/pkg/errors"
	"github.com/YuminosukeSato/pm25scope/pkg/log"
)

func withTestLogger(t *testing.T) *log.TestLogger {
	t.Helper()
	prev := log.GetLogger()
	logger, _ := log.NewTestLogger(log.LevelDebug)
	log.SetLogger(logger)
	t.Cleanup(func() { log.SetLogger(prev) })
	return logger
}

func TestOLSRecoversExactLine(t *testing.T) {
	logger := withTestLogger(t)

	// y = 1 + 2x
	X := mat.NewDense(4, 2, []float64{
		1, 0,
		1, 1,
		1, 2,
		1, 3,
	})
	y := mat.NewVecDense(4, []float64{1, 3, 5, 7})

	m := NewOLS([]string{"const", "x"})
	require.NoError(t, m.Fit(X, y))

	coef := m.Coefficients()
	assert.InDelta(t, 1.0, coef["const"], 1e-10)
	assert.InDelta(t, 2.0, coef["x"], 1e-10)
	assert.Equal(t, 2, m.Rank)
	assert.Equal(t, 2, m.DFResid())
	assert.NotEmpty(t, m.ID)

	res := m.Residuals()
	for i := 0; i < res.Len(); i++ {
		assert.InDelta(t, 0.0, res.AtVec(i), 1e-10)
	}

	pred, err := m.Predict(mat.NewDense(1, 2, []float64{1, 10}))
	require.NoError(t, err)
	assert.InDelta(t, 21.0, pred.AtVec(0), 1e-10)

	assert.True(t, logger.ContainsMessage("OLS fitted"))
	assert.True(t, logger.ContainsField(log.ModelNameKey, "OLS"))
}

func TestOLSInference(t *testing.T) {
	withTestLogger(t)

	X := mat.NewDense(5, 2, []float64{
		1, 1,
		1, 2,
		1, 3,
		1, 4,
		1, 5,
	})
	y := mat.NewVecDense(5, []float64{2.1, 3.9, 6.2, 7.8, 10.1})

	m := NewOLS([]string{"const", "x"})
	require.NoError(t, m.Fit(X, y))

	table, err := m.Inference()
	require.NoError(t, err)
	require.Len(t, table, 2)

	// slope = Sxy/Sxx = 19.9/10, intercept = ybar - slope·xbar
	assert.InDelta(t, 1.99, table[1].Estimate, 1e-10)
	assert.InDelta(t, 6.02-1.99*3, table[0].Estimate, 1e-10)

	// SSR = Σr², se(slope) = sqrt(SSR/(n-2) / Sxx)
	res := m.Residuals()
	ssr := mat.Dot(res, res)
	assert.InDelta(t, math.Sqrt(ssr/3/10), table[1].StdErr, 1e-10)
	assert.InDelta(t, table[1].Estimate/table[1].StdErr, table[1].T, 1e-10)
	assert.True(t, table[1].P > 0 && table[1].P < 0.001, "slope should be highly significant, p=%v", table[1].P)
}

func TestOLSSingular(t *testing.T) {
	withTestLogger(t)

	tests := []struct {
		name string
		X    *mat.Dense
		y    *mat.VecDense
	}{
		{
			name: "duplicate column",
			X:    mat.NewDense(3, 2, []float64{1, 1, 1, 1, 1, 1}),
			y:    mat.NewVecDense(3, []float64{1, 2, 3}),
		},
		{
			name: "more columns than rows",
			X:    mat.NewDense(1, 2, []float64{1, 0}),
			y:    mat.NewVecDense(1, []float64{4}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewOLS([]string{"const", "x"})
			err := m.Fit(tt.X, tt.y)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrSingularMatrix))
			assert.Equal(t, "singular_matrix", errors.Kind(err))
			assert.False(t, m.IsFitted())
		})
	}
}

func TestOLSValidation(t *testing.T) {
	m := NewOLS([]string{"const"})

	_, err := m.Predict(mat.NewDense(1, 1, []float64{1}))
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	err = m.Fit(mat.NewDense(2, 1, []float64{1, 1}), mat.NewVecDense(3, []float64{1, 2, 3}))
	var dim *errors.DimensionError
	assert.True(t, errors.As(err, &dim))

	err = NewOLS([]string{"a", "b"}).Fit(mat.NewDense(2, 1, []float64{1, 1}), mat.NewVecDense(2, []float64{1, 2}))
	assert.True(t, errors.As(err, &dim), "column names must match X")
}

func TestOLSNoResidualDegreesOfFreedom(t *testing.T) {
	withTestLogger(t)

	m := NewOLS([]string{"const", "x"})
	require.NoError(t, m.Fit(
		mat.NewDense(2, 2, []float64{1, 0, 1, 1}),
		mat.NewVecDense(2, []float64{3, 5}),
	))

	table, err := m.Inference()
	require.NoError(t, err)
	assert.InDelta(t, 3.0, table[0].Estimate, 1e-10)
	assert.True(t, math.IsNaN(table[0].StdErr))
	assert.True(t, math.IsNaN(table[1].P))
}
