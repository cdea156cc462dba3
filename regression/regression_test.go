package regression

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
	"github.com/YuminosukeSato/pm25scope/pkg/log"
)

// Urban mean 12, Rural mean 5. The last two rows are incomplete.
const settlementCSV = `Dim1,Location,FactValueNumeric
Urban,Paris,10
Urban,Lyon,12
Rural,Paris,4
Urban,Lyon,14
Rural,Lyon,6
Rural,Paris,NA
NA,Lyon,8
`

func readTable(t *testing.T, data string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	return tbl
}

func quietLogger(t *testing.T) *log.TestLogger {
	t.Helper()
	prev := log.GetLogger()
	logger, _ := log.NewTestLogger(log.LevelDebug)
	log.SetLogger(logger)
	t.Cleanup(func() { log.SetLogger(prev) })
	return logger
}

func TestPrepareDataListwiseDeletion(t *testing.T) {
	quietLogger(t)
	tbl := readTable(t, settlementCSV)

	p, err := PrepareData(tbl, dataset.ColValue, []string{dataset.ColSettlement})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3, 4}, p.Index)
	assert.Equal(t, []string{"const", "Dim1_Rural"}, p.Columns)

	r, c := p.X.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 2, c)
	for i := 0; i < r; i++ {
		assert.Equal(t, 1.0, p.X.At(i, 0), "intercept row %d", i)
	}
	assert.Equal(t, []float64{0, 0, 1, 0, 1}, []float64{
		p.X.At(0, 1), p.X.At(1, 1), p.X.At(2, 1), p.X.At(3, 1), p.X.At(4, 1),
	})
	assert.Equal(t, []float64{10, 12, 4, 14, 6}, p.Y.RawVector().Data)
}

func TestPrepareDataTwoPredictors(t *testing.T) {
	quietLogger(t)
	tbl := readTable(t, settlementCSV)

	p, err := PrepareData(tbl, dataset.ColValue, []string{dataset.ColSettlement, dataset.ColLocation})
	require.NoError(t, err)
	assert.Equal(t, []string{"const", "Dim1_Rural", "Location_Lyon"}, p.Columns)
	assert.Equal(t, 1.0, p.X.At(1, 2))
	assert.Equal(t, 0.0, p.X.At(0, 2))
}

func TestPrepareDataErrors(t *testing.T) {
	quietLogger(t)
	tbl := readTable(t, settlementCSV)

	_, err := PrepareData(tbl, "PM10", []string{dataset.ColSettlement})
	var missing *errors.MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "PM10", missing.Column)

	_, err = PrepareData(tbl, dataset.ColValue, []string{"Zone"})
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Zone", missing.Column)

	_, err = PrepareData(tbl, dataset.ColLocation, []string{dataset.ColSettlement})
	var comp *errors.ComputationError
	assert.True(t, errors.As(err, &comp), "non-numeric target")

	empty := readTable(t, "Dim1,FactValueNumeric\nUrban,NA\nRural,\n")
	_, err = PrepareData(empty, dataset.ColValue, []string{dataset.ColSettlement})
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestAnalyzeTwoLevelMeanDifference(t *testing.T) {
	logger := quietLogger(t)
	tbl := readTable(t, settlementCSV)

	res, err := Analyze(tbl, dataset.ColValue, []string{dataset.ColSettlement})
	require.NoError(t, err)

	coef := res.Model.Coefficients()
	assert.InDelta(t, 12.0, coef["const"], 1e-9, "reference level mean")
	assert.InDelta(t, -7.0, coef["Dim1_Rural"], 1e-9, "difference of group means")

	d := res.Diagnostics
	assert.Equal(t, 5, d.N)
	assert.Equal(t, 2, d.K)
	assert.InDelta(t, 10.0, d.SSR, 1e-9)

	r2 := 1 - 10.0/68.8
	assert.InDelta(t, r2, float64(d.RSquared), 1e-9)
	assert.InDelta(t, 1-(1-r2)*4/3, float64(d.AdjRSquared), 1e-9)
	assert.InDelta(t, 5*math.Log(2)+4, float64(d.AIC), 1e-9)

	wantResiduals := []float64{-2, 0, -1, 2, 1}
	require.Len(t, d.Residuals, 5)
	for i, w := range wantResiduals {
		assert.InDelta(t, w, d.Residuals[i], 1e-9)
		assert.InDelta(t, d.FittedValues[i]+d.Residuals[i], res.Prepared.Y.AtVec(i), 1e-9)
	}

	require.Len(t, res.Coefficients, 2)
	assert.Equal(t, "Dim1_Rural", res.Coefficients[1].Name)
	assert.Less(t, float64(res.Coefficients[1].P), 0.05)

	assert.Equal(t, res.Model.ID, res.ID)
	assert.Empty(t, res.ResidualOutliers)
	assert.True(t, logger.ContainsMessage("diagnostics computed"))
}

func TestFitOLSSingularDesign(t *testing.T) {
	quietLogger(t)
	tbl := readTable(t, `Dim1,Zone,FactValueNumeric
Urban,City,10
Rural,Country,4
Urban,City,12
Rural,Country,6
`)

	p, err := PrepareData(tbl, dataset.ColValue, []string{dataset.ColSettlement, "Zone"})
	require.NoError(t, err)

	_, err = FitOLS(p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSingularMatrix))
	assert.Equal(t, "singular_matrix", errors.Kind(err))
}

func TestDetectResidualOutliers(t *testing.T) {
	out, err := DetectResidualOutliers([]float64{1, 2, 3, 4, 5, 20}, []int{10, 11, 12, 13, 14, 15})
	require.NoError(t, err)
	assert.Equal(t, []ResidualOutlier{{Index: 15, Residual: 20}}, out)

	out, err = DetectResidualOutliers([]float64{-20, 1, 2, 3, 4, 5}, nil)
	require.NoError(t, err)
	assert.Equal(t, []ResidualOutlier{{Index: 0, Residual: -20}}, out)

	out, err = DetectResidualOutliers([]float64{1, 1, 1}, nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = DetectResidualOutliers(nil, nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, err = DetectResidualOutliers([]float64{1, 2}, []int{0})
	var dim *errors.DimensionError
	assert.True(t, errors.As(err, &dim))
}

func TestSortedResidualOutliers(t *testing.T) {
	in := []ResidualOutlier{{Index: 1, Residual: -3}, {Index: 2, Residual: 9}, {Index: 3, Residual: 4}}
	got := SortedResidualOutliers(in)
	assert.Equal(t, []int{2, 3, 1}, []int{got[0].Index, got[1].Index, got[2].Index})
	assert.Equal(t, 1, in[0].Index, "input left untouched")
}

func TestFitOLSWithoutDesign(t *testing.T) {
	p := &Prepared{}
	_, err := FitOLS(p)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestAnalyzeConstantTarget(t *testing.T) {
	quietLogger(t)

	tests := []struct {
		name string
		data string
		n, k int
	}{
		{"two levels", "Dim1,FactValueNumeric\nUrban,10\nRural,10\nUrban,10\nRural,10\n", 4, 2},
		{"single row", "Dim1,FactValueNumeric\nUrban,10\n", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Analyze(readTable(t, tt.data), dataset.ColValue, []string{dataset.ColSettlement})
			require.NoError(t, err)

			d := res.Diagnostics
			assert.Equal(t, tt.n, d.N)
			assert.Equal(t, tt.k, d.K)
			assert.True(t, math.IsNaN(float64(d.RSquared)), "R² is undefined without target variance")
			assert.True(t, math.IsNaN(float64(d.AdjRSquared)))
			for _, f := range d.FittedValues {
				assert.InDelta(t, 10.0, f, 1e-9)
			}
			assert.InDelta(t, 10.0, res.Coefficients[0].Estimate, 1e-9)
		})
	}
}
