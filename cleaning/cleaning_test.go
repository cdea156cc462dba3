package cleaning

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
	"github.com/YuminosukeSato/pm25scope/pkg/log"
)

func valueTable(t *testing.T, values []float64) *dataset.Table {
	t.Helper()
	tbl, err := dataset.New(series.New(values, series.Float, dataset.ColValue))
	require.NoError(t, err)
	return tbl
}

func floats(t *testing.T, tbl *dataset.Table, column string) []float64 {
	t.Helper()
	v, err := tbl.Floats(column)
	require.NoError(t, err)
	return v
}

func quietLogger(t *testing.T) *log.TestLogger {
	t.Helper()
	prev := log.GetLogger()
	logger, _ := log.NewTestLogger(log.LevelInfo)
	log.SetLogger(logger)
	t.Cleanup(func() { log.SetLogger(prev) })
	return logger
}

func TestDetectOutliersIQR(t *testing.T) {
	logger := quietLogger(t)

	out, err := DetectOutliers(valueTable(t, []float64{1, 2, 3, 4, 5, 20}), dataset.ColValue)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0, 0, 0, 0, 1}, floats(t, out, dataset.ColOutlierIQR))
	assert.Equal(t, []string{dataset.ColValue, dataset.ColOutlierIQR, dataset.ColZScore, dataset.ColOutlierZ}, out.Names())
	assert.True(t, logger.ContainsMessage("outliers detected"))
	assert.True(t, logger.ContainsField(log.OutliersKey, 1.0))
}

func TestDetectOutliersZScore(t *testing.T) {
	quietLogger(t)

	values := make([]float64, 0, 11)
	for i := 0; i < 10; i++ {
		values = append(values, 1)
	}
	values = append(values, 20)

	out, err := DetectOutliers(valueTable(t, values), dataset.ColValue)
	require.NoError(t, err)

	z := floats(t, out, dataset.ColZScore)
	assert.Greater(t, z[10], 3.0)
	flags := floats(t, out, dataset.ColOutlierZ)
	for i := 0; i < 10; i++ {
		assert.Equal(t, 0.0, flags[i], "row %d", i)
	}
	assert.Equal(t, 1.0, flags[10])
}

func TestDetectOutliersNaNNeverFlagged(t *testing.T) {
	quietLogger(t)

	out, err := DetectOutliers(valueTable(t, []float64{1, 2, 3, math.NaN(), 5, 20}), dataset.ColValue)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0, 0, 0, 0, 1}, floats(t, out, dataset.ColOutlierIQR))
	assert.Equal(t, 0.0, floats(t, out, dataset.ColOutlierZ)[3])
	assert.True(t, math.IsNaN(floats(t, out, dataset.ColZScore)[3]))

	allNaN, err := DetectOutliers(valueTable(t, []float64{math.NaN(), math.NaN()}), dataset.ColValue)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, floats(t, allNaN, dataset.ColOutlierIQR))
	assert.Equal(t, []float64{0, 0}, floats(t, allNaN, dataset.ColOutlierZ))
}

func TestDetectOutliersZScoreSkipsMissing(t *testing.T) {
	quietLogger(t)

	values := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 20, math.NaN()}
	out, err := DetectOutliers(valueTable(t, values), dataset.ColValue)
	require.NoError(t, err)

	z := floats(t, out, dataset.ColZScore)
	assert.InDelta(t, math.Sqrt(10), z[10], 1e-9, "mean and deviation come from the observed values")
	assert.True(t, math.IsNaN(z[11]))
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0}, floats(t, out, dataset.ColOutlierZ))
}

func TestDetectOutliersEmptyUntypedColumn(t *testing.T) {
	quietLogger(t)

	tbl, err := dataset.ReadCSV(strings.NewReader("x\n"))
	require.NoError(t, err)
	require.False(t, tbl.IsNumeric("x"))

	out, err := DetectOutliers(tbl, "x")
	require.NoError(t, err)
	assert.Equal(t, 0, out.Nrow())
	assert.Equal(t, 4, out.Ncol())
}

func TestDetectOutliersEmptyTable(t *testing.T) {
	quietLogger(t)

	out, err := DetectOutliers(valueTable(t, []float64{}), dataset.ColValue)
	require.NoError(t, err)

	assert.Equal(t, 0, out.Nrow())
	assert.ElementsMatch(t,
		[]string{dataset.ColValue, dataset.ColOutlierIQR, dataset.ColOutlierZ, dataset.ColZScore},
		out.Names())
}

func TestDetectOutliersIdempotent(t *testing.T) {
	quietLogger(t)

	once, err := DetectOutliers(valueTable(t, []float64{3, 1, 4, 1, 5, 9, 2, 6, 50, math.NaN()}), dataset.ColValue)
	require.NoError(t, err)
	twice, err := DetectOutliers(once, dataset.ColValue)
	require.NoError(t, err)

	assert.Equal(t, once.Names(), twice.Names())
	for _, col := range []string{dataset.ColOutlierIQR, dataset.ColOutlierZ} {
		assert.Equal(t, floats(t, once, col), floats(t, twice, col), col)
	}
}

func TestDetectOutliersErrors(t *testing.T) {
	quietLogger(t)

	_, err := DetectOutliers(valueTable(t, []float64{1}), "missing")
	var mc *errors.MissingColumnError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, "missing", mc.Column)

	names, err := dataset.New(series.New([]string{"a", "b"}, series.String, "Location"))
	require.NoError(t, err)
	_, err = DetectOutliers(names, "Location")
	assert.Equal(t, "computation", errors.Kind(err))
}

func TestMissingData(t *testing.T) {
	nan := math.NaN()
	tbl, err := dataset.New(
		series.New([]float64{1, nan, 3}, series.Float, "A"),
		series.New([]float64{nan, nan, 3}, series.Float, "B"),
		series.New([]float64{4, 5, 6}, series.Float, "C"),
	)
	require.NoError(t, err)

	assert.Equal(t, []MissingCount{{Column: "B", Count: 2}, {Column: "A", Count: 1}}, MissingData(tbl))

	clean, err := dataset.New(
		series.New([]float64{1, 2}, series.Float, "A"),
		series.New([]float64{3, 4}, series.Float, "B"),
	)
	require.NoError(t, err)
	assert.Empty(t, MissingData(clean))
}

func TestCountDuplicates(t *testing.T) {
	tests := []struct {
		name    string
		columns []series.Series
		want    int
	}{
		{"all duplicates", []series.Series{series.New([]int{1, 1, 1}, series.Int, "A")}, 2},
		{"no duplicates", []series.Series{series.New([]int{1, 2, 3}, series.Int, "A")}, 0},
		{
			"multi column",
			[]series.Series{
				series.New([]int{1, 2, 2}, series.Int, "A"),
				series.New([]string{"x", "y", "y"}, series.String, "B"),
			},
			1,
		},
		{"missing equals missing", []series.Series{series.New([]float64{math.NaN(), math.NaN()}, series.Float, "A")}, 1},
		{
			"floats differing beyond six decimals",
			[]series.Series{series.New([]float64{12.3456781, 12.3456789, 1e-7, 2e-7}, series.Float, "A")},
			0,
		},
		{
			"missing differs from zero",
			[]series.Series{series.New([]float64{0, math.NaN(), 0}, series.Float, "A")},
			1,
		},
		{
			"cell boundaries",
			[]series.Series{
				series.New([]string{"a;", "a"}, series.String, "A"),
				series.New([]string{"b", ";b"}, series.String, "B"),
			},
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := dataset.New(tt.columns...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, CountDuplicates(tbl))
		})
	}
}

func TestCleaningSummary(t *testing.T) {
	quietLogger(t)

	flagged, err := DetectOutliers(valueTable(t, []float64{1, 2, 3, 4, 5, 20}), dataset.ColValue)
	require.NoError(t, err)
	cleaned, err := RemoveOutliers(flagged)
	require.NoError(t, err)

	summary, err := CleaningSummary(flagged, cleaned)
	require.NoError(t, err)

	assert.Equal(t, []SummaryRow{
		{Metric: MetricTotalRows, Before: 6, After: 5},
		{Metric: MetricTotalColumns, Before: 4, After: 4},
		{Metric: MetricTotalOutliers, Before: 1, After: 0},
	}, summary.Rows)

	_, err = CleaningSummary(valueTable(t, []float64{1}), cleaned)
	assert.Equal(t, "missing_column", errors.Kind(err))
}

func TestAudit(t *testing.T) {
	quietLogger(t)

	nan := math.NaN()
	raw, err := dataset.New(
		series.New([]string{"Paris", "Lyon", "Lyon", "Nice", "Lille", "Metz", "Brest"}, series.String, dataset.ColLocation),
		series.New([]float64{1, 2, 2, 4, nan, 5, 20}, series.Float, dataset.ColValue),
	)
	require.NoError(t, err)

	report, err := Audit(raw, dataset.ColValue)
	require.NoError(t, err)

	assert.Equal(t, []MissingCount{{Column: dataset.ColValue, Count: 1}}, report.Missing)
	assert.Equal(t, 1, report.Duplicates, "the second Lyon row repeats the first")
	assert.Equal(t, 1, report.IQROutliers)
	assert.Equal(t, 6, report.Cleaned.Nrow())
	require.Len(t, report.RemovedSample, 1)
	assert.Equal(t, "Brest", report.RemovedSample[0][dataset.ColLocation])

	rows, ok := report.Summary.Get(MetricTotalRows)
	require.True(t, ok)
	assert.Equal(t, 7, rows.Before)
	assert.Equal(t, 6, rows.After)
}
