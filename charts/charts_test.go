package charts

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"

	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.ReadCSV(strings.NewReader(`Period,ParentLocation,Dim1,Location,FactValueNumeric
2015,Europe,Urban,Paris,12
2016,Europe,Rural,Lyon,8
2015,Africa,Urban,Cairo,40
2016,Africa,Towns,Lagos,
2016,Africa,Urban,Cairo,50
2015,Europe,Urban,Paris,14
`))
	require.NoError(t, err)
	return tbl
}

func TestGroupValues(t *testing.T) {
	groups, err := GroupValues(sampleTable(t), dataset.ColRegion, dataset.ColValue)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, Group{Name: "Europe", Values: []float64{12, 8, 14}}, groups[0])
	assert.Equal(t, Group{Name: "Africa", Values: []float64{40, 50}}, groups[1])
}

func TestTrendSeries(t *testing.T) {
	series, err := TrendSeries(sampleTable(t), dataset.ColRegion, dataset.ColValue)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, "Europe", series[0].Name)
	assert.Equal(t, []int{2015, 2016}, series[0].Period)
	assert.Equal(t, []float64{13, 8}, series[0].Mean)
	assert.Equal(t, []int{2015, 2016}, series[1].Period)
	assert.Equal(t, []float64{40, 50}, series[1].Mean)
}

func TestRenderAllCharts(t *testing.T) {
	tbl := sampleTable(t)
	flagged := withFlags(t, tbl)
	residuals := []float64{-2, 0, -1, 2, 1, 0.5}
	fitted := []float64{12, 12, 5, 12, 5, 12}

	trend, err := TrendSeries(tbl, dataset.ColRegion, dataset.ColValue)
	require.NoError(t, err)

	tests := []struct {
		name  string
		build func() (*plot.Plot, error)
	}{
		{"box-region", func() (*plot.Plot, error) { return BoxByGroup(tbl, dataset.ColRegion, dataset.ColValue, "by region") }},
		{"box-type", func() (*plot.Plot, error) { return BoxByGroup(tbl, dataset.ColSettlement, dataset.ColValue, "by type") }},
		{"trend", func() (*plot.Plot, error) { return Trend(trend, "trend", dataset.ColValue) }},
		{"outliers", func() (*plot.Plot, error) { return OutlierScatter(flagged, dataset.ColValue) }},
		{"residuals", func() (*plot.Plot, error) { return ResidualsVsFitted(fitted, residuals) }},
		{"residual-hist", func() (*plot.Plot, error) { return ResidualHistogram(residuals) }},
		{"qq", func() (*plot.Plot, error) { return QQPlot(residuals) }},
		{"top", func() (*plot.Plot, error) {
			return TopBars([]string{"Cairo", "Paris", "Lyon"}, []float64{45, 13, 8}, "top", dataset.ColValue)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.build()
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, Render(&buf, p, "png", 0, 0))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic), "PNG header")
		})
	}
}

func TestRenderSVGAndBadFormat(t *testing.T) {
	p, err := ResidualHistogram([]float64{1, 2, 3})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, p, "SVG", 0, 0))
	assert.Contains(t, buf.String(), "<svg")

	err = Render(&buf, p, "gif", 0, 0)
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))
}

func TestEmptyInputs(t *testing.T) {
	empty := sampleTable(t).Empty()

	_, err := BoxByGroup(empty, dataset.ColRegion, dataset.ColValue, "")
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, err = ResidualHistogram(nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, err = QQPlot(nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, err = TopBars(nil, nil, "", "")
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, err = ResidualsVsFitted([]float64{1}, []float64{1, 2})
	var dim *errors.DimensionError
	assert.True(t, errors.As(err, &dim))
}

func TestQQPointsSymmetric(t *testing.T) {
	pts := QQPoints([]float64{3, -1, 1, -3, 0})
	require.Len(t, pts, 5)
	assert.Equal(t, []float64{-3, -1, 0, 1, 3}, []float64{pts[0].Sample, pts[1].Sample, pts[2].Sample, pts[3].Sample, pts[4].Sample})
	assert.InDelta(t, 0, pts[2].Theoretical, 1e-12)
	assert.InDelta(t, -pts[0].Theoretical, pts[4].Theoretical, 1e-12)
	assert.False(t, math.IsNaN(pts[0].Theoretical))
}

func withFlags(t *testing.T, tbl *dataset.Table) *dataset.Table {
	t.Helper()
	n := tbl.Nrow()
	iqr := make([]int, n)
	z := make([]int, n)
	iqr[4], z[2] = 1, 1
	out, err := tbl.WithColumn(series.New(iqr, series.Int, dataset.ColOutlierIQR))
	require.NoError(t, err)
	out, err = out.WithColumn(series.New(z, series.Int, dataset.ColOutlierZ))
	require.NoError(t, err)
	return out
}
