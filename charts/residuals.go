package charts

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/pm25scope/pkg/errors"
)

// HistogramBins is the bin count of the residual histogram.
const HistogramBins = 50

// ResidualsVsFitted scatters residuals against fitted values with a
// horizontal line at zero.
func ResidualsVsFitted(fitted, residuals []float64) (*plot.Plot, error) {
	if len(residuals) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "charts.ResidualsVsFitted")
	}
	if len(fitted) != len(residuals) {
		return nil, errors.NewDimensionError("charts.ResidualsVsFitted", len(residuals), len(fitted), 0)
	}

	xys := make(plotter.XYs, len(residuals))
	xmin, xmax := math.Inf(1), math.Inf(-1)
	for i := range residuals {
		xys[i].X, xys[i].Y = fitted[i], residuals[i]
		xmin = math.Min(xmin, fitted[i])
		xmax = math.Max(xmax, fitted[i])
	}

	p := newPlot("Residuals vs fitted", "fitted", "residual")
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, errors.Wrap(err, "charts.ResidualsVsFitted")
	}
	s.GlyphStyle.Color = BaseColor
	s.GlyphStyle.Shape = draw.CircleGlyph{}

	zero := plotter.NewFunction(func(float64) float64 { return 0 })
	zero.XMin, zero.XMax = xmin, xmax
	zero.Color = IQRColor
	zero.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}

	p.Add(s, zero, plotter.NewGrid())
	return p, nil
}

// ResidualHistogram bins the residuals into HistogramBins bins.
func ResidualHistogram(residuals []float64) (*plot.Plot, error) {
	if len(residuals) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "charts.ResidualHistogram")
	}
	h, err := plotter.NewHist(plotter.Values(residuals), HistogramBins)
	if err != nil {
		return nil, errors.Wrap(err, "charts.ResidualHistogram")
	}
	h.FillColor = BaseColor

	p := newPlot("Residual distribution", "residual", "count")
	p.Add(h)
	return p, nil
}

// QQPoint pairs a theoretical standard normal quantile with an observed
// residual.
type QQPoint struct {
	Theoretical float64
	Sample      float64
}

// QQPoints sorts the residuals and pairs the i-th (1-based) with the
// standard normal quantile at i/(n+1).
func QQPoints(residuals []float64) []QQPoint {
	sorted := append([]float64(nil), residuals...)
	sort.Float64s(sorted)
	n := float64(len(sorted))
	out := make([]QQPoint, len(sorted))
	for i, r := range sorted {
		out[i] = QQPoint{
			Theoretical: distuv.UnitNormal.Quantile(float64(i+1) / (n + 1)),
			Sample:      r,
		}
	}
	return out
}

// QQPlot draws the normal Q-Q plot of the residuals with the reference
// line mean + std·x.
func QQPlot(residuals []float64) (*plot.Plot, error) {
	if len(residuals) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "charts.QQPlot")
	}

	pts := QQPoints(residuals)
	xys := make(plotter.XYs, len(pts))
	for i, q := range pts {
		xys[i].X, xys[i].Y = q.Theoretical, q.Sample
	}

	p := newPlot("Normal Q-Q", "theoretical quantile", "sample quantile")
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, errors.Wrap(err, "charts.QQPlot")
	}
	s.GlyphStyle.Color = BaseColor
	s.GlyphStyle.Shape = draw.CircleGlyph{}

	mean, std := stat.MeanStdDev(residuals, nil)
	if std != std {
		std = 0
	}
	ref := plotter.NewFunction(func(x float64) float64 { return mean + std*x })
	ref.XMin, ref.XMax = pts[0].Theoretical, pts[len(pts)-1].Theoretical
	ref.Color = ReferenceColor

	p.Add(s, ref, plotter.NewGrid())
	return p, nil
}
