package charts

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/pm25scope/pkg/errors"
)

// TopBars draws horizontal bars, one per label, with the first label at
// the top.
func TopBars(labels []string, values []float64, title, xLabel string) (*plot.Plot, error) {
	if len(values) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "charts.TopBars")
	}
	if len(labels) != len(values) {
		return nil, errors.NewDimensionError("charts.TopBars", len(values), len(labels), 0)
	}

	// gonum draws category 0 at the bottom.
	n := len(values)
	rev := make(plotter.Values, n)
	names := make([]string, n)
	for i := range values {
		rev[n-1-i] = values[i]
		names[n-1-i] = labels[i]
	}

	bars, err := plotter.NewBarChart(rev, vg.Points(14))
	if err != nil {
		return nil, errors.Wrap(err, "charts.TopBars")
	}
	bars.Horizontal = true
	bars.Color = IQRColor
	bars.LineStyle.Width = vg.Length(0)

	p := newPlot(title, xLabel, "")
	p.Add(bars, plotter.NewGrid())
	p.NominalY(names...)
	return p, nil
}
