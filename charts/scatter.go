package charts

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
)

// OutlierScatter plots valueColumn against row position for a table
// flagged by cleaning.DetectOutliers. IQR outliers are red and Z-score
// outliers green; a row flagged by both is drawn in both layers.
func OutlierScatter(flagged *dataset.Table, valueColumn string) (*plot.Plot, error) {
	values, err := flagged.Floats(valueColumn)
	if err != nil {
		return nil, err
	}
	iqr, err := flagged.Floats(dataset.ColOutlierIQR)
	if err != nil {
		return nil, err
	}
	z, err := flagged.Floats(dataset.ColOutlierZ)
	if err != nil {
		return nil, err
	}

	var base, iqrPts, zPts plotter.XYs
	for i, v := range values {
		if v != v {
			continue
		}
		pt := plotter.XY{X: float64(i), Y: v}
		base = append(base, pt)
		if iqr[i] == 1 {
			iqrPts = append(iqrPts, pt)
		}
		if z[i] == 1 {
			zPts = append(zPts, pt)
		}
	}
	if len(base) == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyData, "charts.OutlierScatter: no %s values", valueColumn)
	}

	p := newPlot("Outlier detection", "row", valueColumn)
	p.Legend.Top = true
	layers := []struct {
		name   string
		xys    plotter.XYs
		color  color.Color
		radius vg.Length
	}{
		{"all", base, BaseColor, vg.Points(2)},
		{"IQR outlier", iqrPts, IQRColor, vg.Points(4)},
		{"Z-score outlier", zPts, ZColor, vg.Points(3)},
	}
	for _, l := range layers {
		if len(l.xys) == 0 {
			continue
		}
		s, err := plotter.NewScatter(l.xys)
		if err != nil {
			return nil, errors.Wrap(err, "charts.OutlierScatter")
		}
		s.GlyphStyle.Color = l.color
		s.GlyphStyle.Radius = l.radius
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add(l.name, s)
	}
	p.Add(plotter.NewGrid())
	return p, nil
}
