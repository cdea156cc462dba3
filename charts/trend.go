package charts

import (
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
)

// Series is one line of a trend chart: the mean value per period.
type Series struct {
	Name   string    `json:"name"`
	Period []int     `json:"period"`
	Mean   []float64 `json:"mean"`
}

// TrendSeries computes the mean of valueColumn per Period for every level
// of groupColumn. Periods are ascending; series keep first-appearance order.
func TrendSeries(t *dataset.Table, groupColumn, valueColumn string) ([]Series, error) {
	periods, err := t.Floats(dataset.ColPeriod)
	if err != nil {
		return nil, err
	}
	groups, err := t.Strings(groupColumn)
	if err != nil {
		return nil, err
	}
	missing, err := t.Missing(groupColumn)
	if err != nil {
		return nil, err
	}
	values, err := t.Floats(valueColumn)
	if err != nil {
		return nil, err
	}

	type acc struct{ sum, n float64 }
	pos := map[string]int{}
	var names []string
	var cells []map[int]*acc
	for i, v := range values {
		if missing[i] || v != v || periods[i] != periods[i] {
			continue
		}
		j, ok := pos[groups[i]]
		if !ok {
			j = len(names)
			pos[groups[i]] = j
			names = append(names, groups[i])
			cells = append(cells, map[int]*acc{})
		}
		year := int(periods[i])
		a := cells[j][year]
		if a == nil {
			a = &acc{}
			cells[j][year] = a
		}
		a.sum += v
		a.n++
	}

	out := make([]Series, len(names))
	for j, name := range names {
		years := make([]int, 0, len(cells[j]))
		for y := range cells[j] {
			years = append(years, y)
		}
		sort.Ints(years)
		s := Series{Name: name, Period: years, Mean: make([]float64, len(years))}
		for k, y := range years {
			s.Mean[k] = cells[j][y].sum / cells[j][y].n
		}
		out[j] = s
	}
	return out, nil
}

// Trend draws one line per series.
func Trend(series []Series, title, yLabel string) (*plot.Plot, error) {
	if len(series) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "charts.Trend")
	}

	p := newPlot(title, dataset.ColPeriod, yLabel)
	p.Legend.Top = true
	for i, s := range series {
		xys := make(plotter.XYs, len(s.Period))
		for k := range s.Period {
			xys[k].X = float64(s.Period[k])
			xys[k].Y = s.Mean[k]
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, errors.Wrapf(err, "charts.Trend: series %q", s.Name)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		points.Color = plotutil.Color(i)
		points.Shape = draw.CircleGlyph{}
		p.Add(line, points)
		p.Legend.Add(s.Name, line, points)
	}
	p.X.Tick.Marker = yearTicks{}
	p.Add(plotter.NewGrid())
	return p, nil
}

// yearTicks labels whole years only.
type yearTicks struct{}

func (yearTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for y := int(min); float64(y) <= max; y++ {
		if float64(y) < min {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: float64(y), Label: strconv.Itoa(y)})
	}
	return ticks
}
