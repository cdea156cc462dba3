package charts

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
)

// Group is a labelled set of values.
type Group struct {
	Name   string
	Values []float64
}

// GroupValues partitions the non-missing values of valueColumn by
// groupColumn. Groups keep the order of first appearance; rows with a
// missing group or value are skipped.
func GroupValues(t *dataset.Table, groupColumn, valueColumn string) ([]Group, error) {
	keys, err := t.Strings(groupColumn)
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

	pos := map[string]int{}
	var groups []Group
	for i, v := range values {
		if missing[i] || v != v {
			continue
		}
		j, ok := pos[keys[i]]
		if !ok {
			j = len(groups)
			pos[keys[i]] = j
			groups = append(groups, Group{Name: keys[i]})
		}
		groups[j].Values = append(groups[j].Values, v)
	}
	return groups, nil
}

// BoxByGroup draws one box per group of valueColumn split by groupColumn.
func BoxByGroup(t *dataset.Table, groupColumn, valueColumn, title string) (*plot.Plot, error) {
	groups, err := GroupValues(t, groupColumn, valueColumn)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyData, "charts.BoxByGroup: no %s values", valueColumn)
	}

	p := newPlot(title, groupColumn, valueColumn)
	names := make([]string, len(groups))
	for i, g := range groups {
		box, err := plotter.NewBoxPlot(vg.Points(20), float64(i), plotter.Values(g.Values))
		if err != nil {
			return nil, errors.Wrapf(err, "charts.BoxByGroup: group %q", g.Name)
		}
		box.FillColor = BaseColor
		p.Add(box)
		names[i] = g.Name
	}
	p.NominalX(names...)
	p.Add(plotter.NewGrid())
	return p, nil
}
