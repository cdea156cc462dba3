// Package dashboard builds the JSON view-models behind each dashboard
// screen. Every builder is a pure function of a table and a filter; the
// HTTP layer only decodes parameters and encodes the result.
package dashboard

import (
	"sort"

	"github.com/YuminosukeSato/pm25scope/charts"
	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/metrics"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
)

// DefaultTopN is the number of locations in top-N lists.
const DefaultTopN = 10

// BoxStats is the five-number summary of one group plus its IQR fences.
type BoxStats struct {
	Group string `json:"group"`
	metrics.Summary
	Lower metrics.Float `json:"lower_fence"`
	Upper metrics.Float `json:"upper_fence"`
}

// boxStats summarises valueColumn per level of groupColumn in order of first
// appearance.
func boxStats(t *dataset.Table, groupColumn string) ([]BoxStats, error) {
	groups, err := charts.GroupValues(t, groupColumn, dataset.ColValue)
	if err != nil {
		return nil, err
	}
	out := make([]BoxStats, 0, len(groups))
	for _, g := range groups {
		s, err := metrics.Describe(g.Values)
		if err != nil {
			return nil, err
		}
		b, err := metrics.IQRBounds(g.Values)
		if err != nil {
			return nil, err
		}
		out = append(out, BoxStats{
			Group:   g.Name,
			Summary: s,
			Lower:   metrics.Float(b.Lower),
			Upper:   metrics.Float(b.Upper),
		})
	}
	return out, nil
}

// LatestPeriod returns the largest Period in t. A table without any Period
// value returns ErrEmptyData.
func LatestPeriod(t *dataset.Table) (int, error) {
	periods, err := t.Floats(dataset.ColPeriod)
	if err != nil {
		return 0, err
	}
	latest, found := 0, false
	for _, p := range periods {
		if p != p {
			continue
		}
		if !found || int(p) > latest {
			latest, found = int(p), true
		}
	}
	if !found {
		return 0, errors.Wrap(errors.ErrEmptyData, "LatestPeriod")
	}
	return latest, nil
}

// Options lists the distinct values of the filterable columns, used to
// populate the filter controls.
type Options struct {
	Years           []int    `json:"years"`
	Regions         []string `json:"regions"`
	SettlementTypes []string `json:"types"`
}

// FilterOptions collects the distinct non-missing years (ascending) and the
// regions and settlement types (first appearance order) of t.
func FilterOptions(t *dataset.Table) (*Options, error) {
	periods, err := t.Floats(dataset.ColPeriod)
	if err != nil {
		return nil, err
	}
	seen := map[int]bool{}
	opts := &Options{Years: []int{}}
	for _, p := range periods {
		if p == p && !seen[int(p)] {
			seen[int(p)] = true
			opts.Years = append(opts.Years, int(p))
		}
	}
	sort.Ints(opts.Years)

	if opts.Regions, err = distinct(t, dataset.ColRegion); err != nil {
		return nil, err
	}
	if opts.SettlementTypes, err = distinct(t, dataset.ColSettlement); err != nil {
		return nil, err
	}
	return opts, nil
}

func distinct(t *dataset.Table, column string) ([]string, error) {
	values, err := t.Strings(column)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	out := []string{}
	for _, v := range values {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out, nil
}
