package dashboard

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/pm25scope/charts"
	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/metrics"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
	"github.com/YuminosukeSato/pm25scope/pkg/log"
)

// GroupSummary is the descriptive summary of one
// (Period, ParentLocation, Dim1) group.
type GroupSummary struct {
	Period     int    `json:"period"`
	Region     string `json:"region"`
	Settlement string `json:"settlement"`
	metrics.Summary
}

// SummaryHeader is the column header used when a grouped summary is
// exported as a table.
var SummaryHeader = []string{
	"Period", "ParentLocation", "Dim1", "Samples", "Average", "Median",
	"Minimum", "Maximum", "Std Dev", "25th Percentile", "75th Percentile",
}

// Record renders g in SummaryHeader order.
func (g GroupSummary) Record() []string {
	return []string{
		itoa(g.Period), g.Region, g.Settlement, itoa(g.Count),
		ftoa(float64(g.Mean)), ftoa(float64(g.Median)), ftoa(float64(g.Min)),
		ftoa(float64(g.Max)), ftoa(float64(g.Std)), ftoa(float64(g.P25)), ftoa(float64(g.P75)),
	}
}

// GroupedSummary summarises the value column per (Period, ParentLocation,
// Dim1), sorted by those keys. Rows missing any key are left out; a group
// whose values are all missing has Count 0 and null statistics.
func GroupedSummary(t *dataset.Table) ([]GroupSummary, error) {
	periods, err := t.Floats(dataset.ColPeriod)
	if err != nil {
		return nil, err
	}
	regions, err := t.Strings(dataset.ColRegion)
	if err != nil {
		return nil, err
	}
	settlements, err := t.Strings(dataset.ColSettlement)
	if err != nil {
		return nil, err
	}
	values, err := t.Floats(dataset.ColValue)
	if err != nil {
		return nil, err
	}

	type key struct {
		period             int
		region, settlement string
	}
	groups := map[key][]float64{}
	var keys []key
	for i, v := range values {
		if math.IsNaN(periods[i]) || regions[i] == "" || settlements[i] == "" {
			continue
		}
		k := key{int(periods[i]), regions[i], settlements[i]}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
			groups[k] = []float64{}
		}
		groups[k] = append(groups[k], v)
	}
	sort.Slice(keys, func(a, b int) bool {
		ka, kb := keys[a], keys[b]
		if ka.period != kb.period {
			return ka.period < kb.period
		}
		if ka.region != kb.region {
			return ka.region < kb.region
		}
		return ka.settlement < kb.settlement
	})

	out := make([]GroupSummary, len(keys))
	for i, k := range keys {
		s, err := metrics.Describe(groups[k])
		if errors.Is(err, errors.ErrEmptyData) {
			nan := metrics.Float(math.NaN())
			s = metrics.Summary{Mean: nan, Median: nan, Min: nan, Max: nan, Std: nan, P25: nan, P75: nan}
		} else if err != nil {
			return nil, err
		}
		out[i] = GroupSummary{Period: k.period, Region: k.region, Settlement: k.settlement, Summary: s}
	}
	return out, nil
}

// AnalysisView is the general analysis screen.
type AnalysisView struct {
	Filter          dataset.Filter           `json:"filter"`
	Metrics         metrics.KeyMetrics       `json:"metrics"`
	Summary         []GroupSummary           `json:"summary"`
	BoxByRegion     []BoxStats               `json:"box_by_region"`
	BoxBySettlement []BoxStats               `json:"box_by_type"`
	Trend           []charts.Series          `json:"trend"`
	Rows            []map[string]interface{} `json:"rows"`
}

// Analysis builds the general analysis of the rows of t selected by f.
func Analysis(t *dataset.Table, f dataset.Filter) (*AnalysisView, error) {
	filtered, err := f.Apply(t)
	if err != nil {
		return nil, err
	}
	values, err := filtered.Floats(dataset.ColValue)
	if err != nil {
		return nil, err
	}

	v := &AnalysisView{Filter: f, Metrics: metrics.Key(values), Rows: filtered.Rows()}
	if v.Summary, err = GroupedSummary(filtered); err != nil {
		return nil, err
	}
	if v.BoxByRegion, err = boxStats(filtered, dataset.ColRegion); err != nil {
		return nil, err
	}
	if v.BoxBySettlement, err = boxStats(filtered, dataset.ColSettlement); err != nil {
		return nil, err
	}
	if v.Trend, err = charts.TrendSeries(filtered, dataset.ColRegion, dataset.ColValue); err != nil {
		return nil, err
	}

	log.GetLoggerWithName("dashboard.analysis").Debug("analysis built",
		log.OperationKey, log.OperationFilter,
		log.RowsKey, filtered.Nrow(),
		"data.groups", len(v.Summary),
	)
	return v, nil
}
