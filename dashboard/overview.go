package dashboard

import (
	"sort"

	"github.com/YuminosukeSato/pm25scope/charts"
	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/metrics"
	"github.com/YuminosukeSato/pm25scope/pkg/log"
)

// TopLocation is one entry of the most polluted list.
type TopLocation struct {
	Location string  `json:"location"`
	Region   string  `json:"region"`
	Value    float64 `json:"value"`
}

// MapRecord is one location on the choropleth.
type MapRecord struct {
	Code     string  `json:"code"`
	Location string  `json:"location"`
	Region   string  `json:"region"`
	Value    float64 `json:"value"`
}

// ExplorerRow is one row of the data explorer table.
type ExplorerRow struct {
	City     string        `json:"city"`
	Region   string        `json:"region"`
	Period   int           `json:"period"`
	PM25     metrics.Float `json:"pm25"`
	AreaType string        `json:"area_type"`
}

// OverviewView is the single-year overview screen.
type OverviewView struct {
	Year        int                `json:"year"`
	Regions     []string           `json:"regions"`
	Metrics     metrics.KeyMetrics `json:"metrics"`
	Top         []TopLocation      `json:"top"`
	Map         []MapRecord        `json:"map"`
	BoxByRegion []BoxStats         `json:"box_by_region"`
	Trend       []charts.Series    `json:"trend"`
	Explorer    []ExplorerRow      `json:"explorer"`
}

// Overview builds the overview of one year restricted to f.Regions. A zero
// f.Year selects the latest year in t. The trend covers every year of t.
// topN <= 0 uses DefaultTopN.
func Overview(t *dataset.Table, f dataset.Filter, topN int) (*OverviewView, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}
	year := f.Year
	if year == 0 {
		latest, err := LatestPeriod(t)
		if err != nil {
			return nil, err
		}
		year = latest
	}

	filtered, err := dataset.Filter{Year: year, Regions: f.Regions}.Apply(t)
	if err != nil {
		return nil, err
	}
	values, err := filtered.Floats(dataset.ColValue)
	if err != nil {
		return nil, err
	}
	locations, err := filtered.Strings(dataset.ColLocation)
	if err != nil {
		return nil, err
	}
	regions, err := filtered.Strings(dataset.ColRegion)
	if err != nil {
		return nil, err
	}
	settlements, err := filtered.Strings(dataset.ColSettlement)
	if err != nil {
		return nil, err
	}
	periods, err := filtered.Floats(dataset.ColPeriod)
	if err != nil {
		return nil, err
	}
	codes := make([]string, filtered.Nrow())
	if filtered.HasColumn(dataset.ColCountryCode) {
		if codes, err = filtered.Strings(dataset.ColCountryCode); err != nil {
			return nil, err
		}
	}

	v := &OverviewView{
		Year:     year,
		Regions:  f.Regions,
		Metrics:  metrics.Key(values),
		Top:      []TopLocation{},
		Map:      []MapRecord{},
		Explorer: make([]ExplorerRow, filtered.Nrow()),
	}

	order := make([]int, 0, len(values))
	for i, x := range values {
		if x == x {
			order = append(order, i)
			v.Map = append(v.Map, MapRecord{Code: codes[i], Location: locations[i], Region: regions[i], Value: x})
		}
		v.Explorer[i] = ExplorerRow{
			City:     locations[i],
			Region:   regions[i],
			Period:   int(periods[i]),
			PM25:     metrics.Float(x),
			AreaType: settlements[i],
		}
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] > values[order[b]] })
	if len(order) > topN {
		order = order[:topN]
	}
	for _, i := range order {
		v.Top = append(v.Top, TopLocation{Location: locations[i], Region: regions[i], Value: values[i]})
	}

	if v.BoxByRegion, err = boxStats(filtered, dataset.ColRegion); err != nil {
		return nil, err
	}
	if v.Trend, err = charts.TrendSeries(t, dataset.ColRegion, dataset.ColValue); err != nil {
		return nil, err
	}

	log.GetLoggerWithName("dashboard.overview").Debug("overview built",
		"filter.year", year,
		log.RowsKey, filtered.Nrow(),
	)
	return v, nil
}
