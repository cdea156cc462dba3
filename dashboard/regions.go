package dashboard

import (
	"sort"

	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/pkg/log"
)

// RegionAverage is the Period × location pivot of mean values for one
// region, restricted to its top locations.
type RegionAverage struct {
	Region    string   `json:"region"`
	Periods   []int    `json:"periods"`
	Locations []string `json:"locations"`

	// Values[i][j] is the mean for Periods[i] and Locations[j]; a location
	// without data in a period is 0.
	Values [][]float64 `json:"values"`
}

type cell struct{ sum, n float64 }

func (c *cell) add(v float64) { c.sum += v; c.n++ }
func (c *cell) mean() float64 { return c.sum / c.n }

// RegionAverages builds one pivot per region in order of first appearance.
// Locations are ranked by their mean across the pivot's periods, gaps
// counted as 0, and the topN largest are kept; ties keep alphabetical
// order. topN <= 0 uses DefaultTopN.
func RegionAverages(t *dataset.Table, topN int) ([]RegionAverage, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}
	regions, err := t.Strings(dataset.ColRegion)
	if err != nil {
		return nil, err
	}
	locations, err := t.Strings(dataset.ColLocation)
	if err != nil {
		return nil, err
	}
	periods, err := t.Floats(dataset.ColPeriod)
	if err != nil {
		return nil, err
	}
	values, err := t.Floats(dataset.ColValue)
	if err != nil {
		return nil, err
	}

	type locPeriod struct {
		location string
		period   int
	}
	pos := map[string]int{}
	var names []string
	var cells []map[locPeriod]*cell
	for i, v := range values {
		if regions[i] == "" || locations[i] == "" || periods[i] != periods[i] || v != v {
			continue
		}
		j, ok := pos[regions[i]]
		if !ok {
			j = len(names)
			pos[regions[i]] = j
			names = append(names, regions[i])
			cells = append(cells, map[locPeriod]*cell{})
		}
		k := locPeriod{locations[i], int(periods[i])}
		c := cells[j][k]
		if c == nil {
			c = &cell{}
			cells[j][k] = c
		}
		c.add(v)
	}

	out := make([]RegionAverage, len(names))
	for j, region := range names {
		periodSet := map[int]bool{}
		locSet := map[string]bool{}
		for k := range cells[j] {
			periodSet[k.period] = true
			locSet[k.location] = true
		}
		ps := sortedInts(periodSet)
		ls := sortedStrings(locSet)

		score := make(map[string]float64, len(ls))
		for _, l := range ls {
			var total float64
			for _, p := range ps {
				if c := cells[j][locPeriod{l, p}]; c != nil {
					total += c.mean()
				}
			}
			score[l] = total / float64(len(ps))
		}
		sort.SliceStable(ls, func(a, b int) bool { return score[ls[a]] > score[ls[b]] })
		if len(ls) > topN {
			ls = ls[:topN]
		}

		grid := make([][]float64, len(ps))
		for a, p := range ps {
			grid[a] = make([]float64, len(ls))
			for b, l := range ls {
				if c := cells[j][locPeriod{l, p}]; c != nil {
					grid[a][b] = c.mean()
				}
			}
		}
		out[j] = RegionAverage{Region: region, Periods: ps, Locations: ls, Values: grid}
	}

	log.GetLoggerWithName("dashboard.regions").Debug("region averages built",
		"data.regions", len(out),
		"dashboard.top_n", topN,
	)
	return out, nil
}

// MapPoint is the mean value of one location in one frame.
type MapPoint struct {
	Code     string  `json:"code"`
	Location string  `json:"location"`
	Value    float64 `json:"value"`
}

// Frame is one period of the animated world map.
type Frame struct {
	Period int        `json:"period"`
	Points []MapPoint `json:"points"`
}

// GlobalFrames returns the mean value per location for every Period,
// periods ascending and locations alphabetical. The country code is the
// first one seen for the location, or empty when t has no code column.
func GlobalFrames(t *dataset.Table) ([]Frame, error) {
	locations, err := t.Strings(dataset.ColLocation)
	if err != nil {
		return nil, err
	}
	periods, err := t.Floats(dataset.ColPeriod)
	if err != nil {
		return nil, err
	}
	values, err := t.Floats(dataset.ColValue)
	if err != nil {
		return nil, err
	}
	codes := make([]string, t.Nrow())
	if t.HasColumn(dataset.ColCountryCode) {
		if codes, err = t.Strings(dataset.ColCountryCode); err != nil {
			return nil, err
		}
	}

	code := map[string]string{}
	byPeriod := map[int]map[string]*cell{}
	for i, v := range values {
		if locations[i] == "" || periods[i] != periods[i] || v != v {
			continue
		}
		if _, ok := code[locations[i]]; !ok {
			code[locations[i]] = codes[i]
		}
		p := int(periods[i])
		if byPeriod[p] == nil {
			byPeriod[p] = map[string]*cell{}
		}
		c := byPeriod[p][locations[i]]
		if c == nil {
			c = &cell{}
			byPeriod[p][locations[i]] = c
		}
		c.add(v)
	}

	periodSet := make(map[int]bool, len(byPeriod))
	for p := range byPeriod {
		periodSet[p] = true
	}
	ps := sortedInts(periodSet)

	frames := make([]Frame, len(ps))
	for i, p := range ps {
		locSet := make(map[string]bool, len(byPeriod[p]))
		for l := range byPeriod[p] {
			locSet[l] = true
		}
		ls := sortedStrings(locSet)
		points := make([]MapPoint, len(ls))
		for k, l := range ls {
			points[k] = MapPoint{Code: code[l], Location: l, Value: byPeriod[p][l].mean()}
		}
		frames[i] = Frame{Period: p, Points: points}
	}
	return frames, nil
}

func sortedInts(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func sortedStrings(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
