package dataset

import (
	"math"

	"github.com/YuminosukeSato/pm25scope/core/parallel"
)

// Filter selects rows by year and category. Zero values mean "no
// restriction": Year 0, YearFrom 0, YearTo 0 and empty lists select
// everything.
type Filter struct {
	// Year selects one Period exactly.
	Year int `json:"year,omitempty"`

	// YearFrom and YearTo bound Period inclusively.
	YearFrom int `json:"from,omitempty"`
	YearTo   int `json:"to,omitempty"`

	// Regions restricts ParentLocation.
	Regions []string `json:"regions,omitempty"`

	// SettlementTypes restricts Dim1.
	SettlementTypes []string `json:"types,omitempty"`
}

// IsZero reports whether f selects every row.
func (f Filter) IsZero() bool {
	return f.Year == 0 && f.YearFrom == 0 && f.YearTo == 0 &&
		len(f.Regions) == 0 && len(f.SettlementTypes) == 0
}

// Apply returns the rows of t matching every criterion of f. A criterion on
// a column t lacks is a MissingColumnError. Rows with a missing Period never
// match a year criterion.
func (f Filter) Apply(t *Table) (*Table, error) {
	if f.IsZero() {
		return t, nil
	}

	n := t.Nrow()
	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}

	if f.Year != 0 || f.YearFrom != 0 || f.YearTo != 0 {
		periods, err := t.Floats(ColPeriod)
		if err != nil {
			return nil, err
		}
		parallel.ParallelizeWithThreshold(n, parallel.DefaultThreshold, func(start, end int) {
			for i := start; i < end; i++ {
				keep[i] = keep[i] && f.matchYear(periods[i])
			}
		})
	}

	for _, crit := range []struct {
		column string
		values []string
	}{
		{ColRegion, f.Regions},
		{ColSettlement, f.SettlementTypes},
	} {
		if len(crit.values) == 0 {
			continue
		}
		values, err := t.Strings(crit.column)
		if err != nil {
			return nil, err
		}
		allowed := make(map[string]struct{}, len(crit.values))
		for _, v := range crit.values {
			allowed[v] = struct{}{}
		}
		for i, v := range values {
			if _, ok := allowed[v]; !ok || v == "" {
				keep[i] = false
			}
		}
	}

	rows := make([]int, 0, n)
	for i, k := range keep {
		if k {
			rows = append(rows, i)
		}
	}
	return t.Subset(rows)
}

func (f Filter) matchYear(period float64) bool {
	if math.IsNaN(period) {
		return false
	}
	p := int(period)
	if f.Year != 0 && p != f.Year {
		return false
	}
	if f.YearFrom != 0 && p < f.YearFrom {
		return false
	}
	if f.YearTo != 0 && p > f.YearTo {
		return false
	}
	return true
}
