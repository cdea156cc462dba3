package cleaning

import (
	"github.com/YuminosukeSato/pm25scope/dataset"
)

// Summary metric names.
const (
	MetricTotalRows     = "Total Rows"
	MetricTotalColumns  = "Total Columns"
	MetricTotalOutliers = "Total Outliers"
)

// SummaryRow compares one metric before and after cleaning.
type SummaryRow struct {
	Metric string `json:"metric"`
	Before int    `json:"before_cleaning"`
	After  int    `json:"after_cleaning"`
}

// Summary is the three-row before/after cleaning comparison.
type Summary struct {
	Rows []SummaryRow `json:"rows"`
}

// CleaningSummary compares row count, column count and IQR outlier count
// of before (which must carry outlier_IQR) and after. The after outlier
// count is 0 by definition of cleaning.
func CleaningSummary(before, after *dataset.Table) (*Summary, error) {
	outliers, err := flagSum("CleaningSummary", before, dataset.ColOutlierIQR)
	if err != nil {
		return nil, err
	}
	return &Summary{Rows: []SummaryRow{
		{Metric: MetricTotalRows, Before: before.Nrow(), After: after.Nrow()},
		{Metric: MetricTotalColumns, Before: before.Ncol(), After: after.Ncol()},
		{Metric: MetricTotalOutliers, Before: outliers, After: 0},
	}}, nil
}

// Header returns the column labels of the summary table.
func (s *Summary) Header() []string {
	return []string{"Metric", "Before Cleaning", "After Cleaning"}
}

// Get returns the row for metric.
func (s *Summary) Get(metric string) (SummaryRow, bool) {
	for _, r := range s.Rows {
		if r.Metric == metric {
			return r, true
		}
	}
	return SummaryRow{}, false
}
