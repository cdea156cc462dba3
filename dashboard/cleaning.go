package dashboard

import (
	"github.com/YuminosukeSato/pm25scope/cleaning"
	"github.com/YuminosukeSato/pm25scope/dataset"
)

// CleaningView is the missing-value and outlier report screen.
type CleaningView struct {
	*cleaning.Report
	ColumnsWithMissing int `json:"columns_with_missing"`
	RawRows            int `json:"raw_rows"`
	CleanedRows        int `json:"cleaned_rows"`
}

// CleaningReport audits the raw table on valueColumn.
func CleaningReport(raw *dataset.Table, valueColumn string) (*CleaningView, error) {
	report, err := cleaning.Audit(raw, valueColumn)
	if err != nil {
		return nil, err
	}
	return &CleaningView{
		Report:             report,
		ColumnsWithMissing: len(report.Missing),
		RawRows:            raw.Nrow(),
		CleanedRows:        report.Cleaned.Nrow(),
	}, nil
}
