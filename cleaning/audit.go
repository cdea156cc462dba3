package cleaning

import (
	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/pkg/log"
)

// RemovedSampleSize is the number of removed outlier rows kept in a Report.
const RemovedSampleSize = 5

// Report is the full cleaning audit of a raw table.
type Report struct {
	Missing     []MissingCount `json:"missing"`
	Duplicates  int            `json:"duplicates"`
	IQROutliers int            `json:"iqr_outliers"`
	ZOutliers   int            `json:"z_outliers"`
	Summary     *Summary       `json:"summary"`

	// RemovedSample holds the first removed outlier rows in table order.
	RemovedSample []map[string]interface{} `json:"removed_sample"`

	// Flagged is the raw table with outlier columns; Cleaned drops the IQR
	// outliers from it.
	Flagged *dataset.Table `json:"-"`
	Cleaned *dataset.Table `json:"-"`
}

// Audit runs the whole cleaning pass: missing values and duplicates of the
// raw table, outlier flags on valueColumn, removal of the IQR outliers and
// the before/after summary.
func Audit(raw *dataset.Table, valueColumn string) (*Report, error) {
	flagged, err := DetectOutliers(raw, valueColumn)
	if err != nil {
		return nil, err
	}
	iqr, z, err := OutlierCounts(flagged)
	if err != nil {
		return nil, err
	}
	cleaned, err := RemoveOutliers(flagged)
	if err != nil {
		return nil, err
	}
	summary, err := CleaningSummary(flagged, cleaned)
	if err != nil {
		return nil, err
	}
	removed, err := Outliers(flagged)
	if err != nil {
		return nil, err
	}

	sample := removed.Rows()
	if len(sample) > RemovedSampleSize {
		sample = sample[:RemovedSampleSize]
	}

	report := &Report{
		Missing:       MissingData(raw),
		Duplicates:    CountDuplicates(raw),
		IQROutliers:   iqr,
		ZOutliers:     z,
		Summary:       summary,
		RemovedSample: sample,
		Flagged:       flagged,
		Cleaned:       cleaned,
	}

	log.GetLoggerWithName("cleaning.audit").Info("audit completed",
		log.OperationKey, log.OperationAudit,
		log.RowsKey, raw.Nrow(),
		log.OutliersKey, iqr,
		"data.duplicates", report.Duplicates,
		"data.columns_with_missing", len(report.Missing),
	)
	return report, nil
}
