// Package cleaning audits an observation table: per-row outlier flags by
// the IQR and Z-score rules, missing-value and duplicate counts, and the
// before/after cleaning summary.
//
// All functions are pure. Flags are always recomputed from the full value
// column, so running DetectOutliers on its own output gives the same flags.
package cleaning

import (
	"math"
	"time"

	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/pm25scope/core/parallel"
	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/metrics"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
	"github.com/YuminosukeSato/pm25scope/pkg/log"
	"github.com/YuminosukeSato/pm25scope/preprocessing"
)

// ZThreshold is the absolute z-score above which a value is flagged.
const ZThreshold = 3.0

// DetectOutliers returns t with the columns outlier_IQR (0/1), z_score and
// outlier_z (0/1) appended, replacing any columns of the same names.
//
// The IQR rule flags values strictly outside [Q1 - 1.5·IQR, Q3 + 1.5·IQR].
// The Z rule flags |z| > 3 with z computed from the population standard
// deviation of the observed values: NaN cells are left out of the mean and
// the deviation, get a NaN z-score themselves and are never flagged. An empty
// table yields an empty table with the three columns.
func DetectOutliers(t *dataset.Table, valueColumn string) (*dataset.Table, error) {
	const op = "DetectOutliers"

	if !t.HasColumn(valueColumn) {
		return nil, errors.NewMissingColumnError(op, valueColumn)
	}
	// A zero-row column may carry no numeric type; there is nothing to check.
	var (
		values []float64
		err    error
	)
	if t.Nrow() > 0 {
		if values, err = t.Floats(valueColumn); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	n := len(values)
	iqrFlags := make([]int, n)
	zFlags := make([]int, n)
	z := make([]float64, n)
	for i := range z {
		z[i] = math.NaN()
	}

	bounds, err := metrics.IQRBounds(values)
	switch {
	case errors.Is(err, errors.ErrEmptyData):
		// zero rows or only NaN: nothing can be flagged
	case err != nil:
		return nil, errors.NewComputationError(op, valueColumn, err)
	default:
		if z, err = preprocessing.ZScores(values); err != nil {
			return nil, errors.NewComputationError(op, valueColumn, err)
		}
		parallel.ParallelizeWithThreshold(n, parallel.DefaultThreshold, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				if bounds.Outside(values[i]) {
					iqrFlags[i] = 1
				}
				if math.Abs(z[i]) > ZThreshold {
					zFlags[i] = 1
				}
			}
		})
	}

	out := t
	for _, col := range []series.Series{
		series.New(iqrFlags, series.Int, dataset.ColOutlierIQR),
		series.New(z, series.Float, dataset.ColZScore),
		series.New(zFlags, series.Int, dataset.ColOutlierZ),
	} {
		if out, err = out.WithColumn(col); err != nil {
			return nil, err
		}
	}

	iqrCount, zCount := sum(iqrFlags), sum(zFlags)
	log.GetLoggerWithName("cleaning.outliers").Info("outliers detected",
		log.OperationKey, log.OperationDetect,
		log.ColumnKey, valueColumn,
		log.RowsKey, n,
		log.OutliersKey, iqrCount,
		"metrics.outliers_z", zCount,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return out, nil
}

// OutlierCounts sums the IQR and Z flags of a table produced by
// DetectOutliers.
func OutlierCounts(flagged *dataset.Table) (iqr, z int, err error) {
	iqr, err = flagSum("OutlierCounts", flagged, dataset.ColOutlierIQR)
	if err != nil {
		return 0, 0, err
	}
	z, err = flagSum("OutlierCounts", flagged, dataset.ColOutlierZ)
	if err != nil {
		return 0, 0, err
	}
	return iqr, z, nil
}

// RemoveOutliers keeps the rows whose outlier_IQR flag is 0.
func RemoveOutliers(flagged *dataset.Table) (*dataset.Table, error) {
	rows, err := rowsWithFlag("RemoveOutliers", flagged, 0)
	if err != nil {
		return nil, err
	}
	return flagged.Subset(rows)
}

// Outliers keeps the rows whose outlier_IQR flag is 1.
func Outliers(flagged *dataset.Table) (*dataset.Table, error) {
	rows, err := rowsWithFlag("Outliers", flagged, 1)
	if err != nil {
		return nil, err
	}
	return flagged.Subset(rows)
}

func rowsWithFlag(op string, flagged *dataset.Table, want int) ([]int, error) {
	if !flagged.HasColumn(dataset.ColOutlierIQR) {
		return nil, errors.NewMissingColumnError(op, dataset.ColOutlierIQR)
	}
	flags, err := flagged.Floats(dataset.ColOutlierIQR)
	if err != nil {
		return nil, err
	}
	rows := make([]int, 0, len(flags))
	for i, f := range flags {
		if int(f) == want && !math.IsNaN(f) {
			rows = append(rows, i)
		}
	}
	return rows, nil
}

func flagSum(op string, t *dataset.Table, column string) (int, error) {
	if !t.HasColumn(column) {
		return 0, errors.NewMissingColumnError(op, column)
	}
	flags, err := t.Floats(column)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, f := range flags {
		if !math.IsNaN(f) {
			total += int(f)
		}
	}
	return total, nil
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
