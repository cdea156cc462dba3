// Package regression fits an OLS model of a numeric target on one-hot
// encoded categorical predictors and derives its diagnostics: fitted values,
// residuals, R², adjusted R², AIC, coefficient inference and residual
// outliers.
package regression

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pm25scope/core/parallel"
	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
	"github.com/YuminosukeSato/pm25scope/pkg/log"
	"github.com/YuminosukeSato/pm25scope/preprocessing"
)

// InterceptColumn names the leading column of ones in a design matrix.
const InterceptColumn = "const"

// Prepared is a design matrix and target ready for fitting.
type Prepared struct {
	// X is n×(1+d): the intercept column followed by one indicator per
	// non-reference level of each categorical column.
	X *mat.Dense
	Y *mat.VecDense

	// Columns names the columns of X.
	Columns []string

	// Index maps each design row to its row in the source table.
	Index []int

	Target      string
	Categorical []string
	Encoder     *preprocessing.OneHotEncoder
}

// PrepareData builds the design matrix for regressing target on the
// categorical columns. Each categorical column is one-hot encoded with its
// first observed level as the reference, and an intercept column is
// prepended. Rows missing the target or any predictor are dropped.
func PrepareData(t *dataset.Table, target string, categorical []string) (*Prepared, error) {
	const op = "PrepareData"

	if !t.HasColumn(target) {
		return nil, errors.NewMissingColumnError(op, target)
	}
	for _, c := range categorical {
		if !t.HasColumn(c) {
			return nil, errors.NewMissingColumnError(op, c)
		}
	}

	y, err := t.Floats(target)
	if err != nil {
		return nil, err
	}

	levels := make([][]string, len(categorical))
	missing := make([][]bool, len(categorical))
	for j, c := range categorical {
		if levels[j], err = t.Strings(c); err != nil {
			return nil, err
		}
		if missing[j], err = t.Missing(c); err != nil {
			return nil, err
		}
	}

	index := make([]int, 0, len(y))
	for i, v := range y {
		if v != v { // NaN
			continue
		}
		complete := true
		for j := range categorical {
			if missing[j][i] {
				complete = false
				break
			}
		}
		if complete {
			index = append(index, i)
		}
	}
	if len(index) == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyData, "%s: no complete rows for target %q", op, target)
	}

	kept := make([][]string, len(categorical))
	for j := range categorical {
		kept[j] = make([]string, len(index))
		for r, i := range index {
			kept[j][r] = levels[j][i]
		}
	}

	enc := preprocessing.NewOneHotEncoder(true)
	if err := enc.Fit(categorical, kept); err != nil {
		return nil, err
	}

	n, p := len(index), 1+enc.NFeatures()
	X := mat.NewDense(n, p, nil)
	Y := mat.NewVecDense(n, nil)
	parallel.ParallelizeWithThreshold(n, parallel.DefaultThreshold, func(start, end int) {
		for r := start; r < end; r++ {
			X.Set(r, 0, 1)
			Y.SetVec(r, y[index[r]])
			for j := range categorical {
				if idx, _ := enc.FeatureIndex(j, kept[j][r]); idx >= 0 {
					X.Set(r, 1+idx, 1)
				}
			}
		}
	})

	columns := append([]string{InterceptColumn}, enc.FeatureNames()...)

	log.GetLoggerWithName("regression.prepare").Debug("design matrix built",
		log.OperationKey, log.OperationPrepare,
		log.ColumnKey, target,
		log.RowsKey, n,
		log.ParamsKey, p,
		"data.dropped_rows", len(y)-n,
	)

	return &Prepared{
		X:           X,
		Y:           Y,
		Columns:     columns,
		Index:       index,
		Target:      target,
		Categorical: append([]string(nil), categorical...),
		Encoder:     enc,
	}, nil
}
