package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pm25scope/core/model"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
)

// OneHotEncoder expands categorical columns into 0/1 indicator columns.
//
// Levels are ordered by first appearance. With DropFirst the first observed
// level of every column is the reference level and gets no indicator, so an
// intercept column can be added without collinearity.
type OneHotEncoder struct {
	model.BaseEstimator

	// Columns are the input column names in fit order.
	Columns []string

	// Categories[j] lists the levels of Columns[j] in first-seen order.
	Categories [][]string

	DropFirst bool

	// index[j][level] is the output feature index, or -1 for the reference level.
	index    []map[string]int
	features []string
}

// NewOneHotEncoder creates an encoder.
func NewOneHotEncoder(dropFirst bool) *OneHotEncoder {
	return &OneHotEncoder{DropFirst: dropFirst}
}

// Fit learns the levels of each column. data[j] holds the values of
// columns[j]; all columns must have the same length.
func (e *OneHotEncoder) Fit(columns []string, data [][]string) error {
	if len(columns) != len(data) {
		return errors.NewDimensionError("OneHotEncoder.Fit", len(columns), len(data), 1)
	}
	rows := -1
	for _, col := range data {
		if rows >= 0 && len(col) != rows {
			return errors.NewDimensionError("OneHotEncoder.Fit", rows, len(col), 0)
		}
		rows = len(col)
	}

	e.Columns = append([]string(nil), columns...)
	e.Categories = make([][]string, len(columns))
	e.index = make([]map[string]int, len(columns))
	e.features = e.features[:0]

	for j, name := range columns {
		e.index[j] = make(map[string]int)
		for _, v := range data[j] {
			if _, seen := e.index[j][v]; seen {
				continue
			}
			e.Categories[j] = append(e.Categories[j], v)
			if e.DropFirst && len(e.Categories[j]) == 1 {
				e.index[j][v] = -1
				continue
			}
			e.index[j][v] = -2 // numbered below
		}
		// Number features column by column so names stay grouped.
		for _, level := range e.Categories[j] {
			if e.index[j][level] == -1 {
				continue
			}
			e.index[j][level] = len(e.features)
			e.features = append(e.features, fmt.Sprintf("%s_%s", name, level))
		}
	}

	e.SetFitted()
	return nil
}

// FeatureNames returns the output column names "<column>_<level>".
func (e *OneHotEncoder) FeatureNames() []string {
	return append([]string(nil), e.features...)
}

// NFeatures is the number of indicator columns produced.
func (e *OneHotEncoder) NFeatures() int {
	return len(e.features)
}

// FeatureIndex returns the output column of level in input column j, or -1
// for the dropped reference level. ok is false for an unseen level.
func (e *OneHotEncoder) FeatureIndex(j int, level string) (idx int, ok bool) {
	idx, ok = e.index[j][level]
	return idx, ok
}

// Transform encodes data into an n×NFeatures indicator matrix. Unseen
// levels are rejected.
func (e *OneHotEncoder) Transform(data [][]string) (*mat.Dense, error) {
	if err := e.RequireFitted("OneHotEncoder", "Transform"); err != nil {
		return nil, err
	}
	if len(data) != len(e.Columns) {
		return nil, errors.NewDimensionError("OneHotEncoder.Transform", len(e.Columns), len(data), 1)
	}
	if len(data) == 0 || len(data[0]) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "OneHotEncoder.Transform")
	}
	if len(e.features) == 0 {
		return nil, errors.NewValueError("OneHotEncoder.Transform", "every column has a single level; nothing to encode")
	}

	n := len(data[0])
	out := mat.NewDense(n, len(e.features), nil)
	for j, col := range data {
		if len(col) != n {
			return nil, errors.NewDimensionError("OneHotEncoder.Transform", n, len(col), 0)
		}
		for i, v := range col {
			idx, ok := e.index[j][v]
			if !ok {
				return nil, errors.NewValueError("OneHotEncoder.Transform",
					fmt.Sprintf("unknown level %q in column %q", v, e.Columns[j]))
			}
			if idx >= 0 {
				out.Set(i, idx, 1)
			}
		}
	}
	return out, nil
}
