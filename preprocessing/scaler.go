package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pm25scope/core/model"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
	"github.com/YuminosukeSato/pm25scope/pkg/log"
)

// zeroScaleTolerance is the standard deviation below which a column is
// treated as constant.
const zeroScaleTolerance = 1e-8

// StandardScaler centres each column to mean 0 and scales it to unit
// population standard deviation (ddof = 0).
//
// NaN cells are skipped when fitting and stay NaN after transforming, so a
// column with gaps is standardised over its observed values only. Constant
// columns get a scale of 1, which maps every observed value to 0.
type StandardScaler struct {
	model.BaseEstimator

	// Mean is the per-column mean of the non-NaN values.
	Mean []float64

	// Scale is the per-column population standard deviation.
	Scale []float64

	// Count is the number of non-NaN values seen per column.
	Count []int

	NFeatures int

	WithMean bool
	WithStd  bool
}

var _ model.Transformer = (*StandardScaler)(nil)

// NewStandardScaler creates a StandardScaler.
//
// Example:
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	z, err := scaler.FitTransform(X)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault creates a StandardScaler that both centres and
// scales.
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit learns the per-column mean and standard deviation.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	s.Count = make([]int, c)

	for j := 0; j < c; j++ {
		var sum float64
		for i := 0; i < r; i++ {
			if v := X.At(i, j); !math.IsNaN(v) {
				sum += v
				s.Count[j]++
			}
		}
		if s.WithMean && s.Count[j] > 0 {
			s.Mean[j] = sum / float64(s.Count[j])
		}

		s.Scale[j] = 1.0
		if !s.WithStd || s.Count[j] == 0 {
			continue
		}
		var sumSquares float64
		for i := 0; i < r; i++ {
			if v := X.At(i, j); !math.IsNaN(v) {
				diff := v - sum/float64(s.Count[j])
				sumSquares += diff * diff
			}
		}
		std := math.Sqrt(sumSquares / float64(s.Count[j]))
		if std >= zeroScaleTolerance {
			s.Scale[j] = std
		}
	}

	s.SetFitted()

	logger := log.GetLoggerWithName("preprocessing.scaler")
	logger.Debug("StandardScaler fitted",
		log.ModelNameKey, "StandardScaler",
		log.OperationKey, log.OperationFit,
		log.RowsKey, r,
		log.ColumnsKey, c,
	)
	return nil
}

// Transform standardises X with the fitted statistics.
func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.RequireFitted("StandardScaler", "Transform"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}
	if r == 0 {
		return &mat.Dense{}, nil
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
		}
	}
	return result, nil
}

// FitTransform fits on X and transforms it.
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardised values back to the original scale.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.RequireFitted("StandardScaler", "InverseTransform"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*s.Scale[j]+s.Mean[j])
		}
	}
	return result, nil
}

// ZScores standardises a single sample and returns one z-score per value.
// NaN values map to NaN. An empty sample returns an empty slice.
func ZScores(values []float64) ([]float64, error) {
	if len(values) == 0 {
		return []float64{}, nil
	}
	X := mat.NewDense(len(values), 1, append([]float64(nil), values...))

	z, err := NewStandardScalerDefault().FitTransform(X)
	if err != nil {
		return nil, err
	}
	return mat.Col(nil, 0, z), nil
}

// String returns a short description of the scaler.
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, s.NFeatures)
}
