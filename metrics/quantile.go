package metrics

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/pm25scope/pkg/errors"
)

// IQRMultiplier is the Tukey fence width used by IQRBounds.
const IQRMultiplier = 1.5

// DropNaN returns the non-NaN values, in order.
func DropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Quantile returns the p-quantile of values with linear interpolation
// between order statistics: h = (n-1)·p, q = x[⌊h⌋] + (h-⌊h⌋)·(x[⌊h⌋+1]-x[⌊h⌋]).
// NaN values are ignored. values is not modified.
func Quantile(values []float64, p float64) (float64, error) {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, errors.NewValueError("Quantile", "p must be in [0, 1]")
	}
	sorted := DropNaN(values)
	if len(sorted) == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "Quantile")
	}
	sort.Float64s(sorted)
	return quantileSorted(sorted, p), nil
}

func quantileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Bounds holds the quartiles and Tukey fences of a sample.
type Bounds struct {
	Q1    float64 `json:"q1"`
	Q3    float64 `json:"q3"`
	IQR   float64 `json:"iqr"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// IQRBounds computes Q1, Q3 and the fences Q1 - 1.5·IQR and Q3 + 1.5·IQR.
func IQRBounds(values []float64) (Bounds, error) {
	sorted := DropNaN(values)
	if len(sorted) == 0 {
		return Bounds{}, errors.Wrap(errors.ErrEmptyData, "IQRBounds")
	}
	sort.Float64s(sorted)

	q1 := quantileSorted(sorted, 0.25)
	q3 := quantileSorted(sorted, 0.75)
	iqr := q3 - q1
	return Bounds{
		Q1:    q1,
		Q3:    q3,
		IQR:   iqr,
		Lower: q1 - IQRMultiplier*iqr,
		Upper: q3 + IQRMultiplier*iqr,
	}, nil
}

// Outside reports whether v lies strictly beyond either fence.
// NaN is never outside.
func (b Bounds) Outside(v float64) bool {
	return v < b.Lower || v > b.Upper
}
