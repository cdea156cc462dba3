package metrics

import (
	"math"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"

	"github.com/YuminosukeSato/pm25scope/pkg/errors"
)

// Float is a float64 that encodes NaN and ±Inf as JSON null.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// Summary is the descriptive summary of one numeric sample.
type Summary struct {
	Count  int   `json:"count"`
	Mean   Float `json:"mean"`
	Median Float `json:"median"`
	Min    Float `json:"min"`
	Max    Float `json:"max"`
	Std    Float `json:"std"`
	P25    Float `json:"p25"`
	P75    Float `json:"p75"`
}

// Describe summarises the non-NaN values: count, mean, median, min, max,
// sample standard deviation (n-1) and the 25th/75th percentiles. The
// standard deviation of a single value is NaN. Empty input returns
// ErrEmptyData.
func Describe(values []float64) (Summary, error) {
	data := stats.Float64Data(DropNaN(values))
	if data.Len() == 0 {
		return Summary{}, errors.Wrap(errors.ErrEmptyData, "Describe")
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return Summary{}, errors.NewComputationError("Describe", "", err)
	}
	median, err := stats.Median(data)
	if err != nil {
		return Summary{}, errors.NewComputationError("Describe", "", err)
	}
	lo, err := stats.Min(data)
	if err != nil {
		return Summary{}, errors.NewComputationError("Describe", "", err)
	}
	hi, err := stats.Max(data)
	if err != nil {
		return Summary{}, errors.NewComputationError("Describe", "", err)
	}

	std := math.NaN()
	if data.Len() > 1 {
		if std, err = stats.StandardDeviationSample(data); err != nil {
			return Summary{}, errors.NewComputationError("Describe", "", err)
		}
	}

	// montanaflynn's Percentile uses nearest rank; quartiles here follow
	// the interpolated definition shared with the outlier fences.
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	return Summary{
		Count:  data.Len(),
		Mean:   Float(mean),
		Median: Float(median),
		Min:    Float(lo),
		Max:    Float(hi),
		Std:    Float(std),
		P25:    Float(quantileSorted(sorted, 0.25)),
		P75:    Float(quantileSorted(sorted, 0.75)),
	}, nil
}

// KeyMetrics are the headline numbers of a filtered table.
type KeyMetrics struct {
	TotalSamples int   `json:"total_samples"`
	Mean         Float `json:"mean"`
	Max          Float `json:"max"`
	Min          Float `json:"min"`
}

// Key computes KeyMetrics. TotalSamples counts every row, including rows
// whose value is NaN; the statistics ignore NaN and are null when no value
// remains.
func Key(values []float64) KeyMetrics {
	s, err := Describe(values)
	if err != nil {
		nan := Float(math.NaN())
		return KeyMetrics{TotalSamples: len(values), Mean: nan, Max: nan, Min: nan}
	}
	return KeyMetrics{TotalSamples: len(values), Mean: s.Mean, Max: s.Max, Min: s.Min}
}
