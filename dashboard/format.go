package dashboard

import (
	"math"
	"strconv"
)

func itoa(i int) string { return strconv.Itoa(i) }

// ftoa formats like the CSV writer of the dataset package: NaN for missing.
func ftoa(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
