package linear

import "github.com/YuminosukeSato/pm25scope/core/parallel"

// DefaultRcond is the relative singular-value cutoff used for the rank check.
const DefaultRcond = 1e-12

// Option configures an OLS estimator.
type Option func(*OLS)

// WithRcond sets the relative cutoff below which a singular value of the
// design matrix counts as zero.
func WithRcond(rcond float64) Option {
	return func(m *OLS) {
		m.rcond = rcond
	}
}

// WithParallelThreshold sets the row count above which predictions are
// computed in parallel.
func WithParallelThreshold(rows int) Option {
	return func(m *OLS) {
		m.parallelThreshold = rows
	}
}

func defaultOLS() *OLS {
	return &OLS{
		rcond:             DefaultRcond,
		parallelThreshold: parallel.DefaultThreshold,
	}
}
