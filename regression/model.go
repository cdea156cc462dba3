package regression

import (
	"sort"

	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/linear"
	"github.com/YuminosukeSato/pm25scope/metrics"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
	"github.com/YuminosukeSato/pm25scope/pkg/log"
)

// FitOLS fits an OLS model on a prepared design. A rank-deficient design
// returns an error wrapping ErrSingularMatrix.
func FitOLS(p *Prepared, opts ...linear.Option) (*linear.OLS, error) {
	if p == nil || p.X == nil {
		return nil, errors.Wrap(errors.ErrEmptyData, "FitOLS")
	}
	m := linear.NewOLS(p.Columns, opts...)
	if err := m.Fit(p.X, p.Y); err != nil {
		return nil, err
	}
	return m, nil
}

// Diagnostics summarises a fitted model.
type Diagnostics struct {
	FittedValues []float64 `json:"fitted_values"`
	Residuals    []float64 `json:"residuals"`

	RSquared    metrics.Float `json:"rsquared"`
	AdjRSquared metrics.Float `json:"rsquared_adj"`
	AIC         metrics.Float `json:"aic"`
	SSR         float64       `json:"ssr"`
	RMSE        float64       `json:"rmse"`
	MAE         float64       `json:"mae"`

	// N is the number of observations and K the number of parameters
	// including the intercept.
	N int `json:"n"`
	K int `json:"k"`
}

// ComputeDiagnostics computes fitted values, residuals, R² = 1 - SSR/SST,
// adjusted R² = 1 - (1-R²)(n-1)/(n-k) and AIC = n·ln(SSR/n) + 2k.
func ComputeDiagnostics(m *linear.OLS) (*Diagnostics, error) {
	if err := m.RequireFitted("OLS", "Diagnostics"); err != nil {
		return nil, err
	}

	y := m.Target()
	fitted := m.FittedValues()
	residuals := m.Residuals()
	n, k := m.NObs, m.NParams

	ssr, err := metrics.SSR(y, fitted)
	if err != nil {
		return nil, err
	}
	r2, err := metrics.R2Score(y, fitted)
	if err != nil {
		return nil, err
	}
	adj, err := metrics.AdjustedR2(r2, n, k)
	if err != nil {
		return nil, err
	}
	aic, err := metrics.AIC(ssr, n, k)
	if err != nil {
		return nil, err
	}
	rmse, err := metrics.RMSE(y, fitted)
	if err != nil {
		return nil, err
	}
	mae, err := metrics.MAE(y, fitted)
	if err != nil {
		return nil, err
	}

	d := &Diagnostics{
		FittedValues: append([]float64(nil), fitted.RawVector().Data...),
		Residuals:    append([]float64(nil), residuals.RawVector().Data...),
		RSquared:     metrics.Float(r2),
		AdjRSquared:  metrics.Float(adj),
		AIC:          metrics.Float(aic),
		SSR:          ssr,
		RMSE:         rmse,
		MAE:          mae,
		N:            n,
		K:            k,
	}

	log.GetLoggerWithName("regression.diagnostics").Info("diagnostics computed",
		log.OperationKey, log.OperationDiagnose,
		log.EstimatorIDKey, m.ID,
		log.RowsKey, n,
		log.ParamsKey, k,
		log.R2ScoreKey, r2,
		log.AICKey, aic,
	)
	return d, nil
}

// ResidualOutlier is a residual outside the IQR fences, with the row index
// it belongs to.
type ResidualOutlier struct {
	Index    int     `json:"index"`
	Residual float64 `json:"residual"`
}

// DetectResidualOutliers flags residuals strictly outside
// [Q1 - 1.5·IQR, Q3 + 1.5·IQR]. index[i] is reported for residuals[i]; a nil
// index reports positions. The result keeps input order. Empty input
// returns ErrEmptyData.
func DetectResidualOutliers(residuals []float64, index []int) ([]ResidualOutlier, error) {
	if len(residuals) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "DetectResidualOutliers")
	}
	if index != nil && len(index) != len(residuals) {
		return nil, errors.NewDimensionError("DetectResidualOutliers", len(residuals), len(index), 0)
	}

	bounds, err := metrics.IQRBounds(residuals)
	if err != nil {
		return nil, err
	}

	out := []ResidualOutlier{}
	for i, r := range residuals {
		if !bounds.Outside(r) {
			continue
		}
		idx := i
		if index != nil {
			idx = index[i]
		}
		out = append(out, ResidualOutlier{Index: idx, Residual: r})
	}
	return out, nil
}

// CoefficientRow is one line of the coefficient table.
type CoefficientRow struct {
	Name     string        `json:"name"`
	Estimate float64       `json:"estimate"`
	StdErr   metrics.Float `json:"std_err"`
	T        metrics.Float `json:"t"`
	P        metrics.Float `json:"p_value"`
}

// Coefficients returns the coefficient table in design-matrix column order.
func Coefficients(m *linear.OLS) ([]CoefficientRow, error) {
	inf, err := m.Inference()
	if err != nil {
		return nil, err
	}
	rows := make([]CoefficientRow, len(inf))
	for i, c := range inf {
		rows[i] = CoefficientRow{
			Name:     c.Name,
			Estimate: c.Estimate,
			StdErr:   metrics.Float(c.StdErr),
			T:        metrics.Float(c.T),
			P:        metrics.Float(c.P),
		}
	}
	return rows, nil
}

// Result bundles every output of one regression run.
type Result struct {
	ID               string            `json:"id"`
	Target           string            `json:"target"`
	Predictors       []string          `json:"predictors"`
	Diagnostics      *Diagnostics      `json:"diagnostics"`
	Coefficients     []CoefficientRow  `json:"coefficients"`
	ResidualOutliers []ResidualOutlier `json:"residual_outliers"`

	Prepared *Prepared   `json:"-"`
	Model    *linear.OLS `json:"-"`
}

// Analyze prepares, fits and diagnoses a regression of target on the
// categorical predictors of t.
func Analyze(t *dataset.Table, target string, categorical []string) (*Result, error) {
	p, err := PrepareData(t, target, categorical)
	if err != nil {
		return nil, err
	}
	m, err := FitOLS(p)
	if err != nil {
		return nil, err
	}
	d, err := ComputeDiagnostics(m)
	if err != nil {
		return nil, err
	}
	coef, err := Coefficients(m)
	if err != nil {
		return nil, err
	}
	outliers, err := DetectResidualOutliers(d.Residuals, p.Index)
	if err != nil {
		return nil, err
	}

	return &Result{
		ID:               m.ID,
		Target:           target,
		Predictors:       p.Categorical,
		Diagnostics:      d,
		Coefficients:     coef,
		ResidualOutliers: outliers,
		Prepared:         p,
		Model:            m,
	}, nil
}

// SortedResidualOutliers returns a copy of the outliers ordered by residual
// descending; ties keep row order.
func SortedResidualOutliers(outliers []ResidualOutlier) []ResidualOutlier {
	out := append([]ResidualOutlier(nil), outliers...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Residual > out[j].Residual
	})
	return out
}
