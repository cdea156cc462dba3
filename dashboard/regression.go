package dashboard

import (
	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/metrics"
	"github.com/YuminosukeSato/pm25scope/regression"
)

// OutlierRow is a residual outlier joined with its source row.
type OutlierRow struct {
	Index    int                    `json:"index"`
	Residual float64                `json:"residual"`
	Row      map[string]interface{} `json:"row"`
}

// RegressionView is the regression analysis screen.
type RegressionView struct {
	RunID        string                      `json:"run_id"`
	Target       string                      `json:"target"`
	Predictors   []string                    `json:"predictors"`
	NObs         int                         `json:"n_obs"`
	RSquared     metrics.Float               `json:"rsquared"`
	AdjRSquared  metrics.Float               `json:"rsquared_adj"`
	AIC          metrics.Float               `json:"aic"`
	Coefficients []regression.CoefficientRow `json:"coefficients"`
	Diagnostics  *regression.Diagnostics     `json:"diagnostics"`
	Outliers     []OutlierRow                `json:"outliers"`

	Result *regression.Result `json:"-"`
}

// Regression fits target on the categorical predictors of t. Residual
// outliers are joined with their rows of t and sorted by residual,
// largest first.
func Regression(t *dataset.Table, target string, predictors []string) (*RegressionView, error) {
	res, err := regression.Analyze(t, target, predictors)
	if err != nil {
		return nil, err
	}

	sorted := regression.SortedResidualOutliers(res.ResidualOutliers)
	rows := make([]OutlierRow, len(sorted))
	for i, o := range sorted {
		rows[i] = OutlierRow{Index: o.Index, Residual: o.Residual, Row: t.Row(o.Index)}
	}

	d := res.Diagnostics
	return &RegressionView{
		RunID:        res.ID,
		Target:       target,
		Predictors:   res.Predictors,
		NObs:         d.N,
		RSquared:     d.RSquared,
		AdjRSquared:  d.AdjRSquared,
		AIC:          d.AIC,
		Coefficients: res.Coefficients,
		Diagnostics:  d,
		Outliers:     rows,
		Result:       res,
	}, nil
}
