package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/pm25scope/dashboard"
	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/metrics"
)

var (
	regressFilter     filterFlags
	regressTarget     string
	regressPredictors []string
	regressOutliers   int
)

var regressCmd = &cobra.Command{
	Use:   "regress",
	Short: "Fit the categorical OLS model on the cleaned dataset",
	Long: `Fits target ~ C(predictor1) + C(predictor2) + ... on the cleaned dataset
and prints the fit statistics, the coefficient table and the largest
residual outliers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		target := c.Regression.Target
		if regressTarget != "" {
			target = regressTarget
		}
		predictors := c.Regression.Predictors
		if len(regressPredictors) > 0 {
			predictors = regressPredictors
		}
		f, err := regressFilter.filter()
		if err != nil {
			return err
		}

		cache, err := newCache(c)
		if err != nil {
			return err
		}
		clean, err := cache.Get(cmd.Context(), c.Data.CleanSource)
		if err != nil {
			return err
		}
		selected, err := f.Apply(clean)
		if err != nil {
			return err
		}
		view, err := dashboard.Regression(selected, target, predictors)
		if err != nil {
			return err
		}
		writeRegression(cmd.OutOrStdout(), view, regressOutliers)
		return nil
	},
}

func init() {
	regressCmd.Flags().StringVar(&regressTarget, "target", "", "response column (overrides regression.target)")
	regressCmd.Flags().StringSliceVar(&regressPredictors, "predictor", nil, "categorical predictor (overrides regression.predictors)")
	regressCmd.Flags().IntVar(&regressOutliers, "outliers", 10, "number of residual outliers to print")
	regressFilter.register(regressCmd)
	rootCmd.AddCommand(regressCmd)
}

func writeRegression(w io.Writer, v *dashboard.RegressionView, maxOutliers int) {
	d := v.Diagnostics
	fmt.Fprintf(w, "Run %s\n", v.RunID)
	fmt.Fprintf(w, "Model: %s ~ %v\n", v.Target, v.Predictors)

	fit := tablewriter.NewWriter(w)
	fit.SetHeader([]string{"Statistic", "Value"})
	fit.AppendBulk([][]string{
		{"Observations", strconv.Itoa(v.NObs)},
		{"Parameters", strconv.Itoa(d.K)},
		{"R-squared", formatStat(v.RSquared)},
		{"Adj. R-squared", formatStat(v.AdjRSquared)},
		{"AIC", formatStat(v.AIC)},
		{"SSR", formatStat(metrics.Float(d.SSR))},
		{"RMSE", formatStat(metrics.Float(d.RMSE))},
		{"MAE", formatStat(metrics.Float(d.MAE))},
	})
	fit.Render()

	fmt.Fprintln(w, "\nCoefficients")
	coef := tablewriter.NewWriter(w)
	coef.SetHeader([]string{"Term", "Estimate", "Std. Error", "t", "P>|t|"})
	for _, r := range v.Coefficients {
		coef.Append([]string{
			r.Name,
			formatStat(metrics.Float(r.Estimate)),
			formatStat(r.StdErr),
			formatStat(r.T),
			formatStat(r.P),
		})
	}
	coef.Render()

	fmt.Fprintf(w, "\nResidual outliers: %d\n", len(v.Outliers))
	if len(v.Outliers) == 0 || maxOutliers <= 0 {
		return
	}
	rows := v.Outliers
	if len(rows) > maxOutliers {
		rows = rows[:maxOutliers]
	}
	out := tablewriter.NewWriter(w)
	out.SetHeader([]string{"Row", "Location", "Period", "Residual"})
	for _, o := range rows {
		out.Append([]string{
			strconv.Itoa(o.Index),
			cellString(o.Row[dataset.ColLocation]),
			cellString(o.Row[dataset.ColPeriod]),
			formatStat(metrics.Float(o.Residual)),
		})
	}
	out.Render()
}

func formatStat(f metrics.Float) string {
	return strconv.FormatFloat(float64(f), 'f', 4, 64)
}
