package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/pm25scope/dashboard"
	"github.com/YuminosukeSato/pm25scope/dataset"
)

var (
	reportFilter  filterFlags
	reportSummary bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the cleaning report of the raw dataset",
	Long: `Audits the raw dataset: missing values per column, duplicate rows,
IQR and z-score outlier counts and the before/after cleaning summary.
With --summary the grouped PM2.5 statistics of the cleaned dataset are
printed as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		cache, err := newCache(c)
		if err != nil {
			return err
		}
		raw, err := cache.Get(cmd.Context(), c.Data.RawSource)
		if err != nil {
			return err
		}
		view, err := dashboard.CleaningReport(raw, c.Analysis.ValueColumn)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		writeCleaningReport(out, view)

		if !reportSummary {
			return nil
		}
		f, err := reportFilter.filter()
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
		groups, err := dashboard.GroupedSummary(selected)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		writeGroupedSummary(out, groups)
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportSummary, "summary", false, "also print the grouped summary of the cleaned dataset")
	reportFilter.register(reportCmd)
	rootCmd.AddCommand(reportCmd)
}

func writeCleaningReport(w io.Writer, v *dashboard.CleaningView) {
	fmt.Fprintf(w, "Rows: %d raw, %d after cleaning\n", v.RawRows, v.CleanedRows)
	fmt.Fprintf(w, "Duplicate rows: %d\n", v.Duplicates)
	fmt.Fprintf(w, "Outliers: %d by IQR, %d by z-score\n\n", v.IQROutliers, v.ZOutliers)

	fmt.Fprintf(w, "Missing values (%d columns)\n", v.ColumnsWithMissing)
	missing := tablewriter.NewWriter(w)
	missing.SetHeader([]string{"Column", "Missing"})
	for _, m := range v.Missing {
		missing.Append([]string{m.Column, strconv.Itoa(m.Count)})
	}
	missing.Render()

	fmt.Fprintln(w, "\nCleaning summary")
	summary := tablewriter.NewWriter(w)
	summary.SetHeader(v.Summary.Header())
	for _, r := range v.Summary.Rows {
		summary.Append([]string{r.Metric, strconv.Itoa(r.Before), strconv.Itoa(r.After)})
	}
	summary.Render()

	if len(v.RemovedSample) == 0 {
		return
	}
	fmt.Fprintln(w, "\nRemoved outliers (sample)")
	removed := tablewriter.NewWriter(w)
	removed.SetHeader([]string{"Location", "Region", "Period", "Type", "Value"})
	for _, row := range v.RemovedSample {
		removed.Append([]string{
			cellString(row[dataset.ColLocation]),
			cellString(row[dataset.ColRegion]),
			cellString(row[dataset.ColPeriod]),
			cellString(row[dataset.ColSettlement]),
			cellString(row[dataset.ColValue]),
		})
	}
	removed.Render()
}

func writeGroupedSummary(w io.Writer, groups []dashboard.GroupSummary) {
	fmt.Fprintf(w, "Grouped summary (%d groups)\n", len(groups))
	table := tablewriter.NewWriter(w)
	table.SetHeader(dashboard.SummaryHeader)
	for _, g := range groups {
		table.Append(g.Record())
	}
	table.Render()
}

func cellString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
