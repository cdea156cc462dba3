package main

import (
	"bufio"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/export"
	"github.com/YuminosukeSato/pm25scope/internal/config"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
)

var (
	exportFilter filterFlags
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export {filtered|summary|cleaned}",
	Short: "Write a dataset download as CSV or XLSX",
	Long: `Writes one of the dashboard downloads:

  filtered  the cleaned dataset restricted by the filter flags
  summary   the grouped statistics of the filtered dataset
  cleaned   the raw dataset with IQR outliers removed

The output goes to --output, or to stdout when it is empty or "-".`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"filtered", "summary", "cleaned"},
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		f, err := exportFilter.filter()
		if err != nil {
			return err
		}
		cache, err := newCache(c)
		if err != nil {
			return err
		}

		w, closeFn, err := openOutput(cmd, exportOutput)
		if err != nil {
			return err
		}
		if err := runExport(cmd, cache, c, args[0], f, format, w); err != nil {
			closeFn()
			return err
		}
		return closeFn()
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or xlsx")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	exportFilter.register(exportCmd)
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, cache *dataset.Cache, c *config.Config, kind string, f dataset.Filter, format export.Format, w io.Writer) error {
	ctx := cmd.Context()
	switch kind {
	case "filtered", "summary":
		clean, err := cache.Get(ctx, c.Data.CleanSource)
		if err != nil {
			return err
		}
		if kind == "filtered" {
			return export.Filtered(w, clean, f, format)
		}
		return export.Summary(w, clean, f, format)
	case "cleaned":
		raw, err := cache.Get(ctx, c.Data.RawSource)
		if err != nil {
			return err
		}
		return export.Cleaned(w, raw, c.Analysis.ValueColumn, format)
	default:
		return errors.NewValueError("export", "unknown download "+kind+"; want filtered, summary or cleaned")
	}
}

// openOutput returns a buffered writer on path, or on stdout for "" and "-".
// The close function flushes and closes it.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		bw := bufio.NewWriter(cmd.OutOrStdout())
		return bw, bw.Flush, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "create %s", path)
	}
	bw := bufio.NewWriter(file)
	return bw, func() error {
		if err := bw.Flush(); err != nil {
			file.Close()
			return errors.Wrapf(err, "write %s", path)
		}
		return file.Close()
	}, nil
}
