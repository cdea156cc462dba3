package main

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
)

// filterFlags binds the dataset filter to command flags.
type filterFlags struct {
	year, from, to int
	regions        []string
	types          []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.year, "year", 0, "select one year")
	cmd.Flags().IntVar(&f.from, "from", 0, "first year, inclusive")
	cmd.Flags().IntVar(&f.to, "to", 0, "last year, inclusive")
	cmd.Flags().StringSliceVar(&f.regions, "region", nil, "WHO region (repeatable or comma separated)")
	cmd.Flags().StringSliceVar(&f.types, "type", nil, "settlement type (repeatable or comma separated)")
}

func (f *filterFlags) filter() (dataset.Filter, error) {
	if f.from != 0 && f.to != 0 && f.from > f.to {
		return dataset.Filter{}, errors.NewValueError("filter", "--from must not be after --to")
	}
	return dataset.Filter{
		Year:            f.year,
		YearFrom:        f.from,
		YearTo:          f.to,
		Regions:         f.regions,
		SettlementTypes: f.types,
	}, nil
}
