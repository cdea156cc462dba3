package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/pm25scope/dashboard"
	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/export"
	"github.com/YuminosukeSato/pm25scope/internal/config"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
)

const rawCSV = `Period,ParentLocation,Dim1,Location,SpatialDimValueCode,FactValueNumeric
2015,Europe,Urban,France,FRA,10
2015,Europe,Urban,France,FRA,11
2015,Europe,Rural,Italy,ITA,12
2016,Europe,Urban,France,FRA,12
2016,Europe,Rural,Italy,ITA,13
2016,Africa,Urban,Egypt,EGY,14
2016,Africa,Towns,Nigeria,NGA,400
`

func readTable(t *testing.T, data string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	return tbl
}

func TestWriteCleaningReport(t *testing.T) {
	view, err := dashboard.CleaningReport(readTable(t, rawCSV), dataset.ColValue)
	require.NoError(t, err)

	var buf bytes.Buffer
	writeCleaningReport(&buf, view)
	out := buf.String()

	assert.Contains(t, out, "Rows: 7 raw, 6 after cleaning")
	assert.Contains(t, out, "Duplicate rows: 0")
	assert.Contains(t, out, "Outliers: 1 by IQR")
	assert.Contains(t, out, "Missing values (0 columns)")
	assert.Contains(t, out, "Total Outliers")
	assert.Contains(t, out, "Removed outliers (sample)")
	assert.Contains(t, out, "Nigeria")
	assert.Contains(t, out, "400")
}

func TestWriteGroupedSummary(t *testing.T) {
	groups, err := dashboard.GroupedSummary(readTable(t, rawCSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	writeGroupedSummary(&buf, groups)
	out := buf.String()

	assert.Contains(t, out, "Grouped summary (6 groups)")
	assert.Contains(t, out, "Towns")
	assert.Contains(t, out, "10.5")
}

func TestWriteRegression(t *testing.T) {
	tbl := readTable(t, `Dim1,Location,Period,FactValueNumeric
Urban,Paris,2015,10
Rural,Lyon,2015,5
Urban,Paris,2016,30
Urban,Paris,2017,10
Rural,Lyon,2016,5
Urban,Paris,2018,10
Rural,Lyon,2017,5
Urban,Paris,2019,10
Rural,Lyon,2018,5
`)
	view, err := dashboard.Regression(tbl, dataset.ColValue, []string{dataset.ColSettlement})
	require.NoError(t, err)

	var buf bytes.Buffer
	writeRegression(&buf, view, 5)
	out := buf.String()

	assert.Contains(t, out, "Run "+view.RunID)
	assert.Contains(t, out, "Dim1_Rural")
	assert.Contains(t, out, "Residual outliers: 1")
	assert.Contains(t, out, "16.0000")
	assert.Contains(t, out, "Paris")

	buf.Reset()
	writeRegression(&buf, view, 0)
	assert.NotContains(t, buf.String(), "Paris")
}

func TestFilterFlags(t *testing.T) {
	f := filterFlags{from: 2016, to: 2015}
	_, err := f.filter()
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))

	f = filterFlags{year: 2016, regions: []string{"Europe"}, types: []string{"Urban"}}
	got, err := f.filter()
	require.NoError(t, err)
	assert.Equal(t, dataset.Filter{Year: 2016, Regions: []string{"Europe"}, SettlementTypes: []string{"Urban"}}, got)
}

func TestRunExport(t *testing.T) {
	c := config.Default()
	raw := readTable(t, rawCSV)
	cache := dataset.NewCache(
		dataset.StaticSource{Name: c.Data.CleanSource, Table: raw},
		dataset.StaticSource{Name: c.Data.RawSource, Table: raw},
	)
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	var buf bytes.Buffer
	err := runExport(cmd, cache, c, "filtered", dataset.Filter{Year: 2016}, export.CSV, &buf)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 5, "header plus four 2016 rows")

	buf.Reset()
	err = runExport(cmd, cache, c, "cleaned", dataset.Filter{}, export.CSV, &buf)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "Nigeria")

	err = runExport(cmd, cache, c, "everything", dataset.Filter{}, export.CSV, &buf)
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "pm25scope.yaml")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"config", "init", path})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Wrote "+path)

	_, err := os.Stat(path)
	require.NoError(t, err)
	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), loaded)

	rootCmd.SetArgs([]string{"config", "init", path})
	assert.Error(t, rootCmd.Execute(), "existing file is not overwritten without --force")
}
