package dataset

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"github.com/YuminosukeSato/pm25scope/pkg/errors"
)

// MissingValues are the cell spellings read as missing.
var MissingValues = []string{"", "NA", "NaN", "<nil>"}

// columnTypes pins the known numeric columns so a stray token does not turn
// a whole column into strings.
var columnTypes = map[string]series.Type{
	ColValue:  series.Float,
	ColPeriod: series.Int,
}

// ReadCSV parses a CSV stream with a header row into a Table.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "dataset: read csv")
	}
	return FromRecords(records)
}

// ReadXLSX parses the first sheet of an XLSX workbook into a Table.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "dataset: open xlsx")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset: xlsx has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: read sheet %q", sheets[0])
	}
	return FromRecords(rows)
}

// FromRecords builds a Table from a header row followed by data rows.
// Short rows are padded with missing cells. Cells of the known numeric
// columns that are present but unparseable become NaN and are reported
// once per column as a DataConversionWarning.
func FromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset: no header row")
	}
	header := records[0]
	width := len(header)

	rows := make([][]string, len(records))
	rows[0] = header
	for i, rec := range records[1:] {
		row := make([]string, width)
		copy(row, rec)
		rows[i+1] = row
	}

	if len(rows) == 1 {
		return emptyFromHeader(header)
	}

	df := dataframe.LoadRecords(rows,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(MissingValues),
		dataframe.WithTypes(columnTypes),
	)
	t, err := FromDataFrame(df)
	if err != nil {
		return nil, err
	}
	t.warnConversions(rows)
	return t, nil
}

func emptyFromHeader(header []string) (*Table, error) {
	cols := make([]series.Series, len(header))
	for i, name := range header {
		typ, ok := columnTypes[name]
		if !ok {
			typ = series.String
		}
		cols[i] = emptySeries(name, typ)
	}
	return New(cols...)
}

func (t *Table) warnConversions(rows [][]string) {
	for j, name := range rows[0] {
		if _, pinned := columnTypes[name]; !pinned {
			continue
		}
		mask, err := t.Missing(name)
		if err != nil {
			continue
		}
		bad := 0
		for i, missing := range mask {
			if missing && !isMissingToken(rows[i+1][j]) {
				bad++
			}
		}
		if bad > 0 {
			errors.Warn(errors.NewDataConversionWarning("string", string(t.df.Col(name).Type()),
				fmt.Sprintf("%d unparseable cells in column %q read as missing", bad, name)))
		}
	}
}

func isMissingToken(s string) bool {
	for _, m := range MissingValues {
		if s == m {
			return true
		}
	}
	return false
}
