// Package dataset holds the in-memory observation table and everything that
// produces one: file and HTTP sources, filters and a memoizing cache.
//
// A Table wraps a gota DataFrame. Missing numeric cells are NaN and missing
// string cells are NA; every operation returns a new Table and never
// modifies its receiver.
package dataset

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/pm25scope/pkg/errors"
)

// Known columns of the WHO PM2.5 export.
const (
	ColValue       = "FactValueNumeric"
	ColPeriod      = "Period"
	ColRegion      = "ParentLocation"
	ColSettlement  = "Dim1"
	ColLocation    = "Location"
	ColCountryCode = "SpatialDimValueCode"
)

// Columns appended by outlier detection.
const (
	ColOutlierIQR = "outlier_IQR"
	ColZScore     = "z_score"
	ColOutlierZ   = "outlier_z"
)

// Table is an immutable view over a DataFrame.
type Table struct {
	df dataframe.DataFrame
}

// FromDataFrame wraps df, surfacing a DataFrame construction error.
func FromDataFrame(df dataframe.DataFrame) (*Table, error) {
	if df.Err != nil {
		return nil, errors.NewComputationError("dataset.FromDataFrame", "", df.Err)
	}
	return &Table{df: df}, nil
}

// New builds a Table from columns of equal length.
func New(columns ...series.Series) (*Table, error) {
	if len(columns) == 0 {
		return nil, errors.NewValueError("dataset.New", "a table needs at least one column")
	}
	return FromDataFrame(dataframe.New(columns...))
}

// DataFrame returns the underlying DataFrame.
func (t *Table) DataFrame() dataframe.DataFrame {
	return t.df
}

// Nrow returns the number of rows.
func (t *Table) Nrow() int { return t.df.Nrow() }

// Ncol returns the number of columns.
func (t *Table) Ncol() int { return t.df.Ncol() }

// Names returns the column names in table order.
func (t *Table) Names() []string { return t.df.Names() }

// HasColumn reports whether name is a column of t.
func (t *Table) HasColumn(name string) bool {
	for _, n := range t.df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func (t *Table) column(op, name string) (series.Series, error) {
	if !t.HasColumn(name) {
		return series.Series{}, errors.NewMissingColumnError(op, name)
	}
	return t.df.Col(name), nil
}

// IsNumeric reports whether column name holds ints or floats.
func (t *Table) IsNumeric(name string) bool {
	if !t.HasColumn(name) {
		return false
	}
	switch t.df.Col(name).Type() {
	case series.Int, series.Float:
		return true
	default:
		return false
	}
}

// Floats returns column name as float64 with missing cells as NaN. A string
// or bool column yields a ComputationError.
func (t *Table) Floats(name string) ([]float64, error) {
	s, err := t.column("Table.Floats", name)
	if err != nil {
		return nil, err
	}
	switch s.Type() {
	case series.Int, series.Float:
		return s.Float(), nil
	default:
		return nil, errors.NewComputationError("Table.Floats", name,
			fmt.Errorf("column type is %s, not numeric", s.Type()))
	}
}

// Strings returns column name rendered as strings with missing cells as "".
func (t *Table) Strings(name string) ([]string, error) {
	s, err := t.column("Table.Strings", name)
	if err != nil {
		return nil, err
	}
	out := make([]string, s.Len())
	for i := 0; i < s.Len(); i++ {
		if e := s.Elem(i); !isMissing(e) {
			out[i] = e.String()
		}
	}
	return out, nil
}

// Missing returns a mask of the missing cells of column name.
func (t *Table) Missing(name string) ([]bool, error) {
	s, err := t.column("Table.Missing", name)
	if err != nil {
		return nil, err
	}
	mask := make([]bool, s.Len())
	for i := 0; i < s.Len(); i++ {
		mask[i] = isMissing(s.Elem(i))
	}
	return mask, nil
}

// isMissing treats both NA elements and float NaN values as missing.
func isMissing(e series.Element) bool {
	if e.IsNA() {
		return true
	}
	if e.Type() == series.Float {
		return math.IsNaN(e.Float())
	}
	return false
}

// Subset returns the rows at the given indices, in that order.
func (t *Table) Subset(rows []int) (*Table, error) {
	if len(rows) == 0 {
		return t.Empty(), nil
	}
	return FromDataFrame(t.df.Subset(rows))
}

// Empty returns a zero-row table with the same columns and types.
func (t *Table) Empty() *Table {
	names := t.df.Names()
	types := t.df.Types()
	cols := make([]series.Series, len(names))
	for i, name := range names {
		cols[i] = emptySeries(name, types[i])
	}
	if len(cols) == 0 {
		return &Table{df: t.df}
	}
	return &Table{df: dataframe.New(cols...)}
}

func emptySeries(name string, typ series.Type) series.Series {
	switch typ {
	case series.Int:
		return series.New([]int{}, series.Int, name)
	case series.Float:
		return series.New([]float64{}, series.Float, name)
	case series.Bool:
		return series.New([]bool{}, series.Bool, name)
	default:
		return series.New([]string{}, series.String, name)
	}
}

// WithColumn returns a table with s appended, or replacing the column of the
// same name in place.
func (t *Table) WithColumn(s series.Series) (*Table, error) {
	if s.Len() != t.Nrow() {
		return nil, errors.NewDimensionError("Table.WithColumn", t.Nrow(), s.Len(), 0)
	}
	return FromDataFrame(t.df.Mutate(s))
}

// Row returns row i as a column → value map, with missing cells as nil.
func (t *Table) Row(i int) map[string]interface{} {
	row := make(map[string]interface{}, t.Ncol())
	for _, name := range t.Names() {
		e := t.df.Col(name).Elem(i)
		if isMissing(e) {
			row[name] = nil
			continue
		}
		switch e.Type() {
		case series.Int:
			v, _ := e.Int()
			row[name] = v
		case series.Float:
			row[name] = e.Float()
		case series.Bool:
			v, _ := e.Bool()
			row[name] = v
		default:
			row[name] = e.String()
		}
	}
	return row
}

// Rows returns every row as in Row.
func (t *Table) Rows() []map[string]interface{} {
	out := make([]map[string]interface{}, t.Nrow())
	for i := range out {
		out[i] = t.Row(i)
	}
	return out
}
