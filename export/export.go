// Package export writes dashboard tables as CSV or XLSX downloads.
package export

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/YuminosukeSato/pm25scope/cleaning"
	"github.com/YuminosukeSato/pm25scope/dashboard"
	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
	"github.com/YuminosukeSato/pm25scope/pkg/log"
)

// Format is a download encoding.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// ParseFormat accepts "csv" (the default for "") and "xlsx".
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", CSV:
		return CSV, nil
	case XLSX:
		return XLSX, nil
	default:
		return "", errors.NewValueError("export.ParseFormat", "unsupported format "+s)
	}
}

// ContentType is the MIME type of f.
func (f Format) ContentType() string {
	if f == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// FileName appends the extension of f to base.
func (f Format) FileName(base string) string {
	return base + "." + string(f)
}

// Sheet is a header row plus typed data rows. Cells are string, int,
// float64 or nil for missing.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]interface{}
}

// TableSheet converts t into a Sheet named name, keeping numeric cells
// numeric.
func TableSheet(t *dataset.Table, name string) *Sheet {
	s := &Sheet{Name: name, Header: t.Names(), Rows: make([][]interface{}, t.Nrow())}
	for i := range s.Rows {
		row := t.Row(i)
		cells := make([]interface{}, len(s.Header))
		for j, col := range s.Header {
			cells[j] = row[col]
		}
		s.Rows[i] = cells
	}
	return s
}

// SummarySheet converts a grouped summary into a Sheet.
func SummarySheet(groups []dashboard.GroupSummary) *Sheet {
	s := &Sheet{Name: "summary", Header: dashboard.SummaryHeader, Rows: make([][]interface{}, len(groups))}
	for i, g := range groups {
		s.Rows[i] = []interface{}{
			g.Period, g.Region, g.Settlement, g.Count,
			float64(g.Mean), float64(g.Median), float64(g.Min), float64(g.Max),
			float64(g.Std), float64(g.P25), float64(g.P75),
		}
	}
	return s
}

// Write encodes s into w. CSV writes missing cells as "NaN"; XLSX leaves
// them blank.
func Write(w io.Writer, s *Sheet, f Format) error {
	var err error
	switch f {
	case CSV:
		err = writeCSV(w, s)
	case XLSX:
		err = writeXLSX(w, s)
	default:
		return errors.NewValueError("export.Write", "unsupported format "+string(f))
	}
	if err != nil {
		return err
	}
	log.GetLoggerWithName("export").Debug("sheet written",
		"export.sheet", s.Name,
		"export.format", string(f),
		log.RowsKey, len(s.Rows),
	)
	return nil
}

func writeCSV(w io.Writer, s *Sheet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(s.Header); err != nil {
		return errors.Wrap(err, "export: write csv")
	}
	record := make([]string, len(s.Header))
	for _, row := range s.Rows {
		for j, c := range row {
			record[j] = formatCell(c)
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, "export: write csv")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "export: write csv")
}

func formatCell(c interface{}) string {
	switch v := c.(type) {
	case nil:
		return "NaN"
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		if math.IsNaN(v) {
			return "NaN"
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func writeXLSX(w io.Writer, s *Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	name := s.Name
	if name == "" {
		name = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return errors.Wrap(err, "export: write xlsx")
	}

	header := make([]interface{}, len(s.Header))
	for j, h := range s.Header {
		header[j] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return errors.Wrap(err, "export: write xlsx")
	}
	for i, row := range s.Rows {
		cells := make([]interface{}, len(row))
		for j, c := range row {
			if v, ok := c.(float64); ok && (math.IsNaN(v) || math.IsInf(v, 0)) {
				c = nil
			}
			cells[j] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "export: write xlsx")
		}
		if err := f.SetSheetRow(name, cell, &cells); err != nil {
			return errors.Wrap(err, "export: write xlsx")
		}
	}
	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "export: write xlsx")
	}
	return nil
}

// Filtered writes the rows of t selected by filter.
func Filtered(w io.Writer, t *dataset.Table, filter dataset.Filter, f Format) error {
	filtered, err := filter.Apply(t)
	if err != nil {
		return err
	}
	return Write(w, TableSheet(filtered, "filtered"), f)
}

// Summary writes the grouped summary of the rows of t selected by filter.
func Summary(w io.Writer, t *dataset.Table, filter dataset.Filter, f Format) error {
	filtered, err := filter.Apply(t)
	if err != nil {
		return err
	}
	groups, err := dashboard.GroupedSummary(filtered)
	if err != nil {
		return err
	}
	return Write(w, SummarySheet(groups), f)
}

// Cleaned writes raw with IQR outliers on valueColumn removed. The outlier
// flag and z-score columns are kept.
func Cleaned(w io.Writer, raw *dataset.Table, valueColumn string, f Format) error {
	flagged, err := cleaning.DetectOutliers(raw, valueColumn)
	if err != nil {
		return err
	}
	cleaned, err := cleaning.RemoveOutliers(flagged)
	if err != nil {
		return err
	}
	return Write(w, TableSheet(cleaned, "cleaned"), f)
}
