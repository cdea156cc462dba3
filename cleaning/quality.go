package cleaning

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/pm25scope/dataset"
)

// MissingCount is the number of missing cells in one column.
type MissingCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// MissingData counts missing cells per column. Only columns with at least
// one missing cell are listed, ordered by count descending; ties keep table
// column order.
func MissingData(t *dataset.Table) []MissingCount {
	out := []MissingCount{}
	for _, name := range t.Names() {
		mask, err := t.Missing(name)
		if err != nil {
			continue
		}
		n := 0
		for _, m := range mask {
			if m {
				n++
			}
		}
		if n > 0 {
			out = append(out, MissingCount{Column: name, Count: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// CountDuplicates counts rows identical in every column to an earlier row.
// Cells are compared by typed value (floats bit for bit, after folding NaN
// into missing), and missing cells compare equal to each other but not to
// any present value.
func CountDuplicates(t *dataset.Table) int {
	n := t.Nrow()
	if n <= 1 {
		return 0
	}
	df := t.DataFrame()
	cols := make([]series.Series, 0, t.Ncol())
	for _, name := range t.Names() {
		cols = append(cols, df.Col(name))
	}

	seen := make(map[string]struct{}, n)
	dups := 0
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.Reset()
		for _, col := range cols {
			writeCellKey(&b, col.Elem(i))
		}
		key := b.String()
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

// writeCellKey appends a self-delimiting encoding of e to b.
func writeCellKey(b *strings.Builder, e series.Element) {
	if e.IsNA() {
		b.WriteString("n;")
		return
	}
	switch e.Type() {
	case series.Float:
		f := e.Float()
		if math.IsNaN(f) {
			b.WriteString("n;")
			return
		}
		b.WriteString("f")
		b.WriteString(strconv.FormatUint(math.Float64bits(f), 16))
	case series.Int:
		v, _ := e.Int()
		b.WriteString("i")
		b.WriteString(strconv.Itoa(v))
	case series.Bool:
		v, _ := e.Bool()
		b.WriteString("b")
		b.WriteString(strconv.FormatBool(v))
	default:
		str := e.String()
		b.WriteString("s")
		b.WriteString(strconv.Itoa(len(str)))
		b.WriteString(":")
		b.WriteString(str)
	}
	b.WriteString(";")
}
