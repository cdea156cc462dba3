package server

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
)

func intParam(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValueError("query", name+" must be an integer, got "+strconv.Quote(raw))
	}
	return v, nil
}

// listParam accepts repeated parameters and comma separated values.
func listParam(q url.Values, name string) []string {
	var out []string
	for _, raw := range q[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// filterParams reads year, from, to, region and type.
func filterParams(q url.Values) (dataset.Filter, error) {
	var (
		f   dataset.Filter
		err error
	)
	if f.Year, err = intParam(q, "year"); err != nil {
		return f, err
	}
	if f.YearFrom, err = intParam(q, "from"); err != nil {
		return f, err
	}
	if f.YearTo, err = intParam(q, "to"); err != nil {
		return f, err
	}
	if f.YearFrom != 0 && f.YearTo != 0 && f.YearFrom > f.YearTo {
		return f, errors.NewValueError("query", "from must not be after to")
	}
	f.Regions = listParam(q, "region")
	f.SettlementTypes = listParam(q, "type")
	return f, nil
}

// topNParam reads n, falling back to def.
func topNParam(q url.Values, def int) (int, error) {
	n, err := intParam(q, "n")
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.NewValueError("query", "n must not be negative")
	}
	if n == 0 {
		return def, nil
	}
	return n, nil
}
