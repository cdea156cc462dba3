package server

import (
	"bytes"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"gonum.org/v1/plot"

	"github.com/YuminosukeSato/pm25scope/charts"
	"github.com/YuminosukeSato/pm25scope/cleaning"
	"github.com/YuminosukeSato/pm25scope/dashboard"
	"github.com/YuminosukeSato/pm25scope/dataset"
	"github.com/YuminosukeSato/pm25scope/export"
	"github.com/YuminosukeSato/pm25scope/pkg/errors"
	"github.com/YuminosukeSato/pm25scope/regression"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	t, err := s.clean(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := dashboard.FilterOptions(t)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := filterParams(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	n, err := topNParam(q, s.cfg.Dashboard.TopN)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.clean(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := dashboard.Overview(t, f, n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	f, err := filterParams(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.clean(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := dashboard.Analysis(t, f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleCleaning(w http.ResponseWriter, r *http.Request) {
	raw, err := s.raw(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := dashboard.CleaningReport(raw, s.cfg.Analysis.ValueColumn)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// regressionInput resolves the filtered table, target and predictors of a
// regression request. target and predictor override the configured model.
func (s *Server) regressionInput(r *http.Request) (*dataset.Table, string, []string, error) {
	q := r.URL.Query()
	f, err := filterParams(q)
	if err != nil {
		return nil, "", nil, err
	}
	t, err := s.clean(r.Context())
	if err != nil {
		return nil, "", nil, err
	}
	if t, err = f.Apply(t); err != nil {
		return nil, "", nil, err
	}
	target := s.cfg.Regression.Target
	if v := q.Get("target"); v != "" {
		target = v
	}
	predictors := s.cfg.Regression.Predictors
	if v := listParam(q, "predictor"); len(v) > 0 {
		predictors = v
	}
	return t, target, predictors, nil
}

func (s *Server) handleRegression(w http.ResponseWriter, r *http.Request) {
	t, target, predictors, err := s.regressionInput(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := dashboard.Regression(t, target, predictors)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	n, err := topNParam(r.URL.Query(), s.cfg.Dashboard.TopN)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.clean(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := dashboard.RegionAverages(t, n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleGlobal(w http.ResponseWriter, r *http.Request) {
	t, err := s.clean(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := dashboard.GlobalFrames(t)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// download buffers the export so that a failure still yields an error
// response instead of a truncated file.
func (s *Server) download(w http.ResponseWriter, r *http.Request, base string, write func(*bytes.Buffer, export.Format) error) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := write(&buf, format); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.FileName(base)+`"`)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportFiltered(w http.ResponseWriter, r *http.Request) {
	f, err := filterParams(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.download(w, r, "filtered_pm25_data", func(buf *bytes.Buffer, format export.Format) error {
		t, err := s.clean(r.Context())
		if err != nil {
			return err
		}
		return export.Filtered(buf, t, f, format)
	})
}

func (s *Server) handleExportSummary(w http.ResponseWriter, r *http.Request) {
	f, err := filterParams(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.download(w, r, "pm25_summary_statistics", func(buf *bytes.Buffer, format export.Format) error {
		t, err := s.clean(r.Context())
		if err != nil {
			return err
		}
		return export.Summary(buf, t, f, format)
	})
}

func (s *Server) handleExportCleaned(w http.ResponseWriter, r *http.Request) {
	s.download(w, r, "pm25_cleaned_final", func(buf *bytes.Buffer, format export.Format) error {
		raw, err := s.raw(r.Context())
		if err != nil {
			return err
		}
		return export.Cleaned(buf, raw, s.cfg.Analysis.ValueColumn, format)
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ids := []string{s.cfg.Data.CleanSource}
	if s.cfg.Data.RawSource != s.cfg.Data.CleanSource {
		ids = append(ids, s.cfg.Data.RawSource)
	}
	rows := make(map[string]int, len(ids))
	for _, id := range ids {
		t, err := s.cache.Reload(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		rows[id] = t.Nrow()
	}
	writeJSON(w, http.StatusOK, map[string]any{"reloaded": rows})
}

// ChartNames lists the charts served under /charts/{name}.png.
var ChartNames = []string{"box-region", "box-type", "trend", "outliers", "residuals", "residual-hist", "qq", "top"}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	ext := path.Ext(file)
	name, format := strings.TrimSuffix(file, ext), strings.TrimPrefix(ext, ".")
	if format == "" {
		format = "png"
	}

	p, err := s.buildChart(r, name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := charts.Render(&buf, p, format, 0, 0); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", chartContentType(format))
	_, _ = w.Write(buf.Bytes())
}

func chartContentType(format string) string {
	switch strings.ToLower(format) {
	case "svg":
		return "image/svg+xml"
	case "pdf":
		return "application/pdf"
	default:
		return "image/png"
	}
}

func (s *Server) buildChart(r *http.Request, name string) (*plot.Plot, error) {
	q := r.URL.Query()
	switch name {
	case "box-region", "box-type", "trend", "top":
		f, err := filterParams(q)
		if err != nil {
			return nil, err
		}
		t, err := s.clean(r.Context())
		if err != nil {
			return nil, err
		}
		if name == "top" {
			n, err := topNParam(q, s.cfg.Dashboard.TopN)
			if err != nil {
				return nil, err
			}
			v, err := dashboard.Overview(t, f, n)
			if err != nil {
				return nil, err
			}
			labels := make([]string, len(v.Top))
			values := make([]float64, len(v.Top))
			for i, l := range v.Top {
				labels[i], values[i] = l.Location, l.Value
			}
			return charts.TopBars(labels, values, "Most polluted locations", dataset.ColValue)
		}
		if t, err = f.Apply(t); err != nil {
			return nil, err
		}
		switch name {
		case "box-region":
			return charts.BoxByGroup(t, dataset.ColRegion, dataset.ColValue, "PM2.5 by region")
		case "box-type":
			return charts.BoxByGroup(t, dataset.ColSettlement, dataset.ColValue, "PM2.5 by settlement type")
		default:
			series, err := charts.TrendSeries(t, dataset.ColRegion, dataset.ColValue)
			if err != nil {
				return nil, err
			}
			return charts.Trend(series, "PM2.5 trend", "mean "+dataset.ColValue)
		}

	case "outliers":
		raw, err := s.raw(r.Context())
		if err != nil {
			return nil, err
		}
		flagged, err := cleaning.DetectOutliers(raw, s.cfg.Analysis.ValueColumn)
		if err != nil {
			return nil, err
		}
		return charts.OutlierScatter(flagged, s.cfg.Analysis.ValueColumn)

	case "residuals", "residual-hist", "qq":
		t, target, predictors, err := s.regressionInput(r)
		if err != nil {
			return nil, err
		}
		res, err := regression.Analyze(t, target, predictors)
		if err != nil {
			return nil, err
		}
		d := res.Diagnostics
		switch name {
		case "residuals":
			return charts.ResidualsVsFitted(d.FittedValues, d.Residuals)
		case "residual-hist":
			return charts.ResidualHistogram(d.Residuals)
		default:
			return charts.QQPlot(d.Residuals)
		}
	}
	return nil, unknownChart(name)
}

func unknownChart(name string) error {
	return errors.NewValueError("charts", "unknown chart "+strings.TrimSpace(name)+", expected one of "+strings.Join(ChartNames, ", "))
}
