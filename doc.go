// Package pm25scope analyses the WHO ambient air quality dataset of urban
// PM2.5 concentrations and serves the results as a dashboard API.
//
// The pipeline is a chain of synchronous functions over an immutable
// dataset.Table:
//
//	raw CSV ──► cleaning (missing values, duplicates, IQR/z-score outliers)
//	        ──► dashboard views (key metrics, grouped summary, trends, maps)
//	        ──► regression (OLS on one-hot encoded categorical predictors)
//	        ──► charts (PNG/SVG/PDF) and exports (CSV/XLSX)
//
// # Quick Start
//
//	pm25scope config init
//	pm25scope report --summary --year 2016
//	pm25scope regress --predictor Dim1,ParentLocation
//	pm25scope serve --addr :8080
//
// # Packages
//
//   - dataset: table type, CSV/XLSX loading, sources, filter and load cache
//   - cleaning: missing-value audit, duplicate count, outlier flags
//   - metrics: descriptive statistics, quantiles and regression metrics
//   - preprocessing: one-hot encoding of categorical columns
//   - linear: ordinary least squares with coefficient inference
//   - regression: design matrix preparation, fit, diagnostics, residual outliers
//   - dashboard: the JSON views behind each dashboard screen
//   - charts: gonum/plot renderings of the dashboard figures
//   - export: CSV and XLSX downloads
//   - core/parallel: row-parallel loops above a size threshold
//   - pkg/errors, pkg/log: structured errors and logging
//
// # Library use
//
//	tbl, err := dataset.FileSource{Path: "data/processed/pm25_cleaned.csv"}.Open(ctx)
//	if err != nil {
//	    return err
//	}
//	res, err := regression.Analyze(tbl, dataset.ColValue, []string{dataset.ColSettlement})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Diagnostics.RSquared, len(res.ResidualOutliers))
package pm25scope
