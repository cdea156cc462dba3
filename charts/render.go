// Package charts renders the dashboard figures with gonum/plot: box plots
// by group, trend lines, outlier scatters, regression residual plots and
// top-N bar charts.
package charts

import (
	"image/color"
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/pm25scope/pkg/errors"
	"github.com/YuminosukeSato/pm25scope/pkg/log"
)

// Default canvas size.
const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

var (
	// IQRColor marks IQR outliers.
	IQRColor = color.RGBA{R: 220, G: 20, B: 60, A: 255}
	// ZColor marks Z-score outliers.
	ZColor = color.RGBA{R: 34, G: 139, B: 34, A: 255}
	// BaseColor is used for ordinary points.
	BaseColor = color.RGBA{R: 70, G: 130, B: 180, A: 160}
	// ReferenceColor is used for zero lines and Q-Q reference lines.
	ReferenceColor = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)

// Formats lists the encodings accepted by Render.
var Formats = []string{"png", "svg", "pdf"}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

// Render encodes p into w using the given format ("png", "svg" or "pdf").
// A zero width or height falls back to the default canvas size. Panics
// raised while drawing are returned as a PanicError.
func Render(w io.Writer, p *plot.Plot, format string, width, height vg.Length) error {
	format = strings.ToLower(format)
	if !supported(format) {
		return errors.NewValueError("charts.Render", "unsupported format "+format)
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	return errors.SafeExecute("charts.Render", func() error {
		wt, err := p.WriterTo(width, height, format)
		if err != nil {
			return errors.Wrap(err, "charts.Render")
		}
		if _, err := wt.WriteTo(w); err != nil {
			return errors.Wrap(err, "charts.Render")
		}
		log.GetLoggerWithName("charts").Debug("chart rendered",
			log.OperationKey, log.OperationRender,
			"chart.title", p.Title.Text,
			"chart.format", format,
		)
		return nil
	})
}

func supported(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}
