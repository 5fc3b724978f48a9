package viz

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/YuminosukeSato/linreg/pkg/errors"
)

// NewEChart converts c into an echarts line chart with value axes. Marker
// series are overlaid as a scatter chart.
func NewEChart(c Chart) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: c.Title,
			},
		),
		charts.WithXAxisOpts(
			opts.XAxis{
				Name: c.XLabel,
				Type: "value",
			},
		),
		charts.WithYAxisOpts(
			opts.YAxis{
				Name: c.YLabel,
				Type: "value",
			},
		),
	)

	var markers *charts.Scatter
	for _, s := range c.Series {
		if s.Kind == Marker {
			if markers == nil {
				markers = charts.NewScatter()
			}
			data := make([]opts.ScatterData, 0, len(s.Points))
			for _, p := range s.Points {
				data = append(data, opts.ScatterData{
					Value:      []interface{}{p.X, p.Y},
					Symbol:     "pin",
					SymbolSize: 30,
				})
			}
			markers.AddSeries(s.Name, data)
			continue
		}

		data := make([]opts.LineData, 0, len(s.Points))
		for _, p := range s.Points {
			data = append(data, opts.LineData{Value: []interface{}{p.X, p.Y}})
		}
		line.AddSeries(s.Name, data)
	}

	if markers != nil {
		line.Overlap(markers)
	}
	return line
}

// RenderHTML writes charts to w as a single HTML page.
func RenderHTML(charts []Chart, w io.Writer) error {
	if len(charts) == 0 {
		return errors.NewValueError("viz.RenderHTML", "no charts to render")
	}

	page := components.NewPage()
	for _, c := range charts {
		page.AddCharts(NewEChart(c))
	}
	if err := page.Render(w); err != nil {
		return errors.Wrap(err, "viz: render html")
	}
	return nil
}
