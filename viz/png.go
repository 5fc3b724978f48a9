package viz

import (
	"image/color"
	"io"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/YuminosukeSato/linreg/pkg/errors"
	"github.com/YuminosukeSato/linreg/pkg/log"
)

// Default PNG size per chart.
const (
	ChartWidth  = 6 * vg.Inch
	ChartHeight = 5 * vg.Inch
)

var markerColor = color.RGBA{R: 220, A: 255}

func xys(pts []Point) plotter.XYs {
	out := make(plotter.XYs, len(pts))
	for i, p := range pts {
		out[i].X = p.X
		out[i].Y = p.Y
	}
	return out
}

// NewPlot converts c into a gonum plot.
func NewPlot(c Chart) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel

	for i, s := range c.Series {
		switch s.Kind {
		case Marker:
			scatter, err := plotter.NewScatter(xys(s.Points))
			if err != nil {
				return nil, errors.Wrapf(err, "viz: series %q", s.Name)
			}
			scatter.GlyphStyle.Shape = draw.CrossGlyph{}
			scatter.GlyphStyle.Color = markerColor
			scatter.GlyphStyle.Radius = vg.Points(6)
			p.Add(scatter)
			p.Legend.Add(s.Name, scatter)
		case LinePoints:
			line, points, err := plotter.NewLinePoints(xys(s.Points))
			if err != nil {
				return nil, errors.Wrapf(err, "viz: series %q", s.Name)
			}
			line.Color = plotutil.Color(i)
			points.Color = plotutil.Color(i)
			points.Shape = draw.CircleGlyph{}
			p.Add(line, points)
			p.Legend.Add(s.Name, line, points)
		default:
			line, err := plotter.NewLine(xys(s.Points))
			if err != nil {
				return nil, errors.Wrapf(err, "viz: series %q", s.Name)
			}
			line.Color = plotutil.Color(i)
			line.Width = vg.Points(2)
			p.Add(line)
			p.Legend.Add(s.Name, line)
		}
	}
	return p, nil
}

// WritePNG draws charts side by side on one canvas and writes it to w.
func WritePNG(w io.Writer, charts []Chart) error {
	if len(charts) == 0 {
		return errors.NewValueError("viz.WritePNG", "no charts to render")
	}

	row := make([]*plot.Plot, len(charts))
	for i, c := range charts {
		p, err := NewPlot(c)
		if err != nil {
			return err
		}
		row[i] = p
	}

	img := vgimg.New(vg.Length(len(charts))*ChartWidth, ChartHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(charts),
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter,
		PadTop:    vg.Points(2),
		PadBottom: vg.Points(2),
		PadLeft:   vg.Points(2),
		PadRight:  vg.Points(2),
	}

	canvases := plot.Align([][]*plot.Plot{row}, tiles, dc)
	for j, p := range row {
		p.Draw(canvases[0][j])
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return errors.Wrap(err, "viz: write png")
	}
	return nil
}

// SavePNG writes charts to the PNG file at path.
func SavePNG(charts []Chart, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "viz: create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "viz: close %s", path)
		}
	}()

	if err := WritePNG(f, charts); err != nil {
		return err
	}

	log.GetLoggerWithName("viz").Info("Chart saved",
		"path", path,
		"charts", len(charts),
	)
	return nil
}
