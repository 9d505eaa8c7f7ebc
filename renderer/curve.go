package renderer

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/etnz/onyx"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	curveColor    = color.RGBA{R: 0, G: 128, B: 255, A: 255}
	expectedColor = color.RGBA{R: 255, G: 0, B: 0, A: 100}
)

// SimulationCurve writes the simulated equity path as a PNG, with the
// expected balance as a dashed line.
func SimulationCurve(w io.Writer, r onyx.SimulationResult) error {
	if len(r.Path) == 0 {
		return errors.New("empty simulation path")
	}
	pts := make(plotter.XYs, len(r.Path))
	for i, b := range r.Path {
		pts[i].X = float64(i)
		pts[i].Y = b.AsFloat()
	}

	p := plot.New()
	p.Title.Text = "Simulated Equity"
	p.X.Label.Text = "Trade"
	p.Y.Label.Text = "Balance (USD)"
	p.Add(plotter.NewGrid())

	line, err := equityLine(pts)
	if err != nil {
		return err
	}
	expected, err := plotter.NewLine(plotter.XYs{
		{X: 0, Y: r.Path[0].AsFloat()},
		{X: float64(len(r.Path) - 1), Y: r.Expected.AsFloat()},
	})
	if err != nil {
		return fmt.Errorf("cannot draw expected balance: %w", err)
	}
	expected.Color = expectedColor
	expected.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	p.Add(line, expected)

	return writePNG(w, p)
}

// SnapshotCurve writes the portfolio value series as a PNG over time.
func SnapshotCurve(w io.Writer, snapshots []onyx.Snapshot) error {
	if len(snapshots) == 0 {
		return errors.New("no portfolio snapshot")
	}
	pts := make(plotter.XYs, len(snapshots))
	for i, s := range snapshots {
		pts[i].X = float64(s.Time().Unix())
		pts[i].Y = s.TotalValue.AsFloat()
	}

	p := plot.New()
	p.Title.Text = "Portfolio Value"
	p.Y.Label.Text = "Value (USD)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "Jan 02 15:04"}
	p.Add(plotter.NewGrid())

	line, err := equityLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)

	return writePNG(w, p)
}

func equityLine(pts plotter.XYs) (*plotter.Line, error) {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("cannot draw equity curve: %w", err)
	}
	line.Color = curveColor
	line.Width = vg.Points(2)
	return line, nil
}

func writePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("cannot render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("cannot write chart: %w", err)
	}
	return nil
}
