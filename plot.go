package vision

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotDistribution renders a bar chart of images per class and saves it to
// path. The format follows the file extension (.png, .svg, .pdf, ...).
func PlotDistribution(info Info, path string) error {
	if len(info.Classes) == 0 {
		return fmt.Errorf("%w: nothing to plot for %s", ErrInvalidArgument, info.Root)
	}

	values := make(plotter.Values, len(info.Classes))
	for i, c := range info.Classes {
		values[i] = float64(c.Images)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Images per class (%d classes, %d images)", info.ClassCount, info.ImageCount)
	p.X.Label.Text = "Class"
	p.Y.Label.Text = "Images"

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("building bar chart: %w", err)
	}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(info.ClassNames()...)

	if b := info.Balance(); b.Mean > 0 {
		mean, err := plotter.NewLine(plotter.XYs{
			{X: -0.5, Y: b.Mean},
			{X: float64(len(info.Classes)) - 0.5, Y: b.Mean},
		})
		if err != nil {
			return fmt.Errorf("building mean line: %w", err)
		}
		mean.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(mean)
		p.Legend.Add("mean", mean)
	}

	// Widen the canvas for many classes so labels stay readable.
	width := 6 * vg.Inch
	if n := len(info.Classes); n > 12 {
		width = vg.Length(n) * 0.5 * vg.Inch
	}
	if err := p.Save(width, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("%w: saving plot %s: %v", ErrStorageError, path, err)
	}
	return nil
}
