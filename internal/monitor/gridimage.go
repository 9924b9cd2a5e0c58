package monitor

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/occugrid/internal/grid"
)

// RenderGridView writes a PNG of the classified grid to path. Free cells are
// drawn light grey, occupied cells red; unknown cells inside the bounding box
// are left blank. Coordinates are in cell units.
func RenderGridView(view grid.DenseView, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Occupancy Grid %dx%d", view.Width, view.Height)
	p.X.Label.Text = "Cell X"
	p.Y.Label.Text = "Cell Y"

	freePts := make(plotter.XYs, 0, len(view.States))
	occPts := make(plotter.XYs, 0, len(view.States))

	for cy := view.Box.MinY; cy <= view.Box.MaxY; cy++ {
		for cx := view.Box.MinX; cx <= view.Box.MaxX; cx++ {
			switch view.At(grid.Cell{X: cx, Y: cy}) {
			case grid.Free:
				freePts = append(freePts, plotter.XY{X: float64(cx), Y: float64(cy)})
			case grid.Occupied:
				occPts = append(occPts, plotter.XY{X: float64(cx), Y: float64(cy)})
			}
		}
	}

	if len(freePts) > 0 {
		s, err := plotter.NewScatter(freePts)
		if err != nil {
			return err
		}
		s.GlyphStyle = draw.GlyphStyle{Color: color.RGBA{R: 200, G: 200, B: 200, A: 255}, Radius: vg.Points(2), Shape: draw.BoxGlyph{}}
		p.Add(s)
		p.Legend.Add("free", s)
	}

	if len(occPts) > 0 {
		s, err := plotter.NewScatter(occPts)
		if err != nil {
			return err
		}
		s.GlyphStyle = draw.GlyphStyle{Color: color.RGBA{R: 220, G: 40, B: 40, A: 255}, Radius: vg.Points(2), Shape: draw.BoxGlyph{}}
		p.Add(s)
		p.Legend.Add("occupied", s)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := p.Save(10*vg.Inch, 10*vg.Inch, path); err != nil {
		return fmt.Errorf("save grid plot: %w", err)
	}
	return nil
}

// FormatTimestamp generates a timestamp string for directory naming.
func FormatTimestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// MakePlotOutputDir creates a timestamped output directory for plots.
// For replayed scan logs: plots/<log_basename>/<timestamp>
// For live data: plots/live_<timestamp>
func MakePlotOutputDir(baseDir, logFile string) (string, error) {
	ts := FormatTimestamp(time.Now())
	var dir string
	if logFile != "" {
		base := filepath.Base(logFile)
		ext := filepath.Ext(base)
		name := base[:len(base)-len(ext)]
		dir = filepath.Join(baseDir, name, ts)
	} else {
		dir = filepath.Join(baseDir, "live_"+ts)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	return dir, nil
}
