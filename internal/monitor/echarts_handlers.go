package monitor

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/occugrid/internal/grid"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// handleGridChart renders a quick scatter plot (HTML) of the classified
// occupancy grid using go-echarts. This is a debugging-only endpoint (no
// auth) to visually inspect the map without an external UI.
func (ws *WebServer) handleGridChart(w http.ResponseWriter, r *http.Request) {
	if ws.mapper == nil {
		ws.writeJSONError(w, http.StatusServiceUnavailable, "no mapper configured")
		return
	}

	classified := ws.mapper.Classified()
	if len(classified) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no observed cells available")
		return
	}

	res := ws.mapper.Params().Resolution
	ox := ws.mapper.Params().OriginX
	oy := ws.mapper.Params().OriginY

	freePts := make([]opts.ScatterData, 0, len(classified))
	occPts := make([]opts.ScatterData, 0, len(classified))
	maxAbs := 0.0

	for c, st := range classified {
		// Cell centre in world coordinates
		x := ox + (float64(c.X)+0.5)*res
		y := oy + (float64(c.Y)+0.5)*res
		if math.Abs(x) > maxAbs {
			maxAbs = math.Abs(x)
		}
		if math.Abs(y) > maxAbs {
			maxAbs = math.Abs(y)
		}

		switch st {
		case grid.Occupied:
			occPts = append(occPts, opts.ScatterData{Value: []interface{}{x, y}})
		case grid.Free:
			freePts = append(freePts, opts.ScatterData{Value: []interface{}{x, y}})
		}
	}

	// Add a small padding so points at the edges are visible
	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1.0
	}

	box := ws.mapper.BoundingBox()
	subtitle := fmt.Sprintf(
		"ts=%s bbox=[%d,%d]x[%d,%d] free=%d occupied=%d",
		time.Now().UTC().Format(time.RFC3339),
		box.MinX, box.MaxX, box.MinY, box.MaxY,
		len(freePts), len(occPts),
	)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Occupancy Grid", Theme: "dark", Width: "900px", Height: "900px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Occupancy Grid", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)

	scatter.AddSeries("free", freePts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}), charts.WithItemStyleOpts(opts.ItemStyle{Color: "#9e9e9e"}))
	scatter.AddSeries("occupied", occPts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}), charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ff5252"}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
