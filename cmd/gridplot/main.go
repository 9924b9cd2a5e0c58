package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/banshee-data/occugrid/internal/config"
	"github.com/banshee-data/occugrid/internal/mapper"
	"github.com/banshee-data/occugrid/internal/monitor"
	"github.com/banshee-data/occugrid/internal/scanlog"
)

var (
	input      = flag.String("input", "", "Path to a recorded JSON-lines scan log (required)")
	outputDir  = flag.String("output", "plots", "Base directory for rendered plots")
	configFile = flag.String("config", "", "Path to JSON tuning config (optional)")
	frontiers  = flag.Bool("frontiers", false, "Print frontier cells after replay")
)

func main() {
	flag.Parse()

	if *input == "" {
		log.Fatal("an -input scan log is required")
	}

	params := mapper.DefaultParams()
	if *configFile != "" {
		cfg, err := config.LoadTuningConfig(*configFile)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
		params = mapper.ParamsFromConfig(cfg)
	}

	m, err := mapper.New(params)
	if err != nil {
		log.Fatalf("failed to create mapper: %v", err)
	}

	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("failed to open scan log: %v", err)
	}
	defer f.Close()

	var scans, points, skipped int
	var lastSensorX, lastSensorY float64
	reader := scanlog.NewReader(f)
	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("failed to read scan log: %v", err)
		}

		res := m.Update(rec.Cloud(), rec.SensorX, rec.SensorY)
		scans++
		points += res.PointsIn
		skipped += res.SkippedCount
		lastSensorX, lastSensorY = rec.SensorX, rec.SensorY
	}

	if scans == 0 {
		log.Fatal("scan log contained no records")
	}

	box := m.BoundingBox()
	log.Printf("replayed %d scans (%d points, %d skipped); bbox [%d,%d]x[%d,%d], %d cells observed",
		scans, points, skipped, box.MinX, box.MaxX, box.MinY, box.MaxY, m.Stats().ObservedCells)

	dir, err := monitor.MakePlotOutputDir(*outputDir, *input)
	if err != nil {
		log.Fatalf("failed to create output dir: %v", err)
	}

	out := filepath.Join(dir, "grid.png")
	if err := monitor.RenderGridView(m.Export(), out); err != nil {
		log.Fatalf("failed to render grid: %v", err)
	}
	log.Printf("wrote %s", out)

	if *frontiers {
		cells := m.WavefrontFrontiers(m.CellAt(lastSensorX, lastSensorY))
		fmt.Printf("%d frontier cells:\n", len(cells))
		for c := range cells {
			fmt.Printf("  (%d, %d)\n", c.X, c.Y)
		}
	}
}
