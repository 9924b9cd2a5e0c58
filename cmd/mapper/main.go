package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/occugrid/internal/config"
	"github.com/banshee-data/occugrid/internal/geom"
	"github.com/banshee-data/occugrid/internal/mapper"
	"github.com/banshee-data/occugrid/internal/monitor"
	"github.com/banshee-data/occugrid/internal/monitoring"
	"github.com/banshee-data/occugrid/internal/netframe"
	"github.com/banshee-data/occugrid/internal/scanlog"
	"github.com/banshee-data/occugrid/internal/stats"
	sqlite "github.com/banshee-data/occugrid/internal/storage/sqlite"
)

var (
	listen        = flag.String("listen", ":8081", "HTTP listen address")
	frameAddr     = flag.String("frame-addr", ":2369", "TCP address to listen for sensor frames")
	dbFile        = flag.String("db", "mapper_data.db", "Path to the SQLite database file")
	migrationsDir = flag.String("migrations", "migrations", "Path to the schema migrations directory")
	configFile    = flag.String("config", "", "Path to JSON tuning config (optional)")
	sensorX       = flag.Float64("sensor-x", 0, "Sensor X position in world coordinates")
	sensorY       = flag.Float64("sensor-y", 0, "Sensor Y position in world coordinates")
	recordFile    = flag.String("record", "", "Append received scans to this JSON-lines log (optional)")
	logInterval   = flag.Int("log-interval", 30, "Statistics logging interval in seconds")
	trace         = flag.Bool("trace", false, "Enable per-frame trace logging")
)

// cloudSink feeds decoded frames into the mapper and optionally appends
// them to a scan log for later replay.
type cloudSink struct {
	mapper    *mapper.Mapper
	collector *stats.SessionCollector
	sensorX   float64
	sensorY   float64

	mu     sync.Mutex
	record *os.File
}

func (s *cloudSink) HandleCloud(pts []geom.Point, seq uint32, timestampMicros int64) {
	if s.record != nil {
		s.mu.Lock()
		if err := scanlog.Write(s.record, scanlog.FromCloud(seq, timestampMicros, s.sensorX, s.sensorY, pts)); err != nil {
			log.Printf("failed to record scan %d: %v", seq, err)
		}
		s.mu.Unlock()
	}

	res := s.mapper.Update(pts, s.sensorX, s.sensorY)
	if s.collector != nil && res.SkippedCount > 0 {
		s.collector.AddSkipped(res.SkippedCount)
	}
}

func main() {
	flag.Parse()

	if *trace {
		monitoring.SetTraceWriter(os.Stderr)
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

	db, err := sqlite.Open(*dbFile)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.MigrateUp(*migrationsDir); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	sessions := sqlite.NewSessionStore(db)

	collector := stats.NewSessionCollector()

	sink := &cloudSink{
		mapper:    m,
		collector: collector,
		sensorX:   *sensorX,
		sensorY:   *sensorY,
	}
	if *recordFile != "" {
		f, err := os.OpenFile(*recordFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("failed to open record file: %v", err)
		}
		defer f.Close()
		sink.record = f
	}

	gate := netframe.NewGate()

	listener := netframe.NewFrameListener(netframe.ListenerConfig{
		Address:     *frameAddr,
		Decoder:     netframe.XYZDecoder{},
		Sink:        sink,
		Gate:        gate,
		Stats:       collector,
		LogInterval: time.Duration(*logInterval) * time.Second,
	})

	ws := monitor.NewWebServer(monitor.WebServerConfig{
		Address:  *listen,
		Mapper:   m,
		Stats:    collector,
		Sessions: sessions,
		Listener: listener,
		Gate:     gate,
	})

	var wg sync.WaitGroup
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The stop command is terminal: once the gate reports Stopped the whole
	// process shuts down, same as a signal.
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	wg.Add(1)
	go func() {
		defer wg.Done()
		gate.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-gate.Stopped():
			log.Print("capture stopped, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := listener.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("frame listener error: %v", err)
		}
		log.Print("frame listener terminated")
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ws.Start(ctx); err != nil {
			log.Printf("web server error: %v", err)
		}
	}()

	wg.Wait()

	summary := collector.Summary()
	id, err := sessions.InsertSummary(summary, m.Stats().ObservedCells)
	if err != nil {
		log.Printf("failed to persist session: %v", err)
	} else {
		log.Printf("session %s persisted: %d frames, %d points, %d cells observed",
			id, summary.Frames, summary.Points, m.Stats().ObservedCells)
	}

	log.Printf("Graceful shutdown complete")
}
