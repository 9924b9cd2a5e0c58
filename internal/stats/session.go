// Package stats accumulates per-session capture and fusion statistics:
// frame and byte throughput, inter-frame gaps, point totals, and
// skipped-point counts. A collector backs one mapping session and its
// summary is persisted when the session ends.
package stats

import (
	"sync"
	"time"

	"github.com/banshee-data/occugrid/internal/monitoring"
)

// SessionSummary is the aggregate view of one mapping session.
type SessionSummary struct {
	StartedAt     time.Time
	EndedAt       time.Time
	Frames        int64
	Bytes         int64
	Points        int64
	SkippedPoints int64
	Dropped       int64
	MeanFPS       float64
	MeanGap       time.Duration // mean inter-frame gap
}

// SessionCollector accumulates counters for one session. Safe for use from
// the listener goroutines and the mapping pipeline concurrently.
type SessionCollector struct {
	mu sync.Mutex

	startedAt time.Time
	lastFrame time.Time
	gapSum    time.Duration
	gapCount  int64

	frames  int64
	bytes   int64
	points  int64
	skipped int64
	dropped int64
}

// NewSessionCollector starts a collector for a session beginning now.
func NewSessionCollector() *SessionCollector {
	return &SessionCollector{startedAt: time.Now()}
}

// AddFrame records one received frame of the given wire size.
func (c *SessionCollector) AddFrame(bytes int) {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames++
	c.bytes += int64(bytes)
	if !c.lastFrame.IsZero() {
		c.gapSum += now.Sub(c.lastFrame)
		c.gapCount++
	}
	c.lastFrame = now
}

// AddPoints records decoded points.
func (c *SessionCollector) AddPoints(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.points += int64(count)
}

// AddSkipped records points rejected during fusion (non-finite coordinates).
func (c *SessionCollector) AddSkipped(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skipped += int64(count)
}

// AddDropped records a frame discarded without fusion (pause, decode error).
func (c *SessionCollector) AddDropped() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropped++
}

// Summary closes over the current counters with the session end set to now.
func (c *SessionCollector) Summary() SessionSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	s := SessionSummary{
		StartedAt:     c.startedAt,
		EndedAt:       now,
		Frames:        c.frames,
		Bytes:         c.bytes,
		Points:        c.points,
		SkippedPoints: c.skipped,
		Dropped:       c.dropped,
	}
	if elapsed := now.Sub(c.startedAt).Seconds(); elapsed > 0 {
		s.MeanFPS = float64(c.frames) / elapsed
	}
	if c.gapCount > 0 {
		s.MeanGap = c.gapSum / time.Duration(c.gapCount)
	}
	return s
}

// LogStats writes a one-line summary to the diagnostic log. Implements the
// listener's stats interface.
func (c *SessionCollector) LogStats() {
	s := c.Summary()
	monitoring.Logf("session: frames=%d bytes=%d points=%d skipped=%d dropped=%d fps=%.1f",
		s.Frames, s.Bytes, s.Points, s.SkippedPoints, s.Dropped, s.MeanFPS)
}
