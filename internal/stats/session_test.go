package stats

import (
	"testing"
	"time"
)

func TestCollectorCounters(t *testing.T) {
	c := NewSessionCollector()

	c.AddFrame(100)
	c.AddFrame(250)
	c.AddPoints(500)
	c.AddPoints(300)
	c.AddSkipped(7)
	c.AddDropped()

	s := c.Summary()
	if s.Frames != 2 {
		t.Errorf("Frames = %d, want 2", s.Frames)
	}
	if s.Bytes != 350 {
		t.Errorf("Bytes = %d, want 350", s.Bytes)
	}
	if s.Points != 800 {
		t.Errorf("Points = %d, want 800", s.Points)
	}
	if s.SkippedPoints != 7 {
		t.Errorf("SkippedPoints = %d, want 7", s.SkippedPoints)
	}
	if s.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", s.Dropped)
	}
}

func TestEmptySessionSummary(t *testing.T) {
	c := NewSessionCollector()
	s := c.Summary()

	if s.Frames != 0 || s.Bytes != 0 || s.Points != 0 {
		t.Errorf("empty summary has counters: %+v", s)
	}
	if s.MeanGap != 0 {
		t.Errorf("MeanGap = %v with no frames", s.MeanGap)
	}
	if s.EndedAt.Before(s.StartedAt) {
		t.Errorf("EndedAt %v before StartedAt %v", s.EndedAt, s.StartedAt)
	}
}

func TestMeanGapNeedsTwoFrames(t *testing.T) {
	c := NewSessionCollector()
	c.AddFrame(10)
	if got := c.Summary().MeanGap; got != 0 {
		t.Errorf("MeanGap after one frame = %v, want 0", got)
	}

	time.Sleep(5 * time.Millisecond)
	c.AddFrame(10)
	if got := c.Summary().MeanGap; got <= 0 {
		t.Errorf("MeanGap after two frames = %v, want > 0", got)
	}
}

func TestCollectorConcurrentUse(t *testing.T) {
	c := NewSessionCollector()
	done := make(chan struct{})

	for i := 0; i < 4; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				c.AddFrame(10)
				c.AddPoints(3)
				c.AddSkipped(1)
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}

	s := c.Summary()
	if s.Frames != 400 || s.Points != 1200 || s.SkippedPoints != 400 {
		t.Errorf("concurrent counters: %+v", s)
	}
}
