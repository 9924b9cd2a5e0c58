package netframe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/banshee-data/occugrid/internal/geom"
	"github.com/banshee-data/occugrid/internal/monitoring"
)

// FrameStatsInterface provides frame statistics management.
type FrameStatsInterface interface {
	AddFrame(bytes int)
	AddPoints(count int)
	AddSkipped(count int)
	AddDropped()
	LogStats()
}

// CloudDecoder turns a frame payload into a point cloud. Implementations
// own whatever image/depth codec the sensing device uses; the listener
// never inspects payload bytes itself.
type CloudDecoder interface {
	Decode(payload []byte) ([]geom.Point, error)
}

// CloudSink receives decoded point clouds, one per frame.
type CloudSink interface {
	HandleCloud(pts []geom.Point, seq uint32, timestampMicros int64)
}

// ListenerConfig contains configuration options for the frame listener.
type ListenerConfig struct {
	Address     string
	Decoder     CloudDecoder
	Sink        CloudSink
	Gate        *Gate
	Stats       FrameStatsInterface
	MaxPayload  uint32
	LogInterval time.Duration
	ReadTimeout time.Duration // idle wait between frames, default 5s
}

// FrameListener accepts TCP connections from sensing devices and feeds
// decoded point clouds to the sink. While the gate is Paused, frames are
// still drained off the wire (to keep the stream framed) but neither
// decoded nor forwarded; when it reaches Stopped, connections close.
type FrameListener struct {
	address     string
	decoder     CloudDecoder
	sink        CloudSink
	gate        *Gate
	stats       FrameStatsInterface
	maxPayload  uint32
	logInterval time.Duration
	readTimeout time.Duration

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	ln    net.Listener
}

// noopFrameStats is a FrameStatsInterface implementation that does nothing.
// It is used as a safe default when no stats collector is provided.
type noopFrameStats struct{}

func (noopFrameStats) AddFrame(int)   {}
func (noopFrameStats) AddPoints(int)  {}
func (noopFrameStats) AddSkipped(int) {}
func (noopFrameStats) AddDropped()    {}
func (noopFrameStats) LogStats()      {}

// NewFrameListener creates a frame listener with the provided configuration.
func NewFrameListener(config ListenerConfig) *FrameListener {
	stats := config.Stats
	if stats == nil {
		stats = noopFrameStats{}
	}
	logInterval := config.LogInterval
	if logInterval == 0 {
		logInterval = time.Minute
	}
	readTimeout := config.ReadTimeout
	if readTimeout == 0 {
		readTimeout = 5 * time.Second
	}
	return &FrameListener{
		address:     config.Address,
		decoder:     config.Decoder,
		sink:        config.Sink,
		gate:        config.Gate,
		stats:       stats,
		maxPayload:  config.MaxPayload,
		logInterval: logInterval,
		readTimeout: readTimeout,
		conns:       make(map[net.Conn]struct{}),
	}
}

// Start begins accepting connections and processing frames until the
// context is cancelled.
func (l *FrameListener) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.address, err)
	}
	l.mu.Lock()
	l.ln = ln
	l.mu.Unlock()
	defer ln.Close()

	monitoring.Logf("frame listener started on %s", l.address)

	go l.startStatsLogging(ctx)
	go func() {
		<-ctx.Done()
		ln.Close()
		l.closeAll()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				monitoring.Logf("frame listener stopping due to context cancellation")
				return ctx.Err()
			}
			monitoring.Logf("frame listener accept error: %v", err)
			continue
		}

		l.mu.Lock()
		l.conns[conn] = struct{}{}
		l.mu.Unlock()

		go l.handleConn(ctx, conn)
	}
}

// startStatsLogging periodically logs frame statistics.
func (l *FrameListener) startStatsLogging(ctx context.Context) {
	ticker := time.NewTicker(l.logInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.stats.LogStats()
		}
	}
}

// handleConn reads frames off one device connection until error, context
// cancellation, or gate stop.
func (l *FrameListener) handleConn(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr()
	monitoring.Logf("device %v connected", remote)
	defer func() {
		l.mu.Lock()
		delete(l.conns, conn)
		l.mu.Unlock()
		conn.Close()
		monitoring.Logf("device %v disconnected", remote)
	}()

	for {
		if ctx.Err() != nil {
			return
		}
		if l.gate != nil && l.gate.State() == StateStopped {
			return
		}

		// The idle deadline arms only while waiting for a frame to start.
		// A timeout here has consumed nothing, so looping keeps the stream
		// framed; timing out mid-frame instead would discard the bytes
		// already read and resynchronise on garbage.
		conn.SetReadDeadline(time.Now().Add(l.readTimeout))
		var first [1]byte
		if _, err := io.ReadFull(conn, first[:]); err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return
			}
			monitoring.Logf("device %v read error, closing: %v", remote, err)
			return
		}

		// A frame has started: read the remainder without the idle deadline
		// so a slow sender is never cut off mid-record. A dead sender is
		// unblocked by the connection close on shutdown.
		conn.SetReadDeadline(time.Time{})
		frame, err := ReadFrame(io.MultiReader(bytes.NewReader(first[:]), conn), l.maxPayload)
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) || ctx.Err() != nil {
				return
			}
			monitoring.Logf("device %v frame error, closing: %v", remote, err)
			return
		}

		l.stats.AddFrame(HeaderSize + len(frame.Payload))

		// Paused: the frame has already been drained; drop it unprocessed.
		if l.gate != nil && l.gate.State() == StatePaused {
			l.stats.AddDropped()
			continue
		}

		if l.decoder == nil || l.sink == nil {
			continue
		}
		pts, err := l.decoder.Decode(frame.Payload)
		if err != nil {
			monitoring.Logf("frame %d from %v failed to decode: %v", frame.Seq, remote, err)
			l.stats.AddDropped()
			continue
		}
		l.stats.AddPoints(len(pts))
		l.sink.HandleCloud(pts, frame.Seq, frame.TimestampMicros)
	}
}

// Addr returns the bound listener address, or nil before Start.
func (l *FrameListener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

// Broadcast writes a command line to every connected device. Devices use
// it to gate capture on their side; the local gate is updated as well.
func (l *FrameListener) Broadcast(cmd Command) error {
	if l.gate != nil {
		l.gate.Send(cmd)
	}

	l.mu.Lock()
	conns := make([]net.Conn, 0, len(l.conns))
	for c := range l.conns {
		conns = append(conns, c)
	}
	l.mu.Unlock()

	var firstErr error
	for _, c := range conns {
		c.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := WriteCommand(c, cmd); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (l *FrameListener) closeAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for c := range l.conns {
		c.Close()
	}
}

// Close shuts the listener socket and all device connections.
func (l *FrameListener) Close() error {
	l.mu.Lock()
	ln := l.ln
	l.mu.Unlock()
	l.closeAll()
	if ln != nil {
		return ln.Close()
	}
	return nil
}
