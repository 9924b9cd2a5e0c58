// Package monitoring holds the process-wide diagnostic logging hooks shared
// by the mapping pipeline and the frame transport.
package monitoring

import (
	"io"
	"log"
	"sync"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger. Tests or production code can redirect or
// mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

var (
	traceMu     sync.RWMutex
	traceLogger *log.Logger
)

// SetTraceWriter enables the high-frequency trace stream (per-frame and
// per-scan telemetry). Pass nil to disable; trace is off by default so the
// per-frame hot path costs one RLock when unused.
func SetTraceWriter(w io.Writer) {
	traceMu.Lock()
	defer traceMu.Unlock()
	if w == nil {
		traceLogger = nil
		return
	}
	traceLogger = log.New(w, "[map] ", log.LstdFlags|log.Lmicroseconds)
}

// Tracef logs to the trace stream when enabled.
func Tracef(format string, v ...interface{}) {
	traceMu.RLock()
	l := traceLogger
	traceMu.RUnlock()
	if l != nil {
		l.Printf(format, v...)
	}
}
