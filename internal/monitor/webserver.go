package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/occugrid/internal/grid"
	"github.com/banshee-data/occugrid/internal/mapper"
	"github.com/banshee-data/occugrid/internal/netframe"
	"github.com/banshee-data/occugrid/internal/stats"
	sqlite "github.com/banshee-data/occugrid/internal/storage/sqlite"
)

// WebServer handles the HTTP interface for monitoring the mapping pipeline.
// It provides endpoints for health checks, map state, frontier queries and
// capture control.
type WebServer struct {
	address  string
	mapper   *mapper.Mapper
	stats    *stats.SessionCollector
	sessions *sqlite.SessionStore
	listener *netframe.FrameListener
	gate     *netframe.Gate
	server   *http.Server
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address  string
	Mapper   *mapper.Mapper
	Stats    *stats.SessionCollector
	Sessions *sqlite.SessionStore
	Listener *netframe.FrameListener
	Gate     *netframe.Gate
}

// NewWebServer creates a new web server with the provided configuration.
func NewWebServer(config WebServerConfig) *WebServer {
	ws := &WebServer{
		address:  config.Address,
		mapper:   config.Mapper,
		stats:    config.Stats,
		sessions: config.Sessions,
		listener: config.Listener,
		gate:     config.Gate,
	}

	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}

	return ws
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (ws *WebServer) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// Start begins the HTTP server in a goroutine and handles graceful shutdown.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		log.Printf("Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for context cancellation to shut down server
	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}

	log.Printf("HTTP server routine stopped")
	return nil
}

// setupRoutes configures the HTTP routes and handlers.
func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/", ws.handleStatus)
	mux.HandleFunc("/api/map/bbox", ws.handleMapBBox)
	mux.HandleFunc("/api/map/stats", ws.handleMapStats)
	mux.HandleFunc("/api/map/cells", ws.handleMapCells)
	mux.HandleFunc("/api/map/frontiers", ws.handleFrontiers)
	mux.HandleFunc("/api/capture", ws.handleCapture)
	mux.HandleFunc("/api/sessions", ws.handleSessions)
	mux.HandleFunc("/debug/map/grid", ws.handleGridChart)

	return mux
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ws.writeJSON(w, map[string]string{"status": "ok"})
}

func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	status := map[string]interface{}{
		"time": time.Now().UTC().Format(time.RFC3339),
	}
	if ws.gate != nil {
		status["capture_state"] = ws.gate.State().String()
	}
	if ws.mapper != nil {
		ms := ws.mapper.Stats()
		status["updates"] = ms.Updates
		status["observed_cells"] = ms.ObservedCells
	}
	if ws.stats != nil {
		status["session"] = ws.stats.Summary()
	}
	ws.writeJSON(w, status)
}

// handleMapBBox returns the current map bounding box in cell coordinates.
func (ws *WebServer) handleMapBBox(w http.ResponseWriter, r *http.Request) {
	if ws.mapper == nil {
		ws.writeJSONError(w, http.StatusServiceUnavailable, "no mapper configured")
		return
	}
	box := ws.mapper.BoundingBox()
	ws.writeJSON(w, map[string]interface{}{
		"min_x":  box.MinX,
		"max_x":  box.MaxX,
		"min_y":  box.MinY,
		"max_y":  box.MaxY,
		"width":  box.Width(),
		"height": box.Height(),
	})
}

func (ws *WebServer) handleMapStats(w http.ResponseWriter, r *http.Request) {
	if ws.mapper == nil {
		ws.writeJSONError(w, http.StatusServiceUnavailable, "no mapper configured")
		return
	}
	ws.writeJSON(w, ws.mapper.Stats())
}

// mapCellJSON is the wire form of one classified cell.
type mapCellJSON struct {
	X     int32  `json:"x"`
	Y     int32  `json:"y"`
	State string `json:"state"`
}

// handleMapCells returns every observed cell with its classified state.
// Query params:
//
//	state (optional: "free" or "occupied" to filter)
func (ws *WebServer) handleMapCells(w http.ResponseWriter, r *http.Request) {
	if ws.mapper == nil {
		ws.writeJSONError(w, http.StatusServiceUnavailable, "no mapper configured")
		return
	}

	filter := r.URL.Query().Get("state")

	classified := ws.mapper.Classified()
	cells := make([]mapCellJSON, 0, len(classified))
	for c, st := range classified {
		if filter != "" && st.String() != filter {
			continue
		}
		cells = append(cells, mapCellJSON{X: c.X, Y: c.Y, State: st.String()})
	}
	ws.writeJSON(w, map[string]interface{}{"count": len(cells), "cells": cells})
}

// handleFrontiers runs a frontier detection pass over the current map.
// Query params:
//
//	strategy (optional; "active" (default) or "wavefront")
//	robot_x, robot_y (world coordinates; required for wavefront)
func (ws *WebServer) handleFrontiers(w http.ResponseWriter, r *http.Request) {
	if ws.mapper == nil {
		ws.writeJSONError(w, http.StatusServiceUnavailable, "no mapper configured")
		return
	}

	strategy := r.URL.Query().Get("strategy")
	if strategy == "" {
		strategy = "active"
	}

	var cells map[grid.Cell]struct{}
	switch strategy {
	case "active":
		cells = ws.mapper.ActiveAreaFrontiers()
	case "wavefront":
		rx, errX := strconv.ParseFloat(r.URL.Query().Get("robot_x"), 64)
		ry, errY := strconv.ParseFloat(r.URL.Query().Get("robot_y"), 64)
		if errX != nil || errY != nil {
			ws.writeJSONError(w, http.StatusBadRequest, "wavefront strategy requires numeric 'robot_x' and 'robot_y' parameters")
			return
		}
		cells = ws.mapper.WavefrontFrontiers(ws.mapper.CellAt(rx, ry))
	default:
		ws.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("unknown strategy %q", strategy))
		return
	}

	out := make([][2]int32, 0, len(cells))
	for c := range cells {
		out = append(out, [2]int32{c.X, c.Y})
	}
	ws.writeJSON(w, map[string]interface{}{"strategy": strategy, "count": len(out), "frontiers": out})
}

// handleCapture reports or changes the capture gate state.
// GET returns the current state; POST with cmd=pause|resume|stop broadcasts
// the command to all connected producers.
func (ws *WebServer) handleCapture(w http.ResponseWriter, r *http.Request) {
	if ws.gate == nil {
		ws.writeJSONError(w, http.StatusServiceUnavailable, "no capture gate configured")
		return
	}

	switch r.Method {
	case http.MethodGet:
		ws.writeJSON(w, map[string]string{"state": ws.gate.State().String()})
	case http.MethodPost:
		cmd, err := netframe.ParseCommand(r.FormValue("cmd"))
		if err != nil {
			ws.writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		if ws.listener != nil {
			if err := ws.listener.Broadcast(cmd); err != nil {
				ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("broadcast error: %v", err))
				return
			}
		} else {
			ws.gate.Send(cmd)
		}
		ws.writeJSON(w, map[string]string{"state": ws.gate.State().String()})
	default:
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleSessions returns recent persisted capture sessions.
// Query params:
//
//	limit (optional, default 10)
func (ws *WebServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if ws.sessions == nil {
		ws.writeJSONError(w, http.StatusServiceUnavailable, "no session store configured")
		return
	}

	limit := 10
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}

	sessions, err := ws.sessions.List(limit)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("list sessions: %v", err))
		return
	}
	ws.writeJSON(w, map[string]interface{}{"count": len(sessions), "sessions": sessions})
}
