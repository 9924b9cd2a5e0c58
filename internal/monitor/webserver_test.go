package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/banshee-data/occugrid/internal/geom"
	"github.com/banshee-data/occugrid/internal/mapper"
	"github.com/banshee-data/occugrid/internal/netframe"
	"github.com/banshee-data/occugrid/internal/stats"
)

// newTestMapper builds a mapper with a small saturated map: a single beam
// from the origin to (1.025, 0), repeated until the cells classify.
func newTestMapper(t *testing.T) *mapper.Mapper {
	t.Helper()

	m, err := mapper.New(mapper.DefaultParams())
	if err != nil {
		t.Fatalf("mapper.New failed: %v", err)
	}
	cloud := []geom.Point{{X: 1.025, Y: 0, Z: 0}}
	for i := 0; i < 20; i++ {
		m.Update(cloud, 0, 0)
	}
	return m
}

func newTestServer(t *testing.T) *WebServer {
	t.Helper()

	return NewWebServer(WebServerConfig{
		Address: ":0",
		Mapper:  newTestMapper(t),
		Stats:   stats.NewSessionCollector(),
		Gate:    netframe.NewGate(),
	})
}

func serveRequest(t *testing.T, ws *WebServer, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	var err error
	if form != nil {
		req, err = http.NewRequest(method, target, strings.NewReader(form.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		req, err = http.NewRequest(method, target, nil)
	}
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	ws.setupRoutes().ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}

func TestNewWebServer(t *testing.T) {
	gate := netframe.NewGate()
	server := NewWebServer(WebServerConfig{
		Address: ":0",
		Gate:    gate,
	})

	if server == nil {
		t.Fatal("NewWebServer returned nil")
	}
	if server.gate != gate {
		t.Error("WebServer gate not set correctly")
	}
	if server.server == nil {
		t.Error("WebServer http.Server not initialised")
	}
}

func TestWebServer_HealthHandler(t *testing.T) {
	rr := serveRequest(t, newTestServer(t), "GET", "/health", nil)

	if rr.Code != http.StatusOK {
		t.Errorf("Health handler returned wrong status code: got %v want %v",
			rr.Code, http.StatusOK)
	}
	if ctype := rr.Header().Get("Content-Type"); ctype != "application/json" {
		t.Errorf("Health handler returned wrong content type: got %v want application/json", ctype)
	}

	var body map[string]string
	decodeJSON(t, rr, &body)
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", body["status"])
	}
}

func TestWebServer_StatusHandler(t *testing.T) {
	rr := serveRequest(t, newTestServer(t), "GET", "/", nil)

	if rr.Code != http.StatusOK {
		t.Errorf("Status handler returned wrong status code: got %v want %v",
			rr.Code, http.StatusOK)
	}

	var body map[string]interface{}
	decodeJSON(t, rr, &body)
	if body["capture_state"] != "running" {
		t.Errorf("Expected capture_state running, got %v", body["capture_state"])
	}
	if body["updates"].(float64) != 20 {
		t.Errorf("Expected 20 updates, got %v", body["updates"])
	}
}

func TestWebServer_StatusHandlerUnknownPath(t *testing.T) {
	rr := serveRequest(t, newTestServer(t), "GET", "/no/such/path", nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %v", rr.Code)
	}
}

func TestWebServer_MapBBox(t *testing.T) {
	rr := serveRequest(t, newTestServer(t), "GET", "/api/map/bbox", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("BBox handler returned wrong status code: got %v want %v",
			rr.Code, http.StatusOK)
	}

	var body map[string]float64
	decodeJSON(t, rr, &body)

	// The beam runs from cell (0,0) to (20,0).
	if body["min_x"] != 0 || body["max_x"] != 20 {
		t.Errorf("Expected x range [0,20], got [%v,%v]", body["min_x"], body["max_x"])
	}
	if body["width"] != 21 || body["height"] != 1 {
		t.Errorf("Expected 21x1 box, got %vx%v", body["width"], body["height"])
	}
}

func TestWebServer_MapBBoxNoMapper(t *testing.T) {
	ws := NewWebServer(WebServerConfig{Address: ":0"})
	rr := serveRequest(t, ws, "GET", "/api/map/bbox", nil)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without a mapper, got %v", rr.Code)
	}
}

func TestWebServer_MapCells(t *testing.T) {
	ws := newTestServer(t)

	rr := serveRequest(t, ws, "GET", "/api/map/cells", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Cells handler returned wrong status code: got %v", rr.Code)
	}

	var body struct {
		Count int `json:"count"`
		Cells []struct {
			X     int32  `json:"x"`
			Y     int32  `json:"y"`
			State string `json:"state"`
		} `json:"cells"`
	}
	decodeJSON(t, rr, &body)

	if body.Count != 21 {
		t.Errorf("Expected 21 cells, got %d", body.Count)
	}

	// Filtered view returns only the single occupied endpoint.
	rr = serveRequest(t, ws, "GET", "/api/map/cells?state=occupied", nil)
	decodeJSON(t, rr, &body)
	if body.Count != 1 {
		t.Fatalf("Expected 1 occupied cell, got %d", body.Count)
	}
	if body.Cells[0].X != 20 || body.Cells[0].Y != 0 {
		t.Errorf("Expected occupied cell (20,0), got (%d,%d)", body.Cells[0].X, body.Cells[0].Y)
	}
}

func TestWebServer_Frontiers(t *testing.T) {
	ws := newTestServer(t)

	var body struct {
		Strategy  string     `json:"strategy"`
		Count     int        `json:"count"`
		Frontiers [][2]int32 `json:"frontiers"`
	}

	rr := serveRequest(t, ws, "GET", "/api/map/frontiers", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Frontiers handler returned wrong status code: got %v", rr.Code)
	}
	decodeJSON(t, rr, &body)
	if body.Strategy != "active" {
		t.Errorf("Expected default strategy active, got %q", body.Strategy)
	}
	if body.Count == 0 {
		t.Error("Expected frontiers along the free beam, got none")
	}

	rr = serveRequest(t, ws, "GET", "/api/map/frontiers?strategy=wavefront&robot_x=0&robot_y=0", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Wavefront frontiers returned wrong status code: got %v", rr.Code)
	}
	activeCount := body.Count
	decodeJSON(t, rr, &body)
	if body.Count != activeCount {
		t.Errorf("Expected wavefront to match active on a fully scanned map: got %d want %d",
			body.Count, activeCount)
	}
}

func TestWebServer_FrontiersBadRequests(t *testing.T) {
	ws := newTestServer(t)

	rr := serveRequest(t, ws, "GET", "/api/map/frontiers?strategy=wavefront", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for wavefront without robot position, got %v", rr.Code)
	}

	rr = serveRequest(t, ws, "GET", "/api/map/frontiers?strategy=bogus", nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown strategy, got %v", rr.Code)
	}
}

func TestWebServer_CaptureState(t *testing.T) {
	ws := newTestServer(t)

	rr := serveRequest(t, ws, "GET", "/api/capture", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Capture handler returned wrong status code: got %v", rr.Code)
	}

	var body map[string]string
	decodeJSON(t, rr, &body)
	if body["state"] != "running" {
		t.Errorf("Expected state running, got %q", body["state"])
	}

	rr = serveRequest(t, ws, "POST", "/api/capture", url.Values{"cmd": {"pause"}})
	if rr.Code != http.StatusOK {
		t.Errorf("Capture pause returned wrong status code: got %v", rr.Code)
	}

	rr = serveRequest(t, ws, "POST", "/api/capture", url.Values{"cmd": {"bogus"}})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown command, got %v", rr.Code)
	}

	rr = serveRequest(t, ws, "DELETE", "/api/capture", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for DELETE, got %v", rr.Code)
	}
}

func TestWebServer_SessionsNoStore(t *testing.T) {
	rr := serveRequest(t, newTestServer(t), "GET", "/api/sessions", nil)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without a session store, got %v", rr.Code)
	}
}

func TestWebServer_GridChart(t *testing.T) {
	rr := serveRequest(t, newTestServer(t), "GET", "/debug/map/grid", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("Grid chart handler returned wrong status code: got %v", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, "<html") && !strings.Contains(body, "<div") {
		t.Error("Expected an HTML chart page in the response")
	}
}

func TestWebServer_StartStop(t *testing.T) {
	server := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	// Give the server time to start, then shut it down.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errChan:
		if err != nil {
			t.Fatalf("Server start failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Server did not shut down after context cancellation")
	}
}
