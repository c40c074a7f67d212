package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"pivot-trading-engine/internal/events"
)

type fakeEngine struct {
	hasPosition bool
	hasPivots   bool
}

func (f *fakeEngine) Status() map[string]interface{} {
	return map[string]interface{}{
		"instrument": "SENSEX",
		"running":    true,
	}
}

func (f *fakeEngine) OpenPosition() (map[string]interface{}, bool) {
	if !f.hasPosition {
		return nil, false
	}
	return map[string]interface{}{"trade_id": "20260312_001"}, true
}

func (f *fakeEngine) Pivots() (map[string]interface{}, bool) {
	if !f.hasPivots {
		return nil, false
	}
	return map[string]interface{}{"pp": 143.5, "r1": 149.0}, true
}

func testServer(engine *fakeEngine) *Server {
	gin.SetMode(gin.TestMode)
	return NewServer(ServerConfig{Host: "127.0.0.1", Port: 0}, nil, events.NewEventBus(), engine)
}

func doGet(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.Router().ServeHTTP(w, req)

	var body map[string]interface{}
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode %s response: %v", path, err)
		}
	}
	return w, body
}

func TestHealthWithoutDatabase(t *testing.T) {
	s := testServer(&fakeEngine{})
	w, body := doGet(t, s, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["status"] != "ok" {
		t.Errorf("health status = %v", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	s := testServer(&fakeEngine{})
	w, body := doGet(t, s, "/api/v1/status")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["instrument"] != "SENSEX" {
		t.Errorf("body = %v", body)
	}
}

func TestPositionEndpoint(t *testing.T) {
	s := testServer(&fakeEngine{})
	_, body := doGet(t, s, "/api/v1/position")
	if body["open"] != false {
		t.Errorf("empty ledger: body = %v", body)
	}

	s = testServer(&fakeEngine{hasPosition: true})
	_, body = doGet(t, s, "/api/v1/position")
	if body["open"] != true {
		t.Fatalf("open ledger: body = %v", body)
	}
	pos := body["position"].(map[string]interface{})
	if pos["trade_id"] != "20260312_001" {
		t.Errorf("position = %v", pos)
	}
}

func TestPivotsEndpoint(t *testing.T) {
	s := testServer(&fakeEngine{})
	w, _ := doGet(t, s, "/api/v1/pivots")
	if w.Code != http.StatusNotFound {
		t.Errorf("pivots before prepare: status = %d, want 404", w.Code)
	}

	s = testServer(&fakeEngine{hasPivots: true})
	w, body := doGet(t, s, "/api/v1/pivots")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["pp"] != 143.5 {
		t.Errorf("pivots = %v", body)
	}
}

func TestTradesRequireDatabase(t *testing.T) {
	s := testServer(&fakeEngine{})
	w, _ := doGet(t, s, "/api/v1/trades/today")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("trades without db: status = %d, want 503", w.Code)
	}

	w, _ = doGet(t, s, "/api/v1/trades/not-a-date")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad date: status = %d, want 400", w.Code)
	}
}
