package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/talgya/empire/internal/game"
	"github.com/talgya/empire/internal/world"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	settings := game.DefaultSettings()
	settings.MapConfig = world.SmallTestConfig()
	settings.NumCivs = 2

	eng := game.NewEngine(settings, nil)
	if err := eng.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return &Server{Eng: eng, Mu: &sync.Mutex{}, Port: 0, AdminKey: "secret"}
}

func getJSON(t *testing.T, handler http.HandlerFunc, url string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s: status %d: %s", url, rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("GET %s: bad json: %v", url, err)
	}
	return body
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer(t)
	body := getJSON(t, s.handleStatus, "/api/v1/status")

	if body["round"].(float64) != 1 {
		t.Errorf("round = %v, want 1", body["round"])
	}
	if body["year_label"] != "4000 BC" {
		t.Errorf("year_label = %v, want 4000 BC", body["year_label"])
	}
	if body["game_over"] != false {
		t.Errorf("game_over = %v", body["game_over"])
	}
	if _, ok := body["winner"]; ok {
		t.Error("winner present in a fresh game")
	}
}

func TestCivilizationsEndpoint(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/civilizations", nil)
	rec := httptest.NewRecorder()
	s.handleCivilizations(rec, req)

	var civs []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &civs); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(civs) != 2 {
		t.Fatalf("got %d civilizations, want 2", len(civs))
	}
	if civs[0]["name"] != "Romans" || civs[0]["leader"] != "Caesar" {
		t.Errorf("first seat = %v/%v", civs[0]["name"], civs[0]["leader"])
	}
}

func TestUnitsFogFilter(t *testing.T) {
	s := newTestServer(t)

	listUnits := func(url string) []map[string]any {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()
		s.handleUnits(rec, req)
		var units []map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &units); err != nil {
			t.Fatalf("bad json: %v", err)
		}
		return units
	}

	all := listUnits("/api/v1/units")
	if len(all) != 4 {
		t.Fatalf("omniscient view: %d units, want 4", len(all))
	}

	// Seat 1's view must include its own two units; enemy units appear only
	// when standing in the light.
	filtered := listUnits("/api/v1/units?viewer=1")
	own := 0
	for _, u := range filtered {
		if u["civilization_id"].(float64) == 1 {
			own++
		}
	}
	if own != 2 {
		t.Errorf("viewer sees %d own units, want 2", own)
	}
	if len(filtered) > len(all) {
		t.Error("fog filter added units")
	}
}

func TestBulkMapViewerOmitsUnexplored(t *testing.T) {
	s := newTestServer(t)

	full := getJSON(t, s.handleBulkMap, "/api/v1/map")
	fogged := getJSON(t, s.handleBulkMap, "/api/v1/map?viewer=1")

	fullTiles := full["tiles"].([]any)
	foggedTiles := fogged["tiles"].([]any)
	if len(fullTiles) != s.Eng.WorldMap().TileCount() {
		t.Fatalf("full map has %d tiles, want %d", len(fullTiles), s.Eng.WorldMap().TileCount())
	}
	if len(foggedTiles) == 0 || len(foggedTiles) >= len(fullTiles) {
		t.Fatalf("fogged map has %d of %d tiles; starting vision should explore only part of the map",
			len(foggedTiles), len(fullTiles))
	}
}

func TestMapRateLimitCoversTrailingSlash(t *testing.T) {
	s := newTestServer(t)
	s.MapRateLimit = 2
	handler := s.routes()

	get := func(url string) int {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := get("/api/v1/map"); code != http.StatusOK {
		t.Fatalf("first request: status %d", code)
	}
	if code := get("/api/v1/map/"); code != http.StatusOK {
		t.Fatalf("second request: status %d", code)
	}
	// Both patterns draw from the same budget.
	if code := get("/api/v1/map/"); code != http.StatusTooManyRequests {
		t.Fatalf("third request: status %d, want 429", code)
	}
	if code := get("/api/v1/status"); code != http.StatusOK {
		t.Fatalf("unrelated endpoint limited: status %d", code)
	}
}

func TestCityDetailNotFound(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/city/99", nil)
	rec := httptest.NewRecorder()
	s.handleCityDetail(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestEventsWithoutRecorder(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	rec := httptest.NewRecorder()
	s.handleEvents(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestAdminAuth(t *testing.T) {
	s := newTestServer(t)
	handler := s.adminOnly(s.handleEndTurn)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/end-turn", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/end-turn", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/end-turn", nil)
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET on admin endpoint: status %d, want 405", rec.Code)
	}

	roundBefore := s.Eng.Round()
	activeBefore := s.Eng.ActiveCiv().ID
	req = httptest.NewRequest(http.MethodPost, "/api/v1/end-turn", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status %d: %s", rec.Code, rec.Body.String())
	}
	if s.Eng.ActiveCiv().ID == activeBefore && s.Eng.Round() == roundBefore {
		t.Error("end-turn did not advance the game")
	}
}

func TestRevealOverride(t *testing.T) {
	s := newTestServer(t)
	handler := s.adminOnly(s.handleReveal)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reveal", strings.NewReader(`{"on":true}`))
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if !s.Eng.IsVisibleToPlayer(1, 0, 0) {
		t.Error("reveal override not applied")
	}
}
