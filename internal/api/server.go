// Package api provides the HTTP API for observing a running game.
// GET endpoints are public (read-only observation). POST endpoints require
// a bearer token (host control plane). Observation endpoints accept a
// viewer query parameter and report only what that civilization has seen.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/talgya/empire/internal/game"
	"github.com/talgya/empire/internal/recorder"
	"github.com/talgya/empire/internal/world"
)

// Server serves the game state over HTTP. The engine is not safe for
// concurrent use; handlers take Mu around every engine access, shared with
// the host's simulation loop.
type Server struct {
	Eng          *game.Engine
	Rec          *recorder.Recorder // Optional; event history is 503 without it
	Mu           *sync.Mutex
	Port         int
	AdminKey     string // Bearer token for POST endpoints. Empty = POST disabled.
	MapRateLimit int    // Map requests per client per minute. Zero = 60.
}

// routes builds the handler tree. Split from Start so routing and limits
// can be exercised without binding a port.
func (s *Server) routes() http.Handler {
	limit := s.MapRateLimit
	if limit <= 0 {
		limit = 60
	}
	// Map payloads are the expensive ones; bulk and tile lookups share one
	// per-client budget, whichever pattern the request matched.
	limitedMap := NewRateLimiter(limit, time.Minute).Middleware(s.handleMapRoutes)

	mux := http.NewServeMux()

	// Public endpoints, read-only GETs anyone can call.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/civilizations", s.handleCivilizations)
	mux.HandleFunc("/api/v1/units", s.handleUnits)
	mux.HandleFunc("/api/v1/cities", s.handleCities)
	mux.HandleFunc("/api/v1/city/", s.handleCityDetail)
	mux.HandleFunc("/api/v1/map", limitedMap)
	mux.HandleFunc("/api/v1/map/", limitedMap)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/victory", s.handleVictory)

	// Host endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/end-turn", s.adminOnly(s.handleEndTurn))
	mux.HandleFunc("/api/v1/reveal", s.adminOnly(s.handleReveal))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	handler := s.routes()
	go func() {
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "host endpoints disabled (no EMPIRESIM_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) lock() func() {
	if s.Mu == nil {
		return func() {}
	}
	s.Mu.Lock()
	return s.Mu.Unlock
}

// viewer parses the optional viewer query parameter. Zero means omniscient.
func viewer(r *http.Request) game.CivID {
	v, _ := strconv.ParseUint(r.URL.Query().Get("viewer"), 10, 64)
	return game.CivID(v)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	defer s.lock()()

	active := s.Eng.ActiveCiv()
	status := map[string]any{
		"round":      s.Eng.Round(),
		"year":       s.Eng.Year(),
		"year_label": yearLabel(s.Eng.Year()),
		"phase":      s.Eng.Turns().Phase().String(),
		"active_civ": map[string]any{
			"id":     active.ID,
			"name":   active.Name,
			"leader": active.Leader,
		},
		"game_over": s.Eng.GameOver(),
		"map":       s.Eng.WorldMap().String(),
	}
	if s.Rec != nil {
		status["game_id"] = s.Rec.GameID()
	}
	if win := s.Eng.Winner(); win != nil {
		status["winner"] = win
	}
	writeJSON(w, status)
}

func yearLabel(year int) string {
	if year < 0 {
		return fmt.Sprintf("%d BC", -year)
	}
	return fmt.Sprintf("%d AD", year)
}

func (s *Server) handleCivilizations(w http.ResponseWriter, r *http.Request) {
	defer s.lock()()

	type civSummary struct {
		ID      game.CivID `json:"id"`
		Name    string     `json:"name"`
		Leader  string     `json:"leader"`
		IsHuman bool       `json:"is_human"`
		IsAlive bool       `json:"is_alive"`
		Gold    int        `json:"gold"`
		Science int        `json:"science"`
		Techs   int        `json:"technologies"`
		Cities  int        `json:"cities"`
		Score   int        `json:"score"`
	}

	cities := s.Eng.GetAllCities()
	cityCount := make(map[game.CivID]int)
	for _, c := range cities {
		cityCount[c.CivID]++
	}

	result := make([]civSummary, 0)
	for _, civ := range s.Eng.GetCivilizations() {
		result = append(result, civSummary{
			ID:      civ.ID,
			Name:    civ.Name,
			Leader:  civ.Leader,
			IsHuman: civ.IsHuman,
			IsAlive: civ.IsAlive,
			Gold:    civ.Gold,
			Science: civ.Science,
			Techs:   len(civ.Technologies),
			Cities:  cityCount[civ.ID],
			Score:   game.Score(civ, cities),
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	defer s.lock()()
	view := viewer(r)

	result := make([]*game.Unit, 0)
	for _, u := range s.Eng.GetAllUnits() {
		// With a viewer set, show own units plus whatever stands in the light.
		if view != 0 && u.CivID != view && !s.Eng.IsVisibleToPlayer(view, u.Col, u.Row) {
			continue
		}
		result = append(result, u)
	}
	writeJSON(w, result)
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	defer s.lock()()
	view := viewer(r)

	result := make([]*game.City, 0)
	for _, c := range s.Eng.GetAllCities() {
		if view != 0 && c.CivID != view && !s.Eng.IsExploredByPlayer(view, c.Col, c.Row) {
			continue
		}
		result = append(result, c)
	}
	writeJSON(w, result)
}

func (s *Server) handleCityDetail(w http.ResponseWriter, r *http.Request) {
	defer s.lock()()

	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 {
		http.Error(w, "missing city id", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseUint(parts[4], 10, 64)
	if err != nil {
		http.Error(w, "invalid city id", http.StatusBadRequest)
		return
	}
	city := s.Eng.GetCity(game.CityID(id))
	if city == nil {
		http.Error(w, "city not found", http.StatusNotFound)
		return
	}

	yields := s.Eng.CityYields(city)
	result := map[string]any{
		"city":   city,
		"yields": yields,
	}
	if city.Current != nil {
		result["turns_remaining"] = s.Eng.TurnsRemaining(city)
	}
	writeJSON(w, result)
}

// handleMapRoutes dispatches between the bulk map (GET /api/v1/map) and tile
// detail (GET /api/v1/map/:col/:row).
func (s *Server) handleMapRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/map")
	if path == "" || path == "/" {
		s.handleBulkMap(w, r)
		return
	}
	s.handleTileDetail(w, r)
}

// handleBulkMap returns the tile grid. With a viewer, unexplored tiles are
// omitted and the rest carry the viewer's visibility flags.
func (s *Server) handleBulkMap(w http.ResponseWriter, r *http.Request) {
	defer s.lock()()
	view := viewer(r)

	type tileEntry struct {
		Col      int           `json:"col"`
		Row      int           `json:"row"`
		Terrain  world.Terrain `json:"terrain"`
		Resource int           `json:"resource,omitempty"`
		HasRoad  bool          `json:"has_road,omitempty"`
		HasRiver bool          `json:"has_river,omitempty"`
		Visible  *bool         `json:"visible,omitempty"` // Only with a viewer
	}

	m := s.Eng.WorldMap()
	tiles := make([]tileEntry, 0, len(m.Tiles))
	for i := range m.Tiles {
		t := &m.Tiles[i]
		if view != 0 && !s.Eng.IsExploredByPlayer(view, t.Col, t.Row) {
			continue
		}
		entry := tileEntry{
			Col:      t.Col,
			Row:      t.Row,
			Terrain:  t.Terrain,
			Resource: int(t.Resource),
			HasRoad:  t.HasRoad,
			HasRiver: t.HasRiver,
		}
		if view != 0 {
			vis := s.Eng.IsVisibleToPlayer(view, t.Col, t.Row)
			entry.Visible = &vis
		}
		tiles = append(tiles, entry)
	}

	writeJSON(w, map[string]any{
		"width":  m.Width,
		"height": m.Height,
		"tiles":  tiles,
	})
}

func (s *Server) handleTileDetail(w http.ResponseWriter, r *http.Request) {
	defer s.lock()()

	parts := strings.Split(r.URL.Path, "/")
	// /api/v1/map/:col/:row → parts[4]=col parts[5]=row
	if len(parts) < 6 {
		http.Error(w, "usage: /api/v1/map/:col/:row", http.StatusBadRequest)
		return
	}
	col, err1 := strconv.Atoi(parts[4])
	row, err2 := strconv.Atoi(parts[5])
	if err1 != nil || err2 != nil {
		http.Error(w, "invalid coordinates", http.StatusBadRequest)
		return
	}
	tile := s.Eng.GetTileAt(col, row)
	if tile == nil {
		http.Error(w, "tile not found", http.StatusNotFound)
		return
	}

	result := map[string]any{
		"tile":    tile,
		"terrain": world.TerrainName(tile.Terrain),
		"yields":  tile.TileYields(),
	}
	if u := s.Eng.GetUnitAt(col, row); u != nil {
		result["unit"] = u
	}
	if c := s.Eng.GetCityAt(col, row); c != nil {
		result["city"] = c
	}
	writeJSON(w, result)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.Rec == nil {
		http.Error(w, "event recording not enabled", http.StatusServiceUnavailable)
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	rows, err := s.Rec.RecentEvents(limit)
	if err != nil {
		slog.Error("event query failed", "error", err)
		writeJSON(w, []recorder.EventRow{})
		return
	}
	if rows == nil {
		rows = []recorder.EventRow{}
	}
	writeJSON(w, rows)
}

func (s *Server) handleVictory(w http.ResponseWriter, r *http.Request) {
	defer s.lock()()

	win := s.Eng.Winner()
	if win == nil {
		writeJSON(w, map[string]any{"game_over": s.Eng.GameOver()})
		return
	}
	writeJSON(w, map[string]any{"game_over": true, "result": win})
}

// handleEndTurn forces the active civilization's turn to end. Host use only,
// for unsticking a stalled human seat.
func (s *Server) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	defer s.lock()()

	res := s.Eng.EndTurn()
	if !res.OK {
		http.Error(w, res.Reason.String(), http.StatusConflict)
		return
	}
	slog.Info("turn ended via API", "round", s.Eng.Round(), "active", s.Eng.ActiveCiv().Name)
	writeJSON(w, map[string]any{"round": s.Eng.Round(), "active_civ": s.Eng.ActiveCiv().ID})
}

// handleReveal toggles the developer reveal-everything display override.
func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		On bool `json:"on"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	defer s.lock()()
	s.Eng.Visibility().SetRevealAll(req.On)
	slog.Info("reveal override changed", "on", req.On)
	writeJSON(w, map[string]bool{"reveal_all": req.On})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("JSON encode failed", "error", err)
	}
}
