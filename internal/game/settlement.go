// Settlement evaluation scores candidate tiles for founding a city.
package game

import (
	"github.com/talgya/empire/internal/grid"
	"github.com/talgya/empire/internal/world"
)

// DefaultMinCityDistance is the minimum Chebyshev spacing between cities.
const DefaultMinCityDistance = 3

// SettlementSite is the evaluator's verdict on the best founding tile.
type SettlementSite struct {
	Col         int          `json:"col"`
	Row         int          `json:"row"`
	Score       float64      `json:"score"`
	Yields      world.Yields `json:"yields"` // Tile plus its ring
	WaterAccess bool         `json:"water_access"`
}

// Coord returns the site's grid coordinate.
func (s *SettlementSite) Coord() grid.Coord {
	return grid.Coord{Col: s.Col, Row: s.Row}
}

// SettlementEvaluator scores candidate city sites for a civilization.
type SettlementEvaluator struct {
	worldMap        *world.Map
	vis             *VisibilityStore
	minCityDistance int
	searchRadius    int
}

// NewSettlementEvaluator creates an evaluator over the map and fog of war.
func NewSettlementEvaluator(m *world.Map, vis *VisibilityStore, minCityDistance, searchRadius int) *SettlementEvaluator {
	return &SettlementEvaluator{
		worldMap:        m,
		vis:             vis,
		minCityDistance: minCityDistance,
		searchRadius:    searchRadius,
	}
}

// ViolatesSpacing reports whether founding at c would sit within the minimum
// distance of any existing city.
func (se *SettlementEvaluator) ViolatesSpacing(c grid.Coord, cities []*City) bool {
	for _, city := range cities {
		if grid.Distance(c, city.Coord()) < se.minCityDistance {
			return true
		}
	}
	return false
}

// BestSite returns the best-scoring founding candidate reachable from the
// settler's position, or nil when no valid candidate exists within the
// search radius. Candidates must be explored by the civilization, settleable
// terrain, clear of the spacing rule, and connected by a land path.
func (se *SettlementEvaluator) BestSite(civ CivID, from grid.Coord, cities []*City) *SettlementSite {
	costs := se.worldMap.MoveCosts()
	var best *SettlementSite

	for _, c := range grid.Within(from, se.searchRadius, se.worldMap.Width, se.worldMap.Height) {
		tile := se.worldMap.AtCoord(c)
		if !tile.Settleable() {
			continue
		}
		if !se.vis.IsExplored(civ, c.Col, c.Row) {
			continue
		}
		if se.ViolatesSpacing(c, cities) {
			continue
		}
		if c != from && !grid.PathExists(from, c, se.worldMap.Width, se.worldMap.Height, costs) {
			continue
		}

		site := se.score(c)
		// Prefer closer sites on near-equal scores: settlers should not
		// march across the map for a marginal improvement.
		site.Score -= 0.1 * float64(grid.Distance(from, c))
		if best == nil || site.Score > best.Score {
			best = site
		}
	}
	return best
}

// score rates a tile by the yields of itself and its ring, with a bonus for
// water access.
func (se *SettlementEvaluator) score(c grid.Coord) *SettlementSite {
	tile := se.worldMap.AtCoord(c)
	yields := tile.TileYields()
	water := false

	for _, nc := range c.Neighbors() {
		nt := se.worldMap.AtCoord(nc)
		if nt == nil {
			continue
		}
		yields = yields.Add(nt.TileYields())
		if nt.IsWater() || nt.HasRiver {
			water = true
		}
	}
	if tile.HasRiver {
		water = true
	}

	score := float64(yields.Food)*1.5 + float64(yields.Production)*1.0 + float64(yields.Trade)*0.5
	if water {
		score += 3.0
	}

	return &SettlementSite{
		Col:         c.Col,
		Row:         c.Row,
		Score:       score,
		Yields:      yields,
		WaterAccess: water,
	}
}
