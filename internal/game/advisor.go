// Terrain advisor: move-cost and passability recommendations over a unit's
// neighborhood, used by the AI as its last-resort fallback.
package game

import (
	"github.com/talgya/empire/internal/grid"
	"github.com/talgya/empire/internal/world"
)

// MoveOption is one candidate step with its terrain cost.
type MoveOption struct {
	Coord grid.Coord
	Cost  int
}

// TerrainAdvisor recommends moves based on terrain cost and passability.
type TerrainAdvisor struct {
	worldMap *world.Map
}

// NewTerrainAdvisor creates an advisor over the map.
func NewTerrainAdvisor(m *world.Map) *TerrainAdvisor {
	return &TerrainAdvisor{worldMap: m}
}

// Options returns the passable, unoccupied neighbor steps the unit can
// afford with its remaining moves, cheapest first (stable neighbor order
// within equal cost).
func (ta *TerrainAdvisor) Options(u *Unit, occupied func(grid.Coord) bool) []MoveOption {
	var out []MoveOption
	for _, c := range u.Coord().Neighbors() {
		tile := ta.worldMap.AtCoord(c)
		if tile == nil || !tile.Passable() {
			continue
		}
		cost := tile.MoveCost()
		if cost > u.MovesRemaining {
			continue
		}
		if occupied != nil && occupied(c) {
			continue
		}
		out = append(out, MoveOption{Coord: c, Cost: cost})
	}
	// Insertion sort by cost; the list has at most eight entries.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Cost < out[j-1].Cost; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Best returns the cheapest affordable neighbor step, or false when the unit
// is boxed in.
func (ta *TerrainAdvisor) Best(u *Unit, occupied func(grid.Coord) bool) (MoveOption, bool) {
	opts := ta.Options(u, occupied)
	if len(opts) == 0 {
		return MoveOption{}, false
	}
	return opts[0], true
}

// CostTo returns the movement cost of entering the tile and whether it is
// passable at all.
func (ta *TerrainAdvisor) CostTo(c grid.Coord) (int, bool) {
	tile := ta.worldMap.AtCoord(c)
	if tile == nil || !tile.Passable() {
		return 0, false
	}
	return tile.MoveCost(), true
}
