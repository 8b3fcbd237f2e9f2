// Package world provides the tile map: terrain, resources, improvements,
// yields, and procedural generation.
package world

import "github.com/talgya/empire/internal/grid"

// Terrain types for map tiles. Terrain is fixed after generation.
type Terrain uint8

const (
	TerrainGrassland Terrain = iota // Fertile flatland, food
	TerrainPlains                   // Dry flatland, food and production
	TerrainForest                   // Timber, production
	TerrainHills                    // Mining country, production but slow going
	TerrainMountain                 // Impassable peaks
	TerrainDesert                   // Harsh, near-barren
	TerrainTundra                   // Cold, marginal land
	TerrainCoast                    // Shallow water along land
	TerrainOcean                    // Deep water, impassable to land units
)

// Resource types that can appear on a tile.
type Resource uint8

const (
	ResourceNone   Resource = iota
	ResourceWheat           // Grassland/plains food bonus
	ResourceGame            // Forest food bonus
	ResourceIron            // Hills production bonus
	ResourceGold            // Desert/hills trade bonus
	ResourceFish            // Coast food bonus
	ResourceFurs            // Tundra trade bonus
)

// Improvement types a worker can build on a tile.
type Improvement uint8

const (
	ImprovementNone Improvement = iota
	ImprovementFarm
	ImprovementMine
	ImprovementRoad
)

// Tile is a single map square. Identified by Row*Width+Col in the flat array.
type Tile struct {
	Col         int         `json:"col"`
	Row         int         `json:"row"`
	Terrain     Terrain     `json:"terrain"`
	Resource    Resource    `json:"resource,omitempty"`
	Improvement Improvement `json:"improvement,omitempty"`
	HasRoad     bool        `json:"has_road,omitempty"`
	HasRiver    bool        `json:"has_river,omitempty"`
}

// Coord returns the tile's grid coordinate.
func (t *Tile) Coord() grid.Coord {
	return grid.Coord{Col: t.Col, Row: t.Row}
}

// Yields holds the food/production/trade output of a tile or city.
type Yields struct {
	Food       int `json:"food"`
	Production int `json:"production"`
	Trade      int `json:"trade"`
}

// Add returns the component-wise sum of two yield sets.
func (y Yields) Add(o Yields) Yields {
	return Yields{
		Food:       y.Food + o.Food,
		Production: y.Production + o.Production,
		Trade:      y.Trade + o.Trade,
	}
}

// baseYields maps terrain to its unmodified output.
var baseYields = map[Terrain]Yields{
	TerrainGrassland: {Food: 2, Production: 0, Trade: 1},
	TerrainPlains:    {Food: 1, Production: 1, Trade: 1},
	TerrainForest:    {Food: 1, Production: 2, Trade: 0},
	TerrainHills:     {Food: 1, Production: 2, Trade: 0},
	TerrainMountain:  {},
	TerrainDesert:    {Food: 0, Production: 1, Trade: 0},
	TerrainTundra:    {Food: 1, Production: 0, Trade: 0},
	TerrainCoast:     {Food: 2, Production: 0, Trade: 2},
	TerrainOcean:     {Food: 1, Production: 0, Trade: 1},
}

// TileYields computes the output of a tile: terrain base, resource bonus,
// river trade, and improvement bonuses.
func (t *Tile) TileYields() Yields {
	y := baseYields[t.Terrain]

	switch t.Resource {
	case ResourceWheat, ResourceGame, ResourceFish:
		y.Food += 2
	case ResourceIron:
		y.Production += 2
	case ResourceGold, ResourceFurs:
		y.Trade += 3
	}

	if t.HasRiver {
		y.Trade++
	}

	switch t.Improvement {
	case ImprovementFarm:
		y.Food++
	case ImprovementMine:
		y.Production++
	}
	if t.HasRoad {
		y.Trade++
	}

	return y
}

// moveCosts maps terrain to movement-point cost. Zero means impassable.
var moveCosts = map[Terrain]int{
	TerrainGrassland: 1,
	TerrainPlains:    1,
	TerrainForest:    2,
	TerrainHills:     2,
	TerrainMountain:  0,
	TerrainDesert:    1,
	TerrainTundra:    1,
	TerrainCoast:     0,
	TerrainOcean:     0,
}

// MoveCost returns the movement points needed to enter the tile.
// Roads reduce any passable tile to cost 1.
func (t *Tile) MoveCost() int {
	cost := moveCosts[t.Terrain]
	if cost == 0 {
		return 0
	}
	if t.HasRoad {
		return 1
	}
	return cost
}

// Passable returns true if land units can enter the tile.
func (t *Tile) Passable() bool {
	return moveCosts[t.Terrain] > 0
}

// Settleable returns true if a city can be founded on the tile.
func (t *Tile) Settleable() bool {
	return t.Passable()
}

// IsWater returns true for coast and ocean tiles.
func (t *Tile) IsWater() bool {
	return t.Terrain == TerrainCoast || t.Terrain == TerrainOcean
}

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainGrassland:
		return "Grassland"
	case TerrainPlains:
		return "Plains"
	case TerrainForest:
		return "Forest"
	case TerrainHills:
		return "Hills"
	case TerrainMountain:
		return "Mountain"
	case TerrainDesert:
		return "Desert"
	case TerrainTundra:
		return "Tundra"
	case TerrainCoast:
		return "Coast"
	case TerrainOcean:
		return "Ocean"
	default:
		return "Unknown"
	}
}
