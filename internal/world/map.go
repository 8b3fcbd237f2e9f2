package world

import (
	"fmt"

	"github.com/talgya/empire/internal/grid"
)

// Map holds the complete tile grid world state.
type Map struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Tiles  []Tile `json:"-"` // Flat array, index = row*Width + col
}

// NewMap creates an empty map of the given dimensions.
func NewMap(width, height int) *Map {
	m := &Map{
		Width:  width,
		Height: height,
		Tiles:  make([]Tile, width*height),
	}
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			t := &m.Tiles[row*width+col]
			t.Col = col
			t.Row = row
		}
	}
	return m
}

// At returns the tile at (col, row), or nil if out of bounds.
func (m *Map) At(col, row int) *Tile {
	if col < 0 || col >= m.Width || row < 0 || row >= m.Height {
		return nil
	}
	return &m.Tiles[row*m.Width+col]
}

// AtCoord returns the tile at a grid coordinate, or nil if out of bounds.
func (m *Map) AtCoord(c grid.Coord) *Tile {
	return m.At(c.Col, c.Row)
}

// InBounds returns true if (col, row) is within the map.
func (m *Map) InBounds(col, row int) bool {
	return col >= 0 && col < m.Width && row >= 0 && row < m.Height
}

// TileCount returns the total number of tiles.
func (m *Map) TileCount() int {
	return len(m.Tiles)
}

// MoveCosts returns a grid.CostFunc backed by the map's terrain.
func (m *Map) MoveCosts() grid.CostFunc {
	return func(c grid.Coord) (int, bool) {
		t := m.AtCoord(c)
		if t == nil || !t.Passable() {
			return 0, false
		}
		return t.MoveCost(), true
	}
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(%dx%d)", m.Width, m.Height)
}
