// Package grid provides the square-grid coordinate system: neighbor
// enumeration, Chebyshev distance, bounds checks, and pathfinding.
package grid

// Coord represents a tile position on the square grid.
type Coord struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// NeighborDirections defines the eight adjacent offsets, clockwise from north.
var NeighborDirections = [8]Coord{
	{Col: 0, Row: -1},
	{Col: 1, Row: -1},
	{Col: 1, Row: 0},
	{Col: 1, Row: 1},
	{Col: 0, Row: 1},
	{Col: -1, Row: 1},
	{Col: -1, Row: 0},
	{Col: -1, Row: -1},
}

// Neighbors returns the eight adjacent coordinates.
func (c Coord) Neighbors() [8]Coord {
	var result [8]Coord
	for i, dir := range NeighborDirections {
		result[i] = Coord{Col: c.Col + dir.Col, Row: c.Row + dir.Row}
	}
	return result
}

// Distance returns the Chebyshev distance between two coordinates:
// the number of king moves separating them.
func Distance(a, b Coord) int {
	dc := a.Col - b.Col
	dr := a.Row - b.Row
	if dc < 0 {
		dc = -dc
	}
	if dr < 0 {
		dr = -dr
	}
	if dc > dr {
		return dc
	}
	return dr
}

// Adjacent returns true if the two coordinates are distinct king-move neighbors.
func Adjacent(a, b Coord) bool {
	return a != b && Distance(a, b) == 1
}

// InBounds returns true if the coordinate lies within a width×height grid.
func InBounds(c Coord, width, height int) bool {
	return c.Col >= 0 && c.Col < width && c.Row >= 0 && c.Row < height
}

// Index returns the flat array index of a coordinate on a grid of the given width.
func Index(c Coord, width int) int {
	return c.Row*width + c.Col
}

// Ring returns all in-bounds coordinates at exactly Chebyshev distance radius
// from the center. Radius 0 yields the center itself.
func Ring(center Coord, radius, width, height int) []Coord {
	if radius == 0 {
		if InBounds(center, width, height) {
			return []Coord{center}
		}
		return nil
	}

	var out []Coord
	appendIf := func(c Coord) {
		if InBounds(c, width, height) {
			out = append(out, c)
		}
	}

	// Top and bottom edges of the ring square.
	for col := center.Col - radius; col <= center.Col+radius; col++ {
		appendIf(Coord{Col: col, Row: center.Row - radius})
		appendIf(Coord{Col: col, Row: center.Row + radius})
	}
	// Left and right edges, excluding corners already covered.
	for row := center.Row - radius + 1; row <= center.Row+radius-1; row++ {
		appendIf(Coord{Col: center.Col - radius, Row: row})
		appendIf(Coord{Col: center.Col + radius, Row: row})
	}
	return out
}

// Within returns all in-bounds coordinates at Chebyshev distance <= radius
// from the center, including the center.
func Within(center Coord, radius, width, height int) []Coord {
	var out []Coord
	for row := center.Row - radius; row <= center.Row+radius; row++ {
		for col := center.Col - radius; col <= center.Col+radius; col++ {
			c := Coord{Col: col, Row: row}
			if InBounds(c, width, height) {
				out = append(out, c)
			}
		}
	}
	return out
}
