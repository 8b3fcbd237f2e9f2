// Enemy search: expanding-ring scan for the nearest visible enemy, plus
// zone partitioning so multiple scouts divide the map.
package game

import (
	"math"

	"github.com/talgya/empire/internal/grid"
)

// EnemySighting is the result of a successful enemy search.
type EnemySighting struct {
	Col      int        `json:"col"`
	Row      int        `json:"row"`
	Kind     TargetKind `json:"kind"`
	ID       uint64     `json:"id"`
	Owner    CivID      `json:"owner"`
	Distance int        `json:"distance"`
}

// Coord returns the sighting's grid coordinate.
func (s *EnemySighting) Coord() grid.Coord {
	return grid.Coord{Col: s.Col, Row: s.Row}
}

// EnemySearcher finds the nearest enemy piece a civilization can see.
type EnemySearcher struct {
	width, height int
	vis           *VisibilityStore
}

// NewEnemySearcher creates a searcher over a width×height map.
func NewEnemySearcher(width, height int, vis *VisibilityStore) *EnemySearcher {
	return &EnemySearcher{width: width, height: height, vis: vis}
}

// FindNearest spirals outward from the origin one ring at a time, checking
// each tile for a unit or city of another civilization that the searcher has
// seen (visible or explored). Returns the first match, or nil.
func (es *EnemySearcher) FindNearest(civ CivID, origin grid.Coord, maxRadius int, units []*Unit, cities []*City) *EnemySighting {
	unitsAt := make(map[grid.Coord]*Unit)
	for _, u := range units {
		if u.CivID != civ && !u.Defeated {
			unitsAt[u.Coord()] = u
		}
	}
	citiesAt := make(map[grid.Coord]*City)
	for _, c := range cities {
		if c.CivID != civ {
			citiesAt[c.Coord()] = c
		}
	}
	if len(unitsAt) == 0 && len(citiesAt) == 0 {
		return nil
	}

	for radius := 1; radius <= maxRadius; radius++ {
		for _, c := range grid.Ring(origin, radius, es.width, es.height) {
			if !es.vis.IsVisible(civ, c.Col, c.Row) && !es.vis.IsExplored(civ, c.Col, c.Row) {
				continue
			}
			if u, ok := unitsAt[c]; ok {
				return &EnemySighting{
					Col: c.Col, Row: c.Row,
					Kind: TargetUnit, ID: uint64(u.ID), Owner: u.CivID,
					Distance: radius,
				}
			}
			if city, ok := citiesAt[c]; ok {
				return &EnemySighting{
					Col: c.Col, Row: c.Row,
					Kind: TargetCity, ID: uint64(city.ID), Owner: city.CivID,
					Distance: radius,
				}
			}
		}
	}
	return nil
}

// PartitionZones divides the map into count disjoint rectangular zones so
// concurrent scouts bias their searches toward different regions. The grid
// of zones is as close to square as the count allows.
func PartitionZones(count, width, height int) []Zone {
	if count <= 0 {
		return nil
	}
	cols := int(math.Ceil(math.Sqrt(float64(count))))
	rows := (count + cols - 1) / cols

	zones := make([]Zone, 0, count)
	for i := 0; i < count; i++ {
		zc := i % cols
		zr := i / cols
		zones = append(zones, Zone{
			MinCol: zc * width / cols,
			MaxCol: (zc + 1) * width / cols,
			MinRow: zr * height / rows,
			MaxRow: (zr + 1) * height / rows,
		})
	}
	return zones
}
