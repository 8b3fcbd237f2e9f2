// Fog of war: per-civilization visible/explored bitsets, last-known enemy
// snapshots, and scouting intel.
package game

import (
	"github.com/talgya/empire/internal/grid"
)

// CitySightRadius is the fixed visibility radius around every city.
const CitySightRadius = 2

// Bitset is a dense bit array over all map tiles.
type Bitset []uint64

// NewBitset creates a bitset able to hold n bits.
func NewBitset(n int) Bitset {
	return make(Bitset, (n+63)/64)
}

// Set sets bit i.
func (b Bitset) Set(i int) {
	b[i/64] |= 1 << (uint(i) % 64)
}

// Get returns bit i.
func (b Bitset) Get(i int) bool {
	return b[i/64]&(1<<(uint(i)%64)) != 0
}

// ClearAll zeroes every bit.
func (b Bitset) ClearAll() {
	for i := range b {
		b[i] = 0
	}
}

// Count returns the number of set bits.
func (b Bitset) Count() int {
	n := 0
	for _, word := range b {
		for word != 0 {
			word &= word - 1
			n++
		}
	}
	return n
}

// Zone is a rectangular region assigned to one scout.
type Zone struct {
	MinCol int `json:"min_col"`
	MinRow int `json:"min_row"`
	MaxCol int `json:"max_col"` // exclusive
	MaxRow int `json:"max_row"` // exclusive
}

// Contains reports whether the zone covers the coordinate.
func (z Zone) Contains(c grid.Coord) bool {
	return c.Col >= z.MinCol && c.Col < z.MaxCol && c.Row >= z.MinRow && c.Row < z.MaxRow
}

// Center returns the middle coordinate of the zone.
func (z Zone) Center() grid.Coord {
	return grid.Coord{Col: (z.MinCol + z.MaxCol) / 2, Row: (z.MinRow + z.MaxRow) / 2}
}

// playerIntel is one civilization's private fog-of-war bookkeeping. The
// store is its only writer; readers get copies.
type playerIntel struct {
	visible  Bitset // Tiles currently observed; rebuilt every turn
	explored Bitset // Tiles ever observed; monotonic, never cleared

	lastKnownUnits  map[UnitID]Unit
	lastKnownCities map[CityID]City
	enemyLocations  map[CivID][]EnemyLocation
	scoutZones      []Zone
}

// VisibilityStore owns fog-of-war state for every civilization, keyed by
// civilization id. There is no cross-civilization write path.
type VisibilityStore struct {
	width, height int
	civs          map[CivID]*playerIntel

	// revealAll is a display-time developer override: lookups report
	// everything visible without touching the underlying bitsets.
	revealAll bool
}

// NewVisibilityStore creates a store for a width×height map.
func NewVisibilityStore(width, height int) *VisibilityStore {
	return &VisibilityStore{
		width:  width,
		height: height,
		civs:   make(map[CivID]*playerIntel),
	}
}

// Register allocates fog-of-war state for a civilization.
func (v *VisibilityStore) Register(civ CivID) {
	if _, ok := v.civs[civ]; ok {
		return
	}
	n := v.width * v.height
	v.civs[civ] = &playerIntel{
		visible:         NewBitset(n),
		explored:        NewBitset(n),
		lastKnownUnits:  make(map[UnitID]Unit),
		lastKnownCities: make(map[CityID]City),
		enemyLocations:  make(map[CivID][]EnemyLocation),
	}
}

// SetRevealAll toggles the developer reveal-everything override.
func (v *VisibilityStore) SetRevealAll(on bool) {
	v.revealAll = on
}

// Recompute rebuilds a civilization's visibility from scratch: the visible
// bitset is cleared, then every owned unit and city reveals its sight
// radius. Enemy units and cities standing in the revealed area are
// snapshotted as last-known intel.
func (v *VisibilityStore) Recompute(civ CivID, units []*Unit, cities []*City) {
	intel, ok := v.civs[civ]
	if !ok {
		return
	}

	intel.visible.ClearAll()

	for _, u := range units {
		if u.CivID != civ || u.Defeated {
			continue
		}
		v.reveal(intel, u.Coord(), u.Stats().Sight)
	}
	for _, c := range cities {
		if c.CivID != civ {
			continue
		}
		v.reveal(intel, c.Coord(), CitySightRadius)
	}

	// Snapshot whatever enemy pieces are standing in the light.
	for _, u := range units {
		if u.CivID == civ || u.Defeated {
			continue
		}
		if intel.visible.Get(grid.Index(u.Coord(), v.width)) {
			intel.lastKnownUnits[u.ID] = *u
		}
	}
	for _, c := range cities {
		if c.CivID == civ {
			continue
		}
		if intel.visible.Get(grid.Index(c.Coord(), v.width)) {
			intel.lastKnownCities[c.ID] = *c
		}
	}
}

// RevealArea incrementally reveals tiles within radius of a center, so a
// move shows its surroundings without waiting for the next full recompute.
func (v *VisibilityStore) RevealArea(civ CivID, col, row, radius int) {
	intel, ok := v.civs[civ]
	if !ok {
		return
	}
	v.reveal(intel, grid.Coord{Col: col, Row: row}, radius)
}

func (v *VisibilityStore) reveal(intel *playerIntel, center grid.Coord, radius int) {
	for _, c := range grid.Within(center, radius, v.width, v.height) {
		idx := grid.Index(c, v.width)
		intel.visible.Set(idx)
		intel.explored.Set(idx)
	}
}

// IsVisible reports whether the civilization currently sees the tile.
func (v *VisibilityStore) IsVisible(civ CivID, col, row int) bool {
	if v.revealAll {
		return true
	}
	intel, ok := v.civs[civ]
	if !ok || !grid.InBounds(grid.Coord{Col: col, Row: row}, v.width, v.height) {
		return false
	}
	return intel.visible.Get(row*v.width + col)
}

// IsExplored reports whether the civilization has ever seen the tile.
func (v *VisibilityStore) IsExplored(civ CivID, col, row int) bool {
	if v.revealAll {
		return true
	}
	intel, ok := v.civs[civ]
	if !ok || !grid.InBounds(grid.Coord{Col: col, Row: row}, v.width, v.height) {
		return false
	}
	return intel.explored.Get(row*v.width + col)
}

// ExploredCount returns how many tiles the civilization has explored.
func (v *VisibilityStore) ExploredCount(civ CivID) int {
	intel, ok := v.civs[civ]
	if !ok {
		return 0
	}
	return intel.explored.Count()
}

// LastKnownUnit returns the snapshot taken when the enemy unit was last seen.
func (v *VisibilityStore) LastKnownUnit(civ CivID, id UnitID) (Unit, bool) {
	intel, ok := v.civs[civ]
	if !ok {
		return Unit{}, false
	}
	u, ok := intel.lastKnownUnits[id]
	return u, ok
}

// LastKnownCity returns the snapshot taken when the enemy city was last seen.
func (v *VisibilityStore) LastKnownCity(civ CivID, id CityID) (City, bool) {
	intel, ok := v.civs[civ]
	if !ok {
		return City{}, false
	}
	c, ok := intel.lastKnownCities[id]
	return c, ok
}

// RecordEnemySighting stores or refreshes an intel record about an enemy
// target. Re-sighting the same target updates the record in place.
func (v *VisibilityStore) RecordEnemySighting(civ, enemy CivID, loc EnemyLocation) {
	intel, ok := v.civs[civ]
	if !ok {
		return
	}
	locs := intel.enemyLocations[enemy]
	for i := range locs {
		if locs[i].Kind == loc.Kind && locs[i].ID == loc.ID {
			locs[i].Col = loc.Col
			locs[i].Row = loc.Row
			locs[i].LastSeenRound = loc.LastSeenRound
			return
		}
	}
	intel.enemyLocations[enemy] = append(locs, loc)
}

// EnemyLocations returns a copy of the intel records about one enemy.
func (v *VisibilityStore) EnemyLocations(civ, enemy CivID) []EnemyLocation {
	intel, ok := v.civs[civ]
	if !ok {
		return nil
	}
	locs := intel.enemyLocations[enemy]
	out := make([]EnemyLocation, len(locs))
	copy(out, locs)
	return out
}

// HasEnemyIntel reports whether the civilization has sighted any enemy.
func (v *VisibilityStore) HasEnemyIntel(civ CivID) bool {
	intel, ok := v.civs[civ]
	if !ok {
		return false
	}
	for _, locs := range intel.enemyLocations {
		if len(locs) > 0 {
			return true
		}
	}
	return false
}

// SetScoutZones assigns search zones to a civilization's scouts.
func (v *VisibilityStore) SetScoutZones(civ CivID, zones []Zone) {
	if intel, ok := v.civs[civ]; ok {
		intel.scoutZones = zones
	}
}

// ScoutZones returns a copy of the civilization's scout zones.
func (v *VisibilityStore) ScoutZones(civ CivID) []Zone {
	intel, ok := v.civs[civ]
	if !ok {
		return nil
	}
	out := make([]Zone, len(intel.scoutZones))
	copy(out, intel.scoutZones)
	return out
}
