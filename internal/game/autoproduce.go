package game

import "github.com/talgya/empire/internal/rules"

// CivSnapshot summarizes what a civilization already has, for the
// auto-production heuristic.
type CivSnapshot struct {
	Cities      int
	Settlers    int
	Scouts      int
	HasDefender bool // A combat unit garrisons this city's tile
}

// buildOrder is the building progression auto-production works through once
// the early units exist.
var buildOrder = []rules.BuildingKind{
	rules.BuildingGranary,
	rules.BuildingBarracks,
	rules.BuildingWalls,
	rules.BuildingMarketplace,
	rules.BuildingLibrary,
	rules.BuildingTemple,
}

// AutoChooseProduction picks a sensible next build for a city without an
// explicit order. Priorities: garrison the city, expand while small, keep a
// scout in the field, then work through the building progression.
func AutoChooseProduction(city *City, snap CivSnapshot) ProductionItem {
	if !snap.HasDefender {
		return UnitItem(rules.UnitWarrior)
	}
	if snap.Cities < 3 && snap.Settlers == 0 {
		return UnitItem(rules.UnitSettler)
	}
	if snap.Scouts == 0 {
		return UnitItem(rules.UnitScout)
	}
	for _, b := range buildOrder {
		if !city.HasBuilding(b) {
			return BuildingItem(b)
		}
	}
	return UnitItem(rules.UnitWarrior)
}
