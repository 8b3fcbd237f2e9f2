// Package rules holds the static game-data tables: unit stats, building
// stats, technologies, civilizations, and the calendar. The engine reads
// these tables and never mutates them.
package rules

// UnitKind enumerates every unit the engine knows about.
type UnitKind uint8

const (
	UnitSettler UnitKind = iota
	UnitScout
	UnitWarrior
	UnitArcher
	UnitSpearman
	UnitHorseman
	UnitCatapult
	UnitWorker
)

// UnitStats describes a unit type's fixed attributes.
type UnitStats struct {
	Name    string
	Cost    int // Production points to build
	Attack  int
	Defense int
	Moves   int // Movement points per turn
	Sight   int // Visibility radius (Chebyshev)
}

// unitCatalog is the master unit table.
var unitCatalog = map[UnitKind]UnitStats{
	UnitSettler:  {Name: "Settler", Cost: 30, Attack: 0, Defense: 1, Moves: 1, Sight: 2},
	UnitScout:    {Name: "Scout", Cost: 15, Attack: 1, Defense: 1, Moves: 2, Sight: 3},
	UnitWarrior:  {Name: "Warrior", Cost: 10, Attack: 2, Defense: 2, Moves: 1, Sight: 1},
	UnitArcher:   {Name: "Archer", Cost: 20, Attack: 3, Defense: 2, Moves: 1, Sight: 1},
	UnitSpearman: {Name: "Spearman", Cost: 20, Attack: 2, Defense: 3, Moves: 1, Sight: 1},
	UnitHorseman: {Name: "Horseman", Cost: 30, Attack: 4, Defense: 2, Moves: 2, Sight: 2},
	UnitCatapult: {Name: "Catapult", Cost: 40, Attack: 6, Defense: 1, Moves: 1, Sight: 1},
	UnitWorker:   {Name: "Worker", Cost: 20, Attack: 0, Defense: 1, Moves: 1, Sight: 1},
}

// Unit returns the stats for a unit kind.
func Unit(kind UnitKind) UnitStats {
	return unitCatalog[kind]
}

// BuildingKind enumerates buildable city structures.
type BuildingKind uint8

const (
	BuildingPalace BuildingKind = iota
	BuildingGranary
	BuildingBarracks
	BuildingWalls
	BuildingLibrary
	BuildingMarketplace
	BuildingTemple
	BuildingSpaceProgram // Endgame wonder, completing it wins the space race
)

// BuildingStats describes a building type's fixed attributes.
type BuildingStats struct {
	Name string
	Cost int
	// Yield bonuses applied to the owning city.
	FoodBonus       int
	ProductionBonus int
	TradeBonus      int
}

var buildingCatalog = map[BuildingKind]BuildingStats{
	BuildingPalace:       {Name: "Palace", Cost: 60, TradeBonus: 2},
	BuildingGranary:      {Name: "Granary", Cost: 40, FoodBonus: 2},
	BuildingBarracks:     {Name: "Barracks", Cost: 40},
	BuildingWalls:        {Name: "Walls", Cost: 50},
	BuildingLibrary:      {Name: "Library", Cost: 60, TradeBonus: 2},
	BuildingMarketplace:  {Name: "Marketplace", Cost: 60, TradeBonus: 3},
	BuildingTemple:       {Name: "Temple", Cost: 40},
	BuildingSpaceProgram: {Name: "Space Program", Cost: 400},
}

// Building returns the stats for a building kind.
func Building(kind BuildingKind) BuildingStats {
	return buildingCatalog[kind]
}

// TechKind enumerates researchable technologies.
type TechKind uint8

const (
	TechAgriculture TechKind = iota
	TechBronzeWorking
	TechWriting
	TechHorsebackRiding
	TechMathematics
	TechCurrency
)

// TechStats describes a technology's research cost and prerequisite.
type TechStats struct {
	Name     string
	Cost     int       // Science points
	Requires *TechKind // nil when the tech has no prerequisite
}

func techRef(k TechKind) *TechKind { return &k }

var techCatalog = map[TechKind]TechStats{
	TechAgriculture:     {Name: "Agriculture", Cost: 20},
	TechBronzeWorking:   {Name: "Bronze Working", Cost: 30},
	TechWriting:         {Name: "Writing", Cost: 40},
	TechHorsebackRiding: {Name: "Horseback Riding", Cost: 40},
	TechMathematics:     {Name: "Mathematics", Cost: 60, Requires: techRef(TechWriting)},
	TechCurrency:        {Name: "Currency", Cost: 50, Requires: techRef(TechBronzeWorking)},
}

// Tech returns the stats for a technology.
func Tech(kind TechKind) TechStats {
	return techCatalog[kind]
}

// Government enumerates the civics a civilization can run.
type Government uint8

const (
	GovDespotism Government = iota
	GovMonarchy
	GovRepublic
)

// CivInfo is a roster entry for a playable civilization.
type CivInfo struct {
	Name   string
	Leader string
}

// CivRoster lists the playable civilizations in seat order.
var CivRoster = []CivInfo{
	{Name: "Romans", Leader: "Caesar"},
	{Name: "Egyptians", Leader: "Cleopatra"},
	{Name: "Babylonians", Leader: "Hammurabi"},
	{Name: "Greeks", Leader: "Alexander"},
	{Name: "Chinese", Leader: "Mao"},
	{Name: "Aztecs", Leader: "Montezuma"},
}
