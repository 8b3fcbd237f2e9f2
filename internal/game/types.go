// Package game provides the simulation core: turn and round management,
// fog of war, unit movement and combat, city production, settlement
// evaluation, enemy search, and the AI decision loop.
package game

import (
	"github.com/talgya/empire/internal/grid"
	"github.com/talgya/empire/internal/rules"
)

// UnitID is a unique identifier for a unit.
type UnitID uint64

// CityID is a unique identifier for a city.
type CityID uint64

// CivID is a unique identifier for a civilization.
type CivID uint64

// Unit is a movable piece owned by a civilization.
type Unit struct {
	ID    UnitID         `json:"id"`
	CivID CivID          `json:"civilization_id"`
	Kind  rules.UnitKind `json:"kind"`
	Col   int            `json:"col"`
	Row   int            `json:"row"`

	Health         int `json:"health"` // 0–100
	MovesRemaining int `json:"moves_remaining"`
	MaxMoves       int `json:"max_moves"`

	IsFortified bool `json:"is_fortified,omitempty"`
	IsSleeping  bool `json:"is_sleeping,omitempty"`
	IsVeteran   bool `json:"is_veteran,omitempty"`
	TurnDone    bool `json:"turn_done,omitempty"`

	// Defeated units linger until the end-of-action sweep so observers can
	// show the death before the record disappears.
	Defeated bool `json:"defeated,omitempty"`

	// AttachedTo links escort units to the unit they guard.
	AttachedTo UnitID `json:"attached_to,omitempty"`
}

// Coord returns the unit's grid coordinate.
func (u *Unit) Coord() grid.Coord {
	return grid.Coord{Col: u.Col, Row: u.Row}
}

// Stats returns the unit's catalog entry.
func (u *Unit) Stats() rules.UnitStats {
	return rules.Unit(u.Kind)
}

// SpendMoves deducts movement points, clamping to [0, MaxMoves].
func (u *Unit) SpendMoves(cost int) {
	u.MovesRemaining -= cost
	if u.MovesRemaining < 0 {
		u.MovesRemaining = 0
	}
	if u.MovesRemaining > u.MaxMoves {
		u.MovesRemaining = u.MaxMoves
	}
}

// Active returns true if the unit still wants orders this turn.
func (u *Unit) Active() bool {
	return !u.Defeated && !u.IsSleeping && !u.IsFortified && !u.TurnDone &&
		u.MovesRemaining > 0
}

// City is a settlement owned by a civilization. Cities are never destroyed
// by the core (capture and razing are out of scope).
type City struct {
	ID    CityID `json:"id"`
	Name  string `json:"name"`
	CivID CivID  `json:"civilization_id"`
	Col   int    `json:"col"`
	Row   int    `json:"row"`

	Population       int `json:"population"`
	FoodStored       int `json:"food_stored"`
	ProductionStored int `json:"production_stored"`

	Current    *ProductionItem  `json:"current_production,omitempty"`
	BuildQueue []ProductionItem `json:"build_queue,omitempty"`

	Buildings         map[rules.BuildingKind]bool `json:"buildings"`
	PurchasedThisTurn bool                        `json:"purchased_this_turn,omitempty"`
	AutoProduction    bool                        `json:"auto_production,omitempty"`
}

// Coord returns the city's grid coordinate.
func (c *City) Coord() grid.Coord {
	return grid.Coord{Col: c.Col, Row: c.Row}
}

// HasBuilding returns true if the city has completed the building.
func (c *City) HasBuilding(kind rules.BuildingKind) bool {
	return c.Buildings[kind]
}

// Civilization is one player seat, human or AI.
type Civilization struct {
	ID      CivID  `json:"id"`
	Name    string `json:"name"`
	Leader  string `json:"leader"`
	IsHuman bool   `json:"is_human"`
	IsAlive bool   `json:"is_alive"`

	Gold    int `json:"gold"`
	Science int `json:"science"`

	Technologies map[rules.TechKind]bool `json:"technologies"`
	Government   rules.Government        `json:"government"`
}

// ProductionKind tags a production item as a unit or a building.
type ProductionKind uint8

const (
	ProduceUnit ProductionKind = iota
	ProduceBuilding
)

// ProductionItem is a value type describing one pending build. Copies of it
// live in city queues and current-production slots.
type ProductionItem struct {
	Kind     ProductionKind     `json:"kind"`
	Unit     rules.UnitKind     `json:"unit,omitempty"`
	Building rules.BuildingKind `json:"building,omitempty"`
	Name     string             `json:"name"`
	Cost     int                `json:"cost"`
}

// UnitItem builds a production item for a unit kind from the catalog.
func UnitItem(kind rules.UnitKind) ProductionItem {
	stats := rules.Unit(kind)
	return ProductionItem{Kind: ProduceUnit, Unit: kind, Name: stats.Name, Cost: stats.Cost}
}

// BuildingItem builds a production item for a building kind from the catalog.
func BuildingItem(kind rules.BuildingKind) ProductionItem {
	stats := rules.Building(kind)
	return ProductionItem{Kind: ProduceBuilding, Building: kind, Name: stats.Name, Cost: stats.Cost}
}

// TargetKind distinguishes unit and city targets in intel records.
type TargetKind uint8

const (
	TargetUnit TargetKind = iota
	TargetCity
)

// EnemyLocation is an intel record about a sighted enemy unit or city.
// Re-observing the same target updates the record in place.
type EnemyLocation struct {
	Col             int        `json:"col"`
	Row             int        `json:"row"`
	Kind            TargetKind `json:"kind"`
	ID              uint64     `json:"id"`
	DiscoveredRound int        `json:"discovered_round"`
	LastSeenRound   int        `json:"last_seen_round"`
}
