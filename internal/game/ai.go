// AI decision loop: a step-function state machine the caller drives. Each
// step performs at most one unit action and checks for cancellation first.
package game

import (
	"log/slog"

	"github.com/talgya/empire/internal/grid"
	"github.com/talgya/empire/internal/rules"
)

// AIConfig holds the decision-loop tuning and its liveness safety valves.
// The attempt cap and stall threshold are correctness properties, not
// tuning knobs: they guarantee every unit eventually consumes its turn even
// when pathfinding degenerates or targets oscillate.
type AIConfig struct {
	// MaxAttemptsPerUnit caps decision iterations per unit per turn.
	MaxAttemptsPerUnit int
	// StallThreshold force-skips a unit after this many consecutive
	// iterations without spending a movement point.
	StallThreshold int
	// OscillationWindow is how many recent positions are kept to detect a
	// settler bouncing between two equally scored tiles.
	OscillationWindow int
	// SearchRadius bounds the settlement-site search.
	SearchRadius int
	// EnemySearchRadius bounds the scout's spiral search.
	EnemySearchRadius int
}

// DefaultAIConfig returns the standard safety bounds.
func DefaultAIConfig() AIConfig {
	return AIConfig{
		MaxAttemptsPerUnit: 50,
		StallThreshold:     3,
		OscillationWindow:  6,
		SearchRadius:       8,
		EnemySearchRadius:  12,
	}
}

// AIController processes one civilization's turn unit by unit. Create one
// per turn via Engine.AIStepper or Engine.ProcessAITurn.
type AIController struct {
	eng        *Engine
	cfg        AIConfig
	civ        CivID
	generation uint64
	done       bool

	queue   []UnitID
	current UnitID

	// Per-unit working state, reset when the controller moves on.
	attempts int
	stall    int
	history  []grid.Coord

	returnTargets map[UnitID]grid.Coord
	scoutZone     map[UnitID]Zone
}

// NewAIController prepares the decision loop for the civilization's turn.
func NewAIController(e *Engine, civ CivID) *AIController {
	ai := &AIController{
		eng:           e,
		cfg:           e.settings.AI,
		civ:           civ,
		generation:    e.turns.Generation(),
		returnTargets: make(map[UnitID]grid.Coord),
		scoutZone:     make(map[UnitID]Zone),
	}

	var scouts []UnitID
	for _, u := range e.units {
		if u.CivID != civ || u.Defeated {
			continue
		}
		ai.queue = append(ai.queue, u.ID)
		if u.Kind == rules.UnitScout {
			scouts = append(scouts, u.ID)
		}
	}

	// Divide the map between the scouts so they fan out instead of
	// shadowing each other.
	if len(scouts) > 0 {
		zones := PartitionZones(len(scouts), e.worldMap.Width, e.worldMap.Height)
		e.vis.SetScoutZones(civ, zones)
		for i, id := range scouts {
			ai.scoutZone[id] = zones[i]
		}
	}

	e.sink.Notify(Event{
		Kind: EventAIStarted, Round: e.turns.Round(), Year: e.turns.Year(), Civ: civ,
	})
	return ai
}

// Run drives the loop to completion synchronously.
func (ai *AIController) Run() {
	for !ai.Step() {
	}
}

// Done reports whether the loop has finished or been cancelled.
func (ai *AIController) Done() bool { return ai.done }

// Step performs at most one unit action and returns true when the loop is
// finished. A superseded controller (turn changed underneath it) aborts
// cleanly without acting.
func (ai *AIController) Step() bool {
	if ai.done {
		return true
	}
	if ai.eng.GameOver() || !ai.eng.turns.IsActive(ai.civ) ||
		ai.generation != ai.eng.turns.Generation() {
		slog.Debug("ai loop superseded", "civ", ai.civ)
		ai.done = true
		return true
	}

	u := ai.currentUnit()
	if u == nil {
		ai.finish()
		return true
	}

	movesBefore := u.MovesRemaining
	ai.attempts++

	switch {
	case ai.attempts > ai.cfg.MaxAttemptsPerUnit:
		// Hard liveness bound: silently resolved by skipping the unit.
		slog.Debug("ai attempt cap reached", "unit", u.ID)
		ai.eng.SkipUnit(u.ID)
	case ai.stall >= ai.cfg.StallThreshold:
		slog.Debug("ai unit stalled", "unit", u.ID)
		ai.eng.SkipUnit(u.ID)
	default:
		ai.act(u)
	}

	if !u.Defeated && u.MovesRemaining == movesBefore {
		ai.stall++
	} else {
		ai.stall = 0
	}
	return false
}

// currentUnit returns the unit being processed, advancing through the queue
// as units finish their turns.
func (ai *AIController) currentUnit() *Unit {
	if ai.current != 0 {
		if u := ai.eng.GetUnit(ai.current); u != nil && u.Active() {
			return u
		}
	}
	for len(ai.queue) > 0 {
		id := ai.queue[0]
		ai.queue = ai.queue[1:]
		u := ai.eng.GetUnit(id)
		if u == nil || !u.Active() {
			continue
		}
		ai.current = id
		ai.attempts = 0
		ai.stall = 0
		ai.history = ai.history[:0]
		return u
	}
	return nil
}

// finish assigns auto-production to idle cities and closes the loop.
func (ai *AIController) finish() {
	civ := ai.eng.turns.ActiveCiv()
	for _, city := range ai.eng.cities {
		if city.CivID != ai.civ {
			continue
		}
		if city.Current == nil && len(city.BuildQueue) == 0 {
			item := AutoChooseProduction(city, ai.eng.civSnapshot(ai.civ, city))
			ai.eng.production.SetProduction(city, item, false)
		}
	}
	ai.done = true
	ai.eng.sink.Notify(Event{
		Kind: EventAIFinished, Round: ai.eng.turns.Round(), Year: ai.eng.turns.Year(),
		Civ: ai.civ, Detail: civ.Name,
	})
}

// act picks and executes one action for the unit, by role.
func (ai *AIController) act(u *Unit) {
	switch u.Kind {
	case rules.UnitSettler:
		ai.actSettler(u)
	case rules.UnitScout:
		ai.actScout(u)
	default:
		ai.actDefault(u)
	}
}

// actSettler walks the settler toward the best founding site and founds the
// city on arrival. Oscillation between equally scored tiles is detected and
// resolved by founding on the spot.
func (ai *AIController) actSettler(u *Unit) {
	ai.history = append(ai.history, u.Coord())
	if len(ai.history) > ai.cfg.OscillationWindow {
		ai.history = ai.history[1:]
	}
	if ai.oscillating() {
		if res := ai.eng.FoundCityWithSettler(u.ID); res.OK {
			return
		}
		ai.eng.SkipUnit(u.ID)
		return
	}

	site := ai.eng.evaluator.BestSite(ai.civ, u.Coord(), ai.eng.cities)
	if site == nil {
		// Nothing scored: settle here if the spot is legal, otherwise
		// wander toward unexplored land.
		if res := ai.eng.FoundCityWithSettler(u.ID); res.OK {
			return
		}
		ai.actDefault(u)
		return
	}
	if site.Coord() == u.Coord() {
		if res := ai.eng.FoundCityWithSettler(u.ID); !res.OK {
			ai.eng.SkipUnit(u.ID)
		}
		return
	}
	ai.moveToward(u, site.Coord())
}

// oscillating reports the A-B-A-B position pattern.
func (ai *AIController) oscillating() bool {
	n := len(ai.history)
	if n < 4 {
		return false
	}
	return ai.history[n-1] == ai.history[n-3] && ai.history[n-2] == ai.history[n-4]
}

// actScout explores its zone, reports sightings, and returns home with the
// news to raise a defender.
func (ai *AIController) actScout(u *Unit) {
	// Carrying intel: head home and order a garrison on arrival.
	if target, ok := ai.returnTargets[u.ID]; ok {
		if grid.Distance(u.Coord(), target) <= 1 {
			if city := ai.eng.cityAt(target); city != nil && city.Current == nil {
				ai.eng.production.SetProduction(city, UnitItem(rules.UnitWarrior), false)
			}
			delete(ai.returnTargets, u.ID)
			ai.eng.SkipUnit(u.ID)
			return
		}
		ai.moveToward(u, target)
		return
	}

	sighting := ai.eng.searcher.FindNearest(ai.civ, u.Coord(), ai.cfg.EnemySearchRadius, ai.eng.units, ai.eng.cities)
	if sighting != nil {
		ai.eng.vis.RecordEnemySighting(ai.civ, sighting.Owner, EnemyLocation{
			Col: sighting.Col, Row: sighting.Row,
			Kind: sighting.Kind, ID: sighting.ID,
			DiscoveredRound: ai.eng.turns.Round(),
			LastSeenRound:   ai.eng.turns.Round(),
		})
		ai.eng.sink.Notify(Event{
			Kind: EventEnemySighted, Round: ai.eng.turns.Round(), Year: ai.eng.turns.Year(),
			Civ: ai.civ, Unit: u.ID, Col: sighting.Col, Row: sighting.Row,
		})
		if home := ai.nearestOwnCity(u.Coord()); home != nil {
			ai.returnTargets[u.ID] = home.Coord()
			ai.moveToward(u, home.Coord())
			return
		}
		// Homeless scout: keep watching from where it stands.
		ai.eng.SkipUnit(u.ID)
		return
	}

	// No enemies found: bias toward the scout's assigned zone.
	if zone, ok := ai.scoutZone[u.ID]; ok && !zone.Contains(u.Coord()) {
		ai.moveToward(u, zone.Center())
		return
	}
	ai.actDefault(u)
}

func (ai *AIController) nearestOwnCity(from grid.Coord) *City {
	var best *City
	bestDist := 0
	for _, c := range ai.eng.cities {
		if c.CivID != ai.civ {
			continue
		}
		d := grid.Distance(from, c.Coord())
		if best == nil || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// actDefault is the shared fallback: step into unexplored land, then attack
// an adjacent enemy, then take the cheapest passable neighbor.
func (ai *AIController) actDefault(u *Unit) {
	occupied := func(c grid.Coord) bool { return ai.eng.unitAt(c) != nil }

	// Nearest unexplored neighbor.
	for _, opt := range ai.eng.advisor.Options(u, occupied) {
		if !ai.eng.vis.IsExplored(ai.civ, opt.Coord.Col, opt.Coord.Row) {
			ai.eng.MoveUnit(u.ID, opt.Coord.Col, opt.Coord.Row)
			return
		}
	}

	// Adjacent enemy.
	if u.Stats().Attack > 0 {
		for _, nc := range u.Coord().Neighbors() {
			if enemy := ai.eng.unitAt(nc); enemy != nil && enemy.CivID != ai.civ {
				ai.eng.MoveUnit(u.ID, nc.Col, nc.Row)
				return
			}
		}
	}

	// Cheapest passable neighbor.
	if opt, ok := ai.eng.advisor.Best(u, occupied); ok {
		ai.eng.MoveUnit(u.ID, opt.Coord.Col, opt.Coord.Row)
		return
	}
	ai.eng.SkipUnit(u.ID)
}

// moveToward advances one step along a path to the target, falling back to
// any affordable neighbor when the planned step fails recoverably.
func (ai *AIController) moveToward(u *Unit, target grid.Coord) {
	if grid.Adjacent(u.Coord(), target) {
		ai.handleMoveResult(u, ai.eng.MoveUnit(u.ID, target.Col, target.Row))
		return
	}

	// Plan around terrain and everyone standing on it except the target.
	mapCosts := ai.eng.worldMap.MoveCosts()
	costs := func(c grid.Coord) (int, bool) {
		cost, ok := mapCosts(c)
		if !ok {
			return 0, false
		}
		if c != target && ai.eng.unitAt(c) != nil {
			return 0, false
		}
		return cost, true
	}
	path := grid.FindPath(u.Coord(), target, ai.eng.worldMap.Width, ai.eng.worldMap.Height, costs)
	if len(path) == 0 {
		ai.fallbackStep(u)
		return
	}
	ai.handleMoveResult(u, ai.eng.MoveUnit(u.ID, path[0].Col, path[0].Row))
}

func (ai *AIController) handleMoveResult(u *Unit, res ActionResult) {
	if res.OK {
		return
	}
	if res.Reason.Terminal() {
		// Out of budget or out of options: the unit is done for this turn.
		ai.eng.SkipUnit(u.ID)
		return
	}
	ai.fallbackStep(u)
}

func (ai *AIController) fallbackStep(u *Unit) {
	occupied := func(c grid.Coord) bool { return ai.eng.unitAt(c) != nil }
	if opt, ok := ai.eng.advisor.Best(u, occupied); ok {
		if res := ai.eng.MoveUnit(u.ID, opt.Coord.Col, opt.Coord.Row); res.OK {
			return
		}
	}
	ai.eng.SkipUnit(u.ID)
}
