// Engine orchestration: lifecycle, unit actions, combat, city founding, and
// queries. All externally observable changes flow through the event sink.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/talgya/empire/internal/grid"
	"github.com/talgya/empire/internal/rules"
	"github.com/talgya/empire/internal/world"
)

// Settings holds everything needed to set up a game.
type Settings struct {
	MapConfig       world.GenConfig
	NumCivs         int
	HumanSeat       int // Index into the roster; -1 for an all-AI game
	MinCityDistance int
	MaxRounds       int
	RevealAll       bool // Developer mode: fog of war reported as fully lifted
	AI              AIConfig
}

// DefaultSettings returns a standard four-civilization game.
func DefaultSettings() Settings {
	return Settings{
		MapConfig:       world.DefaultGenConfig(),
		NumCivs:         4,
		HumanSeat:       -1,
		MinCityDistance: DefaultMinCityDistance,
		MaxRounds:       300,
		AI:              DefaultAIConfig(),
	}
}

// combatLossDamage is the fixed damage a surviving attacker takes on defeat.
const combatLossDamage = 40

// cityGrowthBase is the food store needed for a city's first growth; each
// population point raises the bar by cityGrowthPerPop.
const (
	cityGrowthBase   = 10
	cityGrowthPerPop = 5
	foodPerCitizen   = 2
)

// Engine owns the world, the registries, and every manager, and exposes the
// public game operations.
type Engine struct {
	settings Settings
	worldMap *world.Map

	civs   []*Civilization
	units  []*Unit
	cities []*City

	unitIndex map[UnitID]*Unit
	cityIndex map[CityID]*City

	vis        *VisibilityStore
	turns      *TurnManager
	production *ProductionManager
	evaluator  *SettlementEvaluator
	searcher   *EnemySearcher
	advisor    *TerrainAdvisor
	victory    *VictoryManager

	sink Sink
	rng  *rand.Rand

	nextUnitID UnitID
	nextCityID CityID
	cityNames  []string
	nameIdx    int

	winner  *VictoryResult
	stopped bool
}

// NewEngine creates an engine with the given settings and event sink.
// Call Initialize before issuing operations.
func NewEngine(settings Settings, sink Sink) *Engine {
	if sink == nil {
		sink = nopSink{}
	}
	return &Engine{settings: settings, sink: sink}
}

// Initialize builds the map, civilizations, and starting units, then starts
// the first turn.
func (e *Engine) Initialize() error {
	cfg := e.settings.MapConfig
	if e.settings.NumCivs < 2 || e.settings.NumCivs > len(rules.CivRoster) {
		return fmt.Errorf("unsupported civilization count %d", e.settings.NumCivs)
	}

	e.worldMap = world.Generate(cfg)
	e.rng = rand.New(rand.NewSource(cfg.Seed + 300))
	e.cityNames = generateCityNames(e.rng, 64)
	e.nameIdx = 0
	e.nextUnitID = 0
	e.nextCityID = 0
	e.winner = nil
	e.stopped = false
	e.units = nil
	e.cities = nil
	e.unitIndex = make(map[UnitID]*Unit)
	e.cityIndex = make(map[CityID]*City)

	e.vis = NewVisibilityStore(e.worldMap.Width, e.worldMap.Height)
	e.vis.SetRevealAll(e.settings.RevealAll)

	e.civs = make([]*Civilization, 0, e.settings.NumCivs)
	for i := 0; i < e.settings.NumCivs; i++ {
		info := rules.CivRoster[i]
		civ := &Civilization{
			ID:           CivID(i + 1),
			Name:         info.Name,
			Leader:       info.Leader,
			IsHuman:      i == e.settings.HumanSeat,
			IsAlive:      true,
			Gold:         50,
			Technologies: make(map[rules.TechKind]bool),
			Government:   rules.GovDespotism,
		}
		e.civs = append(e.civs, civ)
		e.vis.Register(civ.ID)
	}

	starts := e.pickStartingPositions(len(e.civs))
	if len(starts) < len(e.civs) {
		return fmt.Errorf("map has only %d viable starting positions for %d civilizations",
			len(starts), len(e.civs))
	}
	for i, civ := range e.civs {
		e.spawnUnit(civ.ID, rules.UnitSettler, starts[i])
		// The scout takes a neighboring tile; units never stack.
		if e.spawnUnitDisplaced(civ.ID, rules.UnitScout, starts[i]) == nil {
			slog.Warn("no open tile for starting scout", "civ", civ.Name)
		}
	}

	e.turns = NewTurnManager(e.civs)
	e.production = NewProductionManager(e.sink)
	e.evaluator = NewSettlementEvaluator(e.worldMap, e.vis, e.settings.MinCityDistance, e.settings.AI.SearchRadius)
	e.searcher = NewEnemySearcher(e.worldMap.Width, e.worldMap.Height, e.vis)
	e.advisor = NewTerrainAdvisor(e.worldMap)
	e.victory = NewVictoryManager(e.settings.MaxRounds)

	slog.Info("game initialized",
		"map", e.worldMap.String(),
		"civs", len(e.civs),
		"seed", cfg.Seed,
	)
	e.sink.Notify(Event{Kind: EventGameStarted, Round: 1, Year: e.turns.Year()})

	e.startTurn()
	return nil
}

// NewGame discards the current game and sets up a fresh one on a new seed.
func (e *Engine) NewGame() error {
	e.settings.MapConfig.Seed = rand.Int63()
	return e.Initialize()
}

// Restart replays the same settings and seed from the beginning.
func (e *Engine) Restart() error {
	return e.Initialize()
}

// Shutdown stops the engine; every further operation fails with game_over.
func (e *Engine) Shutdown() {
	e.stopped = true
	slog.Info("engine shut down", "round", e.turns.Round())
}

// GameOver reports whether the game has ended or been shut down.
func (e *Engine) GameOver() bool {
	return e.stopped || e.winner != nil
}

// Winner returns the victory result, or nil while the game goes on.
func (e *Engine) Winner() *VictoryResult {
	return e.winner
}

// pickStartingPositions selects spaced, settleable starting tiles.
func (e *Engine) pickStartingPositions(count int) []grid.Coord {
	var candidates []grid.Coord
	for i := range e.worldMap.Tiles {
		t := &e.worldMap.Tiles[i]
		if !t.Settleable() {
			continue
		}
		y := t.TileYields()
		if y.Food >= 1 {
			candidates = append(candidates, t.Coord())
		}
	}
	e.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	// Greedy spacing, relaxing the distance requirement until everyone fits.
	for minDist := 10; minDist >= 2; minDist -= 2 {
		var picked []grid.Coord
		for _, c := range candidates {
			ok := true
			for _, p := range picked {
				if grid.Distance(c, p) < minDist {
					ok = false
					break
				}
			}
			if ok {
				picked = append(picked, c)
				if len(picked) == count {
					return picked
				}
			}
		}
	}
	return nil
}

// ── Turn control ────────────────────────────────────────────────────────

// ActiveCiv returns the civilization whose turn it is.
func (e *Engine) ActiveCiv() *Civilization { return e.turns.ActiveCiv() }

// Round returns the current round number.
func (e *Engine) Round() int { return e.turns.Round() }

// Year returns the current calendar year.
func (e *Engine) Year() int { return e.turns.Year() }

// Turns exposes the turn manager for read-only inspection.
func (e *Engine) Turns() *TurnManager { return e.turns }

// startTurn begins the active civilization's turn: movement budgets reset,
// purchase throttles clear, cities work, and visibility is rebuilt.
func (e *Engine) startTurn() {
	civ := e.turns.ActiveCiv()
	e.turns.BeginTurn()

	for _, u := range e.units {
		if u.CivID != civ.ID || u.Defeated {
			continue
		}
		u.MovesRemaining = u.MaxMoves
		u.TurnDone = u.IsFortified || u.IsSleeping
	}

	e.processCityTurns(civ)

	// Rebuild visibility for everyone so last-known snapshots stay honest.
	for _, c := range e.civs {
		e.vis.Recompute(c.ID, e.units, e.cities)
	}

	slog.Info("turn started",
		"civ", civ.Name, "round", e.turns.Round(), "year", e.turns.Year())
	e.sink.Notify(Event{
		Kind: EventTurnStarted, Round: e.turns.Round(), Year: e.turns.Year(),
		Civ: civ.ID, Detail: civ.Name,
	})
}

// EndTurn completes the active civilization's turn and hands over to the
// next seat, evaluating victory when a round wraps.
func (e *Engine) EndTurn() ActionResult {
	if e.GameOver() {
		return Fail(ReasonGameOver)
	}
	civ := e.turns.ActiveCiv()
	e.turns.CompleteTurn()
	e.sweepDefeated()

	e.sink.Notify(Event{
		Kind: EventTurnEnded, Round: e.turns.Round(), Year: e.turns.Year(),
		Civ: civ.ID, Detail: civ.Name,
	})

	if e.turns.Advance() {
		e.sink.Notify(Event{
			Kind: EventRoundCompleted, Round: e.turns.Round(), Year: e.turns.Year(),
		})
		if result := e.victory.Evaluate(e.civs, e.units, e.cities, e.turns.Round()); result != nil {
			e.winner = result
			slog.Info("game over", "kind", result.Kind.String(), "detail", result.Detail)
			e.sink.Notify(Event{
				Kind: EventVictory, Round: e.turns.Round(), Year: e.turns.Year(),
				Civ: result.Winner, Detail: result.Detail,
			})
			return Succeed()
		}
	}

	e.startTurn()
	return Succeed()
}

// ProcessAITurn runs the AI decision loop for the active civilization to
// completion and ends its turn.
func (e *Engine) ProcessAITurn(civ CivID) ActionResult {
	if e.GameOver() {
		return Fail(ReasonGameOver)
	}
	if !e.turns.IsActive(civ) {
		slog.Warn("out-of-turn AI request rejected", "civ", civ)
		return Fail(ReasonNotYourTurn)
	}
	ai := NewAIController(e, civ)
	ai.Run()
	return e.EndTurn()
}

// AIStepper returns a step-driven AI controller for the active civilization
// so a host can pace the decisions. The caller ends the turn when the
// controller reports completion.
func (e *Engine) AIStepper(civ CivID) (*AIController, ActionResult) {
	if e.GameOver() {
		return nil, Fail(ReasonGameOver)
	}
	if !e.turns.IsActive(civ) {
		return nil, Fail(ReasonNotYourTurn)
	}
	return NewAIController(e, civ), Succeed()
}

// CheckAndEndTurnIfNoMoves reports whether the active civilization has any
// active unit with moves left; for human seats it emits a confirmation
// request instead of silently ending the turn.
func (e *Engine) CheckAndEndTurnIfNoMoves() bool {
	civ := e.turns.ActiveCiv()
	for _, u := range e.units {
		if u.CivID == civ.ID && u.Active() {
			return false
		}
	}
	if civ.IsHuman {
		e.sink.Notify(Event{
			Kind: EventEndTurnConfirmationNeeded,
			Round: e.turns.Round(), Year: e.turns.Year(), Civ: civ.ID,
		})
	}
	return true
}

// ── City economy ────────────────────────────────────────────────────────

// CityYields computes a city's per-turn output: the yields of its tile and
// surrounding ring plus building bonuses.
func (e *Engine) CityYields(c *City) world.Yields {
	center := e.worldMap.AtCoord(c.Coord())
	if center == nil {
		return world.Yields{}
	}
	y := center.TileYields()
	for _, nc := range c.Coord().Neighbors() {
		if t := e.worldMap.AtCoord(nc); t != nil {
			y = y.Add(t.TileYields())
		}
	}
	for b := range c.Buildings {
		stats := rules.Building(b)
		y.Food += stats.FoodBonus
		y.Production += stats.ProductionBonus
		y.Trade += stats.TradeBonus
	}
	return y
}

func (e *Engine) processCityTurns(civ *Civilization) {
	for _, city := range e.cities {
		if city.CivID != civ.ID {
			continue
		}
		city.PurchasedThisTurn = false
		yields := e.CityYields(city)

		// Food: feed the citizens, grow on surplus.
		city.FoodStored += yields.Food - foodPerCitizen*city.Population
		if city.FoodStored < 0 {
			city.FoodStored = 0
		}
		if city.FoodStored >= cityGrowthBase+cityGrowthPerPop*city.Population {
			city.Population++
			city.FoodStored = 0
			e.sink.Notify(Event{
				Kind: EventCityGrew, Round: e.turns.Round(), Year: e.turns.Year(),
				Civ: civ.ID, City: city.ID, Col: city.Col, Row: city.Row,
				Detail: fmt.Sprintf("%s grew to %d", city.Name, city.Population),
			})
		}

		// Trade splits between treasury and research.
		civ.Gold += yields.Trade - yields.Trade/2
		civ.Science += yields.Trade / 2
		e.researchTechnologies(civ)

		// Production: pick automatically where no explicit order stands.
		if city.Current == nil && len(city.BuildQueue) == 0 &&
			(city.AutoProduction || !civ.IsHuman) {
			item := AutoChooseProduction(city, e.civSnapshot(civ.ID, city))
			e.production.SetProduction(city, item, false)
		}
		for _, item := range e.production.ProcessTurn(city, yields.Production) {
			e.completeProduction(civ, city, item)
		}
	}
}

// researchTechnologies spends accumulated science on the cheapest available
// technology whose prerequisite is met.
func (e *Engine) researchTechnologies(civ *Civilization) {
	for {
		var pick *rules.TechKind
		pickCost := 0
		for _, k := range []rules.TechKind{
			rules.TechAgriculture, rules.TechBronzeWorking, rules.TechWriting,
			rules.TechHorsebackRiding, rules.TechCurrency, rules.TechMathematics,
		} {
			if civ.Technologies[k] {
				continue
			}
			stats := rules.Tech(k)
			if stats.Requires != nil && !civ.Technologies[*stats.Requires] {
				continue
			}
			if pick == nil || stats.Cost < pickCost {
				kk := k
				pick = &kk
				pickCost = stats.Cost
			}
		}
		if pick == nil || civ.Science < pickCost {
			return
		}
		civ.Science -= pickCost
		civ.Technologies[*pick] = true
		slog.Info("technology discovered", "civ", civ.Name, "tech", rules.Tech(*pick).Name)
	}
}

func (e *Engine) civSnapshot(civ CivID, city *City) CivSnapshot {
	snap := CivSnapshot{}
	for _, c := range e.cities {
		if c.CivID == civ {
			snap.Cities++
		}
	}
	for _, u := range e.units {
		if u.CivID != civ || u.Defeated {
			continue
		}
		switch u.Kind {
		case rules.UnitSettler:
			snap.Settlers++
		case rules.UnitScout:
			snap.Scouts++
		}
		if u.Coord() == city.Coord() && u.Stats().Attack > 0 {
			snap.HasDefender = true
		}
	}
	return snap
}

func (e *Engine) completeProduction(civ *Civilization, city *City, item ProductionItem) {
	switch item.Kind {
	case ProduceUnit:
		u := e.spawnUnitDisplaced(civ.ID, item.Unit, city.Coord())
		if u == nil {
			// Nowhere to stand: the build is lost, which only happens on a
			// fully surrounded city.
			slog.Warn("produced unit had no free tile", "city", city.Name, "unit", item.Name)
			return
		}
		e.sink.Notify(Event{
			Kind: EventUnitProduced, Round: e.turns.Round(), Year: e.turns.Year(),
			Civ: civ.ID, City: city.ID, Unit: u.ID, Col: u.Col, Row: u.Row,
			Detail: city.Name + " produced " + item.Name,
		})
	case ProduceBuilding:
		city.Buildings[item.Building] = true
		e.sink.Notify(Event{
			Kind: EventBuildingProduced, Round: e.turns.Round(), Year: e.turns.Year(),
			Civ: civ.ID, City: city.ID, Col: city.Col, Row: city.Row,
			Detail: city.Name + " completed " + item.Name,
		})
	}
}

// ── Units ───────────────────────────────────────────────────────────────

func (e *Engine) spawnUnit(civ CivID, kind rules.UnitKind, at grid.Coord) *Unit {
	stats := rules.Unit(kind)
	e.nextUnitID++
	u := &Unit{
		ID:             e.nextUnitID,
		CivID:          civ,
		Kind:           kind,
		Col:            at.Col,
		Row:            at.Row,
		Health:         100,
		MovesRemaining: stats.Moves,
		MaxMoves:       stats.Moves,
	}
	e.units = append(e.units, u)
	e.unitIndex[u.ID] = u
	e.vis.RevealArea(civ, u.Col, u.Row, stats.Sight)
	return u
}

// spawnUnitDisplaced places a unit at the coordinate, or on a free passable
// neighbor when the tile is occupied by another unit.
func (e *Engine) spawnUnitDisplaced(civ CivID, kind rules.UnitKind, at grid.Coord) *Unit {
	if e.unitAt(at) == nil {
		return e.spawnUnit(civ, kind, at)
	}
	for _, nc := range at.Neighbors() {
		tile := e.worldMap.AtCoord(nc)
		if tile == nil || !tile.Passable() || e.unitAt(nc) != nil {
			continue
		}
		return e.spawnUnit(civ, kind, nc)
	}
	return nil
}

func (e *Engine) unitAt(c grid.Coord) *Unit {
	for _, u := range e.units {
		if !u.Defeated && u.Col == c.Col && u.Row == c.Row {
			return u
		}
	}
	return nil
}

func (e *Engine) cityAt(c grid.Coord) *City {
	for _, city := range e.cities {
		if city.Col == c.Col && city.Row == c.Row {
			return city
		}
	}
	return nil
}

// sweepDefeated drops defeated units from the registries. Deferred to the
// end of a turn so observers see the defeat event before the record goes.
func (e *Engine) sweepDefeated() {
	kept := e.units[:0]
	for _, u := range e.units {
		if u.Defeated {
			delete(e.unitIndex, u.ID)
			continue
		}
		kept = append(kept, u)
	}
	e.units = kept
}

// guardUnitAction runs the shared validation for unit-mutating operations.
func (e *Engine) guardUnitAction(id UnitID) (*Unit, ActionResult) {
	if e.GameOver() {
		return nil, Fail(ReasonGameOver)
	}
	u, ok := e.unitIndex[id]
	if !ok || u.Defeated {
		return nil, Fail(ReasonInvalidTarget)
	}
	if !e.turns.IsActive(u.CivID) {
		slog.Warn("out-of-turn action rejected",
			"unit", id, "owner", u.CivID, "active", e.turns.ActiveCiv().ID)
		return nil, Fail(ReasonNotYourTurn)
	}
	return u, Succeed()
}

// CanMoveTo validates a single-step move or attack without performing it.
func (e *Engine) CanMoveTo(id UnitID, col, row int) ActionResult {
	u, res := e.guardUnitAction(id)
	if !res.OK {
		return res
	}
	dest := grid.Coord{Col: col, Row: row}
	tile := e.worldMap.AtCoord(dest)
	if tile == nil || !grid.Adjacent(u.Coord(), dest) {
		return Fail(ReasonInvalidTarget)
	}
	if u.MovesRemaining <= 0 {
		return Fail(ReasonNoMovesLeft)
	}
	if !tile.Passable() {
		return Fail(ReasonTerrainImpassable)
	}
	if other := e.unitAt(dest); other != nil {
		if other.CivID == u.CivID {
			return Fail(ReasonCannotMove)
		}
		// Attack: possible for any unit with an attack value.
		if u.Stats().Attack <= 0 {
			return Fail(ReasonCannotMove)
		}
		return Succeed()
	}
	if city := e.cityAt(dest); city != nil && city.CivID != u.CivID {
		// Capturing cities is out of scope; enemy city tiles are walls.
		return Fail(ReasonCannotMove)
	}
	if u.MovesRemaining < tile.MoveCost() {
		return Fail(ReasonInsufficientMoves)
	}
	return Succeed()
}

// MoveUnit steps a unit onto an adjacent tile, or attacks the enemy unit
// standing there.
func (e *Engine) MoveUnit(id UnitID, col, row int) ActionResult {
	if res := e.CanMoveTo(id, col, row); !res.OK {
		return res
	}
	u := e.unitIndex[id]
	dest := grid.Coord{Col: col, Row: row}

	if defender := e.unitAt(dest); defender != nil {
		return e.resolveCombat(u, defender)
	}

	tile := e.worldMap.AtCoord(dest)
	u.SpendMoves(tile.MoveCost())
	u.Col, u.Row = dest.Col, dest.Row
	e.vis.RevealArea(u.CivID, u.Col, u.Row, u.Stats().Sight)
	u.TurnDone = u.MovesRemaining == 0 || u.IsFortified || u.IsSleeping

	e.sink.Notify(Event{
		Kind: EventUnitMoved, Round: e.turns.Round(), Year: e.turns.Year(),
		Civ: u.CivID, Unit: u.ID, Col: u.Col, Row: u.Row,
	})
	e.CheckAndEndTurnIfNoMoves()
	return Succeed()
}

// CombatUnit attacks an adjacent enemy unit directly. Equivalent to moving
// onto its tile.
func (e *Engine) CombatUnit(attackerID, defenderID UnitID) ActionResult {
	defender := e.unitIndex[defenderID]
	if defender == nil || defender.Defeated {
		return Fail(ReasonInvalidTarget)
	}
	u := e.unitIndex[attackerID]
	if u != nil && defender.CivID == u.CivID {
		return Fail(ReasonInvalidTarget)
	}
	return e.MoveUnit(attackerID, defender.Col, defender.Row)
}

// CombatStrength returns a unit's effective strength on attack or defense:
// the base stat scaled by health, with veteran and fortification bonuses.
func CombatStrength(u *Unit, attacking bool) float64 {
	stats := u.Stats()
	base := float64(stats.Defense)
	if attacking {
		base = float64(stats.Attack)
	}
	strength := base * float64(u.Health) / 100.0
	if u.IsVeteran {
		strength *= 1.5
	}
	if !attacking && u.IsFortified {
		strength *= 1.5
	}
	return strength
}

// RollCombat decides one combat: the attacker wins with probability
// a/(a+d). A zero-strength defender always loses.
func RollCombat(rng *rand.Rand, attackStrength, defenseStrength float64) bool {
	total := attackStrength + defenseStrength
	if total <= 0 {
		return false
	}
	return rng.Float64() < attackStrength/total
}

func (e *Engine) resolveCombat(attacker, defender *Unit) ActionResult {
	attackStrength := CombatStrength(attacker, true)
	defenseStrength := CombatStrength(defender, false)
	attacker.SpendMoves(1)

	if RollCombat(e.rng, attackStrength, defenseStrength) {
		defender.Health = 0
		defender.Defeated = true
		e.sink.Notify(Event{
			Kind: EventUnitDefeated, Round: e.turns.Round(), Year: e.turns.Year(),
			Civ: defender.CivID, Unit: defender.ID, Col: defender.Col, Row: defender.Row,
		})

		// Winner takes the field.
		attacker.Col, attacker.Row = defender.Col, defender.Row
		attacker.IsVeteran = true
		e.vis.RevealArea(attacker.CivID, attacker.Col, attacker.Row, attacker.Stats().Sight)
		attacker.TurnDone = attacker.MovesRemaining == 0

		e.sink.Notify(Event{
			Kind: EventCombatVictory, Round: e.turns.Round(), Year: e.turns.Year(),
			Civ: attacker.CivID, Unit: attacker.ID, Col: attacker.Col, Row: attacker.Row,
		})
		e.CheckAndEndTurnIfNoMoves()
		return Succeed()
	}

	attacker.Health -= combatLossDamage
	if attacker.Health <= 0 {
		attacker.Health = 0
		attacker.Defeated = true
		e.sink.Notify(Event{
			Kind: EventUnitDefeated, Round: e.turns.Round(), Year: e.turns.Year(),
			Civ: attacker.CivID, Unit: attacker.ID, Col: attacker.Col, Row: attacker.Row,
		})
	}
	e.sink.Notify(Event{
		Kind: EventCombatDefeat, Round: e.turns.Round(), Year: e.turns.Year(),
		Civ: attacker.CivID, Unit: attacker.ID, Col: defender.Col, Row: defender.Row,
	})
	e.CheckAndEndTurnIfNoMoves()
	return Fail(ReasonCombatDefeat)
}

// SkipUnit spends the unit's remaining orders for this turn.
func (e *Engine) SkipUnit(id UnitID) ActionResult {
	u, res := e.guardUnitAction(id)
	if !res.OK {
		return res
	}
	u.MovesRemaining = 0
	u.TurnDone = true
	e.CheckAndEndTurnIfNoMoves()
	return Succeed()
}

// SleepUnit puts the unit to sleep until explicitly woken.
func (e *Engine) SleepUnit(id UnitID) ActionResult {
	u, res := e.guardUnitAction(id)
	if !res.OK {
		return res
	}
	u.IsSleeping = true
	u.TurnDone = true
	e.CheckAndEndTurnIfNoMoves()
	return Succeed()
}

// WakeUnit clears sleep and fortification.
func (e *Engine) WakeUnit(id UnitID) ActionResult {
	u, res := e.guardUnitAction(id)
	if !res.OK {
		return res
	}
	u.IsSleeping = false
	u.IsFortified = false
	u.TurnDone = u.MovesRemaining == 0
	return Succeed()
}

// FortifyUnit digs the unit in, granting a defense bonus until woken.
func (e *Engine) FortifyUnit(id UnitID) ActionResult {
	u, res := e.guardUnitAction(id)
	if !res.OK {
		return res
	}
	u.IsFortified = true
	u.TurnDone = true
	e.CheckAndEndTurnIfNoMoves()
	return Succeed()
}

// AttachUnit links the unit to an adjacent friendly unit as an escort. The
// escort holds position for the turn.
func (e *Engine) AttachUnit(id, targetID UnitID) ActionResult {
	u, res := e.guardUnitAction(id)
	if !res.OK {
		return res
	}
	target, ok := e.unitIndex[targetID]
	if !ok || target.Defeated || target.CivID != u.CivID || target.ID == u.ID {
		return Fail(ReasonInvalidTarget)
	}
	if grid.Distance(u.Coord(), target.Coord()) > 1 {
		return Fail(ReasonInvalidTarget)
	}
	u.AttachedTo = targetID
	u.TurnDone = true
	u.MovesRemaining = 0
	e.CheckAndEndTurnIfNoMoves()
	return Succeed()
}

// BuildImprovement has a worker spend its turn building a farm, mine, or
// road on its tile.
func (e *Engine) BuildImprovement(id UnitID, imp world.Improvement) ActionResult {
	u, res := e.guardUnitAction(id)
	if !res.OK {
		return res
	}
	if u.Kind != rules.UnitWorker {
		return Fail(ReasonInvalidTarget)
	}
	if u.MovesRemaining <= 0 {
		return Fail(ReasonNoMovesLeft)
	}
	tile := e.worldMap.AtCoord(u.Coord())
	if tile == nil || !tile.Passable() {
		return Fail(ReasonTerrainImpassable)
	}

	if imp == world.ImprovementRoad {
		tile.HasRoad = true
	} else {
		tile.Improvement = imp
	}
	u.MovesRemaining = 0
	u.TurnDone = true

	e.sink.Notify(Event{
		Kind: EventImprovementBuilt, Round: e.turns.Round(), Year: e.turns.Year(),
		Civ: u.CivID, Unit: u.ID, Col: u.Col, Row: u.Row,
	})
	e.CheckAndEndTurnIfNoMoves()
	return Succeed()
}

// ── Cities ──────────────────────────────────────────────────────────────

// FoundCityWithSettler consumes the settler to create a city on its tile,
// enforcing the minimum spacing from existing cities.
func (e *Engine) FoundCityWithSettler(id UnitID) ActionResult {
	u, res := e.guardUnitAction(id)
	if !res.OK {
		return res
	}
	if u.Kind != rules.UnitSettler {
		return Fail(ReasonInvalidTarget)
	}
	tile := e.worldMap.AtCoord(u.Coord())
	if tile == nil || !tile.Settleable() {
		return Fail(ReasonTerrainImpassable)
	}
	if e.evaluator.ViolatesSpacing(u.Coord(), e.cities) {
		return Fail(ReasonCityTooClose)
	}

	e.nextCityID++
	city := &City{
		ID:         e.nextCityID,
		Name:       e.nextCityName(),
		CivID:      u.CivID,
		Col:        u.Col,
		Row:        u.Row,
		Population: 1,
		Buildings:  make(map[rules.BuildingKind]bool),
	}
	if e.cityCountFor(u.CivID) == 0 {
		city.Buildings[rules.BuildingPalace] = true
	}
	// Default build order: a garrison.
	first := UnitItem(rules.UnitWarrior)
	city.Current = &first

	e.cities = append(e.cities, city)
	e.cityIndex[city.ID] = city

	// The settler is consumed.
	u.Defeated = true
	e.vis.RevealArea(city.CivID, city.Col, city.Row, CitySightRadius)

	slog.Info("city founded", "civ", u.CivID, "name", city.Name, "col", city.Col, "row", city.Row)
	e.sink.Notify(Event{
		Kind: EventCityFounded, Round: e.turns.Round(), Year: e.turns.Year(),
		Civ: city.CivID, City: city.ID, Col: city.Col, Row: city.Row,
		Detail: city.Name,
	})
	e.CheckAndEndTurnIfNoMoves()
	return Succeed()
}

func (e *Engine) cityCountFor(civ CivID) int {
	n := 0
	for _, c := range e.cities {
		if c.CivID == civ {
			n++
		}
	}
	return n
}

func (e *Engine) nextCityName() string {
	if e.nameIdx >= len(e.cityNames) {
		e.cityNames = append(e.cityNames, generateCityNames(e.rng, 16)...)
	}
	name := e.cityNames[e.nameIdx]
	e.nameIdx++
	return name
}

// guardCityAction runs the shared validation for city-mutating operations.
func (e *Engine) guardCityAction(id CityID) (*City, ActionResult) {
	if e.GameOver() {
		return nil, Fail(ReasonGameOver)
	}
	city, ok := e.cityIndex[id]
	if !ok {
		return nil, Fail(ReasonInvalidTarget)
	}
	if !e.turns.IsActive(city.CivID) {
		slog.Warn("out-of-turn city action rejected",
			"city", id, "owner", city.CivID, "active", e.turns.ActiveCiv().ID)
		return nil, Fail(ReasonNotYourTurn)
	}
	return city, Succeed()
}

// SetCityProduction sets or queues the city's build order.
func (e *Engine) SetCityProduction(id CityID, item ProductionItem, queue bool) ActionResult {
	city, res := e.guardCityAction(id)
	if !res.OK {
		return res
	}
	e.production.SetProduction(city, item, queue)
	return Succeed()
}

// PurchaseCityProduction buys the item with gold, subject to the per-turn
// purchase throttle.
func (e *Engine) PurchaseCityProduction(id CityID, item ProductionItem) ActionResult {
	city, res := e.guardCityAction(id)
	if !res.OK {
		return res
	}
	civ := e.turns.ActiveCiv()
	return e.production.Purchase(civ, city, item)
}

// RemoveQueueItem deletes a build-queue entry.
func (e *Engine) RemoveQueueItem(id CityID, index int) ActionResult {
	city, res := e.guardCityAction(id)
	if !res.OK {
		return res
	}
	e.production.RemoveQueueItem(city, index)
	return Succeed()
}

// TurnsRemaining estimates turns until the city's current build completes at
// its present production output.
func (e *Engine) TurnsRemaining(c *City) int {
	return e.production.TurnsRemaining(c, e.CityYields(c).Production)
}

// ── Queries ─────────────────────────────────────────────────────────────

// GetTileAt returns the tile at (col, row), or nil out of bounds.
func (e *Engine) GetTileAt(col, row int) *world.Tile {
	return e.worldMap.At(col, row)
}

// GetUnitAt returns the unit standing at (col, row), or nil.
func (e *Engine) GetUnitAt(col, row int) *Unit {
	return e.unitAt(grid.Coord{Col: col, Row: row})
}

// GetCityAt returns the city at (col, row), or nil.
func (e *Engine) GetCityAt(col, row int) *City {
	return e.cityAt(grid.Coord{Col: col, Row: row})
}

// GetUnit returns the unit with the id, or nil.
func (e *Engine) GetUnit(id UnitID) *Unit {
	return e.unitIndex[id]
}

// GetCity returns the city with the id, or nil.
func (e *Engine) GetCity(id CityID) *City {
	return e.cityIndex[id]
}

// GetAllUnits returns the live unit registry.
func (e *Engine) GetAllUnits() []*Unit {
	return e.units
}

// GetAllCities returns the city registry.
func (e *Engine) GetAllCities() []*City {
	return e.cities
}

// GetCivilizations returns the civilization roster.
func (e *Engine) GetCivilizations() []*Civilization {
	return e.civs
}

// WorldMap returns the map for read-only inspection.
func (e *Engine) WorldMap() *world.Map {
	return e.worldMap
}

// IsVisibleToPlayer reports current visibility of a tile for a civilization.
func (e *Engine) IsVisibleToPlayer(civ CivID, col, row int) bool {
	return e.vis.IsVisible(civ, col, row)
}

// IsExploredByPlayer reports whether a civilization has ever seen a tile.
func (e *Engine) IsExploredByPlayer(civ CivID, col, row int) bool {
	return e.vis.IsExplored(civ, col, row)
}

// Visibility exposes the visibility store for read-only inspection.
func (e *Engine) Visibility() *VisibilityStore {
	return e.vis
}
