// Turn and round state machine: whose turn is active, round wrap-around,
// and the game calendar.
package game

import (
	"log/slog"

	"github.com/talgya/empire/internal/rules"
)

// TurnPhase is the state of the active civilization's turn.
type TurnPhase uint8

const (
	PhaseAwaitingTurn TurnPhase = iota
	PhaseTurnInProgress
	PhaseTurnComplete
)

// String returns the stable name of a turn phase.
func (p TurnPhase) String() string {
	switch p {
	case PhaseAwaitingTurn:
		return "awaiting_turn"
	case PhaseTurnInProgress:
		return "turn_in_progress"
	case PhaseTurnComplete:
		return "turn_complete"
	default:
		return "unknown"
	}
}

// TurnManager tracks turn order, rounds, and the calendar. One civilization
// is active at a time; a round completes when every alive civilization has
// had exactly one turn.
type TurnManager struct {
	civs      []*Civilization // Seat order, fixed at game start
	activeIdx int
	round     int
	year      int
	phase     TurnPhase

	// generation increments on every turn change. An in-flight AI loop
	// compares its generation before each step and aborts when superseded.
	generation uint64
}

// NewTurnManager creates a manager over the civilizations in seat order.
func NewTurnManager(civs []*Civilization) *TurnManager {
	return &TurnManager{
		civs:  civs,
		round: 1,
		year:  rules.StartYear,
		phase: PhaseAwaitingTurn,
	}
}

// ActiveCiv returns the civilization whose turn it is.
func (tm *TurnManager) ActiveCiv() *Civilization {
	return tm.civs[tm.activeIdx]
}

// IsActive reports whether the given civilization is the acting one.
func (tm *TurnManager) IsActive(civ CivID) bool {
	return tm.ActiveCiv().ID == civ
}

// Round returns the current round number (1-based).
func (tm *TurnManager) Round() int { return tm.round }

// Year returns the current calendar year. Negative years are BC.
func (tm *TurnManager) Year() int { return tm.year }

// Phase returns the current turn phase.
func (tm *TurnManager) Phase() TurnPhase { return tm.phase }

// Generation returns the cancellation token for the current turn.
func (tm *TurnManager) Generation() uint64 { return tm.generation }

// BeginTurn moves the active civilization into TurnInProgress.
func (tm *TurnManager) BeginTurn() {
	tm.phase = PhaseTurnInProgress
	slog.Debug("turn began",
		"civ", tm.ActiveCiv().Name, "round", tm.round, "year", tm.year)
}

// CompleteTurn marks the active civilization's turn finished.
func (tm *TurnManager) CompleteTurn() {
	tm.phase = PhaseTurnComplete
}

// Advance hands the turn to the next alive civilization. It returns true
// when the hand-off wrapped past the last seat, completing a round and
// advancing the calendar.
func (tm *TurnManager) Advance() (roundCompleted bool) {
	tm.generation++
	tm.phase = PhaseAwaitingTurn

	for {
		tm.activeIdx++
		if tm.activeIdx >= len(tm.civs) {
			tm.activeIdx = 0
			tm.round++
			tm.year = rules.NextYear(tm.year)
			roundCompleted = true
		}
		if tm.ActiveCiv().IsAlive {
			return roundCompleted
		}
		// Dead seats are skipped; at least one civilization stays alive
		// because victory fires before the last one can fall.
	}
}
