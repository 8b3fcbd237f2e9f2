package game

import (
	"testing"

	"github.com/talgya/empire/internal/rules"
)

func testCivs(n int) []*Civilization {
	civs := make([]*Civilization, 0, n)
	for i := 0; i < n; i++ {
		civs = append(civs, &Civilization{
			ID:      CivID(i + 1),
			Name:    rules.CivRoster[i].Name,
			IsAlive: true,
		})
	}
	return civs
}

func TestTurnPhases(t *testing.T) {
	tm := NewTurnManager(testCivs(3))

	if tm.Phase() != PhaseAwaitingTurn {
		t.Fatalf("initial phase = %v", tm.Phase())
	}
	tm.BeginTurn()
	if tm.Phase() != PhaseTurnInProgress {
		t.Fatalf("after begin: %v", tm.Phase())
	}
	tm.CompleteTurn()
	if tm.Phase() != PhaseTurnComplete {
		t.Fatalf("after complete: %v", tm.Phase())
	}
	tm.Advance()
	if tm.Phase() != PhaseAwaitingTurn {
		t.Fatalf("after advance: %v", tm.Phase())
	}
}

func TestRoundWrap(t *testing.T) {
	tm := NewTurnManager(testCivs(3))

	if tm.Round() != 1 || tm.Year() != rules.StartYear {
		t.Fatalf("initial round %d year %d", tm.Round(), tm.Year())
	}

	if tm.Advance() {
		t.Error("round completed after first seat")
	}
	if tm.ActiveCiv().ID != 2 {
		t.Fatalf("active = %d, want 2", tm.ActiveCiv().ID)
	}
	if tm.Advance() {
		t.Error("round completed after second seat")
	}
	if !tm.Advance() {
		t.Error("round not completed after last seat")
	}
	if tm.ActiveCiv().ID != 1 || tm.Round() != 2 {
		t.Fatalf("after wrap: active %d round %d", tm.ActiveCiv().ID, tm.Round())
	}
	if tm.Year() != rules.StartYear+20 {
		t.Fatalf("year = %d, want %d", tm.Year(), rules.StartYear+20)
	}
}

func TestAdvanceSkipsDeadSeats(t *testing.T) {
	civs := testCivs(3)
	civs[1].IsAlive = false
	tm := NewTurnManager(civs)

	tm.Advance()
	if tm.ActiveCiv().ID != 3 {
		t.Fatalf("active = %d, want 3 (seat 2 is dead)", tm.ActiveCiv().ID)
	}
}

func TestGenerationIncrementsPerHandOff(t *testing.T) {
	tm := NewTurnManager(testCivs(2))

	g0 := tm.Generation()
	tm.Advance()
	if tm.Generation() != g0+1 {
		t.Fatalf("generation = %d, want %d", tm.Generation(), g0+1)
	}
	tm.Advance()
	if tm.Generation() != g0+2 {
		t.Fatalf("generation = %d, want %d", tm.Generation(), g0+2)
	}
}

func TestIsActive(t *testing.T) {
	tm := NewTurnManager(testCivs(2))

	if !tm.IsActive(1) || tm.IsActive(2) {
		t.Fatal("seat 1 should be active at start")
	}
	tm.Advance()
	if tm.IsActive(1) || !tm.IsActive(2) {
		t.Fatal("seat 2 should be active after hand-off")
	}
}
