package game

import (
	"testing"

	"github.com/talgya/empire/internal/rules"
)

func newTestCity() *City {
	return &City{
		ID:        1,
		Name:      "Testford",
		CivID:     1,
		Buildings: make(map[rules.BuildingKind]bool),
	}
}

func TestProductionAccumulatesAndCompletes(t *testing.T) {
	pm := NewProductionManager(nil)
	city := newTestCity()
	pm.SetProduction(city, ProductionItem{Kind: ProduceUnit, Unit: rules.UnitWarrior, Name: "Warrior", Cost: 10}, false)

	// Turn 1: 6 points, no completion.
	done := pm.ProcessTurn(city, 6)
	if len(done) != 0 {
		t.Fatalf("nothing should complete at 6/10, got %v", done)
	}
	if city.ProductionStored != 6 {
		t.Errorf("stored = %d, want 6", city.ProductionStored)
	}

	// Turn 2: completes with carry-over 2.
	done = pm.ProcessTurn(city, 6)
	if len(done) != 1 || done[0].Name != "Warrior" {
		t.Fatalf("expected Warrior completion, got %v", done)
	}
	// No queue: leftover points are discarded.
	if city.ProductionStored != 0 {
		t.Errorf("stored after completion with empty queue = %d, want 0", city.ProductionStored)
	}
}

func TestProductionCarryOverIntoQueue(t *testing.T) {
	pm := NewProductionManager(nil)
	city := newTestCity()
	pm.SetProduction(city, ProductionItem{Kind: ProduceUnit, Name: "A", Cost: 10}, false)
	pm.SetProduction(city, ProductionItem{Kind: ProduceUnit, Name: "B", Cost: 20}, true)

	done := pm.ProcessTurn(city, 13)
	if len(done) != 1 || done[0].Name != "A" {
		t.Fatalf("expected A to complete, got %v", done)
	}
	if city.Current == nil || city.Current.Name != "B" {
		t.Fatal("queue should feed the next item FIFO")
	}
	if city.ProductionStored != 3 {
		t.Errorf("carry-over = %d, want exactly 13-10 = 3", city.ProductionStored)
	}
	if city.ProductionStored < 0 {
		t.Error("carry-over must never be negative")
	}
}

func TestProductionMultipleCompletionsOneTurn(t *testing.T) {
	pm := NewProductionManager(nil)
	city := newTestCity()
	pm.SetProduction(city, ProductionItem{Name: "A", Cost: 5}, false)
	pm.SetProduction(city, ProductionItem{Name: "B", Cost: 5}, true)

	done := pm.ProcessTurn(city, 12)
	if len(done) != 2 {
		t.Fatalf("expected both items to complete, got %v", done)
	}
	if city.ProductionStored != 0 {
		t.Errorf("leftover with empty queue should be discarded, got %d", city.ProductionStored)
	}
}

func TestSetProductionReplacesAndResets(t *testing.T) {
	pm := NewProductionManager(nil)
	city := newTestCity()
	pm.SetProduction(city, ProductionItem{Name: "A", Cost: 10}, false)
	pm.ProcessTurn(city, 4)

	pm.SetProduction(city, ProductionItem{Name: "B", Cost: 10}, false)
	if city.Current.Name != "B" {
		t.Error("current production should be replaced")
	}
	if city.ProductionStored != 0 {
		t.Errorf("replacing production must reset progress, stored = %d", city.ProductionStored)
	}
}

func TestRemoveQueueItem(t *testing.T) {
	pm := NewProductionManager(nil)
	city := newTestCity()
	pm.SetProduction(city, ProductionItem{Name: "A", Cost: 10}, false)
	pm.SetProduction(city, ProductionItem{Name: "B", Cost: 10}, true)
	pm.SetProduction(city, ProductionItem{Name: "C", Cost: 10}, true)

	pm.RemoveQueueItem(city, 0)
	if len(city.BuildQueue) != 1 || city.BuildQueue[0].Name != "C" {
		t.Errorf("queue after removal: %v", city.BuildQueue)
	}

	// Out-of-range indexes are ignored.
	pm.RemoveQueueItem(city, 5)
	pm.RemoveQueueItem(city, -1)
	if len(city.BuildQueue) != 1 {
		t.Error("out-of-range removal must not change the queue")
	}
}

func TestPurchaseThrottleAndGold(t *testing.T) {
	pm := NewProductionManager(nil)
	city := newTestCity()
	civ := &Civilization{ID: 1, Gold: 25}

	item := ProductionItem{Kind: ProduceUnit, Unit: rules.UnitScout, Name: "Scout", Cost: 15}
	if res := pm.Purchase(civ, city, item); !res.OK {
		t.Fatalf("purchase should succeed: %v", res.Reason)
	}
	if civ.Gold != 10 {
		t.Errorf("gold = %d, want 10", civ.Gold)
	}

	// Second purchase the same turn is refused.
	if res := pm.Purchase(civ, city, item); res.OK || res.Reason != ReasonAlreadyPurchased {
		t.Errorf("second purchase should fail with already_purchased, got %+v", res)
	}

	// A fresh city without the throttle still needs the gold.
	poor := newTestCity()
	if res := pm.Purchase(civ, poor, ProductionItem{Name: "X", Cost: 100}); res.OK || res.Reason != ReasonInsufficientGold {
		t.Errorf("expected insufficient_gold, got %+v", res)
	}

	// The purchased item completes on the next production pass.
	done := pm.ProcessTurn(city, 0)
	if len(done) != 1 || done[0].Name != "Scout" {
		t.Errorf("purchased item should complete immediately, got %v", done)
	}
}

func TestTurnsRemaining(t *testing.T) {
	pm := NewProductionManager(nil)
	city := newTestCity()
	pm.SetProduction(city, ProductionItem{Name: "A", Cost: 10}, false)

	if got := pm.TurnsRemaining(city, 3); got != 4 {
		t.Errorf("TurnsRemaining = %d, want 4", got)
	}
	pm.ProcessTurn(city, 3)
	if got := pm.TurnsRemaining(city, 3); got != 3 {
		t.Errorf("TurnsRemaining after one turn = %d, want 3", got)
	}
	if got := pm.TurnsRemaining(newTestCity(), 3); got != 0 {
		t.Errorf("idle city TurnsRemaining = %d, want 0", got)
	}
}

func TestAutoChooseProduction(t *testing.T) {
	city := newTestCity()

	// Undefended city garrisons first.
	item := AutoChooseProduction(city, CivSnapshot{Cities: 1})
	if item.Kind != ProduceUnit || item.Unit != rules.UnitWarrior {
		t.Errorf("undefended city should build a warrior, got %v", item.Name)
	}

	// Defended and small: expand.
	item = AutoChooseProduction(city, CivSnapshot{Cities: 1, HasDefender: true})
	if item.Unit != rules.UnitSettler {
		t.Errorf("small empire should build a settler, got %v", item.Name)
	}

	// Expansion done, no scout: scout next.
	item = AutoChooseProduction(city, CivSnapshot{Cities: 3, HasDefender: true})
	if item.Unit != rules.UnitScout {
		t.Errorf("expected scout, got %v", item.Name)
	}

	// Everything covered: work through buildings.
	item = AutoChooseProduction(city, CivSnapshot{Cities: 3, Scouts: 1, HasDefender: true})
	if item.Kind != ProduceBuilding || item.Building != rules.BuildingGranary {
		t.Errorf("expected granary, got %v", item.Name)
	}
	city.Buildings[rules.BuildingGranary] = true
	item = AutoChooseProduction(city, CivSnapshot{Cities: 3, Scouts: 1, HasDefender: true})
	if item.Building != rules.BuildingBarracks {
		t.Errorf("expected barracks after granary, got %v", item.Name)
	}
}
