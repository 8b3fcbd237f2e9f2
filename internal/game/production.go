// City production: the current build slot, the FIFO queue, gold purchases,
// and per-turn point accumulation with carry-over.
package game

import "log/slog"

// ProductionManager validates and mutates city production state. Spawning
// completed units onto the map is the engine's job; the manager reports
// completions back to it.
type ProductionManager struct {
	sink Sink
}

// NewProductionManager creates a production manager emitting to the sink.
func NewProductionManager(sink Sink) *ProductionManager {
	if sink == nil {
		sink = nopSink{}
	}
	return &ProductionManager{sink: sink}
}

// SetProduction replaces the city's current production (resetting progress)
// or, when queue is true, appends the item to the build queue.
func (pm *ProductionManager) SetProduction(city *City, item ProductionItem, queue bool) {
	if queue && city.Current != nil {
		city.BuildQueue = append(city.BuildQueue, item)
	} else {
		current := item
		city.Current = &current
		city.ProductionStored = 0
	}
	pm.sink.Notify(Event{
		Kind:   EventProductionSet,
		Civ:    city.CivID,
		City:   city.ID,
		Detail: city.Name + " now building " + item.Name,
	})
}

// RemoveQueueItem deletes the queue entry at index. Out-of-range indexes
// are ignored.
func (pm *ProductionManager) RemoveQueueItem(city *City, index int) {
	if index < 0 || index >= len(city.BuildQueue) {
		return
	}
	city.BuildQueue = append(city.BuildQueue[:index], city.BuildQueue[index+1:]...)
}

// Purchase buys the item outright with civilization gold. A city may
// purchase at most once per turn.
func (pm *ProductionManager) Purchase(civ *Civilization, city *City, item ProductionItem) ActionResult {
	if city.PurchasedThisTurn {
		return Fail(ReasonAlreadyPurchased)
	}
	if civ.Gold < item.Cost {
		return Fail(ReasonInsufficientGold)
	}

	civ.Gold -= item.Cost
	city.PurchasedThisTurn = true

	// The purchased item becomes current with full progress; the next
	// production pass completes it.
	current := item
	city.Current = &current
	city.ProductionStored = item.Cost

	pm.sink.Notify(Event{
		Kind:   EventProductionPurchased,
		Civ:    city.CivID,
		City:   city.ID,
		Detail: city.Name + " purchased " + item.Name,
	})
	return Succeed()
}

// ProcessTurn adds one turn's production points to the city and returns the
// items completed. When an item finishes, the excess carries over into the
// next queued item, exactly cost-minus-stored, never negative.
func (pm *ProductionManager) ProcessTurn(city *City, points int) []ProductionItem {
	if city.Current == nil {
		pm.popQueue(city)
	}
	if city.Current == nil {
		return nil
	}

	city.ProductionStored += points

	var completed []ProductionItem
	for city.Current != nil && city.ProductionStored >= city.Current.Cost {
		item := *city.Current
		city.ProductionStored -= item.Cost
		completed = append(completed, item)

		slog.Debug("production completed",
			"city", city.Name, "item", item.Name, "carry_over", city.ProductionStored)

		city.Current = nil
		pm.popQueue(city)
	}

	// Stored points are meaningless with nothing to build.
	if city.Current == nil {
		city.ProductionStored = 0
	}
	return completed
}

// TurnsRemaining estimates turns until the current item completes at the
// given per-turn output. Returns 0 when nothing is being built.
func (pm *ProductionManager) TurnsRemaining(city *City, perTurn int) int {
	if city.Current == nil || perTurn <= 0 {
		return 0
	}
	remaining := city.Current.Cost - city.ProductionStored
	if remaining <= 0 {
		return 1
	}
	return (remaining + perTurn - 1) / perTurn
}

func (pm *ProductionManager) popQueue(city *City) {
	if len(city.BuildQueue) == 0 {
		return
	}
	next := city.BuildQueue[0]
	city.BuildQueue = city.BuildQueue[1:]
	city.Current = &next
}
