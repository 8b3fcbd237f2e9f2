package game

// EventKind is the closed set of observable state changes. The presentation
// layer learns about the game exclusively through these events.
type EventKind uint8

const (
	EventGameStarted EventKind = iota
	EventTurnStarted
	EventTurnEnded
	EventRoundCompleted
	EventUnitMoved
	EventUnitDefeated
	EventCombatVictory
	EventCombatDefeat
	EventCityFounded
	EventCityGrew
	EventUnitProduced
	EventBuildingProduced
	EventProductionSet
	EventProductionPurchased
	EventImprovementBuilt
	EventEnemySighted
	EventAIStarted
	EventAIFinished
	EventEndTurnConfirmationNeeded
	EventVictory
)

// String returns the stable name of an event kind.
func (k EventKind) String() string {
	switch k {
	case EventGameStarted:
		return "GAME_STARTED"
	case EventTurnStarted:
		return "TURN_STARTED"
	case EventTurnEnded:
		return "TURN_ENDED"
	case EventRoundCompleted:
		return "ROUND_COMPLETED"
	case EventUnitMoved:
		return "UNIT_MOVED"
	case EventUnitDefeated:
		return "UNIT_DEFEATED"
	case EventCombatVictory:
		return "COMBAT_VICTORY"
	case EventCombatDefeat:
		return "COMBAT_DEFEAT"
	case EventCityFounded:
		return "CITY_FOUNDED"
	case EventCityGrew:
		return "CITY_GREW"
	case EventUnitProduced:
		return "UNIT_PRODUCED"
	case EventBuildingProduced:
		return "BUILDING_PRODUCED"
	case EventProductionSet:
		return "PRODUCTION_SET"
	case EventProductionPurchased:
		return "PRODUCTION_PURCHASED"
	case EventImprovementBuilt:
		return "IMPROVEMENT_BUILT"
	case EventEnemySighted:
		return "ENEMY_SIGHTED"
	case EventAIStarted:
		return "AI_STARTED"
	case EventAIFinished:
		return "AI_FINISHED"
	case EventEndTurnConfirmationNeeded:
		return "END_TURN_CONFIRMATION_NEEDED"
	case EventVictory:
		return "VICTORY"
	default:
		return "UNKNOWN"
	}
}

// Event is one observable state change with its payload fields. Unused
// fields stay zero; Detail carries a human-readable description.
type Event struct {
	Kind   EventKind `json:"kind"`
	Round  int       `json:"round"`
	Year   int       `json:"year"`
	Civ    CivID     `json:"civ,omitempty"`
	Unit   UnitID    `json:"unit,omitempty"`
	City   CityID    `json:"city,omitempty"`
	Col    int       `json:"col,omitempty"`
	Row    int       `json:"row,omitempty"`
	Detail string    `json:"detail,omitempty"`
}

// Sink receives every event the engine emits. Implementations must not call
// back into the engine from Notify.
type Sink interface {
	Notify(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// Notify calls the wrapped function.
func (f SinkFunc) Notify(e Event) { f(e) }

// FanOut returns a sink that forwards each event to every given sink in order.
func FanOut(sinks ...Sink) Sink {
	return SinkFunc(func(e Event) {
		for _, s := range sinks {
			s.Notify(e)
		}
	})
}

// nopSink discards events; used when no sink is configured.
type nopSink struct{}

func (nopSink) Notify(Event) {}
