package game

// FailReason enumerates why a game operation was refused. Refusals are
// expected control flow, not errors: illegal moves, empty budgets, and
// out-of-turn actions all happen in normal play.
type FailReason uint8

const (
	ReasonNone FailReason = iota
	ReasonCannotMove
	ReasonNoMovesLeft
	ReasonTerrainImpassable
	ReasonInvalidTarget
	ReasonInsufficientMoves
	ReasonCombatDefeat
	ReasonNotYourTurn
	ReasonCityTooClose
	ReasonInsufficientGold
	ReasonAlreadyPurchased
	ReasonGameOver
)

// String returns the stable name of a fail reason.
func (r FailReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonCannotMove:
		return "cannot_move"
	case ReasonNoMovesLeft:
		return "no_moves_left"
	case ReasonTerrainImpassable:
		return "terrain_impassable"
	case ReasonInvalidTarget:
		return "invalid_target"
	case ReasonInsufficientMoves:
		return "insufficient_moves"
	case ReasonCombatDefeat:
		return "combat_defeat"
	case ReasonNotYourTurn:
		return "not_your_turn"
	case ReasonCityTooClose:
		return "city_too_close"
	case ReasonInsufficientGold:
		return "insufficient_gold"
	case ReasonAlreadyPurchased:
		return "already_purchased"
	case ReasonGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// ActionResult is the structured outcome of a game operation.
type ActionResult struct {
	OK     bool       `json:"ok"`
	Reason FailReason `json:"reason,omitempty"`
}

// Succeed returns a successful result.
func Succeed() ActionResult {
	return ActionResult{OK: true}
}

// Fail returns a failed result with the given reason.
func Fail(reason FailReason) ActionResult {
	return ActionResult{OK: false, Reason: reason}
}

// terminalReasons are the refusals after which the AI stops trying to act
// with the current unit this turn. Everything else is recoverable by a
// fallback move.
var terminalReasons = map[FailReason]bool{
	ReasonInsufficientMoves: true,
	ReasonNoMovesLeft:       true,
	ReasonTerrainImpassable: true,
	ReasonInvalidTarget:     true,
	ReasonNotYourTurn:       true,
	ReasonGameOver:          true,
}

// Terminal reports whether the reason ends AI processing of the current unit.
func (r FailReason) Terminal() bool {
	return terminalReasons[r]
}
