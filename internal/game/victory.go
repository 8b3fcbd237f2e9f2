// Victory evaluation: conquest, space race, and score conditions checked
// after every completed round.
package game

import "github.com/talgya/empire/internal/rules"

// VictoryKind enumerates how a game can end.
type VictoryKind uint8

const (
	VictoryConquest VictoryKind = iota
	VictorySpaceRace
	VictoryScore
	VictoryDraw
)

// String returns the stable name of a victory kind.
func (k VictoryKind) String() string {
	switch k {
	case VictoryConquest:
		return "conquest"
	case VictorySpaceRace:
		return "space_race"
	case VictoryScore:
		return "score"
	case VictoryDraw:
		return "draw"
	default:
		return "unknown"
	}
}

// VictoryResult names the winner and how they won. Winner is zero on a draw.
type VictoryResult struct {
	Winner CivID       `json:"winner,omitempty"`
	Kind   VictoryKind `json:"kind"`
	Detail string      `json:"detail"`
}

// VictoryManager evaluates end-of-round victory conditions.
type VictoryManager struct {
	// MaxRounds caps the game; reaching it ends the game on score.
	MaxRounds int
}

// NewVictoryManager creates a manager with the given round cap.
func NewVictoryManager(maxRounds int) *VictoryManager {
	return &VictoryManager{MaxRounds: maxRounds}
}

// Evaluate checks all victory conditions. It also retires civilizations
// that have lost every unit and city. Returns nil while the game goes on.
func (vm *VictoryManager) Evaluate(civs []*Civilization, units []*Unit, cities []*City, round int) *VictoryResult {
	// Retire civilizations with nothing left on the board.
	hasPieces := make(map[CivID]bool)
	for _, u := range units {
		if !u.Defeated {
			hasPieces[u.CivID] = true
		}
	}
	for _, c := range cities {
		hasPieces[c.CivID] = true
	}

	var survivors []*Civilization
	for _, civ := range civs {
		if civ.IsAlive && !hasPieces[civ.ID] {
			civ.IsAlive = false
		}
		if civ.IsAlive {
			survivors = append(survivors, civ)
		}
	}

	// Conquest: one civilization standing.
	if len(survivors) == 1 {
		return &VictoryResult{
			Winner: survivors[0].ID,
			Kind:   VictoryConquest,
			Detail: survivors[0].Name + " rules the known world",
		}
	}

	// Space race: a completed space program wins outright.
	for _, c := range cities {
		if c.HasBuilding(rules.BuildingSpaceProgram) {
			for _, civ := range survivors {
				if civ.ID == c.CivID {
					return &VictoryResult{
						Winner: civ.ID,
						Kind:   VictorySpaceRace,
						Detail: civ.Name + " reached the stars",
					}
				}
			}
		}
	}

	// Score: the round cap ends the game with the highest score winning.
	if vm.MaxRounds > 0 && round >= vm.MaxRounds {
		var best *Civilization
		bestScore, tied := 0, false
		for _, civ := range survivors {
			s := Score(civ, cities)
			switch {
			case best == nil || s > bestScore:
				best, bestScore, tied = civ, s, false
			case s == bestScore:
				tied = true
			}
		}
		if best == nil || tied {
			return &VictoryResult{Kind: VictoryDraw, Detail: "the ages end in stalemate"}
		}
		return &VictoryResult{
			Winner: best.ID,
			Kind:   VictoryScore,
			Detail: best.Name + " wins on points",
		}
	}

	return nil
}

// Score computes a civilization's game score from cities, population, and
// technologies.
func Score(civ *Civilization, cities []*City) int {
	score := 0
	for _, c := range cities {
		if c.CivID == civ.ID {
			score += 8 + 2*c.Population
		}
	}
	score += 3 * len(civ.Technologies)
	return score
}
