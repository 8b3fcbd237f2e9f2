package rules

// StartYear is the calendar year of the first turn.
const StartYear = -4000

// YearStep returns how many calendar years pass when a round completes,
// shrinking as the game approaches the modern era.
func YearStep(year int) int {
	switch {
	case year < 1000:
		return 20
	case year < 1500:
		return 10
	case year < 1750:
		return 5
	case year < 1850:
		return 2
	default:
		return 1
	}
}

// NextYear advances the calendar by one round. Year 0 does not exist:
// a step that would land on it lands on 1 AD instead.
func NextYear(year int) int {
	next := year + YearStep(year)
	if next == 0 {
		next = 1
	}
	return next
}
