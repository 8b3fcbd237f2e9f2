package rules

import "testing"

func TestUnitCatalogComplete(t *testing.T) {
	kinds := []UnitKind{
		UnitSettler, UnitScout, UnitWarrior, UnitArcher,
		UnitSpearman, UnitHorseman, UnitCatapult, UnitWorker,
	}
	for _, k := range kinds {
		stats := Unit(k)
		if stats.Name == "" {
			t.Errorf("unit kind %d has no catalog entry", k)
		}
		if stats.Cost <= 0 || stats.Moves <= 0 || stats.Sight <= 0 {
			t.Errorf("unit %s has degenerate stats: %+v", stats.Name, stats)
		}
	}
}

func TestSettlerCannotAttack(t *testing.T) {
	if Unit(UnitSettler).Attack != 0 {
		t.Error("settlers must have zero attack")
	}
	if Unit(UnitWorker).Attack != 0 {
		t.Error("workers must have zero attack")
	}
}

func TestTechPrerequisites(t *testing.T) {
	math := Tech(TechMathematics)
	if math.Requires == nil || *math.Requires != TechWriting {
		t.Error("Mathematics should require Writing")
	}
	if Tech(TechAgriculture).Requires != nil {
		t.Error("Agriculture should have no prerequisite")
	}
}

func TestYearStep(t *testing.T) {
	cases := []struct {
		year, want int
	}{
		{-4000, 20},
		{999, 20},
		{1000, 10},
		{1499, 10},
		{1500, 5},
		{1750, 2},
		{1850, 1},
		{1990, 1},
	}
	for _, c := range cases {
		if got := YearStep(c.year); got != c.want {
			t.Errorf("YearStep(%d) = %d, want %d", c.year, got, c.want)
		}
	}
}

func TestNextYearSkipsZero(t *testing.T) {
	if got := NextYear(-20); got != 1 {
		t.Errorf("NextYear(-20) = %d, want 1 (year 0 does not exist)", got)
	}
	// A step that crosses zero without landing on it is not adjusted.
	if got := NextYear(-10); got != 10 {
		t.Errorf("NextYear(-10) = %d, want 10", got)
	}
	if got := NextYear(-4000); got != -3980 {
		t.Errorf("NextYear(-4000) = %d, want -3980", got)
	}
}
