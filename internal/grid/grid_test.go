package grid

import "testing"

func TestDistanceChebyshev(t *testing.T) {
	cases := []struct {
		a, b Coord
		want int
	}{
		{Coord{0, 0}, Coord{0, 0}, 0},
		{Coord{0, 0}, Coord{1, 1}, 1},
		{Coord{0, 0}, Coord{3, 1}, 3},
		{Coord{5, 5}, Coord{2, 9}, 4},
		{Coord{-2, 0}, Coord{2, -1}, 4},
	}
	for _, c := range cases {
		if got := Distance(c.a, c.b); got != c.want {
			t.Errorf("Distance(%v, %v) = %d, want %d", c.a, c.b, got, c.want)
		}
		if got := Distance(c.b, c.a); got != c.want {
			t.Errorf("Distance(%v, %v) = %d, want %d (symmetry)", c.b, c.a, got, c.want)
		}
	}
}

func TestNeighbors(t *testing.T) {
	n := Coord{3, 3}.Neighbors()
	if len(n) != 8 {
		t.Fatalf("expected 8 neighbors, got %d", len(n))
	}
	seen := make(map[Coord]bool)
	for _, c := range n {
		if c == (Coord{3, 3}) {
			t.Errorf("center listed as its own neighbor")
		}
		if Distance(c, Coord{3, 3}) != 1 {
			t.Errorf("neighbor %v not at distance 1", c)
		}
		if seen[c] {
			t.Errorf("duplicate neighbor %v", c)
		}
		seen[c] = true
	}
}

func TestRing(t *testing.T) {
	ring := Ring(Coord{5, 5}, 2, 20, 20)
	if len(ring) != 16 {
		t.Fatalf("ring radius 2 should have 16 tiles, got %d", len(ring))
	}
	for _, c := range ring {
		if Distance(c, Coord{5, 5}) != 2 {
			t.Errorf("ring tile %v not at distance 2", c)
		}
	}

	// Ring clipped at the map edge.
	edge := Ring(Coord{0, 0}, 1, 20, 20)
	if len(edge) != 3 {
		t.Errorf("corner ring should clip to 3 tiles, got %d", len(edge))
	}
}

func TestWithin(t *testing.T) {
	area := Within(Coord{10, 10}, 2, 20, 20)
	if len(area) != 25 {
		t.Fatalf("5x5 area expected, got %d tiles", len(area))
	}
}

func TestInBounds(t *testing.T) {
	if !InBounds(Coord{0, 0}, 10, 10) || !InBounds(Coord{9, 9}, 10, 10) {
		t.Error("corners should be in bounds")
	}
	for _, c := range []Coord{{-1, 0}, {0, -1}, {10, 0}, {0, 10}} {
		if InBounds(c, 10, 10) {
			t.Errorf("%v should be out of bounds", c)
		}
	}
}
