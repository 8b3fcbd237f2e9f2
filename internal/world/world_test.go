package world

import (
	"testing"

	"github.com/talgya/empire/internal/grid"
)

func TestNewMapLayout(t *testing.T) {
	m := NewMap(10, 8)
	if m.TileCount() != 80 {
		t.Fatalf("expected 80 tiles, got %d", m.TileCount())
	}
	tile := m.At(3, 5)
	if tile == nil || tile.Col != 3 || tile.Row != 5 {
		t.Errorf("tile at (3,5) carries wrong position: %+v", tile)
	}
	if m.At(-1, 0) != nil || m.At(10, 0) != nil || m.At(0, 8) != nil {
		t.Error("out-of-bounds lookup should return nil")
	}
}

func TestTileYields(t *testing.T) {
	cases := []struct {
		name string
		tile Tile
		want Yields
	}{
		{"grassland", Tile{Terrain: TerrainGrassland}, Yields{Food: 2, Trade: 1}},
		{"plains", Tile{Terrain: TerrainPlains}, Yields{Food: 1, Production: 1, Trade: 1}},
		{"hills with iron", Tile{Terrain: TerrainHills, Resource: ResourceIron}, Yields{Food: 1, Production: 4}},
		{"grassland river", Tile{Terrain: TerrainGrassland, HasRiver: true}, Yields{Food: 2, Trade: 2}},
		{"plains farm", Tile{Terrain: TerrainPlains, Improvement: ImprovementFarm}, Yields{Food: 2, Production: 1, Trade: 1}},
		{"mountain", Tile{Terrain: TerrainMountain}, Yields{}},
	}
	for _, c := range cases {
		if got := c.tile.TileYields(); got != c.want {
			t.Errorf("%s: yields %+v, want %+v", c.name, got, c.want)
		}
	}
}

func TestMoveCostAndPassability(t *testing.T) {
	forest := Tile{Terrain: TerrainForest}
	if forest.MoveCost() != 2 {
		t.Errorf("forest cost = %d, want 2", forest.MoveCost())
	}
	forest.HasRoad = true
	if forest.MoveCost() != 1 {
		t.Errorf("road through forest should cost 1, got %d", forest.MoveCost())
	}

	for _, terr := range []Terrain{TerrainMountain, TerrainOcean, TerrainCoast} {
		tile := Tile{Terrain: terr}
		if tile.Passable() {
			t.Errorf("%s should be impassable to land units", TerrainName(terr))
		}
		if tile.MoveCost() != 0 {
			t.Errorf("%s move cost should be 0, got %d", TerrainName(terr), tile.MoveCost())
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := SmallTestConfig()
	a := Generate(cfg)
	b := Generate(cfg)
	if a.TileCount() != b.TileCount() {
		t.Fatal("same seed produced different map sizes")
	}
	for i := range a.Tiles {
		if a.Tiles[i].Terrain != b.Tiles[i].Terrain {
			t.Fatalf("same seed diverged at tile %d: %v vs %v",
				i, a.Tiles[i].Terrain, b.Tiles[i].Terrain)
		}
	}
}

func TestGenerateHasLand(t *testing.T) {
	m := Generate(SmallTestConfig())
	counts := TerrainCounts(m)
	land := 0
	for terr, n := range counts {
		tile := Tile{Terrain: terr}
		if tile.Passable() {
			land += n
		}
	}
	if land == 0 {
		t.Fatal("generated world has no passable land")
	}
}

func TestMoveCostsFunc(t *testing.T) {
	m := NewMap(4, 4)
	m.At(1, 1).Terrain = TerrainMountain
	m.At(2, 2).Terrain = TerrainForest
	costs := m.MoveCosts()

	if _, ok := costs(grid.Coord{Col: 1, Row: 1}); ok {
		t.Error("mountain should be impassable via CostFunc")
	}
	if cost, ok := costs(grid.Coord{Col: 2, Row: 2}); !ok || cost != 2 {
		t.Errorf("forest cost via CostFunc = %d/%v, want 2/true", cost, ok)
	}
	if _, ok := costs(grid.Coord{Col: -1, Row: 0}); ok {
		t.Error("out-of-bounds should be impassable")
	}
}
