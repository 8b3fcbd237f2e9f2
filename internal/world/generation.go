// World generation using layered simplex noise.
// Generates elevation, rainfall, and temperature maps, then derives terrain,
// rivers, and resources.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/empire/internal/grid"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Width       int
	Height      int
	Seed        int64   // Random seed (0 = random)
	SeaLevel    float64 // Elevation threshold for ocean (0.0–1.0)
	MountainLvl float64 // Elevation threshold for mountains (0.0–1.0)
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:       60,
		Height:      40,
		Seed:        0,
		SeaLevel:    0.30,
		MountainLvl: 0.75,
	}
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Width:       20,
		Height:      16,
		Seed:        42,
		SeaLevel:    0.25,
		MountainLvl: 0.80,
	}
}

// Generate creates a complete world map with terrain, rivers, and resources.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	// Three noise generators for independent layers.
	elevNoise := opensimplex.NewNormalized(seed)
	rainNoise := opensimplex.NewNormalized(seed + 1)
	tempNoise := opensimplex.NewNormalized(seed + 2)

	m := NewMap(cfg.Width, cfg.Height)
	halfW := float64(cfg.Width) / 2
	halfH := float64(cfg.Height) / 2

	for row := 0; row < cfg.Height; row++ {
		for col := 0; col < cfg.Width; col++ {
			x := float64(col)
			y := float64(row)

			// Multi-octave noise for natural-looking terrain.
			elev := octaveNoise(elevNoise, x, y, 4, 0.08, 0.5)
			rain := octaveNoise(rainNoise, x, y, 3, 0.06, 0.5)
			temp := octaveNoise(tempNoise, x, y, 3, 0.05, 0.5)

			// Continental shaping: reduce elevation near edges to create ocean border.
			nx := (x - halfW) / halfW
			ny := (y - halfH) / halfH
			distFromCenter := math.Sqrt(nx*nx + ny*ny)
			edgeFalloff := 1.0 - math.Pow(distFromCenter, 3.0)
			if edgeFalloff < 0 {
				edgeFalloff = 0
			}
			elev *= edgeFalloff

			// Temperature decreases with elevation and distance from the equator row.
			temp = temp*0.6 + (1.0-math.Abs(ny))*0.3 + (1.0-elev)*0.1

			tile := m.At(col, row)
			tile.Terrain = deriveTerrain(elev, rain, temp, cfg)
		}
	}

	// Post-pass: shallow coast wherever ocean touches land.
	markCoast(m)

	// Post-pass: rivers traced downhill from highland, then resources.
	placeRivers(m, elevNoise, seed)
	placeResources(m, seed)

	return m
}

// deriveTerrain determines terrain type from environmental parameters.
func deriveTerrain(elev, rain, temp float64, cfg GenConfig) Terrain {
	if elev < cfg.SeaLevel {
		return TerrainOcean
	}
	if elev > cfg.MountainLvl {
		return TerrainMountain
	}
	if temp < 0.25 {
		return TerrainTundra
	}
	if rain < 0.25 && temp > 0.5 {
		return TerrainDesert
	}
	if elev > 0.55 {
		return TerrainHills
	}
	if rain > 0.55 {
		return TerrainForest
	}
	if rain > 0.35 {
		return TerrainGrassland
	}
	return TerrainPlains
}

// markCoast converts ocean tiles adjacent to land into coast.
func markCoast(m *Map) {
	for i := range m.Tiles {
		t := &m.Tiles[i]
		if t.Terrain != TerrainOcean {
			continue
		}
		for _, nc := range t.Coord().Neighbors() {
			nt := m.AtCoord(nc)
			if nt != nil && !nt.IsWater() {
				t.Terrain = TerrainCoast
				break
			}
		}
	}
}

// placeRivers traces a handful of paths from highland tiles toward the sea,
// flagging the tiles they cross.
func placeRivers(m *Map, elevNoise opensimplex.Noise, seed int64) {
	rng := rand.New(rand.NewSource(seed + 100))

	elevAt := func(c grid.Coord) float64 {
		return octaveNoise(elevNoise, float64(c.Col), float64(c.Row), 4, 0.08, 0.5)
	}

	var sources []grid.Coord
	for i := range m.Tiles {
		t := &m.Tiles[i]
		if t.Terrain == TerrainHills || t.Terrain == TerrainMountain {
			sources = append(sources, t.Coord())
		}
	}

	numRivers := len(sources) / 10
	if numRivers < 2 {
		numRivers = 2
	}
	if numRivers > 8 {
		numRivers = 8
	}
	rng.Shuffle(len(sources), func(i, j int) {
		sources[i], sources[j] = sources[j], sources[i]
	})
	if len(sources) > numRivers {
		sources = sources[:numRivers]
	}

	for _, start := range sources {
		current := start
		visited := make(map[grid.Coord]bool)

		for step := 0; step < 40; step++ {
			visited[current] = true
			t := m.AtCoord(current)
			if t == nil || t.IsWater() {
				break
			}
			if t.Terrain != TerrainMountain {
				t.HasRiver = true
			}

			// Follow the steepest descent.
			var next *grid.Coord
			best := elevAt(current)
			for _, nc := range current.Neighbors() {
				if visited[nc] || m.AtCoord(nc) == nil {
					continue
				}
				if e := elevAt(nc); e < best {
					best = e
					c := nc
					next = &c
				}
			}
			if next == nil {
				break // No downhill path, river ends.
			}
			current = *next
		}
	}
}

// resourceTable maps terrain to the resource it can host and the spawn chance.
var resourceTable = map[Terrain]struct {
	res    Resource
	chance float64
}{
	TerrainGrassland: {ResourceWheat, 0.10},
	TerrainPlains:    {ResourceWheat, 0.08},
	TerrainForest:    {ResourceGame, 0.12},
	TerrainHills:     {ResourceIron, 0.15},
	TerrainDesert:    {ResourceGold, 0.08},
	TerrainTundra:    {ResourceFurs, 0.10},
	TerrainCoast:     {ResourceFish, 0.12},
}

// placeResources scatters terrain-appropriate resources across the map.
func placeResources(m *Map, seed int64) {
	rng := rand.New(rand.NewSource(seed + 200))
	for i := range m.Tiles {
		t := &m.Tiles[i]
		entry, ok := resourceTable[t.Terrain]
		if !ok {
			continue
		}
		if rng.Float64() < entry.chance {
			t.Resource = entry.res
		}
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(m *Map) map[Terrain]int {
	counts := make(map[Terrain]int)
	for i := range m.Tiles {
		counts[m.Tiles[i].Terrain]++
	}
	return counts
}
