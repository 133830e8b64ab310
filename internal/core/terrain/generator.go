package terrain

import (
	"math"
	"math/rand"
	"runtime"

	"github.com/aquilax/go-perlin"
	"golang.org/x/sync/errgroup"
)

// lacunarity is the frequency multiplier between octaves
const lacunarity = 2.0

// Generate builds a width x height grid from params. The same params always produce the same grid.
func Generate(width, height int, p Params) *Grid {
	g := NewGrid(width, height, Grass)
	if width == 0 || height == 0 {
		return g
	}

	octaves := p.Octaves
	if octaves < 1 {
		octaves = 1
	}
	alpha := 2.0
	if p.Persistence > 0 {
		alpha = 1 / p.Persistence
	}
	seed := int64(math.Round(p.Seed * 1000))

	noise := perlin.NewPerlin(alpha, lacunarity, int32(octaves), seed)
	ore := rand.New(rand.NewSource(seed))

	// noise rows are filled in parallel; ore rolls run in row order
	rows := make([][]Kind, height)
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for y := 0; y < height; y++ {
		y := y
		eg.Go(func() error {
			row := make([]Kind, width)
			for x := range row {
				row[x] = p.Thresholds.Classify(normalize(noise.Noise2D(float64(x)*p.Scale, float64(y)*p.Scale)))
			}
			rows[y] = row
			return nil
		})
	}
	_ = eg.Wait()

	for y, row := range rows {
		for x, kind := range row {
			// roll for every grass cell so the ore layout depends only on the base map
			if kind == Grass && ore.Float64() < p.OreChance {
				kind = IronOre
			}
			g.Set(x, y, kind)
		}
	}
	return g
}

// normalize maps raw noise into [0, 1]
func normalize(v float64) float64 {
	n := (v + 1) / 2
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}
