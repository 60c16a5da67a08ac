package env

import (
	"math/rand"

	"github.com/gaspersavle/FuzbAISim/internal/geometry"
)

// ObservationSize is the fixed observation length: ball x, y, vx, vy
// followed by eight rod positions and eight rod angles.
const ObservationSize = 20

// ActionDims is the number of components per rod action.
const ActionDims = 3

// Box is a bounded continuous space with per-dimension limits.
type Box struct {
	Low  []float64
	High []float64
}

// Contains reports whether x lies inside the box.
func (b Box) Contains(x []float64) bool {
	if len(x) != len(b.Low) {
		return false
	}
	for i, v := range x {
		if v < b.Low[i] || v > b.High[i] {
			return false
		}
	}
	return true
}

// Sample draws a uniform point from the box.
func (b Box) Sample(rng *rand.Rand) []float64 {
	x := make([]float64, len(b.Low))
	for i := range x {
		x[i] = b.Low[i] + rng.Float64()*(b.High[i]-b.Low[i])
	}
	return x
}

// Size returns the dimensionality of the box.
func (b Box) Size() int { return len(b.Low) }

// ObservationSpace returns the bounds of the observation vector for the
// given table.
func ObservationSpace(table *geometry.Table) Box {
	low := make([]float64, 0, ObservationSize)
	high := make([]float64, 0, ObservationSize)

	// Ball position and velocity.
	low = append(low, 0, 0, -1, -1)
	high = append(high, table.Field.DimensionX, table.Field.DimensionY, 1, 1)

	// Rod positions.
	for i := 0; i < 8; i++ {
		low = append(low, 0)
		high = append(high, 1)
	}
	// Rod angles.
	for i := 0; i < 8; i++ {
		low = append(low, -32)
		high = append(high, 32)
	}
	return Box{Low: low, High: high}
}

// ActionSpace returns the flattened action bounds for rods managed rods,
// three components per rod, each in [-1,1].
func ActionSpace(rods int) Box {
	n := rods * ActionDims
	low := make([]float64, n)
	high := make([]float64, n)
	for i := range low {
		low[i] = -1
		high[i] = 1
	}
	return Box{Low: low, High: high}
}
