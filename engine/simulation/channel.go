package simulation

import (
	"math/rand"

	"github.com/Carmen-Shannon/oxy-flock/common"
)

// FillFunc produces the initial value of a single cell.
type FillFunc func(rng *rand.Rand, cell int) common.Vec4

// UpdateFunc computes the next value of one cell. It may only read the previous
// frame through ctx; it must not keep references to the grids it is handed.
type UpdateFunc[P any] func(ctx *StepContext[P], cell int) common.Vec4

// ChannelSpec declares one simulated quantity.
type ChannelSpec[P any] struct {
	// Name identifies the channel, e.g. "texturePosition".
	Name string

	// Dependencies lists the channels whose previous-frame values Update reads.
	// A channel may depend on itself.
	Dependencies []string

	// Fill generates the initial cell values. Ignored when WithInitialCells supplies data.
	Fill FillFunc

	// Update computes each cell of the next frame.
	Update UpdateFunc[P]
}

// StepContext is handed to every UpdateFunc call of a channel during one Step.
// All grids reachable from it hold previous-frame values.
type StepContext[P any] struct {
	// Frame is the clamped frame being computed.
	Frame common.FrameState

	// Params is the external configuration passed to Step.
	Params P

	size int
	deps []*channelState[P]
}

// Size returns the grid edge length.
func (c *StepContext[P]) Size() int {
	return c.size
}

// Previous returns the previous-frame grid of a declared dependency, or nil when
// name is not one of the channel's dependencies.
//
// Parameters:
//   - name: the dependency channel name
//
// Returns:
//   - *Grid: the read-only previous-frame grid
func (c *StepContext[P]) Previous(name string) *Grid {
	for _, d := range c.deps {
		if d.spec.Name == name {
			return d.front
		}
	}
	return nil
}

// UniformFill returns a FillFunc drawing every component uniformly from [lo[i], hi[i]).
// Components with lo == hi are set to that constant.
//
// Parameters:
//   - lo: the per-component lower bounds
//   - hi: the per-component upper bounds
//
// Returns:
//   - FillFunc: the fill function
func UniformFill(lo, hi common.Vec4) FillFunc {
	return func(rng *rand.Rand, _ int) common.Vec4 {
		var v common.Vec4
		for i := range v {
			if lo[i] == hi[i] {
				v[i] = lo[i]
				continue
			}
			v[i] = lo[i] + rng.Float32()*(hi[i]-lo[i])
		}
		return v
	}
}
