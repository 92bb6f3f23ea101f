// package flock wires the two boids channels (velocity and position) into a simulation and
// holds the per-cell update rules that drive them.
package flock

import (
	"math/rand"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/simulation"
)

const (
	// VelocityChannel is the name of the velocity grid.
	VelocityChannel = "textureVelocity"

	// PositionChannel is the name of the position grid. Cell w carries the wing-beat phase.
	PositionChannel = "texturePosition"

	// DefaultWidth is the default grid edge length (64 * 64 = 4096 entities).
	DefaultWidth = 64

	// DefaultBounds is the default edge length of the spawn cube.
	DefaultBounds float32 = 800

	// initialSpeed is the per-component range of the initial velocity fill, ±initialSpeed.
	initialSpeed float32 = 5
)

// Config controls how a Flock is allocated.
type Config struct {
	// Width is the grid edge length. Zero selects DefaultWidth.
	Width int

	// Bounds is the edge length of the cube positions are spawned in. Zero selects DefaultBounds.
	Bounds float32

	// Seed seeds the initial fill.
	Seed int64

	// Workers is the number of pooled goroutines evaluating each step.
	Workers int

	// MaxDelta overrides the per-step delta clamp. Zero keeps common.MaxFrameDelta.
	MaxDelta float32

	// InitialPositions, when set, replaces the random position fill. Length must be Width*Width.
	InitialPositions []common.Vec4

	// InitialVelocities, when set, replaces the random velocity fill. Length must be Width*Width.
	InitialVelocities []common.Vec4
}

// Flock is a flocking simulation of Width*Width entities.
type Flock struct {
	sim    simulation.Simulation[Params]
	width  int
	bounds float32
}

// Specs returns the channel declarations of the flock. Both channels depend on both,
// so every rule sees only the previous frame of each.
//
// Parameters:
//   - bounds: the spawn cube edge length
//
// Returns:
//   - []simulation.ChannelSpec[Params]: the velocity and position channels
func Specs(bounds float32) []simulation.ChannelSpec[Params] {
	half := bounds / 2
	deps := []string{PositionChannel, VelocityChannel}
	return []simulation.ChannelSpec[Params]{
		{
			Name:         VelocityChannel,
			Dependencies: deps,
			Fill: simulation.UniformFill(
				common.Vec4{-initialSpeed, -initialSpeed, -initialSpeed, 1},
				common.Vec4{initialSpeed, initialSpeed, initialSpeed, 1},
			),
			Update: UpdateVelocity,
		},
		{
			Name:         PositionChannel,
			Dependencies: deps,
			Fill: simulation.UniformFill(
				common.Vec4{-half, -half, -half, 1},
				common.Vec4{half, half, half, 1},
			),
			Update: UpdatePosition,
		},
	}
}

// New allocates and fills a flock.
//
// Parameters:
//   - cfg: the allocation config
//
// Returns:
//   - *Flock: the flock
//   - error: simulation.ErrConfiguration when cfg is invalid
func New(cfg Config) (*Flock, error) {
	width := common.Coalesce(cfg.Width, DefaultWidth)
	bounds := common.Coalesce(cfg.Bounds, DefaultBounds)

	opts := []simulation.SimulationBuilderOption{simulation.WithWorkers(cfg.Workers)}
	if cfg.MaxDelta > 0 {
		opts = append(opts, simulation.WithMaxDelta(cfg.MaxDelta))
	}
	if cfg.InitialPositions != nil {
		opts = append(opts, simulation.WithInitialCells(PositionChannel, cfg.InitialPositions))
	}
	if cfg.InitialVelocities != nil {
		opts = append(opts, simulation.WithInitialCells(VelocityChannel, cfg.InitialVelocities))
	}

	sim, err := simulation.New(width, Specs(bounds), rand.New(rand.NewSource(cfg.Seed)), opts...)
	if err != nil {
		return nil, err
	}

	common.Logger().Info("flock allocated", "entities", width*width, "bounds", bounds, "seed", cfg.Seed)

	return &Flock{sim: sim, width: width, bounds: bounds}, nil
}

// Step advances the flock by one frame.
func (f *Flock) Step(frame common.FrameState, params Params) error {
	return f.sim.Step(frame, params)
}

// Position returns the latest position grid (phase in w). Valid until the next Step.
func (f *Flock) Position() (*simulation.Grid, error) {
	return f.sim.CurrentGrid(PositionChannel)
}

// Velocity returns the latest velocity grid. Valid until the next Step.
func (f *Flock) Velocity() (*simulation.Grid, error) {
	return f.sim.CurrentGrid(VelocityChannel)
}

// Simulation exposes the underlying simulation.
func (f *Flock) Simulation() simulation.Simulation[Params] {
	return f.sim
}

// Width returns the grid edge length.
func (f *Flock) Width() int {
	return f.width
}

// Count returns the number of simulated entities.
func (f *Flock) Count() int {
	return f.width * f.width
}

// Bounds returns the spawn cube edge length. The driver scales the normalized pointer by it.
func (f *Flock) Bounds() float32 {
	return f.bounds
}

// Release frees both grids.
func (f *Flock) Release() {
	f.sim.Release()
}
