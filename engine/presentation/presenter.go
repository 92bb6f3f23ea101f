// package presentation turns simulation grids into per-entity transforms and owns the baked
// animation strip those entities sample.
package presentation

import (
	"math/rand"
	"sync"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/simulation"
)

const (
	// DefaultSize is the base scale of the parrot mesh.
	DefaultSize float32 = 0.2

	// DefaultModelYaw turns the mesh a quarter turn so its nose points along +X.
	DefaultModelYaw float32 = math32.Pi / 2
)

// Presenter converts the latest position and velocity grids into a RenderCommand.
// Every entity carries a random seed drawn once at construction so identical entities
// flap out of step.
type Presenter struct {
	mu sync.RWMutex

	width       int
	seeds       []common.Vec4
	size        float32
	count       int
	modelYaw    float32
	vertexCount int
}

// NewPresenter creates a presenter for a width x width grid.
//
// Parameters:
//   - width: the simulation grid edge length
//   - rng: the random source for the per-entity seeds
//   - opts: functional options
//
// Returns:
//   - *Presenter: the presenter
func NewPresenter(width int, rng *rand.Rand, opts ...PresenterBuilderOption) *Presenter {
	if width <= 0 {
		panic("presentation: NewPresenter requires a positive width")
	}
	if rng == nil {
		panic("presentation: NewPresenter requires a random source")
	}

	total := width * width
	p := &Presenter{
		width:    width,
		seeds:    make([]common.Vec4, total),
		size:     DefaultSize,
		count:    total / 4,
		modelYaw: DefaultModelYaw,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.count = min(max(p.count, 0), total)

	for i := range p.seeds {
		p.seeds[i] = common.Vec4{float32(i), rng.Float32(), rng.Float32(), rng.Float32()}
	}
	return p
}

// Seed returns the seed of entity i: (index, scale jitter, random, random).
func (p *Presenter) Seed(i int) common.Vec4 {
	return p.seeds[i]
}

// SetCount changes how many entities Draw emits, clamped to [0, width*width].
func (p *Presenter) SetCount(count int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count = min(max(count, 0), len(p.seeds))
}

// Count returns the visible entity count.
func (p *Presenter) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.count
}

// SetSize changes the base entity scale.
func (p *Presenter) SetSize(size float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.size = size
}

// Size returns the base entity scale.
func (p *Presenter) Size() float32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.size
}

// ModelYaw returns the fixed mesh yaw.
func (p *Presenter) ModelYaw() float32 {
	return p.modelYaw
}

// Draw builds the render command for one frame. It only reads the grids.
//
// Each visible entity i is looked up at its stable grid reference (i % width, i / width).
// Its animation coordinate is frame.Time plus a per-entity offset, wrapped at the strip's
// cycle span.
//
// Parameters:
//   - position: the latest position grid (phase in w)
//   - velocity: the latest velocity grid
//   - strip: the baked animation, may be nil
//   - frame: the clock of the frame being drawn
//
// Returns:
//   - RenderCommand: the transforms of every visible entity
func (p *Presenter) Draw(position, velocity *simulation.Grid, strip *AnimationStrip, frame common.FrameState) RenderCommand {
	p.mu.RLock()
	count, size := p.count, p.size
	p.mu.RUnlock()

	count = min(count, position.Len(), velocity.Len())
	cmd := RenderCommand{
		Frame:               frame,
		Instances:           make([]Instance, count),
		Strip:               strip,
		ModelYaw:            p.modelYaw,
		VerticesPerInstance: p.vertexCount,
	}

	for i := 0; i < count; i++ {
		x, y := i%p.width, i/p.width
		pos := position.At(x, y)
		vel := common.XYZ(velocity.At(x, y))
		seed := p.seeds[i]

		row := -1
		if strip != nil {
			heading, _ := common.Normalize3(vel, 1e-6)
			offset := seed[0] * ((0.0004 + seed[1]/10000) + heading[0]/20000)
			row = strip.Row(common.Mod(frame.Time+offset, strip.CycleSpan()))
		}

		cmd.Instances[i] = Instance{
			Index:        i,
			Position:     common.XYZ(pos),
			Rotation:     Orientation(vel),
			Scale:        size + seed[1]*size*0.2,
			Phase:        pos[3],
			AnimationRow: row,
		}
	}
	return cmd
}
