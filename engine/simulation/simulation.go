package simulation

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-flock/common"
)

// Simulation owns a set of channels stored as double-buffered grids and advances
// all of them by one frame per Step. Every channel reads only the previous frame
// of its dependencies, so the order channels are declared in never changes the result.
//
// Step is the only writer. CurrentGrid and Snapshot may be called from other goroutines;
// they always observe a complete frame.
type Simulation[P any] interface {
	// Step advances every channel by one frame.
	// The frame delta is clamped to the configured maximum before any rule sees it.
	//
	// Parameters:
	//   - frame: the clock values of the frame being computed
	//   - params: external configuration read fresh for this frame
	//
	// Returns:
	//   - error: ErrReleased after Release
	Step(frame common.FrameState, params P) error

	// CurrentGrid returns the latest computed grid of a channel.
	// The grid is a read-only view that stays valid until the next Step.
	//
	// Parameters:
	//   - name: the channel name
	//
	// Returns:
	//   - *Grid: the latest grid
	//   - error: ErrUnknownChannel if name was never registered, ErrReleased after Release
	CurrentGrid(name string) (*Grid, error)

	// Snapshot returns a deep copy of the latest grid of a channel that callers may keep.
	//
	// Parameters:
	//   - name: the channel name
	//
	// Returns:
	//   - *Grid: a private copy of the latest grid
	//   - error: ErrUnknownChannel if name was never registered, ErrReleased after Release
	Snapshot(name string) (*Grid, error)

	// Channels returns the channel names in declaration order.
	Channels() []string

	// Size returns the grid edge length.
	Size() int

	// Frame returns how many steps have completed.
	Frame() uint64

	// Release drops every grid. Safe to call more than once.
	Release()
}

// channelState pairs a channel spec with its ping-pong buffers.
type channelState[P any] struct {
	spec  ChannelSpec[P]
	front *Grid // last completed frame, read by rules and callers
	back  *Grid // frame under construction
	ctx   *StepContext[P]
}

// simulation is the implementation of the Simulation interface.
type simulation[P any] struct {
	mu     sync.RWMutex // guards front/back swaps and released
	stepMu sync.Mutex   // serializes Step

	size     int
	channels []*channelState[P]
	index    map[string]*channelState[P]

	maxDelta float32
	frames   uint64
	released bool

	workers int
	pool    worker.DynamicWorkerPool
}

var _ Simulation[struct{}] = &simulation[struct{}]{}

// New allocates one pair of grids per channel spec and fills the initial frame.
//
// Parameters:
//   - size: the grid edge length N (N*N entities)
//   - specs: the channels to simulate
//   - rng: the random source used by FillFuncs (deterministic for a fixed seed)
//   - opts: functional options
//
// Returns:
//   - Simulation[P]: the simulation
//   - error: ErrConfiguration when the channel set is invalid
func New[P any](size int, specs []ChannelSpec[P], rng *rand.Rand, opts ...SimulationBuilderOption) (Simulation[P], error) {
	o := options{maxDelta: common.MaxFrameDelta, workers: 1}
	for _, opt := range opts {
		opt(&o)
	}

	if size <= 0 {
		return nil, fmt.Errorf("%w: grid size must be positive, got %d", ErrConfiguration, size)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no channels declared", ErrConfiguration)
	}

	s := &simulation[P]{
		size:     size,
		channels: make([]*channelState[P], 0, len(specs)),
		index:    make(map[string]*channelState[P], len(specs)),
		maxDelta: o.maxDelta,
		workers:  max(o.workers, 1),
	}

	for _, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("%w: channel name must not be empty", ErrConfiguration)
		}
		if _, dup := s.index[spec.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate channel %q", ErrConfiguration, spec.Name)
		}
		if spec.Update == nil {
			return nil, fmt.Errorf("%w: channel %q has no update rule", ErrConfiguration, spec.Name)
		}
		cs := &channelState[P]{
			spec:  spec,
			front: NewGrid(size),
			back:  NewGrid(size),
		}
		s.channels = append(s.channels, cs)
		s.index[spec.Name] = cs
	}

	for name := range o.initial {
		if _, ok := s.index[name]; !ok {
			return nil, fmt.Errorf("%w: initial cells for undeclared channel %q", ErrConfiguration, name)
		}
	}

	for _, cs := range s.channels {
		deps := make([]*channelState[P], 0, len(cs.spec.Dependencies))
		for _, dep := range cs.spec.Dependencies {
			d, ok := s.index[dep]
			if !ok {
				return nil, fmt.Errorf("%w: channel %q depends on unknown channel %q", ErrConfiguration, cs.spec.Name, dep)
			}
			deps = append(deps, d)
		}
		cs.ctx = &StepContext[P]{size: size, deps: deps}

		if err := s.fill(cs, rng, o.initial[cs.spec.Name]); err != nil {
			return nil, err
		}
	}

	if s.workers > 1 {
		// Queue size of 256 covers one task per band with headroom; idle workers exit after a second.
		s.pool = worker.NewDynamicWorkerPool(s.workers, 256, 1*time.Second)
	}

	common.Logger().Debug("simulation initialized",
		"size", size, "channels", len(s.channels), "workers", s.workers)

	return s, nil
}

// fill writes the initial frame of a channel into both buffers.
func (s *simulation[P]) fill(cs *channelState[P], rng *rand.Rand, initial []common.Vec4) error {
	switch {
	case initial != nil:
		if len(initial) != cs.front.Len() {
			return fmt.Errorf("%w: channel %q initial data has %d cells, want %d",
				ErrConfiguration, cs.spec.Name, len(initial), cs.front.Len())
		}
		copy(cs.front.cells, initial)
	case cs.spec.Fill != nil:
		if rng == nil {
			return fmt.Errorf("%w: channel %q needs a random source to fill", ErrConfiguration, cs.spec.Name)
		}
		for i := range cs.front.cells {
			cs.front.cells[i] = cs.spec.Fill(rng, i)
		}
	}
	cs.back.copyFrom(cs.front)
	return nil
}

func (s *simulation[P]) Step(frame common.FrameState, params P) error {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()

	s.mu.RLock()
	released := s.released
	s.mu.RUnlock()
	if released {
		return ErrReleased
	}

	frame = frame.Clamped(s.maxDelta)

	for _, cs := range s.channels {
		cs.ctx.Frame = frame
		cs.ctx.Params = params
		s.evaluate(cs)
	}

	// Publish the new frame of every channel at once.
	s.mu.Lock()
	for _, cs := range s.channels {
		cs.front, cs.back = cs.back, cs.front
	}
	s.frames++
	s.mu.Unlock()

	return nil
}

// evaluate runs a channel's rule over every cell, writing its back buffer.
// Rows are split into bands submitted to the worker pool; a WaitGroup acts as the
// per-step barrier because pool.Wait blocks until workers idle-exit.
func (s *simulation[P]) evaluate(cs *channelState[P]) {
	total := cs.back.Len()
	update := cs.spec.Update
	ctx := cs.ctx
	out := cs.back.cells

	if s.pool == nil || s.workers <= 1 {
		for i := 0; i < total; i++ {
			out[i] = update(ctx, i)
		}
		return
	}

	bands := min(s.workers, s.size)
	rowsPerBand := (s.size + bands - 1) / bands

	var wg sync.WaitGroup
	for b := 0; b < bands; b++ {
		start := b * rowsPerBand * s.size
		end := min(start+rowsPerBand*s.size, total)
		if start >= end {
			break
		}
		wg.Add(1)
		s.pool.SubmitTask(worker.Task{
			ID: b,
			Do: func() (any, error) {
				defer wg.Done()
				for i := start; i < end; i++ {
					out[i] = update(ctx, i)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (s *simulation[P]) CurrentGrid(name string) (*Grid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.released {
		return nil, ErrReleased
	}
	cs, ok := s.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, name)
	}
	return cs.front, nil
}

func (s *simulation[P]) Snapshot(name string) (*Grid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.released {
		return nil, ErrReleased
	}
	cs, ok := s.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, name)
	}
	return cs.front.Clone(), nil
}

func (s *simulation[P]) Channels() []string {
	names := make([]string, len(s.channels))
	for i, cs := range s.channels {
		names[i] = cs.spec.Name
	}
	return names
}

func (s *simulation[P]) Size() int {
	return s.size
}

func (s *simulation[P]) Frame() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames
}

func (s *simulation[P]) Release() {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return
	}
	s.released = true
	for _, cs := range s.channels {
		cs.front, cs.back = nil, nil
		cs.ctx.deps = nil
	}
	s.index = map[string]*channelState[P]{}
	s.pool = nil
}
