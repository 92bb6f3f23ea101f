// package engine drives the frame loop: it advances the flock, draws a render command from the
// latest grids and hands it to every output sink.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/flock"
	"github.com/Carmen-Shannon/oxy-flock/engine/presentation"
	"github.com/Carmen-Shannon/oxy-flock/engine/profiler"
	"github.com/Carmen-Shannon/oxy-flock/engine/window"
)

// ErrSink wraps the errors returned by sinks during a tick.
var ErrSink = errors.New("engine: sink failed")

// Sink receives the render command of every frame.
type Sink interface {
	Consume(cmd presentation.RenderCommand) error
}

// Resizer is implemented by sinks that follow the window size.
type Resizer interface {
	Resize(width, height int) error
}

// Engine is the frame loop driver.
type Engine interface {
	// SetParams replaces the flocking parameters used from the next tick on.
	SetParams(params flock.Params)

	// Params returns the current flocking parameters.
	Params() flock.Params

	// SetPointer places the predator under a normalized pointer ([-1, 1], y down) for the next
	// tick only.
	//
	// Parameters:
	//   - x: the normalized horizontal pointer position
	//   - y: the normalized vertical pointer position
	SetPointer(x, y float32)

	// ClearPointer cancels a pending pointer.
	ClearPointer()

	// SetCount sets how many entities are drawn.
	SetCount(count int)

	// SetSize sets the base entity scale.
	SetSize(size float32)

	// SetStrip replaces the animation strip. A nil strip draws the rest pose.
	SetStrip(strip *presentation.AnimationStrip)

	// SetPaused freezes or resumes the simulation. A paused engine keeps drawing.
	SetPaused(paused bool)

	// Paused reports whether the simulation is frozen.
	Paused() bool

	// SetTickRate sets the loop rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// AddSink registers an output sink.
	AddSink(sink Sink)

	// Frame returns the clock of the last tick.
	Frame() common.FrameState

	// Tick advances the loop by dt seconds, draws and dispatches one render command.
	// Sink errors are logged and returned wrapped in ErrSink; they never stop the loop.
	//
	// Parameters:
	//   - dt: seconds since the previous tick
	//
	// Returns:
	//   - presentation.RenderCommand: the command handed to the sinks
	//   - error: a simulation error, or ErrSink wrapping the sink errors
	Tick(dt float32) (presentation.RenderCommand, error)

	// Run starts the ticker and blocks until Quit is called or the window closes.
	Run()

	// Quit signals the loop to stop. Safe to call multiple times.
	Quit()
}

// engine implements the Engine interface.
type engine struct {
	mu *sync.Mutex

	flock     *flock.Flock
	presenter *presentation.Presenter
	strip     *presentation.AnimationStrip
	sinks     []Sink
	window    window.Window

	params        flock.Params
	pointer       [2]float32
	pointerActive bool
	paused        bool
	frame         common.FrameState
	maxDelta      float32

	tickRateChannel chan time.Duration
	engineTickRate  time.Duration
	running         atomic.Bool
	wg              sync.WaitGroup
	quitChannel     chan struct{}
	quitOnce        sync.Once

	profiler         *profiler.Profiler
	profilingEnabled bool
}

var _ Engine = &engine{}

// NewEngine creates the frame loop driver. WithFlock and WithPresenter are required.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:              &sync.Mutex{},
		params:          flock.DefaultParams(),
		tickRateChannel: make(chan time.Duration, 1),
		engineTickRate:  time.Second / 60,
		quitChannel:     make(chan struct{}),
		profiler:        profiler.NewProfiler(),
	}
	for _, opt := range options {
		opt(e)
	}
	if e.flock == nil || e.presenter == nil {
		panic("engine: NewEngine requires WithFlock and WithPresenter")
	}

	if e.window != nil {
		e.bindWindow(e.window)
	}
	return e
}

// bindWindow routes window input into the loop and window resizes into resizable sinks.
func (e *engine) bindWindow(w window.Window) {
	w.SetPointerCallback(e.SetPointer)
	w.SetPointerLeaveCallback(e.ClearPointer)
	w.SetKeyDownCallback(e.handleKey)
	w.SetResizeCallback(func(width, height int) {
		e.mu.Lock()
		sinks := append([]Sink(nil), e.sinks...)
		e.mu.Unlock()
		for _, s := range sinks {
			if r, ok := s.(Resizer); ok {
				if err := r.Resize(width, height); err != nil {
					common.Logger().Warn("resize failed", "width", width, "height", height, "error", err)
				}
			}
		}
	})
}

// handleKey maps viewer keys onto loop controls: P pauses, R restores the default parameters,
// +/- double or halve the visible count, Up/Down grow or shrink the entities.
func (e *engine) handleKey(keyCode uint32) {
	switch keyCode {
	case common.KeyP, common.KeySpace:
		e.SetPaused(!e.Paused())
	case common.KeyR:
		e.SetParams(flock.DefaultParams())
	case common.KeyEqual:
		e.SetCount(max(e.presenter.Count()*2, 1))
	case common.KeyMinus:
		e.SetCount(e.presenter.Count() / 2)
	case common.KeyUp:
		e.SetSize(e.presenter.Size() * 1.1)
	case common.KeyDown:
		e.SetSize(e.presenter.Size() / 1.1)
	}
}

// PointerToWorld converts a normalized pointer into the predator position: half the bounds on
// each axis, y flipped so up on screen is up in the world, on the z = 0 plane.
//
// Parameters:
//   - x, y: the normalized pointer ([-1, 1], y down)
//   - bounds: the flock bounds
//
// Returns:
//   - common.Vec3: the world-space predator position
func PointerToWorld(x, y, bounds float32) common.Vec3 {
	return common.Vec3{0.5 * x * bounds, -0.5 * y * bounds, 0}
}

func (e *engine) SetParams(params flock.Params) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params = params
}

func (e *engine) Params() flock.Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

func (e *engine) SetPointer(x, y float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pointer = [2]float32{x, y}
	e.pointerActive = true
}

func (e *engine) ClearPointer() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pointerActive = false
}

func (e *engine) SetCount(count int) {
	e.presenter.SetCount(count)
	common.Logger().Debug("visible count changed", "count", e.presenter.Count())
}

func (e *engine) SetSize(size float32) {
	e.presenter.SetSize(size)
}

func (e *engine) SetStrip(strip *presentation.AnimationStrip) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.strip = strip
}

func (e *engine) SetPaused(paused bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = paused
	common.Logger().Info("simulation paused", "paused", paused)
}

func (e *engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

func (e *engine) AddSink(sink Sink) {
	if sink == nil {
		panic("engine: AddSink requires a sink")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sinks = append(e.sinks, sink)
}

func (e *engine) Frame() common.FrameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frame
}

func (e *engine) Tick(dt float32) (presentation.RenderCommand, error) {
	e.mu.Lock()
	paused := e.paused
	if !paused {
		e.frame = e.frame.Advance(dt, e.maxDelta)
	}
	frame := e.frame
	params := e.params
	if e.pointerActive {
		params.PredatorActive = true
		params.Predator = PointerToWorld(e.pointer[0], e.pointer[1], e.flock.Bounds())
	}
	// The predator only acts on the tick after a pointer event.
	e.pointerActive = false
	strip := e.strip
	sinks := append([]Sink(nil), e.sinks...)
	e.mu.Unlock()

	if !paused {
		if err := e.flock.Step(frame, params); err != nil {
			return presentation.RenderCommand{}, err
		}
	}

	position, err := e.flock.Position()
	if err != nil {
		return presentation.RenderCommand{}, err
	}
	velocity, err := e.flock.Velocity()
	if err != nil {
		return presentation.RenderCommand{}, err
	}
	cmd := e.presenter.Draw(position, velocity, strip, frame)

	var errs []error
	for _, s := range sinks {
		if err := s.Consume(cmd); err != nil {
			common.Logger().Warn("sink failed", "error", err)
			errs = append(errs, err)
		}
	}

	if e.profilingEnabled {
		e.profiler.Tick(len(cmd.Instances))
	}
	if len(errs) > 0 {
		return cmd, fmt.Errorf("%w: %w", ErrSink, errors.Join(errs...))
	}
	return cmd, nil
}

func (e *engine) Run() {
	e.running.Store(true)
	e.wg.Add(1)
	go e.handleEngine()

	if e.window != nil {
		// ProcessMessages blocks until the window closes.
		e.window.ProcessMessages()
		e.signalQuit()
	} else {
		<-e.quitChannel
	}
	e.wg.Wait()
	e.running.Store(false)
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handleEngine runs the fixed-rate tick loop. It listens for rate changes via tickRateChannel
// and exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("tick goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()
	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if _, err := e.Tick(dt); err != nil && !errors.Is(err, ErrSink) {
				common.Logger().Error("tick failed", "error", err)
				e.signalQuit()
				return
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}
	// Replace any pending update so the loop only sees the latest rate.
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}
