package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-flock/engine/flock"
	"github.com/Carmen-Shannon/oxy-flock/engine/presentation"
	"github.com/Carmen-Shannon/oxy-flock/engine/profiler"
	"github.com/Carmen-Shannon/oxy-flock/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables the periodic profile log.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTickRate sets the loop rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow binds a viewer window: its pointer drives the predator, its keys control the loop
// and its resizes reach every sink implementing Resizer. Run blocks on its message loop.
//
// Parameters:
//   - w: an open Window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithSink registers an output sink.
//
// Parameters:
//   - s: the sink
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSink(s Sink) EngineBuilderOption {
	return func(e *engine) {
		e.sinks = append(e.sinks, s)
	}
}

// WithFlock sets the simulated flock.
func WithFlock(f *flock.Flock) EngineBuilderOption {
	return func(e *engine) {
		e.flock = f
	}
}

// WithPresenter sets the presenter that turns grids into render commands.
func WithPresenter(p *presentation.Presenter) EngineBuilderOption {
	return func(e *engine) {
		e.presenter = p
	}
}

// WithStrip sets the initial animation strip.
func WithStrip(strip *presentation.AnimationStrip) EngineBuilderOption {
	return func(e *engine) {
		e.strip = strip
	}
}

// WithParams sets the initial flocking parameters.
func WithParams(params flock.Params) EngineBuilderOption {
	return func(e *engine) {
		e.params = params
	}
}

// WithMaxDelta sets the largest frame delta the loop clock advances by.
//
// Parameters:
//   - maxDelta: the clamp in seconds (<= 0 keeps common.MaxFrameDelta)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMaxDelta(maxDelta float32) EngineBuilderOption {
	return func(e *engine) {
		e.maxDelta = maxDelta
	}
}
