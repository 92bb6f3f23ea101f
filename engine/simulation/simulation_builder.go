package simulation

import (
	"github.com/Carmen-Shannon/oxy-flock/common"
)

// SimulationBuilderOption is a functional option for configuring a Simulation during construction.
type SimulationBuilderOption func(*options)

type options struct {
	workers  int
	maxDelta float32
	initial  map[string][]common.Vec4
}

// WithWorkers sets how many pooled goroutines evaluate cell bands during Step.
// Values <= 1 evaluate every cell on the calling goroutine.
//
// Parameters:
//   - workers: the worker count
//
// Returns:
//   - SimulationBuilderOption: option function to apply
func WithWorkers(workers int) SimulationBuilderOption {
	return func(o *options) {
		o.workers = workers
	}
}

// WithMaxDelta overrides the per-step delta clamp (default common.MaxFrameDelta).
//
// Parameters:
//   - maxDelta: the largest delta a single Step may integrate
//
// Returns:
//   - SimulationBuilderOption: option function to apply
func WithMaxDelta(maxDelta float32) SimulationBuilderOption {
	return func(o *options) {
		o.maxDelta = maxDelta
	}
}

// WithInitialCells seeds a channel with explicit values instead of its FillFunc.
// The slice length must equal size*size; it is copied.
//
// Parameters:
//   - channel: the channel name
//   - cells: the initial cell values in row-major order
//
// Returns:
//   - SimulationBuilderOption: option function to apply
func WithInitialCells(channel string, cells []common.Vec4) SimulationBuilderOption {
	return func(o *options) {
		if o.initial == nil {
			o.initial = make(map[string][]common.Vec4)
		}
		o.initial[channel] = append([]common.Vec4(nil), cells...)
	}
}
