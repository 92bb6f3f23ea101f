// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// MaxFrameDelta is the largest time step, in seconds, that a single frame may advance.
// Longer pauses (a backgrounded tab, a debugger stop) are clamped to this value so the
// simulation does not explode on resume.
const MaxFrameDelta float32 = 1.0

// Vec3 is a three component float32 vector (x, y, z).
type Vec3 = [3]float32

// Vec4 is a four component float32 vector (x, y, z, w). Simulation grids store one Vec4 per cell.
type Vec4 = [4]float32

// Mat3 is a 3x3 float32 matrix stored in column-major order.
type Mat3 = [9]float32

// FrameState carries the clock values of a single frame.
type FrameState struct {
	// Time is the elapsed time in seconds since the loop started. It never decreases.
	Time float32

	// Delta is the time in seconds since the previous frame.
	Delta float32
}

// Clamped returns a copy of the frame with Delta limited to [0, maxDelta].
// A maxDelta <= 0 falls back to MaxFrameDelta.
//
// Parameters:
//   - maxDelta: the largest delta allowed
//
// Returns:
//   - FrameState: the clamped frame
func (f FrameState) Clamped(maxDelta float32) FrameState {
	if maxDelta <= 0 {
		maxDelta = MaxFrameDelta
	}
	switch {
	case f.Delta != f.Delta || f.Delta < 0:
		f.Delta = 0
	case f.Delta > maxDelta:
		f.Delta = maxDelta
	}
	return f
}

// Advance returns the next frame after dt seconds, keeping Time monotonic.
// Negative dt values are treated as zero.
//
// Parameters:
//   - dt: seconds elapsed since this frame
//   - maxDelta: clamp applied to the resulting Delta
//
// Returns:
//   - FrameState: the following frame
func (f FrameState) Advance(dt, maxDelta float32) FrameState {
	next := FrameState{Time: f.Time, Delta: dt}.Clamped(maxDelta)
	if dt > 0 {
		next.Time = f.Time + dt
	}
	return next
}
