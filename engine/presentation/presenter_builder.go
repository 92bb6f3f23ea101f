package presentation

// PresenterBuilderOption is a functional option for configuring a Presenter during construction.
type PresenterBuilderOption func(*Presenter)

// WithSize sets the base entity scale (0.2 for the parrot, 0.1 for the flamingo).
//
// Parameters:
//   - size: the base scale
//
// Returns:
//   - PresenterBuilderOption: option function to apply
func WithSize(size float32) PresenterBuilderOption {
	return func(p *Presenter) {
		p.size = size
	}
}

// WithCount sets how many entities Draw emits. Clamped to the grid population.
//
// Parameters:
//   - count: the visible entity count
//
// Returns:
//   - PresenterBuilderOption: option function to apply
func WithCount(count int) PresenterBuilderOption {
	return func(p *Presenter) {
		p.count = count
	}
}

// WithModelYaw sets the fixed yaw applied to the mesh before orientation.
//
// Parameters:
//   - yaw: the yaw in radians
//
// Returns:
//   - PresenterBuilderOption: option function to apply
func WithModelYaw(yaw float32) PresenterBuilderOption {
	return func(p *Presenter) {
		p.modelYaw = yaw
	}
}

// WithVertexCount records the vertex count of the entity mesh for sinks that draw it.
//
// Parameters:
//   - n: the vertex count
//
// Returns:
//   - PresenterBuilderOption: option function to apply
func WithVertexCount(n int) PresenterBuilderOption {
	return func(p *Presenter) {
		p.vertexCount = n
	}
}
