package renderer

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the renderer.
// When not specified, the default is MSAA4x. Use MSAAOff to disable MSAA entirely.
//
// Parameters:
//   - count: the MSAASampleCount to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingMSAA = &count
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithBackground sets the clear colour as a hex string such as "#FFFFCC".
//
// Parameters:
//   - hex: the background colour
//
// Returns:
//   - RendererBuilderOption: a function that applies the background option to a renderer
func WithBackground(hex string) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingBackground = hex
	}
}

// WithCameraDistance sets how far the camera sits from the origin on the +Z axis.
//
// Parameters:
//   - distance: the camera distance in world units
//
// Returns:
//   - RendererBuilderOption: a function that applies the camera option to a renderer
func WithCameraDistance(distance float32) RendererBuilderOption {
	return func(r *renderer) {
		r.cameraDistance = distance
	}
}
