// package renderer draws render commands with WebGPU: one instanced draw of the entity mesh per
// frame, animated by the baked strip, into a window surface or an offscreen target.
package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/presentation"
)

// DefaultCameraDistance is the default distance of the camera from the origin on +Z.
const DefaultCameraDistance float32 = 350

// ErrReleased is returned by every operation on a released Renderer.
var ErrReleased = errors.New("renderer: released")

// Target is what the renderer draws into. window.Window satisfies it; Headless builds one
// without a display.
type Target interface {
	// SurfaceDescriptor returns the platform surface, or nil for offscreen rendering.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int
}

type headlessTarget struct {
	width, height int
}

func (t headlessTarget) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (t headlessTarget) Width() int                                 { return t.width }
func (t headlessTarget) Height() int                                { return t.height }

// Headless returns an offscreen Target of the given size.
func Headless(width, height int) Target {
	return headlessTarget{width: width, height: height}
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend
	released    bool

	width, height  int
	cameraDistance float32
	strip          *presentation.AnimationStrip
	scratch        []float32

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	pendingBackground    string
}

// Renderer is the GPU output sink of the frame loop.
type Renderer interface {
	// UploadMesh replaces the entity mesh drawn for every instance.
	//
	// Parameters:
	//   - positions: the rest-pose vertex positions
	//   - colors: per-vertex colours (white when shorter than positions)
	//   - indices: the triangle list
	//
	// Returns:
	//   - error: an error if the buffers could not be created
	UploadMesh(positions, colors []common.Vec3, indices []uint32) error

	// UploadStrip uploads an animation strip. Consume uploads the strip of a command on its own
	// whenever it differs from the last one uploaded.
	//
	// Parameters:
	//   - strip: the baked strip (nil is ignored)
	//
	// Returns:
	//   - error: an error if the texture could not be created
	UploadStrip(strip *presentation.AnimationStrip) error

	// Consume draws one frame from a render command and presents it.
	//
	// Parameters:
	//   - cmd: the render command
	//
	// Returns:
	//   - error: an error if the frame could not be encoded
	Consume(cmd presentation.RenderCommand) error

	// Resize reconfigures the target and the camera aspect.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: an error if the target could not be recreated
	Resize(width, height int) error

	// SetBackground sets the clear colour from a hex string such as "#FFFFFF".
	SetBackground(hex string) error

	// SetPresentMode sets the present mode. A call to Resize is required for it to take effect.
	SetPresentMode(mode PresentMode)

	// Release frees every GPU resource. Safe to call twice.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer drawing into target. The glyph mesh is uploaded until
// UploadMesh replaces it.
//
// Parameters:
//   - backendType: the type of rendering backend to use
//   - target: the window or offscreen target
//   - options: variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if no GPU device or pipeline could be created
func NewRenderer(backendType RendererBackendType, target Target, options ...RendererBuilderOption) (Renderer, error) {
	if target == nil {
		panic("renderer: NewRenderer requires a target")
	}
	r := &renderer{
		mu:             &sync.Mutex{},
		backendType:    backendType,
		width:          target.Width(),
		height:         target.Height(),
		cameraDistance: DefaultCameraDistance,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend, err = newWGPURendererBackend(target.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}
	if err != nil {
		return nil, err
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingBackground != "" {
		if err := r.SetBackground(r.pendingBackground); err != nil {
			r.backend.Release()
			return nil, err
		}
	}

	if err := r.backend.ConfigureTarget(r.width, r.height); err != nil {
		r.backend.Release()
		return nil, err
	}
	if err := r.backend.RegisterFlockPipeline(flockShaderSource); err != nil {
		r.backend.Release()
		return nil, err
	}
	r.writeCamera()

	positions, indices := GlyphMesh()
	colors := make([]common.Vec3, len(positions))
	for i := range colors {
		colors[i] = common.Vec3{0.27, 0.27, 0.27}
	}
	if err := r.UploadMesh(positions, colors, indices); err != nil {
		r.backend.Release()
		return nil, err
	}

	common.Logger().Info("renderer created", "width", r.width, "height", r.height, "msaa", uint32(msaa))
	return r, nil
}

func (r *renderer) UploadMesh(positions, colors []common.Vec3, indices []uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return ErrReleased
	}
	if len(positions) == 0 || len(indices) == 0 {
		return fmt.Errorf("renderer: empty mesh (%d vertices, %d indices)", len(positions), len(indices))
	}
	return r.backend.UploadMesh(common.SliceToBytes(PackMesh(positions, colors)), common.SliceToBytes(indices), len(indices))
}

func (r *renderer) UploadStrip(strip *presentation.AnimationStrip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uploadStrip(strip)
}

func (r *renderer) uploadStrip(strip *presentation.AnimationStrip) error {
	if r.released {
		return ErrReleased
	}
	if strip == nil || strip == r.strip {
		return nil
	}
	if err := r.backend.UploadStrip(strip.Width, strip.Height, strip.Bytes()); err != nil {
		return fmt.Errorf("failed to upload strip: %w", err)
	}
	r.strip = strip
	return nil
}

func (r *renderer) Consume(cmd presentation.RenderCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return ErrReleased
	}
	if err := r.uploadStrip(cmd.Strip); err != nil {
		return err
	}

	r.scratch = PackInstances(r.scratch, cmd)
	count := len(cmd.Instances)
	if err := r.backend.WriteInstances(common.SliceToBytes(r.scratch), count); err != nil {
		return err
	}

	if err := r.backend.BeginFrame(); err != nil {
		return fmt.Errorf("failed to begin frame: %w", err)
	}
	r.backend.DrawInstances(uint32(count))
	r.backend.EndFrame()
	r.backend.Present()
	return nil
}

func (r *renderer) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return ErrReleased
	}
	r.width, r.height = width, height
	if err := r.backend.ConfigureTarget(width, height); err != nil {
		return err
	}
	r.writeCamera()
	return nil
}

func (r *renderer) SetBackground(hex string) error {
	c, err := colorful.Hex(hex)
	if err != nil {
		return fmt.Errorf("renderer: invalid background %q: %w", hex, err)
	}
	r.backend.SetClearColor(c.R, c.G, c.B)
	return nil
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return
	}
	r.released = true
	r.backend.Release()
	r.strip = nil
	r.scratch = nil
}

// writeCamera uploads the view-projection for the current aspect. Callers hold r.mu or own r.
func (r *renderer) writeCamera() {
	aspect := float32(max(r.width, 1)) / float32(max(r.height, 1))
	vp := ViewProjection(r.cameraDistance, aspect)
	r.backend.WriteCamera(common.SliceToBytes(vp[:]))
}
