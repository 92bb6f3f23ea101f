// package loader reads morph-animated entity meshes from model files and turns them into the
// pose samples an animation strip is baked from.
package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/presentation"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// PoseSource is the entity mesh of a model file together with the poses of its first animation.
type PoseSource struct {
	// Name identifies the model (scene name, mesh name or file name).
	Name string

	// BasePositions is the rest-pose vertex positions.
	BasePositions []common.Vec3

	// Colors is the per-vertex RGB colour (white when the mesh has none).
	Colors []common.Vec3

	// Indices is the triangle list.
	Indices []uint32

	// Poses holds one displacement frame per POSITION morph target, in target order.
	Poses []presentation.PoseFrame

	// Duration is the length in seconds of the first animation, 0 when the file has none.
	Duration float32

	// Clip is the name of the first animation.
	Clip string
}

// VertexCount returns the number of mesh vertices.
func (s *PoseSource) VertexCount() int {
	return len(s.BasePositions)
}

// FramesPerCycle converts the animation duration into a frame count at the given rate.
// A source without an animation plays one frame per pose.
//
// Parameters:
//   - fps: frames per second (60 matches the display rate the strip is sampled at)
//
// Returns:
//   - int: the frame count, at least 1
func (s *PoseSource) FramesPerCycle(fps float32) int {
	if s.Duration <= 0 || fps <= 0 {
		return max(len(s.Poses), 1)
	}
	return max(int(math32.Round(s.Duration*fps)), 1)
}

// Bake bakes the poses of the source into an animation strip.
//
// Parameters:
//   - fps: the frame rate used to size the cycle
//
// Returns:
//   - *presentation.AnimationStrip: the baked strip
//   - error: error from presentation.BakeAnimationStrip
func (s *PoseSource) Bake(fps float32) (*presentation.AnimationStrip, error) {
	return presentation.BakeAnimationStrip(s.FramesPerCycle(fps), s.Poses)
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu      sync.RWMutex
	cache   map[string]*PoseSource
	backend loaderBackend
}

// Loader loads and caches pose sources from model files.
type Loader interface {
	// Load imports a model file and caches the result by path.
	// A cached source is returned without touching the file again.
	//
	// Parameters:
	//   - path: the model file (.gltf or .glb)
	//
	// Returns:
	//   - *PoseSource: the pose source
	//   - error: error if the format is unsupported or loading fails
	Load(path string) (*PoseSource, error)

	// LoadReader imports a model stream and caches it by name.
	//
	// Parameters:
	//   - name: the cache key
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - *PoseSource: the pose source
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (*PoseSource, error)

	// Get retrieves a cached source by name. Returns nil if not found.
	Get(name string) *PoseSource

	// Sources returns a copy of the cache.
	Sources() map[string]*PoseSource
}

var _ Loader = &loader{}

// NewLoader creates a Loader with the given backend.
//
// Parameters:
//   - backendType: the file format backend
//   - options: functional options
//
// Returns:
//   - Loader: the loader
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		cache: make(map[string]*PoseSource),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) (*PoseSource, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	src, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	l.store(path, src)
	return src, nil
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (*PoseSource, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}
	if l.backend == nil {
		return nil, fmt.Errorf("loader: no backend configured")
	}

	src, err := l.backend.LoadReader(r, isGLB)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	l.store(name, src)
	return src, nil
}

func (l *loader) store(key string, src *PoseSource) {
	l.mu.Lock()
	l.cache[key] = src
	l.mu.Unlock()

	common.Logger().Info("pose source loaded",
		"key", key, "name", src.Name, "vertices", src.VertexCount(), "poses", len(src.Poses), "duration", src.Duration)
}

func (l *loader) Get(name string) *PoseSource {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cache[name]
}

func (l *loader) Sources() map[string]*PoseSource {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*PoseSource, len(l.cache))
	for k, v := range l.cache {
		result[k] = v
	}
	return result
}

// resolveBackend selects the backend for a file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		if l.backend == nil {
			return nil, fmt.Errorf("loader: no backend configured")
		}
		return l.backend, nil
	default:
		return nil, fmt.Errorf("unsupported model format: %s", ext)
	}
}
