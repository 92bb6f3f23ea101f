// package displacement implements the exploding-faces effect: every triangle of a tessellated
// mesh is pushed along its normals by its own random distance, scaled by a pulsing amplitude.
package displacement

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/Carmen-Shannon/oxy-flock/common"
)

// ErrInvalidMesh is returned for meshes that are not whole triangles with one normal per vertex.
var ErrInvalidMesh = errors.New("displacement: invalid mesh")

const (
	defaultMaxDisplacement float32 = 10
	defaultHueRange        float64 = 0.5
	defaultSaturation      float64 = 1
	defaultLightness       float64 = 0.8
	ambient                float32 = 0.4
)

// Effect holds the per-face attributes of a displaced mesh. It is immutable after creation
// and safe for concurrent reads.
type Effect struct {
	mesh          Mesh
	displacements []float32
	colors        []common.Vec3

	maxDisplacement float32
	hueRange        float64
	saturation      float64
	lightness       float64
}

// NewEffect assigns every face a random displacement in [-max/2, max/2] and a random colour of
// fixed saturation and lightness. All three vertices of a face share both values.
//
// Parameters:
//   - mesh: the (usually tessellated) mesh
//   - rng: the random source
//   - options: functional options
//
// Returns:
//   - *Effect: the effect
//   - error: ErrInvalidMesh for malformed meshes
func NewEffect(mesh Mesh, rng *rand.Rand, options ...EffectBuilderOption) (*Effect, error) {
	if rng == nil {
		panic("displacement: NewEffect requires a random source")
	}
	if err := mesh.validate(); err != nil {
		return nil, err
	}

	e := &Effect{
		mesh:            mesh,
		maxDisplacement: defaultMaxDisplacement,
		hueRange:        defaultHueRange,
		saturation:      defaultSaturation,
		lightness:       defaultLightness,
	}
	for _, option := range options {
		option(e)
	}

	faces := mesh.FaceCount()
	e.displacements = make([]float32, faces)
	e.colors = make([]common.Vec3, faces)
	for f := range faces {
		h := e.hueRange * rng.Float64()
		c := colorful.Hsl(h*360, e.saturation, e.lightness)
		e.colors[f] = common.Vec3{float32(c.R), float32(c.G), float32(c.B)}
		e.displacements[f] = e.maxDisplacement * (0.5 - rng.Float32())
	}

	common.Logger().Debug("displacement effect created", "faces", faces)
	return e, nil
}

// Amplitude is the pulse applied at time t seconds: 1 + sin(3t), in [0, 2].
func Amplitude(t float32) float32 {
	return 1 + math32.Sin(t*3)
}

// Mesh returns the mesh the effect was built on.
func (e *Effect) Mesh() Mesh {
	return e.mesh
}

// FaceDisplacement returns the displacement distance of a face.
func (e *Effect) FaceDisplacement(face int) float32 {
	return e.displacements[face]
}

// FaceColor returns the RGB colour of a face.
func (e *Effect) FaceColor(face int) common.Vec3 {
	return e.colors[face]
}

// Displace returns the mesh positions at time t: position + normal*amplitude*displacement.
//
// Parameters:
//   - t: the time in seconds
//
// Returns:
//   - []common.Vec3: one displaced position per mesh vertex
func (e *Effect) Displace(t float32) []common.Vec3 {
	amp := Amplitude(t)
	out := make([]common.Vec3, len(e.mesh.Positions))
	for i, p := range e.mesh.Positions {
		d := e.displacements[i/3] * amp
		out[i] = common.Add3(p, common.Scale3(e.mesh.Normals[i], d))
	}
	return out
}

// Shade returns the lit colour of a vertex: its face colour times an ambient term plus the
// diffuse response to a white light along (1, 1, 1).
func (e *Effect) Shade(vertex int) common.Vec3 {
	light, _ := common.Normalize3(common.Vec3{1, 1, 1}, 0)
	directional := max(common.Dot3(e.mesh.Normals[vertex], light), 0)
	return common.Scale3(e.colors[vertex/3], directional+ambient)
}

// EffectBuilderOption is a functional option for configuring an Effect during construction.
type EffectBuilderOption func(*Effect)

// WithMaxDisplacement sets the full range of the per-face displacement.
func WithMaxDisplacement(d float32) EffectBuilderOption {
	return func(e *Effect) {
		e.maxDisplacement = d
	}
}

// WithPalette sets the hue range (fraction of the colour wheel starting at red), saturation and
// lightness of the face colours.
//
// Parameters:
//   - hueRange: fraction of the wheel in [0, 1]
//   - saturation: HSL saturation in [0, 1]
//   - lightness: HSL lightness in [0, 1]
//
// Returns:
//   - EffectBuilderOption: option function to apply
func WithPalette(hueRange, saturation, lightness float64) EffectBuilderOption {
	return func(e *Effect) {
		if hueRange < 0 || saturation < 0 || lightness < 0 {
			panic(fmt.Sprintf("displacement: negative palette component (%g, %g, %g)", hueRange, saturation, lightness))
		}
		e.hueRange, e.saturation, e.lightness = hueRange, saturation, lightness
	}
}
