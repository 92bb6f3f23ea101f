package renderer

import (
	"math"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/presentation"
)

// InstanceFloats is the number of float32 values per packed instance: a column-major model
// matrix followed by (animation row, phase, scale, 0).
const InstanceFloats = 20

// InstanceStride is the byte size of one packed instance in the storage buffer.
const InstanceStride = InstanceFloats * 4

// VertexFloats is the number of float32 values per packed mesh vertex: position then colour.
const VertexFloats = 6

// PackInstances writes the instances of a render command into dst in the layout of the
// instance storage buffer, growing dst when needed.
//
// Parameters:
//   - dst: scratch slice to reuse (may be nil)
//   - cmd: the render command
//
// Returns:
//   - []float32: len(cmd.Instances)*InstanceFloats values
func PackInstances(dst []float32, cmd presentation.RenderCommand) []float32 {
	n := len(cmd.Instances) * InstanceFloats
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]

	for i, inst := range cmd.Instances {
		out := dst[i*InstanceFloats : (i+1)*InstanceFloats]
		inst.ModelMatrix(out[:16], cmd.ModelYaw)
		out[16] = float32(inst.AnimationRow)
		out[17] = inst.Phase
		out[18] = inst.Scale
		out[19] = 0
	}
	return dst
}

// PackMesh interleaves positions and colours into the vertex buffer layout. Missing colours
// default to white.
//
// Parameters:
//   - positions: the rest-pose vertex positions
//   - colors: per-vertex RGB colours (may be shorter than positions)
//
// Returns:
//   - []float32: len(positions)*VertexFloats values
func PackMesh(positions, colors []common.Vec3) []float32 {
	out := make([]float32, len(positions)*VertexFloats)
	for i, p := range positions {
		c := common.Vec3{1, 1, 1}
		if i < len(colors) {
			c = colors[i]
		}
		copy(out[i*VertexFloats:], p[:])
		copy(out[i*VertexFloats+3:], c[:])
	}
	return out
}

// ViewProjection returns the camera matrix of the birds view: a perspective camera on the +Z
// axis looking at the origin.
//
// Parameters:
//   - distance: camera distance from the origin
//   - aspect: viewport width / height
//
// Returns:
//   - [16]float32: the column-major projection * view matrix
func ViewProjection(distance, aspect float32) [16]float32 {
	var view, proj, out [16]float32
	common.LookAt(view[:], 0, 0, distance, 0, 0, 0, 0, 1, 0)
	common.Perspective(proj[:], 75*math.Pi/180, aspect, 1, 3000)
	common.Mul4(out[:], proj[:], view[:])
	return out
}

// GlyphMesh returns the small paper-plane bird drawn when no model is loaded: a body and two
// wings, nose along +X after the model yaw.
//
// Returns:
//   - []common.Vec3: the triangle-list positions
//   - []uint32: sequential indices
func GlyphMesh() ([]common.Vec3, []uint32) {
	const s = 0.2
	positions := []common.Vec3{
		{0, 0, -20 * s}, {0, 4 * s, -20 * s}, {0, 0, 30 * s},
		{0, 0, -15 * s}, {-20 * s, 0, 0}, {0, 0, 15 * s},
		{0, 0, 15 * s}, {20 * s, 0, 0}, {0, 0, -15 * s},
	}
	indices := make([]uint32, len(positions))
	for i := range indices {
		indices[i] = uint32(i)
	}
	return positions, indices
}
