package presentation

import (
	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-flock/common"
)

// RenderCommand is everything an output sink needs to draw one frame.
type RenderCommand struct {
	// Frame is the clock of the frame being drawn.
	Frame common.FrameState

	// Instances holds one transform per visible entity.
	Instances []Instance

	// Strip is the shared baked animation, or nil when the entities are not animated.
	Strip *AnimationStrip

	// ModelYaw is the fixed yaw applied to the entity mesh before its own orientation.
	ModelYaw float32

	// VerticesPerInstance is the vertex count of the entity mesh (0 when unknown).
	VerticesPerInstance int
}

// Instance is the transform of a single entity.
type Instance struct {
	// Index is the entity's cell index in the simulation grids.
	Index int

	// Position is the world-space position.
	Position common.Vec3

	// Rotation orients the mesh so its +X axis follows the velocity. Column-major.
	Rotation common.Mat3

	// Scale is the uniform mesh scale.
	Scale float32

	// Phase is the wing-beat accumulator carried in the position grid.
	Phase float32

	// AnimationRow is the strip row to sample, or -1 without a strip.
	AnimationRow int
}

// Orientation derives the rotation of an entity from its velocity: a yaw taken from the
// horizontal components composed with a pitch taken from the vertical one. The z component
// is flipped first to match the mesh's handedness.
//
// Degenerate inputs fall back gracefully: a zero velocity yields the identity and a purely
// vertical velocity yields no yaw.
//
// Parameters:
//   - velocity: the entity velocity (any length)
//
// Returns:
//   - common.Mat3: the column-major rotation (yaw * pitch)
func Orientation(velocity common.Vec3) common.Mat3 {
	v, ok := common.Normalize3(velocity, 1e-6)
	if !ok {
		return common.Mat3Identity()
	}
	v[2] *= -1

	cosry, sinry := float32(1), float32(0)
	if xz := math32.Sqrt(v[0]*v[0] + v[2]*v[2]); xz > 1e-6 {
		cosry = v[0] / xz
		sinry = v[2] / xz
	}

	cosrz := math32.Sqrt(math32.Max(0, 1-v[1]*v[1]))
	sinrz := v[1]

	yaw := common.Mat3{cosry, 0, -sinry, 0, 1, 0, sinry, 0, cosry}
	pitch := common.Mat3{cosrz, sinrz, 0, -sinrz, cosrz, 0, 0, 0, 1}
	return common.MulMat3(yaw, pitch)
}

// TransformVertex places one mesh vertex of the entity in world space: the base vertex plus
// its pose displacement, turned by the model yaw, scaled, oriented and translated.
//
// Parameters:
//   - base: the rest-pose vertex position
//   - pose: the displacement sampled from the animation strip
//   - modelYaw: the fixed mesh yaw in radians
//
// Returns:
//   - common.Vec3: the world-space vertex
func (in Instance) TransformVertex(base, pose common.Vec3, modelYaw float32) common.Vec3 {
	p := common.MulMat3Vec3(common.RotationY(modelYaw), common.Add3(base, pose))
	p = common.Scale3(p, in.Scale)
	p = common.MulMat3Vec3(in.Rotation, p)
	return common.Add3(p, in.Position)
}

// ModelMatrix writes the column-major 4x4 matrix of the instance, including the model yaw.
//
// Parameters:
//   - out: destination slice (at least 16 elements)
//   - modelYaw: the fixed mesh yaw in radians
func (in Instance) ModelMatrix(out []float32, modelYaw float32) {
	common.ModelMatrix(out, common.MulMat3(in.Rotation, common.RotationY(modelYaw)), in.Position, in.Scale)
}
