package presentation

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-flock/common"
)

// PoseFrame is one sampled pose of the entity mesh: a displacement per mesh vertex,
// added to the base vertex position.
type PoseFrame []common.Vec3

// AnimationStrip is a baked RGBA float lookup table. Column i holds mesh vertex i,
// row j holds the interpolated pose at step j of the animation cycle.
// Rows at or beyond Frames are zero, as are columns at or beyond VertexCount.
type AnimationStrip struct {
	// Width is NextPowerOf2(VertexCount).
	Width int

	// Height is NextPowerOf2(Frames).
	Height int

	// Frames is the number of rows holding pose data (one animation cycle).
	Frames int

	// VertexCount is the number of mesh vertices per pose.
	VertexCount int

	// Data is Width*Height RGBA texels, row-major. w is 1 on every baked texel.
	Data []float32
}

// BakeAnimationStrip interpolates poses into a strip of framesPerCycle rows. Row j blends the
// two nearest poses around the normalized cycle position j/framesPerCycle; the last pose blends
// back into the first so the cycle loops.
//
// Parameters:
//   - framesPerCycle: the number of rows to bake (animation duration in frames)
//   - poses: the pose samples, all with the same vertex count
//
// Returns:
//   - *AnimationStrip: the baked strip
//   - error: ErrInsufficientPoseData for fewer than two poses, ErrInvalidStrip for bad dimensions
func BakeAnimationStrip(framesPerCycle int, poses []PoseFrame) (*AnimationStrip, error) {
	if len(poses) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientPoseData, len(poses))
	}
	if framesPerCycle <= 0 {
		return nil, fmt.Errorf("%w: frames per cycle must be positive, got %d", ErrInvalidStrip, framesPerCycle)
	}
	vertexCount := len(poses[0])
	if vertexCount == 0 {
		return nil, fmt.Errorf("%w: poses have no vertices", ErrInvalidStrip)
	}
	for i, pose := range poses {
		if len(pose) != vertexCount {
			return nil, fmt.Errorf("%w: pose %d has %d vertices, want %d", ErrInvalidStrip, i, len(pose), vertexCount)
		}
	}

	s := &AnimationStrip{
		Width:       common.NextPowerOf2(vertexCount),
		Height:      common.NextPowerOf2(framesPerCycle),
		Frames:      framesPerCycle,
		VertexCount: vertexCount,
	}
	s.Data = make([]float32, 4*s.Width*s.Height)

	n := len(poses)
	for j := 0; j < framesPerCycle; j++ {
		t := float32(j) / float32(framesPerCycle) * float32(n)
		cur := int(math32.Floor(t)) % n
		next := (cur + 1) % n
		amount := common.Fract(t)

		row := j * s.Width * 4
		for i := 0; i < vertexCount; i++ {
			a, b := poses[cur][i], poses[next][i]
			off := row + i*4
			s.Data[off] = common.Lerp(a[0], b[0], amount)
			s.Data[off+1] = common.Lerp(a[1], b[1], amount)
			s.Data[off+2] = common.Lerp(a[2], b[2], amount)
			s.Data[off+3] = 1
		}
	}

	common.Logger().Debug("animation strip baked",
		"poses", n, "frames", framesPerCycle, "width", s.Width, "height", s.Height)

	return s, nil
}

// CycleSpan is the fraction of the strip height covered by baked rows (Frames / Height).
// Animation coordinates wrap at this value so sampling never lands on an empty row.
func (s *AnimationStrip) CycleSpan() float32 {
	return float32(s.Frames) / float32(s.Height)
}

// Row converts a normalized vertical strip coordinate into a row index using nearest-row
// sampling with repeat wrapping.
//
// Parameters:
//   - coord: the vertical texture coordinate
//
// Returns:
//   - int: the row in [0, Height)
func (s *AnimationStrip) Row(coord float32) int {
	row := int(math32.Floor(common.Fract(coord) * float32(s.Height)))
	return min(max(row, 0), s.Height-1)
}

// Texel returns the raw RGBA value at a vertex column and row. Out-of-range columns wrap.
func (s *AnimationStrip) Texel(vertex, row int) common.Vec4 {
	vertex %= s.Width
	if vertex < 0 {
		vertex += s.Width
	}
	row %= s.Height
	if row < 0 {
		row += s.Height
	}
	off := (row*s.Width + vertex) * 4
	return common.Vec4{s.Data[off], s.Data[off+1], s.Data[off+2], s.Data[off+3]}
}

// Sample returns the pose displacement of a vertex at a vertical strip coordinate.
//
// Parameters:
//   - vertex: the mesh vertex index
//   - coord: the vertical texture coordinate (wraps)
//
// Returns:
//   - common.Vec3: the displacement to add to the base vertex
func (s *AnimationStrip) Sample(vertex int, coord float32) common.Vec3 {
	return common.XYZ(s.Texel(vertex, s.Row(coord)))
}

// Bytes returns the texel data as raw bytes for GPU upload.
func (s *AnimationStrip) Bytes() []byte {
	return common.SliceToBytes(s.Data)
}

// Release drops the texel data.
func (s *AnimationStrip) Release() {
	s.Data = nil
}
