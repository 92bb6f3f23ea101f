package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/presentation"
)

func TestPackInstances(t *testing.T) {
	cmd := presentation.RenderCommand{
		Instances: []presentation.Instance{
			{Index: 0, Position: common.Vec3{1, 2, 3}, Rotation: common.Mat3Identity(), Scale: 2, Phase: 0.5, AnimationRow: 4},
			{Index: 1, Position: common.Vec3{-1, 0, 0}, Rotation: common.Mat3Identity(), Scale: 1, AnimationRow: -1},
		},
	}

	got := PackInstances(nil, cmd)
	require.Len(t, got, 2*InstanceFloats)

	first := got[:InstanceFloats]
	assert.Equal(t, []float32{2, 0, 0, 0}, first[0:4])
	assert.Equal(t, []float32{0, 2, 0, 0}, first[4:8])
	assert.Equal(t, []float32{0, 0, 2, 0}, first[8:12])
	assert.Equal(t, []float32{1, 2, 3, 1}, first[12:16])
	assert.Equal(t, []float32{4, 0.5, 2, 0}, first[16:20])

	second := got[InstanceFloats:]
	assert.Equal(t, float32(-1), second[16])

	// The scratch slice is reused when it is large enough.
	again := PackInstances(got, presentation.RenderCommand{Instances: cmd.Instances[:1]})
	assert.Len(t, again, InstanceFloats)
	assert.Same(t, &got[0], &again[0])
}

func TestPackInstancesAppliesModelYaw(t *testing.T) {
	inst := presentation.Instance{Rotation: common.Mat3Identity(), Scale: 1}
	cmd := presentation.RenderCommand{Instances: []presentation.Instance{inst}, ModelYaw: presentation.DefaultModelYaw}

	got := PackInstances(nil, cmd)
	var want [16]float32
	inst.ModelMatrix(want[:], presentation.DefaultModelYaw)
	assert.Equal(t, want[:], got[:16])
}

func TestPackMesh(t *testing.T) {
	positions := []common.Vec3{{1, 2, 3}, {4, 5, 6}}
	got := PackMesh(positions, []common.Vec3{{0.5, 0.25, 0}})

	assert.Equal(t, []float32{1, 2, 3, 0.5, 0.25, 0, 4, 5, 6, 1, 1, 1}, got)
}

func TestGlyphMesh(t *testing.T) {
	positions, indices := GlyphMesh()
	assert.Len(t, positions, 9)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5, 6, 7, 8}, indices)
}

func TestViewProjectionCentersOrigin(t *testing.T) {
	vp := ViewProjection(DefaultCameraDistance, 1)

	// The origin projects to the middle of clip space, in front of the camera.
	x, y, w := vp[12], vp[13], vp[15]
	require.NotZero(t, w)
	assert.InDelta(t, 0, x/w, 1e-5)
	assert.InDelta(t, 0, y/w, 1e-5)
	assert.Greater(t, w, float32(0))
}

func TestHeadlessTarget(t *testing.T) {
	target := Headless(320, 200)
	assert.Nil(t, target.SurfaceDescriptor())
	assert.Equal(t, 320, target.Width())
	assert.Equal(t, 200, target.Height())
}
