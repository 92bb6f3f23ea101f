package displacement

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-flock/common"
)

func TestPlaneMesh(t *testing.T) {
	m := PlaneMesh(4, 2, 2, 1)
	require.Len(t, m.Positions, 12)
	assert.Equal(t, 4, m.FaceCount())
	assert.Equal(t, common.Vec3{-2, -1, 0}, m.Positions[0])
	assert.Equal(t, common.Vec3{2, 1, 0}, m.Positions[8])
	for _, n := range m.Normals {
		assert.Equal(t, common.Vec3{0, 0, 1}, n)
	}
}

func TestTessellateBoundsEdges(t *testing.T) {
	m := Tessellate(PlaneMesh(16, 16, 1, 1), 4, 8)
	assert.Greater(t, m.FaceCount(), 2)
	require.Len(t, m.Normals, len(m.Positions))

	var area float32
	for f := range m.FaceCount() {
		p := m.Positions[f*3 : f*3+3]
		for i := range 3 {
			edge := common.Length3(common.Sub3(p[i], p[(i+1)%3]))
			assert.LessOrEqual(t, edge, float32(4)+1e-4)
		}
		ab, ac := common.Sub3(p[1], p[0]), common.Sub3(p[2], p[0])
		area += math32.Abs(ab[0]*ac[1]-ab[1]*ac[0]) / 2
	}
	assert.InDelta(t, 256, area, 1e-2)
}

func TestTessellateStopsAtIterationLimit(t *testing.T) {
	m := Tessellate(PlaneMesh(16, 16, 1, 1), 0.01, 1)
	assert.Equal(t, 4, m.FaceCount())

	unchanged := Tessellate(PlaneMesh(1, 1, 1, 1), 8, 3)
	assert.Equal(t, 2, unchanged.FaceCount())
}

func TestEffectFacesShareAttributes(t *testing.T) {
	e, err := NewEffect(PlaneMesh(10, 10, 3, 3), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	for f := range e.Mesh().FaceCount() {
		d := e.FaceDisplacement(f)
		assert.GreaterOrEqual(t, d, float32(-5))
		assert.LessOrEqual(t, d, float32(5))

		c := e.FaceColor(f)
		for _, ch := range c {
			assert.GreaterOrEqual(t, ch, float32(0))
			assert.LessOrEqual(t, ch, float32(1))
		}
		// Lightness 0.8 at full saturation keeps the brightest channel at 1.
		assert.InDelta(t, 1, max(c[0], c[1], c[2]), 1e-4)
	}
}

func TestDisplaceFollowsAmplitude(t *testing.T) {
	mesh := PlaneMesh(2, 2, 1, 1)
	e, err := NewEffect(mesh, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	// sin(3t) = -1 collapses the effect back onto the mesh.
	rest := e.Displace(-math32.Pi / 6)
	for i, p := range rest {
		assert.InDeltaSlice(t, mesh.Positions[i][:], p[:], 1e-4)
	}

	peak := e.Displace(math32.Pi / 6)
	for i, p := range peak {
		want := mesh.Positions[i]
		want[2] += 2 * e.FaceDisplacement(i/3)
		assert.InDeltaSlice(t, want[:], p[:], 1e-4)
	}

	assert.InDelta(t, 1, Amplitude(0), 1e-6)
}

func TestShade(t *testing.T) {
	e, err := NewEffect(PlaneMesh(2, 2, 1, 1), rand.New(rand.NewSource(5)), WithPalette(0, 1, 0.5))
	require.NoError(t, err)

	// Pure red lit by 1/sqrt(3) of diffuse plus ambient.
	want := 1/math32.Sqrt(3) + ambient
	got := e.Shade(0)
	assert.InDelta(t, want, got[0], 1e-4)
	assert.InDelta(t, 0, got[1], 1e-4)
}

func TestNewEffectRejectsBadMeshes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, err := NewEffect(Mesh{}, rng)
	assert.ErrorIs(t, err, ErrInvalidMesh)

	m := PlaneMesh(1, 1, 1, 1)
	m.Normals = m.Normals[:3]
	_, err = NewEffect(m, rng)
	assert.ErrorIs(t, err, ErrInvalidMesh)

	assert.Panics(t, func() { _, _ = NewEffect(PlaneMesh(1, 1, 1, 1), nil) })
}

func TestWithMaxDisplacement(t *testing.T) {
	e, err := NewEffect(PlaneMesh(4, 4, 4, 4), rand.New(rand.NewSource(9)), WithMaxDisplacement(0))
	require.NoError(t, err)
	for f := range e.Mesh().FaceCount() {
		assert.Zero(t, e.FaceDisplacement(f))
	}
}
