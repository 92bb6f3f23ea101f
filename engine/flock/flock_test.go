package flock

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/simulation"
)

// square places four entities on the corners of an axis-aligned square in the z = 0 plane.
func square(spacing float32) []common.Vec4 {
	return []common.Vec4{
		{0, 0, 0, 1},
		{spacing, 0, 0, 1},
		{0, spacing, 0, 1},
		{spacing, spacing, 0, 1},
	}
}

func velocities(t *testing.T, f *Flock) []common.Vec4 {
	t.Helper()
	g, err := f.Velocity()
	require.NoError(t, err)
	return g.Cells()
}

func TestCohesionPullsTowardNeighbours(t *testing.T) {
	// At spacing 50 the edge pairs sit in the cohesion band of the default 20/20/20 zones
	// and the diagonals are out of range.
	pos := square(50)
	f, err := New(Config{
		Width:             2,
		InitialPositions:  pos,
		InitialVelocities: make([]common.Vec4, 4),
	})
	require.NoError(t, err)
	defer f.Release()

	require.NoError(t, f.Step(common.FrameState{Time: 0.016, Delta: 0.016}, DefaultParams()))

	for i, v := range velocities(t, f) {
		var centroid common.Vec3
		for j := range pos {
			if j == i || common.Length3(common.Sub3(common.XYZ(pos[j]), common.XYZ(pos[i]))) > 60 {
				continue
			}
			centroid = common.Add3(centroid, common.Scale3(common.XYZ(pos[j]), 0.5))
		}
		toward := common.Sub3(centroid, common.XYZ(pos[i]))
		assert.Equal(t, math32.Signbit(toward[0]), math32.Signbit(v[0]), "entity %d x", i)
		assert.Equal(t, math32.Signbit(toward[1]), math32.Signbit(v[1]), "entity %d y", i)
		assert.NotZero(t, v[0], "entity %d", i)
		assert.NotZero(t, v[1], "entity %d", i)
		assert.Equal(t, float32(0), v[2])
		assert.Equal(t, float32(1), v[3])
	}
}

func TestSeparationPushesApart(t *testing.T) {
	pos := square(10)
	f, err := New(Config{
		Width:             2,
		InitialPositions:  pos,
		InitialVelocities: make([]common.Vec4, 4),
	})
	require.NoError(t, err)
	defer f.Release()

	require.NoError(t, f.Step(common.FrameState{Delta: 0.016}, DefaultParams()))

	center := common.Vec3{5, 5, 0}
	for i, v := range velocities(t, f) {
		away := common.Sub3(common.XYZ(pos[i]), center)
		assert.Greater(t, common.Dot3(common.XYZ(v), away), float32(0), "entity %d", i)
	}
}

func TestDegenerateThresholdsFallIntoCohesion(t *testing.T) {
	z := newZone(Params{CohesionDistance: 20})
	b, percent := z.classify(100)
	assert.Equal(t, bandCohesion, b)
	assert.InDelta(t, 0.25, percent, 1e-6)

	f := z.cohesionForce(percent, 0.016)
	assert.False(t, math32.IsNaN(f) || math32.IsInf(f, 0))

	// Alignment threshold at 1 leaves a zero-width cohesion band.
	z = newZone(Params{SeparationDistance: 10, AlignmentDistance: 10})
	b, percent = z.classify(400)
	assert.Equal(t, bandCohesion, b)
	assert.InDelta(t, 0.5*0.016, z.cohesionForce(percent, 0.016), 1e-6)
}

func TestZeroInnerBandsStepIntoCohesion(t *testing.T) {
	// Separation and alignment at zero leave only the cohesion branch. At spacing 18 the edge
	// neighbours sit at 81% of the squared radius, where cohesion attracts; diagonals are out
	// of range.
	p := DefaultParams()
	p.SeparationDistance, p.AlignmentDistance, p.CohesionDistance = 0, 0, 20
	p.CenterAttraction = 0

	pos := square(18)
	f, err := New(Config{Width: 2, InitialPositions: pos, InitialVelocities: make([]common.Vec4, 4)})
	require.NoError(t, err)
	defer f.Release()

	require.NoError(t, f.Step(common.FrameState{Delta: 0.016}, p))

	center := common.Vec3{9, 9, 0}
	for i, v := range velocities(t, f) {
		for k, c := range v {
			assert.False(t, math32.IsNaN(c) || math32.IsInf(c, 0), "entity %d component %d", i, k)
		}
		toward := common.Sub3(center, common.XYZ(pos[i]))
		assert.Greater(t, common.Dot3(common.XYZ(v), toward), float32(0), "entity %d", i)
		assert.Equal(t, float32(0), v[2])
	}
}

func TestZeroZoneHasNoInteractions(t *testing.T) {
	z := newZone(Params{})
	b, _ := z.classify(1)
	assert.Equal(t, bandNone, b)

	p := DefaultParams()
	p.SeparationDistance, p.AlignmentDistance, p.CohesionDistance = 0, 0, 0
	p.CenterAttraction = 0
	f, err := New(Config{Width: 2, InitialPositions: square(10), InitialVelocities: make([]common.Vec4, 4)})
	require.NoError(t, err)
	require.NoError(t, f.Step(common.FrameState{Delta: 0.016}, p))
	for _, v := range velocities(t, f) {
		assert.Equal(t, common.Vec4{0, 0, 0, 1}, v)
	}
}

func TestFreedomFactorIsInert(t *testing.T) {
	step := func(freedom float32) []common.Vec4 {
		p := DefaultParams()
		p.FreedomFactor = freedom
		f, err := New(Config{Width: 2, InitialPositions: square(10), InitialVelocities: make([]common.Vec4, 4)})
		require.NoError(t, err)
		defer f.Release()
		require.NoError(t, f.Step(common.FrameState{Delta: 0.016}, p))
		return velocities(t, f)
	}

	assert.Equal(t, step(0), step(5))
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	p := DefaultParams()
	p.SpeedLimit = -1
	assert.ErrorIs(t, p.Validate(), ErrInvalidParams)

	p = DefaultParams()
	p.PhaseWrap = 0
	assert.ErrorIs(t, p.Validate(), ErrInvalidParams)
}

func TestPredatorRepelsAndRaisesLimit(t *testing.T) {
	p := DefaultParams()
	p.CenterAttraction = 0
	p.PredatorActive = true
	p.Predator = common.Vec3{50, 0, 0}

	f, err := New(Config{
		Width:             1,
		InitialPositions:  []common.Vec4{{100, 0, 0, 1}},
		InitialVelocities: []common.Vec4{{12, 0, 0, 1}},
	})
	require.NoError(t, err)

	require.NoError(t, f.Step(common.FrameState{Delta: 0.016}, p))

	v := velocities(t, f)[0]
	want := 12 + (2500.0/22500.0-1)*-0.016*100
	assert.InDelta(t, want, v[0], 1e-4)
	assert.Greater(t, v[0], p.SpeedLimit)
}

func TestPredatorIgnoresDepth(t *testing.T) {
	p := DefaultParams()
	p.CenterAttraction = 0
	p.PredatorActive = true
	p.Predator = common.Vec3{0, 0, 1000}

	f, err := New(Config{
		Width:             1,
		InitialPositions:  []common.Vec4{{0, 0, 0, 1}},
		InitialVelocities: []common.Vec4{{1, 0, 0, 1}},
	})
	require.NoError(t, err)

	// The predator is straight above in z, so the projected direction is zero and the term is skipped.
	require.NoError(t, f.Step(common.FrameState{Delta: 0.016}, p))
	assert.Equal(t, common.Vec4{1, 0, 0, 1}, velocities(t, f)[0])
}

func TestSpeedLimit(t *testing.T) {
	p := DefaultParams()
	p.CenterAttraction = 0

	f, err := New(Config{
		Width:             1,
		InitialPositions:  []common.Vec4{{0, 0, 0, 1}},
		InitialVelocities: []common.Vec4{{30, 40, 0, 1}},
	})
	require.NoError(t, err)
	require.NoError(t, f.Step(common.FrameState{Delta: 0.016}, p))

	v := velocities(t, f)[0]
	assert.InDelta(t, 5.4, v[0], 1e-4)
	assert.InDelta(t, 7.2, v[1], 1e-4)
	assert.InDelta(t, 9, common.Length3(common.XYZ(v)), 1e-4)
}

func TestPositionIntegratesPreviousVelocity(t *testing.T) {
	p := DefaultParams()
	p.CenterAttraction = 0

	f, err := New(Config{
		Width:             1,
		InitialPositions:  []common.Vec4{{0, 0, 0, 1}},
		InitialVelocities: []common.Vec4{{1, 2, 3, 1}},
	})
	require.NoError(t, err)
	require.NoError(t, f.Step(common.FrameState{Delta: 0.1}, p))

	g, err := f.Position()
	require.NoError(t, err)
	got := g.Cell(0)
	assert.InDelta(t, 1.5, got[0], 1e-5)
	assert.InDelta(t, 3.0, got[1], 1e-5)
	assert.InDelta(t, 4.5, got[2], 1e-5)

	phase := 1 + 0.1 + math32.Sqrt(10)*0.1*3 + 2*0.1*6
	assert.InDelta(t, phase, got[3], 1e-5)
}

func TestPhaseWraps(t *testing.T) {
	f, err := New(Config{
		Width:             1,
		InitialPositions:  []common.Vec4{{0, 0, 0, 62.8}},
		InitialVelocities: []common.Vec4{{0, 0, 0, 1}},
	})
	require.NoError(t, err)
	require.NoError(t, f.Step(common.FrameState{Delta: 0.5}, DefaultParams()))

	g, err := f.Position()
	require.NoError(t, err)
	assert.InDelta(t, 62.8+0.5-62.83, g.Cell(0)[3], 1e-4)
}

func TestStepStaysFinite(t *testing.T) {
	p := DefaultParams()
	p.PredatorActive = true
	p.Predator = common.Vec3{10, 20, 0}

	f, err := New(Config{Width: 8, Seed: 3, Workers: 4})
	require.NoError(t, err)
	defer f.Release()

	for i := 0; i < 30; i++ {
		require.NoError(t, f.Step(common.FrameState{Time: float32(i) * 0.5, Delta: 0.5}, p))
	}
	pos, err := f.Position()
	require.NoError(t, err)
	for i, c := range pos.Cells() {
		assert.True(t, common.Finite4(c), "position %d: %v", i, c)
		assert.GreaterOrEqual(t, c[3], float32(0))
		assert.Less(t, c[3], p.PhaseWrap)
	}
	for i, c := range velocities(t, f) {
		assert.True(t, common.Finite4(c), "velocity %d: %v", i, c)
		assert.LessOrEqual(t, common.Length3(common.XYZ(c)), p.SpeedLimit+p.PredatorBoost+1e-3)
	}
}

func TestWorkerCountDoesNotChangeResult(t *testing.T) {
	run := func(workers int) []common.Vec4 {
		f, err := New(Config{Width: 8, Seed: 11, Workers: workers})
		require.NoError(t, err)
		defer f.Release()
		for i := 0; i < 5; i++ {
			require.NoError(t, f.Step(common.FrameState{Delta: 0.016}, DefaultParams()))
		}
		g, err := f.Simulation().Snapshot(PositionChannel)
		require.NoError(t, err)
		return g.Cells()
	}
	assert.Equal(t, run(1), run(4))
}

func TestInitialFillRanges(t *testing.T) {
	f, err := New(Config{Width: 4, Seed: 9})
	require.NoError(t, err)
	assert.Equal(t, 16, f.Count())
	assert.Equal(t, DefaultBounds, f.Bounds())

	pos, err := f.Position()
	require.NoError(t, err)
	for _, c := range pos.Cells() {
		for k := 0; k < 3; k++ {
			assert.GreaterOrEqual(t, c[k], -DefaultBounds/2)
			assert.Less(t, c[k], DefaultBounds/2)
		}
		assert.Equal(t, float32(1), c[3])
	}
	vel, err := f.Velocity()
	require.NoError(t, err)
	for _, c := range vel.Cells() {
		assert.LessOrEqual(t, math32.Abs(c[0]), initialSpeed)
		assert.Equal(t, float32(1), c[3])
	}
}

func TestNewRejectsWrongInitialLength(t *testing.T) {
	_, err := New(Config{Width: 2, InitialPositions: make([]common.Vec4, 3)})
	assert.ErrorIs(t, err, simulation.ErrConfiguration)
}
