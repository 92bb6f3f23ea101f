package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestFrameStateClamped(t *testing.T) {
	tests := []struct {
		name  string
		delta float32
		want  float32
	}{
		{"within range", 0.016, 0.016},
		{"large pause", 5.0, 1.0},
		{"negative", -0.5, 0},
		{"nan", math32.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FrameState{Time: 3, Delta: tt.delta}.Clamped(MaxFrameDelta)
			assert.Equal(t, tt.want, got.Delta)
			assert.Equal(t, float32(3), got.Time)
		})
	}
}

func TestFrameStateAdvanceIsMonotonic(t *testing.T) {
	f := FrameState{}
	f = f.Advance(0.5, MaxFrameDelta)
	f = f.Advance(-1, MaxFrameDelta)
	assert.Equal(t, float32(0.5), f.Time)
	assert.Equal(t, float32(0), f.Delta)

	f = f.Advance(5, MaxFrameDelta)
	assert.Equal(t, float32(5.5), f.Time)
	assert.Equal(t, float32(1), f.Delta)
}

func TestNextPowerOf2(t *testing.T) {
	for in, want := range map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 60: 64, 64: 64, 65: 128, 497: 512} {
		assert.Equal(t, want, NextPowerOf2(in), "n=%d", in)
	}
}

func TestLerp(t *testing.T) {
	assert.Equal(t, float32(5), Lerp(0, 10, 0.5))
	assert.Equal(t, float32(10), Lerp(0, 10, 3))
	assert.Equal(t, float32(0), Lerp(0, 10, -1))
	for _, tt := range []float32{0, 0.13, 0.5, 0.99, 1} {
		assert.Equal(t, float32(1.2345), Lerp(1.2345, 1.2345, tt))
	}
}

func TestMod(t *testing.T) {
	assert.InDelta(t, 1.0, Mod(63.83, 62.83), 1e-4)
	assert.InDelta(t, 0.75, Mod(-0.25, 1), 1e-6)
	assert.Equal(t, float32(3), Mod(3, 0))
}

func TestNormalize3(t *testing.T) {
	v, ok := Normalize3(Vec3{3, 0, 4}, 1e-4)
	assert.True(t, ok)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[2], 1e-6)

	_, ok = Normalize3(Vec3{0, 0, 0}, 1e-4)
	assert.False(t, ok)
}

func TestMat3(t *testing.T) {
	id := Mat3Identity()
	r := RotationY(math32.Pi / 2)
	assert.Equal(t, r, MulMat3(id, r))

	v := MulMat3Vec3(r, Vec3{1, 0, 0})
	assert.InDelta(t, 0, v[0], 1e-6)
	assert.InDelta(t, -1, v[2], 1e-6)
}

func TestModelMatrix(t *testing.T) {
	out := make([]float32, 16)
	ModelMatrix(out, Mat3Identity(), Vec3{1, 2, 3}, 2)
	assert.Equal(t, []float32{2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 2, 0, 1, 2, 3, 1}, out)
}

func TestLookAtFromPositiveZ(t *testing.T) {
	var view [16]float32
	LookAt(view[:], 0, 0, 350, 0, 0, 0, 0, 1, 0)

	want := [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, -350, 1,
	}
	assert.Equal(t, want, view)
}

func TestMul4Aliasing(t *testing.T) {
	a := [16]float32{2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 2, 0, 1, 2, 3, 1}
	id := [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

	out := a
	Mul4(out[:], out[:], id[:])
	assert.Equal(t, a, out)
}

func TestCross3(t *testing.T) {
	assert.Equal(t, Vec3{0, 0, 1}, Cross3(Vec3{1, 0, 0}, Vec3{0, 1, 0}))
}
