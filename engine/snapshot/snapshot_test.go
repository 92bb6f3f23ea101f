package snapshot

import (
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/displacement"
	"github.com/Carmen-Shannon/oxy-flock/engine/presentation"
)

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r > 0xF000 && g > 0xF000 && b > 0xF000
}

func singleInstance(pos common.Vec3) presentation.RenderCommand {
	return presentation.RenderCommand{
		Instances: []presentation.Instance{{Position: pos, Rotation: common.Mat3Identity(), Scale: 1}},
	}
}

func TestRenderDrawsInstances(t *testing.T) {
	s, err := NewSnapshotter(WithSize(200, 100), WithBounds(200))
	require.NoError(t, err)

	img := s.Render(singleInstance(common.Vec3{50, 0, 0}))
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())

	// x = 50 maps to column 150; z = 0 maps to the middle row.
	assert.False(t, isWhite(img.At(150, 50)), "instance pixel should be inked")
	assert.True(t, isWhite(img.At(20, 10)), "corner should stay background")
}

func TestRenderEmptyCommandIsBackground(t *testing.T) {
	s, err := NewSnapshotter(WithSize(32, 32), WithBackground("#FFFFCC"))
	require.NoError(t, err)

	img := s.Render(presentation.RenderCommand{})
	r, g, b, _ := img.At(16, 16).RGBA()
	assert.InDelta(t, 0xFFFF, r, 0x200)
	assert.InDelta(t, 0xFFFF, g, 0x200)
	assert.InDelta(t, 0xCCCC, b, 0x200)
}

func TestConsumeWritesEveryNth(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	s, err := NewSnapshotter(WithSize(16, 16), WithDir(dir), WithEvery(2))
	require.NoError(t, err)

	for range 3 {
		require.NoError(t, s.Consume(singleInstance(common.Vec3{})))
	}
	assert.Equal(t, 2, s.Written())

	for _, name := range []string{"frame-000000.png", "frame-000002.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size())
	}
	_, err = os.Stat(filepath.Join(dir, "frame-000001.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestNewSnapshotterRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  SnapshotterBuilderOption
	}{
		{"zero size", WithSize(0, 10)},
		{"negative bounds", WithBounds(-1)},
		{"bad background", WithBackground("white")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSnapshotter(tt.opt)
			assert.ErrorIs(t, err, ErrInvalidSnapshotter)
		})
	}
}

func TestRenderEffectFillsFrame(t *testing.T) {
	effect, err := displacement.NewEffect(displacement.PlaneMesh(100, 100, 4, 4), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	s, err := NewSnapshotter(WithSize(64, 64))
	require.NoError(t, err)

	img := s.RenderEffect(effect, 0)
	assert.False(t, isWhite(img.At(32, 32)), "the fitted mesh should cover the centre")
}

func TestSaveEffectWritesPNG(t *testing.T) {
	effect, err := displacement.NewEffect(displacement.PlaneMesh(10, 10, 2, 2), rand.New(rand.NewSource(2)))
	require.NoError(t, err)
	s, err := NewSnapshotter(WithSize(32, 32))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "effect.png")
	require.NoError(t, s.SaveEffect(path, effect, 1))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
