package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/presentation"
)

// birdFixture assembles a tiny morph-animated triangle: three vertices, two POSITION morph
// targets, one ushort index list and a one-second animation.
type birdFixture struct {
	bin  []byte
	doc  map[string]any
	base []common.Vec3
	a, b []common.Vec3
}

func newBirdFixture(t *testing.T, withTargets bool) *birdFixture {
	t.Helper()
	f := &birdFixture{
		base: []common.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}},
		a:    []common.Vec3{{0, 0.5, 0}, {0, 0, 0}, {0, -0.5, 0}},
		b:    []common.Vec3{{0, -0.5, 0}, {0, 0, 0}, {0, 0.5, 0}},
	}

	var buf bytes.Buffer
	write := func(v any) {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}

	views := []map[string]any{}
	accessors := []map[string]any{}
	addVec3 := func(vs []common.Vec3) int {
		views = append(views, map[string]any{"buffer": 0, "byteOffset": buf.Len(), "byteLength": len(vs) * 12})
		for _, v := range vs {
			write(v)
		}
		accessors = append(accessors, map[string]any{
			"bufferView": len(views) - 1, "componentType": gltfComponentTypeFloat, "count": len(vs), "type": "VEC3",
		})
		return len(accessors) - 1
	}

	pos := addVec3(f.base)
	targetA := addVec3(f.a)
	targetB := addVec3(f.b)

	views = append(views, map[string]any{"buffer": 0, "byteOffset": buf.Len(), "byteLength": 6})
	write([]uint16{0, 1, 2, 0})
	accessors = append(accessors, map[string]any{
		"bufferView": len(views) - 1, "componentType": gltfComponentTypeUnsignedShort, "count": 3, "type": "SCALAR",
	})
	indices := len(accessors) - 1

	views = append(views, map[string]any{"buffer": 0, "byteOffset": buf.Len(), "byteLength": 12})
	write([]float32{0, 0.5, 1})
	accessors = append(accessors, map[string]any{
		"bufferView": len(views) - 1, "componentType": gltfComponentTypeFloat, "count": 3, "type": "SCALAR",
		"min": []float32{0}, "max": []float32{1},
	})
	times := len(accessors) - 1

	views = append(views, map[string]any{"buffer": 0, "byteOffset": buf.Len(), "byteLength": 24})
	write([]float32{1, 0, 0, 1, 1, 0})
	accessors = append(accessors, map[string]any{
		"bufferView": len(views) - 1, "componentType": gltfComponentTypeFloat, "count": 6, "type": "SCALAR",
	})
	weights := len(accessors) - 1

	prim := map[string]any{
		"attributes": map[string]int{"POSITION": pos},
		"indices":    indices,
	}
	if withTargets {
		prim["targets"] = []map[string]int{{"POSITION": targetA}, {"POSITION": targetB}}
	}

	f.bin = buf.Bytes()
	f.doc = map[string]any{
		"asset":       map[string]any{"version": "2.0"},
		"scene":       0,
		"scenes":      []map[string]any{{"nodes": []int{0}}},
		"nodes":       []map[string]any{{"name": "root", "children": []int{1}}, {"name": "bird", "mesh": 0}},
		"meshes":      []map[string]any{{"name": "bird", "primitives": []any{prim}}},
		"accessors":   accessors,
		"bufferViews": views,
		"animations": []map[string]any{{
			"name":     "flap",
			"channels": []map[string]any{{"sampler": 0, "target": map[string]any{"node": 1, "path": gltfAnimPathWeights}}},
			"samplers": []map[string]any{{"input": times, "output": weights}},
		}},
	}
	return f
}

// gltf returns the document as JSON with the buffer embedded as a data URI.
func (f *birdFixture) gltf(t *testing.T) []byte {
	t.Helper()
	f.doc["buffers"] = []map[string]any{{
		"uri":        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(f.bin),
		"byteLength": len(f.bin),
	}}
	out, err := json.Marshal(f.doc)
	require.NoError(t, err)
	return out
}

// glb returns the document packed in a GLB container.
func (f *birdFixture) glb(t *testing.T) []byte {
	t.Helper()
	f.doc["buffers"] = []map[string]any{{"byteLength": len(f.bin)}}
	js, err := json.Marshal(f.doc)
	require.NoError(t, err)
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}
	bin := append([]byte(nil), f.bin...)
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}

	var out bytes.Buffer
	total := gltfGLBHeaderSize + gltfGLBChunkHead + len(js) + gltfGLBChunkHead + len(bin)
	for _, v := range []uint32{gltfGLBMagic, gltfGLBVersion, uint32(total), uint32(len(js)), gltfGLBChunkJSON} {
		require.NoError(t, binary.Write(&out, binary.LittleEndian, v))
	}
	out.Write(js)
	for _, v := range []uint32{uint32(len(bin)), gltfGLBChunkBIN} {
		require.NoError(t, binary.Write(&out, binary.LittleEndian, v))
	}
	out.Write(bin)
	return out.Bytes()
}

func assertBird(t *testing.T, f *birdFixture, src *PoseSource) {
	t.Helper()
	assert.Equal(t, "bird", src.Name)
	assert.Equal(t, 3, src.VertexCount())
	assert.Equal(t, f.base, src.BasePositions)
	assert.Equal(t, []uint32{0, 1, 2}, src.Indices)
	require.Len(t, src.Poses, 2)
	assert.Equal(t, f.a, []common.Vec3(src.Poses[0]))
	assert.Equal(t, f.b, []common.Vec3(src.Poses[1]))
	for _, c := range src.Colors {
		assert.Equal(t, common.Vec3{1, 1, 1}, c)
	}
	assert.Equal(t, float32(1), src.Duration)
	assert.Equal(t, "flap", src.Clip)
	assert.Equal(t, 60, src.FramesPerCycle(60))
}

func TestLoadReaderGLTF(t *testing.T) {
	f := newBirdFixture(t, true)
	l := NewLoader(BackendTypeGLTF)

	src, err := l.LoadReader("parrot", bytes.NewReader(f.gltf(t)), false)
	require.NoError(t, err)
	assertBird(t, f, src)

	// Cached: the reader is not consulted again.
	again, err := l.LoadReader("parrot", nil, false)
	require.NoError(t, err)
	assert.Same(t, src, again)
	assert.Same(t, src, l.Get("parrot"))
	assert.Len(t, l.Sources(), 1)
}

func TestLoadReaderGLB(t *testing.T) {
	f := newBirdFixture(t, true)
	l := NewLoader(BackendTypeGLTF)

	src, err := l.LoadReader("parrot.glb", bytes.NewReader(f.glb(t)), true)
	require.NoError(t, err)
	assertBird(t, f, src)
}

func TestLoadFromFile(t *testing.T) {
	f := newBirdFixture(t, true)
	dir := t.TempDir()
	path := filepath.Join(dir, "Flamingo.glb")
	require.NoError(t, os.WriteFile(path, f.glb(t), 0o644))

	l := NewLoader(BackendTypeGLTF)
	src, err := l.Load(path)
	require.NoError(t, err)
	assertBird(t, f, src)

	strip, err := src.Bake(60)
	require.NoError(t, err)
	assert.Equal(t, 4, strip.Width)
	assert.Equal(t, 64, strip.Height)
	assert.Equal(t, 60, strip.Frames)
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	_, err := NewLoader(BackendTypeGLTF).Load("bird.obj")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported model format")
}

func TestLoadRequiresMorphTargets(t *testing.T) {
	f := newBirdFixture(t, false)
	_, err := NewLoader(BackendTypeGLTF).LoadReader("static", bytes.NewReader(f.gltf(t)), false)
	assert.ErrorIs(t, err, ErrNoMorphTargets)
}

func TestLoadRejectsBadDocuments(t *testing.T) {
	l := NewLoader(BackendTypeGLTF)

	_, err := l.LoadReader("v1", bytes.NewReader([]byte(`{"asset":{"version":"1.0"}}`)), false)
	assert.ErrorIs(t, err, errInvalidGLTFVersion)

	_, err = l.LoadReader("empty", bytes.NewReader([]byte(`{"asset":{"version":"2.0"}}`)), false)
	assert.ErrorIs(t, err, ErrNoMesh)

	_, err = l.LoadReader("short", bytes.NewReader([]byte("glTF")), true)
	assert.ErrorIs(t, err, errInvalidGLB)
}

func TestFramesPerCycleWithoutAnimation(t *testing.T) {
	src := &PoseSource{Poses: make([]presentation.PoseFrame, 3)}
	assert.Equal(t, 3, src.FramesPerCycle(60))

	src.Duration = 0.7
	assert.Equal(t, 42, src.FramesPerCycle(60))
}

func TestWithSourcePrepopulatesCache(t *testing.T) {
	src := &PoseSource{Name: "procedural"}
	l := NewLoader(BackendTypeGLTF, WithSource("procedural", src))

	got, err := l.Load("procedural")
	require.NoError(t, err)
	assert.Same(t, src, got)
}
