package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-flock/engine"
	"github.com/Carmen-Shannon/oxy-flock/engine/config"
	"github.com/Carmen-Shannon/oxy-flock/engine/flock"
	"github.com/Carmen-Shannon/oxy-flock/engine/presentation"
	"github.com/Carmen-Shannon/oxy-flock/engine/stream"
)

const smallConfig = `
[simulation]
width = 4

[presentation]
model_path = "does-not-exist.glb"

[snapshot]
every = 1
width = 16
height = 16
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flock.toml")
	require.NoError(t, os.WriteFile(path, []byte(smallConfig), 0o644))
	return path
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	require.NoError(t, root.Execute(), out.String())
	return out.String()
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestBuildSceneWithoutModel(t *testing.T) {
	cfg, err := config.Load(writeConfig(t))
	require.NoError(t, err)

	sc, err := buildScene(cfg)
	require.NoError(t, err)
	defer sc.release()

	assert.Nil(t, sc.strip)
	assert.Nil(t, sc.source)
	assert.Equal(t, 4, sc.presenter.Count())
}

func TestSnapshotCommandWritesFrames(t *testing.T) {
	dir := t.TempDir()
	run(t, "snapshot", "--config", writeConfig(t), "--frames", "3", "--out", dir)

	matches, err := filepath.Glob(filepath.Join(dir, "frame-*.png"))
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestEffectCommandWritesFrames(t *testing.T) {
	dir := t.TempDir()
	out := run(t, "effect", "--frames", "2", "--size", "16", "--out", dir)

	matches, err := filepath.Glob(filepath.Join(dir, "effect-*.png"))
	require.NoError(t, err)
	assert.Len(t, matches, 2)
	assert.Contains(t, out, "2 frames written")
}

func TestBakeCommandReportsMissingModel(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"bake", filepath.Join(t.TempDir(), "missing.glb")})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	assert.Error(t, root.Execute())
}

type countingSink struct {
	frames atomic.Int64
}

func (s *countingSink) Consume(presentation.RenderCommand) error {
	s.frames.Add(1)
	return nil
}

func TestRunEngineStopWaitsForLoop(t *testing.T) {
	cfg, err := config.Load(writeConfig(t))
	require.NoError(t, err)
	sc, err := buildScene(cfg)
	require.NoError(t, err)
	defer sc.release()

	sink := &countingSink{}
	eng := engine.NewEngine(append(sc.engineOptions(cfg), engine.WithSink(sink))...)

	stop := runEngine(eng)
	require.Eventually(t, func() bool { return sink.frames.Load() > 0 }, 5*time.Second, 5*time.Millisecond)
	stop()

	// Once stop returns the loop is gone, so the scene can be released without racing a tick.
	frames := sink.frames.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, frames, sink.frames.Load())
}

func TestApplyControl(t *testing.T) {
	cfg, err := config.Load(writeConfig(t))
	require.NoError(t, err)
	sc, err := buildScene(cfg)
	require.NoError(t, err)
	defer sc.release()

	eng := engine.NewEngine(sc.engineOptions(cfg)...)
	apply := applyControl(eng)

	apply(stream.Control{Type: stream.TypeParams, Params: json.RawMessage(`{"cohesion":42}`)})
	params := flock.DefaultParams()
	params.CohesionDistance = 42
	assert.Equal(t, params, eng.Params())

	// A partial message only touches the fields it names.
	apply(stream.Control{Type: stream.TypeParams, Params: json.RawMessage(`{"separation":30}`)})
	params.SeparationDistance = 30
	assert.Equal(t, params, eng.Params())
	assert.Equal(t, flock.DefaultParams().SpeedLimit, eng.Params().SpeedLimit)
	assert.Equal(t, flock.DefaultParams().PhaseWrap, eng.Params().PhaseWrap)

	// Invalid merged params leave the running ones alone.
	apply(stream.Control{Type: stream.TypeParams, Params: json.RawMessage(`{"speed_limit":-1}`)})
	assert.Equal(t, params, eng.Params())

	apply(stream.Control{Type: stream.TypeCount, Count: 2})
	assert.Equal(t, 2, sc.presenter.Count())

	apply(stream.Control{Type: stream.TypeSize, Size: 0.5})
	assert.InDelta(t, 0.5, sc.presenter.Size(), 1e-6)
}
