package engine

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/flock"
	"github.com/Carmen-Shannon/oxy-flock/engine/presentation"
)

type recordingSink struct {
	mu   sync.Mutex
	cmds []presentation.RenderCommand
	err  error
}

func (s *recordingSink) Consume(cmd presentation.RenderCommand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cmds = append(s.cmds, cmd)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cmds)
}

func newTestEngine(t *testing.T, options ...EngineBuilderOption) *engine {
	t.Helper()
	f, err := flock.New(flock.Config{Width: 4, Seed: 1})
	require.NoError(t, err)
	t.Cleanup(f.Release)

	p := presentation.NewPresenter(4, rand.New(rand.NewSource(1)))
	options = append([]EngineBuilderOption{WithFlock(f), WithPresenter(p)}, options...)
	return NewEngine(options...).(*engine)
}

func TestTickDispatchesToSinks(t *testing.T) {
	sink := &recordingSink{}
	e := newTestEngine(t, WithSink(sink))

	cmd, err := e.Tick(0.5)
	require.NoError(t, err)
	require.Equal(t, 1, sink.count())

	assert.Len(t, cmd.Instances, 4, "a quarter of the grid is visible by default")
	assert.Equal(t, common.FrameState{Time: 0.5, Delta: 0.5}, cmd.Frame)

	_, err = e.Tick(2)
	require.NoError(t, err)
	assert.Equal(t, common.FrameState{Time: 2.5, Delta: common.MaxFrameDelta}, e.Frame())
}

func TestTickHonoursMaxDelta(t *testing.T) {
	e := newTestEngine(t, WithMaxDelta(0.1))

	_, err := e.Tick(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, e.Frame().Delta, 1e-6)
	assert.InDelta(t, 0.5, e.Frame().Time, 1e-6)
}

func TestPausedTickKeepsDrawing(t *testing.T) {
	sink := &recordingSink{}
	e := newTestEngine(t, WithSink(sink))

	_, err := e.Tick(0.1)
	require.NoError(t, err)
	before, err := e.flock.Position()
	require.NoError(t, err)
	snapshot := before.Clone()

	e.SetPaused(true)
	_, err = e.Tick(0.1)
	require.NoError(t, err)

	after, err := e.flock.Position()
	require.NoError(t, err)
	assert.Equal(t, snapshot.Cells(), after.Cells())
	assert.InDelta(t, 0.1, e.Frame().Time, 1e-6)
	assert.Equal(t, 2, sink.count())
}

func TestPointerLastsOneTick(t *testing.T) {
	e := newTestEngine(t)

	e.SetPointer(0.5, -0.5)
	assert.True(t, e.pointerActive)

	_, err := e.Tick(0.016)
	require.NoError(t, err)
	assert.False(t, e.pointerActive)

	e.SetPointer(0, 0)
	e.ClearPointer()
	assert.False(t, e.pointerActive)
}

func TestPointerToWorld(t *testing.T) {
	assert.Equal(t, common.Vec3{200, -100, 0}, PointerToWorld(1, 0.5, 400))
	assert.Equal(t, common.Vec3{0, 0, 0}, PointerToWorld(0, 0, 800))
}

func TestSinkErrorsDoNotStopOtherSinks(t *testing.T) {
	boom := errors.New("boom")
	failing := &recordingSink{err: boom}
	healthy := &recordingSink{}
	e := newTestEngine(t, WithSink(failing))
	e.AddSink(healthy)

	_, err := e.Tick(0.016)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSink)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, healthy.count())
}

func TestHandleKey(t *testing.T) {
	e := newTestEngine(t)

	e.handleKey(common.KeyP)
	assert.True(t, e.Paused())
	e.handleKey(common.KeyP)
	assert.False(t, e.Paused())

	e.handleKey(common.KeyEqual)
	assert.Equal(t, 8, e.presenter.Count())
	e.handleKey(common.KeyMinus)
	e.handleKey(common.KeyMinus)
	assert.Equal(t, 2, e.presenter.Count())

	size := e.presenter.Size()
	e.handleKey(common.KeyUp)
	assert.InDelta(t, size*1.1, e.presenter.Size(), 1e-6)

	params := flock.DefaultParams()
	params.SpeedLimit = 1
	e.SetParams(params)
	e.handleKey(common.KeyR)
	assert.Equal(t, flock.DefaultParams(), e.Params())
}

func TestRunUntilQuit(t *testing.T) {
	sink := &recordingSink{}
	e := newTestEngine(t, WithSink(sink), WithTickRate(500))

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	require.Eventually(t, func() bool { return sink.count() >= 3 }, 5*time.Second, 5*time.Millisecond)
	e.SetTickRate(250)
	e.Quit()
	e.Quit()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
}

func TestNewEngineRequiresFlock(t *testing.T) {
	assert.Panics(t, func() { NewEngine() })
}
