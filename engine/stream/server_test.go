package stream

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/flock"
	"github.com/Carmen-Shannon/oxy-flock/engine/presentation"
)

func dial(t *testing.T, srv Server) (*websocket.Conn, func()) {
	t.Helper()
	ts := httptest.NewServer(srv)
	url := "ws" + strings.TrimPrefix(ts.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return srv.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	return conn, func() {
		conn.Close()
		ts.Close()
	}
}

func TestConsumeBroadcastsFrame(t *testing.T) {
	srv := NewServer()
	conn, done := dial(t, srv)
	defer done()

	cmd := presentation.RenderCommand{
		Frame:    common.FrameState{Time: 1.5, Delta: 0.016},
		ModelYaw: 0.5,
		Instances: []presentation.Instance{
			{Index: 3, Position: common.Vec3{1, 2, 3}, Rotation: common.Mat3Identity(), Scale: 0.2, Phase: 4, AnimationRow: 7},
		},
	}
	require.NoError(t, srv.Consume(cmd))

	var got FrameMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&got))

	assert.Equal(t, TypeFrame, got.Type)
	assert.Equal(t, float32(1.5), got.Time)
	assert.Equal(t, 1, got.Count)
	assert.Zero(t, got.StripRows)
	require.Len(t, got.Instances, 1)
	assert.Equal(t, 3, got.Instances[0].Index)
	assert.Equal(t, common.Vec3{1, 2, 3}, got.Instances[0].Position)
	assert.Equal(t, common.Mat3Identity(), got.Instances[0].Rotation)
	assert.Equal(t, 7, got.Instances[0].Row)
}

func TestControlMessagesReachCallback(t *testing.T) {
	controls := make(chan Control, 4)
	srv := NewServer(WithOnControl(func(c Control) { controls <- c }))
	conn, done := dial(t, srv)
	defer done()

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "bogus"}))
	require.NoError(t, conn.WriteJSON(Control{Type: TypeParams}))
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "params", "params": nil}))
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "params", "params": map[string]any{"cohesion": 80}}))
	require.NoError(t, conn.WriteJSON(Control{Type: TypePointer, X: 0.5, Y: -0.25}))

	next := func() Control {
		select {
		case c := <-controls:
			return c
		case <-time.After(2 * time.Second):
			t.Fatal("control message not delivered")
			return Control{}
		}
	}

	got := next()
	assert.Equal(t, TypeParams, got.Type)
	params, err := got.MergeParams(flock.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, float32(80), params.CohesionDistance)
	assert.Equal(t, flock.DefaultParams().SpeedLimit, params.SpeedLimit)

	got = next()
	assert.Equal(t, TypePointer, got.Type)
	assert.Equal(t, float32(0.5), got.X)
	assert.Equal(t, float32(-0.25), got.Y)
	assert.Empty(t, controls)
}

func TestMergeParams(t *testing.T) {
	base := flock.DefaultParams()

	got, err := Control{Type: TypeParams, Params: json.RawMessage(`{"separation":30}`)}.MergeParams(base)
	require.NoError(t, err)
	want := base
	want.SeparationDistance = 30
	assert.Equal(t, want, got)

	got, err = Control{Type: TypeParams, Params: json.RawMessage(`{"phase_wrap":0}`)}.MergeParams(base)
	assert.ErrorIs(t, err, flock.ErrInvalidParams)
	assert.Equal(t, base, got)

	_, err = Control{Type: TypeParams, Params: json.RawMessage(`{"separation":"far"}`)}.MergeParams(base)
	assert.Error(t, err)
}

func TestCloseDisconnectsClients(t *testing.T) {
	srv := NewServer()
	conn, done := dial(t, srv)
	defer done()

	require.NoError(t, srv.Close())
	assert.Zero(t, srv.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	// Frames after close go nowhere.
	assert.NoError(t, srv.Consume(presentation.RenderCommand{}))
}

func TestDisconnectedClientIsRemoved(t *testing.T) {
	srv := NewServer()
	conn, done := dial(t, srv)
	defer done()

	conn.Close()
	assert.Eventually(t, func() bool { return srv.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}
