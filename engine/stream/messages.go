package stream

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/flock"
	"github.com/Carmen-Shannon/oxy-flock/engine/presentation"
)

// Message types exchanged over the socket.
const (
	TypeFrame   = "frame"
	TypeParams  = "params"
	TypePointer = "pointer"
	TypeCount   = "count"
	TypeSize    = "size"
)

// FrameMessage is broadcast once per consumed RenderCommand.
type FrameMessage struct {
	Type      string            `json:"type"`
	Time      float32           `json:"time"`
	Delta     float32           `json:"delta"`
	Count     int               `json:"count"`
	ModelYaw  float32           `json:"modelYaw"`
	StripRows int               `json:"stripRows,omitempty"`
	Instances []InstanceMessage `json:"instances"`
}

// InstanceMessage is the compact wire form of presentation.Instance.
type InstanceMessage struct {
	Index    int         `json:"i"`
	Position common.Vec3 `json:"p"`
	Rotation common.Mat3 `json:"r"`
	Scale    float32     `json:"s"`
	Phase    float32     `json:"w"`
	Row      int         `json:"a"`
}

// Control is a message sent by a client. Only the fields belonging to Type are meaningful.
type Control struct {
	Type string `json:"type"`

	// Params holds the flocking parameters to change (type "params"). Fields left out keep
	// their current value; see MergeParams.
	Params json.RawMessage `json:"params,omitempty"`

	// X and Y are the normalized pointer position in [-1, 1] (type "pointer").
	X float32 `json:"x,omitempty"`
	Y float32 `json:"y,omitempty"`

	// Count is the visible entity count (type "count").
	Count int `json:"count,omitempty"`

	// Size is the base entity scale (type "size").
	Size float32 `json:"size,omitempty"`
}

// valid reports whether the control carries what its type needs.
func (c Control) valid() bool {
	switch c.Type {
	case TypeParams:
		return len(c.Params) > 0 && !bytes.Equal(c.Params, []byte("null"))
	case TypePointer, TypeCount, TypeSize:
		return true
	}
	return false
}

// MergeParams decodes the fields of a "params" control over base and validates the result.
//
// Parameters:
//   - base: the parameters currently in effect
//
// Returns:
//   - flock.Params: base with the sent fields replaced
//   - error: error if the payload is malformed or the merged parameters are invalid
func (c Control) MergeParams(base flock.Params) (flock.Params, error) {
	merged := base
	if err := json.Unmarshal(c.Params, &merged); err != nil {
		return base, fmt.Errorf("failed to decode params: %w", err)
	}
	if err := merged.Validate(); err != nil {
		return base, err
	}
	return merged, nil
}

// newFrameMessage converts a render command to its wire form.
func newFrameMessage(cmd presentation.RenderCommand) FrameMessage {
	msg := FrameMessage{
		Type:      TypeFrame,
		Time:      cmd.Frame.Time,
		Delta:     cmd.Frame.Delta,
		Count:     len(cmd.Instances),
		ModelYaw:  cmd.ModelYaw,
		Instances: make([]InstanceMessage, len(cmd.Instances)),
	}
	if cmd.Strip != nil {
		msg.StripRows = cmd.Strip.Height
	}
	for i, inst := range cmd.Instances {
		msg.Instances[i] = InstanceMessage{
			Index:    inst.Index,
			Position: inst.Position,
			Rotation: inst.Rotation,
			Scale:    inst.Scale,
			Phase:    inst.Phase,
			Row:      inst.AnimationRow,
		}
	}
	return msg
}
