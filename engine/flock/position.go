package flock

import (
	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/simulation"
)

// UpdatePosition is the per-cell rule of the position channel. It integrates the previous
// velocity into the previous position and advances the wing-beat phase stored in w.
// Horizontal speed and climbing both make the phase run faster.
//
// Parameters:
//   - ctx: the step context
//   - cell: the entity index
//
// Returns:
//   - common.Vec4: the next position, phase in w
func UpdatePosition(ctx *simulation.StepContext[Params], cell int) common.Vec4 {
	p := ctx.Params
	delta := ctx.Frame.Delta

	prev := ctx.Previous(PositionChannel).Cell(cell)
	velocity := common.XYZ(ctx.Previous(VelocityChannel).Cell(cell))

	position := common.Add3(common.XYZ(prev), common.Scale3(velocity, delta*p.SpeedScale))

	horizontal := math32.Sqrt(velocity[0]*velocity[0] + velocity[2]*velocity[2])
	phase := prev[3] + delta + horizontal*delta*3 + math32.Max(velocity[1], 0)*delta*6
	phase = common.Mod(phase, p.PhaseWrap)

	return common.WithW(position, phase)
}
