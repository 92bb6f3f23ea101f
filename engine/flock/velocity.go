package flock

import (
	"github.com/chewxy/math32"

	"github.com/Carmen-Shannon/oxy-flock/common"
	"github.com/Carmen-Shannon/oxy-flock/engine/simulation"
)

// minDistance is the neighbour distance below which a pair does not interact.
// It also covers an entity meeting itself in the neighbour loop.
const minDistance float32 = 0.0001

// band identifies which flocking rule applies to a pair of entities.
type band int

const (
	bandNone band = iota
	bandSeparation
	bandAlignment
	bandCohesion
)

// zone holds the per-step thresholds derived from the three band distances.
// Thresholds are fractions of the squared zone radius.
type zone struct {
	radiusSq   float32
	separation float32
	alignment  float32
}

// newZone derives the zone thresholds from params. A zero radius yields a zone in which
// no pair ever interacts.
func newZone(p Params) zone {
	radius := p.SeparationDistance + p.AlignmentDistance + p.CohesionDistance
	if !(radius > 0) {
		return zone{}
	}
	return zone{
		radiusSq:   radius * radius,
		separation: p.SeparationDistance / radius,
		alignment:  (p.SeparationDistance + p.AlignmentDistance) / radius,
	}
}

// classify picks the band for a neighbour at squared distance distSq.
//
// Returns:
//   - band: the rule to apply (bandNone when out of range)
//   - float32: the neighbour's squared distance as a fraction of the squared zone radius
func (z zone) classify(distSq float32) (band, float32) {
	if z.radiusSq == 0 || distSq > z.radiusSq {
		return bandNone, 0
	}
	percent := distSq / z.radiusSq
	switch {
	case percent < z.separation:
		return bandSeparation, percent
	case percent < z.alignment:
		return bandAlignment, percent
	default:
		return bandCohesion, percent
	}
}

// separationForce is the repulsion weight for a neighbour in the separation band.
func (z zone) separationForce(percent, delta float32) float32 {
	return (z.separation/percent - 1) * delta
}

// alignmentForce is the heading-matching weight for a neighbour in the alignment band.
// Only reachable when alignment > separation, so the band width is never zero here.
func (z zone) alignmentForce(percent, delta float32) float32 {
	adjusted := (percent - z.separation) / (z.alignment - z.separation)
	return (0.5 - math32.Cos(adjusted*2*math32.Pi)*0.5 + 0.5) * delta
}

// cohesionForce is the attraction weight for a neighbour in the cohesion band.
// A zero-width band (alignment threshold at 1) is treated as fully adjusted.
func (z zone) cohesionForce(percent, delta float32) float32 {
	width := 1 - z.alignment
	adjusted := float32(1)
	if width != 0 {
		adjusted = (percent - z.alignment) / width
	}
	return (0.5 - (math32.Cos(adjusted*2*math32.Pi)*-0.5 + 0.5)) * delta
}

// UpdateVelocity is the per-cell rule of the velocity channel. It reads the previous
// position and velocity grids and applies, in order: predator repulsion, center attraction,
// separation / alignment / cohesion against every other entity, and the speed limit.
//
// Parameters:
//   - ctx: the step context (previous frame, params, clamped delta)
//   - cell: the entity index
//
// Returns:
//   - common.Vec4: the next velocity (w = 1)
func UpdateVelocity(ctx *simulation.StepContext[Params], cell int) common.Vec4 {
	p := ctx.Params
	delta := ctx.Frame.Delta
	positions := ctx.Previous(PositionChannel)
	velocities := ctx.Previous(VelocityChannel)

	self := common.XYZ(positions.Cell(cell))
	velocity := common.XYZ(velocities.Cell(cell))
	limit := p.SpeedLimit

	if p.PredatorActive && p.PredatorRadius > 0 {
		dir := common.Sub3(p.Predator, self)
		dir[2] = 0
		distSq := common.LengthSq3(dir)
		radiusSq := p.PredatorRadius * p.PredatorRadius
		if distSq < radiusSq {
			if n, ok := common.Normalize3(dir, minDistance); ok {
				f := (distSq/radiusSq - 1) * delta * p.PredatorStrength
				velocity = common.Add3(velocity, common.Scale3(n, f))
			}
			limit += p.PredatorBoost
		}
	}

	if p.CenterAttraction != 0 {
		dir := common.Sub3(self, p.Center)
		dir[1] *= p.CenterVerticalScale
		if n, ok := common.Normalize3(dir, minDistance); ok {
			velocity = common.Sub3(velocity, common.Scale3(n, delta*p.CenterAttraction))
		}
	}

	z := newZone(p)
	if z.radiusSq > 0 {
		cells := positions.Cells()
		for j := range cells {
			dir := common.Sub3(common.XYZ(cells[j]), self)
			distSq := common.LengthSq3(dir)
			if distSq < minDistance*minDistance {
				continue
			}
			b, percent := z.classify(distSq)
			switch b {
			case bandSeparation:
				n := common.Scale3(dir, 1/math32.Sqrt(distSq))
				velocity = common.Sub3(velocity, common.Scale3(n, z.separationForce(percent, delta)))
			case bandAlignment:
				heading, ok := common.Normalize3(common.XYZ(velocities.Cell(j)), minDistance)
				if !ok {
					continue
				}
				velocity = common.Add3(velocity, common.Scale3(heading, z.alignmentForce(percent, delta)))
			case bandCohesion:
				n := common.Scale3(dir, 1/math32.Sqrt(distSq))
				velocity = common.Add3(velocity, common.Scale3(n, z.cohesionForce(percent, delta)))
			}
		}
	}

	if speedSq := common.LengthSq3(velocity); limit >= 0 && speedSq > limit*limit {
		velocity = common.Scale3(velocity, limit/math32.Sqrt(speedSq))
	}

	return common.WithW(velocity, 1)
}
