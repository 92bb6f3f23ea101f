package flock

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-flock/common"
)

// ErrInvalidParams is returned by Params.Validate.
var ErrInvalidParams = errors.New("flock: invalid parameters")

// Params holds the live-tunable flocking configuration. The driver owns it and passes a
// fresh copy to every Step; nothing in this package keeps global state.
type Params struct {
	// SeparationDistance is the width of the innermost zone band, where neighbours repel.
	SeparationDistance float32 `json:"separation" toml:"separation" yaml:"separation"`

	// AlignmentDistance is the width of the middle band, where neighbours match heading.
	AlignmentDistance float32 `json:"alignment" toml:"alignment" yaml:"alignment"`

	// CohesionDistance is the width of the outer band, where neighbours attract.
	CohesionDistance float32 `json:"cohesion" toml:"cohesion" yaml:"cohesion"`

	// FreedomFactor is accepted and stored but does not influence the velocity rule.
	FreedomFactor float32 `json:"freedom" toml:"freedom" yaml:"freedom"`

	// SpeedLimit caps the length of every velocity.
	SpeedLimit float32 `json:"speed_limit" toml:"speed_limit" yaml:"speed_limit"`

	// SpeedScale multiplies velocity when integrating position.
	SpeedScale float32 `json:"speed_scale" toml:"speed_scale" yaml:"speed_scale"`

	// CenterAttraction pulls every entity toward Center, per second.
	CenterAttraction float32 `json:"center_attraction" toml:"center_attraction" yaml:"center_attraction"`

	// CenterVerticalScale exaggerates the vertical offset before the center pull is normalized,
	// keeping the flock flatter than it is wide.
	CenterVerticalScale float32 `json:"center_vertical_scale" toml:"center_vertical_scale" yaml:"center_vertical_scale"`

	// Center is the point the flock is attracted to.
	Center common.Vec3 `json:"center" toml:"center" yaml:"center"`

	// PredatorActive enables the point-of-interest repulsion for this frame.
	PredatorActive bool `json:"predator_active" toml:"-" yaml:"-"`

	// Predator is the point-of-interest position in world space.
	Predator common.Vec3 `json:"predator" toml:"-" yaml:"-"`

	// PredatorRadius is the distance inside which entities flee the predator.
	PredatorRadius float32 `json:"predator_radius" toml:"predator_radius" yaml:"predator_radius"`

	// PredatorStrength scales the flee impulse.
	PredatorStrength float32 `json:"predator_strength" toml:"predator_strength" yaml:"predator_strength"`

	// PredatorBoost is added to SpeedLimit for entities inside PredatorRadius.
	PredatorBoost float32 `json:"predator_boost" toml:"predator_boost" yaml:"predator_boost"`

	// PhaseWrap is the modulus of the wing-beat phase accumulator.
	PhaseWrap float32 `json:"phase_wrap" toml:"phase_wrap" yaml:"phase_wrap"`
}

// DefaultParams returns the starting flocking parameters.
//
// Returns:
//   - Params: the default flocking parameters
func DefaultParams() Params {
	return Params{
		SeparationDistance:  20,
		AlignmentDistance:   20,
		CohesionDistance:    20,
		FreedomFactor:       0.75,
		SpeedLimit:          9,
		SpeedScale:          15,
		CenterAttraction:    5,
		CenterVerticalScale: 2.5,
		PredatorRadius:      150,
		PredatorStrength:    100,
		PredatorBoost:       5,
		PhaseWrap:           62.83,
	}
}

// Validate rejects parameters that would stall or scatter the flock.
//
// Returns:
//   - error: ErrInvalidParams joined with every failed check, or nil
func (p Params) Validate() error {
	var errs []error
	if p.SeparationDistance < 0 || p.AlignmentDistance < 0 || p.CohesionDistance < 0 {
		errs = append(errs, errors.New("flock distances must not be negative"))
	}
	if p.SpeedLimit < 0 {
		errs = append(errs, fmt.Errorf("flock.speed_limit must not be negative, got %g", p.SpeedLimit))
	}
	if p.PredatorRadius < 0 {
		errs = append(errs, fmt.Errorf("flock.predator_radius must not be negative, got %g", p.PredatorRadius))
	}
	if !(p.PhaseWrap > 0) {
		errs = append(errs, fmt.Errorf("flock.phase_wrap must be positive, got %g", p.PhaseWrap))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidParams, errors.Join(errs...))
	}
	return nil
}
