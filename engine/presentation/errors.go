package presentation

import "errors"

var (
	// ErrInsufficientPoseData is returned when fewer than two poses are supplied to BakeAnimationStrip.
	ErrInsufficientPoseData = errors.New("presentation: at least two pose samples are required")

	// ErrInvalidStrip is returned when the strip dimensions or pose data are malformed.
	ErrInvalidStrip = errors.New("presentation: invalid animation strip")
)
