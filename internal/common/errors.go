// Package common defines the sentinel errors shared by the tracker layers.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Lookup errors.
	ErrUnknownMuscle = errors.New("unknown muscle")
	ErrEventNotFound = errors.New("workout not found")
	ErrPlanNotFound  = errors.New("plan not found")

	// Validation errors. None of them change state.
	ErrMuscleRecovering = errors.New("muscle is still recovering, force the log to override")
	ErrFutureDate       = errors.New("date is in the future")
	ErrPastPlanDate     = errors.New("plans can only be made for today or later")
	ErrNoMuscles        = errors.New("no muscles selected")
	ErrInvalidSettings  = errors.New("invalid recovery settings")
	ErrEmptyPhoto       = errors.New("empty photo payload")
)
