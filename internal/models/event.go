package models

import "time"

// EventSource tells how a workout event entered the ledger.
type EventSource string

const (
	SourceLive     EventSource = "live"
	SourceRetro    EventSource = "retro"
	SourceFullBody EventSource = "fullbody"
)

// IsLive reports whether the event was logged in real time. Only live
// events may reset a broken streak.
func (s EventSource) IsLive() bool {
	return s != SourceRetro
}

// WorkoutEvent is one logged training of one muscle. Events are immutable
// once created; they can only be removed.
type WorkoutEvent struct {
	ID       string      `json:"id"`
	MuscleID MuscleID    `json:"muscleId"`
	At       time.Time   `json:"at"`
	Forced   bool        `json:"forced"`
	Source   EventSource `json:"source"`

	// XPAwarded is captured at creation so removal reverses it exactly.
	XPAwarded int `json:"xpAwarded"`
	// PlanID is the commitment this event completed, if any.
	PlanID string `json:"planId,omitempty"`
}
