package models

import (
	"time"

	"github.com/dmitrijs2005/musclemap/internal/timex"
)

// PlanCommitment is a declared intent to train a muscle on a given day.
type PlanCommitment struct {
	ID        string    `json:"id"`
	Day       timex.Day `json:"day"`
	MuscleID  MuscleID  `json:"muscleId"`
	Completed bool      `json:"completed"`
	// Settled guards the reward/penalty so it is applied at most once.
	Settled   bool      `json:"settled"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsOpen reports whether the commitment still awaits settlement.
func (p *PlanCommitment) IsOpen() bool {
	return !p.Completed && !p.Settled
}
