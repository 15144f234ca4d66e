// Package ledger maintains the workout event log and keeps per-muscle
// counters consistent with it.
package ledger

import (
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/musclemap/internal/common"
	"github.com/dmitrijs2005/musclemap/internal/models"
	"github.com/google/uuid"
)

// Entry describes an event to append.
type Entry struct {
	MuscleID  models.MuscleID
	At        time.Time
	Forced    bool
	Source    models.EventSource
	XPAwarded int
}

// NewID generates event ids.
var NewID = func() string { return uuid.NewString() }

// Append inserts a new event in chronological order, increments the muscle's
// rep count and advances its last activity when e.At is the new maximum.
// The returned pointer refers into s.Events and is valid until the next
// mutation of the log.
func Append(s *models.Snapshot, e Entry) (*models.WorkoutEvent, error) {
	m, ok := s.Muscle(e.MuscleID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownMuscle, e.MuscleID)
	}
	if e.Source == "" {
		e.Source = models.SourceLive
	}

	ev := models.WorkoutEvent{
		ID:        NewID(),
		MuscleID:  e.MuscleID,
		At:        e.At,
		Forced:    e.Forced,
		Source:    e.Source,
		XPAwarded: e.XPAwarded,
	}

	// insert after every event with a timestamp <= e.At
	i, _ := slices.BinarySearchFunc(s.Events, e.At, func(x models.WorkoutEvent, t time.Time) int {
		if x.At.After(t) {
			return 1
		}
		return -1
	})
	s.Events = slices.Insert(s.Events, i, ev)

	m.SetRepCount(m.RepCount + 1)
	if m.LastActivityAt == nil || e.At.After(*m.LastActivityAt) {
		at := e.At
		m.LastActivityAt = &at
	}
	return &s.Events[i], nil
}

// Remove deletes the event with the given id, recomputes the owning muscle's
// counters from the remaining events and reverses the XP captured on the
// event. Plan reversal is left to the caller.
func Remove(s *models.Snapshot, id string) (models.WorkoutEvent, error) {
	i := s.FindEvent(id)
	if i < 0 {
		return models.WorkoutEvent{}, fmt.Errorf("%w: %q", common.ErrEventNotFound, id)
	}
	ev := s.Events[i]
	s.Events = slices.Delete(s.Events, i, i+1)

	Recount(s, ev.MuscleID)
	s.Stats.AddXP(-ev.XPAwarded)
	return ev, nil
}

// Recount sets the muscle's rep count and last activity from the log.
func Recount(s *models.Snapshot, id models.MuscleID) {
	m, ok := s.Muscle(id)
	if !ok {
		return
	}
	count := 0
	var last *time.Time
	for _, ev := range s.Events {
		if ev.MuscleID != id {
			continue
		}
		count++
		if last == nil || ev.At.After(*last) {
			at := ev.At
			last = &at
		}
	}
	m.SetRepCount(count)
	m.LastActivityAt = last
}

// Rebuild sorts the log chronologically and recounts every muscle.
func Rebuild(s *models.Snapshot) {
	slices.SortStableFunc(s.Events, func(a, b models.WorkoutEvent) int {
		return a.At.Compare(b.At)
	})
	for _, id := range models.MuscleIDs() {
		Recount(s, id)
	}
}

// Latest returns the most recent event for the muscle.
func Latest(s *models.Snapshot, id models.MuscleID) (models.WorkoutEvent, bool) {
	for i := len(s.Events) - 1; i >= 0; i-- {
		if s.Events[i].MuscleID == id {
			return s.Events[i], true
		}
	}
	return models.WorkoutEvent{}, false
}

// History returns the log newest first, optionally limited to one muscle.
func History(s *models.Snapshot, filter models.MuscleID) []models.WorkoutEvent {
	out := make([]models.WorkoutEvent, 0, len(s.Events))
	for i := len(s.Events) - 1; i >= 0; i-- {
		if filter != "" && s.Events[i].MuscleID != filter {
			continue
		}
		out = append(out, s.Events[i])
	}
	return out
}
