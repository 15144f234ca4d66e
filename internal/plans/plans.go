// Package plans schedules training commitments and settles them: a bonus
// when a matching workout is logged on the planned day, a penalty when the
// day passes without one.
package plans

import (
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/musclemap/internal/common"
	"github.com/dmitrijs2005/musclemap/internal/models"
	"github.com/dmitrijs2005/musclemap/internal/timex"
	"github.com/dmitrijs2005/musclemap/internal/xp"
	"github.com/google/uuid"
)

// NewID generates plan ids.
var NewID = func() string { return uuid.NewString() }

// Add creates one commitment per muscle for day and awards the planning XP
// for each one created. Muscles that already have a commitment for day are
// skipped. day must not be before today.
func Add(s *models.Snapshot, day, today timex.Day, muscles []models.MuscleID, now time.Time) ([]models.PlanCommitment, error) {
	if len(muscles) == 0 {
		return nil, common.ErrNoMuscles
	}
	if day.Before(today) {
		return nil, fmt.Errorf("%w: %s", common.ErrPastPlanDate, day)
	}
	for _, id := range muscles {
		if !id.IsValid() {
			return nil, fmt.Errorf("%w: %q", common.ErrUnknownMuscle, id)
		}
	}

	var created []models.PlanCommitment
	for _, id := range muscles {
		if has(s.Plans, day, id) {
			continue
		}
		p := models.PlanCommitment{
			ID:        NewID(),
			Day:       day,
			MuscleID:  id,
			CreatedAt: now,
		}
		s.Plans = append(s.Plans, p)
		created = append(created, p)
	}
	s.Stats.AddXP(len(created) * xp.PlanCreate)
	return created, nil
}

func has(list []models.PlanCommitment, day timex.Day, id models.MuscleID) bool {
	return slices.ContainsFunc(list, func(p models.PlanCommitment) bool {
		return p.Day == day && p.MuscleID == id
	})
}

// MatchOnLog settles the first open commitment for the event's muscle on the
// event's calendar day. It marks the commitment completed and settled and
// returns it with the completion bonus, which the caller awards. A second
// workout on the same day finds nothing left to match.
func MatchOnLog(s *models.Snapshot, ev *models.WorkoutEvent, loc *time.Location) (models.PlanCommitment, int, bool) {
	day := timex.DayOf(ev.At, loc)
	for i := range s.Plans {
		p := &s.Plans[i]
		if p.Day != day || p.MuscleID != ev.MuscleID || !p.IsOpen() {
			continue
		}
		p.Completed = true
		p.Settled = true
		ev.PlanID = p.ID
		return *p, xp.PlanComplete, true
	}
	return models.PlanCommitment{}, 0, false
}

// Revert reopens the commitment completed by a deleted event so a later
// sweep or workout can settle it again.
func Revert(s *models.Snapshot, planID string) bool {
	if planID == "" {
		return false
	}
	i := s.FindPlan(planID)
	if i < 0 {
		return false
	}
	s.Plans[i].Completed = false
	s.Plans[i].Settled = false
	return true
}

// SweepResult summarizes one missed-commitment sweep.
type SweepResult struct {
	Missed  []models.PlanCommitment
	Penalty int
}

// SweepMissed settles every commitment dated before today that was neither
// completed nor settled, deducting the miss penalty for each. Running it
// again finds nothing.
func SweepMissed(s *models.Snapshot, today timex.Day) SweepResult {
	var res SweepResult
	for i := range s.Plans {
		p := &s.Plans[i]
		if !p.Day.Before(today) || !p.IsOpen() {
			continue
		}
		p.Settled = true
		res.Missed = append(res.Missed, *p)
		res.Penalty += xp.PlanMiss
	}
	if res.Penalty > 0 {
		s.Stats.AddXP(-res.Penalty)
	}
	return res
}

// Delete removes a commitment without any XP change.
func Delete(s *models.Snapshot, planID string) (models.PlanCommitment, error) {
	i := s.FindPlan(planID)
	if i < 0 {
		return models.PlanCommitment{}, fmt.Errorf("%w: %q", common.ErrPlanNotFound, planID)
	}
	p := s.Plans[i]
	s.Plans = slices.Delete(s.Plans, i, i+1)
	return p, nil
}

// DueToday returns the uncompleted commitments for today.
func DueToday(s *models.Snapshot, today timex.Day) []models.PlanCommitment {
	var out []models.PlanCommitment
	for _, p := range s.Plans {
		if p.Day == today && !p.Completed {
			out = append(out, p)
		}
	}
	return out
}

// Report groups commitments for display.
type Report struct {
	Todo      []models.PlanCommitment
	Completed []models.PlanCommitment
	Missed    []models.PlanCommitment
}

// BuildReport buckets every commitment, newest day first. A past commitment
// that was never completed counts as missed even before the sweep settles it.
func BuildReport(s *models.Snapshot, today timex.Day) Report {
	sorted := slices.Clone(s.Plans)
	slices.SortStableFunc(sorted, func(a, b models.PlanCommitment) int {
		switch {
		case a.Day == b.Day:
			return 0
		case b.Day.Before(a.Day):
			return -1
		default:
			return 1
		}
	})

	var r Report
	for _, p := range sorted {
		switch {
		case p.Completed:
			r.Completed = append(r.Completed, p)
		case p.Day.Before(today):
			r.Missed = append(r.Missed, p)
		default:
			r.Todo = append(r.Todo, p)
		}
	}
	return r
}
