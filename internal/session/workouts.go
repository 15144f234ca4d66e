package session

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/musclemap/internal/achievements"
	"github.com/dmitrijs2005/musclemap/internal/common"
	"github.com/dmitrijs2005/musclemap/internal/ledger"
	"github.com/dmitrijs2005/musclemap/internal/metrics"
	"github.com/dmitrijs2005/musclemap/internal/models"
	"github.com/dmitrijs2005/musclemap/internal/notify"
	"github.com/dmitrijs2005/musclemap/internal/plans"
	"github.com/dmitrijs2005/musclemap/internal/recovery"
	"github.com/dmitrijs2005/musclemap/internal/timex"
	"github.com/dmitrijs2005/musclemap/internal/xp"
)

// RetroHour is the time of day backfilled workouts are placed at.
const RetroHour = 12

// streakGap is the longest gap between two workouts that keeps a streak.
const streakGap = 48 * time.Hour

// LogResult describes a committed workout log.
type LogResult struct {
	Events []models.WorkoutEvent
	// XP is the total awarded for the events, plan bonuses included.
	XP           int
	PlanBonus    int
	Achievements []achievements.Achievement
	Streak       int
}

// LogWorkout records a workout for the muscle now. A muscle that is still in
// the active phase can only be logged with force; such a log is marked
// forced and earns the forced bonus.
func (s *Session) LogWorkout(ctx context.Context, id models.MuscleID, force bool) (LogResult, error) {
	var res LogResult
	err := s.apply(ctx, func(c *change) error {
		m, ok := c.st.Muscle(id)
		if !ok {
			return fmt.Errorf("%w: %q", common.ErrUnknownMuscle, id)
		}
		phase := recovery.PhaseAt(m.LastActivityAt, c.now, c.st.Settings.Durations)
		forced := phase == recovery.Active
		if forced && !force {
			return fmt.Errorf("%w: %s", common.ErrMuscleRecovering, m.Name)
		}

		c.updateStreak(c.now, models.SourceLive)
		gain := xp.Gain(forced, c.st.Stats.CurrentStreak)
		ev, bonus, err := c.logEvent(ledger.Entry{
			MuscleID:  id,
			At:        c.now,
			Forced:    forced,
			Source:    models.SourceLive,
			XPAwarded: gain,
		})
		if err != nil {
			return err
		}

		res = LogResult{
			Events:    []models.WorkoutEvent{ev},
			XP:        ev.XPAwarded,
			PlanBonus: bonus,
			Streak:    c.st.Stats.CurrentStreak,
		}
		res.Achievements = c.unlock(&ev)
		c.animate = append(c.animate, id)
		c.record(func(mm *metrics.Manager) { mm.WorkoutLogged(string(models.SourceLive), 1) })

		if forced {
			c.notify(notify.Warning, fmt.Sprintf("Forced workout logged for %s (+%d XP)", m.Name, ev.XPAwarded))
		} else {
			c.notify(notify.Success, fmt.Sprintf("Workout logged for %s (+%d XP)", m.Name, ev.XPAwarded))
		}
		return nil
	})
	return res, err
}

// LogRetroactive backfills a workout at noon of day. The day may not be in
// the future, and a backfill for today made before noon is placed at now.
// A backfill never resets a broken streak.
func (s *Session) LogRetroactive(ctx context.Context, id models.MuscleID, day timex.Day) (LogResult, error) {
	var res LogResult
	err := s.apply(ctx, func(c *change) error {
		m, ok := c.st.Muscle(id)
		if !ok {
			return fmt.Errorf("%w: %q", common.ErrUnknownMuscle, id)
		}
		if c.today.Before(day) {
			return fmt.Errorf("%w: %s", common.ErrFutureDate, day)
		}
		at, err := day.At(RetroHour, s.loc)
		if err != nil {
			return err
		}
		if at.After(c.now) {
			at = c.now
		}

		c.updateStreak(at, models.SourceRetro)
		gain := xp.Gain(false, c.st.Stats.CurrentStreak)
		ev, bonus, err := c.logEvent(ledger.Entry{
			MuscleID:  id,
			At:        at,
			Source:    models.SourceRetro,
			XPAwarded: gain,
		})
		if err != nil {
			return err
		}

		res = LogResult{
			Events:    []models.WorkoutEvent{ev},
			XP:        ev.XPAwarded,
			PlanBonus: bonus,
			Streak:    c.st.Stats.CurrentStreak,
		}
		res.Achievements = c.unlock(&ev)
		c.record(func(mm *metrics.Manager) { mm.WorkoutLogged(string(models.SourceRetro), 1) })
		c.notify(notify.Success, fmt.Sprintf("Backfilled %s for %s (+%d XP)", m.Name, day, ev.XPAwarded))
		return nil
	})
	return res, err
}

// LogFullBody logs every muscle at once. The streak is updated once and one
// base award is split across the events so each event can be undone exactly.
// Every muscle may settle its own plan for today.
func (s *Session) LogFullBody(ctx context.Context) (LogResult, error) {
	var res LogResult
	err := s.apply(ctx, func(c *change) error {
		c.updateStreak(c.now, models.SourceFullBody)
		ids := models.MuscleIDs()
		shares := splitXP(xp.Gain(false, c.st.Stats.CurrentStreak), len(ids))

		for i, id := range ids {
			ev, bonus, err := c.logEvent(ledger.Entry{
				MuscleID:  id,
				At:        c.now,
				Source:    models.SourceFullBody,
				XPAwarded: shares[i],
			})
			if err != nil {
				return err
			}
			res.Events = append(res.Events, ev)
			res.XP += ev.XPAwarded
			res.PlanBonus += bonus
		}
		res.Streak = c.st.Stats.CurrentStreak

		last := res.Events[len(res.Events)-1]
		res.Achievements = c.unlock(&last)
		c.animate = append(c.animate, ids...)
		n := len(ids)
		c.record(func(mm *metrics.Manager) { mm.WorkoutLogged(string(models.SourceFullBody), n) })
		c.notify(notify.Success, fmt.Sprintf("Full body check-in (+%d XP)", res.XP))
		return nil
	})
	return res, err
}

// splitXP divides total into n shares, the remainder going to the first.
func splitXP(total, n int) []int {
	shares := make([]int, n)
	if n == 0 {
		return shares
	}
	for i := range shares {
		shares[i] = total / n
	}
	shares[0] += total % n
	return shares
}

// logEvent appends the event, settles a matching plan and awards the XP.
func (c *change) logEvent(e ledger.Entry) (models.WorkoutEvent, int, error) {
	ev, err := ledger.Append(c.st, e)
	if err != nil {
		return models.WorkoutEvent{}, 0, err
	}
	_, bonus, matched := plans.MatchOnLog(c.st, ev, c.loc)
	if matched {
		ev.XPAwarded += bonus
		c.record(func(m *metrics.Manager) { m.PlansSettled("completed", 1) })
	}
	c.st.Stats.AddXP(ev.XPAwarded)
	return *ev, bonus, nil
}

// updateStreak applies a streak-affecting event at t. Events older than the
// last active time are ignored. A gap too long to keep the streak resets it
// to one, but only for live events.
func (c *change) updateStreak(t time.Time, src models.EventSource) {
	stats := &c.st.Stats
	last := stats.LastActiveAt
	if !last.IsZero() && t.Before(last) {
		return
	}
	if last.IsZero() || timex.DayOf(t, c.loc) != timex.DayOf(last, c.loc) {
		switch {
		case last.IsZero() || t.Sub(last) < streakGap:
			stats.SetStreak(stats.CurrentStreak + 1)
		case src.IsLive():
			stats.SetStreak(1)
			c.notify(notify.Info, "New day, the streak starts over")
		}
	}
	stats.LastActiveAt = t
}

// DeleteWorkout undoes one event: counters are recomputed from the remaining
// log, the XP captured on the event is taken back and the plan it completed,
// if any, is reopened. Streaks are left as they are.
func (s *Session) DeleteWorkout(ctx context.Context, eventID string) (models.WorkoutEvent, error) {
	var removed models.WorkoutEvent
	err := s.apply(ctx, func(c *change) error {
		ev, err := ledger.Remove(c.st, eventID)
		if err != nil {
			return err
		}
		plans.Revert(c.st, ev.PlanID)
		removed = ev

		c.record(func(m *metrics.Manager) { m.WorkoutDeleted() })
		c.notify(notify.Info, fmt.Sprintf("Workout removed (-%d XP)", ev.XPAwarded))
		return nil
	})
	return removed, err
}
