package session

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/musclemap/internal/metrics"
	"github.com/dmitrijs2005/musclemap/internal/notify"
	"github.com/dmitrijs2005/musclemap/internal/plans"
)

const (
	// StreakWarningAfter opens the streak danger window.
	StreakWarningAfter = 36 * time.Hour
	// StreakResetAfter is the inactivity after which the streak is zeroed.
	StreakResetAfter = 48 * time.Hour
)

// Tick runs the periodic checks. Each is guarded by a day marker so calling
// Tick any number of times a day has the same effect as calling it once:
// the reminder for today's plans, the sweep of missed plans and the streak
// reset. It also retries a failed save.
func (s *Session) Tick(ctx context.Context) error {
	return s.apply(ctx, func(c *change) error {
		changed := false
		mk := &c.st.Markers

		if mk.LastReminderDay != c.today {
			mk.LastReminderDay = c.today
			changed = true
			if due := plans.DueToday(c.st, c.today); len(due) > 0 {
				c.notify(notify.Info, fmt.Sprintf("Reminder: %d plans for today", len(due)))
			}
		}

		if mk.LastSweepDay != c.today {
			mk.LastSweepDay = c.today
			changed = true
			res := plans.SweepMissed(c.st, c.today)
			if n := len(res.Missed); n > 0 {
				c.record(func(m *metrics.Manager) { m.PlansSettled("missed", n) })
				c.notify(notify.Error, fmt.Sprintf("%d plans missed (-%d XP)", n, res.Penalty))
			}
		}

		if s.checkStreak(c) {
			changed = true
		}

		c.skipSave = !changed
		return nil
	})
}

// checkStreak updates the danger flag and zeroes the streak after a long
// inactivity, at most once per day. Called with the lock held.
func (s *Session) checkStreak(c *change) bool {
	stats := &c.st.Stats
	if stats.LastActiveAt.IsZero() {
		s.streakDanger = false
		return false
	}

	idle := c.now.Sub(stats.LastActiveAt)
	danger := idle > StreakWarningAfter && idle < StreakResetAfter && stats.CurrentStreak > 0
	if danger && !s.streakDanger {
		left := (StreakResetAfter - idle).Round(time.Minute)
		c.notify(notify.Warning, fmt.Sprintf("Streak in danger: train within %s", left))
	}
	s.streakDanger = danger

	if idle > StreakResetAfter && stats.CurrentStreak > 0 && c.st.Markers.LastStreakResetDay != c.today {
		c.st.Markers.LastStreakResetDay = c.today
		stats.SetStreak(0)
		c.notify(notify.Error, "Streak broken: no workout for 48 hours")
		return true
	}
	return false
}

// StreakDanger reports whether the streak is inside the warning window.
func (s *Session) StreakDanger() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streakDanger
}
