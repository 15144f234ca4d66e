// Package session owns the tracker state for the lifetime of the process.
//
// Every user action and every tick is applied as one atomic step: the
// mutation runs on a copy of the snapshot under the session lock, and only
// a successful step replaces the live state, gets persisted and emits its
// notifications.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/musclemap/internal/achievements"
	"github.com/dmitrijs2005/musclemap/internal/ledger"
	"github.com/dmitrijs2005/musclemap/internal/logging"
	"github.com/dmitrijs2005/musclemap/internal/metrics"
	"github.com/dmitrijs2005/musclemap/internal/models"
	"github.com/dmitrijs2005/musclemap/internal/notify"
	"github.com/dmitrijs2005/musclemap/internal/timex"
)

// AnimationWindow is how long a muscle is reported as animating after a log.
const AnimationWindow = 700 * time.Millisecond

// Store persists snapshots. Load returns nil, nil when nothing is stored yet.
type Store interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	Save(ctx context.Context, s *models.Snapshot) error
}

type Options struct {
	Store    Store
	Notifier notify.Notifier
	Clock    timex.Clock
	// Location defines calendar days for streaks, plans and the daily checks.
	Location *time.Location
	Logger   logging.Logger
	Metrics  *metrics.Manager
}

type Session struct {
	mu sync.Mutex

	state    *models.Snapshot
	store    Store
	notifier notify.Notifier
	clock    timex.Clock
	loc      *time.Location
	log      logging.Logger
	metrics  *metrics.Manager

	// dirty is set when the last save failed; the next step retries.
	dirty        bool
	streakDanger bool
	animating    map[models.MuscleID]time.Time
}

// New loads the stored snapshot and returns a ready session. A failed or
// empty load starts from the initial state.
func New(ctx context.Context, opts Options) *Session {
	s := &Session{
		store:     opts.Store,
		notifier:  opts.Notifier,
		clock:     opts.Clock,
		loc:       opts.Location,
		log:       opts.Logger,
		metrics:   opts.Metrics,
		animating: make(map[models.MuscleID]time.Time),
	}
	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}
	if s.clock == nil {
		s.clock = timex.SystemClock{}
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.log == nil {
		s.log = logging.NewNop()
	}

	s.state = s.load(ctx)
	st := s.state.Stats
	s.metrics.SetStats(st.XP, st.Level, st.CurrentStreak, st.BestStreak)
	return s
}

func (s *Session) load(ctx context.Context) *models.Snapshot {
	if s.store == nil {
		return models.NewSnapshot()
	}
	st, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn(ctx, "failed to load snapshot, starting fresh", "error", err)
		s.notifier.Notify(notify.Message{Text: "Could not load saved progress, starting fresh", Severity: notify.Warning})
		return models.NewSnapshot()
	}
	if st == nil {
		s.log.Info(ctx, "no stored snapshot, starting fresh")
		return models.NewSnapshot()
	}
	st.Normalize()
	ledger.Rebuild(st)
	s.log.Info(ctx, "snapshot loaded", "events", len(st.Events), "plans", len(st.Plans), "xp", st.Stats.XP)
	return st
}

// change is one atomic step in progress. Side effects are queued and
// released only when the step commits.
type change struct {
	st          *models.Snapshot
	now         time.Time
	today       timex.Day
	loc         *time.Location
	levelBefore int

	// skipSave is set by steps that turned out to change nothing.
	skipSave bool

	messages     []notify.Message
	celebrations []notify.Celebration
	observe      []func(m *metrics.Manager)
	animate      []models.MuscleID
}

func (c *change) notify(sev notify.Severity, text string) {
	c.messages = append(c.messages, notify.Message{Text: text, Severity: sev})
}

func (c *change) record(fn func(m *metrics.Manager)) {
	c.observe = append(c.observe, fn)
}

// apply runs fn on a copy of the state and commits it when fn succeeds.
func (s *Session) apply(ctx context.Context, fn func(c *change) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	c := &change{
		st:          s.state.Clone(),
		now:         now,
		today:       timex.DayOf(now, s.loc),
		loc:         s.loc,
		levelBefore: s.state.Stats.Level,
	}
	if err := fn(c); err != nil {
		return err
	}
	c.checkLevelUp()

	s.state = c.st
	if !c.skipSave || s.dirty {
		s.persist(ctx)
	}

	for _, id := range c.animate {
		s.animating[id] = now.Add(AnimationWindow)
	}
	for _, fn := range c.observe {
		fn(s.metrics)
	}
	st := s.state.Stats
	s.metrics.SetStats(st.XP, st.Level, st.CurrentStreak, st.BestStreak)
	for _, m := range c.messages {
		s.notifier.Notify(m)
	}
	for _, e := range c.celebrations {
		s.notifier.Celebrate(e)
	}
	return nil
}

func (c *change) checkLevelUp() {
	if lvl := c.st.Stats.Level; lvl > c.levelBefore {
		c.celebrations = append(c.celebrations, notify.Celebration{
			Title:       "Level up!",
			Description: levelText(lvl),
			Kind:        notify.LevelUp,
		})
	}
}

func levelText(level int) string {
	return fmt.Sprintf("Reached level %d", level)
}

// unlock evaluates the achievement catalog and applies every new unlock.
func (c *change) unlock(last *models.WorkoutEvent) []achievements.Achievement {
	found := achievements.Evaluate(achievements.Input{
		Stats:   c.st.Stats,
		Muscles: c.st.Muscles,
		History: c.st.Events,
		Last:    last,
	})
	for _, a := range found {
		c.st.Stats.Unlock(a.ID)
		c.st.Stats.AddXP(a.XPReward)
		c.celebrations = append(c.celebrations, notify.Celebration{
			Title:       a.Title,
			Description: a.Description,
			Kind:        notify.Achievement,
		})
		id := a.ID
		c.record(func(m *metrics.Manager) { m.AchievementUnlocked(id) })
	}
	return found
}

// persist must be called with the lock held.
func (s *Session) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, s.state); err != nil {
		s.log.Warn(ctx, "failed to save snapshot", "error", err)
		s.metrics.SaveFailed()
		if !s.dirty {
			s.notifier.Notify(notify.Message{Text: "Could not save progress, will retry", Severity: notify.Error})
		}
		s.dirty = true
		return
	}
	s.dirty = false
}

// Flush retries a pending save. It reports whether the state is persisted.
func (s *Session) Flush(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirty {
		s.persist(ctx)
	}
	return !s.dirty
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Today returns the current calendar day in the session location.
func (s *Session) Today() timex.Day {
	return timex.DayOf(s.clock.Now(), s.loc)
}

// Location returns the location calendar days are computed in.
func (s *Session) Location() *time.Location {
	return s.loc
}
