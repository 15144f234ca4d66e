package session

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/musclemap/internal/achievements"
	"github.com/dmitrijs2005/musclemap/internal/common"
	"github.com/dmitrijs2005/musclemap/internal/growth"
	"github.com/dmitrijs2005/musclemap/internal/ledger"
	"github.com/dmitrijs2005/musclemap/internal/models"
	"github.com/dmitrijs2005/musclemap/internal/recovery"
	"github.com/dmitrijs2005/musclemap/internal/timex"
	"github.com/dmitrijs2005/musclemap/internal/xp"
)

// RegionView is what the body renderer needs for one muscle.
type RegionView struct {
	ID          models.MuscleID
	Name        string
	Side        models.Side
	Phase       recovery.Phase
	Color       string
	GrowthScale float64
	RepCount    int
	Animating   bool
}

// BodyMap returns every muscle in catalog order.
func (s *Session) BodyMap() []RegionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	out := make([]RegionView, 0, len(s.state.Muscles))
	for _, info := range models.Catalog() {
		m, ok := s.state.Muscle(info.ID)
		if !ok {
			continue
		}
		phase := recovery.PhaseAt(m.LastActivityAt, now, s.state.Settings.Durations)
		out = append(out, RegionView{
			ID:          m.ID,
			Name:        m.Name,
			Side:        info.Side,
			Phase:       phase,
			Color:       s.state.Settings.ColorFor(phase),
			GrowthScale: growth.Scale(m.RepCount),
			RepCount:    m.RepCount,
			Animating:   now.Before(s.animating[m.ID]),
		})
	}
	return out
}

// MuscleDetail is the full view of one muscle.
type MuscleDetail struct {
	Record      *models.MuscleRecord
	Phase       recovery.Phase
	Color       string
	Tier        growth.Tier
	LatestEvent *models.WorkoutEvent
	LatestPhoto *models.Photo
	// CanLog is false while the muscle is in the active phase; a log then
	// needs force.
	CanLog   bool
	Headline string
	Advice   string
}

var advice = map[recovery.Phase]struct{ headline, text string }{
	recovery.Neutral:    {"Not started", "No workouts recorded yet. Schedule a session to wake it up."},
	recovery.Active:     {"Just trained", "The muscle is pumped and fatigued. Let it rest, do not overtrain."},
	recovery.Recovering: {"Recovering", "Soreness means repair is under way. Light activity or rest."},
	recovery.Peak:       {"In top shape", "Fully recovered with glycogen restored. Best time for a hard session."},
	recovery.Stale:      {"Needs activation", "It has been a while and adaptation is fading. Train it soon."},
}

// Muscle returns the detail view of one muscle.
func (s *Session) Muscle(id models.MuscleID) (MuscleDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.state.Muscle(id)
	if !ok {
		return MuscleDetail{}, fmt.Errorf("%w: %q", common.ErrUnknownMuscle, id)
	}
	phase := recovery.PhaseAt(m.LastActivityAt, s.clock.Now(), s.state.Settings.Durations)
	d := MuscleDetail{
		Record:   m.Clone(),
		Phase:    phase,
		Color:    s.state.Settings.ColorFor(phase),
		Tier:     m.Tier(),
		CanLog:   phase != recovery.Active,
		Headline: advice[phase].headline,
		Advice:   advice[phase].text,
	}
	if ev, ok := ledger.Latest(s.state, id); ok {
		d.LatestEvent = &ev
	}
	if p, ok := m.LatestPhoto(); ok {
		d.LatestPhoto = &p
	}
	return d, nil
}

// LatestEvent returns the most recent workout of the muscle, the one an undo
// would target.
func (s *Session) LatestEvent(id models.MuscleID) (models.WorkoutEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.Latest(s.state, id)
}

// History returns the workout log newest first, optionally for one muscle.
func (s *Session) History(filter models.MuscleID) []models.WorkoutEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.History(s.state, filter)
}

type AchievementStatus struct {
	achievements.Achievement
	Unlocked bool
}

type MuscleCount struct {
	ID       models.MuscleID
	Name     string
	RepCount int
}

type DayActivity struct {
	Day   timex.Day
	Count int
}

// StatsView summarizes the gamification state.
type StatsView struct {
	XP            int
	Level         int
	Progress      float64
	NextLevelXP   int
	CurrentStreak int
	BestStreak    int
	LastActiveAt  time.Time
	StreakDanger  bool
	Achievements  []AchievementStatus
	// Muscles are ordered by rep count, highest first.
	Muscles []MuscleCount
	// LastWeek covers the last seven days, oldest first.
	LastWeek []DayActivity
}

func (s *Session) Stats() StatsView {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	st := s.state.Stats
	level := xp.Level(st.XP)
	v := StatsView{
		XP:            st.XP,
		Level:         level,
		Progress:      xp.Progress(st.XP, level),
		NextLevelXP:   xp.ForLevel(level),
		CurrentStreak: st.CurrentStreak,
		BestStreak:    st.BestStreak,
		LastActiveAt:  st.LastActiveAt,
	}
	if !st.LastActiveAt.IsZero() && st.CurrentStreak > 0 {
		idle := now.Sub(st.LastActiveAt)
		v.StreakDanger = idle > StreakWarningAfter && idle < StreakResetAfter
	}

	for _, a := range achievements.Catalog() {
		v.Achievements = append(v.Achievements, AchievementStatus{Achievement: a, Unlocked: st.HasUnlocked(a.ID)})
	}

	for _, m := range s.state.OrderedMuscles() {
		v.Muscles = append(v.Muscles, MuscleCount{ID: m.ID, Name: m.Name, RepCount: m.RepCount})
	}
	slices.SortStableFunc(v.Muscles, func(a, b MuscleCount) int {
		return cmp.Compare(b.RepCount, a.RepCount)
	})

	today := timex.DayOf(now, s.loc)
	counts := make(map[timex.Day]int)
	for _, ev := range s.state.Events {
		counts[timex.DayOf(ev.At, s.loc)]++
	}
	for i := 6; i >= 0; i-- {
		d := today.AddDays(-i)
		v.LastWeek = append(v.LastWeek, DayActivity{Day: d, Count: counts[d]})
	}
	return v
}
