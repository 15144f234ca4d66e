package models

import (
	"maps"
	"slices"

	"github.com/dmitrijs2005/musclemap/internal/timex"
)

// Markers are the date guards of the daily tick checks.
type Markers struct {
	LastReminderDay    timex.Day `json:"lastReminderDay"`
	LastSweepDay       timex.Day `json:"lastSweepDay"`
	LastStreakResetDay timex.Day `json:"lastStreakResetDay"`
}

// Snapshot is the full tracker state, the unit of persistence.
type Snapshot struct {
	Muscles  map[MuscleID]*MuscleRecord `json:"muscles"`
	Events   []WorkoutEvent             `json:"events"`
	Plans    []PlanCommitment           `json:"plans"`
	Settings RecoverySettings           `json:"settings"`
	Stats    UserStats                  `json:"stats"`
	Markers  Markers                    `json:"markers"`
}

// NewSnapshot returns the initial state with one untrained record per muscle.
func NewSnapshot() *Snapshot {
	s := &Snapshot{
		Muscles:  make(map[MuscleID]*MuscleRecord, len(catalog)),
		Events:   []WorkoutEvent{},
		Plans:    []PlanCommitment{},
		Settings: DefaultRecoverySettings(),
		Stats:    NewUserStats(),
	}
	for _, info := range catalog {
		s.Muscles[info.ID] = NewMuscleRecord(info)
	}
	return s
}

// Muscle returns the record for id.
func (s *Snapshot) Muscle(id MuscleID) (*MuscleRecord, bool) {
	m, ok := s.Muscles[id]
	return m, ok
}

// OrderedMuscles returns the records in catalog order.
func (s *Snapshot) OrderedMuscles() []*MuscleRecord {
	out := make([]*MuscleRecord, 0, len(s.Muscles))
	for _, info := range catalog {
		if m, ok := s.Muscles[info.ID]; ok {
			out = append(out, m)
		}
	}
	return out
}

// FindEvent returns the index of the event with id, or -1.
func (s *Snapshot) FindEvent(id string) int {
	return slices.IndexFunc(s.Events, func(e WorkoutEvent) bool { return e.ID == id })
}

// FindPlan returns the index of the plan with id, or -1.
func (s *Snapshot) FindPlan(id string) int {
	return slices.IndexFunc(s.Plans, func(p PlanCommitment) bool { return p.ID == id })
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Muscles:  make(map[MuscleID]*MuscleRecord, len(s.Muscles)),
		Events:   slices.Clone(s.Events),
		Plans:    slices.Clone(s.Plans),
		Settings: RecoverySettings{Durations: s.Settings.Durations, Colors: maps.Clone(s.Settings.Colors)},
		Stats:    s.Stats,
		Markers:  s.Markers,
	}
	c.Stats.UnlockedAchievements = slices.Clone(s.Stats.UnlockedAchievements)
	for id, m := range s.Muscles {
		c.Muscles[id] = m.Clone()
	}
	if c.Events == nil {
		c.Events = []WorkoutEvent{}
	}
	if c.Plans == nil {
		c.Plans = []PlanCommitment{}
	}
	if c.Stats.UnlockedAchievements == nil {
		c.Stats.UnlockedAchievements = []string{}
	}
	return c
}

// Normalize makes a loaded snapshot structurally valid: every catalog muscle
// has a record with its catalog name, unknown muscles and their events and
// plans are dropped, nil collections become empty, settings are merged with
// defaults and the level cache is recomputed.
func (s *Snapshot) Normalize() {
	if s.Muscles == nil {
		s.Muscles = make(map[MuscleID]*MuscleRecord, len(catalog))
	}
	for id := range s.Muscles {
		if !id.IsValid() || s.Muscles[id] == nil {
			delete(s.Muscles, id)
		}
	}
	for _, info := range catalog {
		m, ok := s.Muscles[info.ID]
		if !ok {
			s.Muscles[info.ID] = NewMuscleRecord(info)
			continue
		}
		m.ID = info.ID
		m.Name = info.Name
		if m.Photos == nil {
			m.Photos = []Photo{}
		}
		m.SetRepCount(m.RepCount)
	}

	s.Events = slices.DeleteFunc(slices.Clone(s.Events), func(e WorkoutEvent) bool {
		return !e.MuscleID.IsValid()
	})
	s.Plans = slices.DeleteFunc(slices.Clone(s.Plans), func(p PlanCommitment) bool {
		return !p.MuscleID.IsValid()
	})
	if s.Events == nil {
		s.Events = []WorkoutEvent{}
	}
	if s.Plans == nil {
		s.Plans = []PlanCommitment{}
	}
	if s.Stats.UnlockedAchievements == nil {
		s.Stats.UnlockedAchievements = []string{}
	}
	s.Stats.RefreshLevel()
	s.Settings = s.Settings.Normalize()
}
