package models

import (
	"slices"
	"time"

	"github.com/dmitrijs2005/musclemap/internal/xp"
)

// UserStats is the gamification state.
type UserStats struct {
	XP int `json:"xp"`
	// Level is a display cache of xp.Level(XP), refreshed by every XP change.
	Level         int `json:"level"`
	CurrentStreak int `json:"currentStreak"`
	BestStreak    int `json:"bestStreak"`
	// LastActiveAt is the most recent streak-affecting event; zero means unset.
	LastActiveAt time.Time `json:"lastActiveAt"`
	// UnlockedAchievements only grows.
	UnlockedAchievements []string `json:"unlockedAchievements"`
}

// NewUserStats returns the initial stats.
func NewUserStats() UserStats {
	return UserStats{Level: 1, UnlockedAchievements: []string{}}
}

// AddXP applies delta (which may be negative), floors XP at zero and
// refreshes the level. It returns the new level.
func (s *UserStats) AddXP(delta int) int {
	s.XP = xp.Clamp(s.XP + delta)
	s.Level = xp.Level(s.XP)
	return s.Level
}

// RefreshLevel recomputes the level cache from XP.
func (s *UserStats) RefreshLevel() {
	s.XP = xp.Clamp(s.XP)
	s.Level = xp.Level(s.XP)
}

// HasUnlocked reports whether the achievement id is unlocked.
func (s *UserStats) HasUnlocked(id string) bool {
	return slices.Contains(s.UnlockedAchievements, id)
}

// Unlock appends id unless present. It reports whether id was added.
func (s *UserStats) Unlock(id string) bool {
	if s.HasUnlocked(id) {
		return false
	}
	s.UnlockedAchievements = append(s.UnlockedAchievements, id)
	return true
}

// SetStreak updates the current streak and raises the best streak if needed.
func (s *UserStats) SetStreak(n int) {
	if n < 0 {
		n = 0
	}
	s.CurrentStreak = n
	if n > s.BestStreak {
		s.BestStreak = n
	}
}
