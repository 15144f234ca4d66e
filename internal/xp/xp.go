// Package xp is the experience/level model. XP is the single source of
// truth; the level is always derived from it.
package xp

import "math"

const (
	// Base is awarded for every logged workout.
	Base = 20
	// ForcedBonus is added when a workout was forced through the active phase.
	ForcedBonus = 10
	// StreakBonusPerDay is the bonus per streak day, capped at MaxStreakBonus.
	StreakBonusPerDay = 2
	MaxStreakBonus    = 20

	// PlanCreate is awarded per commitment made.
	PlanCreate = 5
	// PlanComplete is awarded when a commitment is fulfilled on its day.
	PlanComplete = 25
	// PlanMiss is deducted for every missed commitment.
	PlanMiss = 20

	// K scales the level curve: level = floor(1 + sqrt(xp/K)).
	K = 30
)

// Gain returns the XP awarded for one workout.
func Gain(forced bool, streak int) int {
	gain := Base
	if forced {
		gain += ForcedBonus
	}
	if streak > 0 {
		gain += min(streak*StreakBonusPerDay, MaxStreakBonus)
	}
	return gain
}

// Level returns floor(1 + sqrt(xp/K)); 1 for any xp <= 0.
func Level(xp int) int {
	if xp <= 0 {
		return 1
	}
	lvl := int(math.Floor(1 + math.Sqrt(float64(xp)/K)))
	// float drift right at the boundaries
	for lvl > 1 && ForLevel(lvl-1) > xp {
		lvl--
	}
	for ForLevel(lvl) <= xp {
		lvl++
	}
	return lvl
}

// ForLevel is the cumulative XP at which level ends, i.e. the XP needed to
// reach level+1. ForLevel(0) is zero.
func ForLevel(level int) int {
	return K * level * level
}

// Progress is the fraction of the way from ForLevel(level-1) to
// ForLevel(level), clamped to [0, 1].
func Progress(xp, level int) float64 {
	if level < 1 {
		level = 1
	}
	lo := float64(ForLevel(level - 1))
	hi := float64(ForLevel(level))
	p := (float64(xp) - lo) / (hi - lo)
	return math.Max(0, math.Min(1, p))
}

// Clamp floors xp at zero.
func Clamp(xp int) int {
	if xp < 0 {
		return 0
	}
	return xp
}
