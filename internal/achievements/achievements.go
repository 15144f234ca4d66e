// Package achievements holds the closed achievement catalog and a pure
// evaluator that reports which achievements have newly qualified.
package achievements

import (
	"github.com/dmitrijs2005/musclemap/internal/models"
)

// Catalog ids. They are persisted, so never rename one.
const (
	FirstLog      = "first_blood"
	Streak3       = "streak_3"
	Streak7       = "streak_7"
	Streak30      = "streak_30"
	ChestMaster   = "chest_master"
	LegDayWarrior = "leg_day_warrior"
	FullBody      = "full_body"
	Photographer  = "photographer"
)

// MuscleMilestone is the rep count the muscle-specific achievements require.
const MuscleMilestone = 10

// Input is everything a predicate may look at.
type Input struct {
	Stats   models.UserStats
	Muscles map[models.MuscleID]*models.MuscleRecord
	// History includes the event that triggered the evaluation, if any.
	History []models.WorkoutEvent
	// Last is the triggering event; nil when the trigger was not a workout.
	Last *models.WorkoutEvent
}

// Achievement is a catalog entry.
type Achievement struct {
	ID          string
	Title       string
	Description string
	XPReward    int

	unlocked func(in Input) bool
}

var catalog = []Achievement{
	{
		ID: FirstLog, Title: "Fresh start", Description: "Log your first workout", XPReward: 50,
		unlocked: func(in Input) bool { return len(in.History) >= 1 },
	},
	{
		ID: Streak3, Title: "Habit forming", Description: "Train 3 days in a row", XPReward: 100,
		unlocked: streakAtLeast(3),
	},
	{
		ID: Streak7, Title: "Relentless", Description: "Train 7 days in a row", XPReward: 300,
		unlocked: streakAtLeast(7),
	},
	{
		ID: Streak30, Title: "Gym regular", Description: "Train 30 days in a row", XPReward: 1000,
		unlocked: streakAtLeast(30),
	},
	{
		ID: ChestMaster, Title: "Armored chest", Description: "Train chest 10 times", XPReward: 150,
		unlocked: repsAtLeast(models.Chest, MuscleMilestone),
	},
	{
		ID: LegDayWarrior, Title: "Leg day warrior", Description: "Train quads 10 times", XPReward: 150,
		unlocked: repsAtLeast(models.Quads, MuscleMilestone),
	},
	{
		ID: FullBody, Title: "Fully awake", Description: "Train every muscle at least once", XPReward: 200,
		unlocked: func(in Input) bool {
			for _, id := range models.MuscleIDs() {
				m, ok := in.Muscles[id]
				if !ok || m.RepCount < 1 {
					return false
				}
			}
			return true
		},
	},
	{
		ID: Photographer, Title: "Self portrait", Description: "Attach your first progress photo", XPReward: 100,
		unlocked: func(in Input) bool {
			for _, m := range in.Muscles {
				if m != nil && len(m.Photos) > 0 {
					return true
				}
			}
			return false
		},
	},
}


func streakAtLeast(n int) func(Input) bool {
	return func(in Input) bool { return in.Stats.CurrentStreak >= n }
}

func repsAtLeast(id models.MuscleID, n int) func(Input) bool {
	return func(in Input) bool {
		m, ok := in.Muscles[id]
		return ok && m != nil && m.RepCount >= n
	}
}

// Catalog returns every achievement in display order.
func Catalog() []Achievement {
	out := make([]Achievement, len(catalog))
	copy(out, catalog)
	return out
}

// Evaluate returns, in catalog order, the achievements whose predicate holds
// and which are not yet in in.Stats.UnlockedAchievements. It does not mutate
// its input; applying rewards is up to the caller.
func Evaluate(in Input) []Achievement {
	var out []Achievement
	for _, a := range catalog {
		if in.Stats.HasUnlocked(a.ID) {
			continue
		}
		if a.unlocked(in) {
			out = append(out, a)
		}
	}
	return out
}

// TotalReward sums the XP rewards of list.
func TotalReward(list []Achievement) int {
	total := 0
	for _, a := range list {
		total += a.XPReward
	}
	return total
}
