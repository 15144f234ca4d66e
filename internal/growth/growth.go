// Package growth maps a muscle's cumulative rep count to the visual growth
// scale and the named tier shown next to it.
package growth

import "math"

const (
	// Rate is the scale gained per logged workout.
	Rate = 0.02
	// MaxScale caps the growth scale.
	MaxScale = 1.4
)

// Scale returns min(1 + count*Rate, MaxScale). Negative counts are treated as zero.
func Scale(count int) float64 {
	if count < 0 {
		count = 0
	}
	return math.Min(1+float64(count)*Rate, MaxScale)
}

// Tier is a named rep-count band.
type Tier struct {
	Level int
	Title string
	// Next is the rep count that reaches the next tier. The last tier has no
	// further tier and reports MaxTierNext for progress display.
	Next int
}

// MaxTierNext is the display target of the final tier.
const MaxTierNext = 100

var tiers = []Tier{
	{Level: 1, Title: "awakening", Next: 5},
	{Level: 2, Title: "neural adaptation", Next: 10},
	{Level: 3, Title: "pump", Next: 20},
	{Level: 4, Title: "shaping", Next: 50},
	{Level: 5, Title: "sculpted", Next: MaxTierNext},
}

// TierFor returns the tier for count.
func TierFor(count int) Tier {
	for _, t := range tiers[:len(tiers)-1] {
		if count < t.Next {
			return t
		}
	}
	return tiers[len(tiers)-1]
}

// IsMax reports whether t is the final tier.
func (t Tier) IsMax() bool {
	return t.Level == tiers[len(tiers)-1].Level
}
