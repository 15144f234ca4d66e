// Package recovery derives a muscle's recovery phase from the time elapsed
// since it was last trained.
package recovery

import "time"

// Phase is one of the recovery states a muscle moves through.
type Phase string

const (
	// Neutral means the muscle has never been trained.
	Neutral Phase = "neutral"
	// Active is the window right after training; live logs need to be forced.
	Active Phase = "active"
	// Recovering is the sore window; logging is allowed.
	Recovering Phase = "recovering"
	// Peak is the fully recovered window where training is encouraged.
	Peak Phase = "peak"
	// Stale means the muscle needs reactivation.
	Stale Phase = "stale"
)

// Phases lists every phase in display order.
var Phases = []Phase{Neutral, Active, Recovering, Peak, Stale}

// Label returns a short human readable description of the phase.
func (p Phase) Label() string {
	switch p {
	case Active:
		return "just trained"
	case Recovering:
		return "sore"
	case Peak:
		return "fully recovered"
	case Stale:
		return "needs activation"
	default:
		return "never trained"
	}
}

// Durations are the widths of the three timed phases. Boundaries are
// cumulative: Active covers [0, Active), Recovering the next Recovering
// hours, Peak the next Peak hours, and anything later is Stale.
type Durations struct {
	Active     time.Duration `json:"active"`
	Recovering time.Duration `json:"recovering"`
	Peak       time.Duration `json:"peak"`
}

// DefaultDurations are 24h active, 24h recovering, 72h peak.
func DefaultDurations() Durations {
	return Durations{
		Active:     24 * time.Hour,
		Recovering: 24 * time.Hour,
		Peak:       72 * time.Hour,
	}
}

// Clamp replaces negative widths with zero.
func (d Durations) Clamp() Durations {
	if d.Active < 0 {
		d.Active = 0
	}
	if d.Recovering < 0 {
		d.Recovering = 0
	}
	if d.Peak < 0 {
		d.Peak = 0
	}
	return d
}

// PhaseAt classifies a muscle whose last activity was at last. A nil last
// means never trained. Zero-width phases are skipped. A last activity in the
// future counts as zero elapsed time.
func PhaseAt(last *time.Time, now time.Time, d Durations) Phase {
	if last == nil {
		return Neutral
	}
	d = d.Clamp()

	elapsed := now.Sub(*last)
	if elapsed < 0 {
		elapsed = 0
	}

	switch {
	case elapsed < d.Active:
		return Active
	case elapsed < d.Active+d.Recovering:
		return Recovering
	case elapsed < d.Active+d.Recovering+d.Peak:
		return Peak
	default:
		return Stale
	}
}
