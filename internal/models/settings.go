package models

import "github.com/dmitrijs2005/musclemap/internal/recovery"

// RecoverySettings configure the recovery clock and the display palette.
type RecoverySettings struct {
	Durations recovery.Durations `json:"durations"`
	// Colors are display-only.
	Colors map[recovery.Phase]string `json:"colors"`
}

// DefaultColors is the stock palette.
func DefaultColors() map[recovery.Phase]string {
	return map[recovery.Phase]string{
		recovery.Active:     "#facc15",
		recovery.Recovering: "#ef4444",
		recovery.Peak:       "#10b981",
		recovery.Stale:      "#94a3b8",
		recovery.Neutral:    "#475569",
	}
}

// DefaultRecoverySettings returns the stock settings.
func DefaultRecoverySettings() RecoverySettings {
	return RecoverySettings{
		Durations: recovery.DefaultDurations(),
		Colors:    DefaultColors(),
	}
}

// Normalize clamps durations and fills missing colors with defaults.
func (s RecoverySettings) Normalize() RecoverySettings {
	out := RecoverySettings{
		Durations: s.Durations.Clamp(),
		Colors:    DefaultColors(),
	}
	for phase, color := range s.Colors {
		if color != "" {
			out.Colors[phase] = color
		}
	}
	return out
}

// ColorFor returns the display color of a phase.
func (s RecoverySettings) ColorFor(p recovery.Phase) string {
	if c, ok := s.Colors[p]; ok && c != "" {
		return c
	}
	return DefaultColors()[p]
}
