package session

import (
	"context"
	"fmt"
	"regexp"
	"slices"

	"github.com/dmitrijs2005/musclemap/internal/common"
	"github.com/dmitrijs2005/musclemap/internal/models"
	"github.com/dmitrijs2005/musclemap/internal/notify"
	"github.com/dmitrijs2005/musclemap/internal/recovery"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Settings returns the current recovery settings.
func (s *Session) Settings() models.RecoverySettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Settings.Normalize()
}

// UpdateSettings replaces the recovery settings. Durations are clamped at
// zero and missing colors fall back to the defaults.
func (s *Session) UpdateSettings(ctx context.Context, in models.RecoverySettings) (models.RecoverySettings, error) {
	var out models.RecoverySettings
	err := s.apply(ctx, func(c *change) error {
		for phase, color := range in.Colors {
			if !isPhase(phase) {
				return fmt.Errorf("%w: unknown phase %q", common.ErrInvalidSettings, phase)
			}
			if color != "" && !hexColor.MatchString(color) {
				return fmt.Errorf("%w: bad color %q for %s", common.ErrInvalidSettings, color, phase)
			}
		}
		c.st.Settings = in.Normalize()
		out = c.st.Settings
		c.notify(notify.Success, "Settings saved")
		return nil
	})
	return out, err
}

func isPhase(p recovery.Phase) bool {
	return slices.Contains(recovery.Phases, p)
}
