package session

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/musclemap/internal/metrics"
	"github.com/dmitrijs2005/musclemap/internal/models"
	"github.com/dmitrijs2005/musclemap/internal/notify"
	"github.com/dmitrijs2005/musclemap/internal/plans"
	"github.com/dmitrijs2005/musclemap/internal/timex"
	"github.com/dmitrijs2005/musclemap/internal/xp"
)

// AddPlans commits to training the muscles on day, which must be today or
// later. Each new commitment earns the planning XP right away.
func (s *Session) AddPlans(ctx context.Context, day timex.Day, muscles []models.MuscleID) ([]models.PlanCommitment, error) {
	var created []models.PlanCommitment
	err := s.apply(ctx, func(c *change) error {
		var err error
		created, err = plans.Add(c.st, day, c.today, muscles, c.now)
		if err != nil {
			return err
		}
		if len(created) == 0 {
			c.skipSave = true
			c.notify(notify.Info, fmt.Sprintf("Already planned for %s", day))
			return nil
		}
		n := len(created)
		c.record(func(m *metrics.Manager) { m.PlansCreated(n) })
		c.notify(notify.Success, fmt.Sprintf("Added %d plans for %s (+%d XP)", n, day, n*xp.PlanCreate))
		return nil
	})
	return created, err
}

// DeletePlan removes a commitment. No XP changes hands.
func (s *Session) DeletePlan(ctx context.Context, planID string) error {
	return s.apply(ctx, func(c *change) error {
		p, err := plans.Delete(c.st, planID)
		if err != nil {
			return err
		}
		c.notify(notify.Info, fmt.Sprintf("Plan for %s on %s removed", p.MuscleID, p.Day))
		return nil
	})
}

// PlanReport buckets every commitment relative to today.
func (s *Session) PlanReport() plans.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return plans.BuildReport(s.state, s.Today())
}
