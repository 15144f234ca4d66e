package session

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/musclemap/internal/common"
	"github.com/dmitrijs2005/musclemap/internal/models"
	"github.com/dmitrijs2005/musclemap/internal/notify"
	"github.com/google/uuid"
)

// AttachPhoto stores an opaque image payload on the muscle and re-evaluates
// achievements.
func (s *Session) AttachPhoto(ctx context.Context, id models.MuscleID, payload string) (models.Photo, error) {
	var photo models.Photo
	err := s.apply(ctx, func(c *change) error {
		m, ok := c.st.Muscle(id)
		if !ok {
			return fmt.Errorf("%w: %q", common.ErrUnknownMuscle, id)
		}
		if payload == "" {
			return common.ErrEmptyPhoto
		}

		photo = models.Photo{
			ID:       uuid.NewString(),
			MuscleID: id,
			TakenAt:  c.now,
			Payload:  payload,
		}
		m.Photos = append(m.Photos, photo)
		c.notify(notify.Success, fmt.Sprintf("Photo saved for %s", m.Name))

		var last *models.WorkoutEvent
		if n := len(c.st.Events); n > 0 {
			ev := c.st.Events[n-1]
			last = &ev
		}
		c.unlock(last)
		return nil
	})
	return photo, err
}

// Gallery returns photos newest first, optionally for one muscle only.
func (s *Session) Gallery(filter models.MuscleID) []models.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Photo
	for _, m := range s.state.OrderedMuscles() {
		if filter != "" && m.ID != filter {
			continue
		}
		out = append(out, m.Photos...)
	}
	slices.SortStableFunc(out, func(a, b models.Photo) int {
		return b.TakenAt.Compare(a.TakenAt)
	})
	return out
}
