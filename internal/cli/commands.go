package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/musclemap/internal/achievements"
	"github.com/dmitrijs2005/musclemap/internal/common"
	"github.com/dmitrijs2005/musclemap/internal/imagex"
	"github.com/dmitrijs2005/musclemap/internal/models"
	"github.com/dmitrijs2005/musclemap/internal/recovery"
	"github.com/dmitrijs2005/musclemap/internal/session"
	"github.com/dmitrijs2005/musclemap/internal/timex"
)

const historyLimit = 20

func parseMuscle(s string) (models.MuscleID, error) {
	return models.ParseMuscleID(strings.ToLower(s))
}

func parseMuscles(args []string) ([]models.MuscleID, error) {
	if len(args) == 1 && strings.EqualFold(args[0], "all") {
		return models.MuscleIDs(), nil
	}
	ids := make([]models.MuscleID, 0, len(args))
	for _, arg := range args {
		id, err := parseMuscle(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseDay accepts today, tomorrow, yesterday or YYYY-MM-DD.
func parseDay(s string, today timex.Day) (timex.Day, error) {
	switch strings.ToLower(s) {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	case "yesterday":
		return today.AddDays(-1), nil
	}
	return timex.ParseDay(s)
}

func muscleName(id models.MuscleID) string {
	if info, ok := models.LookupMuscle(id); ok {
		return info.Name
	}
	return string(id)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// matchID resolves a full id or a unique prefix of one.
func matchID(prefix string, ids []string, notFound error) (string, error) {
	var found []string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w: %q", notFound, prefix)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("ambiguous id %q matches %d entries", prefix, len(found))
	}
}

func (a *App) formatTime(t time.Time) string {
	return t.In(a.session.Location()).Format("2006-01-02 15:04")
}

func (a *App) Log(ctx context.Context, args []string, force bool) error {
	if len(args) != 1 {
		if force {
			return errUsage("force <muscle>")
		}
		return errUsage("log <muscle>")
	}
	id, err := parseMuscle(args[0])
	if err != nil {
		return err
	}
	res, err := a.session.LogWorkout(ctx, id, force)
	if err != nil {
		return err
	}
	a.reportUnlocks(res)
	return nil
}

func (a *App) Retro(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage("retro <muscle> <YYYY-MM-DD>")
	}
	id, err := parseMuscle(args[0])
	if err != nil {
		return err
	}
	day, err := parseDay(args[1], a.session.Today())
	if err != nil {
		return err
	}
	res, err := a.session.LogRetroactive(ctx, id, day)
	if err != nil {
		return err
	}
	a.reportUnlocks(res)
	return nil
}

func (a *App) Full(ctx context.Context) error {
	res, err := a.session.LogFullBody(ctx)
	if err != nil {
		return err
	}
	a.reportUnlocks(res)
	return nil
}

// reportUnlocks prints the XP earned by the achievements a log unlocked.
func (a *App) reportUnlocks(res session.LogResult) {
	if len(res.Achievements) == 0 {
		return
	}
	fmt.Fprintf(a.out, "%d achievement(s) unlocked, bonus +%d XP\n",
		len(res.Achievements), achievements.TotalReward(res.Achievements))
}

func (a *App) Undo(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage("undo <muscle|workout-id>")
	}

	var eventID string
	if id, err := parseMuscle(args[0]); err == nil {
		ev, ok := a.session.LatestEvent(id)
		if !ok {
			return fmt.Errorf("%w: no workouts for %s", common.ErrEventNotFound, muscleName(id))
		}
		eventID = ev.ID
	} else {
		history := a.session.History("")
		ids := make([]string, len(history))
		for i, ev := range history {
			ids[i] = ev.ID
		}
		if eventID, err = matchID(args[0], ids, common.ErrEventNotFound); err != nil {
			return err
		}
	}

	_, err := a.session.DeleteWorkout(ctx, eventID)
	return err
}

func (a *App) Plan(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage("plan <day> <muscle...|all>")
	}
	day, err := parseDay(args[0], a.session.Today())
	if err != nil {
		return err
	}
	muscles, err := parseMuscles(args[1:])
	if err != nil {
		return err
	}
	_, err = a.session.AddPlans(ctx, day, muscles)
	return err
}

func (a *App) Unplan(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage("unplan <plan-id>")
	}
	snap := a.session.Snapshot()
	ids := make([]string, len(snap.Plans))
	for i, p := range snap.Plans {
		ids[i] = p.ID
	}
	id, err := matchID(args[0], ids, common.ErrPlanNotFound)
	if err != nil {
		return err
	}
	return a.session.DeletePlan(ctx, id)
}

func (a *App) Photo(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage("photo <muscle> <file>")
	}
	id, err := parseMuscle(args[0])
	if err != nil {
		return err
	}

	f, err := os.Open(args[1])
	if err != nil {
		return fmt.Errorf("open photo: %w", err)
	}
	defer f.Close()

	payload, err := imagex.Compress(f, a.cfg.PhotoMaxWidth, a.cfg.PhotoQuality)
	if err != nil {
		return err
	}
	photo, err := a.session.AttachPhoto(ctx, id, payload)
	if err != nil {
		return err
	}

	key, err := a.archive.Put(ctx, photo)
	if err != nil {
		a.log.Warn(ctx, "photo archive upload failed", "photo", photo.ID, "error", err)
		fmt.Fprintln(a.out, "[!] Photo kept locally, archive upload failed")
		return nil
	}
	if key != "" {
		a.log.Info(ctx, "photo archived", "photo", photo.ID, "key", key)
	}
	return nil
}

func (a *App) Set(ctx context.Context, args []string) error {
	settings := a.session.Settings()

	switch {
	case len(args) == 3 && strings.EqualFold(args[0], "color"):
		settings.Colors[recovery.Phase(strings.ToLower(args[1]))] = args[2]
	case len(args) == 2:
		d, err := time.ParseDuration(args[1])
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrInvalidSettings, err)
		}
		switch recovery.Phase(strings.ToLower(args[0])) {
		case recovery.Active:
			settings.Durations.Active = d
		case recovery.Recovering:
			settings.Durations.Recovering = d
		case recovery.Peak:
			settings.Durations.Peak = d
		default:
			return fmt.Errorf("%w: only active, recovering and peak have durations", common.ErrInvalidSettings)
		}
	default:
		return errUsage("set <active|recovering|peak> <duration> | set color <phase> <#hex>")
	}

	_, err := a.session.UpdateSettings(ctx, settings)
	return err
}
