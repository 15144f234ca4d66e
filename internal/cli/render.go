package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/musclemap/internal/models"
	"github.com/dmitrijs2005/musclemap/internal/recovery"
)

func (a *App) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
}

func (a *App) Status(ctx context.Context) error {
	st := a.session.Stats()
	fmt.Fprintf(a.out, "Level %d, %d XP (%d%% of the way to %d XP)\n",
		st.Level, st.XP, int(st.Progress*100), st.NextLevelXP)
	fmt.Fprintf(a.out, "Streak %d days, best %d\n", st.CurrentStreak, st.BestStreak)
	if st.StreakDanger {
		fmt.Fprintln(a.out, "[!] Streak in danger, train today to keep it")
	}

	today := a.session.Today()
	var due []string
	for _, p := range a.session.PlanReport().Todo {
		if p.Day == today {
			due = append(due, muscleName(p.MuscleID))
		}
	}
	if len(due) > 0 {
		fmt.Fprintf(a.out, "Planned for today: %s\n", strings.Join(due, ", "))
	}
	return nil
}

func (a *App) Map(ctx context.Context) error {
	w := a.table()
	var side models.Side
	for _, r := range a.session.BodyMap() {
		if r.Side != side {
			side = r.Side
			fmt.Fprintf(w, "%s\n", strings.ToUpper(string(side)))
		}
		mark := ""
		if r.Animating {
			mark = " *"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\tx%.2f\t%d reps%s\n", r.Name, r.Phase, r.Color, r.GrowthScale, r.RepCount, mark)
	}
	return w.Flush()
}

func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage("show <muscle>")
	}
	id, err := parseMuscle(args[0])
	if err != nil {
		return err
	}
	d, err := a.session.Muscle(id)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s: %s (%s)\n", d.Record.Name, d.Headline, d.Phase)
	fmt.Fprintf(a.out, "  %s\n", d.Advice)

	tier := fmt.Sprintf("tier %d %s (%d/%d)", d.Tier.Level, d.Tier.Title, d.Record.RepCount, d.Tier.Next)
	if d.Tier.IsMax() {
		tier = fmt.Sprintf("tier %d %s (max)", d.Tier.Level, d.Tier.Title)
	}
	fmt.Fprintf(a.out, "  %d reps, %s, growth x%.2f\n", d.Record.RepCount, tier, d.Record.GrowthScale)

	if d.LatestEvent != nil {
		fmt.Fprintf(a.out, "  Last workout %s (+%d XP, id %s)\n",
			a.formatTime(d.LatestEvent.At), d.LatestEvent.XPAwarded, shortID(d.LatestEvent.ID))
	}
	if d.LatestPhoto != nil {
		fmt.Fprintf(a.out, "  Latest photo %s\n", a.formatTime(d.LatestPhoto.TakenAt))
	}
	if !d.CanLog {
		fmt.Fprintf(a.out, "  Just trained: use 'force %s' to log anyway\n", id)
	}
	return nil
}

func (a *App) History(ctx context.Context, args []string) error {
	var filter models.MuscleID
	if len(args) > 0 {
		id, err := parseMuscle(args[0])
		if err != nil {
			return err
		}
		filter = id
	}

	events := a.session.History(filter)
	if len(events) == 0 {
		fmt.Fprintln(a.out, "No workouts yet")
		return nil
	}

	w := a.table()
	for i, ev := range events {
		if i == historyLimit {
			fmt.Fprintf(w, "... %d more\n", len(events)-historyLimit)
			break
		}
		var flags []string
		if ev.Forced {
			flags = append(flags, "forced")
		}
		if ev.Source != models.SourceLive {
			flags = append(flags, string(ev.Source))
		}
		if ev.PlanID != "" {
			flags = append(flags, "planned")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%+d XP\t%s\n",
			shortID(ev.ID), a.formatTime(ev.At), muscleName(ev.MuscleID), ev.XPAwarded, strings.Join(flags, ","))
	}
	return w.Flush()
}

func (a *App) Plans(ctx context.Context) error {
	r := a.session.PlanReport()
	if len(r.Todo)+len(r.Completed)+len(r.Missed) == 0 {
		fmt.Fprintln(a.out, "No plans yet")
		return nil
	}

	w := a.table()
	for _, section := range []struct {
		title string
		list  []models.PlanCommitment
	}{
		{"To do", r.Todo},
		{"Completed", r.Completed},
		{"Missed", r.Missed},
	} {
		if len(section.list) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s\n", section.title)
		for _, p := range section.list {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", p.Day, muscleName(p.MuscleID), shortID(p.ID))
		}
	}
	return w.Flush()
}

func (a *App) Gallery(ctx context.Context, args []string) error {
	var filter models.MuscleID
	if len(args) > 0 {
		id, err := parseMuscle(args[0])
		if err != nil {
			return err
		}
		filter = id
	}

	photos := a.session.Gallery(filter)
	if len(photos) == 0 {
		fmt.Fprintln(a.out, "No photos yet")
		return nil
	}
	w := a.table()
	for _, p := range photos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d KB\n",
			shortID(p.ID), a.formatTime(p.TakenAt), muscleName(p.MuscleID), len(p.Payload)*3/4/1024)
	}
	return w.Flush()
}

func (a *App) Stats(ctx context.Context) error {
	st := a.session.Stats()
	if err := a.Status(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Achievements")
	for _, ach := range st.Achievements {
		mark := "[ ]"
		if ach.Unlocked {
			mark = "[x]"
		}
		fmt.Fprintf(a.out, "  %s %s (+%d XP): %s\n", mark, ach.Title, ach.XPReward, ach.Description)
	}

	fmt.Fprintln(a.out, "Most trained")
	w := a.table()
	shown := 0
	for _, m := range st.Muscles {
		if m.RepCount == 0 || shown == 5 {
			break
		}
		fmt.Fprintf(w, "  %s\t%d\n", m.Name, m.RepCount)
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(w, "  nothing yet")
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Last 7 days")
	for _, d := range st.LastWeek {
		fmt.Fprintf(a.out, "  %s %s %d\n", d.Day, strings.Repeat("#", d.Count)+strings.Repeat(".", max(0, 12-d.Count)), d.Count)
	}
	return nil
}

func (a *App) Settings(ctx context.Context) error {
	s := a.session.Settings()
	w := a.table()
	fmt.Fprintf(w, "active\t%s\n", s.Durations.Active)
	fmt.Fprintf(w, "recovering\t%s\n", s.Durations.Recovering)
	fmt.Fprintf(w, "peak\t%s\n", s.Durations.Peak)
	fmt.Fprintln(w, "Colors")
	for _, p := range recovery.Phases {
		fmt.Fprintf(w, "  %s\t%s\n", p, s.ColorFor(p))
	}
	return w.Flush()
}
