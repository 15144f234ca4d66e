package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// errUsage marks a malformed command line. Its text is the usage line.
type errUsage string

func (e errUsage) Error() string { return "usage: " + string(e) }

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests use a recording stub.
type execIface interface {
	Status(ctx context.Context) error
	Map(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Log(ctx context.Context, args []string, force bool) error
	Retro(ctx context.Context, args []string) error
	Full(ctx context.Context) error
	Undo(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
	Plan(ctx context.Context, args []string) error
	Unplan(ctx context.Context, args []string) error
	Plans(ctx context.Context) error
	Photo(ctx context.Context, args []string) error
	Gallery(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
	Settings(ctx context.Context) error
	Set(ctx context.Context, args []string) error
}

const helpText = `Commands:
  status                         level, xp, streak and today's plans
  map                            recovery phase of every muscle
  show <muscle>                  details and advice for one muscle
  log <muscle>                   log a workout now
  force <muscle>                 log even if the muscle was just trained
  retro <muscle> <YYYY-MM-DD>    backfill a past workout
  full                           full-body check-in
  undo <muscle|workout-id>       remove the latest workout of a muscle, or one by id
  history [muscle]               workout log, newest first
  plan <day> <muscle...|all>     commit to train on day (today, tomorrow, YYYY-MM-DD)
  unplan <plan-id>               drop a commitment
  plans                          planned, completed and missed commitments
  photo <muscle> <file>          attach a progress photo
  gallery [muscle]               list photos, newest first
  stats                          achievements and activity
  settings                       recovery durations and colors
  set <phase> <duration>         e.g. set peak 72h
  set color <phase> <#hex>       e.g. set color peak #10b981
  help | exit | quit`

// runREPL reads commands line by line and dispatches them to a until input
// ends or the user types "exit" or "quit". The prompt is printed before
// each line unless promptFn returns "". Command errors are reported and
// the loop keeps going.
func runREPL(ctx context.Context, a execIface, promptFn func() string, scanner *bufio.Scanner, out io.Writer) {
	for {
		if p := promptFn(); p != "" {
			fmt.Fprint(out, p)
		}
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		var err error
		switch cmd {
		case "help", "?":
			fmt.Fprintln(out, helpText)
		case "status", "s":
			err = a.Status(ctx)
		case "map", "m":
			err = a.Map(ctx)
		case "show":
			err = a.Show(ctx, args)
		case "log", "l":
			err = a.Log(ctx, args, false)
		case "force":
			err = a.Log(ctx, args, true)
		case "retro":
			err = a.Retro(ctx, args)
		case "full":
			err = a.Full(ctx)
		case "undo":
			err = a.Undo(ctx, args)
		case "history", "h":
			err = a.History(ctx, args)
		case "plan":
			err = a.Plan(ctx, args)
		case "unplan":
			err = a.Unplan(ctx, args)
		case "plans":
			err = a.Plans(ctx)
		case "photo":
			err = a.Photo(ctx, args)
		case "gallery":
			err = a.Gallery(ctx, args)
		case "stats":
			err = a.Stats(ctx)
		case "settings":
			err = a.Settings(ctx)
		case "set":
			err = a.Set(ctx, args)
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
			continue
		}

		if err != nil {
			var usage errUsage
			if errors.As(err, &usage) {
				fmt.Fprintln(out, usage.Error())
				continue
			}
			fmt.Fprintln(out, "error:", err)
		}
	}
}
