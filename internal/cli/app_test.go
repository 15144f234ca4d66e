package cli

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/musclemap/internal/common"
	"github.com/dmitrijs2005/musclemap/internal/config"
	"github.com/dmitrijs2005/musclemap/internal/logging"
	"github.com/dmitrijs2005/musclemap/internal/models"
	"github.com/dmitrijs2005/musclemap/internal/notify"
	"github.com/dmitrijs2005/musclemap/internal/session"
	"github.com/dmitrijs2005/musclemap/internal/storage/photoarchive"
	"github.com/dmitrijs2005/musclemap/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var day1 = time.Date(2026, 10, 10, 9, 0, 0, 0, time.UTC)

// syncBuffer is a bytes.Buffer safe for the watcher and the REPL writing
// at the same time.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

type fakeArchive struct {
	puts []models.Photo
	err  error
}

func (f *fakeArchive) Put(ctx context.Context, p models.Photo) (string, error) {
	f.puts = append(f.puts, p)
	if f.err != nil {
		return "", f.err
	}
	return "photos/" + string(p.MuscleID) + "/" + p.ID + ".jpg", nil
}

type fixture struct {
	app   *App
	out   *syncBuffer
	clock *timex.ManualClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.TickInterval = 10 * time.Millisecond

	out := &syncBuffer{}
	clock := timex.NewManualClock(day1)
	s := session.New(context.Background(), session.Options{
		Notifier: notify.NewConsole(out),
		Clock:    clock,
		Location: time.UTC,
		Logger:   logging.NewNop(),
	})
	return &fixture{
		app: &App{
			cfg:     cfg,
			session: s,
			archive: photoarchive.Nop{},
			log:     logging.NewNop(),
			in:      strings.NewReader(""),
			out:     out,
		},
		out:   out,
		clock: clock,
	}
}

func TestApp_LogAndUndo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.app.Log(ctx, []string{"Chest"}, false))
	assert.Contains(t, f.out.String(), "Workout logged for Chest")
	assert.Contains(t, f.out.String(), "1 achievement(s) unlocked, bonus +50 XP")

	err := f.app.Log(ctx, []string{"chest"}, false)
	assert.ErrorIs(t, err, common.ErrMuscleRecovering)

	require.NoError(t, f.app.Log(ctx, []string{"chest"}, true))
	assert.Contains(t, f.out.String(), "Forced workout logged for Chest")
	assert.Len(t, f.app.session.History(models.Chest), 2)

	require.NoError(t, f.app.Undo(ctx, []string{"chest"}))
	assert.Len(t, f.app.session.History(models.Chest), 1)

	ev := f.app.session.History("")[0]
	require.NoError(t, f.app.Undo(ctx, []string{ev.ID[:8]}))
	assert.Empty(t, f.app.session.History(""))

	assert.ErrorIs(t, f.app.Undo(ctx, []string{"chest"}), common.ErrEventNotFound)
	assert.ErrorIs(t, f.app.Undo(ctx, []string{"nope"}), common.ErrEventNotFound)
}

func TestApp_UsageAndParseErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var usage errUsage
	assert.ErrorAs(t, f.app.Log(ctx, nil, false), &usage)
	assert.ErrorAs(t, f.app.Retro(ctx, []string{"chest"}), &usage)
	assert.ErrorAs(t, f.app.Plan(ctx, []string{"today"}), &usage)
	assert.ErrorAs(t, f.app.Set(ctx, []string{"peak"}), &usage)

	assert.ErrorIs(t, f.app.Log(ctx, []string{"wings"}, false), common.ErrUnknownMuscle)
	assert.Error(t, f.app.Retro(ctx, []string{"chest", "10/10/2026"}))
	assert.ErrorIs(t, f.app.Retro(ctx, []string{"chest", "tomorrow"}), common.ErrFutureDate)
}

func TestApp_RetroAndHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.app.Retro(ctx, []string{"abs", "yesterday"}))
	require.NoError(t, f.app.Full(ctx))

	f.out.b.Reset()
	require.NoError(t, f.app.History(ctx, []string{"abs"}))
	out := f.out.String()
	assert.Contains(t, out, "2026-10-09 12:00")
	assert.Contains(t, out, "retro")
	assert.Contains(t, out, "fullbody")
	assert.Equal(t, 2, strings.Count(out, "Abs"))
}

func TestApp_PlansFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.app.Plan(ctx, []string{"today", "chest", "quads"}))
	require.NoError(t, f.app.Plan(ctx, []string{"2026-10-12", "all"}))
	assert.ErrorIs(t, f.app.Plan(ctx, []string{"yesterday", "chest"}), common.ErrPastPlanDate)

	require.NoError(t, f.app.Log(ctx, []string{"chest"}, false))

	f.out.b.Reset()
	require.NoError(t, f.app.Status(ctx))
	assert.Contains(t, f.out.String(), "Planned for today: Quads")

	f.out.b.Reset()
	require.NoError(t, f.app.Plans(ctx))
	out := f.out.String()
	assert.Contains(t, out, "To do")
	assert.Contains(t, out, "Completed")
	assert.NotContains(t, out, "Missed")

	report := f.app.session.PlanReport()
	require.NotEmpty(t, report.Todo)
	require.NoError(t, f.app.Unplan(ctx, []string{report.Todo[0].ID}))
	assert.Len(t, f.app.session.PlanReport().Todo, len(report.Todo)-1)
	assert.ErrorIs(t, f.app.Unplan(ctx, []string{"zzzz"}), common.ErrPlanNotFound)
}

func TestApp_ShowMapAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.app.Log(ctx, []string{"glutes"}, false))

	f.out.b.Reset()
	require.NoError(t, f.app.Show(ctx, []string{"glutes"}))
	out := f.out.String()
	assert.Contains(t, out, "Glutes: Just trained (active)")
	assert.Contains(t, out, "force glutes")
	assert.Contains(t, out, "1 reps, tier 1 awakening (1/5)")

	f.out.b.Reset()
	require.NoError(t, f.app.Map(ctx))
	out = f.out.String()
	assert.Contains(t, out, "FRONT")
	assert.Contains(t, out, "BACK")
	assert.Contains(t, out, "*")

	f.out.b.Reset()
	require.NoError(t, f.app.Stats(ctx))
	out = f.out.String()
	assert.Contains(t, out, "[x] Fresh start")
	assert.Contains(t, out, "[ ] Relentless")
	assert.Contains(t, out, "Glutes")
	assert.Contains(t, out, "2026-10-10 #")
}

func TestApp_SetAndSettings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.app.Set(ctx, []string{"peak", "48h"}))
	require.NoError(t, f.app.Set(ctx, []string{"color", "peak", "#00ff00"}))
	assert.ErrorIs(t, f.app.Set(ctx, []string{"color", "peak", "green"}), common.ErrInvalidSettings)
	assert.ErrorIs(t, f.app.Set(ctx, []string{"stale", "1h"}), common.ErrInvalidSettings)
	assert.ErrorIs(t, f.app.Set(ctx, []string{"peak", "soon"}), common.ErrInvalidSettings)

	s := f.app.session.Settings()
	assert.Equal(t, 48*time.Hour, s.Durations.Peak)

	f.out.b.Reset()
	require.NoError(t, f.app.Settings(ctx))
	assert.Contains(t, f.out.String(), "48h0m0s")
	assert.Contains(t, f.out.String(), "#00ff00")
}

func writePNG(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "me.png")
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	require.NoError(t, png.Encode(file, image.NewRGBA(image.Rect(0, 0, 20, 10))))
	return path
}

func TestApp_PhotoAndGallery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	archive := &fakeArchive{}
	f.app.archive = archive

	require.NoError(t, f.app.Photo(ctx, []string{"biceps", writePNG(t)}))
	require.Len(t, archive.puts, 1)
	assert.Equal(t, models.Biceps, archive.puts[0].MuscleID)
	assert.True(t, strings.HasPrefix(archive.puts[0].Payload, "data:image/jpeg;base64,"))
	assert.Contains(t, f.out.String(), "Self portrait")

	archive.err = errors.New("bucket gone")
	require.NoError(t, f.app.Photo(ctx, []string{"biceps", writePNG(t)}))
	assert.Contains(t, f.out.String(), "archive upload failed")
	assert.Len(t, f.app.session.Gallery(models.Biceps), 2)

	assert.Error(t, f.app.Photo(ctx, []string{"biceps", filepath.Join(t.TempDir(), "missing.png")}))

	f.out.b.Reset()
	require.NoError(t, f.app.Gallery(ctx, []string{"biceps"}))
	assert.Equal(t, 2, strings.Count(f.out.String(), "Biceps"))
}

func TestApp_EmptyViews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.app.History(ctx, nil))
	require.NoError(t, f.app.Plans(ctx))
	require.NoError(t, f.app.Gallery(ctx, nil))
	out := f.out.String()
	assert.Contains(t, out, "No workouts yet")
	assert.Contains(t, out, "No plans yet")
	assert.Contains(t, out, "No photos yet")
}

func TestStartTickWatcher_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.app.Plan(ctx, []string{"today", "chest"}))

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.app.StartTickWatcher(ctx, 5*time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(f.out.String(), "Reminder: 1 plans for today")
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.Equal(t, 1, strings.Count(f.out.String(), "Reminder:"))
}

func TestRun_ExitsOnEOF(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newFixture(t)
	f.app.in = strings.NewReader("log chest\nstatus\n")
	f.app.Run(context.Background())

	out := f.out.String()
	assert.Contains(t, out, "MuscleMap")
	assert.Contains(t, out, "Workout logged for Chest")
	assert.Contains(t, out, "Level ")
}

func TestNewApp_InMemoryStore(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabaseDSN = ":memory:"
	cfg.Location = "UTC"
	cfg.S3Bucket = "progress"

	origArchive := newArchive
	t.Cleanup(func() { newArchive = origArchive })
	newArchive = func(ctx context.Context, c photoarchive.Config) (photoarchive.Archive, error) {
		assert.Equal(t, "progress", c.Bucket)
		return &fakeArchive{}, nil
	}

	out := &syncBuffer{}
	app, err := NewApp(context.Background(), cfg, strings.NewReader(""), out)
	require.NoError(t, err)
	assert.IsType(t, &fakeArchive{}, app.archive)
	assert.False(t, app.interactive)
	assert.Empty(t, app.prompt())

	require.NoError(t, app.Log(context.Background(), []string{"calves"}, false))
	snap, err := app.store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Len(t, snap.Events, 1)

	assert.NoError(t, app.Close(context.Background()))
}

func TestNewApp_ArchiveFailureFallsBackToNop(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabaseDSN = filepath.Join(t.TempDir(), "nested", "musclemap.db")
	cfg.S3Bucket = "progress"

	origArchive := newArchive
	t.Cleanup(func() { newArchive = origArchive })
	newArchive = func(ctx context.Context, c photoarchive.Config) (photoarchive.Archive, error) {
		return nil, errors.New("no credentials")
	}

	app, err := NewApp(context.Background(), cfg, strings.NewReader(""), &syncBuffer{})
	require.NoError(t, err)
	assert.Equal(t, photoarchive.Nop{}, app.archive)
	assert.NoError(t, app.Close(context.Background()))
}

func TestPrepareSQLitePath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, prepareSQLitePath("sqlite://"+filepath.Join(dir, "x.db")+"?_pragma=foreign_keys(1)"))
	_, err := os.Stat(dir)
	assert.NoError(t, err)

	assert.NoError(t, prepareSQLitePath(":memory:"))
	assert.NoError(t, prepareSQLitePath("postgres://localhost/mm"))
}

func TestMatchID(t *testing.T) {
	ids := []string{"abc123", "abd456", "xyz"}

	got, err := matchID("abc", ids, common.ErrEventNotFound)
	require.NoError(t, err)
	assert.Equal(t, "abc123", got)

	got, err = matchID("xyz", ids, common.ErrEventNotFound)
	require.NoError(t, err)
	assert.Equal(t, "xyz", got)

	_, err = matchID("ab", ids, common.ErrEventNotFound)
	assert.ErrorContains(t, err, "ambiguous")

	_, err = matchID("q", ids, common.ErrPlanNotFound)
	assert.ErrorIs(t, err, common.ErrPlanNotFound)
}

func TestParseDay(t *testing.T) {
	today := timex.Day("2026-10-10")
	for in, want := range map[string]timex.Day{
		"today":      today,
		"Tomorrow":   "2026-10-11",
		"yesterday":  "2026-10-09",
		"2026-12-31": "2026-12-31",
	} {
		got, err := parseDay(in, today)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseDay("someday", today)
	assert.Error(t, err)
}
