package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/musclemap/internal/config"
	"github.com/dmitrijs2005/musclemap/internal/filex"
	"github.com/dmitrijs2005/musclemap/internal/logging"
	"github.com/dmitrijs2005/musclemap/internal/metrics"
	"github.com/dmitrijs2005/musclemap/internal/notify"
	"github.com/dmitrijs2005/musclemap/internal/session"
	"github.com/dmitrijs2005/musclemap/internal/storage/photoarchive"
	"github.com/dmitrijs2005/musclemap/internal/storage/sqlstore"
	"github.com/dmitrijs2005/musclemap/internal/timex"
	"go.uber.org/multierr"
	"golang.org/x/term"
)

// tickTimeout bounds one Tick including its save.
const tickTimeout = 5 * time.Second

// seams for tests
var (
	isTerminal = term.IsTerminal
	newArchive = func(ctx context.Context, c photoarchive.Config) (photoarchive.Archive, error) {
		return photoarchive.NewS3(ctx, c)
	}
)

type App struct {
	cfg     *config.Config
	session *session.Session
	store   *sqlstore.Store
	archive photoarchive.Archive
	log     logging.Logger

	logCloser  io.Closer
	metricsSrv *metrics.Server

	in          io.Reader
	out         io.Writer
	interactive bool
}

// NewApp opens the store and builds the session described by cfg. Output
// and notifications go to out; commands are read from in.
func NewApp(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) (*App, error) {
	if cfg.LogFile != "" {
		if _, err := filex.EnsureParentDir(cfg.LogFile); err != nil {
			return nil, err
		}
	}
	logger, logCloser, err := logging.New(cfg.Logging())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &App{
		cfg:       cfg,
		log:       logger,
		logCloser: logCloser,
		in:        in,
		out:       out,
		archive:   photoarchive.Nop{},
	}
	if f, ok := in.(*os.File); ok {
		a.interactive = isTerminal(int(f.Fd()))
	}

	loc, err := cfg.TimeLocation()
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}

	if err := prepareSQLitePath(cfg.DatabaseDSN); err != nil {
		_ = logCloser.Close()
		return nil, err
	}
	a.store, err = sqlstore.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	var mm *metrics.Manager
	if cfg.MetricsAddr != "" {
		reg := metrics.SetupRegistry()
		mm = metrics.NewManager(metrics.Namespace, metrics.Subsystem, reg)
		a.metricsSrv = metrics.NewServer(cfg.MetricsAddr, reg)
	}

	if ac := cfg.Archive(); ac.Enabled() {
		archive, err := newArchive(ctx, ac)
		if err != nil {
			logger.Warn(ctx, "photo archive disabled", "bucket", ac.Bucket, "error", err)
		} else {
			a.archive = archive
		}
	}

	var notifier notify.Notifier = notify.NewConsole(out)
	if cfg.LogFile != "" {
		notifier = notify.Multi{notifier, notify.NewLog(logger)}
	}

	a.session = session.New(ctx, session.Options{
		Store:    a.store,
		Notifier: notifier,
		Clock:    timex.SystemClock{},
		Location: loc,
		Logger:   logger,
		Metrics:  mm,
	})
	return a, nil
}

// prepareSQLitePath creates the directory of a file-backed SQLite database.
func prepareSQLitePath(dsn string) error {
	if sqlstore.DialectFor(dsn) != sqlstore.SQLite {
		return nil
	}
	path := strings.TrimPrefix(dsn, "sqlite://")
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	path, _, _ = strings.Cut(path, "?")
	_, err := filex.EnsureParentDir(path)
	return err
}

// Run starts the metrics endpoint and the tick watcher, then blocks in the
// REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.metricsSrv != nil {
		go func() {
			if err := a.metricsSrv.ListenAndServe(); err != nil {
				a.log.Error(ctx, "metrics server stopped", "addr", a.cfg.MetricsAddr, "error", err)
			}
		}()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.StartTickWatcher(ctx, a.cfg.TickInterval)
	}()

	fmt.Fprintln(a.out, "MuscleMap (type 'help' for commands)")
	runREPL(ctx, a, a.prompt, bufio.NewScanner(a.in), a.out)

	cancel()
	wg.Wait()
}

func (a *App) prompt() string {
	if !a.interactive {
		return ""
	}
	st := a.session.Stats()
	status := fmt.Sprintf("lvl %d, streak %d", st.Level, st.CurrentStreak)
	if st.StreakDanger {
		status += "!"
	}
	return fmt.Sprintf("musclemap (%s)> ", status)
}

// StartTickWatcher calls Session.Tick right away and then every interval
// until ctx is done.
func (a *App) StartTickWatcher(ctx context.Context, interval time.Duration) {
	a.tick(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) tick(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, tickTimeout)
	defer cancel()
	if err := a.session.Tick(ctx); err != nil {
		a.log.Warn(ctx, "tick failed", "error", err)
	}
}

// Close flushes unsaved state and releases every resource. All failures
// are reported together.
func (a *App) Close(ctx context.Context) error {
	var err error
	if a.session != nil && !a.session.Flush(ctx) {
		err = multierr.Append(err, errors.New("final save failed"))
	}
	if a.metricsSrv != nil {
		err = multierr.Append(err, a.metricsSrv.Shutdown(ctx))
	}
	if a.store != nil {
		err = multierr.Append(err, a.store.Close())
	}
	if a.logCloser != nil {
		err = multierr.Append(err, a.logCloser.Close())
	}
	return err
}
