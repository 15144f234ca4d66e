package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/musclemap/internal/models"
	"github.com/dmitrijs2005/musclemap/internal/recovery"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 10, 10, 9, 0, 0, 0, time.UTC)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleSnapshot() *models.Snapshot {
	snap := models.NewSnapshot()
	chest := snap.Muscles[models.Chest]
	at := base
	chest.SetRepCount(2)
	chest.LastActivityAt = &at
	chest.Photos = append(chest.Photos, models.Photo{
		ID: "p1", MuscleID: models.Chest, TakenAt: base.Add(time.Hour), Payload: "data:image/jpeg;base64,AAAA",
	})

	snap.Events = []models.WorkoutEvent{
		{ID: "e1", MuscleID: models.Chest, At: base.Add(-24 * time.Hour), Source: models.SourceRetro, XPAwarded: 22},
		{ID: "e2", MuscleID: models.Chest, At: base, Forced: true, Source: models.SourceLive, XPAwarded: 57, PlanID: "pl1"},
	}
	snap.Plans = []models.PlanCommitment{
		{ID: "pl1", Day: "2026-10-10", MuscleID: models.Chest, Completed: true, Settled: true, CreatedAt: base.Add(-48 * time.Hour)},
		{ID: "pl2", Day: "2026-10-12", MuscleID: models.Abs, CreatedAt: base},
	}
	snap.Stats.AddXP(129)
	snap.Stats.SetStreak(2)
	snap.Stats.LastActiveAt = base
	snap.Stats.Unlock("first_blood")
	snap.Stats.Unlock("photographer")
	snap.Settings.Durations = recovery.Durations{Active: 12 * time.Hour, Recovering: 24 * time.Hour, Peak: 48 * time.Hour}
	snap.Settings.Colors[recovery.Peak] = "#00ff00"
	snap.Markers.LastSweepDay = "2026-10-10"
	snap.Markers.LastReminderDay = "2026-10-10"
	return snap
}

func TestOpen_MigratesSchema(t *testing.T) {
	s := openMemory(t)
	for _, table := range []string{"muscles", "photos", "events", "plans", "stats", "achievements", "metadata", "goose_db_version"} {
		var n int
		err := s.DB().QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}
	assert.Equal(t, SQLite, s.Dialect())
}

func TestLoad_EmptyStoreReturnsNil(t *testing.T) {
	s := openMemory(t)
	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	want := sampleSnapshot()

	require.NoError(t, s.Save(ctx, want))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)

	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestSave_ReplacesPreviousSnapshot(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleSnapshot()))

	next := models.NewSnapshot()
	next.Stats.AddXP(5)
	require.NoError(t, s.Save(ctx, next))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Events)
	assert.Empty(t, got.Plans)
	assert.Empty(t, got.Stats.UnlockedAchievements)
	assert.Empty(t, got.Muscles[models.Chest].Photos)
	assert.Equal(t, 5, got.Stats.XP)
	assert.True(t, got.Stats.LastActiveAt.IsZero())
}

func TestOpen_FileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "musclemap.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, sampleSnapshot()))
	require.NoError(t, s.Close())

	s, err = Open(ctx, "sqlite://"+path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Events, 2)
}

func TestSave_NilSnapshot(t *testing.T) {
	s := openMemory(t)
	assert.Error(t, s.Save(context.Background(), nil))
}

func newMock(t *testing.T, d Dialect) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, d), mock
}

func TestLoad_QueryErrorIsWrapped(t *testing.T) {
	s, mock := newMock(t, SQLite)
	mock.ExpectQuery("FROM stats").WillReturnError(errors.New("disk I/O error"))

	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load stats")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_MuscleQueryError(t *testing.T) {
	s, mock := newMock(t, SQLite)
	mock.ExpectQuery("FROM stats").WillReturnRows(
		sqlmock.NewRows([]string{"xp", "level", "current_streak", "best_streak", "last_active_at"}).
			AddRow(10, 1, 0, 0, nil))
	mock.ExpectQuery("FROM muscles").WillReturnError(sql.ErrConnDone)

	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrConnDone))
}

func TestSave_RollsBackOnError(t *testing.T) {
	s, mock := newMock(t, SQLite)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM photos").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM muscles").WillReturnError(errors.New("locked"))
	mock.ExpectRollback()

	err := s.Save(context.Background(), models.NewSnapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clear muscles")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveEvents_PostgresPlaceholders(t *testing.T) {
	s, mock := newMock(t, Postgres)
	ev := models.WorkoutEvent{ID: "e1", MuscleID: models.Lats, At: base, Source: models.SourceLive, XPAwarded: 20}

	mock.ExpectExec(`VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8\)`).
		WithArgs("e1", "lats", base.UnixMilli(), false, "live", 20, "", 0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.saveEvents(context.Background(), s.DB(), []models.WorkoutEvent{ev}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_UsesDialectDirectory(t *testing.T) {
	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	s, _ := newMock(t, Postgres)
	require.NoError(t, s.RunMigrations(context.Background()))
	assert.Equal(t, "postgres", gotDir)

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	assert.Error(t, s.RunMigrations(context.Background()))
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		dsn  string
		want Dialect
	}{
		{"musclemap.db", SQLite},
		{":memory:", SQLite},
		{"sqlite:///tmp/x.db", SQLite},
		{"postgres://u:p@localhost:5432/musclemap", Postgres},
		{"postgresql://localhost/musclemap", Postgres},
		{"host=localhost dbname=musclemap user=u", Postgres},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want.Name, DialectFor(tt.dsn).Name, tt.dsn)
	}
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, ":memory:", sqliteDSN(":memory:"))
	assert.Equal(t, "file:x?mode=memory", sqliteDSN("file:x?mode=memory"))
	assert.Equal(t, "/tmp/a.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", sqliteDSN("sqlite:///tmp/a.db"))
}
