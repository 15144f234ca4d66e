// Package sqlstore persists tracker snapshots in SQLite (default) or
// PostgreSQL. The schema is managed by embedded goose migrations and a
// snapshot is always written in a single transaction.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/musclemap/internal/dbx"
	"github.com/dmitrijs2005/musclemap/internal/models"
	"github.com/dmitrijs2005/musclemap/internal/storage/sqlstore/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an open database. It does not run migrations.
func New(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, dialect: d}
}

// Open connects to dsn, picking the dialect from it, and migrates the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	d := DialectFor(dsn)
	if d == SQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", d.Name, err)
	}
	if d == SQLite {
		// a single connection keeps :memory: databases alive and serializes writers
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", d.Name, err)
	}

	s := New(db, d)
	if err := s.RunMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations of the store's dialect.
func (s *Store) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(s.dialect.Goose); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return gooseUpContext(ctx, s.db, s.dialect.Dir)
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) q(query string) string {
	return dbx.Rebind(s.dialect.Placeholder, query)
}

// Load reads the stored snapshot. It returns nil, nil when nothing has been
// saved yet. The result is not normalized.
func (s *Store) Load(ctx context.Context) (*models.Snapshot, error) {
	stats, ok, err := s.loadStats(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	snap := &models.Snapshot{
		Muscles: make(map[models.MuscleID]*models.MuscleRecord),
		Stats:   stats,
	}
	if err := s.loadMuscles(ctx, s.db, snap); err != nil {
		return nil, err
	}
	if err := s.loadPhotos(ctx, s.db, snap); err != nil {
		return nil, err
	}
	if snap.Events, err = s.loadEvents(ctx, s.db); err != nil {
		return nil, err
	}
	if snap.Plans, err = s.loadPlans(ctx, s.db); err != nil {
		return nil, err
	}
	if snap.Stats.UnlockedAchievements, err = s.loadAchievements(ctx, s.db); err != nil {
		return nil, err
	}
	if err := s.loadMetadata(ctx, s.db, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Save replaces the stored snapshot in one transaction.
func (s *Store) Save(ctx context.Context, snap *models.Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, table := range []string{"photos", "muscles", "events", "plans", "achievements", "stats"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		if err := s.saveMuscles(ctx, tx, snap); err != nil {
			return err
		}
		if err := s.saveEvents(ctx, tx, snap.Events); err != nil {
			return err
		}
		if err := s.savePlans(ctx, tx, snap.Plans); err != nil {
			return err
		}
		if err := s.saveStats(ctx, tx, snap.Stats); err != nil {
			return err
		}
		return s.saveMetadata(ctx, tx, snap)
	})
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
