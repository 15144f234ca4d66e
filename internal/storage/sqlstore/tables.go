package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/musclemap/internal/dbx"
	"github.com/dmitrijs2005/musclemap/internal/models"
	"github.com/dmitrijs2005/musclemap/internal/timex"
)

const (
	keySettings = "settings"
	keyMarkers  = "markers"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil || t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*t), Valid: true}
}

func (s *Store) loadStats(ctx context.Context, db dbx.DBTX) (models.UserStats, bool, error) {
	var (
		st   models.UserStats
		last sql.NullInt64
	)
	err := db.QueryRowContext(ctx, s.q(`
		SELECT xp, level, current_streak, best_streak, last_active_at
		FROM stats WHERE id = 1`)).Scan(&st.XP, &st.Level, &st.CurrentStreak, &st.BestStreak, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return st, false, nil
	}
	if err != nil {
		return st, false, fmt.Errorf("failed to load stats: %w", err)
	}
	if last.Valid {
		st.LastActiveAt = fromMillis(last.Int64)
	}
	return st, true, nil
}

func (s *Store) saveStats(ctx context.Context, tx dbx.DBTX, st models.UserStats) error {
	_, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO stats (id, xp, level, current_streak, best_streak, last_active_at)
		VALUES (1, ?, ?, ?, ?, ?)`),
		st.XP, st.Level, st.CurrentStreak, st.BestStreak, nullMillis(&st.LastActiveAt))
	if err != nil {
		return fmt.Errorf("failed to insert stats: %w", err)
	}

	for i, id := range st.UnlockedAchievements {
		if _, err := tx.ExecContext(ctx, s.q(`INSERT INTO achievements (id, seq) VALUES (?, ?)`), id, i); err != nil {
			return fmt.Errorf("failed to insert achievement %s: %w", id, err)
		}
	}
	return nil
}

func (s *Store) loadAchievements(ctx context.Context, db dbx.DBTX) ([]string, error) {
	rows, err := db.QueryContext(ctx, s.q(`SELECT id FROM achievements ORDER BY seq`))
	if err != nil {
		return nil, fmt.Errorf("failed to select achievements: %w", err)
	}
	defer rows.Close()

	result := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan achievement row: %w", err)
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate achievement rows: %w", err)
	}
	return result, nil
}

func (s *Store) loadMuscles(ctx context.Context, db dbx.DBTX, snap *models.Snapshot) error {
	rows, err := db.QueryContext(ctx, s.q(`SELECT id, name, rep_count, last_activity_at FROM muscles`))
	if err != nil {
		return fmt.Errorf("failed to select muscles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			m    models.MuscleRecord
			last sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.RepCount, &last); err != nil {
			return fmt.Errorf("failed to scan muscle row: %w", err)
		}
		m.SetRepCount(m.RepCount)
		if last.Valid {
			ts := fromMillis(last.Int64)
			m.LastActivityAt = &ts
		}
		m.Photos = []models.Photo{}
		snap.Muscles[m.ID] = &m
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate muscle rows: %w", err)
	}
	return nil
}

func (s *Store) loadPhotos(ctx context.Context, db dbx.DBTX, snap *models.Snapshot) error {
	rows, err := db.QueryContext(ctx, s.q(`SELECT id, muscle_id, taken_at, payload FROM photos ORDER BY seq`))
	if err != nil {
		return fmt.Errorf("failed to select photos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p       models.Photo
			takenAt int64
		)
		if err := rows.Scan(&p.ID, &p.MuscleID, &takenAt, &p.Payload); err != nil {
			return fmt.Errorf("failed to scan photo row: %w", err)
		}
		p.TakenAt = fromMillis(takenAt)
		m, ok := snap.Muscles[p.MuscleID]
		if !ok {
			m = &models.MuscleRecord{ID: p.MuscleID}
			snap.Muscles[p.MuscleID] = m
		}
		m.Photos = append(m.Photos, p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate photo rows: %w", err)
	}
	return nil
}

func (s *Store) saveMuscles(ctx context.Context, tx dbx.DBTX, snap *models.Snapshot) error {
	seq := 0
	for _, m := range snap.OrderedMuscles() {
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO muscles (id, name, rep_count, last_activity_at)
			VALUES (?, ?, ?, ?)`),
			string(m.ID), m.Name, m.RepCount, nullMillis(m.LastActivityAt))
		if err != nil {
			return fmt.Errorf("failed to insert muscle %s: %w", m.ID, err)
		}
		for _, p := range m.Photos {
			_, err := tx.ExecContext(ctx, s.q(`
				INSERT INTO photos (id, muscle_id, taken_at, payload, seq)
				VALUES (?, ?, ?, ?, ?)`),
				p.ID, string(m.ID), toMillis(p.TakenAt), p.Payload, seq)
			if err != nil {
				return fmt.Errorf("failed to insert photo %s: %w", p.ID, err)
			}
			seq++
		}
	}
	return nil
}

func (s *Store) loadEvents(ctx context.Context, db dbx.DBTX) ([]models.WorkoutEvent, error) {
	rows, err := db.QueryContext(ctx, s.q(`
		SELECT id, muscle_id, at, forced, source, xp_awarded, plan_id
		FROM events ORDER BY seq`))
	if err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}
	defer rows.Close()

	result := []models.WorkoutEvent{}
	for rows.Next() {
		var (
			ev models.WorkoutEvent
			at int64
		)
		if err := rows.Scan(&ev.ID, &ev.MuscleID, &at, &ev.Forced, &ev.Source, &ev.XPAwarded, &ev.PlanID); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		ev.At = fromMillis(at)
		result = append(result, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event rows: %w", err)
	}
	return result, nil
}

func (s *Store) saveEvents(ctx context.Context, tx dbx.DBTX, events []models.WorkoutEvent) error {
	for i, ev := range events {
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO events (id, muscle_id, at, forced, source, xp_awarded, plan_id, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			ev.ID, string(ev.MuscleID), toMillis(ev.At), ev.Forced, string(ev.Source), ev.XPAwarded, ev.PlanID, i)
		if err != nil {
			return fmt.Errorf("failed to insert event %s: %w", ev.ID, err)
		}
	}
	return nil
}

func (s *Store) loadPlans(ctx context.Context, db dbx.DBTX) ([]models.PlanCommitment, error) {
	rows, err := db.QueryContext(ctx, s.q(`
		SELECT id, day, muscle_id, completed, settled, created_at
		FROM plans ORDER BY seq`))
	if err != nil {
		return nil, fmt.Errorf("failed to select plans: %w", err)
	}
	defer rows.Close()

	result := []models.PlanCommitment{}
	for rows.Next() {
		var (
			p         models.PlanCommitment
			day       string
			createdAt int64
		)
		if err := rows.Scan(&p.ID, &day, &p.MuscleID, &p.Completed, &p.Settled, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan row: %w", err)
		}
		p.Day = timex.Day(day)
		p.CreatedAt = fromMillis(createdAt)
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plan rows: %w", err)
	}
	return result, nil
}

func (s *Store) savePlans(ctx context.Context, tx dbx.DBTX, plans []models.PlanCommitment) error {
	for i, p := range plans {
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO plans (id, day, muscle_id, completed, settled, created_at, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?)`),
			p.ID, string(p.Day), string(p.MuscleID), p.Completed, p.Settled, toMillis(p.CreatedAt), i)
		if err != nil {
			return fmt.Errorf("failed to insert plan %s: %w", p.ID, err)
		}
	}
	return nil
}

func (s *Store) setMetadata(ctx context.Context, tx dbx.DBTX, key string, value []byte) error {
	_, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`), key, string(value))
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (s *Store) saveMetadata(ctx context.Context, tx dbx.DBTX, snap *models.Snapshot) error {
	settings, err := json.Marshal(snap.Settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := s.setMetadata(ctx, tx, keySettings, settings); err != nil {
		return err
	}
	markers, err := json.Marshal(snap.Markers)
	if err != nil {
		return fmt.Errorf("marshal markers: %w", err)
	}
	return s.setMetadata(ctx, tx, keyMarkers, markers)
}

// loadMetadata decodes settings and markers. Undecodable values are left at
// their zero value; the session fills in defaults.
func (s *Store) loadMetadata(ctx context.Context, db dbx.DBTX, snap *models.Snapshot) error {
	rows, err := db.QueryContext(ctx, s.q(`SELECT key, value FROM metadata`))
	if err != nil {
		return fmt.Errorf("failed to list metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("failed to scan metadata row: %w", err)
		}
		switch key {
		case keySettings:
			_ = json.Unmarshal(value, &snap.Settings)
		case keyMarkers:
			_ = json.Unmarshal(value, &snap.Markers)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate metadata rows: %w", err)
	}
	return nil
}
