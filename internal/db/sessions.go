package db

import (
	"fmt"
	"time"
)

// SessionRecord is one logged game-play session. DeathReason is nil when the
// client did not report a cause of death.
type SessionRecord struct {
	ID             string
	StartTime      string
	EndTime        string
	Score          int
	CoinsCollected int
	UfosShot       int
	BulletsFired   int
	DeathReason    *string
	GameDuration   int
	PipesPassed    int
	ReceivedAt     time.Time
}

// UpsertSession inserts the record, or fully replaces the existing row when
// the id is already present. Last writer wins.
func (d *DB) UpsertSession(rec SessionRecord) error {
	_, err := d.conn.Exec(`
		INSERT INTO game_sessions (id, start_time, end_time, score, coins_collected, ufos_shot, bullets_fired, death_reason, game_duration, pipes_passed, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			start_time = $2, end_time = $3, score = $4, coins_collected = $5,
			ufos_shot = $6, bullets_fired = $7, death_reason = $8,
			game_duration = $9, pipes_passed = $10, received_at = $11
	`, rec.ID, rec.StartTime, rec.EndTime, rec.Score, rec.CoinsCollected, rec.UfosShot, rec.BulletsFired, rec.DeathReason, rec.GameDuration, rec.PipesPassed, rec.ReceivedAt)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}
	return nil
}

func (d *DB) ListSessions() ([]SessionRecord, error) {
	rows, err := d.conn.Query(`
		SELECT id, start_time, end_time, score, coins_collected, ufos_shot, bullets_fired, death_reason, game_duration, pipes_passed, received_at
		FROM game_sessions
	`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		if err := rows.Scan(&rec.ID, &rec.StartTime, &rec.EndTime, &rec.Score, &rec.CoinsCollected, &rec.UfosShot, &rec.BulletsFired, &rec.DeathReason, &rec.GameDuration, &rec.PipesPassed, &rec.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return records, nil
}

func (d *DB) CountSessions() (int, error) {
	var count int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM game_sessions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return count, nil
}
