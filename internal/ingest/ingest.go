// Package ingest accepts telemetry submissions from the game client and
// writes them into the session record store. A submission is either one
// record or an ordered batch; the transport layer detects which shape it
// received and calls the matching entry point, so nothing in here branches
// on payload shape at runtime.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"planestats/internal/db"
)

// ErrMissingID marks a payload without a gameId. Every other field may be
// absent and defaults to zero.
var ErrMissingID = errors.New("payload missing gameId")

// Payload is the client-facing record shape. Field names mirror what the
// game client sends, not the storage schema.
type Payload struct {
	GameID         string  `json:"gameId"`
	StartTime      string  `json:"startTime"`
	EndTime        string  `json:"endTime"`
	Score          int     `json:"score"`
	CoinsCollected int     `json:"coinsCollected"`
	UfosShot       int     `json:"ufosShot"`
	BulletsFired   int     `json:"bulletsFired"`
	DeathReason    *string `json:"deathReason"`
	GameDuration   int     `json:"gameDuration"`
	PipesPassed    int     `json:"pipesPassed"`
}

// Record converts the payload to its storage form. receivedAt is stamped by
// the server; any client-supplied value is ignored.
func (p Payload) Record(receivedAt time.Time) db.SessionRecord {
	return db.SessionRecord{
		ID:             p.GameID,
		StartTime:      p.StartTime,
		EndTime:        p.EndTime,
		Score:          p.Score,
		CoinsCollected: p.CoinsCollected,
		UfosShot:       p.UfosShot,
		BulletsFired:   p.BulletsFired,
		DeathReason:    p.DeathReason,
		GameDuration:   p.GameDuration,
		PipesPassed:    p.PipesPassed,
		ReceivedAt:     receivedAt,
	}
}

type Store interface {
	UpsertSession(db.SessionRecord) error
}

// Result reports how much of a batch made it into the store.
type Result struct {
	Processed int
	Total     int
}

type Processor struct {
	Store Store

	// now is swappable in tests.
	now func() time.Time
}

func NewProcessor(store Store) *Processor {
	return &Processor{Store: store, now: time.Now}
}

// ProcessOne upserts a single record. Any failure is the caller's failure;
// there is no partial success for a singleton.
func (p *Processor) ProcessOne(payload Payload) error {
	if payload.GameID == "" {
		return ErrMissingID
	}
	if err := p.Store.UpsertSession(payload.Record(p.now().UTC())); err != nil {
		return fmt.Errorf("storing session %s: %w", payload.GameID, err)
	}
	return nil
}

// ProcessBatch upserts each element independently. Elements that fail to
// decode or are missing an id are counted as skips and logged; they never
// abort the remainder of the batch. A store failure does abort: past
// validation the only way an upsert can fail is the storage layer, and that
// is fatal to the whole request.
func (p *Processor) ProcessBatch(batch []json.RawMessage) (Result, error) {
	res := Result{Total: len(batch)}
	for i, raw := range batch {
		var payload Payload
		if err := json.Unmarshal(raw, &payload); err != nil {
			log.Printf("[Ingest] Skipping batch element %d: %v\n", i, err)
			continue
		}
		if err := p.ProcessOne(payload); err != nil {
			if errors.Is(err, ErrMissingID) {
				log.Printf("[Ingest] Skipping batch element %d: %v\n", i, err)
				continue
			}
			return res, err
		}
		res.Processed++
	}
	return res, nil
}
