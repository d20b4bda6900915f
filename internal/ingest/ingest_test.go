package ingest

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"planestats/internal/db"
)

// fakeStore keeps records in a map, mimicking the store's upsert semantics.
type fakeStore struct {
	records map[string]db.SessionRecord
	failAll bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]db.SessionRecord)}
}

func (f *fakeStore) UpsertSession(rec db.SessionRecord) error {
	if f.failAll {
		return errors.New("store unavailable")
	}
	f.records[rec.ID] = rec
	return nil
}

func newTestProcessor(store Store) *Processor {
	p := NewProcessor(store)
	p.now = func() time.Time {
		return time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)
	}
	return p
}

func TestProcessOne(t *testing.T) {
	store := newFakeStore()
	p := newTestProcessor(store)

	err := p.ProcessOne(Payload{GameID: "g1", Score: 7})
	if err != nil {
		t.Fatalf("ProcessOne() error: %v", err)
	}

	rec, ok := store.records["g1"]
	if !ok {
		t.Fatal("record g1 not stored")
	}
	if rec.Score != 7 {
		t.Errorf("score = %d, want 7", rec.Score)
	}
	if rec.ReceivedAt.IsZero() {
		t.Error("ReceivedAt not stamped")
	}
}

func TestProcessOne_MissingID(t *testing.T) {
	p := newTestProcessor(newFakeStore())

	err := p.ProcessOne(Payload{Score: 10})
	if !errors.Is(err, ErrMissingID) {
		t.Errorf("error = %v, want ErrMissingID", err)
	}
}

func TestProcessOne_StoreError(t *testing.T) {
	store := newFakeStore()
	store.failAll = true
	p := newTestProcessor(store)

	if err := p.ProcessOne(Payload{GameID: "g1"}); err == nil {
		t.Error("ProcessOne() should surface store errors")
	}
}

func TestProcessOne_UpsertReplaces(t *testing.T) {
	store := newFakeStore()
	p := newTestProcessor(store)

	p.ProcessOne(Payload{GameID: "g1", Score: 5})
	p.ProcessOne(Payload{GameID: "g1", Score: 9})

	if len(store.records) != 1 {
		t.Fatalf("record count = %d, want 1", len(store.records))
	}
	if store.records["g1"].Score != 9 {
		t.Errorf("score = %d, want 9 (second write wins)", store.records["g1"].Score)
	}
}

func TestProcessBatch_PartialFailure(t *testing.T) {
	store := newFakeStore()
	p := newTestProcessor(store)

	batch := []json.RawMessage{
		json.RawMessage(`{"gameId":"g1","score":4}`),
		json.RawMessage(`{"score":"not a number"}`),
		json.RawMessage(`{"score":10}`),
		json.RawMessage(`{"gameId":"g2","score":50}`),
	}

	res, err := p.ProcessBatch(batch)
	if err != nil {
		t.Fatalf("ProcessBatch() error: %v", err)
	}

	if res.Total != 4 {
		t.Errorf("Total = %d, want 4", res.Total)
	}
	if res.Processed != 2 {
		t.Errorf("Processed = %d, want 2", res.Processed)
	}
	if len(store.records) != 2 {
		t.Errorf("stored records = %d, want 2", len(store.records))
	}
}

func TestProcessBatch_Empty(t *testing.T) {
	p := newTestProcessor(newFakeStore())

	res, err := p.ProcessBatch(nil)
	if err != nil {
		t.Fatalf("ProcessBatch() error: %v", err)
	}
	if res.Processed != 0 || res.Total != 0 {
		t.Errorf("result = %+v, want 0/0", res)
	}
}

func TestProcessBatch_StoreDown(t *testing.T) {
	store := newFakeStore()
	store.failAll = true
	p := newTestProcessor(store)

	// An upsert failure means the storage layer, not a bad element, so the
	// whole batch must fail rather than report skips.
	_, err := p.ProcessBatch([]json.RawMessage{
		json.RawMessage(`{"gameId":"g1"}`),
		json.RawMessage(`{"gameId":"g2"}`),
	})
	if err == nil {
		t.Fatal("ProcessBatch() should surface store errors")
	}
}

func TestProcessBatch_SkipsDoNotMaskStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.failAll = true
	p := newTestProcessor(store)

	// Decode and missing-id failures stay counted skips; the first element
	// that reaches the store still fails the batch.
	res, err := p.ProcessBatch([]json.RawMessage{
		json.RawMessage(`{"score":"bad"}`),
		json.RawMessage(`{"score":3}`),
		json.RawMessage(`{"gameId":"g1"}`),
	})
	if err == nil {
		t.Fatal("ProcessBatch() should surface store errors")
	}
	if res.Processed != 0 {
		t.Errorf("Processed = %d, want 0", res.Processed)
	}
}

func TestPayloadRecord_IgnoresClientTimestamp(t *testing.T) {
	reason := "pipe"
	stamped := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)
	rec := Payload{
		GameID:      "g1",
		StartTime:   "2026-02-03T11:58:00Z",
		EndTime:     "2026-02-03T11:59:30Z",
		DeathReason: &reason,
	}.Record(stamped)

	if !rec.ReceivedAt.Equal(stamped) {
		t.Errorf("ReceivedAt = %v, want %v", rec.ReceivedAt, stamped)
	}
	if rec.DeathReason == nil || *rec.DeathReason != "pipe" {
		t.Errorf("DeathReason = %v, want pipe", rec.DeathReason)
	}
}
