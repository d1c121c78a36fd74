package events

import (
	"sync"
	"testing"
	"time"
)

// capturePersister records write-through appends.
type capturePersister struct {
	mu      sync.Mutex
	entries []Entry
	done    chan struct{}
}

func (c *capturePersister) Append(entry Entry) error {
	c.mu.Lock()
	c.entries = append(c.entries, entry)
	c.mu.Unlock()
	c.done <- struct{}{}
	return nil
}

func TestAppendFillsIdentityFields(t *testing.T) {
	j := NewJournal(nil)

	e := j.Append(Entry{Kind: KindOperation, Level: LevelAudit, Actor: "MINT", Message: "x"})

	if e.ID == "" {
		t.Error("Append must assign an ID")
	}
	if e.Timestamp.IsZero() {
		t.Error("Append must assign a timestamp")
	}

	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e = j.Append(Entry{ID: "fixed-id", Timestamp: fixed, Kind: KindReset})
	if e.ID != "fixed-id" || !e.Timestamp.Equal(fixed) {
		t.Error("Append must preserve caller-supplied identity")
	}
}

func TestSinceCursor(t *testing.T) {
	j := NewJournal(nil)
	j.Append(Entry{Kind: KindOperation, Message: "one"})
	j.Append(Entry{Kind: KindOperation, Message: "two"})

	// a negative cursor skips straight to the tail
	entries, cursor := j.Since(-1)
	if len(entries) != 0 || cursor != 2 {
		t.Fatalf("Since(-1) = %d entries, cursor %d; want 0 entries, cursor 2", len(entries), cursor)
	}

	j.Append(Entry{Kind: KindRuleFired, Message: "three"})
	entries, cursor = j.Since(cursor)
	if len(entries) != 1 || entries[0].Message != "three" {
		t.Fatalf("Since(2) missed the new entry: %+v", entries)
	}
	if cursor != 3 {
		t.Errorf("cursor = %d, want 3", cursor)
	}

	// an absurd cursor degrades to the tail instead of panicking
	entries, _ = j.Since(9999)
	if len(entries) != 0 {
		t.Errorf("out-of-range cursor returned %d entries", len(entries))
	}
}

func TestReplayIsACopy(t *testing.T) {
	j := NewJournal(nil)
	j.Append(Entry{Kind: KindOperation, Message: "original"})

	replay := j.Replay()
	replay[0].Message = "tampered"

	if j.Replay()[0].Message != "original" {
		t.Error("mutating a replay slice leaked into the journal")
	}
}

func TestGetByActorAndKind(t *testing.T) {
	j := NewJournal(nil)
	j.Append(Entry{Kind: KindOperation, Actor: "MINT"})
	j.Append(Entry{Kind: KindRuleFired, Actor: "LIL_001"})
	j.Append(Entry{Kind: KindOperation, Actor: "TRANSFER"})

	if got := len(j.GetByKind(KindOperation)); got != 2 {
		t.Errorf("GetByKind(OPERATION) = %d entries, want 2", got)
	}
	if got := len(j.GetByActor("LIL_001")); got != 1 {
		t.Errorf("GetByActor(LIL_001) = %d entries, want 1", got)
	}
	if got := len(j.GetByActor("GHOST")); got != 0 {
		t.Errorf("GetByActor(GHOST) = %d entries, want 0", got)
	}
}

func TestWriteThroughPersistence(t *testing.T) {
	p := &capturePersister{done: make(chan struct{}, 1)}
	j := NewJournal(p)

	appended := j.Append(Entry{Kind: KindOperation, Actor: "MINT", Message: "persisted"})

	select {
	case <-p.done:
	case <-time.After(2 * time.Second):
		t.Fatal("persister was never invoked")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.entries) != 1 {
		t.Fatalf("persisted %d entries, want 1", len(p.entries))
	}
	if p.entries[0].ID != appended.ID {
		t.Error("persisted entry lost the assigned ID")
	}
}
