// Package events provides the append-only audit journal of the protocol.
// Every rule firing, economic act, autonomous act and state transition lands
// here as an immutable entry.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level classifies the severity of a journal entry.
type Level string

const (
	LevelSystem   Level = "system"
	LevelAudit    Level = "audit"
	LevelWarning  Level = "warning"
	LevelError    Level = "error"
	LevelCritical Level = "critical"
	LevelInternal Level = "internal"
)

// Kind categorizes what produced an entry.
type Kind string

const (
	KindRuleFired   Kind = "RULE_FIRED"
	KindOperation   Kind = "OPERATION"
	KindAutonomous  Kind = "AUTONOMOUS_ACT"
	KindHalt        Kind = "HALT"
	KindReset       Kind = "RESET"
	KindPersistence Kind = "PERSISTENCE"
	KindRuleSwap    Kind = "RULE_SWAP"
)

// Entry is an immutable record of one audited occurrence.
type Entry struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Kind      Kind        `json:"kind"`
	Level     Level       `json:"level"`
	Actor     string      `json:"actor"`   // who (or which rule/act) caused it
	Message   string      `json:"message"` // human-readable audit line
	Payload   interface{} `json:"payload,omitempty"`
}

// Persister defines how an entry is durably stored.
type Persister interface {
	Append(entry Entry) error
}

// Journal is the in-memory append-only log of audit entries.
// Durability is write-through and best-effort; the in-memory log stays
// authoritative when the persister fails.
type Journal struct {
	mu        sync.RWMutex
	entries   []Entry
	persister Persister
}

// NewJournal creates a new journal with an optional persister.
func NewJournal(persister Persister) *Journal {
	return &Journal{
		entries:   make([]Entry, 0),
		persister: persister,
	}
}

// Append adds a new entry to the journal. Entries are immutable once added.
// The ID and timestamp are filled in when left empty.
func (j *Journal) Append(entry Entry) Entry {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	j.mu.Lock()
	j.entries = append(j.entries, entry)
	j.mu.Unlock()

	if j.persister != nil {
		// Write through to persistent storage without blocking the caller.
		go func(e Entry) {
			_ = j.persister.Append(e)
		}(entry)
	}
	return entry
}

// Replay returns the full entry history.
func (j *Journal) Replay() []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Since returns entries appended after index from, plus the new length.
// Used by pollers that track their own cursor.
func (j *Journal) Since(from int) ([]Entry, int) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if from < 0 || from > len(j.entries) {
		from = len(j.entries)
	}
	out := make([]Entry, len(j.entries)-from)
	copy(out, j.entries[from:])
	return out, len(j.entries)
}

// GetByActor returns all entries caused by a specific actor.
func (j *Journal) GetByActor(actor string) []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var result []Entry
	for _, e := range j.entries {
		if e.Actor == actor {
			result = append(result, e)
		}
	}
	return result
}

// GetByKind returns all entries of one kind.
func (j *Journal) GetByKind(kind Kind) []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var result []Entry
	for _, e := range j.entries {
		if e.Kind == kind {
			result = append(result, e)
		}
	}
	return result
}
