// Package storage provides the persistence layer for the audit server.
// This package implements the repository pattern to keep the domain pure:
// the core reads and writes through these interfaces and never learns it is
// talking to SQLite.
package storage

import (
	"context"

	"github.com/MRamiBalles/LogosOmega/server/internal/audit"
	"github.com/MRamiBalles/LogosOmega/server/internal/events"
	"github.com/MRamiBalles/LogosOmega/server/internal/state"
)

// StateRepository is the remote document store holding the system state.
// Writes are partial and field-scoped, never whole-document replacement.
// Subscription delivers full snapshots on every remote change.
type StateRepository interface {
	ReadState(ctx context.Context) (*state.SystemState, error)
	WriteState(partial map[string]interface{}) error
	Subscribe(ctx context.Context, onChange func(*state.SystemState))
}

// RuleConfigSource provides the hot-reloadable audit rule set.
// A swap takes effect with the next evaluation pass, never mid-cycle.
type RuleConfigSource interface {
	ReadRules(ctx context.Context) ([]audit.Rule, error)
	ReplaceRules(ctx context.Context, rules []audit.Rule) error
	Subscribe(ctx context.Context, onChange func([]audit.Rule))
}

// JournalRepository persists the append-only audit journal.
type JournalRepository interface {
	events.Persister
	Recent(ctx context.Context, limit int) ([]events.Entry, error)
	GetByKind(ctx context.Context, kind events.Kind) ([]events.Entry, error)
}
