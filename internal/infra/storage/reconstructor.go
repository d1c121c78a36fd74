// Package storage - reconstructor.go
// Rebuilds an audit recap from the persisted journal.
// The journal is the source of truth: tallies = f(entries).
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/MRamiBalles/LogosOmega/server/internal/events"
)

// Reconstructor replays the persisted journal into per-actor audit tallies.
// This is used for:
// 1. Operator recap after a restart - what happened while the server was down
// 2. Cross-checking the pressure metric against the charged costs
// 3. Auditing and debugging
type Reconstructor struct {
	journalRepo JournalRepository
}

// NewReconstructor creates a new audit reconstructor.
func NewReconstructor(journalRepo JournalRepository) *Reconstructor {
	return &Reconstructor{journalRepo: journalRepo}
}

// ActorTally aggregates every journal entry attributed to one actor.
type ActorTally struct {
	Actor          string  `json:"actor"`
	Operations     int     `json:"operations"`
	Failures       int     `json:"failures"`
	RuleFirings    int     `json:"rule_firings"`
	AutonomousActs int     `json:"autonomous_acts"`
	PressureCost   float64 `json:"pressure_cost"`
}

// RecapLine is a simplified journal entry for the operator recap view.
type RecapLine struct {
	Timestamp string `json:"timestamp"`
	Kind      string `json:"kind"`
	Level     string `json:"level"`
	Summary   string `json:"summary"`
}

// RebuildTallies replays the full operation history into per-actor tallies.
func (r *Reconstructor) RebuildTallies(ctx context.Context) (map[string]*ActorTally, error) {
	ops, err := r.journalRepo.GetByKind(ctx, events.KindOperation)
	if err != nil {
		return nil, fmt.Errorf("failed to load operation entries: %w", err)
	}
	fired, err := r.journalRepo.GetByKind(ctx, events.KindRuleFired)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule entries: %w", err)
	}
	auto, err := r.journalRepo.GetByKind(ctx, events.KindAutonomous)
	if err != nil {
		return nil, fmt.Errorf("failed to load autonomous entries: %w", err)
	}

	tallies := make(map[string]*ActorTally)
	get := func(actor string) *ActorTally {
		t, ok := tallies[actor]
		if !ok {
			t = &ActorTally{Actor: actor}
			tallies[actor] = t
		}
		return t
	}

	for _, e := range ops {
		t := get(e.Actor)
		t.Operations++
		if e.Level == events.LevelError {
			t.Failures++
		}
		t.PressureCost += payloadCost(e)
	}
	for _, e := range fired {
		get(e.Actor).RuleFirings++
	}
	for _, e := range auto {
		get(e.Actor).AutonomousActs++
	}
	return tallies, nil
}

// GenerateRecap renders the newest journal entries for the operator view,
// skipping internal bookkeeping noise.
func (r *Reconstructor) GenerateRecap(ctx context.Context, since time.Time, limit int) ([]RecapLine, error) {
	entries, err := r.journalRepo.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}

	var recap []RecapLine
	for _, e := range entries {
		if e.Timestamp.Before(since) {
			continue
		}
		if e.Level == events.LevelInternal {
			continue
		}
		recap = append(recap, RecapLine{
			Timestamp: e.Timestamp.Format(time.RFC3339),
			Kind:      string(e.Kind),
			Level:     string(e.Level),
			Summary:   e.Message,
		})
	}
	return recap, nil
}

// payloadCost digs the charged pressure cost out of a decoded entry payload.
func payloadCost(e events.Entry) float64 {
	m, ok := e.Payload.(map[string]interface{})
	if !ok {
		return 0
	}
	cost, ok := m["cost"]
	if !ok {
		return 0
	}
	c, ok := cost.(float64)
	if !ok {
		return 0
	}
	return c
}
