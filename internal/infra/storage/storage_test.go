package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/LogosOmega/server/internal/audit"
	"github.com/MRamiBalles/LogosOmega/server/internal/domain/currency"
	"github.com/MRamiBalles/LogosOmega/server/internal/events"
	"github.com/MRamiBalles/LogosOmega/server/internal/state"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "data", "logos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func projection(s *state.SystemState) map[string]interface{} {
	return map[string]interface{}{
		"halted":         s.Halted,
		"pressure":       s.Pressure,
		"rates":          s.Rates,
		"total_supply":   s.TotalSupply,
		"accounts":       s.Accounts,
		"infrastructure": s.Infrastructure,
	}
}

func TestStateRoundTrip(t *testing.T) {
	repo := NewSQLiteStateRepository(openTestDB(t), 10*time.Millisecond)
	ctx := context.Background()

	original := state.NewDefault(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	original.Pressure.Value = 42.5
	original.Halted = true

	require.NoError(t, repo.WriteState(projection(original)))

	got, err := repo.ReadState(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.True(t, got.Halted)
	require.InDelta(t, 42.5, got.Pressure.Value, 1e-9)
	require.InDelta(t, 1000.0, got.Account(state.CoreBankID).Balances[currency.ALPHA], 1e-9)
	require.InDelta(t, original.TotalSupply[currency.ALPHA], got.TotalSupply[currency.ALPHA], 1e-9)
	require.InDelta(t, 95.0, got.Infrastructure.EnergySupply.Value, 1e-9)
}

func TestReadStateBeforeFirstWrite(t *testing.T) {
	repo := NewSQLiteStateRepository(openTestDB(t), 10*time.Millisecond)

	got, err := repo.ReadState(context.Background())
	require.NoError(t, err)
	require.Nil(t, got, "an empty document reads back as nil, not as a zero state")
}

func TestPartialWritePreservesOtherFields(t *testing.T) {
	repo := NewSQLiteStateRepository(openTestDB(t), 10*time.Millisecond)
	ctx := context.Background()

	original := state.NewDefault(time.Now())
	require.NoError(t, repo.WriteState(projection(original)))

	// a field-scoped write must not clobber the fields it does not name
	require.NoError(t, repo.WriteState(map[string]interface{}{"halted": true}))

	got, err := repo.ReadState(ctx)
	require.NoError(t, err)
	require.True(t, got.Halted)
	require.Len(t, got.Accounts, 2)
	require.InDelta(t, 10.0, got.Rates[currency.BETA], 1e-9)
}

func TestStateSubscribeDeliversOnRevisionBump(t *testing.T) {
	repo := NewSQLiteStateRepository(openTestDB(t), 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *state.SystemState, 1)
	go repo.Subscribe(ctx, func(s *state.SystemState) {
		select {
		case got <- s:
		default:
		}
	})

	// let the subscriber capture the baseline revision first
	time.Sleep(20 * time.Millisecond)

	original := state.NewDefault(time.Now())
	original.Pressure.Value = 7
	require.NoError(t, repo.WriteState(projection(original)))

	select {
	case s := <-got:
		require.InDelta(t, 7.0, s.Pressure.Value, 1e-9)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never observed the write")
	}
}

func TestRuleRepoRoundTrip(t *testing.T) {
	repo := NewSQLiteRuleRepository(openTestDB(t), 10*time.Millisecond)
	ctx := context.Background()

	rules, err := repo.ReadRules(ctx)
	require.NoError(t, err)
	require.Nil(t, rules, "no rule set stored yet")

	require.NoError(t, repo.ReplaceRules(ctx, audit.DefaultRules()))

	rules, err = repo.ReadRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, len(audit.DefaultRules()))
	require.Equal(t, "LIL_001", rules[0].ID)
	require.Equal(t, audit.TriggerState, rules[0].Triggers[0].Kind)
}

func TestRuleRepoRejectsInvalidSet(t *testing.T) {
	repo := NewSQLiteRuleRepository(openTestDB(t), 10*time.Millisecond)
	ctx := context.Background()

	bad := []audit.Rule{{ID: "A"}, {ID: "A"}}
	require.ErrorContains(t, repo.ReplaceRules(ctx, bad), "duplicate id")

	rules, err := repo.ReadRules(ctx)
	require.NoError(t, err)
	require.Nil(t, rules, "a rejected set must never reach storage")
}

func TestRuleRepoRevisionAdvances(t *testing.T) {
	repo := NewSQLiteRuleRepository(openTestDB(t), 10*time.Millisecond)
	ctx := context.Background()

	require.Equal(t, int64(-1), repo.revision(ctx), "no revision before the first write")
	require.NoError(t, repo.ReplaceRules(ctx, audit.DefaultRules()))
	first := repo.revision(ctx)
	require.NoError(t, repo.ReplaceRules(ctx, audit.DefaultRules()))
	require.Greater(t, repo.revision(ctx), first)
}

func seedJournal(t *testing.T, repo *SQLiteJournalRepository) {
	t.Helper()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	entries := []events.Entry{
		{ID: "e1", Timestamp: base, Kind: events.KindOperation, Level: events.LevelAudit,
			Actor: "MINT", Message: "[MINT] minted 10.00 GAMMA to USER_AUDIT_B",
			Payload: map[string]interface{}{"status": "SUCCESS", "cost": 6.0}},
		{ID: "e2", Timestamp: base.Add(time.Second), Kind: events.KindOperation, Level: events.LevelError,
			Actor: "MINT", Message: "[MINT rejected] minting of ALPHA is suppressed by the active rule set",
			Payload: map[string]interface{}{"status": "FAIL", "cost": 0.5}},
		{ID: "e3", Timestamp: base.Add(2 * time.Second), Kind: events.KindRuleFired, Level: events.LevelWarning,
			Actor: "LIL_001", Message: "LIL_001: dangerous pressure level, system stability degrading"},
		{ID: "e4", Timestamp: base.Add(3 * time.Second), Kind: events.KindAutonomous, Level: events.LevelAudit,
			Actor: "LIL_003", Message: "arbitrage act executed"},
		{ID: "e5", Timestamp: base.Add(4 * time.Second), Kind: events.KindOperation, Level: events.LevelInternal,
			Actor: "SCHEDULER", Message: "bookkeeping"},
	}
	for _, e := range entries {
		require.NoError(t, repo.Append(e))
	}
}

func TestJournalRepoAppendAndQuery(t *testing.T) {
	repo := NewSQLiteJournalRepository(openTestDB(t))
	ctx := context.Background()
	seedJournal(t, repo)

	recent, err := repo.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	// newest three, returned oldest first
	require.Equal(t, "e3", recent[0].ID)
	require.Equal(t, "e5", recent[2].ID)

	ops, err := repo.GetByKind(ctx, events.KindOperation)
	require.NoError(t, err)
	require.Len(t, ops, 3)

	// payloads survive the round trip as decoded maps
	payload, ok := ops[0].Payload.(map[string]interface{})
	require.True(t, ok)
	require.InDelta(t, 6.0, payload["cost"].(float64), 1e-9)
}

func TestReconstructorTallies(t *testing.T) {
	repo := NewSQLiteJournalRepository(openTestDB(t))
	seedJournal(t, repo)
	rec := NewReconstructor(repo)

	tallies, err := rec.RebuildTallies(context.Background())
	require.NoError(t, err)

	mint := tallies["MINT"]
	require.NotNil(t, mint)
	require.Equal(t, 2, mint.Operations)
	require.Equal(t, 1, mint.Failures)
	require.InDelta(t, 6.5, mint.PressureCost, 1e-9)

	require.Equal(t, 1, tallies["LIL_001"].RuleFirings)
	require.Equal(t, 1, tallies["LIL_003"].AutonomousActs)
}

func TestGenerateRecapFiltersNoise(t *testing.T) {
	repo := NewSQLiteJournalRepository(openTestDB(t))
	seedJournal(t, repo)
	rec := NewReconstructor(repo)

	lines, err := rec.GenerateRecap(context.Background(), time.Time{}, 100)
	require.NoError(t, err)
	require.Len(t, lines, 4, "internal bookkeeping entries stay out of the recap")
	for _, l := range lines {
		require.NotEqual(t, string(events.LevelInternal), l.Level)
	}

	// the since cut drops older history
	cut := time.Date(2026, 5, 1, 12, 0, 2, 0, time.UTC)
	lines, err = rec.GenerateRecap(context.Background(), cut, 100)
	require.NoError(t, err)
	require.Len(t, lines, 2)
}

func TestJournalPersistsThroughInMemoryJournal(t *testing.T) {
	repo := NewSQLiteJournalRepository(openTestDB(t))
	journal := events.NewJournal(repo)

	appended := journal.Append(events.Entry{
		Kind: events.KindReset, Level: events.LevelSystem,
		Actor: "operator", Message: "halt latch cleared",
	})

	// the write-through is asynchronous
	require.Eventually(t, func() bool {
		entries, err := repo.GetByKind(context.Background(), events.KindReset)
		return err == nil && len(entries) == 1 && entries[0].ID == appended.ID
	}, 2*time.Second, 10*time.Millisecond)
}
