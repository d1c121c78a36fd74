package actions

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/LogosOmega/server/internal/audit"
	"github.com/MRamiBalles/LogosOmega/server/internal/domain/currency"
	"github.com/MRamiBalles/LogosOmega/server/internal/events"
	"github.com/MRamiBalles/LogosOmega/server/internal/platform/logger"
	"github.com/MRamiBalles/LogosOmega/server/internal/state"
)

// staticFlags feeds a fixed flag set to the registry, standing in for the
// rule engine between passes.
type staticFlags struct {
	flags audit.FlagSet
}

func (s staticFlags) Flags() audit.FlagSet { return s.flags }

func suppressing(codes ...currency.Code) staticFlags {
	f := audit.DefaultFlags()
	for _, c := range codes {
		f.SuppressMint[c] = true
	}
	return staticFlags{flags: f}
}

func newTestRegistry(t *testing.T, flags FlagSource) (*Registry, *state.Store, *events.Journal) {
	t.Helper()
	if flags == nil {
		flags = staticFlags{flags: audit.DefaultFlags()}
	}
	store := state.NewStore(state.NewDefault(time.Now()))
	journal := events.NewJournal(nil)
	reg := NewRegistry(store, flags, journal, logger.NewLogger(), state.CoreBankID)
	return reg, store, journal
}

func TestMintGammaOpenPolicy(t *testing.T) {
	reg, store, _ := newTestRegistry(t, nil)

	res := reg.Mint(state.AuditUserID, currency.GAMMA, 10)

	require.Equal(t, StatusSuccess, res.Status)
	require.InDelta(t, 10.0, res.Amount, 1e-9)
	// 3.0 base * 2.0 sensitivity * 1.0 surcharge * 1.0 multiplier
	require.InDelta(t, 6.0, res.Cost, 1e-9)

	snap := store.Snapshot()
	require.InDelta(t, 10.0, snap.Account(state.AuditUserID).Balances[currency.GAMMA], 1e-9)
	require.InDelta(t, 110.0, snap.TotalSupply[currency.GAMMA], 1e-9, "supply must be recomputed after mint")
	require.InDelta(t, 6.0, snap.Pressure.Value, 1e-9)
}

func TestMintAuthorityEnforced(t *testing.T) {
	reg, store, _ := newTestRegistry(t, nil)

	res := reg.Mint(state.AuditUserID, currency.BETA, 5)

	require.Equal(t, StatusFail, res.Status)
	require.Contains(t, res.Reason, "authority")
	require.InDelta(t, UnauthorizedCost, res.Cost, 1e-9)
	require.InDelta(t, 0.0, store.Snapshot().Account(state.AuditUserID).Balances[currency.BETA], 1e-9)

	// the authority account itself may mint
	res = reg.Mint(state.CoreBankID, currency.BETA, 5)
	require.Equal(t, StatusSuccess, res.Status)
}

func TestMintSuppressedByFlags(t *testing.T) {
	reg, store, _ := newTestRegistry(t, suppressing(currency.ALPHA, currency.BTC))

	res := reg.Mint(state.CoreBankID, currency.ALPHA, 1)
	require.Equal(t, StatusFail, res.Status)
	require.InDelta(t, SuppressedCost, res.Cost, 1e-9)

	res = reg.Mint(state.CoreBankID, currency.BTC, 1)
	require.Equal(t, StatusFail, res.Status)
	require.InDelta(t, SuppressedBTCCost, res.Cost, 1e-9, "the supply-cap rule charges extra")

	require.InDelta(t, 1000.0, store.Snapshot().Account(state.CoreBankID).Balances[currency.ALPHA], 1e-9)
}

func TestMintUnknownAccountTrumpsSuppression(t *testing.T) {
	reg, store, _ := newTestRegistry(t, suppressing(currency.ALPHA))

	// Existence is checked first, inside the same update that would credit.
	res := reg.Mint("GHOST", currency.ALPHA, 1)

	require.Equal(t, StatusFail, res.Status)
	require.Contains(t, res.Reason, "unknown target account")
	require.InDelta(t, AttemptCost, res.Cost, 1e-9)
	require.Nil(t, store.Snapshot().Account("GHOST"))
}

func TestSuppressionChainThroughRuleEngine(t *testing.T) {
	engine := audit.NewEngine(audit.DefaultRules())
	store := state.NewStore(state.NewDefault(time.Now()))
	journal := events.NewJournal(nil)
	reg := NewRegistry(store, engine, journal, logger.NewLogger(), state.CoreBankID)

	// a pass at pressure 75 publishes the ALPHA suppression flag
	store.Update(func(s *state.SystemState) {
		s.Pressure.Value = 75
		engine.Evaluate(s)
	})
	res := reg.Mint(state.CoreBankID, currency.ALPHA, 1)
	require.Equal(t, StatusFail, res.Status)
	require.Contains(t, res.Reason, "suppressed")

	// a pass with BTC supply over the cap suppresses BTC for any target
	store.Update(func(s *state.SystemState) {
		s.Pressure.Value = 30
		s.TotalSupply[currency.BTC] = 21000001
		engine.Evaluate(s)
	})
	res = reg.Mint(state.AuditUserID, currency.BTC, 1)
	require.Equal(t, StatusFail, res.Status)
	require.InDelta(t, SuppressedBTCCost, res.Cost, 1e-9)

	// a calm pass clears both flags again
	store.Update(func(s *state.SystemState) {
		s.Pressure.Value = 30
		s.TotalSupply[currency.BTC] = 1
		engine.Evaluate(s)
	})
	require.Equal(t, StatusSuccess, reg.Mint(state.CoreBankID, currency.ALPHA, 1).Status)
}

func TestMintCostMultiplierAndSurcharge(t *testing.T) {
	f := audit.DefaultFlags()
	f.CostMultiplier = 5.0
	reg, _, _ := newTestRegistry(t, staticFlags{flags: f})

	res := reg.Mint(state.CoreBankID, currency.MATIC, 1)

	require.Equal(t, StatusSuccess, res.Status)
	// 3.0 base * 0.8 sensitivity * 1.5 gas surcharge * 5.0 energy penalty
	require.InDelta(t, 18.0, res.Cost, 1e-9)
}

func TestMintValidation(t *testing.T) {
	reg, _, _ := newTestRegistry(t, nil)

	res := reg.Mint(state.CoreBankID, "DOGE", 1)
	require.Equal(t, StatusFail, res.Status)
	require.Contains(t, res.Reason, "unknown currency")
	require.InDelta(t, AttemptCost, res.Cost, 1e-9)

	for _, amount := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		res = reg.Mint(state.CoreBankID, currency.GAMMA, amount)
		require.Equal(t, StatusFail, res.Status)
	}

	res = reg.Mint("GHOST", currency.GAMMA, 1)
	require.Contains(t, res.Reason, "unknown target account")
}

func TestTransferMovesBalanceAtomically(t *testing.T) {
	reg, store, _ := newTestRegistry(t, nil)

	res := reg.Transfer(state.CoreBankID, state.AuditUserID, currency.BETA, 100)

	require.Equal(t, StatusSuccess, res.Status)
	require.InDelta(t, TransferBaseCost, res.Cost, 1e-9)

	snap := store.Snapshot()
	require.InDelta(t, 400.0, snap.Account(state.CoreBankID).Balances[currency.BETA], 1e-9)
	require.InDelta(t, 100.0, snap.Account(state.AuditUserID).Balances[currency.BETA], 1e-9)
	require.InDelta(t, 500.0, snap.TotalSupply[currency.BETA], 1e-9, "a transfer never changes total supply")
}

func TestTransferInsufficientBalance(t *testing.T) {
	reg, store, _ := newTestRegistry(t, nil)

	res := reg.Transfer(state.AuditUserID, state.CoreBankID, currency.ALPHA, 100)

	require.Equal(t, StatusFail, res.Status)
	require.Contains(t, res.Reason, "insufficient balance")
	require.InDelta(t, AttemptCost, res.Cost, 1e-9)

	snap := store.Snapshot()
	require.InDelta(t, 50.0, snap.Account(state.AuditUserID).Balances[currency.ALPHA], 1e-9,
		"a refused transfer must leave both balances untouched")
	require.InDelta(t, 1000.0, snap.Account(state.CoreBankID).Balances[currency.ALPHA], 1e-9)
	require.InDelta(t, AttemptCost, snap.Pressure.Value, 1e-9, "even a refusal costs pressure")
}

func TestTransferMaticSurcharge(t *testing.T) {
	reg, _, _ := newTestRegistry(t, nil)

	res := reg.Transfer(state.CoreBankID, state.AuditUserID, currency.MATIC, 10)

	require.Equal(t, StatusSuccess, res.Status)
	require.InDelta(t, 1.5, res.Cost, 1e-9)
}

func TestBridgeOutBurnsAndMirrors(t *testing.T) {
	reg, store, _ := newTestRegistry(t, nil)

	res := reg.BridgeOut(state.CoreBankID, 500)

	require.Equal(t, StatusSuccess, res.Status)
	// 500 ALPHA at the genesis USD rate of 100 mirrors 5 USD
	require.InDelta(t, 5.0, res.Amount, 1e-9)
	require.InDelta(t, BridgeOutBaseCost, res.Cost, 1e-9)

	snap := store.Snapshot()
	require.InDelta(t, 500.0, snap.Account(state.CoreBankID).Balances[currency.ALPHA], 1e-9)
	require.InDelta(t, 9995.0, snap.Account(state.CoreBankID).Balances[currency.USD], 1e-9)
	require.InDelta(t, 550.0, snap.TotalSupply[currency.ALPHA], 1e-9, "bridged ALPHA is burned, not moved")
}

func TestBridgeOutNegativeExposureIsCritical(t *testing.T) {
	reg, store, journal := newTestRegistry(t, nil)

	store.Update(func(s *state.SystemState) {
		s.Account(state.CoreBankID).Balances[currency.USD] = 0.001
	})

	res := reg.BridgeOut(state.CoreBankID, 1)

	require.Equal(t, StatusCritical, res.Status)
	require.Less(t, store.Snapshot().Account(state.CoreBankID).Balances[currency.USD], 0.0)

	entries := journal.GetByKind(events.KindOperation)
	require.NotEmpty(t, entries)
	require.Equal(t, events.LevelCritical, entries[len(entries)-1].Level)
}

func TestBridgeOutInsufficientAlpha(t *testing.T) {
	reg, _, _ := newTestRegistry(t, nil)

	res := reg.BridgeOut(state.AuditUserID, 100)

	require.Equal(t, StatusFail, res.Status)
	require.Contains(t, res.Reason, "insufficient balance")
}

func TestAdjustInfrastructure(t *testing.T) {
	reg, store, _ := newTestRegistry(t, nil)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	reg.SetClock(func() time.Time { return fixed })

	res := reg.AdjustInfrastructure(InfraEnergy, 42)

	require.Equal(t, StatusSuccess, res.Status)
	require.InDelta(t, InfraAdjustCost, res.Cost, 1e-9)

	gauge := store.Snapshot().Infrastructure.EnergySupply
	require.InDelta(t, 42.0, gauge.Value, 1e-9)
	require.True(t, gauge.LastChange.Equal(fixed))

	res = reg.AdjustInfrastructure(InfraNet, 101)
	require.Equal(t, StatusFail, res.Status)
	res = reg.AdjustInfrastructure("WATER", 10)
	require.Equal(t, StatusFail, res.Status)
}

func TestHaltGateRefusesEverything(t *testing.T) {
	reg, store, _ := newTestRegistry(t, nil)
	store.Update(func(s *state.SystemState) { s.Halted = true })

	results := []Result{
		reg.Mint(state.CoreBankID, currency.GAMMA, 1),
		reg.Transfer(state.CoreBankID, state.AuditUserID, currency.ALPHA, 1),
		reg.BridgeOut(state.CoreBankID, 1),
		reg.AdjustInfrastructure(InfraEnergy, 50),
	}
	for _, res := range results {
		require.Equal(t, StatusFail, res.Status)
		require.Equal(t, ReasonHalted, res.Reason)
		require.Zero(t, res.Cost, "a halt refusal is free of charge")
	}
	require.Zero(t, store.Snapshot().Pressure.Value)
}

func TestResetHaltReopensOperations(t *testing.T) {
	reg, store, journal := newTestRegistry(t, nil)
	store.Update(func(s *state.SystemState) { s.Halted = true })

	res := reg.ResetHalt("operator")
	require.Equal(t, StatusSuccess, res.Status)
	require.False(t, store.Halted())
	require.Len(t, journal.GetByKind(events.KindReset), 1)

	// reset is idempotent and silent when nothing was latched
	reg.ResetHalt("operator")
	require.Len(t, journal.GetByKind(events.KindReset), 1)

	require.Equal(t, StatusSuccess, reg.Mint(state.CoreBankID, currency.GAMMA, 1).Status)
}
