// Package engine contains the audit cycle and its periodic driver.
// This is the heartbeat of the Logos Omega protocol.
//
// ARCHITECTURAL RULE: every per-tick step runs in a fixed order (decay ->
// evaluate -> recompute -> dispatch -> persist) on a single control flow.
// User operations share the state store's lock, never this loop.
package engine

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/MRamiBalles/LogosOmega/server/internal/audit"
	"github.com/MRamiBalles/LogosOmega/server/internal/autonomous"
	"github.com/MRamiBalles/LogosOmega/server/internal/domain/rates"
	"github.com/MRamiBalles/LogosOmega/server/internal/events"
	"github.com/MRamiBalles/LogosOmega/server/internal/platform/logger"
	"github.com/MRamiBalles/LogosOmega/server/internal/platform/metrics"
	"github.com/MRamiBalles/LogosOmega/server/internal/state"
)

// Decay calibration per real-time second and per tick.
const (
	PressureDecayPerSecond = 0.005 // 0.5% of current value each second
	EnergyDecayPerTick     = 0.1
	NetDecayPerTick        = 0.05
)

// StateRepository is the slice of the remote document store the scheduler
// needs: field-scoped, best-effort projection writes.
type StateRepository interface {
	WriteState(partial map[string]interface{}) error
}

// Scheduler executes one audit cycle at a time. The Ticker drives it on an
// interval; tests drive it through RunOnce with a fake clock.
type Scheduler struct {
	store      *state.Store
	rules      *audit.Engine
	dispatcher *autonomous.Dispatcher
	repo       StateRepository
	journal    *events.Journal
	logger     *logger.Logger

	rand01 func() float64
}

// NewScheduler wires the audit cycle.
func NewScheduler(store *state.Store, rules *audit.Engine, dispatcher *autonomous.Dispatcher, repo StateRepository, journal *events.Journal, log *logger.Logger) *Scheduler {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Scheduler{
		store:      store,
		rules:      rules,
		dispatcher: dispatcher,
		repo:       repo,
		journal:    journal,
		logger:     log,
		rand01:     rng.Float64,
	}
}

// SetRand overrides the perturbation source. Test hook; pass nil for a flat
// zero perturbation.
func (sc *Scheduler) SetRand(rand01 func() float64) {
	sc.rand01 = rand01
}

// RunOnce executes a full audit cycle at the given instant.
//
// Decay and bookkeeping deliberately keep running once the system is
// halted; only the operation registry and the command layer honor the
// latch.
func (sc *Scheduler) RunOnce(now time.Time) {
	// 1. Pressure decays with elapsed time.
	sc.store.DecayPressure(now, PressureDecayPerSecond)

	// 2. Infrastructure erodes by a fixed amount per cycle, floored at 0.
	// 3. Total supply is rebuilt from the account balances.
	sc.store.Update(func(s *state.SystemState) {
		s.Infrastructure.EnergySupply.Value = math.Max(0, s.Infrastructure.EnergySupply.Value-EnergyDecayPerTick)
		s.Infrastructure.NetStability.Value = math.Max(0, s.Infrastructure.NetStability.Value-NetDecayPerTick)
		s.RecomputeSupply()
	})

	// 4. Rule evaluation. SET_STATE actions apply to the live state under
	// the store lock; the pass's cost lands on the pressure metric.
	var (
		report       audit.Report
		haltedBefore bool
		haltedAfter  bool
	)
	sc.store.Update(func(s *state.SystemState) {
		haltedBefore = s.Halted
		report = sc.rules.Evaluate(s)
		haltedAfter = s.Halted
	})
	sc.store.AddPressure(report.TotalCost)
	metrics.Get().RecordRulePass(report.Evaluated, len(report.TriggeredIDs))

	for _, entry := range report.Entries {
		sc.journal.Append(entry)
	}
	if haltedAfter && !haltedBefore {
		sc.logger.Error("SYSTEM HALT latched by rule evaluation")
		sc.journal.Append(events.Entry{
			Kind:    events.KindHalt,
			Level:   events.LevelCritical,
			Actor:   "RULE_ENGINE",
			Message: "halt latch set; economic acts are refused until an external reset",
		})
	}

	// 5. Rates follow pressure and supply.
	snap := sc.store.Snapshot()
	newRates := rates.Compute(snap.Pressure.Value, state.PressureLimit, snap.TotalSupply, sc.rand01)
	sc.store.Update(func(s *state.SystemState) {
		s.Rates = newRates
	})

	// 6. Autonomous acts requested by this pass, exactly one level deep.
	sc.dispatcher.Run(report.Requests)

	// 7. Persist the projection. Best-effort: the in-memory state stays
	// authoritative and the next cycle rewrites everything it projects.
	if err := sc.persist(); err != nil {
		sc.logger.Error("State projection write failed: " + err.Error())
		metrics.Get().RecordPersistenceError()
		sc.journal.Append(events.Entry{
			Kind:    events.KindPersistence,
			Level:   events.LevelError,
			Actor:   "SCHEDULER",
			Message: fmt.Sprintf("state projection write failed, retrying next cycle: %v", err),
		})
	}
}

// persist writes the field-scoped projection of the current snapshot.
func (sc *Scheduler) persist() error {
	if sc.repo == nil {
		return nil
	}
	snap := sc.store.Snapshot()
	return sc.repo.WriteState(map[string]interface{}{
		"halted":         snap.Halted,
		"pressure":       snap.Pressure,
		"rates":          snap.Rates,
		"total_supply":   snap.TotalSupply,
		"accounts":       snap.Accounts,
		"infrastructure": snap.Infrastructure,
	})
}
