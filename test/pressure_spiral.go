// Package test - pressure_spiral.go
// Stress scenario: "The Pressure Spiral"
// Validates that the rule set pushes back when clients spam economic acts:
// suppression flags engage, the halt latch trips on infrastructure collapse,
// and only an explicit reset recovers the system.
package test

import (
	"context"
	"fmt"
	"time"

	"github.com/MRamiBalles/LogosOmega/server/internal/actions"
	"github.com/MRamiBalles/LogosOmega/server/internal/audit"
	"github.com/MRamiBalles/LogosOmega/server/internal/autonomous"
	"github.com/MRamiBalles/LogosOmega/server/internal/domain/currency"
	"github.com/MRamiBalles/LogosOmega/server/internal/engine"
	"github.com/MRamiBalles/LogosOmega/server/internal/events"
	"github.com/MRamiBalles/LogosOmega/server/internal/platform/logger"
	"github.com/MRamiBalles/LogosOmega/server/internal/state"
)

// PressureSpiralTest drives the full in-process stack through an abuse
// scenario without any network layer.
type PressureSpiralTest struct {
	store     *state.Store
	engine    *audit.Engine
	registry  *actions.Registry
	scheduler *engine.Scheduler
	journal   *events.Journal
	logger    *logger.Logger
	results   []ScenarioResult
}

// ScenarioResult captures the outcome of each scenario step.
type ScenarioResult struct {
	ScenarioName string
	Input        string
	Expected     string
	Actual       string
	Passed       bool
	Reason       string
}

// NewPressureSpiralTest creates the stress scenario harness.
func NewPressureSpiralTest() *PressureSpiralTest {
	log := logger.NewLogger()
	journal := events.NewJournal(nil)
	store := state.NewStore(state.NewDefault(time.Now()))
	auditEngine := audit.NewEngine(audit.DefaultRules())
	registry := actions.NewRegistry(store, auditEngine, journal, log, state.CoreBankID)
	dispatcher := autonomous.NewDispatcher(store, journal, log)
	scheduler := engine.NewScheduler(store, auditEngine, dispatcher, nil, journal, log)
	scheduler.SetRand(func() float64 { return 0 })

	return &PressureSpiralTest{
		store:     store,
		engine:    auditEngine,
		registry:  registry,
		scheduler: scheduler,
		journal:   journal,
		logger:    log,
		results:   make([]ScenarioResult, 0),
	}
}

// RunTest executes the full pressure spiral scenario.
func (t *PressureSpiralTest) RunTest(ctx context.Context) {
	fmt.Println("\n============================================================")
	fmt.Println("🧪 STRESS SCENARIO: THE PRESSURE SPIRAL")
	fmt.Println("============================================================")

	t.runSuppressionPhase()
	t.runCollapsePhase()
	t.runRecoveryPhase()

	fmt.Println("\n============================================================")
	for _, r := range t.results {
		mark := "✅"
		if !r.Passed {
			mark = "❌"
		}
		fmt.Printf("%s %s: %s\n", mark, r.ScenarioName, r.Reason)
	}
	fmt.Println("============================================================")
}

// runSuppressionPhase spams mints until the pressure rules suppress ALPHA.
func (t *PressureSpiralTest) runSuppressionPhase() {
	now := time.Now()
	for i := 0; i < 40 && t.store.Snapshot().Pressure.Value <= 70; i++ {
		t.registry.Mint(state.CoreBankID, currency.GAMMA, 5)
		now = now.Add(time.Second)
		t.scheduler.RunOnce(now)
	}

	pressure := t.store.Snapshot().Pressure.Value
	res := t.registry.Mint(state.CoreBankID, currency.ALPHA, 10)

	result := ScenarioResult{
		ScenarioName: "Suppression under pressure",
		Input:        "mint spam until pressure > 70, then mint ALPHA",
		Expected:     "ALPHA mint rejected by suppression flag",
		Actual:       string(res.Status) + " / " + res.Reason,
	}
	if pressure > 70 && res.Status == actions.StatusFail {
		result.Passed = true
		result.Reason = fmt.Sprintf("ALPHA minting suppressed at pressure %.2f", pressure)
	} else {
		result.Reason = fmt.Sprintf("expected suppression, got %s at pressure %.2f", res.Status, pressure)
	}
	t.results = append(t.results, result)
}

// runCollapsePhase crushes both infrastructure gauges and expects the halt
// latch to trip on the next audit cycle.
func (t *PressureSpiralTest) runCollapsePhase() {
	t.registry.ResetHalt("SCENARIO")
	t.store.Update(func(s *state.SystemState) {
		s.Infrastructure.EnergySupply.Value = 3
		s.Infrastructure.NetStability.Value = 4
	})
	t.scheduler.RunOnce(time.Now())

	halted := t.store.Halted()
	res := t.registry.Mint(state.CoreBankID, currency.GAMMA, 1)

	result := ScenarioResult{
		ScenarioName: "Collapse halts the economy",
		Input:        "energy=3, net=4, one audit cycle, then mint",
		Expected:     "halt latched and mint refused",
		Actual:       fmt.Sprintf("halted=%v status=%s", halted, res.Status),
	}
	if halted && res.Status == actions.StatusFail && res.Reason == actions.ReasonHalted {
		result.Passed = true
		result.Reason = "infrastructure collapse latched the halt and refused the mint"
	} else {
		result.Reason = "halt latch did not engage as expected"
	}
	t.results = append(t.results, result)
}

// runRecoveryPhase resets the latch, repairs infrastructure and expects
// operations to flow again.
func (t *PressureSpiralTest) runRecoveryPhase() {
	t.registry.ResetHalt("SCENARIO")
	// Repair before the next cycle re-evaluates the collapse rule.
	t.store.Update(func(s *state.SystemState) {
		s.Infrastructure.EnergySupply.Value = 90
		s.Infrastructure.NetStability.Value = 85
		s.Pressure.Value = 30
	})
	t.scheduler.RunOnce(time.Now())

	res := t.registry.Transfer(state.CoreBankID, state.AuditUserID, currency.BETA, 5)

	result := ScenarioResult{
		ScenarioName: "Recovery after reset",
		Input:        "reset latch, repair infra, transfer 5 BETA",
		Expected:     "transfer succeeds",
		Actual:       string(res.Status),
	}
	if res.Status == actions.StatusSuccess {
		result.Passed = true
		result.Reason = "explicit reset restored normal operation"
	} else {
		result.Reason = "transfer still refused after reset: " + res.Reason
	}
	t.results = append(t.results, result)
}

// GetResults returns all scenario results.
func (t *PressureSpiralTest) GetResults() []ScenarioResult {
	return t.results
}
