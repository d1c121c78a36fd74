// Package autonomous executes the compound Z-acts that a satisfied audit
// rule requested: machine-triggered multi-account mutations with their own
// fixed pressure cost.
//
// Chaining is exactly one level deep. A Z-act mutates state directly and
// never re-enters rule evaluation; whatever its side effects trip only
// matters on the next cycle.
package autonomous

import (
	"fmt"
	"time"

	"github.com/MRamiBalles/LogosOmega/server/internal/audit"
	"github.com/MRamiBalles/LogosOmega/server/internal/domain/currency"
	"github.com/MRamiBalles/LogosOmega/server/internal/events"
	"github.com/MRamiBalles/LogosOmega/server/internal/platform/logger"
	"github.com/MRamiBalles/LogosOmega/server/internal/state"
)

// Z-act calibration.
const (
	ArbitrageThreshold = 11.0 // rate above which the opportunity is live
	ArbitrageAmount    = 10.0 // units credited to the arbitrage target
	ArbitrageYield     = 0.1  // fraction returned to the core bank in ALPHA
	ArbitrageCost      = 5.0

	CreditAmount = 50.0 // ALPHA loaned from the core bank
	CreditCost   = 10.0

	StabilizeAmount = 15.0 // net stability percentage points restored
	StabilizeCost   = 8.0
)

// Dispatcher looks up and runs requested Z-acts against the store.
type Dispatcher struct {
	store   *state.Store
	journal *events.Journal
	logger  *logger.Logger
	now     func() time.Time
}

// NewDispatcher wires the Z-act dispatcher.
func NewDispatcher(store *state.Store, journal *events.Journal, log *logger.Logger) *Dispatcher {
	return &Dispatcher{store: store, journal: journal, logger: log, now: time.Now}
}

// SetClock overrides the time source. Test hook.
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
}

// Run executes every Z-act requested by the current rule pass, in request
// order. Unknown act names are journaled and skipped; the remaining
// requests still run.
func (d *Dispatcher) Run(requests []audit.Invocation) {
	for _, req := range requests {
		switch req.Name {
		case audit.ActArbitrage:
			d.arbitrage(req)
		case audit.ActCredit:
			d.credit(req)
		case audit.ActNetStabilize:
			d.netStabilize(req)
		default:
			d.logger.Warn("Unknown Z-act requested by " + req.RuleID + ": " + req.Name)
			d.journal.Append(events.Entry{
				Kind:    events.KindAutonomous,
				Level:   events.LevelWarning,
				Actor:   req.RuleID,
				Message: fmt.Sprintf("unknown autonomous act %q requested, skipped", req.Name),
			})
		}
	}
}

// arbitrage exploits a diverged rate: it credits the audit user with the
// target currency and returns a cut to the core bank. The rate is
// re-checked because decay or another act may have closed the window since
// the rule fired.
func (d *Dispatcher) arbitrage(req audit.Invocation) {
	code := currency.Code(req.Target)
	if code == "" {
		code = currency.BETA
	}

	executed := false
	d.store.Update(func(s *state.SystemState) {
		rate := s.Rates[code]
		if rate <= ArbitrageThreshold {
			return
		}
		coreBank := s.Account(state.CoreBankID)
		target := s.Account(state.AuditUserID)
		if coreBank == nil || target == nil {
			return
		}
		coreBank.Credit(currency.ALPHA, ArbitrageAmount*ArbitrageYield)
		target.Credit(code, ArbitrageAmount)
		s.RecomputeSupply()
		executed = true
	})

	if !executed {
		d.journal.Append(events.Entry{
			Kind:    events.KindAutonomous,
			Level:   events.LevelSystem,
			Actor:   req.RuleID,
			Message: fmt.Sprintf("%s rate back under the arbitrage threshold, opportunity vanished", code),
		})
		return
	}

	d.store.AddPressure(ArbitrageCost)
	d.journal.Append(events.Entry{
		Kind:  events.KindAutonomous,
		Level: events.LevelAudit,
		Actor: req.RuleID,
		Message: fmt.Sprintf("arbitrage act executed on %s divergence: %.1f credited to %s, pressure +%.1f",
			code, ArbitrageAmount, state.AuditUserID, ArbitrageCost),
	})
}

// credit extends an automatic loan from the core bank during high
// stability: plain credit creation, not a transfer of audited money.
func (d *Dispatcher) credit(req audit.Invocation) {
	targetID := req.Target
	if targetID == "" {
		targetID = state.AuditUserID
	}

	executed := false
	d.store.Update(func(s *state.SystemState) {
		coreBank := s.Account(state.CoreBankID)
		target := s.Account(targetID)
		if coreBank == nil || target == nil {
			return
		}
		coreBank.Debit(currency.ALPHA, CreditAmount)
		target.Credit(currency.ALPHA, CreditAmount)
		s.RecomputeSupply()
		executed = true
	})

	if !executed {
		d.journal.Append(events.Entry{
			Kind:    events.KindAutonomous,
			Level:   events.LevelWarning,
			Actor:   req.RuleID,
			Message: fmt.Sprintf("credit target account %q does not exist, act skipped", targetID),
		})
		return
	}

	d.store.AddPressure(CreditCost)
	d.journal.Append(events.Entry{
		Kind:  events.KindAutonomous,
		Level: events.LevelAudit,
		Actor: req.RuleID,
		Message: fmt.Sprintf("credit act executed: %.2f ALPHA extended from %s to %s, pressure +%.1f",
			CreditAmount, state.CoreBankID, targetID, CreditCost),
	})
}

// netStabilize restores part of the network stability gauge, capped at 100.
func (d *Dispatcher) netStabilize(req audit.Invocation) {
	now := d.now()
	var restored float64
	d.store.Update(func(s *state.SystemState) {
		current := s.Infrastructure.NetStability.Value
		next := current + StabilizeAmount
		if next > 100 {
			next = 100
		}
		restored = next - current
		s.Infrastructure.NetStability = state.Gauge{Value: next, LastChange: now}
	})

	d.store.AddPressure(StabilizeCost)
	d.journal.Append(events.Entry{
		Kind:  events.KindAutonomous,
		Level: events.LevelSystem,
		Actor: req.RuleID,
		Message: fmt.Sprintf("network stabilization act restored %.1f%% stability, pressure +%.1f",
			restored, StabilizeCost),
	})
}
