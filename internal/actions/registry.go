package actions

import (
	"fmt"
	"math"
	"time"

	"github.com/MRamiBalles/LogosOmega/server/internal/audit"
	"github.com/MRamiBalles/LogosOmega/server/internal/events"
	"github.com/MRamiBalles/LogosOmega/server/internal/platform/logger"
	"github.com/MRamiBalles/LogosOmega/server/internal/platform/metrics"
	"github.com/MRamiBalles/LogosOmega/server/internal/state"
)

// Pressure cost schedule. Success costs are scaled by the policy-flag cost
// multiplier and the currency's own surcharge; rejection costs are fixed.
const (
	AttemptCost       = 0.2 // a failed validation is not free
	TransferBaseCost  = 1.0
	MintBaseCost      = 3.0 // per unit of currency sensitivity
	BridgeOutBaseCost = 2.0
	InfraAdjustCost   = 1.0
	SuppressedCost    = 0.5 // rejected by a suppression flag
	SuppressedBTCCost = 1.0 // the cap rule charges extra
	UnauthorizedCost  = 0.5 // rejected by mint authority policy
)

// FlagSource exposes the policy flags published by the most recent rule
// evaluation pass.
type FlagSource interface {
	Flags() audit.FlagSet
}

// Registry executes the user-facing economic operations against the store.
type Registry struct {
	store   *state.Store
	flags   FlagSource
	journal *events.Journal
	logger  *logger.Logger

	// bridgeAccount absorbs external-value exposure on bridge-out acts.
	bridgeAccount string

	now func() time.Time
}

// NewRegistry wires the operation registry.
func NewRegistry(store *state.Store, flags FlagSource, journal *events.Journal, log *logger.Logger, bridgeAccount string) *Registry {
	return &Registry{
		store:         store,
		flags:         flags,
		journal:       journal,
		logger:        log,
		bridgeAccount: bridgeAccount,
		now:           time.Now,
	}
}

// SetClock overrides the time source. Test hook.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}

// haltGate uniformly refuses operations while the halt latch is set.
// Refusal is free of charge and independent of the operation's own checks.
func (r *Registry) haltGate(op string) (Result, bool) {
	if !r.store.Halted() {
		return Result{}, false
	}
	r.journal.Append(events.Entry{
		Kind:    events.KindOperation,
		Level:   events.LevelError,
		Actor:   op,
		Message: fmt.Sprintf("[%s refused] %s", op, ReasonHalted),
	})
	metrics.Get().RecordOperation("HALTED")
	return fail(ReasonHalted, 0), true
}

// reject charges the given fixed cost, journals the refusal and returns the
// FAIL result.
func (r *Registry) reject(op, reason string, cost float64) Result {
	if cost > 0 {
		r.store.AddPressure(cost)
	}
	res := fail(reason, cost)
	r.journal.Append(events.Entry{
		Kind:    events.KindOperation,
		Level:   events.LevelError,
		Actor:   op,
		Message: fmt.Sprintf("[%s rejected] %s", op, reason),
		Payload: res,
	})
	metrics.Get().RecordOperation("FAIL")
	return res
}

// settle charges the success cost, journals the act and returns the result.
func (r *Registry) settle(op, detail string, res Result) Result {
	if res.Cost > 0 {
		r.store.AddPressure(res.Cost)
	}
	level := events.LevelAudit
	if res.Status == StatusCritical {
		level = events.LevelCritical
	}
	r.journal.Append(events.Entry{
		Kind:    events.KindOperation,
		Level:   level,
		Actor:   op,
		Message: fmt.Sprintf("[%s] %s", op, detail),
		Payload: res,
	})
	metrics.Get().RecordOperation(string(res.Status))
	return res
}

// validAmount rejects non-positive, NaN and infinite amounts.
func validAmount(amount float64) bool {
	return amount > 0 && !math.IsNaN(amount) && !math.IsInf(amount, 0)
}

// ResetHalt clears the halt latch. This is the explicit external reset: no
// rule in the default set ever transitions the system back to running, so
// recovery is always a deliberate operator act. Charges no cost and is,
// by definition, allowed while halted.
func (r *Registry) ResetHalt(operator string) Result {
	wasHalted := false
	r.store.Update(func(s *state.SystemState) {
		wasHalted = s.Halted
		s.Halted = false
	})

	if !wasHalted {
		return success(0, 0)
	}
	r.logger.Act("RESET", operator, "halt latch cleared by external reset")
	r.journal.Append(events.Entry{
		Kind:    events.KindReset,
		Level:   events.LevelSystem,
		Actor:   operator,
		Message: "halt latch cleared; economic acts are accepted again",
	})
	return success(0, 0)
}
