package audit

import (
	"strings"
	"sync"

	"github.com/MRamiBalles/LogosOmega/server/internal/domain/currency"
	"github.com/MRamiBalles/LogosOmega/server/internal/events"
	"github.com/MRamiBalles/LogosOmega/server/internal/state"
)

// Invocation is a recorded INVOKE_AUTONOMOUS request for the dispatcher.
type Invocation struct {
	RuleID string
	Name   string
	Target string
}

// Report is the outcome of one evaluation pass.
type Report struct {
	TriggeredIDs []string
	TotalCost    float64
	Flags        FlagSet
	Requests     []Invocation
	Entries      []events.Entry
	Evaluated    int
}

// Engine evaluates the active rule set against state snapshots.
// The rule list is swapped wholesale between cycles, never edited in place.
type Engine struct {
	mu    sync.RWMutex
	rules []Rule
	flags FlagSet
}

// NewEngine creates an engine with an initial rule set.
func NewEngine(rules []Rule) *Engine {
	return &Engine{rules: rules, flags: DefaultFlags()}
}

// SwapRules replaces the active rule set. Takes effect with the next pass.
func (e *Engine) SwapRules(rules []Rule) {
	e.mu.Lock()
	e.rules = rules
	e.mu.Unlock()
}

// Rules returns the active rule set.
func (e *Engine) Rules() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Flags returns the policy flags published by the most recent pass.
// The action layer reads these between cycles.
func (e *Engine) Flags() FlagSet {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.flags.clone()
}

// Evaluate runs every rule in declaration order against s.
//
// Flags are reset to defaults exactly once before the first rule; they are a
// function of the current cycle only. SET_STATE actions mutate s directly,
// so a later rule in the same pass observes them. The caller is expected to
// hold the state store lock while evaluating so no act interleaves.
func (e *Engine) Evaluate(s *state.SystemState) Report {
	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	report := Report{Flags: DefaultFlags(), Evaluated: len(rules)}

	for _, rule := range rules {
		if !triggered(rule, s) {
			continue
		}

		report.TriggeredIDs = append(report.TriggeredIDs, rule.ID)
		report.TotalCost += rule.PressureCost

		for _, action := range rule.Actions {
			switch action.Type {
			case ActionLog:
				level := action.Level
				if level == "" {
					level = events.LevelSystem
				}
				report.Entries = append(report.Entries, events.Entry{
					Kind:    events.KindRuleFired,
					Level:   level,
					Actor:   rule.ID,
					Message: action.Message,
				})

			case ActionSetFlag:
				if !report.Flags.apply(action.Flag, action.Value) {
					report.Entries = append(report.Entries, events.Entry{
						Kind:    events.KindRuleFired,
						Level:   events.LevelWarning,
						Actor:   rule.ID,
						Message: "SET_FLAG ignored: unknown flag " + action.Flag,
					})
				}

			case ActionSetState:
				// The only durable mutation path a rule has. Restricted to
				// top-level fields; in the default set this is the halt latch.
				if !applyState(s, action.Field, action.Value) {
					report.Entries = append(report.Entries, events.Entry{
						Kind:    events.KindRuleFired,
						Level:   events.LevelWarning,
						Actor:   rule.ID,
						Message: "SET_STATE ignored: unknown field " + action.Field,
					})
				}

			case ActionInvoke:
				report.Requests = append(report.Requests, Invocation{
					RuleID: rule.ID,
					Name:   action.Name,
					Target: action.Target,
				})
			}
		}
	}

	e.mu.Lock()
	e.flags = report.Flags.clone()
	e.mu.Unlock()

	return report
}

// triggered evaluates the AND of every trigger of the rule.
// A trigger whose value cannot be resolved fails the whole rule closed.
func triggered(rule Rule, s *state.SystemState) bool {
	for _, t := range rule.Triggers {
		if t.Kind == TriggerCurrency {
			// Inert placeholder, handled by currency-specific logic in the
			// action layer. Must not abort evaluation.
			continue
		}

		actual, ok := resolve(t.Kind, t.Path, s)
		if !ok {
			return false
		}
		if !compare(actual, t.Op, t.Value) {
			return false
		}
	}
	return true
}

// resolve interprets a dotted path against the selected sub-state. This is a
// bounded interpreter over the fixed set of auditable paths, not reflection.
func resolve(kind TriggerKind, path string, s *state.SystemState) (float64, bool) {
	switch kind {
	case TriggerSupply:
		code := currency.Code(strings.ToUpper(path))
		v, ok := s.TotalSupply[code]
		return v, ok

	case TriggerRate:
		code := currency.Code(strings.ToUpper(path))
		v, ok := s.Rates[code]
		return v, ok

	case TriggerInfra:
		return resolveInfra(path, &s.Infrastructure)

	case TriggerState:
		switch path {
		case "halted":
			if s.Halted {
				return 1, true
			}
			return 0, true
		case "pressure.value":
			return s.Pressure.Value, true
		default:
			if rest, ok := strings.CutPrefix(path, "infrastructure."); ok {
				return resolveInfra(rest, &s.Infrastructure)
			}
			return 0, false
		}
	}
	return 0, false
}

func resolveInfra(path string, infra *state.Infrastructure) (float64, bool) {
	switch path {
	case "energy_supply.value":
		return infra.EnergySupply.Value, true
	case "net_stability.value":
		return infra.NetStability.Value, true
	}
	return 0, false
}

func compare(actual float64, op Operator, value float64) bool {
	switch op {
	case OpEq:
		return actual == value
	case OpGt:
		return actual > value
	case OpLt:
		return actual < value
	case OpGte:
		return actual >= value
	case OpLte:
		return actual <= value
	}
	return false
}

// applyState mutates a top-level state field. The set of writable fields is
// deliberately tiny; rules are not a general mutation mechanism.
func applyState(s *state.SystemState, field string, value float64) bool {
	switch field {
	case "halted":
		s.Halted = value != 0
		return true
	}
	return false
}
