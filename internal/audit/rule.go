// Package audit implements the declarative rule engine that continuously
// inspects the economy and triggers flags, warnings, forced halts and
// autonomous follow-on acts.
package audit

import (
	"fmt"

	"github.com/MRamiBalles/LogosOmega/server/internal/events"
)

// TriggerKind selects which sub-state a trigger's path resolves against.
type TriggerKind string

const (
	TriggerState  TriggerKind = "STATE"  // whole system state
	TriggerInfra  TriggerKind = "INFRA"  // infrastructure gauges
	TriggerSupply TriggerKind = "SUPPLY" // total supply by currency code
	TriggerRate   TriggerKind = "RATE"   // exchange rate by currency code
	// CURRENCY triggers are inert placeholders resolved by currency-specific
	// logic in the action layer, never by the engine itself.
	TriggerCurrency TriggerKind = "CURRENCY"
)

// Operator is a comparison between a resolved state value and a constant.
type Operator string

const (
	OpEq  Operator = "=="
	OpGt  Operator = ">"
	OpLt  Operator = "<"
	OpGte Operator = ">="
	OpLte Operator = "<="
)

// Trigger is a single condition. All triggers of a rule are AND-combined.
type Trigger struct {
	Kind  TriggerKind `json:"kind" yaml:"kind"`
	Path  string      `json:"path" yaml:"path"`
	Op    Operator    `json:"op" yaml:"op"`
	Value float64     `json:"value" yaml:"value"`
}

// ActionType enumerates the closed set of rule action variants.
type ActionType string

const (
	ActionLog      ActionType = "LOG"
	ActionSetFlag  ActionType = "SET_FLAG"
	ActionSetState ActionType = "SET_STATE"
	ActionInvoke   ActionType = "INVOKE_AUTONOMOUS"
)

// Action is one effect of a fired rule. The Type discriminates which of the
// remaining fields are meaningful.
type Action struct {
	Type ActionType `json:"type" yaml:"type"`

	// LOG
	Message string       `json:"message,omitempty" yaml:"message,omitempty"`
	Level   events.Level `json:"level,omitempty" yaml:"level,omitempty"`

	// SET_FLAG
	Flag string `json:"flag,omitempty" yaml:"flag,omitempty"`

	// SET_STATE
	Field string `json:"field,omitempty" yaml:"field,omitempty"`

	// SET_FLAG / SET_STATE share a numeric value; booleans are encoded as
	// 0/1 so rules stay representable in plain JSON and YAML.
	Value float64 `json:"value,omitempty" yaml:"value,omitempty"`

	// INVOKE_AUTONOMOUS
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
}

// Rule is one declarative trigger/action pair, evaluated every cycle.
// Rules are immutable once loaded; the active set is swapped wholesale.
type Rule struct {
	ID          string    `json:"id" yaml:"id"`
	Description string    `json:"description" yaml:"description"`
	Triggers    []Trigger `json:"triggers" yaml:"triggers"`
	Actions     []Action  `json:"actions" yaml:"actions"`
	// PressureCost accrues to the pressure metric when the rule fires.
	PressureCost float64 `json:"pressure_cost" yaml:"pressure_cost"`
}

// Validate checks a rule set for structural soundness before it goes live:
// unique IDs, known trigger kinds and operators, known action variants.
func Validate(rules []Rule) error {
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if r.ID == "" {
			return fmt.Errorf("rule without id")
		}
		if seen[r.ID] {
			return fmt.Errorf("rule %s: duplicate id", r.ID)
		}
		seen[r.ID] = true

		for i, t := range r.Triggers {
			switch t.Kind {
			case TriggerState, TriggerInfra, TriggerSupply, TriggerRate, TriggerCurrency:
			default:
				return fmt.Errorf("rule %s: trigger %d: unknown kind %q", r.ID, i, t.Kind)
			}
			switch t.Op {
			case OpEq, OpGt, OpLt, OpGte, OpLte:
			default:
				return fmt.Errorf("rule %s: trigger %d: unknown operator %q", r.ID, i, t.Op)
			}
			if t.Path == "" && t.Kind != TriggerCurrency {
				return fmt.Errorf("rule %s: trigger %d: empty path", r.ID, i)
			}
		}

		for i, a := range r.Actions {
			switch a.Type {
			case ActionLog:
				if a.Message == "" {
					return fmt.Errorf("rule %s: action %d: LOG without message", r.ID, i)
				}
			case ActionSetFlag:
				if a.Flag == "" {
					return fmt.Errorf("rule %s: action %d: SET_FLAG without flag", r.ID, i)
				}
			case ActionSetState:
				if a.Field == "" {
					return fmt.Errorf("rule %s: action %d: SET_STATE without field", r.ID, i)
				}
			case ActionInvoke:
				if a.Name == "" {
					return fmt.Errorf("rule %s: action %d: INVOKE_AUTONOMOUS without name", r.ID, i)
				}
			default:
				return fmt.Errorf("rule %s: action %d: unknown type %q", r.ID, i, a.Type)
			}
		}
	}
	return nil
}
