package audit

import "github.com/MRamiBalles/LogosOmega/server/internal/events"

// Names of the built-in autonomous acts reachable from INVOKE_AUTONOMOUS.
const (
	ActArbitrage    = "zact_arbitrage"
	ActCredit       = "zact_credit"
	ActNetStabilize = "zact_net_stabilize"
)

// DefaultRules is the built-in audit rule set. It is seeded into the rule
// config source on first boot and can be replaced wholesale at runtime.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:          "LIL_001",
			Description: "Warn when pressure reaches the danger band (50%).",
			Triggers: []Trigger{
				{Kind: TriggerState, Path: "pressure.value", Op: OpGt, Value: 50.0},
			},
			Actions: []Action{
				{Type: ActionLog, Message: "LIL_001: dangerous pressure level, system stability degrading", Level: events.LevelWarning},
			},
			PressureCost: 0.1,
		},
		{
			ID:          "LIL_002",
			Description: "Suppress ALPHA minting while pressure exceeds 70%.",
			Triggers: []Trigger{
				{Kind: TriggerState, Path: "pressure.value", Op: OpGt, Value: 70.0},
			},
			Actions: []Action{
				{Type: ActionLog, Message: "LIL_002: pressure high, suppressing ALPHA mint acts", Level: events.LevelError},
				{Type: ActionSetFlag, Flag: FlagSuppressMintAlpha, Value: 1},
			},
			PressureCost: 0.5,
		},
		{
			ID:          "LIL_003",
			Description: "Fire the arbitrage act when the BETA rate diverges above 11.0.",
			Triggers: []Trigger{
				{Kind: TriggerRate, Path: "BETA", Op: OpGt, Value: 11.0},
			},
			Actions: []Action{
				{Type: ActionLog, Message: "LIL_003: BETA rate divergence, arbitrage opportunity detected", Level: events.LevelAudit},
				{Type: ActionInvoke, Name: ActArbitrage, Target: "BETA"},
			},
			PressureCost: 0.3,
		},
		{
			ID:          "LIL_004",
			Description: "Warn when total ALPHA supply exceeds 2000.",
			Triggers: []Trigger{
				{Kind: TriggerSupply, Path: "ALPHA", Op: OpGt, Value: 2000.00},
			},
			Actions: []Action{
				{Type: ActionLog, Message: "LIL_004: ALPHA supply excessive, inflationary drift detected", Level: events.LevelWarning},
			},
			PressureCost: 0.1,
		},
		{
			ID:          "LIL_005",
			Description: "Suppress BTC minting beyond the 21,000,000 supply cap.",
			Triggers: []Trigger{
				{Kind: TriggerCurrency, Path: "CODE", Op: OpEq, Value: 0}, // resolved by mint's own currency logic
				{Kind: TriggerSupply, Path: "BTC", Op: OpGt, Value: 21000000.00},
			},
			Actions: []Action{
				{Type: ActionLog, Message: "LIL_005: BTC maximum supply exceeded, suppressing mint acts", Level: events.LevelCritical},
				{Type: ActionSetFlag, Flag: FlagSuppressMintBTC, Value: 1},
			},
			PressureCost: 0.8,
		},
		{
			ID:          "LIL_006",
			Description: "Multiply act costs while energy supply is below 20%.",
			Triggers: []Trigger{
				{Kind: TriggerInfra, Path: "energy_supply.value", Op: OpLt, Value: 20.0},
			},
			Actions: []Action{
				{Type: ActionLog, Message: "LIL_006: energy shortage, applying cost penalty to all economic acts", Level: events.LevelCritical},
				{Type: ActionSetFlag, Flag: FlagCostMultiplier, Value: 5.0},
			},
			PressureCost: 0.2,
		},
		{
			ID:          "LIL_007",
			Description: "Force a system halt when both infrastructure gauges collapse below 5%.",
			Triggers: []Trigger{
				{Kind: TriggerInfra, Path: "energy_supply.value", Op: OpLt, Value: 5.0},
				{Kind: TriggerInfra, Path: "net_stability.value", Op: OpLt, Value: 5.0},
			},
			Actions: []Action{
				{Type: ActionLog, Message: "LIL_007: infrastructure collapse, forcing system HALT", Level: events.LevelCritical},
				{Type: ActionSetState, Field: "halted", Value: 1},
			},
			PressureCost: 5.0,
		},
		{
			ID:          "LIL_008",
			Description: "Extend credit automatically while the system is highly stable.",
			Triggers: []Trigger{
				{Kind: TriggerState, Path: "pressure.value", Op: OpLt, Value: 10.0},
			},
			Actions: []Action{
				{Type: ActionLog, Message: "LIL_008: high stability, credit extension opportunity", Level: events.LevelInternal},
				{Type: ActionInvoke, Name: ActCredit, Target: "USER_AUDIT_B"},
			},
			PressureCost: 2.0,
		},
		{
			ID:          "LIL_009",
			Description: "Stabilize the network automatically when stability drops below 50%.",
			Triggers: []Trigger{
				{Kind: TriggerInfra, Path: "net_stability.value", Op: OpLt, Value: 50.0},
			},
			Actions: []Action{
				{Type: ActionLog, Message: "LIL_009: network unstable, firing automatic stabilization act", Level: events.LevelSystem},
				{Type: ActionInvoke, Name: ActNetStabilize, Target: "CORE_BANK_A"},
			},
			PressureCost: 1.0,
		},
	}
}
