package audit

import "github.com/MRamiBalles/LogosOmega/server/internal/domain/currency"

// Flag names settable by SET_FLAG actions. Suppression flags carry 0/1
// values; the multiplier carries the factor itself.
const (
	FlagSuppressMintAlpha = "SUPPRESS_MINT_ALPHA"
	FlagSuppressMintBTC   = "SUPPRESS_MINT_BTC"
	FlagSuppressMintGamma = "SUPPRESS_MINT_GAMMA"
	FlagCostMultiplier    = "ENERGY_COST_MULTIPLIER"
)

// FlagSet is the transient per-cycle policy switchboard. It is rebuilt from
// defaults at the start of every rule pass and consumed by the action layer
// until the next pass replaces it. Never persisted.
type FlagSet struct {
	SuppressMint   map[currency.Code]bool
	CostMultiplier float64
}

// DefaultFlags returns the un-suppressed baseline.
func DefaultFlags() FlagSet {
	return FlagSet{
		SuppressMint:   make(map[currency.Code]bool),
		CostMultiplier: 1.0,
	}
}

// Suppressed reports whether minting of code is currently suppressed.
func (f FlagSet) Suppressed(code currency.Code) bool {
	return f.SuppressMint[code]
}

// clone returns an independent copy so published flag sets cannot be
// mutated by later passes.
func (f FlagSet) clone() FlagSet {
	cp := FlagSet{
		SuppressMint:   make(map[currency.Code]bool, len(f.SuppressMint)),
		CostMultiplier: f.CostMultiplier,
	}
	for code, v := range f.SuppressMint {
		cp.SuppressMint[code] = v
	}
	return cp
}

// apply folds one SET_FLAG action into the set. Unknown flag names are
// reported back so the engine can journal them instead of dropping silently.
func (f *FlagSet) apply(name string, value float64) bool {
	switch name {
	case FlagSuppressMintAlpha:
		f.SuppressMint[currency.ALPHA] = value != 0
	case FlagSuppressMintBTC:
		f.SuppressMint[currency.BTC] = value != 0
	case FlagSuppressMintGamma:
		f.SuppressMint[currency.GAMMA] = value != 0
	case FlagCostMultiplier:
		f.CostMultiplier = value
	default:
		return false
	}
	return true
}
