// Package currency defines the static policy knowledge base for the synthetic
// currencies audited by the protocol.
// This package is PURE and must NOT import any infrastructure packages.
package currency

// Code identifies a currency inside the closed economy.
type Code string

const (
	ALPHA Code = "ALPHA" // Base currency, all rates are quoted against it
	BETA  Code = "BETA"  // Stabilization currency
	GAMMA Code = "GAMMA" // Experimental currency, high sensitivity
	USD   Code = "USD"   // Fiat logic, near-insensitive to pressure
	BTC   Code = "BTC"   // Supply-capped crypto logic
	MATIC Code = "MATIC" // Smart-contract logic with a gas-style surcharge
)

// Kind classifies the policy archetype a currency imitates.
type Kind string

const (
	KindBase          Kind = "LOGOS_BASE"
	KindStable        Kind = "LOGOS_STABLE"
	KindTest          Kind = "LOGOS_TEST"
	KindFiat          Kind = "FIAT"
	KindCryptoLimited Kind = "CRYPTO_LIMITED"
	KindCryptoSmart   Kind = "CRYPTO_SMART_CONTRACT"
)

// Mint sources. MintAny places no restriction; MintNetworkGenesis bypasses
// the authority check entirely (minting is gated by supply rules instead).
const (
	MintAny            = "ANY"
	MintNetworkGenesis = "NETWORK_GENESIS"
)

// Policy describes the minting and rate behaviour of one currency.
type Policy struct {
	Code        Code
	Title       string
	Kind        Kind
	MintSource  string   // account ID, MintAny or MintNetworkGenesis
	Sensitivity float64  // how strongly pressure moves this currency's rate
	MaxSupply   *float64 // nil means logically unlimited
	// Extra cost factor on operations in this currency (gas-style).
	// 1.0 for currencies without a surcharge.
	TxCostMultiplier float64
}

// BaseRate is the reference rate of each currency against ALPHA.
var BaseRate = map[Code]float64{
	ALPHA: 1.0,
	BETA:  10.0,
	GAMMA: 100.0,
	USD:   100.0,
	BTC:   3000000.0,
	MATIC: 150.0,
}

func f(v float64) *float64 { return &v }

// Registry contains all audited currencies and their policies.
var Registry = map[Code]Policy{
	ALPHA: {
		Code:             ALPHA,
		Title:            "Base Currency",
		Kind:             KindBase,
		MintSource:       "CORE_BANK_A",
		Sensitivity:      1.0,
		TxCostMultiplier: 1.0,
	},
	BETA: {
		Code:             BETA,
		Title:            "Stabilization Currency",
		Kind:             KindStable,
		MintSource:       "CORE_BANK_A",
		Sensitivity:      0.5,
		TxCostMultiplier: 1.0,
	},
	GAMMA: {
		Code:             GAMMA,
		Title:            "Experimental Currency",
		Kind:             KindTest,
		MintSource:       MintAny,
		Sensitivity:      2.0,
		TxCostMultiplier: 1.0,
	},
	USD: {
		Code:             USD,
		Title:            "US Dollar (internalized)",
		Kind:             KindFiat,
		MintSource:       "CORE_BANK_A",
		Sensitivity:      0.1,
		MaxSupply:        nil, // logically unlimited
		TxCostMultiplier: 1.0,
	},
	BTC: {
		Code:             BTC,
		Title:            "Bitcoin (internalized)",
		Kind:             KindCryptoLimited,
		MintSource:       MintNetworkGenesis,
		Sensitivity:      1.5,
		MaxSupply:        f(21000000.00),
		TxCostMultiplier: 1.0,
	},
	MATIC: {
		Code:             MATIC,
		Title:            "Polygon (internalized)",
		Kind:             KindCryptoSmart,
		MintSource:       "CORE_BANK_A",
		Sensitivity:      0.8,
		TxCostMultiplier: 1.5, // imitates external gas cost
	},
}

// Codes lists every audited currency in a stable order.
var Codes = []Code{ALPHA, BETA, GAMMA, USD, BTC, MATIC}

// Lookup returns the policy for a currency code.
func Lookup(code Code) (Policy, bool) {
	p, ok := Registry[code]
	return p, ok
}

// Sensitivity returns the pressure sensitivity for a code, defaulting to 1.0
// for unknown currencies so rate math never divides into surprises.
func Sensitivity(code Code) float64 {
	if p, ok := Registry[code]; ok {
		return p.Sensitivity
	}
	return 1.0
}
