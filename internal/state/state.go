// Package state holds the canonical in-memory snapshot of the audited
// economy and the single-writer store that owns it.
package state

import (
	"time"

	"github.com/MRamiBalles/LogosOmega/server/internal/domain/account"
	"github.com/MRamiBalles/LogosOmega/server/internal/domain/currency"
)

// PressureLimit is the upper bound of the system pressure metric.
const PressureLimit = 100.0

// Pressure is the bounded scalar proxy for system strain. Every economic and
// autonomous act increases it; time decays it.
type Pressure struct {
	Value     float64   `json:"value"`
	LastDecay time.Time `json:"last_decay"`
}

// Gauge is a bounded [0,100] infrastructure metric.
type Gauge struct {
	Value      float64   `json:"value"`
	LastChange time.Time `json:"last_change"`
}

// Infrastructure models the logical health of the physical substrate.
type Infrastructure struct {
	EnergySupply Gauge `json:"energy_supply"`
	NetStability Gauge `json:"net_stability"`
}

// SystemState is the singleton world snapshot. It is mutated only through
// the Store; everything handed out of the Store is a deep copy.
type SystemState struct {
	// Halted is a monotonic latch under the default rule set: once a rule
	// sets it, only an explicit external reset clears it.
	Halted bool `json:"halted"`

	Pressure Pressure `json:"pressure"`

	// Rates quotes each currency against ALPHA; ALPHA itself is fixed at 1.0.
	Rates map[currency.Code]float64 `json:"rates"`

	// TotalSupply is derived: recomputed each cycle as the per-currency sum
	// across all accounts.
	TotalSupply map[currency.Code]float64 `json:"total_supply"`

	Accounts []*account.Account `json:"accounts"`

	Infrastructure Infrastructure `json:"infrastructure"`
}

// Well-known account IDs seeded at genesis.
const (
	CoreBankID  = "CORE_BANK_A"
	AuditUserID = "USER_AUDIT_B"
)

// NewDefault returns the genesis state of the closed economy.
func NewDefault(now time.Time) *SystemState {
	coreBank := account.New(CoreBankID)
	coreBank.Balances[currency.ALPHA] = 1000.00
	coreBank.Balances[currency.BETA] = 500.00
	coreBank.Balances[currency.GAMMA] = 100.00
	coreBank.Balances[currency.USD] = 10000.00
	coreBank.Balances[currency.BTC] = 1.0
	coreBank.Balances[currency.MATIC] = 1000.0

	auditUser := account.New(AuditUserID)
	auditUser.Balances[currency.ALPHA] = 50.00

	s := &SystemState{
		Halted:   false,
		Pressure: Pressure{Value: 0, LastDecay: now},
		Rates: map[currency.Code]float64{
			currency.ALPHA: 1.0,
			currency.BETA:  10.0,
			currency.GAMMA: 100.0,
			currency.USD:   100.0,
			currency.BTC:   3000000.0,
			currency.MATIC: 150.0,
		},
		TotalSupply: map[currency.Code]float64{},
		Accounts:    []*account.Account{coreBank, auditUser},
		Infrastructure: Infrastructure{
			EnergySupply: Gauge{Value: 95.0, LastChange: now},
			NetStability: Gauge{Value: 80.0, LastChange: now},
		},
	}
	s.RecomputeSupply()
	return s
}

// Account returns the account with the given ID, or nil.
func (s *SystemState) Account(id string) *account.Account {
	for _, a := range s.Accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// RecomputeSupply rebuilds TotalSupply from the account balances.
func (s *SystemState) RecomputeSupply() {
	supply := make(map[currency.Code]float64, len(currency.Codes))
	for _, code := range currency.Codes {
		var sum float64
		for _, a := range s.Accounts {
			sum += a.Balances[code]
		}
		supply[code] = sum
	}
	s.TotalSupply = supply
}

// Clone returns a deep copy of the state.
func (s *SystemState) Clone() *SystemState {
	cp := &SystemState{
		Halted:         s.Halted,
		Pressure:       s.Pressure,
		Rates:          make(map[currency.Code]float64, len(s.Rates)),
		TotalSupply:    make(map[currency.Code]float64, len(s.TotalSupply)),
		Accounts:       make([]*account.Account, 0, len(s.Accounts)),
		Infrastructure: s.Infrastructure,
	}
	for code, v := range s.Rates {
		cp.Rates[code] = v
	}
	for code, v := range s.TotalSupply {
		cp.TotalSupply[code] = v
	}
	for _, a := range s.Accounts {
		cp.Accounts = append(cp.Accounts, a.Clone())
	}
	return cp
}
