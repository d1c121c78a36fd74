// Package account defines the ledger account entity.
// This package is PURE and must NOT import any infrastructure packages.
package account

import "github.com/MRamiBalles/LogosOmega/server/internal/domain/currency"

// Account holds per-currency balances for one participant of the economy.
// Balances are non-negative by policy; the single sanctioned exception is the
// bridge account's external-value balance, which bridge-out acts may drive
// negative to model exposure against a finite outside resource.
type Account struct {
	ID       string                    `json:"id"`
	Balances map[currency.Code]float64 `json:"balances"`
}

// New creates an account with zeroed balances for every audited currency.
func New(id string) *Account {
	balances := make(map[currency.Code]float64, len(currency.Codes))
	for _, code := range currency.Codes {
		balances[code] = 0
	}
	return &Account{ID: id, Balances: balances}
}

// Balance returns the balance for a currency, zero when untouched.
func (a *Account) Balance(code currency.Code) float64 {
	return a.Balances[code]
}

// Credit adds amount to the balance of code.
func (a *Account) Credit(code currency.Code, amount float64) {
	if a.Balances == nil {
		a.Balances = make(map[currency.Code]float64)
	}
	a.Balances[code] += amount
}

// Debit subtracts amount from the balance of code. Callers validate
// sufficiency first; bridge-out deliberately does not.
func (a *Account) Debit(code currency.Code, amount float64) {
	if a.Balances == nil {
		a.Balances = make(map[currency.Code]float64)
	}
	a.Balances[code] -= amount
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	balances := make(map[currency.Code]float64, len(a.Balances))
	for code, v := range a.Balances {
		balances[code] = v
	}
	return &Account{ID: a.ID, Balances: balances}
}
