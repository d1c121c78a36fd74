package account

import (
	"testing"

	"github.com/MRamiBalles/LogosOmega/server/internal/domain/currency"
)

func TestNewSeedsEveryCurrency(t *testing.T) {
	a := New("TEST")
	if len(a.Balances) != len(currency.Codes) {
		t.Fatalf("new account has %d balances, want %d", len(a.Balances), len(currency.Codes))
	}
	for _, code := range currency.Codes {
		if a.Balance(code) != 0 {
			t.Errorf("%s balance = %.2f, want 0", code, a.Balance(code))
		}
	}
}

func TestCreditDebit(t *testing.T) {
	a := New("TEST")
	a.Credit(currency.BETA, 25)
	a.Debit(currency.BETA, 10)
	if got := a.Balance(currency.BETA); got != 15 {
		t.Errorf("balance = %.2f, want 15", got)
	}
	// Debit does not validate; the bridge account relies on this
	a.Debit(currency.USD, 5)
	if got := a.Balance(currency.USD); got != -5 {
		t.Errorf("balance = %.2f, want -5", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := New("TEST")
	a.Credit(currency.ALPHA, 100)

	cp := a.Clone()
	cp.Credit(currency.ALPHA, 900)

	if a.Balance(currency.ALPHA) != 100 {
		t.Error("mutating a clone changed the original")
	}
}
