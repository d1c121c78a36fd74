package actions

import (
	"fmt"

	"github.com/MRamiBalles/LogosOmega/server/internal/domain/currency"
	"github.com/MRamiBalles/LogosOmega/server/internal/state"
)

// Transfer moves amount of code from source to target. The debit and credit
// happen inside a single store update: a failed transfer leaves both
// balances untouched and no partial transfer is ever observable.
func (r *Registry) Transfer(sourceID, targetID string, code currency.Code, amount float64) Result {
	const op = "TRANSFER"
	if res, halted := r.haltGate(op); halted {
		return res
	}

	if _, known := currency.Lookup(code); !known {
		return r.reject(op, fmt.Sprintf("unknown currency %q", code), AttemptCost)
	}
	if !validAmount(amount) {
		return r.reject(op, "transfer amount must be a positive finite number", AttemptCost)
	}

	var failReason string
	r.store.Update(func(s *state.SystemState) {
		source := s.Account(sourceID)
		target := s.Account(targetID)
		switch {
		case source == nil:
			failReason = fmt.Sprintf("unknown source account %q", sourceID)
		case target == nil:
			failReason = fmt.Sprintf("unknown target account %q", targetID)
		case source.Balance(code) < amount:
			failReason = fmt.Sprintf("insufficient balance: %s holds %.2f %s, needs %.2f",
				sourceID, source.Balance(code), code, amount)
		default:
			source.Debit(code, amount)
			target.Credit(code, amount)
			s.RecomputeSupply()
		}
	})
	if failReason != "" {
		return r.reject(op, failReason, AttemptCost)
	}

	policy, _ := currency.Lookup(code)
	cost := TransferBaseCost * policy.TxCostMultiplier * r.flags.Flags().CostMultiplier
	detail := fmt.Sprintf("transferred %.2f %s from %s to %s", amount, code, sourceID, targetID)
	return r.settle(op, detail, success(amount, cost))
}
