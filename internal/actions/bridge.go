package actions

import (
	"fmt"

	"github.com/MRamiBalles/LogosOmega/server/internal/domain/currency"
	"github.com/MRamiBalles/LogosOmega/server/internal/state"
)

// BridgeOut burns ALPHA from the source account and mirrors the equivalent
// external value, converted through the current USD rate, as a debit against
// the bridge account's USD balance.
//
// This is the only operation permitted to drive a balance negative: the
// bridge account models exposure against a finite outside resource, and
// crossing below zero is reported as CRITICAL_SUCCESS rather than refused.
func (r *Registry) BridgeOut(sourceID string, amount float64) Result {
	const op = "BRIDGE_OUT"
	if res, halted := r.haltGate(op); halted {
		return res
	}

	if !validAmount(amount) {
		return r.reject(op, "bridge amount must be a positive finite number", AttemptCost)
	}

	var (
		failReason string
		external   float64
		exposed    bool
	)
	r.store.Update(func(s *state.SystemState) {
		source := s.Account(sourceID)
		bridge := s.Account(r.bridgeAccount)
		usdRate := s.Rates[currency.USD]
		switch {
		case source == nil:
			failReason = fmt.Sprintf("unknown source account %q", sourceID)
		case bridge == nil:
			failReason = fmt.Sprintf("bridge account %q is not provisioned", r.bridgeAccount)
		case usdRate <= 0:
			failReason = "no usable USD rate for conversion"
		case source.Balance(currency.ALPHA) < amount:
			failReason = fmt.Sprintf("insufficient balance: %s holds %.2f ALPHA, needs %.2f",
				sourceID, source.Balance(currency.ALPHA), amount)
		default:
			external = amount / usdRate
			source.Debit(currency.ALPHA, amount) // burned, not moved
			bridge.Debit(currency.USD, external)
			exposed = bridge.Balance(currency.USD) < 0
			s.RecomputeSupply()
		}
	})
	if failReason != "" {
		return r.reject(op, failReason, AttemptCost)
	}

	cost := BridgeOutBaseCost * r.flags.Flags().CostMultiplier
	res := success(external, cost)
	detail := fmt.Sprintf("burned %.2f ALPHA from %s, mirrored %.4f USD against bridge %s",
		amount, sourceID, external, r.bridgeAccount)
	if exposed {
		res.Status = StatusCritical
		detail += " (bridge exposure is now negative)"
	}
	return r.settle(op, detail, res)
}
