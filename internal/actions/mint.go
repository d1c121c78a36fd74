package actions

import (
	"fmt"

	"github.com/MRamiBalles/LogosOmega/server/internal/domain/currency"
	"github.com/MRamiBalles/LogosOmega/server/internal/state"
)

// Mint creates new units of a currency on the target account, subject to the
// currency's mint-source policy and the live suppression flags.
func (r *Registry) Mint(targetID string, code currency.Code, amount float64) Result {
	const op = "MINT"
	if res, halted := r.haltGate(op); halted {
		return res
	}

	policy, known := currency.Lookup(code)
	if !known {
		return r.reject(op, fmt.Sprintf("unknown currency %q", code), AttemptCost)
	}
	if !validAmount(amount) {
		return r.reject(op, "mint amount must be a positive finite number", AttemptCost)
	}
	// Live policy flags from the most recent rule pass. Pressure-driven
	// ALPHA suppression and the BTC supply cap both land here.
	flags := r.flags.Flags()

	// Account lookup and credit happen inside a single store update, so the
	// target cannot vanish between the existence check and the mint.
	var failReason string
	failCost := AttemptCost
	r.store.Update(func(s *state.SystemState) {
		target := s.Account(targetID)
		switch {
		case target == nil:
			failReason = fmt.Sprintf("unknown target account %q", targetID)
		case flags.Suppressed(code):
			failReason = fmt.Sprintf("minting of %s is suppressed by the active rule set", code)
			failCost = SuppressedCost
			if code == currency.BTC {
				failCost = SuppressedBTCCost
			}
		case policy.MintSource != currency.MintAny &&
			policy.MintSource != currency.MintNetworkGenesis &&
			targetID != policy.MintSource:
			// Mint authority: unless the policy is open (ANY) or gated purely
			// by network rules (NETWORK_GENESIS), only the authority account
			// may receive newly created units.
			failReason = fmt.Sprintf("%s may only be minted by authority %s", code, policy.MintSource)
			failCost = UnauthorizedCost
		default:
			target.Credit(code, amount)
			s.RecomputeSupply()
		}
	})
	if failReason != "" {
		return r.reject(op, failReason, failCost)
	}

	cost := MintBaseCost * policy.Sensitivity * policy.TxCostMultiplier * flags.CostMultiplier
	detail := fmt.Sprintf("minted %.2f %s to %s", amount, code, targetID)
	return r.settle(op, detail, success(amount, cost))
}
