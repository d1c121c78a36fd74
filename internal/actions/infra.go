package actions

import (
	"fmt"

	"github.com/MRamiBalles/LogosOmega/server/internal/state"
)

// InfraKind selects which infrastructure gauge an adjustment targets.
type InfraKind string

const (
	InfraEnergy InfraKind = "ENERGY"
	InfraNet    InfraKind = "NET"
)

// AdjustInfrastructure sets the logical supply level of an infrastructure
// gauge to an explicit value in [0,100].
func (r *Registry) AdjustInfrastructure(kind InfraKind, level float64) Result {
	const op = "INFRA_ADJUST"
	if res, halted := r.haltGate(op); halted {
		return res
	}

	if kind != InfraEnergy && kind != InfraNet {
		return r.reject(op, fmt.Sprintf("unknown infrastructure kind %q", kind), AttemptCost)
	}
	if level < 0 || level > 100 || level != level { // NaN check
		return r.reject(op, "supply level must be within 0-100", AttemptCost)
	}

	now := r.now()
	r.store.Update(func(s *state.SystemState) {
		gauge := state.Gauge{Value: level, LastChange: now}
		if kind == InfraEnergy {
			s.Infrastructure.EnergySupply = gauge
		} else {
			s.Infrastructure.NetStability = gauge
		}
	})

	cost := InfraAdjustCost * r.flags.Flags().CostMultiplier
	detail := fmt.Sprintf("%s supply level adjusted to %.1f%%", kind, level)
	return r.settle(op, detail, success(level, cost))
}
