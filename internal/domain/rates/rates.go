// Package rates contains the pure rate calculation logic of the economy.
// This package is PURE and must NOT import any infrastructure packages.
package rates

import (
	"math"

	"github.com/MRamiBalles/LogosOmega/server/internal/domain/currency"
)

// Calibration of the rate function. PressureGain and PerturbationGain are
// scaled by each currency's sensitivity before they apply.
const (
	PressureGain     = 0.02
	SupplyPivot      = 1000.0
	SupplySpread     = 5000.0
	SupplyGain       = 0.1
	PerturbationGain = 0.01
	MinRate          = 0.01
)

// Compute derives the exchange rate of every non-base currency from the
// current pressure level (pressure out of limit) and total supply. ALPHA is
// fixed at 1.0.
//
// rand01 yields a pseudo-random value in [0,1) and exists so tests can pin
// the perturbation term; pass nil for a flat zero perturbation.
func Compute(pressure, limit float64, supply map[currency.Code]float64, rand01 func() float64) map[currency.Code]float64 {
	out := map[currency.Code]float64{currency.ALPHA: 1.0}
	level := pressure / limit

	for _, code := range currency.Codes {
		if code == currency.ALPHA {
			continue
		}
		base := currency.BaseRate[code]
		sensitivity := currency.Sensitivity(code)

		pressureFactor := 1 + level*PressureGain*sensitivity
		supplyFactor := 1 - math.Max(0, (supply[code]-SupplyPivot)/SupplySpread)*SupplyGain

		perturbation := 0.0
		if rand01 != nil {
			perturbation = (rand01() - 0.5) * level * PerturbationGain * sensitivity
		}

		rate := base * pressureFactor * supplyFactor * (1 + perturbation)
		out[code] = round4(math.Max(MinRate, rate))
	}
	return out
}

// round4 rounds to the fixed display precision so rates survive storage and
// re-broadcast without drift.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
