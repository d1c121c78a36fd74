package rates

import (
	"math"
	"testing"

	"github.com/MRamiBalles/LogosOmega/server/internal/domain/currency"
)

func TestComputeBaselineEqualsBaseRates(t *testing.T) {
	supply := map[currency.Code]float64{}

	out := Compute(0, 100, supply, nil)

	for _, code := range currency.Codes {
		if out[code] != currency.BaseRate[code] {
			t.Errorf("expected %s at its base rate %.4f, got %.4f", code, currency.BaseRate[code], out[code])
		}
	}
}

func TestComputeAlphaIsAlwaysOne(t *testing.T) {
	supply := map[currency.Code]float64{currency.ALPHA: 999999}

	out := Compute(100, 100, supply, func() float64 { return 0.99 })

	if out[currency.ALPHA] != 1.0 {
		t.Errorf("ALPHA must stay pinned at 1.0, got %.4f", out[currency.ALPHA])
	}
}

func TestComputePressureScalesWithSensitivity(t *testing.T) {
	supply := map[currency.Code]float64{}

	out := Compute(50, 100, supply, nil)

	// level 0.5, BETA sensitivity 0.5: 10 * (1 + 0.5*0.02*0.5) = 10.05
	if out[currency.BETA] != 10.05 {
		t.Errorf("expected BETA at 10.05, got %.4f", out[currency.BETA])
	}
	// GAMMA sensitivity 2.0: 100 * (1 + 0.5*0.02*2.0) = 102
	if out[currency.GAMMA] != 102.0 {
		t.Errorf("expected GAMMA at 102.0, got %.4f", out[currency.GAMMA])
	}
	// USD sensitivity 0.1 barely moves: 100 * (1 + 0.5*0.02*0.1) = 100.1
	if out[currency.USD] != 100.1 {
		t.Errorf("expected USD at 100.1, got %.4f", out[currency.USD])
	}
}

func TestComputeOversupplyDiscountsRate(t *testing.T) {
	supply := map[currency.Code]float64{currency.BETA: 6000}

	out := Compute(0, 100, supply, nil)

	// (6000-1000)/5000 = 1.0 over pivot, discount 10%: 10 * 0.9 = 9.0
	if out[currency.BETA] != 9.0 {
		t.Errorf("expected oversupplied BETA at 9.0, got %.4f", out[currency.BETA])
	}
}

func TestComputeFloorsAtMinRate(t *testing.T) {
	supply := map[currency.Code]float64{currency.BETA: 1000000}

	out := Compute(0, 100, supply, nil)

	if out[currency.BETA] != MinRate {
		t.Errorf("expected BETA floored at %.2f, got %.4f", MinRate, out[currency.BETA])
	}
}

func TestComputePinnedPerturbation(t *testing.T) {
	supply := map[currency.Code]float64{}

	out := Compute(100, 100, supply, func() float64 { return 1.0 })

	// level 1.0, BETA: 10 * (1 + 0.02*0.5) * (1 + 0.5*0.01*0.5) = 10.12525
	if out[currency.BETA] != 10.1253 {
		t.Errorf("expected perturbed BETA at 10.1253, got %.4f", out[currency.BETA])
	}
}

func TestComputeRoundsToFourDecimals(t *testing.T) {
	supply := map[currency.Code]float64{}

	out := Compute(33, 100, supply, nil)

	for _, code := range currency.Codes {
		scaled := out[code] * 10000
		if math.Abs(scaled-math.Round(scaled)) > 1e-6 {
			t.Errorf("%s rate %.10f is not rounded to 4 decimals", code, out[code])
		}
	}
}
