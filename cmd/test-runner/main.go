// Package main - test_runner.go
// Executable to run the in-process stress scenarios.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/MRamiBalles/LogosOmega/server/test"
)

func main() {
	fmt.Println("🜂 LOGOS AUDIT PROTOCOL - STRESS SCENARIO SUITE")
	fmt.Println("================================================")

	ctx := context.Background()

	fmt.Println("\n🧪 Running scenario: The Pressure Spiral...")
	spiralTest := test.NewPressureSpiralTest()
	spiralTest.RunTest(ctx)

	// Summary
	results := spiralTest.GetResults()
	passed := 0
	failed := 0

	for _, r := range results {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("📊 SCENARIO SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("   ✅ Passed: %d\n", passed)
	fmt.Printf("   ❌ Failed: %d\n", failed)

	if failed > 0 {
		fmt.Println("\n⚠️  The rule set needs recalibration")
		os.Exit(1)
	}
	fmt.Println("\n✅ The audit protocol held under pressure")
	os.Exit(0)
}
