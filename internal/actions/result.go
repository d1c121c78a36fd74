// Package actions implements the registry of validated economic operations
// (mint, transfer, bridge-out, infrastructure adjustment) that mutate the
// ledger and accrue pressure cost, gated by the rule engine's policy flags.
package actions

// Status is the outcome class of an operation.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFail    Status = "FAIL"
	// StatusCritical marks a success with a consequence worth flagging,
	// such as a bridge-out that opened negative external exposure.
	StatusCritical Status = "CRITICAL_SUCCESS"
)

// Uniform rejection reason while the halt latch is set.
const ReasonHalted = "system is halted; all economic acts are refused"

// Result is the structured outcome of an operation. Expected validation
// failures are FAIL results with a reason, never errors or panics: every
// call returns a determinate result.
type Result struct {
	Status Status  `json:"status"`
	Reason string  `json:"reason,omitempty"`
	Amount float64 `json:"amount,omitempty"` // affected amount on success
	Cost   float64 `json:"cost"`             // pressure cost actually charged
}

func fail(reason string, cost float64) Result {
	return Result{Status: StatusFail, Reason: reason, Cost: cost}
}

func success(amount, cost float64) Result {
	return Result{Status: StatusSuccess, Amount: amount, Cost: cost}
}
