// Package network - api.go
// APIBridge - REST surface for economic operations and rule administration.
//
// Every economic act flows through the same operation registry as the
// WebSocket clients, so costs and the halt latch apply uniformly.
package network

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/MRamiBalles/LogosOmega/server/internal/actions"
	"github.com/MRamiBalles/LogosOmega/server/internal/audit"
	"github.com/MRamiBalles/LogosOmega/server/internal/domain/currency"
	"github.com/MRamiBalles/LogosOmega/server/internal/events"
	"github.com/MRamiBalles/LogosOmega/server/internal/infra/storage"
	"github.com/MRamiBalles/LogosOmega/server/internal/platform/logger"
	"github.com/MRamiBalles/LogosOmega/server/internal/state"
)

// APIBridge handles REST interactions with the audit server.
type APIBridge struct {
	store         *state.Store
	registry      *actions.Registry
	auditEngine   *audit.Engine
	ruleRepo      storage.RuleConfigSource
	journal       *events.Journal
	reconstructor *storage.Reconstructor
	logger        *logger.Logger
}

// NewAPIBridge creates the REST handler set.
func NewAPIBridge(store *state.Store, registry *actions.Registry, auditEngine *audit.Engine, ruleRepo storage.RuleConfigSource, journal *events.Journal, reconstructor *storage.Reconstructor, log *logger.Logger) *APIBridge {
	return &APIBridge{
		store:         store,
		registry:      registry,
		auditEngine:   auditEngine,
		ruleRepo:      ruleRepo,
		journal:       journal,
		reconstructor: reconstructor,
		logger:        log,
	}
}

// MintRequest is the payload for minting currency into an account.
type MintRequest struct {
	Account  string  `json:"account"`
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// TransferRequest is the payload for moving value between accounts.
type TransferRequest struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// BridgeOutRequest is the payload for burning ALPHA against external value.
type BridgeOutRequest struct {
	Account string  `json:"account"`
	Amount  float64 `json:"amount"`
}

// InfraRequest is the payload for an infrastructure supply adjustment.
type InfraRequest struct {
	Kind  string  `json:"kind"` // "ENERGY" or "NET"
	Level float64 `json:"level"`
}

// ResetRequest identifies the operator clearing the halt latch.
type ResetRequest struct {
	Operator string `json:"operator"`
}

// HandleMint is the endpoint for minting operations.
// POST /api/mint
func (ab *APIBridge) HandleMint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req MintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ab.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Account == "" {
		ab.jsonError(w, "Missing account", http.StatusBadRequest)
		return
	}

	result := ab.registry.Mint(req.Account, currency.Code(req.Currency), req.Amount)
	ab.jsonResult(w, result)
}

// HandleTransfer is the endpoint for transfer operations.
// POST /api/transfer
func (ab *APIBridge) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ab.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Source == "" || req.Target == "" {
		ab.jsonError(w, "Missing source or target account", http.StatusBadRequest)
		return
	}

	result := ab.registry.Transfer(req.Source, req.Target, currency.Code(req.Currency), req.Amount)
	ab.jsonResult(w, result)
}

// HandleBridgeOut is the endpoint for bridge-out operations.
// POST /api/bridge-out
func (ab *APIBridge) HandleBridgeOut(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BridgeOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ab.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Account == "" {
		ab.jsonError(w, "Missing account", http.StatusBadRequest)
		return
	}

	result := ab.registry.BridgeOut(req.Account, req.Amount)
	ab.jsonResult(w, result)
}

// HandleInfrastructure is the endpoint for supply adjustments.
// POST /api/infrastructure
func (ab *APIBridge) HandleInfrastructure(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req InfraRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ab.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result := ab.registry.AdjustInfrastructure(actions.InfraKind(req.Kind), req.Level)
	ab.jsonResult(w, result)
}

// HandleReset clears the halt latch. This is the only path back to a running
// system once a rule halts it.
// POST /api/reset
func (ab *APIBridge) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ab.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Operator == "" {
		ab.jsonError(w, "Missing operator", http.StatusBadRequest)
		return
	}

	result := ab.registry.ResetHalt(req.Operator)
	ab.jsonResult(w, result)
}

// HandleStatus returns the full system snapshot.
// GET /api/status
func (ab *APIBridge) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ab.jsonSuccess(w, ab.store.Snapshot())
}

// HandleRates returns the current exchange rate table.
// GET /api/rates
func (ab *APIBridge) HandleRates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snap := ab.store.Snapshot()
	ab.jsonSuccess(w, map[string]interface{}{
		"rates":     snap.Rates,
		"pressure":  snap.Pressure.Value,
		"timestamp": time.Now().Unix(),
	})
}

// HandleRules serves and replaces the active rule set.
// GET /api/rules, PUT /api/rules
func (ab *APIBridge) HandleRules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ab.jsonSuccess(w, map[string]interface{}{"rules": ab.auditEngine.Rules()})
	case http.MethodPut:
		var rules []audit.Rule
		if err := json.NewDecoder(r.Body).Decode(&rules); err != nil {
			ab.jsonError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := audit.Validate(rules); err != nil {
			ab.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := ab.ruleRepo.ReplaceRules(r.Context(), rules); err != nil {
			ab.jsonError(w, "Failed to persist rule set", http.StatusInternalServerError)
			return
		}
		// The swap takes effect with the next evaluation pass.
		ab.auditEngine.SwapRules(rules)
		ab.journal.Append(events.Entry{
			Kind:    events.KindRuleSwap,
			Level:   events.LevelSystem,
			Actor:   "API",
			Message: "active rule set replaced",
			Payload: map[string]interface{}{"rule_count": len(rules)},
		})
		ab.logger.Act("RULE_SWAP", "API", "active rule set replaced")
		ab.jsonSuccess(w, map[string]interface{}{"success": true, "rule_count": len(rules)})
	default:
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleTallies returns per-actor tallies rebuilt from the persisted journal.
// GET /api/audit/tallies
func (ab *APIBridge) HandleTallies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	tallies, err := ab.reconstructor.RebuildTallies(r.Context())
	if err != nil {
		ab.jsonError(w, "Failed to rebuild tallies", http.StatusInternalServerError)
		return
	}
	ab.jsonSuccess(w, map[string]interface{}{
		"tallies":      tallies,
		"generated_at": time.Now().Unix(),
	})
}

// RegisterRoutes sets up the economic API routes.
func (ab *APIBridge) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/mint", ab.HandleMint)
	mux.HandleFunc("/api/transfer", ab.HandleTransfer)
	mux.HandleFunc("/api/bridge-out", ab.HandleBridgeOut)
	mux.HandleFunc("/api/infrastructure", ab.HandleInfrastructure)
	mux.HandleFunc("/api/reset", ab.HandleReset)
	mux.HandleFunc("/api/status", ab.HandleStatus)
	mux.HandleFunc("/api/rates", ab.HandleRates)
	mux.HandleFunc("/api/rules", ab.HandleRules)
	mux.HandleFunc("/api/audit/tallies", ab.HandleTallies)
}

// jsonResult sends an operation result. Failed operations still return 200;
// the audit status travels in the body because a rejection is a valid,
// charged outcome rather than a transport error.
func (ab *APIBridge) jsonResult(w http.ResponseWriter, result actions.Result) {
	ab.jsonSuccess(w, result)
}

// jsonError sends an error response.
func (ab *APIBridge) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// jsonSuccess sends a success response.
func (ab *APIBridge) jsonSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(data)
}
