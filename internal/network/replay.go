// Package network - replay.go
// Journal replay endpoint - JSON export of the audit history.
//
// Moderation and compliance tooling replays the immutable journal instead
// of trusting any client-side view of what happened.
package network

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/MRamiBalles/LogosOmega/server/internal/events"
	"github.com/MRamiBalles/LogosOmega/server/internal/infra/storage"
	"github.com/MRamiBalles/LogosOmega/server/internal/platform/logger"
)

// ReplayHandler provides the journal replay API.
type ReplayHandler struct {
	journal       *events.Journal
	reconstructor *storage.Reconstructor
	logger        *logger.Logger
}

// NewReplayHandler creates a new journal replay handler.
func NewReplayHandler(journal *events.Journal, reconstructor *storage.Reconstructor, log *logger.Logger) *ReplayHandler {
	return &ReplayHandler{
		journal:       journal,
		reconstructor: reconstructor,
		logger:        log,
	}
}

// ReplayResponse is the API response for a journal replay.
type ReplayResponse struct {
	TotalEntries int            `json:"total_entries"`
	FilteredBy   string         `json:"filtered_by,omitempty"`
	GeneratedAt  string         `json:"generated_at"`
	Entries      []events.Entry `json:"entries"`
}

// HandleReplay returns the journal history, optionally filtered.
// GET /api/journal/replay?kind=OPERATION&actor=LIL_007&limit=100
func (rh *ReplayHandler) HandleReplay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var entries []events.Entry
	filteredBy := ""
	switch {
	case r.URL.Query().Get("kind") != "":
		kind := r.URL.Query().Get("kind")
		entries = rh.journal.GetByKind(events.Kind(kind))
		filteredBy = "kind=" + kind
	case r.URL.Query().Get("actor") != "":
		actor := r.URL.Query().Get("actor")
		entries = rh.journal.GetByActor(actor)
		filteredBy = "actor=" + actor
	default:
		entries = rh.journal.Replay()
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit < len(entries) {
			entries = entries[len(entries)-limit:]
		}
	}

	resp := ReplayResponse{
		TotalEntries: len(entries),
		FilteredBy:   filteredBy,
		GeneratedAt:  time.Now().Format(time.RFC3339),
		Entries:      entries,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleRecap returns the persisted journal recap for operators catching up
// after a restart.
// GET /api/audit/recap?since=2026-01-02T15:04:05Z&limit=200
func (rh *ReplayHandler) HandleRecap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	since := time.Time{}
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		parsed, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			rh.jsonError(w, "Invalid since timestamp, want RFC3339", http.StatusBadRequest)
			return
		}
		since = parsed
	}
	limit := 200
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	recap, err := rh.reconstructor.GenerateRecap(r.Context(), since, limit)
	if err != nil {
		rh.logger.Error("Failed to generate recap: " + err.Error())
		rh.jsonError(w, "Failed to generate recap", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"recap":        recap,
		"generated_at": time.Now().Format(time.RFC3339),
	})
}

// RegisterRoutes sets up the replay API routes.
func (rh *ReplayHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/journal/replay", rh.HandleReplay)
	mux.HandleFunc("/api/audit/recap", rh.HandleRecap)
}

func (rh *ReplayHandler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
