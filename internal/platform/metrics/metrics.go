// Package metrics provides observability for the audit server.
// T030: Metrics collection for load and soak analysis.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance metrics.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Rule engine metrics
	RulesEvaluated int64
	RulesFired     int64

	// Operation metrics
	OpsSucceeded int64
	OpsFailed    int64
	OpsHaltedOut int64

	// Journal metrics
	EntriesWritten    int64
	EntryWriteLatSum  int64
	EntryWriteLatMax  int64
	EntryWriteErrors  int64
	PersistenceErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordTick records a tick cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TickLatencyMax) {
		atomic.StoreInt64(&c.TickLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordRulePass records one rule-evaluation pass.
func (c *Collector) RecordRulePass(evaluated, fired int) {
	atomic.AddInt64(&c.RulesEvaluated, int64(evaluated))
	atomic.AddInt64(&c.RulesFired, int64(fired))
}

// RecordOperation records the outcome of a registry operation.
func (c *Collector) RecordOperation(status string) {
	switch status {
	case "FAIL":
		atomic.AddInt64(&c.OpsFailed, 1)
	case "HALTED":
		atomic.AddInt64(&c.OpsHaltedOut, 1)
	default:
		atomic.AddInt64(&c.OpsSucceeded, 1)
	}
}

// RecordEntryWrite records a journal entry write to the database.
func (c *Collector) RecordEntryWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.EntriesWritten, 1)
	atomic.AddInt64(&c.EntryWriteLatSum, int64(latency))

	if int64(latency) > atomic.LoadInt64(&c.EntryWriteLatMax) {
		atomic.StoreInt64(&c.EntryWriteLatMax, int64(latency))
	}

	if err != nil {
		atomic.AddInt64(&c.EntryWriteErrors, 1)
	}
}

// RecordPersistenceError records a failed state projection write.
func (c *Collector) RecordPersistenceError() {
	atomic.AddInt64(&c.PersistenceErrors, 1)
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)
	entriesWritten := atomic.LoadInt64(&c.EntriesWritten)

	// Calculate averages
	var tickAvg, entryAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}
	if entriesWritten > 0 {
		entryAvg = float64(atomic.LoadInt64(&c.EntryWriteLatSum)) / float64(entriesWritten) / 1e6
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"tick": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      c.LastTickTime.Format(time.RFC3339),
		},

		"rules": map[string]interface{}{
			"evaluated": atomic.LoadInt64(&c.RulesEvaluated),
			"fired":     atomic.LoadInt64(&c.RulesFired),
		},

		"operations": map[string]interface{}{
			"succeeded":       atomic.LoadInt64(&c.OpsSucceeded),
			"failed":          atomic.LoadInt64(&c.OpsFailed),
			"rejected_halted": atomic.LoadInt64(&c.OpsHaltedOut),
		},

		"journal": map[string]interface{}{
			"written":            entriesWritten,
			"avg_write_lat_ms":   entryAvg,
			"max_write_lat_ms":   float64(atomic.LoadInt64(&c.EntryWriteLatMax)) / 1e6,
			"errors":             atomic.LoadInt64(&c.EntryWriteErrors),
			"persistence_errors": atomic.LoadInt64(&c.PersistenceErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		// Tick metrics
		fmt.Fprintf(w, "# HELP logos_tick_count Total audit cycles\n")
		fmt.Fprintf(w, "# TYPE logos_tick_count counter\n")
		fmt.Fprintf(w, "logos_tick_count %d\n\n", atomic.LoadInt64(&c.TickCount))

		fmt.Fprintf(w, "# HELP logos_tick_latency_max_ms Maximum tick latency\n")
		fmt.Fprintf(w, "# TYPE logos_tick_latency_max_ms gauge\n")
		fmt.Fprintf(w, "logos_tick_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6)

		// Rule metrics
		fmt.Fprintf(w, "# HELP logos_rules_fired Total rule firings\n")
		fmt.Fprintf(w, "# TYPE logos_rules_fired counter\n")
		fmt.Fprintf(w, "logos_rules_fired %d\n\n", atomic.LoadInt64(&c.RulesFired))

		// Operation metrics
		fmt.Fprintf(w, "# HELP logos_operations_total Total registry operations\n")
		fmt.Fprintf(w, "# TYPE logos_operations_total counter\n")
		fmt.Fprintf(w, "logos_operations_total{status=\"success\"} %d\n", atomic.LoadInt64(&c.OpsSucceeded))
		fmt.Fprintf(w, "logos_operations_total{status=\"fail\"} %d\n", atomic.LoadInt64(&c.OpsFailed))
		fmt.Fprintf(w, "logos_operations_total{status=\"halted\"} %d\n\n", atomic.LoadInt64(&c.OpsHaltedOut))

		// Journal metrics
		fmt.Fprintf(w, "# HELP logos_journal_entries_written Total journal entries written\n")
		fmt.Fprintf(w, "# TYPE logos_journal_entries_written counter\n")
		fmt.Fprintf(w, "logos_journal_entries_written %d\n\n", atomic.LoadInt64(&c.EntriesWritten))

		fmt.Fprintf(w, "# HELP logos_persistence_errors Total failed state projection writes\n")
		fmt.Fprintf(w, "# TYPE logos_persistence_errors counter\n")
		fmt.Fprintf(w, "logos_persistence_errors %d\n\n", atomic.LoadInt64(&c.PersistenceErrors))

		// WebSocket metrics
		fmt.Fprintf(w, "# HELP logos_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE logos_ws_connections gauge\n")
		fmt.Fprintf(w, "logos_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP logos_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE logos_ws_messages_total counter\n")
		fmt.Fprintf(w, "logos_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "logos_ws_messages_total{direction=\"out\"} %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}
