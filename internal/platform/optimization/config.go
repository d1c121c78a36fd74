// Package optimization provides concurrency tuning for high load.
// Tuned channel buffers, connection pool settings and advice derived from
// the live metrics snapshot.
package optimization

import (
	"runtime"
)

// Config holds tuned parameters for high-load scenarios.
type Config struct {
	// Channel buffer sizes
	JournalChannelBuffer   int
	BroadcastChannelBuffer int
	ClientSendBuffer       int

	// Connection pools
	DBMaxOpenConns int
	DBMaxIdleConns int

	// Worker pools
	JournalWorkers   int
	BroadcastWorkers int

	// Rate limiting
	MaxOperationsPerSecond int
	MaxClients             int
}

// DefaultConfig returns sensible defaults for production.
func DefaultConfig() *Config {
	numCPU := runtime.NumCPU()

	return &Config{
		// Channel buffers - larger = more memory, less blocking
		JournalChannelBuffer:   1024, // Handle bursts
		BroadcastChannelBuffer: 256,  // Per client
		ClientSendBuffer:       64,   // Per WebSocket

		// Database connections
		DBMaxOpenConns: numCPU * 4, // 4 connections per CPU
		DBMaxIdleConns: numCPU * 2, // Keep half warm

		// Workers
		JournalWorkers:   numCPU,     // One per CPU for journal writes
		BroadcastWorkers: numCPU * 2, // Two per CPU for I/O bound work

		// Rate limits
		MaxOperationsPerSecond: 100, // Per client
		MaxClients:             200,
	}
}

// StressTestConfig returns aggressive settings for stress testing.
func StressTestConfig() *Config {
	numCPU := runtime.NumCPU()

	return &Config{
		JournalChannelBuffer:   4096,
		BroadcastChannelBuffer: 512,
		ClientSendBuffer:       128,

		DBMaxOpenConns: numCPU * 8,
		DBMaxIdleConns: numCPU * 4,

		JournalWorkers:   numCPU * 2,
		BroadcastWorkers: numCPU * 4,

		MaxOperationsPerSecond: 500,
		MaxClients:             500,
	}
}

// LowResourceConfig returns minimal settings for development.
func LowResourceConfig() *Config {
	return &Config{
		JournalChannelBuffer:   64,
		BroadcastChannelBuffer: 16,
		ClientSendBuffer:       8,

		DBMaxOpenConns: 5,
		DBMaxIdleConns: 2,

		JournalWorkers:   2,
		BroadcastWorkers: 2,

		MaxOperationsPerSecond: 10,
		MaxClients:             20,
	}
}

// Recommendations provides suggestions based on observed metrics.
type Recommendations struct {
	IncreaseJournalBuffer   bool
	IncreaseBroadcastBuffer bool
	IncreaseDBConnections   bool
	IncreaseWorkers         bool
	Notes                   []string
}

// Analyze examines current metrics and returns optimization recommendations.
func Analyze(metrics map[string]interface{}) *Recommendations {
	rec := &Recommendations{
		Notes: make([]string, 0),
	}

	// Check tick latency
	if tick, ok := metrics["tick"].(map[string]interface{}); ok {
		if maxLat, ok := tick["max_latency_ms"].(float64); ok && maxLat > 100 {
			rec.IncreaseJournalBuffer = true
			rec.IncreaseWorkers = true
			rec.Notes = append(rec.Notes, "Tick latency exceeds 100ms - increase journal workers")
		}
	}

	// Check journal write latency
	if journal, ok := metrics["journal"].(map[string]interface{}); ok {
		if maxLat, ok := journal["max_write_lat_ms"].(float64); ok && maxLat > 50 {
			rec.IncreaseDBConnections = true
			rec.Notes = append(rec.Notes, "Journal write latency exceeds 50ms - increase DB connections")
		}
		if errors, ok := journal["errors"].(int64); ok && errors > 0 {
			rec.IncreaseDBConnections = true
			rec.Notes = append(rec.Notes, "Journal write errors detected - check DB connection pool")
		}
	}

	// Check WebSocket backpressure
	if ws, ok := metrics["websocket"].(map[string]interface{}); ok {
		if errors, ok := ws["errors"].(int64); ok && errors > 0 {
			rec.IncreaseBroadcastBuffer = true
			rec.Notes = append(rec.Notes, "WebSocket errors detected - increase client send buffer")
		}
	}

	return rec
}

// ApplyRecommendations modifies config based on recommendations.
func ApplyRecommendations(config *Config, rec *Recommendations) *Config {
	if rec.IncreaseJournalBuffer {
		config.JournalChannelBuffer *= 2
	}
	if rec.IncreaseBroadcastBuffer {
		config.BroadcastChannelBuffer *= 2
		config.ClientSendBuffer *= 2
	}
	if rec.IncreaseDBConnections {
		config.DBMaxOpenConns = int(float64(config.DBMaxOpenConns) * 1.5)
		config.DBMaxIdleConns = int(float64(config.DBMaxIdleConns) * 1.5)
	}
	if rec.IncreaseWorkers {
		config.JournalWorkers *= 2
		config.BroadcastWorkers = int(float64(config.BroadcastWorkers) * 1.5)
	}
	return config
}
