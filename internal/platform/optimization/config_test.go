package optimization

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnalyzeQuietMetrics(t *testing.T) {
	rec := Analyze(map[string]interface{}{
		"tick":      map[string]interface{}{"max_latency_ms": 2.0},
		"journal":   map[string]interface{}{"max_write_lat_ms": 1.0, "errors": int64(0)},
		"websocket": map[string]interface{}{"errors": int64(0)},
	})

	require.False(t, rec.IncreaseJournalBuffer)
	require.False(t, rec.IncreaseDBConnections)
	require.False(t, rec.IncreaseBroadcastBuffer)
	require.Empty(t, rec.Notes)
}

func TestAnalyzeFlagsSlowTicksAndWrites(t *testing.T) {
	rec := Analyze(map[string]interface{}{
		"tick":    map[string]interface{}{"max_latency_ms": 250.0},
		"journal": map[string]interface{}{"max_write_lat_ms": 80.0, "errors": int64(3)},
	})

	require.True(t, rec.IncreaseJournalBuffer)
	require.True(t, rec.IncreaseWorkers)
	require.True(t, rec.IncreaseDBConnections)
	require.Len(t, rec.Notes, 3)
}

func TestApplyRecommendations(t *testing.T) {
	cfg := LowResourceConfig()
	before := cfg.JournalChannelBuffer

	out := ApplyRecommendations(cfg, &Recommendations{
		IncreaseJournalBuffer: true,
		IncreaseDBConnections: true,
	})

	require.Equal(t, before*2, out.JournalChannelBuffer)
	require.Equal(t, 7, out.DBMaxOpenConns) // 5 * 1.5 truncated
	require.Equal(t, 3, out.DBMaxIdleConns)
}

func TestConfigProfilesScale(t *testing.T) {
	low, def, stress := LowResourceConfig(), DefaultConfig(), StressTestConfig()

	require.Less(t, low.JournalChannelBuffer, def.JournalChannelBuffer)
	require.Less(t, def.JournalChannelBuffer, stress.JournalChannelBuffer)
	require.LessOrEqual(t, def.DBMaxOpenConns, stress.DBMaxOpenConns)
}
