package logger

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/require"
)

func newBufferedLogger() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := &Logger{
		infoLogger:  log.New(&buf, "[LOGOS-INFO] ", 0),
		warnLogger:  log.New(&buf, "[LOGOS-WARN] ", 0),
		errorLogger: log.New(&buf, "[LOGOS-ERROR] ", 0),
	}
	return l, &buf
}

func TestMessagesPassThroughVerbatim(t *testing.T) {
	l, buf := newBufferedLogger()

	// Messages often carry literal percent signs (rates, pressure deltas);
	// they must never be interpreted as format directives.
	l.Info("supply at 100% of cap")
	l.Warn("pressure up 5%v this cycle")
	l.Error("persist failed: 0%d rows")

	out := buf.String()
	require.Contains(t, out, "[LOGOS-INFO] supply at 100% of cap")
	require.Contains(t, out, "[LOGOS-WARN] pressure up 5%v this cycle")
	require.Contains(t, out, "[LOGOS-ERROR] persist failed: 0%d rows")
	require.NotContains(t, out, "MISSING")
}

func TestActLine(t *testing.T) {
	l, buf := newBufferedLogger()

	l.Act("ARBITRAGE", "Z_NETWORK", "converted 10 BETA")

	require.Contains(t, buf.String(), "[ACT:ARBITRAGE] Actor:Z_NETWORK | converted 10 BETA")
}
