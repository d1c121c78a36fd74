package network

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MRamiBalles/LogosOmega/server/internal/events"
	"github.com/MRamiBalles/LogosOmega/server/internal/platform/logger"
	"github.com/MRamiBalles/LogosOmega/server/internal/state"
)

// newHubClient attaches a connection-less client directly to the hub's
// channels; the pumps are not needed to exercise broadcast routing.
func newHubClient(h *Hub) *Client {
	c := &Client{hub: h, send: make(chan []byte, 8)}
	h.register <- c
	return c
}

func TestHubBroadcastReachesEveryClient(t *testing.T) {
	h := NewHub(logger.NewLogger(), state.NewStore(state.NewDefault(time.Now())), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	a := newHubClient(h)
	b := newHubClient(h)

	h.Broadcast(Message{Type: "journal_entry", Data: "hello"})

	for _, c := range []*Client{a, b} {
		select {
		case raw := <-c.send:
			var msg Message
			require.NoError(t, json.Unmarshal(raw, &msg))
			require.Equal(t, "journal_entry", msg.Type)
		case <-time.After(2 * time.Second):
			t.Fatal("client never received the broadcast")
		}
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	h := NewHub(logger.NewLogger(), state.NewStore(state.NewDefault(time.Now())), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := newHubClient(h)
	h.unregister <- c

	select {
	case _, open := <-c.send:
		require.False(t, open, "unregister must close the client's send channel")
	case <-time.After(2 * time.Second):
		t.Fatal("send channel was never closed")
	}
}

func TestJournalPollerSkipsHistoryAndInternalEntries(t *testing.T) {
	h := NewHub(logger.NewLogger(), state.NewStore(state.NewDefault(time.Now())), nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	journal := events.NewJournal(nil)
	journal.Append(events.Entry{Kind: events.KindOperation, Message: "before poller"})

	h.StartJournalPoller(ctx, journal)
	time.Sleep(50 * time.Millisecond)
	c := newHubClient(h)

	journal.Append(events.Entry{Kind: events.KindOperation, Level: events.LevelInternal, Message: "noise"})
	journal.Append(events.Entry{Kind: events.KindOperation, Level: events.LevelAudit, Message: "after poller"})

	select {
	case raw := <-c.send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		require.Equal(t, "journal_entry", msg.Type)
		entry, err := json.Marshal(msg.Data)
		require.NoError(t, err)
		require.Contains(t, string(entry), "after poller", "history and internal entries stay off the wire")
	case <-time.After(2 * time.Second):
		t.Fatal("poller never broadcast the new entry")
	}
}
