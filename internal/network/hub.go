package network

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/MRamiBalles/LogosOmega/server/internal/actions"
	"github.com/MRamiBalles/LogosOmega/server/internal/events"
	"github.com/MRamiBalles/LogosOmega/server/internal/platform/logger"
	"github.com/MRamiBalles/LogosOmega/server/internal/platform/metrics"
	"github.com/MRamiBalles/LogosOmega/server/internal/state"
)

// Message is the envelope for everything the hub pushes to clients.
type Message struct {
	Type string      `json:"type"` // "journal_entry", "state_snapshot", "operation_result"
	Data interface{} `json:"data"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	logger     *logger.Logger

	store    *state.Store
	registry *actions.Registry
}

// NewHub initializes a new WebSocket Hub.
func NewHub(log *logger.Logger, store *state.Store, registry *actions.Registry) *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     log,
		store:      store,
		registry:   registry,
	}
}

// Run starts the Hub's main loop to handle client connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("WebSocket Hub shutting down.")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("New WebSocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("WebSocket client disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.Get().RecordWSMessage(false)
				default:
					close(client.send)
					delete(h.clients, client)
					metrics.Get().RecordWSConnection(-1)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast serializes a message envelope and sends it to all clients.
func (h *Hub) Broadcast(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to serialize message for WebSocket broadcast: " + err.Error())
		metrics.Get().RecordWSError()
		return
	}
	h.broadcast <- payload
}

// StartJournalPoller spawns a goroutine that polls the journal and pushes new
// entries to the Hub. The Hub runs independently from the audit cycle while
// picking up the same entries.
func (h *Hub) StartJournalPoller(ctx context.Context, journal *events.Journal) {
	go func() {
		pollInterval := time.NewTicker(200 * time.Millisecond)
		defer pollInterval.Stop()

		cursor := 0
		// Skip history present before the poller started.
		_, cursor = journal.Since(-1)

		for {
			select {
			case <-ctx.Done():
				return
			case <-pollInterval.C:
				newEntries, next := journal.Since(cursor)
				cursor = next
				for _, entry := range newEntries {
					if entry.Level == events.LevelInternal {
						continue
					}
					h.Broadcast(Message{Type: "journal_entry", Data: entry})
				}
			}
		}
	}()
}

// StartStatePoller spawns a goroutine pushing periodic full state snapshots,
// so dashboards converge even when they miss individual entries.
func (h *Hub) StartStatePoller(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.mu.Lock()
				connected := len(h.clients)
				h.mu.Unlock()
				if connected == 0 {
					continue
				}
				h.Broadcast(Message{Type: "state_snapshot", Data: h.store.Snapshot()})
			}
		}
	}()
}
