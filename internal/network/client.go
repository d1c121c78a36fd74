package network

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/LogosOmega/server/internal/actions"
	"github.com/MRamiBalles/LogosOmega/server/internal/domain/currency"
	"github.com/MRamiBalles/LogosOmega/server/internal/platform/metrics"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
	// Minimum spacing between economic operations from one connection.
	opCooldown = 500 * time.Millisecond
)

// NewClient creates a new WebSocket client and returns it.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// OperationRequest represents an incoming economic command from a client.
type OperationRequest struct {
	Type     string  `json:"type"` // "MINT", "TRANSFER", "BRIDGE_OUT", "INFRA_ADJUST"
	Account  string  `json:"account"`
	Target   string  `json:"target,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Amount   float64 `json:"amount,omitempty"`
	Kind     string  `json:"kind,omitempty"`  // infrastructure gauge
	Level    float64 `json:"level,omitempty"` // infrastructure supply level
}

// operationReply pairs the echoed request type with its audit result.
type operationReply struct {
	Op     string         `json:"op"`
	Result actions.Result `json:"result"`
}

// Client object to hold connection status. Holds a Hub ref to allow unregister.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	lastOpTime time.Time
}

// Register adds the client to the hub.
func (c *Client) Register() {
	c.hub.register <- c
}

// ReadPump pumps messages from the websocket connection to the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error: %v", err)
			}
			break
		}
		metrics.Get().RecordWSMessage(true)

		var req OperationRequest
		if err := json.Unmarshal(message, &req); err != nil {
			c.hub.logger.Error("Failed to parse OperationRequest from WebSocket. err: " + err.Error())
			metrics.Get().RecordWSError()
			continue
		}

		c.handleOperation(req)
	}
}

func (c *Client) handleOperation(req OperationRequest) {
	// 1. Rate Limiting Check
	if time.Since(c.lastOpTime) < opCooldown {
		c.hub.logger.Warn("Rate limit exceeded for operation from " + req.Account)
		return
	}
	c.lastOpTime = time.Now()

	// 2. Route to the operation registry. All validation (halt latch,
	// balances, suppression flags) happens there; the client layer only
	// translates the wire format.
	reg := c.hub.registry
	var result actions.Result
	switch req.Type {
	case "MINT":
		result = reg.Mint(req.Account, currency.Code(req.Currency), req.Amount)
	case "TRANSFER":
		result = reg.Transfer(req.Account, req.Target, currency.Code(req.Currency), req.Amount)
	case "BRIDGE_OUT":
		result = reg.BridgeOut(req.Account, req.Amount)
	case "INFRA_ADJUST":
		result = reg.AdjustInfrastructure(actions.InfraKind(req.Kind), req.Level)
	default:
		c.hub.logger.Warn("Unknown OperationRequest type: " + req.Type)
		return
	}

	// 3. Reply to the requesting connection only; the journal poller
	// broadcasts the audit entries to everyone.
	c.reply(Message{Type: "operation_result", Data: operationReply{Op: req.Type, Result: result}})
}

// reply queues a message for this connection, dropping it when the client
// cannot keep up.
func (c *Client) reply(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		c.hub.logger.Error("Failed to serialize operation reply: " + err.Error())
		metrics.Get().RecordWSError()
		return
	}
	select {
	case c.send <- payload:
		metrics.Get().RecordWSMessage(false)
	default:
		metrics.Get().RecordWSError()
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
