package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/axisworks/axis/pkg/config"
	"github.com/axisworks/axis/pkg/metrics"
)

// catchupLimit is the maximum number of events replayed on reconnect. If more
// were missed, a catchup.overflow frame tells the client to do a full REST
// reload instead of paginating.
const catchupLimit = 200

// writeTimeout bounds a single WebSocket send so one stalled client cannot
// hold up a broadcast.
const writeTimeout = 10 * time.Second

// closeHeartbeatTimeout is the application close code sent when a client
// stops answering pings.
const closeHeartbeatTimeout = websocket.StatusCode(4002)

// CatchupEvent holds one journaled event returned by the catchup query.
type CatchupEvent struct {
	ID      int64
	Payload map[string]any
}

// CatchupSource queries journaled events for reconnect catchup. Implemented
// by services.EventService.
type CatchupSource interface {
	GetCatchupEvents(ctx context.Context, channel string, sinceID int64, limit int) ([]CatchupEvent, error)
}

// Hub tracks WebSocket connections and fans broadcast payloads out to all of
// them. Every connection receives every event — there is a single broadcast
// channel, so no per-connection subscription state exists. Each process has
// one Hub.
type Hub struct {
	conns map[string]*Connection
	mu    sync.RWMutex

	catchup CatchupSource
	cfg     config.GatewayConfig
	metrics *metrics.Metrics
}

// Connection is a single WebSocket client.
type Connection struct {
	ID   string
	Conn *websocket.Conn

	// missedPongs counts pings sent since the last pong. Written by the
	// heartbeat goroutine, reset by the read loop.
	missedPongs atomic.Int32

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a Hub. catchup may be nil, in which case reconnecting
// clients get no replay.
func NewHub(catchup CatchupSource, cfg config.GatewayConfig, m *metrics.Metrics) *Hub {
	return &Hub{
		conns:   make(map[string]*Connection),
		catchup: catchup,
		cfg:     cfg,
		metrics: m,
	}
}

// HandleConnection runs the lifecycle of one WebSocket connection. Called by
// the HTTP handler after the upgrade and the token handshake; lastEventID is
// the client's resume position from the handshake, or nil for a fresh
// connection. Blocks until the connection closes.
func (h *Hub) HandleConnection(parentCtx context.Context, conn *websocket.Conn, lastEventID *int64) {
	connID := uuid.New().String()
	ctx, cancel := context.WithCancel(parentCtx)

	c := &Connection{
		ID:     connID,
		Conn:   conn,
		ctx:    ctx,
		cancel: cancel,
	}

	h.register(c)
	defer h.unregister(c)

	h.sendJSON(c, map[string]string{
		"type":         "connected",
		"connectionId": connID,
	})

	if lastEventID != nil {
		h.sendCatchup(ctx, c, *lastEventID)
	}

	go h.heartbeat(c)

	// Read loop. Inbound frames are only ping/pong, but every frame counts
	// against the rate limit so a misbehaving client cannot spin the loop.
	limiter := rate.NewLimiter(rate.Limit(float64(h.cfg.WSRatePerMinute)/60.0), h.cfg.WSRateBurst)
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		if !limiter.Allow() {
			slog.Warn("WebSocket client exceeded rate limit; closing",
				"connection_id", connID)
			_ = conn.Close(websocket.StatusPolicyViolation, "rate limit exceeded")
			return
		}

		var msg clientFrame
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("Invalid WebSocket message",
				"connection_id", connID, "error", err)
			continue
		}

		switch msg.Type {
		case "ping":
			h.sendJSON(c, map[string]string{"type": "pong"})
		case "pong":
			c.missedPongs.Store(0)
		}
	}
}

// heartbeat pings the client every HeartbeatInterval and closes the
// connection once MissedPongLimit pings go unanswered.
func (h *Hub) heartbeat(c *Connection) {
	ticker := time.NewTicker(h.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if int(c.missedPongs.Load()) >= h.cfg.MissedPongLimit {
				slog.Warn("WebSocket client missed pongs; closing",
					"connection_id", c.ID, "missed", c.missedPongs.Load())
				_ = c.Conn.Close(closeHeartbeatTimeout, "heartbeat timeout")
				c.cancel()
				return
			}
			h.sendJSON(c, map[string]string{"type": "ping"})
			c.missedPongs.Add(1)
		}
	}
}

// sendCatchup replays journaled events newer than sinceID, in order. The
// stored payload doesn't contain eventId (it's only injected into the NOTIFY
// payload at publish time), so it is added here from the row ID.
func (h *Hub) sendCatchup(ctx context.Context, c *Connection, sinceID int64) {
	if h.catchup == nil {
		return
	}

	// Query one past the limit to detect overflow.
	events, err := h.catchup.GetCatchupEvents(ctx, JobsChannel, sinceID, catchupLimit+1)
	if err != nil {
		slog.Error("Catchup query failed", "connection_id", c.ID, "error", err)
		return
	}

	hasMore := len(events) > catchupLimit
	if hasMore {
		events = events[:catchupLimit]
	}

	for _, evt := range events {
		evt.Payload["eventId"] = evt.ID
		payload, err := json.Marshal(evt.Payload)
		if err != nil {
			continue
		}
		if err := h.sendRaw(c, payload); err != nil {
			slog.Warn("Failed to send catchup event",
				"connection_id", c.ID, "error", err)
			return
		}
	}

	if hasMore {
		h.sendJSON(c, map[string]any{
			"type":    "catchup.overflow",
			"hasMore": true,
		})
	}
}

// Broadcast sends an event payload to every connection. The channel argument
// matches the NotifyListener broadcast signature; all events share one
// channel, so it is not used for routing.
func (h *Hub) Broadcast(channel string, event []byte) {
	// Snapshot connection pointers under the lock, then release before
	// sending, so a slow client (up to writeTimeout) doesn't stall
	// register/unregister.
	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := h.sendRaw(c, event); err != nil {
			slog.Warn("Failed to send to WebSocket client",
				"connection_id", c.ID, "error", err)
		}
	}
}

// ActiveConnections returns the count of active WebSocket connections.
func (h *Hub) ActiveConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	h.conns[c.ID] = c
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
	}
}

func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	delete(h.conns, c.ID)
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.WSConnections.Dec()
	}

	c.cancel()
	_ = c.Conn.Close(websocket.StatusNormalClosure, "")
}

// sendJSON marshals and sends a JSON message to a single connection.
func (h *Hub) sendJSON(c *Connection, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("Failed to marshal WebSocket message",
			"connection_id", c.ID, "error", err)
		return
	}
	if err := h.sendRaw(c, data); err != nil {
		slog.Warn("Failed to send WebSocket message",
			"connection_id", c.ID, "error", err)
	}
}

// sendRaw sends raw bytes to a single connection with a write timeout.
func (h *Hub) sendRaw(c *Connection, data []byte) error {
	writeCtx, cancel := context.WithTimeout(c.ctx, writeTimeout)
	defer cancel()
	return c.Conn.Write(writeCtx, websocket.MessageText, data)
}
