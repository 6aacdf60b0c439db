package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/require"
)

// WSEvent is one frame received from the event stream, kept both raw and
// parsed so predicates can dig into any field.
type WSEvent struct {
	Type     string
	JobID    string
	Raw      []byte
	Parsed   map[string]any
	Received time.Time
}

// WSClient is a test WebSocket consumer. It performs the token handshake,
// collects every frame into an in-memory log, answers server pings, and
// exposes wait helpers that poll the log. The NOTIFY channel is shared
// across schemas in the test database, so helpers filter by job ID rather
// than assuming the stream carries only this test's events.
type WSClient struct {
	t      *testing.T
	conn   *websocket.Conn
	cancel context.CancelFunc
	doneCh chan struct{}

	mu     sync.Mutex
	events []WSEvent
}

// NewWSClient mints a one-time connection token, dials the gateway, sends
// the auth frame, and waits for the welcome before returning. lastEventID
// requests catch-up from the journal; pass nil for live-only.
func NewWSClient(t *testing.T, app *TestApp, lastEventID *int64) *WSClient {
	t.Helper()

	var tokenResp struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expiresIn"`
	}
	postJSON(t, app, "/api/ws/token", map[string]any{}, 200, &tokenResp)
	require.NotEmpty(t, tokenResp.Token)

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dialCancel()
	conn, _, err := websocket.Dial(dialCtx, app.WSURL, nil)
	require.NoError(t, err, "failed to dial %s", app.WSURL)

	authFrame := map[string]any{"token": tokenResp.Token}
	if lastEventID != nil {
		authFrame["lastEventId"] = *lastEventID
	}
	require.NoError(t, wsjson.Write(dialCtx, conn, authFrame))

	ctx, cancel := context.WithCancel(context.Background())
	c := &WSClient{
		t:      t,
		conn:   conn,
		cancel: cancel,
		doneCh: make(chan struct{}),
	}
	go c.readLoop(ctx)

	t.Cleanup(c.Close)

	c.WaitForEventType("connected", 5*time.Second)
	return c
}

// readLoop drains frames until the connection or context dies.
func (c *WSClient) readLoop(ctx context.Context) {
	defer close(c.doneCh)
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}

		var parsed map[string]any
		if err := json.Unmarshal(data, &parsed); err != nil {
			continue
		}

		typ, _ := parsed["type"].(string)
		if typ == "ping" {
			_ = wsjson.Write(ctx, c.conn, map[string]string{"type": "pong"})
			continue
		}

		jobID, _ := parsed["jobId"].(string)
		c.mu.Lock()
		c.events = append(c.events, WSEvent{
			Type:     typ,
			JobID:    jobID,
			Raw:      data,
			Parsed:   parsed,
			Received: time.Now(),
		})
		c.mu.Unlock()
	}
}

// Close tears down the connection and waits for the read loop to exit.
// Safe to call more than once.
func (c *WSClient) Close() {
	c.cancel()
	_ = c.conn.CloseNow()
	select {
	case <-c.doneCh:
	case <-time.After(5 * time.Second):
		c.t.Log("WSClient: read loop did not exit within 5s")
	}
}

// Events returns a snapshot of everything received so far.
func (c *WSClient) Events() []WSEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]WSEvent, len(c.events))
	copy(out, c.events)
	return out
}

// EventsByType returns received events of one type, in arrival order.
func (c *WSClient) EventsByType(eventType string) []WSEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []WSEvent
	for _, ev := range c.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

// WaitForEvent polls the log until an event satisfies the predicate or the
// timeout passes, then fails the test with a dump of what did arrive.
func (c *WSClient) WaitForEvent(predicate func(WSEvent) bool, timeout time.Duration, msg string) WSEvent {
	c.t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		for _, ev := range c.events {
			if predicate(ev) {
				c.mu.Unlock()
				return ev
			}
		}
		c.mu.Unlock()
		time.Sleep(25 * time.Millisecond)
	}

	c.t.Fatalf("timed out waiting for WebSocket event: %s\nreceived so far:\n%s", msg, c.dump())
	return WSEvent{}
}

// WaitForEventType waits for the first event of the given type from anyone.
func (c *WSClient) WaitForEventType(eventType string, timeout time.Duration) WSEvent {
	c.t.Helper()
	return c.WaitForEvent(func(ev WSEvent) bool {
		return ev.Type == eventType
	}, timeout, fmt.Sprintf("type=%s", eventType))
}

// WaitForJobEvent waits for the first event of the given type for one job.
func (c *WSClient) WaitForJobEvent(jobID, eventType string, timeout time.Duration) WSEvent {
	c.t.Helper()
	return c.WaitForEvent(func(ev WSEvent) bool {
		return ev.Type == eventType && ev.JobID == jobID
	}, timeout, fmt.Sprintf("type=%s job=%s", eventType, jobID))
}

// WaitForJobStatus waits for a status event announcing the given status.
func (c *WSClient) WaitForJobStatus(jobID, status string, timeout time.Duration) WSEvent {
	c.t.Helper()
	return c.WaitForEvent(func(ev WSEvent) bool {
		return ev.Type == "status" && ev.JobID == jobID && ev.Parsed["status"] == status
	}, timeout, fmt.Sprintf("status=%s job=%s", status, jobID))
}

// dump renders the event log for failure messages.
func (c *WSClient) dump() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.events) == 0 {
		return "  (no events received)"
	}
	var b []byte
	for _, ev := range c.events {
		b = append(b, "  "...)
		b = append(b, ev.Raw...)
		b = append(b, '\n')
	}
	return string(b)
}
