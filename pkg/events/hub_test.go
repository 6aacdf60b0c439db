package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/config"
)

// mockCatchupSource implements CatchupSource for tests.
type mockCatchupSource struct {
	events []CatchupEvent
	err    error
}

func (m *mockCatchupSource) GetCatchupEvents(_ context.Context, _ string, _ int64, limit int) ([]CatchupEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && len(m.events) > limit {
		return m.events[:limit], nil
	}
	return m.events, nil
}

// testGatewayConfig keeps heartbeats and rate limits out of the way unless a
// test overrides them.
func testGatewayConfig() config.GatewayConfig {
	return config.GatewayConfig{
		WSRatePerMinute:   600,
		WSRateBurst:       100,
		HeartbeatInterval: time.Minute,
		MissedPongLimit:   2,
	}
}

// setupHubServer starts an httptest server that upgrades each request and
// hands the socket to the hub with the given resume position.
func setupHubServer(t *testing.T, hub *Hub, resume *int64) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			t.Logf("WebSocket accept error: %v", err)
			return
		}
		hub.HandleConnection(r.Context(), conn, resume)
	}))
	t.Cleanup(func() { server.Close() })
	return server
}

func connectWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + server.URL[len("http"):]
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func writeJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
}

func TestHub_ConnectedFrame(t *testing.T) {
	hub := NewHub(&mockCatchupSource{}, testGatewayConfig(), nil)
	server := setupHubServer(t, hub, nil)
	conn := connectWS(t, server)

	msg := readJSON(t, conn)
	assert.Equal(t, "connected", msg["type"])
	assert.NotEmpty(t, msg["connectionId"])
}

func TestHub_BroadcastReachesAllConnections(t *testing.T) {
	hub := NewHub(&mockCatchupSource{}, testGatewayConfig(), nil)
	server := setupHubServer(t, hub, nil)

	conn1 := connectWS(t, server)
	conn2 := connectWS(t, server)

	// The connected frame is sent after registration, so once both are read
	// the broadcast below must reach both sockets.
	readJSON(t, conn1)
	readJSON(t, conn2)

	payload, _ := json.Marshal(map[string]string{"type": "status", "jobId": "job-1"})
	hub.Broadcast(JobsChannel, payload)

	msg1 := readJSON(t, conn1)
	msg2 := readJSON(t, conn2)
	assert.Equal(t, "status", msg1["type"])
	assert.Equal(t, "job-1", msg1["jobId"])
	assert.Equal(t, "status", msg2["type"])
	assert.Equal(t, "job-1", msg2["jobId"])
}

func TestHub_PingPong(t *testing.T) {
	hub := NewHub(&mockCatchupSource{}, testGatewayConfig(), nil)
	server := setupHubServer(t, hub, nil)
	conn := connectWS(t, server)
	readJSON(t, conn) // connected

	writeJSON(t, conn, map[string]string{"type": "ping"})

	msg := readJSON(t, conn)
	assert.Equal(t, "pong", msg["type"])
}

func TestHub_InvalidFrameIgnored(t *testing.T) {
	hub := NewHub(&mockCatchupSource{}, testGatewayConfig(), nil)
	server := setupHubServer(t, hub, nil)
	conn := connectWS(t, server)
	readJSON(t, conn) // connected

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("not json")))

	// Still alive.
	writeJSON(t, conn, map[string]string{"type": "ping"})
	msg := readJSON(t, conn)
	assert.Equal(t, "pong", msg["type"])
}

func TestHub_HeartbeatClosesSilentClient(t *testing.T) {
	cfg := testGatewayConfig()
	cfg.HeartbeatInterval = 50 * time.Millisecond
	cfg.MissedPongLimit = 2

	hub := NewHub(&mockCatchupSource{}, cfg, nil)
	server := setupHubServer(t, hub, nil)
	conn := connectWS(t, server)
	readJSON(t, conn) // connected

	// Never answer pings. The server should cut the connection with the
	// heartbeat close code after MissedPongLimit unanswered pings.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var err error
	for {
		if _, _, err = conn.Read(ctx); err != nil {
			break
		}
	}
	assert.Equal(t, closeHeartbeatTimeout, websocket.CloseStatus(err))
}

func TestHub_PongKeepsConnectionAlive(t *testing.T) {
	cfg := testGatewayConfig()
	cfg.HeartbeatInterval = 50 * time.Millisecond
	cfg.MissedPongLimit = 2

	hub := NewHub(&mockCatchupSource{}, cfg, nil)
	server := setupHubServer(t, hub, nil)
	conn := connectWS(t, server)
	readJSON(t, conn) // connected

	// Answer every ping for well past MissedPongLimit intervals; the
	// connection must survive.
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		readCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		_, data, err := conn.Read(readCtx)
		cancel()
		require.NoError(t, err)

		var msg map[string]any
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg["type"] == "ping" {
			writeJSON(t, conn, map[string]string{"type": "pong"})
		}
	}

	assert.Equal(t, 1, hub.ActiveConnections())
}

func TestHub_RateLimitClosesConnection(t *testing.T) {
	cfg := testGatewayConfig()
	cfg.WSRatePerMinute = 60
	cfg.WSRateBurst = 3

	hub := NewHub(&mockCatchupSource{}, cfg, nil)
	server := setupHubServer(t, hub, nil)
	conn := connectWS(t, server)
	readJSON(t, conn) // connected

	// Burst past the limit; the write may start failing once the server
	// closes, which is fine.
	for range 10 {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		data, _ := json.Marshal(map[string]string{"type": "ping"})
		err := conn.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			break
		}
	}

	// Drain pongs until the policy-violation close arrives.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var err error
	for {
		if _, _, err = conn.Read(ctx); err != nil {
			break
		}
	}
	assert.Equal(t, websocket.StatusPolicyViolation, websocket.CloseStatus(err))
}

func TestHub_CatchupReplaysEventsInOrder(t *testing.T) {
	events := []CatchupEvent{
		{ID: 10, Payload: map[string]any{"type": "status", "seq": float64(1)}},
		{ID: 11, Payload: map[string]any{"type": "status", "seq": float64(2)}},
		{ID: 12, Payload: map[string]any{"type": "result", "seq": float64(3)}},
	}

	hub := NewHub(&mockCatchupSource{events: events}, testGatewayConfig(), nil)
	resume := int64(9)
	server := setupHubServer(t, hub, &resume)
	conn := connectWS(t, server)

	msg := readJSON(t, conn)
	require.Equal(t, "connected", msg["type"])

	for i := range 3 {
		msg := readJSON(t, conn)
		assert.Equal(t, float64(i+1), msg["seq"])
		assert.Equal(t, float64(10+i), msg["eventId"], "catchup must inject the journal row id")
	}

	// No overflow frame for a small catchup.
	readCtx, readCancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer readCancel()
	_, _, err := conn.Read(readCtx)
	assert.Error(t, err)
}

func TestHub_CatchupOverflow(t *testing.T) {
	manyEvents := make([]CatchupEvent, catchupLimit+5)
	for i := range manyEvents {
		manyEvents[i] = CatchupEvent{
			ID:      int64(i + 1),
			Payload: map[string]any{"type": "status", "seq": i},
		}
	}

	hub := NewHub(&mockCatchupSource{events: manyEvents}, testGatewayConfig(), nil)
	resume := int64(0)
	server := setupHubServer(t, hub, &resume)
	conn := connectWS(t, server)
	readJSON(t, conn) // connected

	var overflowReceived bool
	for range catchupLimit + 5 {
		msg := readJSON(t, conn)
		if msg["type"] == "catchup.overflow" {
			overflowReceived = true
			assert.Equal(t, true, msg["hasMore"])
			break
		}
	}
	assert.True(t, overflowReceived, "expected catchup.overflow frame")
}

func TestHub_NoCatchupWithoutResumePosition(t *testing.T) {
	events := []CatchupEvent{{ID: 1, Payload: map[string]any{"type": "status"}}}

	hub := NewHub(&mockCatchupSource{events: events}, testGatewayConfig(), nil)
	server := setupHubServer(t, hub, nil)
	conn := connectWS(t, server)
	readJSON(t, conn) // connected

	readCtx, readCancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer readCancel()
	_, _, err := conn.Read(readCtx)
	assert.Error(t, err, "fresh connections get no replay")
}

func TestHub_CatchupErrorKeepsConnectionUsable(t *testing.T) {
	hub := NewHub(&mockCatchupSource{err: fmt.Errorf("database unreachable")}, testGatewayConfig(), nil)
	resume := int64(0)
	server := setupHubServer(t, hub, &resume)
	conn := connectWS(t, server)
	readJSON(t, conn) // connected

	// Catchup failure is logged, not fatal — ping/pong still works.
	writeJSON(t, conn, map[string]string{"type": "ping"})
	msg := readJSON(t, conn)
	assert.Equal(t, "pong", msg["type"])
}

func TestHub_ConcurrentBroadcast(t *testing.T) {
	hub := NewHub(&mockCatchupSource{}, testGatewayConfig(), nil)
	server := setupHubServer(t, hub, nil)
	conn := connectWS(t, server)
	readJSON(t, conn) // connected

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			payload, _ := json.Marshal(map[string]any{"type": "status", "idx": idx})
			hub.Broadcast(JobsChannel, payload)
		}(i)
	}
	wg.Wait()

	received := 0
	var firstErr error
	for range 20 {
		readCtx, readCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, _, err := conn.Read(readCtx)
		readCancel()
		if err != nil {
			firstErr = err
			break
		}
		received++
	}
	assert.Equal(t, 20, received, "should receive all 20 broadcast messages; first error: %v", firstErr)
}

func TestHub_CleanupOnDisconnect(t *testing.T) {
	hub := NewHub(&mockCatchupSource{}, testGatewayConfig(), nil)
	server := setupHubServer(t, hub, nil)

	url := "ws" + server.URL[len("http"):]
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)

	_, _, err = conn.Read(ctx) // connected
	require.NoError(t, err)
	assert.Equal(t, 1, hub.ActiveConnections())

	conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool {
		return hub.ActiveConnections() == 0
	}, 2*time.Second, 10*time.Millisecond, "connection should be cleaned up")

	// Broadcast to an empty hub should not panic.
	payload, _ := json.Marshal(map[string]string{"type": "status"})
	assert.NotPanics(t, func() {
		hub.Broadcast(JobsChannel, payload)
	})
}
