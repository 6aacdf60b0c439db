package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWsTokenMint(t *testing.T) {
	h := newTestServer(t)

	rec := h.request(t, http.MethodPost, "/api/ws/token", WsTokenRequest{})

	require.Equal(t, http.StatusOK, rec.Code)
	var body WsTokenResponse
	decodeJSON(t, rec, &body)
	assert.Regexp(t, "^[0-9a-f]{64}$", body.Token)
	assert.Equal(t, 30, body.ExpiresIn)
}

func TestWsTokenMintRequiresAuth(t *testing.T) {
	h := newTestServer(t)

	rec := h.requestNoAuth(t, http.MethodPost, "/api/ws/token", WsTokenRequest{})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// dialGateway connects a raw WebSocket client to a served instance of the
// gateway. The handshake is the caller's job.
func dialGateway(t *testing.T, h *apiHarness) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(h.server)
	t.Cleanup(server.Close)

	url := "ws" + server.URL[len("http"):] + "/ws"
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func wsWriteJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
}

// wsRead returns the next frame, or the error that ended the connection.
func wsRead(t *testing.T, conn *websocket.Conn) (map[string]any, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg, nil
}

func TestWsHandshake(t *testing.T) {
	t.Run("accepts a minted token", func(t *testing.T) {
		h := newTestServer(t)
		token, err := h.wsTokens.Issue(context.Background(), "session-1", 30*time.Second)
		require.NoError(t, err)

		conn := dialGateway(t, h)
		wsWriteJSON(t, conn, map[string]string{"token": token})

		msg, err := wsRead(t, conn)
		require.NoError(t, err)
		assert.Equal(t, "connected", msg["type"])
		assert.NotEmpty(t, msg["connectionId"])
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		h := newTestServer(t)

		conn := dialGateway(t, h)
		wsWriteJSON(t, conn, map[string]string{"token": "bogus"})

		_, err := wsRead(t, conn)
		require.Error(t, err)
		assert.Equal(t, closeAuthFailure, websocket.CloseStatus(err))
	})

	t.Run("rejects a first frame without a token", func(t *testing.T) {
		h := newTestServer(t)

		conn := dialGateway(t, h)
		wsWriteJSON(t, conn, map[string]string{"hello": "world"})

		_, err := wsRead(t, conn)
		require.Error(t, err)
		assert.Equal(t, closeAuthFailure, websocket.CloseStatus(err))
	})

	t.Run("tokens spend exactly once", func(t *testing.T) {
		h := newTestServer(t)
		token, err := h.wsTokens.Issue(context.Background(), "session-1", 30*time.Second)
		require.NoError(t, err)

		first := dialGateway(t, h)
		wsWriteJSON(t, first, map[string]string{"token": token})
		msg, err := wsRead(t, first)
		require.NoError(t, err)
		require.Equal(t, "connected", msg["type"])

		second := dialGateway(t, h)
		wsWriteJSON(t, second, map[string]string{"token": token})
		_, err = wsRead(t, second)
		require.Error(t, err)
		assert.Equal(t, closeAuthFailure, websocket.CloseStatus(err))
	})

	t.Run("expired tokens are rejected", func(t *testing.T) {
		h := newTestServer(t)
		token, err := h.wsTokens.Issue(context.Background(), "session-1", time.Millisecond)
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)

		conn := dialGateway(t, h)
		wsWriteJSON(t, conn, map[string]string{"token": token})

		_, err = wsRead(t, conn)
		require.Error(t, err)
		assert.Equal(t, closeAuthFailure, websocket.CloseStatus(err))
	})
}

func TestWsBroadcastReachesAuthenticatedClient(t *testing.T) {
	h := newTestServer(t)
	token, err := h.wsTokens.Issue(context.Background(), "session-1", 30*time.Second)
	require.NoError(t, err)

	conn := dialGateway(t, h)
	wsWriteJSON(t, conn, map[string]string{"token": token})
	msg, err := wsRead(t, conn)
	require.NoError(t, err)
	require.Equal(t, "connected", msg["type"])

	h.hub.Broadcast("axis_jobs", []byte(`{"type":"status","jobId":"job-1","status":"executing"}`))

	msg, err = wsRead(t, conn)
	require.NoError(t, err)
	assert.Equal(t, "status", msg["type"])
	assert.Equal(t, "job-1", msg["jobId"])
}
