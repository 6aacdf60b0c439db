package sandbox

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/models"
)

func TestIsolateSandboxRoundTrip(t *testing.T) {
	key := testKey(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s := spawnIsolate(ctx, func(ctx context.Context, action string, params map[string]any) (map[string]any, error) {
		return map[string]any{"action": action, "text": params["text"]}, nil
	}, key, 0, 0)

	require.NoError(t, s.conn().send(&requestFrame{
		CorrelationID: "corr-1",
		Action:        "say",
		Parameters:    map[string]any{"text": "hi"},
	}))

	frame, err := s.conn().next()
	require.NoError(t, err)
	assert.Equal(t, "corr-1", frame.CorrelationID)
	assert.Equal(t, "say", frame.Result["action"])
	assert.Equal(t, "hi", frame.Result["text"])

	s.stop()
	select {
	case <-s.done():
	case <-time.After(2 * time.Second):
		t.Fatal("isolate did not exit after stop")
	}
}

func TestIsolateSandboxStructuredError(t *testing.T) {
	key := testKey(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := spawnIsolate(ctx, func(context.Context, string, map[string]any) (map[string]any, error) {
		return nil, models.NewAgentError(models.CodeRateLimit, "slow down")
	}, key, 0, 0)
	defer s.kill()

	require.NoError(t, s.conn().send(&requestFrame{CorrelationID: "corr-1", Action: "x"}))

	frame, err := s.conn().next()
	require.NoError(t, err)
	require.NotNil(t, frame.Error)
	assert.Equal(t, models.CodeRateLimit, frame.Error.Code)
	assert.Equal(t, "slow down", frame.Error.Message)
}

func TestIsolateSandboxPlainError(t *testing.T) {
	key := testKey(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := spawnIsolate(ctx, func(context.Context, string, map[string]any) (map[string]any, error) {
		return nil, errors.New("kaput")
	}, key, 0, 0)
	defer s.kill()

	require.NoError(t, s.conn().send(&requestFrame{CorrelationID: "corr-1", Action: "x"}))

	frame, err := s.conn().next()
	require.NoError(t, err)
	require.NotNil(t, frame.Error)
	assert.Empty(t, frame.Error.Code)
	assert.Equal(t, "kaput", frame.Error.Message)
}

func TestIsolateKillUnblocksStuckBuiltin(t *testing.T) {
	key := testKey(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := spawnIsolate(ctx, func(ctx context.Context, _ string, _ map[string]any) (map[string]any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, key, 0, 0)

	require.NoError(t, s.conn().send(&requestFrame{CorrelationID: "corr-1", Action: "hang"}))

	s.kill()
	select {
	case <-s.done():
	case <-time.After(2 * time.Second):
		t.Fatal("isolate did not exit after kill")
	}
}

func TestRunBuiltinDropsMisSignedRequests(t *testing.T) {
	key := testKey(t)

	unsigned, err := json.Marshal(&requestFrame{CorrelationID: "bad", Action: "say"})
	require.NoError(t, err)
	signed, err := marshalSigned(key, &requestFrame{CorrelationID: "good", Action: "say"})
	require.NoError(t, err)

	input := string(unsigned) + "\n" + string(signed) + "\n"
	var out bytes.Buffer
	runBuiltin(context.Background(), func(context.Context, string, map[string]any) (map[string]any, error) {
		return map[string]any{"ok": true}, nil
	}, key, strings.NewReader(input), &out)

	var ids []string
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var frame pluginFrame
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &frame))
		ids = append(ids, frame.CorrelationID)
	}
	assert.Equal(t, []string{"good"}, ids)
}

func TestRunBuiltinSignsResponses(t *testing.T) {
	key := testKey(t)
	signed, err := marshalSigned(key, &requestFrame{CorrelationID: "corr-1", Action: "say"})
	require.NoError(t, err)

	var out bytes.Buffer
	runBuiltin(context.Background(), func(context.Context, string, map[string]any) (map[string]any, error) {
		return map[string]any{"ok": true}, nil
	}, key, strings.NewReader(string(signed)+"\n"), &out)

	line := bytes.TrimSpace(out.Bytes())
	var obj map[string]any
	require.NoError(t, json.Unmarshal(line, &obj))
	sig, _ := obj["hmac"].(string)
	assert.True(t, verifyObject(key, obj, sig))
}
