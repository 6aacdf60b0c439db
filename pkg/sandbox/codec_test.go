package sandbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedLine(t *testing.T, key []byte, frame any) string {
	t.Helper()
	line, err := marshalSigned(key, frame)
	require.NoError(t, err)
	return string(line) + "\n"
}

func TestFrameConnSendWritesVerifiableLine(t *testing.T) {
	key := testKey(t)
	var out bytes.Buffer
	fc := newFrameConn(key, strings.NewReader(""), &out, 0, 0)

	require.NoError(t, fc.send(&requestFrame{
		CorrelationID: "corr-1",
		Action:        "say",
		Parameters:    map[string]any{"text": "hi"},
	}))

	line := bytes.TrimSpace(out.Bytes())
	var obj map[string]any
	require.NoError(t, json.Unmarshal(line, &obj))
	sig, _ := obj["hmac"].(string)
	assert.True(t, verifyObject(key, obj, sig))
}

func TestFrameConnNextReturnsSignedResponse(t *testing.T) {
	key := testKey(t)
	input := signedLine(t, key, &pluginFrame{
		CorrelationID: "corr-1",
		Result:        map[string]any{"ok": true},
	})
	fc := newFrameConn(key, strings.NewReader(input), io.Discard, 0, 0)

	frame, err := fc.next()
	require.NoError(t, err)
	assert.Equal(t, "corr-1", frame.CorrelationID)
	assert.Equal(t, true, frame.Result["ok"])

	_, err = fc.next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFrameConnNextSkipsGarbage(t *testing.T) {
	key := testKey(t)
	input := "this is not json\n{{{\n" +
		signedLine(t, key, &pluginFrame{CorrelationID: "corr-1"})
	fc := newFrameConn(key, strings.NewReader(input), io.Discard, 0, 0)

	frame, err := fc.next()
	require.NoError(t, err)
	assert.Equal(t, "corr-1", frame.CorrelationID)
}

func TestFrameConnGarbageConsumesRateTokens(t *testing.T) {
	key := testKey(t)
	input := "junk\njunk\njunk\n" +
		signedLine(t, key, &pluginFrame{CorrelationID: "corr-1"})
	// 60/min refills one token a second; the burst of 2 is gone after two
	// garbage lines, so the third line trips the limiter.
	fc := newFrameConn(key, strings.NewReader(input), io.Discard, 60, 2)

	_, err := fc.next()
	assert.ErrorIs(t, err, errFrameRate)
}

func TestFrameConnBlankLinesAreFree(t *testing.T) {
	key := testKey(t)
	input := "\n\n\n" + signedLine(t, key, &pluginFrame{CorrelationID: "corr-1"})
	fc := newFrameConn(key, strings.NewReader(input), io.Discard, 60, 1)

	frame, err := fc.next()
	require.NoError(t, err)
	assert.Equal(t, "corr-1", frame.CorrelationID)
}

func TestFrameConnProgressPassesUnsigned(t *testing.T) {
	key := testKey(t)
	input := `{"type":"progress","percent":42,"message":"working"}` + "\n"
	fc := newFrameConn(key, strings.NewReader(input), io.Discard, 0, 0)

	frame, err := fc.next()
	require.NoError(t, err)
	assert.True(t, frame.isProgress())
	assert.Equal(t, 42.0, frame.Percent)
	assert.Equal(t, "working", frame.Message)
}

func TestFrameConnRejectsUnsignedResponse(t *testing.T) {
	key := testKey(t)
	raw, err := json.Marshal(&pluginFrame{CorrelationID: "corr-1", Result: map[string]any{"ok": true}})
	require.NoError(t, err)
	fc := newFrameConn(key, strings.NewReader(string(raw)+"\n"), io.Discard, 0, 0)

	_, err = fc.next()
	assert.ErrorIs(t, err, errBadSignature)
}

func TestFrameConnRejectsMisSignedResponse(t *testing.T) {
	key := testKey(t)
	wrongKey := testKey(t)
	input := signedLine(t, wrongKey, &pluginFrame{CorrelationID: "corr-1"})
	fc := newFrameConn(key, strings.NewReader(input), io.Discard, 0, 0)

	_, err := fc.next()
	assert.ErrorIs(t, err, errBadSignature)
}

func TestFrameConnEOF(t *testing.T) {
	fc := newFrameConn(testKey(t), strings.NewReader(""), io.Discard, 0, 0)
	_, err := fc.next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFrameConnOversizedLine(t *testing.T) {
	key := testKey(t)
	huge := strings.Repeat("x", maxFrameBytes+1) + "\n"
	fc := newFrameConn(key, strings.NewReader(huge), io.Discard, 0, 0)

	_, err := fc.next()
	require.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))
}
