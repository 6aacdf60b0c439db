package sandbox

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := newHMACKey()
	require.NoError(t, err)
	require.Len(t, key, hmacKeyBytes)
	return key
}

func TestNewHMACKeyIsUnique(t *testing.T) {
	a := testKey(t)
	b := testKey(t)
	assert.NotEqual(t, a, b)
}

func TestMarshalSignedRoundTrip(t *testing.T) {
	key := testKey(t)
	line, err := marshalSigned(key, &requestFrame{
		CorrelationID: "corr-1",
		Action:        "read_file",
		Parameters:    map[string]any{"path": "docs/a.txt", "limit": 3},
	})
	require.NoError(t, err)

	var obj map[string]any
	require.NoError(t, json.Unmarshal(line, &obj))
	var req requestFrame
	require.NoError(t, json.Unmarshal(line, &req))

	assert.NotEmpty(t, req.HMAC)
	assert.True(t, verifyObject(key, obj, req.HMAC))
	assert.Equal(t, "corr-1", req.CorrelationID)
	assert.Equal(t, "read_file", req.Action)
	assert.Equal(t, "docs/a.txt", req.Parameters["path"])
}

func TestVerifyObjectRejectsTampering(t *testing.T) {
	key := testKey(t)
	line, err := marshalSigned(key, &pluginFrame{
		CorrelationID: "corr-1",
		Result:        map[string]any{"ok": true},
	})
	require.NoError(t, err)

	var obj map[string]any
	require.NoError(t, json.Unmarshal(line, &obj))
	sig, _ := obj["hmac"].(string)
	require.NotEmpty(t, sig)

	obj["result"] = map[string]any{"ok": false}
	assert.False(t, verifyObject(key, obj, sig))
}

func TestVerifyObjectRejectsEmptySignature(t *testing.T) {
	key := testKey(t)
	obj := map[string]any{"correlationId": "corr-1", "result": map[string]any{}}
	assert.False(t, verifyObject(key, obj, ""))
}

func TestVerifyObjectRejectsWrongKey(t *testing.T) {
	key := testKey(t)
	line, err := marshalSigned(key, &pluginFrame{CorrelationID: "corr-1"})
	require.NoError(t, err)

	var obj map[string]any
	require.NoError(t, json.Unmarshal(line, &obj))
	sig, _ := obj["hmac"].(string)

	other := testKey(t)
	assert.False(t, verifyObject(other, obj, sig))
}

func TestObjectDigestIgnoresInsertionOrder(t *testing.T) {
	key := testKey(t)

	first := map[string]any{}
	first["zeta"] = "z"
	first["alpha"] = 1
	first["nested"] = map[string]any{"b": 2, "a": 1}

	second := map[string]any{}
	second["nested"] = map[string]any{"a": 1, "b": 2}
	second["alpha"] = 1
	second["zeta"] = "z"

	d1, err := objectDigest(key, first)
	require.NoError(t, err)
	d2, err := objectDigest(key, second)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}
