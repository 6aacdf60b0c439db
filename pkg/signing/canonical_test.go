package signing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalJSON(t *testing.T) {
	t.Run("object keys are sorted at every depth", func(t *testing.T) {
		got, err := CanonicalJSON(map[string]any{
			"zebra": 1,
			"alpha": map[string]any{"c": true, "a": nil, "b": []any{"x"}},
		})
		require.NoError(t, err)
		assert.Equal(t, `{"alpha":{"a":null,"b":["x"],"c":true},"zebra":1}`, string(got))
	})

	t.Run("array order is preserved", func(t *testing.T) {
		got, err := CanonicalJSON([]any{3, 1, 2})
		require.NoError(t, err)
		assert.Equal(t, `[3,1,2]`, string(got))
	})

	t.Run("numbers keep their shortest form", func(t *testing.T) {
		got, err := CanonicalJSON(map[string]any{
			"int":   42,
			"float": 1.5,
			"big":   1e21,
		})
		require.NoError(t, err)
		assert.Equal(t, `{"big":1e+21,"float":1.5,"int":42}`, string(got))
	})

	t.Run("strings are NFC normalized", func(t *testing.T) {
		composed, err := CanonicalJSON(map[string]any{"name": "café"})
		require.NoError(t, err)
		decomposed, err := CanonicalJSON(map[string]any{"name": "café"})
		require.NoError(t, err)
		assert.Equal(t, string(composed), string(decomposed))
	})

	t.Run("struct input goes through json tags", func(t *testing.T) {
		in := struct {
			B string `json:"b"`
			A int    `json:"a"`
		}{B: "hi", A: 7}

		got, err := CanonicalJSON(in)
		require.NoError(t, err)
		assert.Equal(t, `{"a":7,"b":"hi"}`, string(got))
	})

	t.Run("equal maps built in different order canonicalize identically", func(t *testing.T) {
		a := map[string]any{"x": 1, "y": []any{map[string]any{"k": "v"}}}
		b := map[string]any{"y": []any{map[string]any{"k": "v"}}, "x": 1}

		ca, err := CanonicalJSON(a)
		require.NoError(t, err)
		cb, err := CanonicalJSON(b)
		require.NoError(t, err)
		assert.Equal(t, ca, cb)
	})
}

func TestSignableBytes(t *testing.T) {
	t.Run("strips top-level metadata only", func(t *testing.T) {
		body := []byte(`{"type":"plan.request","metadata":{"timeoutMs":5000},"payload":{"metadata":"kept"}}`)

		got, err := SignableBytes(body)
		require.NoError(t, err)
		assert.Equal(t, `{"payload":{"metadata":"kept"},"type":"plan.request"}`, string(got))
	})

	t.Run("rejects non-object bodies", func(t *testing.T) {
		_, err := SignableBytes([]byte(`[1,2,3]`))
		require.Error(t, err)
	})
}
