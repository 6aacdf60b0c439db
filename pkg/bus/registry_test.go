package bus

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisworks/axis/pkg/models"
)

func echoHandler(_ context.Context, msg *Message) (*Message, error) {
	return msg.Reply(msg.Type+".response", msg.Payload), nil
}

func TestRegistry(t *testing.T) {
	t.Run("register and resolve", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register("scout", echoHandler))

		h, ok := r.Handler("scout")
		assert.True(t, ok)
		assert.NotNil(t, h)
		assert.True(t, r.Has("scout"))
		assert.ElementsMatch(t, []string{"scout"}, r.Components())
	})

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register("scout", echoHandler))

		err := r.Register("scout", echoHandler)
		require.Error(t, err)
		ae := models.AsAgentError(err)
		require.NotNil(t, ae)
		assert.Equal(t, models.CodeConflict, ae.Code)
	})

	t.Run("unregister frees the id", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register("gear:timer", echoHandler))

		r.Unregister("gear:timer")
		assert.False(t, r.Has("gear:timer"))
		require.NoError(t, r.Register("gear:timer", echoHandler))
	})

	t.Run("unregistering an absent id is a no-op", func(t *testing.T) {
		r := NewRegistry()
		r.Unregister("ghost")
		assert.Empty(t, r.Components())
	})

	t.Run("lookups stay consistent under concurrent registration", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register("stable", echoHandler))

		var wg sync.WaitGroup
		stop := make(chan struct{})

		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					if _, ok := r.Handler("stable"); !ok {
						t.Error("registered handler disappeared")
						return
					}
				}
			}
		}()

		for i := 0; i < 50; i++ {
			id := string(rune('a' + i%26))
			_ = r.Register(id, echoHandler)
			r.Unregister(id)
		}
		close(stop)
		wg.Wait()
	})
}
