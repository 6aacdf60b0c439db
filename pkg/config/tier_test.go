package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidTier(t *testing.T) {
	assert.True(t, ValidTier(TierPi))
	assert.True(t, ValidTier(TierDesktop))
	assert.True(t, ValidTier(TierVPS))
	assert.False(t, ValidTier(""))
	assert.False(t, ValidTier("mainframe"))
}

func TestDefaultConfigPerTier(t *testing.T) {
	tests := []struct {
		tier            string
		workers         int
		enableContainer bool
	}{
		{TierPi, 1, false},
		{TierDesktop, 2, true},
		{TierVPS, 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.tier, func(t *testing.T) {
			cfg := DefaultConfig(tt.tier)

			assert.Equal(t, tt.tier, cfg.Tier)
			assert.Equal(t, tt.workers, cfg.Queue.WorkerCount)
			assert.Equal(t, tt.enableContainer, cfg.Sandbox.EnableContainer)

			// Every tier must pass its own validation out of the box.
			require.NoError(t, NewValidator(cfg).ValidateAll())
		})
	}
}

func TestDetectTier(t *testing.T) {
	// Detection depends on the host; it just has to land on a valid tier.
	assert.True(t, ValidTier(DetectTier()))
}
