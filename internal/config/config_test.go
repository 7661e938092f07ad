package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willjrcristo/moneyquest-api/internal/pricing"
	"github.com/willjrcristo/moneyquest-api/internal/region"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STRIPE_PRICE_BRL_YEARLY", "price_live_brl_y")
	t.Setenv("ADSENSE_SLOTS", "blog_inline=111, sidebar = 222 ,quebrado")
	t.Setenv("ADSENSE_CLIENT_ID", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "./moneyquest.db", cfg.DBPath)
	assert.Equal(t, "price_live_brl_y", cfg.PriceIDs[region.BRL][pricing.Yearly])
	assert.Empty(t, cfg.PriceIDs[region.USD])
	assert.Equal(t, map[string]string{"blog_inline": "111", "sidebar": "222"}, cfg.AdSlots)
	assert.Empty(t, cfg.AdClientID)
}

func TestLoadConfig_JWTSecret(t *testing.T) {
	t.Run("sem JWT_SECRET usa o segredo de desenvolvimento", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.True(t, cfg.UsingDefaultJWTSecret())
	})

	t.Run("segredo definido", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "um-segredo-de-verdade")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.False(t, cfg.UsingDefaultJWTSecret())
		assert.Equal(t, "um-segredo-de-verdade", cfg.JWTSecret)
	})
}
