package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ETH_RPC_URLS", "mainnet=https://rpc.example.com")
	t.Setenv("ASSETS_FILE", "/etc/annotary/assets.json")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, map[string]string{"mainnet": "https://rpc.example.com"}, cfg.RPCURLs)
	assert.Equal(t, "/etc/annotary/assets.json", cfg.AssetsFile)
	assert.Empty(t, cfg.AddressBookFile)
	assert.Equal(t, 2, cfg.DisplayDecimals)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("NATS_URL", "nats://broker:4222")
	t.Setenv("ETH_RPC_URLS", "mainnet=https://a.example.com, sepolia=https://b.example.com")
	t.Setenv("ADDRESS_BOOK_FILE", "/etc/annotary/names.json")
	t.Setenv("DISPLAY_DECIMALS", "6")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "nats://broker:4222", cfg.NATSURL)
	assert.Equal(t, map[string]string{
		"mainnet": "https://a.example.com",
		"sepolia": "https://b.example.com",
	}, cfg.RPCURLs)
	assert.Equal(t, "/etc/annotary/names.json", cfg.AddressBookFile)
	assert.Equal(t, 6, cfg.DisplayDecimals)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("ETH_RPC_URLS", "")
	t.Setenv("ASSETS_FILE", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ETH_RPC_URLS")
	assert.Contains(t, err.Error(), "ASSETS_FILE")
}

func TestLoadInvalidRPCURLs(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ETH_RPC_URLS", "mainnet")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want network=url")
}

func TestLoadInvalidDisplayDecimals(t *testing.T) {
	setRequiredEnv(t)

	t.Run("not an integer", func(t *testing.T) {
		t.Setenv("DISPLAY_DECIMALS", "two")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("negative", func(t *testing.T) {
		t.Setenv("DISPLAY_DECIMALS", "-1")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := &Config{
		NATSURL:         "nats://localhost:4222",
		RPCURLs:         map[string]string{"mainnet": "https://rpc.example.com"},
		AssetsFile:      "/etc/annotary/assets.json",
		DisplayDecimals: 2,
	}
	assert.NoError(t, valid.Validate())

	t.Run("missing NATS URL", func(t *testing.T) {
		cfg := *valid
		cfg.NATSURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing RPC URLs", func(t *testing.T) {
		cfg := *valid
		cfg.RPCURLs = nil
		assert.Error(t, cfg.Validate())
	})

	t.Run("blank RPC URL entry", func(t *testing.T) {
		cfg := *valid
		cfg.RPCURLs = map[string]string{"mainnet": ""}
		assert.Error(t, cfg.Validate())
	})
}
