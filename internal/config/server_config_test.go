package config_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stellar/go-stellar-sdk/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-invoker/internal/config"
)

func TestPrintServiceEnv(t *testing.T) {
	config := config.DefaultServiceConfigFromEnv()
	_, err := json.MarshalIndent(config, "", "  ")

	if err != nil {
		t.Fatal(err)
	}
}

func TestDefaultServiceConfigFromEnv(t *testing.T) {
	t.Setenv("RPC_URL", "http://rpc.local")
	t.Setenv("RPC_RATE_LIMIT", "12.5")
	t.Setenv("INVOKE_CALL_TIMEOUT", "5s")
	t.Setenv("INVOKE_RETRY_NOT_FOUND", "false")
	t.Setenv("LOGGER_LEVEL", "debug")
	t.Setenv("INVOKER_SOURCE_SECRET", "SSECRET")

	cfg := config.DefaultServiceConfigFromEnv()

	assert.Equal(t, "http://rpc.local", cfg.RPC.URL)
	assert.InDelta(t, 12.5, cfg.RPC.RateLimit, 0.001)
	assert.Equal(t, 5*time.Second, cfg.Invoke.CallTimeout)
	assert.False(t, cfg.Invoke.RetryNotFound)
	assert.Equal(t, zerolog.DebugLevel, cfg.Logger.Level)

	b, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "SSECRET")
}

func TestDefaultServiceConfigDefaults(t *testing.T) {
	t.Setenv("NETWORK_PASSPHRASE", "")
	t.Setenv("INVOKE_DEFAULT_TIMEOUT", "")

	cfg := config.DefaultServiceConfigFromEnv()

	assert.Equal(t, network.TestNetworkPassphrase, cfg.Network.Passphrase)
	assert.Equal(t, 60*time.Second, cfg.Invoke.DefaultTimeout)
	assert.Equal(t, 2*time.Second, cfg.Invoke.PollStep)
}
