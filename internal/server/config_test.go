package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pointsync/pointsync/internal/core/protocol"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
listen_addr: "0.0.0.0:9000"
transport: quic
tick_interval: 100ms
auth:
  username: alice
  password: secret
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", config.ListenAddr)
	assert.Equal(t, protocol.TransportQUIC, config.Transport)
	assert.Equal(t, Duration(100*time.Millisecond), config.TickInterval)
	assert.Equal(t, "alice", config.Auth.Username)
	assert.Equal(t, "secret", config.Auth.Password)

	// Untouched fields keep their defaults.
	assert.Equal(t, Duration(5*time.Second), config.DisconnectTimeout)
	assert.Equal(t, uint16(8), config.MoveStep)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"empty listen addr", func(c *Config) { c.ListenAddr = "" }, ErrInvalidConfig},
		{"bad transport", func(c *Config) { c.Transport = "carrier-pigeon" }, ErrUnknownTransport},
		{"zero max clients", func(c *Config) { c.MaxClients = 0 }, ErrInvalidConfig},
		{"zero tick interval", func(c *Config) { c.TickInterval = 0 }, ErrInvalidConfig},
		{"zero disconnect timeout", func(c *Config) { c.DisconnectTimeout = 0 }, ErrInvalidConfig},
		{"zero move step", func(c *Config) { c.MoveStep = 0 }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)
			assert.ErrorIs(t, config.Validate(), tt.want)
		})
	}
}
