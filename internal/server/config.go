package server

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pointsync/pointsync/internal/core/protocol"
)

// Duration is a time.Duration that YAML-decodes from strings like
// "50ms" as well as integer nanoseconds.
type Duration time.Duration

// Std returns the value as a standard time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return fmt.Errorf("invalid duration %q: %w", s, perr)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := node.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration %q", node.Value)
	}
	*d = Duration(n)
	return nil
}

// AuthConfig is the static credential the server accepts.
type AuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Config holds server configuration. It is fixed at startup; there is
// no runtime reconfiguration.
type Config struct {
	// Network settings
	ListenAddr string                 `yaml:"listen_addr"`
	Transport  protocol.TransportKind `yaml:"transport"`
	MaxClients int                    `yaml:"max_clients"`

	// Timing. HeartbeatInterval is the cadence clients are expected to
	// send traffic at; a connection silent for DisconnectTimeout is
	// treated as gone.
	TickInterval      Duration `yaml:"tick_interval"`
	HeartbeatInterval Duration `yaml:"heartbeat_interval"`
	DisconnectTimeout Duration `yaml:"disconnect_timeout"`

	// World settings
	MoveStep uint16 `yaml:"move_step"`

	// DestroyPawnOnDisconnect controls whether a disconnecting user's
	// pawn entity is deregistered (true) or left in its rooms unowned.
	DestroyPawnOnDisconnect bool `yaml:"destroy_pawn_on_disconnect"`

	// Auth is the single static credential gate.
	Auth AuthConfig `yaml:"auth"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		ListenAddr:              "127.0.0.1:14191",
		Transport:               protocol.TransportWebSocket,
		MaxClients:              64,
		TickInterval:            Duration(50 * time.Millisecond),
		HeartbeatInterval:       Duration(2 * time.Second),
		DisconnectTimeout:       Duration(5 * time.Second),
		MoveStep:                8,
		DestroyPawnOnDisconnect: true,
		Auth:                    AuthConfig{Username: "charlie", Password: "12345"},
		LogLevel:                "info",
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, config.Validate()
}

// Validate checks the configuration for values the server cannot run
// with.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen_addr must be set", ErrInvalidConfig)
	}
	switch c.Transport {
	case protocol.TransportWebSocket, protocol.TransportQUIC:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTransport, c.Transport)
	}
	if c.MaxClients <= 0 {
		return fmt.Errorf("%w: max_clients must be positive", ErrInvalidConfig)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick_interval must be positive", ErrInvalidConfig)
	}
	if c.DisconnectTimeout <= 0 {
		return fmt.Errorf("%w: disconnect_timeout must be positive", ErrInvalidConfig)
	}
	if c.HeartbeatInterval > 0 && c.DisconnectTimeout <= c.HeartbeatInterval {
		return fmt.Errorf("%w: disconnect_timeout must exceed heartbeat_interval", ErrInvalidConfig)
	}
	if c.MoveStep == 0 {
		return fmt.Errorf("%w: move_step must be positive", ErrInvalidConfig)
	}
	return nil
}
