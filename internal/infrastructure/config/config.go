package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the VR bridge.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Node     NodeConfig     `yaml:"node"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Bridge   BridgeConfig   `yaml:"bridge"`
	VR       VRConfig       `yaml:"vr"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// NodeConfig identifies this bridge instance.
// The ID is used as the MQTT client id and as the node segment of every
// published topic, so it must be topic-safe.
type NodeConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Host string `yaml:"host"`

	// Port selects the broker port. 0 derives the port from the
	// transport: 1883 for tcp, 8883 for tls.
	Port int `yaml:"port"`

	// Transport is "tcp" or "tls". Defaults to "tls".
	Transport string `yaml:"transport"`

	// ClientID defaults to node.id when empty.
	ClientID string `yaml:"client_id"`

	Auth MQTTAuthConfig `yaml:"auth"`

	QoS int `yaml:"qos"`

	// KeepAlive is the MQTT keepalive interval in seconds.
	KeepAlive int `yaml:"keep_alive"`

	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection backoff settings (seconds).
// Reconnection never gives up; MaxDelay caps the backoff curve.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// BridgeConfig contains the observation and publication settings.
type BridgeConfig struct {
	// TopicPrefix is the root of all state topics:
	// <topic_prefix>/<node.id>/<entity>/<attribute>
	TopicPrefix string `yaml:"topic_prefix"`

	// DiscoveryPrefix is the Home Assistant discovery root.
	// Empty string disables discovery publishing entirely.
	DiscoveryPrefix string `yaml:"discovery_prefix"`

	// PollIntervalMs is the tick interval in milliseconds.
	PollIntervalMs int `yaml:"poll_interval_ms"`

	// RetainState controls whether state publishes are retained.
	// Discovery and availability publishes are always retained.
	RetainState bool `yaml:"retain_state"`

	// BatteryTolerance suppresses battery changes smaller than this many
	// percentage points, avoiding publish storms from reporting jitter.
	BatteryTolerance float64 `yaml:"battery_tolerance"`

	PublishRetry RetryConfig `yaml:"publish_retry"`
}

// RetryConfig bounds the publish retry loop.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts per publish (first try
	// included).
	MaxAttempts int `yaml:"max_attempts"`

	// InitialBackoffMs is the delay before the second attempt; the delay
	// doubles per attempt up to MaxBackoffMs.
	InitialBackoffMs int `yaml:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms"`
}

// VRConfig contains VR runtime integration settings.
type VRConfig struct {
	// ManifestPath is the application manifest registered with the
	// runtime. Empty resolves to vr-bridge.vrmanifest beside the
	// executable.
	ManifestPath string `yaml:"manifest_path"`

	// AutoLaunch asks the runtime to start the bridge with itself.
	AutoLaunch bool `yaml:"auto_launch"`

	// CaptureTimeoutMs bounds one snapshot read of the runtime.
	CaptureTimeoutMs int `yaml:"capture_timeout_ms"`
}

// DatabaseConfig contains SQLite identity-catalog settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: VRBRIDGE_SECTION_KEY
// For example: VRBRIDGE_MQTT_HOST, VRBRIDGE_DATABASE_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	// The client id follows the node id unless set explicitly.
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = cfg.Node.ID
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Node: NodeConfig{
			ID:   "vrbridge",
			Name: "VR Bridge",
		},
		MQTT: MQTTConfig{
			Transport: "tls",
			QoS:       1,
			KeepAlive: 30,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Bridge: BridgeConfig{
			TopicPrefix:      "vr-status",
			DiscoveryPrefix:  "homeassistant",
			PollIntervalMs:   1000,
			RetainState:      true,
			BatteryTolerance: 5.0,
			PublishRetry: RetryConfig{
				MaxAttempts:      5,
				InitialBackoffMs: 500,
				MaxBackoffMs:     60000,
			},
		},
		VR: VRConfig{
			AutoLaunch:       true,
			CaptureTimeoutMs: 2000,
		},
		Database: DatabaseConfig{
			Path:        "./data/vrbridge.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: VRBRIDGE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("VRBRIDGE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("VRBRIDGE_MQTT_HOST"); v != "" {
		cfg.MQTT.Host = v
	}
	if v := os.Getenv("VRBRIDGE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("VRBRIDGE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
}

// topicSafe reports whether s can appear as a literal topic segment prefix:
// no wildcards, no empty segments at the ends.
func topicSafe(s string) bool {
	if strings.ContainsAny(s, "#+ ") {
		return false
	}
	if strings.HasPrefix(s, "/") || strings.HasSuffix(s, "/") {
		return false
	}
	return true
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Node validation
	if c.Node.ID == "" {
		errs = append(errs, "node.id is required")
	} else if !topicSafe(c.Node.ID) || strings.Contains(c.Node.ID, "/") {
		errs = append(errs, "node.id must not contain /, +, #, or spaces")
	}

	// MQTT validation
	if c.MQTT.Host == "" {
		errs = append(errs, "mqtt.host is required")
	}
	if c.MQTT.Transport != "tcp" && c.MQTT.Transport != "tls" {
		errs = append(errs, "mqtt.transport must be tcp or tls")
	}
	if c.MQTT.Port < 0 || c.MQTT.Port > 65535 {
		errs = append(errs, "mqtt.port must be between 0 and 65535 (0 derives from transport)")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.KeepAlive < 1 {
		errs = append(errs, "mqtt.keep_alive must be at least 1 second")
	}
	if c.MQTT.Reconnect.InitialDelay < 1 {
		errs = append(errs, "mqtt.reconnect.initial_delay must be at least 1 second")
	}
	if c.MQTT.Reconnect.MaxDelay < c.MQTT.Reconnect.InitialDelay {
		errs = append(errs, "mqtt.reconnect.max_delay must be >= initial_delay")
	}

	// Bridge validation
	if c.Bridge.TopicPrefix == "" {
		errs = append(errs, "bridge.topic_prefix is required")
	} else if !topicSafe(c.Bridge.TopicPrefix) {
		errs = append(errs, "bridge.topic_prefix must not contain wildcards or leading/trailing slashes")
	}
	if c.Bridge.DiscoveryPrefix != "" && !topicSafe(c.Bridge.DiscoveryPrefix) {
		errs = append(errs, "bridge.discovery_prefix must not contain wildcards or leading/trailing slashes")
	}
	if c.Bridge.PollIntervalMs < 100 {
		errs = append(errs, "bridge.poll_interval_ms must be at least 100")
	}
	if c.Bridge.BatteryTolerance < 0 || c.Bridge.BatteryTolerance >= 100 {
		errs = append(errs, "bridge.battery_tolerance must be in [0, 100)")
	}
	if c.Bridge.PublishRetry.MaxAttempts < 1 {
		errs = append(errs, "bridge.publish_retry.max_attempts must be at least 1")
	}
	if c.Bridge.PublishRetry.InitialBackoffMs < 1 {
		errs = append(errs, "bridge.publish_retry.initial_backoff_ms must be at least 1")
	}
	if c.Bridge.PublishRetry.MaxBackoffMs < c.Bridge.PublishRetry.InitialBackoffMs {
		errs = append(errs, "bridge.publish_retry.max_backoff_ms must be >= initial_backoff_ms")
	}

	// VR validation
	if c.VR.CaptureTimeoutMs < 100 {
		errs = append(errs, "vr.capture_timeout_ms must be at least 100")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// EffectivePort returns the configured port, or the conventional port for
// the transport when the port is 0.
func (m MQTTConfig) EffectivePort() int {
	if m.Port != 0 {
		return m.Port
	}
	if m.Transport == "tls" {
		return 8883
	}
	return 1883
}

// GetKeepAlive returns the keepalive interval as a Duration.
func (m MQTTConfig) GetKeepAlive() time.Duration {
	return time.Duration(m.KeepAlive) * time.Second
}

// GetReconnectInitialDelay returns the first reconnect delay as a Duration.
func (m MQTTConfig) GetReconnectInitialDelay() time.Duration {
	return time.Duration(m.Reconnect.InitialDelay) * time.Second
}

// GetReconnectMaxDelay returns the reconnect backoff ceiling as a Duration.
func (m MQTTConfig) GetReconnectMaxDelay() time.Duration {
	return time.Duration(m.Reconnect.MaxDelay) * time.Second
}

// GetPollInterval returns the tick interval as a Duration.
func (b BridgeConfig) GetPollInterval() time.Duration {
	return time.Duration(b.PollIntervalMs) * time.Millisecond
}

// GetInitialBackoff returns the first retry delay as a Duration.
func (r RetryConfig) GetInitialBackoff() time.Duration {
	return time.Duration(r.InitialBackoffMs) * time.Millisecond
}

// GetMaxBackoff returns the retry delay ceiling as a Duration.
func (r RetryConfig) GetMaxBackoff() time.Duration {
	return time.Duration(r.MaxBackoffMs) * time.Millisecond
}

// GetCaptureTimeout returns the snapshot capture budget as a Duration.
func (v VRConfig) GetCaptureTimeout() time.Duration {
	return time.Duration(v.CaptureTimeoutMs) * time.Millisecond
}
