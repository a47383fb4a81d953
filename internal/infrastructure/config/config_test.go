package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
node:
  id: "vr-den"
  name: "Den VR"
mqtt:
  host: "broker.local"
  transport: "tcp"
bridge:
  topic_prefix: "vr-status"
  poll_interval_ms: 500
database:
  path: "/tmp/test-catalog.db"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "vrbridge.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Node.ID != "vr-den" {
		t.Errorf("Node.ID = %q, want %q", cfg.Node.ID, "vr-den")
	}

	if cfg.MQTT.Host != "broker.local" {
		t.Errorf("MQTT.Host = %q, want %q", cfg.MQTT.Host, "broker.local")
	}

	if cfg.Bridge.PollIntervalMs != 500 {
		t.Errorf("Bridge.PollIntervalMs = %d, want 500", cfg.Bridge.PollIntervalMs)
	}

	// Client id follows node id when not set explicitly.
	if cfg.MQTT.ClientID != "vr-den" {
		t.Errorf("MQTT.ClientID = %q, want %q", cfg.MQTT.ClientID, "vr-den")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/vrbridge.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "vrbridge.yaml")
	if err := os.WriteFile(configPath, []byte("mqtt: [host: oops"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
node:
  id: ""
mqtt:
  host: "broker.local"
database:
  path: "/tmp/test-catalog.db"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "vrbridge.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty node.id, got nil")
	}
}

func validTestConfig() *Config {
	cfg := defaultConfig()
	cfg.MQTT.Host = "broker.local"
	cfg.MQTT.ClientID = cfg.Node.ID
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing mqtt host",
			mutate:  func(c *Config) { c.MQTT.Host = "" },
			wantErr: true,
		},
		{
			name:    "bad transport",
			mutate:  func(c *Config) { c.MQTT.Transport = "udp" },
			wantErr: true,
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "node id with wildcard",
			mutate:  func(c *Config) { c.Node.ID = "vr+bridge" },
			wantErr: true,
		},
		{
			name:    "node id with slash",
			mutate:  func(c *Config) { c.Node.ID = "vr/bridge" },
			wantErr: true,
		},
		{
			name:    "empty topic prefix",
			mutate:  func(c *Config) { c.Bridge.TopicPrefix = "" },
			wantErr: true,
		},
		{
			name:    "topic prefix trailing slash",
			mutate:  func(c *Config) { c.Bridge.TopicPrefix = "vr-status/" },
			wantErr: true,
		},
		{
			name:    "empty discovery prefix is allowed",
			mutate:  func(c *Config) { c.Bridge.DiscoveryPrefix = "" },
			wantErr: false,
		},
		{
			name:    "poll interval too small",
			mutate:  func(c *Config) { c.Bridge.PollIntervalMs = 10 },
			wantErr: true,
		},
		{
			name:    "negative battery tolerance",
			mutate:  func(c *Config) { c.Bridge.BatteryTolerance = -1 },
			wantErr: true,
		},
		{
			name:    "zero retry attempts",
			mutate:  func(c *Config) { c.Bridge.PublishRetry.MaxAttempts = 0 },
			wantErr: true,
		},
		{
			name: "max backoff below initial",
			mutate: func(c *Config) {
				c.Bridge.PublishRetry.InitialBackoffMs = 1000
				c.Bridge.PublishRetry.MaxBackoffMs = 500
			},
			wantErr: true,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: true,
		},
		{
			name: "reconnect max below initial",
			mutate: func(c *Config) {
				c.MQTT.Reconnect.InitialDelay = 30
				c.MQTT.Reconnect.MaxDelay = 5
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("VRBRIDGE_DATABASE_PATH", "/custom/catalog.db")
	t.Setenv("VRBRIDGE_MQTT_HOST", "mqtt.example.com")
	t.Setenv("VRBRIDGE_MQTT_USERNAME", "vruser")
	t.Setenv("VRBRIDGE_MQTT_PASSWORD", "vrpass")

	applyEnvOverrides(cfg)

	if cfg.Database.Path != "/custom/catalog.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/catalog.db")
	}

	if cfg.MQTT.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Host = %q, want %q", cfg.MQTT.Host, "mqtt.example.com")
	}

	if cfg.MQTT.Auth.Username != "vruser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "vruser")
	}

	if cfg.MQTT.Auth.Password != "vrpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "vrpass")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Node.ID == "" {
		t.Error("defaultConfig should have non-empty Node.ID")
	}

	if cfg.Bridge.TopicPrefix != "vr-status" {
		t.Errorf("defaultConfig Bridge.TopicPrefix = %q, want %q", cfg.Bridge.TopicPrefix, "vr-status")
	}

	if cfg.Bridge.BatteryTolerance != 5.0 {
		t.Errorf("defaultConfig Bridge.BatteryTolerance = %v, want 5.0", cfg.Bridge.BatteryTolerance)
	}

	if !cfg.Bridge.RetainState {
		t.Error("defaultConfig should retain state publishes")
	}

	if cfg.MQTT.Transport != "tls" {
		t.Errorf("defaultConfig MQTT.Transport = %q, want %q", cfg.MQTT.Transport, "tls")
	}
}

func TestMQTTConfig_EffectivePort(t *testing.T) {
	tests := []struct {
		name      string
		port      int
		transport string
		want      int
	}{
		{name: "explicit port wins", port: 1900, transport: "tls", want: 1900},
		{name: "tls default", port: 0, transport: "tls", want: 8883},
		{name: "tcp default", port: 0, transport: "tcp", want: 1883},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := MQTTConfig{Port: tt.port, Transport: tt.transport}
			if got := m.EffectivePort(); got != tt.want {
				t.Errorf("EffectivePort() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDurationGetters(t *testing.T) {
	cfg := &Config{
		MQTT: MQTTConfig{
			KeepAlive: 45,
			Reconnect: MQTTReconnectConfig{InitialDelay: 2, MaxDelay: 120},
		},
		Bridge: BridgeConfig{
			PollIntervalMs: 250,
			PublishRetry:   RetryConfig{InitialBackoffMs: 500, MaxBackoffMs: 60000},
		},
		VR: VRConfig{CaptureTimeoutMs: 1500},
	}

	if got := cfg.MQTT.GetKeepAlive(); got != 45*time.Second {
		t.Errorf("GetKeepAlive() = %v, want 45s", got)
	}

	if got := cfg.MQTT.GetReconnectMaxDelay(); got != 2*time.Minute {
		t.Errorf("GetReconnectMaxDelay() = %v, want 2m", got)
	}

	if got := cfg.Bridge.GetPollInterval(); got != 250*time.Millisecond {
		t.Errorf("GetPollInterval() = %v, want 250ms", got)
	}

	if got := cfg.Bridge.PublishRetry.GetInitialBackoff(); got != 500*time.Millisecond {
		t.Errorf("GetInitialBackoff() = %v, want 500ms", got)
	}

	if got := cfg.VR.GetCaptureTimeout(); got != 1500*time.Millisecond {
		t.Errorf("GetCaptureTimeout() = %v, want 1.5s", got)
	}
}
