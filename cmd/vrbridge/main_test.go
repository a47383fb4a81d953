package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTestConfig(t *testing.T, dbPath string) string {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.yaml")

	configContent := `
node:
  id: test-node
  name: Test Bridge

mqtt:
  host: "127.0.0.1"
  port: 1883
  transport: tcp
  qos: 1
  keep_alive: 30
  reconnect:
    initial_delay: 1
    max_delay: 5

bridge:
  topic_prefix: vr-status
  discovery_prefix: homeassistant
  poll_interval_ms: 1000
  retain_state: true
  battery_tolerance: 5.0
  publish_retry:
    max_attempts: 5
    initial_backoff_ms: 500
    max_backoff_ms: 60000

vr:
  auto_launch: false
  capture_timeout_ms: 2000

database:
  path: "` + dbPath + `"
  wal_mode: true
  busy_timeout: 5

logging:
  level: info
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	originalEnv := os.Getenv("VRBRIDGE_CONFIG")
	defer os.Setenv("VRBRIDGE_CONFIG", originalEnv)

	os.Setenv("VRBRIDGE_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
	if !strings.Contains(err.Error(), "loading config") {
		t.Errorf("error should name the config stage, got: %v", err)
	}
}

// TestRun_MissingDatabasePath verifies run fails config validation when
// the database path is empty.
func TestRun_MissingDatabasePath(t *testing.T) {
	configPath := writeTestConfig(t, "")

	originalEnv := os.Getenv("VRBRIDGE_CONFIG")
	defer os.Setenv("VRBRIDGE_CONFIG", originalEnv)
	os.Setenv("VRBRIDGE_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

// TestRun_NoRuntime runs a valid config through to runtime init.
// Without a VR runtime on the host, run fails there; with one, it
// blocks until the context deadline and shuts down cleanly. Either way
// the catalog must exist by the time run returns.
func TestRun_NoRuntime(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	configPath := writeTestConfig(t, dbPath)

	originalEnv := os.Getenv("VRBRIDGE_CONFIG")
	defer os.Setenv("VRBRIDGE_CONFIG", originalEnv)
	os.Setenv("VRBRIDGE_CONFIG", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Logf("run() returned error (expected without a VR runtime): %v", err)
	}

	if _, statErr := os.Stat(dbPath); statErr != nil {
		t.Errorf("catalog database was not created: %v", statErr)
	}
}

// TestGetConfigPath_Default verifies the default resolves beside the
// executable.
func TestGetConfigPath_Default(t *testing.T) {
	originalEnv := os.Getenv("VRBRIDGE_CONFIG")
	defer os.Setenv("VRBRIDGE_CONFIG", originalEnv)

	os.Unsetenv("VRBRIDGE_CONFIG")

	path := getConfigPath()
	if filepath.Base(path) != defaultConfigName {
		t.Errorf("getConfigPath() = %q, want file name %q", path, defaultConfigName)
	}
}

// TestGetConfigPath_EnvOverride verifies environment variable override.
func TestGetConfigPath_EnvOverride(t *testing.T) {
	originalEnv := os.Getenv("VRBRIDGE_CONFIG")
	defer os.Setenv("VRBRIDGE_CONFIG", originalEnv)

	expected := "/custom/path/config.yaml"
	os.Setenv("VRBRIDGE_CONFIG", expected)

	path := getConfigPath()
	if path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}
