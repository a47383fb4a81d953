// VR Bridge - VR session presence for home automation
//
// This is the main entry point for the VR Bridge service. The bridge
// runs beside the VR runtime on the gaming PC and mirrors what it
// observes onto an MQTT broker:
//   - Headset presence and standby state
//   - The running VR application
//   - Tracked devices with battery levels
//   - The calibrated play-area size
//
// With a discovery prefix configured, Home Assistant picks up every
// entity automatically; without one, the state topics stand alone.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	_ "github.com/nerrad567/vr-bridge/migrations"

	"github.com/nerrad567/vr-bridge/internal/bridge"
	"github.com/nerrad567/vr-bridge/internal/catalog"
	"github.com/nerrad567/vr-bridge/internal/infrastructure/config"
	"github.com/nerrad567/vr-bridge/internal/infrastructure/database"
	"github.com/nerrad567/vr-bridge/internal/infrastructure/logging"
	"github.com/nerrad567/vr-bridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/vr-bridge/internal/openvr"
	"github.com/nerrad567/vr-bridge/internal/vr"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file name, resolved beside the executable.
const defaultConfigName = "vrbridge.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful
	// shutdown. The runtime's own quit event ends Run separately.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting VR Bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the identity catalog database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening catalog database: %w", err)
	}
	defer func() {
		log.Info("closing catalog database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("identity catalog ready", "path", cfg.Database.Path)

	// The instance id groups every discovered entity under one device
	// and survives reinstalls with the database.
	cat := catalog.New(db.DB)
	instanceID, err := cat.InstanceID(ctx)
	if err != nil {
		return fmt.Errorf("resolving instance id: %w", err)
	}
	log.Info("instance identity resolved", "instance_id", instanceID)

	// Connect to the VR runtime as a background application. The
	// runtime starts the bridge via auto-launch, so a missing runtime
	// is fatal rather than something to wait out.
	vrRuntime, err := openvr.Init(openvr.ApplicationBackground)
	if err != nil {
		return fmt.Errorf("initialising VR runtime: %w", err)
	}
	defer func() {
		log.Info("disconnecting from VR runtime")
		vrRuntime.Close()
	}()
	log.Info("VR runtime connected", "runtime_version", vrRuntime.Version())

	if err := registerManifest(vrRuntime, cfg, log); err != nil {
		return err
	}

	// Wire the capture source and the bridge controller
	source := vr.NewSource(vrRuntime, cat, cfg.VR.GetCaptureTimeout(), log)

	topics := mqtt.Topics{
		Prefix:    cfg.Bridge.TopicPrefix,
		Node:      cfg.Node.ID,
		Discovery: cfg.Bridge.DiscoveryPrefix,
	}
	discovery := bridge.NewDiscovery(topics, cfg.Node.Name, instanceID, vrRuntime.Version())

	connector := func() (bridge.Conn, error) {
		client, connErr := mqtt.Connect(cfg.MQTT, topics)
		if connErr != nil {
			return nil, connErr
		}
		client.SetLogger(log)
		return client, nil
	}

	b := bridge.New(cfg, topics, connector, source, discovery, log)

	log.Info("initialisation complete, entering poll loop",
		"node", cfg.Node.ID,
		"poll_interval", cfg.Bridge.GetPollInterval(),
		"discovery", discovery.Enabled(),
	)

	runErr := b.Run(ctx)

	health := b.Health()
	log.Info("bridge stopped",
		"ticks", health.Ticks,
		"state_publishes", health.StatePublishes,
		"publish_failures", health.PublishFailures,
		"reconnects", health.Reconnects,
	)

	// The runtime asking the bridge to exit is a clean shutdown, the
	// same as a signal.
	if errors.Is(runErr, bridge.ErrRuntimeQuit) {
		log.Info("VR runtime shut down, exiting with it")
		return nil
	}
	return runErr
}

// getConfigPath returns the configuration file path.
// Uses VRBRIDGE_CONFIG environment variable if set, otherwise the
// default name beside the executable.
func getConfigPath() string {
	if path := os.Getenv("VRBRIDGE_CONFIG"); path != "" {
		return path
	}
	if exe, err := os.Executable(); err == nil {
		return filepath.Join(filepath.Dir(exe), defaultConfigName)
	}
	return defaultConfigName
}

// registerManifest writes the application manifest and registers it
// with the runtime, enabling auto-launch when configured. Registration
// failure is fatal.
//
// Parameters:
//   - vrRuntime: Connected runtime client
//   - cfg: Application configuration
//   - log: Logger instance
//
// Returns:
//   - error: If the manifest cannot be written or registered
func registerManifest(vrRuntime *openvr.Client, cfg *config.Config, log *logging.Logger) error {
	path := cfg.VR.ManifestPath
	if path == "" {
		var err error
		path, err = openvr.DefaultManifestPath()
		if err != nil {
			return fmt.Errorf("resolving manifest path: %w", err)
		}
	}

	if err := openvr.WriteManifest(path); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := vrRuntime.RegisterManifest(path); err != nil {
		return fmt.Errorf("registering manifest: %w", err)
	}
	log.Info("application manifest registered", "path", path)

	if cfg.VR.AutoLaunch && !vrRuntime.AutoLaunchEnabled(openvr.AppKey) {
		if err := vrRuntime.SetAutoLaunch(openvr.AppKey, true); err != nil {
			return fmt.Errorf("enabling auto-launch: %w", err)
		}
		log.Info("auto-launch enabled", "app_key", openvr.AppKey)
	}

	return nil
}
