// Package logging provides structured logging for the VR bridge.
//
// It wraps the standard log/slog package so every component logs
// through the same handler with the same default fields.
//
// # Features
//
//   - Text output for development and desktop use (default)
//   - JSON output for machine collection
//   - Default fields (service, version) on all entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the logging section of vrbridge.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # text, json
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("connected to broker", "host", cfg.MQTT.Host)
//	logger.Error("capture failed", "error", err)
//
// Derive component loggers with With so records are attributable:
//
//	bridgeLog := logger.With("component", "bridge")
//
// Never log broker credentials; the config package keeps the password
// out of its String representation for the same reason.
package logging
