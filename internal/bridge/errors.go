package bridge

import "errors"

// Domain-specific errors for the bridge controller.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrPublishExhausted is returned when a publish still fails after
	// the configured attempt ceiling. The controller logs it and moves
	// on; the value is retried naturally on a later tick.
	ErrPublishExhausted = errors.New("bridge: publish retries exhausted")

	// ErrRuntimeQuit is returned by Run when the VR runtime asked the
	// process to exit. A clean shutdown, distinct from a cancelled
	// context only so the caller can log why the bridge stopped.
	ErrRuntimeQuit = errors.New("bridge: runtime requested exit")
)
