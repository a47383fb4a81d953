package openvr

import "errors"

// Domain errors for the openvr package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, openvr.ErrUnsupported) {
//	    // built without the native runtime binding
//	}
var (
	// ErrUnsupported is returned by Init on platforms without the
	// native runtime. Only 64-bit Windows hosts the live binding.
	ErrUnsupported = errors.New("openvr: runtime not supported on this platform")

	// ErrInitFailed is returned when the runtime rejects the
	// connection, most commonly because it is not running.
	ErrInitFailed = errors.New("openvr: init failed")

	// ErrInterfaceUnavailable is returned when the runtime does not
	// expose a required interface version.
	ErrInterfaceUnavailable = errors.New("openvr: interface unavailable")

	// ErrPropertyUnavailable is returned for properties a device does
	// not provide.
	ErrPropertyUnavailable = errors.New("openvr: property unavailable")

	// ErrApplicationUnknown is returned when the runtime cannot
	// resolve an application key or process.
	ErrApplicationUnknown = errors.New("openvr: application unknown")
)
