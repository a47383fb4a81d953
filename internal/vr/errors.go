package vr

import "errors"

// Domain errors for the vr package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, vr.ErrRuntimeUnavailable) {
//	    // skip the tick, keep the previous baseline
//	}
var (
	// ErrRuntimeUnavailable is returned by Capture when the runtime
	// cannot be read completely within the capture budget. The caller
	// must treat the tick as a no-op rather than acting on a partial
	// snapshot.
	ErrRuntimeUnavailable = errors.New("vr: runtime unavailable")
)
