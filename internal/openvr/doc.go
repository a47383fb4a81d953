// Package openvr is a minimal client for the OpenVR runtime.
//
// It reads exactly what the bridge publishes and nothing more: tracked
// device state and properties, the active scene application, the
// chaperone play-area size, the runtime version, and the event queue
// (for quit handling). It also registers the bridge's application
// manifest so the runtime auto-launches it with each session.
//
// # Binding
//
// The Windows implementation loads openvr_api.dll at init and talks to
// the runtime through its C bindings: VR_GetGenericInterface with a
// "FnTable:" prefixed version string returns a table of plain function
// pointers, which are invoked directly via syscall. No cgo is involved,
// so cross-compiling the bridge from any platform stays a plain go
// build.
//
// Interface tables are version-locked. This package binds
// IVRSystem_022, IVRApplications_007 and IVRChaperone_003; a runtime
// too old to serve those versions fails Init with
// ErrInterfaceUnavailable.
//
// # Portability
//
// Only 64-bit Windows hosts the live runtime. Other platforms compile
// against stubs whose Init fails with ErrUnsupported, and the rest of
// the bridge is developed and tested against the Runtime interface.
//
// # Lifecycle
//
//	rt, err := openvr.Init(openvr.ApplicationBackground)
//	if err != nil {
//	    // runtime not running, or no headset attached
//	}
//	defer rt.Close()
//
// A background connection never starts the runtime; the bridge is
// expected to be auto-launched by it, so Init failing means the user
// genuinely is not in VR.
package openvr
