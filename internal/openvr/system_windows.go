//go:build windows && amd64

package openvr

import (
	"fmt"
	"syscall"
	"unsafe"
)

// Tracked-property error codes the wrappers recognise.
const (
	propSuccess          = 0
	propBufferTooSmall   = 3
	propUnknownProperty  = 4
	propInvalidDevice    = 5
	propValueNotProvided = 7
)

// DeviceClass reports the class of the device at an index.
func (c *Client) DeviceClass(index uint32) DeviceClass {
	r1, _, _ := syscall.SyscallN(c.system.GetTrackedDeviceClass, uintptr(index))
	return DeviceClass(int32(r1))
}

// DeviceConnected reports whether the device at an index is connected.
func (c *Client) DeviceConnected(index uint32) bool {
	r1, _, _ := syscall.SyscallN(c.system.IsTrackedDeviceConnected, uintptr(index))
	return r1&0xFF != 0
}

// DeviceActivity reports the activity level of the device at an index.
func (c *Client) DeviceActivity(index uint32) ActivityLevel {
	r1, _, _ := syscall.SyscallN(c.system.GetTrackedDeviceActivityLevel, uintptr(index))
	return ActivityLevel(int32(r1))
}

// ControllerRole reports the role assigned to the device at an index.
func (c *Client) ControllerRole(index uint32) ControllerRole {
	r1, _, _ := syscall.SyscallN(c.system.GetControllerRoleForTrackedDeviceIndex, uintptr(index))
	return ControllerRole(int32(r1))
}

// StringProperty reads a string property of a device, growing the
// buffer when the runtime reports it too small.
func (c *Client) StringProperty(index uint32, prop Property) (string, error) {
	buf := make([]byte, 256)
	for {
		var perr int32
		r1, _, _ := syscall.SyscallN(c.system.GetStringTrackedDeviceProperty,
			uintptr(index), uintptr(prop),
			uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)),
			uintptr(unsafe.Pointer(&perr)))
		needed := int(uint32(r1))

		switch {
		case perr == propSuccess:
			// needed counts the NUL terminator.
			if needed > 0 && needed <= len(buf) {
				return string(buf[:needed-1]), nil
			}
			return "", nil
		case perr == propBufferTooSmall && needed > len(buf):
			buf = make([]byte, needed)
		default:
			return "", propError(prop, perr)
		}
	}
}

// FloatProperty reads a float property of a device.
//
// Floats come back through the array property call rather than
// GetFloatTrackedDeviceProperty: that one returns its value in a
// floating-point register, which syscall cannot read.
func (c *Client) FloatProperty(index uint32, prop Property) (float32, error) {
	const floatPropertyTag = 1

	var value float32
	var perr int32
	_, _, _ = syscall.SyscallN(c.system.GetArrayTrackedDeviceProperty,
		uintptr(index), uintptr(prop), floatPropertyTag,
		uintptr(unsafe.Pointer(&value)), unsafe.Sizeof(value),
		uintptr(unsafe.Pointer(&perr)))
	if perr != propSuccess {
		return 0, propError(prop, perr)
	}
	return value, nil
}

// BoolProperty reads a bool property of a device.
func (c *Client) BoolProperty(index uint32, prop Property) (bool, error) {
	var perr int32
	r1, _, _ := syscall.SyscallN(c.system.GetBoolTrackedDeviceProperty,
		uintptr(index), uintptr(prop), uintptr(unsafe.Pointer(&perr)))
	if perr != propSuccess {
		return false, propError(prop, perr)
	}
	return r1&0xFF != 0, nil
}

// PlayArea reports the calibrated play-area size in metres.
func (c *Client) PlayArea() (width, depth float32, ok bool) {
	var x, z float32
	r1, _, _ := syscall.SyscallN(c.chaperone.GetPlayAreaSize,
		uintptr(unsafe.Pointer(&x)), uintptr(unsafe.Pointer(&z)))
	if r1&0xFF == 0 {
		return 0, 0, false
	}
	return x, z, true
}

// rawEvent mirrors the 64-byte VREvent_t layout on 64-bit Windows. Only
// the type is read; the payload union is carried for its size.
type rawEvent struct {
	eventType   uint32
	deviceIndex uint32
	ageSeconds  float32
	_           uint32
	data        [48]byte
}

// DrainEvents consumes every pending runtime event and reports whether
// a quit request was among them. Quit requests are acknowledged
// immediately so the runtime grants its shutdown grace period instead
// of killing the process.
func (c *Client) DrainEvents() bool {
	quit := false
	for {
		var event rawEvent
		r1, _, _ := syscall.SyscallN(c.system.PollNextEvent,
			uintptr(unsafe.Pointer(&event)), unsafe.Sizeof(event))
		if r1&0xFF == 0 {
			return quit
		}
		if EventType(event.eventType) == EventQuit {
			_, _, _ = syscall.SyscallN(c.system.AcknowledgeQuitExiting)
			quit = true
		}
	}
}

// propError maps a tracked-property error code onto package errors.
func propError(prop Property, code int32) error {
	switch code {
	case propValueNotProvided, propUnknownProperty, propInvalidDevice:
		return fmt.Errorf("%w: property %d (code %d)", ErrPropertyUnavailable, prop, code)
	default:
		return fmt.Errorf("openvr: reading property %d: code %d", prop, code)
	}
}
