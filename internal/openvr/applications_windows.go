//go:build windows && amd64

package openvr

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	maxApplicationKeyLength = 128
	appBufferTooSmall       = 200
	appNameProperty         = 0
)

// SceneProcessID reports the process id of the current scene
// application, 0 when none is running.
func (c *Client) SceneProcessID() uint32 {
	r1, _, _ := syscall.SyscallN(c.applications.GetCurrentSceneProcessID)
	return uint32(r1)
}

// ApplicationKeyForProcess resolves a process id to the runtime's
// application key.
func (c *Client) ApplicationKeyForProcess(pid uint32) (string, error) {
	buf := make([]byte, maxApplicationKeyLength)
	r1, _, _ := syscall.SyscallN(c.applications.GetApplicationKeyByProcessID,
		uintptr(pid), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if code := uint32(r1); code != 0 {
		return "", fmt.Errorf("%w: process %d: %s", ErrApplicationUnknown, pid, c.appErrorName(code))
	}
	return windows.ByteSliceToString(buf), nil
}

// ApplicationName resolves an application key to its display name,
// growing the buffer when the runtime reports it too small.
func (c *Client) ApplicationName(appKey string) (string, error) {
	key, err := windows.BytePtrFromString(appKey)
	if err != nil {
		return "", fmt.Errorf("openvr: application key: %w", err)
	}

	buf := make([]byte, 256)
	for {
		var aerr int32
		r1, _, _ := syscall.SyscallN(c.applications.GetApplicationPropertyString,
			uintptr(unsafe.Pointer(key)), appNameProperty,
			uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)),
			uintptr(unsafe.Pointer(&aerr)))
		needed := int(uint32(r1))

		switch {
		case aerr == 0:
			// needed counts the NUL terminator.
			if needed > 0 && needed <= len(buf) {
				return string(buf[:needed-1]), nil
			}
			return "", nil
		case aerr == appBufferTooSmall && needed > len(buf):
			buf = make([]byte, needed)
		default:
			return "", fmt.Errorf("%w: key %q: %s", ErrApplicationUnknown, appKey, c.appErrorName(uint32(aerr)))
		}
	}
}

// RegisterManifest registers the application manifest at path as a
// permanent entry. The runtime remembers it across restarts; repeating
// the call is harmless.
func (c *Client) RegisterManifest(path string) error {
	p, err := windows.BytePtrFromString(path)
	if err != nil {
		return fmt.Errorf("openvr: manifest path: %w", err)
	}
	r1, _, _ := syscall.SyscallN(c.applications.AddApplicationManifest,
		uintptr(unsafe.Pointer(p)), 0)
	if code := uint32(r1); code != 0 {
		return fmt.Errorf("openvr: registering manifest: %s", c.appErrorName(code))
	}
	return nil
}

// AutoLaunchEnabled reports whether the runtime starts the application
// with each of its own sessions.
func (c *Client) AutoLaunchEnabled(appKey string) bool {
	key, err := windows.BytePtrFromString(appKey)
	if err != nil {
		return false
	}
	r1, _, _ := syscall.SyscallN(c.applications.GetApplicationAutoLaunch,
		uintptr(unsafe.Pointer(key)))
	return r1&0xFF != 0
}

// SetAutoLaunch enables or disables launching the application with each
// runtime session.
func (c *Client) SetAutoLaunch(appKey string, enabled bool) error {
	key, err := windows.BytePtrFromString(appKey)
	if err != nil {
		return fmt.Errorf("openvr: application key: %w", err)
	}
	var flag uintptr
	if enabled {
		flag = 1
	}
	r1, _, _ := syscall.SyscallN(c.applications.SetApplicationAutoLaunch,
		uintptr(unsafe.Pointer(key)), flag)
	if code := uint32(r1); code != 0 {
		return fmt.Errorf("openvr: setting auto-launch: %s", c.appErrorName(code))
	}
	return nil
}

// appErrorName asks the runtime to name one of its application error
// codes.
func (c *Client) appErrorName(code uint32) string {
	r1, _, _ := syscall.SyscallN(c.applications.GetApplicationsErrorNameFromEnum, uintptr(code))
	if r1 == 0 {
		return fmt.Sprintf("error %d", code)
	}
	return fmt.Sprintf("%s (%d)", cString(r1), code)
}
