//go:build windows && amd64

package openvr

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Client is a live connection to a running runtime.
//
// The runtime's C API is process-global, so at most one Client should
// exist per process. Read calls are safe from any goroutine; Close must
// not race reads.
type Client struct {
	dll      *windows.DLL
	shutdown *windows.Proc

	system       *systemFnTable
	applications *applicationsFnTable
	chaperone    *chaperoneFnTable

	version string
}

// Init connects to the running runtime as the given application type
// and binds the interface tables.
//
// openvr_api.dll is resolved through the regular loader search, so the
// copy shipped next to the executable wins.
//
// Returns:
//   - *Client: Connected client, ready for reads
//   - error: ErrInitFailed if the runtime refuses or is not running,
//     ErrInterfaceUnavailable if it cannot serve the bound versions
func Init(appType ApplicationType) (*Client, error) {
	dll, err := windows.LoadDLL("openvr_api.dll")
	if err != nil {
		return nil, fmt.Errorf("%w: loading openvr_api.dll: %v", ErrInitFailed, err)
	}

	c := &Client{dll: dll}
	if err := c.initRuntime(appType); err != nil {
		_ = dll.Release()
		return nil, err
	}
	if err := c.bindTables(); err != nil {
		c.Close()
		return nil, err
	}

	// Read once; the runtime does not change version while connected.
	r1, _, _ := syscall.SyscallN(c.system.GetRuntimeVersion)
	c.version = cString(r1)

	return c, nil
}

// initRuntime performs the VR_InitInternal handshake. Newer runtimes
// export VR_InitInternal2; older ones only the original entry point.
func (c *Client) initRuntime(appType ApplicationType) error {
	empty, err := windows.BytePtrFromString("")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInitFailed, err)
	}

	var initErr int32
	if proc, err := c.dll.FindProc("VR_InitInternal2"); err == nil {
		_, _, _ = proc.Call(uintptr(unsafe.Pointer(&initErr)), uintptr(appType), uintptr(unsafe.Pointer(empty)))
	} else {
		proc, err := c.dll.FindProc("VR_InitInternal")
		if err != nil {
			return fmt.Errorf("%w: no init entry point: %v", ErrInitFailed, err)
		}
		_, _, _ = proc.Call(uintptr(unsafe.Pointer(&initErr)), uintptr(appType))
	}
	if initErr != 0 {
		return fmt.Errorf("%w: %s", ErrInitFailed, c.describeInitError(initErr))
	}

	shutdown, err := c.dll.FindProc("VR_ShutdownInternal")
	if err != nil {
		return fmt.Errorf("%w: VR_ShutdownInternal not found: %v", ErrInitFailed, err)
	}
	c.shutdown = shutdown

	return nil
}

// bindTables acquires the FnTable pointers for every interface the
// bridge reads.
func (c *Client) bindTables() error {
	getInterface, err := c.dll.FindProc("VR_GetGenericInterface")
	if err != nil {
		return fmt.Errorf("%w: VR_GetGenericInterface not found: %v", ErrInterfaceUnavailable, err)
	}

	system, err := bindTable(getInterface, systemVersion)
	if err != nil {
		return err
	}
	c.system = (*systemFnTable)(system)

	applications, err := bindTable(getInterface, applicationsVersion)
	if err != nil {
		return err
	}
	c.applications = (*applicationsFnTable)(applications)

	chaperone, err := bindTable(getInterface, chaperoneVersion)
	if err != nil {
		return err
	}
	c.chaperone = (*chaperoneFnTable)(chaperone)

	return nil
}

// bindTable asks the runtime for one FnTable. The returned memory is
// owned by the runtime and stays valid until shutdown.
func bindTable(getInterface *windows.Proc, version string) (unsafe.Pointer, error) {
	name, err := windows.BytePtrFromString(version)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInterfaceUnavailable, version, err)
	}

	var ifaceErr int32
	r1, _, _ := getInterface.Call(uintptr(unsafe.Pointer(name)), uintptr(unsafe.Pointer(&ifaceErr)))
	if ifaceErr != 0 || r1 == 0 {
		return nil, fmt.Errorf("%w: %s (error %d)", ErrInterfaceUnavailable, version, ifaceErr)
	}
	return unsafe.Pointer(r1), nil //nolint:govet // pointer into runtime-owned memory
}

// describeInitError renders an init error with the runtime's own
// description when available.
func (c *Client) describeInitError(code int32) string {
	proc, err := c.dll.FindProc("VR_GetVRInitErrorAsEnglishDescription")
	if err != nil {
		return fmt.Sprintf("init error %d", code)
	}
	r1, _, _ := proc.Call(uintptr(code))
	if r1 == 0 {
		return fmt.Sprintf("init error %d", code)
	}
	return fmt.Sprintf("%s (%d)", cString(r1), code)
}

// Version reports the runtime's version string.
func (c *Client) Version() string {
	return c.version
}

// Close disconnects from the runtime and unloads the library.
func (c *Client) Close() {
	if c.shutdown != nil {
		_, _, _ = c.shutdown.Call()
		c.shutdown = nil
	}
	if c.dll != nil {
		_ = c.dll.Release() //nolint:errcheck // nothing to do about unload failure
		c.dll = nil
	}
}

// cString copies a NUL-terminated C string owned by the runtime.
func cString(p uintptr) string {
	if p == 0 {
		return ""
	}
	return windows.BytePtrToString((*byte)(unsafe.Pointer(p))) //nolint:govet // pointer into runtime-owned memory
}
