package openvr

// Tracked-device index space. The runtime reports devices by index;
// index 0 is always the headset.
const (
	MaxTrackedDevices        = 64
	HMDIndex          uint32 = 0
)

// AppKey identifies the bridge to the runtime's application layer. It
// appears in the application manifest and in auto-launch registration,
// and must match between the two.
const AppKey = "com.nerrad567.vr-bridge"

// ApplicationType tells the runtime what kind of process is connecting.
type ApplicationType int32

// ApplicationBackground connects without claiming the compositor. The
// runtime refuses background connections unless it is already running,
// which is the behaviour the bridge wants: it observes sessions, it
// never starts them.
const ApplicationBackground ApplicationType = 3

// DeviceClass categorises a tracked device.
type DeviceClass int32

const (
	ClassInvalid           DeviceClass = 0
	ClassHMD               DeviceClass = 1
	ClassController        DeviceClass = 2
	ClassGenericTracker    DeviceClass = 3
	ClassTrackingReference DeviceClass = 4
	ClassDisplayRedirect   DeviceClass = 5
)

func (c DeviceClass) String() string {
	switch c {
	case ClassHMD:
		return "hmd"
	case ClassController:
		return "controller"
	case ClassGenericTracker:
		return "generic_tracker"
	case ClassTrackingReference:
		return "tracking_reference"
	case ClassDisplayRedirect:
		return "display_redirect"
	default:
		return "invalid"
	}
}

// ControllerRole is the hand or accessory role a controller is assigned.
type ControllerRole int32

const (
	RoleInvalid   ControllerRole = 0
	RoleLeftHand  ControllerRole = 1
	RoleRightHand ControllerRole = 2
	RoleOptOut    ControllerRole = 3
	RoleTreadmill ControllerRole = 4
	RoleStylus    ControllerRole = 5
)

// String returns the role in the form published on role topics.
func (r ControllerRole) String() string {
	switch r {
	case RoleLeftHand:
		return "left_hand"
	case RoleRightHand:
		return "right_hand"
	case RoleOptOut:
		return "opt_out"
	case RoleTreadmill:
		return "treadmill"
	case RoleStylus:
		return "stylus"
	default:
		return "none"
	}
}

// ActivityLevel is the runtime's judgement of how recently a device saw
// use. Standby is the only level the bridge treats specially.
type ActivityLevel int32

const (
	ActivityUnknown                ActivityLevel = -1
	ActivityIdle                   ActivityLevel = 0
	ActivityUserInteraction        ActivityLevel = 1
	ActivityUserInteractionTimeout ActivityLevel = 2
	ActivityStandby                ActivityLevel = 3
	ActivityIdleTimeout            ActivityLevel = 4
)

// Property identifies a tracked-device property.
type Property int32

// Properties the bridge reads. Battery percentage is reported by the
// runtime as a fraction, 0.0 empty to 1.0 full.
const (
	PropSerialNumber          Property = 1002
	PropDeviceIsCharging      Property = 1011
	PropBatteryPercentage     Property = 1012
	PropProvidesBatteryStatus Property = 1026
)

// EventType identifies a runtime event.
type EventType uint32

// EventQuit is the runtime asking the process to exit, sent to every
// connected application when the user shuts the runtime down.
const EventQuit EventType = 700

// Runtime is the surface of the VR runtime the bridge reads. The live
// client implements it on Windows; everything above this package tests
// against fakes.
//
// Device accessors take a tracked-device index in [0, MaxTrackedDevices).
// They do not fail for empty indexes; an unoccupied index reports
// ClassInvalid and reads as disconnected.
type Runtime interface {
	// Version reports the runtime's own version string.
	Version() string

	// DeviceClass reports the class of the device at an index,
	// ClassInvalid when the index is unoccupied.
	DeviceClass(index uint32) DeviceClass

	// DeviceConnected reports whether the device at an index is
	// currently connected and tracking.
	DeviceConnected(index uint32) bool

	// DeviceActivity reports the activity level of the device at an
	// index. The headset's level drives the bridge's active flag.
	DeviceActivity(index uint32) ActivityLevel

	// ControllerRole reports the role assigned to the device at an
	// index, RoleInvalid for non-controllers.
	ControllerRole(index uint32) ControllerRole

	// StringProperty reads a string property of a device.
	StringProperty(index uint32, prop Property) (string, error)

	// FloatProperty reads a float property of a device.
	FloatProperty(index uint32, prop Property) (float32, error)

	// BoolProperty reads a bool property of a device.
	BoolProperty(index uint32, prop Property) (bool, error)

	// SceneProcessID reports the process id of the current scene
	// application, 0 when none is running.
	SceneProcessID() uint32

	// ApplicationKeyForProcess resolves a process id to the runtime's
	// application key. Fails for processes the runtime does not know,
	// which includes scene applications launched outside it.
	ApplicationKeyForProcess(pid uint32) (string, error)

	// ApplicationName resolves an application key to its display name.
	ApplicationName(appKey string) (string, error)

	// PlayArea reports the calibrated play-area size in metres. ok is
	// false when the chaperone has no usable calibration.
	PlayArea() (width, depth float32, ok bool)

	// DrainEvents consumes all pending runtime events and reports
	// whether a quit request was among them. Quit requests are
	// acknowledged before returning so the runtime grants the process
	// its shutdown grace period.
	DrainEvents() (quit bool)

	// Close disconnects from the runtime.
	Close()
}

var _ Runtime = (*Client)(nil)
