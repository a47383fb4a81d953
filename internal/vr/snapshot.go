package vr

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/vr-bridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/vr-bridge/internal/openvr"
)

// Fixed entity ids. Device entities use catalog-assigned ids such as
// ctrl-1 or tracker-2 instead.
const (
	EntityHeadset     = "headset"
	EntityActive      = "active"
	EntityApplication = "application"
	EntityBoundary    = "boundary"
)

// Attribute names as they appear in topic paths. Every entity has a
// primary "state" attribute; the others exist only where the entity
// carries them.
const (
	AttrState    = "state"
	AttrBattery  = "battery"
	AttrCharging = "charging"
	AttrRole     = "role"
	AttrWidth    = "width"
	AttrDepth    = "depth"
)

// StateSnapshot is one point-in-time read of the runtime. Snapshots are
// never mutated after capture, only replaced; the diff engine compares
// two of them by value.
type StateSnapshot struct {
	// HeadsetConnected reports an HMD present and tracking.
	HeadsetConnected bool

	// Active is false only while the headset is in standby.
	Active bool

	// Application is the display name of the running scene
	// application, empty when none.
	Application string

	// Devices holds one record per observed tracked device.
	Devices []DeviceRecord

	// Boundary is the calibrated play area, nil when the chaperone
	// has none.
	Boundary *Boundary

	// CapturedAt is when the read happened.
	CapturedAt time.Time
}

// DeviceRecord is one tracked device within a snapshot.
type DeviceRecord struct {
	// EntityID is the catalog-assigned identity, stable for the
	// physical device across sessions and restarts.
	EntityID string

	// Serial is the hardware serial number behind the identity.
	Serial string

	Class openvr.DeviceClass

	// Role is the assigned hand for controllers, RoleInvalid
	// otherwise. Role changes are reportable events.
	Role openvr.ControllerRole

	Connected bool

	// Battery is the charge percentage, 0 to 100, meaningful only
	// when HasBattery is set. Charging likewise.
	Battery    float64
	Charging   bool
	HasBattery bool
}

// Boundary is the calibrated play-area rectangle in metres.
type Boundary struct {
	Width float64
	Depth float64
}

// Area returns the play-area surface in square metres.
func (b Boundary) Area() float64 {
	return b.Width * b.Depth
}

// ChangeKind discriminates the Change variants. The set is closed;
// consumers switch over it exhaustively.
type ChangeKind int

const (
	// ChangeDisappeared reports an entity no longer observed.
	ChangeDisappeared ChangeKind = iota + 1

	// ChangeAppeared reports a newly observed entity.
	ChangeAppeared

	// ChangeAttribute reports one attribute of a persisting entity
	// taking a new value.
	ChangeAttribute
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeDisappeared:
		return "disappeared"
	case ChangeAppeared:
		return "appeared"
	case ChangeAttribute:
		return "attribute"
	default:
		return "unknown"
	}
}

// Change is one observed difference between consecutive snapshots.
// Values are carried publish-ready: booleans as ON/OFF, numbers as
// plain decimal text, enumerations as their literal string.
type Change struct {
	Kind     ChangeKind
	EntityID string

	// Descriptor and Attributes are set on ChangeAppeared: the
	// announcement metadata and the entity's initial values, ordered
	// by attribute name.
	Descriptor *EntityDescriptor
	Attributes []Attribute

	// Attribute, Old and New are set on ChangeAttribute.
	Attribute string
	Old       string
	New       string
}

// Attribute is one publish-ready attribute value.
type Attribute struct {
	Name  string
	Value string
}

// EntityView is one present entity with its publish-ready values, as
// returned by Flatten.
type EntityView struct {
	EntityID   string
	Attributes []Attribute
}

// EntityKind tells a discovery-aware consumer how to model an entity
// attribute. Values double as Home Assistant component names.
type EntityKind string

const (
	KindBinarySensor EntityKind = "binary_sensor"
	KindSensor       EntityKind = "sensor"
)

// AttributeSchema describes one published attribute of an entity for
// discovery purposes.
type AttributeSchema struct {
	// Attribute is the topic segment, e.g. "battery".
	Attribute string

	Kind EntityKind

	// Name is the human-readable label, complete except for the node
	// name the discovery layer prefixes.
	Name string

	// DeviceClass is the discovery device class, empty when none fits.
	DeviceClass string

	// Unit is the unit of measurement, empty for unitless values.
	Unit string
}

// EntityDescriptor is the static announcement metadata of one entity.
// Built when the entity first appears and immutable afterwards.
type EntityDescriptor struct {
	EntityID string

	// Name is the human-readable entity label, e.g. "Controller 1".
	Name string

	// Attributes lists the entity's published attributes, ordered by
	// attribute name.
	Attributes []AttributeSchema
}

// ClassPrefix maps a device class to the entity id prefix used by the
// identity catalog. Classes outside the mapping are not published.
func ClassPrefix(class openvr.DeviceClass) string {
	switch class {
	case openvr.ClassHMD:
		return "hmd"
	case openvr.ClassController:
		return "ctrl"
	case openvr.ClassGenericTracker:
		return "tracker"
	case openvr.ClassTrackingReference:
		return "ref"
	default:
		return ""
	}
}

// DeviceName renders the human label of a device entity id, e.g.
// "Controller 1" for ctrl-1.
func DeviceName(entityID string) string {
	prefix, num, ok := strings.Cut(entityID, "-")
	if !ok {
		return entityID
	}

	var label string
	switch prefix {
	case "ctrl":
		label = "Controller"
	case "tracker":
		label = "Tracker"
	case "ref":
		label = "Base Station"
	case "hmd":
		label = "HMD"
	default:
		label = prefix
	}
	return label + " " + num
}

// headsetDescriptor, activeDescriptor, applicationDescriptor and
// boundaryDescriptor build the fixed entities' announcement metadata.
// The power entity is not here: it belongs to the connection lifecycle,
// not to snapshots.

func headsetDescriptor() *EntityDescriptor {
	return &EntityDescriptor{
		EntityID: EntityHeadset,
		Name:     "Headset",
		Attributes: []AttributeSchema{
			{Attribute: AttrState, Kind: KindBinarySensor, Name: "Headset", DeviceClass: "connectivity"},
		},
	}
}

func activeDescriptor() *EntityDescriptor {
	return &EntityDescriptor{
		EntityID: EntityActive,
		Name:     "Active",
		Attributes: []AttributeSchema{
			{Attribute: AttrState, Kind: KindBinarySensor, Name: "Active", DeviceClass: "moving"},
		},
	}
}

func applicationDescriptor() *EntityDescriptor {
	return &EntityDescriptor{
		EntityID: EntityApplication,
		Name:     "Application",
		Attributes: []AttributeSchema{
			{Attribute: AttrState, Kind: KindSensor, Name: "Application"},
		},
	}
}

func boundaryDescriptor() *EntityDescriptor {
	return &EntityDescriptor{
		EntityID: EntityBoundary,
		Name:     "Boundary",
		Attributes: []AttributeSchema{
			{Attribute: AttrDepth, Kind: KindSensor, Name: "Boundary Depth", Unit: "m"},
			{Attribute: AttrState, Kind: KindSensor, Name: "Boundary", Unit: "m²"},
			{Attribute: AttrWidth, Kind: KindSensor, Name: "Boundary Width", Unit: "m"},
		},
	}
}

// deviceDescriptor builds announcement metadata for a tracked device.
// Battery attributes exist only for devices that report battery state,
// the role attribute only for controllers.
func deviceDescriptor(rec DeviceRecord) *EntityDescriptor {
	name := DeviceName(rec.EntityID)

	var attrs []AttributeSchema
	if rec.HasBattery {
		attrs = append(attrs,
			AttributeSchema{Attribute: AttrBattery, Kind: KindSensor, Name: name + " Battery", DeviceClass: "battery", Unit: "%"},
			AttributeSchema{Attribute: AttrCharging, Kind: KindBinarySensor, Name: name + " Charging", DeviceClass: "battery_charging"},
		)
	}
	if rec.Class == openvr.ClassController {
		attrs = append(attrs, AttributeSchema{Attribute: AttrRole, Kind: KindSensor, Name: name + " Role"})
	}
	attrs = append(attrs, AttributeSchema{Attribute: AttrState, Kind: KindBinarySensor, Name: name, DeviceClass: "connectivity"})

	return &EntityDescriptor{EntityID: rec.EntityID, Name: name, Attributes: attrs}
}

// deviceAttributes flattens a device record into publish-ready values,
// ordered by attribute name to mirror the descriptor.
func deviceAttributes(rec DeviceRecord) []Attribute {
	var attrs []Attribute
	if rec.HasBattery {
		attrs = append(attrs,
			Attribute{AttrBattery, formatBattery(rec.Battery)},
			Attribute{AttrCharging, formatBool(rec.Charging)},
		)
	}
	if rec.Class == openvr.ClassController {
		attrs = append(attrs, Attribute{AttrRole, rec.Role.String()})
	}
	attrs = append(attrs, Attribute{AttrState, formatBool(rec.Connected)})
	return attrs
}

// boundaryAttributes flattens the play area. The primary state is the
// surface in m²; width and depth ride along as their own sensors.
func boundaryAttributes(b Boundary) []Attribute {
	return []Attribute{
		{AttrDepth, formatMetres(b.Depth)},
		{AttrState, formatMetres(b.Area())},
		{AttrWidth, formatMetres(b.Width)},
	}
}

func formatBool(v bool) string {
	if v {
		return mqtt.PayloadOn
	}
	return mqtt.PayloadOff
}

// formatBattery renders a charge percentage as a whole number. The
// runtime reports more precision than the hardware honours.
func formatBattery(percent float64) string {
	return strconv.Itoa(int(math.Round(percent)))
}

func formatMetres(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
