package mqtt

import "fmt"

// Binary payloads shared by state and availability topics.
//
// Home Assistant's binary_sensor defaults expect ON/OFF, and the discovery
// configs published by the bridge override payload_available and
// payload_not_available to the same values so the power topic can serve as
// both a sensor state and an availability channel.
const (
	PayloadOn  = "ON"
	PayloadOff = "OFF"
)

// The availability channel is itself an entity so its topic follows the
// same scheme as every other publication.
const (
	availabilityEntity    = "power"
	availabilityAttribute = "state"
)

// Topics builds the MQTT topic names used by the bridge.
//
// State topics follow <prefix>/<node>/<entity>/<attribute>:
//
//	topics := mqtt.Topics{Prefix: "vr-status", Node: "den", Discovery: "homeassistant"}
//	topics.EntityState("headset", "state")   // vr-status/den/headset/state
//	topics.EntityState("ctrl-1", "battery")  // vr-status/den/ctrl-1/battery
//
// Discovery topics follow the Home Assistant convention
// <discovery>/<component>/<object_id>/config. Using these helpers keeps
// topic naming consistent between publication, discovery payloads, and the
// registered will.
type Topics struct {
	// Prefix is the root of all state topics, e.g. "vr-status".
	Prefix string

	// Node identifies this bridge instance, e.g. "den". One broker can
	// carry several bridges as long as their node segments differ.
	Node string

	// Discovery is the Home Assistant discovery root, e.g. "homeassistant".
	// Empty means discovery is disabled and the discovery builders must
	// not be used.
	Discovery string
}

// EntityState returns the topic carrying one attribute of one entity.
//
// Example: vr-status/den/tracker-2/charging
func (t Topics) EntityState(entityID, attribute string) string {
	return fmt.Sprintf("%s/%s/%s/%s", t.Prefix, t.Node, entityID, attribute)
}

// Availability returns the topic carrying the bridge online/offline flag.
// The broker publishes PayloadOff here through the registered will when the
// session drops without a graceful disconnect.
//
// Example: vr-status/den/power/state
func (t Topics) Availability() string {
	return t.EntityState(availabilityEntity, availabilityAttribute)
}

// DiscoveryConfig returns the retained discovery topic for one Home
// Assistant entity.
//
// Example: homeassistant/binary_sensor/den_headset/config
func (t Topics) DiscoveryConfig(component, objectID string) string {
	return fmt.Sprintf("%s/%s/%s/config", t.Discovery, component, objectID)
}

// DiscoveryStatus returns Home Assistant's birth topic. Home Assistant
// publishes "online" here when it starts, which is the signal to republish
// every discovery config.
//
// Example: homeassistant/status
func (t Topics) DiscoveryStatus() string {
	return fmt.Sprintf("%s/status", t.Discovery)
}

// DiscoveryEnabled reports whether discovery topics can be built.
func (t Topics) DiscoveryEnabled() bool {
	return t.Discovery != ""
}

// NodeStates returns a pattern matching every state topic this bridge
// publishes. Useful for debugging with mosquitto_sub.
//
// Pattern: vr-status/den/+/+
func (t Topics) NodeStates() string {
	return fmt.Sprintf("%s/%s/+/+", t.Prefix, t.Node)
}
