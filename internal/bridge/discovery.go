package bridge

import (
	"fmt"

	"github.com/nerrad567/vr-bridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/vr-bridge/internal/vr"
)

// discoveryConfig is the retained JSON Home Assistant reads from a
// config topic to create an entity.
type discoveryConfig struct {
	Name              string         `json:"name"`
	UniqueID          string         `json:"unique_id"`
	StateTopic        string         `json:"state_topic"`
	DeviceClass       string         `json:"device_class,omitempty"`
	UnitOfMeasurement string         `json:"unit_of_measurement,omitempty"`
	PayloadOn         string         `json:"payload_on,omitempty"`
	PayloadOff        string         `json:"payload_off,omitempty"`
	Availability      []availability `json:"availability,omitempty"`
	Device            deviceInfo     `json:"device"`
}

type availability struct {
	Topic               string `json:"topic"`
	PayloadAvailable    string `json:"payload_available"`
	PayloadNotAvailable string `json:"payload_not_available"`
}

// deviceInfo groups every announced entity under one device in the
// Home Assistant registry. The instance UUID keeps that grouping
// stable across restarts and reinstalls.
type deviceInfo struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	SWVersion    string   `json:"sw_version,omitempty"`
}

const (
	deviceManufacturer = "nerrad567"
	deviceModel        = "VR Bridge"
)

// discoveryMessage is one ready-to-publish discovery config.
type discoveryMessage struct {
	Topic   string
	Payload discoveryConfig
}

// Discovery renders entity descriptors into Home Assistant discovery
// messages.
type Discovery struct {
	topics     mqtt.Topics
	nodeName   string
	instanceID string
	swVersion  string
}

// NewDiscovery creates a discovery renderer.
//
// Parameters:
//   - topics: topic builders carrying the configured prefixes
//   - nodeName: human label prefixed to every entity name
//   - instanceID: catalog instance UUID identifying the device block
//   - swVersion: VR runtime version reported as sw_version
func NewDiscovery(topics mqtt.Topics, nodeName, instanceID, swVersion string) *Discovery {
	return &Discovery{
		topics:     topics,
		nodeName:   nodeName,
		instanceID: instanceID,
		swVersion:  swVersion,
	}
}

// Enabled reports whether discovery publishing is configured at all.
func (d *Discovery) Enabled() bool {
	return d.topics.DiscoveryEnabled()
}

// Messages renders one retained config per published attribute of the
// descriptor, in descriptor order.
func (d *Discovery) Messages(desc *vr.EntityDescriptor) []discoveryMessage {
	msgs := make([]discoveryMessage, 0, len(desc.Attributes))
	for _, schema := range desc.Attributes {
		objectID := d.objectID(desc.EntityID, schema.Attribute)
		stateTopic := d.topics.EntityState(desc.EntityID, schema.Attribute)

		cfg := discoveryConfig{
			Name:              fmt.Sprintf("%s %s", d.nodeName, schema.Name),
			UniqueID:          objectID,
			StateTopic:        stateTopic,
			DeviceClass:       schema.DeviceClass,
			UnitOfMeasurement: schema.Unit,
			Device: deviceInfo{
				Identifiers:  []string{d.instanceID},
				Name:         d.nodeName,
				Manufacturer: deviceManufacturer,
				Model:        deviceModel,
				SWVersion:    d.swVersion,
			},
		}
		if schema.Kind == vr.KindBinarySensor {
			cfg.PayloadOn = mqtt.PayloadOn
			cfg.PayloadOff = mqtt.PayloadOff
		}

		// The availability entity cannot point at itself: when its
		// topic says OFF, OFF is the reading, not an outage.
		if stateTopic != d.topics.Availability() {
			cfg.Availability = []availability{{
				Topic:               d.topics.Availability(),
				PayloadAvailable:    mqtt.PayloadOn,
				PayloadNotAvailable: mqtt.PayloadOff,
			}}
		}

		msgs = append(msgs, discoveryMessage{
			Topic:   d.topics.DiscoveryConfig(string(schema.Kind), objectID),
			Payload: cfg,
		})
	}
	return msgs
}

// objectID builds the discovery object id: <node>_<entity> for the
// primary attribute, <node>_<entity>_<attr> for the rest.
func (d *Discovery) objectID(entityID, attribute string) string {
	if attribute == vr.AttrState {
		return fmt.Sprintf("%s_%s", d.topics.Node, entityID)
	}
	return fmt.Sprintf("%s_%s_%s", d.topics.Node, entityID, attribute)
}

// powerDescriptor models the availability channel as its own
// discoverable entity. Its state is owned by the connection lifecycle,
// never by snapshots.
func powerDescriptor() *vr.EntityDescriptor {
	return &vr.EntityDescriptor{
		EntityID: "power",
		Name:     "Power",
		Attributes: []vr.AttributeSchema{
			{Attribute: vr.AttrState, Kind: vr.KindBinarySensor, Name: "Power", DeviceClass: "power"},
		},
	}
}
