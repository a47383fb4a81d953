// Package mqtt provides MQTT client connectivity for the VR bridge.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Retained message publishing with QoS guarantees
//   - Topic construction for state, availability, and discovery
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Topic Scheme
//
// Every state publication lands on <prefix>/<node>/<entity>/<attribute>:
//
//	vr-status/den/headset/state      ON
//	vr-status/den/ctrl-1/battery     72
//	vr-status/den/application/state  Half-Life: Alyx
//
// Discovery configs land on the Home Assistant convention
// <discovery>/<component>/<object_id>/config and are always retained.
//
// # Availability
//
// The availability channel is the power entity's state topic. Connect
// registers a will that flips it to OFF when the session drops, and every
// successful (re)connection publishes a retained ON. Entities advertise
// the topic in their discovery availability block, so Home Assistant
// greys out the whole device the moment the bridge machine goes away.
//
// # Reconnection
//
// The paho layer owns reconnection: exponential backoff between the
// configured initial and maximum delays, retrying forever. Subscriptions
// are restored and availability republished on every reconnect. Callers
// observe connectivity through SetOnConnect/SetOnDisconnect.
//
// # Usage
//
//	topics := mqtt.Topics{Prefix: "vr-status", Node: cfg.Node.ID, Discovery: "homeassistant"}
//	client, err := mqtt.Connect(cfg.MQTT, topics)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	// React to Home Assistant restarts
//	client.Subscribe(topics.DiscoveryStatus(), 1,
//	    func(topic string, payload []byte) error {
//	        if string(payload) == "online" {
//	            requestReannounce()
//	        }
//	        return nil
//	    })
//
//	// Publish a state change
//	client.PublishRetained(topics.EntityState("headset", "state"), []byte(mqtt.PayloadOn))
package mqtt
