// Package bridge runs the poll loop that keeps an MQTT broker in step
// with live VR runtime state.
//
// A single controller goroutine owns the whole cycle: capture a
// snapshot, diff it against the retained baseline, announce new
// entities, publish changed values, and carry the rebaselined snapshot
// into the next tick. Broker connectivity wraps around that loop;
// transport drops park the loop until the connection is restored.
//
// Architecture:
//
//	┌──────────────────────────────────────────────────────┐
//	│                 Bridge (bridge.go)                    │
//	│  Single-goroutine controller loop                     │
//	│  ┌────────────┐   ┌────────────┐   ┌─────────────┐  │
//	│  │ vr.Source  │──▶│ vr.Differ  │──▶│  Registry    │  │
//	│  │ (capture)  │   │ (compare)  │   │(registry.go) │  │
//	│  └────────────┘   └────────────┘   └──────┬──────┘  │
//	│                                           │          │
//	│  ┌─────────────┐   ┌─────────────┐        ▼          │
//	│  │  Discovery  │──▶│  Publisher  │──▶ MQTT broker    │
//	│  │(discovery.go)│  │(publisher.go)│                  │
//	│  └─────────────┘   └─────────────┘                   │
//	└──────────────────────────────────────────────────────┘
//
// # Key Types
//
//   - Bridge: The controller; Run blocks until shutdown
//   - Registry: Per-entity bookkeeping between ticks
//   - Discovery: Renders consumer auto-configuration payloads
//   - Publisher: State and discovery publishes with bounded retry
//   - Health: Counters and state readable from any goroutine
//
// # Tick Pipeline
//
//  1. Drain runtime events; a quit request ends the loop
//  2. Capture a snapshot; an unavailable runtime skips the tick
//  3. Diff against the baseline, oldest-first ordering
//  4. Retire disappeared entities, record appeared ones
//  5. Announce discovery configs for unannounced entities
//  6. Publish attribute values that differ from the last delivered
//  7. Retain the rebaselined snapshot for the next tick
//
// Values flow to the broker by comparing the fresh snapshot against
// each entity's last delivered value, not from the diff directly. A
// publish that exhausts its retries leaves no record, so the same
// value is retried on the following tick without any extra machinery.
//
// # Thread Safety
//
// The registry and baseline belong to the controller goroutine alone.
// Transport callbacks and the discovery-status subscription only post
// to buffered channels the loop drains. Health snapshots are safe to
// read from any goroutine.
//
// # Usage
//
//	disc := bridge.NewDiscovery(topics, cfg.Node.Name, instanceID, version)
//	b := bridge.New(cfg, topics, connect, source, disc, log)
//
//	if err := b.Run(ctx); err != nil {
//	    return err
//	}
package bridge
