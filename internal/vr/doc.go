// Package vr turns live VR runtime state into an ordered stream of
// publishable changes.
//
// The package is the observation core of the bridge: it owns the
// snapshot model, the capture path that fills it from the runtime, and
// the diff engine that compares consecutive snapshots.
//
// Architecture:
//
//	┌─────────────────────────────────────────────────┐
//	│                Source (source.go)                │
//	│  Polls the runtime into StateSnapshot values     │
//	│  ┌──────────────┐      ┌──────────────┐         │
//	│  │ openvr.      │      │ Namer        │         │
//	│  │ Runtime      │      │ (catalog)    │         │
//	│  └──────────────┘      └──────────────┘         │
//	└───────────────────────┬─────────────────────────┘
//	                        │ StateSnapshot
//	                        ▼
//	┌─────────────────────────────────────────────────┐
//	│                Differ (diff.go)                  │
//	│  Compares baseline and fresh snapshot            │
//	│  Emits []Change: disappeared, appeared,          │
//	│  attribute blocks, each sorted by entity id      │
//	└─────────────────────────────────────────────────┘
//
// # Key Types
//
//   - StateSnapshot: One immutable observation of the whole runtime
//   - DeviceRecord: One tracked device within a snapshot
//   - Change: One publishable difference between two snapshots
//   - EntityDescriptor: Announcement metadata built when an entity appears
//   - Source: Bounded capture over an openvr.Runtime
//   - Differ: Pure snapshot comparison with battery jitter handling
//
// # Determinism
//
// Diff output order is fully determined by its inputs: disappearances
// before appearances before attribute changes, each block sorted by
// entity id and attribute name. Downstream automation sees the same
// sequence for the same pair of snapshots, every time.
//
// # Battery Jitter
//
// Battery levels wobble between reads. Moves strictly below the
// configured tolerance are held back, and Rebaseline keeps the held
// level in the retained baseline so a slow drain still surfaces once
// it accumulates past the tolerance.
//
// # Usage
//
//	source := vr.NewSource(runtime, cat, timeout, log)
//	differ := vr.NewDiffer(5.0)
//
//	snap, err := source.Capture(ctx)
//	if err != nil {
//	    return err
//	}
//	changes := differ.Diff(baseline, snap)
//	next := differ.Rebaseline(baseline, snap)
package vr
