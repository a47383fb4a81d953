// Package catalog persists the stable identities the bridge publishes.
//
// Two things must survive restarts, re-pairing, and runtime upgrades:
//
//   - The instance UUID, which anchors the Home Assistant device registry
//     entry. All entities from one bridge installation share it.
//   - Device slot assignments, which map hardware serial numbers to the
//     short entity ids used in topics (ctrl-1, tracker-2, ref-1). The VR
//     runtime enumerates devices in arbitrary order per session, so device
//     indexes cannot appear in topics; serials can, but they are long,
//     ugly, and occasionally contain characters unfit for a topic segment.
//
// Slots are assigned per class in first-seen order and never reused.
// Entity ids are therefore permanent: automations written against
// vr-status/den/ctrl-1/battery keep working after every restart.
//
// The catalog is backed by the SQLite database opened through the
// infrastructure/database package; this package only runs queries and
// assumes the schema is migrated.
package catalog
