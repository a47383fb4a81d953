package vr

import (
	"math"
	"sort"
)

// Differ compares consecutive snapshots and produces the ordered
// change sequence the publisher acts on.
type Differ struct {
	tolerance float64
}

// NewDiffer creates a diff engine. tolerance is the battery jitter
// threshold in percentage points; moves strictly below it are held
// back, moves at or above it are reported.
func NewDiffer(tolerance float64) *Differ {
	return &Differ{tolerance: tolerance}
}

// entityState is the flattened, publish-ready view of one entity
// within a snapshot.
type entityState struct {
	id     string
	attrs  []Attribute
	device *DeviceRecord // nil for the fixed entities
}

func (e entityState) describe() *EntityDescriptor {
	if e.device != nil {
		return deviceDescriptor(*e.device)
	}
	switch e.id {
	case EntityHeadset:
		return headsetDescriptor()
	case EntityActive:
		return activeDescriptor()
	case EntityApplication:
		return applicationDescriptor()
	case EntityBoundary:
		return boundaryDescriptor()
	default:
		return &EntityDescriptor{EntityID: e.id, Name: e.id}
	}
}

// entitiesOf flattens a snapshot into its present entities. The three
// fixed entities are always present; the boundary only while the
// runtime reports a calibrated play area; devices only while tracked.
func entitiesOf(s StateSnapshot) map[string]entityState {
	entities := map[string]entityState{
		EntityHeadset: {
			id:    EntityHeadset,
			attrs: []Attribute{{Name: AttrState, Value: formatBool(s.HeadsetConnected)}},
		},
		EntityActive: {
			id:    EntityActive,
			attrs: []Attribute{{Name: AttrState, Value: formatBool(s.Active)}},
		},
		EntityApplication: {
			id:    EntityApplication,
			attrs: []Attribute{{Name: AttrState, Value: s.Application}},
		},
	}
	if s.Boundary != nil {
		entities[EntityBoundary] = entityState{
			id:    EntityBoundary,
			attrs: boundaryAttributes(*s.Boundary),
		}
	}
	for i := range s.Devices {
		rec := &s.Devices[i]
		if rec.EntityID == "" {
			continue
		}
		entities[rec.EntityID] = entityState{
			id:     rec.EntityID,
			attrs:  deviceAttributes(*rec),
			device: rec,
		}
	}
	return entities
}

// Diff compares the retained baseline against a fresh snapshot.
//
// The result is ordered deterministically: disappearances first, then
// appearances, then attribute changes, each block sorted by entity id
// and the attribute block additionally by attribute name. Two runs
// over the same pair of snapshots produce identical sequences.
//
// A nil previous snapshot marks the first capture after a runtime
// connect; every present entity yields an appearance and nothing else.
//
// Parameters:
//   - previous: retained baseline, nil on the first tick
//   - current: freshly captured snapshot
//
// Returns the ordered changes, empty when the snapshots match.
func (d *Differ) Diff(previous *StateSnapshot, current StateSnapshot) []Change {
	curEntities := entitiesOf(current)
	prevEntities := map[string]entityState{}
	if previous != nil {
		prevEntities = entitiesOf(*previous)
	}

	var disappeared, appeared, changed []Change

	for id := range prevEntities {
		if _, ok := curEntities[id]; !ok {
			disappeared = append(disappeared, Change{
				Kind:     ChangeDisappeared,
				EntityID: id,
			})
		}
	}

	for id, cur := range curEntities {
		prev, ok := prevEntities[id]
		if !ok {
			appeared = append(appeared, Change{
				Kind:       ChangeAppeared,
				EntityID:   id,
				Descriptor: cur.describe(),
				Attributes: cur.attrs,
			})
			continue
		}
		changed = append(changed, d.compare(prev, cur)...)
	}

	sortChanges(disappeared)
	sortChanges(appeared)
	sortChanges(changed)

	out := make([]Change, 0, len(disappeared)+len(appeared)+len(changed))
	out = append(out, disappeared...)
	out = append(out, appeared...)
	out = append(out, changed...)
	return out
}

// compare yields the attribute changes between two states of one
// entity that persists across the pair of snapshots.
func (d *Differ) compare(prev, cur entityState) []Change {
	prevValues := make(map[string]string, len(prev.attrs))
	for _, attr := range prev.attrs {
		prevValues[attr.Name] = attr.Value
	}

	var changes []Change
	seen := make(map[string]bool, len(cur.attrs))
	for _, attr := range cur.attrs {
		seen[attr.Name] = true
		old, existed := prevValues[attr.Name]
		if existed && old == attr.Value {
			continue
		}
		if attr.Name == AttrBattery && d.batteryHeld(prev, cur) {
			continue
		}
		changes = append(changes, Change{
			Kind:      ChangeAttribute,
			EntityID:  cur.id,
			Attribute: attr.Name,
			Old:       old,
			New:       attr.Value,
		})
	}

	// Attributes the entity stopped reporting clear to empty.
	for _, attr := range prev.attrs {
		if !seen[attr.Name] {
			changes = append(changes, Change{
				Kind:      ChangeAttribute,
				EntityID:  cur.id,
				Attribute: attr.Name,
				Old:       attr.Value,
				New:       "",
			})
		}
	}
	return changes
}

// batteryHeld reports whether a battery move stays under the jitter
// tolerance. The comparison is strict: a move of exactly the tolerance
// is reported.
func (d *Differ) batteryHeld(prev, cur entityState) bool {
	if prev.device == nil || cur.device == nil {
		return false
	}
	if !prev.device.HasBattery || !cur.device.HasBattery {
		return false
	}
	return math.Abs(cur.device.Battery-prev.device.Battery) < d.tolerance
}

// Rebaseline returns the snapshot to retain for the next tick:
// current, with every battery level whose move was held back pulled
// to its previous value. A slow drain then accumulates against the
// last reported level until it crosses the tolerance, instead of
// resetting under it on every tick.
func (d *Differ) Rebaseline(previous *StateSnapshot, current StateSnapshot) StateSnapshot {
	if previous == nil || d.tolerance <= 0 {
		return current
	}

	held := make(map[string]float64, len(previous.Devices))
	for _, rec := range previous.Devices {
		if rec.EntityID != "" && rec.HasBattery {
			held[rec.EntityID] = rec.Battery
		}
	}
	if len(held) == 0 {
		return current
	}

	devices := make([]DeviceRecord, len(current.Devices))
	copy(devices, current.Devices)
	for i := range devices {
		prev, ok := held[devices[i].EntityID]
		if !ok || !devices[i].HasBattery {
			continue
		}
		if math.Abs(devices[i].Battery-prev) < d.tolerance {
			devices[i].Battery = prev
		}
	}
	current.Devices = devices
	return current
}

// Flatten returns the publishable entities of a snapshot with their
// publish-ready values, sorted by entity id. Attribute order within an
// entity is the descriptor order.
func Flatten(s StateSnapshot) []EntityView {
	entities := entitiesOf(s)
	views := make([]EntityView, 0, len(entities))
	for _, e := range entities {
		views = append(views, EntityView{EntityID: e.id, Attributes: e.attrs})
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].EntityID < views[j].EntityID
	})
	return views
}

func sortChanges(changes []Change) {
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].EntityID != changes[j].EntityID {
			return changes[i].EntityID < changes[j].EntityID
		}
		return changes[i].Attribute < changes[j].Attribute
	})
}
