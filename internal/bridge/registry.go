package bridge

import (
	"sort"

	"github.com/nerrad567/vr-bridge/internal/vr"
)

// RegistryEntry is the per-entity bookkeeping the controller keeps
// between ticks.
type RegistryEntry struct {
	EntityID string

	// Descriptor is the announcement metadata captured when the
	// entity appeared. Replaced wholesale on reappearance.
	Descriptor *vr.EntityDescriptor

	// Announced records that the discovery config went out. At most
	// one announcement per entity lifetime, unless the consumer
	// ecosystem signals it lost its discovery cache.
	Announced bool

	// LastPublished maps attribute name to the last value that
	// reached the broker. Values that failed to publish are absent,
	// so the next attempt is not suppressed as a duplicate.
	LastPublished map[string]string
}

// Registry tracks every entity the bridge has told the broker about.
//
// The registry is owned by the controller goroutine and is not safe
// for concurrent use; all access happens between ticks of a single
// loop. None of its operations can fail.
type Registry struct {
	entries map[string]*RegistryEntry
}

// NewRegistry creates an empty entity registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*RegistryEntry)}
}

// Resolve returns the entry for an entity, creating it on first use.
func (r *Registry) Resolve(entityID string) *RegistryEntry {
	entry, ok := r.entries[entityID]
	if !ok {
		entry = &RegistryEntry{
			EntityID:      entityID,
			LastPublished: make(map[string]string),
		}
		r.entries[entityID] = entry
	}
	return entry
}

// MarkAnnounced records that an entity's discovery config reached the
// broker. Idempotent.
func (r *Registry) MarkAnnounced(entityID string) {
	r.Resolve(entityID).Announced = true
}

// Forget drops an entity's bookkeeping. A later reappearance starts
// from a clean entry and re-announces as if new.
func (r *Registry) Forget(entityID string) {
	delete(r.entries, entityID)
}

// ForceReannounce clears every announced flag and forgets published
// values, so the next tick republishes discovery configs and current
// state alike. Used when the consumer ecosystem reports a fresh start
// and must be treated as knowing nothing.
func (r *Registry) ForceReannounce() {
	for _, entry := range r.entries {
		entry.Announced = false
		entry.LastPublished = make(map[string]string)
	}
}

// Len reports how many entities are currently tracked.
func (r *Registry) Len() int {
	return len(r.entries)
}

// sorted returns every tracked entry ordered by entity id, so
// registry-driven publishes stay deterministic.
func (r *Registry) sorted() []*RegistryEntry {
	entries := make([]*RegistryEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].EntityID < entries[j].EntityID
	})
	return entries
}
