package bridge

import (
	"testing"

	"github.com/nerrad567/vr-bridge/internal/vr"
)

// ─── Entry Lifecycle ────────────────────────────────────────────────────────

func TestRegistryResolveCreatesOnce(t *testing.T) {
	reg := NewRegistry()

	first := reg.Resolve("ctrl-1")
	if first == nil {
		t.Fatal("Resolve returned nil")
	}
	if first.EntityID != "ctrl-1" {
		t.Errorf("EntityID = %q, want %q", first.EntityID, "ctrl-1")
	}
	if first.Announced {
		t.Error("new entry should not be announced")
	}
	if first.LastPublished == nil {
		t.Error("new entry should carry an empty publish map, not nil")
	}

	second := reg.Resolve("ctrl-1")
	if first != second {
		t.Error("Resolve created a second entry for the same id")
	}
	if reg.Len() != 1 {
		t.Errorf("Len = %d, want 1", reg.Len())
	}
}

func TestRegistryForget(t *testing.T) {
	reg := NewRegistry()

	entry := reg.Resolve("tracker-1")
	entry.Announced = true
	entry.LastPublished["battery"] = "80"

	reg.Forget("tracker-1")
	if reg.Len() != 0 {
		t.Fatalf("Len after Forget = %d, want 0", reg.Len())
	}

	// A reappearance starts clean: nothing announced, nothing published.
	fresh := reg.Resolve("tracker-1")
	if fresh.Announced {
		t.Error("entry resurrected with announced flag set")
	}
	if len(fresh.LastPublished) != 0 {
		t.Errorf("entry resurrected with %d published values", len(fresh.LastPublished))
	}
}

func TestRegistryForgetUnknownIsNoop(t *testing.T) {
	reg := NewRegistry()
	reg.Resolve("headset")

	reg.Forget("never-seen")
	if reg.Len() != 1 {
		t.Errorf("Len = %d, want 1", reg.Len())
	}
}

// ─── Announcement Tracking ──────────────────────────────────────────────────

func TestRegistryMarkAnnounced(t *testing.T) {
	reg := NewRegistry()
	reg.Resolve("headset")

	reg.MarkAnnounced("headset")
	if !reg.Resolve("headset").Announced {
		t.Fatal("entry not marked announced")
	}

	// Marking twice must not disturb anything else on the entry.
	reg.Resolve("headset").LastPublished["state"] = "ON"
	reg.MarkAnnounced("headset")
	if got := reg.Resolve("headset").LastPublished["state"]; got != "ON" {
		t.Errorf("LastPublished[state] = %q, want %q", got, "ON")
	}
}

func TestRegistryForceReannounce(t *testing.T) {
	reg := NewRegistry()

	for _, id := range []string{"headset", "ctrl-1", "boundary"} {
		entry := reg.Resolve(id)
		entry.Descriptor = &vr.EntityDescriptor{EntityID: id}
		entry.Announced = true
		entry.LastPublished["state"] = "ON"
	}

	reg.ForceReannounce()

	for _, id := range []string{"headset", "ctrl-1", "boundary"} {
		entry := reg.Resolve(id)
		if entry.Announced {
			t.Errorf("%s still announced after ForceReannounce", id)
		}
		if len(entry.LastPublished) != 0 {
			t.Errorf("%s kept %d published values after ForceReannounce", id, len(entry.LastPublished))
		}
		if entry.Descriptor == nil {
			t.Errorf("%s lost its descriptor", id)
		}
	}
	if reg.Len() != 3 {
		t.Errorf("Len = %d, want 3", reg.Len())
	}
}

// ─── Ordering ───────────────────────────────────────────────────────────────

func TestRegistrySortedOrder(t *testing.T) {
	reg := NewRegistry()
	for _, id := range []string{"tracker-2", "active", "headset", "ctrl-1"} {
		reg.Resolve(id)
	}

	var got []string
	for _, entry := range reg.sorted() {
		got = append(got, entry.EntityID)
	}

	want := []string{"active", "ctrl-1", "headset", "tracker-2"}
	if len(got) != len(want) {
		t.Fatalf("sorted returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sorted[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
