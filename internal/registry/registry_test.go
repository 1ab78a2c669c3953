package registry

import "testing"

func TestRegistryMembership(t *testing.T) {
	reg := New()
	id := NewID()

	if reg.Contains(id) {
		t.Fatal("fresh registry should not contain the id")
	}
	reg.Add(id)
	if !reg.Contains(id) {
		t.Fatal("id should be present after Add")
	}
	reg.Remove(id)
	if reg.Contains(id) {
		t.Fatal("id should be gone after Remove")
	}
}

func TestRemoveUnknownIDIsNoOp(t *testing.T) {
	reg := New()
	reg.Remove(NewID())
	reg.Remove(ID("not-registered"))
}

func TestActiveSnapshot(t *testing.T) {
	reg := New()
	first, second := NewID(), NewID()
	reg.Add(first)
	reg.Add(second)

	active := reg.Active()
	if len(active) != 2 {
		t.Fatalf("expected 2 active ids, got %d", len(active))
	}
	seen := map[ID]bool{}
	for _, id := range active {
		seen[id] = true
	}
	if !seen[first] || !seen[second] {
		t.Fatalf("snapshot missing ids: %v", active)
	}
}
