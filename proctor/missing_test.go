package proctor

import "testing"

func TestMissingRegistryMark(t *testing.T) {
	registry := NewRegistry()
	identity := registry.Create(7, NewRectFromCorners(0, 0, 100, 200), 0)
	missing := NewMissingRegistry()

	if !missing.Mark(identity, 2) {
		t.Error("First mark should register entry")
	}
	// Second mark must keep original frame
	if missing.Mark(identity, 5) {
		t.Error("Second mark should be no-op")
	}
	entry, ok := missing.Get(identity.StableID())
	if !ok {
		t.Fatal("Entry should exist")
	}
	if entry.MissingSince != 2 {
		t.Errorf("Expected missing since 2, got %d", entry.MissingSince)
	}
	if entry.LastBox != identity.LastBox() {
		t.Errorf("Expected last box %v, got %v", identity.LastBox(), entry.LastBox)
	}
	if entry.LastAggregate != nil {
		t.Error("Identity without samples should have no last aggregate")
	}

	missing.Clear(identity.StableID())
	if missing.Contains(identity.StableID()) {
		t.Error("Entry should be cleared")
	}
}

func TestMissingRegistryExpired(t *testing.T) {
	registry := NewRegistry()
	missing := NewMissingRegistry()
	for i := 0; i < 3; i++ {
		identity := registry.Create(i, NewRectFromCorners(0, 0, 10, 10), 0)
		missing.Mark(identity, i*10)
	}
	// Missing since 0, 10, 20. At frame 41 with grace 30: only id 1 (41-0 > 30) and id 2 (41-10 > 30)
	expired := missing.Expired(41, 30)
	if len(expired) != 2 || expired[0] != 1 || expired[1] != 2 {
		t.Errorf("Expected [1 2], got %v", expired)
	}
	// Boundary: exactly grace period is not expired
	expired = missing.Expired(30, 30)
	if len(expired) != 0 {
		t.Errorf("Expected nothing expired, got %v", expired)
	}
	entries := missing.Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i-1].StableID > entries[i].StableID {
			t.Errorf("Entries should be ordered by stable id: %d before %d", entries[i-1].StableID, entries[i].StableID)
		}
	}
}
