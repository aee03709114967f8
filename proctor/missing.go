package proctor

import "sort"

// MissingEntry is a back-reference to an identity with no detection in recent frames.
type MissingEntry struct {
	StableID     int
	MissingSince int
	LastBox      Rectangle
	// Last landmark aggregate, nil if identity never had a face
	LastAggregate *Point
}

// MissingRegistry holds identities waiting for re-entry during the grace window.
type MissingRegistry struct {
	entries map[int]*MissingEntry
}

// NewMissingRegistry creates empty registry
func NewMissingRegistry() *MissingRegistry {
	return &MissingRegistry{
		entries: make(map[int]*MissingEntry),
	}
}

// Mark registers identity as missing since the given frame. Already missing identities keep their original frame.
func (missing *MissingRegistry) Mark(identity *Identity, frame int) bool {
	if _, ok := missing.entries[identity.stableID]; ok {
		return false
	}
	entry := &MissingEntry{
		StableID:     identity.stableID,
		MissingSince: frame,
		LastBox:      identity.lastBox,
	}
	if n := len(identity.samples); n > 0 {
		last := identity.samples[n-1].Aggregate
		entry.LastAggregate = &last
	}
	missing.entries[identity.stableID] = entry
	return true
}

// Clear removes entry for the stable id if any
func (missing *MissingRegistry) Clear(stableID int) {
	delete(missing.entries, stableID)
}

// Get returns entry for the stable id
func (missing *MissingRegistry) Get(stableID int) (*MissingEntry, bool) {
	entry, ok := missing.entries[stableID]
	return entry, ok
}

// Contains checks whether stable id is missing
func (missing *MissingRegistry) Contains(stableID int) bool {
	_, ok := missing.entries[stableID]
	return ok
}

// Expired returns stable ids missing for more than maxMissing frames at the given frame, ascending
func (missing *MissingRegistry) Expired(frame, maxMissing int) []int {
	expired := make([]int, 0)
	for stableID, entry := range missing.entries {
		if frame-entry.MissingSince > maxMissing {
			expired = append(expired, stableID)
		}
	}
	sort.Ints(expired)
	return expired
}

// Entries returns all entries ordered by stable id
func (missing *MissingRegistry) Entries() []*MissingEntry {
	entries := make([]*MissingEntry, 0, len(missing.entries))
	for _, entry := range missing.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].StableID < entries[j].StableID
	})
	return entries
}

// Len returns number of missing identities
func (missing *MissingRegistry) Len() int {
	return len(missing.entries)
}
