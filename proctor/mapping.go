package proctor

// EphemeralMapping is a one-to-one lookup between upstream tracker ids and stable ids.
// Both directions are kept so rebinding never leaves a dangling entry.
type EphemeralMapping struct {
	toStable    map[int]int
	toEphemeral map[int]int
}

// NewEphemeralMapping creates empty mapping
func NewEphemeralMapping() *EphemeralMapping {
	return &EphemeralMapping{
		toStable:    make(map[int]int),
		toEphemeral: make(map[int]int),
	}
}

// Lookup returns stable id currently bound to the ephemeral id
func (mapping *EphemeralMapping) Lookup(ephemeralID int) (int, bool) {
	stableID, ok := mapping.toStable[ephemeralID]
	return stableID, ok
}

// EphemeralOf returns ephemeral id currently bound to the stable id
func (mapping *EphemeralMapping) EphemeralOf(stableID int) (int, bool) {
	ephemeralID, ok := mapping.toEphemeral[stableID]
	return ephemeralID, ok
}

// Bind links ephemeral id to stable id. Any previous partner of either side is unlinked.
func (mapping *EphemeralMapping) Bind(ephemeralID, stableID int) {
	if oldStable, ok := mapping.toStable[ephemeralID]; ok {
		delete(mapping.toEphemeral, oldStable)
	}
	if oldEphemeral, ok := mapping.toEphemeral[stableID]; ok {
		delete(mapping.toStable, oldEphemeral)
	}
	mapping.toStable[ephemeralID] = stableID
	mapping.toEphemeral[stableID] = ephemeralID
}

// Unbind removes ephemeral id from mapping
func (mapping *EphemeralMapping) Unbind(ephemeralID int) {
	stableID, ok := mapping.toStable[ephemeralID]
	if !ok {
		return
	}
	delete(mapping.toStable, ephemeralID)
	delete(mapping.toEphemeral, stableID)
}

// UnbindStable removes whatever ephemeral id is bound to the stable id
func (mapping *EphemeralMapping) UnbindStable(stableID int) {
	ephemeralID, ok := mapping.toEphemeral[stableID]
	if !ok {
		return
	}
	delete(mapping.toStable, ephemeralID)
	delete(mapping.toEphemeral, stableID)
}

// Retain drops every ephemeral id which is not in seen set. Returns number of purged entries.
func (mapping *EphemeralMapping) Retain(seen map[int]struct{}) int {
	purged := 0
	for ephemeralID, stableID := range mapping.toStable {
		if _, ok := seen[ephemeralID]; ok {
			continue
		}
		delete(mapping.toStable, ephemeralID)
		delete(mapping.toEphemeral, stableID)
		purged++
	}
	return purged
}

// Len returns number of bound pairs
func (mapping *EphemeralMapping) Len() int {
	return len(mapping.toStable)
}
