package proctor

import "sort"

// Registry is the authoritative store of live identities. It owns the stable id counter.
type Registry struct {
	identities map[int]*Identity
	// Next stable id to hand out. Starts at 1, never reused
	nextID int
	// Summaries of evicted identities, in eviction order
	retired []IdentitySummary
}

// NewRegistry creates empty registry
func NewRegistry() *Registry {
	return &Registry{
		identities: make(map[int]*Identity),
		nextID:     1,
		retired:    make([]IdentitySummary, 0),
	}
}

// Create allocates next stable id and stores new identity
func (registry *Registry) Create(ephemeralID int, box Rectangle, frame int) *Identity {
	identity := newIdentity(registry.nextID, ephemeralID, box, frame)
	registry.nextID++
	registry.identities[identity.stableID] = identity
	return identity
}

// Get returns live identity
func (registry *Registry) Get(stableID int) (*Identity, bool) {
	identity, ok := registry.identities[stableID]
	return identity, ok
}

// Remove deletes identity and archives its summary. Returns false if there was no such identity.
func (registry *Registry) Remove(stableID int) bool {
	identity, ok := registry.identities[stableID]
	if !ok {
		return false
	}
	summary := summarize(identity)
	summary.Evicted = true
	registry.retired = append(registry.retired, summary)
	delete(registry.identities, stableID)
	return true
}

// IDs returns live stable ids, ascending
func (registry *Registry) IDs() []int {
	ids := make([]int, 0, len(registry.identities))
	for stableID := range registry.identities {
		ids = append(ids, stableID)
	}
	sort.Ints(ids)
	return ids
}

// Len returns number of live identities
func (registry *Registry) Len() int {
	return len(registry.identities)
}

// TotalCreated returns number of identities ever created
func (registry *Registry) TotalCreated() int {
	return registry.nextID - 1
}
