package proctor

import (
	"sort"

	"github.com/google/uuid"
)

// IdentitySummary is the end-of-run view of a single identity
type IdentitySummary struct {
	StableID       int        `json:"stable_id"`
	FirstSeenFrame int        `json:"first_seen_frame"`
	LastSeenFrame  int        `json:"last_seen_frame"`
	Evicted        bool       `json:"evicted"`
	PhoneFrames    int        `json:"phone_frames"`
	TotalIncidents int        `json:"total_incidents"`
	Incidents      []Incident `json:"incidents"`
}

// Summary is handed to reporting once the run is over
type Summary struct {
	RunID                  uuid.UUID         `json:"run_id"`
	TotalFrames            int               `json:"total_frames"`
	TotalIdentitiesCreated int               `json:"total_identities_created"`
	LiveIdentities         int               `json:"live_identities"`
	Identities             []IdentitySummary `json:"identities"`
}

func summarize(identity *Identity) IdentitySummary {
	incidents := make([]Incident, len(identity.incidents))
	copy(incidents, identity.incidents)
	return IdentitySummary{
		StableID:       identity.stableID,
		FirstSeenFrame: identity.firstSeenFrame,
		LastSeenFrame:  identity.lastSeenFrame,
		PhoneFrames:    identity.phoneFrames,
		TotalIncidents: len(incidents),
		Incidents:      incidents,
	}
}

// Summary returns statistics of the run so far. Both live and evicted identities are listed, ordered by stable id.
func (tracker *Tracker) Summary() Summary {
	registry := tracker.registry
	identities := make([]IdentitySummary, 0, len(registry.retired)+registry.Len())
	identities = append(identities, registry.retired...)
	for _, stableID := range registry.IDs() {
		identities = append(identities, summarize(registry.identities[stableID]))
	}
	sort.Slice(identities, func(i, j int) bool {
		return identities[i].StableID < identities[j].StableID
	})
	return Summary{
		RunID:                  tracker.runID,
		TotalFrames:            tracker.framesProcessed,
		TotalIdentitiesCreated: registry.TotalCreated(),
		LiveIdentities:         registry.Len(),
		Identities:             identities,
	}
}
