package proctor

// MatchTier tells which step of re-identification resolved a detection
type MatchTier uint16

const (
	// MatchNone means nothing qualified and a new identity must be created
	MatchNone MatchTier = iota
	// MatchSticky means the ephemeral id mapping was kept
	MatchSticky
	// MatchReentry means a missing identity came back
	MatchReentry
	// MatchReassign means a live identity changed its ephemeral id without a gap
	MatchReassign
)

func (tier MatchTier) String() string {
	switch tier {
	case MatchSticky:
		return "sticky"
	case MatchReentry:
		return "reentry"
	case MatchReassign:
		return "reassign"
	default:
		return "new"
	}
}

// Matcher resolves a detection to an existing identity.
// It only reads the registry; the only mutation it does is dropping a stale mapping.
type Matcher struct {
	cfg      Config
	registry *Registry
	mapping  *EphemeralMapping
	missing  *MissingRegistry
}

// NewMatcher creates matcher over the given stores
func NewMatcher(cfg Config, registry *Registry, mapping *EphemeralMapping, missing *MissingRegistry) *Matcher {
	return &Matcher{
		cfg:      cfg,
		registry: registry,
		mapping:  mapping,
		missing:  missing,
	}
}

// Match finds existing identity for the detection. Identities in claimed set were already taken
// by another detection of the same frame and are never returned.
func (matcher *Matcher) Match(ephemeralID int, box Rectangle, claimed map[int]struct{}) (int, MatchTier) {
	if stableID, ok := matcher.Sticky(ephemeralID, box, claimed); ok {
		return stableID, MatchSticky
	}
	return matcher.Rematch(ephemeralID, box, claimed)
}

// Sticky checks tier 1 only: the identity bound to the ephemeral id is kept while its box stays close.
// A mapping that fails the check is dropped.
func (matcher *Matcher) Sticky(ephemeralID int, box Rectangle, claimed map[int]struct{}) (int, bool) {
	stableID, ok := matcher.mapping.Lookup(ephemeralID)
	if !ok {
		return 0, false
	}
	if identity, ok := matcher.registry.Get(stableID); ok {
		if _, taken := claimed[stableID]; !taken {
			distance := euclideanDistance(box.Center(), identity.lastBox.Center())
			if distance < matcher.cfg.PositionSimilarityThreshold {
				return stableID, true
			}
		}
	}
	// Stale: different object got the same upstream id
	matcher.mapping.Unbind(ephemeralID)
	return 0, false
}

// Rematch runs tiers 2 and 3: re-entry of a missing identity, then reassignment of a live one.
// Sticky matches of the frame must be in claimed set already, so tier 3 never steals a continuous track.
func (matcher *Matcher) Rematch(ephemeralID int, box Rectangle, claimed map[int]struct{}) (int, MatchTier) {
	center := box.Center()

	// 2. Re-entry of missing identity
	reentry := make(candidateHeap, 0)
	for _, entry := range matcher.missing.Entries() {
		if _, taken := claimed[entry.StableID]; taken {
			continue
		}
		distance := euclideanDistance(center, entry.LastBox.Center())
		ratio := sizeRatio(box, entry.LastBox)
		if distance < matcher.cfg.PositionSimilarityThreshold*2 && ratio < matcher.cfg.SizeSimilarityThreshold {
			reentry.Push(&candidate{
				stableID: entry.StableID,
				score:    distance + ratio*matcher.cfg.ReentrySizeWeight,
			})
		}
	}
	if reentry.Len() > 0 {
		return reentry.Pop().stableID, MatchReentry
	}

	// 3. Reassignment of live identity which is not linked to this ephemeral id
	reassign := make(candidateHeap, 0)
	for _, stableID := range matcher.registry.IDs() {
		if matcher.missing.Contains(stableID) {
			continue
		}
		if _, taken := claimed[stableID]; taken {
			continue
		}
		identity := matcher.registry.identities[stableID]
		if currentID, linked := identity.EphemeralID(); linked && currentID == ephemeralID {
			continue
		}
		distance := euclideanDistance(center, identity.lastBox.Center())
		ratio := sizeRatio(box, identity.lastBox)
		if distance < matcher.cfg.PositionSimilarityThreshold && ratio < matcher.cfg.SizeSimilarityThreshold {
			reassign.Push(&candidate{
				stableID: stableID,
				score:    distance + ratio*matcher.cfg.ReassignSizeWeight,
			})
		}
	}
	if reassign.Len() > 0 {
		return reassign.Pop().stableID, MatchReassign
	}

	return 0, MatchNone
}
