package proctor

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Tracker gives stable identities to per-frame person detections and runs
// the anomaly machine on top of every identity.
// It is not safe for concurrent use: frames must be fed one at a time, in order.
type Tracker struct {
	cfg      Config
	runID    uuid.UUID
	logger   *slog.Logger
	registry *Registry
	mapping  *EphemeralMapping
	missing  *MissingRegistry
	matcher  *Matcher
	smoother *Smoother
	detector *AnomalyDetector

	framesProcessed int
	lastFrame       int
	started         bool
}

// Option configures Tracker
type Option func(*Tracker)

// WithLogger sets logger for lifecycle events. Default discards everything
func WithLogger(logger *slog.Logger) Option {
	return func(tracker *Tracker) {
		tracker.logger = logger
	}
}

// WithRunID overrides generated run identifier
func WithRunID(runID uuid.UUID) Option {
	return func(tracker *Tracker) {
		tracker.runID = runID
	}
}

// NewDefaultTracker creates tracker with DefaultConfig
func NewDefaultTracker(options ...Option) *Tracker {
	tracker, err := NewTracker(DefaultConfig(), options...)
	if err != nil {
		panic("default config must be valid: " + err.Error())
	}
	return tracker
}

// NewTracker creates tracker with specified config
func NewTracker(cfg Config, options ...Option) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid tracker config")
	}
	registry := NewRegistry()
	mapping := NewEphemeralMapping()
	missing := NewMissingRegistry()
	tracker := &Tracker{
		cfg:      cfg,
		runID:    uuid.New(),
		logger:   slog.New(slog.DiscardHandler),
		registry: registry,
		mapping:  mapping,
		missing:  missing,
		matcher:  NewMatcher(cfg, registry, mapping, missing),
		smoother: NewSmoother(cfg.WindowSize),
		detector: NewAnomalyDetector(cfg),
	}
	for _, option := range options {
		option(tracker)
	}
	return tracker, nil
}

// RunID returns identifier of this run
func (tracker *Tracker) RunID() uuid.UUID {
	return tracker.runID
}

// Config returns tracker config
func (tracker *Tracker) Config() Config {
	return tracker.cfg
}

// Registry returns identity registry. Read-only use is expected
func (tracker *Tracker) Registry() *Registry {
	return tracker.registry
}

// Missing returns missing registry. Read-only use is expected
func (tracker *Tracker) Missing() *MissingRegistry {
	return tracker.missing
}

// Mapping returns ephemeral mapping. Read-only use is expected
func (tracker *Tracker) Mapping() *EphemeralMapping {
	return tracker.mapping
}

// ProcessFrame resolves all detections of the frame and returns one record per detection in input order.
// Invalid frame is rejected before any state is touched, and a valid frame is always applied in full.
// Frame indices may skip values, but must grow.
func (tracker *Tracker) ProcessFrame(frame Frame) ([]Record, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	if tracker.started && frame.Index <= tracker.lastFrame {
		return nil, errors.Wrapf(ErrFrameOrder, "got frame %d after frame %d", frame.Index, tracker.lastFrame)
	}
	tracker.started = true
	tracker.lastFrame = frame.Index
	tracker.framesProcessed++

	// Forget upstream ids which are gone, so a recycled id can't be sticky-matched to another person
	seen := make(map[int]struct{}, len(frame.Persons))
	for _, det := range frame.Persons {
		seen[det.EphemeralID] = struct{}{}
	}
	tracker.mapping.Retain(seen)

	// Evict before matching: never re-identify against an identity whose grace period is over
	for _, stableID := range tracker.missing.Expired(frame.Index, tracker.cfg.MaxMissingFrames) {
		tracker.evict(stableID, frame.Index)
	}

	// Sticky matches first: direct continuity wins over any re-identification of other detections
	claimed := make(map[int]struct{}, len(frame.Persons))
	resolved := make([]*Identity, len(frame.Persons))
	for i, det := range frame.Persons {
		if stableID, ok := tracker.matcher.Sticky(det.EphemeralID, det.Box, claimed); ok {
			resolved[i] = tracker.adopt(det, stableID)
			claimed[stableID] = struct{}{}
		}
	}
	for i, det := range frame.Persons {
		if resolved[i] != nil {
			continue
		}
		resolved[i] = tracker.resolve(det, frame.Index, claimed)
		claimed[resolved[i].stableID] = struct{}{}
	}

	records := make([]Record, 0, len(frame.Persons))
	for i, det := range frame.Persons {
		records = append(records, tracker.update(resolved[i], det, frame))
	}

	for _, stableID := range tracker.registry.IDs() {
		if _, ok := claimed[stableID]; ok {
			continue
		}
		identity := tracker.registry.identities[stableID]
		if tracker.missing.Mark(identity, frame.Index) {
			tracker.mapping.UnbindStable(stableID)
			identity.unlink()
			tracker.logger.Debug("proctor: identity missing", "stable_id", stableID, "frame", frame.Index)
		}
	}
	return records, nil
}

// resolve runs re-identification for detection without sticky match.
// Always returns an identity: matched one or newly created
func (tracker *Tracker) resolve(det Detection, frame int, claimed map[int]struct{}) *Identity {
	stableID, tier := tracker.matcher.Rematch(det.EphemeralID, det.Box, claimed)
	if tier == MatchNone {
		identity := tracker.registry.Create(det.EphemeralID, det.Box, frame)
		tracker.mapping.Bind(det.EphemeralID, identity.stableID)
		tracker.logger.Debug("proctor: identity created",
			"stable_id", identity.stableID,
			"ephemeral_id", det.EphemeralID,
			"frame", frame)
		return identity
	}
	tracker.logger.Debug("proctor: identity re-identified",
		"stable_id", stableID,
		"ephemeral_id", det.EphemeralID,
		"tier", tier.String(),
		"frame", frame)
	return tracker.adopt(det, stableID)
}

// adopt links matched identity to the detection's ephemeral id
func (tracker *Tracker) adopt(det Detection, stableID int) *Identity {
	identity := tracker.registry.identities[stableID]
	tracker.missing.Clear(stableID)
	tracker.mapping.Bind(det.EphemeralID, stableID)
	identity.link(det.EphemeralID)
	return identity
}

// update applies detection to the identity: box, landmarks, anomaly machine and phone proximity
// Filter failure is not fatal: raw box stands in for the smoothed one on that frame.
func (tracker *Tracker) update(identity *Identity, det Detection, frame Frame) Record {
	if err := identity.observe(det.Box, frame.Index); err != nil {
		tracker.logger.Warn("proctor: box filter failed",
			"stable_id", identity.stableID,
			"frame", frame.Index,
			"error", err)
	}
	if det.Face != nil {
		smoothed := tracker.smoother.Observe(identity, det.Face.Aggregate, frame.Index)
		if incident := tracker.detector.Step(identity, smoothed, det.Face.WidthPx, frame.Index); incident != nil {
			tracker.logger.Info("proctor: anomaly raised",
				"stable_id", identity.stableID,
				"frame", frame.Index,
				"h_delta", incident.HDelta,
				"v_delta", incident.VDelta,
				"direction", incident.Direction)
		}
	}
	if tracker.detector.CheckReset(identity, frame.Index) {
		tracker.logger.Info("proctor: anomaly cleared", "stable_id", identity.stableID, "frame", frame.Index)
	}

	phone := PhoneFlag(det.Box, frame.Phones, tracker.cfg.ProximityRatio)
	if phone {
		identity.phoneFrames++
	}
	return Record{
		StableID:         identity.stableID,
		EphemeralID:      det.EphemeralID,
		Frame:            frame.Index,
		Box:              det.Box,
		FaceDetected:     det.Face != nil,
		PhoneFlag:        phone,
		AnomalyActive:    identity.anomalyActive,
		FlaggedOverall:   identity.anomalyActive || phone,
		SuspicionCounter: identity.suspicionCounter,
		TotalIncidents:   len(identity.incidents),
		SmoothedBox:      identity.smoothedBox,
		Velocity:         identity.Velocity(),
	}
}

// evict removes identity from registry, mapping and missing set in one step
func (tracker *Tracker) evict(stableID, frame int) {
	tracker.missing.Clear(stableID)
	tracker.mapping.UnbindStable(stableID)
	tracker.registry.Remove(stableID)
	tracker.logger.Debug("proctor: identity evicted", "stable_id", stableID, "frame", frame)
}
