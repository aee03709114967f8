package proctor

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
)

// Sample is a landmark aggregate observed at some frame
type Sample struct {
	Aggregate Point `json:"aggregate"`
	Frame     int   `json:"frame"`
}

// Incident is logged when an identity's anomaly flag is raised.
type Incident struct {
	Frame      int     `json:"frame"`
	HDelta     float64 `json:"h_delta"`
	VDelta     float64 `json:"v_delta"`
	Horizontal string  `json:"horizontal"`
	Vertical   string  `json:"vertical"`
	// Combined label of both axes, e.g. "right-up"
	Direction string `json:"direction"`
}

// boxFilter is the part of kalman_filter.KalmanBBox used by identities
type boxFilter interface {
	Predict()
	Update(cx, cy, w, h float64) error
	GetState() (float64, float64, float64, float64)
	GetVelocity() (float64, float64, float64, float64)
}

// Identity is a persistent person tracked across frames.
type Identity struct {
	stableID int
	// Current upstream tracker id, valid only when linked
	ephemeralID int
	linked      bool

	lastBox        Rectangle
	firstSeenFrame int
	lastSeenFrame  int

	// Captured once and never replaced
	baseline *Point
	samples  []Sample

	suspicionCounter int
	anomalyActive    bool
	incidents        []Incident
	lastResetFrame   int

	// Frames in which a phone was close to this person
	phoneFrames int

	smoothedBox Rectangle
	tracker     boxFilter
}

// newIdentity creates identity linked to the given ephemeral id
func newIdentity(stableID, ephemeralID int, box Rectangle, frame int) *Identity {
	center := box.Center()

	// Kalman filter props
	uCx := 1.0
	uCy := 1.0
	uW := 0.0
	uH := 0.0
	stdDevA := 2.0
	stdDevMCx := 0.1
	stdDevMCy := 0.1
	stdDevMW := 0.1
	stdDevMH := 0.1
	kf := kalman_filter.NewKalmanBBox(
		1.0, uCx, uCy, uW, uH,
		stdDevA, stdDevMCx, stdDevMCy, stdDevMW, stdDevMH,
		kalman_filter.WithStateBBox(center.X, center.Y, box.Width, box.Height),
	)

	return &Identity{
		stableID:       stableID,
		ephemeralID:    ephemeralID,
		linked:         true,
		lastBox:        box,
		firstSeenFrame: frame,
		lastSeenFrame:  frame,
		samples:        make([]Sample, 0, 5),
		incidents:      make([]Incident, 0),
		lastResetFrame: frame,
		smoothedBox:    box,
		tracker:        kf,
	}
}

// StableID returns identity's persistent identifier
func (identity *Identity) StableID() int {
	return identity.stableID
}

// EphemeralID returns current upstream id and whether identity is linked to one
func (identity *Identity) EphemeralID() (int, bool) {
	return identity.ephemeralID, identity.linked
}

// LastBox returns last observed (raw) bounding box
func (identity *Identity) LastBox() Rectangle {
	return identity.lastBox
}

// FirstSeenFrame returns frame of creation
func (identity *Identity) FirstSeenFrame() int {
	return identity.firstSeenFrame
}

// LastSeenFrame returns last frame identity was detected at
func (identity *Identity) LastSeenFrame() int {
	return identity.lastSeenFrame
}

// Baseline returns movement baseline if it has been captured
func (identity *Identity) Baseline() (Point, bool) {
	if identity.baseline == nil {
		return Point{}, false
	}
	return *identity.baseline, true
}

// Samples returns retained landmark samples, oldest first. Be careful: this is not copy, but reference
func (identity *Identity) Samples() []Sample {
	return identity.samples
}

// SuspicionCounter returns current suspicion counter
func (identity *Identity) SuspicionCounter() int {
	return identity.suspicionCounter
}

// AnomalyActive returns whether anomaly flag is raised
func (identity *Identity) AnomalyActive() bool {
	return identity.anomalyActive
}

// Incidents returns incident log. Be careful: this is not copy, but reference
func (identity *Identity) Incidents() []Incident {
	return identity.incidents
}

// LastResetFrame returns frame when anomaly cooldown was last (re)started
func (identity *Identity) LastResetFrame() int {
	return identity.lastResetFrame
}

// PhoneFrames returns number of frames with a phone near this person
func (identity *Identity) PhoneFrames() int {
	return identity.phoneFrames
}

// SmoothedBox returns Kalman-filtered bounding box
func (identity *Identity) SmoothedBox() Rectangle {
	return identity.smoothedBox
}

// Velocity returns current velocity estimates from Kalman filter
func (identity *Identity) Velocity() Velocity {
	vx, vy, vw, vh := identity.tracker.GetVelocity()
	return Velocity{VX: vx, VY: vy, VW: vw, VH: vh}
}

// link binds identity to the upstream id
func (identity *Identity) link(ephemeralID int) {
	identity.ephemeralID = ephemeralID
	identity.linked = true
}

func (identity *Identity) unlink() {
	identity.linked = false
}

// captureBaseline sets baseline unless it is already there
func (identity *Identity) captureBaseline(aggregate Point) {
	if identity.baseline != nil {
		return
	}
	baseline := aggregate
	identity.baseline = &baseline
}

// observe stores the new raw box and executes Kalman filter predict and update steps.
// The raw box is what matching uses, the filtered one is for annotation.
// On filter failure the raw box becomes the smoothed one, so state stays consistent.
func (identity *Identity) observe(box Rectangle, frame int) error {
	identity.lastBox = box
	identity.lastSeenFrame = frame
	if frame == identity.firstSeenFrame {
		return nil
	}
	identity.tracker.Predict()
	center := box.Center()
	err := identity.tracker.Update(center.X, center.Y, box.Width, box.Height)
	if err != nil {
		identity.smoothedBox = box
		return errors.Wrap(err, "Can't update identity box filter")
	}
	cx, cy, w, h := identity.tracker.GetState()
	identity.smoothedBox = Rectangle{
		X:      cx - w/2.0,
		Y:      cy - h/2.0,
		Width:  w,
		Height: h,
	}
	return nil
}
