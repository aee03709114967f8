package proctor

import "math"

const (
	directionNone  = "none"
	directionRight = "right"
	directionLeft  = "left"
	directionDown  = "down"
	directionUp    = "up"
)

// AnomalyState is a coarse view of an identity's anomaly machine
type AnomalyState uint16

const (
	// StateCalm means no suspicion at all
	StateCalm AnomalyState = iota
	// StateAccumulating means suspicion is building but anomaly is not raised
	StateAccumulating
	// StateFlagged means anomaly is raised
	StateFlagged
)

func (state AnomalyState) String() string {
	switch state {
	case StateAccumulating:
		return "accumulating"
	case StateFlagged:
		return "flagged"
	default:
		return "calm"
	}
}

// State returns anomaly state of the identity
func (identity *Identity) State() AnomalyState {
	switch {
	case identity.anomalyActive:
		return StateFlagged
	case identity.suspicionCounter > 0:
		return StateAccumulating
	default:
		return StateCalm
	}
}

// AnomalyDetector turns smoothed landmark displacement into a hysteresis-guarded anomaly flag.
type AnomalyDetector struct {
	consecutive int
	resetFrames int
	hMultiplier float64
	hScale      float64
	vMultiplier float64
	vScale      float64
}

// NewAnomalyDetector creates detector from tracker config
func NewAnomalyDetector(cfg Config) *AnomalyDetector {
	return &AnomalyDetector{
		consecutive: cfg.ConsecutiveSuspiciousFrames,
		resetFrames: cfg.CheatingResetFrames,
		hMultiplier: cfg.HorizontalThresholdMultiplier,
		hScale:      cfg.HorizontalScale,
		vMultiplier: cfg.VerticalThresholdMultiplier,
		vScale:      cfg.VerticalScale,
	}
}

// Thresholds returns horizontal and vertical displacement thresholds for a face of given width
func (detector *AnomalyDetector) Thresholds(faceWidth float64) (float64, float64) {
	return faceWidth * detector.hMultiplier * detector.hScale, faceWidth * detector.vMultiplier * detector.vScale
}

// Step feeds one smoothed aggregate to the machine. It must be called only for frames where the
// face is present; on other frames the counter is held as is. Returns incident if anomaly was raised on this frame.
func (detector *AnomalyDetector) Step(identity *Identity, smoothed Point, faceWidth float64, frame int) *Incident {
	baseline, ok := identity.Baseline()
	if !ok {
		return nil
	}
	dx := smoothed.X - baseline.X
	dy := smoothed.Y - baseline.Y
	hDelta := math.Abs(dx)
	vDelta := math.Abs(dy)
	hThresh, vThresh := detector.Thresholds(faceWidth)

	if hDelta > hThresh || vDelta > vThresh {
		identity.suspicionCounter++
	} else {
		identity.suspicionCounter = maxInt(0, identity.suspicionCounter-1)
	}

	if identity.anomalyActive || identity.suspicionCounter < detector.consecutive {
		return nil
	}
	identity.anomalyActive = true
	// Cooldown starts when anomaly is raised
	identity.lastResetFrame = frame
	horizontal := direction(dx, directionRight, directionLeft)
	vertical := direction(dy, directionDown, directionUp)
	incident := Incident{
		Frame:      frame,
		HDelta:     hDelta,
		VDelta:     vDelta,
		Horizontal: horizontal,
		Vertical:   vertical,
		Direction:  horizontal + "-" + vertical,
	}
	identity.incidents = append(identity.incidents, incident)
	return &incident
}

// CheckReset clears raised anomaly once suspicion fully decayed and cooldown elapsed.
// Returns true if anomaly was cleared on this frame.
func (detector *AnomalyDetector) CheckReset(identity *Identity, frame int) bool {
	if !identity.anomalyActive {
		return false
	}
	if identity.suspicionCounter != 0 || frame-identity.lastResetFrame <= detector.resetFrames {
		return false
	}
	identity.anomalyActive = false
	identity.lastResetFrame = frame
	return true
}
