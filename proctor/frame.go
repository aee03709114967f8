package proctor

import (
	"github.com/pkg/errors"
)

var (
	// ErrNegativeFrame is returned for frame index below zero
	ErrNegativeFrame = errors.New("frame index must be non-negative")
	// ErrFrameOrder is returned when frame index does not grow
	ErrFrameOrder = errors.New("frame index must be strictly increasing")
	// ErrInvalidBox is returned for degenerate, inverted or non-finite person and phone boxes
	ErrInvalidBox = errors.New("box must satisfy x1 < x2 and y1 < y2 with finite coordinates")
	// ErrDuplicateEphemeral is returned when two persons of one frame share ephemeral id
	ErrDuplicateEphemeral = errors.New("ephemeral id occurs more than once in a frame")
	// ErrInvalidFace is returned for non-finite landmark aggregate or negative face width
	ErrInvalidFace = errors.New("face landmarks must be finite with non-negative width")
)

// Face is the landmark extractor output aligned to a person detection.
type Face struct {
	// Sum of all landmark coordinates (not the mean)
	Aggregate Point   `json:"aggregate"`
	WidthPx   float64 `json:"face_width_px"`
}

// Detection is a single person box produced by the upstream detector/tracker.
type Detection struct {
	// Frame-local tracker id. Treated as a hint only
	EphemeralID int       `json:"ephemeral_id"`
	Box         Rectangle `json:"box"`
	// Nil when no face was found for this person in this frame
	Face *Face `json:"face,omitempty"`
}

// Frame is everything the detector produced for one video frame.
type Frame struct {
	Index   int         `json:"frame"`
	Persons []Detection `json:"persons"`
	Phones  []Rectangle `json:"phones"`
}

// Validate checks geometry and ids of the frame. It does not check ordering against previous frames.
func (frame *Frame) Validate() error {
	if frame.Index < 0 {
		return errors.Wrapf(ErrNegativeFrame, "frame %d", frame.Index)
	}
	seen := make(map[int]struct{}, len(frame.Persons))
	for i, det := range frame.Persons {
		if !validBox(det.Box) {
			return errors.Wrapf(ErrInvalidBox, "frame %d: person #%d (ephemeral id %d)", frame.Index, i, det.EphemeralID)
		}
		if _, ok := seen[det.EphemeralID]; ok {
			return errors.Wrapf(ErrDuplicateEphemeral, "frame %d: ephemeral id %d", frame.Index, det.EphemeralID)
		}
		seen[det.EphemeralID] = struct{}{}
		if det.Face != nil {
			face := det.Face
			if !isFinite(face.Aggregate.X) || !isFinite(face.Aggregate.Y) || !isFinite(face.WidthPx) || face.WidthPx < 0 {
				return errors.Wrapf(ErrInvalidFace, "frame %d: ephemeral id %d", frame.Index, det.EphemeralID)
			}
		}
	}
	for i, phone := range frame.Phones {
		if !validBox(phone) {
			return errors.Wrapf(ErrInvalidBox, "frame %d: phone #%d", frame.Index, i)
		}
	}
	return nil
}

func validBox(rect Rectangle) bool {
	return rect.isFinite() && rect.Width > 0 && rect.Height > 0
}

// Velocity is the Kalman estimate of box motion per frame
type Velocity struct {
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
	VW float64 `json:"vw"`
	VH float64 `json:"vh"`
}

// Record is the per-person result of a processed frame.
type Record struct {
	StableID         int       `json:"stable_id"`
	EphemeralID      int       `json:"ephemeral_id"`
	Frame            int       `json:"frame"`
	Box              Rectangle `json:"box"`
	FaceDetected     bool      `json:"face_detected"`
	PhoneFlag        bool      `json:"phone_flag"`
	AnomalyActive    bool      `json:"anomaly_active"`
	FlaggedOverall   bool      `json:"flagged_overall"`
	SuspicionCounter int       `json:"suspicion_counter"`
	TotalIncidents   int       `json:"total_incidents"`
	// Kalman-filtered box and its velocity, for annotation only
	SmoothedBox Rectangle `json:"smoothed_box"`
	Velocity    Velocity  `json:"velocity"`
}
