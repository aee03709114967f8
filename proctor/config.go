package proctor

import (
	"github.com/pkg/errors"
)

// Config holds tuning knobs of the tracker and anomaly detector.
type Config struct {
	// Re-match distance gate between box centers (pixels). Default 300.0
	PositionSimilarityThreshold float64
	// Re-match area-ratio gate. Default 0.8
	SizeSimilarityThreshold float64
	// Grace period before a missing identity is evicted (frames). Default 30
	MaxMissingFrames int
	// Consecutive suspicious frames needed to raise an anomaly. Default 5
	ConsecutiveSuspiciousFrames int
	// Cooldown before a raised anomaly may be cleared (frames). Default 30
	CheatingResetFrames int
	// Horizontal threshold is faceWidth * HorizontalThresholdMultiplier * HorizontalScale
	HorizontalThresholdMultiplier float64
	HorizontalScale               float64
	// Vertical threshold is faceWidth * VerticalThresholdMultiplier * VerticalScale
	VerticalThresholdMultiplier float64
	VerticalScale               float64
	// Phone counts as close when its center is within ProximityRatio * person height. Default 0.4
	ProximityRatio float64
	// Number of landmark samples kept for smoothing. Default 5
	WindowSize int
	// Size ratio weight in re-entry score (missing identities). Default 50
	ReentrySizeWeight float64
	// Size ratio weight in reassignment score (live identities). Default 100
	ReassignSizeWeight float64
}

// DefaultConfig returns default tuning
func DefaultConfig() Config {
	return Config{
		PositionSimilarityThreshold:   300.0,
		SizeSimilarityThreshold:       0.8,
		MaxMissingFrames:              30,
		ConsecutiveSuspiciousFrames:   5,
		CheatingResetFrames:           30,
		HorizontalThresholdMultiplier: 4.8,
		HorizontalScale:               100.0,
		VerticalThresholdMultiplier:   3.0,
		VerticalScale:                 80.0,
		ProximityRatio:                0.4,
		WindowSize:                    5,
		ReentrySizeWeight:             50.0,
		ReassignSizeWeight:            100.0,
	}
}

// Validate checks that every knob is usable
func (cfg Config) Validate() error {
	if cfg.PositionSimilarityThreshold <= 0 {
		return errors.Errorf("position similarity threshold must be positive, got %f", cfg.PositionSimilarityThreshold)
	}
	if cfg.SizeSimilarityThreshold <= 0 {
		return errors.Errorf("size similarity threshold must be positive, got %f", cfg.SizeSimilarityThreshold)
	}
	if cfg.MaxMissingFrames < 0 {
		return errors.Errorf("max missing frames must be non-negative, got %d", cfg.MaxMissingFrames)
	}
	if cfg.ConsecutiveSuspiciousFrames < 1 {
		return errors.Errorf("consecutive suspicious frames must be at least 1, got %d", cfg.ConsecutiveSuspiciousFrames)
	}
	if cfg.CheatingResetFrames < 0 {
		return errors.Errorf("cheating reset frames must be non-negative, got %d", cfg.CheatingResetFrames)
	}
	if cfg.HorizontalThresholdMultiplier < 0 || cfg.HorizontalScale < 0 {
		return errors.New("horizontal threshold multiplier and scale must be non-negative")
	}
	if cfg.VerticalThresholdMultiplier < 0 || cfg.VerticalScale < 0 {
		return errors.New("vertical threshold multiplier and scale must be non-negative")
	}
	if cfg.ProximityRatio < 0 {
		return errors.Errorf("proximity ratio must be non-negative, got %f", cfg.ProximityRatio)
	}
	if cfg.WindowSize < 1 {
		return errors.Errorf("window size must be at least 1, got %d", cfg.WindowSize)
	}
	if cfg.ReentrySizeWeight < 0 || cfg.ReassignSizeWeight < 0 {
		return errors.New("size weights must be non-negative")
	}
	return nil
}
