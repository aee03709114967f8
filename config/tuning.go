// Package config loads tracker tuning from YAML or JSON files.
//
// Every field is optional: unset fields keep proctor.DefaultConfig values,
// so partial files are safe.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/LdDl/proctor-go/proctor"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Tuning is an overlay on top of proctor.DefaultConfig
type Tuning struct {
	// Re-identification
	PositionSimilarityThreshold *float64 `yaml:"position_similarity_threshold" json:"position_similarity_threshold,omitempty"`
	SizeSimilarityThreshold     *float64 `yaml:"size_similarity_threshold" json:"size_similarity_threshold,omitempty"`
	MaxMissingFrames            *int     `yaml:"max_missing_frames" json:"max_missing_frames,omitempty"`
	ReentrySizeWeight           *float64 `yaml:"reentry_size_weight" json:"reentry_size_weight,omitempty"`
	ReassignSizeWeight          *float64 `yaml:"reassign_size_weight" json:"reassign_size_weight,omitempty"`

	// Anomaly machine
	ConsecutiveSuspiciousFrames   *int     `yaml:"consecutive_suspicious_frames" json:"consecutive_suspicious_frames,omitempty"`
	CheatingResetFrames           *int     `yaml:"cheating_reset_frames" json:"cheating_reset_frames,omitempty"`
	HorizontalThresholdMultiplier *float64 `yaml:"horizontal_threshold_multiplier" json:"horizontal_threshold_multiplier,omitempty"`
	VerticalThresholdMultiplier   *float64 `yaml:"vertical_threshold_multiplier" json:"vertical_threshold_multiplier,omitempty"`
	HorizontalScale               *float64 `yaml:"horizontal_scale" json:"horizontal_scale,omitempty"`
	VerticalScale                 *float64 `yaml:"vertical_scale" json:"vertical_scale,omitempty"`
	WindowSize                    *int     `yaml:"window_size" json:"window_size,omitempty"`

	// Phone proximity
	ProximityRatio *float64 `yaml:"proximity_ratio" json:"proximity_ratio,omitempty"`
}

// Load reads tuning from .yaml, .yml or .json file and validates the resulting config
func Load(path string) (*Tuning, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" && ext != ".json" {
		return nil, errors.Errorf("config file must have .yaml, .yml or .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat config file")
	}
	if fileInfo.Size() > maxFileSize {
		return nil, errors.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	tuning := &Tuning{}
	if ext == ".json" {
		err = json.Unmarshal(data, tuning)
	} else {
		err = yaml.Unmarshal(data, tuning)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", cleanPath)
	}

	if err := tuning.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return tuning, nil
}

// Validate checks that overlay produces a usable config
func (tuning *Tuning) Validate() error {
	return tuning.Apply(proctor.DefaultConfig()).Validate()
}

// Apply returns copy of base with every set field overridden
func (tuning *Tuning) Apply(base proctor.Config) proctor.Config {
	cfg := base
	if tuning == nil {
		return cfg
	}
	setFloat(&cfg.PositionSimilarityThreshold, tuning.PositionSimilarityThreshold)
	setFloat(&cfg.SizeSimilarityThreshold, tuning.SizeSimilarityThreshold)
	setInt(&cfg.MaxMissingFrames, tuning.MaxMissingFrames)
	setFloat(&cfg.ReentrySizeWeight, tuning.ReentrySizeWeight)
	setFloat(&cfg.ReassignSizeWeight, tuning.ReassignSizeWeight)
	setInt(&cfg.ConsecutiveSuspiciousFrames, tuning.ConsecutiveSuspiciousFrames)
	setInt(&cfg.CheatingResetFrames, tuning.CheatingResetFrames)
	setFloat(&cfg.HorizontalThresholdMultiplier, tuning.HorizontalThresholdMultiplier)
	setFloat(&cfg.VerticalThresholdMultiplier, tuning.VerticalThresholdMultiplier)
	setFloat(&cfg.HorizontalScale, tuning.HorizontalScale)
	setFloat(&cfg.VerticalScale, tuning.VerticalScale)
	setInt(&cfg.WindowSize, tuning.WindowSize)
	setFloat(&cfg.ProximityRatio, tuning.ProximityRatio)
	return cfg
}

// Config is shorthand for Apply over proctor.DefaultConfig
func (tuning *Tuning) Config() proctor.Config {
	return tuning.Apply(proctor.DefaultConfig())
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
