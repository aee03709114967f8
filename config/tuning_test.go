package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LdDl/proctor-go/proctor"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "tuning.yaml", `
position_similarity_threshold: 250
max_missing_frames: 45
consecutive_suspicious_frames: 3
proximity_ratio: 0.5
`)
	tuning, err := Load(path)
	require.NoError(t, err)

	cfg := tuning.Config()
	assert.Equal(t, 250.0, cfg.PositionSimilarityThreshold)
	assert.Equal(t, 45, cfg.MaxMissingFrames)
	assert.Equal(t, 3, cfg.ConsecutiveSuspiciousFrames)
	assert.Equal(t, 0.5, cfg.ProximityRatio)

	// Untouched fields keep defaults
	defaults := proctor.DefaultConfig()
	assert.Equal(t, defaults.SizeSimilarityThreshold, cfg.SizeSimilarityThreshold)
	assert.Equal(t, defaults.CheatingResetFrames, cfg.CheatingResetFrames)
	assert.Equal(t, defaults.HorizontalScale, cfg.HorizontalScale)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "tuning.json", `{"horizontal_threshold_multiplier": 5.2, "window_size": 7}`)
	tuning, err := Load(path)
	require.NoError(t, err)

	cfg := tuning.Config()
	assert.Equal(t, 5.2, cfg.HorizontalThresholdMultiplier)
	assert.Equal(t, 7, cfg.WindowSize)
	assert.Equal(t, 3.0, cfg.VerticalThresholdMultiplier)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name    string
		file    string
		content string
	}{
		{"wrong extension", "tuning.txt", "max_missing_frames: 1"},
		{"broken yaml", "tuning.yaml", "max_missing_frames: [1"},
		{"zero window", "tuning.yml", "window_size: 0"},
		{"negative threshold", "tuning.json", `{"position_similarity_threshold": -1}`},
	}
	for _, tc := range cases {
		path := writeFile(t, tc.file, tc.content)
		_, err := Load(path)
		assert.Error(t, err, tc.name)
	}

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestApplyNil(t *testing.T) {
	var tuning *Tuning
	assert.Equal(t, proctor.DefaultConfig(), tuning.Apply(proctor.DefaultConfig()))
}
