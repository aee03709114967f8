package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LdDl/proctor-go/proctor"
)

// writeInput produces person walking right for 10 frames, with a phone next to him from frame 5,
// then an empty frame and second person appearing.
func writeInput(t *testing.T) string {
	t.Helper()
	var sb strings.Builder
	for frame := 0; frame < 10; frame++ {
		x := 100.0 + float64(frame)*5
		phones := "[]"
		if frame >= 5 {
			phones = fmt.Sprintf("[[%f, 200, %f, 240]]", x+200, x+240)
		}
		fmt.Fprintf(&sb, `{"frame": %d, "persons": [{"ephemeral_id": 3, "box": [%f, 50, %f, 450], "face": {"aggregate": [1000, 1200], "face_width_px": 1.5}}], "phones": %s}`+"\n",
			frame, x, x+200, phones)
	}
	sb.WriteString("\n")
	sb.WriteString(`{"frame": 10, "persons": [], "phones": []}` + "\n")
	sb.WriteString(`{"frame": 11, "persons": [{"ephemeral_id": 4, "box": [900, 50, 1100, 450]}, {"ephemeral_id": 3, "box": [150, 50, 350, 450]}]}` + "\n")

	path := filepath.Join(t.TempDir(), "frames.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

func TestRun(t *testing.T) {
	outDir := t.TempDir()
	opts := options{
		inputPath:  writeInput(t),
		outDir:     outDir,
		sqlitePath: filepath.Join(t.TempDir(), "proctor.db"),
	}
	logger := slog.New(slog.DiscardHandler)
	require.NoError(t, run(context.Background(), opts, logger))

	frameFiles, err := filepath.Glob(filepath.Join(outDir, "data", "frame_*.json"))
	require.NoError(t, err)
	assert.Len(t, frameFiles, 11, "empty frame 10 must not produce a file")

	data, err := os.ReadFile(filepath.Join(outDir, "data", "frame_0007.json"))
	require.NoError(t, err)
	var records []proctor.Record
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].StableID)
	assert.True(t, records[0].PhoneFlag)
	assert.True(t, records[0].FlaggedOverall)
	assert.True(t, records[0].FaceDetected)

	data, err = os.ReadFile(filepath.Join(outDir, "data", "frame_0011.json"))
	require.NoError(t, err)
	records = nil
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, 2, records[0].StableID, "new person gets next id")
	assert.Equal(t, 1, records[1].StableID, "returning person keeps id")

	data, err = os.ReadFile(filepath.Join(outDir, "data", "detection_summary.json"))
	require.NoError(t, err)
	var summary proctor.Summary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 12, summary.TotalFrames)
	assert.Equal(t, 2, summary.TotalIdentitiesCreated)
	require.Len(t, summary.Identities, 2)
	assert.Equal(t, 5, summary.Identities[0].PhoneFrames)
}

func TestRunConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "tuning.yaml")
	// Zero grace period: person absent in frame 10 is evicted at frame 11
	require.NoError(t, os.WriteFile(cfgPath, []byte("max_missing_frames: 0\n"), 0o644))

	outDir := t.TempDir()
	opts := options{inputPath: writeInput(t), configPath: cfgPath, outDir: outDir}
	require.NoError(t, run(context.Background(), opts, slog.New(slog.DiscardHandler)))

	data, err := os.ReadFile(filepath.Join(outDir, "data", "detection_summary.json"))
	require.NoError(t, err)
	var summary proctor.Summary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 3, summary.TotalIdentitiesCreated)
	assert.True(t, summary.Identities[0].Evicted)
}

func TestRunCancelled(t *testing.T) {
	outDir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := options{inputPath: writeInput(t), outDir: outDir}
	require.NoError(t, run(ctx, opts, slog.New(slog.DiscardHandler)))

	data, err := os.ReadFile(filepath.Join(outDir, "data", "detection_summary.json"))
	require.NoError(t, err, "summary must be written on interruption")
	var summary proctor.Summary
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, 0, summary.TotalFrames)
}

func TestRunBadInput(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"not json":      "{frame: 0}\n",
		"invalid box":   `{"frame": 0, "persons": [{"ephemeral_id": 1, "box": [10, 10, 5, 20]}]}` + "\n",
		"out of order":  `{"frame": 3, "persons": []}` + "\n" + `{"frame": 2, "persons": []}` + "\n",
		"duplicate ids": `{"frame": 0, "persons": [{"ephemeral_id": 1, "box": [0, 0, 5, 5]}, {"ephemeral_id": 1, "box": [10, 0, 15, 5]}]}` + "\n",
	}
	for name, content := range cases {
		path := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+".jsonl")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		err := run(context.Background(), options{inputPath: path}, slog.New(slog.DiscardHandler))
		assert.Error(t, err, name)
	}

	err := run(context.Background(), options{inputPath: filepath.Join(dir, "absent.jsonl")}, slog.New(slog.DiscardHandler))
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("debug", "json")
	assert.NoError(t, err)
	_, err = newLogger("WARN", "text")
	assert.NoError(t, err)
	_, err = newLogger("loud", "text")
	assert.Error(t, err)
	_, err = newLogger("info", "xml")
	assert.Error(t, err)
}
