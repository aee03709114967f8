package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/LdDl/proctor-go/proctor"
)

const (
	dataDirName     = "data"
	summaryFileName = "detection_summary.json"
)

// JSONDir writes one JSON file per frame and the summary (detection_summary.json) into <root>/data.
// Frames without any person produce no file.
type JSONDir struct {
	root string
}

// NewJSONDir creates output directories if needed
func NewJSONDir(root string) (*JSONDir, error) {
	if err := os.MkdirAll(filepath.Join(root, dataDirName), 0o755); err != nil {
		return nil, errors.Wrap(err, "can't create output directory")
	}
	return &JSONDir{root: root}, nil
}

// FramePath returns file name used for the given frame
func (sink *JSONDir) FramePath(frame int) string {
	return filepath.Join(sink.root, dataDirName, fmt.Sprintf("frame_%04d.json", frame))
}

// SummaryPath returns file name of the summary
func (sink *JSONDir) SummaryPath() string {
	return filepath.Join(sink.root, dataDirName, summaryFileName)
}

// WriteFrame implements Sink
func (sink *JSONDir) WriteFrame(ctx context.Context, frame int, records []proctor.Record) error {
	if len(records) == 0 {
		return nil
	}
	return writeJSON(sink.FramePath(frame), records)
}

// WriteSummary implements Sink
func (sink *JSONDir) WriteSummary(ctx context.Context, summary proctor.Summary) error {
	return writeJSON(sink.SummaryPath(), summary)
}

// Close implements Sink
func (sink *JSONDir) Close() error {
	return nil
}

// writeJSON goes through temporary file so readers never see partial output
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "can't marshal %s", filepath.Base(path))
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "can't write %s", tmp)
	}
	return errors.Wrapf(os.Rename(tmp, path), "can't move %s into place", filepath.Base(path))
}
