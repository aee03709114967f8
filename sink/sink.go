// Package sink persists tracker output: per-frame records and the end-of-run summary.
package sink

import (
	"context"

	"github.com/pkg/errors"

	"github.com/LdDl/proctor-go/proctor"
)

// Sink receives tracker output. Frames arrive in processing order, summary comes last.
type Sink interface {
	WriteFrame(ctx context.Context, frame int, records []proctor.Record) error
	WriteSummary(ctx context.Context, summary proctor.Summary) error
	Close() error
}

// Multi fans out every call to all sinks in order. First error stops the fan-out
type Multi []Sink

// WriteFrame implements Sink
func (multi Multi) WriteFrame(ctx context.Context, frame int, records []proctor.Record) error {
	for i, s := range multi {
		if err := s.WriteFrame(ctx, frame, records); err != nil {
			return errors.Wrapf(err, "sink #%d", i)
		}
	}
	return nil
}

// WriteSummary implements Sink
func (multi Multi) WriteSummary(ctx context.Context, summary proctor.Summary) error {
	for i, s := range multi {
		if err := s.WriteSummary(ctx, summary); err != nil {
			return errors.Wrapf(err, "sink #%d", i)
		}
	}
	return nil
}

// Close closes every sink, even when some fail. First error is returned
func (multi Multi) Close() error {
	var first error
	for i, s := range multi {
		if err := s.Close(); err != nil && first == nil {
			first = errors.Wrapf(err, "sink #%d", i)
		}
	}
	return first
}
