package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/LdDl/proctor-go/config"
	"github.com/LdDl/proctor-go/proctor"
	"github.com/LdDl/proctor-go/sink"
)

// Single line may carry many persons with landmarks
const maxLineSize = 16 * 1024 * 1024

type options struct {
	inputPath    string
	configPath   string
	outDir       string
	sqlitePath   string
	redisURL     string
	redisStream  string
	redisChannel string
}

func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrapf(err, "unknown log level %q", level)
	}
	handlerOpts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, handlerOpts)), nil
	default:
		return nil, errors.Errorf("unknown log format %q", format)
	}
}

func loadConfig(path string) (proctor.Config, error) {
	if path == "" {
		return proctor.DefaultConfig(), nil
	}
	tuning, err := config.Load(path)
	if err != nil {
		return proctor.Config{}, err
	}
	return tuning.Config(), nil
}

func openSinks(ctx context.Context, opts options, runID uuid.UUID) (sink.Multi, error) {
	sinks := sink.Multi{}
	if opts.outDir != "" {
		dir, err := sink.NewJSONDir(opts.outDir)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, dir)
	}
	if opts.sqlitePath != "" {
		db, err := sink.NewSQLite(ctx, opts.sqlitePath, runID)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, db)
	}
	if opts.redisURL != "" {
		redisOpts := []sink.RedisOption{sink.WithStream(opts.redisStream, sink.DefaultRedisStreamLen)}
		if opts.redisChannel != "" {
			redisOpts = append(redisOpts, sink.WithChannel(opts.redisChannel))
		}
		rdb, err := sink.NewRedis(ctx, opts.redisURL, runID, redisOpts...)
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, rdb)
	}
	return sinks, nil
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return errors.Wrap(err, "can't load config")
	}

	var input io.Reader = os.Stdin
	if opts.inputPath != "" && opts.inputPath != "-" {
		file, err := os.Open(opts.inputPath)
		if err != nil {
			return errors.Wrap(err, "can't open input")
		}
		defer file.Close()
		input = file
	}

	tracker, err := proctor.NewTracker(cfg, proctor.WithLogger(logger))
	if err != nil {
		return err
	}

	sinks, err := openSinks(ctx, opts, tracker.RunID())
	if err != nil {
		return errors.Wrap(err, "can't open sinks")
	}
	defer sinks.Close()

	logger.Info("proctor: run started", "run_id", tracker.RunID(), "sinks", len(sinks))
	if err := process(ctx, input, tracker, sinks); err != nil {
		return err
	}

	// Summary must be written even when interrupted, so it gets its own context
	summary := tracker.Summary()
	if err := sinks.WriteSummary(context.WithoutCancel(ctx), summary); err != nil {
		return errors.Wrap(err, "can't write summary")
	}
	logger.Info("proctor: run finished",
		"run_id", summary.RunID,
		"frames", summary.TotalFrames,
		"identities", summary.TotalIdentitiesCreated,
		"live", summary.LiveIdentities)
	return nil
}

// process feeds every line of input to tracker. Cancellation stops it at frame boundary without error
func process(ctx context.Context, input io.Reader, tracker *proctor.Tracker, sinks sink.Sink) error {
	// A processed frame is always persisted, even if cancellation arrives meanwhile
	writeCtx := context.WithoutCancel(ctx)
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		if ctx.Err() != nil {
			return nil
		}
		raw := scanner.Bytes()
		if len(strings.TrimSpace(string(raw))) == 0 {
			continue
		}
		var frame proctor.Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			return errors.Wrapf(err, "line %d: can't decode frame", line)
		}
		records, err := tracker.ProcessFrame(frame)
		if err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
		if err := sinks.WriteFrame(writeCtx, frame.Index, records); err != nil {
			return errors.Wrapf(err, "frame %d: can't write records", frame.Index)
		}
	}
	return errors.Wrap(scanner.Err(), "can't read input")
}
