// Command proctor reads detector output (one JSON frame per line), assigns stable identities,
// runs the anomaly machine and writes per-frame records and an end-of-run summary.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

var (
	inputPath    = flag.String("input", "-", "JSONL file with detector frames ('-' for stdin)")
	configPath   = flag.String("config", "", "Optional tuning file (.yaml, .yml or .json)")
	outDir       = flag.String("out-dir", "", "Directory whose data/ subdirectory gets frame_NNNN.json files and detection_summary.json")
	sqlitePath   = flag.String("sqlite", "", "Optional SQLite database for records and summary")
	redisURL     = flag.String("redis", "", "Optional redis:// URL to publish records and summary")
	redisStream  = flag.String("redis-stream", "proctor:records", "Redis stream for frame records")
	redisChannel = flag.String("redis-channel", "", "Redis channel for summary (default proctor:summary:<run id>)")
	logLevel     = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logFormat    = flag.String("log-format", "text", "Log format: text or json")
)

func main() {
	flag.Parse()

	logger, err := newLogger(*logLevel, *logFormat)
	if err != nil {
		log.Fatalf("Bad logging flags: %v", err)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := options{
		inputPath:    *inputPath,
		configPath:   *configPath,
		outDir:       *outDir,
		sqlitePath:   *sqlitePath,
		redisURL:     *redisURL,
		redisStream:  *redisStream,
		redisChannel: *redisChannel,
	}
	if err := run(ctx, opts, logger); err != nil {
		logger.Error("proctor: run failed", "error", err)
		os.Exit(1)
	}
}
