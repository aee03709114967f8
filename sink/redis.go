package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/LdDl/proctor-go/proctor"
)

const (
	DefaultRedisStream    = "proctor:records"
	DefaultRedisStreamLen = 10000
)

// redisClient is the part of *redis.Client used by Redis sink
type redisClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// Redis appends frame records to a capped stream and publishes the summary on a channel.
type Redis struct {
	client    redisClient
	runID     uuid.UUID
	stream    string
	streamLen int64
	channel   string
}

// RedisOption configures Redis sink
type RedisOption func(*Redis)

// WithStream overrides stream name and its approximate max length
func WithStream(stream string, maxLen int64) RedisOption {
	return func(sink *Redis) {
		sink.stream = stream
		sink.streamLen = maxLen
	}
}

// WithChannel overrides summary channel. Default is "proctor:summary:<run id>"
func WithChannel(channel string) RedisOption {
	return func(sink *Redis) {
		sink.channel = channel
	}
}

// NewRedis connects to Redis given by redis:// URL
func NewRedis(ctx context.Context, url string, runID uuid.UUID, options ...RedisOption) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "can't parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "can't reach redis")
	}
	return newRedis(client, runID, options...), nil
}

func newRedis(client redisClient, runID uuid.UUID, options ...RedisOption) *Redis {
	sink := &Redis{
		client:    client,
		runID:     runID,
		stream:    DefaultRedisStream,
		streamLen: DefaultRedisStreamLen,
		channel:   fmt.Sprintf("proctor:summary:%s", runID),
	}
	for _, option := range options {
		option(sink)
	}
	return sink
}

// WriteFrame implements Sink. One stream entry per frame
func (sink *Redis) WriteFrame(ctx context.Context, frame int, records []proctor.Record) error {
	if len(records) == 0 {
		return nil
	}
	recordsJSON, err := json.Marshal(records)
	if err != nil {
		return errors.Wrap(err, "can't marshal records")
	}
	err = sink.client.XAdd(ctx, &redis.XAddArgs{
		Stream: sink.stream,
		MaxLen: sink.streamLen,
		Approx: true,
		Values: map[string]interface{}{
			"run_id":  sink.runID.String(),
			"frame":   frame,
			"records": string(recordsJSON),
		},
	}).Err()
	return errors.Wrapf(err, "can't append frame %d to stream %s", frame, sink.stream)
}

// WriteSummary implements Sink
func (sink *Redis) WriteSummary(ctx context.Context, summary proctor.Summary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return errors.Wrap(err, "can't marshal summary")
	}
	err = sink.client.Publish(ctx, sink.channel, string(summaryJSON)).Err()
	return errors.Wrapf(err, "can't publish summary to %s", sink.channel)
}

// Close implements Sink
func (sink *Redis) Close() error {
	return sink.client.Close()
}
