package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/beverage/language-quiz-service/common/logger"
	"github.com/beverage/language-quiz-service/internal/model"
)

// GenerationMessage is the body of one dispatched generation-request task:
// "generate one problem of entity_type satisfying constraints." A request
// for N problems publishes N of these, each with Count 1, so dispatch
// parallelizes across however many workers/consumers are reading the
// stream instead of collapsing onto whichever single worker claims the
// request's one message.
type GenerationMessage struct {
	GenerationRequestID string
	EntityType          model.ProblemType
	Count               int
	Constraints         model.Constraints
	TraceID             string
	Attempt             int
}

type Producer interface {
	Enqueue(ctx context.Context, msg GenerationMessage) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
}

func NewRedisProducer(client *redis.Client, stream string) Producer {
	return &redisProducer{
		client: client,
		stream: stream,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, msg GenerationMessage) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		GenerationRequestID: &msg.GenerationRequestID,
		Component:           "worker.queue.producer",
	})

	attempt := msg.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	constraintsJSON, err := json.Marshal(msg.Constraints)
	if err != nil {
		return fmt.Errorf("marshaling constraints: %w", err)
	}

	fields := map[string]any{
		"generation_request_id": msg.GenerationRequestID,
		"entity_type":           string(msg.EntityType),
		"count":                 msg.Count,
		"constraints":           string(constraintsJSON),
		"attempt":               attempt,
	}
	if msg.TraceID != "" {
		fields["trace_id"] = msg.TraceID
	}

	// TODO - MAXLEN to keep this stream from growing unbounded. XTRIM periodically
	// or pass MAXLEN ~ with XAdd once a steady volume is known.
	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue generation request (stream=%s): %w", p.stream, err)
	}

	slog.InfoContext(ctx, "enqueued generation request",
		"generation_request_id", msg.GenerationRequestID,
		"count", msg.Count,
		"attempt", attempt,
		"stream", p.stream)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
