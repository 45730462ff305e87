package worker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/beverage/language-quiz-service/internal/queue"
)

type Config struct {
	MaxAttempts int
}

// Worker drains the generation-request stream, generating and persisting
// exactly one problem per message and recording its outcome with the
// tracker before acknowledging the message.
type Worker struct {
	consumer  Consumer
	tracker   Tracker
	processor ProblemProcessor
	cfg       Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, tracker Tracker, processor ProblemProcessor, cfg Config) *Worker {
	return &Worker{
		consumer:  consumer,
		tracker:   tracker,
		processor: processor,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	slog.InfoContext(ctx, "problem-generator worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "problem-generator worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		if err := w.processMessageSafe(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "message processing failed",
				"error", err,
				"message_id", msg.ID,
				"generation_request_id", msg.GenerationRequestID)
			w.handleFailedMessage(ctx, msg, err)
			continue
		}
		if err := w.consumer.Ack(ctx, msg); err != nil {
			slog.WarnContext(ctx, "failed to ack message", "error", err, "message_id", msg.ID)
		}
	}

	return nil
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing",
				"panic", r,
				"stack", string(debug.Stack()),
				"message_id", msg.ID,
				"generation_request_id", msg.GenerationRequestID)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// ProcessMessage generates exactly one problem for one generation request
// message and records the outcome before returning. Exported so the
// reclaimer can reuse it for messages claimed from a dead worker.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	requestID, err := uuid.Parse(msg.GenerationRequestID)
	if err != nil {
		return fmt.Errorf("parsing generation_request_id: %w", err)
	}

	if err := w.tracker.Start(ctx, requestID); err != nil {
		return fmt.Errorf("marking request processing: %w", err)
	}

	// A redelivered message (retry after crash, or a reclaim) may already
	// have its outcome recorded under this exact message id; skip
	// regenerating a problem for it rather than trusting only the
	// counter-level dedup in RecordSuccess/RecordFailure.
	accounted, err := w.tracker.Accounted(ctx, requestID, msg.ID)
	if err != nil {
		return fmt.Errorf("checking message dedup state: %w", err)
	}
	if accounted {
		slog.InfoContext(ctx, "message already accounted for, skipping (idempotent replay)",
			"message_id", msg.ID,
			"generation_request_id", msg.GenerationRequestID)
		return nil
	}

	slog.InfoContext(ctx, "processing generation request message",
		"message_id", msg.ID,
		"generation_request_id", msg.GenerationRequestID,
		"attempt", msg.Attempt)

	_, genErr := w.processor.GenerateOne(ctx, requestID, msg.Constraints)
	if genErr != nil {
		slog.ErrorContext(ctx, "problem generation failed",
			"error", genErr,
			"generation_request_id", msg.GenerationRequestID,
			"message_id", msg.ID)
		if err := w.tracker.RecordFailure(ctx, requestID, msg.ID); err != nil {
			return fmt.Errorf("recording failure: %w", err)
		}
		return nil
	}
	if err := w.tracker.RecordSuccess(ctx, requestID, msg.ID); err != nil {
		return fmt.Errorf("recording success: %w", err)
	}

	slog.InfoContext(ctx, "generation request message complete",
		"generation_request_id", msg.GenerationRequestID,
		"message_id", msg.ID)
	return nil
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "max attempts reached, sending to DLQ",
			"message_id", msg.ID,
			"generation_request_id", msg.GenerationRequestID,
			"attempts", msg.Attempt)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed message",
		"message_id", msg.ID,
		"generation_request_id", msg.GenerationRequestID,
		"attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
}
