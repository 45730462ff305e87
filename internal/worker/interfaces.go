package worker

import (
	"context"

	"github.com/google/uuid"

	"github.com/beverage/language-quiz-service/internal/model"
	"github.com/beverage/language-quiz-service/internal/queue"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// ProblemProcessor generates and persists one problem for testability.
type ProblemProcessor interface {
	GenerateOne(ctx context.Context, requestID uuid.UUID, constraints model.Constraints) (*model.Problem, error)
}

// Tracker is the slice of internal/tracker.Tracker the worker drives a
// request through. Declared here, not imported, to avoid a dependency
// cycle between worker and tracker's tests.
type Tracker interface {
	Get(ctx context.Context, id uuid.UUID) (*model.GenerationRequest, error)
	Start(ctx context.Context, id uuid.UUID) error
	RecordSuccess(ctx context.Context, id uuid.UUID, messageID string) error
	RecordFailure(ctx context.Context, id uuid.UUID, messageID string) error
	Accounted(ctx context.Context, id uuid.UUID, messageID string) (bool, error)
}
