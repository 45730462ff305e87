// Package tracker exposes the named GenerationRequest lifecycle operations
// a worker and the HTTP layer drive a batch through (spec component F). It
// is a thin veneer over internal/store.GenerationRequestStore: the state
// machine itself (pending -> processing -> completed/partial/failed/expired)
// lives in the store's SQL, guarded by status-transition WHERE clauses.
package tracker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/beverage/language-quiz-service/internal/model"
	"github.com/beverage/language-quiz-service/internal/store"
)

// Tracker drives one GenerationRequest through its lifecycle.
type Tracker struct {
	requests store.GenerationRequestStore
}

func New(requests store.GenerationRequestStore) *Tracker {
	return &Tracker{requests: requests}
}

// Open creates a new pending request for count entities under constraints.
func (t *Tracker) Open(ctx context.Context, entityType model.ProblemType, count int, constraints model.Constraints) (*model.GenerationRequest, error) {
	req := &model.GenerationRequest{
		EntityType:     entityType,
		RequestedCount: count,
		Constraints:    constraints,
	}
	if err := t.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Start transitions a pending request to processing. Idempotent: calling it
// twice for the same request is a no-op on the second call.
func (t *Tracker) Start(ctx context.Context, id uuid.UUID) error {
	return t.requests.MarkProcessing(ctx, id, time.Now())
}

// RecordSuccess increments the generated counter and finalizes the request
// if every dispatched entity has now reported an outcome. messageID is the
// queue message this outcome came from: replaying the same messageID is a
// no-op on the counter (see store.GenerationRequestStore.IncrementGenerated).
func (t *Tracker) RecordSuccess(ctx context.Context, id uuid.UUID, messageID string) error {
	if err := t.requests.IncrementGenerated(ctx, id, messageID); err != nil {
		return err
	}
	return t.requests.FinalizeIfDone(ctx, id, time.Now())
}

// RecordFailure increments the failed counter and finalizes the request if
// every dispatched entity has now reported an outcome. See RecordSuccess for
// messageID's idempotency role.
func (t *Tracker) RecordFailure(ctx context.Context, id uuid.UUID, messageID string) error {
	if err := t.requests.IncrementFailed(ctx, id, messageID); err != nil {
		return err
	}
	return t.requests.FinalizeIfDone(ctx, id, time.Now())
}

// Accounted reports whether messageID has already produced a recorded
// outcome (success or failure) against id, so a worker processing a
// redelivered message can skip regenerating a problem entirely.
func (t *Tracker) Accounted(ctx context.Context, id uuid.UUID, messageID string) (bool, error) {
	return t.requests.MessageAccounted(ctx, id, messageID)
}

// Get fetches the request's current state.
func (t *Tracker) Get(ctx context.Context, id uuid.UUID) (*model.GenerationRequest, error) {
	return t.requests.Get(ctx, id)
}

// GetWithProblems fetches the request plus every problem it produced.
func (t *Tracker) GetWithProblems(ctx context.Context, id uuid.UUID) (*model.GenerationRequest, []model.Problem, error) {
	return t.requests.GetWithProblems(ctx, id)
}

// List filters requests by status/entity type for the admin listing endpoint.
func (t *Tracker) List(ctx context.Context, status *model.RequestStatus, entityType *model.ProblemType, limit int) ([]model.GenerationRequest, error) {
	return t.requests.List(ctx, status, entityType, limit)
}

// ExpireStale marks pending or processing requests whose requested_at is
// older than olderThan as expired, for a sweeper to pick up abandoned or
// crashed worker claims.
func (t *Tracker) ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	return t.requests.ExpireStale(ctx, time.Now().Add(-olderThan))
}

// Discard removes a just-opened request outright. Used when the broker
// publish that must follow Open fails, so no orphaned request survives a
// failed enqueue.
func (t *Tracker) Discard(ctx context.Context, id uuid.UUID) error {
	return t.requests.Delete(ctx, id)
}

// Purge deletes terminal requests older than cutoff, for the admin CLI.
func (t *Tracker) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	return t.requests.DeleteOlderThan(ctx, cutoff)
}
