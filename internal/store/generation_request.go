package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/beverage/language-quiz-service/core/db"
	"github.com/beverage/language-quiz-service/internal/model"
)

type generationRequestStore struct {
	q db.Querier
}

func newGenerationRequestStore(q db.Querier) GenerationRequestStore {
	return &generationRequestStore{q: q}
}

const requestColumns = `
		id, entity_type, status, requested_count, generated_count, failed_count,
		requested_at, started_at, completed_at, constraints, metadata, error_message`

func (s *generationRequestStore) Get(ctx context.Context, id uuid.UUID) (*model.GenerationRequest, error) {
	row := s.q.QueryRow(ctx, `SELECT`+requestColumns+` FROM generation_requests WHERE id = $1`, id)
	return scanRequest(row)
}

func (s *generationRequestStore) GetWithProblems(ctx context.Context, id uuid.UUID) (*model.GenerationRequest, []model.Problem, error) {
	req, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.q.Query(ctx, `SELECT`+problemColumns+` FROM problems WHERE generation_request_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var problems []model.Problem
	for rows.Next() {
		p, err := scanProblemRows(rows)
		if err != nil {
			return nil, nil, err
		}
		problems = append(problems, *p)
	}
	return req, problems, rows.Err()
}

func (s *generationRequestStore) Create(ctx context.Context, r *model.GenerationRequest) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = model.RequestPending
	}
	r.RequestedAt = time.Now().UTC()

	constraintsJSON, err := json.Marshal(r.Constraints)
	if err != nil {
		return err
	}
	metadataJSON, err := json.Marshal(r.Metadata)
	if err != nil {
		return err
	}

	_, err = s.q.Exec(ctx, `
		INSERT INTO generation_requests (id, entity_type, status, requested_count, generated_count,
		                                  failed_count, requested_at, constraints, metadata, error_message)
		VALUES ($1,$2,$3,$4,0,0,$5,$6,$7,'')`,
		r.ID, r.EntityType, r.Status, r.RequestedCount, r.RequestedAt, constraintsJSON, metadataJSON)
	return err
}

// MarkProcessing is idempotent: it only advances a request from pending.
func (s *generationRequestStore) MarkProcessing(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.q.Exec(ctx, `
		UPDATE generation_requests SET status = $2, started_at = $3
		WHERE id = $1 AND status = $4`,
		id, model.RequestProcessing, at, model.RequestPending)
	return err
}

func (s *generationRequestStore) IncrementGenerated(ctx context.Context, id uuid.UUID, messageID string) error {
	return s.incrementOnce(ctx, id, messageID, "generated", "generated_count")
}

func (s *generationRequestStore) IncrementFailed(ctx context.Context, id uuid.UUID, messageID string) error {
	return s.incrementOnce(ctx, id, messageID, "failed", "failed_count")
}

// incrementOnce logs messageID against id and bumps column in the same
// statement, via a CTE so the log-insert and the counter update commit
// atomically without an explicit transaction. If messageID was already
// logged for id, the INSERT is a no-op (ON CONFLICT DO NOTHING) and so is
// the UPDATE (gated on the CTE having returned a row) — a replayed message
// never increments the counter twice.
func (s *generationRequestStore) incrementOnce(ctx context.Context, id uuid.UUID, messageID, outcome, column string) error {
	tag, err := s.q.Exec(ctx, `
		WITH logged AS (
			INSERT INTO generation_request_message_log (request_id, message_id, outcome)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING
			RETURNING request_id
		)
		UPDATE generation_requests SET `+column+` = `+column+` + 1
		WHERE id = $1 AND EXISTS (SELECT 1 FROM logged)`,
		id, messageID, outcome)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either messageID was already logged (the common idempotent-replay
		// case) or id doesn't exist; MessageAccounted/Get distinguish those
		// for callers that care, so this is not itself an error.
		return nil
	}
	return nil
}

// MessageAccounted reports whether messageID has already been recorded
// against id, so a worker can skip regenerating a problem for a redelivered
// message instead of only de-duplicating the counter update after the fact.
func (s *generationRequestStore) MessageAccounted(ctx context.Context, id uuid.UUID, messageID string) (bool, error) {
	var exists bool
	err := s.q.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM generation_request_message_log WHERE request_id = $1 AND message_id = $2)`,
		id, messageID).Scan(&exists)
	return exists, err
}

// FinalizeIfDone transitions the request to its terminal status once
// generated+failed equals requested; a no-op otherwise.
func (s *generationRequestStore) FinalizeIfDone(ctx context.Context, id uuid.UUID, at time.Time) error {
	req, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if req.Status.IsTerminal() || !req.Accounted() {
		return nil
	}

	terminal := req.TerminalStatus()
	_, err = s.q.Exec(ctx, `
		UPDATE generation_requests SET status = $2, completed_at = $3
		WHERE id = $1 AND status NOT IN ($4,$5,$6,$7)`,
		id, terminal, at, model.RequestCompleted, model.RequestPartial, model.RequestFailed, model.RequestExpired)
	return err
}

func (s *generationRequestStore) ExpireStale(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE generation_requests SET status = $1, completed_at = now()
		WHERE status IN ($2,$3) AND requested_at < $4`,
		model.RequestExpired, model.RequestPending, model.RequestProcessing, olderThan)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *generationRequestStore) List(ctx context.Context, status *model.RequestStatus, entityType *model.ProblemType, limit int) ([]model.GenerationRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	sql := `SELECT` + requestColumns + ` FROM generation_requests WHERE 1=1`
	args := []any{}
	i := 0
	if status != nil {
		i++
		sql += fmt.Sprintf(" AND status = $%d", i)
		args = append(args, *status)
	}
	if entityType != nil {
		i++
		sql += fmt.Sprintf(" AND entity_type = $%d", i)
		args = append(args, *entityType)
	}
	i++
	sql += fmt.Sprintf(" ORDER BY requested_at DESC LIMIT $%d", i)
	args = append(args, limit)

	rows, err := s.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.GenerationRequest
	for rows.Next() {
		r, err := scanRequestRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// Delete removes a single request outright. Used only to roll back a
// request record when the broker publish that should follow its creation
// fails, so no orphaned request survives a failed enqueue.
func (s *generationRequestStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM generation_requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *generationRequestStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.q.Exec(ctx, `DELETE FROM generation_requests WHERE requested_at < $1 AND status = ANY($2)`,
		cutoff, []model.RequestStatus{model.RequestCompleted, model.RequestPartial, model.RequestFailed, model.RequestExpired})
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanRequest(row pgx.Row) (*model.GenerationRequest, error) {
	var r model.GenerationRequest
	var constraintsJSON, metadataJSON []byte
	err := row.Scan(&r.ID, &r.EntityType, &r.Status, &r.RequestedCount, &r.GeneratedCount,
		&r.FailedCount, &r.RequestedAt, &r.StartedAt, &r.CompletedAt, &constraintsJSON,
		&metadataJSON, &r.ErrorMessage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(constraintsJSON, &r.Constraints); err != nil {
		return nil, err
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &r.Metadata); err != nil {
			return nil, err
		}
	}
	return &r, nil
}

func scanRequestRows(rows pgx.Rows) (*model.GenerationRequest, error) {
	var r model.GenerationRequest
	var constraintsJSON, metadataJSON []byte
	err := rows.Scan(&r.ID, &r.EntityType, &r.Status, &r.RequestedCount, &r.GeneratedCount,
		&r.FailedCount, &r.RequestedAt, &r.StartedAt, &r.CompletedAt, &constraintsJSON,
		&metadataJSON, &r.ErrorMessage)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(constraintsJSON, &r.Constraints); err != nil {
		return nil, err
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &r.Metadata); err != nil {
			return nil, err
		}
	}
	return &r, nil
}
