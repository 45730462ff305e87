// Package store is the typed persistence gateway: one interface per entity,
// implemented directly against pgx, with no generated query layer.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/beverage/language-quiz-service/internal/model"
)

// ErrNotFound is returned by Get/Update/Delete methods when no row matches.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write would violate a uniqueness invariant.
var ErrConflict = errors.New("conflict")

type VerbStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Verb, error)
	GetByInfinitive(ctx context.Context, infinitive string, aux model.Auxiliary, reflexive bool) (*model.Verb, error)
	Create(ctx context.Context, v *model.Verb) error
	Update(ctx context.Context, v *model.Verb) error
	Delete(ctx context.Context, id uuid.UUID) error
	TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
	RandomNonTest(ctx context.Context, constraints VerbConstraints) (*model.Verb, error)
	// DeleteTestTagged removes every verb (and its sentences) flagged is_test.
	DeleteTestTagged(ctx context.Context) (int64, error)
}

// VerbConstraints filters the pool a random verb is drawn from.
type VerbConstraints struct {
	Infinitive         *string
	TargetLanguageCode *string
	RequireCOD         bool
	RequireCOI         bool
}

type ConjugationStore interface {
	Get(ctx context.Context, infinitive string, aux model.Auxiliary, reflexive bool, tense model.Tense) (*model.Conjugation, error)
	Create(ctx context.Context, c *model.Conjugation) error
	Update(ctx context.Context, c *model.Conjugation) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByVerb(ctx context.Context, infinitive string, aux model.Auxiliary, reflexive bool) ([]model.Conjugation, error)
}

type SentenceStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Sentence, error)
	Create(ctx context.Context, s *model.Sentence) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByVerb(ctx context.Context, verbID uuid.UUID) error
}

// ProblemFilter is the predicate the selector matches problems against.
type ProblemFilter struct {
	ProblemType        *model.ProblemType
	GrammaticalFocus    *string
	TensesUsed          []model.Tense
	TopicTags           []string
	TargetLanguageCode  *string
	VirtualStalenessDays float64
	// CandidateIDs, when non-empty, restricts the weighted pick to this set,
	// pre-resolved by an external facet index (see internal/index). Nil
	// means "no pre-filter": evaluate the other fields against the full table.
	CandidateIDs []uuid.UUID
}

type ProblemStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Problem, error)
	Create(ctx context.Context, p *model.Problem) error
	Update(ctx context.Context, p *model.Problem) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time, topicTag *string) (int64, error)
	// SelectRandomWeighted implements the staleness-LRU weighted selection
	// (spec-level component H) and stamps last_served_at on the winner.
	SelectRandomWeighted(ctx context.Context, filter ProblemFilter) (*model.Problem, error)
}

type GenerationRequestStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.GenerationRequest, error)
	GetWithProblems(ctx context.Context, id uuid.UUID) (*model.GenerationRequest, []model.Problem, error)
	Create(ctx context.Context, r *model.GenerationRequest) error
	MarkProcessing(ctx context.Context, id uuid.UUID, at time.Time) error
	// IncrementGenerated and IncrementFailed are idempotent under messageID:
	// a messageID already logged against id is a no-op, so replaying the
	// same queue message twice never double-counts.
	IncrementGenerated(ctx context.Context, id uuid.UUID, messageID string) error
	IncrementFailed(ctx context.Context, id uuid.UUID, messageID string) error
	// MessageAccounted reports whether messageID has already been recorded
	// (via IncrementGenerated or IncrementFailed) against id.
	MessageAccounted(ctx context.Context, id uuid.UUID, messageID string) (bool, error)
	FinalizeIfDone(ctx context.Context, id uuid.UUID, at time.Time) error
	ExpireStale(ctx context.Context, olderThan time.Time) (int64, error)
	List(ctx context.Context, status *model.RequestStatus, entityType *model.ProblemType, limit int) ([]model.GenerationRequest, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type APIKeyStore interface {
	GetByID(ctx context.Context, id string) (*model.APIKey, error)
	GetByPrefix(ctx context.Context, prefix string) (*model.APIKey, error)
	Create(ctx context.Context, k *model.APIKey) error
	Update(ctx context.Context, k *model.APIKey) error
	Delete(ctx context.Context, id string) error
	RecordUsage(ctx context.Context, id string, at time.Time) error
	ListActive(ctx context.Context) ([]model.APIKey, error)
}
