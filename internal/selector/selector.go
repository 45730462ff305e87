// Package selector resolves a single "give me a problem" request into a
// weighted-random pick from storage (spec component H). The staleness-LRU
// scoring itself lives in the SQL behind store.ProblemStore.SelectRandomWeighted;
// this package just translates API-facing criteria into a store.ProblemFilter
// and applies the default virtual-staleness window.
package selector

import (
	"context"

	"github.com/google/uuid"

	"github.com/beverage/language-quiz-service/internal/model"
	"github.com/beverage/language-quiz-service/internal/store"
)

// defaultVirtualStalenessDays is the floor staleness (in days) a
// never-served problem is treated as having, so brand-new problems compete
// with old, rarely-served ones rather than always winning outright.
const defaultVirtualStalenessDays = 3

// Criteria narrows which problem the selector may return.
type Criteria struct {
	ProblemType        *model.ProblemType
	GrammaticalFocus   *string
	TensesUsed         []model.Tense
	TopicTags          []string
	TargetLanguageCode *string
}

// CandidateIndex narrows a filter down to a set of IDs ahead of the
// Postgres weighted pick, so a multi-facet filter doesn't need to scan the
// whole problems table to find rows worth scoring. Implemented by
// internal/index.ProblemIndex; left as an interface here so selector
// doesn't need to know it's talking to Typesense.
type CandidateIndex interface {
	CandidateIDs(ctx context.Context, filter store.ProblemFilter) ([]uuid.UUID, error)
}

// Selector picks one problem at a time from storage.
type Selector struct {
	problems store.ProblemStore
	index    CandidateIndex
}

func New(problems store.ProblemStore) *Selector {
	return &Selector{problems: problems}
}

// WithIndex attaches a facet index the selector consults before asking
// Postgres to score candidates. Optional: a nil index (the zero value)
// falls back to an unrestricted Postgres scan, just slower under a large
// table with a narrow filter.
func (s *Selector) WithIndex(index CandidateIndex) *Selector {
	s.index = index
	return s
}

// Pick returns one problem matching criteria, weighted toward staler ones.
// Returns store.ErrNotFound if nothing matches.
func (s *Selector) Pick(ctx context.Context, c Criteria) (*model.Problem, error) {
	filter := store.ProblemFilter{
		ProblemType:          c.ProblemType,
		GrammaticalFocus:     c.GrammaticalFocus,
		TensesUsed:           c.TensesUsed,
		TopicTags:            c.TopicTags,
		TargetLanguageCode:   c.TargetLanguageCode,
		VirtualStalenessDays: defaultVirtualStalenessDays,
	}

	if s.index != nil {
		ids, err := s.index.CandidateIDs(ctx, filter)
		if err != nil {
			// the index is an optimization, not a source of truth; fall back
			// to an unfiltered Postgres scan rather than failing the request.
			ids = nil
		}
		if len(ids) > 0 {
			filter.CandidateIDs = ids
		}
	}

	return s.problems.SelectRandomWeighted(ctx, filter)
}
