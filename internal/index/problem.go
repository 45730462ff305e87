// Package index maintains a Typesense collection that mirrors the problems
// table, kept write-through from internal/store, so the selector can narrow
// a weighted-random pick down to a candidate set without asking Postgres to
// evaluate array-contains-any predicates over topic_tags/grammatical_focus/
// tenses_used on every request.
package index

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/typesense/typesense-go/v4/typesense"
	"github.com/typesense/typesense-go/v4/typesense/api"
	"github.com/typesense/typesense-go/v4/typesense/api/pointer"

	"github.com/beverage/language-quiz-service/internal/model"
	"github.com/beverage/language-quiz-service/internal/store"
)

const CollectionName = "problems"

// ProblemIndex is the write-through Typesense mirror of the problems table.
// It never holds the source of truth for a row; Postgres does. If a write
// to the index fails after the Postgres write already succeeded, the index
// simply lags until the next write to the same row; this package has no
// bulk reindex operation.
type ProblemIndex struct {
	client *typesense.Client
}

func New(serverURL, apiKey string) *ProblemIndex {
	return &ProblemIndex{
		client: typesense.NewClient(
			typesense.WithServer(serverURL),
			typesense.WithAPIKey(apiKey),
		),
	}
}

// Schema describes the fields the selector filters on. Nothing here is used
// for scoring: staleness weighting stays in Postgres, where last_served_at
// is authoritative and updated in the same statement that picks a winner.
func Schema() *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: CollectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "problem_type", Type: "string", Facet: pointer.True()},
			{Name: "target_language_code", Type: "string", Facet: pointer.True()},
			{Name: "topic_tags", Type: "string[]", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "grammatical_focus", Type: "string[]", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "tenses_used", Type: "string[]", Facet: pointer.True(), Optional: pointer.True()},
		},
	}
}

// EnsureCollection creates the collection if it doesn't already exist.
// Typesense has no CREATE-IF-NOT-EXISTS, so a 409 from a prior create is
// swallowed; any other error is returned.
func (idx *ProblemIndex) EnsureCollection(ctx context.Context) error {
	_, err := idx.client.Collections().Create(ctx, Schema())
	if err != nil && !isConflict(err) {
		return fmt.Errorf("creating problems collection: %w", err)
	}
	return nil
}

type problemDocument struct {
	ID                 string   `json:"id"`
	ProblemType        string   `json:"problem_type"`
	TargetLanguageCode string   `json:"target_language_code"`
	TopicTags          []string `json:"topic_tags,omitempty"`
	GrammaticalFocus   []string `json:"grammatical_focus,omitempty"`
	TensesUsed         []string `json:"tenses_used,omitempty"`
}

func toDocument(p *model.Problem) *problemDocument {
	return &problemDocument{
		ID:                 p.ID.String(),
		ProblemType:        string(p.ProblemType),
		TargetLanguageCode: p.TargetLanguageCode,
		TopicTags:          p.TopicTags,
		GrammaticalFocus:   p.Metadata.GrammaticalFocus,
		TensesUsed:         p.Metadata.TensesUsed,
	}
}

// Upsert mirrors a created or updated problem into the index.
func (idx *ProblemIndex) Upsert(ctx context.Context, p *model.Problem) error {
	_, err := idx.client.Collection(CollectionName).Documents().Upsert(ctx, toDocument(p))
	if err != nil {
		return fmt.Errorf("indexing problem %s: %w", p.ID, err)
	}
	return nil
}

// Delete removes a problem from the index. Typesense returning not-found is
// not an error here: the index lagging behind a delete that already
// happened is the expected steady state, not a fault.
func (idx *ProblemIndex) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := idx.client.Collection(CollectionName).Document(id.String()).Delete(ctx)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("deindexing problem %s: %w", id, err)
	}
	return nil
}

// CandidateIDs resolves a filter to the problem IDs Typesense believes
// match, without touching last_served_at or staleness scoring. Only the
// first page of results is read, so at most 250 IDs are returned.
// An empty filter (no facets set) returns nil, signalling the caller to
// fall back to an unrestricted Postgres scan rather than paying a
// pointless round trip for "match everything".
func (idx *ProblemIndex) CandidateIDs(ctx context.Context, filter store.ProblemFilter) ([]uuid.UUID, error) {
	q := buildFilterQuery(filter)
	if q == "" {
		return nil, nil
	}

	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String("*"),
		QueryBy:  pointer.String("id"),
		FilterBy: pointer.String(q),
		PerPage:  pointer.Int(250),
	}

	result, err := idx.client.Collection(CollectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("searching problem index: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(*result.Hits))
	for _, hit := range *result.Hits {
		doc := *hit.Document
		raw, ok := doc["id"].(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func buildFilterQuery(filter store.ProblemFilter) string {
	var clauses []string
	if filter.ProblemType != nil {
		clauses = append(clauses, fmt.Sprintf("problem_type:=%s", string(*filter.ProblemType)))
	}
	if filter.TargetLanguageCode != nil {
		clauses = append(clauses, fmt.Sprintf("target_language_code:=%s", *filter.TargetLanguageCode))
	}
	if filter.GrammaticalFocus != nil {
		clauses = append(clauses, fmt.Sprintf("grammatical_focus:=%s", *filter.GrammaticalFocus))
	}
	if len(filter.TensesUsed) > 0 {
		clauses = append(clauses, fmt.Sprintf("tenses_used:=[%s]", joinTenses(filter.TensesUsed)))
	}
	if len(filter.TopicTags) > 0 {
		clauses = append(clauses, fmt.Sprintf("topic_tags:=[%s]", strings.Join(filter.TopicTags, ",")))
	}

	return strings.Join(clauses, " && ")
}

func joinTenses(ts []model.Tense) string {
	strs := make([]string, len(ts))
	for i, t := range ts {
		strs[i] = string(t)
	}
	return strings.Join(strs, ",")
}

func isConflict(err error) bool {
	return isStatusCode(err, 409)
}

func isNotFound(err error) bool {
	return isStatusCode(err, 404)
}

func isStatusCode(err error, code int) bool {
	var httpErr *typesense.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status == code
	}
	return false
}
