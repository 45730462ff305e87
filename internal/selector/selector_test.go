package selector

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/beverage/language-quiz-service/internal/model"
	"github.com/beverage/language-quiz-service/internal/store"
)

type fakeProblemStore struct {
	lastFilter store.ProblemFilter
	result     *model.Problem
	err        error
}

func (f *fakeProblemStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Problem, error) {
	return nil, store.ErrNotFound
}
func (f *fakeProblemStore) Create(ctx context.Context, p *model.Problem) error { return nil }
func (f *fakeProblemStore) Update(ctx context.Context, p *model.Problem) error { return nil }
func (f *fakeProblemStore) Delete(ctx context.Context, id uuid.UUID) error     { return nil }
func (f *fakeProblemStore) DeleteOlderThan(ctx context.Context, cutoff time.Time, topicTag *string) (int64, error) {
	return 0, nil
}
func (f *fakeProblemStore) SelectRandomWeighted(ctx context.Context, filter store.ProblemFilter) (*model.Problem, error) {
	f.lastFilter = filter
	return f.result, f.err
}

func TestSelector_Pick_TranslatesCriteriaAndAppliesDefaultStaleness(t *testing.T) {
	want := &model.Problem{ID: uuid.New()}
	fake := &fakeProblemStore{result: want}
	sel := New(fake)

	pt := model.ProblemTypeGrammar
	lang := "fra"
	focus := "WRONG_CONJUGATION"

	got, err := sel.Pick(context.Background(), Criteria{
		ProblemType:        &pt,
		GrammaticalFocus:   &focus,
		TargetLanguageCode: &lang,
		TopicTags:          []string{"passe-compose"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != want.ID {
		t.Fatalf("expected the store's result to be returned unchanged")
	}

	if fake.lastFilter.ProblemType != &pt && *fake.lastFilter.ProblemType != pt {
		t.Errorf("problem type not propagated into filter")
	}
	if fake.lastFilter.VirtualStalenessDays != defaultVirtualStalenessDays {
		t.Errorf("expected default virtual staleness %v, got %v", defaultVirtualStalenessDays, fake.lastFilter.VirtualStalenessDays)
	}
	if len(fake.lastFilter.TopicTags) != 1 || fake.lastFilter.TopicTags[0] != "passe-compose" {
		t.Errorf("topic tags not propagated: %+v", fake.lastFilter.TopicTags)
	}
}

func TestSelector_Pick_PropagatesNotFound(t *testing.T) {
	fake := &fakeProblemStore{err: store.ErrNotFound}
	sel := New(fake)

	_, err := sel.Pick(context.Background(), Criteria{})
	if err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type fakeIndex struct {
	ids []uuid.UUID
	err error
}

func (f *fakeIndex) CandidateIDs(ctx context.Context, filter store.ProblemFilter) ([]uuid.UUID, error) {
	return f.ids, f.err
}

func TestSelector_Pick_WithIndex_NarrowsToCandidates(t *testing.T) {
	want := &model.Problem{ID: uuid.New()}
	fake := &fakeProblemStore{result: want}
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	sel := New(fake).WithIndex(&fakeIndex{ids: ids})

	_, err := sel.Pick(context.Background(), Criteria{})
	if err != nil {
		t.Fatal(err)
	}
	if len(fake.lastFilter.CandidateIDs) != len(ids) {
		t.Fatalf("expected candidate ids to propagate into the filter, got %+v", fake.lastFilter.CandidateIDs)
	}
}

func TestSelector_Pick_WithIndex_FallsBackOnIndexError(t *testing.T) {
	want := &model.Problem{ID: uuid.New()}
	fake := &fakeProblemStore{result: want}
	sel := New(fake).WithIndex(&fakeIndex{err: context.DeadlineExceeded})

	got, err := sel.Pick(context.Background(), Criteria{})
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != want.ID {
		t.Fatalf("expected pick to still succeed despite index error")
	}
	if len(fake.lastFilter.CandidateIDs) != 0 {
		t.Fatalf("expected no candidate ids when the index errors, got %+v", fake.lastFilter.CandidateIDs)
	}
}

func TestSelector_Pick_WithIndex_EmptyResultDoesNotOverFilter(t *testing.T) {
	want := &model.Problem{ID: uuid.New()}
	fake := &fakeProblemStore{result: want}
	sel := New(fake).WithIndex(&fakeIndex{ids: nil})

	_, err := sel.Pick(context.Background(), Criteria{})
	if err != nil {
		t.Fatal(err)
	}
	if fake.lastFilter.CandidateIDs != nil {
		t.Fatalf("expected an empty candidate set to leave the filter unrestricted")
	}
}
