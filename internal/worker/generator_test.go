package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/beverage/language-quiz-service/common/llm"
	"github.com/beverage/language-quiz-service/internal/cache"
	"github.com/beverage/language-quiz-service/internal/model"
	"github.com/beverage/language-quiz-service/internal/packager"
	"github.com/beverage/language-quiz-service/internal/store"
)

type fakeLLM struct{}

func (fakeLLM) Generate(ctx context.Context, req llm.Request) (*llm.LLMResponse, error) {
	return &llm.LLMResponse{
		Content:          fmt.Sprintf(`{"sentence":"Je parle.","translation":"I speak.","explanation":"%s"}`, req.OperationTag),
		Model:            "gpt-test",
		PromptTokens:     1,
		CompletionTokens: 1,
		TotalTokens:      2,
	}, nil
}

type fakeVerbStore struct {
	verb *model.Verb
}

func (f *fakeVerbStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Verb, error) {
	return f.verb, nil
}
func (f *fakeVerbStore) GetByInfinitive(ctx context.Context, infinitive string, aux model.Auxiliary, reflexive bool) (*model.Verb, error) {
	return f.verb, nil
}
func (f *fakeVerbStore) Create(ctx context.Context, v *model.Verb) error { return nil }
func (f *fakeVerbStore) Update(ctx context.Context, v *model.Verb) error { return nil }
func (f *fakeVerbStore) Delete(ctx context.Context, id uuid.UUID) error  { return nil }
func (f *fakeVerbStore) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}
func (f *fakeVerbStore) RandomNonTest(ctx context.Context, c store.VerbConstraints) (*model.Verb, error) {
	return f.verb, nil
}
func (f *fakeVerbStore) DeleteTestTagged(ctx context.Context) (int64, error) { return 0, nil }

type fakeSentenceStore struct {
	created []model.Sentence
}

func (f *fakeSentenceStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Sentence, error) {
	return nil, store.ErrNotFound
}
func (f *fakeSentenceStore) Create(ctx context.Context, s *model.Sentence) error {
	s.ID = uuid.New()
	f.created = append(f.created, *s)
	return nil
}
func (f *fakeSentenceStore) Delete(ctx context.Context, id uuid.UUID) error          { return nil }
func (f *fakeSentenceStore) DeleteByVerb(ctx context.Context, verbID uuid.UUID) error { return nil }

type fakeProblemStore struct {
	created []model.Problem
}

func (f *fakeProblemStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Problem, error) {
	return nil, store.ErrNotFound
}
func (f *fakeProblemStore) Create(ctx context.Context, p *model.Problem) error {
	p.ID = uuid.New()
	f.created = append(f.created, *p)
	return nil
}
func (f *fakeProblemStore) Update(ctx context.Context, p *model.Problem) error { return nil }
func (f *fakeProblemStore) Delete(ctx context.Context, id uuid.UUID) error    { return nil }
func (f *fakeProblemStore) DeleteOlderThan(ctx context.Context, cutoff time.Time, topicTag *string) (int64, error) {
	return 0, nil
}
func (f *fakeProblemStore) SelectRandomWeighted(ctx context.Context, filter store.ProblemFilter) (*model.Problem, error) {
	return nil, store.ErrNotFound
}

func TestProblemGenerator_GenerateOne(t *testing.T) {
	verb := &model.Verb{
		ID:                 uuid.New(),
		Infinitive:         "parler",
		Auxiliary:          model.AuxiliaryAvoir,
		TargetLanguageCode: "fra",
		CanHaveCOD:         true,
		CanHaveCOI:         true,
	}
	verbs := &fakeVerbStore{verb: verb}
	sentences := &fakeSentenceStore{}
	problems := &fakeProblemStore{}
	pkg := packager.New(fakeLLM{})

	requestID := uuid.New()
	gen := NewProblemGenerator(verbs, sentences, problems, pkg, "gpt-test")

	problem, err := gen.GenerateOne(context.Background(), requestID, model.Constraints{})
	if err != nil {
		t.Fatalf("GenerateOne() error = %v", err)
	}
	if problem.GenerationRequestID == nil || *problem.GenerationRequestID != requestID {
		t.Errorf("expected problem linked to request %v, got %+v", requestID, problem.GenerationRequestID)
	}
	if len(sentences.created) != 4 {
		t.Errorf("expected 4 sentences persisted, got %d", len(sentences.created))
	}
	if len(problem.SourceStatementIDs) != 4 {
		t.Errorf("expected 4 source statement ids, got %d", len(problem.SourceStatementIDs))
	}
	if len(problems.created) != 1 {
		t.Errorf("expected 1 problem persisted, got %d", len(problems.created))
	}
}

type failingLLM struct{}

func (failingLLM) Generate(ctx context.Context, req llm.Request) (*llm.LLMResponse, error) {
	return nil, errors.New("boom")
}

func TestProblemGenerator_GenerateOne_PropagatesPackagerFailure(t *testing.T) {
	verb := &model.Verb{ID: uuid.New(), Infinitive: "parler", Auxiliary: model.AuxiliaryAvoir}
	gen := NewProblemGenerator(&fakeVerbStore{verb: verb}, &fakeSentenceStore{}, &fakeProblemStore{}, packager.New(failingLLM{}), "gpt-test")

	_, err := gen.GenerateOne(context.Background(), uuid.New(), model.Constraints{})
	if err == nil {
		t.Fatal("expected error when packaging fails")
	}
}

func TestProblemGenerator_GenerateOne_RefreshesVerbCacheAfterTouch(t *testing.T) {
	verb := &model.Verb{ID: uuid.New(), Infinitive: "parler", Auxiliary: model.AuxiliaryAvoir}
	verbs := &fakeVerbStore{verb: verb}
	verbCache := cache.NewVerbCache(verbs)

	// Prime the cache so GenerateOne's later Refresh has an entry to replace.
	if _, err := verbCache.Lookup(context.Background(), verb.ID); err != nil {
		t.Fatalf("priming cache: %v", err)
	}

	gen := NewProblemGenerator(verbs, &fakeSentenceStore{}, &fakeProblemStore{}, packager.New(fakeLLM{}), "gpt-test").
		WithVerbCache(verbCache)

	if _, err := gen.GenerateOne(context.Background(), uuid.New(), model.Constraints{}); err != nil {
		t.Fatalf("GenerateOne() error = %v", err)
	}

	cached, err := verbCache.Lookup(context.Background(), verb.ID)
	if err != nil {
		t.Fatalf("Lookup() after generation error = %v", err)
	}
	if cached.ID != verb.ID {
		t.Errorf("expected cached verb %v, got %v", verb.ID, cached.ID)
	}
}
