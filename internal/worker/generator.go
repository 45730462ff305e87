package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/beverage/language-quiz-service/internal/cache"
	"github.com/beverage/language-quiz-service/internal/model"
	"github.com/beverage/language-quiz-service/internal/packager"
	"github.com/beverage/language-quiz-service/internal/prompt"
	"github.com/beverage/language-quiz-service/internal/store"
)

// drillableTenses excludes the imperative, which has no first-person-singular
// or third-person forms and so doesn't fit the six-pronoun sentence shape
// the rest of the generator assumes.
var drillableTenses = []model.Tense{
	model.TensePresent,
	model.TenseImperfect,
	model.TensePasseCompose,
	model.TensePlusQueParfait,
	model.TenseFutureSimple,
	model.TenseConditional,
	model.TenseSubjunctive,
}

var pronouns = []model.Pronoun{
	model.PronounFirstSing,
	model.PronounSecondSing,
	model.PronounThirdSing,
	model.PronounFirstPlur,
	model.PronounSecondPlur,
	model.PronounThirdPlur,
}

// ProblemGenerator composes one problem end to end: pick a verb and
// grammatical parameters satisfying the request's constraints, select error
// types, drive the packager's four parallel LLM calls, and persist the
// result.
type ProblemGenerator struct {
	verbs     store.VerbStore
	sentences store.SentenceStore
	problems  store.ProblemStore
	packager  *packager.Packager
	model     string
	rng       *rand.Rand

	verbCache *cache.VerbCache
}

func NewProblemGenerator(verbs store.VerbStore, sentences store.SentenceStore, problems store.ProblemStore, pkg *packager.Packager, llmModel string) *ProblemGenerator {
	return &ProblemGenerator{
		verbs:     verbs,
		sentences: sentences,
		problems:  problems,
		packager:  pkg,
		model:     llmModel,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithVerbCache attaches the in-process verb cache so a verb's last_used_at
// stamp is write-through refreshed (spec component A's "refresh, called
// after any create/update" contract) instead of going stale until the next
// unrelated lookup evicts it.
func (g *ProblemGenerator) WithVerbCache(c *cache.VerbCache) *ProblemGenerator {
	g.verbCache = c
	return g
}

// GenerateOne produces, persists, and returns a single grammar problem
// satisfying constraints and linked to requestID.
func (g *ProblemGenerator) GenerateOne(ctx context.Context, requestID uuid.UUID, constraints model.Constraints) (*model.Problem, error) {
	verb, err := g.verbs.RandomNonTest(ctx, store.VerbConstraints{
		Infinitive:         constraints.VerbInfinitive,
		TargetLanguageCode: constraints.TargetLanguageCode,
	})
	if err != nil {
		return nil, fmt.Errorf("selecting verb: %w", err)
	}

	tense := g.pickTense(constraints.Tenses)
	pronoun := pronouns[g.rng.Intn(len(pronouns))]

	stub := model.Sentence{
		Tense: tense,
	}
	if verb.CanHaveCOD && g.rng.Float64() < 0.5 {
		stub.DirectObject = randomObjectCategory(g.rng)
	}
	if verb.CanHaveCOI && g.rng.Float64() < 0.5 {
		stub.IndirectObject = randomObjectCategory(g.rng)
	}

	errTypes := prompt.SelectThree(stub, *verb, g.rng)

	req := packager.Request{
		Verb: *verb,
		Params: prompt.Params{
			Pronoun:        pronoun,
			Tense:          tense,
			DirectObject:   stub.DirectObject,
			IndirectObject: stub.IndirectObject,
			Negation:       stub.Negation,
		},
		ErrorTypes: errTypes,
		Model:      g.model,
	}

	problem, sentences, err := g.packager.Package(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("packaging problem: %w", err)
	}

	sourceIDs := make([]uuid.UUID, 0, len(sentences))
	for i := range sentences {
		sentences[i].VerbID = verb.ID
		if err := g.sentences.Create(ctx, &sentences[i]); err != nil {
			return nil, fmt.Errorf("persisting sentence: %w", err)
		}
		sourceIDs = append(sourceIDs, sentences[i].ID)
	}

	problem.GenerationRequestID = &requestID
	problem.SourceStatementIDs = sourceIDs
	problem.TopicTags = constraints.TopicTags

	if err := g.problems.Create(ctx, problem); err != nil {
		return nil, fmt.Errorf("persisting problem: %w", err)
	}

	if err := g.verbs.TouchLastUsed(ctx, verb.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("touching verb last_used_at: %w", err)
	}
	if g.verbCache != nil {
		if err := g.verbCache.Refresh(ctx, verb.ID); err != nil {
			slog.WarnContext(ctx, "verb cache refresh failed", "verb_id", verb.ID, "error", err)
		}
	}

	return problem, nil
}

func (g *ProblemGenerator) pickTense(allowed []model.Tense) model.Tense {
	if len(allowed) > 0 {
		return allowed[g.rng.Intn(len(allowed))]
	}
	return drillableTenses[g.rng.Intn(len(drillableTenses))]
}

func randomObjectCategory(rng *rand.Rand) model.ObjectCategory {
	categories := []model.ObjectCategory{model.ObjectMasc, model.ObjectFem, model.ObjectPlural}
	return categories[rng.Intn(len(categories))]
}
