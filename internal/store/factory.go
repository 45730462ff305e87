package store

import "github.com/beverage/language-quiz-service/core/db"

// Stores bundles one store per entity over a shared Querier, so a caller can
// build the full set once per pool handle or once per transaction.
type Stores struct {
	verbs        VerbStore
	conjugations ConjugationStore
	sentences    SentenceStore
	problems     ProblemStore
	requests     GenerationRequestStore
	apiKeys      APIKeyStore
}

func NewStores(q db.Querier) *Stores {
	return &Stores{
		verbs:        newVerbStore(q),
		conjugations: newConjugationStore(q),
		sentences:    newSentenceStore(q),
		problems:     newProblemStore(q),
		requests:     newGenerationRequestStore(q),
		apiKeys:      newAPIKeyStore(q),
	}
}

func (s *Stores) Verbs() VerbStore                       { return s.verbs }
func (s *Stores) Conjugations() ConjugationStore         { return s.conjugations }
func (s *Stores) Sentences() SentenceStore               { return s.sentences }
func (s *Stores) Problems() ProblemStore                 { return s.problems }
func (s *Stores) Requests() GenerationRequestStore       { return s.requests }
func (s *Stores) APIKeys() APIKeyStore                   { return s.apiKeys }
