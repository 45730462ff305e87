package model

import "github.com/google/uuid"

// ObjectCategory classifies the grammatical person/number of a complement pronoun.
type ObjectCategory string

const (
	ObjectNone   ObjectCategory = "none"
	ObjectMasc   ObjectCategory = "masc"
	ObjectFem    ObjectCategory = "fem"
	ObjectPlural ObjectCategory = "plural"
)

// Negation enumerates the negative constructions a sentence may carry.
type Negation string

const (
	NegationNone     Negation = "none"
	NegationPas      Negation = "pas"
	NegationJamais   Negation = "jamais"
	NegationRien     Negation = "rien"
	NegationPersonne Negation = "personne"
	NegationPlus     Negation = "plus"
	NegationAucun    Negation = "aucun"
	NegationAucune   Negation = "aucune"
	NegationEncore   Negation = "encore"
)

// ErrorType names a category of grammatical mistake the prompt builder can
// instruct the model to introduce into an incorrect sentence.
type ErrorType string

const (
	ErrorCODPronoun          ErrorType = "COD_PRONOUN_ERROR"
	ErrorCOIPronoun          ErrorType = "COI_PRONOUN_ERROR"
	ErrorWrongConjugation    ErrorType = "WRONG_CONJUGATION"
	ErrorWrongAuxiliary      ErrorType = "WRONG_AUXILIARY"
	ErrorPastParticipleAgree ErrorType = "PAST_PARTICIPLE_AGREEMENT"
)

// Sentence is one of the four statements backing a grammar problem.
type Sentence struct {
	ID                  uuid.UUID      `json:"id"`
	VerbID              uuid.UUID      `json:"verb_id"`
	Content             string         `json:"content"`
	Translation         string         `json:"translation"`
	Pronoun             Pronoun        `json:"pronoun"`
	Tense               Tense          `json:"tense"`
	DirectObject        ObjectCategory `json:"direct_object"`
	IndirectObject      ObjectCategory `json:"indirect_object"`
	ReflexivePronoun    ObjectCategory `json:"reflexive_pronoun"`
	Negation            Negation       `json:"negation"`
	IsCorrect           bool           `json:"is_correct"`
	Explanation         string         `json:"explanation,omitempty"`
	Source              string         `json:"source"`
	IntroducedErrorType *ErrorType     `json:"introduced_error_type,omitempty"`
}
