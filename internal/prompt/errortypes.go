// Package prompt selects grammatical error types for a sentence and renders
// the prompts the LLM client sends to the model.
package prompt

import (
	"math/rand"

	"github.com/beverage/language-quiz-service/internal/model"
)

// Available returns the error types that may legally apply to sentence,
// given the grammatical features it carries and the verb it was built from.
func Available(s model.Sentence, v model.Verb) []model.ErrorType {
	types := []model.ErrorType{model.ErrorWrongConjugation}

	if s.DirectObject != model.ObjectNone {
		types = append(types, model.ErrorCODPronoun)
	}
	if s.IndirectObject != model.ObjectNone {
		types = append(types, model.ErrorCOIPronoun)
	}
	if s.Tense.IsCompound() {
		types = append(types, model.ErrorWrongAuxiliary)
		if v.Auxiliary == model.AuxiliaryEtre {
			types = append(types, model.ErrorPastParticipleAgree)
		}
	}
	return types
}

// Mandatory returns the error types that MUST appear among the three chosen
// for a sentence: COD when it carries a direct object, COI when it carries
// an indirect object. A problem built from a sentence with a direct object
// therefore always has at least one incorrect statement using
// COD_PRONOUN_ERROR, and likewise for indirect objects.
func Mandatory(s model.Sentence) []model.ErrorType {
	var mandatory []model.ErrorType
	if s.DirectObject != model.ObjectNone {
		mandatory = append(mandatory, model.ErrorCODPronoun)
	}
	if s.IndirectObject != model.ObjectNone {
		mandatory = append(mandatory, model.ErrorCOIPronoun)
	}
	return mandatory
}

// SelectThree picks the three error types for the three incorrect statements
// of a grammar problem: the mandatory set first, then uniform sampling
// without replacement from the remaining available set, padding with
// repeated WRONG_CONJUGATION when fewer than three distinct types exist.
func SelectThree(s model.Sentence, v model.Verb, rng *rand.Rand) [3]model.ErrorType {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	mandatory := Mandatory(s)
	chosen := make([]model.ErrorType, 0, 3)
	chosen = append(chosen, mandatory...)

	seen := map[model.ErrorType]bool{}
	for _, t := range chosen {
		seen[t] = true
	}

	available := Available(s, v)
	pool := make([]model.ErrorType, 0, len(available))
	for _, t := range available {
		if !seen[t] {
			pool = append(pool, t)
		}
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	for len(chosen) < 3 && len(pool) > 0 {
		chosen = append(chosen, pool[0])
		pool = pool[1:]
	}
	for len(chosen) < 3 {
		chosen = append(chosen, model.ErrorWrongConjugation)
	}

	var out [3]model.ErrorType
	copy(out[:], chosen[:3])
	return out
}
