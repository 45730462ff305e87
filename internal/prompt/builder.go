package prompt

import (
	"fmt"
	"strings"

	"github.com/beverage/language-quiz-service/internal/model"
)

// Version is recorded on every problem's metadata so that prompt wording
// changes are attributable without re-reading the generation trace.
const Version = "2.0"

// StatementResponse is the JSON contract every sentence-generation call must
// satisfy: a sentence, its translation, and an explanation (required for
// incorrect statements, empty for the correct one).
type StatementResponse struct {
	Sentence    string `json:"sentence" jsonschema:"required"`
	Translation string `json:"translation" jsonschema:"required"`
	Explanation string `json:"explanation"`
}

// Params captures the grammatical parameters a worker has already chosen for
// a sentence, before any error is introduced.
type Params struct {
	Pronoun        model.Pronoun
	Tense          model.Tense
	DirectObject   model.ObjectCategory
	IndirectObject model.ObjectCategory
	Negation       model.Negation
}

// Render builds the full prompt for one statement: the common header
// plus the instruction block for errType (nil renders the correct sentence).
func Render(v model.Verb, p Params, errType *model.ErrorType) (system, user string) {
	system = "You are a French grammar exercise generator. Respond with a single JSON object matching the given schema, nothing else."

	var b strings.Builder
	fmt.Fprintf(&b, "Verb: %s (auxiliary: %s", v.Infinitive, v.Auxiliary)
	if v.Reflexive {
		b.WriteString(", reflexive")
	}
	if v.Irregular {
		b.WriteString(", irregular")
	}
	fmt.Fprintf(&b, ")\nTranslation: %s\n", v.Translation)
	fmt.Fprintf(&b, "Required pronoun: %s\n", p.Pronoun)
	fmt.Fprintf(&b, "Required tense: %s\n", p.Tense)
	if p.DirectObject != model.ObjectNone {
		fmt.Fprintf(&b, "Direct object pronoun category: %s\n", p.DirectObject)
	}
	if p.IndirectObject != model.ObjectNone {
		fmt.Fprintf(&b, "Indirect object pronoun category: %s\n", p.IndirectObject)
	}
	if p.Negation != model.NegationNone {
		fmt.Fprintf(&b, "Negation: %s\n", p.Negation)
	}
	b.WriteString("\n")
	b.WriteString(instructionBlock(errType))

	return system, b.String()
}

func instructionBlock(errType *model.ErrorType) string {
	if errType == nil {
		return "Write a grammatically correct French sentence using exactly these parameters. " +
			"Set explanation to the empty string."
	}

	switch *errType {
	case model.ErrorCODPronoun:
		return "Write a French sentence using these parameters, but deliberately use the WRONG direct-object " +
			"pronoun (wrong gender or number for the required category). Every other part of the sentence must " +
			"remain grammatically correct. Set explanation to a short note identifying the pronoun error."
	case model.ErrorCOIPronoun:
		return "Write a French sentence using these parameters, but deliberately use the WRONG indirect-object " +
			"pronoun (wrong gender or number for the required category). Every other part of the sentence must " +
			"remain grammatically correct. Set explanation to a short note identifying the pronoun error."
	case model.ErrorWrongConjugation:
		return "Write a French sentence using these parameters, but deliberately conjugate the verb in the WRONG " +
			"tense or person. Every other part of the sentence must remain grammatically correct. Set explanation " +
			"to a short note identifying the conjugation error."
	case model.ErrorWrongAuxiliary:
		return "Write a French sentence using these parameters, but deliberately use the WRONG auxiliary verb " +
			"(avoir instead of être, or vice versa) to form the compound tense. Every other part of the sentence " +
			"must remain grammatically correct. Set explanation to a short note identifying the auxiliary error."
	case model.ErrorPastParticipleAgree:
		return "Write a French sentence using these parameters, but deliberately fail to agree the past participle " +
			"with its subject (when the auxiliary is être) or with a preceding direct object (when applicable). " +
			"Every other part of the sentence must remain grammatically correct. Set explanation to a short note " +
			"identifying the agreement error."
	default:
		return "Write a grammatically correct French sentence using exactly these parameters. " +
			"Set explanation to the empty string."
	}
}
