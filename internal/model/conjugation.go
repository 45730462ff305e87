package model

import "github.com/google/uuid"

// Tense enumerates the French tenses the generator knows how to drill.
type Tense string

const (
	TensePresent         Tense = "present"
	TenseImperfect       Tense = "imperfect"
	TensePasseCompose    Tense = "passe_compose"
	TensePlusQueParfait  Tense = "plus_que_parfait"
	TenseFutureSimple    Tense = "future_simple"
	TenseConditional     Tense = "conditional"
	TenseSubjunctive     Tense = "subjunctive"
	TenseImperative      Tense = "imperative"
)

// CompoundTenses is the set of tenses formed with an auxiliary + past participle.
var CompoundTenses = map[Tense]bool{
	TensePasseCompose:   true,
	TensePlusQueParfait: true,
}

func (t Tense) IsCompound() bool {
	return CompoundTenses[t]
}

// Conjugation holds the six personal forms of a verb in a single tense.
type Conjugation struct {
	ID         uuid.UUID `json:"id"`
	Infinitive string    `json:"infinitive"`
	Auxiliary  Auxiliary `json:"auxiliary"`
	Reflexive  bool      `json:"reflexive"`
	Tense      Tense     `json:"tense"`
	FirstSing  *string   `json:"first_person_singular,omitempty"`
	SecondSing *string   `json:"second_person_singular,omitempty"`
	ThirdSing  *string   `json:"third_person_singular,omitempty"`
	FirstPlur  *string   `json:"first_person_plural,omitempty"`
	SecondPlur *string   `json:"second_person_plural,omitempty"`
	ThirdPlur  *string   `json:"third_person_plural,omitempty"`
}

// UniqueKey is the (infinitive, auxiliary, reflexive, tense) constraint key.
func (c Conjugation) UniqueKey() string {
	return c.Infinitive + "|" + string(c.Auxiliary) + "|" + boolKey(c.Reflexive) + "|" + string(c.Tense)
}

// Pronoun enumerates the subject pronouns a sentence can be built around.
type Pronoun string

const (
	PronounFirstSing  Pronoun = "je"
	PronounSecondSing Pronoun = "tu"
	PronounThirdSing  Pronoun = "il_elle"
	PronounFirstPlur  Pronoun = "nous"
	PronounSecondPlur Pronoun = "vous"
	PronounThirdPlur  Pronoun = "ils_elles"
)

// Form returns the conjugated form for the given pronoun, or nil if absent.
func (c Conjugation) Form(p Pronoun) *string {
	switch p {
	case PronounFirstSing:
		return c.FirstSing
	case PronounSecondSing:
		return c.SecondSing
	case PronounThirdSing:
		return c.ThirdSing
	case PronounFirstPlur:
		return c.FirstPlur
	case PronounSecondPlur:
		return c.SecondPlur
	case PronounThirdPlur:
		return c.ThirdPlur
	default:
		return nil
	}
}
