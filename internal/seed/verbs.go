// Package seed provides the canonical verb set `quizctl database init` loads
// into a fresh database, so the pool has something to generate problems
// from before an operator adds their own verbs through the API.
package seed

import "github.com/beverage/language-quiz-service/internal/model"

func classification(c model.Classification) *model.Classification {
	return &c
}

// Verbs returns the seed set, unpersisted (no ID/timestamps set — the
// caller's store.VerbStore.Create fills those in). None are flagged is_test,
// so they remain in the pool after `quizctl database clean`.
func Verbs() []model.Verb {
	return []model.Verb{
		{
			Infinitive: "parler", Auxiliary: model.AuxiliaryAvoir,
			TargetLanguageCode: "eng", Translation: "to speak",
			PastParticiple: "parlé", PresentParticiple: "parlant",
			Classification: classification(model.ClassificationFirst),
			CanHaveCOD:     true, CanHaveCOI: true,
		},
		{
			Infinitive: "finir", Auxiliary: model.AuxiliaryAvoir,
			TargetLanguageCode: "eng", Translation: "to finish",
			PastParticiple: "fini", PresentParticiple: "finissant",
			Classification: classification(model.ClassificationSecond),
			CanHaveCOD:     true,
		},
		{
			Infinitive: "vendre", Auxiliary: model.AuxiliaryAvoir,
			TargetLanguageCode: "eng", Translation: "to sell",
			PastParticiple: "vendu", PresentParticiple: "vendant",
			Classification: classification(model.ClassificationThird),
			CanHaveCOD:     true, CanHaveCOI: true,
		},
		{
			Infinitive: "aller", Auxiliary: model.AuxiliaryEtre,
			TargetLanguageCode: "eng", Translation: "to go",
			PastParticiple: "allé", PresentParticiple: "allant",
			Irregular: true,
		},
		{
			Infinitive: "faire", Auxiliary: model.AuxiliaryAvoir,
			TargetLanguageCode: "eng", Translation: "to do, to make",
			PastParticiple: "fait", PresentParticiple: "faisant",
			Irregular: true, CanHaveCOD: true,
		},
		{
			Infinitive: "avoir", Auxiliary: model.AuxiliaryAvoir,
			TargetLanguageCode: "eng", Translation: "to have",
			PastParticiple: "eu", PresentParticiple: "ayant",
			Irregular: true, CanHaveCOD: true,
		},
		{
			Infinitive: "être", Auxiliary: model.AuxiliaryAvoir,
			TargetLanguageCode: "eng", Translation: "to be",
			PastParticiple: "été", PresentParticiple: "étant",
			Irregular: true,
		},
		{
			Infinitive: "pouvoir", Auxiliary: model.AuxiliaryAvoir,
			TargetLanguageCode: "eng", Translation: "to be able to",
			PastParticiple: "pu", PresentParticiple: "pouvant",
			Irregular: true, CanHaveCOD: true,
		},
		{
			Infinitive: "vouloir", Auxiliary: model.AuxiliaryAvoir,
			TargetLanguageCode: "eng", Translation: "to want",
			PastParticiple: "voulu", PresentParticiple: "voulant",
			Irregular: true, CanHaveCOD: true,
		},
		{
			Infinitive: "prendre", Auxiliary: model.AuxiliaryAvoir,
			TargetLanguageCode: "eng", Translation: "to take",
			PastParticiple: "pris", PresentParticiple: "prenant",
			Irregular: true, CanHaveCOD: true,
		},
		{
			Infinitive: "venir", Auxiliary: model.AuxiliaryEtre,
			TargetLanguageCode: "eng", Translation: "to come",
			PastParticiple: "venu", PresentParticiple: "venant",
			Irregular: true,
		},
		{
			Infinitive: "voir", Auxiliary: model.AuxiliaryAvoir,
			TargetLanguageCode: "eng", Translation: "to see",
			PastParticiple: "vu", PresentParticiple: "voyant",
			Irregular: true, CanHaveCOD: true,
		},
		{
			Infinitive: "dire", Auxiliary: model.AuxiliaryAvoir,
			TargetLanguageCode: "eng", Translation: "to say",
			PastParticiple: "dit", PresentParticiple: "disant",
			Irregular: true, CanHaveCOD: true, CanHaveCOI: true,
		},
		{
			Infinitive: "donner", Auxiliary: model.AuxiliaryAvoir,
			TargetLanguageCode: "eng", Translation: "to give",
			PastParticiple: "donné", PresentParticiple: "donnant",
			Classification: classification(model.ClassificationFirst),
			CanHaveCOD:     true, CanHaveCOI: true,
		},
		{
			Infinitive: "se laver", Auxiliary: model.AuxiliaryEtre, Reflexive: true,
			TargetLanguageCode: "eng", Translation: "to wash oneself",
			PastParticiple: "lavé", PresentParticiple: "lavant",
			Classification: classification(model.ClassificationFirst),
		},
	}
}
