package prompt_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/beverage/language-quiz-service/internal/model"
	"github.com/beverage/language-quiz-service/internal/prompt"
)

var _ = Describe("SelectThree", func() {
	verb := func(aux model.Auxiliary) model.Verb {
		return model.Verb{Infinitive: "parler", Auxiliary: aux}
	}

	It("always includes COD when the sentence has a direct object", func() {
		s := model.Sentence{DirectObject: model.ObjectMasc, Tense: model.TensePresent}
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 50; i++ {
			got := prompt.SelectThree(s, verb(model.AuxiliaryAvoir), rng)
			Expect(got[:]).To(ContainElement(model.ErrorCODPronoun))
		}
	})

	It("always includes both COD and COI when the sentence has both", func() {
		s := model.Sentence{
			DirectObject:   model.ObjectFem,
			IndirectObject: model.ObjectPlural,
			Tense:          model.TensePresent,
		}
		got := prompt.SelectThree(s, verb(model.AuxiliaryAvoir), rand.New(rand.NewSource(1)))
		Expect(got[:]).To(ContainElements(model.ErrorCODPronoun, model.ErrorCOIPronoun))
	})

	It("never selects PAST_PARTICIPLE_AGREEMENT for an avoir verb", func() {
		s := model.Sentence{Tense: model.TensePasseCompose}
		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 50; i++ {
			got := prompt.SelectThree(s, verb(model.AuxiliaryAvoir), rng)
			Expect(got[:]).NotTo(ContainElement(model.ErrorPastParticipleAgree))
		}
	})

	It("pads with WRONG_CONJUGATION when fewer than three errors are available", func() {
		s := model.Sentence{Tense: model.TensePresent}
		got := prompt.SelectThree(s, verb(model.AuxiliaryAvoir), rand.New(rand.NewSource(3)))
		count := 0
		for _, t := range got {
			if t == model.ErrorWrongConjugation {
				count++
			}
		}
		Expect(count).To(BeNumerically(">=", 1))
	})
})

var _ = Describe("Available", func() {
	It("includes PAST_PARTICIPLE_AGREEMENT only for être compound tenses", func() {
		s := model.Sentence{Tense: model.TensePasseCompose}
		avoir := model.Verb{Auxiliary: model.AuxiliaryAvoir}
		etre := model.Verb{Auxiliary: model.AuxiliaryEtre}

		Expect(prompt.Available(s, avoir)).NotTo(ContainElement(model.ErrorPastParticipleAgree))
		Expect(prompt.Available(s, etre)).To(ContainElement(model.ErrorPastParticipleAgree))
	})
})
