package index

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/beverage/language-quiz-service/internal/model"
	"github.com/beverage/language-quiz-service/internal/store"
)

func TestBuildFilterQuery_EmptyFilterYieldsEmptyQuery(t *testing.T) {
	assert.Equal(t, "", buildFilterQuery(store.ProblemFilter{}))
}

func TestBuildFilterQuery_CombinesSetFields(t *testing.T) {
	pt := model.ProblemTypeGrammar
	lang := "fra"
	focus := "WRONG_CONJUGATION"

	q := buildFilterQuery(store.ProblemFilter{
		ProblemType:        &pt,
		TargetLanguageCode: &lang,
		GrammaticalFocus:   &focus,
		TensesUsed:         []model.Tense{model.TensePresent, model.TensePasseCompose},
		TopicTags:          []string{"negation", "passe-compose"},
	})

	assert.Contains(t, q, "problem_type:=grammar")
	assert.Contains(t, q, "target_language_code:=fra")
	assert.Contains(t, q, "grammatical_focus:=WRONG_CONJUGATION")
	assert.Contains(t, q, "tenses_used:=[present,passe_compose]")
	assert.Contains(t, q, "topic_tags:=[negation,passe-compose]")
}

func TestToDocument_MapsProblemFields(t *testing.T) {
	p := &model.Problem{
		ProblemType:        model.ProblemTypeGrammar,
		TargetLanguageCode: "fra",
		TopicTags:          []string{"negation"},
		Metadata: model.ProblemMetadata{
			GrammaticalFocus: []string{"WRONG_CONJUGATION"},
			TensesUsed:       []string{"present"},
		},
	}

	doc := toDocument(p)
	assert.Equal(t, p.ID.String(), doc.ID)
	assert.Equal(t, "grammar", doc.ProblemType)
	assert.Equal(t, "fra", doc.TargetLanguageCode)
	assert.Equal(t, []string{"negation"}, doc.TopicTags)
	assert.Equal(t, []string{"WRONG_CONJUGATION"}, doc.GrammaticalFocus)
	assert.Equal(t, []string{"present"}, doc.TensesUsed)
}

func TestSchema_DeclaresFacetFields(t *testing.T) {
	schema := Schema()
	assert.Equal(t, CollectionName, schema.Name)

	names := make(map[string]bool, len(schema.Fields))
	for _, f := range schema.Fields {
		names[f.Name] = true
	}
	for _, want := range []string{"id", "problem_type", "target_language_code", "topic_tags", "grammatical_focus", "tenses_used"} {
		assert.True(t, names[want], "expected schema to declare field %q", want)
	}
}
