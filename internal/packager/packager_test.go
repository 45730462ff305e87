package packager

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/beverage/language-quiz-service/common/llm"
	"github.com/beverage/language-quiz-service/internal/model"
	"github.com/beverage/language-quiz-service/internal/prompt"
)

type fakeLLM struct {
	failOperation string
}

func (f *fakeLLM) Generate(ctx context.Context, req llm.Request) (*llm.LLMResponse, error) {
	if f.failOperation != "" && req.OperationTag == f.failOperation {
		return nil, errors.New("simulated generation failure")
	}
	content := fmt.Sprintf(`{"sentence":"Je parle %s.","translation":"I speak.","explanation":"%s"}`,
		req.OperationTag, explanationFor(req.OperationTag))
	return &llm.LLMResponse{
		Content:          content,
		Model:            "gpt-test",
		PromptTokens:     10,
		CompletionTokens: 5,
		TotalTokens:      15,
		DurationMS:       42,
	}, nil
}

func explanationFor(operation string) string {
	if operation == "sentence_correct" {
		return ""
	}
	return "deliberate error"
}

func testRequest() Request {
	return Request{
		Verb: model.Verb{Infinitive: "parler", Auxiliary: model.AuxiliaryAvoir, TargetLanguageCode: "fra"},
		Params: prompt.Params{
			Pronoun: model.PronounFirstSing,
			Tense:   model.TensePresent,
		},
		ErrorTypes: [3]model.ErrorType{
			model.ErrorWrongConjugation,
			model.ErrorWrongConjugation,
			model.ErrorWrongConjugation,
		},
		Model: "gpt-test",
	}
}

func TestPackage_Success(t *testing.T) {
	p := New(&fakeLLM{})
	problem, sentences, err := p.Package(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Package() error = %v", err)
	}
	if !problem.ValidAnswerIndex() {
		t.Fatalf("correct_answer_index %d out of range for %d statements", problem.CorrectAnswerIndex, len(problem.Statements))
	}
	if len(problem.Statements) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(problem.Statements))
	}
	if len(sentences) != 4 {
		t.Fatalf("expected 4 sentences, got %d", len(sentences))
	}

	correct := problem.Statements[problem.CorrectAnswerIndex]
	if correct["is_correct"] != true {
		t.Errorf("statement at correct_answer_index is not marked correct: %+v", correct)
	}

	incorrectCount := 0
	for i, st := range problem.Statements {
		if i == problem.CorrectAnswerIndex {
			continue
		}
		if st["is_correct"] == true {
			t.Errorf("statement at index %d outside correct_answer_index is marked correct", i)
		} else {
			incorrectCount++
		}
	}
	if incorrectCount != 3 {
		t.Errorf("expected 3 incorrect statements, got %d", incorrectCount)
	}

	if problem.GenerationTrace == nil || len(problem.GenerationTrace.Sentences) != 4 {
		t.Errorf("expected aggregated trace with 4 sentence records, got %+v", problem.GenerationTrace)
	}
}

func TestPackage_SingleFailureFailsWholeProblem(t *testing.T) {
	p := New(&fakeLLM{failOperation: "sentence_correct"})
	_, _, err := p.Package(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected Package() to fail when one of the four generations fails")
	}
}
