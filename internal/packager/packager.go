// Package packager assembles a grammar Problem from one correct and three
// incorrect LLM-generated sentences, generated concurrently (spec component D).
package packager

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"

	"github.com/beverage/language-quiz-service/common/llm"
	"github.com/beverage/language-quiz-service/internal/apperr"
	"github.com/beverage/language-quiz-service/internal/model"
	"github.com/beverage/language-quiz-service/internal/prompt"
)

const slotCount = 4

// Packager drives the four parallel LLM calls for one grammar problem.
type Packager struct {
	llm llm.Client
}

func New(client llm.Client) *Packager {
	return &Packager{llm: client}
}

// Request describes the grammatical parameters a worker has already chosen.
type Request struct {
	Verb       model.Verb
	Params     prompt.Params
	ErrorTypes [3]model.ErrorType
	Model      string
}

type slotResult struct {
	sentence model.Sentence
	trace    model.SentenceTrace
	err      error
}

// Package drives 1 correct + 3 incorrect sentence generations in parallel,
// waits for all four, and assembles a Problem with the correct sentence
// placed in a uniformly random slot. A single failure among the four fails
// the whole problem. The returned sentences are unpersisted (zero ID); the
// caller assigns ids on insert and back-fills Problem.SourceStatementIDs.
func (p *Packager) Package(ctx context.Context, req Request) (*model.Problem, []model.Sentence, error) {
	results := make([]slotResult, slotCount)
	var wg sync.WaitGroup
	sem := make(chan struct{}, slotCount)

	for slot := 0; slot < slotCount; slot++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			var errType *model.ErrorType
			if idx > 0 {
				errType = &req.ErrorTypes[idx-1]
			}
			results[idx] = p.generateOne(ctx, req, errType)
		}(slot)
	}
	wg.Wait()

	trace := &model.GenerationTrace{PromptVersion: prompt.Version}
	for _, r := range results {
		trace.Sentences = append(trace.Sentences, r.trace)
	}
	trace.Aggregate()

	for _, r := range results {
		if r.err != nil {
			return nil, nil, apperr.Wrap(apperr.KindContentGenerationFailed, "package_problem", r.err)
		}
	}

	correctSlot := rand.Intn(slotCount)
	statements := make([]model.Statement, slotCount)

	// Reorder: slot 0's result is the correct sentence; it is placed at
	// correctSlot, and the three incorrect results fill the remaining slots
	// in order.
	ordered := make([]slotResult, slotCount)
	incorrectIdx := 1
	for i := 0; i < slotCount; i++ {
		if i == correctSlot {
			ordered[i] = results[0]
		} else {
			ordered[i] = results[incorrectIdx]
			incorrectIdx++
		}
	}

	sentences := make([]model.Sentence, slotCount)
	for i, r := range ordered {
		sentences[i] = r.sentence
		statements[i] = model.Statement{
			"content":     r.sentence.Content,
			"is_correct":  r.sentence.IsCorrect,
			"translation": r.sentence.Translation,
			"explanation": r.sentence.Explanation,
		}
	}

	metadata := model.ProblemMetadata{
		TensesUsed:      []string{string(req.Params.Tense)},
		VerbInfinitives: []string{req.Verb.Infinitive},
		IncludesCOD:     req.Params.DirectObject != model.ObjectNone,
		IncludesCOI:     req.Params.IndirectObject != model.ObjectNone,
		IncludesNegation: req.Params.Negation != model.NegationNone,
		PromptVersion:   prompt.Version,
	}
	for _, et := range req.ErrorTypes {
		metadata.GrammaticalFocus = append(metadata.GrammaticalFocus, string(et))
	}

	problem := &model.Problem{
		ProblemType:         model.ProblemTypeGrammar,
		Title:               fmt.Sprintf("Conjugate %s", req.Verb.Infinitive),
		Instructions:        "Select the grammatically correct sentence.",
		Statements:          statements,
		CorrectAnswerIndex:  correctSlot,
		TargetLanguageCode:  req.Verb.TargetLanguageCode,
		Metadata:            metadata,
		GenerationTrace:     trace,
	}
	return problem, sentences, nil
}

// decodeStatement unmarshals the LLM's cleaned JSON content into the
// statement response contract.
func decodeStatement(content string, out *prompt.StatementResponse) error {
	return json.Unmarshal([]byte(content), out)
}

func (p *Packager) generateOne(ctx context.Context, req Request, errType *model.ErrorType) slotResult {
	system, user := prompt.Render(req.Verb, req.Params, errType)

	operation := "sentence_correct"
	if errType != nil {
		operation = "sentence_" + string(*errType)
	}

	resp, err := p.llm.Generate(ctx, llm.Request{
		SystemPrompt: system,
		UserPrompt:   user,
		SchemaName:   "statement_response",
		Schema:       llm.GenerateSchema[prompt.StatementResponse](),
		OperationTag: operation,
		Model:        req.Model,
		Temperature:  llm.Temp(0.7),
	})

	trace := model.SentenceTrace{
		Prompt: user,
		Model:  req.Model,
	}
	if err != nil {
		trace.ErrorType = operation
		return slotResult{trace: trace, err: err}
	}

	trace.ResponseID = resp.ResponseID
	trace.ReasoningContent = resp.ReasoningContent
	trace.PromptTokens = resp.PromptTokens
	trace.CompletionTokens = resp.CompletionTokens
	trace.ReasoningTokens = resp.ReasoningTokens
	trace.TotalTokens = resp.TotalTokens
	trace.DurationMS = resp.DurationMS
	trace.RawContent = resp.RawContent
	trace.Model = resp.Model

	var parsed prompt.StatementResponse
	if err := decodeStatement(resp.Content, &parsed); err != nil {
		trace.ErrorType = "decode_error"
		return slotResult{trace: trace, err: err}
	}

	sentence := model.Sentence{
		VerbID:              req.Verb.ID,
		Content:              parsed.Sentence,
		Translation:          parsed.Translation,
		Pronoun:              req.Params.Pronoun,
		Tense:                req.Params.Tense,
		DirectObject:         req.Params.DirectObject,
		IndirectObject:       req.Params.IndirectObject,
		Negation:             req.Params.Negation,
		IsCorrect:            errType == nil,
		Explanation:          parsed.Explanation,
		Source:               "llm",
		IntroducedErrorType:  errType,
	}

	return slotResult{sentence: sentence, trace: trace}
}
