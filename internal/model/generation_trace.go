package model

// SentenceTrace is the per-sentence record of one LLM invocation used by the
// packager to build a problem's four statements.
type SentenceTrace struct {
	Prompt            string `json:"prompt"`
	Model             string `json:"model"`
	ResponseID        string `json:"response_id,omitempty"`
	ReasoningContent  string `json:"reasoning_content,omitempty"`
	PromptTokens      int    `json:"prompt_tokens"`
	CompletionTokens  int    `json:"completion_tokens"`
	ReasoningTokens   int    `json:"reasoning_tokens,omitempty"`
	TotalTokens       int    `json:"total_tokens"`
	DurationMS        int64  `json:"duration_ms"`
	ErrorType         string `json:"error_type,omitempty"`
	RawContent        string `json:"raw_content,omitempty"`
}

// GenerationTrace aggregates the four SentenceTrace records of one problem.
type GenerationTrace struct {
	PromptVersion    string          `json:"prompt_version"`
	Sentences        []SentenceTrace `json:"sentences"`
	TotalPromptTok   int             `json:"total_prompt_tokens"`
	TotalCompleteTok int             `json:"total_completion_tokens"`
	TotalTokens      int             `json:"total_tokens"`
	TotalDurationMS  int64           `json:"total_duration_ms"`
}

// Aggregate recomputes the totals from the current Sentences slice.
func (t *GenerationTrace) Aggregate() {
	t.TotalPromptTok, t.TotalCompleteTok, t.TotalTokens, t.TotalDurationMS = 0, 0, 0, 0
	for _, s := range t.Sentences {
		t.TotalPromptTok += s.PromptTokens
		t.TotalCompleteTok += s.CompletionTokens
		t.TotalTokens += s.TotalTokens
		t.TotalDurationMS += s.DurationMS
	}
}
