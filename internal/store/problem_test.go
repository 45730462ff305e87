package store

import (
	"testing"

	"github.com/beverage/language-quiz-service/internal/model"
)

func TestValidateStatementShape(t *testing.T) {
	tests := []struct {
		name    string
		pt      model.ProblemType
		st      model.Statement
		wantErr bool
	}{
		{
			name:    "grammar with translation",
			pt:      model.ProblemTypeGrammar,
			st:      model.Statement{"content": "Je parle.", "is_correct": true, "translation": "I speak."},
			wantErr: false,
		},
		{
			name:    "grammar with explanation",
			pt:      model.ProblemTypeGrammar,
			st:      model.Statement{"content": "Je parles.", "is_correct": false, "explanation": "wrong conjugation"},
			wantErr: false,
		},
		{
			name:    "grammar missing both translation and explanation",
			pt:      model.ProblemTypeGrammar,
			st:      model.Statement{"content": "Je parle.", "is_correct": true},
			wantErr: true,
		},
		{
			name:    "grammar missing content",
			pt:      model.ProblemTypeGrammar,
			st:      model.Statement{"is_correct": true, "translation": "I speak."},
			wantErr: true,
		},
		{
			name:    "vocabulary complete",
			pt:      model.ProblemTypeVocabulary,
			st:      model.Statement{"word": "chat", "definition": "cat"},
			wantErr: false,
		},
		{
			name:    "vocabulary missing definition",
			pt:      model.ProblemTypeVocabulary,
			st:      model.Statement{"word": "chat"},
			wantErr: true,
		},
		{
			name:    "functional complete",
			pt:      model.ProblemTypeFunctional,
			st:      model.Statement{"sentence": "...", "option": "..."},
			wantErr: false,
		},
		{
			name:    "functional missing option",
			pt:      model.ProblemTypeFunctional,
			st:      model.Statement{"sentence": "..."},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateStatementShape(tt.pt, tt.st)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateStatementShape() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProblemValidAnswerIndex(t *testing.T) {
	p := model.Problem{
		Statements:         []model.Statement{{}, {}, {}, {}},
		CorrectAnswerIndex: 4,
	}
	if p.ValidAnswerIndex() {
		t.Error("expected out-of-range index to be invalid")
	}

	p.CorrectAnswerIndex = 0
	if !p.ValidAnswerIndex() {
		t.Error("expected in-range index to be valid")
	}
}
