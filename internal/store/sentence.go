package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/beverage/language-quiz-service/core/db"
	"github.com/beverage/language-quiz-service/internal/model"
)

type sentenceStore struct {
	q db.Querier
}

func newSentenceStore(q db.Querier) SentenceStore {
	return &sentenceStore{q: q}
}

func (s *sentenceStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Sentence, error) {
	row := s.q.QueryRow(ctx, `
		SELECT id, verb_id, content, translation, pronoun, tense, direct_object,
		       indirect_object, reflexive_pronoun, negation, is_correct, explanation,
		       source, introduced_error_type
		FROM sentences WHERE id = $1`, id)
	return scanSentence(row)
}

func (s *sentenceStore) Create(ctx context.Context, sent *model.Sentence) error {
	if sent.ID == uuid.Nil {
		sent.ID = uuid.New()
	}
	_, err := s.q.Exec(ctx, `
		INSERT INTO sentences (id, verb_id, content, translation, pronoun, tense, direct_object,
		                        indirect_object, reflexive_pronoun, negation, is_correct,
		                        explanation, source, introduced_error_type)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		sent.ID, sent.VerbID, sent.Content, sent.Translation, sent.Pronoun, sent.Tense,
		sent.DirectObject, sent.IndirectObject, sent.ReflexivePronoun, sent.Negation,
		sent.IsCorrect, sent.Explanation, sent.Source, sent.IntroducedErrorType)
	return err
}

func (s *sentenceStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM sentences WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByVerb cascades a verb deletion onto its sentences (weak ownership
// edge; sentences do not outlive the verb they were generated from).
func (s *sentenceStore) DeleteByVerb(ctx context.Context, verbID uuid.UUID) error {
	_, err := s.q.Exec(ctx, `DELETE FROM sentences WHERE verb_id = $1`, verbID)
	return err
}

func scanSentence(row pgx.Row) (*model.Sentence, error) {
	var sent model.Sentence
	err := row.Scan(&sent.ID, &sent.VerbID, &sent.Content, &sent.Translation, &sent.Pronoun,
		&sent.Tense, &sent.DirectObject, &sent.IndirectObject, &sent.ReflexivePronoun,
		&sent.Negation, &sent.IsCorrect, &sent.Explanation, &sent.Source, &sent.IntroducedErrorType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sent, nil
}
