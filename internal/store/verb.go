package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/beverage/language-quiz-service/core/db"
	"github.com/beverage/language-quiz-service/internal/model"
)

const uniqueViolation = "23505"

type verbStore struct {
	q db.Querier
}

func newVerbStore(q db.Querier) VerbStore {
	return &verbStore{q: q}
}

func (s *verbStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Verb, error) {
	row := s.q.QueryRow(ctx, `
		SELECT id, infinitive, auxiliary, reflexive, target_language_code, translation,
		       past_participle, present_participle, classification, is_irregular,
		       can_have_cod, can_have_coi, is_test, created_at, updated_at, last_used_at
		FROM verbs WHERE id = $1`, id)
	return scanVerb(row)
}

func (s *verbStore) GetByInfinitive(ctx context.Context, infinitive string, aux model.Auxiliary, reflexive bool) (*model.Verb, error) {
	row := s.q.QueryRow(ctx, `
		SELECT id, infinitive, auxiliary, reflexive, target_language_code, translation,
		       past_participle, present_participle, classification, is_irregular,
		       can_have_cod, can_have_coi, is_test, created_at, updated_at, last_used_at
		FROM verbs WHERE infinitive = $1 AND auxiliary = $2 AND reflexive = $3`,
		infinitive, aux, reflexive)
	return scanVerb(row)
}

func (s *verbStore) Create(ctx context.Context, v *model.Verb) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	now := time.Now().UTC()
	v.CreatedAt, v.UpdatedAt = now, now

	_, err := s.q.Exec(ctx, `
		INSERT INTO verbs (id, infinitive, auxiliary, reflexive, target_language_code, translation,
		                    past_participle, present_participle, classification, is_irregular,
		                    can_have_cod, can_have_coi, is_test, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		v.ID, v.Infinitive, v.Auxiliary, v.Reflexive, v.TargetLanguageCode, v.Translation,
		v.PastParticiple, v.PresentParticiple, v.Classification, v.Irregular,
		v.CanHaveCOD, v.CanHaveCOI, v.IsTest, v.CreatedAt, v.UpdatedAt)
	return translateWriteErr(err)
}

func (s *verbStore) Update(ctx context.Context, v *model.Verb) error {
	v.UpdatedAt = time.Now().UTC()
	tag, err := s.q.Exec(ctx, `
		UPDATE verbs SET infinitive=$2, auxiliary=$3, reflexive=$4, target_language_code=$5,
		       translation=$6, past_participle=$7, present_participle=$8, classification=$9,
		       is_irregular=$10, can_have_cod=$11, can_have_coi=$12, is_test=$13, updated_at=$14
		WHERE id = $1`,
		v.ID, v.Infinitive, v.Auxiliary, v.Reflexive, v.TargetLanguageCode, v.Translation,
		v.PastParticiple, v.PresentParticiple, v.Classification, v.Irregular,
		v.CanHaveCOD, v.CanHaveCOI, v.IsTest, v.UpdatedAt)
	if err != nil {
		return translateWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a verb along with the sentences that reference it (no ON
// DELETE CASCADE on sentences.verb_id, so the cascade is explicit here).
func (s *verbStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM sentences WHERE verb_id = $1`, id); err != nil {
		return err
	}
	tag, err := s.q.Exec(ctx, `DELETE FROM verbs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *verbStore) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.q.Exec(ctx, `UPDATE verbs SET last_used_at = $2 WHERE id = $1`, id, at)
	return err
}

// DeleteTestTagged removes every verb flagged is_test, along with the
// sentences that reference them (no ON DELETE CASCADE on sentences.verb_id,
// see migrations/20260101000003_sentences.sql, so the cascade is explicit
// here rather than left to the database). Used by `quizctl database clean`.
func (s *verbStore) DeleteTestTagged(ctx context.Context) (int64, error) {
	if _, err := s.q.Exec(ctx, `DELETE FROM sentences WHERE verb_id IN (SELECT id FROM verbs WHERE is_test = true)`); err != nil {
		return 0, err
	}
	tag, err := s.q.Exec(ctx, `DELETE FROM verbs WHERE is_test = true`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RandomNonTest draws one verb uniformly at random from the pool matching
// constraints, excluding verbs flagged is_test.
func (s *verbStore) RandomNonTest(ctx context.Context, c VerbConstraints) (*model.Verb, error) {
	sql := `
		SELECT id, infinitive, auxiliary, reflexive, target_language_code, translation,
		       past_participle, present_participle, classification, is_irregular,
		       can_have_cod, can_have_coi, is_test, created_at, updated_at, last_used_at
		FROM verbs
		WHERE is_test = false`
	args := []any{}
	i := 0
	if c.Infinitive != nil {
		i++
		sql += " AND infinitive = $" + strconv.Itoa(i)
		args = append(args, *c.Infinitive)
	}
	if c.TargetLanguageCode != nil {
		i++
		sql += " AND target_language_code = $" + strconv.Itoa(i)
		args = append(args, *c.TargetLanguageCode)
	}
	if c.RequireCOD {
		sql += " AND can_have_cod = true"
	}
	if c.RequireCOI {
		sql += " AND can_have_coi = true"
	}
	sql += " ORDER BY random() LIMIT 1"

	row := s.q.QueryRow(ctx, sql, args...)
	return scanVerb(row)
}

func scanVerb(row pgx.Row) (*model.Verb, error) {
	var v model.Verb
	var classification *model.Classification
	err := row.Scan(&v.ID, &v.Infinitive, &v.Auxiliary, &v.Reflexive, &v.TargetLanguageCode,
		&v.Translation, &v.PastParticiple, &v.PresentParticiple, &classification, &v.Irregular,
		&v.CanHaveCOD, &v.CanHaveCOI, &v.IsTest, &v.CreatedAt, &v.UpdatedAt, &v.LastUsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	v.Classification = classification
	return &v, nil
}

func translateWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}
