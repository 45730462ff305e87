package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/beverage/language-quiz-service/core/db"
	"github.com/beverage/language-quiz-service/internal/model"
)

type conjugationStore struct {
	q db.Querier
}

func newConjugationStore(q db.Querier) ConjugationStore {
	return &conjugationStore{q: q}
}

func (s *conjugationStore) Get(ctx context.Context, infinitive string, aux model.Auxiliary, reflexive bool, tense model.Tense) (*model.Conjugation, error) {
	row := s.q.QueryRow(ctx, `
		SELECT id, infinitive, auxiliary, reflexive, tense,
		       first_person_singular, second_person_singular, third_person_singular,
		       first_person_plural, second_person_plural, third_person_plural
		FROM conjugations
		WHERE infinitive = $1 AND auxiliary = $2 AND reflexive = $3 AND tense = $4`,
		infinitive, aux, reflexive, tense)
	return scanConjugation(row)
}

func (s *conjugationStore) Create(ctx context.Context, c *model.Conjugation) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := s.q.Exec(ctx, `
		INSERT INTO conjugations (id, infinitive, auxiliary, reflexive, tense,
		                           first_person_singular, second_person_singular, third_person_singular,
		                           first_person_plural, second_person_plural, third_person_plural)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		c.ID, c.Infinitive, c.Auxiliary, c.Reflexive, c.Tense,
		c.FirstSing, c.SecondSing, c.ThirdSing, c.FirstPlur, c.SecondPlur, c.ThirdPlur)
	return translateWriteErr(err)
}

func (s *conjugationStore) Update(ctx context.Context, c *model.Conjugation) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE conjugations SET first_person_singular=$2, second_person_singular=$3,
		       third_person_singular=$4, first_person_plural=$5, second_person_plural=$6,
		       third_person_plural=$7
		WHERE id = $1`,
		c.ID, c.FirstSing, c.SecondSing, c.ThirdSing, c.FirstPlur, c.SecondPlur, c.ThirdPlur)
	if err != nil {
		return translateWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *conjugationStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM conjugations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *conjugationStore) ListByVerb(ctx context.Context, infinitive string, aux model.Auxiliary, reflexive bool) ([]model.Conjugation, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, infinitive, auxiliary, reflexive, tense,
		       first_person_singular, second_person_singular, third_person_singular,
		       first_person_plural, second_person_plural, third_person_plural
		FROM conjugations WHERE infinitive = $1 AND auxiliary = $2 AND reflexive = $3`,
		infinitive, aux, reflexive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Conjugation
	for rows.Next() {
		c, err := scanConjugationRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scanConjugation(row pgx.Row) (*model.Conjugation, error) {
	var c model.Conjugation
	err := row.Scan(&c.ID, &c.Infinitive, &c.Auxiliary, &c.Reflexive, &c.Tense,
		&c.FirstSing, &c.SecondSing, &c.ThirdSing, &c.FirstPlur, &c.SecondPlur, &c.ThirdPlur)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func scanConjugationRows(rows pgx.Rows) (*model.Conjugation, error) {
	var c model.Conjugation
	err := rows.Scan(&c.ID, &c.Infinitive, &c.Auxiliary, &c.Reflexive, &c.Tense,
		&c.FirstSing, &c.SecondSing, &c.ThirdSing, &c.FirstPlur, &c.SecondPlur, &c.ThirdPlur)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
