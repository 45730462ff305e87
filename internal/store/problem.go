package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/beverage/language-quiz-service/core/db"
	"github.com/beverage/language-quiz-service/internal/model"
)

type problemStore struct {
	q db.Querier
}

func newProblemStore(q db.Querier) ProblemStore {
	return &problemStore{q: q}
}

const problemColumns = `
		id, problem_type, title, instructions, statements, correct_answer_index,
		topic_tags, source_statement_ids, metadata, target_language_code,
		created_at, updated_at, last_served_at, generation_trace, generation_request_id`

func (s *problemStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Problem, error) {
	row := s.q.QueryRow(ctx, `SELECT`+problemColumns+` FROM problems WHERE id = $1`, id)
	return scanProblem(row)
}

// validateStatementShape enforces the per-type required-key rule: grammar
// statements need content + is_correct + (translation or explanation);
// vocabulary needs word + definition; functional needs sentence + option.
func validateStatementShape(pt model.ProblemType, st model.Statement) error {
	has := func(keys ...string) bool {
		for _, k := range keys {
			if _, ok := st[k]; !ok {
				return false
			}
		}
		return true
	}
	switch pt {
	case model.ProblemTypeGrammar:
		if !has("content", "is_correct") {
			return fmt.Errorf("grammar statement missing content/is_correct")
		}
		_, hasTranslation := st["translation"]
		_, hasExplanation := st["explanation"]
		if !hasTranslation && !hasExplanation {
			return fmt.Errorf("grammar statement missing translation or explanation")
		}
	case model.ProblemTypeVocabulary:
		if !has("word", "definition") {
			return fmt.Errorf("vocabulary statement missing word/definition")
		}
	case model.ProblemTypeFunctional:
		if !has("sentence", "option") {
			return fmt.Errorf("functional statement missing sentence/option")
		}
	}
	return nil
}

func (s *problemStore) Create(ctx context.Context, p *model.Problem) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if !p.ValidAnswerIndex() {
		return fmt.Errorf("%w: correct_answer_index out of range", ErrConflict)
	}
	for _, st := range p.Statements {
		if err := validateStatementShape(p.ProblemType, st); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	statementsJSON, err := json.Marshal(p.Statements)
	if err != nil {
		return err
	}
	metadataJSON, err := json.Marshal(p.Metadata)
	if err != nil {
		return err
	}
	var traceJSON []byte
	if p.GenerationTrace != nil {
		traceJSON, err = json.Marshal(p.GenerationTrace)
		if err != nil {
			return err
		}
	}

	_, err = s.q.Exec(ctx, `
		INSERT INTO problems (id, problem_type, title, instructions, statements,
		                       correct_answer_index, topic_tags, source_statement_ids,
		                       metadata, target_language_code, created_at, updated_at,
		                       generation_trace, generation_request_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		p.ID, p.ProblemType, p.Title, p.Instructions, statementsJSON, p.CorrectAnswerIndex,
		p.TopicTags, p.SourceStatementIDs, metadataJSON, p.TargetLanguageCode,
		p.CreatedAt, p.UpdatedAt, traceJSON, p.GenerationRequestID)
	return translateWriteErr(err)
}

func (s *problemStore) Update(ctx context.Context, p *model.Problem) error {
	p.UpdatedAt = time.Now().UTC()
	statementsJSON, err := json.Marshal(p.Statements)
	if err != nil {
		return err
	}
	metadataJSON, err := json.Marshal(p.Metadata)
	if err != nil {
		return err
	}

	tag, err := s.q.Exec(ctx, `
		UPDATE problems SET title=$2, instructions=$3, statements=$4, correct_answer_index=$5,
		       topic_tags=$6, metadata=$7, updated_at=$8
		WHERE id = $1`,
		p.ID, p.Title, p.Instructions, statementsJSON, p.CorrectAnswerIndex,
		p.TopicTags, metadataJSON, p.UpdatedAt)
	if err != nil {
		return translateWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *problemStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM problems WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *problemStore) DeleteOlderThan(ctx context.Context, cutoff time.Time, topicTag *string) (int64, error) {
	sql := `DELETE FROM problems WHERE created_at < $1`
	args := []any{cutoff}
	if topicTag != nil {
		sql += " AND $2 = ANY(topic_tags)"
		args = append(args, *topicTag)
	}
	tag, err := s.q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SelectRandomWeighted implements the staleness-LRU weighted ordering:
// score = max(age_seconds, virtual_staleness_seconds) * uniform(0.5, 1.5),
// ordered descending, limit 1. The multiplicative jitter is computed in SQL
// via random() so concurrent callers racing the same freshly-created batch
// don't all collide on the same ordering key.
func (s *problemStore) SelectRandomWeighted(ctx context.Context, filter ProblemFilter) (*model.Problem, error) {
	virtualDays := filter.VirtualStalenessDays
	if virtualDays <= 0 {
		virtualDays = 3
	}
	virtualSeconds := virtualDays * 86400

	sql := `SELECT` + problemColumns + ` FROM problems WHERE 1=1`
	args := []any{}
	i := 0
	// add appends val as the next positional parameter and renders clauseFmt
	// with that parameter's placeholder substituted for %s (not "?", since
	// several jsonb operators below are themselves literal "?" characters).
	add := func(clauseFmt string, val any) {
		i++
		sql += " AND " + fmt.Sprintf(clauseFmt, "$"+strconv.Itoa(i))
		args = append(args, val)
	}

	if filter.ProblemType != nil {
		add("problem_type = %s", *filter.ProblemType)
	}
	if filter.TargetLanguageCode != nil {
		add("target_language_code = %s", *filter.TargetLanguageCode)
	}
	if filter.GrammaticalFocus != nil {
		add("metadata->'grammatical_focus' ? %s", *filter.GrammaticalFocus)
	}
	if len(filter.TensesUsed) > 0 {
		tenses := make([]string, len(filter.TensesUsed))
		for idx, t := range filter.TensesUsed {
			tenses[idx] = string(t)
		}
		add("metadata->'tenses_used' ?| %s", tenses)
	}
	if len(filter.TopicTags) > 0 {
		add("topic_tags && %s", filter.TopicTags)
	}
	if len(filter.CandidateIDs) > 0 {
		add("id = ANY(%s)", filter.CandidateIDs)
	}

	i++
	sql += fmt.Sprintf(`
		ORDER BY GREATEST(
			EXTRACT(EPOCH FROM (now() - COALESCE(last_served_at, created_at - interval '%f seconds'))),
			%f
		) * (0.5 + random()) DESC
		LIMIT 1`, virtualSeconds, virtualSeconds)

	row := s.q.QueryRow(ctx, sql, args...)
	p, err := scanProblem(row)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	go func() {
		// fire-and-forget per spec: the read may return before this commits.
		_, _ = s.q.Exec(context.Background(), `UPDATE problems SET last_served_at = $2 WHERE id = $1`, p.ID, now)
	}()
	p.LastServedAt = &now

	return p, nil
}

// scannable is satisfied by both pgx.Row and pgx.Rows, letting one scan
// function serve a single QueryRow result and a Query result set alike.
type scannable interface {
	Scan(dest ...any) error
}

func scanProblem(row scannable) (*model.Problem, error) {
	p, err := scanProblemRows(row)
	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func scanProblemRows(row scannable) (*model.Problem, error) {
	var p model.Problem
	var statementsJSON, metadataJSON []byte
	var traceJSON []byte
	err := row.Scan(&p.ID, &p.ProblemType, &p.Title, &p.Instructions, &statementsJSON,
		&p.CorrectAnswerIndex, &p.TopicTags, &p.SourceStatementIDs, &metadataJSON,
		&p.TargetLanguageCode, &p.CreatedAt, &p.UpdatedAt, &p.LastServedAt, &traceJSON,
		&p.GenerationRequestID)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(statementsJSON, &p.Statements); err != nil {
		return nil, fmt.Errorf("decoding statements: %w", err)
	}
	if err := json.Unmarshal(metadataJSON, &p.Metadata); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	if len(traceJSON) > 0 {
		var trace model.GenerationTrace
		if err := json.Unmarshal(traceJSON, &trace); err != nil {
			return nil, fmt.Errorf("decoding generation trace: %w", err)
		}
		p.GenerationTrace = &trace
	}
	return &p, nil
}
