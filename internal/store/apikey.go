package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/beverage/language-quiz-service/core/db"
	"github.com/beverage/language-quiz-service/internal/model"
)

type apiKeyStore struct {
	q db.Querier
}

func newAPIKeyStore(q db.Querier) APIKeyStore {
	return &apiKeyStore{q: q}
}

const apiKeyColumns = `
		id, secret_hash, salt, prefix, name, active, permissions, allowed_ips,
		rate_limit_rpm, usage_count, last_used_at, created_at`

func (s *apiKeyStore) GetByID(ctx context.Context, id string) (*model.APIKey, error) {
	row := s.q.QueryRow(ctx, `SELECT`+apiKeyColumns+` FROM api_keys WHERE id = $1`, id)
	return scanAPIKey(row)
}

func (s *apiKeyStore) GetByPrefix(ctx context.Context, prefix string) (*model.APIKey, error) {
	row := s.q.QueryRow(ctx, `SELECT`+apiKeyColumns+` FROM api_keys WHERE prefix = $1`, prefix)
	return scanAPIKey(row)
}

func (s *apiKeyStore) Create(ctx context.Context, k *model.APIKey) error {
	k.CreatedAt = time.Now().UTC()
	_, err := s.q.Exec(ctx, `
		INSERT INTO api_keys (id, secret_hash, salt, prefix, name, active, permissions,
		                       allowed_ips, rate_limit_rpm, usage_count, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,0,$10)`,
		k.ID, k.SecretHash, k.Salt, k.Prefix, k.Name, k.Active, permStrings(k.Permissions),
		k.AllowedIPs, k.RateLimitRPM, k.CreatedAt)
	return translateWriteErr(err)
}

func (s *apiKeyStore) Update(ctx context.Context, k *model.APIKey) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE api_keys SET name=$2, active=$3, permissions=$4, allowed_ips=$5, rate_limit_rpm=$6
		WHERE id = $1`,
		k.ID, k.Name, k.Active, permStrings(k.Permissions), k.AllowedIPs, k.RateLimitRPM)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *apiKeyStore) Delete(ctx context.Context, id string) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordUsage is invoked asynchronously by the auth middleware; a failure
// here must never fail the request it's billing for.
func (s *apiKeyStore) RecordUsage(ctx context.Context, id string, at time.Time) error {
	_, err := s.q.Exec(ctx, `
		UPDATE api_keys SET usage_count = usage_count + 1, last_used_at = $2 WHERE id = $1`,
		id, at)
	return err
}

func (s *apiKeyStore) ListActive(ctx context.Context) ([]model.APIKey, error) {
	rows, err := s.q.Query(ctx, `SELECT`+apiKeyColumns+` FROM api_keys WHERE active = true`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.APIKey
	for rows.Next() {
		k, err := scanAPIKeyRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *k)
	}
	return out, rows.Err()
}

func permStrings(perms []model.Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}

func scanAPIKey(row scannable) (*model.APIKey, error) {
	k, err := scanAPIKeyRows(row)
	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return k, err
}

func scanAPIKeyRows(row scannable) (*model.APIKey, error) {
	var k model.APIKey
	var perms []string
	err := row.Scan(&k.ID, &k.SecretHash, &k.Salt, &k.Prefix, &k.Name, &k.Active, &perms,
		&k.AllowedIPs, &k.RateLimitRPM, &k.UsageCount, &k.LastUsedAt, &k.CreatedAt)
	if err != nil {
		return nil, err
	}
	k.Permissions = make([]model.Permission, len(perms))
	for i, p := range perms {
		k.Permissions[i] = model.Permission(p)
	}
	return &k, nil
}
