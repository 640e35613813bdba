package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// EntitlementsRepo is the remote per-user record of owned templates. A row
// only ever grows: Add is an idempotent set union.
type EntitlementsRepo struct {
	pool *pgxpool.Pool
}

func NewEntitlementsRepo(pool *pgxpool.Pool) *EntitlementsRepo {
	return &EntitlementsRepo{pool: pool}
}

// Owned returns the template ids recorded for userID, empty when the user has
// no record yet.
func (r *EntitlementsRepo) Owned(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.pool.QueryRow(ctx,
		`SELECT template_ids FROM user_entitlements WHERE user_id = $1`, userID).Scan(&ids)
	if errors.Is(err, pgx.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select entitlements for %s: %w", userID, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Add records templateID for userID, creating the record on first use.
func (r *EntitlementsRepo) Add(ctx context.Context, userID, templateID string) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO user_entitlements (user_id, template_ids, updated_at)
		VALUES ($1, ARRAY[$2::text], now())
		ON CONFLICT (user_id) DO UPDATE SET
			template_ids = CASE
				WHEN $2::text = ANY(user_entitlements.template_ids) THEN user_entitlements.template_ids
				ELSE array_append(user_entitlements.template_ids, $2::text)
			END,
			updated_at = now()`,
		userID, templateID)
	if err != nil {
		return fmt.Errorf("add entitlement %s for %s: %w", templateID, userID, err)
	}
	return nil
}
