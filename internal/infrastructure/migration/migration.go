package migration

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v4/pgxpool"
)

// RunMigrations executes all necessary database migrations on startup
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("Starting database migrations")

	migrations := []Migration{
		{
			Name: "create_user_entitlements",
			Up:   createUserEntitlements,
		},
		{
			Name: "add_updated_at_to_user_entitlements",
			Up:   addUpdatedAtToUserEntitlements,
		},
	}

	for _, m := range migrations {
		if err := m.Up(ctx, pool); err != nil {
			slog.Error("Migration failed", "name", m.Name, "error", err)
			return err
		}
		slog.Info("Migration completed", "name", m.Name)
	}

	slog.Info("All migrations completed successfully")
	return nil
}

// Migration represents a database migration
type Migration struct {
	Name string
	Up   func(ctx context.Context, pool *pgxpool.Pool) error
}

// createUserEntitlements creates the per-user record of owned templates
func createUserEntitlements(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS user_entitlements (
			user_id      TEXT PRIMARY KEY,
			template_ids TEXT[] NOT NULL DEFAULT '{}'
		);
	`

	_, err := pool.Exec(ctx, query)
	return err
}

// addUpdatedAtToUserEntitlements adds the updated_at column if it doesn't exist
func addUpdatedAtToUserEntitlements(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		ALTER TABLE user_entitlements
		ADD COLUMN IF NOT EXISTS updated_at TIMESTAMPTZ NOT NULL DEFAULT now();
	`

	if _, err := pool.Exec(ctx, query); err != nil {
		// Log the error but don't fail - the column may already exist
		slog.Warn("Error adding updated_at column (may already exist)", "error", err)
		return nil
	}

	slog.Info("Successfully added updated_at column to user_entitlements table")
	return nil
}
