package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"goalspark/internal/domain/auth"
	"goalspark/internal/platform/config"
)

// Seed ensures the bootstrap admin exists. It is idempotent; an existing
// account is left untouched.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	return ensureAdminUser(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	err = pool.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, first_name, last_name, role, job_title)
    VALUES ($1, $2, 'Admin', 'User', $3, 'Team Manager')
    RETURNING id
  `, email, hash, auth.RoleAdmin).Scan(&id)
	return err
}
