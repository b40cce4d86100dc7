package server

import (
	"context"

	"go.uber.org/zap"

	"worklog/internal/domain/auth"
	"worklog/internal/domain/users"
	"worklog/internal/platform/config"
)

// seed creates the configured admin account when no users exist.
func seed(ctx context.Context, svc *users.Service, cfg config.Config) error {
	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		return nil
	}
	created, err := svc.EnsureSeed(ctx, []users.Seed{{
		Name:     cfg.SeedAdminName,
		Email:    cfg.SeedAdminEmail,
		Password: cfg.SeedAdminPassword,
		Role:     auth.RoleAdmin,
	}})
	if err != nil {
		return err
	}
	if created {
		zap.L().Info("seeded admin account", zap.String("email", cfg.SeedAdminEmail))
	}
	return nil
}
