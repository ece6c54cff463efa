package main

import (
	"context"
	"fmt"

	"smartfarm/internal/config"
	"smartfarm/internal/models"
	"smartfarm/internal/services"

	"go.uber.org/zap"
)

// seedAccounts creates the demo admin, advisor and farmer when their emails
// are not registered yet.
func seedAccounts(ctx context.Context, auth *services.AuthService, cfg config.SeedConfig, log *zap.Logger) error {
	accounts := []struct {
		user     models.User
		password string
	}{
		{
			user:     models.User{Name: "Super Admin", Email: cfg.Admin.Email, Role: models.RoleAdmin},
			password: cfg.Admin.Password,
		},
		{
			user: models.User{
				Name: "Agronomist Sarah", Email: cfg.Advisor.Email, Role: models.RoleAdvisor,
				Organization: "Green NGO", Specialization: "Soil Science",
			},
			password: cfg.Advisor.Password,
		},
		{
			user: models.User{
				Name: "Farmer John", Email: cfg.Farmer.Email, Role: models.RoleFarmer,
				Phone: "+250788123456", Location: "Musanze",
			},
			password: cfg.Farmer.Password,
		},
	}

	for i := range accounts {
		acc := &accounts[i]
		if acc.user.Email == "" {
			continue
		}
		created, err := auth.EnsureAccount(ctx, &acc.user, acc.password)
		if err != nil {
			return fmt.Errorf("failed to seed %s account: %w", acc.user.Role, err)
		}
		if created {
			log.Info("seeded account", zap.String("role", string(acc.user.Role)), zap.String("email", acc.user.Email))
		}
	}
	return nil
}
