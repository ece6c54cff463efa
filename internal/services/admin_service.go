package services

import (
	"context"
	"fmt"

	"smartfarm/internal/models"
	"smartfarm/internal/repositories"

	"go.uber.org/zap"
)

// Stats is the admin dashboard summary.
type Stats struct {
	Farmers  int64 `json:"farmers"`
	Advisors int64 `json:"advisors"`
	Products int64 `json:"products"`
	Advice   int64 `json:"advice"`
}

// AdminService backs the admin-only reporting and provisioning routes.
type AdminService struct {
	users    repositories.UserRepository
	products repositories.ProductRepository
	advice   repositories.AdviceRepository
	events   EventPublisher
	log      *zap.Logger
}

// NewAdminService creates a new AdminService. events may be nil.
func NewAdminService(users repositories.UserRepository, products repositories.ProductRepository, advice repositories.AdviceRepository, events EventPublisher, log *zap.Logger) *AdminService {
	return &AdminService{
		users:    users,
		products: products,
		advice:   advice,
		events:   events,
		log:      log,
	}
}

// Stats counts farmers, advisors, products and advice posts.
func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	var (
		stats Stats
		err   error
	)
	if stats.Farmers, err = s.users.CountByRole(ctx, models.RoleFarmer); err != nil {
		return nil, err
	}
	if stats.Advisors, err = s.users.CountByRole(ctx, models.RoleAdvisor); err != nil {
		return nil, err
	}
	if stats.Products, err = s.products.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Advice, err = s.advice.Count(ctx); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListByRole returns the accounts holding role. Password hashes never leave
// the model's JSON encoding.
func (s *AdminService) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", role, ErrValidation)
	}
	return s.users.ListByRole(ctx, role)
}

// CreateAdvisor provisions an advisor account.
func (s *AdminService) CreateAdvisor(ctx context.Context, adminID string, in AccountInput) (*models.User, error) {
	return s.provision(ctx, adminID, models.RoleAdvisor, in)
}

// CreateAdmin provisions another admin account.
func (s *AdminService) CreateAdmin(ctx context.Context, adminID string, in AccountInput) (*models.User, error) {
	return s.provision(ctx, adminID, models.RoleAdmin, in)
}

func (s *AdminService) provision(ctx context.Context, adminID string, role models.Role, in AccountInput) (*models.User, error) {
	user, err := createAccount(ctx, s.users, role, in)
	if err != nil {
		return nil, err
	}
	s.log.Info("account provisioned",
		zap.String("user_id", user.ID),
		zap.String("role", string(role)),
		zap.String("by", adminID),
	)
	emit(s.events, s.log, Event{Type: EventAccountProvisioned, EntityID: user.ID, ActorID: adminID, Role: string(role)})
	return user, nil
}
