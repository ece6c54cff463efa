package repositories

import (
	"context"

	"smartfarm/internal/models"
)

// AdviceRepository defines the interface for advice data access.
type AdviceRepository interface {
	List(ctx context.Context) ([]models.Advice, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.Advice, error)
	GetByID(ctx context.Context, id string) (*models.Advice, error)
	Create(ctx context.Context, advice *models.Advice) error
	Count(ctx context.Context) (int64, error)
}
