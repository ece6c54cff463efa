package repositories

import (
	"context"

	"smartfarm/internal/models"
)

// ProductFilter narrows a product listing. Zero values match everything.
type ProductFilter struct {
	Keyword  string // case-insensitive substring of the name
	Category string // exact match
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
