package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"smartfarm/internal/models"
	"smartfarm/internal/repositories"

	"go.uber.org/zap"
)

// CategoryAll is the listing sentinel meaning "any category".
const CategoryAll = "All"

// ProductInput carries the editable product fields. On update, empty fields
// keep their current value.
type ProductInput struct {
	Name        string
	Category    string
	Price       string
	Quantity    string
	Location    string
	Description string
	WhatsApp    string
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo   repositories.ProductRepository
	users  repositories.UserRepository
	media  MediaStore
	events EventPublisher
	log    *zap.Logger
}

// NewProductService creates a new ProductService. events may be nil.
func NewProductService(repo repositories.ProductRepository, users repositories.UserRepository, media MediaStore, events EventPublisher, log *zap.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		users:  users,
		media:  media,
		events: events,
		log:    log,
	}
}

// List returns the public listing. Keyword is a case-insensitive name
// substring; category "All" or empty matches every category.
func (s *ProductService) List(ctx context.Context, keyword, category string) ([]models.Product, error) {
	filter := repositories.ProductFilter{Keyword: strings.TrimSpace(keyword)}
	if category != CategoryAll {
		filter.Category = category
	}
	return s.repo.List(ctx, filter)
}

// Get retrieves a single product.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	return product, nil
}

// ListMine returns the products owned by ownerID.
func (s *ProductService) ListMine(ctx context.Context, ownerID string) ([]models.Product, error) {
	return s.repo.ListBySeller(ctx, ownerID)
}

// Create lists a new product owned by ownerID. The WhatsApp contact falls
// back to the owner's phone, then email.
func (s *ProductService) Create(ctx context.Context, ownerID string, in ProductInput, img ImageInput) (*models.Product, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Category) == "" || strings.TrimSpace(in.Price) == "" {
		return nil, fmt.Errorf("name, category and price are required: %w", ErrValidation)
	}

	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("owner %s no longer exists: %w", ownerID, ErrUnauthenticated)
		}
		return nil, err
	}

	image, err := resolveImage(ctx, s.media, img, "")
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Category:    strings.TrimSpace(in.Category),
		Price:       in.Price,
		Quantity:    in.Quantity,
		Location:    in.Location,
		Description: in.Description,
		Image:       image,
		WhatsApp:    firstNonEmpty(in.WhatsApp, owner.Phone, owner.Email),
		SellerID:    owner.ID,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	product.Seller = owner

	emit(s.events, s.log, Event{Type: EventProductCreated, EntityID: product.ID, ActorID: ownerID})
	return product, nil
}

// Update applies a partial update. Only the seller may update; ownership is
// checked before any upload is stored.
func (s *ProductService) Update(ctx context.Context, id, callerID string, in ProductInput, img ImageInput) (*models.Product, error) {
	product, err := s.ownedProduct(ctx, id, callerID, "update")
	if err != nil {
		return nil, err
	}

	image, err := resolveImage(ctx, s.media, img, product.Image)
	if err != nil {
		return nil, err
	}

	product.Name = keep(in.Name, product.Name)
	product.Category = keep(in.Category, product.Category)
	product.Price = keep(in.Price, product.Price)
	product.Quantity = keep(in.Quantity, product.Quantity)
	product.Location = keep(in.Location, product.Location)
	product.Description = keep(in.Description, product.Description)
	product.WhatsApp = keep(in.WhatsApp, product.WhatsApp)
	product.Image = image

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, notFound(err, "product", id)
	}

	emit(s.events, s.log, Event{Type: EventProductUpdated, EntityID: product.ID, ActorID: callerID})
	return product, nil
}

// Delete removes a product. Only the seller may delete.
func (s *ProductService) Delete(ctx context.Context, id, callerID string) error {
	if _, err := s.ownedProduct(ctx, id, callerID, "delete"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err, "product", id)
	}

	emit(s.events, s.log, Event{Type: EventProductDeleted, EntityID: id, ActorID: callerID})
	return nil
}

func (s *ProductService) ownedProduct(ctx context.Context, id, callerID, action string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	if product.SellerID != callerID {
		return nil, fmt.Errorf("not authorized to %s this product: %w", action, ErrForbidden)
	}
	return product, nil
}

// notFound converts a repository miss into ErrNotFound and passes other
// errors through.
func notFound(err error, kind, id string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
