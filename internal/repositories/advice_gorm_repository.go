package repositories

import (
	"context"
	"fmt"

	"smartfarm/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMAdviceRepository is a GORM implementation of AdviceRepository.
type GORMAdviceRepository struct {
	db *gorm.DB
}

// NewGORMAdviceRepository creates a new instance of GORMAdviceRepository.
func NewGORMAdviceRepository(db *gorm.DB) *GORMAdviceRepository {
	return &GORMAdviceRepository{db: db}
}

func withAuthor(db *gorm.DB) *gorm.DB {
	return db.Preload("Author", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name")
	})
}

// List returns all advice, most recently published first.
func (r *GORMAdviceRepository) List(ctx context.Context) ([]models.Advice, error) {
	var advice []models.Advice
	err := withAuthor(r.db.WithContext(ctx)).
		Order("date DESC").
		Order("created_at DESC").
		Find(&advice).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list advice: %w", err)
	}
	return advice, nil
}

// ListByAuthor returns the advice written by authorID, most recent first.
func (r *GORMAdviceRepository) ListByAuthor(ctx context.Context, authorID string) ([]models.Advice, error) {
	var advice []models.Advice
	err := withAuthor(r.db.WithContext(ctx)).
		Where("author_id = ?", authorID).
		Order("date DESC").
		Order("created_at DESC").
		Find(&advice).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list advice of author %s: %w", authorID, err)
	}
	return advice, nil
}

// GetByID retrieves one post with its author's name.
func (r *GORMAdviceRepository) GetByID(ctx context.Context, id string) (*models.Advice, error) {
	var advice models.Advice
	if err := withAuthor(r.db.WithContext(ctx)).First(&advice, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("advice with ID %s: %w", id, translate(err))
	}
	return &advice, nil
}

// Create inserts a new post, assigning an ID when none is set.
func (r *GORMAdviceRepository) Create(ctx context.Context, advice *models.Advice) error {
	if advice.ID == "" {
		advice.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("Author").Create(advice).Error; err != nil {
		return fmt.Errorf("failed to create advice: %w", translate(err))
	}
	return nil
}

// Count returns the number of published posts.
func (r *GORMAdviceRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Advice{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count advice: %w", err)
	}
	return n, nil
}
