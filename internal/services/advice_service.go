package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smartfarm/internal/models"
	"smartfarm/internal/repositories"

	"go.uber.org/zap"
)

// AdviceInput carries the fields of a new post.
type AdviceInput struct {
	Title    string
	Category string
	Content  string
}

// AdviceService publishes and lists advisor posts. Posts cannot be edited or
// deleted once published.
type AdviceService struct {
	repo   repositories.AdviceRepository
	media  MediaStore
	events EventPublisher
	log    *zap.Logger
	now    func() time.Time
}

// NewAdviceService creates a new AdviceService. events may be nil.
func NewAdviceService(repo repositories.AdviceRepository, media MediaStore, events EventPublisher, log *zap.Logger) *AdviceService {
	return &AdviceService{
		repo:   repo,
		media:  media,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// List returns every post, most recent first, with the author's name loaded.
func (s *AdviceService) List(ctx context.Context) ([]models.Advice, error) {
	return s.repo.List(ctx)
}

// ListMine returns the posts written by authorID.
func (s *AdviceService) ListMine(ctx context.Context, authorID string) ([]models.Advice, error) {
	return s.repo.ListByAuthor(ctx, authorID)
}

// Create publishes a post dated now. Role checks happen at the route.
func (s *AdviceService) Create(ctx context.Context, authorID string, in AdviceInput, img ImageInput) (*models.Advice, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Category) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("title, category and content are required: %w", ErrValidation)
	}

	image, err := resolveImage(ctx, s.media, img, "")
	if err != nil {
		return nil, err
	}

	advice := &models.Advice{
		Title:    strings.TrimSpace(in.Title),
		Category: strings.TrimSpace(in.Category),
		Content:  in.Content,
		Image:    image,
		AuthorID: authorID,
		Date:     s.now().UTC(),
	}
	if err := s.repo.Create(ctx, advice); err != nil {
		return nil, err
	}

	emit(s.events, s.log, Event{Type: EventAdvicePublished, EntityID: advice.ID, ActorID: authorID})

	// Reload to pick up the author's name for the response.
	stored, err := s.repo.GetByID(ctx, advice.ID)
	if err != nil {
		return nil, notFound(err, "advice", advice.ID)
	}
	return stored, nil
}
