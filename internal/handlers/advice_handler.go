package handlers

import (
	"smartfarm/internal/middleware"
	"smartfarm/internal/models"
	"smartfarm/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AdviceHandler handles HTTP requests for advisor posts.
type AdviceHandler struct {
	service  *services.AdviceService
	validate *validator.Validate
	log      *zap.Logger
}

// NewAdviceHandler creates a new AdviceHandler.
func NewAdviceHandler(service *services.AdviceService, log *zap.Logger) *AdviceHandler {
	return &AdviceHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the advice routes. Publishing is advisor-only.
func (h *AdviceHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	advisorOnly := middleware.RequireRoles(models.RoleAdvisor)

	adviceRoutes := router.Group("/advice")
	adviceRoutes.Get("/", h.HandleGetAdvice)
	adviceRoutes.Get("/my", auth, advisorOnly, h.HandleGetMyAdvice)
	adviceRoutes.Post("/", auth, advisorOnly, h.HandleCreateAdvice)
}

// AdviceRequest is accepted as JSON or as a multipart form with an optional
// "image" file.
type AdviceRequest struct {
	Title    string `json:"title" form:"title" validate:"required"`
	Category string `json:"category" form:"category" validate:"required"`
	Content  string `json:"content" form:"content" validate:"required"`
	ImageURL string `json:"imageUrl" form:"imageUrl"`
	Image    string `json:"image" form:"image"`
}

// HandleGetAdvice lists every post, newest first.
func (h *AdviceHandler) HandleGetAdvice(c *fiber.Ctx) error {
	posts, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err, "Advice")
	}
	return c.JSON(newAdviceViews(posts))
}

// HandleGetMyAdvice lists the caller's own posts.
func (h *AdviceHandler) HandleGetMyAdvice(c *fiber.Ctx) error {
	userID, _, _ := middleware.CurrentUser(c)
	posts, err := h.service.ListMine(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.log, err, "Advice")
	}
	return c.JSON(newAdviceViews(posts))
}

// HandleCreateAdvice publishes a post authored by the caller.
func (h *AdviceHandler) HandleCreateAdvice(c *fiber.Ctx) error {
	userID, _, _ := middleware.CurrentUser(c)

	var req AdviceRequest
	if err := c.BodyParser(&req); err != nil {
		return message(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}
	img, err := imageFromRequest(c, req.ImageURL, req.Image)
	if err != nil {
		return message(c, fiber.StatusBadRequest, "Invalid image upload")
	}

	post, err := h.service.Create(c.UserContext(), userID, services.AdviceInput{
		Title:    req.Title,
		Category: req.Category,
		Content:  req.Content,
	}, img)
	if err != nil {
		return respondError(c, h.log, err, "Advice")
	}
	return c.Status(fiber.StatusCreated).JSON(newAdviceView(post))
}
