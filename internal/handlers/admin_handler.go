package handlers

import (
	"context"

	"smartfarm/internal/middleware"
	"smartfarm/internal/models"
	"smartfarm/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AdminHandler serves the admin dashboard.
type AdminHandler struct {
	service  *services.AdminService
	validate *validator.Validate
	log      *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *services.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the admin routes; every one requires role admin.
func (h *AdminHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	adminRoutes := router.Group("/admin", auth, middleware.RequireRoles(models.RoleAdmin))
	adminRoutes.Get("/stats", h.HandleStats)
	adminRoutes.Get("/advisors", h.listRole(models.RoleAdvisor))
	adminRoutes.Get("/farmers", h.listRole(models.RoleFarmer))
	adminRoutes.Get("/admins", h.listRole(models.RoleAdmin))
	adminRoutes.Post("/advisors", h.HandleCreateAdvisor)
	adminRoutes.Post("/admins", h.HandleCreateAdmin)
}

// AccountRequest is the body of an admin-provisioned account.
type AccountRequest struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required"`
	Organization   string `json:"organization"`
	Specialization string `json:"specialization"`
}

// HandleStats returns the dashboard counters.
func (h *AdminHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err, "Stats")
	}
	return c.JSON(stats)
}

func (h *AdminHandler) listRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := h.service.ListByRole(c.UserContext(), role)
		if err != nil {
			return respondError(c, h.log, err, "User")
		}
		return c.JSON(users)
	}
}

// HandleCreateAdvisor provisions an advisor account.
func (h *AdminHandler) HandleCreateAdvisor(c *fiber.Ctx) error {
	return h.provision(c, h.service.CreateAdvisor)
}

// HandleCreateAdmin provisions another admin account.
func (h *AdminHandler) HandleCreateAdmin(c *fiber.Ctx) error {
	return h.provision(c, h.service.CreateAdmin)
}

type provisionFunc func(ctx context.Context, adminID string, in services.AccountInput) (*models.User, error)

func (h *AdminHandler) provision(c *fiber.Ctx, create provisionFunc) error {
	adminID, _, _ := middleware.CurrentUser(c)

	var req AccountRequest
	if err := c.BodyParser(&req); err != nil {
		return message(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	user, err := create(c.UserContext(), adminID, services.AccountInput{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		Organization:   req.Organization,
		Specialization: req.Specialization,
	})
	if err != nil {
		return respondError(c, h.log, err, "User")
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}
