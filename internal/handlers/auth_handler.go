package handlers

import (
	"errors"

	"smartfarm/internal/metrics"
	"smartfarm/internal/middleware"
	"smartfarm/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	metrics     *metrics.Metrics
	validate    *validator.Validate
	log         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. m may be nil.
func NewAuthHandler(authService *services.AuthService, m *metrics.Metrics, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		metrics:     m,
		validate:    newValidator(),
		log:         log,
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Put("/profile", auth, h.HandleUpdateProfile)
}

// RegisterRequest is the self-service sign-up body. A role, if sent, is
// ignored: every self-registered account is a farmer.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

// HandleRegister handles new farmer registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return message(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	user, token, err := h.authService.Register(c.UserContext(), services.AccountInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Location: req.Location,
	})
	if err != nil {
		return respondError(c, h.log, err, "User")
	}

	h.log.Info("user registered", zap.String("user_id", user.ID))
	return c.Status(fiber.StatusCreated).JSON(sessionView{User: user, Token: token})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin checks credentials and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return message(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	user, token, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	h.recordLogin(err == nil)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.log.Info("login rejected", zap.String("ip", c.IP()))
		}
		return respondError(c, h.log, err, "User")
	}

	return c.JSON(sessionView{User: user, Token: token})
}

// ProfileRequest is a partial profile update; blank fields are kept.
type ProfileRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone"`
	Location       string `json:"location"`
	Organization   string `json:"organization"`
	Specialization string `json:"specialization"`
}

// HandleUpdateProfile updates the caller's profile and returns a fresh
// session.
func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	userID, _, _ := middleware.CurrentUser(c)

	var req ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return message(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	user, token, err := h.authService.UpdateProfile(c.UserContext(), userID, services.ProfileInput{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Location:       req.Location,
		Organization:   req.Organization,
		Specialization: req.Specialization,
	})
	if err != nil {
		return respondError(c, h.log, err, "User")
	}
	return c.JSON(sessionView{User: user, Token: token})
}

func (h *AuthHandler) recordLogin(ok bool) {
	if h.metrics != nil {
		h.metrics.Login(ok)
	}
}
