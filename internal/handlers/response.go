package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"smartfarm/internal/models"
	"smartfarm/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// newValidator reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationFailed renders validator errors as a field→message map.
func validationFailed(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			errorMessages[e.Field()] = fmt.Sprintf("%s is required", e.Field())
		case "email":
			errorMessages[e.Field()] = fmt.Sprintf("%s must be a valid email address", e.Field())
		case "min":
			errorMessages[e.Field()] = fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
		default:
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// respondError maps a service error onto a status and a {"message"} body.
// resource names the entity in not-found messages.
func respondError(c *fiber.Ctx, log *zap.Logger, err error, resource string) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return message(c, fiber.StatusBadRequest, detail(err, services.ErrValidation))
	case errors.Is(err, services.ErrInvalidCredentials):
		return message(c, fiber.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, services.ErrUnauthenticated):
		return message(c, fiber.StatusUnauthorized, "Not authorized, token failed")
	case errors.Is(err, services.ErrForbidden):
		return message(c, fiber.StatusForbidden, detail(err, services.ErrForbidden))
	case errors.Is(err, services.ErrNotFound):
		return message(c, fiber.StatusNotFound, resource+" not found")
	case errors.Is(err, services.ErrDuplicateEmail):
		return message(c, fiber.StatusConflict, "User already exists")
	case errors.Is(err, services.ErrStorage):
		log.Error("image storage failed", zap.String("path", c.Path()), zap.Error(err))
		return message(c, fiber.StatusInternalServerError, "Could not store image")
	}

	log.Error("request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return message(c, fiber.StatusInternalServerError, "Internal server error")
}

// ErrorHandler renders errors that escape the handlers, such as unknown
// routes or oversized bodies, in the API's {"message"} shape.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return message(c, fe.Code, fe.Message)
		}
		return respondError(c, log, err, "Resource")
	}
}

func message(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

// detail strips the sentinel suffix from a wrapped error and capitalizes it.
func detail(err, sentinel error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
	if msg == "" {
		return sentinel.Error()
	}
	r := []rune(msg)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// sellerView is the public part of a seller shown next to a listing.
type sellerView struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type productView struct {
	models.Product
	Seller *sellerView `json:"seller,omitempty"`
}

func newProductView(p *models.Product) productView {
	view := productView{Product: *p}
	if p.Seller != nil {
		view.Seller = &sellerView{Name: p.Seller.Name, Email: p.Seller.Email, Phone: p.Seller.Phone}
	}
	return view
}

func newProductViews(products []models.Product) []productView {
	views := make([]productView, 0, len(products))
	for i := range products {
		views = append(views, newProductView(&products[i]))
	}
	return views
}

type authorView struct {
	Name string `json:"name"`
}

type adviceView struct {
	models.Advice
	Author *authorView `json:"author,omitempty"`
}

func newAdviceView(a *models.Advice) adviceView {
	view := adviceView{Advice: *a}
	if a.Author != nil {
		view.Author = &authorView{Name: a.Author.Name}
	}
	return view
}

func newAdviceViews(posts []models.Advice) []adviceView {
	views := make([]adviceView, 0, len(posts))
	for i := range posts {
		views = append(views, newAdviceView(&posts[i]))
	}
	return views
}

// sessionView is a user with a bearer token, flattened as the UI stores it.
type sessionView struct {
	*models.User
	Token string `json:"token"`
}
