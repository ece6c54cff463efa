package handlers

import (
	"smartfarm/internal/middleware"
	"smartfarm/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for product listings.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
	log      *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the product routes. Reads are public; writes
// need a bearer token and are limited to the owner by the service.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/my", auth, h.HandleGetMyProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", auth, h.HandleCreateProduct)
	productRoutes.Put("/:id", auth, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", auth, h.HandleDeleteProduct)
}

// ProductRequest is accepted as JSON or as a multipart form with an
// optional "image" file.
type ProductRequest struct {
	Name        string `json:"name" form:"name" validate:"required"`
	Category    string `json:"category" form:"category" validate:"required"`
	Price       string `json:"price" form:"price" validate:"required"`
	Quantity    string `json:"quantity" form:"quantity"`
	Location    string `json:"location" form:"location"`
	Description string `json:"description" form:"description"`
	WhatsApp    string `json:"whatsapp" form:"whatsapp"`
	ImageURL    string `json:"imageUrl" form:"imageUrl"`
	Image       string `json:"image" form:"image"`
}

func (r ProductRequest) input() services.ProductInput {
	return services.ProductInput{
		Name:        r.Name,
		Category:    r.Category,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Location:    r.Location,
		Description: r.Description,
		WhatsApp:    r.WhatsApp,
	}
}

// HandleGetProducts lists products, filtered by ?keyword= and ?category=.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext(), c.Query("keyword"), c.Query("category"))
	if err != nil {
		return respondError(c, h.log, err, "Product")
	}
	return c.JSON(newProductViews(products))
}

// HandleGetMyProducts lists the caller's own products.
func (h *ProductHandler) HandleGetMyProducts(c *fiber.Ctx) error {
	userID, _, _ := middleware.CurrentUser(c)
	products, err := h.service.ListMine(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.log, err, "Product")
	}
	return c.JSON(newProductViews(products))
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err, "Product")
	}
	return c.JSON(newProductView(product))
}

// HandleCreateProduct lists a new product owned by the caller.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	userID, _, _ := middleware.CurrentUser(c)

	var req ProductRequest
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

	product, err := h.service.Create(c.UserContext(), userID, req.input(), img)
	if err != nil {
		return respondError(c, h.log, err, "Product")
	}
	return c.Status(fiber.StatusCreated).JSON(newProductView(product))
}

// HandleUpdateProduct applies a partial update. Only the owner may update.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	userID, _, _ := middleware.CurrentUser(c)

	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return message(c, fiber.StatusBadRequest, "Invalid request body")
	}
	img, err := imageFromRequest(c, req.ImageURL, req.Image)
	if err != nil {
		return message(c, fiber.StatusBadRequest, "Invalid image upload")
	}

	product, err := h.service.Update(c.UserContext(), c.Params("id"), userID, req.input(), img)
	if err != nil {
		return respondError(c, h.log, err, "Product")
	}
	return c.JSON(newProductView(product))
}

// HandleDeleteProduct removes a product. Only the owner may delete.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	userID, _, _ := middleware.CurrentUser(c)

	if err := h.service.Delete(c.UserContext(), c.Params("id"), userID); err != nil {
		return respondError(c, h.log, err, "Product")
	}
	return c.JSON(fiber.Map{"message": "Product removed"})
}
