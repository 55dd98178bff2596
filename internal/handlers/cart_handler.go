package handlers

import (
	"storefront/internal/cart"
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the session cart and its drawer.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Delete("/items/:id", h.HandleRemoveItem)
	cartRoutes.Post("/open", h.HandleDrawer(h.service.OpenDrawer))
	cartRoutes.Post("/close", h.HandleDrawer(h.service.CloseDrawer))
	cartRoutes.Post("/toggle", h.HandleDrawer(h.service.ToggleDrawer))
}

// AddItemRequest represents the request body for adding to the cart.
// Quantity defaults to 1 when omitted.
type AddItemRequest struct {
	ProductID int  `json:"product_id" validate:"required"`
	Quantity  *int `json:"quantity"`
}

type cartResponse struct {
	Cart   services.CartView `json:"cart"`
	Notice *cart.Notice      `json:"notice,omitempty"`
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	return c.JSON(cartResponse{Cart: h.service.View(middleware.SessionID(c))})
}

// HandleAddItem validates and adds a product to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if ok, err := bindAndValidate(c, h.validate, &req); !ok {
		return err
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	view, notice, err := h.service.Add(c.UserContext(), middleware.SessionID(c), req.ProductID, quantity)
	if err != nil {
		return respondError(c, err, "Could not add product to cart")
	}
	return c.Status(fiber.StatusCreated).JSON(cartResponse{Cart: view, Notice: &notice})
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Product id must be an integer",
		})
	}
	view, notice, err := h.service.Remove(c.UserContext(), middleware.SessionID(c), id)
	if err != nil {
		return respondError(c, err, "Could not remove product from cart")
	}
	return c.JSON(cartResponse{Cart: view, Notice: &notice})
}

func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	view, notice, err := h.service.Clear(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return respondError(c, err, "Could not clear cart")
	}
	return c.JSON(cartResponse{Cart: view, Notice: &notice})
}

// HandleDrawer wraps a drawer operation of the cart service.
func (h *CartHandler) HandleDrawer(op func(sessionID string) services.CartView) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(cartResponse{Cart: op(middleware.SessionID(c))})
	}
}
