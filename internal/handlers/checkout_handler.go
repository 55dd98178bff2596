package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles HTTP requests for the checkout form.
type CheckoutHandler struct {
	service  *services.CheckoutService
	validate *validator.Validate
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the checkout routes with the Fiber app.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	checkoutRoutes := router.Group("/checkout")
	checkoutRoutes.Get("/", h.HandleGetCheckout)
	checkoutRoutes.Put("/payment-method", h.HandleSetPaymentMethod)
	checkoutRoutes.Patch("/fields", h.HandleSetField)
	checkoutRoutes.Post("/pay", h.HandlePay)
}

// PaymentMethodRequest selects visa, mastercard or bitcoin.
type PaymentMethodRequest struct {
	Method string `json:"method" validate:"required"`
}

// FieldRequest sets one card input. Value may be empty to clear the field.
type FieldRequest struct {
	Field string `json:"field" validate:"required"`
	Value string `json:"value" validate:"max=64"`
}

func (h *CheckoutHandler) HandleGetCheckout(c *fiber.Ctx) error {
	return c.JSON(h.service.State(middleware.SessionID(c)))
}

func (h *CheckoutHandler) HandleSetPaymentMethod(c *fiber.Ctx) error {
	var req PaymentMethodRequest
	if ok, err := bindAndValidate(c, h.validate, &req); !ok {
		return err
	}
	view, err := h.service.SetPaymentMethod(middleware.SessionID(c), req.Method)
	if err != nil {
		return respondError(c, err, "Unsupported payment method")
	}
	return c.JSON(view)
}

func (h *CheckoutHandler) HandleSetField(c *fiber.Ctx) error {
	var req FieldRequest
	if ok, err := bindAndValidate(c, h.validate, &req); !ok {
		return err
	}
	view, err := h.service.SetField(middleware.SessionID(c), req.Field, req.Value)
	if err != nil {
		return respondError(c, err, "Unknown card field")
	}
	return c.JSON(view)
}

// HandlePay places the order for the session cart.
func (h *CheckoutHandler) HandlePay(c *fiber.Ctx) error {
	result, err := h.service.Pay(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return respondError(c, err, "Payment failed")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}
