package handlers

import (
	"fmt"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// bindAndValidate parses the request body into req and runs its validate tags.
// When ok is false the error response has already been written.
func bindAndValidate(c *fiber.Ctx, validate *validator.Validate, req interface{}) (ok bool, err error) {
	if err := c.BodyParser(req); err != nil {
		log.Debug().Err(err).Str("path", c.Path()).Msg("invalid request body")
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return false, err
		}
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}
	return true, nil
}

// respondError maps service errors to a status code and a JSON body.
func respondError(c *fiber.Ctx, err error, message string) error {
	var rejected *cart.RejectedError
	var payment *services.PaymentRejectedError

	switch {
	case errors.As(err, &rejected):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": rejected.Reason,
			"notice":  cart.Notice{Level: cart.NoticeError, Message: rejected.Reason},
		})
	case errors.As(err, &payment):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Payment failed",
			"errors":  payment.Errors,
		})
	case errors.Is(err, repositories.ErrProductNotFound), errors.Is(err, repositories.ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	case errors.Is(err, checkout.ErrUnknownField), errors.Is(err, checkout.ErrUnknownPaymentMethod),
		errors.Is(err, services.ErrPageOutOfRange):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrEmptyCart):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	}

	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg(message)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
