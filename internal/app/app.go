// Package app assembles the storefront Fiber application.
package app

import (
	"io"
	"time"

	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Components are the backing stores and settings the application runs on.
type Components struct {
	Products repositories.ProductRepository
	Stock    repositories.StockRepository
	Orders   repositories.OrderRepository
	// Events is optional; without it placed orders are not announced.
	Events services.EventPublisher

	// Registry receives the storefront collectors and backs /metrics.
	// A fresh registry is used when nil.
	Registry *prometheus.Registry

	SessionSecret string
	SessionTTL    time.Duration
	PageSize      int

	// AccessLog receives one line per request; nil disables access logs.
	AccessLog io.Writer
}

// Services are the domain services behind the routes.
type Services struct {
	Products *services.ProductService
	Carts    *services.CartService
	Checkout *services.CheckoutService
	Sessions *services.SessionService
}

// New wires services and handlers over c and returns the Fiber app.
func New(c Components) (*fiber.App, *Services) {
	if c.Registry == nil {
		c.Registry = prometheus.NewRegistry()
	}
	m := metrics.New(c.Registry)

	carts := services.NewCartService(c.Products, c.Stock, m)
	svc := &Services{
		Products: services.NewProductService(c.Products, c.PageSize, m),
		Carts:    carts,
		Checkout: services.NewCheckoutService(carts, c.Orders, c.Events, m),
		Sessions: services.NewSessionService(c.SessionSecret, c.SessionTTL),
	}

	app := fiber.New(fiber.Config{
		AppName:               "storefront",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	if c.AccessLog != nil {
		app.Use(logger.New(logger.Config{Output: c.AccessLog}))
	}

	app.Get("/health", func(ctx *fiber.Ctx) error {
		events := "disabled"
		if c.Events != nil {
			events = "enabled"
		}
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"events": events,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})))

	apiV1 := app.Group("/api/v1")

	// Public routes
	handlers.NewSessionHandler(svc.Sessions).RegisterRoutes(apiV1)
	handlers.NewProductHandler(svc.Products).RegisterRoutes(apiV1)

	// Session-scoped routes
	protected := apiV1.Group("", middleware.SessionRequired(svc.Sessions))
	handlers.NewCartHandler(svc.Carts).RegisterRoutes(protected)
	handlers.NewCheckoutHandler(svc.Checkout).RegisterRoutes(protected)
	handlers.NewOrderHandler(svc.Checkout).RegisterRoutes(protected)

	return app, svc
}
