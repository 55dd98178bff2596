package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/app"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/logger"
	"storefront/pkg/rabbitmq"

	"github.com/go-faster/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Setup("info", "json", os.Stdout)
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format, os.Stdout)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("storefront stopped")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---
	db, err := openDB(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(&models.Product{}, &models.StockEntry{}, &models.Order{}, &models.OrderItem{}); err != nil {
		return errors.Wrap(err, "auto-migrate database")
	}

	// --- Stock side-table ---
	stock, closeStock, err := stockRepository(ctx, cfg.Redis, db)
	if err != nil {
		return err
	}
	defer closeStock()

	// --- Checkout events ---
	components := app.Components{
		Products:      repositories.NewGORMProductRepository(db),
		Stock:         stock,
		Orders:        repositories.NewGORMOrderRepository(db),
		Registry:      prometheus.NewRegistry(),
		SessionSecret: cfg.Session.Secret,
		SessionTTL:    cfg.Session.TTL,
		PageSize:      cfg.Catalog.PageSize,
		AccessLog:     os.Stdout,
	}
	components.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue})
		if err != nil {
			return err
		}
		defer func() {
			if err := mqClient.Close(); err != nil {
				log.Warn().Err(err).Msg("closing RabbitMQ client")
			}
		}()
		if err := mqClient.ConsumeCheckoutEvents(logCheckoutEvent); err != nil {
			return err
		}
		components.Events = mqClient
	} else {
		log.Info().Msg("RABBITMQ_URL not set, checkout events disabled")
	}

	server, svc := app.New(components)

	// --- Catalog ---
	if err := loadCatalog(ctx, cfg.Catalog, svc.Products); err != nil {
		return err
	}

	// --- HTTP server ---
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.AppPort).Msg("starting server")
		serverErr <- server.Listen(cfg.AppPort)
	}()

	select {
	case err := <-serverErr:
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("error during Fiber shutdown")
	}
	log.Info().Msg("server gracefully stopped")
	return nil
}

func openDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, errors.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, errors.Wrapf(err, "connect to %s", cfg.Driver)
	}
	log.Info().Str("driver", cfg.Driver).Msg("database connected")
	return db, nil
}

// stockRepository picks Redis when configured and the database otherwise.
func stockRepository(ctx context.Context, cfg config.RedisConfig, db *gorm.DB) (repositories.StockRepository, func(), error) {
	if cfg.URL == "" {
		return repositories.NewGORMStockRepository(db), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parse REDIS_URL")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, errors.Wrap(err, "connect to redis")
	}
	log.Info().Str("addr", opts.Addr).Msg("using redis stock table")

	return repositories.NewRedisStockRepository(client), func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("closing redis client")
		}
	}, nil
}

// loadCatalog syncs the upstream catalog or falls back to the built-in seed.
func loadCatalog(ctx context.Context, cfg config.CatalogConfig, products *services.ProductService) error {
	if !cfg.Sync {
		return products.Seed(ctx, seedProducts()...)
	}
	client := catalog.NewClient(catalog.Config{
		BaseURL:  cfg.BaseURL,
		PageSize: cfg.PageSize,
		Timeout:  cfg.Timeout,
	})
	if _, err := products.SyncCatalog(ctx, client); err != nil {
		return errors.Wrap(err, "initial catalog sync")
	}
	return nil
}

func logCheckoutEvent(event models.CheckoutEvent) error {
	log.Info().
		Str("order_id", event.OrderID).
		Str("session_id", event.SessionID).
		Str("payment_method", event.PaymentMethod).
		Str("total", event.Total.StringFixed(2)).
		Int("items", event.ItemCount).
		Msg("checkout completed")
	return nil
}

// seedProducts is the catalog served when no upstream sync is configured.
func seedProducts() []models.Product {
	return []models.Product{
		{ID: 1, Title: "iPhone 9", Description: "An apple mobile which is nothing like apple", Price: 549, Stock: 94},
		{ID: 2, Title: "iPhone X", Description: "SIM-Free, Model A19211 6.5-inch Super Retina HD display", Price: 899, Stock: 34},
		{ID: 3, Title: "Samsung Universe 9", Description: "Samsung's new variant which goes beyond Galaxy to the Universe", Price: 1249, Stock: 36},
		{ID: 4, Title: "OPPOF19", Description: "OPPO F19 is officially announced on April 2021.", Price: 280, Stock: 123},
		{ID: 5, Title: "Huawei P30", Description: "Huawei's re-badged P30 Pro New Edition", Price: 499, Stock: 32},
		{ID: 6, Title: "MacBook Pro", Description: "MacBook Pro 2021 with mini-LED display", Price: 1749, Stock: 83},
	}
}
