package services

import (
	"context"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/metrics"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// CatalogFetcher reads pages from the upstream product API.
type CatalogFetcher interface {
	FetchPage(page int) (*models.ProductPage, error)
}

// ProductListing is one page of the local catalog plus the infinite-scroll cursor.
type ProductListing struct {
	models.ProductPage
	Page     int  `json:"page"`
	HasMore  bool `json:"has_more"`
	NextPage int  `json:"next_page,omitempty"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	pageSize int
	metrics  *metrics.Metrics
	validate *validator.Validate
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, pageSize int, m *metrics.Metrics) *ProductService {
	if pageSize <= 0 {
		pageSize = catalog.DefaultPageSize
	}
	return &ProductService{
		repo:     repo,
		pageSize: pageSize,
		metrics:  m,
		validate: validator.New(),
	}
}

// ListPage returns the 1-based page of the catalog.
func (s *ProductService) ListPage(ctx context.Context, page int) (*ProductListing, error) {
	if page < 1 {
		page = 1
	}
	if page-1 > catalog.MaxOffset/s.pageSize {
		return nil, errors.Wrapf(ErrPageOutOfRange, "page %d", page)
	}
	skip := (page - 1) * s.pageSize
	products, total, err := s.repo.List(ctx, skip, s.pageSize)
	if err != nil {
		return nil, err
	}

	listing := &ProductListing{
		ProductPage: models.ProductPage{
			Products: products,
			Total:    total,
			Skip:     skip,
			Limit:    s.pageSize,
		},
		Page: page,
	}
	// Everything up to and including this page counts as fetched.
	if skip+len(products) < total {
		listing.HasMore = true
		listing.NextPage = page + 1
	}
	return listing, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id int) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Seed validates and stores the given products.
func (s *ProductService) Seed(ctx context.Context, products ...models.Product) error {
	for i := range products {
		if err := s.validate.Struct(products[i]); err != nil {
			return errors.Wrapf(err, "seed product %d", products[i].ID)
		}
	}
	return s.repo.Upsert(ctx, products...)
}

// accepted drops upstream products that fail the model's validate tags.
func (s *ProductService) accepted(products []models.Product) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if err := s.validate.Struct(p); err != nil {
			log.Warn().Err(err).Int("product_id", p.ID).Msg("skipping invalid catalog product")
			continue
		}
		out = append(out, p)
	}
	return out
}

// SyncCatalog pages through the upstream catalog until it is exhausted and
// upserts every product. It returns the number of products written.
func (s *ProductService) SyncCatalog(ctx context.Context, fetcher CatalogFetcher) (int, error) {
	start := time.Now()
	var pages []*models.ProductPage
	written := 0

	for {
		next, ok := catalog.NextPage(pages)
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return written, errors.Wrap(err, "catalog sync interrupted")
		}

		page, err := fetcher.FetchPage(next)
		if err != nil {
			return written, errors.Wrapf(err, "sync catalog page %d", next)
		}
		products := s.accepted(page.Products)
		if err := s.repo.Upsert(ctx, products...); err != nil {
			return written, errors.Wrapf(err, "store catalog page %d", next)
		}
		written += len(products)
		pages = append(pages, page)

		log.Debug().Int("page", next).Int("products", len(page.Products)).Int("total", page.Total).Msg("catalog page synced")

		// An empty page cannot make progress.
		if len(page.Products) == 0 {
			break
		}
	}

	s.metrics.CatalogSynced(written, time.Since(start))
	log.Info().Int("products", written).Dur("took", time.Since(start)).Msg("catalog sync finished")
	return written, nil
}
