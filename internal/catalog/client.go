// Package catalog reads products from the upstream product listing API.
package catalog

import (
	"fmt"
	"math"
	"time"

	"storefront/internal/models"

	"github.com/go-faster/errors"
	"github.com/gofiber/fiber/v2"
)

// DefaultPageSize is the number of products requested per page.
const DefaultPageSize = 20

// MaxOffset bounds skip = (page-1)*size so it cannot overflow.
const MaxOffset = math.MaxInt32

// Config holds the upstream API location.
type Config struct {
	BaseURL  string
	PageSize int
	Timeout  time.Duration
}

// Client fetches product pages from the upstream API.
type Client struct {
	baseURL  string
	pageSize int
	timeout  time.Duration
}

// NewClient creates a new catalog Client.
func NewClient(cfg Config) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		pageSize: cfg.PageSize,
		timeout:  cfg.Timeout,
	}
}

// PageSize is the limit used for every request.
func (c *Client) PageSize() int { return c.pageSize }

// FetchPage returns the 1-based page of the upstream listing.
func (c *Client) FetchPage(page int) (*models.ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if page-1 > MaxOffset/c.pageSize {
		return nil, errors.Errorf("fetch products page %d: page out of range", page)
	}
	skip := (page - 1) * c.pageSize
	url := fmt.Sprintf("%s/products?limit=%d&skip=%d", c.baseURL, c.pageSize, skip)

	agent := fiber.Get(url).Timeout(c.timeout)
	agent.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	var out models.ProductPage
	code, body, errs := agent.Struct(&out)
	// A non-2xx answer also fails to decode; report the status instead.
	if code != 0 && (code < 200 || code >= 300) {
		return nil, errors.Errorf("fetch products page %d: upstream status %d: %s", page, code, truncate(body, 200))
	}
	if len(errs) > 0 {
		return nil, errors.Wrapf(errs[0], "fetch products page %d", page)
	}
	return &out, nil
}

// NextPage implements the infinite-scroll rule: another page exists while the
// products fetched so far are fewer than the advertised total. pages is the
// list of pages already loaded, in order.
func NextPage(pages []*models.ProductPage) (int, bool) {
	if len(pages) == 0 {
		return 1, true
	}
	fetched := 0
	for _, p := range pages {
		fetched += len(p.Products)
	}
	last := pages[len(pages)-1]
	if fetched < last.Total {
		return len(pages) + 1, true
	}
	return 0, false
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
