package services

import (
	"context"
	"sync"

	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/metrics"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog/log"
)

// CartView is the cart of a session as rendered by the drawer.
type CartView struct {
	Items cart.Cart `json:"items"`
	Total float64   `json:"total"`
	Count int       `json:"count"`
	Open  bool      `json:"open"`
}

type cartSession struct {
	mu       sync.Mutex
	provider *cart.Provider
}

// CartService keeps one cart per session and mirrors product stock while
// items sit in a cart.
type CartService struct {
	products repositories.ProductRepository
	stock    repositories.StockRepository
	metrics  *metrics.Metrics

	mu       sync.Mutex
	sessions map[string]*cartSession

	// seedMu serialises the first-touch seeding of the stock mirror.
	seedMu sync.Mutex
}

// NewCartService creates a new CartService.
func NewCartService(products repositories.ProductRepository, stock repositories.StockRepository, m *metrics.Metrics) *CartService {
	return &CartService{
		products: products,
		stock:    stock,
		metrics:  m,
		sessions: make(map[string]*cartSession),
	}
}

func (s *CartService) session(sessionID string) *cartSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, ok := s.sessions[sessionID]
	if !ok {
		cs = &cartSession{provider: cart.NewProvider()}
		s.sessions[sessionID] = cs
	}
	return cs
}

func view(p *cart.Provider) CartView {
	items := p.Cart()
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return CartView{
		Items: items,
		Total: p.TotalPrice(),
		Count: count,
		Open:  p.IsOpen(),
	}
}

// View returns the current cart of the session.
func (s *CartService) View(sessionID string) CartView {
	cs := s.session(sessionID)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return view(cs.provider)
}

// remaining returns the mirrored stock of product, seeding the mirror from the
// catalog value the first time the product is seen.
func (s *CartService) remaining(ctx context.Context, product *models.Product) (int, error) {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()

	left, tracked, err := s.stock.Get(ctx, product.ID)
	if err != nil {
		return 0, err
	}
	if tracked {
		return left, nil
	}
	if err := s.stock.Set(ctx, product.ID, product.Stock); err != nil {
		return 0, err
	}
	return product.Stock, nil
}

// Add puts quantity units of a product into the session cart. A refused
// addition yields a *cart.RejectedError carrying the validation message.
func (s *CartService) Add(ctx context.Context, sessionID string, productID, quantity int) (CartView, cart.Notice, error) {
	cs := s.session(sessionID)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	product, err := s.products.GetByID(ctx, productID)
	if err != nil && !errors.Is(err, repositories.ErrProductNotFound) {
		return CartView{}, cart.Notice{}, err
	}

	var candidate *models.Product
	if product != nil {
		left, err := s.remaining(ctx, product)
		if err != nil {
			return CartView{}, cart.Notice{}, err
		}
		p := *product
		p.Stock = left
		candidate = &p
	}

	if res := cart.ValidateAddition(candidate, quantity); !res.Valid {
		s.metrics.CartOp("add", false)
		return view(cs.provider), cart.Notice{Level: cart.NoticeError, Message: res.Error}, res.Err()
	}

	left, err := s.stock.Adjust(ctx, productID, -quantity)
	if err != nil {
		return CartView{}, cart.Notice{}, err
	}
	if left < 0 {
		// Another session took the units between the check and the reservation.
		if _, err := s.stock.Adjust(ctx, productID, quantity); err != nil {
			log.Error().Err(err).Int("product_id", productID).Msg("failed to release stock reservation")
		}
		s.metrics.CartOp("add", false)
		res := cart.ValidationResult{Error: cart.ErrInsufficientStock}
		return view(cs.provider), cart.Notice{Level: cart.NoticeError, Message: res.Error}, res.Err()
	}

	notice := cs.provider.AddToCart(*product, quantity)
	s.metrics.CartOp("add", true)
	log.Debug().Str("session_id", sessionID).Int("product_id", productID).Int("quantity", quantity).Int("stock_left", left).Msg("item added to cart")
	return view(cs.provider), notice, nil
}

// restock gives the units of item back to the mirror.
func (s *CartService) restock(ctx context.Context, item cart.Item) error {
	_, err := s.stock.Adjust(ctx, item.ID, item.Quantity)
	if errors.Is(err, repositories.ErrStockNotTracked) {
		return nil
	}
	return err
}

// Remove drops the line of productID and releases its units. Removing an
// absent product is a no-op that still answers with the removal notice.
func (s *CartService) Remove(ctx context.Context, sessionID string, productID int) (CartView, cart.Notice, error) {
	cs := s.session(sessionID)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if item, ok := cart.Find(cs.provider.Cart(), productID); ok {
		if err := s.restock(ctx, item); err != nil {
			s.metrics.CartOp("remove", false)
			return CartView{}, cart.Notice{}, err
		}
	}
	notice := cs.provider.RemoveFromCart(productID)
	s.metrics.CartOp("remove", true)
	return view(cs.provider), notice, nil
}

// Clear empties the session cart and releases every line.
func (s *CartService) Clear(ctx context.Context, sessionID string) (CartView, cart.Notice, error) {
	cs := s.session(sessionID)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	var released []cart.Item
	for _, item := range cs.provider.Cart() {
		if err := s.restock(ctx, item); err != nil {
			// The cart stays as it was, so the units already given back are
			// taken again.
			for _, done := range released {
				if _, undoErr := s.stock.Adjust(ctx, done.ID, -done.Quantity); undoErr != nil && !errors.Is(undoErr, repositories.ErrStockNotTracked) {
					log.Error().Err(undoErr).Int("product_id", done.ID).Msg("failed to re-reserve stock after aborted clear")
				}
			}
			s.metrics.CartOp("clear", false)
			return CartView{}, cart.Notice{}, err
		}
		released = append(released, item)
	}
	notice := cs.provider.ClearCart()
	s.metrics.CartOp("clear", true)
	return view(cs.provider), notice, nil
}

// OpenDrawer shows the cart drawer of the session.
func (s *CartService) OpenDrawer(sessionID string) CartView {
	return s.drawer(sessionID, (*cart.Provider).Open)
}

func (s *CartService) CloseDrawer(sessionID string) CartView {
	return s.drawer(sessionID, (*cart.Provider).Close)
}

func (s *CartService) ToggleDrawer(sessionID string) CartView {
	return s.drawer(sessionID, (*cart.Provider).Toggle)
}

func (s *CartService) drawer(sessionID string, op func(*cart.Provider)) CartView {
	cs := s.session(sessionID)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	op(cs.provider)
	return view(cs.provider)
}

// Settle hands the session cart to place while the cart is locked. When place
// succeeds the cart is emptied without releasing stock.
func (s *CartService) Settle(sessionID string, place func(cart.Cart) error) error {
	cs := s.session(sessionID)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if err := place(cs.provider.Cart()); err != nil {
		return err
	}
	cs.provider.ClearCart()
	cs.provider.Close()
	return nil
}
