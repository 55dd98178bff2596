package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/metrics"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// OrderStatusPaid is the status of every order placed through checkout.
const OrderStatusPaid = "paid"

// EventPublisher announces placed orders.
type EventPublisher interface {
	PublishCheckoutCompleted(event models.CheckoutEvent) error
}

// CheckoutView is the checkout form of a session.
type CheckoutView struct {
	checkout.State
	PaymentDisabled bool `json:"payment_disabled"`
}

// PaymentResult is the outcome of a successful payment.
type PaymentResult struct {
	Order    *models.Order `json:"order"`
	Redirect string        `json:"redirect"`
}

type checkoutSession struct {
	mu       sync.Mutex
	form     *checkout.Session
	redirect string
}

// CheckoutService keeps one checkout form per session and turns paid carts
// into orders.
type CheckoutService struct {
	carts   *CartService
	orders  repositories.OrderRepository
	events  EventPublisher
	metrics *metrics.Metrics
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*checkoutSession
}

// CheckoutOption configures a CheckoutService.
type CheckoutOption func(*CheckoutService)

// WithCheckoutClock overrides the clock used for card expiry and order times.
func WithCheckoutClock(now func() time.Time) CheckoutOption {
	return func(s *CheckoutService) {
		s.now = now
	}
}

// NewCheckoutService creates a new CheckoutService. events may be nil, in
// which case placed orders are not announced.
func NewCheckoutService(carts *CartService, orders repositories.OrderRepository, events EventPublisher, m *metrics.Metrics, opts ...CheckoutOption) *CheckoutService {
	s := &CheckoutService{
		carts:    carts,
		orders:   orders,
		events:   events,
		metrics:  m,
		now:      time.Now,
		sessions: make(map[string]*checkoutSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CheckoutService) newForm(cs *checkoutSession) *checkout.Session {
	nav := checkout.NavigatorFunc(func(path string) { cs.redirect = path })
	form, err := checkout.NewSession(nav, checkout.WithClock(s.now))
	if err != nil {
		// Only a nil navigator fails, and nav is never nil.
		panic(err)
	}
	return form
}

func (s *CheckoutService) session(sessionID string) *checkoutSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, ok := s.sessions[sessionID]
	if !ok {
		cs = &checkoutSession{}
		cs.form = s.newForm(cs)
		s.sessions[sessionID] = cs
	}
	return cs
}

func checkoutView(form *checkout.Session) CheckoutView {
	st := form.State()
	return CheckoutView{State: st, PaymentDisabled: st.PaymentDisabled()}
}

// State returns the checkout form of the session.
func (s *CheckoutService) State(sessionID string) CheckoutView {
	cs := s.session(sessionID)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return checkoutView(cs.form)
}

// SetField stores a raw card input. Unknown field names yield
// checkout.ErrUnknownField.
func (s *CheckoutService) SetField(sessionID, field, value string) (CheckoutView, error) {
	f, err := checkout.ParseField(field)
	if err != nil {
		return CheckoutView{}, err
	}
	cs := s.session(sessionID)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.form.SetField(f, value)
	return checkoutView(cs.form), nil
}

// SetPaymentMethod selects the payment method. Unknown methods yield
// checkout.ErrUnknownPaymentMethod.
func (s *CheckoutService) SetPaymentMethod(sessionID, method string) (CheckoutView, error) {
	m, err := checkout.ParsePaymentMethod(method)
	if err != nil {
		return CheckoutView{}, err
	}
	cs := s.session(sessionID)
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.form.SetPaymentMethod(m)
	return checkoutView(cs.form), nil
}

// Pay finalizes the checkout of the session. An empty cart yields
// ErrEmptyCart, invalid card details a *PaymentRejectedError. On success the
// order is stored, the cart is drained and the form starts over.
func (s *CheckoutService) Pay(ctx context.Context, sessionID string) (*PaymentResult, error) {
	cs := s.session(sessionID)
	cs.mu.Lock()
	defer cs.mu.Unlock()

	var order *models.Order
	err := s.carts.Settle(sessionID, func(items cart.Cart) error {
		if len(items) == 0 {
			return ErrEmptyCart
		}
		// The form only records the redirect here; it reaches the caller
		// through PaymentResult once the order is stored.
		cs.redirect = ""
		if !cs.form.HandlePayment() {
			return &PaymentRejectedError{Errors: cs.form.State().Errors}
		}
		order = s.buildOrder(sessionID, cs.form.State(), items)
		if err := s.orders.Create(ctx, order); err != nil {
			return errors.Wrap(err, "store order")
		}
		return nil
	})

	method := string(cs.form.State().PaymentMethod)
	if err != nil {
		cs.redirect = ""
		s.metrics.Payment(method, false)
		return nil, err
	}
	s.metrics.Payment(method, true)

	s.publish(order)
	result := &PaymentResult{Order: order, Redirect: cs.redirect}
	cs.form = s.newForm(cs)
	cs.redirect = ""

	log.Info().Str("session_id", sessionID).Str("order_id", order.ID).Str("payment_method", method).Str("total", order.TotalAmount.StringFixed(2)).Msg("order placed")
	return result, nil
}

func (s *CheckoutService) buildOrder(sessionID string, st checkout.State, items cart.Cart) *models.Order {
	now := s.now()
	order := &models.Order{
		ID:            uuid.New().String(),
		SessionID:     sessionID,
		PaymentMethod: string(st.PaymentMethod),
		Status:        OrderStatusPaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	total := decimal.Zero
	for _, item := range items {
		price := decimal.NewFromFloat(item.Price).Round(2)
		order.Items = append(order.Items, models.OrderItem{
			OrderID:   order.ID,
			ProductID: item.ID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			Price:     price,
		})
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	order.TotalAmount = total.Round(2)

	if st.PaymentMethod != checkout.Bitcoin {
		order.CardType = string(st.CardType)
		order.CardLast4 = lastFour(st.CardInfo.Number)
	}
	return order
}

func lastFour(number string) string {
	digits := strings.ReplaceAll(number, " ", "")
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

func (s *CheckoutService) publish(order *models.Order) {
	if s.events == nil {
		log.Debug().Str("order_id", order.ID).Msg("event publisher not configured, skipping checkout event")
		return
	}
	count := 0
	for _, item := range order.Items {
		count += item.Quantity
	}
	event := models.CheckoutEvent{
		OrderID:       order.ID,
		SessionID:     order.SessionID,
		PaymentMethod: order.PaymentMethod,
		Total:         order.TotalAmount,
		ItemCount:     count,
		PlacedAt:      order.CreatedAt,
	}
	// The order is already stored; a lost event is logged, not returned.
	if err := s.events.PublishCheckoutCompleted(event); err != nil {
		log.Warn().Err(err).Str("order_id", order.ID).Msg("failed to publish checkout event")
	}
}

// GetOrder returns an order placed by the session.
func (s *CheckoutService) GetOrder(ctx context.Context, sessionID, orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.SessionID != sessionID {
		return nil, errors.Wrapf(repositories.ErrOrderNotFound, "order %s", orderID)
	}
	return order, nil
}

// ListOrders returns the orders placed by the session.
func (s *CheckoutService) ListOrders(ctx context.Context, sessionID string) ([]models.Order, error) {
	return s.orders.ListBySession(ctx, sessionID)
}
