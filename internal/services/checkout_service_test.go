package services_test

import (
	"context"
	"testing"
	"time"

	"storefront/internal/checkout"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishCheckoutCompleted(event models.CheckoutEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Order, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]models.Order), args.Error(1)
}

var checkoutNow = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

type checkoutFixture struct {
	carts    *services.CartService
	checkout *services.CheckoutService
	orders   *repositories.MockOrderRepository
}

func newCheckoutFixture(t *testing.T, events services.EventPublisher) checkoutFixture {
	t.Helper()
	carts, _ := newCartService(t, phone, laptop)
	orders := repositories.NewMockOrderRepository()
	svc := services.NewCheckoutService(carts, orders, events, nil,
		services.WithCheckoutClock(func() time.Time { return checkoutNow }))
	return checkoutFixture{carts: carts, checkout: svc, orders: orders}
}

func fillCard(t *testing.T, svc *services.CheckoutService, session string) services.CheckoutView {
	t.Helper()
	var v services.CheckoutView
	var err error
	for field, value := range map[string]string{
		"number": "4242424242424242",
		"name":   "Jane Doe",
		"expiry": "1230",
		"cvc":    "123",
	} {
		v, err = svc.SetField(session, field, value)
		require.NoError(t, err)
	}
	return v
}

func TestCheckoutService_InitialState(t *testing.T) {
	f := newCheckoutFixture(t, nil)

	v := f.checkout.State("s1")
	assert.Equal(t, checkout.Visa, v.PaymentMethod)
	assert.True(t, v.PaymentDisabled)
	assert.Equal(t, "Card number is required", v.Errors[checkout.FieldNumber])
}

func TestCheckoutService_FieldsAreFormatted(t *testing.T) {
	f := newCheckoutFixture(t, nil)

	v := fillCard(t, f.checkout, "s1")
	assert.Equal(t, "4242 4242 4242 4242", v.CardInfo.Number)
	assert.Equal(t, "12/30", v.CardInfo.Expiry)
	assert.Equal(t, checkout.CardTypeVisa, v.CardType)
	assert.Empty(t, v.Errors)
	assert.False(t, v.PaymentDisabled)
}

func TestCheckoutService_UnknownInputs(t *testing.T) {
	f := newCheckoutFixture(t, nil)

	_, err := f.checkout.SetField("s1", "pin", "1234")
	assert.ErrorIs(t, err, checkout.ErrUnknownField)

	_, err = f.checkout.SetPaymentMethod("s1", "paypal")
	assert.ErrorIs(t, err, checkout.ErrUnknownPaymentMethod)
}

func TestCheckoutService_PayEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t, nil)
	_, err := f.checkout.SetPaymentMethod("s1", "bitcoin")
	require.NoError(t, err)

	res, err := f.checkout.Pay(context.Background(), "s1")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, services.ErrEmptyCart)
}

func TestCheckoutService_PayRejectsInvalidCard(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)
	_, _, err := f.carts.Add(ctx, "s1", phone.ID, 1)
	require.NoError(t, err)

	_, err = f.checkout.SetField("s1", "number", "4242424242424241")
	require.NoError(t, err)

	res, err := f.checkout.Pay(ctx, "s1")
	assert.Nil(t, res)
	var rejected *services.PaymentRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "Invalid card number", rejected.Errors[checkout.FieldNumber])
	assert.Equal(t, "Name is required", rejected.Errors[checkout.FieldName])

	// Nothing was placed; the cart is intact.
	assert.Len(t, f.carts.View("s1").Items, 1)
	orders, err := f.checkout.ListOrders(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckoutService_PayWithCard(t *testing.T) {
	ctx := context.Background()
	events := new(MockEventPublisher)
	f := newCheckoutFixture(t, events)

	_, _, err := f.carts.Add(ctx, "s1", phone.ID, 2)
	require.NoError(t, err)
	_, _, err = f.carts.Add(ctx, "s1", laptop.ID, 1)
	require.NoError(t, err)
	fillCard(t, f.checkout, "s1")

	events.On("PublishCheckoutCompleted", mock.MatchedBy(func(e models.CheckoutEvent) bool {
		return e.SessionID == "s1" && e.ItemCount == 3 && e.Total.Equal(decimal.RequireFromString("2847.5"))
	})).Return(nil).Once()

	res, err := f.checkout.Pay(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, checkout.SuccessPath, res.Redirect)

	order := res.Order
	assert.Equal(t, services.OrderStatusPaid, order.Status)
	assert.Equal(t, "visa", order.PaymentMethod)
	assert.Equal(t, "visa", order.CardType)
	assert.Equal(t, "4242", order.CardLast4)
	assert.Equal(t, "2847.50", order.TotalAmount.StringFixed(2))
	require.Len(t, order.Items, 2)
	assert.Equal(t, "549", order.Items[0].Price.String())
	assert.Equal(t, checkoutNow, order.CreatedAt)

	// Cart drained, form reset.
	assert.Empty(t, f.carts.View("s1").Items)
	v := f.checkout.State("s1")
	assert.Empty(t, v.CardInfo.Number)
	assert.True(t, v.PaymentDisabled)

	stored, err := f.checkout.GetOrder(ctx, "s1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, stored.ID)

	events.AssertExpectations(t)
}

func TestCheckoutService_PayStoreFailure(t *testing.T) {
	ctx := context.Background()
	carts, _ := newCartService(t, phone)
	orders := new(MockOrderRepository)
	events := new(MockEventPublisher)
	svc := services.NewCheckoutService(carts, orders, events, nil,
		services.WithCheckoutClock(func() time.Time { return checkoutNow }))

	_, _, err := carts.Add(ctx, "s1", phone.ID, 1)
	require.NoError(t, err)
	fillCard(t, svc, "s1")

	orders.On("Create", ctx, mock.AnythingOfType("*models.Order")).Return(errors.New("db down")).Once()

	res, err := svc.Pay(ctx, "s1")
	assert.Nil(t, res)
	assert.ErrorContains(t, err, "db down")

	// No success was reported: the cart and the filled form survive, no event.
	assert.Len(t, carts.View("s1").Items, 1)
	assert.Equal(t, "4242 4242 4242 4242", svc.State("s1").CardInfo.Number)
	events.AssertNotCalled(t, "PublishCheckoutCompleted", mock.Anything)

	orders.On("Create", ctx, mock.AnythingOfType("*models.Order")).Return(nil).Once()
	events.On("PublishCheckoutCompleted", mock.Anything).Return(nil).Once()

	res, err = svc.Pay(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, checkout.SuccessPath, res.Redirect)
	assert.Empty(t, carts.View("s1").Items)
	orders.AssertExpectations(t)
}

func TestCheckoutService_PayWithBitcoin(t *testing.T) {
	ctx := context.Background()
	events := new(MockEventPublisher)
	f := newCheckoutFixture(t, events)

	_, _, err := f.carts.Add(ctx, "s1", laptop.ID, 1)
	require.NoError(t, err)
	v, err := f.checkout.SetPaymentMethod("s1", "bitcoin")
	require.NoError(t, err)
	assert.Empty(t, v.Errors)
	assert.False(t, v.PaymentDisabled)

	// A failing broker does not undo a placed order.
	events.On("PublishCheckoutCompleted", mock.Anything).Return(errors.New("broker down")).Once()

	res, err := f.checkout.Pay(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", res.Order.PaymentMethod)
	assert.Empty(t, res.Order.CardType)
	assert.Empty(t, res.Order.CardLast4)
	assert.Equal(t, "1749.50", res.Order.TotalAmount.StringFixed(2))
	events.AssertExpectations(t)
}

func TestCheckoutService_OrdersAreScopedToSession(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t, nil)

	_, _, err := f.carts.Add(ctx, "s1", phone.ID, 1)
	require.NoError(t, err)
	_, err = f.checkout.SetPaymentMethod("s1", "bitcoin")
	require.NoError(t, err)
	res, err := f.checkout.Pay(ctx, "s1")
	require.NoError(t, err)

	_, err = f.checkout.GetOrder(ctx, "s2", res.Order.ID)
	assert.ErrorIs(t, err, repositories.ErrOrderNotFound)

	orders, err := f.checkout.ListOrders(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, orders)

	orders, err = f.checkout.ListOrders(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}
