package services_test

import (
	"context"
	"math"
	"os"
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, skip, limit int) ([]models.Product, int, error) {
	args := m.Called(ctx, skip, limit)
	return args.Get(0).([]models.Product), args.Int(1), args.Error(2)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Upsert(ctx context.Context, products ...models.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

// MockCatalogFetcher is a mock implementation of services.CatalogFetcher
type MockCatalogFetcher struct {
	mock.Mock
}

func (m *MockCatalogFetcher) FetchPage(page int) (*models.ProductPage, error) {
	args := m.Called(page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductPage), args.Error(1)
}

func productsFrom(first, n int) []models.Product {
	out := make([]models.Product, 0, n)
	for id := first; id < first+n; id++ {
		out = append(out, models.Product{ID: id, Title: "P", Price: 1, Stock: 1})
	}
	return out
}

func TestProductService_ListPage(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, 20, nil)

	mockRepo.On("List", ctx, 20, 20).Return(productsFrom(21, 20), 45, nil).Once()
	listing, err := service.ListPage(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, listing.Page)
	assert.Equal(t, 20, listing.Skip)
	assert.Equal(t, 20, listing.Limit)
	assert.Equal(t, 45, listing.Total)
	assert.True(t, listing.HasMore)
	assert.Equal(t, 3, listing.NextPage)

	mockRepo.On("List", ctx, 40, 20).Return(productsFrom(41, 5), 45, nil).Once()
	listing, err = service.ListPage(ctx, 3)
	require.NoError(t, err)
	assert.False(t, listing.HasMore)
	assert.Zero(t, listing.NextPage)

	// Page numbers below one fall back to the first page
	mockRepo.On("List", ctx, 0, 20).Return(productsFrom(1, 20), 45, nil).Once()
	listing, err = service.ListPage(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, listing.Page)

	mockRepo.AssertExpectations(t)
}

func TestProductService_ListPageOutOfRange(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, 20, nil)

	listing, err := service.ListPage(context.Background(), math.MaxInt)
	assert.Nil(t, listing)
	assert.ErrorIs(t, err, services.ErrPageOutOfRange)
	mockRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductService_GetProductByID(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, 20, nil)

	expected := &models.Product{ID: 1, Title: "Product A", Price: 10.0, Stock: 100}
	mockRepo.On("GetByID", ctx, 1).Return(expected, nil).Once()
	product, err := service.GetProductByID(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, expected, product)

	mockRepo.On("GetByID", ctx, 99).Return(nil, repositories.ErrProductNotFound).Once()
	product, err = service.GetProductByID(ctx, 99)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
	assert.Nil(t, product)

	mockRepo.AssertExpectations(t)
}

func TestProductService_SyncCatalog(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	fetcher := new(MockCatalogFetcher)
	service := services.NewProductService(mockRepo, 20, nil)

	page1 := &models.ProductPage{Products: productsFrom(1, 20), Total: 25, Skip: 0, Limit: 20}
	page2 := &models.ProductPage{Products: productsFrom(21, 5), Total: 25, Skip: 20, Limit: 20}
	fetcher.On("FetchPage", 1).Return(page1, nil).Once()
	fetcher.On("FetchPage", 2).Return(page2, nil).Once()
	mockRepo.On("Upsert", ctx, page1.Products).Return(nil).Once()
	mockRepo.On("Upsert", ctx, page2.Products).Return(nil).Once()

	written, err := service.SyncCatalog(ctx, fetcher)
	require.NoError(t, err)
	assert.Equal(t, 25, written)

	fetcher.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestProductService_SyncCatalogStopsOnEmptyPage(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	fetcher := new(MockCatalogFetcher)
	service := services.NewProductService(mockRepo, 20, nil)

	empty := &models.ProductPage{Products: []models.Product{}, Total: 100}
	fetcher.On("FetchPage", 1).Return(empty, nil).Once()
	mockRepo.On("Upsert", ctx, empty.Products).Return(nil).Once()

	written, err := service.SyncCatalog(ctx, fetcher)
	require.NoError(t, err)
	assert.Zero(t, written)
	fetcher.AssertExpectations(t)
}

func TestProductService_SyncCatalogSkipsInvalidProducts(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	fetcher := new(MockCatalogFetcher)
	service := services.NewProductService(mockRepo, 20, nil)

	good := models.Product{ID: 1, Title: "Good", Price: 5, Stock: 3}
	page := &models.ProductPage{
		Products: []models.Product{good, {ID: 2, Title: "", Price: 5}, {ID: 3, Title: "Negative", Price: -1}},
		Total:    3,
	}
	fetcher.On("FetchPage", 1).Return(page, nil).Once()
	mockRepo.On("Upsert", ctx, []models.Product{good}).Return(nil).Once()

	written, err := service.SyncCatalog(ctx, fetcher)
	require.NoError(t, err)
	assert.Equal(t, 1, written)
	mockRepo.AssertExpectations(t)
}

func TestProductService_SeedValidates(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, 20, nil)

	err := service.Seed(ctx, models.Product{ID: 0, Title: "No id"})
	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)

	p := models.Product{ID: 7, Title: "Ok", Price: 1, Stock: 1}
	mockRepo.On("Upsert", ctx, []models.Product{p}).Return(nil).Once()
	assert.NoError(t, service.Seed(ctx, p))
	mockRepo.AssertExpectations(t)
}

func TestProductService_SyncCatalogFetchError(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	fetcher := new(MockCatalogFetcher)
	service := services.NewProductService(mockRepo, 20, nil)

	fetcher.On("FetchPage", 1).Return(nil, errors.New("upstream down")).Once()

	_, err := service.SyncCatalog(ctx, fetcher)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
	mockRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestProductService_SyncCatalogCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	service := services.NewProductService(new(MockProductRepository), 20, nil)
	_, err := service.SyncCatalog(ctx, new(MockCatalogFetcher))
	assert.ErrorIs(t, err, context.Canceled)
}
