package services_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/raulashish/FashionStore/internal/models"
	"github.com/raulashish/FashionStore/internal/repositories"
	"github.com/raulashish/FashionStore/internal/services"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) list(args mock.Arguments) ([]models.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) one(args mock.Arguments) (*models.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Find(ctx context.Context, q repositories.ProductQuery) ([]models.Product, error) {
	return m.list(m.Called(ctx, q))
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	return m.list(m.Called(ctx))
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	return m.one(m.Called(ctx, id))
}

func (m *MockProductRepository) FindByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return m.list(m.Called(ctx, category))
}

func (m *MockProductRepository) FindByNameContaining(ctx context.Context, name string) ([]models.Product, error) {
	return m.list(m.Called(ctx, name))
}

func (m *MockProductRepository) FindByPriceBetween(ctx context.Context, minPrice, maxPrice float64) ([]models.Product, error) {
	return m.list(m.Called(ctx, minPrice, maxPrice))
}

func (m *MockProductRepository) FindByBrand(ctx context.Context, brand string) ([]models.Product, error) {
	return m.list(m.Called(ctx, brand))
}

func (m *MockProductRepository) FindByColor(ctx context.Context, color string) ([]models.Product, error) {
	return m.list(m.Called(ctx, color))
}

func (m *MockProductRepository) FindBySize(ctx context.Context, size string) ([]models.Product, error) {
	return m.list(m.Called(ctx, size))
}

func (m *MockProductRepository) FindDiscounted(ctx context.Context) ([]models.Product, error) {
	return m.list(m.Called(ctx))
}

func (m *MockProductRepository) FindByStockBelow(ctx context.Context, threshold int) ([]models.Product, error) {
	return m.list(m.Called(ctx, threshold))
}

func (m *MockProductRepository) FindAllSortedByPrice(ctx context.Context, order repositories.SortOrder) ([]models.Product, error) {
	return m.list(m.Called(ctx, order))
}

func (m *MockProductRepository) FindBySku(ctx context.Context, sku string) (*models.Product, error) {
	return m.one(m.Called(ctx, sku))
}

func (m *MockProductRepository) FindByCreatedAtAfter(ctx context.Context, cutoff time.Time) ([]models.Product, error) {
	return m.list(m.Called(ctx, cutoff))
}

func (m *MockProductRepository) Save(ctx context.Context, product *models.Product) (*models.Product, error) {
	return m.one(m.Called(ctx, product))
}

func (m *MockProductRepository) DeleteByID(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func price(v float64) *float64 { return &v }
func stock(v int) *int { return &v }

var ctx = context.Background()

func TestProductService_GetAllProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	expectedProducts := []models.Product{
		{ID: "1", Name: "Product A", Price: price(10.0), StockQuantity: stock(100)},
		{ID: "2", Name: "Product B", Price: price(20.0), StockQuantity: stock(50)},
	}

	mockRepo.On("FindAll", ctx).Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts(ctx)

	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	expectedProduct := &models.Product{ID: "1", Name: "Product A", Price: price(10.0), StockQuantity: stock(100)}

	// Test successful retrieval
	mockRepo.On("FindByID", ctx, "1").Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID(ctx, "1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	// Test product not found
	mockRepo.On("FindByID", ctx, "99").Return(nil, nil).Once()
	product, err = service.GetProductByID(ctx, "99")
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	assert.Nil(t, product)

	// Storage failures are passed through untouched
	mockRepo.On("FindByID", ctx, "500").Return(nil, fmt.Errorf("database error")).Once()
	_, err = service.GetProductByID(ctx, "500")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrProductNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_SaveOrUpdateProduct_Create(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	newProduct := &models.Product{Name: "Tee", Description: "Cotton tee", Price: price(19.99), Category: "Shirts", StockQuantity: stock(50)}
	persisted := *newProduct
	persisted.ID = "generated"
	persisted.CreatedAt = time.Now()

	mockRepo.On("Save", ctx, newProduct).Return(&persisted, nil).Once()
	saved, err := service.SaveOrUpdateProduct(ctx, newProduct)
	require.NoError(t, err)
	assert.Equal(t, "generated", saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	mockRepo.AssertNotCalled(t, "ExistsByID", mock.Anything, mock.Anything)

	// Test creation failure (e.g., database error)
	mockRepo.On("Save", ctx, newProduct).Return(nil, fmt.Errorf("database error")).Once()
	_, err = service.SaveOrUpdateProduct(ctx, newProduct)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
	mockRepo.AssertExpectations(t)
}

func TestProductService_SaveOrUpdateProduct_Update(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	updatedProduct := &models.Product{ID: "1", Name: "Product A Updated", Price: price(12.0), StockQuantity: stock(95)}

	// Test successful update
	mockRepo.On("ExistsByID", ctx, "1").Return(true, nil).Once()
	mockRepo.On("Save", ctx, updatedProduct).Return(updatedProduct, nil).Once()
	saved, err := service.SaveOrUpdateProduct(ctx, updatedProduct)
	assert.NoError(t, err)
	assert.Equal(t, updatedProduct, saved)

	// Test update of a missing product
	missing := &models.Product{ID: "99", Name: "NonExistent", Price: price(1.0), StockQuantity: stock(1)}
	mockRepo.On("ExistsByID", ctx, "99").Return(false, nil).Once()
	_, err = service.SaveOrUpdateProduct(ctx, missing)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	mockRepo.AssertNotCalled(t, "Save", ctx, missing)

	// Test a row removed between the check and the replace
	racing := &models.Product{ID: "42", Name: "Racing", Price: price(1.0), StockQuantity: stock(1)}
	mockRepo.On("ExistsByID", ctx, "42").Return(true, nil).Once()
	mockRepo.On("Save", ctx, racing).Return(nil, fmt.Errorf("replace: %w", repositories.ErrRowNotFound)).Once()
	_, err = service.SaveOrUpdateProduct(ctx, racing)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	// Test successful deletion
	mockRepo.On("ExistsByID", ctx, "1").Return(true, nil).Once()
	mockRepo.On("DeleteByID", ctx, "1").Return(int64(1), nil).Once()
	err := service.DeleteProduct(ctx, "1")
	assert.NoError(t, err)

	// Test deletion failure (product not found), no delete is issued
	mockRepo.On("ExistsByID", ctx, "999").Return(false, nil).Once()
	err = service.DeleteProduct(ctx, "999")
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	mockRepo.AssertNotCalled(t, "DeleteByID", ctx, "999")

	// Test concurrent deletion between the check and the delete
	mockRepo.On("ExistsByID", ctx, "7").Return(true, nil).Once()
	mockRepo.On("DeleteByID", ctx, "7").Return(int64(0), nil).Once()
	err = service.DeleteProduct(ctx, "7")
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	// Test storage error during the existence check
	mockRepo.On("ExistsByID", ctx, "8").Return(false, errors.New("connection refused")).Once()
	err = service.DeleteProduct(ctx, "8")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrProductNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_QueryPassThroughs(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	shirts := []models.Product{{ID: "1", Name: "Tee", Category: "Shirts"}}
	empty := []models.Product{}

	mockRepo.On("FindByCategory", ctx, "Shirts").Return(shirts, nil).Once()
	mockRepo.On("FindByNameContaining", ctx, "tee").Return(shirts, nil).Once()
	mockRepo.On("FindByPriceBetween", ctx, 10.0, 20.0).Return(shirts, nil).Once()
	mockRepo.On("FindByBrand", ctx, "Acme").Return(empty, nil).Once()
	mockRepo.On("FindByColor", ctx, "Red").Return(empty, nil).Once()
	mockRepo.On("FindBySize", ctx, "XL").Return(empty, nil).Once()
	mockRepo.On("FindDiscounted", ctx).Return(empty, nil).Once()
	mockRepo.On("FindByStockBelow", ctx, 5).Return(shirts, nil).Once()
	mockRepo.On("FindAllSortedByPrice", ctx, repositories.PriceAsc).Return(shirts, nil).Once()
	mockRepo.On("FindAllSortedByPrice", ctx, repositories.PriceDesc).Return(shirts, nil).Once()
	mockRepo.On("FindBySku", ctx, "NOPE").Return(nil, nil).Once()

	got, err := service.GetProductsByCategory(ctx, "Shirts")
	assert.NoError(t, err)
	assert.Equal(t, shirts, got)

	got, err = service.SearchProductsByName(ctx, "tee")
	assert.NoError(t, err)
	assert.Equal(t, shirts, got)

	got, err = service.GetProductsByPriceRange(ctx, 10, 20)
	assert.NoError(t, err)
	assert.Equal(t, shirts, got)

	got, err = service.GetProductsByBrand(ctx, "Acme")
	assert.NoError(t, err)
	assert.Empty(t, got)

	got, err = service.GetProductsByColor(ctx, "Red")
	assert.NoError(t, err)
	assert.Empty(t, got)

	got, err = service.GetProductsBySize(ctx, "XL")
	assert.NoError(t, err)
	assert.Empty(t, got)

	got, err = service.GetDiscountedProducts(ctx)
	assert.NoError(t, err)
	assert.Empty(t, got)

	got, err = service.GetLowStockProducts(ctx, 5)
	assert.NoError(t, err)
	assert.Equal(t, shirts, got)

	_, err = service.GetProductsSortedByPriceAsc(ctx)
	assert.NoError(t, err)
	_, err = service.GetProductsSortedByPriceDesc(ctx)
	assert.NoError(t, err)

	product, err := service.GetProductBySku(ctx, "NOPE")
	assert.NoError(t, err)
	assert.Nil(t, product)

	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductsAddedInLastDays(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, services.WithClock(func() time.Time { return now }))

	recent := []models.Product{{ID: "3", Name: "Fresh"}}
	mockRepo.On("FindByCreatedAtAfter", ctx, now.Add(-7*24*time.Hour)).Return(recent, nil).Once()
	got, err := service.GetProductsAddedInLastDays(ctx, 7)
	assert.NoError(t, err)
	assert.Equal(t, recent, got)

	// Negative days put the cutoff in the future
	mockRepo.On("FindByCreatedAtAfter", ctx, now.Add(48*time.Hour)).Return([]models.Product{}, nil).Once()
	got, err = service.GetProductsAddedInLastDays(ctx, -2)
	assert.NoError(t, err)
	assert.Empty(t, got)

	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductsAddedInLastDays_LargeWindow(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, services.WithClock(func() time.Time { return now }))

	var cutoffs []time.Time
	mockRepo.On("FindByCreatedAtAfter", ctx, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) { cutoffs = append(cutoffs, args.Get(1).(time.Time)) }).
		Return([]models.Product{{ID: "1", Name: "Everything"}}, nil).
		Times(3)

	for _, days := range []int{110000, 200000, math.MaxInt} {
		got, err := service.GetProductsAddedInLastDays(ctx, days)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}

	require.Len(t, cutoffs, 3)
	for _, cutoff := range cutoffs {
		assert.True(t, cutoff.Before(now), "cutoff %s must lie before %s", cutoff, now)
	}
	assert.Equal(t, now.AddDate(0, 0, -110000), cutoffs[0])
	assert.Equal(t, now.AddDate(0, 0, -200000), cutoffs[1])
	assert.True(t, cutoffs[2].Before(cutoffs[1]))
	mockRepo.AssertExpectations(t)
}
