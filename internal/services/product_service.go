package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raulashish/FashionStore/internal/models"
	"github.com/raulashish/FashionStore/internal/repositories"
)

// ErrProductNotFound is returned when a lookup, update or delete targets a
// product id that does not exist.
var ErrProductNotFound = errors.New("product not found")

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
	now  func() time.Time
}

// ProductServiceOption configures a ProductService.
type ProductServiceOption func(*ProductService)

// WithClock overrides the clock used for date-relative queries.
func WithClock(now func() time.Time) ProductServiceOption {
	return func(s *ProductService) {
		s.now = now
	}
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, opts ...ProductServiceOption) *ProductService {
	s := &ProductService{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.FindAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	return product, nil
}

// SaveOrUpdateProduct inserts a product without an ID, or fully replaces the
// stored product carrying the given ID. Fields omitted from an update are
// cleared, not merged.
func (s *ProductService) SaveOrUpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID != "" {
		exists, err := s.repo.ExistsByID(ctx, product.ID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("product with ID %s not found for update: %w", product.ID, ErrProductNotFound)
		}
	}

	saved, err := s.repo.Save(ctx, product)
	if err != nil {
		if errors.Is(err, repositories.ErrRowNotFound) {
			return nil, fmt.Errorf("product with ID %s not found for update: %w", product.ID, ErrProductNotFound)
		}
		return nil, err
	}
	return saved, nil
}

// DeleteProduct deletes a product by its ID.
//
// The existence check and the delete are separate statements. A concurrent
// delete in between surfaces as ErrProductNotFound through the rows-affected
// count rather than as a spurious success.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("product with ID %s not found for deletion: %w", id, ErrProductNotFound)
	}

	rows, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("product with ID %s was deleted concurrently: %w", id, ErrProductNotFound)
	}
	return nil
}

func (s *ProductService) GetProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return s.repo.FindByCategory(ctx, category)
}

// SearchProductsByName matches name substrings case-insensitively.
func (s *ProductService) SearchProductsByName(ctx context.Context, name string) ([]models.Product, error) {
	return s.repo.FindByNameContaining(ctx, name)
}

// GetProductsByPriceRange returns products priced within [minPrice, maxPrice].
func (s *ProductService) GetProductsByPriceRange(ctx context.Context, minPrice, maxPrice float64) ([]models.Product, error) {
	return s.repo.FindByPriceBetween(ctx, minPrice, maxPrice)
}

func (s *ProductService) GetProductsByBrand(ctx context.Context, brand string) ([]models.Product, error) {
	return s.repo.FindByBrand(ctx, brand)
}

func (s *ProductService) GetProductsByColor(ctx context.Context, color string) ([]models.Product, error) {
	return s.repo.FindByColor(ctx, color)
}

func (s *ProductService) GetProductsBySize(ctx context.Context, size string) ([]models.Product, error) {
	return s.repo.FindBySize(ctx, size)
}

func (s *ProductService) GetDiscountedProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.FindDiscounted(ctx)
}

// GetLowStockProducts returns products whose stock is strictly below threshold.
func (s *ProductService) GetLowStockProducts(ctx context.Context, threshold int) ([]models.Product, error) {
	return s.repo.FindByStockBelow(ctx, threshold)
}

func (s *ProductService) GetProductsSortedByPriceAsc(ctx context.Context) ([]models.Product, error) {
	return s.repo.FindAllSortedByPrice(ctx, repositories.PriceAsc)
}

func (s *ProductService) GetProductsSortedByPriceDesc(ctx context.Context) ([]models.Product, error) {
	return s.repo.FindAllSortedByPrice(ctx, repositories.PriceDesc)
}

// GetProductBySku returns nil without an error when no product has the SKU.
func (s *ProductService) GetProductBySku(ctx context.Context, sku string) (*models.Product, error) {
	return s.repo.FindBySku(ctx, sku)
}

// maxLookbackDays bounds the recent-products window so the cutoff stays within
// the range of calendar dates the stores can compare.
const maxLookbackDays = 1_000_000

// GetProductsAddedInLastDays returns products created after now minus days
// calendar days in UTC. Zero or negative days are passed through unchanged.
func (s *ProductService) GetProductsAddedInLastDays(ctx context.Context, days int) ([]models.Product, error) {
	switch {
	case days > maxLookbackDays:
		days = maxLookbackDays
	case days < -maxLookbackDays:
		days = -maxLookbackDays
	}
	cutoff := s.now().UTC().AddDate(0, 0, -days)
	return s.repo.FindByCreatedAtAfter(ctx, cutoff)
}
