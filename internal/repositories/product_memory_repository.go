package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raulashish/FashionStore/internal/models"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
// Results without an explicit sort come back in insertion order.
type MemoryProductRepository struct {
	products map[string]models.Product
	order    []string
	mu       sync.RWMutex
	now      func() time.Time
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
		now:      time.Now,
	}
}

// Find returns copies of every stored product matching q.
func (r *MemoryProductRepository) Find(_ context.Context, q ProductQuery) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, id := range r.order {
		p := r.products[id]
		if matches(&p, q) {
			productList = append(productList, clone(p))
		}
	}

	switch q.Sort {
	case PriceAsc:
		sort.SliceStable(productList, func(i, j int) bool { return price(productList[i]) < price(productList[j]) })
	case PriceDesc:
		sort.SliceStable(productList, func(i, j int) bool { return price(productList[i]) > price(productList[j]) })
	}
	return productList, nil
}

func matches(p *models.Product, q ProductQuery) bool {
	switch {
	case q.Category != "" && p.Category != q.Category,
		q.Brand != "" && p.Brand != q.Brand,
		q.Color != "" && p.Color != q.Color,
		q.Size != "" && p.Size != q.Size:
		return false
	case q.NameContains != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.NameContains)):
		return false
	case q.MinPrice != nil && price(*p) < *q.MinPrice,
		q.MaxPrice != nil && price(*p) > *q.MaxPrice:
		return false
	case q.Discounted && p.DiscountPrice == nil:
		return false
	case q.StockBelow != nil && (p.StockQuantity == nil || *p.StockQuantity >= *q.StockBelow):
		return false
	case q.CreatedAfter != nil && !p.CreatedAt.After(*q.CreatedAfter):
		return false
	}
	return true
}

func price(p models.Product) float64 {
	if p.Price == nil {
		return 0
	}
	return *p.Price
}

// clone copies the pointer fields so callers cannot mutate stored rows.
func clone(p models.Product) models.Product {
	if p.Price != nil {
		v := *p.Price
		p.Price = &v
	}
	if p.StockQuantity != nil {
		v := *p.StockQuantity
		p.StockQuantity = &v
	}
	if p.DiscountPrice != nil {
		v := *p.DiscountPrice
		p.DiscountPrice = &v
	}
	return p
}

// FindAll returns all products.
func (r *MemoryProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{})
}

// FindByID returns a product by its ID, or nil.
func (r *MemoryProductRepository) FindByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	product = clone(product)
	return &product, nil
}

func (r *MemoryProductRepository) FindByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{Category: category})
}

func (r *MemoryProductRepository) FindByNameContaining(ctx context.Context, name string) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{NameContains: name})
}

func (r *MemoryProductRepository) FindByPriceBetween(ctx context.Context, minPrice, maxPrice float64) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{MinPrice: &minPrice, MaxPrice: &maxPrice})
}

func (r *MemoryProductRepository) FindByBrand(ctx context.Context, brand string) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{Brand: brand})
}

func (r *MemoryProductRepository) FindByColor(ctx context.Context, color string) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{Color: color})
}

func (r *MemoryProductRepository) FindBySize(ctx context.Context, size string) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{Size: size})
}

func (r *MemoryProductRepository) FindDiscounted(ctx context.Context) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{Discounted: true})
}

func (r *MemoryProductRepository) FindByStockBelow(ctx context.Context, threshold int) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{StockBelow: &threshold})
}

func (r *MemoryProductRepository) FindAllSortedByPrice(ctx context.Context, order SortOrder) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{Sort: order})
}

// FindBySku returns the earliest inserted product with the SKU, or nil.
func (r *MemoryProductRepository) FindBySku(_ context.Context, sku string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if p := r.products[id]; p.SKU == sku {
			p = clone(p)
			return &p, nil
		}
	}
	return nil, nil
}

func (r *MemoryProductRepository) FindByCreatedAtAfter(ctx context.Context, cutoff time.Time) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{CreatedAfter: &cutoff})
}

// Save adds a new product or replaces an existing one, keeping its CreatedAt.
func (r *MemoryProductRepository) Save(_ context.Context, product *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	if product.ID == "" {
		product.ID = uuid.New().String()
		if product.CreatedAt.IsZero() {
			product.CreatedAt = now
		}
		r.order = append(r.order, product.ID)
	} else {
		existing, ok := r.products[product.ID]
		if !ok {
			return nil, fmt.Errorf("product with ID %s not found for update: %w", product.ID, ErrRowNotFound)
		}
		product.CreatedAt = existing.CreatedAt
	}
	product.UpdatedAt = now

	stored := clone(*product)
	r.products[product.ID] = stored
	saved := clone(stored)
	return &saved, nil
}

// DeleteByID removes a product by its ID.
func (r *MemoryProductRepository) DeleteByID(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return 0, nil
	}
	delete(r.products, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return 1, nil
}

func (r *MemoryProductRepository) ExistsByID(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.products[id]
	return ok, nil
}
