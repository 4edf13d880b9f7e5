package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/raulashish/FashionStore/internal/models"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// AutoMigrate creates or updates the products table.
func (r *GORMProductRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&models.Product{})
}

// Find runs a product query, translating each set field of q into a predicate.
func (r *GORMProductRepository) Find(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	products := make([]models.Product, 0)
	if err := r.db.WithContext(ctx).Scopes(filterScopes(q)...).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	return products, nil
}

func filterScopes(q ProductQuery) []func(*gorm.DB) *gorm.DB {
	var scopes []func(*gorm.DB) *gorm.DB
	where := func(query string, args ...interface{}) {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB { return db.Where(query, args...) })
	}

	if q.Category != "" {
		where("category = ?", q.Category)
	}
	if q.Brand != "" {
		where("brand = ?", q.Brand)
	}
	if q.Color != "" {
		where("color = ?", q.Color)
	}
	if q.Size != "" {
		where("size = ?", q.Size)
	}
	if q.NameContains != "" {
		where(`LOWER(name) LIKE LOWER(?) ESCAPE '\'`, "%"+likeEscaper.Replace(q.NameContains)+"%")
	}
	if q.MinPrice != nil {
		where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		where("price <= ?", *q.MaxPrice)
	}
	if q.Discounted {
		where("discount_price IS NOT NULL")
	}
	if q.StockBelow != nil {
		where("stock_quantity < ?", *q.StockBelow)
	}
	if q.CreatedAfter != nil {
		// Timestamps are stored in UTC; sqlite compares them as text.
		where("created_at > ?", q.CreatedAfter.UTC())
	}

	switch q.Sort {
	case PriceAsc:
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB { return db.Order("price ASC") })
	case PriceDesc:
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB { return db.Order("price DESC") })
	}
	return scopes
}

// FindAll retrieves all products from the database.
func (r *GORMProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{})
}

// FindByID retrieves a single product by its ID. A missing row yields a nil product.
func (r *GORMProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GORMProductRepository) FindByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{Category: category})
}

func (r *GORMProductRepository) FindByNameContaining(ctx context.Context, name string) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{NameContains: name})
}

func (r *GORMProductRepository) FindByPriceBetween(ctx context.Context, minPrice, maxPrice float64) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{MinPrice: &minPrice, MaxPrice: &maxPrice})
}

func (r *GORMProductRepository) FindByBrand(ctx context.Context, brand string) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{Brand: brand})
}

func (r *GORMProductRepository) FindByColor(ctx context.Context, color string) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{Color: color})
}

func (r *GORMProductRepository) FindBySize(ctx context.Context, size string) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{Size: size})
}

func (r *GORMProductRepository) FindDiscounted(ctx context.Context) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{Discounted: true})
}

func (r *GORMProductRepository) FindByStockBelow(ctx context.Context, threshold int) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{StockBelow: &threshold})
}

func (r *GORMProductRepository) FindAllSortedByPrice(ctx context.Context, order SortOrder) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{Sort: order})
}

// FindBySku returns the first product carrying the SKU, or nil.
func (r *GORMProductRepository) FindBySku(ctx context.Context, sku string) (*models.Product, error) {
	return r.first(ctx, "sku = ?", sku)
}

func (r *GORMProductRepository) FindByCreatedAtAfter(ctx context.Context, cutoff time.Time) ([]models.Product, error) {
	return r.Find(ctx, ProductQuery{CreatedAfter: &cutoff})
}

func (r *GORMProductRepository) first(ctx context.Context, query string, arg interface{}) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where(query, arg).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product where %s %v: %w", query, arg, err)
	}
	return &product, nil
}

// Save creates the product when it has no ID, otherwise it overwrites every
// column of the existing row except created_at.
func (r *GORMProductRepository) Save(ctx context.Context, product *models.Product) (*models.Product, error) {
	db := r.db.WithContext(ctx)

	if product.ID == "" {
		product.ID = uuid.New().String()
		if product.CreatedAt.IsZero() {
			product.CreatedAt = time.Now()
		}
		product.CreatedAt = product.CreatedAt.UTC()
		if err := db.Create(product).Error; err != nil {
			return nil, fmt.Errorf("failed to create product: %w", err)
		}
	} else {
		// Select("*") writes zero values too, so omitted optional fields are cleared.
		res := db.Model(product).Select("*").Omit("id", "created_at").Updates(product)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update product: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("product with ID %s not found for update: %w", product.ID, ErrRowNotFound)
		}
	}

	saved, err := r.FindByID(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, fmt.Errorf("product with ID %s vanished after save: %w", product.ID, ErrRowNotFound)
	}
	return saved, nil
}

// DeleteByID deletes a product by its ID from the database.
func (r *GORMProductRepository) DeleteByID(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete product: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GORMProductRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check product %s: %w", id, err)
	}
	return count > 0, nil
}
