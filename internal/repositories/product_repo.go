package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/raulashish/FashionStore/internal/models"
)

// ErrRowNotFound is returned by Save when the row to replace does not exist.
var ErrRowNotFound = errors.New("no product row matched")

// SortOrder controls how a product query is ordered by price.
type SortOrder int

const (
	// Unsorted leaves ordering to the storage engine.
	Unsorted SortOrder = iota
	PriceAsc
	PriceDesc
)

// ProductQuery holds the predicates and sort order every named product
// query is built from. Nil or empty fields do not constrain the result.
type ProductQuery struct {
	Category     string
	Brand        string
	Color        string
	Size         string
	NameContains string // case-insensitive substring match on name
	MinPrice     *float64
	MaxPrice     *float64
	Discounted   bool
	StockBelow   *int
	CreatedAfter *time.Time
	Sort         SortOrder
}

// ProductRepository defines the interface for product data access.
//
// Reads never report absence as an error: list queries return an empty slice
// and single-row lookups return a nil product.
type ProductRepository interface {
	Find(ctx context.Context, q ProductQuery) ([]models.Product, error)
	FindAll(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindByCategory(ctx context.Context, category string) ([]models.Product, error)
	FindByNameContaining(ctx context.Context, name string) ([]models.Product, error)
	FindByPriceBetween(ctx context.Context, minPrice, maxPrice float64) ([]models.Product, error)
	FindByBrand(ctx context.Context, brand string) ([]models.Product, error)
	FindByColor(ctx context.Context, color string) ([]models.Product, error)
	FindBySize(ctx context.Context, size string) ([]models.Product, error)
	FindDiscounted(ctx context.Context) ([]models.Product, error)
	FindByStockBelow(ctx context.Context, threshold int) ([]models.Product, error)
	FindAllSortedByPrice(ctx context.Context, order SortOrder) ([]models.Product, error)
	FindBySku(ctx context.Context, sku string) (*models.Product, error)
	FindByCreatedAtAfter(ctx context.Context, cutoff time.Time) ([]models.Product, error)

	// Save inserts the product when it has no ID and fully replaces the stored
	// row otherwise. The returned product is the persisted state.
	Save(ctx context.Context, product *models.Product) (*models.Product, error)
	// DeleteByID removes the row and reports how many rows were affected.
	DeleteByID(ctx context.Context, id string) (int64, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
}
