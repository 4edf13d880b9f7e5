package repositories

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/raulashish/FashionStore/internal/models"
)

const tracerName = "product-repository"

// TracingProductRepository wraps a ProductRepository with OpenTelemetry spans.
type TracingProductRepository struct {
	next   ProductRepository
	tracer trace.Tracer
}

// NewTracingProductRepository creates a repository that records a span per call
// using the global tracer provider.
func NewTracingProductRepository(next ProductRepository) *TracingProductRepository {
	return NewTracingProductRepositoryWithProvider(next, otel.GetTracerProvider())
}

// NewTracingProductRepositoryWithProvider is NewTracingProductRepository with an explicit provider.
func NewTracingProductRepositoryWithProvider(next ProductRepository, tp trace.TracerProvider) *TracingProductRepository {
	return &TracingProductRepository{
		next:   next,
		tracer: tp.Tracer(tracerName),
	}
}

func (r *TracingProductRepository) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "repository."+name, trace.WithAttributes(attrs...))
}

func finishList(span trace.Span, products []models.Product, err error) ([]models.Product, error) {
	defer span.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("result.count", len(products)))
	return products, nil
}

func finishOne(span trace.Span, product *models.Product, err error) (*models.Product, error) {
	defer span.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Bool("result.found", product != nil))
	if product != nil {
		span.SetAttributes(
			attribute.String("product.id", product.ID),
			attribute.String("product.name", product.Name),
		)
	}
	return product, nil
}

func (r *TracingProductRepository) Find(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	ctx, span := r.start(ctx, "Find",
		attribute.String("query.category", q.Category),
		attribute.String("query.name", q.NameContains),
		attribute.Bool("query.discounted", q.Discounted),
		attribute.Int("query.sort", int(q.Sort)),
	)
	products, err := r.next.Find(ctx, q)
	return finishList(span, products, err)
}

func (r *TracingProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	ctx, span := r.start(ctx, "FindAll")
	products, err := r.next.FindAll(ctx)
	return finishList(span, products, err)
}

func (r *TracingProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	ctx, span := r.start(ctx, "FindByID", attribute.String("product.id", id))
	product, err := r.next.FindByID(ctx, id)
	return finishOne(span, product, err)
}

func (r *TracingProductRepository) FindByCategory(ctx context.Context, category string) ([]models.Product, error) {
	ctx, span := r.start(ctx, "FindByCategory", attribute.String("query.category", category))
	products, err := r.next.FindByCategory(ctx, category)
	return finishList(span, products, err)
}

func (r *TracingProductRepository) FindByNameContaining(ctx context.Context, name string) ([]models.Product, error) {
	ctx, span := r.start(ctx, "FindByNameContaining", attribute.String("query.name", name))
	products, err := r.next.FindByNameContaining(ctx, name)
	return finishList(span, products, err)
}

func (r *TracingProductRepository) FindByPriceBetween(ctx context.Context, minPrice, maxPrice float64) ([]models.Product, error) {
	ctx, span := r.start(ctx, "FindByPriceBetween",
		attribute.Float64("query.min_price", minPrice),
		attribute.Float64("query.max_price", maxPrice),
	)
	products, err := r.next.FindByPriceBetween(ctx, minPrice, maxPrice)
	return finishList(span, products, err)
}

func (r *TracingProductRepository) FindByBrand(ctx context.Context, brand string) ([]models.Product, error) {
	ctx, span := r.start(ctx, "FindByBrand", attribute.String("query.brand", brand))
	products, err := r.next.FindByBrand(ctx, brand)
	return finishList(span, products, err)
}

func (r *TracingProductRepository) FindByColor(ctx context.Context, color string) ([]models.Product, error) {
	ctx, span := r.start(ctx, "FindByColor", attribute.String("query.color", color))
	products, err := r.next.FindByColor(ctx, color)
	return finishList(span, products, err)
}

func (r *TracingProductRepository) FindBySize(ctx context.Context, size string) ([]models.Product, error) {
	ctx, span := r.start(ctx, "FindBySize", attribute.String("query.size", size))
	products, err := r.next.FindBySize(ctx, size)
	return finishList(span, products, err)
}

func (r *TracingProductRepository) FindDiscounted(ctx context.Context) ([]models.Product, error) {
	ctx, span := r.start(ctx, "FindDiscounted")
	products, err := r.next.FindDiscounted(ctx)
	return finishList(span, products, err)
}

func (r *TracingProductRepository) FindByStockBelow(ctx context.Context, threshold int) ([]models.Product, error) {
	ctx, span := r.start(ctx, "FindByStockBelow", attribute.Int("query.threshold", threshold))
	products, err := r.next.FindByStockBelow(ctx, threshold)
	return finishList(span, products, err)
}

func (r *TracingProductRepository) FindAllSortedByPrice(ctx context.Context, order SortOrder) ([]models.Product, error) {
	ctx, span := r.start(ctx, "FindAllSortedByPrice", attribute.Int("query.sort", int(order)))
	products, err := r.next.FindAllSortedByPrice(ctx, order)
	return finishList(span, products, err)
}

func (r *TracingProductRepository) FindBySku(ctx context.Context, sku string) (*models.Product, error) {
	ctx, span := r.start(ctx, "FindBySku", attribute.String("product.sku", sku))
	product, err := r.next.FindBySku(ctx, sku)
	return finishOne(span, product, err)
}

func (r *TracingProductRepository) FindByCreatedAtAfter(ctx context.Context, cutoff time.Time) ([]models.Product, error) {
	ctx, span := r.start(ctx, "FindByCreatedAtAfter", attribute.String("query.cutoff", cutoff.UTC().Format(time.RFC3339)))
	products, err := r.next.FindByCreatedAtAfter(ctx, cutoff)
	return finishList(span, products, err)
}

func (r *TracingProductRepository) Save(ctx context.Context, product *models.Product) (*models.Product, error) {
	ctx, span := r.start(ctx, "Save",
		attribute.Bool("product.is_new", product.ID == ""),
		attribute.String("product.name", product.Name),
		attribute.String("product.sku", product.SKU),
		attribute.String("product.category", product.Category),
	)
	saved, err := r.next.Save(ctx, product)
	return finishOne(span, saved, err)
}

func (r *TracingProductRepository) DeleteByID(ctx context.Context, id string) (int64, error) {
	ctx, span := r.start(ctx, "DeleteByID", attribute.String("product.id", id))
	defer span.End()

	rows, err := r.next.DeleteByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.Int64("result.rows_affected", rows))
	return rows, nil
}

func (r *TracingProductRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	ctx, span := r.start(ctx, "ExistsByID", attribute.String("product.id", id))
	defer span.End()

	exists, err := r.next.ExistsByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	span.SetAttributes(attribute.Bool("result.found", exists))
	return exists, nil
}
