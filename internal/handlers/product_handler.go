package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/raulashish/FashionStore/internal/models"
	"github.com/raulashish/FashionStore/internal/services"
	"github.com/raulashish/FashionStore/pkg/logger"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes. Fixed paths are registered
// before "/:id" so they are not captured as ids.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Post("/", h.HandleCreateProduct)

	productRoutes.Get("/category/:category", h.HandleGetProductsByCategory)
	productRoutes.Get("/brand/:brand", h.HandleGetProductsByBrand)
	productRoutes.Get("/color/:color", h.HandleGetProductsByColor)
	productRoutes.Get("/size/:size", h.HandleGetProductsBySize)
	productRoutes.Get("/sku/:sku", h.HandleGetProductBySku)
	productRoutes.Get("/search", h.HandleSearchProducts)
	productRoutes.Get("/price-range", h.HandleGetProductsByPriceRange)
	productRoutes.Get("/discounted", h.HandleGetDiscountedProducts)
	productRoutes.Get("/low-stock", h.HandleGetLowStockProducts)
	productRoutes.Get("/sort-by-price", h.HandleGetProductsSortedByPrice)
	productRoutes.Get("/recent", h.HandleGetRecentProducts)

	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	return h.respondList(c, products, err)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	productID := c.Params("id")
	product, err := h.service.GetProductByID(c.UserContext(), productID)
	if err != nil {
		return h.respondError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product. Any id or timestamps in the body are ignored.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	product, ok, err := h.parseProduct(c)
	if !ok {
		return err
	}
	product.ID = ""
	product.CreatedAt = time.Time{}
	product.UpdatedAt = time.Time{}

	saved, err := h.service.SaveOrUpdateProduct(c.UserContext(), product)
	if err != nil {
		return h.respondError(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(saved)
}

// HandleUpdateProduct fully replaces the product at the path id. An id in the
// body is overwritten by the path id.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	product, ok, err := h.parseProduct(c)
	if !ok {
		return err
	}
	product.ID = c.Params("id")

	saved, err := h.service.SaveOrUpdateProduct(c.UserContext(), product)
	if err != nil {
		return h.respondError(c, err, "Could not update product")
	}
	return c.JSON(saved)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	productID := c.Params("id")
	if err := h.service.DeleteProduct(c.UserContext(), productID); err != nil {
		return h.respondError(c, err, "Could not delete product")
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}

func (h *ProductHandler) HandleGetProductsByCategory(c *fiber.Ctx) error {
	products, err := h.service.GetProductsByCategory(c.UserContext(), c.Params("category"))
	return h.respondList(c, products, err)
}

func (h *ProductHandler) HandleGetProductsByBrand(c *fiber.Ctx) error {
	products, err := h.service.GetProductsByBrand(c.UserContext(), c.Params("brand"))
	return h.respondList(c, products, err)
}

func (h *ProductHandler) HandleGetProductsByColor(c *fiber.Ctx) error {
	products, err := h.service.GetProductsByColor(c.UserContext(), c.Params("color"))
	return h.respondList(c, products, err)
}

func (h *ProductHandler) HandleGetProductsBySize(c *fiber.Ctx) error {
	products, err := h.service.GetProductsBySize(c.UserContext(), c.Params("size"))
	return h.respondList(c, products, err)
}

// HandleGetProductBySku returns the product with the SKU or 404.
func (h *ProductHandler) HandleGetProductBySku(c *fiber.Ctx) error {
	product, err := h.service.GetProductBySku(c.UserContext(), c.Params("sku"))
	if err != nil {
		return h.respondError(c, err, "Could not retrieve product")
	}
	if product == nil {
		return c.Status(fiber.StatusNotFound).Send(nil)
	}
	return c.JSON(product)
}

// HandleSearchProducts handles GET /products/search?name=.
func (h *ProductHandler) HandleSearchProducts(c *fiber.Ctx) error {
	if !hasQuery(c, "name") {
		return badRequest(c, "Query parameter 'name' is required")
	}
	products, err := h.service.SearchProductsByName(c.UserContext(), c.Query("name"))
	return h.respondList(c, products, err)
}

// HandleGetProductsByPriceRange handles GET /products/price-range?minPrice=&maxPrice=.
func (h *ProductHandler) HandleGetProductsByPriceRange(c *fiber.Ctx) error {
	minPrice, err := strconv.ParseFloat(c.Query("minPrice"), 64)
	if err != nil {
		return badRequest(c, "Query parameter 'minPrice' must be a number")
	}
	maxPrice, err := strconv.ParseFloat(c.Query("maxPrice"), 64)
	if err != nil {
		return badRequest(c, "Query parameter 'maxPrice' must be a number")
	}
	products, err := h.service.GetProductsByPriceRange(c.UserContext(), minPrice, maxPrice)
	return h.respondList(c, products, err)
}

func (h *ProductHandler) HandleGetDiscountedProducts(c *fiber.Ctx) error {
	products, err := h.service.GetDiscountedProducts(c.UserContext())
	return h.respondList(c, products, err)
}

// HandleGetLowStockProducts handles GET /products/low-stock?threshold=.
func (h *ProductHandler) HandleGetLowStockProducts(c *fiber.Ctx) error {
	threshold, err := strconv.Atoi(c.Query("threshold"))
	if err != nil {
		return badRequest(c, "Query parameter 'threshold' must be an integer")
	}
	products, err := h.service.GetLowStockProducts(c.UserContext(), threshold)
	return h.respondList(c, products, err)
}

// HandleGetProductsSortedByPrice sorts ascending for sort=asc (the default) and
// descending for any other value.
func (h *ProductHandler) HandleGetProductsSortedByPrice(c *fiber.Ctx) error {
	var (
		products []models.Product
		err      error
	)
	if strings.EqualFold(c.Query("sort", "asc"), "asc") {
		products, err = h.service.GetProductsSortedByPriceAsc(c.UserContext())
	} else {
		products, err = h.service.GetProductsSortedByPriceDesc(c.UserContext())
	}
	return h.respondList(c, products, err)
}

// HandleGetRecentProducts handles GET /products/recent?days=.
func (h *ProductHandler) HandleGetRecentProducts(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days"))
	if err != nil {
		return badRequest(c, "Query parameter 'days' must be an integer")
	}
	products, err := h.service.GetProductsAddedInLastDays(c.UserContext(), days)
	return h.respondList(c, products, err)
}

// parseProduct decodes and validates the request body. When ok is false the
// 400 response has already been written and err is the result of writing it.
func (h *ProductHandler) parseProduct(c *fiber.Ctx) (product *models.Product, ok bool, err error) {
	product = &models.Product{}
	if err := c.BodyParser(product); err != nil {
		logger.Warn(c.UserContext()).Err(err).Msg("Error parsing product request body")
		return nil, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(product); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"error":   err.Error(),
			})
		}
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return nil, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}
	return product, true, nil
}

func (h *ProductHandler) respondList(c *fiber.Ctx, products []models.Product, err error) error {
	if err != nil {
		return h.respondError(c, err, "Could not retrieve products")
	}
	if products == nil {
		products = []models.Product{}
	}
	return c.JSON(products)
}

// respondError maps ErrProductNotFound to an empty 404 and anything else to a 500.
func (h *ProductHandler) respondError(c *fiber.Ctx, err error, message string) error {
	if errors.Is(err, services.ErrProductNotFound) {
		return c.Status(fiber.StatusNotFound).Send(nil)
	}
	logger.Error(c.UserContext()).Err(err).Str("path", c.Path()).Msg(message)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": message,
	})
}

func hasQuery(c *fiber.Ctx, key string) bool {
	return c.Context().QueryArgs().Has(key)
}
