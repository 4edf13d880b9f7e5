package app

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raulashish/FashionStore/internal/handlers"
	"github.com/raulashish/FashionStore/internal/middleware"
	"github.com/raulashish/FashionStore/internal/repositories"
	"github.com/raulashish/FashionStore/internal/services"
	"github.com/raulashish/FashionStore/pkg/logger"
)

// Pinger reports whether the backing store is reachable.
type Pinger func(ctx context.Context) error

// Options configures NewApp.
type Options struct {
	ServiceName string
	Repository  repositories.ProductRepository
	// Ping backs the health check; nil means the store is always healthy.
	Ping Pinger
	// Registry receives the HTTP and runtime collectors; a fresh one is
	// created when nil.
	Registry       *prometheus.Registry
	ServiceOptions []services.ProductServiceOption
}

// NewApp wires the service, handlers and middleware into a fiber app.
func NewApp(opts Options) *fiber.App {
	if opts.Repository == nil {
		opts.Repository = repositories.NewMemoryProductRepository()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	productService := services.NewProductService(opts.Repository, opts.ServiceOptions...)
	productHandler := handlers.NewProductHandler(productService)
	metrics := middleware.NewMetrics(reg)

	app := fiber.New(fiber.Config{
		AppName:      opts.ServiceName,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.Tracing(opts.ServiceName))
	app.Use(middleware.RequestLogger())
	app.Use(metrics.Handler())

	app.Get("/health", healthHandler(opts.Ping))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := app.Group("/api")
	productHandler.RegisterRoutes(api)

	return app
}

func healthHandler(ping Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, code := "healthy", fiber.StatusOK
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				logger.Warn(c.UserContext()).Err(err).Msg("Health check failed")
				status, code = "unhealthy", fiber.StatusServiceUnavailable
			}
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

// errorHandler renders errors that escape handlers, such as unknown routes.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"message": err.Error(),
	})
}
