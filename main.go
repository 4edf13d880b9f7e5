package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/raulashish/FashionStore/internal/app"
	"github.com/raulashish/FashionStore/internal/config"
	"github.com/raulashish/FashionStore/internal/models"
	"github.com/raulashish/FashionStore/internal/repositories"
	"github.com/raulashish/FashionStore/pkg/database"
	"github.com/raulashish/FashionStore/pkg/logger"
	"github.com/raulashish/FashionStore/pkg/tracing"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(cfg.ServiceName, cfg.LogLevel, cfg.LogPretty)
	ctx := context.Background()

	// --- Tracing ---
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(cfg.ServiceName, cfg.JaegerEndpoint)
		if err != nil {
			logger.Fatal(ctx).Err(err).Msg("Failed to initialize tracer")
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error(ctx).Err(err).Msg("Error shutting down tracer")
			}
		}()
	}

	// --- Repository ---
	opts := app.Options{ServiceName: cfg.ServiceName}
	var repo repositories.ProductRepository
	if cfg.DBDriver == config.DriverMemory {
		repo = repositories.NewMemoryProductRepository()
		seedProducts(ctx, repo)
	} else {
		db, err := database.Open(database.Config{
			Driver:          cfg.DBDriver,
			DSN:             cfg.DatabaseDSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			Debug:           cfg.LogLevel == "debug",
		})
		if err != nil {
			logger.Fatal(ctx).Err(err).Msg("Failed to connect to database")
		}
		defer func() {
			if err := database.Close(db); err != nil {
				logger.Error(ctx).Err(err).Msg("Error closing database")
			}
		}()

		gormRepo := repositories.NewGORMProductRepository(db)
		if err := gormRepo.AutoMigrate(); err != nil {
			logger.Fatal(ctx).Err(err).Msg("Failed to migrate database")
		}
		repo = gormRepo

		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatal(ctx).Err(err).Msg("Failed to get database instance")
		}
		opts.Ping = sqlDB.PingContext
	}
	opts.Repository = repositories.NewTracingProductRepository(repo)

	fiberApp := app.NewApp(opts)

	// --- Start HTTP Server ---
	ln, err := net.Listen("tcp", cfg.AppPort)
	if err != nil {
		logger.Error(ctx).Err(err).Str("port", cfg.AppPort).Msg("Server failed to start")
		return
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	logger.Info(ctx).Str("port", cfg.AppPort).Str("driver", cfg.DBDriver).Msg("Starting server")
	if err := app.Serve(fiberApp, ln, quit, cfg.ShutdownTimeout); err != nil {
		logger.Error(ctx).Err(err).Msg("Server stopped with error")
		return
	}
	logger.Info(ctx).Msg("Server gracefully stopped")
}

// seedProducts populates the in-memory repository with a few catalog items.
func seedProducts(ctx context.Context, repo repositories.ProductRepository) {
	price := func(v float64) *float64 { return &v }
	stock := func(v int) *int { return &v }

	products := []models.Product{
		{Name: "Classic Tee", Description: "Cotton crew-neck tee", Price: price(19.99), Category: "Shirts", Brand: "Basics", Size: "M", Color: "White", StockQuantity: stock(50), SKU: "TEE-WHT-M"},
		{Name: "Slim Jeans", Description: "Stretch denim jeans", Price: price(59.5), Category: "Pants", Brand: "Denimco", Size: "32", Color: "Blue", StockQuantity: stock(8), DiscountPrice: price(49.0), SKU: "JEAN-BLU-32"},
		{Name: "Rain Jacket", Description: "Waterproof shell jacket", Price: price(120), Category: "Outerwear", Brand: "Northline", Size: "L", Color: "Yellow", StockQuantity: stock(3), SKU: "JKT-YEL-L"},
	}

	for i := range products {
		saved, err := repo.Save(ctx, &products[i])
		if err != nil {
			logger.Error(ctx).Err(err).Str("name", products[i].Name).Msg("Error seeding product")
			continue
		}
		logger.Debug(ctx).Str("id", saved.ID).Str("name", saved.Name).Msg("Seeded product")
	}
}
