package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"storefront/internal/apiclient"
	"storefront/internal/cart"
	"storefront/internal/config"
	"storefront/internal/gallery"
	"storefront/internal/handlers"
	"storefront/internal/repositories"
	"storefront/internal/session"
	"storefront/internal/workflow"
	"storefront/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, cleanup, err := newApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer cleanup()

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// newApp wires every component from cfg. cleanup releases the store and the broker connection.
func newApp(cfg *config.Config) (*fiber.App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// --- Storage ---
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, closeStore)

	// --- Backend client ---
	client, err := apiclient.New(apiclient.Config{BaseURL: cfg.BackendBaseURL, Timeout: cfg.RequestTimeout})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	// --- Order events ---
	// Publishing is optional: without RABBITMQ_URL the workflow runs without events.
	var publisher workflow.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("Failed to initialize RabbitMQ client, order events disabled: %v", err)
		} else {
			publisher = mqClient
			closers = append(closers, func() {
				if err := mqClient.Close(); err != nil {
					log.Printf("Error closing RabbitMQ client: %v", err)
				}
			})
		}
	}

	// --- Carts ---
	// Carts idle for longer than a session lives belong to expired sessions.
	carts := cart.NewRegistry()
	closers = append(closers, carts.StartEviction(cfg.SessionTTL, time.Minute))

	// --- Fiber App ---
	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New()) // Request logger
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// --- API Routes ---
	handlers.RegisterRoutes(app, handlers.Dependencies{
		Client:   client,
		Sessions: session.NewManager(store, client, cfg.SessionSecret, cfg.SessionTTL),
		Carts:    carts,
		Workflow: workflow.NewController(client.Orders, publisher, cfg.NotifyDeepLinkBase),
		Gallery:  gallery.New(store),
	})

	// --- Health Check and Metrics Endpoints ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"time":    time.Now().Format(time.RFC3339),
			"store":   cfg.StoreDriver,
			"backend": cfg.BackendBaseURL,
			"events":  publisher != nil,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return app, cleanup, nil
}

// openStore opens the key-value store selected by STORE_DRIVER.
func openStore(cfg *config.Config) (repositories.KVRepository, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		return repositories.NewMemoryKVRepository(), func() {}, nil
	case "postgres", "sqlite":
		dsn, path := "", cfg.StorePath
		if cfg.StoreDriver == "postgres" {
			dsn = cfg.DatabaseDSN
		}
		db, err := repositories.OpenDB(dsn, path)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			sqlDB, err := db.DB()
			if err != nil {
				return
			}
			if err := sqlDB.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}
		return repositories.NewGORMKVRepository(db), closeDB, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// errorHandler renders errors that escaped a handler in the handlers' body shape.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{
		"message": utils.StatusMessage(code),
		"error":   err.Error(),
	})
}
