package main

import (
	"context"
	"log"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"familyconnect/config"
	"familyconnect/middleware"
	"familyconnect/routes"
	"familyconnect/utils"
	"familyconnect/worker"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "SERVER: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry init failed: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Membership resolver doubles as the room authorizer for the hub.
	resolver := utils.NewResolver(config.DB)
	hub := utils.NewHub(resolver.Authorize, log.New(os.Stdout, "HUB: ", log.LstdFlags))

	// Push delivery: FCM sender behind a bounded worker queue.
	fcm := utils.NewFCMSender(ctx, config.AppConfig.FirebaseCredentialsFile, log.New(os.Stdout, "PUSH: ", log.LstdFlags))
	pushWorker := worker.NewPushWorker(fcm, log.New(os.Stdout, "PUSH: ", log.LstdFlags),
		config.AppConfig.PushQueueSize, config.AppConfig.PushWorkerCount)
	go pushWorker.Start(ctx)

	fanout := utils.NewFanOut(config.DB, hub, pushWorker, resolver, log.New(os.Stdout, "FANOUT: ", log.LstdFlags))
	invites := utils.NewInviteService(config.DB, fanout, resolver, log.New(os.Stdout, "INVITE: ", log.LstdFlags))
	grocery := utils.NewGroceryService(config.DB, fanout, log.New(os.Stdout, "GROCERY: ", log.LstdFlags))

	uploader, err := utils.NewUploader()
	if err != nil {
		logger.Fatalf("Failed to initialize uploader: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: utils.ErrorHandler,
	})

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup routes
	routes.SetupRoutes(app, routes.Deps{
		DB:       config.DB,
		Hub:      hub,
		FanOut:   fanout,
		Resolver: resolver,
		Invites:  invites,
		Grocery:  grocery,
		Uploader: uploader,
	})

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
