package main

import (
	"os"

	"gotalk/server/internal/cache"
	"gotalk/server/internal/database"
	"gotalk/server/internal/handlers"
	"gotalk/server/internal/history"
	"gotalk/server/internal/middleware"
	"gotalk/server/internal/partner"
	"gotalk/server/internal/presence"
	"gotalk/server/internal/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logrus.SetLevel(level)
	}

	// Connect to database
	if err := database.Connect(); err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logrus.Fatalf("Failed to apply schema: %v", err)
	}

	// Connect to redis (presence and view history)
	if err := cache.Connect(); err != nil {
		logrus.Fatalf("Failed to connect to redis: %v", err)
	}
	defer cache.Close()

	store := cache.NewStore(cache.Client)
	tracker := presence.NewFromEnv(store)
	visits := history.New(store, history.DefaultTTL)
	partnerService := partner.NewService(partner.NewRepository(database.Pool))
	handlers.Init(partnerService, visits)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Gotalk API v1.0",
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000",
		AllowCredentials: true,
	}))
	app.Use(middleware.OptionalAuth)
	app.Use(middleware.OnlineNow(tracker))

	// Setup routes
	routes.SetupRoutes(app)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logrus.Infof("Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		logrus.Fatal(err)
	}
}
