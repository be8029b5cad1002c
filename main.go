package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"nexusretail/cache"
	"nexusretail/config"
	"nexusretail/database"
	"nexusretail/routes"
)

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	// Load configuration
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	// Optional integrations
	config.AppConfig.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	config.AppConfig.RedisAddr = os.Getenv("REDIS_ADDR")

	// Initialize database
	database.Connect(databaseURL)
	defer database.Close()
	database.InitSchema()

	// Initialize forecast cache (no-op when REDIS_ADDR is unset)
	cache.Connect(config.AppConfig.RedisAddr)
	defer cache.Close()

	app := fiber.New()

	// Add CORS middleware
	app.Use(cors.New())

	// Setup routes
	routes.SetupRoutes(app)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	log.Fatal(app.Listen(":" + port))
}
