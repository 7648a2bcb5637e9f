package main

import (
	"os"

	"github.com/collabdeck-dev/collabdeck/db"
	"github.com/collabdeck-dev/collabdeck/internal/auth"
	"github.com/collabdeck-dev/collabdeck/internal/logging"
	"github.com/collabdeck-dev/collabdeck/internal/router"
	"github.com/collabdeck-dev/collabdeck/internal/scheduler"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logging.Logger.Warnf("No .env file loaded: %v", err)
	}

	logging.InitLogger()

	if err := auth.InitJWTSecret(); err != nil {
		logging.Logger.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	if err := db.ConnectDatabase(os.Getenv("DATABASE_URL")); err != nil {
		logging.Logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		logging.Logger.Fatalf("Failed to migrate database: %v", err)
	}

	scheduler.Initialize()
	defer scheduler.Shutdown()

	r := router.NewRouter()

	port := os.Getenv("PORT")

	if port == "" {
		port = "3000"
		logging.Logger.Info("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		logging.Logger.Fatalf("Failed to start server: %v", err)
	}
}
