package main

import (
	"log"

	"github.com/Pinoccchio/InCloud-WEB-sub003/db"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/auth"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/changefeed"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/config"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/handlers"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/router"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/scheduler"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/services"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/snapshot"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	if cfg.DatabaseDSN == "" {
		log.Fatalf("DATABASE_DSN environment variable is not set")
	}

	if err := db.ConnectDatabase(cfg.DatabaseDSN); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisClient, err := config.NewRedisClient(cfg.Redis)

	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	feed := changefeed.NewRedisFeed(redisClient)
	store := services.NewNotificationStore(db.DB, feed)
	reader := snapshot.NewGormReader(db.DB)
	generator := services.NewAlertGenerator(db.DB, reader, store, redisClient)

	handlers.Initialize(generator, store, feed)

	if err := scheduler.Initialize(generator, store, cfg.Alerts.GenerationInterval, cfg.Alerts.RetentionHorizon); err != nil {
		log.Fatalf("Failed to start alert scheduler: %v", err)
	}
	defer scheduler.Shutdown()

	r := router.NewRouter()

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
