package router

import (
	"time"

	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/handlers"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:3001", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/:branch_id", middleware.AuthMiddleware(), handlers.WebSocket)

		alerts := api.Group("/alerts", middleware.AuthMiddleware())
		{
			alerts.POST("/generate", middleware.RateLimit("10-M"), handlers.GenerateAlerts)
			alerts.GET("/generate", handlers.GenerationStatus)
		}

		notifications := api.Group("/notifications", middleware.AuthMiddleware())
		{
			notifications.GET("", handlers.GetNotifications)
			notifications.POST("/read-all", handlers.MarkAllNotificationsRead)
			notifications.PATCH("/:id/read", handlers.MarkNotificationRead)
			notifications.PATCH("/:id/acknowledge", handlers.AcknowledgeNotification)
			notifications.PATCH("/:id/resolve", handlers.ResolveNotification)
		}
	}

	return r
}
