package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/salonflow-backend/config"
	"github.com/ikkim/salonflow-backend/internal/app/controller"
	"github.com/ikkim/salonflow-backend/internal/middleware"
)

type Router struct {
	authController        *controller.AuthController
	shopController        *controller.ShopController
	menuController        *controller.MenuController
	reservationController *controller.ReservationController
	analyticsController   *controller.AnalyticsController
	realtimeController    *controller.RealtimeController
	authMiddleware        *middleware.AuthMiddleware
	config                *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	shopController *controller.ShopController,
	menuController *controller.MenuController,
	reservationController *controller.ReservationController,
	analyticsController *controller.AnalyticsController,
	realtimeController *controller.RealtimeController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:        authController,
		shopController:        shopController,
		menuController:        menuController,
		reservationController: reservationController,
		analyticsController:   analyticsController,
		realtimeController:    realtimeController,
		authMiddleware:        authMiddleware,
		config:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "salonflow API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(r.authMiddleware.Authenticate())
		{
			auth.GET("/me", r.authController.GetMe)
			auth.POST("/sign-out", r.authController.SignOut)
		}

		shops := v1.Group("/shops")
		{
			shops.GET("/public", r.shopController.GetPublicShop)
			shops.GET("/:id", r.shopController.GetShop)
			shops.GET("/:id/menus", r.menuController.ListShopMenus)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate())
		{
			admin.GET("/shop", r.shopController.GetMyShop)
			admin.POST("/shop", r.shopController.CreateShop)
			admin.PUT("/shop", r.shopController.UpdateShop)

			menus := admin.Group("/menus")
			{
				menus.GET("", r.menuController.ListMyMenus)
				menus.POST("", r.menuController.CreateMenu)
				menus.POST("/reset-order", r.menuController.ResetSortOrder)
				menus.PUT("/:id", r.menuController.UpdateMenu)
				menus.DELETE("/:id", r.menuController.DeleteMenu)
				menus.POST("/:id/move-up", r.menuController.MoveMenuUp)
				menus.POST("/:id/move-down", r.menuController.MoveMenuDown)
			}

			admin.GET("/analytics",
				r.authMiddleware.RequireAdminEmail(),
				r.analyticsController.GetSummary,
			)
		}

		reservations := v1.Group("/reservations")
		{
			reservations.GET("/slots", r.reservationController.GetSlots)
			reservations.POST("",
				r.authMiddleware.OptionalAuthenticate(),
				r.reservationController.StartReservation,
			)
			reservations.GET("/:id", r.reservationController.GetReservation)
			reservations.PUT("/:id/menus", r.reservationController.SelectMenus)
			reservations.POST("/:id/next", r.reservationController.Next)
			reservations.PUT("/:id/schedule", r.reservationController.Schedule)
			reservations.POST("/:id/confirm", r.reservationController.Confirm)
			reservations.POST("/:id/back", r.reservationController.Back)
			reservations.POST("/:id/reset", r.reservationController.Reset)
			reservations.GET("/:id/calendar.ics", r.reservationController.DownloadICS)
			reservations.GET("/:id/qr.png", r.reservationController.DownloadQR)
			reservations.POST("/:id/artifacts", r.reservationController.PublishArtifacts)
			reservations.POST("/:id/sms", r.reservationController.SendSMS)
		}
	}

	router.GET("/ws/shops/:id/menus", r.realtimeController.SubscribeMenus)

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	wildcard := len(allowedOrigins) == 0
	for _, origin := range allowedOrigins {
		if origin == "*" {
			wildcard = true
		}
	}
	if wildcard {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = allowedOrigins
	}

	return cors.New(cfg)
}
