package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront-backend/internal/shared/middleware"
	"storefront-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.ClientIPMiddleware(),
		middleware.Logger(),
		middleware.Metrics(),
		middleware.CORS(c.Config.CORS.AllowedOrigins),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupUserRoutes(v1, c)
		setupProductRoutes(v1, c)
		setupCartRoutes(v1, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.UserHandler.Register)
		auth.POST("/login", c.UserHandler.Login)
		auth.POST("/logout", middleware.AuthMiddleware(c.JWTManager), c.UserHandler.Logout)
		auth.POST("/forgot-password", c.UserHandler.ForgotPassword)
		auth.POST("/reset-password/:token", c.UserHandler.ResetPassword)
	}
}

// ========================================
// USER ROUTES
// ========================================
func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container) {
	users := v1.Group("/users")
	users.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		users.GET("/me", c.UserHandler.GetProfile)
	}
}

// ========================================
// PRODUCT ROUTES
// ========================================
func setupProductRoutes(v1 *gin.RouterGroup, c *container.Container) {
	products := v1.Group("/products")
	{
		products.GET("", c.ProductHandler.List)
		products.GET("/:id", c.ProductHandler.Get)
	}

	admin := v1.Group("/products")
	admin.Use(middleware.AuthMiddleware(c.JWTManager), middleware.AdminMiddleware())
	{
		admin.GET("/export", c.ProductHandler.Export)
		admin.POST("", c.ProductHandler.Create)
		admin.PUT("/:id", c.ProductHandler.Update)
		admin.DELETE("/:id", c.ProductHandler.Delete)
	}
}

// ========================================
// CART ROUTES
// ========================================
// Optional auth: a token selects the account cart, otherwise the guest
// cart keyed by the session cookie is used
func setupCartRoutes(v1 *gin.RouterGroup, c *container.Container) {
	sessionConfig := middleware.DefaultSessionConfig()
	sessionConfig.CookieSecure = c.Config.Cart.SessionSecureCookie

	cart := v1.Group("/cart")
	cart.Use(
		middleware.OptionalAuthMiddleware(c.JWTManager),
		middleware.SessionMiddleware(sessionConfig),
	)
	{
		cart.GET("", c.CartHandler.GetCart)
		cart.POST("/add", c.CartHandler.AddItem)
		cart.DELETE("/remove/:productId", c.CartHandler.RemoveItem)
		cart.PUT("/update", c.CartHandler.UpdateQuantity)
		cart.POST("/discount", c.CartHandler.ApplyDiscount)
		cart.DELETE("/discount", c.CartHandler.RemoveDiscount)
		cart.DELETE("", c.CartHandler.ClearCart)
		cart.POST("/sync", c.CartHandler.SyncCart)
	}
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		dbStatus := "ok"
		if err := appCtx.DB.Ping(ctx); err != nil {
			dbStatus = "error: " + err.Error()
			status = "degraded"
		}

		redisStatus := "ok"
		if err := appCtx.Redis.HealthCheck(ctx); err != nil {
			redisStatus = "error: " + err.Error()
			status = "degraded"
		}

		health := gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"services": gin.H{
				"database": dbStatus,
				"redis":    redisStatus,
			},
		}
		if stats, err := appCtx.DB.Stats(); err == nil {
			health["pool"] = stats
		}

		statusCode := http.StatusOK
		if status != "ok" {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, health)
	}
}
