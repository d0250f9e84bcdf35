package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopcraft/api/internal/logging"
	"github.com/shopcraft/api/internal/server/config"
	"github.com/shopcraft/api/internal/server/models"
)

// Handlers groups the endpoint handlers the router mounts.
type Handlers struct {
	Auth    *AuthHandler
	Catalog *CatalogHandler
	Orders  *OrderHandler
}

// NewRouter builds the gin engine with all middleware and routes mounted.
func NewRouter(cfg *config.Config, logger logging.Logger, h Handlers) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(CORS(cfg.CORSOrigins))
	r.Use(Observe())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "UP",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   "shopcraft-api",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	secret := []byte(cfg.JWTSecret)
	authed := Authenticate(secret)
	adminOnly := RequireRoles(models.RoleAdmin)

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", authed, h.Auth.Me)
	}

	productsGroup := v1.Group("/products")
	{
		productsGroup.GET("", h.Catalog.ListProducts)
		productsGroup.GET("/:id", h.Catalog.GetProduct)
		productsGroup.POST("", authed, adminOnly, h.Catalog.CreateProduct)
	}

	categoriesGroup := v1.Group("/categories")
	{
		categoriesGroup.GET("", h.Catalog.ListCategories)
		categoriesGroup.POST("", authed, adminOnly, h.Catalog.CreateCategory)
	}

	ordersGroup := v1.Group("/orders", authed)
	{
		ordersGroup.POST("", h.Orders.Place)
		ordersGroup.GET("/me", h.Orders.MyOrders)
		ordersGroup.GET("", adminOnly, h.Orders.List)
		ordersGroup.GET("/:id", h.Orders.Get)
		ordersGroup.PATCH("/:id/status", adminOnly, h.Orders.UpdateStatus)
	}

	return r
}
