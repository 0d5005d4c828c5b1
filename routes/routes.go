package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/storefront-api/cart"
	"github.com/junaidrashid-git/storefront-api/catalog"
	"github.com/junaidrashid-git/storefront-api/config"
	adminController "github.com/junaidrashid-git/storefront-api/controllers/admin"
	checkoutControllers "github.com/junaidrashid-git/storefront-api/controllers/checkout"
	productcontroller "github.com/junaidrashid-git/storefront-api/controllers/product"
	"github.com/junaidrashid-git/storefront-api/metrics"
	"github.com/junaidrashid-git/storefront-api/orders"
	"github.com/junaidrashid-git/storefront-api/realtime"
	"github.com/junaidrashid-git/storefront-api/search"
)

// Dependencies is everything the route groups hand to their handlers.
type Dependencies struct {
	DB     *gorm.DB
	Config *config.Config
	Logger *zap.Logger

	Search        *search.Engine
	SearchTracker *search.Tracker
	Products      productcontroller.ProductStore
	Finder        catalog.ProductFinder

	Carts      *cart.Registry
	Hub        *realtime.Hub
	Checkout   checkoutControllers.Payments
	Orders     *orders.Repository
	Dashboards adminController.Dashboards
	Media      adminController.MediaLibrary
	Metrics    *metrics.Collector
}

// SetupRoutes is the single entry point that wires up every route group.
func SetupRoutes(r *gin.Engine, deps Dependencies) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// Public auth routes (no middleware)
	SetupAuthRoutes(r, deps)

	// Catalog browsing and search
	SetupProductRoutes(r, deps)

	// Cart, checkout and order history (JWT-protected)
	SetupUserRoutes(r, deps)

	// Admin routes (API-key-protected)
	SetupAdminRoutes(r, deps)

	// Paystack webhook
	SetupPaymentRoutes(r, deps)
}
