package routes

import (
	"github.com/gin-gonic/gin"

	adminController "github.com/junaidrashid-git/storefront-api/controllers/admin"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	productcontroller "github.com/junaidrashid-git/storefront-api/controllers/product"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires API-Key middleware.
func SetupAdminRoutes(r *gin.Engine, deps Dependencies) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey(deps.Config.AdminAPIKey))
	{
		// Product management
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.GET("", productcontroller.GetProducts(deps.Products))
			productAdmin.POST("", productcontroller.CreateProduct(deps.Products, deps.Logger))
			productAdmin.PUT("/:id", productcontroller.UpdateProduct(deps.Products, deps.Logger))
			productAdmin.DELETE("/:id", productcontroller.DeleteProduct(deps.Products, deps.Logger))
			productAdmin.POST("/import", productcontroller.ImportProductsFromExcel(deps.Products, deps.Logger))
			productAdmin.GET("/export", productcontroller.ExportProductsToExcel(deps.Products))
		}

		// Orders, keyed by reference
		orderAdmin := adminGroup.Group("/orders")
		{
			orderAdmin.GET("", orderControllers.GetAllOrdersHandler(deps.Orders, deps.Logger))
			orderAdmin.GET("/:ref", orderControllers.GetOrderHandler(deps.Orders, deps.Logger))
			orderAdmin.PUT("/:ref/status", orderControllers.UpdateOrderStatusHandler(deps.Orders, deps.Logger))
			orderAdmin.PUT("/:ref/payment-status", orderControllers.UpdatePaymentStatusHandler(deps.Orders, deps.Logger))
			orderAdmin.DELETE("/:ref", orderControllers.DeleteOrderHandler(deps.Orders, deps.Logger))
		}
		adminGroup.GET("/ws/orders", orderControllers.OrderWebSocketHandler(deps.Hub, deps.Logger))

		adminGroup.GET("/analytics", adminController.GetDashboard(deps.Dashboards, deps.Logger))

		mediaAdmin := adminGroup.Group("/media")
		{
			mediaAdmin.POST("", adminController.UploadMedia(deps.Media, deps.Logger))
			mediaAdmin.GET("", adminController.ListMedia(deps.Media))
			mediaAdmin.DELETE("/:id", adminController.DeleteMedia(deps.Media, deps.Logger))
		}
	}
}
