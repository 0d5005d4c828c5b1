package routes

import (
	"github.com/gin-gonic/gin"

	productcontroller "github.com/junaidrashid-git/storefront-api/controllers/product"
	searchControllers "github.com/junaidrashid-git/storefront-api/controllers/search"
)

func SetupProductRoutes(r *gin.Engine, deps Dependencies) {
	products := r.Group("/products")
	{
		products.GET("", productcontroller.GetProducts(deps.Products))
		products.GET("/search", searchControllers.SearchProducts(deps.Search, deps.SearchTracker))
		products.GET("/:id", productcontroller.GetProductByID(deps.Products))
	}
	r.GET("/categories", productcontroller.GetAllCategories(deps.Products))
}
