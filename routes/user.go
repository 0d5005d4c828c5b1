package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/junaidrashid-git/storefront-api/controllers/cart"
	checkoutControllers "github.com/junaidrashid-git/storefront-api/controllers/checkout"
	userControllers "github.com/junaidrashid-git/storefront-api/controllers/user"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupUserRoutes registers the session-scoped endpoints. The JWT user_id
// is the cart session.
func SetupUserRoutes(r *gin.Engine, deps Dependencies) {
	session := r.Group("")
	session.Use(middleware.ValidateToken(deps.Config.JWTSecret))
	{
		cartGroup := session.Group("/cart")
		{
			cartGroup.GET("", cartControllers.GetCart(deps.Carts))
			cartGroup.DELETE("", cartControllers.ClearCart(deps.Carts))
			cartGroup.POST("/items", cartControllers.AddItem(deps.Carts, deps.Finder))
			cartGroup.PUT("/items", cartControllers.UpdateItem(deps.Carts))
			cartGroup.DELETE("/items", cartControllers.RemoveItem(deps.Carts))
			cartGroup.GET("/checkout", cartControllers.CheckoutPayload(deps.Carts))
			cartGroup.GET("/ws", cartControllers.CartSocket(deps.Hub, deps.Logger))
		}

		checkoutGroup := session.Group("/checkout")
		{
			checkoutGroup.POST("", checkoutControllers.PlaceOrder(deps.Checkout))
			checkoutGroup.GET("/verify/:reference", checkoutControllers.VerifyPayment(deps.Checkout))
		}

		session.GET("/user/orders", userControllers.GetUserOrders(deps.Orders, deps.Logger))
	}
}
