package routes

import (
	"github.com/gin-gonic/gin"

	checkoutControllers "github.com/junaidrashid-git/storefront-api/controllers/checkout"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

func SetupPaymentRoutes(r *gin.Engine, deps Dependencies) {
	payment := r.Group("/payment")
	{
		payment.POST("/webhook",
			middleware.PaystackWebhookAuth(deps.Config.PaystackSecretKey, deps.Logger),
			checkoutControllers.PaystackWebhook(deps.Checkout, deps.Logger),
		)
	}
}
