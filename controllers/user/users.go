package userControllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/orders"
)

type OrderLister interface {
	ListOrders(ctx context.Context, f orders.Filter) ([]models.Order, error)
}

// GET /user/orders lists the orders placed from the caller's session,
// newest first.
func GetUserOrders(repo OrderLister, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		list, err := repo.ListOrders(c.Request.Context(), orders.Filter{SessionID: session, Limit: 100})
		if err != nil {
			logger.Error("failed to list session orders", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}
