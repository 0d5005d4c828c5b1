package adminController

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/storefront-api/analytics"
)

type Dashboards interface {
	Dashboard(ctx context.Context, days int) (analytics.Dashboard, error)
}

// GET /admin/analytics?days=30
func GetDashboard(dashboards Dashboards, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		days := 30
		if raw := c.Query("days"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid days"})
				return
			}
			days = n
		}

		dashboard, err := dashboards.Dashboard(c.Request.Context(), days)
		if err != nil {
			logger.Error("failed to build dashboard", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard"})
			return
		}
		c.JSON(http.StatusOK, dashboard)
	}
}
