package orderControllers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/storefront-api/realtime"
)

// GET /admin/orders/ws streams order.placed events to the dashboard.
func OrderWebSocketHandler(hub *realtime.Hub, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := hub.ServeAdmin(c.Writer, c.Request); err != nil {
			logger.Debug("admin websocket upgrade failed", zap.Error(err))
		}
	}
}
