package orderControllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/orders"
)

// OrderAdmin is the order repository surface the admin handlers use.
type OrderAdmin interface {
	ListOrders(ctx context.Context, f orders.Filter) ([]models.Order, error)
	OrderByReference(ctx context.Context, reference string) (*models.Order, error)
	UpdateStatus(ctx context.Context, reference string, status models.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, reference string, status models.PaymentStatus) error
	DeleteOrder(ctx context.Context, reference string) error
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

const maxPageSize = 200

// GET /admin/orders?status=&payment_status=&email=&days=&limit=&offset=
func GetAllOrdersHandler(repo OrderAdmin, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parseFilter(c, time.Now())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		list, err := repo.ListOrders(c.Request.Context(), filter)
		if err != nil {
			logger.Error("failed to list orders", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GET /admin/orders/:ref
func GetOrderHandler(repo OrderAdmin, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := repo.OrderByReference(c.Request.Context(), c.Param("ref"))
		if errors.Is(err, orders.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			logger.Error("failed to load order", zap.String("reference", c.Param("ref")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch order"})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// PUT /admin/orders/:ref/status
func UpdateOrderStatusHandler(repo OrderAdmin, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status, err := orders.ParseStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		err = repo.UpdateStatus(c.Request.Context(), c.Param("ref"), status)
		if !respondUpdate(c, logger, err, "failed to update order status") {
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully"})
	}
}

// PUT /admin/orders/:ref/payment-status
func UpdatePaymentStatusHandler(repo OrderAdmin, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdatePaymentStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status, err := orders.ParsePaymentStatus(req.PaymentStatus)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		err = repo.UpdatePaymentStatus(c.Request.Context(), c.Param("ref"), status)
		if !respondUpdate(c, logger, err, "failed to update payment status") {
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Payment status updated successfully"})
	}
}

// DELETE /admin/orders/:ref
func DeleteOrderHandler(repo OrderAdmin, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := repo.DeleteOrder(c.Request.Context(), c.Param("ref"))
		if !respondUpdate(c, logger, err, "failed to delete order") {
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
	}
}

func respondUpdate(c *gin.Context, logger *zap.Logger, err error, message string) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, orders.ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return false
	}
	logger.Error(message, zap.String("reference", c.Param("ref")), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	return false
}

func parseFilter(c *gin.Context, now time.Time) (orders.Filter, error) {
	f := orders.Filter{Email: strings.TrimSpace(c.Query("email"))}

	if s := c.Query("status"); s != "" {
		status, err := orders.ParseStatus(s)
		if err != nil {
			return f, err
		}
		f.Status = string(status)
	}
	if s := c.Query("payment_status"); s != "" {
		status, err := orders.ParsePaymentStatus(s)
		if err != nil {
			return f, err
		}
		f.PaymentStatus = string(status)
	}

	var err error
	if f.Limit, err = intParam(c, "limit", 50); err != nil {
		return f, err
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if f.Offset, err = intParam(c, "offset", 0); err != nil {
		return f, err
	}
	days, err := intParam(c, "days", 0)
	if err != nil {
		return f, err
	}
	if days > 0 {
		f.Since = now.AddDate(0, 0, -days)
	}
	return f, nil
}

func intParam(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + name)
	}
	return n, nil
}
