package checkoutControllers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/storefront-api/apperrors"
	"github.com/junaidrashid-git/storefront-api/checkout"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// Payments is the checkout flow the handlers drive.
type Payments interface {
	Begin(ctx context.Context, session string, req checkout.Request) (*checkout.Handoff, error)
	Confirm(ctx context.Context, session, reference string) (*checkout.Confirmation, error)
	HandleWebhook(ctx context.Context, body []byte) error
}

// POST /checkout
func PlaceOrder(payments Payments) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var req checkout.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		handoff, err := payments.Begin(c.Request.Context(), session, req)
		if err != nil {
			apperrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, handoff)
	}
}

// GET /checkout/verify/:reference
func VerifyPayment(payments Payments) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		confirmation, err := payments.Confirm(c.Request.Context(), session, c.Param("reference"))
		if err != nil {
			apperrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, confirmation)
	}
}

// POST /payment/webhook
//
// Runs behind middleware.PaystackWebhookAuth. Events for unknown orders are
// acknowledged so Paystack stops retrying them; upstream failures are not.
func PaystackWebhook(payments Payments, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if raw, ok := c.Get(middleware.RawBodyKey); ok {
			body, _ = raw.([]byte)
		} else {
			var err error
			if body, err = io.ReadAll(c.Request.Body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read webhook body"})
				return
			}
		}

		err := payments.HandleWebhook(c.Request.Context(), body)
		switch {
		case err == nil:
		case apperrors.KindOf(err) == apperrors.KindNotFound:
			logger.Warn("webhook for unknown order", zap.Error(err))
		default:
			logger.Error("paystack webhook failed", zap.Error(err))
			apperrors.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
