package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/storefront-api/checkout"
)

const (
	PaystackSignatureHeader = "x-paystack-signature"
	RawBodyKey              = "raw_body"
	maxWebhookBody          = 1 << 20
)

// PaystackWebhookAuth checks the HMAC-SHA512 signature Paystack puts on
// every webhook. The raw body is stored under RawBodyKey and restored on the
// request for the next handler.
func PaystackWebhookAuth(secretKey string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "failed to read webhook body"})
			return
		}

		signature := c.GetHeader(PaystackSignatureHeader)
		if signature == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "missing webhook signature"})
			return
		}
		if !checkout.VerifySignature(secretKey, body, signature) {
			logger.Warn("rejected paystack webhook", zap.String("ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid webhook signature"})
			return
		}

		c.Set(RawBodyKey, body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}
