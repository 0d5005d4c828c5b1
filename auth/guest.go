// Package auth issues the guest identities that scope carts and checkouts.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/storefront-api/models"
)

const GuestTTL = 24 * time.Hour

// POST /auth/guest
func CreateGuestUser(db *gorm.DB, secret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		guestID, err := NewGuestID()
		if err != nil {
			logger.Error("guest id generation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create guest"})
			return
		}

		guest := models.GuestUser{
			ID:        guestID,
			ExpiresAt: time.Now().Add(GuestTTL),
		}
		if err := db.WithContext(c.Request.Context()).Create(&guest).Error; err != nil {
			logger.Error("failed to store guest", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create guest"})
			return
		}

		token, err := IssueGuestToken(secret, guestID, guest.ExpiresAt)
		if err != nil {
			logger.Error("guest token signing failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Token generation failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"guest_id":   guestID,
			"token":      token,
			"expires_at": guest.ExpiresAt,
		})
	}
}

// NewGuestID returns "guest_" followed by 32 random hex characters.
func NewGuestID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "read random bytes")
	}
	return "guest_" + hex.EncodeToString(buf), nil
}

func IssueGuestToken(secret, id string, expires time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	claims := jwt.MapClaims{
		"user_id": id,
		"role":    "guest",
		"exp":     expires.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
