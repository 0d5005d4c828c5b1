package cartControllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/storefront-api/apperrors"
	"github.com/junaidrashid-git/storefront-api/cart"
	"github.com/junaidrashid-git/storefront-api/catalog"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/realtime"
)

type AddItemInput struct {
	ProductID string `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type UpdateItemInput struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type RemoveItemInput struct {
	ProductID string `form:"product_id" binding:"required"`
	Size      string `form:"size"`
	Color     string `form:"color"`
}

func sessionCart(c *gin.Context, carts *cart.Registry) (*cart.Store, bool) {
	session, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return carts.Get(c.Request.Context(), session), true
}

// GET /cart
func GetCart(carts *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := sessionCart(c, carts)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, store.Snapshot())
	}
}

// POST /cart/items
//
// The price is read from the catalog here and frozen on the line.
func AddItem(carts *cart.Registry, products catalog.ProductFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := sessionCart(c, carts)
		if !ok {
			return
		}

		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		product, err := products.ProductByID(c.Request.Context(), strings.TrimSpace(input.ProductID))
		if errors.Is(err, catalog.ErrProductNotFound) {
			apperrors.Respond(c, apperrors.NotFound("Product does not exist"))
			return
		}
		if err != nil {
			apperrors.Respond(c, apperrors.Internal("Failed to validate product", err))
			return
		}
		if !offered(product.Sizes, input.Size) {
			apperrors.Respond(c, apperrors.Validation("Size not available for this product"))
			return
		}
		if !offered(product.Colors, input.Color) {
			apperrors.Respond(c, apperrors.Validation("Color not available for this product"))
			return
		}

		c.JSON(http.StatusCreated, store.Add(c.Request.Context(), *product, input.Size, input.Color))
	}
}

// PUT /cart/items
func UpdateItem(carts *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := sessionCart(c, carts)
		if !ok {
			return
		}

		var input UpdateItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		// an unknown line is left alone; the snapshot shows the cart as it is
		store.UpdateQuantity(c.Request.Context(), input.ProductID, input.Quantity, input.Size, input.Color)
		c.JSON(http.StatusOK, store.Snapshot())
	}
}

// DELETE /cart/items?product_id=&size=&color=
func RemoveItem(carts *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := sessionCart(c, carts)
		if !ok {
			return
		}

		var input RemoveItemInput
		if err := c.ShouldBindQuery(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		store.Remove(c.Request.Context(), input.ProductID, input.Size, input.Color)
		c.JSON(http.StatusOK, store.Snapshot())
	}
}

// DELETE /cart
func ClearCart(carts *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := sessionCart(c, carts)
		if !ok {
			return
		}
		store.Clear(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// GET /cart/checkout
func CheckoutPayload(carts *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := sessionCart(c, carts)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": store.ForCheckout()})
	}
}

// GET /cart/ws
func CartSocket(hub *realtime.Hub, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if err := hub.ServeSession(c.Writer, c.Request, session); err != nil {
			logger.Debug("cart websocket upgrade failed", zap.Error(err))
		}
	}
}

// offered reports whether choice is one of options. An empty choice, or a
// product without options, always passes.
func offered(options []string, choice string) bool {
	choice = strings.TrimSpace(choice)
	if choice == "" || len(options) == 0 {
		return true
	}
	for _, o := range options {
		if strings.EqualFold(strings.TrimSpace(o), choice) {
			return true
		}
	}
	return false
}
