package productcontroller

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/storefront-api/models"
)

// ProductInput is the admin create payload. Images may be a URL, a list of
// URLs or a list of {url, alt, position} objects.
type ProductInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	SKU         string          `json:"sku"`
	Price       *float64        `json:"price" binding:"required,gte=0"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags"`
	Colors      []string        `json:"colors"`
	Sizes       []string        `json:"sizes"`
	Stock       int             `json:"stock" binding:"gte=0"`
	Images      json.RawMessage `json:"images"`
}

func (in ProductInput) toProduct() models.Product {
	return models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		SKU:         strings.TrimSpace(in.SKU),
		Price:       *in.Price,
		Category:    strings.TrimSpace(in.Category),
		Tags:        cleanList(in.Tags),
		Colors:      cleanList(in.Colors),
		Sizes:       cleanList(in.Sizes),
		Stock:       in.Stock,
		Images:      models.NormalizeImages(in.Images),
	}
}

// POST /admin/products
func CreateProduct(store ProductStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		product := input.toProduct()
		if err := store.CreateProduct(c.Request.Context(), &product); err != nil {
			logger.Error("failed to create product", zap.String("name", product.Name), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}
