package productcontroller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/storefront-api/catalog"
	"github.com/junaidrashid-git/storefront-api/models"
)

// ProductPatch carries optional updates; absent fields are left alone.
type ProductPatch struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	SKU         *string         `json:"sku"`
	Price       *float64        `json:"price" binding:"omitempty,gte=0"`
	Category    *string         `json:"category"`
	Tags        []string        `json:"tags"`
	Colors      []string        `json:"colors"`
	Sizes       []string        `json:"sizes"`
	Stock       *int            `json:"stock" binding:"omitempty,gte=0"`
	Images      json.RawMessage `json:"images"`
}

func (p ProductPatch) apply(product *models.Product) {
	if p.Name != nil && strings.TrimSpace(*p.Name) != "" {
		product.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		product.Description = strings.TrimSpace(*p.Description)
	}
	if p.SKU != nil {
		product.SKU = strings.TrimSpace(*p.SKU)
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Category != nil {
		product.Category = strings.TrimSpace(*p.Category)
	}
	if p.Tags != nil {
		product.Tags = cleanList(p.Tags)
	}
	if p.Colors != nil {
		product.Colors = cleanList(p.Colors)
	}
	if p.Sizes != nil {
		product.Sizes = cleanList(p.Sizes)
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
	if len(p.Images) > 0 {
		product.Images = models.NormalizeImages(p.Images)
	}
}

// PUT /admin/products/:id
func UpdateProduct(store ProductStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch ProductPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		product, err := store.ProductByID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, catalog.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
			return
		}

		patch.apply(product)
		if err := store.SaveProduct(c.Request.Context(), product); err != nil {
			logger.Error("failed to update product", zap.String("id", product.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
