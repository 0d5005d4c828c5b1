package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/storefront-api/catalog"
)

const maxPageSize = 100

// GET /products?search=&category=&min_price=&max_price=&sort_by=&order=&limit=&offset=
func GetProducts(store ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := catalog.ListFilter{
			Search:   strings.TrimSpace(c.Query("search")),
			Category: strings.TrimSpace(c.Query("category")),
			SortBy:   c.DefaultQuery("sort_by", "created_at"),
			Order:    strings.ToLower(c.DefaultQuery("order", "desc")),
			Limit:    maxPageSize,
		}

		for _, p := range []struct {
			name string
			dst  **float64
		}{{"min_price", &filter.MinPrice}, {"max_price", &filter.MaxPrice}} {
			raw := c.Query(p.name)
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + p.name})
				return
			}
			*p.dst = &v
		}

		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
				return
			}
			filter.Limit = min(n, maxPageSize)
		}
		if raw := c.Query("offset"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offset"})
				return
			}
			filter.Offset = n
		}

		products, err := store.ListProducts(c.Request.Context(), filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}
		c.JSON(http.StatusOK, products)
	}
}
