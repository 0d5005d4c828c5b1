package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /categories
//
// Categories are labels on products; the list carries live product counts.
func GetAllCategories(store ProductStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := store.ListCategories(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}
