package searchControllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/junaidrashid-git/storefront-api/search"
)

type searchResponse struct {
	search.Response
	Seq        uint64 `json:"seq"`
	Superseded bool   `json:"superseded,omitempty"`
}

// GET /products/search?q=&category=&client_id=
//
// Searches are tracked per client (client_id, or the caller's IP). A search
// overtaken by a newer one from the same client answers with only its seq
// and superseded=true.
func SearchProducts(engine *search.Engine, tracker *search.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		category := strings.TrimSpace(c.Query("category"))

		key := strings.TrimSpace(c.Query("client_id"))
		if key == "" {
			key = c.ClientIP()
		}

		resp, ticket, current := engine.SearchLatest(c.Request.Context(), tracker, key, query, category)
		if !current {
			c.JSON(http.StatusOK, gin.H{"seq": ticket.Seq, "superseded": true})
			return
		}

		c.JSON(http.StatusOK, searchResponse{Response: resp, Seq: ticket.Seq})
	}
}
