package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/junaidrashid-git/storefront-api/cart"
)

func TestCartMutationsCounted(t *testing.T) {
	c := NewCollector("test")

	assert.NoError(t, c.Dispatch(cart.Changed{Operation: cart.OpAdd}))
	assert.NoError(t, c.Dispatch(cart.Changed{Operation: cart.OpAdd}))
	assert.NoError(t, c.Dispatch(cart.Changed{Operation: cart.OpClear}))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.CartMutations.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CartMutations.WithLabelValues("clear")))
}

func TestObserveSearchAndPayment(t *testing.T) {
	c := NewCollector("test")
	c.ObserveSearch(10*time.Millisecond, 3)
	c.ObserveSearch(5*time.Millisecond, 0)
	c.ObservePayment("initialize", nil)
	c.ObservePayment("verify", errors.New("timeout"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Searches))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.EmptySearches))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.PaymentAttempts.WithLabelValues("initialize", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.PaymentAttempts.WithLabelValues("verify", "failure")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := NewCollector("test")

	r := gin.New()
	r.Use(c.Middleware())
	r.GET("/products/:id", func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(c.Handler()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/abc", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/products/:id", "204")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_total")
}
