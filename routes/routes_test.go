package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/junaidrashid-git/storefront-api/cart"
	"github.com/junaidrashid-git/storefront-api/config"
	"github.com/junaidrashid-git/storefront-api/metrics"
	"github.com/junaidrashid-git/storefront-api/realtime"
	"github.com/junaidrashid-git/storefront-api/search"
)

func testEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	r := gin.New()
	SetupRoutes(r, Dependencies{
		Config:        &config.Config{JWTSecret: "jwt", AdminAPIKey: "key", PaystackSecretKey: "sk"},
		Logger:        logger,
		Search:        search.NewEngine(nil, logger),
		SearchTracker: search.NewTracker(),
		Carts:         cart.NewRegistry(cart.NewMemoryPersister(), nil, logger),
		Hub:           realtime.NewHub(logger),
		Metrics:       metrics.NewCollector("storefront"),
	})
	return r
}

func TestRouteGuards(t *testing.T) {
	r := testEngine()

	cases := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/products/search?q=", http.StatusOK},
		{http.MethodGet, "/cart", http.StatusUnauthorized},
		{http.MethodPost, "/checkout", http.StatusUnauthorized},
		{http.MethodGet, "/user/orders", http.StatusUnauthorized},
		{http.MethodGet, "/admin/orders", http.StatusUnauthorized},
		{http.MethodGet, "/admin/analytics", http.StatusUnauthorized},
		{http.MethodPost, "/admin/media", http.StatusUnauthorized},
		{http.MethodPost, "/payment/webhook", http.StatusForbidden},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.status, w.Code, "%s %s", tc.method, tc.path)
	}
}
