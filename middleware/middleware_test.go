package middleware

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signed(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func tokenRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", ValidateToken(secret), func(c *gin.Context) {
		id, _ := UserID(c)
		c.String(http.StatusOK, id)
	})
	return r
}

func TestValidateToken(t *testing.T) {
	valid := signed(t, jwt.MapClaims{"user_id": "guest_1", "exp": time.Now().Add(time.Hour).Unix()}, secret)
	expired := signed(t, jwt.MapClaims{"user_id": "guest_1", "exp": time.Now().Add(-time.Hour).Unix()}, secret)
	foreign := signed(t, jwt.MapClaims{"user_id": "guest_1"}, "other")
	noUser := signed(t, jwt.MapClaims{"role": "guest"}, secret)

	cases := []struct {
		name   string
		header string
		query  string
		status int
		body   string
	}{
		{name: "bearer", header: "Bearer " + valid, status: http.StatusOK, body: "guest_1"},
		{name: "bare", header: valid, status: http.StatusOK, body: "guest_1"},
		{name: "query", query: "?token=" + valid, status: http.StatusOK, body: "guest_1"},
		{name: "missing", status: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, status: http.StatusUnauthorized},
		{name: "wrong key", header: "Bearer " + foreign, status: http.StatusUnauthorized},
		{name: "no user id", header: "Bearer " + noUser, status: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			tokenRouter().ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.body != "" {
				assert.Equal(t, tc.body, w.Body.String())
			}
		})
	}
}

func TestValidateAPIKey(t *testing.T) {
	r := gin.New()
	r.GET("/admin", ValidateAPIKey("k1"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-API-KEY", "k1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin?api_key=k1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-API-KEY", "nope")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestValidateAPIKeyRejectsEverythingWhenUnset(t *testing.T) {
	r := gin.New()
	r.GET("/admin", ValidateAPIKey(""), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPaystackWebhookAuth(t *testing.T) {
	r := gin.New()
	r.POST("/hook", PaystackWebhookAuth("sk_test", zap.NewNop()), func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		raw, _ := c.Get(RawBodyKey)
		assert.Equal(t, body, raw)
		c.String(http.StatusOK, string(body))
	})

	payload := `{"event":"charge.success"}`
	mac := hmac.New(sha512.New, []byte("sk_test"))
	mac.Write([]byte(payload))
	good := hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(payload))
	req.Header.Set(PaystackSignatureHeader, good)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payload, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(payload))
	req.Header.Set(PaystackSignatureHeader, strings.Repeat("0", len(good)))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(payload)))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
