package apperrors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindSurvivesWrapping(t *testing.T) {
	err := pkgerrors.Wrap(NotFound("Order not found"), "confirm payment")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.Equal(t, "Order not found", Message(err))

	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, "Internal server error", Message(errors.New("boom")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Upstream("Payment provider unavailable", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadGateway, StatusCode(err))
}

type fieldErr struct{}

func (fieldErr) Error() string                  { return "invalid" }
func (fieldErr) FieldErrors() map[string]string { return map[string]string{"email": "is required"} }

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Respond(c, &AppError{Kind: KindValidation, Message: "Invalid checkout details", Err: fieldErr{}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid checkout details", body["error"])
	assert.Equal(t, map[string]any{"email": "is required"}, body["fields"])
}
