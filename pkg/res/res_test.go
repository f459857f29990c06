package res

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dhoini/course-marketplace/internal/domain"
	"github.com/Dhoini/course-marketplace/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, StatusOf(domain.Unauthenticated("x")))
	assert.Equal(t, http.StatusForbidden, StatusOf(domain.Forbidden("x")))
	assert.Equal(t, http.StatusBadRequest, StatusOf(domain.BadRequest("x")))
	assert.Equal(t, http.StatusNotFound, StatusOf(domain.NotFound("x")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
}

func TestOK(t *testing.T) {
	c, w := newContext()
	OK(c, "Courses retrieved successfully", []string{"a"})

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Courses retrieved successfully", body["message"])
	assert.Equal(t, []any{"a"}, body["data"])
}

func TestError_HidesInternalCause(t *testing.T) {
	c, w := newContext()
	Error(c, errors.New("pq: connection refused"), logger.Discard())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal server error"}`, w.Body.String())
	assert.True(t, c.IsAborted())
}

func TestError_Forbidden(t *testing.T) {
	c, w := newContext()
	Error(c, domain.Forbidden("Unauthorized"), logger.Discard())

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Unauthorized"}`, w.Body.String())
}
