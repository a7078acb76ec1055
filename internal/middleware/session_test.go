package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/campushq/uniportal-api/internal/service"
)

func sessionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	authService := service.NewAuthService(nil, nil, nil, nil, nil, service.AuthConfig{
		Secret:   "test-secret",
		Lifetime: time.Hour,
		Issuer:   "portal-test",
	})
	router := gin.New()
	router.GET("/protected", Session(authService), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestSessionRejectsMissingHeader(t *testing.T) {
	router := sessionRouter()
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestSessionRejectsMalformedHeader(t *testing.T) {
	router := sessionRouter()

	for _, header := range []string{"Bearer", "Token abc.def.ghi", "bearer"} {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code, "header %q", header)
	}
}

func TestSessionRejectsGarbageToken(t *testing.T) {
	router := sessionRouter()
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
