package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/campushq/uniportal-api/internal/models"
)

func guardedRouter(guard gin.HandlerFunc, claims *models.SessionClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/resources/:id", func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	}, guard, func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestAllowPermitsMatchingRole(t *testing.T) {
	claims := &models.SessionClaims{UserID: "u1", Role: models.RoleAdmin}
	router := guardedRouter(RequireRoles(models.RoleAdmin), claims)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/resources/r1", nil))
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestAllowRejectsOtherRole(t *testing.T) {
	claims := &models.SessionClaims{UserID: "u1", Role: models.RoleStudent}
	router := guardedRouter(RequireRoles(models.RoleAdmin, models.RoleTeacher), claims)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/resources/r1", nil))
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestAllowRejectsMissingClaims(t *testing.T) {
	router := guardedRouter(RequireRoles(models.RoleAdmin), nil)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/resources/r1", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAllowSelfMatchesProfileID(t *testing.T) {
	profileID := "stu-1"
	claims := &models.SessionClaims{UserID: "u1", Role: models.RoleStudent, ProfileID: &profileID}
	router := guardedRouter(Allow(string(models.RoleAdmin), "SELF"), claims)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/resources/stu-1", nil))
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestAllowSelfMatchesUserID(t *testing.T) {
	claims := &models.SessionClaims{UserID: "u1", Role: models.RoleStudent}
	router := guardedRouter(Allow("SELF"), claims)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/resources/u1", nil))
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestAllowSelfRejectsOtherTarget(t *testing.T) {
	profileID := "stu-1"
	claims := &models.SessionClaims{UserID: "u1", Role: models.RoleStudent, ProfileID: &profileID}
	router := guardedRouter(Allow(string(models.RoleAdmin), "SELF"), claims)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/resources/stu-2", nil))
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}
