package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authRouter(key string) *gin.Engine {
	router := gin.New()
	router.Use(apiKeyAuth(key))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestAPIKeyAuth(t *testing.T) {
	router := authRouter("secret")

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "missing key rejected")

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(apiKeyHeader, "wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "wrong key rejected")

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(apiKeyHeader, "secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKeyAuth_DisabledWhenEmpty(t *testing.T) {
	router := authRouter("")

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
