package main

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc-123", "abc-123", true},
		{"", "", false},
		{"Bearer ", "", false},
		{"Bearer    ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"bearer abc", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, ok := bearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	h := newTestHandler()
	router := gin.New()
	router.GET("/private", h.authMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := doJSON(t, router, http.MethodGet, "/private", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "missing or invalid authorization header", decodeError(t, w))
}

func TestAdminMiddleware(t *testing.T) {
	h := newTestHandler()
	withRole := func(role string) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set("user_id", 7)
			c.Set("role", role)
		}
	}
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	router := gin.New()
	router.GET("/as-user", withRole("user"), h.adminMiddleware(), ok)
	router.GET("/as-admin", withRole(roleAdmin), h.adminMiddleware(), ok)
	router.GET("/anonymous", h.adminMiddleware(), ok)

	w := doJSON(t, router, http.MethodGet, "/as-user", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "admin access required", decodeError(t, w))

	w = doJSON(t, router, http.MethodGet, "/anonymous", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodGet, "/as-admin", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
