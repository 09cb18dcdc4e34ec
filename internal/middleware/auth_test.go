package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"orientation-service/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubAuthenticator struct {
	tokens map[string]*models.Principal
}

func (s stubAuthenticator) Authenticate(ctx context.Context, token string) (*models.Principal, error) {
	if p, ok := s.tokens[token]; ok {
		return p, nil
	}
	return nil, errors.New("invalid token")
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	auth := stubAuthenticator{tokens: map[string]*models.Principal{
		"student-token": {UserID: primitive.NewObjectID(), Role: models.RoleStudent},
		"admin-token":   {UserID: primitive.NewObjectID(), Role: models.RoleAdmin},
	}}

	r := gin.New()
	r.GET("/me", Authenticate(auth), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": PrincipalFrom(c).Role})
	})
	r.GET("/admin", Authenticate(auth), RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/public", RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()

	testCases := []struct {
		name     string
		path     string
		header   string
		expected int
	}{
		{"missing header", "/me", "", http.StatusUnauthorized},
		{"unknown token", "/me", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "/me", "Bearer student-token", http.StatusOK},
		{"token without scheme", "/me", "student-token", http.StatusOK},
		{"wrong role", "/admin", "Bearer student-token", http.StatusForbidden},
		{"right role", "/admin", "Bearer admin-token", http.StatusNoContent},
		{"role check without authentication", "/public", "", http.StatusUnauthorized},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.expected {
				t.Errorf("Expected status %d, got %d (%s)", tc.expected, w.Code, w.Body.String())
			}
		})
	}
}

func TestRequestTimeoutSetsDeadline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestTimeout(time.Second))
	r.GET("/", func(c *gin.Context) {
		if _, ok := c.Request.Context().Deadline(); !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected request context to carry a deadline")
	}
}
