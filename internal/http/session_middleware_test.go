package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"ginutri/internal/service"
)

func TestSessionAuthMiddleware_AllowsValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewSessionTokenService("secret", time.Hour)
	token, _, err := tokens.Issue("s1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := gin.New()
	r.GET("/protected", SessionAuthMiddleware(tokens), func(c *gin.Context) {
		id, ok := GetSessionID(c)
		if !ok || id != "s1" {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestSessionAuthMiddleware_Rejects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewSessionTokenService("secret", time.Hour)
	other, _, _ := service.NewSessionTokenService("other", time.Hour).Issue("s1")

	cases := map[string]string{
		"missing header": "",
		"basic scheme":   "Basic abc",
		"foreign token":  "Bearer " + other,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			r := gin.New()
			r.GET("/protected", SessionAuthMiddleware(tokens), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestSessionAuthMiddleware_NotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", SessionAuthMiddleware(nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
