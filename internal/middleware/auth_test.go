package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/SM8970/Earn-FF-Diamond/internal/apperr"
	"github.com/SM8970/Earn-FF-Diamond/internal/config"
	"github.com/SM8970/Earn-FF-Diamond/internal/services"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, *services.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{JWTSecret: "test-secret"}
	jwtService := services.NewJWTService(cfg)

	router := gin.New()
	router.GET("/protected", AuthMiddleware(jwtService), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":    c.GetString("user_id"),
			"session_id": c.GetString("session_id"),
		})
	})

	return router, jwtService
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
	return body
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if code, ok := body["code"].(float64); !ok || int(code) != apperr.CodeAuth {
		t.Errorf("Expected auth error code %d, got %v", apperr.CodeAuth, body["code"])
	}
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "NotBearer abc123")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if code, ok := body["code"].(float64); !ok || int(code) != apperr.CodeAuth {
		t.Errorf("Expected auth error code %d, got %v", apperr.CodeAuth, body["code"])
	}
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if code, ok := body["code"].(float64); !ok || int(code) != apperr.CodeAuth {
		t.Errorf("Expected auth error code %d, got %v", apperr.CodeAuth, body["code"])
	}
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	router, jwtService := setupAuthRouter(t)

	token, err := jwtService.GenerateToken("user_123", "sess_456")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	body := decodeBody(t, w)
	if body["user_id"] != "user_123" {
		t.Errorf("Expected user_id user_123, got %v", body["user_id"])
	}
	if body["session_id"] != "sess_456" {
		t.Errorf("Expected session_id sess_456, got %v", body["session_id"])
	}
}

func TestAuthMiddlewareQueryToken(t *testing.T) {
	router, jwtService := setupAuthRouter(t)

	token, err := jwtService.GenerateToken("user_123", "sess_456")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}
