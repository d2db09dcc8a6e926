package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/resumatch/backend/config"
	"github.com/resumatch/backend/models"
)

func testService() *JWTService {
	return NewJWTService(&config.Config{
		JWTSecret:      "test-secret",
		JWTExpiryHours: 1,
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	service := testService()

	token, err := service.GenerateToken(&models.User{
		ID:    "jane@example.com",
		Email: "jane@example.com",
		Name:  "Jane Doe",
	})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := service.ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}

	if claims.UserID != "jane@example.com" || claims.Name != "Jane Doe" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := testService().GenerateToken(&models.User{ID: "u1", Email: "u1@example.com"})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	other := NewJWTService(&config.Config{JWTSecret: "different", JWTExpiryHours: 1})
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatalf("expected validation to fail with a different secret")
	}
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := testService()

	router := gin.New()
	router.GET("/protected", AuthMiddleware(service), func(c *gin.Context) {
		claims := GetAuthClaims(c)
		c.JSON(http.StatusOK, gin.H{"email": claims.Email})
	})

	// no header
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	// valid token
	token, err := service.GenerateToken(&models.User{ID: "u1", Email: "u1@example.com"})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", w.Code)
	}
}
