// README: Admin auth middleware tests with signed HS256 tokens.
package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"

	"feastly/internal/http/middleware"
)

const testSecret = "test-secret"

func newTestRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.AdminAuth(secret))
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"actor": middleware.Actor(c)})
	})
	return r
}

func signToken(t *testing.T, secret, name, kind string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"name": name,
		"kind": kind,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuth_MissingHeader(t *testing.T) {
	w := doGet(newTestRouter(testSecret), "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAdminAuth_WrongScheme(t *testing.T) {
	w := doGet(newTestRouter(testSecret), "Token abc")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAdminAuth_BadSignature(t *testing.T) {
	tok := signToken(t, "other-secret", "eve", "admin")
	w := doGet(newTestRouter(testSecret), "Bearer "+tok)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAdminAuth_ExpiredToken(t *testing.T) {
	claims := jwt.MapClaims{
		"name": "alice",
		"kind": "admin",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	w := doGet(newTestRouter(testSecret), "Bearer "+tok)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAdminAuth_NonAdminKind(t *testing.T) {
	tok := signToken(t, testSecret, "bob", "driver")
	w := doGet(newTestRouter(testSecret), "Bearer "+tok)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestAdminAuth_ValidToken(t *testing.T) {
	tok := signToken(t, testSecret, "alice", "admin")
	w := doGet(newTestRouter(testSecret), "Bearer "+tok)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := w.Body.String(); body != `{"actor":"alice"}` {
		t.Errorf("body = %s", body)
	}
}
