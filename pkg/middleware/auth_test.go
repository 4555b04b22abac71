package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func setupAuthRouter(cfg *AuthConfig, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := append([]gin.HandlerFunc{Auth(cfg)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(ContextUserID),
			"role":    c.GetString(ContextRole),
		})
	})
	router.GET("/whoami", handlers...)
	return router
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	cfg := &AuthConfig{Secret: testSecret, Issuer: "eventbooking"}

	t.Run("valid token passes and sets identity", func(t *testing.T) {
		router := setupAuthRouter(cfg)
		token := signToken(t, jwt.MapClaims{
			"user_id": "user-001",
			"role":    "user",
			"iss":     "eventbooking",
			"exp":     time.Now().Add(time.Hour).Unix(),
		})

		w := doRequest(router, "Bearer "+token)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
		}
		body := w.Body.String()
		for _, want := range []string{"user-001", `"role":"user"`} {
			if !strings.Contains(body, want) {
				t.Errorf("body %s missing %q", body, want)
			}
		}
	})

	t.Run("wrong issuer is rejected", func(t *testing.T) {
		router := setupAuthRouter(cfg)
		token := signToken(t, jwt.MapClaims{
			"user_id": "user-001",
			"iss":     "somewhere-else",
			"exp":     time.Now().Add(time.Hour).Unix(),
		})

		w := doRequest(router, "Bearer "+token)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("missing issuer claim is rejected when issuer configured", func(t *testing.T) {
		router := setupAuthRouter(cfg)
		token := signToken(t, jwt.MapClaims{
			"user_id": "user-001",
			"exp":     time.Now().Add(time.Hour).Unix(),
		})

		w := doRequest(router, "Bearer "+token)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("no issuer check when unconfigured", func(t *testing.T) {
		router := setupAuthRouter(&AuthConfig{Secret: testSecret})
		token := signToken(t, jwt.MapClaims{
			"user_id": "user-001",
			"exp":     time.Now().Add(time.Hour).Unix(),
		})

		w := doRequest(router, "Bearer "+token)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})

	t.Run("subject claim fallback", func(t *testing.T) {
		router := setupAuthRouter(cfg)
		token := signToken(t, jwt.MapClaims{
			"sub": "user-002",
			"iss": "eventbooking",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		w := doRequest(router, "Bearer "+token)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if !strings.Contains(w.Body.String(), "user-002") {
			t.Errorf("body %s missing subject", w.Body.String())
		}
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		router := setupAuthRouter(cfg)
		token := signToken(t, jwt.MapClaims{
			"user_id": "user-001",
			"iss":     "eventbooking",
			"exp":     time.Now().Add(-time.Hour).Unix(),
		})

		w := doRequest(router, "Bearer "+token)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		router := setupAuthRouter(cfg)

		w := doRequest(router, "")

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		router := setupAuthRouter(cfg)

		w := doRequest(router, "Token abc")

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		router := setupAuthRouter(cfg)

		w := doRequest(router, "Bearer not.a.jwt")

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	cfg := &AuthConfig{Secret: testSecret, Issuer: "eventbooking"}
	router := setupAuthRouter(cfg, RequireRole("organizer", "super_admin"))

	tokenFor := func(role string) string {
		return signToken(t, jwt.MapClaims{
			"user_id": "user-001",
			"role":    role,
			"iss":     "eventbooking",
			"exp":     time.Now().Add(time.Hour).Unix(),
		})
	}

	t.Run("allowed role passes", func(t *testing.T) {
		w := doRequest(router, "Bearer "+tokenFor("organizer"))
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})

	t.Run("second allowed role passes", func(t *testing.T) {
		w := doRequest(router, "Bearer "+tokenFor("super_admin"))
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})

	t.Run("other role is forbidden", func(t *testing.T) {
		w := doRequest(router, "Bearer "+tokenFor("user"))
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})
}

