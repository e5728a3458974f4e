package api

import (
	"aifitness/coach-app/internal/domain"
	"aifitness/coach-app/internal/service"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubAuthService issues a fixed token for any credentials.
type stubAuthService struct {
	token string
	user  *domain.User
}

func (s *stubAuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	return s.user, nil
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.token, s.user, nil
}

func (s *stubAuthService) GetUser(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return s.user, nil
}

func (s *stubAuthService) GetJWTSecret() string {
	return testSecret
}

func authTestEngine(cookieDomain string, cookieSecure bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc := &stubAuthService{
		token: "stub-token",
		user:  &domain.User{ID: primitive.NewObjectID(), Name: "Alex", Email: "alex@example.com", Role: domain.RoleUser},
	}
	handler := NewAuthHandler(svc, time.Hour, cookieDomain, cookieSecure)
	r.POST("/api/auth/login", handler.Login)
	r.POST("/api/auth/logout", handler.Logout)
	return r
}

func findAuthCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == AuthCookieName {
			return cookie
		}
	}
	t.Fatalf("no %s cookie in response", AuthCookieName)
	return nil
}

func TestLoginSetsConfiguredCookie(t *testing.T) {
	r := authTestEngine("app.example.com", true)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"alex@example.com","password":"password123"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	cookie := findAuthCookie(t, rec)
	if cookie.Value != "stub-token" {
		t.Errorf("cookie value = %q", cookie.Value)
	}
	if cookie.Domain != "app.example.com" {
		t.Errorf("cookie domain = %q, want app.example.com", cookie.Domain)
	}
	if !cookie.Secure {
		t.Error("cookie not marked Secure")
	}
	if !cookie.HttpOnly {
		t.Error("cookie not marked HttpOnly")
	}
	if cookie.MaxAge != int(time.Hour.Seconds()) {
		t.Errorf("cookie maxAge = %d", cookie.MaxAge)
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie sameSite = %v, want Lax", cookie.SameSite)
	}
}

func TestLoginCookieDefaults(t *testing.T) {
	// Local development serves plain HTTP with no explicit domain.
	r := authTestEngine("", false)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"alex@example.com","password":"password123"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	cookie := findAuthCookie(t, rec)
	if cookie.Domain != "" {
		t.Errorf("cookie domain = %q, want empty", cookie.Domain)
	}
	if cookie.Secure {
		t.Error("cookie marked Secure without TLS")
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	r := authTestEngine("app.example.com", true)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	cookie := findAuthCookie(t, rec)
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Errorf("cookie not cleared: value=%q maxAge=%d", cookie.Value, cookie.MaxAge)
	}
}

var _ service.AuthService = (*stubAuthService)(nil)
