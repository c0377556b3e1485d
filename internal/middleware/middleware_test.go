package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"jobboard/internal/domain"
	"jobboard/internal/security"
)

const testSecret = "middleware-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	handlers = append(handlers, func(c *gin.Context) {
		caller, _ := CallerFromContext(c)
		c.String(http.StatusOK, caller.ID.String())
	})
	r.GET("/", handlers...)
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func issue(t *testing.T, role domain.Role) (domain.Caller, string) {
	t.Helper()
	caller := domain.Caller{ID: uuid.New(), Name: "Sam", Role: role}
	token, err := security.IssueToken(testSecret, caller, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return caller, "Bearer " + token
}

func TestAuthenticate(t *testing.T) {
	r := newRouter(Authenticate(testSecret))
	caller, token := issue(t, domain.RoleUser)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer   ", http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"valid", token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.header)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if tt.status == http.StatusOK && w.Body.String() != caller.ID.String() {
				t.Fatalf("caller id = %s", w.Body.String())
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	r := newRouter(Authenticate(testSecret), RequireRoles(domain.RoleEmployer, domain.RoleAdmin))

	_, userToken := issue(t, domain.RoleUser)
	_, employerToken := issue(t, domain.RoleEmployer)
	_, adminToken := issue(t, domain.RoleAdmin)

	if w := do(r, userToken); w.Code != http.StatusForbidden {
		t.Fatalf("user status = %d", w.Code)
	}
	if w := do(r, employerToken); w.Code != http.StatusOK {
		t.Fatalf("employer status = %d", w.Code)
	}
	if w := do(r, adminToken); w.Code != http.StatusOK {
		t.Fatalf("admin status = %d", w.Code)
	}
}

func TestRequireRolesWithoutAuthenticate(t *testing.T) {
	r := newRouter(RequireRoles(domain.RoleUser))
	if w := do(r, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestLocalLimiter(t *testing.T) {
	l := NewLocalLimiter()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if !l.Allow(ctx, "k", 3, time.Minute) {
			t.Fatalf("request %d denied", i+1)
		}
	}
	if l.Allow(ctx, "k", 3, time.Minute) {
		t.Fatal("fourth request allowed")
	}
	if !l.Allow(ctx, "other", 3, time.Minute) {
		t.Fatal("separate key should have its own bucket")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newRouter(RateLimit(NewLocalLimiter(), func(*gin.Context) string { return "fixed" }, 1, time.Minute))
	if w := do(r, ""); w.Code != http.StatusOK {
		t.Fatalf("first status = %d", w.Code)
	}
	if w := do(r, ""); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d", w.Code)
	}
}

func TestNilRedisLimiterAllows(t *testing.T) {
	l := NewRedisLimiter(nil)
	if !l.Allow(context.Background(), "k", 1, time.Minute) {
		t.Fatal("nil limiter should allow")
	}
}

func TestRecovery(t *testing.T) {
	r := newRouter(func(c *gin.Context) { panic("boom") })
	w := do(r, "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatal("request id header missing")
	}
}
